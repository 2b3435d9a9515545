package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/services"
	"github.com/dmitrijs2005/aither/internal/common"
)

var errNoOpenSession = errors.New("no session open; use 'new' or 'open <#|id>'")

func (a *App) New(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	s, all, err := a.sessions.Create(ctx, a.all, a.user.ID)
	if err != nil {
		return err
	}
	a.all = all
	a.activeID = s.ID
	a.println("Opened", s.Title+".", "Type a message to talk to AITHER.")
	return nil
}

func (a *App) List(context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	mine := services.ListForUser(a.all, a.user.ID)
	a.listed = make([]string, 0, len(mine))
	if len(mine) == 0 {
		a.println("No sessions yet. Type 'new' to start one.")
		return nil
	}
	for i, s := range mine {
		a.listed = append(a.listed, s.ID)
		a.println(listLine(i+1, s, s.ID == a.activeID))
	}
	return nil
}

// Open selects a session by its number in the last listing or by id.
func (a *App) Open(ctx context.Context, ref string) error {
	s, err := a.resolve(ref)
	if err != nil {
		return err
	}
	a.activeID = s.ID
	a.printf("Opened %q.\n", s.Title)
	return a.History(ctx)
}

// Home closes the open session without deleting anything.
func (a *App) Home(context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	a.activeID = ""
	return nil
}

func (a *App) History(context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	s, ok := a.current()
	if !ok {
		return errNoOpenSession
	}
	if len(s.Messages) == 0 {
		a.println("(empty session)")
		return nil
	}
	for _, m := range s.Messages {
		a.println(a.render.formatMessage(m, a.user.DisplayName))
	}
	return nil
}

// Send posts text to the open session, opening a new one when none is.
func (a *App) Send(ctx context.Context, text string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if strings.TrimSpace(text) == "" {
		return services.ErrEmptyMessage
	}
	if !a.hasOpenSession() {
		if err := a.New(ctx); err != nil {
			return err
		}
	}

	a.println("AITHER está processando...")
	all, reply, err := a.chat.Send(ctx, *a.user, a.all, a.activeID, text)
	a.all = all
	if err != nil {
		return err
	}
	a.println(a.render.formatMessage(reply, a.user.DisplayName))
	return nil
}

// Delete removes one of the user's sessions. Deleting the open session
// also closes it.
func (a *App) Delete(ctx context.Context, ref string) error {
	s, err := a.resolve(ref)
	if err != nil {
		return err
	}
	all, err := a.sessions.Delete(ctx, a.all, s.ID)
	if err != nil {
		return err
	}
	a.all = all
	if a.activeID == s.ID {
		a.activeID = ""
	}
	a.listed = nil
	a.printf("Deleted %q.\n", s.Title)
	return nil
}

// Clear deletes every session of the signed-in user after confirmation.
func (a *App) Clear(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	ok, err := confirm(a.reader, "Delete all of your sessions?", a.out)
	if err != nil || !ok {
		return err
	}
	all, n, err := a.sessions.ClearForUser(ctx, a.all, a.user.ID)
	if err != nil {
		return err
	}
	a.all = all
	a.activeID = ""
	a.listed = nil
	a.printf("Deleted %d session(s).\n", n)
	return nil
}

// resolve finds one of the user's sessions by listing number or id.
func (a *App) resolve(ref string) (models.ChatSession, error) {
	if !a.isLoggedIn() {
		return models.ChatSession{}, errNotLoggedIn
	}
	ref = strings.TrimPrefix(strings.TrimSpace(ref), "#")
	if ref == "" {
		return models.ChatSession{}, errors.New("usage: <command> <#|id>")
	}

	id := ref
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(a.listed) {
			return models.ChatSession{}, fmt.Errorf("no session #%d in the last listing; type 'list'", n)
		}
		id = a.listed[n-1]
	}

	s, ok := services.FindSession(a.all, id)
	if !ok || s.UserID != a.user.ID {
		return models.ChatSession{}, fmt.Errorf("session %s: %w", id, common.ErrNotFound)
	}
	return s, nil
}
