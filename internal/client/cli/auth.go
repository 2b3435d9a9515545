package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/services"
)

// getSimpleText, getPIN and confirm are indirections so tests can script
// the prompts.
var (
	getSimpleText = GetSimpleText
	getPIN        = GetPIN
	confirm       = Confirm
)

// Login walks the user through the email/PIN flow. Validation errors are
// printed and the flow continues; only input errors (EOF) end it early. An
// empty PIN returns to the email prompt.
func (a *App) Login(ctx context.Context) error {
	if a.isLoggedIn() {
		a.println("Already logged in as", a.user.Email)
		return nil
	}

	users, err := a.registry.Load(ctx)
	if err != nil {
		return err
	}
	a.users = users

	gcfg, err := a.globals.Get(ctx)
	if err != nil {
		return err
	}

	flow := services.NewAuthFlow(users, a.registry.OwnerEmail(), gcfg.AIAvatar)
	for {
		switch flow.Step() {
		case services.StepCollectEmail:
			email, err := getSimpleText(a.reader, "Email", a.out)
			if err != nil {
				return err
			}
			a.report(flow.SubmitEmail(email))

		case services.StepVerifyPIN:
			pin, err := getPIN(a.reader, "PIN for "+flow.Email()+" (empty to go back)", a.out)
			if err != nil {
				return err
			}
			if pin == "" {
				_ = flow.Back()
				continue
			}
			_, err = flow.SubmitPIN(pin)
			a.report(err)

		case services.StepSetupNewUser:
			a.println("New terminal:", flow.Email())
			name, err := getSimpleText(a.reader, "Display name (empty for \""+services.DefaultDisplayName+"\")", a.out)
			if err != nil {
				return err
			}
			pin, err := getPIN(a.reader, "Choose a 4-digit PIN (empty to go back)", a.out)
			if err != nil {
				return err
			}
			if pin == "" {
				_ = flow.Back()
				continue
			}
			a.report(flow.SubmitSetup(name, pin))

		case services.StepDone:
			p, created, _ := flow.Result()
			if created {
				users, err := a.registry.Upsert(ctx, a.users, p)
				if err != nil {
					return err
				}
				a.users = users
				a.logger.Info(ctx, "user registered", "user_id", p.ID)
			}
			if err := a.signIn(ctx, p); err != nil {
				return err
			}
			a.greet()
			return nil
		}
	}
}

func (a *App) signIn(ctx context.Context, p models.UserProfile) error {
	if err := a.repo.SetActiveUserID(ctx, p.ID); err != nil {
		return fmt.Errorf("store active user: %w", err)
	}
	all, err := a.sessions.Load(ctx)
	if err != nil {
		return err
	}
	a.user = &p
	a.all = all
	a.activeID = ""
	a.listed = nil
	return nil
}

func (a *App) greet() {
	if a.user.IsOwner() {
		a.printf("Bem-vindo de volta, Criador %s.\n", a.user.DisplayName)
		return
	}
	a.printf("Bem-vindo, %s.\n", a.user.DisplayName)
}

// Logout clears the active-user pointer and the in-memory selection.
func (a *App) Logout(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if err := a.repo.SetActiveUserID(ctx, ""); err != nil {
		return err
	}
	a.user = nil
	a.all = nil
	a.activeID = ""
	a.listed = nil
	a.println("Logged out.")
	return nil
}

func (a *App) WhoAmI(context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	role := "member"
	if a.user.IsOwner() {
		role = "owner"
	}
	a.printf("%s <%s>\n", a.user.DisplayName, a.user.Email)
	a.printf("  role:      %s\n", role)
	a.printf("  avatar:    %s\n", shortRef(a.user.UserAvatar))
	a.printf("  ai avatar: %s\n", shortRef(a.user.AIAvatar))
	return nil
}

// Settings edits the signed-in profile. Empty answers keep the current
// value; "-" clears the avatar.
func (a *App) Settings(ctx context.Context) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}

	name, err := getSimpleText(a.reader, "Display name ["+a.user.DisplayName+"]", a.out)
	if err != nil {
		return err
	}

	avatar := a.user.UserAvatar
	ref, err := getSimpleText(a.reader, "Avatar: file path or URL ["+shortRef(avatar)+", '-' to clear]", a.out)
	if err != nil {
		return err
	}
	switch ref {
	case "":
	case "-":
		avatar = ""
	default:
		avatar, err = services.ResolveImageRef(ref)
		if err != nil {
			return err
		}
	}

	pin, err := getPIN(a.reader, "New 4-digit PIN (empty to keep)", a.out)
	if err != nil {
		return err
	}
	if pin != "" && !services.ValidPIN(pin) {
		a.println("PIN unchanged:", services.ErrPINLength)
	}

	updated := services.ApplySettings(*a.user, services.ProfileUpdate{
		DisplayName: name,
		UserAvatar:  avatar,
		PIN:         pin,
	})
	users, err := a.registry.Upsert(ctx, a.users, updated)
	if err != nil {
		return err
	}
	a.users = users
	a.user = &updated
	a.println("Profile saved.")
	return nil
}

// report prints a validation error and lets the caller carry on.
func (a *App) report(err error) {
	if err == nil {
		return
	}
	msg := err.Error()
	switch {
	case errors.Is(err, services.ErrReservedEmail):
		msg = "Este e-mail é reservado. Se você é o dono, contate o suporte do sistema."
	case errors.Is(err, services.ErrIncorrectPIN):
		msg = "PIN incorreto. Acesso negado."
	case errors.Is(err, services.ErrPINLength):
		msg = "O PIN deve conter 4 dígitos."
	}
	a.println("Error:", msg)
}
