package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"

	"github.com/dmitrijs2005/aither/internal/client/services"
	"github.com/dmitrijs2005/aither/internal/common"
)

var errS3Disabled = errors.New("s3 backups are not configured (set AITHER_S3_BUCKET)")

const s3Prefix = "s3:"

func (a *App) requireOwner() error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if !a.user.IsOwner() {
		return common.ErrForbidden
	}
	return nil
}

// Avatar shows the global AI avatar, or replaces it when ref is given (owner
// only).
func (a *App) Avatar(ctx context.Context, ref string) error {
	if !a.isLoggedIn() {
		return errNotLoggedIn
	}
	if ref == "" {
		cfg, err := a.globals.Get(ctx)
		if err != nil {
			return err
		}
		a.printf("AI avatar: %s\nLast updated by: %s\n", shortRef(cfg.AIAvatar), cfg.LastEditor)
		return nil
	}
	if err := a.requireOwner(); err != nil {
		return err
	}

	img, err := services.ResolveImageRef(ref)
	if err != nil {
		return err
	}
	cfg, err := a.globals.Set(ctx, *a.user, img)
	if err != nil {
		return err
	}
	a.printf("AI avatar updated by %s.\n", cfg.LastEditor)
	return nil
}

func (a *App) Users(context.Context) error {
	if err := a.requireOwner(); err != nil {
		return err
	}
	a.printf("%d registered user(s)\n", len(a.users))
	for _, u := range a.users {
		role := "member"
		if u.IsOwner() {
			role = "owner"
		}
		a.printf("  %-32s %-20s %s\n", u.Email, u.DisplayName, role)
	}
	return nil
}

// Export writes a backup to dest: "s3" uploads it to the configured bucket,
// a directory or empty dest uses the conventional file name.
func (a *App) Export(ctx context.Context, dest string) error {
	if err := a.requireOwner(); err != nil {
		return err
	}
	data, name, err := a.backup.Export(ctx, *a.user)
	if err != nil {
		return err
	}

	if dest == "s3" {
		if a.blobs == nil {
			return errS3Disabled
		}
		if err := a.blobs.Put(ctx, name, data); err != nil {
			return err
		}
		a.println("Backup uploaded:", s3Prefix+name)
		return nil
	}

	path := dest
	if path == "" {
		path = name
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, name)
	}
	if err := services.SaveFile(path, data); err != nil {
		return err
	}
	a.println("Backup written:", path)
	return nil
}

// Import restores a backup from a file or, with an "s3:" prefix, from the
// bucket. The signed-in user is signed out if the backup does not contain
// them.
func (a *App) Import(ctx context.Context, src string) error {
	if err := a.requireOwner(); err != nil {
		return err
	}
	if src == "" {
		return errors.New("usage: import <path|s3:key>")
	}

	var (
		data []byte
		err  error
	)
	if key, ok := strings.CutPrefix(src, s3Prefix); ok {
		if a.blobs == nil {
			return errS3Disabled
		}
		data, err = a.blobs.Get(ctx, key)
	} else {
		data, err = services.LoadFile(src)
	}
	if err != nil {
		return err
	}

	ok, err := confirm(a.reader, "Replace all users, sessions and settings with this backup?", a.out)
	if err != nil || !ok {
		return err
	}

	users, err := a.backup.Import(ctx, *a.user, data)
	if err != nil {
		return err
	}
	a.users = users
	a.println("Backup restored.")

	u, found := services.FindByID(users, a.user.ID)
	if !found {
		a.println("Your profile is not part of the backup.")
		return a.Logout(ctx)
	}
	return a.signIn(ctx, u)
}
