package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/client/repositories/state"
	"github.com/dmitrijs2005/aither/internal/logging"
)

var ErrEmailTaken = errors.New("email already registered")

// OwnerAccount describes the reserved owner profile the registry guarantees.
type OwnerAccount struct {
	Email string
	Name  string
	PIN   string
}

func DefaultOwnerAccount() OwnerAccount {
	return OwnerAccount{Email: "owner@aither.local", Name: "Owner", PIN: "2011"}
}

// Registry is the persisted collection of user profiles.
type Registry struct {
	repo   state.Repository
	owner  OwnerAccount
	logger logging.Logger
	newID  func() string
}

func NewRegistry(repo state.Repository, owner OwnerAccount, logger logging.Logger) *Registry {
	owner.Email = models.NormalizeEmail(owner.Email)
	return &Registry{
		repo:   repo,
		owner:  owner,
		logger: logger,
		newID:  uuid.NewString,
	}
}

func (r *Registry) OwnerEmail() string {
	return r.owner.Email
}

// IsReserved reports whether email belongs to the owner account.
func (r *Registry) IsReserved(email string) bool {
	return models.NormalizeEmail(email) == r.owner.Email
}

// Load reads the registry and makes sure it holds exactly one owner profile.
// Roles always follow the configured owner email: the profile carrying it is
// the owner, every other profile is a member. Any repair is persisted before
// Load returns.
func (r *Registry) Load(ctx context.Context) ([]models.UserProfile, error) {
	users, err := r.repo.LoadUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("load users: %w", err)
	}

	dirty := false
	hasOwner := false
	for i := range users {
		reserved := r.IsReserved(users[i].Email)
		role := models.RoleMember
		if reserved {
			role = models.RoleOwner
		}
		if users[i].Role != role {
			users[i].Role = role
			dirty = true
		}
		if reserved {
			hasOwner = true
		}
	}

	if !hasOwner {
		users = append(users, models.UserProfile{
			ID:            r.newID(),
			Email:         r.owner.Email,
			DisplayName:   r.owner.Name,
			AIAvatar:      DefaultAIAvatar,
			PIN:           r.owner.PIN,
			SetupComplete: true,
			Role:          models.RoleOwner,
		})
		dirty = true
		r.logger.Info(ctx, "owner account provisioned", "email", r.owner.Email)
	}

	if dirty {
		if err := r.repo.SaveUsers(ctx, users); err != nil {
			return nil, fmt.Errorf("save users: %w", err)
		}
	}
	return users, nil
}

// Upsert replaces the profile with the same id or appends it, then persists
// the whole collection. A second profile with an already registered email is
// rejected with ErrEmailTaken.
func (r *Registry) Upsert(ctx context.Context, users []models.UserProfile, p models.UserProfile) ([]models.UserProfile, error) {
	email := models.NormalizeEmail(p.Email)
	idx := -1
	for i, u := range users {
		if u.ID == p.ID {
			idx = i
			continue
		}
		if models.NormalizeEmail(u.Email) == email {
			return users, ErrEmailTaken
		}
	}

	out := make([]models.UserProfile, len(users), len(users)+1)
	copy(out, users)
	if idx >= 0 {
		out[idx] = p
	} else {
		out = append(out, p)
	}

	if err := r.repo.SaveUsers(ctx, out); err != nil {
		return users, fmt.Errorf("save users: %w", err)
	}
	return out, nil
}

// FindByEmail matches on the normalized address.
func FindByEmail(users []models.UserProfile, email string) (models.UserProfile, bool) {
	email = models.NormalizeEmail(email)
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == email {
			return u, true
		}
	}
	return models.UserProfile{}, false
}

func FindByID(users []models.UserProfile, id string) (models.UserProfile, bool) {
	for _, u := range users {
		if u.ID == id {
			return u, true
		}
	}
	return models.UserProfile{}, false
}

// ProfileUpdate carries the fields a user may change about themselves.
type ProfileUpdate struct {
	DisplayName string
	UserAvatar  string
	PIN         string
}

// ApplySettings merges upd into p. A blank name and a PIN that is not exactly
// four digits are ignored; the avatar is taken as given.
func ApplySettings(p models.UserProfile, upd ProfileUpdate) models.UserProfile {
	if name := strings.TrimSpace(upd.DisplayName); name != "" {
		p.DisplayName = name
	}
	p.UserAvatar = upd.UserAvatar
	if ValidPIN(upd.PIN) {
		p.PIN = upd.PIN
	}
	return p
}
