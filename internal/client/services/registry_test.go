package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/aither/internal/client/models"
	"github.com/dmitrijs2005/aither/internal/logging"
)

func newTestRegistry(repo *fakeState) *Registry {
	r := NewRegistry(repo, OwnerAccount{Email: " Owner@Aither.local ", Name: "Owner", PIN: "2011"}, logging.Discard())
	r.newID = seqIDs("user")
	return r
}

func countOwners(users []models.UserProfile, email string) int {
	n := 0
	for _, u := range users {
		if models.NormalizeEmail(u.Email) == email {
			n++
		}
	}
	return n
}

func TestRegistry_LoadProvisionsOwnerOnce(t *testing.T) {
	repo := &fakeState{}
	r := newTestRegistry(repo)
	ctx := context.Background()

	users, err := r.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 1)

	owner := users[0]
	assert.Equal(t, "owner@aither.local", owner.Email)
	assert.Equal(t, "2011", owner.PIN)
	assert.Equal(t, DefaultAIAvatar, owner.AIAvatar)
	assert.True(t, owner.SetupComplete)
	assert.True(t, owner.IsOwner())
	assert.Equal(t, 1, repo.userSaves, "provisioned owner is persisted immediately")

	for i := 0; i < 3; i++ {
		users, err = r.Load(ctx)
		require.NoError(t, err)
	}
	assert.Equal(t, 1, countOwners(users, "owner@aither.local"))
	assert.Equal(t, 1, repo.userSaves, "nothing to repair on later loads")
}

func TestRegistry_LoadBackfillsLegacyRoles(t *testing.T) {
	repo := &fakeState{users: []models.UserProfile{
		{ID: "a", Email: "ana@example.com", PIN: "1111"},
		{ID: "o", Email: "OWNER@aither.local", PIN: "9999"},
	}}
	r := newTestRegistry(repo)

	users, err := r.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2, "existing owner record is kept, not duplicated")

	assert.Equal(t, models.RoleMember, users[0].Role)
	assert.Equal(t, models.RoleOwner, users[1].Role)
	assert.Equal(t, "9999", users[1].PIN)
	assert.Equal(t, 1, repo.userSaves)
}

func TestRegistry_LoadRealignsRolesWithOwnerEmail(t *testing.T) {
	repo := &fakeState{users: []models.UserProfile{
		{ID: "o", Email: "owner@aither.local", PIN: "2011", Role: models.RoleMember},
		{ID: "m", Email: "mallory@example.com", PIN: "6666", Role: models.RoleOwner},
	}}
	r := newTestRegistry(repo)

	users, err := r.Load(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 2)

	assert.True(t, users[0].IsOwner())
	assert.False(t, users[1].IsOwner())
	assert.Equal(t, 1, repo.userSaves)
	assert.Equal(t, models.RoleMember, repo.users[1].Role, "repair is persisted")
}

func TestRegistry_OwnerEmailChangeMovesOwnership(t *testing.T) {
	repo := &fakeState{}
	ctx := context.Background()

	_, err := newTestRegistry(repo).Load(ctx)
	require.NoError(t, err)

	boss := NewRegistry(repo, OwnerAccount{Email: "boss@example.com", Name: "Boss", PIN: "4242"}, logging.Discard())
	boss.newID = seqIDs("boss")
	users, err := boss.Load(ctx)
	require.NoError(t, err)
	require.Len(t, users, 2)

	owners := 0
	for _, u := range users {
		if u.IsOwner() {
			owners++
			assert.Equal(t, "boss@example.com", u.Email)
		}
	}
	assert.Equal(t, 1, owners)

	prev, ok := FindByEmail(users, "owner@aither.local")
	require.True(t, ok)
	assert.Equal(t, models.RoleMember, prev.Role)
}

func TestRegistry_LoadError(t *testing.T) {
	repo := &fakeState{loadErr: errors.New("boom")}
	_, err := newTestRegistry(repo).Load(context.Background())
	require.Error(t, err)
}

func TestRegistry_Upsert(t *testing.T) {
	repo := &fakeState{}
	r := newTestRegistry(repo)
	ctx := context.Background()

	users, err := r.Upsert(ctx, nil, models.UserProfile{ID: "a", Email: "ana@example.com", DisplayName: "Ana"})
	require.NoError(t, err)
	require.Len(t, users, 1)

	users, err = r.Upsert(ctx, users, models.UserProfile{ID: "a", Email: "ana@example.com", DisplayName: "Ana Maria"})
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ana Maria", users[0].DisplayName)

	_, err = r.Upsert(ctx, users, models.UserProfile{ID: "b", Email: " ANA@example.com"})
	require.ErrorIs(t, err, ErrEmailTaken)

	assert.Equal(t, users, repo.users)
}

func TestRegistry_UpsertDoesNotMutateInput(t *testing.T) {
	r := newTestRegistry(&fakeState{})
	in := []models.UserProfile{{ID: "a", Email: "a@x.com", DisplayName: "A"}}

	_, err := r.Upsert(context.Background(), in, models.UserProfile{ID: "a", Email: "a@x.com", DisplayName: "B"})
	require.NoError(t, err)
	assert.Equal(t, "A", in[0].DisplayName)
}

func TestFindByEmailAndID(t *testing.T) {
	users := []models.UserProfile{{ID: "a", Email: "ana@example.com"}, {ID: "b", Email: "bob@example.com"}}

	u, ok := FindByEmail(users, "  BOB@Example.com ")
	require.True(t, ok)
	assert.Equal(t, "b", u.ID)

	_, ok = FindByEmail(users, "bo@example.com")
	assert.False(t, ok, "match is exact, not prefix")

	u, ok = FindByID(users, "a")
	require.True(t, ok)
	assert.Equal(t, "ana@example.com", u.Email)

	_, ok = FindByID(users, "zzz")
	assert.False(t, ok)
}

func TestApplySettings(t *testing.T) {
	base := models.UserProfile{DisplayName: "Ana", UserAvatar: "old", PIN: "1234"}

	tests := []struct {
		name string
		upd  ProfileUpdate
		want models.UserProfile
	}{
		{
			name: "all fields",
			upd:  ProfileUpdate{DisplayName: " Ana Maria ", UserAvatar: "new", PIN: "4321"},
			want: models.UserProfile{DisplayName: "Ana Maria", UserAvatar: "new", PIN: "4321"},
		},
		{
			name: "blank name keeps previous",
			upd:  ProfileUpdate{DisplayName: "  ", UserAvatar: "old", PIN: "1234"},
			want: base,
		},
		{
			name: "short pin keeps previous",
			upd:  ProfileUpdate{DisplayName: "Ana", UserAvatar: "old", PIN: "12"},
			want: base,
		},
		{
			name: "avatar can be cleared",
			upd:  ProfileUpdate{DisplayName: "Ana", PIN: ""},
			want: models.UserProfile{DisplayName: "Ana", PIN: "1234"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ApplySettings(base, tt.upd))
		})
	}
}
