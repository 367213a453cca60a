package guild

import (
	"context"
	"testing"
	"time"

	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRoleOf(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := testutil.SeedHousehold(t, db)
	svc := NewService(db, testutil.SetupTestCache(t), time.Minute, zap.NewNop())
	ctx := context.Background()

	role, err := svc.RoleOf(ctx, h.Guild.ID, h.Guildmaster.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuildmaster, role)

	role, err = svc.RoleOf(ctx, h.Guild.ID, h.Member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, role)

	role, err = svc.RoleOf(ctx, h.Guild.ID+1, h.Guildmaster.ID)
	require.NoError(t, err)
	assert.Equal(t, model.GuildRole(""), role)
}

func TestRoleOf_ServedFromCache(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := testutil.SeedHousehold(t, db)
	svc := NewService(db, testutil.SetupTestCache(t), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RoleOf(ctx, h.Guild.ID, h.Member.ID)
	require.NoError(t, err)

	// A direct DB change is not seen until the cached entry goes away.
	require.NoError(t, db.Model(&model.GuildMember{}).
		Where("guild_id = ? AND char_id = ?", h.Guild.ID, h.Member.ID).
		Update("role", model.RoleGuildmaster).Error)
	role, err := svc.RoleOf(ctx, h.Guild.ID, h.Member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleMember, role)
}

func TestSetRole_Invalidates(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := testutil.SeedHousehold(t, db)
	svc := NewService(db, testutil.SetupTestCache(t), time.Minute, zap.NewNop())
	ctx := context.Background()

	_, err := svc.RoleOf(ctx, h.Guild.ID, h.Member.ID)
	require.NoError(t, err)
	require.NoError(t, svc.SetRole(ctx, h.Guild.ID, h.Member.ID, model.RoleGuildmaster))

	role, err := svc.RoleOf(ctx, h.Guild.ID, h.Member.ID)
	require.NoError(t, err)
	assert.Equal(t, model.RoleGuildmaster, role)

	members, err := svc.Members(ctx, h.Guild.ID)
	require.NoError(t, err)
	assert.Len(t, members, 2)
}
