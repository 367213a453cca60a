package effect

import (
	"context"
	"testing"
	"time"

	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
)

type recordingSink struct{ entries []audit.Entry }

func (r *recordingSink) Log(e audit.Entry) { r.entries = append(r.entries, e) }

func newTestService(t *testing.T) (*Service, *testutil.Household, *recordingSink) {
	db := testutil.SetupTestDB(t)
	h := testutil.SeedHousehold(t, db)
	sink := &recordingSink{}
	svc := NewService(db, sink, 4, zap.NewNop())
	svc.now = func() time.Time { return t0 }
	return svc, h, sink
}

func TestGrant_DefaultsDurationAndPersists(t *testing.T) {
	svc, h, sink := newTestService(t)

	e, err := svc.Grant(context.Background(), h.Member.ID, &model.Effect{
		Name:        "Sunday blessing",
		Type:        model.EffectBlessing,
		MaxDuration: 3,
		Multipliers: datatypes.NewJSONType(model.Multipliers{XP: f64(1.5)}),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, e.Duration)
	assert.Equal(t, h.Member.ID, e.CharID)

	list, err := svc.List(context.Background(), h.Member.ID, false)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 1.5, *list[0].Multipliers.Data().XP)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, model.ActivityEffectGranted, sink.entries[0].Type)
}

func TestGrant_UnknownCharacter(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.Grant(context.Background(), 9999, &model.Effect{Type: model.EffectCurse, MaxDuration: 1})
	assert.ErrorIs(t, err, gameerr.ErrNotFound)
}

func TestGrant_InvalidPayload(t *testing.T) {
	svc, h, _ := newTestService(t)
	_, err := svc.Grant(context.Background(), h.Member.ID, &model.Effect{
		Type:        model.EffectBuff,
		MaxDuration: 2,
		Multipliers: datatypes.NewJSONType(model.Multipliers{Coin: f64(-1)}),
	})
	assert.ErrorIs(t, err, gameerr.ErrInvalidRewardValue)
}

func TestTickCharacter_OncePerDay(t *testing.T) {
	svc, h, sink := newTestService(t)
	ctx := context.Background()
	testutil.SeedEffect(t, svc.db, h.Member.ID, model.Effect{Name: "Flu", Type: model.EffectDisease, Duration: 2})
	testutil.SeedEffect(t, svc.db, h.Member.ID, model.Effect{Name: "Cheer", Duration: 1})

	ok, err := svc.TickCharacter(ctx, h.Member.ID, "2026-03-01")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.TickCharacter(ctx, h.Member.ID, "2026-03-01")
	require.NoError(t, err)
	assert.False(t, ok, "second tick on the same day must be skipped")

	all, err := svc.List(ctx, h.Member.ID, true)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, 1, all[0].Duration)
	assert.Equal(t, 0, all[1].Duration, "expired effects are kept, not deleted")

	active, err := svc.List(ctx, h.Member.ID, false)
	require.NoError(t, err)
	assert.Len(t, active, 1)

	require.Len(t, sink.entries, 1)
	assert.Equal(t, model.ActivityEffectExpired, sink.entries[0].Type)

	ok, err = svc.TickCharacter(ctx, h.Member.ID, "2026-03-02")
	require.NoError(t, err)
	assert.True(t, ok)
	active, _ = svc.List(ctx, h.Member.ID, false)
	assert.Empty(t, active)
}

func TestTickAll_EveryCharacterOnce(t *testing.T) {
	svc, h, _ := newTestService(t)
	ctx := context.Background()
	testutil.SeedEffect(t, svc.db, h.Member.ID, model.Effect{Duration: 5})
	testutil.SeedEffect(t, svc.db, h.Guildmaster.ID, model.Effect{Duration: 5})

	report, err := svc.TickAll(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(2), report.Ticked)
	assert.Equal(t, int64(0), report.Failed)

	report, err = svc.TickAll(ctx, "2026-03-01")
	require.NoError(t, err)
	assert.Equal(t, int64(0), report.Ticked)

	for _, id := range []int64{h.Member.ID, h.Guildmaster.ID} {
		effects, err := svc.List(ctx, id, false)
		require.NoError(t, err)
		require.Len(t, effects, 1)
		assert.Equal(t, 4, effects[0].Duration)
	}
}

func TestTickToday_UsesClock(t *testing.T) {
	svc, h, _ := newTestService(t)
	report, err := svc.TickToday(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2026-03-01", report.Day)

	var c model.Character
	require.NoError(t, svc.db.First(&c, h.Member.ID).Error)
	assert.Equal(t, "2026-03-01", c.EffectsTickedOn)
}
