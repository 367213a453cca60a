package model_test

import (
	"testing"

	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	guild := &model.Guild{Name: "Home"}
	require.NoError(t, db.Create(guild).Error)

	char := &model.Character{GuildID: guild.ID, Name: "Kid", Level: 1}
	require.NoError(t, db.Create(char).Error)
	assert.Greater(t, char.ID, int64(0))

	require.NoError(t, db.Create(&model.GuildMember{GuildID: guild.ID, CharID: char.ID, Role: model.RoleMember}).Error)

	q := &model.Quest{
		GuildID: guild.ID, Title: "Feed the cat", Type: model.QuestDaily, Difficulty: 1,
		Status: model.QuestAvailable, Reward: model.Reward{Exp: 10, Bronze: 3},
	}
	require.NoError(t, db.Create(q).Error)

	stock := 2
	item := &model.ShopItem{GuildID: guild.ID, Name: "Sticker", Denomination: model.Bronze, Price: 1, Stock: &stock}
	require.NoError(t, db.Create(item).Error)
	require.NoError(t, db.Create(&model.Inventory{CharID: char.ID, ShopItemID: item.ID, Qty: 1}).Error)

	require.NoError(t, db.Create(&model.ActivityLog{
		TraceID: "trace-001", Type: model.ActivityPurchase, CharID: char.ID,
		Metadata: datatypes.JSON(`{"item_id":1}`),
	}).Error)

	var found model.Quest
	require.NoError(t, db.First(&found, q.ID).Error)
	assert.Equal(t, model.Reward{Exp: 10, Bronze: 3}, found.Reward)
	assert.Nil(t, found.AssignedCharID)
}

func TestAutoMigrate_EffectPayloadRoundTrips(t *testing.T) {
	db := testutil.SetupTestDB(t)
	char := &model.Character{GuildID: 1, Name: "Kid"}
	require.NoError(t, db.Create(char).Error)

	xp := 1.25
	bonus := int64(2)
	e := &model.Effect{
		CharID: char.ID, Name: "Focus", Type: model.EffectBuff, Duration: 3, MaxDuration: 3,
		Multipliers: datatypes.NewJSONType(model.Multipliers{XP: &xp}),
		Restrictions: datatypes.NewJSONType(model.Restrictions{
			QuestTypesBlocked: []model.QuestType{model.QuestPhysical},
		}),
		Bonuses: datatypes.NewJSONType(model.Bonuses{BonusGold: &bonus}),
	}
	require.NoError(t, db.Create(e).Error)

	var got model.Character
	require.NoError(t, db.Preload("Effects").First(&got, char.ID).Error)
	require.Len(t, got.Effects, 1)
	m := got.Effects[0].Multipliers.Data()
	require.NotNil(t, m.XP)
	assert.Equal(t, 1.25, *m.XP)
	assert.Nil(t, m.Coin)
	assert.Equal(t, []model.QuestType{model.QuestPhysical}, got.Effects[0].Restrictions.Data().QuestTypesBlocked)
	assert.Equal(t, int64(2), *got.Effects[0].Bonuses.Data().BonusGold)
	assert.True(t, got.Effects[0].IsActive())
}
