package testutil

import (
	"testing"
	"time"

	"github.com/hearthguild/server/model"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Household is a seeded guild with a guildmaster and one member.
type Household struct {
	Guild       model.Guild
	Guildmaster model.Character
	Member      model.Character
}

// SeedHousehold creates a guild, its guildmaster and a regular member.
func SeedHousehold(t *testing.T, db *gorm.DB) *Household {
	t.Helper()
	h := &Household{Guild: model.Guild{Name: "Home-" + t.Name()}}
	require.NoError(t, db.Create(&h.Guild).Error)

	h.Guildmaster = model.Character{GuildID: h.Guild.ID, Name: "Parent", Level: 1}
	require.NoError(t, db.Create(&h.Guildmaster).Error)
	h.Member = model.Character{GuildID: h.Guild.ID, Name: "Kid", Level: 1}
	require.NoError(t, db.Create(&h.Member).Error)

	require.NoError(t, db.Create(&model.GuildMember{
		GuildID: h.Guild.ID, CharID: h.Guildmaster.ID, Role: model.RoleGuildmaster,
	}).Error)
	require.NoError(t, db.Create(&model.GuildMember{
		GuildID: h.Guild.ID, CharID: h.Member.ID, Role: model.RoleMember,
	}).Error)
	return h
}

// SeedQuest inserts an AVAILABLE quest for the guild.
func SeedQuest(t *testing.T, db *gorm.DB, guildID int64, qt model.QuestType, difficulty int, reward model.Reward) *model.Quest {
	t.Helper()
	q := &model.Quest{
		GuildID:    guildID,
		Title:      "Wash the dishes",
		Type:       qt,
		Difficulty: difficulty,
		Status:     model.QuestAvailable,
		Reward:     reward,
	}
	require.NoError(t, db.Create(q).Error)
	return q
}

// SeedEffect attaches an effect to a character.
func SeedEffect(t *testing.T, db *gorm.DB, charID int64, e model.Effect) *model.Effect {
	t.Helper()
	e.CharID = charID
	if e.Type == "" {
		e.Type = model.EffectBuff
	}
	if e.MaxDuration == 0 {
		e.MaxDuration = 7
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	require.NoError(t, db.Create(&e).Error)
	return &e
}

// XP builds a multipliers payload with only an XP factor.
func XP(f float64) datatypes.JSONType[model.Multipliers] {
	return datatypes.NewJSONType(model.Multipliers{XP: &f})
}

// Coin builds a multipliers payload with only a coin factor.
func Coin(f float64) datatypes.JSONType[model.Multipliers] {
	return datatypes.NewJSONType(model.Multipliers{Coin: &f})
}
