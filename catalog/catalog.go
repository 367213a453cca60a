// Package catalog loads a household definition from YAML and seeds it into
// the database: the guild, its members, the quest board and the shop.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/ledger"
	"github.com/hearthguild/server/model"
	"gopkg.in/yaml.v3"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Catalog is the YAML document.
type Catalog struct {
	Guild   string   `yaml:"guild"`
	Members []Member `yaml:"members"`
	Quests  []Quest  `yaml:"quests"`
	Shop    []Item   `yaml:"shop"`
	Effects []Effect `yaml:"effects"`
}

type Member struct {
	Name string          `yaml:"name"`
	Role model.GuildRole `yaml:"role"`
}

type Quest struct {
	Title       string          `yaml:"title"`
	Description string          `yaml:"description"`
	Type        model.QuestType `yaml:"type"`
	Difficulty  int             `yaml:"difficulty"`
	Reward      struct {
		Exp    int64 `yaml:"exp"`
		Bronze int64 `yaml:"bronze"`
		Silver int64 `yaml:"silver"`
		Gold   int64 `yaml:"gold"`
	} `yaml:"reward"`
}

type Item struct {
	Name         string             `yaml:"name"`
	Description  string             `yaml:"description"`
	Denomination model.Denomination `yaml:"denomination"`
	Price        int64              `yaml:"price"`
	Stock        *int               `yaml:"stock"`
}

// Effect is a starting effect for a named member.
type Effect struct {
	Member       string             `yaml:"member"`
	Name         string             `yaml:"name"`
	Type         model.EffectType   `yaml:"type"`
	Days         int                `yaml:"days"`
	Multipliers  model.Multipliers  `yaml:"multipliers"`
	Restrictions model.Restrictions `yaml:"restrictions"`
	Bonuses      model.Bonuses      `yaml:"bonuses"`
}

func (q Quest) reward() model.Reward {
	return model.Reward{Exp: q.Reward.Exp, Bronze: q.Reward.Bronze, Silver: q.Reward.Silver, Gold: q.Reward.Gold}
}

func (e Effect) model() *model.Effect {
	return &model.Effect{
		Name:         e.Name,
		Type:         e.Type,
		Duration:     e.Days,
		MaxDuration:  e.Days,
		Multipliers:  datatypes.NewJSONType(e.Multipliers),
		Restrictions: datatypes.NewJSONType(e.Restrictions),
		Bonuses:      datatypes.NewJSONType(e.Bonuses),
	}
}

// Load reads and validates a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate checks the catalog before anything is written.
func (c *Catalog) Validate() error {
	if c.Guild == "" {
		return errors.New("guild is required")
	}
	names := make(map[string]bool, len(c.Members))
	masters := 0
	for _, m := range c.Members {
		if m.Name == "" {
			return errors.New("member name is required")
		}
		if names[m.Name] {
			return fmt.Errorf("member %q listed twice", m.Name)
		}
		names[m.Name] = true
		switch m.Role {
		case model.RoleGuildmaster:
			masters++
		case model.RoleMember:
		default:
			return fmt.Errorf("member %q: unknown role %q", m.Name, m.Role)
		}
	}
	if masters == 0 {
		return errors.New("at least one GUILDMASTER is required")
	}
	for _, q := range c.Quests {
		if q.Title == "" {
			return errors.New("quest title is required")
		}
		if !q.Type.Valid() {
			return fmt.Errorf("quest %q: unknown type %q", q.Title, q.Type)
		}
		if q.Difficulty < model.MinDifficulty || q.Difficulty > model.MaxDifficulty {
			return fmt.Errorf("quest %q: difficulty %d out of range", q.Title, q.Difficulty)
		}
		if err := ledger.ValidateReward(q.reward()); err != nil {
			return fmt.Errorf("quest %q: %w", q.Title, err)
		}
	}
	for _, it := range c.Shop {
		if it.Name == "" {
			return errors.New("shop item name is required")
		}
		if !it.Denomination.Valid() {
			return fmt.Errorf("shop item %q: unknown denomination %q", it.Name, it.Denomination)
		}
		if it.Price < 0 || (it.Stock != nil && *it.Stock < 0) {
			return fmt.Errorf("shop item %q: price and stock must not be negative", it.Name)
		}
	}
	for _, e := range c.Effects {
		if !names[e.Member] {
			return fmt.Errorf("effect %q: unknown member %q", e.Name, e.Member)
		}
		if err := effect.Validate(e.model()); err != nil {
			return fmt.Errorf("effect %q: %w", e.Name, err)
		}
	}
	return nil
}

// Result counts what Seed created. Existing rows are left as they are.
type Result struct {
	GuildID int64 `json:"guild_id"`
	Members int   `json:"members"`
	Quests  int   `json:"quests"`
	Items   int   `json:"items"`
	Effects int   `json:"effects"`
}

// Seed writes the catalog in one transaction. Rows are matched by name
// (quests by title), so seeding the same file twice creates nothing new.
func Seed(ctx context.Context, db *gorm.DB, c *Catalog) (*Result, error) {
	res := &Result{}
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		guild := model.Guild{Name: c.Guild}
		if _, err := ensure(tx, &guild, "name = ?", c.Guild); err != nil {
			return fmt.Errorf("guild: %w", err)
		}
		res.GuildID = guild.ID

		ids := make(map[string]int64, len(c.Members))
		for _, m := range c.Members {
			ch := model.Character{GuildID: guild.ID, Name: m.Name, Level: 1}
			created, err := ensure(tx, &ch, "guild_id = ? AND name = ?", guild.ID, m.Name)
			if err != nil {
				return fmt.Errorf("member %q: %w", m.Name, err)
			}
			if created {
				res.Members++
			}
			ids[m.Name] = ch.ID
			gm := model.GuildMember{GuildID: guild.ID, CharID: ch.ID, Role: m.Role}
			if err := tx.Save(&gm).Error; err != nil {
				return fmt.Errorf("member %q role: %w", m.Name, err)
			}
		}

		for _, q := range c.Quests {
			row := model.Quest{
				GuildID:     guild.ID,
				Title:       q.Title,
				Description: q.Description,
				Type:        q.Type,
				Difficulty:  q.Difficulty,
				Status:      model.QuestAvailable,
				Reward:      q.reward(),
			}
			created, err := ensure(tx, &row, "guild_id = ? AND title = ?", guild.ID, q.Title)
			if err != nil {
				return fmt.Errorf("quest %q: %w", q.Title, err)
			}
			if created {
				res.Quests++
			}
		}

		for _, it := range c.Shop {
			row := model.ShopItem{
				GuildID:      guild.ID,
				Name:         it.Name,
				Description:  it.Description,
				Denomination: it.Denomination,
				Price:        it.Price,
				Stock:        it.Stock,
			}
			created, err := ensure(tx, &row, "guild_id = ? AND name = ?", guild.ID, it.Name)
			if err != nil {
				return fmt.Errorf("shop item %q: %w", it.Name, err)
			}
			if created {
				res.Items++
			}
		}

		now := time.Now().UTC()
		for _, e := range c.Effects {
			row := e.model()
			row.CharID = ids[e.Member]
			row.CreatedAt = now
			created, err := ensure(tx, row, "char_id = ? AND name = ?", row.CharID, e.Name)
			if err != nil {
				return fmt.Errorf("effect %q: %w", e.Name, err)
			}
			if created {
				res.Effects++
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("catalog: seed: %w", err)
	}
	return res, nil
}

// ensure loads the first row matching the condition into dest, or creates
// dest when none exists. It reports whether a row was created.
func ensure(tx *gorm.DB, dest interface{}, query string, args ...interface{}) (bool, error) {
	var n int64
	if err := tx.Model(dest).Where(query, args...).Count(&n).Error; err != nil {
		return false, err
	}
	if n > 0 {
		return false, tx.Where(query, args...).First(dest).Error
	}
	return true, tx.Create(dest).Error
}
