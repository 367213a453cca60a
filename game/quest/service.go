// Package quest implements the quest lifecycle: the pure transition
// functions in machine.go and the transactional Service around them.
package quest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/game/ledger"
	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RoleProvider resolves a character's role in a guild. An empty role
// means the character is not a member.
type RoleProvider interface {
	RoleOf(ctx context.Context, guildID, charID int64) (model.GuildRole, error)
}

// Leaderboard receives updated gold totals after an approval commits.
type Leaderboard interface {
	Record(ctx context.Context, charID, totalGold int64)
}

// ApproveResult is what an approval produced.
type ApproveResult struct {
	Quest        *model.Quest     `json:"quest"`
	Character    *model.Character `json:"character"`
	Applied      model.Reward     `json:"applied_reward"`
	LevelsGained int              `json:"levels_gained"`
}

// Service handles all quest operations.
type Service struct {
	db     *gorm.DB
	roles  RoleProvider
	sink   audit.Sink
	board  Leaderboard
	slots  int
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a quest Service. slots caps concurrent IN_PROGRESS
// quests per character before effect bonuses; zero disables the cap.
// sink and board may be nil.
func NewService(db *gorm.DB, roles RoleProvider, sink audit.Sink, board Leaderboard, slots int, logger *zap.Logger) *Service {
	if sink == nil {
		sink = audit.Discard
	}
	return &Service{db: db, roles: roles, sink: sink, board: board, slots: slots, logger: logger, now: time.Now}
}

// Get loads one quest.
func (svc *Service) Get(ctx context.Context, questID int64) (*model.Quest, error) {
	return loadQuest(svc.db.WithContext(ctx), questID)
}

// ListQuests returns the guild's quests, optionally filtered by status.
func (svc *Service) ListQuests(ctx context.Context, guildID int64, status model.QuestStatus) ([]model.Quest, error) {
	q := svc.db.WithContext(ctx).Where("guild_id = ?", guildID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var quests []model.Quest
	if err := q.Order("id ASC").Find(&quests).Error; err != nil {
		return nil, fmt.Errorf("quest: list: %w", err)
	}
	return quests, nil
}

// ListAssigned returns the quests currently held by a character.
func (svc *Service) ListAssigned(ctx context.Context, charID int64) ([]model.Quest, error) {
	var quests []model.Quest
	err := svc.db.WithContext(ctx).
		Where("assigned_char_id = ? AND status IN ?", charID,
			[]model.QuestStatus{model.QuestInProgress, model.QuestCompleted}).
		Order("id ASC").
		Find(&quests).Error
	if err != nil {
		return nil, fmt.Errorf("quest: list assigned: %w", err)
	}
	return quests, nil
}

// CreateQuest posts a new AVAILABLE quest to the guild board. Only a
// guildmaster of the guild may create quests.
func (svc *Service) CreateQuest(ctx context.Context, callerCharID int64, q *model.Quest) (*model.Quest, error) {
	if err := validateNew(q); err != nil {
		return nil, err
	}
	role, err := svc.roles.RoleOf(ctx, q.GuildID, callerCharID)
	if err != nil {
		return nil, err
	}
	if role != model.RoleGuildmaster {
		return nil, gameerr.New(gameerr.Unauthorized, "creating quests requires %s", model.RoleGuildmaster)
	}

	created := model.Quest{
		GuildID:     q.GuildID,
		Title:       strings.TrimSpace(q.Title),
		Description: q.Description,
		Type:        q.Type,
		Difficulty:  q.Difficulty,
		Status:      model.QuestAvailable,
		Reward:      q.Reward,
	}
	if err := svc.db.WithContext(ctx).Create(&created).Error; err != nil {
		return nil, fmt.Errorf("quest: create: %w", err)
	}
	svc.logger.Info("quest created",
		zap.Int64("quest_id", created.ID),
		zap.Int64("guild_id", created.GuildID),
		zap.String("type", string(created.Type)))
	return &created, nil
}

func validateNew(q *model.Quest) error {
	if strings.TrimSpace(q.Title) == "" {
		return gameerr.New(gameerr.InvalidArgument, "title is required")
	}
	if !q.Type.Valid() {
		return gameerr.New(gameerr.InvalidArgument, "unknown quest type %q", q.Type)
	}
	if q.Difficulty < model.MinDifficulty || q.Difficulty > model.MaxDifficulty {
		return gameerr.New(gameerr.InvalidArgument, "difficulty %d out of range", q.Difficulty)
	}
	return ledger.ValidateReward(q.Reward)
}

// AcceptQuest assigns an AVAILABLE quest to the character. The character
// must belong to the quest's guild, hold no effect that blocks the quest,
// and have a free quest slot.
func (svc *Service) AcceptQuest(ctx context.Context, questID, charID int64) (*model.Quest, error) {
	var accepted *model.Quest
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadQuest(tx, questID)
		if err != nil {
			return err
		}
		char, err := loadCharacter(tx, charID)
		if err != nil {
			return err
		}

		next := *q
		if err := Accept(&next, charID, svc.now().UTC()); err != nil {
			return err
		}
		if char.GuildID != q.GuildID {
			return gameerr.New(gameerr.Unauthorized, "character %d is not in guild %d", charID, q.GuildID)
		}
		if effect.QuestBlocked(char.Effects, q.Type, q.Difficulty) {
			return gameerr.New(gameerr.QuestBlocked, "an active effect blocks %s quests of difficulty %d", q.Type, q.Difficulty)
		}
		if err := svc.checkSlots(tx, char); err != nil {
			return err
		}

		if err := saveTransition(tx, q, &next); err != nil {
			return err
		}
		accepted = &next
		return nil
	})
	if err != nil {
		return nil, err
	}
	svc.record(ctx, model.ActivityQuestAccepted, charID, accepted, "accepted %q")
	return accepted, nil
}

func (svc *Service) checkSlots(tx *gorm.DB, char *model.Character) error {
	if svc.slots <= 0 {
		return nil
	}
	limit := int64(svc.slots + effect.Compose(char.Effects).ExtraQuestSlots)
	var held int64
	if err := tx.Model(&model.Quest{}).
		Where("assigned_char_id = ? AND status = ?", char.ID, model.QuestInProgress).
		Count(&held).Error; err != nil {
		return fmt.Errorf("quest: count held: %w", err)
	}
	if held >= limit {
		return gameerr.New(gameerr.QuestBlocked, "character %d already holds %d of %d quests", char.ID, held, limit)
	}
	return nil
}

// CompleteQuest marks the character's IN_PROGRESS quest as done.
func (svc *Service) CompleteQuest(ctx context.Context, questID, charID int64) (*model.Quest, error) {
	q, err := svc.simpleTransition(ctx, questID, func(next *model.Quest) error {
		return Complete(next, charID, svc.now().UTC())
	})
	if err != nil {
		return nil, err
	}
	svc.record(ctx, model.ActivityQuestCompleted, charID, q, "completed %q, awaiting approval")
	return q, nil
}

// AbandonQuest hands the character's IN_PROGRESS quest back to the board.
func (svc *Service) AbandonQuest(ctx context.Context, questID, charID int64) (*model.Quest, error) {
	q, err := svc.simpleTransition(ctx, questID, func(next *model.Quest) error {
		return Abandon(next, charID)
	})
	if err != nil {
		return nil, err
	}
	svc.record(ctx, model.ActivityQuestAbandoned, charID, q, "abandoned %q")
	return q, nil
}

func (svc *Service) simpleTransition(ctx context.Context, questID int64, apply func(*model.Quest) error) (*model.Quest, error) {
	var out *model.Quest
	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadQuest(tx, questID)
		if err != nil {
			return err
		}
		next := *q
		if err := apply(&next); err != nil {
			return err
		}
		if err := saveTransition(tx, q, &next); err != nil {
			return err
		}
		out = &next
		return nil
	})
	return out, err
}

// ApproveQuest finalizes a COMPLETED quest and credits the effect-modified
// reward to its assignee. The quest transition and the character update
// commit together or not at all, and the reward is applied at most once
// even when approvals race.
func (svc *Service) ApproveQuest(ctx context.Context, questID, callerCharID int64) (*ApproveResult, error) {
	q, err := loadQuest(svc.db.WithContext(ctx), questID)
	if err != nil {
		return nil, err
	}
	role, err := svc.roles.RoleOf(ctx, q.GuildID, callerCharID)
	if err != nil {
		return nil, err
	}

	var result *ApproveResult
	err = svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q, err := loadQuest(tx, questID)
		if err != nil {
			return err
		}
		next := *q
		if err := Approve(&next, role, svc.now().UTC()); err != nil {
			return err
		}
		if next.AssignedCharID == nil {
			return gameerr.New(gameerr.InvalidTransition, "quest %d has no assignee", q.ID)
		}
		char, err := loadCharacter(tx, *next.AssignedCharID)
		if err != nil {
			return err
		}
		applied, err := ledger.Apply(&next, char)
		if err != nil {
			return err
		}

		if err := saveTransition(tx, q, &next); err != nil {
			return err
		}
		if err := saveCharacter(tx, char, &applied.Character); err != nil {
			return err
		}
		result = &ApproveResult{
			Quest:        &next,
			Character:    &applied.Character,
			Applied:      applied.Applied,
			LevelsGained: applied.LevelsGained,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c := result.Character
	svc.logger.Info("quest approved",
		zap.Int64("quest_id", questID),
		zap.Int64("char_id", c.ID),
		zap.Int64("approver_id", callerCharID),
		zap.Int64("exp", result.Applied.Exp),
		zap.Int64("gold", result.Applied.Gold),
		zap.Int("levels_gained", result.LevelsGained))
	svc.sink.Log(audit.Entry{
		TraceID:     audit.TraceIDFrom(ctx),
		Type:        model.ActivityQuestApproved,
		CharID:      c.ID,
		Description: fmt.Sprintf("%q approved", result.Quest.Title),
		Metadata: map[string]interface{}{
			"quest_id":    questID,
			"approver_id": callerCharID,
			"applied":     result.Applied,
		},
	})
	if result.LevelsGained > 0 {
		svc.sink.Log(audit.Entry{
			TraceID:     audit.TraceIDFrom(ctx),
			Type:        model.ActivityLevelUp,
			CharID:      c.ID,
			Description: fmt.Sprintf("reached level %d", c.Level),
			Metadata:    map[string]interface{}{"level": c.Level, "gained": result.LevelsGained},
		})
	}
	if svc.board != nil {
		svc.board.Record(ctx, c.ID, c.TotalGoldEarned)
	}
	return result, nil
}

func (svc *Service) record(ctx context.Context, typ model.ActivityType, charID int64, q *model.Quest, format string) {
	svc.logger.Info("quest transition",
		zap.Int64("quest_id", q.ID),
		zap.Int64("char_id", charID),
		zap.String("status", string(q.Status)))
	svc.sink.Log(audit.Entry{
		TraceID:     audit.TraceIDFrom(ctx),
		Type:        typ,
		CharID:      charID,
		Description: fmt.Sprintf(format, q.Title),
		Metadata:    map[string]interface{}{"quest_id": q.ID},
	})
}

func loadQuest(db *gorm.DB, id int64) (*model.Quest, error) {
	var q model.Quest
	if err := db.First(&q, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gameerr.New(gameerr.NotFound, "quest %d", id)
		}
		return nil, fmt.Errorf("quest: load %d: %w", id, err)
	}
	return &q, nil
}

func loadCharacter(db *gorm.DB, id int64) (*model.Character, error) {
	var c model.Character
	err := db.Preload("Effects", func(db *gorm.DB) *gorm.DB {
		return db.Order("created_at ASC, id ASC")
	}).First(&c, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gameerr.New(gameerr.NotFound, "character %d", id)
		}
		return nil, fmt.Errorf("quest: load character %d: %w", id, err)
	}
	return &c, nil
}

// saveTransition writes next over prev only if the row still has prev's
// status and version. Losing that race means another transition committed
// first, which makes this one invalid.
func saveTransition(tx *gorm.DB, prev, next *model.Quest) error {
	next.Version = prev.Version + 1
	next.UpdatedAt = time.Now().UTC()
	res := tx.Model(&model.Quest{}).
		Where("id = ? AND status = ? AND version = ?", prev.ID, prev.Status, prev.Version).
		Updates(map[string]interface{}{
			"status":           next.Status,
			"assigned_char_id": next.AssignedCharID,
			"started_at":       next.StartedAt,
			"completed_at":     next.CompletedAt,
			"approved_at":      next.ApprovedAt,
			"version":          next.Version,
			"updated_at":       next.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("quest: save %d: %w", prev.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gameerr.New(gameerr.InvalidTransition, "quest %d changed concurrently", prev.ID)
	}
	return nil
}

func saveCharacter(tx *gorm.DB, prev, next *model.Character) error {
	next.Version = prev.Version + 1
	next.UpdatedAt = time.Now().UTC()
	res := tx.Model(&model.Character{}).
		Where("id = ? AND version = ?", prev.ID, prev.Version).
		Updates(map[string]interface{}{
			"level":             next.Level,
			"exp":               next.Exp,
			"bronze":            next.Bronze,
			"silver":            next.Silver,
			"gold":              next.Gold,
			"completed_quests":  next.CompletedQuests,
			"total_gold_earned": next.TotalGoldEarned,
			"version":           next.Version,
			"updated_at":        next.UpdatedAt,
		})
	if res.Error != nil {
		return fmt.Errorf("quest: save character %d: %w", prev.ID, res.Error)
	}
	if res.RowsAffected == 0 {
		return gameerr.New(gameerr.Conflict, "character %d changed concurrently", prev.ID)
	}
	return nil
}
