// Package ranking keeps the guild gold leaderboard in a cache sorted set.
// The set is rebuilt from the database before it is first read, and the
// database answers whenever the set is unreachable.
package ranking

import (
	"context"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/hearthguild/server/cache"
	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// GoldKey is the sorted set holding total gold earned per character.
const GoldKey = "ranking:gold"

// Entry is one leaderboard row.
type Entry struct {
	Rank            int    `json:"rank"`
	CharID          int64  `json:"char_id"`
	CharName        string `json:"char_name"`
	Level           int    `json:"level"`
	TotalGoldEarned int64  `json:"total_gold_earned"`
}

// Board ranks characters by TotalGoldEarned.
type Board struct {
	db     *gorm.DB
	cache  cache.Cache
	size   int
	logger *zap.Logger

	// warm is set once Refresh has copied the database top into the set.
	// Until then the set may hold only the characters recorded since start.
	warm atomic.Bool
}

// NewBoard creates a Board. size caps both Top and Refresh.
func NewBoard(db *gorm.DB, c cache.Cache, size int, logger *zap.Logger) *Board {
	if size <= 0 {
		size = 100
	}
	return &Board{db: db, cache: c, size: size, logger: logger}
}

// Record updates a character's score. Cache failures are logged only.
func (b *Board) Record(ctx context.Context, charID, totalGold int64) {
	if err := b.cache.ZAdd(ctx, GoldKey, float64(totalGold), strconv.FormatInt(charID, 10)); err != nil {
		b.logger.Warn("ranking update failed", zap.Int64("char_id", charID), zap.Error(err))
	}
}

// Top returns up to limit entries, highest first.
func (b *Board) Top(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 || limit > b.size {
		limit = b.size
	}

	if !b.warm.Load() {
		if _, err := b.Refresh(ctx); err != nil {
			b.logger.Warn("ranking warm-up failed, using database", zap.Error(err))
		}
	}

	members, err := b.cache.ZRevRange(ctx, GoldKey, 0, int64(limit-1))
	if err == nil && len(members) > 0 && b.warm.Load() {
		entries := make([]Entry, 0, len(members))
		for _, m := range members {
			charID, err := strconv.ParseInt(m.Member, 10, 64)
			if err != nil {
				continue
			}
			entries = append(entries, Entry{
				Rank:            len(entries) + 1,
				CharID:          charID,
				TotalGoldEarned: int64(m.Score),
			})
		}
		if err := b.enrich(ctx, entries); err != nil {
			return nil, err
		}
		return entries, nil
	}
	if err != nil {
		b.logger.Warn("ranking cache read failed, using database", zap.Error(err))
	}

	chars, err := b.load(ctx, limit)
	if err != nil {
		return nil, err
	}
	entries := make([]Entry, len(chars))
	for i, ch := range chars {
		entries[i] = Entry{
			Rank:            i + 1,
			CharID:          ch.ID,
			CharName:        ch.Name,
			Level:           ch.Level,
			TotalGoldEarned: ch.TotalGoldEarned,
		}
		b.Record(ctx, ch.ID, ch.TotalGoldEarned)
	}
	return entries, nil
}

// Refresh rebuilds the sorted set from the database and returns the
// number of characters written.
func (b *Board) Refresh(ctx context.Context) (int, error) {
	chars, err := b.load(ctx, b.size)
	if err != nil {
		return 0, err
	}
	for _, ch := range chars {
		if err := b.cache.ZAdd(ctx, GoldKey, float64(ch.TotalGoldEarned), strconv.FormatInt(ch.ID, 10)); err != nil {
			return 0, fmt.Errorf("ranking: refresh: %w", err)
		}
	}
	b.warm.Store(true)
	return len(chars), nil
}

func (b *Board) load(ctx context.Context, limit int) ([]model.Character, error) {
	var chars []model.Character
	err := b.db.WithContext(ctx).
		Select("id, name, level, total_gold_earned").
		Order("total_gold_earned DESC, id ASC").
		Limit(limit).
		Find(&chars).Error
	if err != nil {
		return nil, fmt.Errorf("ranking: load: %w", err)
	}
	return chars, nil
}

func (b *Board) enrich(ctx context.Context, entries []Entry) error {
	if len(entries) == 0 {
		return nil
	}
	ids := make([]int64, len(entries))
	for i, e := range entries {
		ids[i] = e.CharID
	}
	var chars []model.Character
	if err := b.db.WithContext(ctx).Select("id, name, level").Where("id IN ?", ids).Find(&chars).Error; err != nil {
		return fmt.Errorf("ranking: enrich: %w", err)
	}
	byID := make(map[int64]model.Character, len(chars))
	for _, ch := range chars {
		byID[ch.ID] = ch
	}
	for i := range entries {
		if ch, ok := byID[entries[i].CharID]; ok {
			entries[i].CharName = ch.Name
			entries[i].Level = ch.Level
		}
	}
	return nil
}
