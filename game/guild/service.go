// Package guild resolves guild membership and roles.
package guild

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hearthguild/server/cache"
	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service answers role lookups, caching them for ttl.
type Service struct {
	db     *gorm.DB
	cache  cache.Cache
	ttl    time.Duration
	logger *zap.Logger
}

// NewService creates a guild Service.
func NewService(db *gorm.DB, c cache.Cache, ttl time.Duration, logger *zap.Logger) *Service {
	return &Service{db: db, cache: c, ttl: ttl, logger: logger}
}

func roleKey(guildID, charID int64) string {
	return fmt.Sprintf("guild:role:%d:%d", guildID, charID)
}

// RoleOf returns the character's role in the guild, or "" when the
// character is not a member.
func (svc *Service) RoleOf(ctx context.Context, guildID, charID int64) (model.GuildRole, error) {
	key := roleKey(guildID, charID)
	if v, err := svc.cache.Get(ctx, key); err == nil {
		return model.GuildRole(v), nil
	} else if !errors.Is(err, cache.ErrNotFound) {
		svc.logger.Warn("role cache read failed", zap.String("key", key), zap.Error(err))
	}

	var m model.GuildMember
	err := svc.db.WithContext(ctx).
		Where("guild_id = ? AND char_id = ?", guildID, charID).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("guild: role of %d in %d: %w", charID, guildID, err)
	}

	if err := svc.cache.Set(ctx, key, string(m.Role), svc.ttl); err != nil {
		svc.logger.Warn("role cache write failed", zap.String("key", key), zap.Error(err))
	}
	return m.Role, nil
}

// SetRole adds the character to the guild or changes its role.
func (svc *Service) SetRole(ctx context.Context, guildID, charID int64, role model.GuildRole) error {
	m := model.GuildMember{GuildID: guildID, CharID: charID, Role: role}
	err := svc.db.WithContext(ctx).
		Where(model.GuildMember{GuildID: guildID, CharID: charID}).
		Assign(model.GuildMember{Role: role}).
		FirstOrCreate(&m).Error
	if err != nil {
		return fmt.Errorf("guild: set role: %w", err)
	}
	if err := svc.cache.Del(ctx, roleKey(guildID, charID)); err != nil {
		svc.logger.Warn("role cache invalidate failed", zap.Error(err))
	}
	return nil
}

// Members lists the guild's members with their roles.
func (svc *Service) Members(ctx context.Context, guildID int64) ([]model.GuildMember, error) {
	var members []model.GuildMember
	err := svc.db.WithContext(ctx).
		Where("guild_id = ?", guildID).
		Order("char_id ASC").
		Find(&members).Error
	if err != nil {
		return nil, fmt.Errorf("guild: members: %w", err)
	}
	return members, nil
}
