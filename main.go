package main

import (
	"context"
	"fmt"
	"os"

	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/cache"
	"github.com/hearthguild/server/config"
	dbadapter "github.com/hearthguild/server/db"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/guild"
	"github.com/hearthguild/server/game/quest"
	"github.com/hearthguild/server/game/ranking"
	"github.com/hearthguild/server/game/shop"
	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/plugin/hook"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var cfgPath string

var rootCmd = &cobra.Command{
	Use:   "hearth",
	Short: "Hearthguild household quest server",
	Long: `Hearthguild turns household chores into guild quests.
Members accept quests, guildmasters approve finished work, and approved
quests pay experience and coins shaped by the member's active effects.`,
	SilenceUsage: true,
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "config/config.yaml", "config file path (empty for defaults and HEARTH_* env only)")
	rootCmd.AddCommand(
		serveCmd(),
		migrateCmd(),
		seedCmd(),
		tickCmd(),
		tokenCmd(),
		statusCmd(),
		questsCmd(),
	)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

// app holds the wired services shared by all commands.
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *gorm.DB
	cache  cache.Cache
	audit  *audit.Service
	hooks  *hook.Center

	guilds  *guild.Service
	effects *effect.Service
	quests  *quest.Service
	shop    *shop.Service
	board   *ranking.Board
}

func newApp() (*app, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	var logger *zap.Logger
	if cfg.Server.Debug {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return nil, fmt.Errorf("logger: %w", err)
	}

	db, err := dbadapter.Open(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("db: %w", err)
	}
	if err := model.AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("db migrate: %w", err)
	}
	logger.Debug("DB initialized", zap.String("mode", cfg.Database.Mode))

	c, err := cache.NewCache(cache.CacheConfig{
		RedisAddr:       cfg.Cache.RedisAddr,
		RedisPassword:   cfg.Cache.RedisPassword,
		RedisDB:         cfg.Cache.RedisDB,
		LocalGCInterval: cfg.Cache.LocalGCInterval,
	})
	if err != nil {
		return nil, fmt.Errorf("cache: %w", err)
	}

	a := &app{cfg: cfg, logger: logger, db: db, cache: c, audit: audit.New(db, logger), hooks: hook.NewCenter()}
	sink := hook.NewSink(a.audit, a.hooks, logger)

	a.guilds = guild.NewService(db, c, cfg.Game.RoleCacheTTL, logger)
	a.effects = effect.NewService(db, sink, cfg.Game.EffectTickWorkers, logger)
	a.board = ranking.NewBoard(db, c, cfg.Game.LeaderboardSize, logger)
	a.quests = quest.NewService(db, a.guilds, sink, a.board, cfg.Game.QuestSlots, logger)
	a.shop = shop.NewService(db, sink, logger)
	return a, nil
}

// Close flushes pending activity and releases the database.
func (a *app) Close() {
	a.audit.Stop(context.Background())
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = a.logger.Sync()
}
