package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	apirest "github.com/hearthguild/server/api/rest"
	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/model"
	"github.com/hearthguild/server/scheduler"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	effectTickTask     = "effect_tick"
	rankingRefreshTask = "ranking_refresh"

	// startupTickDelay lets the server come up before the first catch-up
	// tick and ranking rebuild.
	startupTickDelay = 5 * time.Second
	shutdownTimeout  = 10 * time.Second
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and background jobs",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			return a.serve(cmd.Context())
		},
	}
}

func (a *app) serve(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := a.logger
	if a.cfg.Server.AdminKey == "" {
		logger.Warn("server.admin_key is not set; admin endpoints are disabled")
	}
	if a.cfg.Security.JWTSecret == "" {
		logger.Warn("security.jwt_secret is not set; no token will validate")
	}

	a.registerHooks()

	sched := scheduler.New(logger)
	defer sched.Stop()

	sched.AddTicker(effectTickTask, a.cfg.Game.EffectTickInterval, func(ctx context.Context) error {
		_, err := a.effects.TickToday(ctx)
		return err
	})
	sched.AddDelay(effectTickTask, startupTickDelay)
	sched.AddTicker(rankingRefreshTask, a.cfg.Game.RankingRefresh, func(ctx context.Context) error {
		_, err := a.board.Refresh(ctx)
		return err
	})
	sched.AddDelay(rankingRefreshTask, startupTickDelay)

	if !a.cfg.Server.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	r := apirest.NewRouter(apirest.Deps{
		DB:        a.db,
		Quests:    a.quests,
		Effects:   a.effects,
		Guilds:    a.guilds,
		Shop:      a.shop,
		Ranking:   a.board,
		Activity:  a.audit,
		Scheduler: sched,
		Logger:    logger,
	}, a.cfg.Server, a.cfg.Security)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.cfg.Server.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}

// registerHooks announces milestones in the server log.
func (a *app) registerHooks() {
	announce := func(msg string) func(context.Context, audit.Entry) error {
		return func(ctx context.Context, e audit.Entry) error {
			a.logger.Info(msg,
				zap.Int64("char_id", e.CharID),
				zap.String("trace_id", audit.TraceIDFrom(ctx)),
				zap.String("detail", e.Description))
			return nil
		}
	}
	a.hooks.Register(model.ActivityLevelUp, 100, "announce", announce("level up"))
	a.hooks.Register(model.ActivityEffectExpired, 100, "announce", announce("effect expired"))
}
