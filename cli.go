package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/hearthguild/server/catalog"
	"github.com/hearthguild/server/game/effect"
	"github.com/hearthguild/server/game/progression"
	"github.com/hearthguild/server/game/shop"
	mw "github.com/hearthguild/server/middleware"
	"github.com/hearthguild/server/model"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()
			fmt.Printf("schema up to date (%s)\n", a.cfg.Database.Mode)
			return nil
		},
	}
}

func seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed <catalog.yaml>",
		Short: "Load a household catalog (guild, members, quests, shop, effects)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := catalog.Load(args[0])
			if err != nil {
				return err
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			res, err := catalog.Seed(cmd.Context(), a.db, c)
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"Guild", "Members", "Quests", "Items", "Effects"})
			tw.AppendRow(table.Row{res.GuildID, res.Members, res.Quests, res.Items, res.Effects})
			tw.Render()
			return nil
		},
	}
}

func tickCmd() *cobra.Command {
	var day string
	cmd := &cobra.Command{
		Use:   "tick",
		Short: "Run the daily effect tick once",
		RunE: func(cmd *cobra.Command, args []string) error {
			if day == "" {
				day = effect.Day(time.Now())
			} else if _, err := time.Parse(effect.DayLayout, day); err != nil {
				return fmt.Errorf("--day must be YYYY-MM-DD: %w", err)
			}
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			report, err := a.effects.TickAll(cmd.Context(), day)
			if err != nil {
				return err
			}
			fmt.Printf("%s: ticked=%d skipped=%d failed=%d\n", report.Day, report.Ticked, report.Skipped, report.Failed)
			return nil
		},
	}
	cmd.Flags().StringVar(&day, "day", "", "day to tick as YYYY-MM-DD (default today)")
	return cmd
}

func tokenCmd() *cobra.Command {
	var charID int64
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token for a character",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			var ch model.Character
			if err := a.db.WithContext(cmd.Context()).First(&ch, charID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("character %d not found", charID)
				}
				return err
			}
			tok, err := mw.GenerateToken(ch.ID, a.cfg.Security.JWTSecret, a.cfg.Security.JWTTTL)
			if err != nil {
				return err
			}
			fmt.Println(tok)
			return nil
		},
	}
	cmd.Flags().Int64Var(&charID, "char", 0, "character id")
	_ = cmd.MarkFlagRequired("char")
	return cmd
}

func statusCmd() *cobra.Command {
	var charID int64
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show a character sheet with active effects",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			ctx := cmd.Context()
			var ch model.Character
			if err := a.db.WithContext(ctx).First(&ch, charID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return fmt.Errorf("character %d not found", charID)
				}
				return err
			}
			effects, err := a.effects.List(ctx, ch.ID, false)
			if err != nil {
				return err
			}
			cur, need := progression.Progress(&ch)
			mods := effect.Compose(effects)

			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.SetTitle(ch.Name)
			tw.AppendRows([]table.Row{
				{"Level", ch.Level},
				{"Exp", fmt.Sprintf("%d / %d", cur, need)},
				{"Coins", fmt.Sprintf("%dg %ds %db", ch.Gold, ch.Silver, ch.Bronze)},
				{"Completed quests", ch.CompletedQuests},
				{"Gold earned", ch.TotalGoldEarned},
				{"XP factor", fmt.Sprintf("%.2f", mods.XPFactor)},
				{"Coin factor", fmt.Sprintf("%.2f", mods.CoinFactor)},
				{"Shop", shopState(shop.IsBlocked(effects))},
			})
			tw.Render()

			if len(effects) == 0 {
				return nil
			}
			et := table.NewWriter()
			et.SetOutputMirror(os.Stdout)
			et.AppendHeader(table.Row{"Effect", "Type", "Days left", "Max"})
			for _, e := range effects {
				et.AppendRow(table.Row{e.Name, e.Type, e.Duration, e.MaxDuration})
			}
			et.Render()
			return nil
		},
	}
	cmd.Flags().Int64Var(&charID, "char", 0, "character id")
	_ = cmd.MarkFlagRequired("char")
	return cmd
}

func shopState(blocked bool) string {
	if blocked {
		return "blocked"
	}
	return "open"
}

func questsCmd() *cobra.Command {
	var (
		guildID int64
		status  string
	)
	cmd := &cobra.Command{
		Use:   "quests",
		Short: "List a guild's quest board",
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := newApp()
			if err != nil {
				return err
			}
			defer a.Close()

			quests, err := a.quests.ListQuests(cmd.Context(), guildID, model.QuestStatus(status))
			if err != nil {
				return err
			}
			tw := table.NewWriter()
			tw.SetOutputMirror(os.Stdout)
			tw.AppendHeader(table.Row{"ID", "Title", "Type", "Diff", "Status", "Assignee", "Reward"})
			for _, q := range quests {
				assignee := "-"
				if q.AssignedCharID != nil {
					assignee = fmt.Sprint(*q.AssignedCharID)
				}
				r := q.Reward
				tw.AppendRow(table.Row{
					q.ID, q.Title, q.Type, q.Difficulty, q.Status, assignee,
					fmt.Sprintf("%dxp %dg %ds %db", r.Exp, r.Gold, r.Silver, r.Bronze),
				})
			}
			tw.Render()
			return nil
		},
	}
	cmd.Flags().Int64Var(&guildID, "guild", 0, "guild id")
	cmd.Flags().StringVar(&status, "status", "", "filter by status (AVAILABLE, IN_PROGRESS, COMPLETED, APPROVED)")
	_ = cmd.MarkFlagRequired("guild")
	return cmd
}
