package effect

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/game/gameerr"
	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

// DayLayout formats the calendar day used to guard daily ticks.
const DayLayout = "2006-01-02"

// Day returns the tick day for t.
func Day(t time.Time) string { return t.Format(DayLayout) }

// Service grants effects and runs the daily duration tick.
type Service struct {
	db      *gorm.DB
	sink    audit.Sink
	workers int
	logger  *zap.Logger
	now     func() time.Time
}

// NewService creates an effect Service. workers bounds the number of
// characters ticked in parallel.
func NewService(db *gorm.DB, sink audit.Sink, workers int, logger *zap.Logger) *Service {
	if workers <= 0 {
		workers = 1
	}
	if sink == nil {
		sink = audit.Discard
	}
	return &Service{db: db, sink: sink, workers: workers, logger: logger, now: time.Now}
}

// Grant validates e and attaches it to the character. A zero Duration
// starts the effect at MaxDuration.
func (svc *Service) Grant(ctx context.Context, charID int64, e *model.Effect) (*model.Effect, error) {
	if e.Duration == 0 {
		e.Duration = e.MaxDuration
	}
	if err := Validate(e); err != nil {
		return nil, err
	}
	var char model.Character
	if err := svc.db.WithContext(ctx).Select("id").First(&char, charID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gameerr.New(gameerr.NotFound, "character %d", charID)
		}
		return nil, fmt.Errorf("effect: load character: %w", err)
	}

	e.ID = 0
	e.CharID = charID
	e.CreatedAt = svc.now().UTC()
	if err := svc.db.WithContext(ctx).Create(e).Error; err != nil {
		return nil, fmt.Errorf("effect: create: %w", err)
	}

	svc.logger.Info("effect granted",
		zap.Int64("char_id", charID),
		zap.Int64("effect_id", e.ID),
		zap.String("type", string(e.Type)),
		zap.Int("duration", e.Duration))
	svc.sink.Log(audit.Entry{
		TraceID:     audit.TraceIDFrom(ctx),
		Type:        model.ActivityEffectGranted,
		CharID:      charID,
		Description: fmt.Sprintf("%s %q applied for %d days", e.Type, e.Name, e.Duration),
		Metadata:    map[string]interface{}{"effect_id": e.ID, "type": e.Type, "duration": e.Duration},
	})
	return e, nil
}

// List returns a character's effects in stacking order. Expired effects
// are included only when all is true.
func (svc *Service) List(ctx context.Context, charID int64, all bool) ([]model.Effect, error) {
	q := svc.db.WithContext(ctx).Where("char_id = ?", charID)
	if !all {
		q = q.Where("duration > 0")
	}
	var effects []model.Effect
	if err := q.Order("created_at ASC, id ASC").Find(&effects).Error; err != nil {
		return nil, fmt.Errorf("effect: list: %w", err)
	}
	return effects, nil
}

// TickCharacter decays the character's effects by one day unless they
// were already ticked on day. It reports whether a tick happened.
func (svc *Service) TickCharacter(ctx context.Context, charID int64, day string) (bool, error) {
	var expired []model.Effect
	ticked := false

	err := svc.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		claim := tx.Model(&model.Character{}).
			Where("id = ? AND (effects_ticked_on IS NULL OR effects_ticked_on <> ?)", charID, day).
			Update("effects_ticked_on", day)
		if claim.Error != nil {
			return claim.Error
		}
		if claim.RowsAffected == 0 {
			return nil
		}
		ticked = true

		var effects []model.Effect
		if err := tx.Where("char_id = ? AND duration > 0", charID).
			Order("created_at ASC, id ASC").Find(&effects).Error; err != nil {
			return err
		}
		for i, e := range Tick(effects) {
			if err := tx.Model(&model.Effect{}).Where("id = ?", e.ID).
				Update("duration", e.Duration).Error; err != nil {
				return err
			}
			if effects[i].IsActive() && !e.IsActive() {
				expired = append(expired, e)
			}
		}
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("effect: tick character %d: %w", charID, err)
	}

	for _, e := range expired {
		svc.sink.Log(audit.Entry{
			TraceID:     audit.TraceIDFrom(ctx),
			Type:        model.ActivityEffectExpired,
			CharID:      charID,
			Description: fmt.Sprintf("%s %q wore off", e.Type, e.Name),
			Metadata:    map[string]interface{}{"effect_id": e.ID},
		})
	}
	return ticked, nil
}

// TickReport summarizes one TickAll run.
type TickReport struct {
	Day     string `json:"day"`
	Ticked  int64  `json:"ticked"`
	Skipped int64  `json:"skipped"`
	Failed  int64  `json:"failed"`
}

// TickAll ticks every character not yet ticked on day. Characters are
// independent, so they are processed in parallel; one failure does not
// stop the rest.
func (svc *Service) TickAll(ctx context.Context, day string) (TickReport, error) {
	report := TickReport{Day: day}
	var ids []int64
	if err := svc.db.WithContext(ctx).Model(&model.Character{}).
		Where("effects_ticked_on IS NULL OR effects_ticked_on <> ?", day).
		Pluck("id", &ids).Error; err != nil {
		return report, fmt.Errorf("effect: list characters: %w", err)
	}

	var ticked, skipped, failed int64
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(svc.workers)
	for _, id := range ids {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			ok, err := svc.TickCharacter(gctx, id, day)
			switch {
			case err != nil:
				atomic.AddInt64(&failed, 1)
				svc.logger.Error("effect tick failed", zap.Int64("char_id", id), zap.Error(err))
			case ok:
				atomic.AddInt64(&ticked, 1)
			default:
				atomic.AddInt64(&skipped, 1)
			}
			return nil
		})
	}
	err := g.Wait()

	report.Ticked, report.Skipped, report.Failed = ticked, skipped, failed
	svc.logger.Info("effect tick finished",
		zap.String("day", day),
		zap.Int64("ticked", ticked),
		zap.Int64("skipped", skipped),
		zap.Int64("failed", failed))
	return report, err
}

// TickToday runs TickAll for the current day.
func (svc *Service) TickToday(ctx context.Context) (TickReport, error) {
	return svc.TickAll(ctx, Day(svc.now()))
}
