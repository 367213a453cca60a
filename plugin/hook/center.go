// Package hook lets household plugins react to activity events such as
// level-ups or expiring effects without touching the game services.
package hook

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/hearthguild/server/audit"
	"github.com/hearthguild/server/model"
	"go.uber.org/zap"
)

// ErrInterrupt stops lower-priority hooks for the same event.
var ErrInterrupt = errors.New("hook interrupted")

// Fn handles one activity entry.
type Fn func(ctx context.Context, entry audit.Entry) error

type registration struct {
	priority int
	name     string
	fn       Fn
}

// Center holds hook registrations keyed by activity type.
type Center struct {
	mu    sync.RWMutex
	hooks map[model.ActivityType][]*registration
}

// NewCenter creates an empty Center.
func NewCenter() *Center {
	return &Center{hooks: make(map[model.ActivityType][]*registration)}
}

// Register adds fn for event. Lower priority runs first; equal priorities
// run in registration order. name is used by Unregister.
func (c *Center) Register(event model.ActivityType, priority int, name string, fn Fn) {
	c.mu.Lock()
	defer c.mu.Unlock()
	regs := append(c.hooks[event], &registration{priority: priority, name: name, fn: fn})
	sort.SliceStable(regs, func(i, j int) bool { return regs[i].priority < regs[j].priority })
	c.hooks[event] = regs
}

// Unregister removes the hooks named name from event.
func (c *Center) Unregister(event model.ActivityType, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hooks[event] = without(c.hooks[event], name)
}

// UnregisterAll removes the hooks named name from every event.
func (c *Center) UnregisterAll(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for event, regs := range c.hooks {
		c.hooks[event] = without(regs, name)
	}
}

func without(regs []*registration, name string) []*registration {
	out := regs[:0]
	for _, r := range regs {
		if r.name != name {
			out = append(out, r)
		}
	}
	return out
}

// Trigger runs the hooks for entry.Type in priority order. A failing hook
// does not stop the others; their errors are joined. ErrInterrupt stops
// the chain and is returned as is.
func (c *Center) Trigger(ctx context.Context, entry audit.Entry) error {
	c.mu.RLock()
	regs := make([]*registration, len(c.hooks[entry.Type]))
	copy(regs, c.hooks[entry.Type])
	c.mu.RUnlock()

	var errs []error
	for _, r := range regs {
		err := r.fn(ctx, entry)
		if errors.Is(err, ErrInterrupt) {
			return err
		}
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Sink is an audit.Sink that records the entry and then runs its hooks.
// Hooks run on the caller's goroutine and must be quick.
type Sink struct {
	next   audit.Sink
	center *Center
	logger *zap.Logger
}

// NewSink wraps next so every entry also triggers c.
func NewSink(next audit.Sink, c *Center, logger *zap.Logger) *Sink {
	if next == nil {
		next = audit.Discard
	}
	return &Sink{next: next, center: c, logger: logger}
}

// Log implements audit.Sink.
func (s *Sink) Log(entry audit.Entry) {
	s.next.Log(entry)
	ctx := audit.WithTraceID(context.Background(), entry.TraceID)
	if err := s.center.Trigger(ctx, entry); err != nil && !errors.Is(err, ErrInterrupt) {
		s.logger.Warn("activity hook failed",
			zap.String("type", string(entry.Type)),
			zap.Int64("char_id", entry.CharID),
			zap.Error(err))
	}
}
