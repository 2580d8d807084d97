package session

import (
	"context"
	"log"
	"time"

	"github.com/wricardo/sokoblit/game/engine"
	"github.com/wricardo/sokoblit/game/service"
)

// DefaultResolution is how often the runner wakes up to look for due ticks.
const DefaultResolution = 10 * time.Millisecond

// maxCatchUp bounds the ticks a single wake-up may run for one session.
const maxCatchUp = 10

// SessionSource lists the sessions the runner drives.
type SessionSource interface {
	Realtime() []*service.Session
}

// Runner ticks realtime sessions at their configured rate and pushes the
// resulting views to observers.
type Runner struct {
	sessions   SessionSource
	observers  []service.SessionObserver
	resolution time.Duration
	due        map[*service.Session]time.Time
}

// NewRunner creates a runner over sessions.
func NewRunner(sessions SessionSource, observers ...service.SessionObserver) *Runner {
	return &Runner{
		sessions:   sessions,
		observers:  observers,
		resolution: DefaultResolution,
		due:        make(map[*service.Session]time.Time),
	}
}

// SetResolution changes the wake-up interval. It must be called before Run.
func (r *Runner) SetResolution(d time.Duration) {
	if d > 0 {
		r.resolution = d
	}
}

// Run blocks until ctx is cancelled.
func (r *Runner) Run(ctx context.Context) {
	ticker := time.NewTicker(r.resolution)
	defer ticker.Stop()

	log.Printf("[RUNNER] Started (resolution %s)", r.resolution)
	for {
		select {
		case <-ctx.Done():
			log.Printf("[RUNNER] Stopped")
			return
		case now := <-ticker.C:
			r.Tick(now)
		}
	}
}

// Tick runs every tick that is due at now and returns how many ran.
func (r *Runner) Tick(now time.Time) int {
	active := r.sessions.Realtime()
	seen := make(map[*service.Session]bool, len(active))
	ran := 0

	for _, s := range active {
		seen[s] = true
		period := tickPeriod(s.Config)

		next, ok := r.due[s]
		if !ok {
			next = now
		}

		var events []engine.Event
		var view *engine.View
		steps := 0
		for !next.After(now) && steps < maxCatchUp {
			report, v := s.StepPending()
			events = append(events, report.Events...)
			if v != nil {
				view = v
			}
			next = next.Add(period)
			steps++
		}
		// Too far behind: drop the backlog instead of spinning.
		if !next.After(now) {
			next = now.Add(period)
		}
		r.due[s] = next
		ran += steps

		if view != nil {
			for _, o := range r.observers {
				o.SessionUpdated(s.ID, view, events)
			}
		}
	}

	for s := range r.due {
		if !seen[s] {
			delete(r.due, s)
		}
	}
	return ran
}

func tickPeriod(config *engine.GameConfig) time.Duration {
	rate := engine.DefaultTickRateHz
	if config != nil {
		rate = config.TickRate()
	}
	if rate <= 0 {
		rate = engine.DefaultTickRateHz
	}
	return time.Second / time.Duration(rate)
}
