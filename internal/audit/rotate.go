package audit

import (
	"log/slog"
	"time"

	robfigcron "github.com/robfig/cron/v3"
)

// Rotator renames the active audit file on a cron schedule so long-running
// deployments do not accumulate one unbounded file.
type Rotator struct {
	log  *Log
	cron *robfigcron.Cron
}

// NewRotator schedules rotation of l per spec (standard 5-field cron
// expression, e.g. "0 0 * * *" for daily at midnight).
func NewRotator(l *Log, spec string) (*Rotator, error) {
	c := robfigcron.New()
	r := &Rotator{log: l, cron: c}
	if _, err := c.AddFunc(spec, r.rotateNow); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Rotator) rotateNow() {
	suffix := time.Now().UTC().Format("2006-01-02")
	if err := r.log.rotate(suffix); err != nil {
		slog.Error("audit rotation failed", "path", r.log.Path(), "err", err)
		return
	}
	slog.Info("audit log rotated", "path", r.log.Path(), "suffix", suffix)
}

// Start begins the schedule in its own goroutine.
func (r *Rotator) Start() { r.cron.Start() }

// Stop halts the schedule; a rotation already running completes.
func (r *Rotator) Stop() { r.cron.Stop() }
