// Package watcher polls the store for newly submitted intake requests on an
// aligned interval and raises a desktop notification when new ones arrive.
package watcher

import (
	"context"
	"fmt"
	"time"

	"intakr/internal/config"
	"intakr/internal/intake"
	"intakr/internal/store"
)

const lastPollKey = "watcher_last_poll"

type Watcher struct {
	cfg *config.Config
	svc *intake.Service
	db  *store.DB
}

func New(cfg *config.Config, svc *intake.Service, db *store.DB) *Watcher {
	return &Watcher{cfg: cfg, svc: svc, db: db}
}

func (w *Watcher) Run(ctx context.Context) error {
	if err := w.writePID(); err != nil {
		return fmt.Errorf("writing PID file: %w", err)
	}
	defer w.removePID()

	interval := time.Duration(w.cfg.Watch.IntervalMinutes) * time.Minute
	if interval <= 0 {
		interval = 15 * time.Minute
	}

	fmt.Printf("Watcher started (interval: %s)\n", interval)

	// Report anything already waiting before settling into the loop.
	w.check(ctx)

	for {
		nextTick := nextAlignedTick(time.Now(), interval)

		select {
		case <-ctx.Done():
			fmt.Println("\nWatcher stopped.")
			return nil
		case <-time.After(time.Until(nextTick)):
		}

		w.check(ctx)
	}
}

func (w *Watcher) check(ctx context.Context) {
	pending, err := w.svc.Pending(ctx)
	if err != nil {
		fmt.Printf("Error listing pending requests: %v\n", err)
		return
	}

	lastPoll := w.readLastPoll()
	var fresh []intake.Request
	for _, r := range pending {
		if r.CreatedAt.After(lastPoll) {
			fresh = append(fresh, r)
		}
	}

	if len(fresh) > 0 {
		fmt.Printf("%d new project request(s):\n", len(fresh))
		for _, r := range fresh {
			fmt.Printf("  %s  %s (by %s)\n", r.ID, r.ProjectName, r.RequestedBy)
		}
		if w.cfg.Notifications.Enabled {
			SendNotification("intakr",
				fmt.Sprintf("%d new project request(s) awaiting review", len(fresh)))
		}
	}

	if err := w.db.SetState(lastPollKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		fmt.Printf("Error saving poll cursor: %v\n", err)
	}
}

func (w *Watcher) readLastPoll() time.Time {
	raw, err := w.db.GetState(lastPollKey)
	if err != nil || raw == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}

func nextAlignedTick(now time.Time, interval time.Duration) time.Time {
	mins := int(interval.Minutes())
	if mins <= 0 {
		mins = 15
	}

	currentMinute := now.Minute()
	nextMinute := ((currentMinute / mins) + 1) * mins

	next := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, now.Location())
	return next.Add(time.Duration(nextMinute) * time.Minute)
}
