// Package retention prunes expired execution logs from the store.
//
// The janitor runs as a background goroutine on a fixed interval and
// deletes agent logs older than the configured retention window. With
// an archiver set, expired logs are written out before they are purged;
// archive failures are fail-safe: logs are NOT deleted if archiving
// fails.
package retention

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/milan-ai/milan-core/internal/store"
	"github.com/milan-ai/milan-core/pkg/models"
)

// archiveBatchSize is the max records per archive write.
const archiveBatchSize = 1000

// Archiver writes expired logs to a durable location before purge.
type Archiver interface {
	Kind() string
	ArchiveAgentLogs(ctx context.Context, logs []models.AgentLog) (string, error)
}

// Janitor periodically purges agent logs older than the retention window.
type Janitor struct {
	store    store.Store
	days     int
	interval time.Duration
	archiver Archiver

	now func() time.Time
}

// NewJanitor creates a janitor that keeps days worth of logs and
// sweeps on the given interval.
func NewJanitor(s store.Store, days int, interval time.Duration) *Janitor {
	if interval < time.Minute {
		interval = time.Hour
	}
	return &Janitor{
		store:    s,
		days:     days,
		interval: interval,
		now:      time.Now,
	}
}

// SetArchiver enables archive-before-purge with the given driver.
func (j *Janitor) SetArchiver(a Archiver) {
	j.archiver = a
}

// Start runs the janitor until ctx is canceled. The first sweep runs
// immediately.
func (j *Janitor) Start(ctx context.Context) {
	event := log.Info().
		Int("retention_days", j.days).
		Dur("interval", j.interval)
	if j.archiver != nil {
		event = event.Str("archiver", j.archiver.Kind())
	}
	event.Msg("🧹 Retention janitor started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.sweep(ctx)

	for {
		select {
		case <-ctx.Done():
			log.Info().Msg("Retention janitor stopped")
			return
		case <-ticker.C:
			j.sweep(ctx)
		}
	}
}

func (j *Janitor) sweep(ctx context.Context) {
	start := j.now()
	purged, archived, err := j.RunCycle(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("Retention cycle failed")
		return
	}
	if purged > 0 || archived > 0 {
		log.Info().
			Int64("purged", purged).
			Int("archived", archived).
			Dur("elapsed", time.Since(start)).
			Msg("Retention cycle complete")
	}
}

// RunCycle performs one sweep: archive expired logs (if an archiver is
// set), then purge them. Returns how many logs were purged and archived.
func (j *Janitor) RunCycle(ctx context.Context) (int64, int, error) {
	if j.days <= 0 {
		return 0, 0, nil
	}
	cutoff := j.now().UTC().AddDate(0, 0, -j.days)

	var purged int64
	archived := 0
	if j.archiver != nil {
		for {
			batch, err := j.store.ListAgentLogsBefore(ctx, cutoff, archiveBatchSize)
			if err != nil {
				return 0, archived, fmt.Errorf("list expired logs: %w", err)
			}
			if len(batch) == 0 {
				break
			}

			uri, err := j.archiver.ArchiveAgentLogs(ctx, batch)
			if err != nil {
				// Fail-safe: leave the data in the hot store.
				return 0, archived, fmt.Errorf("archive expired logs: %w", err)
			}
			archived += len(batch)

			log.Debug().
				Int("count", len(batch)).
				Str("uri", uri).
				Msg("Archived expired agent logs")

			// Purge the archived batch before fetching the next one, so
			// the list query does not return the same rows again.
			batchEnd := batch[len(batch)-1].CreatedAt.Add(time.Millisecond)
			if batchEnd.After(cutoff) {
				batchEnd = cutoff
			}
			n, err := j.store.DeleteAgentLogsBefore(ctx, batchEnd)
			if err != nil {
				return purged, archived, fmt.Errorf("purge archived logs: %w", err)
			}
			purged += n
		}
	}

	n, err := j.store.DeleteAgentLogsBefore(ctx, cutoff)
	if err != nil {
		return purged, archived, fmt.Errorf("purge expired logs: %w", err)
	}
	return purged + n, archived, nil
}
