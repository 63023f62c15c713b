package task

import (
	"context"
	"log/slog"
	"time"

	taskrepo "github.com/sumaro2101/EasyLibrary/repository/task"
)

// BeatRepo is the slice of the periodic-task store the beat loop uses.
type BeatRepo interface {
	Due(ctx context.Context, now time.Time) ([]taskrepo.PeriodicTask, error)
	Advance(ctx context.Context, id int64, next time.Time) error
}

// Beat periodically publishes mail tasks for due reminder rows and
// pushes their next-fire time forward by one interval.
type Beat struct {
	r   BeatRepo
	p   Publisher
	log *slog.Logger
}

func NewBeat(r BeatRepo, p Publisher, log *slog.Logger) *Beat {
	return &Beat{r: r, p: p, log: log}
}

func (b *Beat) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			b.Tick(ctx, time.Now())
		}
	}
}

func (b *Beat) Tick(ctx context.Context, now time.Time) {
	due, err := b.r.Due(ctx, now)
	if err != nil {
		b.log.Error("beat: listing due tasks", "err", err)
		return
	}
	for _, t := range due {
		if err := b.p.Publish(ctx, t.Kwargs); err != nil {
			// Leave start_time in the past so the next tick retries.
			b.log.Error("beat: publish failed", "task", t.Name, "err", err)
			continue
		}
		next := t.StartTime.Add(t.Interval())
		// Skip firings missed while the process was down.
		for !next.After(now) {
			next = next.Add(t.Interval())
		}
		if err := b.r.Advance(ctx, t.ID, next); err != nil {
			b.log.Error("beat: advance failed", "task", t.Name, "err", err)
		}
	}
}
