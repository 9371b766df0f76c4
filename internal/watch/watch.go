// File: internal/watch/watch.go
package watch

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/hpcloud/tail"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/nullpath9/droidforge/internal/config"
	"github.com/nullpath9/droidforge/internal/diagnosis"
)

// defaultQuietPeriod closes an incident left open once the log goes quiet.
// Compilers emit a diagnostic in one burst, so a pause means it is done.
const defaultQuietPeriod = 2 * time.Second

// Watcher tails a build log as it is written and classifies incidents the
// moment they close, instead of waiting for the build to finish.
type Watcher struct {
	logger      *zap.Logger
	table       diagnosis.Table
	logPath     string
	poll        bool
	limiter     *rate.Limiter
	quietPeriod time.Duration
	emit        func(diagnosis.ClassifiedIncident)
}

// New creates a watcher for the given log path. The emit callback receives
// incidents live, throttled to cfg.PrintRate per second; emit may be nil.
func New(logPath string, table diagnosis.Table, cfg config.WatchConfig, logger *zap.Logger, emit func(diagnosis.ClassifiedIncident)) *Watcher {
	if logger == nil {
		logger = zap.NewNop()
	}

	burst := int(math.Ceil(cfg.PrintRate))
	if burst < 1 {
		burst = 1
	}

	return &Watcher{
		logger:      logger.Named("watch"),
		table:       table,
		logPath:     logPath,
		poll:        cfg.Poll,
		limiter:     rate.NewLimiter(rate.Limit(cfg.PrintRate), burst),
		quietPeriod: defaultQuietPeriod,
		emit:        emit,
	}
}

// Run tails the log until ctx is cancelled or the tailer stops, and returns
// every incident seen, in log order. The log file may not exist yet when
// Run starts; the tailer waits for it to appear.
func (w *Watcher) Run(ctx context.Context) ([]diagnosis.ClassifiedIncident, error) {
	t, err := tail.TailFile(w.logPath, tail.Config{
		Follow: true,
		ReOpen: true,
		Poll:   w.poll,
		Logger: tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to tail build log: %w", err)
	}
	defer func() {
		t.Stop()
		t.Cleanup()
	}()

	w.logger.Info("Watching build log.", zap.String("path", w.logPath))

	seg := diagnosis.NewSegmenter()
	var incidents []diagnosis.ClassifiedIncident

	record := func(in diagnosis.Incident) {
		ci := diagnosis.ClassifiedIncident{
			Ordinal:        len(incidents) + 1,
			Incident:       in,
			Classification: w.table.Classify(in.Text()),
		}
		incidents = append(incidents, ci)

		// Live printing is best effort under load; the final summary
		// carries every incident regardless.
		if w.emit != nil && w.limiter.Allow() {
			w.emit(ci)
		}
	}

	timeout := time.NewTimer(w.quietPeriod)
	if !timeout.Stop() {
		<-timeout.C
	}

	for {
		select {
		case <-ctx.Done():
			if in, ok := seg.Flush(); ok {
				record(in)
			}
			w.logger.Info("Stopping build log watcher.", zap.Int("incidents", len(incidents)))
			return incidents, nil

		case line, ok := <-t.Lines:
			if !ok {
				if in, ok := seg.Flush(); ok {
					record(in)
				}
				w.logger.Info("Build log tailer channel closed.")
				return incidents, nil
			}
			if line.Err != nil {
				w.logger.Warn("Error reading from build log", zap.Error(line.Err))
				continue
			}

			if in, ok := seg.Feed(line.Text); ok {
				record(in)
			}
			if seg.Open() {
				timeout.Reset(w.quietPeriod)
			} else if !timeout.Stop() {
				select {
				case <-timeout.C:
				default:
				}
			}

		case <-timeout.C:
			if in, ok := seg.Flush(); ok {
				record(in)
			}
		}
	}
}
