// Package pipeline drives the recurring bucket-to-lake sync and snapshot
// refresh cycles.
package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MichaelGalo/sushi-train/internal/observability"
	"github.com/MichaelGalo/sushi-train/internal/storage"
)

// Lake is the slice of the lake session the pipeline needs.
type Lake interface {
	LoadBucketParquet(ctx context.Context, bucket, sourceFolder, targetSchema string) ([]string, error)
	LoadBucketCSV(ctx context.Context, bucket, sourceFolder, targetSchema string) ([]string, error)
	Refresh(ctx context.Context) error
}

type Config struct {
	Bucket          string
	SourceFolder    string
	TargetSchema    string
	SyncInterval    time.Duration
	RefreshInterval time.Duration
}

type Service struct {
	Lake   Lake
	Store  storage.ObjectStore
	Config Config
	Logger *slog.Logger
	Clock  func() time.Time
}

type SyncSummary struct {
	ObjectsSeen  int      `json:"objects_seen"`
	TablesLoaded []string `json:"tables_loaded"`
	Failures     int      `json:"failures"`
}

type RefreshSummary struct {
	DurationMs int64 `json:"duration_ms"`
}

func (s *Service) Run(ctx context.Context) error {
	syncTicker := time.NewTicker(s.syncInterval())
	defer syncTicker.Stop()
	refreshTicker := time.NewTicker(s.refreshInterval())
	defer refreshTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-syncTicker.C:
			summary, err := s.RunSyncOnce(ctx)
			if err != nil {
				if s.Logger != nil {
					s.Logger.ErrorContext(ctx, "sync cycle failed", slog.Any("error", err), slog.Any("summary", summary))
				}
				continue
			}
			if s.Logger != nil {
				s.Logger.InfoContext(ctx, "sync cycle completed", slog.Any("summary", summary))
			}
		case <-refreshTicker.C:
			summary, err := s.RunRefreshOnce(ctx)
			if err != nil {
				if s.Logger != nil {
					s.Logger.ErrorContext(ctx, "refresh cycle failed", slog.Any("error", err), slog.Any("summary", summary))
				}
				continue
			}
			if s.Logger != nil {
				s.Logger.InfoContext(ctx, "refresh cycle completed", slog.Any("summary", summary))
			}
		}
	}
}

// RunSyncOnce lists the source folder and loads its parquet and csv objects
// into the target schema. Load failures are counted, not fatal; only a
// failed listing aborts the cycle.
func (s *Service) RunSyncOnce(ctx context.Context) (SyncSummary, error) {
	if s.Lake == nil {
		return SyncSummary{}, fmt.Errorf("lake is required")
	}
	if s.Store == nil {
		return SyncSummary{}, fmt.Errorf("object store is required")
	}

	start := s.now()
	summary := SyncSummary{TablesLoaded: []string{}}

	objects, err := s.Store.List(ctx, s.Config.SourceFolder, "")
	if err != nil {
		observability.ObserveSync(0, true, s.now().Sub(start))
		return summary, fmt.Errorf("list source folder %q: %w", s.Config.SourceFolder, err)
	}
	for _, object := range objects {
		if strings.HasSuffix(object.Key, ".parquet") || strings.HasSuffix(object.Key, ".csv") {
			summary.ObjectsSeen++
		}
	}
	if summary.ObjectsSeen == 0 {
		observability.ObserveSync(0, false, s.now().Sub(start))
		return summary, nil
	}

	tables, err := s.Lake.LoadBucketParquet(ctx, s.Config.Bucket, s.Config.SourceFolder, s.Config.TargetSchema)
	summary.TablesLoaded = append(summary.TablesLoaded, tables...)
	if err != nil {
		summary.Failures++
		if s.Logger != nil {
			s.Logger.ErrorContext(ctx, "parquet load failed", slog.Any("error", err))
		}
	}

	tables, err = s.Lake.LoadBucketCSV(ctx, s.Config.Bucket, s.Config.SourceFolder, s.Config.TargetSchema)
	summary.TablesLoaded = append(summary.TablesLoaded, tables...)
	if err != nil {
		summary.Failures++
		if s.Logger != nil {
			s.Logger.ErrorContext(ctx, "csv load failed", slog.Any("error", err))
		}
	}

	observability.ObserveSync(len(summary.TablesLoaded), summary.Failures > 0, s.now().Sub(start))
	return summary, nil
}

// RunRefreshOnce expires old snapshots and cleans up unreferenced files.
func (s *Service) RunRefreshOnce(ctx context.Context) (RefreshSummary, error) {
	if s.Lake == nil {
		return RefreshSummary{}, fmt.Errorf("lake is required")
	}

	start := s.now()
	if err := s.Lake.Refresh(ctx); err != nil {
		return RefreshSummary{}, err
	}
	elapsed := s.now().Sub(start)
	observability.ObserveRefresh(elapsed)
	return RefreshSummary{DurationMs: elapsed.Milliseconds()}, nil
}

// Defaults are resolved on read, never written back: a Service shared
// across goroutines stays free of data races on its fields.
func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock()
	}
	return time.Now()
}

func (s *Service) syncInterval() time.Duration {
	if s.Config.SyncInterval > 0 {
		return s.Config.SyncInterval
	}
	return 5 * time.Minute
}

func (s *Service) refreshInterval() time.Duration {
	if s.Config.RefreshInterval > 0 {
		return s.Config.RefreshInterval
	}
	return 30 * time.Minute
}
