package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/timmy/promptgen/internal/logger"
	"github.com/timmy/promptgen/internal/storage"
)

// StoragePathIndex answers which storage paths are referenced by a record.
type StoragePathIndex interface {
	ExistingStoragePaths(ctx context.Context, paths []string) (map[string]bool, error)
}

// SweepService deletes stored images that no generation record references.
// Such blobs are left behind when the AI call or the insert fails after the
// upload was stored.
type SweepService struct {
	storage   storage.ObjectStorage
	namespace string
	records   StoragePathIndex
	workers   int
	batchSize int
	now       func() time.Time
}

// SweepConfig holds configuration for the sweep service
type SweepConfig struct {
	Namespace string
	Workers   int
	BatchSize int
}

// SweepOptions holds options for a single sweep run
type SweepOptions struct {
	// Grace skips blobs younger than this, protecting in-flight requests.
	Grace  time.Duration
	DryRun bool
}

// SweepStats holds statistics for a sweep run
type SweepStats struct {
	Scanned    int64
	Referenced int64
	TooRecent  int64
	Orphaned   int64
	Deleted    int64
	Failed     int64
	StartTime  time.Time
	EndTime    time.Time
}

// NewSweepService creates a new sweep service
func NewSweepService(objectStorage storage.ObjectStorage, records StoragePathIndex, cfg *SweepConfig) *SweepService {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 4
	}
	batchSize := cfg.BatchSize
	if batchSize <= 0 {
		batchSize = 500
	}
	namespace := cfg.Namespace
	if namespace == "" {
		namespace = storage.DefaultNamespace
	}
	return &SweepService{
		storage:   objectStorage,
		namespace: storage.JoinKey(namespace, ""),
		records:   records,
		workers:   workers,
		batchSize: batchSize,
		now:       time.Now,
	}
}

// Sweep finds blobs under the namespace that are older than the grace
// period and have no record, and deletes them unless DryRun is set.
// Parameters:
//   - ctx: context for cancellation.
//   - opts: grace period and dry-run switch.
//
// Returns:
//   - *SweepStats: counts for the run.
//   - error: non-nil if listing or the record lookup fails.
func (s *SweepService) Sweep(ctx context.Context, opts *SweepOptions) (*SweepStats, error) {
	if opts == nil || opts.Grace <= 0 {
		return nil, errors.New("sweep: grace period must be positive")
	}

	ctx = logger.SetComponent(ctx, "sweep")
	stats := &SweepStats{StartTime: time.Now()}
	cutoff := s.now().Add(-opts.Grace)

	logger.FromContext(ctx).WithFields(logger.Fields{
		"namespace": s.namespace,
		"grace":     opts.Grace.String(),
		"dry_run":   opts.DryRun,
	}).Info("Starting orphan sweep")

	objects, err := s.storage.List(ctx, s.namespace)
	if err != nil {
		return nil, err
	}
	stats.Scanned = int64(len(objects))

	var candidates []string
	for _, obj := range objects {
		if obj.LastModified.After(cutoff) {
			stats.TooRecent++
			continue
		}
		candidates = append(candidates, obj.Key)
	}

	var orphans []string
	for start := 0; start < len(candidates); start += s.batchSize {
		end := min(start+s.batchSize, len(candidates))
		batch := candidates[start:end]

		referenced, err := s.records.ExistingStoragePaths(ctx, batch)
		if err != nil {
			return nil, err
		}
		for _, key := range batch {
			if referenced[key] {
				stats.Referenced++
			} else {
				orphans = append(orphans, key)
			}
		}
	}
	stats.Orphaned = int64(len(orphans))

	if opts.DryRun {
		for _, key := range orphans {
			logger.FromContext(ctx).WithField(logger.FieldStoragePath, key).Info("Would delete orphaned image")
		}
	} else {
		s.deleteAll(ctx, orphans, stats)
	}

	stats.EndTime = time.Now()

	logger.FromContext(ctx).WithFields(logger.Fields{
		"scanned":    stats.Scanned,
		"referenced": stats.Referenced,
		"too_recent": stats.TooRecent,
		"orphaned":   stats.Orphaned,
		"deleted":    stats.Deleted,
		"failed":     stats.Failed,
		"duration":   stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Orphan sweep completed")

	return stats, nil
}

func (s *SweepService) deleteAll(ctx context.Context, keys []string, stats *SweepStats) {
	keysChan := make(chan string, s.workers*2)

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for key := range keysChan {
				if err := s.storage.Delete(ctx, key); err != nil {
					atomic.AddInt64(&stats.Failed, 1)
					logger.FromContext(ctx).WithField(logger.FieldStoragePath, key).
						WithError(err).Error("Failed to delete orphaned image")
					continue
				}
				atomic.AddInt64(&stats.Deleted, 1)
				logger.FromContext(ctx).WithField(logger.FieldStoragePath, key).Debug("Deleted orphaned image")
			}
		}()
	}

feed:
	for _, key := range keys {
		select {
		case keysChan <- key:
		case <-ctx.Done():
			break feed
		}
	}
	close(keysChan)
	wg.Wait()
}
