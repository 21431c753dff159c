package reconcile

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"gorm.io/datatypes"
)

const (
	// DefaultPageSize matches the upstream APIs' page size.
	DefaultPageSize = 100
	// maxPages bounds a source that never reports progress.
	maxPages = 1000
)

// Record is one upstream record, normalized by its Source. Attributes
// carries the raw upstream fields and is stored as mapping metadata.
type Record struct {
	ExternalID string
	Attributes map[string]any
}

// Source pages through an upstream system. FetchPage is 1-based and
// returns the records on the page plus the total page count reported by
// the upstream.
type Source interface {
	FetchPage(ctx context.Context, page, pageSize int) ([]Record, int, error)
}

// Upserter applies one upstream record to local state. Implementations
// wrap the local directory repositories, one per synced entity.
type Upserter interface {
	ExternalType() string
	InternalType() string
	// FindByNaturalKey matches an unmapped upstream record against
	// existing local rows (e.g. by email) so re-linking never creates a
	// duplicate. Returns 0 when nothing matches.
	FindByNaturalKey(ctx context.Context, rec Record) (uint, error)
	Create(ctx context.Context, rec Record) (uint, error)
	Update(ctx context.Context, internalID uint, rec Record) error
}

// MappingStore is the external-id to internal-id correspondence table.
type MappingStore interface {
	FindByExternal(ctx context.Context, externalID, externalType string) (*models.MappingRecord, error)
	Create(ctx context.Context, rec *models.MappingRecord) error
	Touch(ctx context.Context, id uint, metadata datatypes.JSON, syncedAt time.Time) error
}

// SyncLogStore records the audit trail of runs.
type SyncLogStore interface {
	Start(ctx context.Context, syncType string, triggeredBy *string) (*models.SyncLog, error)
	Finish(ctx context.Context, id uint, status string, total, synced, failed int, errMsg string) error
}

// Result is the aggregate outcome of one run.
type Result struct {
	Status        string   `json:"status"`
	RecordsTotal  int      `json:"recordsTotal"`
	RecordsSynced int      `json:"recordsSynced"`
	RecordsFailed int      `json:"recordsFailed"`
	Details       []string `json:"details,omitempty"`
}

// Engine is the reusable reconciliation algorithm every sync job handler
// runs: walk the paginated source, upsert each record through the mapping
// store, isolate per-record failures, and write one SyncLog row.
type Engine struct {
	mappings MappingStore
	syncLogs SyncLogStore
	pageSize int
}

func NewEngine(mappings MappingStore, syncLogs SyncLogStore) *Engine {
	return &Engine{
		mappings: mappings,
		syncLogs: syncLogs,
		pageSize: DefaultPageSize,
	}
}

// Run executes one reconciliation pass. Per-record errors are counted and
// never escape; an error from the pagination call itself aborts the run,
// marks the SyncLog failed, and is returned to the caller.
//
// Re-running against unchanged upstream data is a pure update pass: no
// new local rows, no new mappings.
func (e *Engine) Run(ctx context.Context, syncType string, triggeredBy *string, source Source, upserter Upserter) (Result, error) {
	syncLog, err := e.syncLogs.Start(ctx, syncType, triggeredBy)
	if err != nil {
		return Result{}, err
	}

	var (
		total, synced, failed int
		details               []string
	)

	page := 1
	for {
		records, totalPages, err := source.FetchPage(ctx, page, e.pageSize)
		if err != nil {
			runErr := fmt.Errorf("fetch page %d: %w", page, err)
			if ferr := e.syncLogs.Finish(ctx, syncLog.ID, models.SyncStatusFailed, total, synced, failed, runErr.Error()); ferr != nil {
				log.Printf("[SYNC][WARN] finish %s log: %v", syncType, ferr)
			}
			return Result{
				Status:        models.SyncStatusFailed,
				RecordsTotal:  total,
				RecordsSynced: synced,
				RecordsFailed: failed,
				Details:       details,
			}, runErr
		}

		for _, rec := range records {
			total++
			if err := e.apply(ctx, rec, upserter); err != nil {
				failed++
				detail := fmt.Sprintf("%s %s: %v", upserter.ExternalType(), rec.ExternalID, err)
				details = append(details, detail)
				log.Printf("[SYNC] %s record failed: %s", syncType, detail)
				continue
			}
			synced++
		}

		if page >= totalPages {
			break
		}
		if page >= maxPages {
			log.Printf("[SYNC][WARN] %s stopped at page cap (%d), upstream reports %d pages", syncType, maxPages, totalPages)
			break
		}
		page++
	}

	if err := e.syncLogs.Finish(ctx, syncLog.ID, models.SyncStatusCompleted, total, synced, failed, ""); err != nil {
		log.Printf("[SYNC][WARN] finish %s log: %v", syncType, err)
	}

	return Result{
		Status:        models.SyncStatusCompleted,
		RecordsTotal:  total,
		RecordsSynced: synced,
		RecordsFailed: failed,
		Details:       details,
	}, nil
}

// apply merges one upstream record: mapped records are pure updates;
// unmapped ones are matched by natural key before anything is created, so
// the same external id never yields two local rows.
func (e *Engine) apply(ctx context.Context, rec Record, up Upserter) error {
	if rec.ExternalID == "" {
		return fmt.Errorf("missing external id")
	}

	meta, err := json.Marshal(rec.Attributes)
	if err != nil {
		meta = []byte(`{}`)
	}
	now := time.Now()

	mapping, err := e.mappings.FindByExternal(ctx, rec.ExternalID, up.ExternalType())
	if err != nil {
		return err
	}

	if mapping != nil {
		if err := up.Update(ctx, mapping.InternalID, rec); err != nil {
			return err
		}
		return e.mappings.Touch(ctx, mapping.ID, datatypes.JSON(meta), now)
	}

	internalID, err := up.FindByNaturalKey(ctx, rec)
	if err != nil {
		return err
	}
	if internalID != 0 {
		if err := up.Update(ctx, internalID, rec); err != nil {
			return err
		}
	} else {
		internalID, err = up.Create(ctx, rec)
		if err != nil {
			return err
		}
	}

	return e.mappings.Create(ctx, &models.MappingRecord{
		ExternalID:   rec.ExternalID,
		ExternalType: up.ExternalType(),
		InternalID:   internalID,
		InternalType: up.InternalType(),
		Metadata:     datatypes.JSON(meta),
		LastSyncedAt: now,
	})
}
