package orchestrator

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/worker"
	"gorm.io/datatypes"
)

// RecordRuns is a registry middleware that mirrors each execution onto
// the job record: running while the handler executes, then completed or
// failed with the run's outcome. Bookkeeping failures are logged and
// never fail the job itself.
func RecordRuns(records JobRecordStore) worker.Middleware {
	return func(jobType string, next worker.Handler) worker.Handler {
		return func(ctx context.Context, payload datatypes.JSON) (any, error) {
			startedAt := time.Now().UTC()
			if err := records.SetStatus(ctx, jobType, models.JobStatusRunning); err != nil {
				log.Printf("[ORCHESTRATOR] mark %s running: %v", jobType, err)
			}

			out, err := next(ctx, payload)
			if err != nil {
				if recErr := records.RecordRun(ctx, jobType, models.JobStatusFailed, err.Error(), startedAt, nil); recErr != nil {
					log.Printf("[ORCHESTRATOR] record %s failure: %v", jobType, recErr)
				}
				return nil, err
			}

			if recErr := records.RecordRun(ctx, jobType, models.JobStatusCompleted, summarize(out), startedAt, nil); recErr != nil {
				log.Printf("[ORCHESTRATOR] record %s completion: %v", jobType, recErr)
			}
			return out, nil
		}
	}
}

func summarize(out any) string {
	if out == nil {
		return ""
	}
	b, err := json.Marshal(out)
	if err != nil {
		return ""
	}
	return string(b)
}
