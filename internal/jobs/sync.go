package jobs

import (
	"context"
	"encoding/json"

	"github.com/complyops/backoffice/internal/reconcile"
	"github.com/complyops/backoffice/internal/worker"
	"gorm.io/datatypes"
)

// SyncSources groups the four upstream page sources. Production wires
// them from upstream.Client; tests substitute in-memory sources.
type SyncSources struct {
	PayrollEmployees reconcile.Source
	LMSTrainers      reconcile.Source
	LMSStudents      reconcile.Source
	LMSEnrollments   reconcile.Source
}

type syncPayload struct {
	TriggeredBy string `json:"triggeredBy"`
}

// SyncHandler wraps one reconciliation run as a worker handler. A
// run-level engine error is returned so it flows into the pool's fail
// path; per-record failures are already folded into the result.
func SyncHandler(engine *reconcile.Engine, syncType string, source reconcile.Source, upserter reconcile.Upserter) worker.Handler {
	return func(ctx context.Context, payload datatypes.JSON) (any, error) {
		var p syncPayload
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &p)
		}
		var triggeredBy *string
		if p.TriggeredBy != "" {
			triggeredBy = &p.TriggeredBy
		}

		res, err := engine.Run(ctx, syncType, triggeredBy, source, upserter)
		if err != nil {
			return nil, err
		}
		return res, nil
	}
}
