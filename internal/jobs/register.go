package jobs

import (
	"fmt"

	"github.com/complyops/backoffice/internal/reconcile"
	"github.com/complyops/backoffice/internal/worker"
)

// RegisterAll binds every job type in the closed set to its handler.
// Startup fails if any registration is rejected, so a missing or
// misnamed handler is caught before the pool ever dequeues.
func RegisterAll(
	reg *worker.Registry,
	engine *reconcile.Engine,
	dir Directory,
	mappings reconcile.MappingStore,
	sources SyncSources,
	routine *RoutineDeps,
) error {
	handlers := map[string]worker.Handler{
		TypePayrollSync:           SyncHandler(engine, TypePayrollSync, sources.PayrollEmployees, NewEmployeeUpserter(dir)),
		TypeLMSTrainerSync:        SyncHandler(engine, TypeLMSTrainerSync, sources.LMSTrainers, NewTrainerUpserter(dir)),
		TypeLMSStudentSync:        SyncHandler(engine, TypeLMSStudentSync, sources.LMSStudents, NewStudentUpserter(dir)),
		TypeLMSEnrollmentSync:     SyncHandler(engine, TypeLMSEnrollmentSync, sources.LMSEnrollments, NewEnrollmentUpserter(dir, mappings)),
		TypePDReminders:           PDRemindersHandler(routine),
		TypeCredentialExpiry:      CredentialExpiryHandler(routine),
		TypePolicyReviewReminders: PolicyReviewRemindersHandler(routine),
		TypeComplaintSLACheck:     ComplaintSLACheckHandler(routine),
		TypeWeeklyDigest:          WeeklyDigestHandler(routine),
		TypeMonthlyReport:         MonthlyReportHandler(routine),
		TypeFeedbackAnalysis:      FeedbackAnalysisHandler(routine),
		TypeEmailRetry:            EmailRetryHandler(routine),
		TypeOnboardingCheck:       OnboardingCheckHandler(routine),
	}

	for jobType, h := range handlers {
		if err := reg.Register(jobType, h); err != nil {
			return fmt.Errorf("register %s: %w", jobType, err)
		}
	}
	return nil
}
