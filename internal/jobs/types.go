// Package jobs defines the closed set of background job types and their
// handlers. Adding a job type means adding a constant here and
// registering its handler at startup; the queue and worker pool contracts
// never change for it.
package jobs

// Job type identifiers. Persisted in queue items and job records, so
// these strings are part of the durable contract.
const (
	TypePayrollSync           = "payroll_employee_sync"
	TypeLMSTrainerSync        = "lms_trainer_sync"
	TypeLMSStudentSync        = "lms_student_sync"
	TypeLMSEnrollmentSync     = "lms_enrollment_sync"
	TypePDReminders           = "pd_reminders"
	TypeCredentialExpiry      = "credential_expiry_alerts"
	TypePolicyReviewReminders = "policy_review_reminders"
	TypeComplaintSLACheck     = "complaint_sla_check"
	TypeWeeklyDigest          = "weekly_digest"
	TypeMonthlyReport         = "monthly_report"
	TypeFeedbackAnalysis      = "feedback_analysis"
	TypeEmailRetry            = "email_retry"
	TypeOnboardingCheck       = "onboarding_check"
)

// AllTypes is the registry's allow-list.
func AllTypes() []string {
	return []string{
		TypePayrollSync,
		TypeLMSTrainerSync,
		TypeLMSStudentSync,
		TypeLMSEnrollmentSync,
		TypePDReminders,
		TypeCredentialExpiry,
		TypePolicyReviewReminders,
		TypeComplaintSLACheck,
		TypeWeeklyDigest,
		TypeMonthlyReport,
		TypeFeedbackAnalysis,
		TypeEmailRetry,
		TypeOnboardingCheck,
	}
}

// SyncTypes is the subset of job types driven by the reconciliation
// engine against an upstream system.
func SyncTypes() []string {
	return []string{
		TypePayrollSync,
		TypeLMSTrainerSync,
		TypeLMSStudentSync,
		TypeLMSEnrollmentSync,
	}
}

// IsSyncType reports whether t names a synchronization job type.
func IsSyncType(t string) bool {
	for _, known := range SyncTypes() {
		if t == known {
			return true
		}
	}
	return false
}

// IsValidType reports whether t names a known job type.
func IsValidType(t string) bool {
	for _, known := range AllTypes() {
		if t == known {
			return true
		}
	}
	return false
}
