package jobs

// Schedule pairs a job type with its default recurrence. The timezone is
// left empty so the scheduler's configured default applies; operators can
// override per job through the admin API.
type Schedule struct {
	Type string
	Cron string
}

// DefaultSchedules lists the recurring jobs as shipped. Feedback
// analysis and email retry have no recurrence; they are enqueued on
// demand by the modules that need them.
func DefaultSchedules() []Schedule {
	return []Schedule{
		{Type: TypePayrollSync, Cron: "0 2 * * *"},
		{Type: TypeLMSTrainerSync, Cron: "0 3 * * *"},
		{Type: TypeLMSStudentSync, Cron: "20 3 * * *"},
		{Type: TypeLMSEnrollmentSync, Cron: "40 3 * * *"},
		{Type: TypePDReminders, Cron: "0 9 * * 1"},
		{Type: TypeCredentialExpiry, Cron: "0 8 * * *"},
		{Type: TypePolicyReviewReminders, Cron: "30 9 * * 1"},
		{Type: TypeComplaintSLACheck, Cron: "0 * * * *"},
		{Type: TypeWeeklyDigest, Cron: "0 17 * * 5"},
		{Type: TypeMonthlyReport, Cron: "0 6 1 * *"},
		{Type: TypeOnboardingCheck, Cron: "0 9 * * *"},
	}
}
