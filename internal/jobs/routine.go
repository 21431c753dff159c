package jobs

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/queue"
	"github.com/complyops/backoffice/internal/worker"
	"gorm.io/datatypes"
)

// Notifier raises in-app operator notifications.
type Notifier interface {
	Create(ctx context.Context, n *models.Notification) error
}

// SyncLogLister feeds the digest and report jobs.
type SyncLogLister interface {
	ListRecent(ctx context.Context, since time.Time) ([]models.SyncLog, error)
}

// RoutineDeps are the collaborators of the non-sync handlers. The
// heavyweight domain queries (which complaints breach SLA, which
// policies are due) live with the back-office CRUD modules; what runs
// here is the recurring prompt-and-report side.
type RoutineDeps struct {
	Directory     Directory
	Notifier      Notifier
	Mailer        Mailer
	Sentiment     Sentiment
	SyncLogs      SyncLogLister
	QueueMetrics  func(ctx context.Context) (queue.Metrics, error)
	OperatorRoles []string
}

func (d *RoutineDeps) notifyOperators(ctx context.Context, title, body string) int {
	raised := 0
	for _, role := range d.OperatorRoles {
		if err := d.Notifier.Create(ctx, &models.Notification{Role: role, Title: title, Body: body}); err == nil {
			raised++
		}
	}
	return raised
}

// PDRemindersHandler emails every active employee a professional
// development logging reminder.
func PDRemindersHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, _ datatypes.JSON) (any, error) {
		employees, err := deps.Directory.ListActiveEmployees(ctx)
		if err != nil {
			return nil, err
		}
		sent := 0
		for _, e := range employees {
			if err := deps.Mailer.Send(ctx, e.Email,
				"Professional development reminder",
				fmt.Sprintf("Hi %s, please log your professional development hours for this period.", e.FirstName),
			); err != nil {
				continue
			}
			sent++
		}
		return map[string]any{"remindersSent": sent, "employees": len(employees)}, nil
	}
}

// CredentialExpiryHandler alerts active trainers to confirm their
// credentials are current within the configured window.
func CredentialExpiryHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, payload datatypes.JSON) (any, error) {
		opts := struct {
			WindowDays int `json:"windowDays"`
		}{WindowDays: 30}
		if len(payload) > 0 {
			_ = json.Unmarshal(payload, &opts)
		}

		trainers, err := deps.Directory.ListActiveTrainers(ctx)
		if err != nil {
			return nil, err
		}
		sent := 0
		for _, t := range trainers {
			if err := deps.Mailer.Send(ctx, t.Email,
				"Credential expiry check",
				fmt.Sprintf("Please confirm your credentials remain current for the next %d days.", opts.WindowDays),
			); err != nil {
				continue
			}
			sent++
		}
		return map[string]any{"alertsSent": sent, "windowDays": opts.WindowDays}, nil
	}
}

// PolicyReviewRemindersHandler prompts operators to run the scheduled
// policy review cycle; the policy register itself lives with the
// policies module.
func PolicyReviewRemindersHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, _ datatypes.JSON) (any, error) {
		raised := deps.notifyOperators(ctx,
			"Policy review cycle due",
			"Scheduled policy review reminder: check the policy register for documents due for review.")
		return map[string]any{"remindersRaised": raised}, nil
	}
}

// ComplaintSLACheckHandler prompts operators to action complaints
// approaching their SLA; the complaint query lives with the complaints
// module.
func ComplaintSLACheckHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, _ datatypes.JSON) (any, error) {
		raised := deps.notifyOperators(ctx,
			"Complaint SLA check",
			"SLA sweep executed: review open complaints approaching their response deadline.")
		return map[string]any{"notificationsRaised": raised}, nil
	}
}

// WeeklyDigestHandler summarizes the last week of queue and sync
// activity for operators.
func WeeklyDigestHandler(deps *RoutineDeps) worker.Handler {
	return digestHandler(deps, "Weekly operations digest", 7)
}

// MonthlyReportHandler is the month-window variant of the digest.
func MonthlyReportHandler(deps *RoutineDeps) worker.Handler {
	return digestHandler(deps, "Monthly operations report", 30)
}

func digestHandler(deps *RoutineDeps, title string, windowDays int) worker.Handler {
	return func(ctx context.Context, _ datatypes.JSON) (any, error) {
		metrics, err := deps.QueueMetrics(ctx)
		if err != nil {
			return nil, err
		}
		since := time.Now().AddDate(0, 0, -windowDays)
		runs, err := deps.SyncLogs.ListRecent(ctx, since)
		if err != nil {
			return nil, err
		}

		var synced, failed, failedRuns int
		for _, r := range runs {
			synced += r.RecordsSynced
			failed += r.RecordsFailed
			if r.Status == models.SyncStatusFailed {
				failedRuns++
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "Queue: %d completed, %d failed, %d waiting.\n",
			metrics.Completed, metrics.Failed, metrics.Waiting)
		fmt.Fprintf(&b, "Syncs (%dd): %d runs, %d records synced, %d records failed, %d failed runs.",
			windowDays, len(runs), synced, failed, failedRuns)

		deps.notifyOperators(ctx, title, b.String())

		return map[string]any{
			"windowDays":    windowDays,
			"syncRuns":      len(runs),
			"recordsSynced": synced,
			"recordsFailed": failed,
			"failedRuns":    failedRuns,
		}, nil
	}
}

// FeedbackAnalysisHandler scores one piece of feedback text.
func FeedbackAnalysisHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, payload datatypes.JSON) (any, error) {
		var p struct {
			FeedbackID string `json:"feedbackId"`
			Text       string `json:"text"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal feedback payload: %w", err)
		}
		if p.Text == "" {
			return nil, fmt.Errorf("feedback %s has no text", p.FeedbackID)
		}

		label, score, err := deps.Sentiment.Analyze(ctx, p.Text)
		if err != nil {
			return nil, err
		}
		return map[string]any{
			"feedbackId": p.FeedbackID,
			"sentiment":  label,
			"score":      score,
		}, nil
	}
}

// EmailRetryHandler re-attempts one previously failed outbound email.
func EmailRetryHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, payload datatypes.JSON) (any, error) {
		var p struct {
			To      string `json:"to"`
			Subject string `json:"subject"`
			Body    string `json:"body"`
		}
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("unmarshal email payload: %w", err)
		}
		if p.To == "" {
			return nil, fmt.Errorf("email retry payload has no recipient")
		}

		if err := deps.Mailer.Send(ctx, p.To, p.Subject, p.Body); err != nil {
			return nil, err
		}
		return map[string]any{
			"to":      p.To,
			"subject": p.Subject,
			"sentAt":  time.Now().Format(time.RFC3339),
		}, nil
	}
}

// OnboardingCheckHandler flags recently onboarded employees whose
// records are still missing position or department.
func OnboardingCheckHandler(deps *RoutineDeps) worker.Handler {
	return func(ctx context.Context, _ datatypes.JSON) (any, error) {
		since := time.Now().AddDate(0, 0, -30)
		recent, err := deps.Directory.ListEmployeesCreatedSince(ctx, since)
		if err != nil {
			return nil, err
		}

		var incomplete []string
		for _, e := range recent {
			if e.Position == "" || e.Department == "" {
				incomplete = append(incomplete, e.Email)
			}
		}
		if len(incomplete) > 0 {
			deps.notifyOperators(ctx,
				"Onboarding records incomplete",
				fmt.Sprintf("%d recently onboarded employees are missing position or department: %s",
					len(incomplete), strings.Join(incomplete, ", ")))
		}

		return map[string]any{"checked": len(recent), "flagged": len(incomplete)}, nil
	}
}
