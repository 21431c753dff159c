package jobs

import (
	"context"
	"testing"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/reconcile"
	"github.com/complyops/backoffice/internal/storage/postgres"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type jobsFixture struct {
	db        *gorm.DB
	directory *postgres.DirectoryRepository
	mappings  *postgres.MappingRepository
	syncLogs  *postgres.SyncLogRepository
	notifs    *postgres.NotificationRepository
	engine    *reconcile.Engine
}

func newJobsFixture(t *testing.T) *jobsFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.MappingRecord{},
		&models.SyncLog{},
		&models.Notification{},
		&models.Employee{},
		&models.Trainer{},
		&models.Student{},
		&models.Enrollment{},
	))

	mappings := postgres.NewMappingRepository(db)
	syncLogs := postgres.NewSyncLogRepository(db)
	return &jobsFixture{
		db:        db,
		directory: postgres.NewDirectoryRepository(db),
		mappings:  mappings,
		syncLogs:  syncLogs,
		notifs:    postgres.NewNotificationRepository(db),
		engine:    reconcile.NewEngine(mappings, syncLogs),
	}
}

// listSource serves a fixed record list as a single page.
type listSource struct {
	records []reconcile.Record
}

func (s listSource) FetchPage(_ context.Context, page, _ int) ([]reconcile.Record, int, error) {
	if page > 1 {
		return nil, 1, nil
	}
	return s.records, 1, nil
}

// recordingMailer captures sends; addresses in failTo error out.
type recordingMailer struct {
	sent   []string
	failTo map[string]bool
}

func (m *recordingMailer) Send(_ context.Context, to, _, _ string) error {
	if m.failTo[to] {
		return context.DeadlineExceeded
	}
	m.sent = append(m.sent, to)
	return nil
}
