package postgres

import (
	"testing"

	"github.com/complyops/backoffice/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func SetupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent), // Disable logs during tests
	})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.QueueItem{},
		&models.DeadLetterItem{},
		&models.JobRecord{},
		&models.Notification{},
		&models.MappingRecord{},
		&models.SyncLog{},
		&models.Employee{},
		&models.Trainer{},
		&models.Student{},
		&models.Enrollment{},
	)
	require.NoError(t, err)

	return db
}
