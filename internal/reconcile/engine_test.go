package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/complyops/backoffice/internal/models"
	"github.com/complyops/backoffice/internal/storage/postgres"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// fakeSource pages over a fixed record set with the configured page size.
type fakeSource struct {
	records  []Record
	fetchErr error
	// errAfterPage makes FetchPage fail once this many pages succeeded.
	errAfterPage int
	calls        int
}

func (s *fakeSource) FetchPage(_ context.Context, page, pageSize int) ([]Record, int, error) {
	s.calls++
	if s.fetchErr != nil && (s.errAfterPage == 0 || page > s.errAfterPage) {
		return nil, 0, s.fetchErr
	}

	totalPages := (len(s.records) + pageSize - 1) / pageSize
	if totalPages == 0 {
		totalPages = 1
	}

	start := (page - 1) * pageSize
	if start >= len(s.records) {
		return nil, totalPages, nil
	}
	end := min(start+pageSize, len(s.records))
	return s.records[start:end], totalPages, nil
}

// memUpserter keeps rows in a map keyed by an auto id, matching on the
// "email" attribute as natural key.
type memUpserter struct {
	nextID  uint
	rows    map[uint]Record
	byEmail map[string]uint
	failIDs map[string]bool

	creates int
	updates int
}

func newMemUpserter() *memUpserter {
	return &memUpserter{
		nextID:  1,
		rows:    map[uint]Record{},
		byEmail: map[string]uint{},
		failIDs: map[string]bool{},
	}
}

func (u *memUpserter) ExternalType() string { return "payroll:employee" }
func (u *memUpserter) InternalType() string { return "employee" }

func (u *memUpserter) FindByNaturalKey(_ context.Context, rec Record) (uint, error) {
	email, _ := rec.Attributes["email"].(string)
	return u.byEmail[email], nil
}

func (u *memUpserter) Create(_ context.Context, rec Record) (uint, error) {
	if u.failIDs[rec.ExternalID] {
		return 0, fmt.Errorf("create rejected")
	}
	id := u.nextID
	u.nextID++
	u.rows[id] = rec
	if email, ok := rec.Attributes["email"].(string); ok {
		u.byEmail[email] = id
	}
	u.creates++
	return id, nil
}

func (u *memUpserter) Update(_ context.Context, internalID uint, rec Record) error {
	if u.failIDs[rec.ExternalID] {
		return fmt.Errorf("update rejected")
	}
	u.rows[internalID] = rec
	u.updates++
	return nil
}

func newTestEngine(t *testing.T) (*Engine, *gorm.DB) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.MappingRecord{}, &models.SyncLog{}))

	return NewEngine(postgres.NewMappingRepository(db), postgres.NewSyncLogRepository(db)), db
}

func employeeRecords(n int) []Record {
	records := make([]Record, 0, n)
	for i := 1; i <= n; i++ {
		records = append(records, Record{
			ExternalID: fmt.Sprintf("EMP-%d", i),
			Attributes: map[string]any{"email": fmt.Sprintf("e%d@example.com", i)},
		})
	}
	return records
}

func TestEngine_Run_CreatesAndMaps(t *testing.T) {
	engine, db := newTestEngine(t)
	upserter := newMemUpserter()
	source := &fakeSource{records: employeeRecords(150)}

	res, err := engine.Run(context.Background(), "payroll_employee_sync", nil, source, upserter)
	require.NoError(t, err)

	assert.Equal(t, models.SyncStatusCompleted, res.Status)
	assert.Equal(t, 150, res.RecordsTotal)
	assert.Equal(t, 150, res.RecordsSynced)
	assert.Equal(t, 0, res.RecordsFailed)
	assert.Equal(t, 150, upserter.creates)
	assert.Equal(t, 2, source.calls)

	var mappings int64
	require.NoError(t, db.Model(&models.MappingRecord{}).Count(&mappings).Error)
	assert.Equal(t, int64(150), mappings)
}

func TestEngine_Run_Idempotent(t *testing.T) {
	engine, db := newTestEngine(t)
	upserter := newMemUpserter()
	records := employeeRecords(50)

	first, err := engine.Run(context.Background(), "payroll_employee_sync", nil, &fakeSource{records: records}, upserter)
	require.NoError(t, err)
	require.Equal(t, 50, first.RecordsSynced)

	// Second pass over identical data: pure updates, nothing new.
	second, err := engine.Run(context.Background(), "payroll_employee_sync", nil, &fakeSource{records: records}, upserter)
	require.NoError(t, err)
	assert.Equal(t, 50, second.RecordsSynced)
	assert.Equal(t, 50, upserter.creates)
	assert.Equal(t, 50, upserter.updates)
	assert.Len(t, upserter.rows, 50)

	var mappings int64
	require.NoError(t, db.Model(&models.MappingRecord{}).Count(&mappings).Error)
	assert.Equal(t, int64(50), mappings)
}

func TestEngine_Run_MatchesByNaturalKey(t *testing.T) {
	engine, db := newTestEngine(t)
	upserter := newMemUpserter()

	// Local row exists, mapping does not (e.g. created by hand before the
	// integration was turned on).
	existingID, err := upserter.Create(context.Background(), Record{
		ExternalID: "manual",
		Attributes: map[string]any{"email": "ana@example.com"},
	})
	require.NoError(t, err)
	upserter.creates = 0

	source := &fakeSource{records: []Record{{
		ExternalID: "EMP-77",
		Attributes: map[string]any{"email": "ana@example.com"},
	}}}

	res, err := engine.Run(context.Background(), "payroll_employee_sync", nil, source, upserter)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RecordsSynced)
	assert.Equal(t, 0, upserter.creates)
	assert.Equal(t, 1, upserter.updates)

	var mapping models.MappingRecord
	require.NoError(t, db.First(&mapping, "external_id = ?", "EMP-77").Error)
	assert.Equal(t, existingID, mapping.InternalID)
}

func TestEngine_Run_PerRecordFailureIsolated(t *testing.T) {
	engine, db := newTestEngine(t)
	upserter := newMemUpserter()
	upserter.failIDs["EMP-4"] = true

	res, err := engine.Run(context.Background(), "payroll_employee_sync", nil, &fakeSource{records: employeeRecords(10)}, upserter)
	require.NoError(t, err)

	assert.Equal(t, models.SyncStatusCompleted, res.Status)
	assert.Equal(t, 10, res.RecordsTotal)
	assert.Equal(t, 9, res.RecordsSynced)
	assert.Equal(t, 1, res.RecordsFailed)
	require.Len(t, res.Details, 1)
	assert.Contains(t, res.Details[0], "EMP-4")

	var logRow models.SyncLog
	require.NoError(t, db.First(&logRow).Error)
	assert.Equal(t, models.SyncStatusCompleted, logRow.Status)
	assert.Equal(t, 10, logRow.RecordsTotal)
	assert.Equal(t, 1, logRow.RecordsFailed)
}

func TestEngine_Run_MissingExternalIDCounted(t *testing.T) {
	engine, _ := newTestEngine(t)
	upserter := newMemUpserter()

	source := &fakeSource{records: []Record{
		{ExternalID: "", Attributes: map[string]any{"email": "x@example.com"}},
		{ExternalID: "EMP-1", Attributes: map[string]any{"email": "y@example.com"}},
	}}

	res, err := engine.Run(context.Background(), "payroll_employee_sync", nil, source, upserter)
	require.NoError(t, err)
	assert.Equal(t, 1, res.RecordsSynced)
	assert.Equal(t, 1, res.RecordsFailed)
}

func TestEngine_Run_FetchErrorFailsRun(t *testing.T) {
	engine, db := newTestEngine(t)
	upserter := newMemUpserter()

	source := &fakeSource{
		records:      employeeRecords(150),
		fetchErr:     fmt.Errorf("upstream 502"),
		errAfterPage: 1,
	}

	res, err := engine.Run(context.Background(), "payroll_employee_sync", nil, source, upserter)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "fetch page 2")

	// First page's work is preserved in the result and the log.
	assert.Equal(t, models.SyncStatusFailed, res.Status)
	assert.Equal(t, 100, res.RecordsSynced)

	var logRow models.SyncLog
	require.NoError(t, db.First(&logRow).Error)
	assert.Equal(t, models.SyncStatusFailed, logRow.Status)
	assert.Equal(t, 100, logRow.RecordsSynced)
	assert.Contains(t, logRow.ErrorMessage, "upstream 502")
}

func TestEngine_Run_EmptyUpstream(t *testing.T) {
	engine, _ := newTestEngine(t)
	upserter := newMemUpserter()

	res, err := engine.Run(context.Background(), "payroll_employee_sync", nil, &fakeSource{}, upserter)
	require.NoError(t, err)
	assert.Equal(t, models.SyncStatusCompleted, res.Status)
	assert.Equal(t, 0, res.RecordsTotal)
}
