package jobs

import (
	"testing"

	"github.com/complyops/backoffice/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterAll_CoversEveryJobType(t *testing.T) {
	f := newJobsFixture(t)
	reg := worker.NewRegistry(AllTypes())

	err := RegisterAll(reg, f.engine, f.directory, f.mappings, SyncSources{
		PayrollEmployees: listSource{},
		LMSTrainers:      listSource{},
		LMSStudents:      listSource{},
		LMSEnrollments:   listSource{},
	}, newRoutineDeps(t, f, &recordingMailer{}))
	require.NoError(t, err)

	assert.ElementsMatch(t, AllTypes(), reg.Types())
	for _, jobType := range AllTypes() {
		h, ok := reg.Lookup(jobType)
		assert.True(t, ok, jobType)
		assert.NotNil(t, h, jobType)
	}
}

func TestSyncTypes_AreValidTypes(t *testing.T) {
	for _, s := range SyncTypes() {
		assert.True(t, IsValidType(s), s)
		assert.True(t, IsSyncType(s), s)
	}
	assert.False(t, IsSyncType(TypeWeeklyDigest))
	assert.False(t, IsSyncType("unknown"))
}
