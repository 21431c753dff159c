package mocks

import (
	"context"
	"encoding/json"

	"github.com/stretchr/testify/mock"

	"github.com/complyops/backoffice/internal/queue"
)

type EnqueuerMock struct {
	mock.Mock
}

func (m *EnqueuerMock) Enqueue(ctx context.Context, jobType string, payload json.RawMessage, opts queue.Options) (queue.Handle, error) {
	args := m.Called(ctx, jobType, payload, opts)

	handle, _ := args.Get(0).(queue.Handle)
	return handle, args.Error(1)
}
