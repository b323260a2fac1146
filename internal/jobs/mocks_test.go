package jobs_test

import (
	"context"
	"io"
	"log/slog"
	"time"

	"courier-dispatch/internal/core/application/usecases/commands"
	"courier-dispatch/internal/core/ports"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type MockLocker struct {
	mock.Mock
}

func (m *MockLocker) TryLock(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, bool, error) {
	args := m.Called(ctx, key, ttl)
	unlock, _ := args.Get(0).(func(context.Context) error)
	return unlock, args.Bool(1), args.Error(2)
}

type MockAssignHandler struct {
	mock.Mock
}

func (m *MockAssignHandler) Handle(
	ctx context.Context,
	cmd commands.AssignPendingOrdersCommand,
) (commands.AssignPendingOrdersResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.AssignPendingOrdersResult), args.Error(1)
}

type MockAdvanceHandler struct {
	mock.Mock
}

func (m *MockAdvanceHandler) Handle(
	ctx context.Context,
	cmd commands.AdvanceCouriersCommand,
) (commands.AdvanceCouriersResult, error) {
	args := m.Called(ctx, cmd)
	return args.Get(0).(commands.AdvanceCouriersResult), args.Error(1)
}

type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) GetUnprocessed(ctx context.Context, limit int) ([]ports.Message, error) {
	args := m.Called(ctx, limit)
	msgs, _ := args.Get(0).([]ports.Message)
	return msgs, args.Error(1)
}

func (m *MockOutbox) MarkProcessed(ctx context.Context, id uuid.UUID, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, msg ports.Message) error {
	return m.Called(ctx, msg).Error(0)
}
