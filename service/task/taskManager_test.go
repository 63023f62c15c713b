package task

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	taskrepo "github.com/sumaro2101/EasyLibrary/repository/task"
	"github.com/sumaro2101/EasyLibrary/service/notify"
)

type mockTaskRepo struct {
	createFn          func(ctx context.Context, t *taskrepo.PeriodicTask) error
	updateStartTimeFn func(ctx context.Context, name string, startTime time.Time) (bool, error)
	disableFn         func(ctx context.Context, name string) (bool, error)
}

var _ Repo = (*mockTaskRepo)(nil)

func (m *mockTaskRepo) Create(ctx context.Context, t *taskrepo.PeriodicTask) error {
	return m.createFn(ctx, t)
}
func (m *mockTaskRepo) UpdateStartTime(ctx context.Context, name string, startTime time.Time) (bool, error) {
	return m.updateStartTimeFn(ctx, name, startTime)
}
func (m *mockTaskRepo) Disable(ctx context.Context, name string) (bool, error) {
	return m.disableFn(ctx, name)
}

type mockPublisher struct {
	publishFn func(ctx context.Context, body []byte) error
}

var _ Publisher = (*mockPublisher)(nil)

func (m *mockPublisher) Publish(ctx context.Context, body []byte) error {
	if m.publishFn == nil {
		return nil
	}
	return m.publishFn(ctx, body)
}

func TestTaskName(t *testing.T) {
	require.Equal(t, "library_order-OR_42", taskName(42))
}

func TestScheduleOnce_PublishesMailTask(t *testing.T) {
	var body []byte
	p := &mockPublisher{publishFn: func(ctx context.Context, b []byte) error {
		body = b
		return nil
	}}
	m := NewManager(&mockTaskRepo{}, p, 8, 0)

	err := m.ScheduleOnce(context.Background(), "OR_7", notify.TemplateOrderOpen)
	require.NoError(t, err)

	var task notify.MailTask
	require.NoError(t, json.Unmarshal(body, &task))
	require.Equal(t, "OR_7", task.Ref)
	require.Equal(t, notify.TemplateOrderOpen, task.Template)
}

func TestScheduleRecurring_CreatesDailyRow(t *testing.T) {
	var created *taskrepo.PeriodicTask
	r := &mockTaskRepo{createFn: func(ctx context.Context, t *taskrepo.PeriodicTask) error {
		created = t
		return nil
	}}
	m := NewManager(r, &mockPublisher{}, 8, 30)

	due := time.Date(2025, 3, 24, 0, 0, 0, 0, time.UTC)
	require.NoError(t, m.ScheduleRecurring(context.Background(), 42, due))

	require.Equal(t, "library_order-OR_42", created.Name)
	require.Equal(t, 1, created.Every)
	require.Equal(t, "days", created.Period)
	require.Equal(t, 8, created.StartTime.Hour())
	require.Equal(t, 30, created.StartTime.Minute())
	require.Equal(t, due.Day(), created.StartTime.Day())

	var task notify.MailTask
	require.NoError(t, json.Unmarshal(created.Kwargs, &task))
	require.Equal(t, "OR_42", task.Ref)
	require.Equal(t, notify.TemplateOverdue, task.Template)
}

func TestUpdateRecurring_MissingRow(t *testing.T) {
	r := &mockTaskRepo{updateStartTimeFn: func(ctx context.Context, name string, startTime time.Time) (bool, error) {
		return false, nil
	}}
	m := NewManager(r, &mockPublisher{}, 8, 0)

	err := m.UpdateRecurring(context.Background(), 42, time.Now())
	require.Equal(t, ErrTaskNotFound, Code(err))
}

func TestCancelRecurring(t *testing.T) {
	var disabled string
	r := &mockTaskRepo{disableFn: func(ctx context.Context, name string) (bool, error) {
		disabled = name
		return true, nil
	}}
	m := NewManager(r, &mockPublisher{}, 8, 0)

	require.NoError(t, m.CancelRecurring(context.Background(), 42))
	require.Equal(t, "library_order-OR_42", disabled)

	r.disableFn = func(ctx context.Context, name string) (bool, error) { return false, nil }
	err := m.CancelRecurring(context.Background(), 42)
	require.Equal(t, ErrTaskNotFound, Code(err))

	boom := errors.New("db down")
	r.disableFn = func(ctx context.Context, name string) (bool, error) { return false, boom }
	require.Equal(t, boom, m.CancelRecurring(context.Background(), 42))
}
