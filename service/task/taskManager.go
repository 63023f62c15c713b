// Package task bridges workflow transitions to the mail queue and the
// periodic_tasks table. One-shot notifications are published to the
// queue; the recurring per-order reminder lives as a table row with a
// deterministic name so it can be found again on extension and close.
package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	taskrepo "github.com/sumaro2101/EasyLibrary/repository/task"
	"github.com/sumaro2101/EasyLibrary/service/notify"
)

type ErrCode string

const (
	// ErrTaskNotFound means an active order had no reminder row. Every
	// checkout creates one, so this is an invariant violation.
	ErrTaskNotFound ErrCode = "TASK_NOT_FOUND"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Repo is the slice of the periodic-task store the manager uses.
type Repo interface {
	Create(ctx context.Context, t *taskrepo.PeriodicTask) error
	UpdateStartTime(ctx context.Context, name string, startTime time.Time) (bool, error)
	Disable(ctx context.Context, name string) (bool, error)
}

// Publisher pushes a payload onto the mail queue.
type Publisher interface {
	Publish(ctx context.Context, body []byte) error
}

// Manager implements the scheduler collaborator the lending workflow
// depends on.
type Manager struct {
	r     Repo
	p     Publisher
	hour  int
	min   int
	local *time.Location
}

func NewManager(r Repo, p Publisher, hour, minute int) *Manager {
	return &Manager{r: r, p: p, hour: hour, min: minute, local: time.Local}
}

// taskName builds the deterministic per-order key, e.g.
// "library_order-OR_42".
func taskName(orderID int64) string {
	return fmt.Sprintf("library_order-OR_%d", orderID)
}

// fireTime pins a date to the configured reminder hour.
func (m *Manager) fireTime(due time.Time) time.Time {
	return time.Date(due.Year(), due.Month(), due.Day(), m.hour, m.min, 0, 0, m.local)
}

func (m *Manager) ScheduleOnce(ctx context.Context, ref, template string) error {
	body, err := json.Marshal(notify.MailTask{Ref: ref, Template: template})
	if err != nil {
		return err
	}
	return m.p.Publish(ctx, body)
}

func (m *Manager) ScheduleRecurring(ctx context.Context, orderID int64, due time.Time) error {
	kwargs, err := json.Marshal(notify.MailTask{
		Ref:      notify.OrderRef(orderID),
		Template: notify.TemplateOverdue,
	})
	if err != nil {
		return err
	}
	start := m.fireTime(due)
	return m.r.Create(ctx, &taskrepo.PeriodicTask{
		Name:      taskName(orderID),
		Every:     1,
		Period:    "days",
		StartTime: &start,
		Kwargs:    kwargs,
	})
}

func (m *Manager) UpdateRecurring(ctx context.Context, orderID int64, due time.Time) error {
	ok, err := m.r.UpdateStartTime(ctx, taskName(orderID), m.fireTime(due))
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrTaskNotFound)
	}
	return nil
}

func (m *Manager) CancelRecurring(ctx context.Context, orderID int64) error {
	ok, err := m.r.Disable(ctx, taskName(orderID))
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrTaskNotFound)
	}
	return nil
}
