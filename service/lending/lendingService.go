// Package lending implements the checkout / extension / return
// workflow. All state transitions run inside a single transaction;
// notifications and reminder scheduling happen after commit so a
// rolled-back transaction is never announced.
package lending

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sumaro2101/EasyLibrary/model"
	orderrepo "github.com/sumaro2101/EasyLibrary/repository/order"
	"github.com/sumaro2101/EasyLibrary/service/notify"
)

// maxExtensions caps how often a single order can be extended.
const maxExtensions = 2

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound      ErrCode = "BOOK_NOT_FOUND"
	ErrOrderNotFound     ErrCode = "ORDER_NOT_FOUND"
	ErrExtensionNotFound ErrCode = "EXTENSION_NOT_FOUND"
	ErrForbidden         ErrCode = "FORBIDDEN"
	ErrDuplicateOrder    ErrCode = "DUPLICATE_ORDER"
	ErrNoCopies          ErrCode = "NO_COPIES"
	ErrOrderEnded        ErrCode = "ORDER_ENDED"
	ErrExtensionLimit    ErrCode = "EXTENSION_LIMIT"
	ErrPendingExtension  ErrCode = "PENDING_EXTENSION"
	ErrExtensionResolved ErrCode = "EXTENSION_RESOLVED"
)

type codedError struct {
	code   ErrCode
	fields map[string]string
}

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }

// Fields maps each violated rule to a human-readable message.
func (e codedError) Fields() map[string]string { return e.fields }

func makeErr(c ErrCode) error { return codedError{code: c} }

func makeFieldErr(c ErrCode, field, msg string) error {
	return codedError{code: c, fields: map[string]string{field: msg}}
}

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Fields extracts the per-field messages of a business-rule error.
func Fields(err error) map[string]string {
	var fe interface{ Fields() map[string]string }
	if errors.As(err, &fe) {
		return fe.Fields()
	}
	return nil
}

// Repo is the slice of the order store the workflow uses.
type Repo interface {
	RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error

	BookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*orderrepo.BookRow, error)
	HasActiveOrder(ctx context.Context, tx *sql.Tx, bookID, tenantID int64) (bool, error)
	CountActiveOrders(ctx context.Context, tx *sql.Tx, bookID int64) (int, error)
	InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error

	OrderForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*orderrepo.OrderRow, error)
	CloseOrder(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time) error
	ApplyExtension(ctx context.Context, tx *sql.Tx, orderID int64, newReturn time.Time) error

	OrderDetailByID(ctx context.Context, id int64) (*model.OrderDetail, error)
	ListOrders(ctx context.Context, f orderrepo.OrderFilter, p orderrepo.Page) ([]model.Order, error)

	HasWaitingExtension(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error)
	InsertExtension(ctx context.Context, tx *sql.Tx, e *model.RequestExtension) error
	ExtensionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RequestExtension, error)
	ResolveExtension(ctx context.Context, tx *sql.Tx, id, receivingID int64,
		solution model.ExtensionSolution, responseText *string) error

	ExtensionByID(ctx context.Context, id int64) (*model.RequestExtension, error)
	ListExtensions(ctx context.Context, f orderrepo.ExtensionFilter, p orderrepo.Page) ([]model.RequestExtension, error)
}

// Scheduler is the injected queue/periodic-task collaborator. The
// workflow never builds queue payloads itself.
type Scheduler interface {
	ScheduleOnce(ctx context.Context, ref, template string) error
	ScheduleRecurring(ctx context.Context, orderID int64, due time.Time) error
	UpdateRecurring(ctx context.Context, orderID int64, due time.Time) error
	CancelRecurring(ctx context.Context, orderID int64) error
}

type Service interface {
	// Checkout opens an order for the acting patron.
	Checkout(ctx context.Context, actor model.Actor, bookID int64) (*model.OrderDetail, error)

	// CloseOrder marks the book returned; librarian action.
	CloseOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error)

	// OpenExtension files a due-date extension request for the
	// patron's own active order.
	OpenExtension(ctx context.Context, actor model.Actor, orderID int64) (*model.RequestExtension, error)

	// AcceptExtension and CancelExtension resolve a waiting request;
	// librarian actions.
	AcceptExtension(ctx context.Context, actor model.Actor, extensionID int64, note *string) (*model.RequestExtension, error)
	CancelExtension(ctx context.Context, actor model.Actor, extensionID int64, note *string) (*model.RequestExtension, error)

	GetOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error)
	ListOrders(ctx context.Context, actor model.Actor, f orderrepo.OrderFilter, p orderrepo.Page) ([]model.Order, error)
	GetExtension(ctx context.Context, actor model.Actor, extensionID int64) (*model.RequestExtension, error)
	ListExtensions(ctx context.Context, actor model.Actor, f orderrepo.ExtensionFilter, p orderrepo.Page) ([]model.RequestExtension, error)
}

// ----- Service implementation -----

type service struct {
	r     Repo
	sched Scheduler
	log   *slog.Logger
	now   func() time.Time
}

func New(r Repo, sched Scheduler, log *slog.Logger) Service {
	return &service{r: r, sched: sched, log: log, now: time.Now}
}

// today truncates the clock to a date; loan arithmetic is date-based.
func (s *service) today() time.Time {
	y, m, d := s.now().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func (s *service) Checkout(ctx context.Context, actor model.Actor, bookID int64) (*model.OrderDetail, error) {
	var order model.Order
	err := s.r.RunTx(ctx, func(tx *sql.Tx) error {
		book, err := s.r.BookForUpdate(ctx, tx, bookID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrBookNotFound)
			}
			return err
		}

		// Both rules are checked so the response can report every
		// violation at once.
		fields := map[string]string{}
		code := ErrCode("")

		dup, err := s.r.HasActiveOrder(ctx, tx, bookID, actor.ID)
		if err != nil {
			return err
		}
		if dup {
			code = ErrDuplicateOrder
			fields["tenant"] = "you already hold an active order for this book"
		}

		active, err := s.r.CountActiveOrders(ctx, tx, bookID)
		if err != nil {
			return err
		}
		if active >= book.Quantity {
			if code == "" {
				code = ErrNoCopies
			}
			fields["book"] = "all copies of this book are checked out"
		}
		if code != "" {
			return codedError{code: code, fields: fields}
		}

		today := s.today()
		order = model.Order{
			BookID:     bookID,
			TenantID:   &actor.ID,
			TimeOrder:  today,
			TimeReturn: today.AddDate(0, 0, book.AgeRestriction.LoanDays()),
			Status:     model.OrderActive,
		}
		return s.r.InsertOrder(ctx, tx, &order)
	})
	if err != nil {
		return nil, err
	}

	// Post-commit side effects; failures are logged, never unwound.
	if err := s.sched.ScheduleRecurring(ctx, order.ID, order.TimeReturn); err != nil {
		s.log.Error("lending: reminder create failed", "order_id", order.ID, "err", err)
	}
	s.launch(ctx, notify.OrderRef(order.ID), notify.TemplateOrderOpen)

	return s.r.OrderDetailByID(ctx, order.ID)
}

func (s *service) CloseOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error) {
	err := s.r.RunTx(ctx, func(tx *sql.Tx) error {
		order, err := s.r.OrderForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrOrderNotFound)
			}
			return err
		}
		if order.Status == model.OrderEnded {
			return makeErr(ErrOrderEnded)
		}
		return s.r.CloseOrder(ctx, tx, orderID, s.today())
	})
	if err != nil {
		return nil, err
	}

	if err := s.sched.CancelRecurring(ctx, orderID); err != nil {
		// A missing reminder row means checkout did not create one:
		// invariant violation, alarm but do not fail the return.
		s.log.Error("lending: reminder disable failed", "order_id", orderID, "err", err)
	}
	s.launch(ctx, notify.OrderRef(orderID), notify.TemplateOrderClose)

	return s.r.OrderDetailByID(ctx, orderID)
}

func (s *service) OpenExtension(ctx context.Context, actor model.Actor, orderID int64) (*model.RequestExtension, error) {
	var ext model.RequestExtension
	err := s.r.RunTx(ctx, func(tx *sql.Tx) error {
		order, err := s.r.OrderForUpdate(ctx, tx, orderID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrOrderNotFound)
			}
			return err
		}
		if order.TenantID == nil || *order.TenantID != actor.ID {
			return makeErr(ErrForbidden)
		}
		if order.Status == model.OrderEnded {
			return makeFieldErr(ErrOrderEnded, "order", "the order has already ended")
		}
		if order.CountExtensions >= maxExtensions {
			return makeFieldErr(ErrExtensionLimit, "order", "no further extensions are allowed for this order")
		}
		pending, err := s.r.HasWaitingExtension(ctx, tx, orderID)
		if err != nil {
			return err
		}
		if pending {
			return makeFieldErr(ErrPendingExtension, "order", "an extension request is already waiting")
		}

		ext = model.RequestExtension{OrderID: orderID, ApplicantID: &actor.ID}
		if err := s.r.InsertExtension(ctx, tx, &ext); err != nil {
			// The partial unique index closes the race the pre-check
			// cannot: map it to the same business error.
			if isUniqueViolation(err) {
				return makeFieldErr(ErrPendingExtension, "order", "an extension request is already waiting")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.launch(ctx, notify.ExtensionRef(ext.ID), notify.TemplateExtensionOpen)
	return &ext, nil
}

func (s *service) AcceptExtension(ctx context.Context, actor model.Actor, extensionID int64, note *string) (*model.RequestExtension, error) {
	var orderID int64
	var newReturn time.Time
	err := s.r.RunTx(ctx, func(tx *sql.Tx) error {
		ext, err := s.r.ExtensionForUpdate(ctx, tx, extensionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrExtensionNotFound)
			}
			return err
		}
		if ext.Solution != model.SolutionWaiting {
			return makeErr(ErrExtensionResolved)
		}

		order, err := s.r.OrderForUpdate(ctx, tx, ext.OrderID)
		if err != nil {
			return err
		}
		orderID = order.ID

		// The extension resets the due date relative to the
		// acceptance date, not the prior due date.
		newReturn = s.today().AddDate(0, 0, order.AgeRestriction.LoanDays())
		if err := s.r.ApplyExtension(ctx, tx, order.ID, newReturn); err != nil {
			return err
		}
		return s.r.ResolveExtension(ctx, tx, extensionID, actor.ID, model.SolutionAccepted, note)
	})
	if err != nil {
		return nil, err
	}

	if err := s.sched.UpdateRecurring(ctx, orderID, newReturn); err != nil {
		s.log.Error("lending: reminder update failed", "order_id", orderID, "err", err)
	}
	s.launch(ctx, notify.ExtensionRef(extensionID), notify.TemplateExtensionAccept)

	return s.r.ExtensionByID(ctx, extensionID)
}

func (s *service) CancelExtension(ctx context.Context, actor model.Actor, extensionID int64, note *string) (*model.RequestExtension, error) {
	err := s.r.RunTx(ctx, func(tx *sql.Tx) error {
		ext, err := s.r.ExtensionForUpdate(ctx, tx, extensionID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return makeErr(ErrExtensionNotFound)
			}
			return err
		}
		if ext.Solution != model.SolutionWaiting {
			return makeErr(ErrExtensionResolved)
		}
		return s.r.ResolveExtension(ctx, tx, extensionID, actor.ID, model.SolutionCancelled, note)
	})
	if err != nil {
		return nil, err
	}

	s.launch(ctx, notify.ExtensionRef(extensionID), notify.TemplateExtensionCancel)
	return s.r.ExtensionByID(ctx, extensionID)
}

func (s *service) GetOrder(ctx context.Context, actor model.Actor, orderID int64) (*model.OrderDetail, error) {
	d, err := s.r.OrderDetailByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, makeErr(ErrOrderNotFound)
	}
	if !actor.Role.CanSeeForeignOrders() && (d.TenantID == nil || *d.TenantID != actor.ID) {
		return nil, makeErr(ErrForbidden)
	}
	return d, nil
}

func (s *service) ListOrders(ctx context.Context, actor model.Actor, f orderrepo.OrderFilter, p orderrepo.Page) ([]model.Order, error) {
	if !actor.Role.CanSeeForeignOrders() {
		// Patrons see only their own, still-open orders.
		f.TenantID = actor.ID
		f.ActiveOnly = true
	}
	return s.r.ListOrders(ctx, f, p)
}

func (s *service) GetExtension(ctx context.Context, actor model.Actor, extensionID int64) (*model.RequestExtension, error) {
	e, err := s.r.ExtensionByID(ctx, extensionID)
	if err != nil {
		return nil, err
	}
	if e == nil {
		return nil, makeErr(ErrExtensionNotFound)
	}
	if !actor.Role.CanSeeForeignOrders() && (e.ApplicantID == nil || *e.ApplicantID != actor.ID) {
		return nil, makeErr(ErrForbidden)
	}
	return e, nil
}

func (s *service) ListExtensions(ctx context.Context, actor model.Actor, f orderrepo.ExtensionFilter, p orderrepo.Page) ([]model.RequestExtension, error) {
	if !actor.Role.CanSeeForeignOrders() {
		f.ApplicantID = actor.ID
	}
	return s.r.ListExtensions(ctx, f, p)
}

// launch enqueues a one-shot notification; the workflow does not block
// on or observe delivery.
func (s *service) launch(ctx context.Context, ref, template string) {
	if err := s.sched.ScheduleOnce(ctx, ref, template); err != nil {
		s.log.Error("lending: notification enqueue failed", "ref", ref, "template", template, "err", err)
	}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
