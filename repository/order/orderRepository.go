// Package orderrepo persists orders and extension requests. Mutating
// queries take an explicit *sql.Tx so the lending service controls
// transaction boundaries; FOR UPDATE locks serialize the quantity and
// state checks against concurrent requests.
package orderrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/sumaro2101/EasyLibrary/model"
)

// Page bounds list queries.
type Page struct {
	Number int
	Size   int
}

func (p Page) limitOffset() (int, int) {
	size := p.Size
	if size <= 0 || size > 100 {
		size = 20
	}
	number := p.Number
	if number <= 0 {
		number = 1
	}
	return size, (number - 1) * size
}

// BookRow is the slice of a book an order operation needs.
type BookRow struct {
	ID             int64
	Name           string
	AgeRestriction model.AgeRestriction
	Quantity       int
}

// OrderRow is an order joined with its book's age restriction.
type OrderRow struct {
	model.Order
	AgeRestriction model.AgeRestriction
}

// OrderFilter narrows ListOrders. Zero values are ignored.
type OrderFilter struct {
	BookID     int64
	TenantID   int64
	Status     model.OrderStatus
	ActiveOnly bool
}

// ExtensionFilter narrows ListExtensions.
type ExtensionFilter struct {
	OrderID     int64
	ApplicantID int64
	Solution    model.ExtensionSolution
}

type Repo interface {
	RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error

	BookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*BookRow, error)
	HasActiveOrder(ctx context.Context, tx *sql.Tx, bookID, tenantID int64) (bool, error)
	CountActiveOrders(ctx context.Context, tx *sql.Tx, bookID int64) (int, error)
	InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error

	OrderForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*OrderRow, error)
	CloseOrder(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time) error
	ApplyExtension(ctx context.Context, tx *sql.Tx, orderID int64, newReturn time.Time) error

	OrderDetailByID(ctx context.Context, id int64) (*model.OrderDetail, error)
	ListOrders(ctx context.Context, f OrderFilter, p Page) ([]model.Order, error)

	HasWaitingExtension(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error)
	InsertExtension(ctx context.Context, tx *sql.Tx, e *model.RequestExtension) error
	ExtensionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RequestExtension, error)
	ResolveExtension(ctx context.Context, tx *sql.Tx, id, receivingID int64,
		solution model.ExtensionSolution, responseText *string) error

	ExtensionByID(ctx context.Context, id int64) (*model.RequestExtension, error)
	ListExtensions(ctx context.Context, f ExtensionFilter, p Page) ([]model.RequestExtension, error)

	MailOrderInfo(ctx context.Context, orderID int64) (*MailInfo, error)
	MailExtensionInfo(ctx context.Context, extensionID int64) (*MailInfo, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

func (r *repo) RunTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	if err = fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) BookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*BookRow, error) {
	// The lock serializes quantity checks against concurrent checkouts.
	const q = `
		SELECT id, name, age_restriction, quantity
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var b BookRow
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&b.ID, &b.Name, &b.AgeRestriction, &b.Quantity)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) HasActiveOrder(ctx context.Context, tx *sql.Tx, bookID, tenantID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM orders
			WHERE book_id = $1 AND tenant_id = $2 AND status <> 'ended'
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID, tenantID).Scan(&exists)
	return exists, err
}

func (r *repo) CountActiveOrders(ctx context.Context, tx *sql.Tx, bookID int64) (int, error) {
	const q = `
		SELECT COUNT(*) FROM orders
		WHERE book_id = $1 AND status = 'active'`
	var n int
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&n)
	return n, err
}

func (r *repo) InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	const q = `
		INSERT INTO orders (book_id, tenant_id, time_order, time_return, status)
		VALUES ($1, $2, $3, $4, 'active')
		RETURNING id`
	return tx.QueryRowContext(ctx, q, o.BookID, o.TenantID, o.TimeOrder, o.TimeReturn).Scan(&o.ID)
}

const orderColumns = `id, book_id, tenant_id, count_extensions, time_order, time_return, status`

func (r *repo) OrderForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*OrderRow, error) {
	// only the order row is locked; the book row is read without a lock.
	const q = `
		SELECT o.id, o.book_id, o.tenant_id, o.count_extensions,
			o.time_order, o.time_return, o.status, b.age_restriction
		FROM orders o
		JOIN books b ON b.id = o.book_id
		WHERE o.id = $1
		FOR UPDATE OF o`
	var row OrderRow
	err := tx.QueryRowContext(ctx, q, id).Scan(
		&row.ID, &row.BookID, &row.TenantID, &row.CountExtensions,
		&row.TimeOrder, &row.TimeReturn, &row.Status, &row.AgeRestriction)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *repo) CloseOrder(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time) error {
	const q = `
		UPDATE orders
		SET status = 'ended', time_return = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, returnDate)
	return err
}

func (r *repo) ApplyExtension(ctx context.Context, tx *sql.Tx, orderID int64, newReturn time.Time) error {
	const q = `
		UPDATE orders
		SET count_extensions = count_extensions + 1,
			time_return = $2
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, orderID, newReturn)
	return err
}

func (r *repo) OrderDetailByID(ctx context.Context, id int64) (*model.OrderDetail, error) {
	const q = `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	var d model.OrderDetail
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&d.ID, &d.BookID, &d.TenantID, &d.CountExtensions,
		&d.TimeOrder, &d.TimeReturn, &d.Status)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	const bq = `
		SELECT b.id, b.name, b.publisher_id, b.best_seller, b.volume_id, b.num_of_volume,
			b.age_restriction, b.count_pages, b.year_published, b.circulation,
			b.quantity, b.is_published, p.name
		FROM books b
		JOIN publishers p ON p.id = b.publisher_id
		WHERE b.id = $1`
	err = r.db.QueryRowContext(ctx, bq, d.BookID).Scan(
		&d.Book.ID, &d.Book.Name, &d.Book.PublisherID, &d.Book.BestSeller,
		&d.Book.VolumeID, &d.Book.NumOfVolume, &d.Book.AgeRestriction,
		&d.Book.CountPages, &d.Book.YearPublished, &d.Book.Circulation,
		&d.Book.Quantity, &d.Book.IsPublished, &d.Book.Publisher)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *repo) ListOrders(ctx context.Context, f OrderFilter, p Page) ([]model.Order, error) {
	const q = `
		SELECT ` + orderColumns + `
		FROM orders
		WHERE ($1 = 0 OR book_id = $1)
			AND ($2 = 0 OR tenant_id = $2)
			AND ($3 = '' OR status = $3)
			AND (NOT $4 OR status <> 'ended')
		ORDER BY time_order, id
		LIMIT $5 OFFSET $6`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q, f.BookID, f.TenantID, string(f.Status), f.ActiveOnly, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Order
	for rows.Next() {
		var o model.Order
		if err := rows.Scan(&o.ID, &o.BookID, &o.TenantID, &o.CountExtensions,
			&o.TimeOrder, &o.TimeReturn, &o.Status); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

const extensionColumns = `id, order_id, applicant_id, receiving_id,
	time_request, time_response, response_text, solution`

func (r *repo) HasWaitingExtension(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM request_extensions
			WHERE order_id = $1 AND solution = 'waiting'
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, orderID).Scan(&exists)
	return exists, err
}

func (r *repo) InsertExtension(ctx context.Context, tx *sql.Tx, e *model.RequestExtension) error {
	const q = `
		INSERT INTO request_extensions (order_id, applicant_id)
		VALUES ($1, $2)
		RETURNING id, time_request, time_response, solution`
	return tx.QueryRowContext(ctx, q, e.OrderID, e.ApplicantID).Scan(
		&e.ID, &e.TimeRequest, &e.TimeResponse, &e.Solution)
}

func scanExtension(row *sql.Row) (*model.RequestExtension, error) {
	var e model.RequestExtension
	err := row.Scan(&e.ID, &e.OrderID, &e.ApplicantID, &e.ReceivingID,
		&e.TimeRequest, &e.TimeResponse, &e.ResponseText, &e.Solution)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *repo) ExtensionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RequestExtension, error) {
	const q = `SELECT ` + extensionColumns + ` FROM request_extensions WHERE id = $1 FOR UPDATE`
	return scanExtension(tx.QueryRowContext(ctx, q, id))
}

func (r *repo) ResolveExtension(ctx context.Context, tx *sql.Tx, id, receivingID int64,
	solution model.ExtensionSolution, responseText *string) error {
	const q = `
		UPDATE request_extensions
		SET receiving_id = $2, solution = $3, response_text = $4, time_response = NOW()
		WHERE id = $1`
	_, err := tx.ExecContext(ctx, q, id, receivingID, solution, responseText)
	return err
}

func (r *repo) ExtensionByID(ctx context.Context, id int64) (*model.RequestExtension, error) {
	const q = `SELECT ` + extensionColumns + ` FROM request_extensions WHERE id = $1`
	e, err := scanExtension(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return e, err
}

func (r *repo) ListExtensions(ctx context.Context, f ExtensionFilter, p Page) ([]model.RequestExtension, error) {
	const q = `
		SELECT ` + extensionColumns + `
		FROM request_extensions
		WHERE ($1 = 0 OR order_id = $1)
			AND ($2 = 0 OR applicant_id = $2)
			AND ($3 = '' OR solution = $3)
		ORDER BY time_request, id
		LIMIT $4 OFFSET $5`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q, f.OrderID, f.ApplicantID, string(f.Solution), limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.RequestExtension
	for rows.Next() {
		var e model.RequestExtension
		if err := rows.Scan(&e.ID, &e.OrderID, &e.ApplicantID, &e.ReceivingID,
			&e.TimeRequest, &e.TimeResponse, &e.ResponseText, &e.Solution); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
