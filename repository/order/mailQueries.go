package orderrepo

import (
	"context"
	"database/sql"
	"time"

	"github.com/sumaro2101/EasyLibrary/model"
)

// MailInfo is everything a notification template needs about an order
// or an extension request.
type MailInfo struct {
	OrderID        int64
	ExtensionID    *int64
	ResponseText   *string
	BookName       string
	AgeRestriction model.AgeRestriction
	TimeReturn     time.Time
	TenantEmail    *string
}

// MailOrderInfo loads the template context for an order ref.
// Returns nil when the order does not exist.
func (r *repo) MailOrderInfo(ctx context.Context, orderID int64) (*MailInfo, error) {
	const q = `
		SELECT o.id, b.name, b.age_restriction, o.time_return, u.email
		FROM orders o
		JOIN books b ON b.id = o.book_id
		LEFT JOIN users u ON u.id = o.tenant_id
		WHERE o.id = $1`
	var info MailInfo
	err := r.db.QueryRowContext(ctx, q, orderID).Scan(
		&info.OrderID, &info.BookName, &info.AgeRestriction, &info.TimeReturn, &info.TenantEmail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}

// MailExtensionInfo loads the template context for an extension ref.
// The recipient is the applicant, not the order's tenant.
func (r *repo) MailExtensionInfo(ctx context.Context, extensionID int64) (*MailInfo, error) {
	const q = `
		SELECT o.id, e.id, e.response_text, b.name, b.age_restriction, o.time_return, u.email
		FROM request_extensions e
		JOIN orders o ON o.id = e.order_id
		JOIN books b ON b.id = o.book_id
		LEFT JOIN users u ON u.id = e.applicant_id
		WHERE e.id = $1`
	var info MailInfo
	err := r.db.QueryRowContext(ctx, q, extensionID).Scan(
		&info.OrderID, &info.ExtensionID, &info.ResponseText,
		&info.BookName, &info.AgeRestriction, &info.TimeReturn, &info.TenantEmail)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &info, nil
}
