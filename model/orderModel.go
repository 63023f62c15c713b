// model/order.go
package model

import "time"

type OrderStatus string

const (
	OrderActive OrderStatus = "active"
	OrderEnded  OrderStatus = "ended"
)

// Order is a single checkout of one book to one patron. Rows are never
// deleted; a returned book flips the status to ended.
type Order struct {
	ID              int64       `json:"id"`
	BookID          int64       `json:"book_id"`
	TenantID        *int64      `json:"tenant_id,omitempty"` // nulled if the user is removed
	CountExtensions int         `json:"count_extensions"`
	TimeOrder       time.Time   `json:"time_order"`
	TimeReturn      time.Time   `json:"time_return"`
	Status          OrderStatus `json:"status"`
}

// OrderDetail carries the book for display alongside the order.
type OrderDetail struct {
	Order
	Book BookDetail `json:"book"`
}

type ExtensionSolution string

const (
	SolutionWaiting   ExtensionSolution = "waiting"
	SolutionAccepted  ExtensionSolution = "accepted"
	SolutionCancelled ExtensionSolution = "cancelled"
)

// RequestExtension is a patron's request to push out an order's due date.
// It transitions exactly once, from waiting to a terminal solution, by a
// librarian action.
type RequestExtension struct {
	ID           int64             `json:"id"`
	OrderID      int64             `json:"order_id"`
	ApplicantID  *int64            `json:"applicant_id,omitempty"`
	ReceivingID  *int64            `json:"receiving_id,omitempty"`
	TimeRequest  time.Time         `json:"time_request"`
	TimeResponse time.Time         `json:"time_response"`
	ResponseText *string           `json:"response_text,omitempty"`
	Solution     ExtensionSolution `json:"solution"`
}
