package lending

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sumaro2101/EasyLibrary/model"
	orderrepo "github.com/sumaro2101/EasyLibrary/repository/order"
)

// stateRepo keeps orders and extensions in memory so a whole workflow
// can be walked through end to end.
type stateRepo struct {
	book       orderrepo.BookRow
	orders     map[int64]*model.Order
	extensions map[int64]*model.RequestExtension
	nextID     int64
}

var _ Repo = (*stateRepo)(nil)

func newStateRepo(book orderrepo.BookRow) *stateRepo {
	return &stateRepo{
		book:       book,
		orders:     map[int64]*model.Order{},
		extensions: map[int64]*model.RequestExtension{},
	}
}

func (s *stateRepo) id() int64 {
	s.nextID++
	return s.nextID
}

func (s *stateRepo) RunTx(ctx context.Context, fn func(tx *sql.Tx) error) error { return fn(nil) }

func (s *stateRepo) BookForUpdate(ctx context.Context, tx *sql.Tx, bookID int64) (*orderrepo.BookRow, error) {
	if bookID != s.book.ID {
		return nil, sql.ErrNoRows
	}
	b := s.book
	return &b, nil
}

func (s *stateRepo) HasActiveOrder(ctx context.Context, tx *sql.Tx, bookID, tenantID int64) (bool, error) {
	for _, o := range s.orders {
		if o.BookID == bookID && o.TenantID != nil && *o.TenantID == tenantID && o.Status != model.OrderEnded {
			return true, nil
		}
	}
	return false, nil
}

func (s *stateRepo) CountActiveOrders(ctx context.Context, tx *sql.Tx, bookID int64) (int, error) {
	n := 0
	for _, o := range s.orders {
		if o.BookID == bookID && o.Status == model.OrderActive {
			n++
		}
	}
	return n, nil
}

func (s *stateRepo) InsertOrder(ctx context.Context, tx *sql.Tx, o *model.Order) error {
	o.ID = s.id()
	cp := *o
	s.orders[o.ID] = &cp
	return nil
}

func (s *stateRepo) OrderForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*orderrepo.OrderRow, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &orderrepo.OrderRow{Order: *o, AgeRestriction: s.book.AgeRestriction}, nil
}

func (s *stateRepo) CloseOrder(ctx context.Context, tx *sql.Tx, id int64, returnDate time.Time) error {
	o := s.orders[id]
	o.Status = model.OrderEnded
	o.TimeReturn = returnDate
	return nil
}

func (s *stateRepo) ApplyExtension(ctx context.Context, tx *sql.Tx, orderID int64, newReturn time.Time) error {
	o := s.orders[orderID]
	o.CountExtensions++
	o.TimeReturn = newReturn
	return nil
}

func (s *stateRepo) OrderDetailByID(ctx context.Context, id int64) (*model.OrderDetail, error) {
	o, ok := s.orders[id]
	if !ok {
		return nil, nil
	}
	return &model.OrderDetail{Order: *o}, nil
}

func (s *stateRepo) ListOrders(ctx context.Context, f orderrepo.OrderFilter, p orderrepo.Page) ([]model.Order, error) {
	var out []model.Order
	for _, o := range s.orders {
		out = append(out, *o)
	}
	return out, nil
}

func (s *stateRepo) HasWaitingExtension(ctx context.Context, tx *sql.Tx, orderID int64) (bool, error) {
	for _, e := range s.extensions {
		if e.OrderID == orderID && e.Solution == model.SolutionWaiting {
			return true, nil
		}
	}
	return false, nil
}

func (s *stateRepo) InsertExtension(ctx context.Context, tx *sql.Tx, e *model.RequestExtension) error {
	e.ID = s.id()
	e.Solution = model.SolutionWaiting
	cp := *e
	s.extensions[e.ID] = &cp
	return nil
}

func (s *stateRepo) ExtensionForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*model.RequestExtension, error) {
	e, ok := s.extensions[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *e
	return &cp, nil
}

func (s *stateRepo) ResolveExtension(ctx context.Context, tx *sql.Tx, id, receivingID int64,
	solution model.ExtensionSolution, responseText *string) error {
	e := s.extensions[id]
	e.ReceivingID = &receivingID
	e.Solution = solution
	e.ResponseText = responseText
	return nil
}

func (s *stateRepo) ExtensionByID(ctx context.Context, id int64) (*model.RequestExtension, error) {
	e, ok := s.extensions[id]
	if !ok {
		return nil, nil
	}
	cp := *e
	return &cp, nil
}

func (s *stateRepo) ListExtensions(ctx context.Context, f orderrepo.ExtensionFilter, p orderrepo.Page) ([]model.RequestExtension, error) {
	var out []model.RequestExtension
	for _, e := range s.extensions {
		out = append(out, *e)
	}
	return out, nil
}

// A single copy moves through checkout, a contested second checkout,
// an accepted extension, the return, and a successful re-checkout.
func TestWorkflow_SingleCopyLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newStateRepo(orderrepo.BookRow{ID: 1, Name: "Dune", AgeRestriction: model.Age16, Quantity: 1})

	s := newTestService(repo, &mockSched{}, clock)
	patronA := model.Actor{ID: 100, Role: model.RolePatron}
	patronB := model.Actor{ID: 200, Role: model.RolePatron}

	// Patron A takes the copy.
	orderA, err := s.Checkout(ctx, patronA, 1)
	require.NoError(t, err)
	require.Equal(t, model.OrderActive, orderA.Status)
	require.Equal(t, day0.AddDate(0, 0, 14), orderA.TimeReturn)

	// Patron B is turned away; the single copy is out.
	_, err = s.Checkout(ctx, patronB, 1)
	require.Equal(t, ErrNoCopies, Code(err))

	// Patron A asks for more time; a librarian grants it.
	ext, err := s.OpenExtension(ctx, patronA, orderA.ID)
	require.NoError(t, err)
	require.Equal(t, model.SolutionWaiting, ext.Solution)

	// A second request while the first waits is rejected.
	_, err = s.OpenExtension(ctx, patronA, orderA.ID)
	require.Equal(t, ErrPendingExtension, Code(err))

	accepted, err := s.AcceptExtension(ctx, librarian, ext.ID, nil)
	require.NoError(t, err)
	require.Equal(t, model.SolutionAccepted, accepted.Solution)

	reloaded, err := s.GetOrder(ctx, patronA, orderA.ID)
	require.NoError(t, err)
	require.Equal(t, 1, reloaded.CountExtensions)
	require.Equal(t, day0.AddDate(0, 0, 14), reloaded.TimeReturn)

	// The book comes back.
	closed, err := s.CloseOrder(ctx, librarian, orderA.ID)
	require.NoError(t, err)
	require.Equal(t, model.OrderEnded, closed.Status)
	require.Equal(t, day0, closed.TimeReturn)

	// And the freed copy goes to patron B.
	orderB, err := s.Checkout(ctx, patronB, 1)
	require.NoError(t, err)
	require.Equal(t, model.OrderActive, orderB.Status)
}
