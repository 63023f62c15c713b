package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/sumaro2101/EasyLibrary/model"
	catalogsvc "github.com/sumaro2101/EasyLibrary/service/catalog"
)

// mockSvc overrides only the methods a test needs; calling anything
// else panics through the embedded nil interface.
type mockSvc struct {
	catalogsvc.Service
	createAuthorFn func(ctx context.Context, a *model.Author) error
}

func (m *mockSvc) CreateAuthor(ctx context.Context, a *model.Author) error {
	if m.createAuthorFn == nil {
		a.ID = 1
		return nil
	}
	return m.createAuthorFn(ctx, a)
}

func newTestController(svc catalogsvc.Service) *Controller {
	return &Controller{
		Svc: svc,
		V:   validator.New(),
		Log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func postJSON(h echo.HandlerFunc, body string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	_ = h(e.NewContext(req, rec))
	return rec
}

func TestCreateAuthor_Success(t *testing.T) {
	var got *model.Author
	h := newTestController(&mockSvc{
		createAuthorFn: func(ctx context.Context, a *model.Author) error {
			a.ID = 7
			got = a
			return nil
		},
	})

	rec := postJSON(h.CreateAuthor, `{"first_name":"Frank","last_name":"Herbert"}`)
	require.Equal(t, http.StatusCreated, rec.Code)
	require.Equal(t, "Frank", got.FirstName)
	require.Equal(t, "Herbert", got.LastName)
	require.Contains(t, rec.Body.String(), `"id":7`)
}

func TestCreateAuthor_RejectsMissingName(t *testing.T) {
	h := newTestController(&mockSvc{
		createAuthorFn: func(ctx context.Context, a *model.Author) error {
			t.Fatal("service must not be called on invalid input")
			return nil
		},
	})

	rec := postJSON(h.CreateAuthor, `{"first_name":"Frank"}`)
	require.Equal(t, http.StatusBadRequest, rec.Code)
	require.Contains(t, rec.Body.String(), "LastName")
}
