package catalog

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	catalogrepo "github.com/sumaro2101/EasyLibrary/repository/catalog"
	catalogsvc "github.com/sumaro2101/EasyLibrary/service/catalog"
)

// Controller serves the catalog resources: books, authors, publishers,
// volumes and genres.
type Controller struct {
	Svc catalogsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func pageParams(c echo.Context) catalogrepo.Page {
	var p catalogrepo.Page
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
		p.Size = v
	}
	return p
}

// writeErr maps service error codes onto HTTP statuses kept uniform
// across all catalog resources.
func (h *Controller) writeErr(c echo.Context, op string, err error) error {
	switch catalogsvc.Code(err) {
	case catalogsvc.ErrNotFound:
		return c.JSON(http.StatusNotFound, echo.Map{"message": "not found"})
	case catalogsvc.ErrValidation:
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation failed",
			"errors":  catalogsvc.Fields(err),
		})
	case catalogsvc.ErrDuplicate:
		return c.JSON(http.StatusConflict, echo.Map{
			"message": "already exists",
			"errors":  catalogsvc.Fields(err),
		})
	default:
		h.Log.Error(op, "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
}
