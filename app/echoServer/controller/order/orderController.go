package order

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/app/echoServer/jwtx"
	"github.com/sumaro2101/EasyLibrary/model"
	orderrepo "github.com/sumaro2101/EasyLibrary/repository/order"
	"github.com/sumaro2101/EasyLibrary/service/lending"
)

type Controller struct {
	Svc lending.Service
	Log *slog.Logger
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /v1/books/:id/orders
func (h *Controller) Checkout(c echo.Context) error {
	bookID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.Checkout(c.Request().Context(), jwtx.Actor(c), bookID)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrBookNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "book not found"})
		case lending.ErrDuplicateOrder, lending.ErrNoCopies:
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "checkout rejected",
				"errors":  lending.Fields(err),
			})
		default:
			h.Log.Error("checkout", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// DELETE /v1/orders/:id closes the order when the book comes back.
func (h *Controller) Close(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.CloseOrder(c.Request().Context(), jwtx.Actor(c), id)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrOrderNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case lending.ErrOrderEnded:
			return c.JSON(http.StatusConflict, echo.Map{"message": "order already ended"})
		default:
			h.Log.Error("order close", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/orders/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetOrder(c.Request().Context(), jwtx.Actor(c), id)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrOrderNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case lending.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("order get", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/orders
func (h *Controller) List(c echo.Context) error {
	f := orderrepo.OrderFilter{}
	if v, err := strconv.ParseInt(c.QueryParam("book"), 10, 64); err == nil {
		f.BookID = v
	}
	if s := c.QueryParam("status"); s == string(model.OrderActive) || s == string(model.OrderEnded) {
		f.Status = model.OrderStatus(s)
	}

	rows, err := h.Svc.ListOrders(c.Request().Context(), jwtx.Actor(c), f, pageParams(c))
	if err != nil {
		h.Log.Error("order list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}

func pageParams(c echo.Context) orderrepo.Page {
	var p orderrepo.Page
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
		p.Size = v
	}
	return p
}
