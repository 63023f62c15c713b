package extension

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/app/echoServer/jwtx"
	"github.com/sumaro2101/EasyLibrary/model"
	orderrepo "github.com/sumaro2101/EasyLibrary/repository/order"
	"github.com/sumaro2101/EasyLibrary/service/lending"
)

type resolveReq struct {
	ResponseText *string `json:"response_text" validate:"omitempty,max=500"`
}

type Controller struct {
	Svc lending.Service
	V   *validator.Validate
	Log *slog.Logger
}

func pathID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// POST /v1/orders/:id/extensions
func (h *Controller) Open(c echo.Context) error {
	orderID, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	out, err := h.Svc.OpenExtension(c.Request().Context(), jwtx.Actor(c), orderID)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrOrderNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "order not found"})
		case lending.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case lending.ErrOrderEnded, lending.ErrExtensionLimit, lending.ErrPendingExtension:
			return c.JSON(http.StatusBadRequest, echo.Map{
				"message": "extension rejected",
				"errors":  lending.Fields(err),
			})
		default:
			h.Log.Error("extension open", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusCreated, out)
}

// PATCH /v1/extensions/:id/accept
func (h *Controller) Accept(c echo.Context) error {
	return h.resolve(c, h.Svc.AcceptExtension, "extension accept")
}

// PATCH /v1/extensions/:id/cancel
func (h *Controller) Cancel(c echo.Context) error {
	return h.resolve(c, h.Svc.CancelExtension, "extension cancel")
}

func (h *Controller) resolve(
	c echo.Context,
	fn func(ctx context.Context, actor model.Actor, id int64, note *string) (*model.RequestExtension, error),
	op string,
) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}

	var req resolveReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	out, err := fn(c.Request().Context(), jwtx.Actor(c), id, req.ResponseText)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrExtensionNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "extension not found"})
		case lending.ErrExtensionResolved:
			return c.JSON(http.StatusConflict, echo.Map{"message": "extension already resolved"})
		case lending.ErrOrderEnded:
			return c.JSON(http.StatusBadRequest, echo.Map{"message": "order already ended"})
		default:
			h.Log.Error(op, "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/extensions/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetExtension(c.Request().Context(), jwtx.Actor(c), id)
	if err != nil {
		switch lending.Code(err) {
		case lending.ErrExtensionNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "extension not found"})
		case lending.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		default:
			h.Log.Error("extension get", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/extensions
func (h *Controller) List(c echo.Context) error {
	f := orderrepo.ExtensionFilter{}
	if v, err := strconv.ParseInt(c.QueryParam("order"), 10, 64); err == nil {
		f.OrderID = v
	}
	switch s := model.ExtensionSolution(c.QueryParam("solution")); s {
	case model.SolutionWaiting, model.SolutionAccepted, model.SolutionCancelled:
		f.Solution = s
	}

	var p orderrepo.Page
	if v, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		p.Number = v
	}
	if v, err := strconv.Atoi(c.QueryParam("page_size")); err == nil {
		p.Size = v
	}

	rows, err := h.Svc.ListExtensions(c.Request().Context(), jwtx.Actor(c), f, p)
	if err != nil {
		h.Log.Error("extension list", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
