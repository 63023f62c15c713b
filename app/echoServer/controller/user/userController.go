package user

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/app/echoServer/jwtx"
	"github.com/sumaro2101/EasyLibrary/model"
	authsvc "github.com/sumaro2101/EasyLibrary/service/auth"
)

type Controller struct {
	Svc authsvc.Service
	V   *validator.Validate
	Log *slog.Logger
}

func userID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

// GET /v1/users/:id
func (h *Controller) Get(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	u, err := h.Svc.Get(c.Request().Context(), id)
	if err != nil {
		if authsvc.Code(err) == authsvc.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		}
		h.Log.Error("user get", "err", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
	}

	actor := jwtx.Actor(c)
	if actor.ID != u.ID && actor.Role == model.RolePatron {
		// Strangers see the public subset only.
		return c.JSON(http.StatusOK, echo.Map{
			"id":         u.ID,
			"username":   u.Username,
			"first_name": u.FirstName,
			"email":      u.Email,
		})
	}
	return c.JSON(http.StatusOK, u)
}

// PATCH /v1/users/:id
func (h *Controller) Update(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req model.UpdateUserReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid JSON"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{
			"message": "validation error",
			"errors":  err.Error(),
		})
	}

	u, err := h.Svc.Update(c.Request().Context(), jwtx.Actor(c), id, req)
	if err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case authsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		case authsvc.ErrPhoneTaken:
			return c.JSON(http.StatusConflict, echo.Map{"message": "phone already registered"})
		default:
			h.Log.Error("user update", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.JSON(http.StatusOK, u)
}

// DELETE /v1/users/:id deactivates the account; the row stays.
func (h *Controller) Delete(c echo.Context) error {
	id, ok := userID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.Deactivate(c.Request().Context(), jwtx.Actor(c), id); err != nil {
		switch authsvc.Code(err) {
		case authsvc.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"message": "forbidden"})
		case authsvc.ErrUserNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
		default:
			h.Log.Error("user delete", "err", err)
			return c.JSON(http.StatusInternalServerError, echo.Map{"message": "internal error"})
		}
	}
	return c.NoContent(http.StatusNoContent)
}
