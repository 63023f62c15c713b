package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/model"
)

type authorReq struct {
	FirstName string  `json:"first_name" validate:"required,max=100"`
	LastName  string  `json:"last_name" validate:"required,max=100"`
	Surname   *string `json:"surname" validate:"omitempty,max=100"`
}

// POST /v1/authors
func (h *Controller) CreateAuthor(c echo.Context) error {
	var req authorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	a := &model.Author{FirstName: req.FirstName, LastName: req.LastName, Surname: req.Surname}
	if err := h.Svc.CreateAuthor(c.Request().Context(), a); err != nil {
		return h.writeErr(c, "author create", err)
	}
	return c.JSON(http.StatusCreated, a)
}

// PUT /v1/authors/:id
func (h *Controller) UpdateAuthor(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req authorReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	a := &model.Author{ID: id, FirstName: req.FirstName, LastName: req.LastName, Surname: req.Surname}
	if err := h.Svc.UpdateAuthor(c.Request().Context(), a); err != nil {
		return h.writeErr(c, "author update", err)
	}
	return c.JSON(http.StatusOK, a)
}

// DELETE /v1/authors/:id
func (h *Controller) DeleteAuthor(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.DeleteAuthor(c.Request().Context(), id); err != nil {
		return h.writeErr(c, "author delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/authors/:id
func (h *Controller) GetAuthor(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetAuthor(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, "author get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/authors
func (h *Controller) ListAuthors(c echo.Context) error {
	rows, err := h.Svc.ListAuthors(c.Request().Context(), c.QueryParam("name"), pageParams(c))
	if err != nil {
		return h.writeErr(c, "author list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
