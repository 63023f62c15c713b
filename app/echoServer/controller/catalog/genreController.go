package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/model"
)

type genreReq struct {
	NameEN string `json:"name_en" validate:"required,max=100"`
	NameRU string `json:"name_ru" validate:"required,max=100"`
}

// POST /v1/genres
func (h *Controller) CreateGenre(c echo.Context) error {
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	g := &model.Genre{NameEN: req.NameEN, NameRU: req.NameRU}
	if err := h.Svc.CreateGenre(c.Request().Context(), g); err != nil {
		return h.writeErr(c, "genre create", err)
	}
	return c.JSON(http.StatusCreated, g)
}

// PUT /v1/genres/:id
func (h *Controller) UpdateGenre(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req genreReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	g := &model.Genre{ID: id, NameEN: req.NameEN, NameRU: req.NameRU}
	if err := h.Svc.UpdateGenre(c.Request().Context(), g); err != nil {
		return h.writeErr(c, "genre update", err)
	}
	return c.JSON(http.StatusOK, g)
}

// DELETE /v1/genres/:id
func (h *Controller) DeleteGenre(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.DeleteGenre(c.Request().Context(), id); err != nil {
		return h.writeErr(c, "genre delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/genres/:id
func (h *Controller) GetGenre(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetGenre(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, "genre get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/genres
func (h *Controller) ListGenres(c echo.Context) error {
	rows, err := h.Svc.ListGenres(c.Request().Context(), pageParams(c))
	if err != nil {
		return h.writeErr(c, "genre list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
