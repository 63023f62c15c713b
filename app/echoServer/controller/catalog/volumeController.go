package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/model"
)

type volumeReq struct {
	Name string `json:"name" validate:"required,max=255"`
}

// POST /v1/volumes
func (h *Controller) CreateVolume(c echo.Context) error {
	var req volumeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	v := &model.Volume{Name: req.Name}
	if err := h.Svc.CreateVolume(c.Request().Context(), v); err != nil {
		return h.writeErr(c, "volume create", err)
	}
	return c.JSON(http.StatusCreated, v)
}

// PUT /v1/volumes/:id
func (h *Controller) UpdateVolume(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req volumeReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	v := &model.Volume{ID: id, Name: req.Name}
	if err := h.Svc.UpdateVolume(c.Request().Context(), v); err != nil {
		return h.writeErr(c, "volume update", err)
	}
	return c.JSON(http.StatusOK, v)
}

// DELETE /v1/volumes/:id
func (h *Controller) DeleteVolume(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.DeleteVolume(c.Request().Context(), id); err != nil {
		return h.writeErr(c, "volume delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/volumes/:id
func (h *Controller) GetVolume(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetVolume(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, "volume get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/volumes
func (h *Controller) ListVolumes(c echo.Context) error {
	rows, err := h.Svc.ListVolumes(c.Request().Context(), c.QueryParam("name"), pageParams(c))
	if err != nil {
		return h.writeErr(c, "volume list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
