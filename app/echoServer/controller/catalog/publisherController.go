package catalog

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/model"
)

type publisherReq struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=255"`
	URL     string `json:"url" validate:"required,url"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"required,e164"`
}

// POST /v1/publishers
func (h *Controller) CreatePublisher(c echo.Context) error {
	var req publisherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	p := &model.Publisher{Name: req.Name, Address: req.Address, URL: req.URL, Email: req.Email, Phone: req.Phone}
	if err := h.Svc.CreatePublisher(c.Request().Context(), p); err != nil {
		return h.writeErr(c, "publisher create", err)
	}
	return c.JSON(http.StatusCreated, p)
}

// PUT /v1/publishers/:id
func (h *Controller) UpdatePublisher(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req publisherReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	p := &model.Publisher{ID: id, Name: req.Name, Address: req.Address, URL: req.URL, Email: req.Email, Phone: req.Phone}
	if err := h.Svc.UpdatePublisher(c.Request().Context(), p); err != nil {
		return h.writeErr(c, "publisher update", err)
	}
	return c.JSON(http.StatusOK, p)
}

// DELETE /v1/publishers/:id
func (h *Controller) DeletePublisher(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.DeletePublisher(c.Request().Context(), id); err != nil {
		return h.writeErr(c, "publisher delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/publishers/:id
func (h *Controller) GetPublisher(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetPublisher(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, "publisher get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/publishers
func (h *Controller) ListPublishers(c echo.Context) error {
	rows, err := h.Svc.ListPublishers(c.Request().Context(), c.QueryParam("name"), pageParams(c))
	if err != nil {
		return h.writeErr(c, "publisher list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
