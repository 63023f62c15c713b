package catalog

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sumaro2101/EasyLibrary/model"
	catalogrepo "github.com/sumaro2101/EasyLibrary/repository/catalog"
)

type bookReq struct {
	Name           string  `json:"name" validate:"required,max=255"`
	PublisherID    int64   `json:"publisher_id" validate:"required,gt=0"`
	BestSeller     bool    `json:"best_seller"`
	VolumeID       *int64  `json:"volume_id" validate:"omitempty,gt=0"`
	NumOfVolume    *int    `json:"num_of_volume" validate:"omitempty,gt=0"`
	AgeRestriction int     `json:"age_restriction"`
	CountPages     int     `json:"count_pages" validate:"required,gt=0"`
	YearPublished  int     `json:"year_published" validate:"required"`
	Circulation    int     `json:"circulation" validate:"gte=0"`
	Quantity       int     `json:"quantity" validate:"required,gte=1"`
	IsPublished    bool    `json:"is_published"`
	AuthorIDs      []int64 `json:"author_ids" validate:"required,min=1,dive,gt=0"`
	GenreIDs       []int64 `json:"genre_ids" validate:"omitempty,dive,gt=0"`
}

func (r bookReq) toModel(id int64) *model.Book {
	return &model.Book{
		ID:             id,
		Name:           r.Name,
		PublisherID:    r.PublisherID,
		BestSeller:     r.BestSeller,
		VolumeID:       r.VolumeID,
		NumOfVolume:    r.NumOfVolume,
		AgeRestriction: model.AgeRestriction(r.AgeRestriction),
		CountPages:     r.CountPages,
		YearPublished:  r.YearPublished,
		Circulation:    r.Circulation,
		Quantity:       r.Quantity,
		IsPublished:    r.IsPublished,
		AuthorIDs:      r.AuthorIDs,
		GenreIDs:       r.GenreIDs,
	}
}

// POST /v1/books
func (h *Controller) CreateBook(c echo.Context) error {
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	b := req.toModel(0)
	if err := h.Svc.CreateBook(c.Request().Context(), b); err != nil {
		return h.writeErr(c, "book create", err)
	}
	return c.JSON(http.StatusCreated, b)
}

// PUT /v1/books/:id
func (h *Controller) UpdateBook(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	var req bookReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request body"})
	}
	if err := h.V.Struct(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": err.Error()})
	}

	b := req.toModel(id)
	if err := h.Svc.UpdateBook(c.Request().Context(), b); err != nil {
		return h.writeErr(c, "book update", err)
	}
	return c.JSON(http.StatusOK, b)
}

// DELETE /v1/books/:id
func (h *Controller) DeleteBook(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	if err := h.Svc.DeleteBook(c.Request().Context(), id); err != nil {
		return h.writeErr(c, "book delete", err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GET /v1/books/:id
func (h *Controller) GetBook(c echo.Context) error {
	id, ok := pathID(c)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid id"})
	}
	out, err := h.Svc.GetBook(c.Request().Context(), id)
	if err != nil {
		return h.writeErr(c, "book get", err)
	}
	return c.JSON(http.StatusOK, out)
}

// GET /v1/books
func (h *Controller) ListBooks(c echo.Context) error {
	f := catalogrepo.BookFilter{Name: c.QueryParam("name")}
	if v, err := strconv.ParseInt(c.QueryParam("publisher"), 10, 64); err == nil {
		f.PublisherID = v
	}
	if v, err := strconv.ParseInt(c.QueryParam("author"), 10, 64); err == nil {
		f.AuthorID = v
	}
	if v, err := strconv.ParseInt(c.QueryParam("genre"), 10, 64); err == nil {
		f.GenreID = v
	}
	if v, err := strconv.Atoi(c.QueryParam("age_restriction")); err == nil {
		f.AgeRestriction = &v
	}
	if v, err := strconv.ParseBool(c.QueryParam("is_published")); err == nil {
		f.IsPublished = &v
	}
	if v, err := strconv.ParseBool(c.QueryParam("best_seller")); err == nil {
		f.BestSeller = &v
	}

	rows, err := h.Svc.ListBooks(c.Request().Context(), f, pageParams(c))
	if err != nil {
		return h.writeErr(c, "book list", err)
	}
	return c.JSON(http.StatusOK, echo.Map{"data": rows})
}
