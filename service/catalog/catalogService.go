// Package catalogsvc wraps catalog CRUD with the domain validation
// rules the database alone cannot report nicely: every violated rule
// comes back at once as a field-scoped message map.
package catalogsvc

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/sumaro2101/EasyLibrary/model"
	catalogrepo "github.com/sumaro2101/EasyLibrary/repository/catalog"
)

type ErrCode string

const (
	ErrNotFound   ErrCode = "NOT_FOUND"
	ErrValidation ErrCode = "VALIDATION"
	ErrDuplicate  ErrCode = "DUPLICATE"
)

type codedError struct {
	code   ErrCode
	fields map[string]string
}

func (e codedError) Error() string             { return string(e.code) }
func (e codedError) Code() ErrCode             { return e.code }
func (e codedError) Fields() map[string]string { return e.fields }

func makeErr(c ErrCode) error { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

// Fields extracts the per-field messages of a validation error.
func Fields(err error) map[string]string {
	var fe interface{ Fields() map[string]string }
	if errors.As(err, &fe) {
		return fe.Fields()
	}
	return nil
}

type Service interface {
	CreateBook(ctx context.Context, b *model.Book) error
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id int64) error
	GetBook(ctx context.Context, id int64) (*model.BookDetail, error)
	ListBooks(ctx context.Context, f catalogrepo.BookFilter, p catalogrepo.Page) ([]model.BookDetail, error)

	CreateAuthor(ctx context.Context, a *model.Author) error
	UpdateAuthor(ctx context.Context, a *model.Author) error
	DeleteAuthor(ctx context.Context, id int64) error
	GetAuthor(ctx context.Context, id int64) (*model.Author, error)
	ListAuthors(ctx context.Context, name string, p catalogrepo.Page) ([]model.Author, error)

	CreatePublisher(ctx context.Context, pub *model.Publisher) error
	UpdatePublisher(ctx context.Context, pub *model.Publisher) error
	DeletePublisher(ctx context.Context, id int64) error
	GetPublisher(ctx context.Context, id int64) (*model.Publisher, error)
	ListPublishers(ctx context.Context, name string, p catalogrepo.Page) ([]model.Publisher, error)

	CreateVolume(ctx context.Context, v *model.Volume) error
	UpdateVolume(ctx context.Context, v *model.Volume) error
	DeleteVolume(ctx context.Context, id int64) error
	GetVolume(ctx context.Context, id int64) (*model.Volume, error)
	ListVolumes(ctx context.Context, name string, p catalogrepo.Page) ([]model.Volume, error)

	CreateGenre(ctx context.Context, g *model.Genre) error
	UpdateGenre(ctx context.Context, g *model.Genre) error
	DeleteGenre(ctx context.Context, id int64) error
	GetGenre(ctx context.Context, id int64) (*model.Genre, error)
	ListGenres(ctx context.Context, p catalogrepo.Page) ([]model.Genre, error)
}

type service struct {
	r   catalogrepo.Repo
	now func() int // current year, swappable in tests
}

func New(r catalogrepo.Repo) Service {
	return &service{r: r, now: currentYear}
}

// Books

func (s *service) CreateBook(ctx context.Context, b *model.Book) error {
	if err := s.validateBook(b); err != nil {
		return err
	}
	return mapRepoErr(s.r.CreateBook(ctx, b))
}

func (s *service) UpdateBook(ctx context.Context, b *model.Book) error {
	if err := s.validateBook(b); err != nil {
		return err
	}
	return mapRepoErr(s.r.UpdateBook(ctx, b))
}

func (s *service) DeleteBook(ctx context.Context, id int64) error {
	ok, err := s.r.DeleteBook(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func (s *service) GetBook(ctx context.Context, id int64) (*model.BookDetail, error) {
	d, err := s.r.BookByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, makeErr(ErrNotFound)
	}
	return d, nil
}

func (s *service) ListBooks(ctx context.Context, f catalogrepo.BookFilter, p catalogrepo.Page) ([]model.BookDetail, error) {
	return s.r.ListBooks(ctx, f, p)
}

// Authors

func (s *service) CreateAuthor(ctx context.Context, a *model.Author) error {
	if err := validateRequired(map[string]string{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
	}); err != nil {
		return err
	}
	return mapRepoErr(s.r.CreateAuthor(ctx, a))
}

func (s *service) UpdateAuthor(ctx context.Context, a *model.Author) error {
	if err := validateRequired(map[string]string{
		"first_name": a.FirstName,
		"last_name":  a.LastName,
	}); err != nil {
		return err
	}
	return mapRepoErr(s.r.UpdateAuthor(ctx, a))
}

func (s *service) DeleteAuthor(ctx context.Context, id int64) error {
	return deleted(s.r.DeleteAuthor(ctx, id))
}

func (s *service) GetAuthor(ctx context.Context, id int64) (*model.Author, error) {
	a, err := s.r.AuthorByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if a == nil {
		return nil, makeErr(ErrNotFound)
	}
	return a, nil
}

func (s *service) ListAuthors(ctx context.Context, name string, p catalogrepo.Page) ([]model.Author, error) {
	return s.r.ListAuthors(ctx, likePattern(name), p)
}

// Publishers

func (s *service) CreatePublisher(ctx context.Context, pub *model.Publisher) error {
	return mapRepoErr(s.r.CreatePublisher(ctx, pub))
}

func (s *service) UpdatePublisher(ctx context.Context, pub *model.Publisher) error {
	return mapRepoErr(s.r.UpdatePublisher(ctx, pub))
}

func (s *service) DeletePublisher(ctx context.Context, id int64) error {
	return deleted(s.r.DeletePublisher(ctx, id))
}

func (s *service) GetPublisher(ctx context.Context, id int64) (*model.Publisher, error) {
	pub, err := s.r.PublisherByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if pub == nil {
		return nil, makeErr(ErrNotFound)
	}
	return pub, nil
}

func (s *service) ListPublishers(ctx context.Context, name string, p catalogrepo.Page) ([]model.Publisher, error) {
	return s.r.ListPublishers(ctx, likePattern(name), p)
}

// Volumes

func (s *service) CreateVolume(ctx context.Context, v *model.Volume) error {
	if err := validateRequired(map[string]string{"name": v.Name}); err != nil {
		return err
	}
	return mapRepoErr(s.r.CreateVolume(ctx, v))
}

func (s *service) UpdateVolume(ctx context.Context, v *model.Volume) error {
	if err := validateRequired(map[string]string{"name": v.Name}); err != nil {
		return err
	}
	return mapRepoErr(s.r.UpdateVolume(ctx, v))
}

func (s *service) DeleteVolume(ctx context.Context, id int64) error {
	return deleted(s.r.DeleteVolume(ctx, id))
}

func (s *service) GetVolume(ctx context.Context, id int64) (*model.Volume, error) {
	v, err := s.r.VolumeByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if v == nil {
		return nil, makeErr(ErrNotFound)
	}
	return v, nil
}

func (s *service) ListVolumes(ctx context.Context, name string, p catalogrepo.Page) ([]model.Volume, error) {
	return s.r.ListVolumes(ctx, likePattern(name), p)
}

// Genres

func (s *service) CreateGenre(ctx context.Context, g *model.Genre) error {
	if err := validateRequired(map[string]string{
		"name_en": g.NameEN,
		"name_ru": g.NameRU,
	}); err != nil {
		return err
	}
	return mapRepoErr(s.r.CreateGenre(ctx, g))
}

func (s *service) UpdateGenre(ctx context.Context, g *model.Genre) error {
	if err := validateRequired(map[string]string{
		"name_en": g.NameEN,
		"name_ru": g.NameRU,
	}); err != nil {
		return err
	}
	return mapRepoErr(s.r.UpdateGenre(ctx, g))
}

func (s *service) DeleteGenre(ctx context.Context, id int64) error {
	return deleted(s.r.DeleteGenre(ctx, id))
}

func (s *service) GetGenre(ctx context.Context, id int64) (*model.Genre, error) {
	g, err := s.r.GenreByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if g == nil {
		return nil, makeErr(ErrNotFound)
	}
	return g, nil
}

func (s *service) ListGenres(ctx context.Context, p catalogrepo.Page) ([]model.Genre, error) {
	return s.r.ListGenres(ctx, p)
}

// helpers

func deleted(ok bool, err error) error {
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrNotFound)
	}
	return nil
}

func likePattern(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	return "%" + name + "%"
}

func mapRepoErr(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgerrcode.UniqueViolation:
			return codedError{code: ErrDuplicate, fields: map[string]string{
				"non_field": "an entry with these values already exists",
			}}
		case pgerrcode.ForeignKeyViolation:
			return codedError{code: ErrValidation, fields: map[string]string{
				"non_field": "a referenced entity does not exist",
			}}
		}
	}
	return err
}

func validateRequired(fields map[string]string) error {
	violations := map[string]string{}
	for name, value := range fields {
		if strings.TrimSpace(value) == "" {
			violations[name] = "must not be empty"
		}
	}
	if len(violations) > 0 {
		return codedError{code: ErrValidation, fields: violations}
	}
	return nil
}
