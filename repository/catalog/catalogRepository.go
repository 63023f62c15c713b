// Package catalogrepo persists the catalog entities: books, authors,
// publishers, volumes and genres.
package catalogrepo

import (
	"context"
	"database/sql"

	"github.com/sumaro2101/EasyLibrary/model"
)

// Page bounds list queries. Zero values fall back to the defaults.
type Page struct {
	Number int
	Size   int
}

func (p Page) limitOffset() (int, int) {
	size := p.Size
	if size <= 0 || size > 100 {
		size = 20
	}
	number := p.Number
	if number <= 0 {
		number = 1
	}
	return size, (number - 1) * size
}

type Repo interface {
	// Books
	CreateBook(ctx context.Context, b *model.Book) error
	UpdateBook(ctx context.Context, b *model.Book) error
	DeleteBook(ctx context.Context, id int64) (bool, error)
	BookByID(ctx context.Context, id int64) (*model.BookDetail, error)
	ListBooks(ctx context.Context, f BookFilter, p Page) ([]model.BookDetail, error)

	// Authors
	CreateAuthor(ctx context.Context, a *model.Author) error
	UpdateAuthor(ctx context.Context, a *model.Author) error
	DeleteAuthor(ctx context.Context, id int64) (bool, error)
	AuthorByID(ctx context.Context, id int64) (*model.Author, error)
	ListAuthors(ctx context.Context, name string, p Page) ([]model.Author, error)

	// Publishers
	CreatePublisher(ctx context.Context, pub *model.Publisher) error
	UpdatePublisher(ctx context.Context, pub *model.Publisher) error
	DeletePublisher(ctx context.Context, id int64) (bool, error)
	PublisherByID(ctx context.Context, id int64) (*model.Publisher, error)
	ListPublishers(ctx context.Context, name string, p Page) ([]model.Publisher, error)

	// Volumes
	CreateVolume(ctx context.Context, v *model.Volume) error
	UpdateVolume(ctx context.Context, v *model.Volume) error
	DeleteVolume(ctx context.Context, id int64) (bool, error)
	VolumeByID(ctx context.Context, id int64) (*model.Volume, error)
	ListVolumes(ctx context.Context, name string, p Page) ([]model.Volume, error)

	// Genres
	CreateGenre(ctx context.Context, g *model.Genre) error
	UpdateGenre(ctx context.Context, g *model.Genre) error
	DeleteGenre(ctx context.Context, id int64) (bool, error)
	GenreByID(ctx context.Context, id int64) (*model.Genre, error)
	ListGenres(ctx context.Context, p Page) ([]model.Genre, error)
}

type repo struct{ db *sql.DB }

func New(db *sql.DB) Repo { return &repo{db} }

// Authors

func (r *repo) CreateAuthor(ctx context.Context, a *model.Author) error {
	const q = `
		INSERT INTO authors (first_name, last_name, surname)
		VALUES ($1, $2, $3)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, a.FirstName, a.LastName, a.Surname).Scan(&a.ID)
}

func (r *repo) UpdateAuthor(ctx context.Context, a *model.Author) error {
	const q = `
		UPDATE authors
		SET first_name = $2, last_name = $3, surname = $4
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, a.ID, a.FirstName, a.LastName, a.Surname)
	return err
}

func (r *repo) DeleteAuthor(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM authors WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) AuthorByID(ctx context.Context, id int64) (*model.Author, error) {
	const q = `SELECT id, first_name, last_name, surname FROM authors WHERE id = $1`
	var a model.Author
	err := r.db.QueryRowContext(ctx, q, id).Scan(&a.ID, &a.FirstName, &a.LastName, &a.Surname)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *repo) ListAuthors(ctx context.Context, name string, p Page) ([]model.Author, error) {
	const q = `
		SELECT id, first_name, last_name, surname
		FROM authors
		WHERE ($1 = '' OR last_name ILIKE $1 OR first_name ILIKE $1)
		ORDER BY last_name, first_name
		LIMIT $2 OFFSET $3`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q, name, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Author
	for rows.Next() {
		var a model.Author
		if err := rows.Scan(&a.ID, &a.FirstName, &a.LastName, &a.Surname); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Publishers

func (r *repo) CreatePublisher(ctx context.Context, pub *model.Publisher) error {
	const q = `
		INSERT INTO publishers (name, address, url, email, phone)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	return r.db.QueryRowContext(ctx, q, pub.Name, pub.Address, pub.URL, pub.Email, pub.Phone).Scan(&pub.ID)
}

func (r *repo) UpdatePublisher(ctx context.Context, pub *model.Publisher) error {
	const q = `
		UPDATE publishers
		SET name = $2, address = $3, url = $4, email = $5, phone = $6
		WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, pub.ID, pub.Name, pub.Address, pub.URL, pub.Email, pub.Phone)
	return err
}

func (r *repo) DeletePublisher(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM publishers WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) PublisherByID(ctx context.Context, id int64) (*model.Publisher, error) {
	const q = `SELECT id, name, address, url, email, phone FROM publishers WHERE id = $1`
	var p model.Publisher
	err := r.db.QueryRowContext(ctx, q, id).Scan(&p.ID, &p.Name, &p.Address, &p.URL, &p.Email, &p.Phone)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repo) ListPublishers(ctx context.Context, name string, p Page) ([]model.Publisher, error) {
	const q = `
		SELECT id, name, address, url, email, phone
		FROM publishers
		WHERE ($1 = '' OR name ILIKE $1)
		ORDER BY name
		LIMIT $2 OFFSET $3`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q, name, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Publisher
	for rows.Next() {
		var pub model.Publisher
		if err := rows.Scan(&pub.ID, &pub.Name, &pub.Address, &pub.URL, &pub.Email, &pub.Phone); err != nil {
			return nil, err
		}
		out = append(out, pub)
	}
	return out, rows.Err()
}

// Volumes

func (r *repo) CreateVolume(ctx context.Context, v *model.Volume) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO volumes (name) VALUES ($1) RETURNING id`, v.Name).Scan(&v.ID)
}

func (r *repo) UpdateVolume(ctx context.Context, v *model.Volume) error {
	_, err := r.db.ExecContext(ctx, `UPDATE volumes SET name = $2 WHERE id = $1`, v.ID, v.Name)
	return err
}

func (r *repo) DeleteVolume(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM volumes WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) VolumeByID(ctx context.Context, id int64) (*model.Volume, error) {
	var v model.Volume
	err := r.db.QueryRowContext(ctx, `SELECT id, name FROM volumes WHERE id = $1`, id).Scan(&v.ID, &v.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &v, nil
}

func (r *repo) ListVolumes(ctx context.Context, name string, p Page) ([]model.Volume, error) {
	const q = `
		SELECT id, name
		FROM volumes
		WHERE ($1 = '' OR name ILIKE $1)
		ORDER BY name
		LIMIT $2 OFFSET $3`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q, name, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Volume
	for rows.Next() {
		var v model.Volume
		if err := rows.Scan(&v.ID, &v.Name); err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

// Genres

func (r *repo) CreateGenre(ctx context.Context, g *model.Genre) error {
	return r.db.QueryRowContext(ctx,
		`INSERT INTO genres (name_en, name_ru) VALUES ($1, $2) RETURNING id`,
		g.NameEN, g.NameRU).Scan(&g.ID)
}

func (r *repo) UpdateGenre(ctx context.Context, g *model.Genre) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE genres SET name_en = $2, name_ru = $3 WHERE id = $1`, g.ID, g.NameEN, g.NameRU)
	return err
}

func (r *repo) DeleteGenre(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM genres WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *repo) GenreByID(ctx context.Context, id int64) (*model.Genre, error) {
	var g model.Genre
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name_en, name_ru FROM genres WHERE id = $1`, id).Scan(&g.ID, &g.NameEN, &g.NameRU)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (r *repo) ListGenres(ctx context.Context, p Page) ([]model.Genre, error) {
	const q = `
		SELECT id, name_en, name_ru
		FROM genres
		ORDER BY name_en
		LIMIT $1 OFFSET $2`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Genre
	for rows.Next() {
		var g model.Genre
		if err := rows.Scan(&g.ID, &g.NameEN, &g.NameRU); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}
