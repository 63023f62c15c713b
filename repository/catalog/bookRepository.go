package catalogrepo

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	"github.com/sumaro2101/EasyLibrary/model"
)

// BookFilter narrows ListBooks. Zero values are ignored.
type BookFilter struct {
	Name           string
	PublisherID    int64
	AuthorID       int64
	GenreID        int64
	AgeRestriction *int
	IsPublished    *bool
	BestSeller     *bool
}

func (r *repo) CreateBook(ctx context.Context, b *model.Book) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		INSERT INTO books (name, publisher_id, best_seller, volume_id, num_of_volume,
			age_restriction, count_pages, year_published, circulation, quantity, is_published)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`
	err = tx.QueryRowContext(ctx, q,
		b.Name, b.PublisherID, b.BestSeller, b.VolumeID, b.NumOfVolume,
		b.AgeRestriction, b.CountPages, b.YearPublished, b.Circulation,
		b.Quantity, b.IsPublished,
	).Scan(&b.ID)
	if err != nil {
		return err
	}
	if err = replaceBookRelations(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *repo) UpdateBook(ctx context.Context, b *model.Book) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const q = `
		UPDATE books
		SET name = $2, publisher_id = $3, best_seller = $4, volume_id = $5,
			num_of_volume = $6, age_restriction = $7, count_pages = $8,
			year_published = $9, circulation = $10, quantity = $11, is_published = $12
		WHERE id = $1`
	if _, err = tx.ExecContext(ctx, q,
		b.ID, b.Name, b.PublisherID, b.BestSeller, b.VolumeID, b.NumOfVolume,
		b.AgeRestriction, b.CountPages, b.YearPublished, b.Circulation,
		b.Quantity, b.IsPublished,
	); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM book_authors WHERE book_id = $1`, b.ID); err != nil {
		return err
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM book_genres WHERE book_id = $1`, b.ID); err != nil {
		return err
	}
	if err = replaceBookRelations(ctx, tx, b); err != nil {
		return err
	}
	return tx.Commit()
}

func replaceBookRelations(ctx context.Context, tx *sql.Tx, b *model.Book) error {
	for _, id := range b.AuthorIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_authors (book_id, author_id) VALUES ($1, $2)`, b.ID, id); err != nil {
			return err
		}
	}
	for _, id := range b.GenreIDs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO book_genres (book_id, genre_id) VALUES ($1, $2)`, b.ID, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *repo) DeleteBook(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM books WHERE id = $1`, id)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

const bookDetailQuery = `
	SELECT b.id, b.name, b.publisher_id, b.best_seller, b.volume_id, b.num_of_volume,
		b.age_restriction, b.count_pages, b.year_published, b.circulation,
		b.quantity, b.is_published,
		p.name, v.name,
		COALESCE(array_agg(DISTINCT a.last_name || ' ' || a.first_name)
			FILTER (WHERE a.id IS NOT NULL), '{}'),
		COALESCE(array_agg(DISTINCT g.name_en) FILTER (WHERE g.id IS NOT NULL), '{}')
	FROM books b
	JOIN publishers p ON p.id = b.publisher_id
	LEFT JOIN volumes v ON v.id = b.volume_id
	LEFT JOIN book_authors ba ON ba.book_id = b.id
	LEFT JOIN authors a ON a.id = ba.author_id
	LEFT JOIN book_genres bg ON bg.book_id = b.id
	LEFT JOIN genres g ON g.id = bg.genre_id`

func scanBookDetail(rows interface {
	Scan(dest ...any) error
}) (*model.BookDetail, error) {
	var (
		d       model.BookDetail
		volume  sql.NullString
		authors pq.StringArray
		genres  pq.StringArray
	)
	err := rows.Scan(&d.ID, &d.Name, &d.PublisherID, &d.BestSeller, &d.VolumeID,
		&d.NumOfVolume, &d.AgeRestriction, &d.CountPages, &d.YearPublished,
		&d.Circulation, &d.Quantity, &d.IsPublished,
		&d.Publisher, &volume, &authors, &genres)
	if err != nil {
		return nil, err
	}
	if volume.Valid {
		d.Volume = &volume.String
	}
	d.Authors = []string(authors)
	d.Genres = []string(genres)
	return &d, nil
}

func (r *repo) BookByID(ctx context.Context, id int64) (*model.BookDetail, error) {
	q := bookDetailQuery + `
	WHERE b.id = $1
	GROUP BY b.id, p.name, v.name`
	d, err := scanBookDetail(r.db.QueryRowContext(ctx, q, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return d, err
}

func (r *repo) ListBooks(ctx context.Context, f BookFilter, p Page) ([]model.BookDetail, error) {
	q := bookDetailQuery + `
	WHERE ($1 = '' OR b.name ILIKE $1)
		AND ($2 = 0 OR b.publisher_id = $2)
		AND ($3 = 0 OR ba.author_id = $3)
		AND ($4 = 0 OR bg.genre_id = $4)
		AND ($5::smallint IS NULL OR b.age_restriction = $5)
		AND ($6::boolean IS NULL OR b.is_published = $6)
		AND ($7::boolean IS NULL OR b.best_seller = $7)
	GROUP BY b.id, p.name, v.name
	ORDER BY b.name
	LIMIT $8 OFFSET $9`
	limit, offset := p.limitOffset()
	rows, err := r.db.QueryContext(ctx, q,
		f.Name, f.PublisherID, f.AuthorID, f.GenreID,
		f.AgeRestriction, f.IsPublished, f.BestSeller, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.BookDetail
	for rows.Next() {
		d, err := scanBookDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}
