package store

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore is the Postgres-backed catalog.
type PGStore struct {
	db *pgxpool.Pool
}

var _ Catalog = (*PGStore)(nil)

func NewPGStore(db *pgxpool.Pool) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) InsertBook(ctx context.Context, book Book) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO books (
			id, title, author, description, genre, cover_image,
			file_name, file_size, page_count, digest, blob_key, user_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, NULLIF($12, ''), $13)
	`,
		book.ID,
		book.Title,
		book.Author,
		book.Description,
		book.Genre,
		book.CoverImage,
		book.FileName,
		book.FileSize,
		book.PageCount,
		book.Digest,
		book.BlobKey,
		book.UserID,
		book.CreatedAt,
	)
	return err
}

func (s *PGStore) ListBooks(ctx context.Context, userID string) ([]Book, error) {
	query := `
		SELECT id, title, author, description, genre, cover_image,
		       file_name, file_size, page_count, digest, blob_key,
		       COALESCE(user_id, ''), created_at
		FROM books
	`
	args := []any{}
	if userID != "" {
		query += ` WHERE user_id = $1`
		args = append(args, userID)
	}
	query += ` ORDER BY created_at, id`

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	books := make([]Book, 0)
	for rows.Next() {
		var b Book
		if err := scanBook(rows, &b); err != nil {
			return nil, err
		}
		books = append(books, b)
	}
	return books, rows.Err()
}

func (s *PGStore) FindByFileName(ctx context.Context, fileName string) (Book, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, author, description, genre, cover_image,
		       file_name, file_size, page_count, digest, blob_key,
		       COALESCE(user_id, ''), created_at
		FROM books
		WHERE file_name = $1
		ORDER BY created_at, id
		LIMIT 1
	`, fileName)

	var b Book
	if err := scanBook(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *PGStore) GetBook(ctx context.Context, id uuid.UUID) (Book, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, title, author, description, genre, cover_image,
		       file_name, file_size, page_count, digest, blob_key,
		       COALESCE(user_id, ''), created_at
		FROM books
		WHERE id = $1
	`, id)

	var b Book
	if err := scanBook(row, &b); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Book{}, ErrNotFound
		}
		return Book{}, err
	}
	return b, nil
}

func (s *PGStore) ListBlobKeys(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT DISTINCT blob_key FROM books`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	keys := make([]string, 0)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}

func scanBook(row pgx.Row, b *Book) error {
	return row.Scan(
		&b.ID,
		&b.Title,
		&b.Author,
		&b.Description,
		&b.Genre,
		&b.CoverImage,
		&b.FileName,
		&b.FileSize,
		&b.PageCount,
		&b.Digest,
		&b.BlobKey,
		&b.UserID,
		&b.CreatedAt,
	)
}
