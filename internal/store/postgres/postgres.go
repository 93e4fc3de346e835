package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"snipdrop/internal/model"
	"snipdrop/internal/store"
)

// Store is the PostgreSQL backend. It uses database/sql with parameterized
// queries and contains no business logic.
type Store struct {
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// New creates a PostgreSQL-backed store.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) GetUser(ctx context.Context, id string) (*model.User, error) {
	const q = `SELECT id, username, password FROM users WHERE id = $1`
	var u model.User
	err := s.db.QueryRowContext(ctx, q, id).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*model.User, error) {
	const q = `SELECT id, username, password FROM users WHERE username = $1`
	var u model.User
	err := s.db.QueryRowContext(ctx, q, username).Scan(&u.ID, &u.Username, &u.Password)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// CreateUser inserts a new user. Username uniqueness is enforced by the
// UNIQUE constraint on the users table.
func (s *Store) CreateUser(ctx context.Context, p store.CreateUserParams) (*model.User, error) {
	const q = `
		INSERT INTO users (id, username, password)
		VALUES ($1, $2, $3)
		RETURNING id, username, password
	`
	var u model.User
	err := s.db.QueryRowContext(ctx, q, uuid.NewString(), p.Username, p.Password).
		Scan(&u.ID, &u.Username, &u.Password)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) GetSharedDocument(ctx context.Context) (*model.SharedDocument, error) {
	const q = `
		SELECT id, content, language, updated_at
		FROM shared_documents
		LIMIT 1
	`
	var d model.SharedDocument
	err := s.db.QueryRowContext(ctx, q).Scan(&d.ID, &d.Content, &d.Language, &d.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// UpdateSharedDocument reads the current row, merges the partial
// application-side, then writes it back (or creates the row if absent).
// The read-modify-write is deliberately not wrapped in a transaction: the
// deployment assumes a single writer, and concurrent writers racing here can
// lose an update. An atomic upsert would close the race if that assumption
// ever stops holding.
func (s *Store) UpdateSharedDocument(ctx context.Context, upd store.DocumentUpdate) (*model.SharedDocument, error) {
	cur, err := s.GetSharedDocument(ctx)
	if errors.Is(err, store.ErrNotFound) {
		p := store.DocumentParams{Language: model.DefaultLanguage}
		if upd.Content != nil {
			p.Content = *upd.Content
		}
		if upd.Language != nil {
			p.Language = *upd.Language
		}
		return s.insertDocument(ctx, p)
	}
	if err != nil {
		return nil, err
	}

	if upd.Content != nil {
		cur.Content = *upd.Content
	}
	if upd.Language != nil {
		cur.Language = *upd.Language
	}

	const q = `
		UPDATE shared_documents
		SET content = $1, language = $2, updated_at = $3
		WHERE id = $4
		RETURNING id, content, language, updated_at
	`
	var d model.SharedDocument
	err = s.db.QueryRowContext(ctx, q, cur.Content, cur.Language, time.Now().UTC(), cur.ID).
		Scan(&d.ID, &d.Content, &d.Language, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateSharedDocument replaces the singleton: any existing rows are cleared
// before the insert so at most one document exists.
func (s *Store) CreateSharedDocument(ctx context.Context, p store.DocumentParams) (*model.SharedDocument, error) {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM shared_documents`); err != nil {
		return nil, err
	}
	return s.insertDocument(ctx, p)
}

func (s *Store) insertDocument(ctx context.Context, p store.DocumentParams) (*model.SharedDocument, error) {
	if p.Language == "" {
		p.Language = model.DefaultLanguage
	}
	const q = `
		INSERT INTO shared_documents (id, content, language, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id, content, language, updated_at
	`
	var d model.SharedDocument
	err := s.db.QueryRowContext(ctx, q, uuid.NewString(), p.Content, p.Language, time.Now().UTC()).
		Scan(&d.ID, &d.Content, &d.Language, &d.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (s *Store) GetFileRecords(ctx context.Context) ([]model.FileRecord, error) {
	const q = `
		SELECT id, filename, object_path, file_size, uploaded_at
		FROM file_records
		ORDER BY uploaded_at DESC, id DESC
	`
	rows, err := s.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.FileRecord, 0)
	for rows.Next() {
		var f model.FileRecord
		if err := rows.Scan(&f.ID, &f.Filename, &f.ObjectPath, &f.FileSize, &f.UploadedAt); err != nil {
			return nil, err
		}
		records = append(records, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Store) CreateFileRecord(ctx context.Context, p store.FileRecordParams) (*model.FileRecord, error) {
	const q = `
		INSERT INTO file_records (id, filename, object_path, file_size, uploaded_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, filename, object_path, file_size, uploaded_at
	`
	var f model.FileRecord
	err := s.db.QueryRowContext(ctx, q,
		uuid.NewString(), p.Filename, p.ObjectPath, p.FileSize, time.Now().UTC()).
		Scan(&f.ID, &f.Filename, &f.ObjectPath, &f.FileSize, &f.UploadedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (s *Store) DeleteFileRecord(ctx context.Context, id string) (bool, error) {
	const q = `DELETE FROM file_records WHERE id = $1`
	res, err := s.db.ExecContext(ctx, q, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
