package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	apperrors "github.com/Adithya-Monish-Kumar-K/tfidf-search/pkg/errors"
	_ "github.com/glebarez/go-sqlite"
)

// Dialect captures the differences between the SQL databases SQL supports.
type Dialect struct {
	Name string
	// numbered placeholders ($1, $2, ...) instead of ?
	numbered bool
}

var (
	Postgres = Dialect{Name: "postgres", numbered: true}
	SQLite   = Dialect{Name: "sqlite"}
)

// Rebind rewrites ? placeholders into the dialect's form.
func (d Dialect) Rebind(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

const createTable = `CREATE TABLE IF NOT EXISTS corpus_documents (
	id   BIGINT PRIMARY KEY,
	text TEXT NOT NULL
)`

// SQL stores documents in a corpus_documents table:
//
//	CREATE TABLE corpus_documents (
//	    id   BIGINT PRIMARY KEY,
//	    text TEXT NOT NULL
//	);
//
// Ids are assigned by the store, not the database, so that they stay dense.
// Rows already present when the store is opened are kept and become
// documents 0..n-1.
type SQL struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.Mutex
	next    int
	closed  bool
	logger  *slog.Logger
}

// NewSQL takes ownership of db, creating the table if needed.
func NewSQL(ctx context.Context, db *sql.DB, dialect Dialect) (*SQL, error) {
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return nil, fmt.Errorf("creating corpus_documents table: %w", err)
	}
	var count int
	var maxID sql.NullInt64
	row := db.QueryRowContext(ctx, `SELECT COUNT(*), MAX(id) FROM corpus_documents`)
	if err := row.Scan(&count, &maxID); err != nil {
		return nil, fmt.Errorf("counting stored documents: %w", err)
	}
	if count > 0 && (!maxID.Valid || maxID.Int64 != int64(count-1)) {
		return nil, fmt.Errorf("corpus_documents ids are not dense: %d rows, max id %d", count, maxID.Int64)
	}
	s := &SQL{
		db:      db,
		dialect: dialect,
		next:    count,
		logger:  slog.Default().With("component", "document-store", "dialect", dialect.Name),
	}
	s.logger.Info("document store opened", "documents", count)
	return s, nil
}

// OpenSQLite opens (or creates) a SQLite database file at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database %s: %w", path, err)
	}
	// a single connection serialises writers and keeps :memory: databases shared
	db.SetMaxOpenConns(1)
	s, err := NewSQL(ctx, db, SQLite)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQL) Append(ctx context.Context, text string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	id := s.next
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		_, err := tx.ExecContext(ctx,
			s.dialect.Rebind(`INSERT INTO corpus_documents (id, text) VALUES (?, ?)`),
			id, text,
		)
		return err
	})
	if err != nil {
		return 0, fmt.Errorf("inserting document %d: %w", id, err)
	}
	s.next++
	return id, nil
}

func (s *SQL) Get(ctx context.Context, id int) (string, error) {
	if s.isClosed() {
		return "", ErrClosed
	}
	var text string
	err := s.db.QueryRowContext(ctx,
		s.dialect.Rebind(`SELECT text FROM corpus_documents WHERE id = ?`), id,
	).Scan(&text)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("document %d: %w", id, apperrors.ErrDocumentNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("loading document %d: %w", id, err)
	}
	return text, nil
}

func (s *SQL) All(ctx context.Context) ([]Document, error) {
	if s.isClosed() {
		return nil, ErrClosed
	}
	rows, err := s.db.QueryContext(ctx, `SELECT id, text FROM corpus_documents ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing documents: %w", err)
	}
	defer rows.Close()
	docs := make([]Document, 0, s.Len())
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Text); err != nil {
			return nil, fmt.Errorf("scanning document: %w", err)
		}
		docs = append(docs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating documents: %w", err)
	}
	return docs, nil
}

func (s *SQL) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.next
}

func (s *SQL) Ping(ctx context.Context) error {
	if s.isClosed() {
		return ErrClosed
	}
	return s.db.PingContext(ctx)
}

func (s *SQL) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

func (s *SQL) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *SQL) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return fmt.Errorf("rolling back transaction after error %v: %w", rbErr, err)
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}
