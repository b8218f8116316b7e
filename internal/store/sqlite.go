package store

import (
	"context"
	"database/sql"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/context-memory/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db      *sql.DB
	entropy *rand.Rand
	now     func() time.Time
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
		now:     func() time.Time { return time.Now().UTC() },
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID() string {
	return ulid.MustNew(ulid.Timestamp(s.now()), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS documents (
		name       TEXT PRIMARY KEY,
		body       BLOB NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS records (
		kind        TEXT NOT NULL,
		id          TEXT NOT NULL,
		title       TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		embedding   BLOB,
		updated_at  TEXT NOT NULL,
		PRIMARY KEY (kind, id)
	);
	CREATE INDEX IF NOT EXISTS idx_records_updated ON records(updated_at DESC);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) Load(ctx context.Context, name string) ([]byte, error) {
	var body []byte
	err := s.db.QueryRowContext(ctx, `SELECT body FROM documents WHERE name = ?`, name).Scan(&body)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("document %s: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return body, nil
}

func (s *SQLiteStore) Save(ctx context.Context, name string, body []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (name, body, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET body = excluded.body, updated_at = excluded.updated_at`,
		name, body, s.now().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}

func (s *SQLiteStore) PutRecord(ctx context.Context, p PutRecordParams) (*model.Record, error) {
	if strings.TrimSpace(p.Title) == "" {
		return nil, errors.New("record title is required")
	}
	id := p.ID
	if id == "" {
		id = s.newID()
	}
	kind := p.Kind
	if kind == "" {
		kind = model.DefaultRecordKind
	}
	now := s.now()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO records (kind, id, title, description, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(kind, id) DO UPDATE SET
		   embedding = CASE
		     WHEN records.title = excluded.title AND records.description = excluded.description
		     THEN records.embedding ELSE NULL END,
		   title = excluded.title,
		   description = excluded.description,
		   updated_at = excluded.updated_at`,
		kind, id, p.Title, p.Description, now.Format(time.RFC3339Nano))
	if err != nil {
		return nil, fmt.Errorf("put record: %w", err)
	}
	return s.GetRecord(ctx, kind, id)
}

func (s *SQLiteStore) GetRecord(ctx context.Context, kind, id string) (*model.Record, error) {
	if kind == "" {
		kind = model.DefaultRecordKind
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT kind, id, title, description, embedding, updated_at
		 FROM records WHERE kind = ? AND id = ?`, kind, id)
	r, err := scanRecord(row, true)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("record %s:%s: %w", kind, id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) ListRecords(ctx context.Context, p ListRecordsParams) ([]model.Record, error) {
	var where []string
	var args []interface{}
	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, p.Kind)
	}
	if p.EmbeddedOnly {
		where = append(where, "embedding IS NOT NULL")
	}

	query := `SELECT kind, id, title, description, embedding, updated_at FROM records`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY updated_at DESC, kind, id"
	if p.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, p.Limit)
	}

	return s.queryRecords(ctx, query, args, p.WithEmbedding || p.EmbeddedOnly)
}

func (s *SQLiteStore) RmRecord(ctx context.Context, kind, id string) error {
	if kind == "" {
		kind = model.DefaultRecordKind
	}
	res, err := s.db.ExecContext(ctx, `DELETE FROM records WHERE kind = ? AND id = ?`, kind, id)
	if err != nil {
		return fmt.Errorf("rm record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("record %s:%s: %w", kind, id, ErrNotFound)
	}
	return nil
}

// SaveVectors writes all vectors in one transaction. Ids that no longer
// resolve to a record are ignored.
func (s *SQLiteStore) SaveVectors(ctx context.Context, vectors map[string][]float32) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for docID, vec := range vectors {
		kind, id, ok := strings.Cut(docID, ":")
		if !ok {
			return fmt.Errorf("invalid document id %q", docID)
		}
		var blob []byte
		if len(vec) > 0 {
			blob = encodeVector(vec)
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE records SET embedding = ? WHERE kind = ? AND id = ?`, blob, kind, id); err != nil {
			return fmt.Errorf("save vector %s: %w", docID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) DomainContext(ctx context.Context) (*model.DomainContext, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT kind, id, title FROM records ORDER BY kind, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	dc := &model.DomainContext{}
	for rows.Next() {
		var ref model.DomainRef
		if err := rows.Scan(&ref.Type, &ref.ID, &ref.Name); err != nil {
			return nil, err
		}
		dc.Refs = append(dc.Refs, ref)
	}
	return dc, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) queryRecords(ctx context.Context, query string, args []interface{}, withEmbedding bool) ([]model.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []model.Record
	for rows.Next() {
		r, err := scanRecord(rows, withEmbedding)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row scanner, withEmbedding bool) (model.Record, error) {
	var r model.Record
	var blob []byte
	var updatedAt string

	if err := row.Scan(&r.Kind, &r.ID, &r.Title, &r.Description, &blob, &updatedAt); err != nil {
		return r, err
	}
	r.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedAt)
	if withEmbedding && len(blob) > 0 {
		r.Embedding = decodeVector(blob)
	}
	return r, nil
}

// Vectors are stored as little-endian float32 arrays.
func encodeVector(vec []float32) []byte {
	b := make([]byte, 4*len(vec))
	for i, f := range vec {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(b []byte) []float32 {
	vec := make([]float32, len(b)/4)
	for i := range vec {
		vec[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return vec
}
