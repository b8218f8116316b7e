package store

import (
	"context"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath          string          `json:"db_path"`
	DBSizeBytes     int64           `json:"db_size_bytes"`
	TotalRecords    int             `json:"total_records"`
	EmbeddedRecords int             `json:"embedded_records"`
	Kinds           []KindStats     `json:"kinds"`
	Documents       []DocumentStats `json:"documents"`
}

// KindStats holds per-kind record counts.
type KindStats struct {
	Kind     string `json:"kind"`
	Count    int    `json:"count"`
	Embedded int    `json:"embedded"`
}

// DocumentStats describes one stored document.
type DocumentStats struct {
	Name      string `json:"name"`
	SizeBytes int    `json:"size_bytes"`
	UpdatedAt string `json:"updated_at"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records`).Scan(&st.TotalRecords)
	s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM records WHERE embedding IS NOT NULL`).Scan(&st.EmbeddedRecords)

	rows, err := s.db.QueryContext(ctx, `
		SELECT kind, COUNT(*) AS cnt, COUNT(embedding) AS embedded
		FROM records GROUP BY kind ORDER BY cnt DESC, kind`)
	if err != nil {
		return st, err
	}
	defer rows.Close()

	for rows.Next() {
		var k KindStats
		rows.Scan(&k.Kind, &k.Count, &k.Embedded)
		st.Kinds = append(st.Kinds, k)
	}
	if err := rows.Err(); err != nil {
		return st, err
	}

	docs, err := s.db.QueryContext(ctx, `SELECT name, length(body), updated_at FROM documents ORDER BY name`)
	if err != nil {
		return st, err
	}
	defer docs.Close()

	for docs.Next() {
		var d DocumentStats
		docs.Scan(&d.Name, &d.SizeBytes, &d.UpdatedAt)
		st.Documents = append(st.Documents, d)
	}

	return st, docs.Err()
}
