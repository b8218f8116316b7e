package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/context-memory/internal/model"
)

// SearchRecords finds records whose title or description contains the
// query. It is the lexical fallback when no embedding provider is available.
func (s *SQLiteStore) SearchRecords(ctx context.Context, p SearchRecordsParams) ([]model.Record, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}

	pattern := "%" + escapeLike(p.Query) + "%"
	where := []string{`(title LIKE ? ESCAPE '\' OR description LIKE ? ESCAPE '\')`}
	args := []interface{}{pattern, pattern}

	if p.Kind != "" {
		where = append(where, "kind = ?")
		args = append(args, p.Kind)
	}

	query := fmt.Sprintf(`
		SELECT kind, id, title, description, embedding, updated_at
		FROM records
		WHERE %s
		ORDER BY updated_at DESC, kind, id
		LIMIT ?`, strings.Join(where, " AND "))
	args = append(args, limit)

	return s.queryRecords(ctx, query, args, false)
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
