package search

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// PgFTS implements Searcher using PostgreSQL full-text search as the
// fallback when Meilisearch is absent or unhealthy.
type PgFTS struct {
	db *sql.DB
}

func NewPgFTS(db *sql.DB) *PgFTS {
	return &PgFTS{db: db}
}

// Healthy always returns true; if Postgres is down the whole app is down.
func (p *PgFTS) Healthy() bool {
	return true
}

func (p *PgFTS) Search(q Query) ([]Result, int, error) {
	if strings.TrimSpace(q.Text) == "" {
		return nil, 0, nil
	}

	limit := q.Limit
	if limit <= 0 {
		limit = 20
	}
	offset := q.Offset
	if offset < 0 {
		offset = 0
	}

	args := []any{q.Text}
	where := `to_tsvector('english', r.title || ' ' || r.context || ' ' || r.decision || ' ' || r.consequences) @@ plainto_tsquery('english', $1)`
	if len(q.ProjectIDs) > 0 {
		placeholders := make([]string, 0, len(q.ProjectIDs))
		for _, id := range q.ProjectIDs {
			args = append(args, id)
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)))
		}
		where += " AND r.project_id IN (" + strings.Join(placeholders, ", ") + ")"
	}

	args = append(args, limit, offset)
	query := fmt.Sprintf(`
		SELECT r.id, r.project_id, r.title,
			ts_headline('english', r.decision, plainto_tsquery('english', $1), 'MaxFragments=1,MaxWords=30') AS snippet,
			r.status, r.version,
			COUNT(*) OVER () AS total
		FROM decision_records r
		WHERE %s
		ORDER BY ts_rank(to_tsvector('english', r.title || ' ' || r.context || ' ' || r.decision || ' ' || r.consequences), plainto_tsquery('english', $1)) DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	rows, err := p.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("pgfts search: %w", err)
	}
	defer rows.Close()

	var results []Result
	total := 0
	for rows.Next() {
		var item Result
		if err := rows.Scan(&item.ID, &item.ProjectID, &item.Title, &item.Snippet, &item.Status, &item.Version, &total); err != nil {
			return nil, 0, fmt.Errorf("pgfts scan: %w", err)
		}
		results = append(results, item)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("pgfts iterate: %w", err)
	}
	return results, total, nil
}
