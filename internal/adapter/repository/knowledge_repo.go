package repository

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

type knowledgeRepository struct {
	pool *pgxpool.Pool
}

// NewKnowledgeRepository creates a pgvector-backed knowledge search.
func NewKnowledgeRepository(pool *pgxpool.Pool) domain.KnowledgeRepository {
	return &knowledgeRepository{pool: pool}
}

// Search runs cosine-distance nearest-neighbor search over the
// knowledge chunks. A non-empty topics list narrows the scan to rows
// whose topic tag overlaps the allow-set (containment in either
// direction, so tag variants like POST_OP_CARE survive a POST_OP
// filter); nil leaves it unfiltered.
func (r *knowledgeRepository) Search(ctx context.Context, queryVector []float32, limit int, topics []domain.Topic) ([]domain.KnowledgeHit, error) {
	if limit <= 0 {
		return nil, nil
	}

	query, args := searchQuery(queryVector, limit, topics)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query knowledge chunks: %w", err)
	}
	defer rows.Close()

	var hits []domain.KnowledgeHit
	for rows.Next() {
		var h domain.KnowledgeHit
		if err := rows.Scan(&h.ID, &h.Content, &h.Topic, &h.SectionTitle, &h.SourceURL, &h.Links, &h.Score); err != nil {
			return nil, fmt.Errorf("failed to scan knowledge hit: %w", err)
		}
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}
	return hits, nil
}

func searchQuery(queryVector []float32, limit int, topics []domain.Topic) (string, []interface{}) {
	query := `
		SELECT id, content, topic, section_title, source_url, links,
		       1 - (embedding <=> $1) AS score
		FROM knowledge_chunks
	`
	args := []interface{}{pgvector.NewVector(queryVector)}

	if len(topics) > 0 {
		tags := make([]string, 0, len(topics))
		for _, t := range topics {
			tags = append(tags, string(t))
		}
		query += ` WHERE EXISTS (
			SELECT 1 FROM unnest($2::text[]) AS allowed
			WHERE topic ILIKE '%' || allowed || '%'
			   OR allowed ILIKE '%' || topic || '%'
		)
		ORDER BY embedding <=> $1
		LIMIT $3`
		args = append(args, tags, limit)
	} else {
		query += ` ORDER BY embedding <=> $1
		LIMIT $2`
		args = append(args, limit)
	}
	return query, args
}
