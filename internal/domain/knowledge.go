package domain

import (
	"context"

	"github.com/google/uuid"
)

// KnowledgeHit represents a single chunk returned by vector search.
// Hits are ephemeral; they live only for the request that produced them.
type KnowledgeHit struct {
	ID           uuid.UUID
	Content      string
	Topic        Topic
	Score        float32
	SectionTitle string
	SourceURL    string
	Links        []string
}

// Source is a deduplicated citation pair collected from matched hits.
type Source struct {
	SectionTitle string `json:"section_title"`
	SourceURL    string `json:"source_url"`
}

// KnowledgeRepository performs similarity search over the knowledge base.
// topics narrows the search to the given tags; empty means unfiltered.
type KnowledgeRepository interface {
	Search(ctx context.Context, queryVector []float32, limit int, topics []Topic) ([]KnowledgeHit, error)
}
