package usecase

import (
	"strings"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// topicAliases widens a requested topic to the knowledge-base tags
// that commonly answer it. Knowledge chunks are tagged at ingestion
// time with a finer vocabulary than the router emits, so a strict
// equality filter would starve retrieval.
var topicAliases = map[domain.Topic][]domain.Topic{
	domain.TopicBasics:    {domain.TopicSymptoms, domain.TopicDiagnosis},
	domain.TopicSymptoms:  {domain.TopicBasics, domain.TopicDiagnosis},
	domain.TopicDiagnosis: {domain.TopicSymptoms, domain.TopicBasics},
	domain.TopicSurgery:   {domain.TopicSurgeryCosts, domain.TopicLenses, domain.TopicRecovery},
	domain.TopicLenses:    {domain.TopicSurgery},
	domain.TopicRecovery:  {domain.TopicPostOp, domain.TopicSurgery},
	domain.TopicPostOp:    {domain.TopicRecovery},
	domain.TopicInsurance: {domain.TopicSurgeryCosts, domain.TopicBasics},
}

// ExpandTopics returns the order-preserving deduplicated allow-set for
// the requested topics. GENERAL disables filtering entirely (nil
// result means no filter).
func ExpandTopics(topics []domain.Topic) []domain.Topic {
	if len(topics) == 0 {
		return nil
	}
	seen := make(map[domain.Topic]struct{}, len(topics)*3)
	var out []domain.Topic
	add := func(t domain.Topic) {
		if _, ok := seen[t]; ok {
			return
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	for _, t := range topics {
		if t == domain.TopicGeneral {
			return nil
		}
		add(t)
		for _, alias := range topicAliases[t] {
			add(alias)
		}
	}
	return out
}

// topicAllowed matches a hit's tag against the allow-set. Besides
// exact matches it accepts prefix or substring containment in either
// direction, case-insensitive, so ingestion-side tag variants such as
// POST_OP_CARE still pass a POST_OP filter.
func topicAllowed(allowed []domain.Topic, hitTopic domain.Topic) bool {
	if len(allowed) == 0 {
		return true
	}
	hit := strings.ToUpper(strings.TrimSpace(string(hitTopic)))
	if hit == "" {
		return false
	}
	for _, a := range allowed {
		want := strings.ToUpper(string(a))
		if hit == want || strings.Contains(hit, want) || strings.Contains(want, hit) {
			return true
		}
	}
	return false
}
