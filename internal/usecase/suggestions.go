package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

const maxSuggestions = 3

// SuggestionInput carries the question just answered, the generated
// answer, the model's own suggestion candidates, and the recent user
// turns used for dedupe.
type SuggestionInput struct {
	Question   string
	Answer     string
	Candidates []string
	Topics     []domain.Topic
	History    []domain.Message
}

// SuggestionPipeline yields up to three follow-up questions. It never
// fails; every degradation ends at the static topic tables.
type SuggestionPipeline interface {
	Suggest(ctx context.Context, input SuggestionInput) []string
}

type suggestionPipeline struct {
	llm    domain.LLMClient
	logger *slog.Logger
}

// NewSuggestionPipeline wires the suggestion stage. A nil llm disables
// the backfill model call, leaving candidates plus the static tables.
func NewSuggestionPipeline(llm domain.LLMClient, logger *slog.Logger) SuggestionPipeline {
	return &suggestionPipeline{llm: llm, logger: logger}
}

func (p *suggestionPipeline) Suggest(ctx context.Context, input SuggestionInput) []string {
	asked := recentUserTexts(input.Question, input.History)

	accepted := appendFresh(nil, input.Candidates, asked)
	if len(accepted) >= maxSuggestions {
		return accepted[:maxSuggestions]
	}

	if p.llm != nil {
		generated := p.generate(ctx, input.Question, input.Answer, input.Topics)
		accepted = appendFresh(accepted, generated, asked)
		if len(accepted) >= maxSuggestions {
			return accepted[:maxSuggestions]
		}
	}

	accepted = appendFresh(accepted, staticSuggestions(input.Topics), asked)
	if len(accepted) > maxSuggestions {
		accepted = accepted[:maxSuggestions]
	}
	return accepted
}

func (p *suggestionPipeline) generate(ctx context.Context, question, answer string, topics []domain.Topic) []string {
	names := make([]string, 0, len(topics))
	for _, t := range topics {
		names = append(names, string(t))
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "A cataract patient just asked: %q\n", question)
	if answer != "" {
		fmt.Fprintf(&sb, "They received this answer:\n%s\n", answer)
	}
	fmt.Fprintf(&sb, "Topics: %s\n", strings.Join(names, ", "))
	sb.WriteString("Suggest 3 short follow-up questions the patient might naturally ask next. Respond with a JSON array of strings and nothing else.")
	prompt := sb.String()

	raw, err := p.llm.Complete(ctx, []domain.Message{
		{Role: domain.RoleUser, Content: prompt},
	}, domain.CompleteOptions{Temperature: 0.7, MaxTokens: 200})
	if err != nil {
		p.logger.Warn("suggestion_generation_failed",
			slog.String("error", err.Error()))
		return nil
	}

	suggestions, err := parseSuggestionArray(raw)
	if err != nil {
		p.logger.Warn("suggestion_response_unparseable",
			slog.String("error", err.Error()))
		return nil
	}
	return suggestions
}

func parseSuggestionArray(raw string) ([]string, error) {
	text := strings.TrimSpace(RepairJSON(raw))
	start := strings.Index(text, "[")
	end := strings.LastIndex(text, "]")
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON array in response: %w", domain.ErrMalformedResponse)
	}
	var out []string
	if err := json.Unmarshal([]byte(text[start:end+1]), &out); err != nil {
		return nil, fmt.Errorf("failed to parse suggestion array: %w", domain.ErrMalformedResponse)
	}
	return out, nil
}

// recentUserTexts gathers the dedupe corpus: the current question plus
// the last five user turns.
func recentUserTexts(question string, history []domain.Message) []string {
	texts := []string{question}
	count := 0
	for i := len(history) - 1; i >= 0 && count < 5; i-- {
		if history[i].Role != domain.RoleUser {
			continue
		}
		texts = append(texts, history[i].Content)
		count++
	}
	return texts
}

// appendFresh adds candidates that are non-empty, not already accepted,
// and not a rephrasing of anything the patient already asked. Order of
// the incoming candidates is preserved.
func appendFresh(accepted, candidates, asked []string) []string {
	for _, candidate := range candidates {
		candidate = strings.TrimSpace(candidate)
		if candidate == "" {
			continue
		}
		if containsOverlap(accepted, candidate) || containsOverlap(asked, candidate) {
			continue
		}
		accepted = append(accepted, candidate)
	}
	return accepted
}

// containsOverlap reports whether candidate substantially repeats any
// existing text. Matching is case-insensitive containment in either
// direction, so "Is it painful?" collides with "is it painful".
func containsOverlap(existing []string, candidate string) bool {
	c := strings.ToLower(strings.TrimSpace(candidate))
	for _, e := range existing {
		el := strings.ToLower(strings.TrimSpace(e))
		if el == "" {
			continue
		}
		if strings.Contains(el, c) || strings.Contains(c, el) {
			return true
		}
	}
	return false
}

var topicSuggestions = map[domain.Topic][]string{
	domain.TopicSurgery: {
		"Is cataract surgery painful?",
		"How long does the surgery take?",
		"How should I prepare for surgery day?",
	},
	domain.TopicLenses: {
		"What lens types are available?",
		"What is the difference between monofocal and multifocal lenses?",
		"Will I still need glasses after surgery?",
	},
	domain.TopicInsurance: {
		"Does insurance usually cover cataract surgery?",
		"What costs should I expect to pay myself?",
	},
	domain.TopicRecovery: {
		"When can I drive again after surgery?",
		"When can I go back to work?",
		"What activities should I avoid while healing?",
	},
	domain.TopicPostOp: {
		"How do I use my eye drops correctly?",
		"What symptoms after surgery are normal?",
		"When is my follow-up visit?",
	},
	domain.TopicSymptoms: {
		"What are the early signs of a cataract?",
		"When should I see a doctor about my vision?",
	},
	domain.TopicDiagnosis: {
		"How is a cataract diagnosed?",
		"What happens during a cataract eye exam?",
	},
	domain.TopicBasics: {
		"What causes cataracts?",
		"Can cataracts be prevented?",
	},
}

var genericSuggestions = []string{
	"What is a cataract?",
	"How do I know if I need cataract surgery?",
	"What should I ask my eye doctor?",
}

// staticSuggestions flattens the per-topic tables in decision order,
// then falls through to the generic defaults.
func staticSuggestions(topics []domain.Topic) []string {
	var out []string
	for _, t := range topics {
		out = append(out, topicSuggestions[t]...)
	}
	out = append(out, genericSuggestions...)
	return out
}
