package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

func TestSuggest_CandidatesPassThrough(t *testing.T) {
	p := usecase.NewSuggestionPipeline(nil, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question:   "What is a cataract?",
		Candidates: []string{"How fast do cataracts grow?", "Do both eyes get them?", "Can children get cataracts?"},
	})

	assert.Equal(t, []string{
		"How fast do cataracts grow?",
		"Do both eyes get them?",
		"Can children get cataracts?",
	}, got)
}

func TestSuggest_NeverMoreThanThree(t *testing.T) {
	p := usecase.NewSuggestionPipeline(nil, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question:   "Tell me about surgery",
		Candidates: []string{"a?", "b?", "c?", "d?", "e?"},
		Topics:     []domain.Topic{domain.TopicSurgery},
	})

	assert.Len(t, got, 3)
}

func TestSuggest_ExcludesAskedQuestion(t *testing.T) {
	p := usecase.NewSuggestionPipeline(nil, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question:   "Is it painful?",
		Candidates: []string{"Is it painful?", "is it painful", "How long does it take?"},
	})

	assert.NotContains(t, got, "Is it painful?")
	assert.NotContains(t, got, "is it painful")
	assert.Contains(t, got, "How long does it take?")
}

func TestSuggest_ExcludesRecentHistory(t *testing.T) {
	p := usecase.NewSuggestionPipeline(nil, testLogger())

	history := []domain.Message{
		{Role: domain.RoleUser, Content: "When can I drive again after surgery?"},
		{Role: domain.RoleAssistant, Content: "Usually within a few days."},
	}

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question:   "What about flying?",
		Candidates: []string{"When can I drive again after surgery?", "When can I swim?"},
		History:    history,
	})

	assert.NotContains(t, got, "When can I drive again after surgery?")
	assert.Contains(t, got, "When can I swim?")
}

func TestSuggest_StaticBackfillByTopic(t *testing.T) {
	p := usecase.NewSuggestionPipeline(nil, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question: "Tell me about lenses",
		Topics:   []domain.Topic{domain.TopicLenses},
	})

	assert.Equal(t, []string{
		"What lens types are available?",
		"What is the difference between monofocal and multifocal lenses?",
		"Will I still need glasses after surgery?",
	}, got)
}

func TestSuggest_GenericBackfillWithoutTopics(t *testing.T) {
	p := usecase.NewSuggestionPipeline(nil, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{Question: "hello"})

	assert.Equal(t, []string{
		"What is a cataract?",
		"How do I know if I need cataract surgery?",
		"What should I ask my eye doctor?",
	}, got)
}

func TestSuggest_ModelBackfill(t *testing.T) {
	llm := &stubLLM{responses: []string{`["What lens is best for night driving?", "Are premium lenses covered?"]`}}
	p := usecase.NewSuggestionPipeline(llm, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question:   "Which lens should I choose?",
		Candidates: []string{"Will I still need glasses?"},
		Topics:     []domain.Topic{domain.TopicLenses},
	})

	assert.Len(t, got, 3)
	assert.Equal(t, "Will I still need glasses?", got[0], "model candidates come after the answer's own")
	assert.Contains(t, got, "What lens is best for night driving?")
}

func TestSuggest_ModelBackfillSeededWithAnswer(t *testing.T) {
	llm := &stubLLM{responses: []string{`["When is my follow-up visit?"]`}}
	p := usecase.NewSuggestionPipeline(llm, testLogger())

	answer := "Use the antibiotic drops four times a day for one week."
	p.Suggest(context.Background(), usecase.SuggestionInput{
		Question: "Which drops do I take?",
		Answer:   answer,
		Topics:   []domain.Topic{domain.TopicPostOp},
	})

	require.NotEmpty(t, llm.prompts)
	assert.Contains(t, llm.prompts[0], "Which drops do I take?")
	assert.Contains(t, llm.prompts[0], answer)
}

func TestSuggest_ModelFailureFallsBackToStatic(t *testing.T) {
	llm := &stubLLM{err: errors.New("provider down")}
	p := usecase.NewSuggestionPipeline(llm, testLogger())

	got := p.Suggest(context.Background(), usecase.SuggestionInput{
		Question: "What happens during recovery?",
		Topics:   []domain.Topic{domain.TopicRecovery},
	})

	assert.Equal(t, []string{
		"When can I drive again after surgery?",
		"When can I go back to work?",
		"What activities should I avoid while healing?",
	}, got)
}
