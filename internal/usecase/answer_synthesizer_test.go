package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

func newTestSynthesizer(llm *stubLLM, attempts int) usecase.AnswerSynthesizer {
	return usecase.NewAnswerSynthesizer(llm, 5*time.Second, attempts, 10, 512, testLogger())
}

func TestSynthesize_DirectParse(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`{"blocks": [{"type": "text", "content": "Cataracts cloud the eye's lens."}], "suggestions": ["What causes them?"]}`,
	}}
	s := newTestSynthesizer(llm, 1)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "explain cataracts"})

	assert.Equal(t, "direct", result.Strategy)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Cataracts cloud the eye's lens.", result.Blocks[0].Content)
	assert.Equal(t, []string{"What causes them?"}, result.Suggestions)
}

func TestSynthesize_RepairsFencedOutput(t *testing.T) {
	llm := &stubLLM{responses: []string{
		"```json\n{\"blocks\": [{\"type\": \"text\", \"content\": \"ok\"}],}\n```",
	}}
	s := newTestSynthesizer(llm, 1)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

	assert.Equal(t, "repair", result.Strategy)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "ok", result.Blocks[0].Content)
}

func TestSynthesize_ExtractsEmbeddedObject(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`Here is your answer! {"blocks": [{"type": "text", "content": "embedded"}]} Let me know if you need more.`,
	}}
	s := newTestSynthesizer(llm, 1)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

	assert.Equal(t, "extract", result.Strategy)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "embedded", result.Blocks[0].Content)
}

func TestSynthesize_BareArrayAsBlocks(t *testing.T) {
	llm := &stubLLM{responses: []string{
		`[{"type": "text", "content": "array form"}]`,
	}}
	s := newTestSynthesizer(llm, 1)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "array form", result.Blocks[0].Content)
	assert.Empty(t, result.Suggestions)
}

func TestSynthesize_ProseFallback(t *testing.T) {
	llm := &stubLLM{responses: []string{"Plain prose, no JSON at all."}}
	s := newTestSynthesizer(llm, 1)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

	assert.Equal(t, "fallback", result.Strategy)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "Plain prose, no JSON at all.", result.Blocks[0].Content)
}

func TestSynthesize_ProviderDownYieldsApology(t *testing.T) {
	llm := &stubLLM{err: domain.ErrProviderUnavailable}
	s := newTestSynthesizer(llm, 2)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

	assert.Equal(t, 2, llm.calls, "retry budget is spent before giving up")
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, usecase.BlockText, result.Blocks[0].Type)
	assert.NotEmpty(t, result.Blocks[0].Content)
}

func TestSynthesize_NeverReturnsZeroBlocks(t *testing.T) {
	responses := []string{
		"",
		"{}",
		`{"blocks": []}`,
		`{"blocks": [{"type": "text", "content": "  "}]}`,
		"garbage %% output",
	}
	for _, raw := range responses {
		llm := &stubLLM{responses: []string{raw}}
		s := newTestSynthesizer(llm, 1)

		result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

		require.NotEmpty(t, result.Blocks, "response %q must still produce a block", raw)
		assert.NotEmpty(t, result.Blocks[0].Content)
	}
}

func TestSynthesize_HistoryBounded(t *testing.T) {
	llm := &stubLLM{responses: []string{`{"blocks": [{"type": "text", "content": "x"}]}`}}
	s := usecase.NewAnswerSynthesizer(llm, 0, 1, 4, 512, testLogger())

	history := make([]domain.Message, 0, 10)
	for i := 0; i < 10; i++ {
		history = append(history, domain.Message{Role: domain.RoleUser, Content: "old turn"})
	}

	s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "p", History: history})

	assert.Equal(t, 5, llm.lastMessageCount, "4 history turns plus the prompt")
}

func TestSynthesize_RetrySucceedsSecondAttempt(t *testing.T) {
	llm := &stubLLM{responses: []string{"", `{"blocks": [{"type": "text", "content": "second try"}]}`}}
	s := newTestSynthesizer(llm, 2)

	result := s.Synthesize(context.Background(), usecase.SynthesizeInput{Prompt: "q"})

	assert.Equal(t, 2, llm.calls)
	require.Len(t, result.Blocks, 1)
	assert.Equal(t, "second try", result.Blocks[0].Content)
}

func TestSynthesize_CancelledContextStopsRetry(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	llm := &stubLLM{err: errors.New("boom")}
	s := newTestSynthesizer(llm, 3)

	result := s.Synthesize(ctx, usecase.SynthesizeInput{Prompt: "q"})

	assert.Equal(t, 1, llm.calls, "no retries once the request is cancelled")
	require.NotEmpty(t, result.Blocks)
}
