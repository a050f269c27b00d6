package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// apologyText is the canned answer of last resort.
const apologyText = "I'm sorry, I wasn't able to put together an answer just now. Please try asking again, or contact your clinic directly if the question is urgent."

// SynthesizeInput carries the assembled prompt and the recent chat
// turns that precede it.
type SynthesizeInput struct {
	Prompt  string
	History []domain.Message
}

// SynthesisResult is the recovered structured answer. Blocks is never
// empty; Strategy names the recovery step that produced it.
type SynthesisResult struct {
	Blocks      []ContentBlock
	Suggestions []string
	Raw         string
	Strategy    string
}

// AnswerSynthesizer turns the prompt into structured content blocks.
// It never fails: every degradation path ends in at least one text
// block.
type AnswerSynthesizer interface {
	Synthesize(ctx context.Context, input SynthesizeInput) *SynthesisResult
}

type answerSynthesizer struct {
	llm         domain.LLMClient
	logger      *slog.Logger
	timeout     time.Duration
	maxAttempts int
	maxHistory  int
	temperature float32
	maxTokens   int
}

// NewAnswerSynthesizer wires the synthesis stage. timeout bounds each
// generation attempt; maxAttempts is the fixed retry budget.
func NewAnswerSynthesizer(
	llm domain.LLMClient,
	timeout time.Duration,
	maxAttempts, maxHistory, maxTokens int,
	logger *slog.Logger,
) AnswerSynthesizer {
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	return &answerSynthesizer{
		llm:         llm,
		logger:      logger,
		timeout:     timeout,
		maxAttempts: maxAttempts,
		maxHistory:  maxHistory,
		temperature: 0.4,
		maxTokens:   maxTokens,
	}
}

func (s *answerSynthesizer) Synthesize(ctx context.Context, input SynthesizeInput) *SynthesisResult {
	raw, err := s.generate(ctx, input)
	if err != nil || strings.TrimSpace(raw) == "" {
		s.logger.Warn("synthesis_generation_failed",
			slog.Any("error", err))
		return fallbackResult(raw)
	}

	payload, strategy, err := recoverPayload(raw)
	if err != nil {
		s.logger.Warn("synthesis_recovery_exhausted",
			slog.String("error", err.Error()))
		return fallbackResult(raw)
	}

	blocks := normalizeBlocks(payload.Blocks)
	if len(blocks) == 0 {
		s.logger.Warn("synthesis_produced_no_blocks",
			slog.String("strategy", strategy))
		return fallbackResult(raw)
	}

	return &SynthesisResult{
		Blocks:      blocks,
		Suggestions: payload.Suggestions,
		Raw:         raw,
		Strategy:    strategy,
	}
}

func (s *answerSynthesizer) generate(ctx context.Context, input SynthesizeInput) (string, error) {
	messages := make([]domain.Message, 0, s.maxHistory+1)
	history := input.History
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		history = history[len(history)-s.maxHistory:]
	}
	messages = append(messages, history...)
	messages = append(messages, domain.Message{Role: domain.RoleUser, Content: input.Prompt})

	var lastErr error
	for attempt := 1; attempt <= s.maxAttempts; attempt++ {
		attemptCtx := ctx
		var cancel context.CancelFunc
		if s.timeout > 0 {
			attemptCtx, cancel = context.WithTimeout(ctx, s.timeout)
		}
		raw, err := s.llm.Complete(attemptCtx, messages, domain.CompleteOptions{
			Temperature: s.temperature,
			MaxTokens:   s.maxTokens,
		})
		if cancel != nil {
			cancel()
		}
		if err == nil && strings.TrimSpace(raw) != "" {
			return raw, nil
		}
		lastErr = err
		if ctx.Err() != nil {
			// the request itself was cancelled; do not retry
			return "", ctx.Err()
		}
		s.logger.Warn("synthesis_attempt_failed",
			slog.Int("attempt", attempt),
			slog.Any("error", err))
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("empty response after %d attempts", s.maxAttempts)
	}
	return "", lastErr
}

// modelPayload is the strict JSON object the prompt requests.
type modelPayload struct {
	Blocks      []ContentBlock `json:"blocks"`
	Suggestions []string       `json:"suggestions"`
}

// recoveryStrategy is one named step of the ladder. Keeping the order
//
//	explicit in a slice makes each step independently testable.
type recoveryStrategy struct {
	name string
	run  func(raw string) (*modelPayload, error)
}

var recoveryLadder = []recoveryStrategy{
	{name: "direct", run: func(raw string) (*modelPayload, error) {
		return parsePayload(strings.TrimSpace(raw))
	}},
	{name: "repair", run: func(raw string) (*modelPayload, error) {
		return parsePayload(RepairJSON(raw))
	}},
	{name: "extract", run: func(raw string) (*modelPayload, error) {
		span, ok := ExtractJSONSpan(raw)
		if !ok {
			return nil, fmt.Errorf("no JSON object found")
		}
		return parsePayload(RepairJSON(span))
	}},
}

func recoverPayload(raw string) (*modelPayload, string, error) {
	var lastErr error
	for _, strategy := range recoveryLadder {
		payload, err := strategy.run(raw)
		if err == nil {
			return payload, strategy.name, nil
		}
		lastErr = err
	}
	return nil, "", fmt.Errorf("%w: %v", domain.ErrMalformedResponse, lastErr)
}

// parsePayload decodes the payload object. A bare JSON array is
// treated as the blocks list directly.
func parsePayload(text string) (*modelPayload, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("empty text")
	}
	if strings.HasPrefix(text, "[") {
		var blocks []ContentBlock
		if err := json.Unmarshal([]byte(text), &blocks); err != nil {
			return nil, fmt.Errorf("failed to parse block array: %w", err)
		}
		return &modelPayload{Blocks: blocks}, nil
	}
	var payload modelPayload
	if err := json.Unmarshal([]byte(text), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse payload: %w", err)
	}
	return &payload, nil
}

// fallbackResult emits the single-block answer of last resort: the raw
// response when it reads as prose, the canned apology otherwise.
func fallbackResult(raw string) *SynthesisResult {
	text := strings.TrimSpace(raw)
	if text == "" || strings.HasPrefix(text, "{") {
		text = apologyText
	}
	return &SynthesisResult{
		Blocks:   []ContentBlock{{Type: BlockText, Content: text}},
		Raw:      raw,
		Strategy: "fallback",
	}
}
