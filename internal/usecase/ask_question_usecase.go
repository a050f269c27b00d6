package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// ChatTurn is one conversation turn. The caller supplies prior turns as
// history and appends the assistant turn after each answer; turns are
// never mutated once appended.
type ChatTurn struct {
	Role        string         `json:"role"`
	Text        string         `json:"text"`
	Blocks      []ContentBlock `json:"blocks,omitempty"`
	Suggestions []string       `json:"suggestions,omitempty"`
	Timestamp   time.Time      `json:"timestamp"`
}

// AskInput is the full request to the question pipeline.
type AskInput struct {
	Question  string
	ClinicID  string
	PatientID string
	History   []ChatTurn
	Limit     int
}

// ContextPackage records what routing and retrieval produced for the
// answer. The prompt and raw context bodies stay off the wire; clients
// see the decision and citation sources only.
type ContextPackage struct {
	Question       string                `json:"question"`
	Prompt         string                `json:"-"`
	Decision       domain.RouterDecision `json:"decision"`
	GeneralContext string                `json:"-"`
	ClinicContext  string                `json:"-"`
	PatientContext string                `json:"-"`
	Sources        []domain.Source       `json:"sources,omitempty"`
}

// AskOutput is the fully assembled answer.
type AskOutput struct {
	RequestID   string         `json:"request_id"`
	Blocks      []ContentBlock `json:"blocks"`
	PlainText   string         `json:"plain_text"`
	Suggestions []string       `json:"suggestions"`
	IsEmergency bool           `json:"is_emergency"`
	Context     ContextPackage `json:"context"`
	ElapsedMS   int64          `json:"elapsed_ms"`
}

// AssistantTurn renders the output as the conversation turn the caller
// appends to its history.
func (o *AskOutput) AssistantTurn() ChatTurn {
	return ChatTurn{
		Role:        domain.RoleAssistant,
		Text:        o.PlainText,
		Blocks:      o.Blocks,
		Suggestions: o.Suggestions,
		Timestamp:   time.Now().UTC(),
	}
}

// AskQuestionUsecase runs the whole pipeline: route, retrieve, build
// the prompt, synthesize, then suggest. Each stage degrades on its own;
// the only hard failure surfaced to the caller is ErrNotFound for an
// explicitly referenced clinic or patient.
type AskQuestionUsecase interface {
	Execute(ctx context.Context, input AskInput) (*AskOutput, error)
}

type askQuestionUsecase struct {
	router      RouterUsecase
	retriever   RetrieveContextUsecase
	prompter    PromptBuilder
	synthesizer AnswerSynthesizer
	suggester   SuggestionPipeline
	logger      *slog.Logger
}

// NewAskQuestionUsecase wires the five pipeline stages.
func NewAskQuestionUsecase(
	router RouterUsecase,
	retriever RetrieveContextUsecase,
	prompter PromptBuilder,
	synthesizer AnswerSynthesizer,
	suggester SuggestionPipeline,
	logger *slog.Logger,
) AskQuestionUsecase {
	return &askQuestionUsecase{
		router:      router,
		retriever:   retriever,
		prompter:    prompter,
		synthesizer: synthesizer,
		suggester:   suggester,
		logger:      logger,
	}
}

func (u *askQuestionUsecase) Execute(ctx context.Context, input AskInput) (*AskOutput, error) {
	question := strings.TrimSpace(input.Question)
	if question == "" {
		return nil, fmt.Errorf("question is empty")
	}

	requestID := uuid.NewString()
	started := time.Now()
	logger := u.logger.With(slog.String("request_id", requestID))

	decision := u.router.Classify(ctx, question, input.ClinicID, input.PatientID)
	logger.Info("question_routed",
		slog.Bool("needs_clinic_kb", decision.NeedsClinicKB),
		slog.Bool("needs_patient_data", decision.NeedsPatientData),
		slog.Bool("is_emergency", decision.IsEmergency),
		slog.Any("topics", decision.Topics))

	retrieved, err := u.retriever.Execute(ctx, RetrieveContextInput{
		Question:  question,
		Decision:  decision,
		ClinicID:  input.ClinicID,
		PatientID: input.PatientID,
		Limit:     input.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve context: %w", err)
	}

	history := historyMessages(input.History)
	prompt := u.prompter.Build(PromptInput{
		Question:       question,
		Decision:       decision,
		GeneralContext: retrieved.GeneralContext,
		ClinicContext:  retrieved.ClinicContext,
		PatientContext: retrieved.PatientContext,
	})

	synthesis := u.synthesizer.Synthesize(ctx, SynthesizeInput{
		Prompt:  prompt,
		History: history,
	})
	logger.Info("answer_synthesized",
		slog.String("strategy", synthesis.Strategy),
		slog.Int("block_count", len(synthesis.Blocks)))

	plainText := FlattenBlocks(synthesis.Blocks)
	suggestions := u.suggester.Suggest(ctx, SuggestionInput{
		Question:   question,
		Answer:     plainText,
		Candidates: synthesis.Suggestions,
		Topics:     decision.Topics,
		History:    history,
	})

	return &AskOutput{
		RequestID:   requestID,
		Blocks:      synthesis.Blocks,
		PlainText:   plainText,
		Suggestions: suggestions,
		IsEmergency: decision.IsEmergency,
		Context: ContextPackage{
			Question:       question,
			Prompt:         prompt,
			Decision:       decision,
			GeneralContext: retrieved.GeneralContext,
			ClinicContext:  retrieved.ClinicContext,
			PatientContext: retrieved.PatientContext,
			Sources:        retrieved.Sources,
		},
		ElapsedMS: time.Since(started).Milliseconds(),
	}, nil
}

// historyMessages maps caller turns onto model roles. Unknown roles
// collapse to user so nothing is silently dropped.
func historyMessages(turns []ChatTurn) []domain.Message {
	if len(turns) == 0 {
		return nil
	}
	messages := make([]domain.Message, 0, len(turns))
	for _, turn := range turns {
		content := strings.TrimSpace(turn.Text)
		if content == "" {
			continue
		}
		role := domain.RoleUser
		if strings.EqualFold(turn.Role, domain.RoleAssistant) {
			role = domain.RoleAssistant
		}
		messages = append(messages, domain.Message{Role: role, Content: content})
	}
	return messages
}
