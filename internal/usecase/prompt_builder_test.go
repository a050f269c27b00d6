package usecase_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

func TestPromptBuilder_Deterministic(t *testing.T) {
	builder := usecase.NewAssistantPromptBuilder()
	input := usecase.PromptInput{
		Question:       "When can I drive again?",
		Decision:       domain.RouterDecision{Topics: []domain.Topic{domain.TopicRecovery}},
		GeneralContext: "Most patients can drive within a few days.",
		PatientContext: "Patient name: Jane Roe\nSurgery date: 2026-08-20",
	}

	first := builder.Build(input)
	second := builder.Build(input)

	assert.Equal(t, first, second, "identical inputs must yield byte-identical prompts")
}

func TestPromptBuilder_QuestionVerbatim(t *testing.T) {
	builder := usecase.NewAssistantPromptBuilder()
	question := `What about "premium" lenses — are they worth it?`

	prompt := builder.Build(usecase.PromptInput{Question: question})

	assert.Contains(t, prompt, "Question: "+question)
}

func TestPromptBuilder_EmergencyNotice(t *testing.T) {
	builder := usecase.NewAssistantPromptBuilder()

	calm := builder.Build(usecase.PromptInput{Question: "What is a cataract?"})
	urgent := builder.Build(usecase.PromptInput{
		Question: "I suddenly lost vision",
		Decision: domain.RouterDecision{IsEmergency: true},
	})

	assert.NotContains(t, calm, "emergency")
	assert.Contains(t, urgent, "emergency")
}

func TestPromptBuilder_ContextBodiesUnlabeled(t *testing.T) {
	builder := usecase.NewAssistantPromptBuilder()

	prompt := builder.Build(usecase.PromptInput{
		Question:       "When is my checkup?",
		GeneralContext: "Follow-up visits usually happen the day after surgery.",
		ClinicContext:  "Clinic name: Vista Eye Center",
		PatientContext: "Patient name: Jane Roe",
	})

	assert.Contains(t, prompt, "Follow-up visits usually happen the day after surgery.")
	assert.Contains(t, prompt, "Clinic name: Vista Eye Center")
	assert.NotContains(t, prompt, "GENERAL CONTEXT")
	assert.NotContains(t, prompt, "PATIENT CONTEXT")
}

func TestPromptBuilder_EmptyContextOmitted(t *testing.T) {
	builder := usecase.NewAssistantPromptBuilder()

	prompt := builder.Build(usecase.PromptInput{Question: "What is a cataract?"})

	// no doubled blank sections between mandates and the question
	assert.NotContains(t, prompt, "\n\n\n")
	assert.True(t, strings.Contains(prompt, "Question: What is a cataract?"))
}

func TestPromptBuilder_AdditionalInstructions(t *testing.T) {
	builder := usecase.NewAssistantPromptBuilder("Answer in Spanish.")

	prompt := builder.Build(usecase.PromptInput{Question: "hola"})

	assert.True(t, strings.HasSuffix(strings.TrimRight(prompt, "\n"), "Answer in Spanish."))
}
