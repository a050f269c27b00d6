package usecase_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

func TestRouterClassify_ModelPath(t *testing.T) {
	llm := &stubLLM{responses: []string{`{
		"needs_general_kb": true,
		"needs_clinic_kb": false,
		"needs_patient_data": true,
		"topics": ["POST_OP", "RECOVERY"],
		"is_emergency": false,
		"rationale": "asks about personal post-op care"
	}`}}
	router := usecase.NewRouterUsecase(llm, testLogger())

	got := router.Classify(context.Background(), "Which drops tonight?", "", "p-1")

	assert.True(t, got.NeedsGeneralKB)
	assert.True(t, got.NeedsPatientData)
	assert.False(t, got.NeedsClinicKB)
	assert.Equal(t, []domain.Topic{domain.TopicPostOp, domain.TopicRecovery}, got.Topics)
	assert.False(t, got.IsEmergency)
	assert.Equal(t, "asks about personal post-op care", got.Rationale)
}

func TestRouterClassify_ModelFailureFallsBack(t *testing.T) {
	llm := &stubLLM{err: errors.New("timeout")}
	router := usecase.NewRouterUsecase(llm, testLogger())

	got := router.Classify(context.Background(), "How long does surgery take?", "", "")

	// heuristic result, never an error
	assert.True(t, got.NeedsGeneralKB)
	assert.True(t, got.HasTopic(domain.TopicSurgery))
}

func TestRouterClassify_GarbageResponseFallsBack(t *testing.T) {
	llm := &stubLLM{responses: []string{"I think this question is about surgery."}}
	router := usecase.NewRouterUsecase(llm, testLogger())

	got := router.Classify(context.Background(), "How long does surgery take?", "", "")

	assert.True(t, got.HasTopic(domain.TopicSurgery))
	assert.NotEmpty(t, got.Rationale)
}

func TestRouterClassify_NilLLMUsesHeuristic(t *testing.T) {
	router := usecase.NewRouterUsecase(nil, testLogger())

	got := router.Classify(context.Background(), "severe eye pain right now", "", "")

	assert.True(t, got.IsEmergency)
}
