package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

func TestHeuristicClassify(t *testing.T) {
	tests := []struct {
		name        string
		question    string
		clinicID    string
		patientID   string
		wantTopics  []domain.Topic
		wantEmerg   bool
		wantClinic  bool
		wantPatient bool
	}{
		{
			name:       "surgery question",
			question:   "How long does cataract surgery take?",
			wantTopics: []domain.Topic{domain.TopicSurgery},
		},
		{
			name:       "lens question",
			question:   "Which IOL should I pick?",
			wantTopics: []domain.Topic{domain.TopicLenses},
			// "should i" is a personal phrasing
			wantPatient: true,
		},
		{
			name:        "drops question with patient id",
			question:    "Which drops do I take tonight after my surgery?",
			patientID:   "p-1",
			wantPatient: true,
		},
		{
			name:     "emergency sudden vision loss",
			question: "I have sudden vision loss in my right eye",
			// "I have" also reads as a personal question
			wantEmerg:   true,
			wantPatient: true,
		},
		{
			name:        "emergency severe pain",
			question:    "severe eye pain since an hour ago, what do I do",
			wantEmerg:   true,
			wantPatient: true,
		},
		{
			name:       "clinic question",
			question:   "What are the clinic opening hours?",
			wantClinic: true,
		},
		{
			name:       "clinic id forces clinic lookup",
			question:   "Tell me about cataracts",
			clinicID:   "c-1",
			wantClinic: true,
		},
		{
			name:       "unmatched question defaults to general",
			question:   "hello there",
			wantTopics: []domain.Topic{domain.TopicGeneral},
		},
		{
			name:       "insurance question",
			question:   "Does medicare cover the cost?",
			wantTopics: []domain.Topic{domain.TopicInsurance},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.HeuristicClassify(tt.question, tt.clinicID, tt.patientID)

			assert.True(t, got.NeedsGeneralKB, "general KB is always consulted")
			assert.Equal(t, tt.wantEmerg, got.IsEmergency)
			assert.Equal(t, tt.wantClinic, got.NeedsClinicKB)
			assert.Equal(t, tt.wantPatient, got.NeedsPatientData)
			if tt.wantTopics != nil {
				for _, topic := range tt.wantTopics {
					assert.True(t, got.HasTopic(topic), "expected topic %s in %v", topic, got.Topics)
				}
			}
			assert.NotEmpty(t, got.Topics)
			assert.NotEmpty(t, got.Rationale)
		})
	}
}

func TestHeuristicClassify_Deterministic(t *testing.T) {
	first := usecase.HeuristicClassify("When can I drive after my surgery?", "c-9", "p-9")
	second := usecase.HeuristicClassify("When can I drive after my surgery?", "c-9", "p-9")

	assert.Equal(t, first, second)
}

func TestHeuristicClassify_DropsQuestionTopics(t *testing.T) {
	got := usecase.HeuristicClassify("Which drops do I take tonight?", "", "p-1")

	assert.True(t, got.HasTopic(domain.TopicPostOp) || got.HasTopic(domain.TopicSurgery),
		"expected POST_OP or SURGERY in %v", got.Topics)
	assert.True(t, got.NeedsPatientData)
}
