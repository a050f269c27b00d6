package usecase_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/usecase"
)

func TestExpandTopics(t *testing.T) {
	tests := []struct {
		name   string
		topics []domain.Topic
		want   []domain.Topic
	}{
		{
			name: "empty means unfiltered",
		},
		{
			name:   "general disables filter",
			topics: []domain.Topic{domain.TopicSurgery, domain.TopicGeneral},
		},
		{
			name:   "insurance pulls in surgery costs",
			topics: []domain.Topic{domain.TopicInsurance},
			want:   []domain.Topic{domain.TopicInsurance, domain.TopicSurgeryCosts, domain.TopicBasics},
		},
		{
			name:   "surgery widens to costs lenses recovery",
			topics: []domain.Topic{domain.TopicSurgery},
			want:   []domain.Topic{domain.TopicSurgery, domain.TopicSurgeryCosts, domain.TopicLenses, domain.TopicRecovery},
		},
		{
			name:   "duplicates collapse preserving order",
			topics: []domain.Topic{domain.TopicRecovery, domain.TopicPostOp},
			want:   []domain.Topic{domain.TopicRecovery, domain.TopicPostOp, domain.TopicSurgery},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := usecase.ExpandTopics(tt.topics)
			assert.Equal(t, tt.want, got)
		})
	}
}
