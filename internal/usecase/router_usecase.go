package usecase

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// RouterUsecase classifies a question into required knowledge sources,
// topics, and emergency status. Classification never fails: when the
// model path is unavailable or unparseable the heuristic classifier is
// the safety net.
type RouterUsecase interface {
	Classify(ctx context.Context, question, clinicID, patientID string) domain.RouterDecision
}

type routerUsecase struct {
	llm    domain.LLMClient
	logger *slog.Logger
}

// NewRouterUsecase creates a router. A nil llm disables the model path
// entirely, leaving only the heuristic classifier.
func NewRouterUsecase(llm domain.LLMClient, logger *slog.Logger) RouterUsecase {
	return &routerUsecase{llm: llm, logger: logger}
}

func (u *routerUsecase) Classify(ctx context.Context, question, clinicID, patientID string) domain.RouterDecision {
	if u.llm == nil {
		return HeuristicClassify(question, clinicID, patientID)
	}

	raw, err := u.llm.Complete(ctx, []domain.Message{
		{Role: domain.RoleSystem, Content: routerInstructions},
		{Role: domain.RoleUser, Content: routerQuestionPrompt(question, clinicID, patientID)},
	}, domain.CompleteOptions{Temperature: 0, MaxTokens: 300})
	if err != nil {
		u.logger.Warn("router_model_failed",
			slog.String("error", err.Error()))
		return HeuristicClassify(question, clinicID, patientID)
	}

	decision, err := parseRouterResponse(raw)
	if err != nil {
		u.logger.Warn("router_response_unparseable",
			slog.String("error", err.Error()))
		return HeuristicClassify(question, clinicID, patientID)
	}
	return decision
}

const routerInstructions = `You classify patient questions for an eye-care assistant.
Decide which knowledge sources are needed and whether the question describes a medical emergency.

Emergency means acute symptoms such as sudden vision loss, severe eye pain, new flashes or floaters, or eye bleeding or injury. Informational questions about those symptoms are NOT emergencies.

Respond with a single JSON object and nothing else:
{
  "needs_general_kb": true,
  "needs_clinic_kb": false,
  "needs_patient_data": false,
  "topics": ["BASICS"],
  "is_emergency": false,
  "rationale": "one short sentence"
}
Topics must come from: BASICS, SYMPTOMS, DIAGNOSIS, SURGERY, LENSES, RECOVERY, POST_OP, INSURANCE, GENERAL.`

func routerQuestionPrompt(question, clinicID, patientID string) string {
	var sb strings.Builder
	sb.WriteString("Question: ")
	sb.WriteString(question)
	sb.WriteString("\n")
	if clinicID != "" {
		sb.WriteString("The caller is associated with a clinic record.\n")
	}
	if patientID != "" {
		sb.WriteString("The caller has a patient record available.\n")
	}
	return sb.String()
}

// looseBool tolerates the boolean spellings models actually produce:
// true, "true", "yes", 1.
type looseBool struct {
	value bool
	set   bool
}

func (b *looseBool) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "true", "yes", "1":
		b.value, b.set = true, true
	case "false", "no", "0":
		b.value, b.set = false, true
	case "null", "":
		// leave unset
	default:
		b.value, b.set = false, true
	}
	return nil
}

type routerResponse struct {
	NeedsGeneralKB   looseBool `json:"needs_general_kb"`
	NeedsClinicKB    looseBool `json:"needs_clinic_kb"`
	NeedsPatientData looseBool `json:"needs_patient_data"`
	Topics           []string  `json:"topics"`
	IsEmergency      looseBool `json:"is_emergency"`
	Rationale        string    `json:"rationale"`
}

func parseRouterResponse(raw string) (domain.RouterDecision, error) {
	span, ok := ExtractJSONSpan(raw)
	if !ok {
		return domain.RouterDecision{}, fmt.Errorf("no JSON object in router response: %w", domain.ErrMalformedResponse)
	}

	var resp routerResponse
	if err := json.Unmarshal([]byte(RepairJSON(span)), &resp); err != nil {
		return domain.RouterDecision{}, fmt.Errorf("failed to parse router response: %w", domain.ErrMalformedResponse)
	}

	topics := make([]domain.Topic, 0, len(resp.Topics))
	seen := make(map[domain.Topic]struct{}, len(resp.Topics))
	for _, rawTopic := range resp.Topics {
		t, ok := domain.ParseTopic(rawTopic)
		if !ok {
			continue
		}
		if _, dup := seen[t]; dup {
			continue
		}
		seen[t] = struct{}{}
		topics = append(topics, t)
	}
	if len(topics) == 0 {
		topics = []domain.Topic{domain.TopicGeneral}
	}

	// needs_general_kb defaults true when unspecified
	needsGeneral := true
	if resp.NeedsGeneralKB.set {
		needsGeneral = resp.NeedsGeneralKB.value
	}

	return domain.RouterDecision{
		NeedsGeneralKB:   needsGeneral,
		NeedsClinicKB:    resp.NeedsClinicKB.value,
		NeedsPatientData: resp.NeedsPatientData.value,
		Topics:           topics,
		IsEmergency:      resp.IsEmergency.value,
		Rationale:        strings.TrimSpace(resp.Rationale),
	}, nil
}
