package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// RetrieveContextInput defines the input parameters for RetrieveContext.
type RetrieveContextInput struct {
	Question  string
	Decision  domain.RouterDecision
	ClinicID  string
	PatientID string
	Limit     int
}

// RetrieveContextOutput carries the assembled context texts. Absent
// context is an empty string, never an error: retrieval degradation
// must not abort the request.
type RetrieveContextOutput struct {
	GeneralContext string
	ClinicContext  string
	PatientContext string
	Sources        []domain.Source
	Hits           []domain.KnowledgeHit
}

// RetrieveContextUsecase pulls context from the vector knowledge base
// and the structured clinic/patient stores. The only error it returns
// is ErrNotFound for an explicitly referenced primary entity.
type RetrieveContextUsecase interface {
	Execute(ctx context.Context, input RetrieveContextInput) (*RetrieveContextOutput, error)
}

type retrieveContextUsecase struct {
	knowledge    domain.KnowledgeRepository
	encoder      domain.VectorEncoder
	clinics      domain.ClinicStore
	patients     domain.PatientStore
	defaultLimit int
	logger       *slog.Logger
}

// NewRetrieveContextUsecase creates a new RetrieveContextUsecase.
func NewRetrieveContextUsecase(
	knowledge domain.KnowledgeRepository,
	encoder domain.VectorEncoder,
	clinics domain.ClinicStore,
	patients domain.PatientStore,
	defaultLimit int,
	logger *slog.Logger,
) RetrieveContextUsecase {
	return &retrieveContextUsecase{
		knowledge:    knowledge,
		encoder:      encoder,
		clinics:      clinics,
		patients:     patients,
		defaultLimit: defaultLimit,
		logger:       logger,
	}
}

func (u *retrieveContextUsecase) Execute(ctx context.Context, input RetrieveContextInput) (*RetrieveContextOutput, error) {
	if strings.TrimSpace(input.Question) == "" {
		return nil, fmt.Errorf("question is empty")
	}

	limit := input.Limit
	if limit <= 0 {
		limit = u.defaultLimit
	}

	out := &RetrieveContextOutput{}

	if input.Decision.NeedsGeneralKB {
		u.searchKnowledge(ctx, input, limit, out)
	}

	if input.Decision.NeedsClinicKB && input.ClinicID != "" {
		clinic, err := u.clinics.GetClinic(ctx, input.ClinicID)
		switch {
		case err == nil:
			out.ClinicContext = serializeClinic(clinic)
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("clinic %s: %w", input.ClinicID, domain.ErrNotFound)
		default:
			u.logger.Warn("clinic_lookup_failed",
				slog.String("clinic_id", input.ClinicID),
				slog.String("error", err.Error()))
		}
	}

	if input.Decision.NeedsPatientData && input.PatientID != "" {
		patient, err := u.patients.GetPatient(ctx, input.PatientID)
		switch {
		case err == nil:
			out.PatientContext = serializePatient(patient)
		case errors.Is(err, domain.ErrNotFound):
			return nil, fmt.Errorf("patient %s: %w", input.PatientID, domain.ErrNotFound)
		default:
			u.logger.Warn("patient_lookup_failed",
				slog.String("patient_id", input.PatientID),
				slog.String("error", err.Error()))
		}
	}

	return out, nil
}

// searchKnowledge embeds the question, over-fetches when a topic
// filter is active, filters through the expansion allow-set, and
// assembles the linear context text plus deduplicated sources.
func (u *retrieveContextUsecase) searchKnowledge(ctx context.Context, input RetrieveContextInput, limit int, out *RetrieveContextOutput) {
	embeddings, err := u.encoder.Encode(ctx, []string{input.Question})
	if err != nil || len(embeddings) == 0 {
		u.logger.Warn("question_embedding_failed",
			slog.Any("error", err))
		return
	}

	allowed := ExpandTopics(input.Decision.Topics)
	fetchLimit := limit
	if len(allowed) > 0 {
		// over-fetch to absorb post-filter loss
		fetchLimit = limit * 3
	}

	// the allow-set rides down as a coarse store-side pre-filter; the
	// containment filter below stays authoritative
	hits, err := u.knowledge.Search(ctx, embeddings[0], fetchLimit, allowed)
	if err != nil {
		u.logger.Warn("knowledge_search_failed",
			slog.String("error", err.Error()))
		return
	}

	matched := make([]domain.KnowledgeHit, 0, limit)
	for _, hit := range hits {
		if !topicAllowed(allowed, hit.Topic) {
			continue
		}
		matched = append(matched, hit)
		if len(matched) >= limit {
			break
		}
	}

	out.Hits = matched
	out.GeneralContext = assembleContextText(matched)
	out.Sources = collectSources(matched)
}

func assembleContextText(hits []domain.KnowledgeHit) string {
	sections := make([]string, 0, len(hits))
	for _, hit := range hits {
		text := strings.TrimSpace(hit.Content)
		if text == "" {
			continue
		}
		if hit.SectionTitle != "" {
			text = hit.SectionTitle + "\n" + text
		}
		sections = append(sections, text)
	}
	return strings.Join(sections, "\n\n")
}

func collectSources(hits []domain.KnowledgeHit) []domain.Source {
	seen := make(map[domain.Source]struct{}, len(hits))
	var sources []domain.Source
	for _, hit := range hits {
		if hit.SectionTitle == "" && hit.SourceURL == "" {
			continue
		}
		s := domain.Source{SectionTitle: hit.SectionTitle, SourceURL: hit.SourceURL}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		sources = append(sources, s)
	}
	return sources
}

// Record serialization is deliberately plain "key: value" text in a
// fixed field order so the assembled prompt stays byte-deterministic.

func serializeClinic(c *domain.ClinicRecord) string {
	var sb strings.Builder
	writeField(&sb, "Clinic name", c.Name)
	writeField(&sb, "Address", c.Address)
	writeField(&sb, "Phone", c.Phone)
	writeField(&sb, "Opening hours", c.OpeningHours)
	writeField(&sb, "Surgeons", strings.Join(c.Surgeons, ", "))
	writeField(&sb, "Services", strings.Join(c.Services, ", "))
	return strings.TrimRight(sb.String(), "\n")
}

func serializePatient(p *domain.PatientRecord) string {
	var sb strings.Builder
	writeField(&sb, "Patient name", p.FullName)
	if p.SurgeryDate != nil {
		writeField(&sb, "Surgery date", p.SurgeryDate.Format("2006-01-02"))
	}
	writeField(&sb, "Surgery type", p.SurgeryType)
	writeField(&sb, "Lens type", p.LensType)
	writeField(&sb, "Eye operated", p.EyeOperated)
	writeField(&sb, "Medications", strings.Join(p.Medications, ", "))
	writeField(&sb, "Post-op schedule", strings.Join(p.PostOpSchedule, "; "))
	writeField(&sb, "Notes", p.Notes)
	return strings.TrimRight(sb.String(), "\n")
}

func writeField(sb *strings.Builder, key, value string) {
	if strings.TrimSpace(value) == "" {
		return
	}
	sb.WriteString(key)
	sb.WriteString(": ")
	sb.WriteString(value)
	sb.WriteString("\n")
}
