package usecase

import (
	"strings"

	"github.com/srinivasan-ikites/cataract-assistant-sub000/internal/domain"
)

// Heuristic classifier used when the model path fails or is disabled.
// Pure function of (question, clinicID, patientID): no I/O, always
// terminates, identical inputs yield the identical decision.

var topicKeywords = map[domain.Topic][]string{
	domain.TopicSymptoms: {
		"blurry", "blurred", "cloudy", "halo", "glare", "double vision",
		"vision got worse", "worse at night", "faded", "hard to see",
	},
	domain.TopicDiagnosis: {
		"diagnos", "eye exam", "slit lamp", "test", "checkup",
		"ophthalmologist", "optometrist",
	},
	domain.TopicSurgery: {
		"surgery", "operation", "procedure", "phaco", "incision",
		"laser", "anesthesia", "operate",
	},
	domain.TopicLenses: {
		"lens", "iol", "intraocular", "monofocal", "multifocal",
		"toric", "premium",
	},
	domain.TopicRecovery: {
		"recover", "heal", "healing", "rest", "drive", "exercise",
		"how long until", "back to work",
	},
	domain.TopicPostOp: {
		"drops", "post-op", "postop", "after surgery", "after my surgery",
		"follow-up", "follow up", "eye shield", "tonight",
	},
	domain.TopicInsurance: {
		"insurance", "cost", "price", "pay", "coverage", "covered",
		"medicare", "reimburse", "expensive",
	},
	domain.TopicBasics: {
		"what is a cataract", "what are cataracts", "cause", "develop",
		"prevent", "age",
	},
}

var emergencyKeywords = []string{
	"severe pain", "severe eye pain", "sudden vision loss",
	"suddenly lost", "lost vision", "can't see anything",
	"cannot see anything", "flashes", "floaters", "bleeding",
	"curtain over", "chemical", "injury", "hit my eye",
}

var clinicKeywords = []string{
	"clinic", "appointment", "opening hours", "address", "located",
	"where are you", "phone number", "contact", "surgeon", "doctor",
}

var personalKeywords = []string{
	"my ", " me ", " i ", "i have", "i am", "i'm", "should i", "can i",
}

// HeuristicClassify derives a RouterDecision from keyword tables and
// identifier presence alone.
func HeuristicClassify(question, clinicID, patientID string) domain.RouterDecision {
	q := " " + strings.ToLower(strings.TrimSpace(question)) + " "

	var topics []domain.Topic
	var matched []string
	for _, t := range domain.Taxonomy {
		for _, kw := range topicKeywords[t] {
			if strings.Contains(q, kw) {
				topics = append(topics, t)
				matched = append(matched, kw)
				break
			}
		}
	}
	if len(topics) == 0 {
		topics = []domain.Topic{domain.TopicGeneral}
	}

	emergency := false
	for _, kw := range emergencyKeywords {
		if strings.Contains(q, kw) {
			emergency = true
			matched = append(matched, kw)
			break
		}
	}

	needsClinic := clinicID != ""
	if !needsClinic {
		for _, kw := range clinicKeywords {
			if strings.Contains(q, kw) {
				needsClinic = true
				break
			}
		}
	}

	needsPatient := false
	if patientID != "" {
		needsPatient = true
	} else {
		for _, kw := range personalKeywords {
			if strings.Contains(q, kw) {
				needsPatient = true
				break
			}
		}
	}

	rationale := "keyword classification"
	if len(matched) > 0 {
		rationale = "keyword classification: " + strings.Join(matched, ", ")
	}

	return domain.RouterDecision{
		NeedsGeneralKB:   true,
		NeedsClinicKB:    needsClinic,
		NeedsPatientData: needsPatient,
		Topics:           topics,
		IsEmergency:      emergency,
		Rationale:        rationale,
	}
}
