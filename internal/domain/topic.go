package domain

import "strings"

// Topic tags both knowledge-base chunks and router decisions.
type Topic string

const (
	TopicBasics       Topic = "BASICS"
	TopicSymptoms     Topic = "SYMPTOMS"
	TopicDiagnosis    Topic = "DIAGNOSIS"
	TopicSurgery      Topic = "SURGERY"
	TopicLenses       Topic = "LENSES"
	TopicRecovery     Topic = "RECOVERY"
	TopicPostOp       Topic = "POST_OP"
	TopicInsurance    Topic = "INSURANCE"
	TopicGeneral      Topic = "GENERAL"
	TopicSurgeryCosts Topic = "SURGERY_COSTS"
)

// Taxonomy lists the topics the router may emit. SURGERY_COSTS is a
// knowledge-base tag only, reachable through expansion.
var Taxonomy = []Topic{
	TopicBasics,
	TopicSymptoms,
	TopicDiagnosis,
	TopicSurgery,
	TopicLenses,
	TopicRecovery,
	TopicPostOp,
	TopicInsurance,
	TopicGeneral,
}

var taxonomySet = func() map[Topic]struct{} {
	m := make(map[Topic]struct{}, len(Taxonomy))
	for _, t := range Taxonomy {
		m[t] = struct{}{}
	}
	return m
}()

// ParseTopic normalizes a raw tag to a taxonomy topic.
// Unknown tags return false.
func ParseTopic(raw string) (Topic, bool) {
	t := Topic(strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), "-", "_")))
	if _, ok := taxonomySet[t]; ok {
		return t, true
	}
	return "", false
}

// ValidTopic reports whether t belongs to the router taxonomy.
func ValidTopic(t Topic) bool {
	_, ok := taxonomySet[t]
	return ok
}
