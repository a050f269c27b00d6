package domain

// RouterDecision records which knowledge sources a question needs.
// Topics is never empty; GENERAL is the default when classification
// yields nothing usable.
type RouterDecision struct {
	NeedsGeneralKB   bool
	NeedsClinicKB    bool
	NeedsPatientData bool
	Topics           []Topic
	IsEmergency      bool
	Rationale        string
}

// HasTopic reports whether the decision includes the given topic.
func (d RouterDecision) HasTopic(t Topic) bool {
	for _, existing := range d.Topics {
		if existing == t {
			return true
		}
	}
	return false
}
