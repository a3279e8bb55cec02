package chat

import "strings"

// RefusalMessage is the fixed reply for input the guardrail blocks.
const RefusalMessage = "I can only help with questions about your medications, " +
	"symptoms, and medical history. Please ask me something health-related."

// medicalKeywords is the allow-list the guardrail matches against.
// Input containing none of these never reaches the completion API.
var medicalKeywords = []string{
	"medic", "medicine", "drug", "pill", "dose", "dosage", "prescri",
	"alcohol", "drink", "drank", "drunk", "beer", "wine",
	"xanax", "alprazolam", "metformin",
	"symptom", "sick", "pain", "ache", "nausea", "dizzy", "dizziness",
	"panic", "anxiety", "anxious", "heart", "breath", "sweat",
	"doctor", "hospital", "emergency", "health", "allerg", "react",
	"blood", "sugar", "diabet", "overdose", "took", "take", "taking",
	"feel", "feeling",
}

// Guardrail is a case-insensitive substring allow-list over user input.
type Guardrail struct {
	enabled  bool
	keywords []string
}

// NewGuardrail creates the medical-topic guardrail.
func NewGuardrail(enabled bool) *Guardrail {
	return &Guardrail{enabled: enabled, keywords: medicalKeywords}
}

// Permits reports whether the input may be sent to the completion API.
// A disabled guardrail permits everything.
func (g *Guardrail) Permits(input string) bool {
	if !g.enabled {
		return true
	}
	lowered := strings.ToLower(input)
	for _, kw := range g.keywords {
		if strings.Contains(lowered, kw) {
			return true
		}
	}
	return false
}

// Enabled reports whether the guardrail is active.
func (g *Guardrail) Enabled() bool {
	return g.enabled
}
