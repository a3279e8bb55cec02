package store

import (
	"strings"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
)

// demoRecords returns the fixed medical history seeded at registration.
// The two demo identities each get a medication-vs-alcohol interaction
// scenario; everyone else gets a single baseline row. Matching is
// case-insensitive, a deterministic lookup rather than any policy.
func demoRecords(username string) []domain.MedicalRecord {
	switch strings.ToLower(username) {
	case "user1":
		// Scenario: interaction between Xanax and alcohol.
		return []domain.MedicalRecord{
			{Date: "2023-10-12", Substance: "Xanax (Alprazolam)", Dosage: "0.5mg (Prescribed Daily)", Reaction: "Anxiety management"},
			{Date: "2024-05-20", Substance: "Alcohol + Xanax", Dosage: "3 beers", Reaction: "Severe panic attack, heart racing"},
		}
	case "user2":
		// Scenario: interaction between Metformin and alcohol.
		return []domain.MedicalRecord{
			{Date: "2023-08-15", Substance: "Metformin", Dosage: "500mg (Prescribed Daily)", Reaction: "Diabetes management"},
			{Date: "2024-11-02", Substance: "Alcohol + Metformin", Dosage: "2 glasses wine", Reaction: "Panic, extreme nausea, cold sweats"},
		}
	default:
		return []domain.MedicalRecord{
			{Date: "2025-01-01", Substance: "General", Dosage: "N/A", Reaction: "Initial baseline"},
		}
	}
}
