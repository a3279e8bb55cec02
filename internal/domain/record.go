package domain

// MedicalRecord is one row of a user's medical history. All fields are
// free text; the set is seeded once at registration and never mutated.
type MedicalRecord struct {
	Username  string `json:"username"`
	Date      string `json:"date"`
	Substance string `json:"substance"`
	Dosage    string `json:"dosage"`
	Reaction  string `json:"reaction"`
}
