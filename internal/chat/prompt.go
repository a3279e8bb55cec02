// Package chat implements the conversation core: prompt assembly, the
// topical guardrail, and the per-turn orchestration.
package chat

import (
	"fmt"
	"strings"

	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/domain"
	"github.com/Naveenkumarreddy2003/guardian-ai-poc/internal/llm"
)

const systemPromptTemplate = `You are a Medical Guardian AI. You are reading from the user's secure 2-year medical database.

DATABASE RECORDS FOUND:
%s

INSTRUCTIONS:
1. READ DATABASE: Start by saying something like "I am accessing your encrypted medical records..."
2. ANALYZE INTERACTIONS: If the user mentions alcohol, look at their medication history.
   - If they take a medication that interacts with alcohol, explain that mixing them causes the symptoms they are feeling.
   - Explicitly tell them: "You should NOT take alcohol while on this medication."
3. CHECK DOSAGE: If they mention taking pills, ask: "How much did you take today?" Compare their answer to the prescribed dose in the database.
4. SUGGESTIONS: Provide immediate recovery steps (e.g., recovery position, checking blood sugar).`

const noRecordsNotice = "No medical records on file for this user."

// BuildPrompt assembles the ordered message list for one completion
// call: one system message embedding the medical records, the eligible
// history, and the new input as the trailing user message. Pure string
// templating; all reasoning is the completion API's job.
func BuildPrompt(records []domain.MedicalRecord, history []domain.ChatMessage, userInput string) []llm.Message {
	messages := make([]llm.Message, 0, len(history)+2)
	messages = append(messages, llm.Message{
		Role:    domain.RoleSystem,
		Content: fmt.Sprintf(systemPromptTemplate, renderRecords(records)),
	})

	for _, msg := range history {
		messages = append(messages, llm.Message{Role: msg.Role, Content: msg.Content})
	}

	messages = append(messages, llm.Message{Role: domain.RoleUser, Content: userInput})
	return messages
}

// renderRecords formats the medical history as the plain-text table
// embedded in the system message.
func renderRecords(records []domain.MedicalRecord) string {
	if len(records) == 0 {
		return noRecordsNotice
	}

	var b strings.Builder
	b.WriteString("date | substance | dosage | reaction")
	for _, rec := range records {
		b.WriteString("\n")
		b.WriteString(rec.Date)
		b.WriteString(" | ")
		b.WriteString(rec.Substance)
		b.WriteString(" | ")
		b.WriteString(rec.Dosage)
		b.WriteString(" | ")
		b.WriteString(rec.Reaction)
	}
	return b.String()
}
