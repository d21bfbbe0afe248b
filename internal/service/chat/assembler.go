package chat

import (
	"fmt"
	"strings"

	"agentx/internal/domain"
	"agentx/internal/domain/models"
)

const documentInstruction = "Answer the user's question based on these documents if relevant."

// BuildContextBlock renders the project's documents as one delimited context
// block. Empty input yields an empty string.
func BuildContextBlock(docs []models.Document) string {
	if len(docs) == 0 {
		return ""
	}

	sections := make([]string, len(docs))
	for i, doc := range docs {
		sections[i] = fmt.Sprintf("--- DOCUMENT: %s ---\n%s\n--- END DOCUMENT ---", doc.Filename, doc.Content)
	}

	var b strings.Builder
	b.WriteString("You have access to the following documents:\n")
	b.WriteString(strings.Join(sections, "\n"))
	b.WriteString("\n\n")
	b.WriteString(documentInstruction)
	b.WriteString("\n")
	return b.String()
}

// Assemble merges the project's documents into the caller's message list and
// returns the list to send upstream.
//
// With no documents the input is returned as-is (as a fresh slice). Otherwise
// the document block is appended to the first system message, or a new system
// message is inserted at the front when none exists. The input slice is never
// mutated; the result owns its backing array.
func Assemble(messages []models.Message, docs []models.Document) ([]models.Message, error) {
	if len(messages) == 0 {
		return nil, &domain.ValidationError{Message: "messages must not be empty"}
	}

	block := BuildContextBlock(docs)
	if block == "" {
		return append([]models.Message(nil), messages...), nil
	}

	for i, msg := range messages {
		if msg.Role == models.RoleSystem {
			merged := append([]models.Message(nil), messages...)
			merged[i].Content = msg.Content + "\n\n" + block
			return merged, nil
		}
	}

	merged := make([]models.Message, 0, len(messages)+1)
	merged = append(merged, models.Message{Role: models.RoleSystem, Content: block})
	merged = append(merged, messages...)
	return merged, nil
}
