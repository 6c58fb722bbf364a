package prompt

import (
	"strings"

	"edugenie/internal/domain"
)

const tutorInstruction = "You are a helpful tutor. Answer the question based ONLY on the provided context:"

// Chat returns the prompt for one document question. Context passages are
// given in order of relevance; history is the earlier conversation, oldest first.
func Chat(passages []string, history []domain.ChatTurn, question string) string {
	var b strings.Builder
	b.WriteString(tutorInstruction)
	b.WriteString("\n\n")
	for i, p := range passages {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(strings.TrimSpace(p))
	}

	if len(history) > 0 {
		b.WriteString("\n\nConversation so far:")
		for _, turn := range history {
			b.WriteString("\n")
			b.WriteString(speaker(turn.Role))
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(turn.Content))
		}
	}

	b.WriteString("\n\nStudent: ")
	b.WriteString(strings.TrimSpace(question))
	b.WriteString("\nTutor:")
	return b.String()
}

func speaker(role domain.ChatRole) string {
	if role == domain.ChatRoleAI {
		return "Tutor"
	}
	return "Student"
}
