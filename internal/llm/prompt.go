package llm

import "strings"

// SystemPrompt constrains answers to the supplied document context.
const SystemPrompt = `You are a document-based assistant.
Rules:
- Answer ONLY using the information provided in the document context.
- If the answer is not in the context, explicitly state that the information was not found.
- Do NOT use external knowledge or make assumptions.
- Be concise and objective.
- Always answer in the same language as the user.`

// UserPrompt frames the question with its context block.
func UserPrompt(context, question string) string {
	return "Context:\n" + context + "\n\nQuestion: " + strings.TrimSpace(question)
}

// Messages flattens a request into system, history and user turns.
// History entries with roles other than user or assistant are dropped.
func Messages(req Request) []Message {
	out := make([]Message, 0, len(req.History)+2)
	if strings.TrimSpace(req.System) != "" {
		out = append(out, Message{Role: RoleSystem, Content: req.System})
	}
	for _, m := range req.History {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			continue
		}
		out = append(out, m)
	}
	return append(out, Message{Role: RoleUser, Content: req.User})
}
