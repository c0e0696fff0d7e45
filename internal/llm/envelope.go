package llm

import (
	"encoding/json"
	"strings"
)

// Envelope is the structured reply the coaching prompts ask the model to
// emit. Message may still contain directive blocks; decoding the envelope
// never interprets them.
type Envelope struct {
	Phase           string          `json:"phase"`
	Message         string          `json:"message"`
	ProposedChanges json.RawMessage `json:"proposed_changes,omitempty"`
}

// DecodeReply parses a model reply into an envelope. Markdown code fences
// around the JSON are tolerated. A reply that is not a JSON object at all is
// treated as a bare message with no phase.
func DecodeReply(raw string) Envelope {
	text := stripFences(strings.TrimSpace(raw))

	var env Envelope
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &env); err == nil && env.Message != "" {
			return env
		}
	}

	return Envelope{Message: text}
}

func stripFences(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
