package llm

import "encoding/base64"

// Turn represents an atomic conversation unit that must not be split during
// trimming. The stored turn sequence is replayed to the model verbatim; it is
// treated as opaque context and never validated for user/model alternation.
type Turn struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

// UserTurn builds a user turn from content parts.
func UserTurn(parts ...Part) Turn {
	return Turn{Role: RoleUser, Parts: parts}
}

// ModelTurn builds a model turn holding a single text part.
func ModelTurn(text string) Turn {
	return Turn{Role: RoleModel, Parts: []Part{TextPart(text)}}
}

// Size returns the estimated token count of the turn.
func (t Turn) Size() int {
	return CountTurnTokens(t)
}

// TurnsSize returns the total estimated token count of all turns.
func TurnsSize(turns []Turn) int {
	total := 0
	for _, t := range turns {
		total += CountTurnTokens(t)
	}
	return total
}

// TrimTurns drops the oldest whole turns until the estimated token total of
// the remainder fits maxTokens. Turns are never split and the newest turn is
// always kept, even when it alone exceeds the budget.
func TrimTurns(turns []Turn, maxTokens int) []Turn {
	if len(turns) == 0 || maxTokens <= 0 {
		return turns
	}
	start := 0
	total := TurnsSize(turns)
	for total > maxTokens && start < len(turns)-1 {
		total -= turns[start].Size()
		start++
	}
	return turns[start:]
}

func encodeBase64(data []byte) string {
	return base64.StdEncoding.EncodeToString(data)
}
