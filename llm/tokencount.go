package llm

import (
	"sync"

	"github.com/tiktoken-go/tokenizer"
)

var (
	bpeOnce sync.Once
	bpeEnc  tokenizer.Codec
)

// getEncoder returns a singleton BPE encoder (o200k_base).
// Falls back to cl100k_base if o200k is unavailable. The count is a budget
// heuristic for trimming replayed history, not an exact Gemini token count.
func getEncoder() tokenizer.Codec {
	bpeOnce.Do(func() {
		var err error
		bpeEnc, err = tokenizer.Get(tokenizer.O200kBase)
		if err != nil {
			bpeEnc, err = tokenizer.Get(tokenizer.Cl100kBase)
			if err != nil {
				panic("failed to initialize tiktoken encoder: " + err.Error())
			}
		}
	})
	return bpeEnc
}

// CountTokens returns the number of BPE tokens in the given text.
func CountTokens(text string) int {
	enc := getEncoder()
	ids, _, _ := enc.Encode(text)
	return len(ids)
}

// Inline media is charged a flat per-part cost rather than its base64
// length, which would wildly overstate what the model actually consumes.
const inlineMediaTokenCost = 258

// CountTurnTokens estimates the token count for a single Turn:
// 4 overhead tokens per turn (role, separators) plus the content of each part.
func CountTurnTokens(t Turn) int {
	tokens := 4
	if t.Role != "" {
		tokens += CountTokens(t.Role)
	}
	for _, p := range t.Parts {
		if p.InlineData != nil {
			tokens += inlineMediaTokenCost
			continue
		}
		tokens += CountTokens(p.Text)
	}
	return tokens
}
