package Telegram

import "strings"

// markdownV2Reserved is the fixed set of characters Telegram's MarkdownV2
// dialect reserves, plus the backslash escape marker itself.
const markdownV2Reserved = "\\_*[]()~`>#+-=|{}.!"

// EscapeMarkdownV2 prefixes every reserved character with a single backslash.
// It runs exactly once per outbound message, at the transport boundary in
// bot.go — nothing else may call it on already-escaped text, since a second
// application escapes the markers it inserted and the markup renders broken.
func EscapeMarkdownV2(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 128 && strings.ContainsRune(markdownV2Reserved, r) {
			b.WriteByte('\\')
		}
		b.WriteRune(r)
	}
	return b.String()
}
