package Telegram_test

import (
	"strings"
	"testing"

	"github.com/kiru56776/AI-math/Telegram"
)

func TestEscapeMarkdownV2_EveryReservedCharEscapedOnce(t *testing.T) {
	reserved := "_*[]()~`>#+-=|{}.!"
	for _, r := range reserved {
		in := "a" + string(r) + "b"
		got := Telegram.EscapeMarkdownV2(in)
		want := "a\\" + string(r) + "b"
		if got != want {
			t.Fatalf("escape %q: got %q want %q", string(r), got, want)
		}
	}
}

func TestEscapeMarkdownV2_PlainTextUntouched(t *testing.T) {
	in := "4 😎 hello world"
	if got := Telegram.EscapeMarkdownV2(in); got != in {
		t.Fatalf("plain text must pass through: got %q", got)
	}
}

func TestEscapeMarkdownV2_DoubleApplicationIsADefect(t *testing.T) {
	// The sanitizer escapes its own escape marker, so running it twice over
	// text with a reserved character never matches a single application.
	// This pins down that it must be applied exactly once per message.
	in := "price: 2+2=4."
	once := Telegram.EscapeMarkdownV2(in)
	twice := Telegram.EscapeMarkdownV2(once)
	if once == twice {
		t.Fatal("double application must be observable, got identical output")
	}
	if !strings.Contains(twice, "\\\\") {
		t.Fatalf("second pass must escape the markers of the first: %q", twice)
	}
}

func TestEscapeMarkdownV2_Sentence(t *testing.T) {
	in := "Hi! How are you (today)?"
	want := "Hi\\! How are you \\(today\\)?"
	if got := Telegram.EscapeMarkdownV2(in); got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
