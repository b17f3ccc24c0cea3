package services

import (
	"strings"
	"testing"
	"unicode/utf8"
)

func TestMessagePreviewKeepsShortContent(t *testing.T) {
	content := "See you at the dog park"
	if got := messagePreview(content); got != content {
		t.Fatalf("messagePreview = %q, want %q", got, content)
	}
}

func TestMessagePreviewTruncatesToPreviewLength(t *testing.T) {
	content := strings.Repeat("a", messagePreviewLength+50)
	got := messagePreview(content)
	if len(got) != messagePreviewLength {
		t.Fatalf("expected %d characters, got %d", messagePreviewLength, len(got))
	}
	if !strings.HasPrefix(content, got) {
		t.Fatal("preview is not a prefix of the content")
	}
}

func TestMessagePreviewCountsRunesNotBytes(t *testing.T) {
	content := strings.Repeat("é", messagePreviewLength+10)
	got := messagePreview(content)
	if utf8.RuneCountInString(got) != messagePreviewLength {
		t.Fatalf("expected %d runes, got %d", messagePreviewLength, utf8.RuneCountInString(got))
	}
	if !utf8.ValidString(got) {
		t.Fatal("preview split a multibyte rune")
	}
}
