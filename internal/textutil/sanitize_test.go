package textutil_test

import (
	"testing"

	"mangashelf/internal/textutil"
)

func TestSanitizeFileName(t *testing.T) {
	tests := map[string]string{
		"Re:Zero":       "Re-Zero",
		"  What?  If  ": "What If",
		"AC/DC <Live>":  "AC-DC Live",
		"...":           "",
		"Title [v]":     "Title [v]",
	}
	for in, want := range tests {
		if got := textutil.SanitizeFileName(in); got != want {
			t.Fatalf("SanitizeFileName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestSanitizeToken(t *testing.T) {
	if got := textutil.SanitizeToken("/home/me/Manga Library"); got != "home_me_manga_library" {
		t.Fatalf("SanitizeToken = %q", got)
	}
	if got := textutil.SanitizeToken("  "); got != "unknown" {
		t.Fatalf("SanitizeToken(empty) = %q", got)
	}
}

func TestFoldKeyIgnoresCaseAndSpacing(t *testing.T) {
	if textutil.FoldKey("One  Piece") != textutil.FoldKey(" one piece ") {
		t.Fatal("expected equal keys")
	}
	if textutil.FoldKey("ONE PIECE") != textutil.FoldKey("one piece") {
		t.Fatal("expected case-insensitive keys")
	}
	if textutil.FoldKey("One Piece") == textutil.FoldKey("One Punch") {
		t.Fatal("distinct titles must not collide")
	}
}
