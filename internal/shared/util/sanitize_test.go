package util

import (
	"strings"
	"testing"
)

func TestSanitizeFileName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "plain", in: "invoice.pdf", want: "invoice.pdf"},
		{name: "separators", in: "a/b\\c.png", want: "a_b_c.png"},
		{name: "control chars", in: "scan\n\t01.pdf", want: "scan01.pdf"},
		{name: "traversal", in: "../etc/passwd", wantErr: true},
		{name: "blank", in: "   ", wantErr: true},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, err := SanitizeFileName(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error for %q", tt.in)
				}
				return
			}
			if err != nil || got != tt.want {
				t.Fatalf("SanitizeFileName(%q) = %q, %v, want %q", tt.in, got, err, tt.want)
			}
		})
	}
}

func TestSanitizeFileNameKeepsExtensionWhenCapped(t *testing.T) {
	got, err := SanitizeFileName(strings.Repeat("x", 200) + ".pdf")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len([]rune(got)) != maxFileNameRunes || !strings.HasSuffix(got, ".pdf") {
		t.Fatalf("unexpected capped name %q", got)
	}
}
