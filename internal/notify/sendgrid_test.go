package notify

import (
	"strings"
	"testing"
)

func TestPlainText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			"strips tags",
			`<div><h2>Listing Approved</h2><p>Hi Ana,</p></div>`,
			"Listing Approved Hi Ana,",
		},
		{
			"unescapes entities",
			`<p>Toys &amp; Games</p>`,
			"Toys & Games",
		},
		{
			"collapses whitespace",
			"<p>one</p>\n\t\t<p>two</p>",
			"one two",
		},
		{
			"plain input unchanged",
			"no markup here",
			"no markup here",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := plainText(tt.in); got != tt.want {
				t.Errorf("plainText(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPlainTextOnEmailBody(t *testing.T) {
	body := layout("Request Rejected", `<p>Hi Ana,</p><p>Your request has been rejected.</p>`)
	got := plainText(body)

	for _, fragment := range []string{"Request Rejected", "Hi Ana,", "CareNShare - Share, Care, Repair"} {
		if !strings.Contains(got, fragment) {
			t.Errorf("expected plain text to contain %q, got %q", fragment, got)
		}
	}
	if strings.Contains(got, "<") || strings.Contains(got, "style=") {
		t.Errorf("expected no markup in plain text, got %q", got)
	}
}
