package sanitize_test

import (
	"testing"

	"github.com/JaimeStill/lostfound/pkg/sanitize"
)

func TestText(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "Blue backpack", "Blue backpack"},
		{"trimmed", "  wallet \n", "wallet"},
		{"script removed", `<script>alert(1)</script>Keys`, "Keys"},
		{"tags stripped", `<b>Black</b> <a href="x">umbrella</a>`, "Black umbrella"},
		{"entities preserved", "Tom & Jerry's lunchbox", "Tom & Jerry's lunchbox"},
		{"empty", "", ""},
		{"only markup", "<img src=x onerror=alert(1)>", ""},
		{"entity-encoded script", "&lt;script&gt;alert(1)&lt;/script&gt;Keys", "Keys"},
		{"double-encoded tag", "&amp;lt;b&amp;gt;Red&amp;lt;/b&amp;gt; scarf", "Red scarf"},
		{"less-than kept", "size < 10", "size < 10"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := sanitize.Text(tt.input)
			if got != tt.want {
				t.Errorf("Text(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := sanitize.Text(got); again != got {
				t.Errorf("Text not stable: Text(%q) = %q", got, again)
			}
		})
	}
}

func TestOptional(t *testing.T) {
	if sanitize.Optional(nil) != nil {
		t.Error("Optional(nil) should be nil")
	}

	blank := "<br>"
	if got := sanitize.Optional(&blank); got != nil {
		t.Errorf("Optional(markup only) = %q, want nil", *got)
	}

	brand := " <i>Nike</i> "
	got := sanitize.Optional(&brand)
	if got == nil || *got != "Nike" {
		t.Errorf("Optional = %v, want Nike", got)
	}
}
