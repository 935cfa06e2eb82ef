package sanitize_test

import (
	"strings"
	"testing"

	"github.com/edgard/construfacil/internal/sanitize"
)

func TestRenderer_HTML(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		in      string
		want    []string
		notWant []string
	}{
		{
			name: "emphasis and lists",
			in:   "**Traço 1:2:3**\n\n- cimento\n- areia",
			want: []string{"<strong>Traço 1:2:3</strong>", "<li>cimento</li>", "<li>areia</li>"},
		},
		{
			name: "table",
			in:   "| fck | uso |\n|---|---|\n| 25 | laje |",
			want: []string{"<table>", "<td>25</td>"},
		},
		{
			name:    "script stripped",
			in:      "oi <script>alert(1)</script>",
			notWant: []string{"<script"},
		},
		{
			name:    "event handler stripped",
			in:      `<a href="https://example.com" onclick="steal()">link</a>`,
			notWant: []string{"onclick"},
		},
	}

	r := sanitize.NewRenderer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.HTML(tt.in)
			for _, w := range tt.want {
				if !strings.Contains(got, w) {
					t.Errorf("HTML(%q) = %q, want it to contain %q", tt.in, got, w)
				}
			}
			for _, nw := range tt.notWant {
				if strings.Contains(got, nw) {
					t.Errorf("HTML(%q) = %q, must not contain %q", tt.in, got, nw)
				}
			}
		})
	}
}

func TestRenderer_Blank(t *testing.T) {
	t.Parallel()

	if got := sanitize.NewRenderer().HTML("  \n"); got != "" {
		t.Errorf("HTML(blank) = %q, want empty", got)
	}
}
