package imagery

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywords(t *testing.T) {
	tests := []struct {
		name  string
		title string
		tools []string
		want  []string
	}{
		{
			name:  "title words then tools",
			title: "Patch + clamp",
			tools: []string{"Epoxy putty", "Clamp", "Backing plate"},
			want:  []string{"patch", "clamp", "epoxy putty", "repair"},
		},
		{
			name:  "short words and punctuation dropped",
			title: "Document the damage",
			tools: []string{"Camera", "Painter's tape"},
			want:  []string{"document", "damage", "camera", "painters tape"},
		},
		{
			name:  "only stop words falls back to context",
			title: "Step with this",
			want:  []string{"repair", "tool", "fix", "hardware"},
		},
		{
			name:  "third tool ignored",
			title: "Rebuild",
			tools: []string{"Primer", "Paint", "Sandpaper"},
			want:  []string{"rebuild", "primer", "paint", "repair"},
		},
		{
			name:  "empty",
			title: "",
			want:  []string{"repair", "tool", "fix", "hardware"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractKeywords(tt.title, tt.tools))
		})
	}
}
