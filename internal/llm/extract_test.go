package llm

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSONArray(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{
			name: "bare array",
			raw:  `[{"metric": "Accuracy"}]`,
			want: `[{"metric": "Accuracy"}]`,
		},
		{
			name: "bare array with whitespace",
			raw:  "\n  [1, 2, 3]  \n",
			want: "[1, 2, 3]",
		},
		{
			name: "json fence",
			raw:  "Here is the output:\n```json\n[{\"metric\": \"Clarity\"}]\n```\nDone.",
			want: `[{"metric": "Clarity"}]`,
		},
		{
			name: "plain fence",
			raw:  "```\n[1, 2]\n```",
			want: "[1, 2]",
		},
		{
			name: "prose wrapped array",
			raw:  `Sure! The metrics are: [{"metric": "Safety"}] — let me know if you need more.`,
			want: `[{"metric": "Safety"}]`,
		},
		{
			name: "brackets inside string values",
			raw:  `prefix [{"metric": "Clarity", "description": "uses [brackets] and \"quotes\""}] suffix`,
			want: `[{"metric": "Clarity", "description": "uses [brackets] and \"quotes\""}]`,
		},
		{
			name: "nested arrays",
			raw:  `result: [[1, 2], [3, 4]] trailing`,
			want: `[[1, 2], [3, 4]]`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSONArray(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.True(t, json.Valid([]byte(got)), "extracted text must be valid JSON")
		})
	}
}

func TestExtractJSONArray_NoArray(t *testing.T) {
	for _, raw := range []string{
		"",
		"no array here",
		`{"metric": "Accuracy"}`,
		"[unclosed",
	} {
		_, err := ExtractJSONArray(raw)
		assert.ErrorIs(t, err, ErrNoJSONArray, "input: %q", raw)
	}
}
