package pipeline

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
		ok   bool
	}{
		{"bare object", `{"a":1}`, `{"a":1}`, true},
		{"markdown fence", "```json\n{\"a\":1}\n```", `{"a":1}`, true},
		{"prose around", `Sure! Here is the JSON: {"a":1} hope that helps`, `{"a":1}`, true},
		{"nested braces", `before {"a":{"b":2}} after`, `{"a":{"b":2}}`, true},
		{"no braces", "no json here", "", false},
		{"reversed braces", "} nope {", "", false},
		{"empty", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ExtractJSON(tc.in)
			if !tc.ok {
				var pe *ParseError
				require.Error(t, err)
				assert.True(t, errors.As(err, &pe))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(got))
		})
	}
}

func TestParseSummaryResult(t *testing.T) {
	valid := `{"summary":"a day","bullets":["b1","b2"],"mood":"calm","tags":["t1"],"sentiment":"positive","intent":"reflection"}`

	t.Run("valid", func(t *testing.T) {
		out, err := ParseSummaryResult(valid)
		require.NoError(t, err)
		assert.Equal(t, "a day", out.Summary)
		assert.Len(t, out.Bullets, 2)
		assert.Equal(t, "calm", out.Mood)
	})

	t.Run("valid inside prose", func(t *testing.T) {
		out, err := ParseSummaryResult("Here you go:\n" + valid + "\nDone.")
		require.NoError(t, err)
		assert.Equal(t, "a day", out.Summary)
	})

	schemaCases := []struct {
		name string
		in   string
	}{
		{"missing summary", `{"bullets":["b"],"mood":"m","tags":["t"],"sentiment":"s","intent":"i"}`},
		{"zero bullets", `{"summary":"s","bullets":[],"mood":"m","tags":["t"],"sentiment":"s","intent":"i"}`},
		{"eleven bullets", `{"summary":"s","bullets":["1","2","3","4","5","6","7","8","9","10","11"],"mood":"m","tags":["t"],"sentiment":"s","intent":"i"}`},
		{"missing mood", `{"summary":"s","bullets":["b"],"tags":["t"],"sentiment":"s","intent":"i"}`},
		{"zero tags", `{"summary":"s","bullets":["b"],"mood":"m","tags":[],"sentiment":"s","intent":"i"}`},
		{"nine tags", `{"summary":"s","bullets":["b"],"mood":"m","tags":["1","2","3","4","5","6","7","8","9"],"sentiment":"s","intent":"i"}`},
		{"missing sentiment", `{"summary":"s","bullets":["b"],"mood":"m","tags":["t"],"intent":"i"}`},
		{"missing intent", `{"summary":"s","bullets":["b"],"mood":"m","tags":["t"],"sentiment":"s"}`},
	}
	for _, tc := range schemaCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ParseSummaryResult(tc.in)
			var se *SchemaError
			require.Error(t, err)
			assert.True(t, errors.As(err, &se), "want SchemaError, got %T: %v", err, err)
		})
	}

	t.Run("malformed json is ParseError", func(t *testing.T) {
		_, err := ParseSummaryResult(`{"summary": not json}`)
		var pe *ParseError
		require.Error(t, err)
		assert.True(t, errors.As(err, &pe))
	})
}

func TestParseChatImportance(t *testing.T) {
	t.Run("important", func(t *testing.T) {
		out, err := ParseChatImportance(`{"isImportant":true,"reason":"life event"}`)
		require.NoError(t, err)
		assert.True(t, out.IsImportant)
		assert.Equal(t, "life event", out.Reason)
	})

	t.Run("explicit false is valid", func(t *testing.T) {
		out, err := ParseChatImportance(`{"isImportant":false,"reason":"small talk"}`)
		require.NoError(t, err)
		assert.False(t, out.IsImportant)
	})

	t.Run("missing isImportant key", func(t *testing.T) {
		_, err := ParseChatImportance(`{"reason":"r"}`)
		var se *SchemaError
		require.Error(t, err)
		assert.True(t, errors.As(err, &se))
	})
}

func TestParseChatBullets(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		out, err := ParseChatBullets(`{"bullets":["a","b","c"]}`)
		require.NoError(t, err)
		assert.Len(t, out.Bullets, 3)
	})

	t.Run("empty", func(t *testing.T) {
		_, err := ParseChatBullets(`{"bullets":[]}`)
		var se *SchemaError
		require.Error(t, err)
		assert.True(t, errors.As(err, &se))
	})

	t.Run("six bullets", func(t *testing.T) {
		_, err := ParseChatBullets(`{"bullets":["1","2","3","4","5","6"]}`)
		var se *SchemaError
		require.Error(t, err)
		assert.True(t, errors.As(err, &se))
	})
}
