package trailers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name         string
		line         string
		separators   string
		afterTrailer bool
		kind         Kind
		key          string
		value        string
	}{
		{
			name:  "simple trailer",
			line:  "Signed-off-by: A U Thor <author@example.com>",
			kind:  KindTrailer,
			key:   "Signed-off-by",
			value: "A U Thor <author@example.com>",
		},
		{
			name:  "whitespace around separator",
			line:  "Acked-by :  Jane",
			kind:  KindTrailer,
			key:   "Acked-by",
			value: "Jane",
		},
		{
			name:  "first separator wins",
			line:  "Link: https://example.com/a:b",
			kind:  KindTrailer,
			key:   "Link",
			value: "https://example.com/a:b",
		},
		{
			name:  "empty value",
			line:  "Reviewed-by:",
			kind:  KindTrailer,
			key:   "Reviewed-by",
			value: "",
		},
		{
			name:       "custom separator",
			line:       "Bug #42",
			separators: ":#",
			kind:       KindTrailer,
			key:        "Bug",
			value:      "42",
		},
		{
			name:       "multi-byte separator",
			line:       "Key：value",
			separators: ":：",
			kind:       KindTrailer,
			key:        "Key",
			value:      "value",
		},
		{
			name: "prose with colon",
			line: "This fixes the thing: really",
			kind: KindOther,
		},
		{
			name: "leading separator",
			line: ": value",
			kind: KindOther,
		},
		{
			name: "no separator",
			line: "Just a line",
			kind: KindOther,
		},
		{
			name: "blank",
			line: " \t ",
			kind: KindBlank,
		},
		{
			name: "empty",
			line: "",
			kind: KindBlank,
		},
		{
			name:         "continuation after trailer",
			line:         "  more text",
			afterTrailer: true,
			kind:         KindContinuation,
		},
		{
			name: "indented line without trailer",
			line: "\tmore text",
			kind: KindOther,
		},
		{
			name:         "indented trailer is a continuation",
			line:         "  Key: value",
			afterTrailer: true,
			kind:         KindContinuation,
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			l := Classify(tc.line, tc.separators, tc.afterTrailer)
			assert.Equal(t, tc.kind, l.Kind, tc.line)
			assert.Equal(t, tc.key, l.Key)
			assert.Equal(t, tc.value, l.Value)
		})
	}
}

func TestSameKey(t *testing.T) {
	t.Parallel()

	assert.True(t, sameKey("Signed-off-by", "signed-OFF-by", ":"))
	assert.True(t, sameKey("Bug #", "bug", ":#"))
	assert.True(t, sameKey(" Cc ", "cc", ":"))
	assert.False(t, sameKey("Cc", "Ccc", ":"))
}

func TestKindString(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "trailer", KindTrailer.String())
	assert.Equal(t, "continuation", KindContinuation.String())
	assert.Equal(t, "blank", KindBlank.String())
	assert.Equal(t, "other", KindOther.String())
}
