package trailers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		in      string
		opts    *Options
		records []Record
	}{
		{
			name: "plain trailers",
			in:   "Subject\n\nBody\n\nSigned-off-by: A <a@example.com>\nCc: B\n",
			records: []Record{
				{Key: "Signed-off-by", Value: "A <a@example.com>", Raw: "Signed-off-by: A <a@example.com>", IsTrailer: true},
				{Key: "Cc", Value: "B", Raw: "Cc: B", IsTrailer: true},
			},
		},
		{
			name: "continuation lines are folded",
			in:   "Subject\n\nReviewed-by: A\n  because\n  reasons\nCc: B\n",
			records: []Record{
				{Key: "Reviewed-by", Value: "A\nbecause\nreasons", Raw: "Reviewed-by: A\n  because\n  reasons", IsTrailer: true},
				{Key: "Cc", Value: "B", Raw: "Cc: B", IsTrailer: true},
			},
		},
		{
			name: "continuation lines are unfolded",
			in:   "Subject\n\nReviewed-by: A\n  because\n\treasons\n",
			opts: &Options{Unfold: true},
			records: []Record{
				{Key: "Reviewed-by", Value: "A because reasons", Raw: "Reviewed-by: A\n  because\n\treasons", IsTrailer: true},
			},
		},
		{
			name: "unfold keeps whitespace within a line",
			in:   "Subject\n\nReviewed-by: A  B\n  and  C\nCc: x\ty\n",
			opts: &Options{Unfold: true},
			records: []Record{
				{Key: "Reviewed-by", Value: "A  B and  C", Raw: "Reviewed-by: A  B\n  and  C", IsTrailer: true},
				{Key: "Cc", Value: "x\ty", Raw: "Cc: x\ty", IsTrailer: true},
			},
		},
		{
			name: "mixed block keeps other lines",
			in:   "Subject\n\nline one\nline two\nCc: x\n",
			records: []Record{
				{Value: "line one", Raw: "line one"},
				{Value: "line two", Raw: "line two"},
				{Key: "Cc", Value: "x", Raw: "Cc: x", IsTrailer: true},
			},
		},
		{
			name: "indented line after other line stays verbatim",
			in:   "Subject\n\nline one\n  indented\nCc: x\n",
			records: []Record{
				{Value: "line one", Raw: "line one"},
				{Value: "  indented", Raw: "  indented"},
				{Key: "Cc", Value: "x", Raw: "Cc: x", IsTrailer: true},
			},
		},
		{
			name: "comments are kept",
			in:   "Subject\n\nCc: x\n# note\nAcked-by: y\n",
			records: []Record{
				{Key: "Cc", Value: "x", Raw: "Cc: x", IsTrailer: true},
				{Value: "# note", Raw: "# note"},
				{Key: "Acked-by", Value: "y", Raw: "Acked-by: y", IsTrailer: true},
			},
		},
		{
			name: "empty value",
			in:   "Subject\n\nReviewed-by:\n",
			records: []Record{
				{Key: "Reviewed-by", Raw: "Reviewed-by:", IsTrailer: true},
			},
		},
		{
			name: "git generated line without separator",
			in:   "Subject\n\n(cherry picked from commit abc)\nSigned-off-by: A\n",
			records: []Record{
				{Value: "(cherry picked from commit abc)", Raw: "(cherry picked from commit abc)"},
				{Key: "Signed-off-by", Value: "A", Raw: "Signed-off-by: A", IsTrailer: true},
			},
		},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			b := Parse(nil, tc.in, tc.opts)
			require.True(t, b.Found)
			assert.True(t, b.BlankLineBefore)
			assert.Equal(t, tc.records, b.Records)
		})
	}
}

func TestParseNotFound(t *testing.T) {
	t.Parallel()

	in := "Subject\n\nJust a body.\n"
	b := Parse(nil, in, nil)
	assert.False(t, b.Found)
	assert.Empty(t, b.Records)
	assert.Equal(t, len(in), b.Start)
	assert.Equal(t, len(in), b.End)
	assert.False(t, b.BlankLineBefore)
	assert.Empty(t, b.Trailers())

	b = Parse(nil, "", nil)
	assert.False(t, b.Found)
	assert.Equal(t, Bounds{}, b.Bounds())
}

func TestParseAlias(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.Items = []Item{
		{Name: "sign", Key: "Signed-off-by"},
		{Name: "bug", Key: "Bug #"},
	}
	s.Separators = ":#"

	b := Parse(s, "Subject\n\nSIGN: A\nbug: 42\nCc: x\n", nil)
	require.True(t, b.Found)
	require.Len(t, b.Records, 3)
	assert.Equal(t, "Signed-off-by", b.Records[0].Key)
	assert.Equal(t, "Bug #", b.Records[1].Key)
	assert.Equal(t, "42", b.Records[1].Value)
	// raw text is never rewritten
	assert.Equal(t, "bug: 42", b.Records[1].Raw)
	assert.Equal(t, "Cc", b.Records[2].Key)
}

func TestParseCustomSeparators(t *testing.T) {
	t.Parallel()

	s := DefaultSettings()
	s.Separators = ":#"

	b := Parse(s, "Subject\n\nBug #42\nSee: also\n", nil)
	require.True(t, b.Found)
	assert.Equal(t, []Record{
		{Key: "Bug", Value: "42", Raw: "Bug #42", IsTrailer: true},
		{Key: "See", Value: "also", Raw: "See: also", IsTrailer: true},
	}, b.Records)
}

func TestParseBlock(t *testing.T) {
	t.Parallel()

	in := "Reviewed-by: A\n  reason\n"

	// a lone paragraph is the title, so Parse finds nothing
	assert.False(t, Parse(nil, in, nil).Found)

	b := ParseBlock(nil, in, Bounds{Start: 0, End: len(in)}, nil)
	assert.False(t, b.BlankLineBefore)
	assert.Equal(t, []Record{
		{Key: "Reviewed-by", Value: "A\nreason", Raw: "Reviewed-by: A\n  reason", IsTrailer: true},
	}, b.Records)

	t.Run("bounds are clamped", func(t *testing.T) {
		t.Parallel()

		b := ParseBlock(nil, in, Bounds{Start: -4, End: 1000}, nil)
		assert.Equal(t, 0, b.Start)
		assert.Equal(t, len(in), b.End)
		assert.Len(t, b.Records, 1)
	})
}

func TestBlockTrailers(t *testing.T) {
	t.Parallel()

	b := Parse(nil, "Subject\n\nsome text\nCc: x\nAcked-by: y\n", nil)
	require.True(t, b.Found)
	assert.Len(t, b.Records, 3)

	tr := b.Trailers()
	require.Len(t, tr, 2)
	assert.Equal(t, "Cc", tr[0].Key)
	assert.Equal(t, "Acked-by", tr[1].Key)
}

func TestEndsWithBlankLine(t *testing.T) {
	t.Parallel()

	assert.False(t, endsWithBlankLine(""))
	assert.True(t, endsWithBlankLine("\n"))
	assert.True(t, endsWithBlankLine("Subject\n\n"))
	assert.True(t, endsWithBlankLine("Subject\n  \n"))
	assert.False(t, endsWithBlankLine("Subject\n"))
	assert.False(t, endsWithBlankLine("Subject\n\nBody\n"))
}
