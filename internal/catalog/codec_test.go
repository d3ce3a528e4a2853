package catalog

import (
	"errors"
	"slices"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_ParseLine(t *testing.T) {
	t.Parallel()

	for _, tc := range []struct {
		name    string
		line    string
		delim   rune
		want    *Book
		wantErr bool
	}{
		{name: "plain", line: "1,Dune,Frank Herbert", delim: ',', want: &Book{1, "Dune", "Frank Herbert"}},
		{name: "author keeps later delimiters", line: "7,Title,Smith, John", delim: ',', want: &Book{7, "Title", "Smith, John"}},
		{name: "empty fields", line: "3,,", delim: ',', want: &Book{3, "", ""}},
		{name: "negative id", line: "-2,T,A", delim: ',', want: &Book{-2, "T", "A"}},
		{name: "padded id", line: " 42 ,T,A", delim: ',', want: &Book{42, "T", "A"}},
		{name: "custom delimiter", line: "5|A, B|C", delim: '|', want: &Book{5, "A, B", "C"}},
		{name: "multibyte delimiter", line: "5§A§C", delim: '§', want: &Book{5, "A", "C"}},
		{name: "no delimiter", line: "12", delim: ',', wantErr: true},
		{name: "missing author", line: "12,Title", delim: ',', wantErr: true},
		{name: "non integer id", line: "x1,Title,Author", delim: ',', wantErr: true},
		{name: "trailing garbage in id", line: "12abc,Title,Author", delim: ',', wantErr: true},
		{name: "id overflow", line: "99999999999999999999999,T,A", delim: ',', wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := parseLine(tc.line, tc.delim)
			if tc.wantErr {
				require.ErrorIs(t, err, ErrParse)

				return
			}

			require.NoError(t, err)

			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("parseLine(%q) mismatch (-want +got):\n%s", tc.line, diff)
			}
		})
	}
}

func Test_Encode_Then_Decode_Preserves_Order(t *testing.T) {
	t.Parallel()

	books := []*Book{
		{ID: 3, Title: "Zed", Author: "Z"},
		{ID: 1, Title: "Alpha", Author: "A"},
		{ID: 2, Title: "Mid", Author: ""},
	}

	data := encode(slices.Values(books), ',')
	assert.Equal(t, "3,Zed,Z\n1,Alpha,A\n2,Mid,\n", string(data))

	lines, issues := decode(data, ',')
	require.Empty(t, issues)
	require.Len(t, lines, 3)

	for i, line := range lines {
		assert.Equal(t, i+1, line.num)

		if diff := cmp.Diff(books[i], line.book); diff != "" {
			t.Errorf("line %d mismatch (-want +got):\n%s", i+1, diff)
		}
	}
}

func Test_Decode_Skips_Blank_Lines_And_Reports_Malformed_Ones(t *testing.T) {
	t.Parallel()

	data := "1,Dune,Herbert\r\n\n   \nbroken\n2,1984,Orwell\nnope,T,A"

	lines, issues := decode([]byte(data), ',')

	require.Len(t, lines, 2)
	assert.Equal(t, "Herbert", lines[0].book.Author, "CR must be stripped")
	assert.Equal(t, 5, lines[1].num)

	require.Len(t, issues, 2)
	assert.Equal(t, 4, issues[0].Line)
	assert.Equal(t, "broken", issues[0].Text)
	assert.Equal(t, 6, issues[1].Line)

	for _, issue := range issues {
		var pe *ParseError
		require.True(t, errors.As(error(issue), &pe))
		require.ErrorIs(t, issue, ErrParse)
	}
}
