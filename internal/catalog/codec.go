package catalog

import (
	"fmt"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"
)

// The data file holds one book per line:
//
//	<id><d><title><d><author>\n
//
// where <d> is the configured delimiter. Fields are written verbatim; there
// is no quoting or escaping, which is why Add refuses titles and authors
// containing the delimiter or a line break.

// appendLine appends the encoded line for b to dst.
func appendLine(dst []byte, b *Book, delim rune) []byte {
	dst = strconv.AppendInt(dst, int64(b.ID), 10)
	dst = utf8.AppendRune(dst, delim)
	dst = append(dst, b.Title...)
	dst = utf8.AppendRune(dst, delim)
	dst = append(dst, b.Author...)

	return append(dst, '\n')
}

// encode returns the full data file content for books.
func encode(books iter.Seq[*Book], delim rune) []byte {
	var buf []byte
	for b := range books {
		buf = appendLine(buf, b, delim)
	}

	return buf
}

// parseLine splits line on the first two delimiters into id, title and
// author. Anything after the second delimiter belongs to the author.
func parseLine(line string, delim rune) (*Book, error) {
	sep := string(delim)

	idText, rest, ok := strings.Cut(line, sep)
	if !ok {
		return nil, fmt.Errorf("%w: missing title field", ErrParse)
	}

	title, author, ok := strings.Cut(rest, sep)
	if !ok {
		return nil, fmt.Errorf("%w: missing author field", ErrParse)
	}

	id, err := strconv.Atoi(strings.TrimSpace(idText))
	if err != nil {
		return nil, fmt.Errorf("%w: id %q is not an integer", ErrParse, idText)
	}

	return &Book{ID: id, Title: title, Author: author}, nil
}

// decodedLine is one successfully parsed data file line.
type decodedLine struct {
	num  int
	text string
	book *Book
}

// decode parses a whole data file. Blank lines are ignored; lines that fail
// to parse are returned as issues and do not stop decoding.
func decode(data []byte, delim rune) ([]decodedLine, []*ParseError) {
	var (
		lines  []decodedLine
		issues []*ParseError
		num    int
	)

	for raw := range strings.Lines(string(data)) {
		num++

		text := strings.TrimSuffix(strings.TrimSuffix(raw, "\n"), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}

		b, err := parseLine(text, delim)
		if err != nil {
			issues = append(issues, &ParseError{Line: num, Text: text, Err: err})

			continue
		}

		lines = append(lines, decodedLine{num: num, text: text, book: b})
	}

	return lines, issues
}
