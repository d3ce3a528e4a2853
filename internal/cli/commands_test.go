package cli_test

import (
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/calvinalkan/booklib/internal/catalog"
	"github.com/calvinalkan/booklib/internal/cli"
)

func seed(c *cli.CLI) {
	c.MustRun("add", "3", "Moby Dick", "Herman Melville")
	c.MustRun("add", "1", "Dune", "Frank Herbert")
	c.MustRun("add", "2", "Emma", "Jane Austen")
}

func Test_Add_Persists_In_Add_Order(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	if got, want := c.MustRun("add", "3", "Moby Dick", "Herman Melville"), "added 3"; got != want {
		t.Errorf("stdout=%q, want=%q", got, want)
	}

	c.MustRun("add", "1", "Dune", "Frank Herbert")

	want := "3,Moby Dick,Herman Melville\n1,Dune,Frank Herbert\n"
	if diff := cmp.Diff(want, c.ReadData()); diff != "" {
		t.Fatalf("data file mismatch (-want +got):\n%s", diff)
	}
}

func TestAddCommandErrors(t *testing.T) {
	t.Parallel()

	for _, tt := range []struct {
		name       string
		args       []string
		wantStderr string
	}{
		{name: "missing id", args: []string{"add"}, wantStderr: "book id is required"},
		{name: "missing author", args: []string{"add", "1", "Dune"}, wantStderr: "wrong number of arguments"},
		{name: "non-numeric id", args: []string{"add", "x1", "Dune", "Herbert"}, wantStderr: "book id must be an integer"},
		{name: "duplicate id", args: []string{"add", "1", "Other", "Someone"}, wantStderr: "book id already exists"},
		{name: "delimiter in title", args: []string{"add", "9", "Dune, Messiah", "Herbert"}, wantStderr: "invalid field"},
	} {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := cli.NewCLI(t)
			c.MustRun("add", "1", "Dune", "Frank Herbert")

			stderr := c.MustFail(tt.args...)
			cli.AssertContains(t, stderr, tt.wantStderr)

			if got, want := c.ReadData(), "1,Dune,Frank Herbert\n"; got != want {
				t.Errorf("data file changed on error: %q", got)
			}
		})
	}
}

func Test_Remove_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seed(c)

	assert.Equal(t, "removed 1", c.MustRun("rm", "1"))
	assert.Equal(t, "3,Moby Dick,Herman Melville\n2,Emma,Jane Austen\n", c.ReadData())

	stderr := c.MustFail("rm", "1")
	cli.AssertContains(t, stderr, "book not found: id 1")

	stderr = c.MustFail("rm")
	cli.AssertContains(t, stderr, "book id is required")
}

func Test_Search_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seed(c)

	assert.Equal(t, "Book ID: 2, Title: Emma, Author: Jane Austen", c.MustRun("search", "Emma"))

	stderr := c.MustFail("search", "emma")
	cli.AssertContains(t, stderr, `book not found: title "emma"`)

	stderr = c.MustFail("search")
	cli.AssertContains(t, stderr, "title is required")
}

func Test_Search_All_Lists_Colliding_Titles(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.MustRun("add", "1", "Dune", "Frank Herbert")
	c.MustRun("add", "2", "Dune", "Someone Else")

	out := c.MustRun("search", "--all", "--json", "Dune")

	var books []catalog.Book
	require.NoError(t, json.Unmarshal([]byte(out), &books))

	want := []catalog.Book{
		{ID: 1, Title: "Dune", Author: "Frank Herbert"},
		{ID: 2, Title: "Dune", Author: "Someone Else"},
	}
	if diff := cmp.Diff(want, books); diff != "" {
		t.Fatalf("search --all mismatch (-want +got):\n%s", diff)
	}
}

func Test_Show_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	seed(c)

	assert.Equal(t, "Book ID: 3, Title: Moby Dick, Author: Herman Melville", c.MustRun("show", " 3 "))

	var b catalog.Book
	require.NoError(t, json.Unmarshal([]byte(c.MustRun("show", "--json", "2")), &b))
	assert.Equal(t, catalog.Book{ID: 2, Title: "Emma", Author: "Jane Austen"}, b)

	cli.AssertContains(t, c.MustFail("show", "42"), "book not found: id 42")
}

func Test_Ls_Command(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	assert.Empty(t, c.MustRun("ls"))
	assert.Equal(t, "[]", c.MustRun("ls", "--json"))

	seed(c)

	byTitle := strings.Split(c.MustRun("ls"), "\n")
	assert.Equal(t, []string{
		"Book ID: 1, Title: Dune, Author: Frank Herbert",
		"Book ID: 2, Title: Emma, Author: Jane Austen",
		"Book ID: 3, Title: Moby Dick, Author: Herman Melville",
	}, byTitle)

	var added []catalog.Book
	require.NoError(t, json.Unmarshal([]byte(c.MustRun("ls", "--by-added", "--json")), &added))
	require.Len(t, added, 3)
	assert.Equal(t, []int{3, 1, 2}, []int{added[0].ID, added[1].ID, added[2].ID})
}

func Test_Malformed_Lines_Warn_And_Exit_Nonzero(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteData("1,Dune,Frank Herbert\ngarbage\n\n2,Emma,Jane Austen\n1,Dune Again,Someone\n")

	stdout, stderr, exitCode := c.Run("ls")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "Title: Dune,")
	cli.AssertContains(t, stdout, "Title: Emma,")
	cli.AssertNotContains(t, stdout, "Dune Again")

	cli.AssertContains(t, stderr, "warning:")
	cli.AssertContains(t, stderr, "line 2: malformed data line")
	cli.AssertContains(t, stderr, "line 5: book id already exists")
	cli.AssertContains(t, stderr, "booklib repair")
}

func Test_Abort_Policy_Refuses_Malformed_File(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".booklib.json", `{"on_parse_error": "abort"}`)
	c.WriteData("1,Dune,Frank Herbert\ngarbage\n")

	stderr := c.MustFail("ls")
	cli.AssertContains(t, stderr, "line 2: malformed data line")
}

func Test_Check_And_Repair(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteData("1,Dune,Frank Herbert\nnot a book\n2,Emma,Jane Austen\n")

	stdout, stderr, exitCode := c.Run("check")

	if got, want := exitCode, 1; got != want {
		t.Errorf("exitCode=%d, want=%d", got, want)
	}

	cli.AssertContains(t, stdout, "books=2")
	cli.AssertContains(t, stdout, "skipped=1")
	cli.AssertContains(t, stdout, "skipped: line 2")
	cli.AssertContains(t, stderr, "data file does not match the catalog")
	cli.AssertNotContains(t, stderr, "warning:")

	out := c.MustRun("repair")
	cli.AssertContains(t, out, "wrote 2 books")
	cli.AssertContains(t, out, "dropped 1 lines")

	assert.Equal(t, "1,Dune,Frank Herbert\n2,Emma,Jane Austen\n", c.ReadData())

	out = c.MustRun("check")
	cli.AssertContains(t, out, "skipped=0")
	cli.AssertContains(t, out, "exists=true")
}

func Test_Check_On_Missing_File_Is_In_Sync(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	out := c.MustRun("check")
	cli.AssertContains(t, out, "exists=false")
	cli.AssertContains(t, out, "books=0")
}

func Test_Custom_Delimiter_Allows_Commas(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile(".booklib.json", `{"delimiter": "|"}`)

	c.MustRun("add", "1", "Dune, Messiah", "Herbert, Frank")
	assert.Equal(t, "1|Dune, Messiah|Herbert, Frank\n", c.ReadData())
	assert.Equal(t, "Book ID: 1, Title: Dune, Messiah, Author: Herbert, Frank", c.MustRun("search", "Dune, Messiah"))

	cli.AssertContains(t, c.MustFail("add", "2", "a|b", "c"), "invalid field")
}

func Test_Negative_IDs_Are_Arguments_Not_Flags(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	assert.Equal(t, "added -5", c.MustRun("add", "-5", "Dune", "Frank Herbert"))
	assert.Equal(t, "-5,Dune,Frank Herbert\n", c.ReadData())

	var b catalog.Book
	require.NoError(t, json.Unmarshal([]byte(c.MustRun("show", "-5", "--json")), &b))
	assert.Equal(t, -5, b.ID)

	assert.Equal(t, "removed -5", c.MustRun("rm", "-5"))
	assert.Empty(t, c.ReadData())

	cli.AssertContains(t, c.MustFail("show", "-x"), "unknown shorthand flag")
}
