package cli

import (
	json "github.com/goccy/go-json"

	"github.com/calvinalkan/booklib/internal/catalog"
)

// printJSON writes v as indented JSON followed by a newline.
func printJSON(io *IO, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	io.Printf("%s\n", data)

	return nil
}

// printBooks writes books one per line, or as a JSON array. An empty list is
// written as [] in JSON mode.
func printBooks(io *IO, books []*catalog.Book, asJSON bool) error {
	if asJSON {
		if books == nil {
			books = []*catalog.Book{}
		}

		return printJSON(io, books)
	}

	for _, b := range books {
		io.Println(b.String())
	}

	return nil
}
