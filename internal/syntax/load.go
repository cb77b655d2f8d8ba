package syntax

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	derrors "github.com/standardbeagle/declgraph/internal/errors"
)

// Load decodes a syntax index document produced by the structural parser.
func Load(r io.Reader) (*Index, error) {
	var index Index
	dec := json.NewDecoder(r)
	if err := dec.Decode(&index); err != nil {
		return nil, derrors.NewIndexError("", err)
	}
	if err := validate(&index); err != nil {
		return nil, derrors.NewIndexError("", err)
	}
	return &index, nil
}

// LoadFile reads and decodes a syntax index file.
func LoadFile(path string) (*Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, derrors.NewFileError("open", path, err)
	}
	defer f.Close()

	index, err := Load(f)
	if err != nil {
		if ie, ok := err.(*derrors.IndexError); ok {
			ie.Path = path
		}
		return nil, err
	}
	return index, nil
}

func validate(index *Index) error {
	var check func(decls []*Declaration) error
	check = func(decls []*Declaration) error {
		for _, d := range decls {
			if d == nil {
				return fmt.Errorf("null declaration record")
			}
			if d.Offset < 0 || d.Length < 0 {
				return fmt.Errorf("declaration %q has negative span %d+%d", d.Kind, d.Offset, d.Length)
			}
			if err := check(d.Substructure); err != nil {
				return err
			}
		}
		return nil
	}
	if err := check(index.Declarations); err != nil {
		return err
	}
	for _, tok := range index.Tokens {
		if tok.Offset < 0 || tok.Length < 0 {
			return fmt.Errorf("token %q has negative span %d+%d", tok.Kind, tok.Offset, tok.Length)
		}
	}
	return nil
}
