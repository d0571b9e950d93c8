package catalog

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseResult holds the products read from a code;name stream, in order.
type ParseResult struct {
	Products []Product
	Skipped  int
}

// Parse reads "code;name" lines of any length. Blank lines and lines
// starting with '#' are ignored; lines without a ';' are counted in Skipped.
func Parse(r io.Reader) (ParseResult, error) {
	br := bufio.NewReader(r)

	res := ParseResult{Products: make([]Product, 0, 64)}
	for {
		raw, err := br.ReadString('\n')
		if raw != "" {
			res.add(raw)
		}
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return ParseResult{}, fmt.Errorf("scan products: %w", err)
		}
	}
}

func (res *ParseResult) add(raw string) {
	line := strings.TrimSpace(raw)
	if line == "" || strings.HasPrefix(line, "#") {
		return
	}

	code, name, ok := strings.Cut(line, ";")
	if !ok {
		res.Skipped++
		return
	}
	res.Products = append(res.Products, Product{
		Code: strings.TrimSpace(code),
		Name: strings.TrimSpace(name),
	})
}

func LoadFile(path string) (ParseResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return ParseResult{}, fmt.Errorf("open products %q: %w", path, err)
	}
	defer f.Close()

	res, err := Parse(f)
	if err != nil {
		return ParseResult{}, fmt.Errorf("read products %q: %w", path, err)
	}
	return res, nil
}
