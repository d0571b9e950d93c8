// Package repl provides the interactive catalog menu. It is a client of the
// catalog: it validates input, times each call and formats results, but
// never builds or owns an index itself.
package repl

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"MegaStore/internal/catalog"
)

// REPL reads menu choices from in and writes results to out.
type REPL struct {
	client Client
	log    *zap.Logger

	in  *bufio.Scanner
	out io.Writer

	now func() time.Time
}

func New(client Client, in io.Reader, out io.Writer, log *zap.Logger) *REPL {
	if log == nil {
		log = zap.NewNop()
	}
	return &REPL{
		client: client,
		log:    log,
		in:     bufio.NewScanner(in),
		out:    out,
		now:    time.Now,
	}
}

// Run shows the menu until the user exits, input ends or ctx is cancelled.
func (r *REPL) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		r.menu(ctx)
		choice, ok := r.readLine()
		if !ok {
			return r.in.Err()
		}

		if exit := r.execute(ctx, choice); exit {
			return nil
		}
	}
}

func (r *REPL) menu(ctx context.Context) {
	n, err := r.client.Count(ctx)
	if err != nil {
		r.log.Warn("count products failed", zap.Error(err))
		r.printf("\n=== MegaStore menu ===\n")
	} else {
		r.printf("\n=== MegaStore menu (%d products) ===\n", n)
	}
	r.printf("1. Search products by name (prefix)\n")
	r.printf("2. Find product by code\n")
	r.printf("3. List products alphabetically\n")
	r.printf("4. List products by initial letter\n")
	r.printf("5. List products by code\n")
	r.printf("6. Exit\n")
	r.printf("Choice: ")
}

// execute runs one menu choice. Returns true if the REPL should exit.
func (r *REPL) execute(ctx context.Context, choice string) bool {
	switch choice {
	case "1":
		r.cmdSearch(ctx)
	case "2":
		r.cmdLookup(ctx)
	case "3":
		r.cmdList(ctx, "alphabetical", r.client.ListByName)
	case "4":
		r.cmdInitial(ctx)
	case "5":
		r.cmdList(ctx, "code", r.client.ListByCode)
	case "6", "exit", "quit":
		r.printf("Bye.\n")
		return true
	default:
		r.printf("Invalid option %q. Choose 1 to 6.\n", choice)
	}
	return false
}

func (r *REPL) cmdSearch(ctx context.Context) {
	r.printf("Name prefix: ")
	line, ok := r.readLine()
	if !ok {
		return
	}
	term := strings.ToLower(line)
	if term == "" {
		r.printf("No search term given.\n")
		return
	}

	start := r.now()
	products, err := r.client.SearchByPrefix(ctx, term)
	elapsed := r.now().Sub(start)
	if r.reportErr(err) {
		return
	}

	if len(products) == 0 {
		r.printf("No products found with prefix '%s'.\n", term)
	} else {
		r.printf("Products with prefix '%s':\n", term)
		for _, p := range products {
			r.printf("[%s] %s\n", p.Code, p.Name)
		}
	}
	r.done(elapsed, len(products))
}

func (r *REPL) cmdLookup(ctx context.Context) {
	r.printf("Product code (e.g. 0472): ")
	code, ok := r.readLine()
	if !ok {
		return
	}

	start := r.now()
	p, found, err := r.client.LookupByCode(ctx, code)
	elapsed := r.now().Sub(start)
	if r.reportErr(err) {
		return
	}

	n := 0
	if found {
		n = 1
		r.printf("Found: [%s] %s\n", p.Code, p.Name)
	} else {
		r.printf("No product found with this code.\n")
	}
	r.done(elapsed, n)
}

func (r *REPL) cmdList(ctx context.Context, mode string, list func(context.Context) ([]catalog.Product, error)) {
	start := r.now()
	products, err := list(ctx)
	elapsed := r.now().Sub(start)
	if r.reportErr(err) {
		return
	}

	r.printf("Products in %s order:\n", mode)
	r.numbered(products)
	r.done(elapsed, len(products))
}

func (r *REPL) cmdInitial(ctx context.Context) {
	r.printf("Initial letter: ")
	line, ok := r.readLine()
	if !ok {
		return
	}
	letter := strings.ToLower(line)
	if utf8.RuneCountInString(letter) != 1 {
		r.printf("Enter exactly one letter.\n")
		return
	}

	start := r.now()
	products, err := r.client.FilterByInitial(ctx, letter)
	elapsed := r.now().Sub(start)
	if r.reportErr(err) {
		return
	}

	if len(products) == 0 {
		r.printf("No products found starting with '%s'.\n", letter)
	} else {
		r.printf("Products starting with '%s':\n", letter)
		r.numbered(products)
	}
	r.done(elapsed, len(products))
}

func (r *REPL) numbered(products []catalog.Product) {
	for i, p := range products {
		r.printf("%d. [%s] %s\n", i+1, p.Code, p.Name)
	}
}

func (r *REPL) done(elapsed time.Duration, n int) {
	r.printf("%d items. Done in %.6f seconds.\n", n, elapsed.Seconds())
}

// reportErr prints err if set and reports whether it did.
func (r *REPL) reportErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, catalog.ErrValidation) {
		r.printf("Invalid input: %v\n", err)
		return true
	}
	r.log.Error("catalog query failed", zap.Error(err))
	r.printf("Error: %v\n", err)
	return true
}

func (r *REPL) readLine() (string, bool) {
	if !r.in.Scan() {
		return "", false
	}
	return strings.TrimSpace(r.in.Text()), true
}

func (r *REPL) printf(format string, args ...any) {
	fmt.Fprintf(r.out, format, args...)
}
