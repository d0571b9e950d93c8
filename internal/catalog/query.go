package catalog

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"unicode/utf8"
)

// ErrValidation marks caller input that is rejected before any lookup runs.
var ErrValidation = errors.New("invalid query")

var (
	errEmptyTerm = fmt.Errorf("%w: search term is empty", ErrValidation)
	errBadLetter = fmt.Errorf("%w: letter must be exactly one character", ErrValidation)
)

// prefixSentinel sorts after every byte of a valid UTF-8 string. Keys
// beginning with term are exactly those in [term, term+prefixSentinel).
const prefixSentinel = "\xff"

// LookupByCode returns the product stored under code. The code is matched
// as-is, without trimming or case folding.
func (idx *Index) LookupByCode(code string) (Product, bool) {
	p, ok := idx.byCode[code]
	return p, ok
}

// SearchByPrefix returns products whose folded name starts with the folded
// term, in name order.
func (idx *Index) SearchByPrefix(term string) ([]Product, error) {
	if term == "" {
		return nil, errEmptyTerm
	}
	return idx.prefixRange(FoldKey(term)), nil
}

// FilterByInitial returns products whose folded name starts with letter.
// A single letter is a one-character prefix, so this shares the range
// search with SearchByPrefix.
func (idx *Index) FilterByInitial(letter string) ([]Product, error) {
	if utf8.RuneCountInString(letter) != 1 {
		return nil, errBadLetter
	}
	return idx.prefixRange(FoldKey(letter)), nil
}

func (idx *Index) ListByName() []Product {
	return slices.Clone(idx.byNameList)
}

func (idx *Index) ListByCode() []Product {
	return slices.Clone(idx.byCodeSorted)
}

func (idx *Index) prefixRange(key string) []Product {
	lo := idx.lowerBound(key)
	hi := idx.lowerBound(key + prefixSentinel)
	if lo >= hi {
		return []Product{}
	}
	return slices.Clone(idx.byNameList[lo:hi])
}

// lowerBound is the first position whose key is not less than target.
func (idx *Index) lowerBound(target string) int {
	return sort.Search(len(idx.byName), func(i int) bool {
		return idx.byName[i].key >= target
	})
}
