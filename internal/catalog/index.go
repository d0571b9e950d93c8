package catalog

import "sort"

type nameEntry struct {
	key     string
	product Product
}

// Index is the read-only lookup structure built from one snapshot of the
// catalog. It is safe for concurrent use once Build has returned.
type Index struct {
	byCode       map[string]Product
	byName       []nameEntry
	byNameList   []Product
	byCodeSorted []Product
}

// Build derives every lookup structure from products. Duplicate codes keep
// the last product seen; both sorted projections are stable, so equal keys
// stay in input order.
func Build(products []Product) *Index {
	idx := &Index{
		byCode:       make(map[string]Product, len(products)),
		byName:       make([]nameEntry, len(products)),
		byNameList:   make([]Product, len(products)),
		byCodeSorted: make([]Product, len(products)),
	}

	for i, p := range products {
		idx.byCode[p.Code] = p
		idx.byName[i] = nameEntry{key: FoldKey(p.Name), product: p}
	}

	sort.SliceStable(idx.byName, func(i, j int) bool {
		return idx.byName[i].key < idx.byName[j].key
	})
	for i, e := range idx.byName {
		idx.byNameList[i] = e.product
	}

	copy(idx.byCodeSorted, products)
	sort.SliceStable(idx.byCodeSorted, func(i, j int) bool {
		return idx.byCodeSorted[i].Code < idx.byCodeSorted[j].Code
	})

	return idx
}

// Len is the number of products the index was built from, duplicates included.
func (idx *Index) Len() int { return len(idx.byName) }

// DistinctCodes is the number of entries in the exact-match index.
func (idx *Index) DistinctCodes() int { return len(idx.byCode) }
