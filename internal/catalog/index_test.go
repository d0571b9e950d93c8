package catalog

import (
	"errors"
	"math/rand"
	"reflect"
	"slices"
	"sort"
	"strings"
	"sync"
	"testing"
)

func parseRecords(t *testing.T, lines ...string) []Product {
	t.Helper()

	res, err := Parse(strings.NewReader(strings.Join(lines, "\n")))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return res.Products
}

// linearPrefix is the naive full scan the index replaces.
func linearPrefix(products []Product, term string) []Product {
	key := FoldKey(term)
	out := []Product{}
	for _, p := range products {
		if strings.HasPrefix(FoldKey(p.Name), key) {
			out = append(out, p)
		}
	}
	return out
}

func TestSearchByPrefix_Scenario(t *testing.T) {
	idx := Build(parseRecords(t, "001;Apple", "002;apricot", "003;Banana"))

	got, err := idx.SearchByPrefix("ap")
	if err != nil {
		t.Fatalf("SearchByPrefix: %v", err)
	}
	want := []Product{{Code: "001", Name: "Apple"}, {Code: "002", Name: "apricot"}}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestListings_Scenario(t *testing.T) {
	idx := Build(parseRecords(t, "010;Zed", "005;Ann"))
	want := []Product{{Code: "005", Name: "Ann"}, {Code: "010", Name: "Zed"}}

	if got := idx.ListByCode(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListByCode = %v, want %v", got, want)
	}
	if got := idx.ListByName(); !reflect.DeepEqual(got, want) {
		t.Fatalf("ListByName = %v, want %v", got, want)
	}

	got, err := idx.FilterByInitial("z")
	if err != nil {
		t.Fatalf("FilterByInitial: %v", err)
	}
	if !reflect.DeepEqual(got, []Product{{Code: "010", Name: "Zed"}}) {
		t.Fatalf("FilterByInitial(z) = %v", got)
	}
}

func TestEmptyIndex(t *testing.T) {
	idx := Build(nil)

	if _, ok := idx.LookupByCode("001"); ok {
		t.Fatalf("lookup on empty index found something")
	}
	if got := idx.ListByName(); got == nil || len(got) != 0 {
		t.Fatalf("ListByName = %#v, want empty non-nil", got)
	}
	if got := idx.ListByCode(); got == nil || len(got) != 0 {
		t.Fatalf("ListByCode = %#v, want empty non-nil", got)
	}

	got, err := idx.SearchByPrefix("a")
	if err != nil || len(got) != 0 {
		t.Fatalf("SearchByPrefix = %v, %v", got, err)
	}
	got, err = idx.FilterByInitial("a")
	if err != nil || len(got) != 0 {
		t.Fatalf("FilterByInitial = %v, %v", got, err)
	}
}

func TestLookupByCode_LastWriteWins(t *testing.T) {
	idx := Build(parseRecords(t, "001;Milk", "001;Milk 2%"))

	p, ok := idx.LookupByCode("001")
	if !ok {
		t.Fatalf("001 not found")
	}
	if p.Name != "Milk 2%" {
		t.Fatalf("got %q, want %q", p.Name, "Milk 2%")
	}
	if idx.Len() != 2 || idx.DistinctCodes() != 1 {
		t.Fatalf("Len=%d DistinctCodes=%d", idx.Len(), idx.DistinctCodes())
	}
	if got := idx.ListByCode(); len(got) != 2 || got[0].Name != "Milk" || got[1].Name != "Milk 2%" {
		t.Fatalf("ListByCode lost input order for equal codes: %v", got)
	}
}

func TestLookupByCode_NoNormalization(t *testing.T) {
	idx := Build([]Product{{Code: "AB1", Name: "Widget"}})

	for _, code := range []string{"ab1", " AB1", "AB1 ", ""} {
		if _, ok := idx.LookupByCode(code); ok {
			t.Errorf("LookupByCode(%q) matched", code)
		}
	}
	if _, ok := idx.LookupByCode("AB1"); !ok {
		t.Fatalf("exact code not found")
	}
}

func TestValidation(t *testing.T) {
	idx := Build([]Product{{Code: "1", Name: "Apple"}})

	if _, err := idx.SearchByPrefix(""); !errors.Is(err, ErrValidation) {
		t.Fatalf("SearchByPrefix(\"\") err = %v, want ErrValidation", err)
	}

	for _, letter := range []string{"", "ab", "zz"} {
		if _, err := idx.FilterByInitial(letter); !errors.Is(err, ErrValidation) {
			t.Errorf("FilterByInitial(%q) err = %v, want ErrValidation", letter, err)
		}
	}

	if _, err := idx.FilterByInitial("é"); err != nil {
		t.Fatalf("single multibyte letter rejected: %v", err)
	}
}

func TestSearchByPrefix_CaseFoldedAndStable(t *testing.T) {
	idx := Build([]Product{
		{Code: "1", Name: "beta"},
		{Code: "2", Name: "BETA"},
		{Code: "3", Name: "Beta"},
		{Code: "4", Name: "alpha"},
	})

	got, err := idx.SearchByPrefix("BE")
	if err != nil {
		t.Fatalf("SearchByPrefix: %v", err)
	}
	codes := make([]string, len(got))
	for i, p := range got {
		codes[i] = p.Code
	}
	if !reflect.DeepEqual(codes, []string{"1", "2", "3"}) {
		t.Fatalf("codes = %v, want input order for equal keys", codes)
	}
}

func TestSearchByPrefix_Bounds(t *testing.T) {
	idx := Build([]Product{
		{Code: "1", Name: "car"},
		{Code: "2", Name: "card"},
		{Code: "3", Name: "care"},
		{Code: "4", Name: "cart"},
		{Code: "5", Name: "cas"},
		{Code: "6", Name: "cb"},
	})

	tests := []struct {
		term string
		want int
	}{
		{"car", 4},
		{"card", 1},
		{"ca", 5},
		{"c", 6},
		{"cars", 0},
		{"b", 0},
		{"zzz", 0},
		{"cb", 1},
	}
	for _, tc := range tests {
		got, err := idx.SearchByPrefix(tc.term)
		if err != nil {
			t.Fatalf("%q: %v", tc.term, err)
		}
		if len(got) != tc.want {
			t.Errorf("SearchByPrefix(%q) = %d results, want %d", tc.term, len(got), tc.want)
		}
	}
}

func TestSearchByPrefix_Unicode(t *testing.T) {
	idx := Build([]Product{
		{Code: "1", Name: "Éclair"},
		{Code: "2", Name: "eclair"},
		{Code: "3", Name: "égua"},
		{Code: "4", Name: "ap\U0010FFFF"},
		{Code: "5", Name: "apple"},
	})

	got, _ := idx.SearchByPrefix("É")
	if len(got) != 2 || got[0].Code != "1" || got[1].Code != "3" {
		t.Fatalf("SearchByPrefix(É) = %v", got)
	}

	got, _ = idx.SearchByPrefix("e")
	if len(got) != 1 || got[0].Code != "2" {
		t.Fatalf("SearchByPrefix(e) = %v", got)
	}

	// The highest code point still sorts below the sentinel.
	got, _ = idx.SearchByPrefix("ap")
	if len(got) != 2 {
		t.Fatalf("SearchByPrefix(ap) = %v, want both ap* products", got)
	}
}

func TestSearchByPrefix_InvalidUTF8Name(t *testing.T) {
	idx := Build([]Product{{Code: "1", Name: "ab\xffc"}, {Code: "2", Name: "abd"}})

	got, err := idx.SearchByPrefix("ab")
	if err != nil {
		t.Fatalf("SearchByPrefix: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want both products", got)
	}
}

func TestResultsDoNotAliasIndex(t *testing.T) {
	idx := Build([]Product{{Code: "1", Name: "a"}, {Code: "2", Name: "b"}})

	idx.ListByName()[0].Name = "mutated"
	idx.ListByCode()[0].Name = "mutated"
	res, _ := idx.SearchByPrefix("a")
	res[0].Name = "mutated"

	if got := idx.ListByName()[0].Name; got != "a" {
		t.Fatalf("index mutated through a result slice: %q", got)
	}
}

func randomProducts(r *rand.Rand, n int) []Product {
	alphabet := []rune("aAbBcé ")
	out := make([]Product, n)
	for i := range out {
		name := make([]rune, 1+r.Intn(5))
		for j := range name {
			name[j] = alphabet[r.Intn(len(alphabet))]
		}
		out[i] = Product{
			Code: string(rune('a'+r.Intn(6))) + string(rune('0'+r.Intn(10))),
			Name: string(name),
		}
	}
	return out
}

func multiset(ps []Product) map[Product]int {
	m := make(map[Product]int, len(ps))
	for _, p := range ps {
		m[p]++
	}
	return m
}

func TestProperties(t *testing.T) {
	r := rand.New(rand.NewSource(42))

	for round := 0; round < 50; round++ {
		input := randomProducts(r, r.Intn(40))
		idx := Build(input)

		byName, byCode := idx.ListByName(), idx.ListByCode()
		if !reflect.DeepEqual(multiset(byName), multiset(input)) || !reflect.DeepEqual(multiset(byCode), multiset(input)) {
			t.Fatalf("round %d: listings are not a permutation of the input", round)
		}

		// Stability: the same order a stable sort of the input produces.
		wantName := slices.Clone(input)
		sort.SliceStable(wantName, func(i, j int) bool { return FoldKey(wantName[i].Name) < FoldKey(wantName[j].Name) })
		if !reflect.DeepEqual(byName, wantName) {
			t.Fatalf("round %d: ListByName = %v, want %v", round, byName, wantName)
		}
		wantCode := slices.Clone(input)
		sort.SliceStable(wantCode, func(i, j int) bool { return wantCode[i].Code < wantCode[j].Code })
		if !reflect.DeepEqual(byCode, wantCode) {
			t.Fatalf("round %d: ListByCode = %v, want %v", round, byCode, wantCode)
		}

		last := map[string]Product{}
		for _, p := range input {
			last[p.Code] = p
		}
		for code, want := range last {
			got, ok := idx.LookupByCode(code)
			if !ok || got != want {
				t.Fatalf("round %d: LookupByCode(%q) = %v, %v; want %v", round, code, got, ok, want)
			}
		}
		if _, ok := idx.LookupByCode("missing"); ok {
			t.Fatalf("round %d: found absent code", round)
		}

		for _, p := range input {
			key := []rune(FoldKey(p.Name))
			for n := 1; n <= len(key); n++ {
				term := string(key[:n])
				got, err := idx.SearchByPrefix(term)
				if err != nil {
					t.Fatalf("SearchByPrefix(%q): %v", term, err)
				}
				if want := linearPrefix(byName, term); !reflect.DeepEqual(got, want) {
					t.Fatalf("round %d: SearchByPrefix(%q) = %v, want %v", round, term, got, want)
				}
			}
		}

		for _, letter := range []string{"a", "B", "é", "c", "z", " "} {
			got, err := idx.FilterByInitial(letter)
			if err != nil {
				t.Fatalf("FilterByInitial(%q): %v", letter, err)
			}
			if want := linearPrefix(byName, letter); !reflect.DeepEqual(got, want) {
				t.Fatalf("round %d: FilterByInitial(%q) = %v, want %v", round, letter, got, want)
			}
		}
	}
}

func TestConcurrentReaders(t *testing.T) {
	idx := Build(randomProducts(rand.New(rand.NewSource(7)), 500))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				_, _ = idx.SearchByPrefix("a")
				_, _ = idx.FilterByInitial("b")
				_, _ = idx.LookupByCode("a1")
				_ = idx.ListByName()
				_ = idx.ListByCode()
			}
		}()
	}
	wg.Wait()
}

func BenchmarkSearchByPrefix(b *testing.B) {
	idx := Build(randomProducts(rand.New(rand.NewSource(1)), 100_000))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = idx.SearchByPrefix("abc")
	}
}

func BenchmarkLinearPrefix(b *testing.B) {
	products := Build(randomProducts(rand.New(rand.NewSource(1)), 100_000)).ListByName()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = linearPrefix(products, "abc")
	}
}
