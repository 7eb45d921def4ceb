package catalog

import (
	"regexp"
	"strings"

	"materials-quote-service/internal/domain"
	"materials-quote-service/internal/extract"
)

const minTokenLen = 2

var tokenSplit = regexp.MustCompile(`[^A-Z0-9.]+`)

// Tokenize normalizes text into distinct upper-case tokens of letters,
// digits and dots, in first-seen order.
func Tokenize(text string) []string {
	parts := tokenSplit.Split(extract.Normalize(text), -1)
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.Trim(p, ".")
		if len(p) < minTokenLen {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}

// Index is an inverted token index over an immutable catalog snapshot. It is
// never modified after BuildIndex and is safe for concurrent readers.
type Index struct {
	records  []domain.CatalogRecord
	tokens   []map[string]struct{}
	postings map[string][]int
	byID     map[string]int
}

// BuildIndex indexes records by the tokens of their names. Positions follow
// input order, which is the tie-break order for equal scores.
func BuildIndex(records []domain.CatalogRecord) *Index {
	idx := &Index{
		records:  make([]domain.CatalogRecord, len(records)),
		tokens:   make([]map[string]struct{}, len(records)),
		postings: make(map[string][]int),
		byID:     make(map[string]int, len(records)),
	}
	copy(idx.records, records)
	for pos, rec := range idx.records {
		toks := Tokenize(rec.Name)
		set := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			set[tok] = struct{}{}
			idx.postings[tok] = append(idx.postings[tok], pos)
		}
		idx.tokens[pos] = set
		if _, dup := idx.byID[rec.ID]; !dup {
			idx.byID[rec.ID] = pos
		}
	}
	return idx
}

// Len is the number of indexed records.
func (idx *Index) Len() int {
	return len(idx.records)
}

// Record returns the record at a position. Callers must not modify it.
func (idx *Index) Record(pos int) *domain.CatalogRecord {
	return &idx.records[pos]
}

// ByID looks a record up by its id.
func (idx *Index) ByID(id string) (*domain.CatalogRecord, bool) {
	pos, ok := idx.byID[id]
	if !ok {
		return nil, false
	}
	return &idx.records[pos], true
}

// score counts how many of tokens the record at pos contains.
func (idx *Index) score(pos int, tokens []string) int {
	n := 0
	for _, tok := range tokens {
		if _, ok := idx.tokens[pos][tok]; ok {
			n++
		}
	}
	return n
}

// intersect returns the ascending positions of records containing every
// token. A token missing from the index yields no candidates.
func (idx *Index) intersect(tokens []string) []int {
	if len(tokens) == 0 {
		return nil
	}
	lists := make([][]int, 0, len(tokens))
	for _, tok := range tokens {
		list, ok := idx.postings[tok]
		if !ok {
			return nil
		}
		lists = append(lists, list)
	}
	shortest := 0
	for i, l := range lists {
		if len(l) < len(lists[shortest]) {
			shortest = i
		}
	}
	out := make([]int, 0, len(lists[shortest]))
	for _, pos := range lists[shortest] {
		keep := true
		for _, tok := range tokens {
			if _, ok := idx.tokens[pos][tok]; !ok {
				keep = false
				break
			}
		}
		if keep {
			out = append(out, pos)
		}
	}
	return out
}
