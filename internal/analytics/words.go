package analytics

import (
	"sort"
	"strings"
	"unicode"

	"cabral/scraper/internal/domain"
)

// WordCount is one entry of the title word-cloud data.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

var stopwords = map[string]bool{
	"the": true, "and": true, "for": true, "with": true, "from": true,
	"this": true, "that": true, "are": true, "your": true, "all": true,
	"set": true, "pcs": true, "pack": true,
}

// WordFrequencies tokenizes product titles and counts word occurrences,
// most frequent first; ties order alphabetically. Words shorter than three
// characters and common filler words are dropped.
func WordFrequencies(rows []domain.FlatRow, n int) []WordCount {
	counts := make(map[string]int)
	for _, row := range rows {
		words := strings.FieldsFunc(strings.ToLower(row.Title), func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		for _, word := range words {
			if len(word) < 3 || stopwords[word] {
				continue
			}
			counts[word]++
		}
	}

	out := make([]WordCount, 0, len(counts))
	for word, count := range counts {
		out = append(out, WordCount{Word: word, Count: count})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})

	if n > 0 && n < len(out) {
		out = out[:n]
	}
	return out
}
