package index

import (
	"strings"
	"unicode/utf8"

	"github.com/clinref/medkb/core"
)

// minTokenLength is the shortest token that gets indexed. Anything shorter
// is treated as noise (articles, prepositions). This also drops very short
// clinical abbreviations such as "MS" or "TB"; those remain reachable
// through the pathology and system filters.
const minTokenLength = 3

// Tokenize splits text into lowercased terms, trimming surrounding
// punctuation and discarding tokens shorter than three runes. The same
// function is used for indexing and for query parsing so the two sides
// always agree.
func Tokenize(text string) []string {
	words := strings.Fields(text)
	tokens := make([]string, 0, len(words))

	for _, word := range words {
		cleaned := strings.ToLower(strings.Trim(word, ".,!?;:'\"-()[]{}"))
		if utf8.RuneCountInString(cleaned) < minTokenLength {
			continue
		}
		tokens = append(tokens, cleaned)
	}

	return tokens
}

// EntryTerms extracts the set of index terms for an entry. Indexable text
// is the concatenation of title, content, tags, pathology, system and body
// part. The returned slice is de-duplicated but unordered.
func EntryTerms(entry *core.KnowledgeBaseEntry) []string {
	if entry == nil {
		return nil
	}

	parts := []string{entry.Title, entry.Content}
	parts = append(parts, entry.Metadata.Tags...)
	parts = append(parts, entry.Metadata.Pathology...)
	parts = append(parts, entry.Metadata.System, entry.Metadata.BodyPart)

	seen := make(map[string]struct{})
	var terms []string
	for _, token := range Tokenize(strings.Join(parts, " ")) {
		if _, ok := seen[token]; ok {
			continue
		}
		seen[token] = struct{}{}
		terms = append(terms, token)
	}
	return terms
}
