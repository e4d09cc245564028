package search

import (
	"sort"
	"strings"

	"github.com/clinref/medkb/kb"
)

// maxSuggestions caps the alternate terms returned with a result.
const maxSuggestions = 5

// clinicalTerms is the curated vocabulary consulted for suggestions beyond
// what the index happens to contain. Substring matches against the query
// catch misspelled or partial input that prefix matching on indexed terms
// would miss.
var clinicalTerms = []string{
	"pneumothorax",
	"pneumonia",
	"pulmonary embolism",
	"pleural effusion",
	"glioblastoma",
	"meningioma",
	"multiple sclerosis",
	"tuberculosis",
	"osteosarcoma",
	"osteomyelitis",
	"appendicitis",
	"cholecystitis",
	"pancreatitis",
	"diverticulitis",
	"aortic dissection",
	"aortic aneurysm",
	"subdural hematoma",
	"epidural hematoma",
	"subarachnoid hemorrhage",
	"ischemic stroke",
	"hydronephrosis",
	"nephrolithiasis",
	"hepatocellular carcinoma",
	"intussusception",
	"scaphoid fracture",
}

// suggest collects up to five alternate terms: indexed terms with the
// query as a prefix (excluding the query itself) plus curated clinical
// terms containing the query as a substring. De-duplicated and sorted so
// repeated calls return identical output.
func (s *Searcher) suggest(v kb.View, query string) []string {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}

	seen := make(map[string]struct{})
	var out []string
	add := func(term string) {
		if term == q {
			return
		}
		if _, ok := seen[term]; ok {
			return
		}
		seen[term] = struct{}{}
		out = append(out, term)
	}

	for _, term := range v.TermsWithPrefix(q) {
		add(term)
	}
	for _, term := range s.curated {
		if strings.Contains(strings.ToLower(term), q) {
			add(strings.ToLower(term))
		}
	}

	sort.Strings(out)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}
