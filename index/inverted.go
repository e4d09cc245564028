// Copyright 2025 ClinRef Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package index implements the inverted index mapping normalized terms to
// posting sets of entry IDs, together with the tokenizer shared by the
// indexer and the query parser.
//
// The Inverted type is not safe for concurrent use on its own. It is owned
// by the kb.Service, which guards it with the service writer lock and never
// hands out references to its internal maps.
package index

import (
	"sort"
	"strings"
)

// Inverted maps term -> set of entry IDs.
type Inverted struct {
	postings map[string]map[string]struct{}
}

// NewInverted creates an empty inverted index.
func NewInverted() *Inverted {
	return &Inverted{
		postings: make(map[string]map[string]struct{}),
	}
}

// Add records id under every term. Terms already present for the id are a
// no-op, so calling Add with a superset is safe.
func (ix *Inverted) Add(id string, terms []string) {
	for _, term := range terms {
		set, ok := ix.postings[term]
		if !ok {
			set = make(map[string]struct{})
			ix.postings[term] = set
		}
		set[id] = struct{}{}
	}
}

// Remove deletes id from the posting set of every term, dropping posting
// sets that become empty. Callers must pass the terms of the version of the
// entry that was indexed; removing with stale terms is the classic
// inverted-index maintenance bug and leaves dangling postings behind.
func (ix *Inverted) Remove(id string, terms []string) {
	for _, term := range terms {
		set, ok := ix.postings[term]
		if !ok {
			continue
		}
		delete(set, id)
		if len(set) == 0 {
			delete(ix.postings, term)
		}
	}
}

// Postings returns a sorted copy of the posting set for term. Returns nil
// when the term is not indexed.
func (ix *Inverted) Postings(term string) []string {
	set, ok := ix.postings[term]
	if !ok {
		return nil
	}
	ids := make([]string, 0, len(set))
	for id := range set {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Contains reports whether term's posting set includes id.
func (ix *Inverted) Contains(term, id string) bool {
	set, ok := ix.postings[term]
	if !ok {
		return false
	}
	_, ok = set[id]
	return ok
}

// TermsWithPrefix returns all indexed terms that start with prefix, sorted.
// An empty prefix returns every term.
func (ix *Inverted) TermsWithPrefix(prefix string) []string {
	var terms []string
	for term := range ix.postings {
		if strings.HasPrefix(term, prefix) {
			terms = append(terms, term)
		}
	}
	sort.Strings(terms)
	return terms
}

// Len returns the number of distinct indexed terms.
func (ix *Inverted) Len() int {
	return len(ix.postings)
}

// Clear drops all postings.
func (ix *Inverted) Clear() {
	ix.postings = make(map[string]map[string]struct{})
}
