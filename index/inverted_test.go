package index

import (
	"reflect"
	"testing"
)

func TestInverted_AddAndPostings(t *testing.T) {
	ix := NewInverted()
	ix.Add("case_02", []string{"pneumothorax", "chest"})
	ix.Add("case_01", []string{"pneumothorax"})

	got := ix.Postings("pneumothorax")
	want := []string{"case_01", "case_02"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Postings() = %v, want sorted %v", got, want)
	}

	if ix.Postings("effusion") != nil {
		t.Errorf("Postings() for unknown term should be nil")
	}
	if !ix.Contains("chest", "case_02") {
		t.Errorf("Contains() = false for indexed pair")
	}
	if ix.Contains("chest", "case_01") {
		t.Errorf("Contains() = true for unindexed pair")
	}
}

func TestInverted_AddIdempotent(t *testing.T) {
	ix := NewInverted()
	ix.Add("case_01", []string{"chest"})
	ix.Add("case_01", []string{"chest"})

	if got := ix.Postings("chest"); len(got) != 1 {
		t.Errorf("Postings() after duplicate Add = %v, want one entry", got)
	}
}

func TestInverted_Remove(t *testing.T) {
	ix := NewInverted()
	ix.Add("case_01", []string{"pneumothorax", "chest"})
	ix.Add("case_02", []string{"pneumothorax"})

	ix.Remove("case_01", []string{"pneumothorax", "chest"})

	if got := ix.Postings("pneumothorax"); !reflect.DeepEqual(got, []string{"case_02"}) {
		t.Errorf("Postings() after Remove = %v, want [case_02]", got)
	}
	// "chest" had only case_01, so the term itself must be gone.
	if ix.Postings("chest") != nil {
		t.Errorf("empty posting set not dropped")
	}
	if ix.Len() != 1 {
		t.Errorf("Len() = %d, want 1", ix.Len())
	}
}

// Re-indexing an updated entry must remove the old version's terms first;
// a term the update dropped must stop matching the entry.
func TestInverted_ReindexDropsStaleTerms(t *testing.T) {
	ix := NewInverted()
	oldTerms := []string{"pneumothorax", "chest"}
	newTerms := []string{"effusion", "chest"}

	ix.Add("case_01", oldTerms)
	ix.Remove("case_01", oldTerms)
	ix.Add("case_01", newTerms)

	if ix.Contains("pneumothorax", "case_01") {
		t.Errorf("stale posting survived re-index")
	}
	if !ix.Contains("effusion", "case_01") || !ix.Contains("chest", "case_01") {
		t.Errorf("new terms missing after re-index")
	}
}

func TestInverted_TermsWithPrefix(t *testing.T) {
	ix := NewInverted()
	ix.Add("a", []string{"pneumothorax", "pneumonia", "chest"})

	got := ix.TermsWithPrefix("pneumo")
	want := []string{"pneumonia", "pneumothorax"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("TermsWithPrefix() = %v, want %v", got, want)
	}

	if got := ix.TermsWithPrefix(""); len(got) != 3 {
		t.Errorf("TermsWithPrefix(\"\") = %v, want all terms", got)
	}
}

func TestInverted_Clear(t *testing.T) {
	ix := NewInverted()
	ix.Add("a", []string{"chest"})
	ix.Clear()

	if ix.Len() != 0 {
		t.Errorf("Len() after Clear = %d, want 0", ix.Len())
	}
	if ix.Postings("chest") != nil {
		t.Errorf("Postings() after Clear should be nil")
	}
}
