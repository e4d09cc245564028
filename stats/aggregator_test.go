package stats

import (
	"testing"

	"github.com/clinref/medkb/core"
)

func sampleEntry(id string, entryType core.EntryType) *core.KnowledgeBaseEntry {
	return &core.KnowledgeBaseEntry{
		ID:    id,
		Type:  entryType,
		Title: "entry " + id,
		Metadata: core.Metadata{
			System:    "respiratory",
			Modality:  []string{"x-ray", "ct"},
			Pathology: []string{"pneumothorax"},
		},
	}
}

func TestAggregator_Add(t *testing.T) {
	a := NewAggregator()
	a.Add(sampleEntry("a1", core.EntryTypeArticle))
	a.Add(sampleEntry("c1", core.EntryTypeCase))

	s := a.Snapshot()
	if s.TotalEntries != 2 || s.TotalArticles != 1 || s.TotalCases != 1 || s.TotalImages != 0 {
		t.Errorf("Snapshot() totals = %+v", s)
	}
	if s.BySystem["respiratory"] != 2 {
		t.Errorf("BySystem = %v, want respiratory: 2", s.BySystem)
	}
	if s.ByModality["x-ray"] != 2 || s.ByModality["ct"] != 2 {
		t.Errorf("ByModality = %v", s.ByModality)
	}
	if s.ByPathology["pneumothorax"] != 2 {
		t.Errorf("ByPathology = %v", s.ByPathology)
	}
	if s.LastUpdated.IsZero() {
		t.Errorf("LastUpdated not set by Add")
	}
}

// Paired Add/Remove must return the aggregator to its empty state, with
// zeroed keys deleted rather than left at zero.
func TestAggregator_AddRemovePairing(t *testing.T) {
	a := NewAggregator()
	entry := sampleEntry("c1", core.EntryTypeCase)

	a.Add(entry)
	a.Remove(entry)

	s := a.Snapshot()
	if s.TotalEntries != 0 || s.TotalCases != 0 {
		t.Errorf("Snapshot() after paired Add/Remove = %+v", s)
	}
	if len(s.BySystem) != 0 || len(s.ByModality) != 0 || len(s.ByPathology) != 0 {
		t.Errorf("zeroed keys not deleted: %v %v %v", s.BySystem, s.ByModality, s.ByPathology)
	}
}

func TestAggregator_RemovePartial(t *testing.T) {
	a := NewAggregator()
	a.Add(sampleEntry("c1", core.EntryTypeCase))
	a.Add(sampleEntry("c2", core.EntryTypeCase))
	a.Remove(sampleEntry("c1", core.EntryTypeCase))

	s := a.Snapshot()
	if s.TotalEntries != 1 || s.TotalCases != 1 {
		t.Errorf("Snapshot() = %+v", s)
	}
	if s.BySystem["respiratory"] != 1 {
		t.Errorf("BySystem = %v, want respiratory: 1", s.BySystem)
	}
}

func TestAggregator_SnapshotIsCopy(t *testing.T) {
	a := NewAggregator()
	a.Add(sampleEntry("c1", core.EntryTypeCase))

	s := a.Snapshot()
	s.BySystem["respiratory"] = 99

	if a.Snapshot().BySystem["respiratory"] != 1 {
		t.Errorf("Snapshot() returned a live reference to internal counters")
	}
}

func TestAggregator_EmptySystemNotCounted(t *testing.T) {
	a := NewAggregator()
	entry := sampleEntry("i1", core.EntryTypeImage)
	entry.Metadata.System = ""
	a.Add(entry)

	s := a.Snapshot()
	if len(s.BySystem) != 0 {
		t.Errorf("BySystem = %v, empty system must not be counted", s.BySystem)
	}
	if s.TotalImages != 1 {
		t.Errorf("TotalImages = %d, want 1", s.TotalImages)
	}
}

func TestAggregator_Clear(t *testing.T) {
	a := NewAggregator()
	a.Add(sampleEntry("c1", core.EntryTypeCase))
	a.Clear()

	s := a.Snapshot()
	if s.TotalEntries != 0 || len(s.ByModality) != 0 {
		t.Errorf("Snapshot() after Clear = %+v", s)
	}
}
