package core

import (
	"strings"
	"testing"
)

func TestDeriveID(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		text   string
	}{
		{name: "article title", prefix: "article", text: "Pneumothorax"},
		{name: "empty text", prefix: "case", text: ""},
		{name: "long text", prefix: "img", text: strings.Repeat("scaphoid fracture ", 50)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id1 := DeriveID(tt.prefix, tt.text)
			id2 := DeriveID(tt.prefix, tt.text)

			if id1 != id2 {
				t.Errorf("DeriveID() produced different IDs for same content: %s vs %s", id1, id2)
			}
			if !strings.HasPrefix(id1, tt.prefix+"_") {
				t.Errorf("DeriveID() = %s, want prefix %q", id1, tt.prefix+"_")
			}
		})
	}
}

func TestDeriveID_Different(t *testing.T) {
	if DeriveID("article", "Pneumothorax") == DeriveID("article", "Pneumonia") {
		t.Errorf("DeriveID() produced same ID for different content")
	}
}

func TestDeriveID_NoPrefix(t *testing.T) {
	id := DeriveID("", "some content")
	if strings.Contains(id, "_") {
		t.Errorf("DeriveID() with empty prefix = %s, want bare hash", id)
	}
}
