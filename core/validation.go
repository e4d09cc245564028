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


package core

import "fmt"

// ValidateEntry validates a KnowledgeBaseEntry according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Type must be a known EntryType
//   - Title must not be empty
//   - Difficulty and Source, when set, must be known values
//
// NOT validated:
//   - Content (an entry with no indexable text is valid, just unsearchable
//     by keyword)
//   - RelatedEntries (weak references; dangling IDs are tolerated by readers)
func ValidateEntry(entry *KnowledgeBaseEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: entry is nil", ErrInvalidEntry)
	}

	if entry.ID == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyID)
	}

	if err := ValidateEntryType(entry.Type); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, err)
	}

	if entry.Title == "" {
		return fmt.Errorf("%w: %w", ErrInvalidEntry, ErrEmptyTitle)
	}

	if entry.Metadata.Difficulty != "" {
		switch entry.Metadata.Difficulty {
		case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		default:
			return fmt.Errorf("%w: %w: value %q", ErrInvalidEntry, ErrInvalidDifficulty, entry.Metadata.Difficulty)
		}
	}

	if entry.Metadata.Source != "" {
		switch entry.Metadata.Source {
		case SourceExternal, SourceManual, SourceGenerated:
		default:
			return fmt.Errorf("%w: %w: value %q", ErrInvalidEntry, ErrInvalidSource, entry.Metadata.Source)
		}
	}

	return nil
}

// ValidateEntryType validates that an EntryType has a known value.
func ValidateEntryType(t EntryType) error {
	switch t {
	case EntryTypeArticle, EntryTypeCase, EntryTypeImage:
		return nil
	default:
		return fmt.Errorf("%w: value %q", ErrInvalidEntryType, t)
	}
}
