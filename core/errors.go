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

import "errors"

// Domain validation errors
var (
	// ErrInvalidEntry indicates a KnowledgeBaseEntry failed validation.
	ErrInvalidEntry = errors.New("invalid knowledge base entry")

	// ErrEmptyID indicates the ID field is empty.
	ErrEmptyID = errors.New("entry id cannot be empty")

	// ErrEmptyTitle indicates the Title field is empty.
	ErrEmptyTitle = errors.New("entry title cannot be empty")

	// ErrInvalidEntryType indicates an unrecognised EntryType value.
	ErrInvalidEntryType = errors.New("invalid entry type")

	// ErrInvalidDifficulty indicates an unrecognised Difficulty value.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrInvalidSource indicates an unrecognised Source value.
	ErrInvalidSource = errors.New("invalid source")
)
