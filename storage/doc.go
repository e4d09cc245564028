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


// Package storage provides the storage abstraction layer for medkb.
//
// This package defines the repository interface that decouples the entry
// store implementation from the knowledge base service. The service only
// depends on EntryRepository, so alternative backends can be swapped in
// without touching business logic.
//
// # Constructor Return Type Pattern
//
// Public constructors in implementation packages return the
// storage.EntryRepository interface rather than concrete types:
//
//	repo, err := badger.NewEntryRepository(backend)
//
// This keeps consumers decoupled from BadgerDB specifics and lets tests
// substitute other implementations without modification.
//
// # Serialization
//
// Entries are stored as JSON-encoded values. The snapshot/export format of
// the knowledge base is JSON as well, so a single codec covers both the
// backend values and the export path.
//
// # Thread Safety
//
// Repository implementations must be safe for concurrent use. Note that
// atomicity across the entry store, the inverted index and the statistics
// counters is the responsibility of kb.Service, which serializes writers
// with a single lock; the repository alone only guarantees per-call
// consistency.
//
// # Context Support
//
// All repository methods accept context.Context. Pass context.Background()
// for operations without specific cancellation requirements.
package storage
