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


// Package ai provides the embedding abstraction used by semantic search.
//
// The knowledge base itself never generates embeddings; it only consumes
// an injected Embedder. Whether a Provider is configured at all is the
// capability flag behind search.Searcher.HasEmbeddingEngine: no provider
// means semantic queries take the keyword path.
//
// # Implementation Packages
//
//   - ai/openai: production implementation using OpenAI-compatible APIs
//     via langchaingo
//   - ai/mock: deterministic test doubles, no external dependencies
//
// # Constructor Return Type Pattern
//
// Public constructors (openai.NewProvider, openai.NewEmbedder) return
// interface types to prevent coupling to a concrete implementation. Mock
// constructors return concrete types so tests can reach assertion helpers
// like CallCount.
package ai
