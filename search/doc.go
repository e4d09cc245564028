// Package search implements the query side of the knowledge base: keyword
// search with AND semantics over the inverted index, metadata filtering,
// deterministic ranking and pagination, query suggestions, optional
// embedding-based reranking, and metadata-similarity recommendations.
//
// The Searcher is a pure reader over kb.Service. All store access happens
// inside Service.Read, so a search always observes a consistent
// store/index/statistics state.
package search
