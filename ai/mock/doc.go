// Package mock provides deterministic test doubles for the ai interfaces.
// The default embedder derives vectors from an FNV hash of the input text,
// so identical text always embeds identically and tests need no network.
package mock
