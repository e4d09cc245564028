package badger

import "fmt"

// Key prefixes for different data types
const (
	entryPrefix = "kbent"
)

// makeEntryKey generates a key for an entry by ID.
func makeEntryKey(id string) []byte {
	return []byte(fmt.Sprintf("%s:%s", entryPrefix, id))
}

// entryKeyPrefix returns the prefix shared by all entry keys, used for
// full-store iteration.
func entryKeyPrefix() []byte {
	return []byte(entryPrefix + ":")
}
