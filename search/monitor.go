package search

// Monitor provides hooks to observe the search process.
// Implement this interface to track intermediate steps during search.
type Monitor interface {
	Start(query string)
	AfterTokenize(tokens []string)
	AfterCandidates(ids []string)
	AfterFilter(matched int)
	Finish(result *Result)
}

// noopMonitor is a no-op implementation of Monitor
type noopMonitor struct{}

var _ Monitor = (*noopMonitor)(nil)

func (n *noopMonitor) Start(_ string)             {}
func (n *noopMonitor) AfterTokenize(_ []string)   {}
func (n *noopMonitor) AfterCandidates(_ []string) {}
func (n *noopMonitor) AfterFilter(_ int)          {}
func (n *noopMonitor) Finish(_ *Result)           {}
