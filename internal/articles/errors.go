package articles

import "fmt"

// ProviderProtocolError reports a provider that broke the list contract:
// pagination that never terminates or a page with unusable records.
type ProviderProtocolError struct {
	Provider string
	Offset   int
	Reason   string
}

func (e *ProviderProtocolError) Error() string {
	return fmt.Sprintf("provider protocol error (%s, offset %d): %s", e.Provider, e.Offset, e.Reason)
}
