package monitor

import (
	"github.com/angeloszaimis/website-monitor/internal/cancellation"
)

// Collect reads records until it holds one for each of want distinct URLs
// or results is closed, whichever comes first. Only the first record per URL
// is kept; the rest are dropped. Records are returned in arrival order.
//
// Collect signals token before returning so that idle workers stop polling.
func Collect(results <-chan StatusRecord, want int, token *cancellation.Token) []StatusRecord {
	defer token.Signal()

	seen := make(map[string]struct{}, want)
	out := make([]StatusRecord, 0, want)

	for len(seen) < want {
		record, ok := <-results
		if !ok {
			break
		}

		if _, dup := seen[record.URL]; dup {
			continue
		}

		seen[record.URL] = struct{}{}
		out = append(out, record)
	}

	return out
}
