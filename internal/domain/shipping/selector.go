package shipping

import "strings"

// Select matches the buyer-submitted service identifier against quotes. The
// quote label is compared with its whitespace stripped ("JNE - REG" matches
// the submitted "JNE-REG"); the submitted value is used verbatim. The first
// match in aggregation order wins.
//
// A false return is a normal outcome: the client-side quote set can go stale
// between rendering and submission.
func Select(quotes []Quote, submitted string) (Quote, bool) {
	for _, q := range quotes {
		if strings.ReplaceAll(q.Service, " ", "") == submitted {
			return q, true
		}
	}
	return Quote{}, false
}
