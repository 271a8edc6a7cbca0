package domain

// History retention caps. Each log keeps the most recent N entries; the
// oldest are evicted first.
const (
	MaxXPHistory         = 100
	MaxErrorHistory      = 200
	MaxSessionErrors     = 50
	MaxExecutionHistory  = 500
	MaxSessionExecutions = 100
)

// PrependBounded inserts entry at the head (most-recent-first) and truncates
// the list to maxLen, dropping the oldest entries from the tail. Retained
// entries keep their relative order.
func PrependBounded[T any](list []T, entry T, maxLen int) []T {
	list = append([]T{entry}, list...)
	if len(list) > maxLen {
		list = list[:maxLen]
	}
	return list
}
