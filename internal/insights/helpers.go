package insights

import (
	"sort"
	"strings"

	"github.com/sdpower/ccinsights-go/internal/types"
)

// periodFor builds the report period from the target dates, which are
// ordered most recent first.
func periodFor(targetDates []string) types.Period {
	p := types.Period{Days: len(targetDates)}
	if len(targetDates) > 0 {
		p.Start = targetDates[len(targetDates)-1]
		p.End = targetDates[0]
	}
	return p
}

// sortedKeys returns map keys in ascending order so iteration is stable
// across runs.
func sortedKeys(m map[string]int) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func containsAnyFold(s string, substrings ...string) bool {
	lower := strings.ToLower(s)
	for _, sub := range substrings {
		if strings.Contains(lower, sub) {
			return true
		}
	}
	return false
}

func sumCounts(m map[string]int) int {
	total := 0
	for _, count := range m {
		total += count
	}
	return total
}
