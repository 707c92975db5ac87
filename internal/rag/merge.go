package rag

import "github.com/adroit-club/assistant/internal/index"

// prefixKeyLen is how many leading runes of a chunk identify it for
// deduplication. Chunks sharing a prefix are treated as duplicates and the
// earlier occurrence wins.
const prefixKeyLen = 50

// Merge concatenates ranked result lists in their given precedence order,
// removes duplicates by content prefix and truncates to capacity. It is a
// pure function: inputs are never mutated.
//
// Merging a list with itself returns the original list, so repeated merges
// are idempotent.
func Merge(lists [][]index.Result, capacity int) []index.Result {
	seen := make(map[string]struct{})
	var merged []index.Result

	for _, list := range lists {
		for _, r := range list {
			key := prefixKey(r.Content)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			merged = append(merged, r)
			if len(merged) == capacity {
				return merged
			}
		}
	}
	return merged
}

func prefixKey(content string) string {
	runes := []rune(content)
	if len(runes) > prefixKeyLen {
		runes = runes[:prefixKeyLen]
	}
	return string(runes)
}
