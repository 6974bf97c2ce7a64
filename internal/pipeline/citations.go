package pipeline

import (
	"regexp"
	"sort"
	"strconv"
)

var citationPattern = regexp.MustCompile(`\[(\d+)\]`)

// ExtractCitedIndices returns the distinct 1-based citation indices
// appearing in the answer, in ascending order.
func ExtractCitedIndices(answer string) []int {
	seen := map[int]struct{}{}
	for _, m := range citationPattern.FindAllStringSubmatch(answer, -1) {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		seen[n] = struct{}{}
	}
	if len(seen) == 0 {
		return nil
	}
	out := make([]int, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}

// AttachSources maps the citations in answer onto the candidate source
// list. Indices outside the candidate range are dropped. The mapping is a
// pure function of its inputs, so re-running it never changes the result.
func AttachSources(answer string, candidates []Source) []Source {
	var out []Source
	for _, idx := range ExtractCitedIndices(answer) {
		if idx >= 1 && idx <= len(candidates) {
			out = append(out, candidates[idx-1])
		}
	}
	return out
}
