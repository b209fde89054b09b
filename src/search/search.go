// Package search implements prefix-ranked lookup over a Graph's sorted
// vertex name sets.
package search

import "sort"

// DefaultCap is the maximum number of results Search returns absent an
// explicit override.
const DefaultCap = 10

// Search returns at most cap matches whose name has term as a prefix,
// ranked by descending popularity with a shorter-id tiebreak, followed by
// ascending-name order for ties on both. names must be sorted ascending.
// exactExists reports whether a vertex keyed exactly by term exists; when
// true it is always the first result.
//
// An empty term yields an empty result (not an error).
func Search(names []string, term string, popularityOf func(name string) int, cap int, exactExists bool) []string {
	if term == "" {
		return nil
	}
	if cap <= 0 {
		cap = DefaultCap
	}

	upper, ok := successor(term)
	var hi int
	if ok {
		hi = sort.SearchStrings(names, upper)
	} else {
		hi = len(names)
	}
	lo := sort.SearchStrings(names, term)

	results := make([]string, 0, cap)
	for _, name := range names[lo:hi] {
		if name == term {
			continue
		}
		results = insertRanked(results, name, popularityOf, cap)
	}

	if exactExists {
		results = prependExact(results, term, cap)
	}

	return results
}

// insertRanked inserts name into results, already-ordered, at the first
// position it outranks, then trims to cap.
func insertRanked(results []string, name string, popularityOf func(string) int, cap int) []string {
	pop := popularityOf(name)
	idx := len(results)
	for i, existing := range results {
		if beats(name, pop, existing, popularityOf(existing)) {
			idx = i
			break
		}
	}
	if idx >= cap {
		return results
	}
	results = append(results, "")
	copy(results[idx+1:], results[idx:])
	results[idx] = name
	if len(results) > cap {
		results = results[:cap]
	}
	return results
}

func prependExact(results []string, term string, cap int) []string {
	out := make([]string, 0, cap)
	out = append(out, term)
	for _, r := range results {
		if len(out) >= cap {
			break
		}
		out = append(out, r)
	}
	return out
}

// beats reports whether candidate outranks existing: higher popularity
// wins, shorter id breaks a popularity tie.
func beats(candidate string, candidatePop int, existing string, existingPop int) bool {
	if candidatePop != existingPop {
		return candidatePop > existingPop
	}
	return len(candidate) < len(existing)
}

// successor returns term with its final rune replaced by its Unicode
// successor, giving the exclusive upper bound of the half-open prefix
// range [term, successor(term)). ok is false if term's last rune has no
// successor representable as a rune (practically never hit).
func successor(term string) (string, bool) {
	runes := []rune(term)
	last := runes[len(runes)-1]
	if last >= 0x10FFFF {
		return "", false
	}
	runes[len(runes)-1] = last + 1
	return string(runes), true
}
