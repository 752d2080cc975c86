// Package bulk applies one task operation to a set of ids parsed from a
// compact list/range syntax such as "1,3-5,7".
package bulk

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

var ErrParse = errors.New("invalid id list")

// MaxRangeSpan caps how many ids a single A-B range may expand to.
const MaxRangeSpan = 10000

// ParseError names the token that invalidated an id spec.
// It satisfies errors.Is(err, ErrParse).
type ParseError struct {
	Token string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid id list: %q (use 1,2,3 or 1-5 or 1,3-5,7)", e.Token)
}

func (e *ParseError) Is(target error) bool {
	return target == ErrParse
}

// ParseIDSpec parses comma separated ids and inclusive ranges. A range whose
// start exceeds its end, or that spans more than MaxRangeSpan ids, is
// skipped with a warning; any other malformed token rejects the whole input.
// The result is sorted and free of duplicates.
func ParseIDSpec(input string) ([]int, []string, error) {
	seen := map[int]bool{}
	var warnings []string
	for _, part := range strings.Split(input, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		if lo, hi, ok := strings.Cut(part, "-"); ok {
			start, err := parseID(lo)
			if err != nil {
				return nil, nil, &ParseError{Token: part}
			}
			end, err := parseID(hi)
			if err != nil {
				return nil, nil, &ParseError{Token: part}
			}
			if start > end {
				warnings = append(warnings, fmt.Sprintf("invalid range %s (start > end) skipped", part))
				continue
			}
			if end-start >= MaxRangeSpan {
				warnings = append(warnings, fmt.Sprintf("range %s spans more than %d ids, skipped", part, MaxRangeSpan))
				continue
			}
			for id := start; id <= end; id++ {
				seen[id] = true
			}
			continue
		}
		id, err := parseID(part)
		if err != nil {
			return nil, nil, &ParseError{Token: part}
		}
		seen[id] = true
	}
	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids, warnings, nil
}

func parseID(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	if n < 1 {
		return 0, fmt.Errorf("id %d is not positive", n)
	}
	return n, nil
}
