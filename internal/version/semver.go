package version

import (
	"fmt"
	"strconv"
	"strings"
)

// Latest is the sentinel token that always ranks ahead of concrete versions.
const Latest = "latest"

// ParseError reports a token that is not a three-component stable version.
type ParseError struct {
	Token  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse version %q: %s", e.Token, e.Reason)
}

// ParseStable splits token into its major, minor and patch components. Any
// prefix (tool@, v) must already have been removed by Normalize.
func ParseStable(token string) (major, minor, patch int, err error) {
	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return 0, 0, 0, &ParseError{Token: token, Reason: fmt.Sprintf("expected 3 components, got %d", len(parts))}
	}
	var nums [3]int
	for i, part := range parts {
		if part == "" || strings.TrimLeft(part, "0123456789") != "" {
			return 0, 0, 0, &ParseError{Token: token, Reason: fmt.Sprintf("component %q is not a non-negative integer", part)}
		}
		n, convErr := strconv.Atoi(part)
		if convErr != nil {
			return 0, 0, 0, &ParseError{Token: token, Reason: convErr.Error()}
		}
		nums[i] = n
	}
	return nums[0], nums[1], nums[2], nil
}

// CompareDescending orders two normalized tokens newest-first and returns -1,
// 0 or 1. "latest" sorts ahead of everything. When either side is not a stable
// version the raw strings are compared case-insensitively in reverse order
// instead of failing.
func CompareDescending(a, b string) int {
	if a == b {
		return 0
	}
	if a == Latest {
		return -1
	}
	if b == Latest {
		return 1
	}

	aMaj, aMin, aPatch, errA := ParseStable(a)
	bMaj, bMin, bPatch, errB := ParseStable(b)
	if errA != nil || errB != nil {
		return sign(strings.Compare(strings.ToLower(b), strings.ToLower(a)))
	}

	av := [3]int{aMaj, aMin, aPatch}
	bv := [3]int{bMaj, bMin, bPatch}
	for i := range av {
		if av[i] != bv[i] {
			if av[i] > bv[i] {
				return -1
			}
			return 1
		}
	}
	return 0
}

func sign(n int) int {
	switch {
	case n < 0:
		return -1
	case n > 0:
		return 1
	default:
		return 0
	}
}
