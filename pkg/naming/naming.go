// Package naming resolves combatant names so that no two combatants in the
// same combat share one. A repeated base name gets a trailing " N" suffix,
// e.g. "Goblin" joining a combat that already has "Goblin" becomes "Goblin 1".
package naming

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

// Ordering selects which matching sibling supplies the suffix the next index
// is derived from.
type Ordering int

const (
	// OrderingNumeric uses the largest numeric suffix among matching names.
	OrderingNumeric Ordering = iota
	// OrderingLexicographic sorts matching names as strings and uses the last
	// one. "Goblin 10" sorts before "Goblin 9", so once suffixes reach two
	// digits this ordering can hand out a name that is already taken.
	OrderingLexicographic
)

// ErrUnknownOrdering is returned by ParseOrdering for unrecognized values.
var ErrUnknownOrdering = errors.New("unknown ordering")

func (o Ordering) String() string {
	switch o {
	case OrderingNumeric:
		return "numeric"
	case OrderingLexicographic:
		return "lexicographic"
	default:
		return fmt.Sprintf("Ordering(%d)", int(o))
	}
}

// ParseOrdering converts a config or flag value into an Ordering.
// The empty string selects OrderingNumeric.
func ParseOrdering(s string) (Ordering, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "numeric":
		return OrderingNumeric, nil
	case "lexicographic", "lexical":
		return OrderingLexicographic, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownOrdering, s)
	}
}

// Resolver assigns names for new combatants. It holds no state besides its
// ordering and is safe for concurrent use.
type Resolver struct {
	ordering Ordering
}

// New creates a Resolver using the given ordering.
func New(ordering Ordering) *Resolver {
	return &Resolver{ordering: ordering}
}

// Ordering returns the ordering the resolver was built with.
func (r *Resolver) Ordering() Ordering {
	return r.ordering
}

var defaultResolver = New(OrderingNumeric)

// ResolveName returns the name a new combatant requesting candidate should
// receive, given the names of the other combatants in the same combat.
// It uses OrderingNumeric.
func ResolveName(candidate string, siblings []string) string {
	return defaultResolver.Resolve(candidate, siblings)
}

// Resolve returns candidate unchanged when no sibling matches it. Otherwise it
// returns "candidate N", where N is one past the reference suffix chosen by
// the resolver's ordering. A matching sibling without a clean numeric suffix
// counts as suffix 0. Under OrderingNumeric, if that name is already taken
// (the suffix space is exhausted), the lowest free index is used instead.
//
// Callers must pass a snapshot that already includes every earlier
// assignment; Resolve does no synchronization of its own.
func (r *Resolver) Resolve(candidate string, siblings []string) string {
	matching := lo.Filter(siblings, func(name string, _ int) bool {
		return Matches(candidate, name)
	})
	if len(matching) == 0 {
		return candidate
	}

	name := fmt.Sprintf("%s %d", candidate, r.reference(candidate, matching)+1)
	if r.ordering == OrderingNumeric && lo.Contains(matching, name) {
		return lowestFree(candidate, matching)
	}

	return name
}

// lowestFree returns "candidate N" for the smallest N >= 1 not already taken.
// It is only reached when the largest suffix cannot be incremented.
func lowestFree(candidate string, matching []string) string {
	taken := lo.Keyify(matching)
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s %d", candidate, n)
		if _, ok := taken[name]; !ok {
			return name
		}
	}
}

func (r *Resolver) reference(candidate string, matching []string) int {
	if r.ordering == OrderingLexicographic {
		n, _ := Suffix(candidate, lo.Max(matching))
		return n
	}

	return lo.Max(lo.Map(matching, func(name string, _ int) int {
		n, _ := Suffix(candidate, name)
		return n
	}))
}

// Matches reports whether name shares candidate's base name: it is either
// identical to candidate or starts with candidate followed by one space.
// The comparison is case-sensitive.
func Matches(candidate, name string) bool {
	return name == candidate || strings.HasPrefix(name, candidate+" ")
}

// Suffix returns the numeric suffix of name relative to candidate, so
// Suffix("Goblin", "Goblin 12") is (12, true). The suffix must be ASCII
// digits only and leave room for its successor in an int; anything else,
// including an exact match, reports false.
func Suffix(candidate, name string) (int, bool) {
	prefix := candidate + " "
	if !strings.HasPrefix(name, prefix) {
		return 0, false
	}

	digits := name[len(prefix):]
	if digits == "" || strings.TrimLeft(digits, "0123456789") != "" {
		return 0, false
	}

	n, err := strconv.Atoi(digits)
	if err != nil || n == math.MaxInt {
		return 0, false
	}

	return n, true
}
