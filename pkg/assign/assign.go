// Package assign implements the assignment-string grammar used by the
// experiment service. An assignment encodes how many players occupy each
// (role, strategy) pair, e.g. "buyer: 2 shade, 1 truthful; seller: 3 shade".
package assign

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/egtaonline/egta-mock/pkg/apperrors"
)

// GroupSpec is one parsed (role, strategy, count) clause. Identifier
// assignment for symmetry groups happens in the store, not here.
type GroupSpec struct {
	Role     string
	Strategy string
	Count    int
}

// Parse converts an assignment string into its group specs in clause order.
// The grammar is strict: role clauses are separated by "; ", each is
// "<role>: <strategy clauses>", strategy clauses are separated by ", ", and
// each is "<count> <strategy>" with a non-negative integer count. The
// strategy may contain spaces. Malformed input returns ErrMalformedInput.
func Parse(assignment string) ([]GroupSpec, error) {
	var groups []GroupSpec
	for _, roleClause := range strings.Split(assignment, "; ") {
		role, strats, ok := strings.Cut(roleClause, ": ")
		if !ok || role == "" {
			return nil, fmt.Errorf("%w: role clause %q lacks %q separator",
				apperrors.ErrMalformedInput, roleClause, ": ")
		}
		for _, stratClause := range strings.Split(strats, ", ") {
			countStr, strat, ok := strings.Cut(stratClause, " ")
			if !ok || strat == "" {
				return nil, fmt.Errorf("%w: strategy clause %q lacks a count",
					apperrors.ErrMalformedInput, stratClause)
			}
			count, err := strconv.Atoi(countStr)
			if err != nil || count < 0 {
				return nil, fmt.Errorf("%w: invalid count %q in clause %q",
					apperrors.ErrMalformedInput, countStr, stratClause)
			}
			groups = append(groups, GroupSpec{Role: role, Strategy: strat, Count: count})
		}
	}
	return groups, nil
}

// Format renders group specs as a canonical assignment string: roles sorted
// lexicographically, strategies within a role sorted by (strategy, count),
// zero-count groups elided. Parse(Format(groups)) reconstructs the same
// nonzero (role, strategy, count) multiset.
func Format(groups []GroupSpec) string {
	byRole := make(map[string][]GroupSpec)
	for _, g := range groups {
		byRole[g.Role] = append(byRole[g.Role], g)
	}
	roles := make([]string, 0, len(byRole))
	for role := range byRole {
		roles = append(roles, role)
	}
	sort.Strings(roles)

	clauses := make([]string, 0, len(roles))
	for _, role := range roles {
		strats := byRole[role]
		sort.Slice(strats, func(i, j int) bool {
			if strats[i].Strategy != strats[j].Strategy {
				return strats[i].Strategy < strats[j].Strategy
			}
			return strats[i].Count < strats[j].Count
		})
		parts := make([]string, 0, len(strats))
		for _, g := range strats {
			if g.Count == 0 {
				continue
			}
			parts = append(parts, fmt.Sprintf("%d %s", g.Count, g.Strategy))
		}
		clauses = append(clauses, fmt.Sprintf("%s: %s", role, strings.Join(parts, ", ")))
	}
	return strings.Join(clauses, "; ")
}
