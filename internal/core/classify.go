package core

import (
	"strings"

	"github.com/JonMunkholm/branchtree/internal/tabular"
)

// Disposition is what the builder does with a row.
type Disposition int

const (
	// DispositionNone rows match no rule and are dropped.
	DispositionNone Disposition = iota
	DispositionSkip
	DispositionState
	DispositionRegionTotal
	DispositionBranch
)

func (d Disposition) String() string {
	switch d {
	case DispositionSkip:
		return "skip"
	case DispositionState:
		return "state"
	case DispositionRegionTotal:
		return "region-total"
	case DispositionBranch:
		return "branch"
	default:
		return "none"
	}
}

// Classify decides a row's disposition. Rules apply in priority order:
//
//  1. Skip: State or Branch Name is exactly "Grand Total".
//  2. State: State is set, is not a "Region Total" label, and the row is not
//     a genuine branch row.
//  3. Region total: Branch Name or State contains "Region Total".
//  4. Branch: Branch Name is set and does not contain "Total".
func Classify(row tabular.Row) Disposition {
	state := row.Get(ColState)
	branch := row.Get(ColBranchName)

	switch {
	case state == GrandTotal || branch == GrandTotal:
		return DispositionSkip
	case isStateName(state) && !isBranchName(branch):
		return DispositionState
	case isRegionTotal(state, branch):
		return DispositionRegionTotal
	case isBranchName(branch):
		return DispositionBranch
	default:
		return DispositionNone
	}
}

// IsRegionTotal reports whether a non-skipped row carries a region subtotal.
// Unlike Classify it does not give way to the State rule, so a subtotal row
// that repeats its state's name still counts.
func IsRegionTotal(row tabular.Row) bool {
	state := row.Get(ColState)
	branch := row.Get(ColBranchName)
	if state == GrandTotal || branch == GrandTotal {
		return false
	}
	return isRegionTotal(state, branch)
}

func isRegionTotal(state, branch string) bool {
	return strings.Contains(branch, RegionTotalMarker) || strings.Contains(state, RegionTotalMarker)
}

// isStateName reports whether a State cell names a state rather than a
// region subtotal label.
func isStateName(state string) bool {
	return state != "" && !strings.Contains(state, RegionTotalMarker)
}

// isBranchName reports whether a Branch Name cell names a real branch.
func isBranchName(branch string) bool {
	return branch != "" && !strings.Contains(branch, totalMarker)
}
