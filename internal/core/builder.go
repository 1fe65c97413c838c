package core

// builder.go assembles the state → region → branch tree.
//
// The indexed strategy runs three strictly ordered passes over the full row
// sequence. Each pass reads the maps completed by the one before it:
//
//  1. collectStates:   State rows       → {state name → *StateNode}
//  2. attachRegions:   Region-total rows → regionIndex, appended to parents
//  3. attachBranches:  Branch rows      → appended to the resolved region
//
// Conflicts are first-wins throughout: a repeated state name, a repeated
// region id under one state, and a region code shared by several states all
// resolve to the node registered first. Rows whose parent cannot be resolved
// are dropped without error.

import (
	"strings"

	"github.com/JonMunkholm/branchtree/internal/tabular"
)

// Build converts rows into a Document using the given strategy.
// The rows are not modified and the returned tree shares nothing with them.
func Build(rows []tabular.Row, strategy Strategy) (*Document, Stats, error) {
	switch strategy {
	case StrategyIndexed, "":
		doc, stats := BuildIndexed(rows)
		return doc, stats, nil
	case StrategyStreaming:
		doc, stats := BuildStreaming(rows)
		return doc, stats, nil
	default:
		return nil, Stats{}, ErrUnknownStrategy
	}
}

// BuildIndexed runs the three-pass indexed strategy.
func BuildIndexed(rows []tabular.Row) (*Document, Stats) {
	doc := NewDocument()
	used := make([]bool, len(rows))

	states := collectStates(rows, doc, used)
	regions := attachRegions(rows, states, used)
	attachBranches(rows, regions, used)

	return doc, tally(rows, doc, used)
}

// stateIndex maps a state name to its node.
type stateIndex map[string]*StateNode

// regionIndex is the product of pass 2.
type regionIndex struct {
	byState map[string]map[string]*RegionNode // state name → region id → node
	byID    map[string]*RegionNode            // region id → first node registered
	atRow   map[int]*RegionNode               // row index → node it produced
}

func collectStates(rows []tabular.Row, doc *Document, used []bool) stateIndex {
	states := make(stateIndex)
	for i, row := range rows {
		if Classify(row) != DispositionState {
			continue
		}
		name := row.Get(ColState)
		if _, exists := states[name]; exists {
			continue
		}
		node := &StateNode{
			ID:        StateID(name),
			Name:      name,
			MetricSet: ExtractMetrics(row),
			Regions:   []*RegionNode{},
		}
		doc.TableData = append(doc.TableData, node)
		states[name] = node
		used[i] = true
	}
	return states
}

func attachRegions(rows []tabular.Row, states stateIndex, used []bool) regionIndex {
	idx := regionIndex{
		byState: make(map[string]map[string]*RegionNode),
		byID:    make(map[string]*RegionNode),
		atRow:   make(map[int]*RegionNode),
	}

	for i, row := range rows {
		if !IsRegionTotal(row) {
			continue
		}

		parentName := parentStateName(rows, i)
		parent, ok := states[parentName]
		if !ok {
			continue
		}

		state := row.Get(ColState)
		label := row.Get(ColBranchName)
		if label == "" || strings.Contains(state, RegionTotalMarker) {
			label = state
		}
		id := RegionID(row.Get(ColRegion), label)

		siblings := idx.byState[parentName]
		if siblings == nil {
			siblings = make(map[string]*RegionNode)
			idx.byState[parentName] = siblings
		}
		if _, dup := siblings[id]; dup {
			continue
		}

		node := &RegionNode{
			ID:        id,
			Name:      label,
			MetricSet: ExtractMetrics(row),
			Branches:  []*BranchNode{},
		}
		parent.Regions = append(parent.Regions, node)
		siblings[id] = node
		if _, exists := idx.byID[id]; !exists {
			idx.byID[id] = node
		}
		idx.atRow[i] = node
		used[i] = true
	}

	return idx
}

func attachBranches(rows []tabular.Row, regions regionIndex, used []bool) {
	for i, row := range rows {
		if Classify(row) != DispositionBranch {
			continue
		}

		region := regions.resolve(rows, i)
		if region == nil {
			continue
		}

		name := row.Get(ColBranchName)
		region.Branches = append(region.Branches, &BranchNode{
			ID:        BranchID(name),
			Name:      name,
			MetricSet: ExtractMetrics(row),
		})
		used[i] = true
	}
}

// resolve finds the region a branch row belongs to. With a region code the
// branch's own state is searched first, then any state. Without a code the
// branch joins the nearest region-total row above it, unless a state row
// intervenes.
func (idx regionIndex) resolve(rows []tabular.Row, i int) *RegionNode {
	row := rows[i]
	code := row.Get(ColRegion)
	if code == "" {
		for j := i - 1; j >= 0; j-- {
			if region, ok := idx.atRow[j]; ok {
				return region
			}
			if Classify(rows[j]) == DispositionState {
				return nil
			}
		}
		return nil
	}

	id := strings.ToLower(code)
	if state := row.Get(ColState); state != "" {
		if region := idx.byState[state][id]; region != nil {
			return region
		}
	}
	return idx.byID[id]
}

// parentStateName returns the state a region-total row belongs to: its own
// State cell when that names a state, otherwise the nearest preceding row
// whose State cell does.
func parentStateName(rows []tabular.Row, i int) string {
	for j := i; j >= 0; j-- {
		if state := rows[j].Get(ColState); isStateName(state) {
			return state
		}
	}
	return ""
}

// tally counts nodes and classifies every row that contributed nothing.
func tally(rows []tabular.Row, doc *Document, used []bool) Stats {
	stats := Stats{Rows: len(rows), Dropped: []int{}}
	for _, s := range doc.TableData {
		stats.States++
		for _, r := range s.Regions {
			stats.Regions++
			stats.Branches += len(r.Branches)
		}
	}
	for i, row := range rows {
		switch {
		case used[i]:
		case Classify(row) == DispositionSkip:
			stats.Skipped++
		default:
			stats.Dropped = append(stats.Dropped, i)
		}
	}
	return stats
}
