package core

import "github.com/JonMunkholm/branchtree/internal/tabular"

// cursor is the open state and region during a streaming build.
type cursor struct {
	state  *StateNode
	region *RegionNode
}

// BuildStreaming is the legacy single-pass strategy. It assumes each state's
// region totals and branches follow it directly: region totals attach to the
// most recent state, branches to the most recent region. A new state row
// closes the open region. Repeated states are not merged.
func BuildStreaming(rows []tabular.Row) (*Document, Stats) {
	doc := NewDocument()
	used := make([]bool, len(rows))

	var c cursor
	for i, row := range rows {
		used[i] = c.step(doc, row)
	}

	return doc, tally(rows, doc, used)
}

// step applies one row and reports whether it produced a node.
func (c *cursor) step(doc *Document, row tabular.Row) bool {
	switch Classify(row) {
	case DispositionState:
		name := row.Get(ColState)
		c.state = &StateNode{
			ID:        StateID(name),
			Name:      name,
			MetricSet: ExtractMetrics(row),
			Regions:   []*RegionNode{},
		}
		c.region = nil
		doc.TableData = append(doc.TableData, c.state)
		return true

	case DispositionRegionTotal:
		if c.state == nil {
			return false
		}
		label := row.Get(ColBranchName)
		if label == "" {
			label = row.Get(ColState)
		}
		c.region = &RegionNode{
			ID:        RegionID(row.Get(ColRegion), label),
			Name:      label,
			MetricSet: ExtractMetrics(row),
			Branches:  []*BranchNode{},
		}
		c.state.Regions = append(c.state.Regions, c.region)
		return true

	case DispositionBranch:
		if c.region == nil {
			return false
		}
		name := row.Get(ColBranchName)
		c.region.Branches = append(c.region.Branches, &BranchNode{
			ID:        BranchID(name),
			Name:      name,
			MetricSet: ExtractMetrics(row),
		})
		return true
	}

	return false
}
