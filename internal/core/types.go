package core

import (
	"fmt"
	"strings"
)

// Document is the result of one conversion: states in source order.
type Document struct {
	TableData []*StateNode `json:"tableData" yaml:"tableData"`
}

// NewDocument returns a document with an empty, non-nil state list so that it
// serialises as {"tableData": []}.
func NewDocument() *Document {
	return &Document{TableData: []*StateNode{}}
}

// StateNode is the top level of the hierarchy.
type StateNode struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	MetricSet `yaml:",inline"`
	Regions   []*RegionNode `json:"regions" yaml:"regions"`
}

// RegionNode groups the branches of one region. It is owned by exactly one
// StateNode.
type RegionNode struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	MetricSet `yaml:",inline"`
	Branches  []*BranchNode `json:"branches" yaml:"branches"`
}

// BranchNode is a leaf. It is owned by exactly one RegionNode.
type BranchNode struct {
	ID        string `json:"id" yaml:"id"`
	Name      string `json:"name" yaml:"name"`
	MetricSet `yaml:",inline"`
}

// MetricSet holds the KPIs carried by every node. Field order matches
// [MetricColumns].
type MetricSet struct {
	OpeningStock              int64   `json:"openingStock" yaml:"openingStock"`
	ApplicationLogin          int64   `json:"applicationLogin" yaml:"applicationLogin"`
	SanctionCount             int64   `json:"sanctionCount" yaml:"sanctionCount"`
	SanctionAmt               float64 `json:"sanctionAmt" yaml:"sanctionAmt"`
	PNISanctionCount          int64   `json:"pniSanctionCount" yaml:"pniSanctionCount"`
	PNISanctionAmount         float64 `json:"pniSanctionAmount" yaml:"pniSanctionAmount"`
	FreshDisbCount            int64   `json:"freshDisbCount" yaml:"freshDisbCount"`
	FreshDisbAmt              float64 `json:"freshDisbAmt" yaml:"freshDisbAmt"`
	TotalDisbAmt              float64 `json:"totalDisbAmt" yaml:"totalDisbAmt"`
	DIAmt                     float64 `json:"diAmt" yaml:"diAmt"`
	Rejection                 int64   `json:"rejection" yaml:"rejection"`
	Cancellation              int64   `json:"cancellation" yaml:"cancellation"`
	FTR                       float64 `json:"ftr" yaml:"ftr"`
	WIP                       int64   `json:"wip" yaml:"wip"`
	PendingForAllocationByCPA int64   `json:"pendingForAllocationByCPA" yaml:"pendingForAllocationByCPA"`
	WIPCPA                    int64   `json:"wipCPA" yaml:"wipCPA"`
	SalesTrayLoginAcceptance  int64   `json:"salesTrayLoginAcceptance" yaml:"salesTrayLoginAcceptance"`
	CreditPendingDDERecoStage int64   `json:"creditPendingDDERecoStage" yaml:"creditPendingDDERecoStage"`
	SalesTrayDDERECO          int64   `json:"salesTrayDDERECO" yaml:"salesTrayDDERECO"`
}

// Stats summarises what a build did with its input rows.
// Every row is counted once in Skipped, Dropped or as contributing a node.
type Stats struct {
	Rows     int   `json:"rows"`
	States   int   `json:"states"`
	Regions  int   `json:"regions"`
	Branches int   `json:"branches"`
	Skipped  int   `json:"skipped"`
	Dropped  []int `json:"droppedRows"` // zero-based row indexes
}

// Strategy selects the row-processing algorithm.
type Strategy string

const (
	// StrategyIndexed resolves parents through name-keyed maps built in
	// three ordered passes. It tolerates non-contiguous input.
	StrategyIndexed Strategy = "indexed"

	// StrategyStreaming is the legacy single pass that attaches each row to
	// the most recently opened state or region.
	StrategyStreaming Strategy = "streaming"
)

// DefaultStrategy is used when no strategy is requested.
const DefaultStrategy = StrategyIndexed

// ParseStrategy validates a strategy name. The empty string selects
// [DefaultStrategy].
func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultStrategy, nil
	case StrategyIndexed:
		return StrategyIndexed, nil
	case StrategyStreaming:
		return StrategyStreaming, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
	}
}
