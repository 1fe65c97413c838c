package core

// Column names that drive classification.
const (
	ColState      = "State"
	ColRegion     = "Region"
	ColBranchName = "Branch Name"
)

// Row markers written by the export's subtotal logic.
const (
	GrandTotal        = "Grand Total"
	RegionTotalMarker = "Region Total"
	totalMarker       = "Total"
)

// MetricKind is the numeric type of a metric column.
type MetricKind int

const (
	MetricInteger MetricKind = iota
	MetricDecimal
)

func (k MetricKind) String() string {
	if k == MetricDecimal {
		return "decimal"
	}
	return "integer"
}

// MarshalText renders the kind by name in JSON output.
func (k MetricKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// MetricColumn binds one export column to one MetricSet field.
type MetricColumn struct {
	Column string     `json:"column"`
	Key    string     `json:"key"`
	Kind   MetricKind `json:"kind"`

	intField func(*MetricSet) *int64
	decField func(*MetricSet) *float64
}

func intColumn(column, key string, field func(*MetricSet) *int64) MetricColumn {
	return MetricColumn{Column: column, Key: key, Kind: MetricInteger, intField: field}
}

func decColumn(column, key string, field func(*MetricSet) *float64) MetricColumn {
	return MetricColumn{Column: column, Key: key, Kind: MetricDecimal, decField: field}
}

// MetricColumns is the metric schema in output order. Column names must
// match the export header exactly.
var MetricColumns = []MetricColumn{
	intColumn("Opening Stock", "openingStock", func(m *MetricSet) *int64 { return &m.OpeningStock }),
	intColumn("Application Login", "applicationLogin", func(m *MetricSet) *int64 { return &m.ApplicationLogin }),
	intColumn("Sanction Count", "sanctionCount", func(m *MetricSet) *int64 { return &m.SanctionCount }),
	decColumn("Sanction Amt (in Cr)", "sanctionAmt", func(m *MetricSet) *float64 { return &m.SanctionAmt }),
	intColumn("PNI Sanction Count", "pniSanctionCount", func(m *MetricSet) *int64 { return &m.PNISanctionCount }),
	decColumn("PNI Sanction Amount (in Cr)", "pniSanctionAmount", func(m *MetricSet) *float64 { return &m.PNISanctionAmount }),
	intColumn("Fresh Disb Count", "freshDisbCount", func(m *MetricSet) *int64 { return &m.FreshDisbCount }),
	decColumn("Fresh Disb Amt (in Cr.)", "freshDisbAmt", func(m *MetricSet) *float64 { return &m.FreshDisbAmt }),
	decColumn("Total Disb Amt (in Cr)", "totalDisbAmt", func(m *MetricSet) *float64 { return &m.TotalDisbAmt }),
	decColumn("DI Amt (in Cr)", "diAmt", func(m *MetricSet) *float64 { return &m.DIAmt }),
	intColumn("Rejection", "rejection", func(m *MetricSet) *int64 { return &m.Rejection }),
	intColumn("Cancellation", "cancellation", func(m *MetricSet) *int64 { return &m.Cancellation }),
	decColumn("FTR%", "ftr", func(m *MetricSet) *float64 { return &m.FTR }),
	intColumn("WIP", "wip", func(m *MetricSet) *int64 { return &m.WIP }),
	intColumn("Pending for allocation by CPA", "pendingForAllocationByCPA", func(m *MetricSet) *int64 { return &m.PendingForAllocationByCPA }),
	intColumn("WIP-CPA", "wipCPA", func(m *MetricSet) *int64 { return &m.WIPCPA }),
	intColumn("Sales Tray (Login Acceptance)", "salesTrayLoginAcceptance", func(m *MetricSet) *int64 { return &m.SalesTrayLoginAcceptance }),
	intColumn("Credit Pending (DDE & Reco Stage)", "creditPendingDDERecoStage", func(m *MetricSet) *int64 { return &m.CreditPendingDDERecoStage }),
	intColumn("Sales Tray (DDE & RECO)", "salesTrayDDERECO", func(m *MetricSet) *int64 { return &m.SalesTrayDDERECO }),
}

// Columns returns every header the converter reads, hierarchy columns first.
func Columns() []string {
	cols := []string{ColState, ColRegion, ColBranchName}
	for _, mc := range MetricColumns {
		cols = append(cols, mc.Column)
	}
	return cols
}
