// Package core turns branch-metrics exports into a state → region → branch
// hierarchy.
//
// This package holds all domain logic independent of any transport. It is
// used by the HTTP server and the csvtree CLI alike.
//
// # Input
//
// The export is a flat table whose subtotal rows encode the hierarchy:
//
//	State,Region,Branch Name,Opening Stock,...
//	Maharashtra,,,120,...          ← state row
//	,MH1,MH1 Region Total,40,...   ← region-total row
//	,MH1,Pune,10,...               ← branch row
//	Grand Total,,,500,...          ← skipped
//
// [Classify] assigns each row one [Disposition]; [ExtractMetrics] reads the
// 19 KPI columns listed in [MetricColumns].
//
// # Strategies
//
// [BuildIndexed] is the default. It resolves parents by name in three ordered
// passes and therefore accepts rows in any order as long as the relationship
// can be recovered. [BuildStreaming] is the legacy single pass that attaches
// each row to whatever state or region was opened last.
//
// # Errors
//
// Only unreadable input is an error. Rows whose parent cannot be found are
// dropped and reported in [Stats]. Numeric cells never fail; bad values read
// as zero. Technical errors are mapped to support codes by [MapError].
package core
