// Package feature describes the ptstd feature graph: which capability
// packages a feature name selects.
//
//	default → full
//	full    → std, extra
//	std     → net, ptr, thread
//	extra   → crypto, linear, log, chrono
//
// Leaves select code; the rest only group other features.
package feature
