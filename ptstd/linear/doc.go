// Package linear offers row-literal matrix construction and chained
// multiplication on top of gonum's dense matrices.
package linear
