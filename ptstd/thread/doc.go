// Package thread provides a fixed-size worker pool.
//
// Jobs are plain closures queued on a bounded channel and run by a fixed set
// of goroutines. Close stops intake, drains the queue and joins every worker.
// Group layers errgroup semantics (first error cancels the rest) on top of a
// pool so bounded fan-out does not spawn one goroutine per task.
package thread
