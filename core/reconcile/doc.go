// Package reconcile brings the remote store in line with a loaded manifest.
//
// A run is split in two steps, like a dry run followed by an apply:
//
// 1. Plan: the remote status of every entry is checked with bounded
//    parallelism, each entry is classified, and every file that has to be
//    uploaded is downloaded and verified. Problems are collected, not returned,
//    so a single run reports all of them. Only storage transport failures abort
//    planning.
//
// 2. Apply: when the plan has no errors, every verified file is uploaded
//    followed by its hash sidecar. Both writes are create-only.
//
// # Classification
//
//   - remote Missing: the entry is queued for upload
//   - remote Present with the declared hash: nothing to do
//   - remote Present with another hash: error, content is never replaced
//   - remote Legacy (file without sidecar): error, unless the entry itself is
//     declared legacy
//
// Legacy entries can't be downloaded, so a missing legacy entry is an error.
//
// # Usage Example
//
//	engine := reconcile.NewEngine(reader, downloader, logger, reconcile.Options{Workers: 16})
//	plan, err := engine.Plan(ctx, m)
//	if err != nil {
//	    return err // storage unreachable
//	}
//	if len(plan.Errors) == 0 {
//	    uploaded, err := engine.Apply(ctx, writer, plan)
//	}
package reconcile
