// Package pipeline orchestrates watermark removal across pages, documents,
// and batches.
//
// Process runs the imaging stages for a single page and is stateless across
// pages: a document-level auto-detected color is threaded in by the caller,
// never recomputed inside. Runner drives whole documents and batches,
// delegating rasterization and PDF reassembly to external collaborators
// behind the Rasterizer and Assembler interfaces.
//
// # Concurrency
//
// Pages of a document are processed on a bounded worker pool. Each page's
// pipeline depends only on that page's image and the (immutable) color
// model, so there is no shared mutable state between pages; the worker count
// caps peak memory, since a page image at high DPI can run to tens of
// megabytes.
//
// # Failure Scoping
//
// Failures are scoped to the smallest unit possible. A failing page either
// aborts its document or is substituted, per the configured ErrorPolicy; a
// failing document is logged and skipped while the rest of the batch
// continues. A single bad page or PDF never aborts an entire batch run.
package pipeline
