// Package detection infers a likely watermark color from page pixel
// statistics.
//
// The detector builds a coarse 3-D color histogram (16 levels per channel)
// over a page, excluding near-white background and near-black text, and
// picks the most frequent remaining color bucket whose page coverage lies
// within sane support bounds. The bucket centroid becomes the watermark
// color; the bucket's color spread sets the match tolerance.
//
// # Document-Level Detection
//
// Histograms from several pages of one document can be merged before bucket
// selection (DetectAcross). A document-level color avoids flicker on
// marginal pages where per-page detection would pick different buckets.
//
// # No-Watermark Result
//
// When no bucket satisfies the support bounds the detector reports
// "no watermark found" through its boolean result. That is an expected
// outcome, not an error: callers pass such pages through cleanup unchanged.
//
// # Performance
//
// The histogram has a fixed bucket count, so detection runs in O(pixels)
// time and O(1) additional memory regardless of page resolution.
package detection
