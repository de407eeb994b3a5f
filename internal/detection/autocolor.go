package detection

import (
	"image"
	"math"

	"github.com/pdfwash/pdfwash/internal/imaging"
)

// Quantization and bucket-selection parameters for automatic watermark color
// detection. Each channel is quantized to quantLevels levels, bounding the
// histogram to quantLevels³ buckets: cost stays O(pixels) time and O(1)
// memory regardless of page resolution.
const (
	quantLevels = 16
	quantStep   = 256 / quantLevels

	// Pixels with all channels at or above whiteFloor are background white;
	// all channels at or below blackCeil are text black. Both are excluded
	// from the histogram.
	whiteFloor = 240
	blackCeil  = 15

	// A bucket qualifies as a watermark candidate only when its pixel count
	// lies within [minSupport, maxSupport] of the page. Below the floor it
	// is noise; above the ceiling it is a background fill, not a watermark.
	minSupport = 0.001
	maxSupport = 0.30

	// Detected tolerances are clamped to [minTolerance, maxTolerance].
	minTolerance = 10
	maxTolerance = 60
)

// bucket accumulates the original (non-quantized) pixel values that fell
// into one quantized histogram cell.
type bucket struct {
	count uint64
	sum   [3]uint64
	sumSq [3]uint64
}

// Histogram is a coarse 3-D color histogram used to infer a likely watermark
// color. Accumulate pages into it with Add, then call Detect.
//
// Accumulating several pages of the same document before detecting gives a
// document-level color, which is more stable than per-page detection on
// marginal pages.
type Histogram struct {
	buckets [quantLevels * quantLevels * quantLevels]bucket
	total   uint64
}

// Add accumulates every pixel of img into the histogram, excluding
// near-white and near-black pixels. Excluded pixels still count toward the
// page total used for the support bounds.
func (h *Histogram) Add(img image.Image) {
	bounds := img.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			p := imaging.PixelAt(img, x, y)
			h.total++

			if p.R >= whiteFloor && p.G >= whiteFloor && p.B >= whiteFloor {
				continue
			}
			if p.R <= blackCeil && p.G <= blackCeil && p.B <= blackCeil {
				continue
			}

			i := bucketIndex(p)
			b := &h.buckets[i]
			b.count++
			b.sum[0] += uint64(p.R)
			b.sum[1] += uint64(p.G)
			b.sum[2] += uint64(p.B)
			b.sumSq[0] += uint64(p.R) * uint64(p.R)
			b.sumSq[1] += uint64(p.G) * uint64(p.G)
			b.sumSq[2] += uint64(p.B) * uint64(p.B)
		}
	}
}

// Detect picks the most frequent qualifying color bucket and derives a
// ColorModel from it.
//
// The model's center is the bucket centroid: the per-channel mean of the
// original pixel values that fell into the bucket, not the quantized bucket
// color. The tolerance is proportional to the bucket's color spread (twice
// the average per-channel standard deviation), clamped to a sane range.
//
// The second return value is false when no bucket satisfies the support
// bounds. That is not an error: it signals "no watermark found" and callers
// must pass the page through unchanged.
func (h *Histogram) Detect() (imaging.ColorModel, bool) {
	if h.total == 0 {
		return imaging.ColorModel{}, false
	}

	lo := uint64(minSupport * float64(h.total))
	hi := uint64(maxSupport * float64(h.total))

	best := -1
	var bestCount uint64
	for i := range h.buckets {
		c := h.buckets[i].count
		if c <= lo || c >= hi {
			continue
		}
		if c > bestCount {
			best = i
			bestCount = c
		}
	}
	if best < 0 {
		return imaging.ColorModel{}, false
	}

	b := &h.buckets[best]
	center := imaging.RGBColor{
		R: uint8(b.sum[0] / b.count),
		G: uint8(b.sum[1] / b.count),
		B: uint8(b.sum[2] / b.count),
	}

	// Average per-channel standard deviation of the bucket.
	var sd float64
	for ch := 0; ch < 3; ch++ {
		mean := float64(b.sum[ch]) / float64(b.count)
		variance := float64(b.sumSq[ch])/float64(b.count) - mean*mean
		if variance > 0 {
			sd += math.Sqrt(variance)
		}
	}
	sd /= 3

	tol := int(2 * sd)
	if tol < minTolerance {
		tol = minTolerance
	}
	if tol > maxTolerance {
		tol = maxTolerance
	}

	return imaging.NewColorModel(center, uint8(tol)), true
}

// Detect infers a watermark color from a single page image.
func Detect(img image.Image) (imaging.ColorModel, bool) {
	var h Histogram
	h.Add(img)
	return h.Detect()
}

// DetectAcross infers a document-level watermark color from several sampled
// pages by merging their histograms before bucket selection.
func DetectAcross(imgs []image.Image) (imaging.ColorModel, bool) {
	var h Histogram
	for _, img := range imgs {
		h.Add(img)
	}
	return h.Detect()
}

func bucketIndex(p imaging.RGBColor) int {
	r := int(p.R) / quantStep
	g := int(p.G) / quantStep
	b := int(p.B) / quantStep
	return (r*quantLevels+g)*quantLevels + b
}
