package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/facegate/backend/models"
)

// SignatureExtractor converts a detected face crop into a comparable
// signature. The production implementation is Extractor; the interface
// exists so coordinators can be exercised without real image processing.
type SignatureExtractor interface {
	Extract(crop image.Image) (models.Signature, error)
}

// ExtractorParams fix the shape of every signature the extractor produces.
// Signatures from different parameter sets are not comparable.
type ExtractorParams struct {
	CanonicalSize int // crops are resized to CanonicalSize x CanonicalSize
	MinCropSize   int // crops smaller than this in either dimension are degenerate
}

// DefaultExtractorParams returns the nominal extraction parameters
func DefaultExtractorParams() ExtractorParams {
	return ExtractorParams{CanonicalSize: 100, MinCropSize: 32}
}

// Extractor produces photometrically normalized grayscale signatures. The
// pipeline is deterministic: grayscale, canonical resize, histogram
// equalization, L2 normalization. Equalization keeps lighting differences
// between enrollment and live frames from dominating the similarity score.
type Extractor struct {
	params ExtractorParams
}

func NewExtractor(params ExtractorParams) *Extractor {
	if params.CanonicalSize <= 0 {
		params.CanonicalSize = DefaultExtractorParams().CanonicalSize
	}
	if params.MinCropSize <= 0 {
		params.MinCropSize = DefaultExtractorParams().MinCropSize
	}
	return &Extractor{params: params}
}

// Extract converts a face crop into a signature. Crops below the minimum
// size cannot be resized meaningfully and fail with ErrDegenerateFace.
func (e *Extractor) Extract(crop image.Image) (models.Signature, error) {
	if crop == nil {
		return nil, fmt.Errorf("%w: nil crop", models.ErrDegenerateFace)
	}
	bounds := crop.Bounds()
	if bounds.Dx() < e.params.MinCropSize || bounds.Dy() < e.params.MinCropSize {
		return nil, fmt.Errorf("%w: crop is %dx%d, need at least %dx%d",
			models.ErrDegenerateFace, bounds.Dx(), bounds.Dy(), e.params.MinCropSize, e.params.MinCropSize)
	}

	size := e.params.CanonicalSize
	gray := imaging.Grayscale(crop)
	resized := imaging.Resize(gray, size, size, imaging.Lanczos)

	pixels := grayValues(resized)
	equalizeHistogram(pixels)

	sig := make(models.Signature, len(pixels))
	for i, p := range pixels {
		sig[i] = float32(p)
	}
	normalize(sig)
	return sig, nil
}

// grayValues flattens the image into row-major 8-bit intensities
func grayValues(img image.Image) []uint8 {
	bounds := img.Bounds()
	out := make([]uint8, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, _, _, _ := img.At(x, y).RGBA()
			out = append(out, uint8(r>>8))
		}
	}
	return out
}

// equalizeHistogram remaps intensities in place so their cumulative
// distribution is approximately uniform
func equalizeHistogram(pixels []uint8) {
	if len(pixels) == 0 {
		return
	}
	var hist [256]int
	for _, p := range pixels {
		hist[p]++
	}

	var cdf [256]int
	running := 0
	cdfMin := 0
	for i, count := range hist {
		running += count
		cdf[i] = running
		if cdfMin == 0 && count > 0 {
			cdfMin = running
		}
	}

	total := len(pixels)
	if total == cdfMin {
		// flat image, nothing to equalize
		return
	}
	var lut [256]uint8
	for i := range lut {
		lut[i] = uint8((cdf[i] - cdfMin) * 255 / (total - cdfMin))
	}
	for i, p := range pixels {
		pixels[i] = lut[p]
	}
}

// normalize scales the signature to unit L2 length
func normalize(sig models.Signature) {
	var sum float64
	for _, v := range sig {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	if norm == 0 {
		return
	}
	for i := range sig {
		sig[i] = float32(float64(sig[i]) / norm)
	}
}
