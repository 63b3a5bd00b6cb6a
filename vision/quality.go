package vision

import (
	"fmt"
	"image"
	"math"

	"github.com/disintegration/imaging"
	"github.com/facegate/backend/models"
)

// QualityParams gate enrollment shots. A shot failing any check is retried
// by the caller without consuming an enrollment slot.
type QualityParams struct {
	MinFaceSize     int     // minimum face dimension in pixels
	MaxCenterOffset float64 // max offset of the face center from the frame center, as a fraction of the frame dimension
	MinSharpness    float64 // minimum mean gradient magnitude of the crop
}

// CheckQuality validates a single enrollment detection against the frame it
// came from. Returns a *models.QualityError naming the failed check.
func CheckQuality(det models.FaceDetection, frameW, frameH int, params QualityParams) error {
	box := det.Box
	if box.Width < params.MinFaceSize || box.Height < params.MinFaceSize {
		return &models.QualityError{Reason: fmt.Sprintf("face %dx%d is below the minimum size %d, move closer to the camera", box.Width, box.Height, params.MinFaceSize)}
	}

	faceCenterX := float64(box.X) + float64(box.Width)/2
	faceCenterY := float64(box.Y) + float64(box.Height)/2
	offsetX := math.Abs(faceCenterX-float64(frameW)/2) / float64(frameW)
	offsetY := math.Abs(faceCenterY-float64(frameH)/2) / float64(frameH)
	if offsetX > params.MaxCenterOffset || offsetY > params.MaxCenterOffset {
		return &models.QualityError{Reason: "face is not centered in the frame"}
	}

	if params.MinSharpness > 0 && det.Crop != nil {
		if s := Sharpness(det.Crop); s < params.MinSharpness {
			return &models.QualityError{Reason: fmt.Sprintf("image too blurry (sharpness %.1f, need %.1f)", s, params.MinSharpness)}
		}
	}
	return nil
}

// Sharpness is a focus proxy: the mean absolute intensity gradient of the
// grayscale image. Blurred crops have weak gradients.
func Sharpness(img image.Image) float64 {
	gray := imaging.Grayscale(img)
	bounds := gray.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w < 2 || h < 2 {
		return 0
	}

	at := func(x, y int) float64 {
		r, _, _, _ := gray.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
		return float64(r >> 8)
	}

	var total float64
	var count int
	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			v := at(x, y)
			total += math.Abs(v-at(x+1, y)) + math.Abs(v-at(x, y+1))
			count += 2
		}
	}
	if count == 0 {
		return 0
	}
	return total / float64(count)
}
