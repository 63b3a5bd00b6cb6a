package vision

import (
	"image"

	"github.com/disintegration/imaging"
	"github.com/facegate/backend/models"
)

// Detector locates faces in a decoded frame. Detections are produced
// eagerly; every face in the frame is returned before the frame is
// discarded.
type Detector interface {
	Detect(frame image.Image) ([]models.FaceDetection, error)
}

// DetectionPolicy filters raw detections before they are scored
type DetectionPolicy struct {
	MinFaceSize  int // discard detections smaller than this in either dimension
	BorderMargin int // discard detections touching the frame border within this margin
}

// FilterDetections applies the detection policy against a frame of the
// given size. Small detections are distant faces or noise; detections at
// the border are clipped faces that would produce unreliable signatures.
func FilterDetections(detections []models.FaceDetection, frameW, frameH int, policy DetectionPolicy) []models.FaceDetection {
	kept := make([]models.FaceDetection, 0, len(detections))
	for _, det := range detections {
		box := det.Box
		if box.Width < policy.MinFaceSize || box.Height < policy.MinFaceSize {
			continue
		}
		if box.X < policy.BorderMargin || box.Y < policy.BorderMargin {
			continue
		}
		if box.X+box.Width > frameW-policy.BorderMargin || box.Y+box.Height > frameH-policy.BorderMargin {
			continue
		}
		kept = append(kept, det)
	}
	return kept
}

// CropFace extracts the pixel region of a bounding box from a frame
func CropFace(frame image.Image, box models.BoundingBox) image.Image {
	return imaging.Crop(frame, box.Rect())
}
