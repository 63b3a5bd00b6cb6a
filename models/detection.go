package models

import "image"

// BoundingBox locates a face within a frame, in pixel coordinates
type BoundingBox struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Rect converts the box to an image.Rectangle
func (b BoundingBox) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.X+b.Width, b.Y+b.Height)
}

// Area returns the box area in pixels
func (b BoundingBox) Area() int {
	return b.Width * b.Height
}

// FaceDetection is a single detected face: its bounding box, a confidence
// proxy and the cropped pixel region. Detections are ephemeral; they are
// created per frame and discarded once the frame has been scored.
type FaceDetection struct {
	Box        BoundingBox
	Confidence float32
	Crop       image.Image
}
