package vision

import (
	"fmt"
	"image"
	"log"
	"os"

	"gocv.io/x/gocv"

	"github.com/facegate/backend/models"
)

// CascadeDetector locates faces with OpenCV's classical Haar cascade. It is
// the production Detector implementation; the engine only sees the Detector
// interface.
type CascadeDetector struct {
	classifier gocv.CascadeClassifier
	Enabled    bool

	// detection parameters
	ScaleFactor  float64
	MinNeighbors int
	Policy       DetectionPolicy
}

// NewCascadeDetector loads the Haar cascade file. A missing or unloadable
// cascade disables the detector rather than failing startup, matching how
// the model-backed components degrade.
func NewCascadeDetector(cascadePath string, policy DetectionPolicy) *CascadeDetector {
	if cascadePath == "" {
		log.Println("detection(cascade): cascade path is empty, disabling face detection")
		return &CascadeDetector{Enabled: false}
	}

	if _, err := os.Stat(cascadePath); os.IsNotExist(err) {
		log.Printf("detection(cascade): ERROR - cascade file does not exist: %s", cascadePath)
		return &CascadeDetector{Enabled: false}
	}

	classifier := gocv.NewCascadeClassifier()
	if !classifier.Load(cascadePath) {
		log.Printf("detection(cascade): ERROR - failed to load cascade: %s", cascadePath)
		classifier.Close()
		return &CascadeDetector{Enabled: false}
	}
	log.Printf("detection(cascade): loaded cascade %s", cascadePath)

	return &CascadeDetector{
		classifier:   classifier,
		Enabled:      true,
		ScaleFactor:  1.3,
		MinNeighbors: 5,
		Policy:       policy,
	}
}

func (d *CascadeDetector) Close() {
	if d != nil && d.Enabled {
		d.classifier.Close()
		log.Println("detection(cascade): closed classifier")
		d.Enabled = false
	}
}

// Detect runs the cascade over the frame and returns filtered detections
// with their crops attached
func (d *CascadeDetector) Detect(frame image.Image) ([]models.FaceDetection, error) {
	if frame == nil {
		return nil, fmt.Errorf("%w: nil frame", models.ErrInvalidFrame)
	}
	bounds := frame.Bounds()
	frameW, frameH := bounds.Dx(), bounds.Dy()
	if frameW == 0 || frameH == 0 {
		return nil, fmt.Errorf("%w: zero-sized frame", models.ErrInvalidFrame)
	}
	if d == nil || !d.Enabled {
		return nil, fmt.Errorf("face detector is not available")
	}

	mat, err := gocv.ImageToMatRGB(frame)
	if err != nil {
		return nil, fmt.Errorf("%w: frame conversion failed: %v", models.ErrInvalidFrame, err)
	}
	defer mat.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(mat, &gray, gocv.ColorRGBToGray)
	gocv.EqualizeHist(gray, &gray)

	minSize := image.Pt(d.Policy.MinFaceSize, d.Policy.MinFaceSize)
	rects := d.classifier.DetectMultiScaleWithParams(gray, d.ScaleFactor, d.MinNeighbors, 0, minSize, image.Pt(0, 0))

	detections := make([]models.FaceDetection, 0, len(rects))
	for _, r := range rects {
		box := models.BoundingBox{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
		detections = append(detections, models.FaceDetection{
			Box:        box,
			Confidence: sizeConfidence(box, frameW, frameH),
		})
	}

	detections = FilterDetections(detections, frameW, frameH, d.Policy)
	for i := range detections {
		detections[i].Crop = CropFace(frame, detections[i].Box)
	}
	return detections, nil
}

// sizeConfidence is a confidence proxy for cascade hits, which carry no
// score of their own: larger faces relative to the frame are more reliable
func sizeConfidence(box models.BoundingBox, frameW, frameH int) float32 {
	if frameW == 0 || frameH == 0 {
		return 0
	}
	rel := float32(box.Width) / float32(frameW)
	if h := float32(box.Height) / float32(frameH); h > rel {
		rel = h
	}
	if rel > 1 {
		rel = 1
	}
	return rel
}
