package services

import (
	"image"
	"time"

	"github.com/facegate/backend/models"
)

// stubDetector returns scripted detections per call, repeating the last
// entry once the script runs out.
type stubDetector struct {
	script [][]models.FaceDetection
	err    error
	calls  int
}

func (d *stubDetector) Detect(frame image.Image) ([]models.FaceDetection, error) {
	if d.err != nil {
		return nil, d.err
	}
	if len(d.script) == 0 {
		return nil, nil
	}
	idx := d.calls
	if idx >= len(d.script) {
		idx = len(d.script) - 1
	}
	d.calls++
	return d.script[idx], nil
}

// stubExtractor returns scripted signatures (or errors) per call, repeating
// the last entry once the script runs out.
type extractResult struct {
	sig models.Signature
	err error
}

type stubExtractor struct {
	script []extractResult
	calls  int
}

func (e *stubExtractor) Extract(crop image.Image) (models.Signature, error) {
	if len(e.script) == 0 {
		return nil, models.ErrDegenerateFace
	}
	idx := e.calls
	if idx >= len(e.script) {
		idx = len(e.script) - 1
	}
	e.calls++
	r := e.script[idx]
	return r.sig, r.err
}

func fixedExtractor(sig models.Signature) *stubExtractor {
	return &stubExtractor{script: []extractResult{{sig: sig}}}
}

// capturePublisher records every recognition event it receives
type capturePublisher struct {
	events []capturedEvent
}

type capturedEvent struct {
	name   string
	score  float64
	seenAt time.Time
}

func (p *capturePublisher) PublishRecognition(name string, score float64, seenAt time.Time) {
	p.events = append(p.events, capturedEvent{name: name, score: score, seenAt: seenAt})
}

// testFrame is a 200x200 canvas; centeredDetection sits squarely in its
// middle and passes the default test quality gate.
func testFrame() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 200, 200))
}

func centeredDetection() models.FaceDetection {
	return models.FaceDetection{Box: models.BoundingBox{X: 70, Y: 70, Width: 60, Height: 60}}
}

func offCenterDetection() models.FaceDetection {
	return models.FaceDetection{Box: models.BoundingBox{X: 0, Y: 0, Width: 60, Height: 60}}
}

func oneFace() []models.FaceDetection {
	return []models.FaceDetection{centeredDetection()}
}
