package services

import (
	"errors"
	"image"
	"log"
	"time"

	"github.com/facegate/backend/models"
	"github.com/facegate/backend/repository"
	"github.com/facegate/backend/vision"
)

// Classification is the outcome of scoring one detection against the store
type Classification string

const (
	ClassificationMatched   Classification = "matched"
	ClassificationUnknown   Classification = "unknown"
	ClassificationAmbiguous Classification = "ambiguous"
)

// RecognitionResult is one (bounding box, classification) pair for a frame.
// Name and Score are set only for matched detections; ambiguous detections
// carry the near-tied score but no name.
type RecognitionResult struct {
	Box            models.BoundingBox `json:"box"`
	Classification Classification     `json:"classification"`
	Name           string             `json:"name,omitempty"`
	Score          float64            `json:"score"`
}

// PreviewResult is the lightweight detection output for the live overlay,
// including the enrollment-time duplicate pre-check
type PreviewResult struct {
	Box           models.BoundingBox `json:"box"`
	IsDuplicate   bool               `json:"is_duplicate"`
	DuplicateName string             `json:"duplicate_name,omitempty"`
}

// EventPublisher receives recognition events for live consumers. The hub in
// realtime implements it; a nil publisher disables event delivery.
type EventPublisher interface {
	PublishRecognition(name string, score float64, seenAt time.Time)
}

// RecognitionService classifies every face in a live frame against the
// enrolled identities and feeds matches to the attendance tracker. It never
// mutates the identity store.
type RecognitionService struct {
	detector  vision.Detector
	extractor vision.SignatureExtractor
	repo      repository.IdentityRepositoryInterface
	tracker   *AttendanceTracker
	publisher EventPublisher

	matchThreshold   float64
	ambiguityEpsilon float64
	previewThreshold float64
}

func NewRecognitionService(
	detector vision.Detector,
	extractor vision.SignatureExtractor,
	repo repository.IdentityRepositoryInterface,
	tracker *AttendanceTracker,
	publisher EventPublisher,
	matchThreshold, ambiguityEpsilon, previewThreshold float64,
) *RecognitionService {
	return &RecognitionService{
		detector:         detector,
		extractor:        extractor,
		repo:             repo,
		tracker:          tracker,
		publisher:        publisher,
		matchThreshold:   matchThreshold,
		ambiguityEpsilon: ambiguityEpsilon,
		previewThreshold: previewThreshold,
	}
}

// Recognize classifies every detected face in the frame. Matched identities
// are recorded with the attendance tracker at seenAt.
func (s *RecognitionService) Recognize(frame image.Image, seenAt time.Time) ([]RecognitionResult, error) {
	detections, err := s.detector.Detect(frame)
	if err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return []RecognitionResult{}, nil
	}

	identities, err := s.repo.List()
	if err != nil {
		return nil, err
	}

	results := make([]RecognitionResult, 0, len(detections))
	for _, det := range detections {
		results = append(results, s.classify(det, identities, seenAt))
	}
	return results, nil
}

func (s *RecognitionService) classify(det models.FaceDetection, identities []models.Identity, seenAt time.Time) RecognitionResult {
	probe, err := s.extractor.Extract(det.Crop)
	if err != nil {
		// an unusable crop is treated like no face: the detection stays unknown
		if !errors.Is(err, models.ErrDegenerateFace) {
			log.Printf("recognition: signature extraction failed: %v", err)
		}
		return RecognitionResult{Box: det.Box, Classification: ClassificationUnknown}
	}

	best, second := vision.RankIdentities(probe, identities)
	if best.Score < s.matchThreshold {
		return RecognitionResult{Box: det.Box, Classification: ClassificationUnknown, Score: best.Score}
	}
	if second.Score >= s.matchThreshold && best.Score-second.Score <= s.ambiguityEpsilon {
		log.Printf("recognition: ambiguous match between %q (%.3f) and %q (%.3f), rejecting",
			best.Name, best.Score, second.Name, second.Score)
		return RecognitionResult{Box: det.Box, Classification: ClassificationAmbiguous, Score: best.Score}
	}

	if s.tracker != nil {
		s.tracker.Record(best.Name, seenAt)
	}
	if s.publisher != nil {
		s.publisher.PublishRecognition(best.Name, best.Score, seenAt)
	}
	return RecognitionResult{
		Box:            det.Box,
		Classification: ClassificationMatched,
		Name:           best.Name,
		Score:          best.Score,
	}
}

// DetectPreview runs detection only, plus the duplicate pre-check used by
// the registration page's live overlay. No attendance is recorded.
func (s *RecognitionService) DetectPreview(frame image.Image) ([]PreviewResult, error) {
	detections, err := s.detector.Detect(frame)
	if err != nil {
		return nil, err
	}

	results := make([]PreviewResult, 0, len(detections))
	for _, det := range detections {
		result := PreviewResult{Box: det.Box}
		probe, err := s.extractor.Extract(det.Crop)
		if err == nil {
			existing, dupErr := s.repo.FindDuplicateByFace(probe, s.previewThreshold)
			if dupErr == nil && existing != nil {
				result.IsDuplicate = true
				result.DuplicateName = existing.Name
			}
		}
		results = append(results, result)
	}
	return results, nil
}
