package services

import (
	"fmt"
	"image"
	"log"

	"github.com/google/uuid"

	"github.com/facegate/backend/models"
	"github.com/facegate/backend/repository"
	"github.com/facegate/backend/vision"
)

// EnrollmentService orchestrates multi-shot registration: per-shot face and
// quality validation, duplicate detection against the store, and an
// all-or-nothing commit. Nothing is persisted until Complete succeeds, so
// abandoning a session requires no cleanup.
type EnrollmentService struct {
	detector  vision.Detector
	extractor vision.SignatureExtractor
	repo      repository.IdentityRepositoryInterface

	quality            vision.QualityParams
	requiredShots      int
	duplicateThreshold float64
}

func NewEnrollmentService(
	detector vision.Detector,
	extractor vision.SignatureExtractor,
	repo repository.IdentityRepositoryInterface,
	quality vision.QualityParams,
	requiredShots int,
	duplicateThreshold float64,
) *EnrollmentService {
	if requiredShots <= 0 {
		requiredShots = 1
	}
	return &EnrollmentService{
		detector:           detector,
		extractor:          extractor,
		repo:               repo,
		quality:            quality,
		requiredShots:      requiredShots,
		duplicateThreshold: duplicateThreshold,
	}
}

// RequiredShots returns how many accepted shots a session needs
func (s *EnrollmentService) RequiredShots() int {
	return s.requiredShots
}

// EnrollmentSession accumulates validated signatures for one registration
// attempt. Sessions are in-memory only; discarding one loses nothing.
type EnrollmentSession struct {
	ID         string
	Name       string
	service    *EnrollmentService
	signatures []models.Signature
}

// NewSession validates the candidate name and opens a session
func (s *EnrollmentService) NewSession(name string) (*EnrollmentSession, error) {
	if models.NormalizeName(name) == "" {
		return nil, fmt.Errorf("identity name must not be empty")
	}
	return &EnrollmentSession{
		ID:      uuid.NewString(),
		Name:    name,
		service: s,
	}, nil
}

// ShotsTaken returns how many shots the session has accepted so far
func (es *EnrollmentSession) ShotsTaken() int {
	return len(es.signatures)
}

// AddShot validates one enrollment frame and, if it passes, accepts its
// signature. Failures (no face, multiple faces, quality, degenerate crop)
// do not consume a slot; the caller retries the same shot.
func (es *EnrollmentSession) AddShot(frame image.Image) error {
	if len(es.signatures) >= es.service.requiredShots {
		return fmt.Errorf("enrollment session %s already has %d shot(s)", es.ID, es.service.requiredShots)
	}

	detections, err := es.service.detector.Detect(frame)
	if err != nil {
		return err
	}
	switch {
	case len(detections) == 0:
		return models.ErrNoFaceDetected
	case len(detections) > 1:
		return fmt.Errorf("%w: found %d faces, need exactly one", models.ErrMultipleFacesDetected, len(detections))
	}

	det := detections[0]
	bounds := frame.Bounds()
	if err := vision.CheckQuality(det, bounds.Dx(), bounds.Dy(), es.service.quality); err != nil {
		return err
	}

	sig, err := es.service.extractor.Extract(det.Crop)
	if err != nil {
		return err
	}

	es.signatures = append(es.signatures, sig)
	log.Printf("enrollment: session %s accepted shot %d/%d for %q", es.ID, len(es.signatures), es.service.requiredShots, es.Name)
	return nil
}

// Complete runs the duplicate check and commits the identity. Every new
// signature is checked against the store so the strictest (closest) one
// decides; any hit aborts the whole enrollment with no partial identity
// persisted.
func (es *EnrollmentSession) Complete() (*models.Identity, error) {
	if len(es.signatures) < es.service.requiredShots {
		return nil, fmt.Errorf("enrollment session %s has %d of %d required shot(s)", es.ID, len(es.signatures), es.service.requiredShots)
	}

	for _, sig := range es.signatures {
		existing, err := es.service.repo.FindDuplicateByFace(sig, es.service.duplicateThreshold)
		if err != nil {
			return nil, fmt.Errorf("duplicate check failed: %w", err)
		}
		if existing != nil {
			score := vision.IdentityScore(sig, existing)
			return nil, &models.DuplicatePersonError{ExistingName: existing.Name, Score: score}
		}
	}

	identity, err := models.NewIdentity(es.Name, es.signatures)
	if err != nil {
		return nil, err
	}
	if err := es.service.repo.Add(identity); err != nil {
		return nil, err
	}

	log.Printf("enrollment: committed identity %q with %d signature(s)", identity.Name, len(identity.Signatures))
	return identity, nil
}

// Register is the single-call form of an enrollment session: it feeds every
// frame as one shot and completes. Exactly requiredShots frames must be
// supplied and every one must pass validation.
func (s *EnrollmentService) Register(name string, frames []image.Image) (*models.Identity, error) {
	if len(frames) != s.requiredShots {
		return nil, fmt.Errorf("exactly %d frame(s) are required, got %d", s.requiredShots, len(frames))
	}

	session, err := s.NewSession(name)
	if err != nil {
		return nil, err
	}
	for i, frame := range frames {
		if err := session.AddShot(frame); err != nil {
			return nil, fmt.Errorf("shot %d: %w", i+1, err)
		}
	}
	return session.Complete()
}
