package services

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/facegate/backend/models"
	"github.com/facegate/backend/repository"
)

func newRecognitionRepo(t *testing.T, identities ...*models.Identity) *repository.FileIdentityRepository {
	t.Helper()
	repo, err := repository.NewFileIdentityRepository(filepath.Join(t.TempDir(), "face_data.json"))
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	for _, identity := range identities {
		if err := repo.Add(identity); err != nil {
			t.Fatalf("Add(%q) failed: %v", identity.Name, err)
		}
	}
	return repo
}

func mustIdentity(t *testing.T, name string, sigs ...models.Signature) *models.Identity {
	t.Helper()
	identity, err := models.NewIdentity(name, sigs)
	if err != nil {
		t.Fatalf("failed to build identity %q: %v", name, err)
	}
	return identity
}

func TestRecognizeMatched(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))
	tracker := NewAttendanceTracker(30 * time.Second)
	publisher := &capturePublisher{}
	svc := NewRecognitionService(
		&stubDetector{script: [][]models.FaceDetection{oneFace()}},
		fixedExtractor(models.Signature{1, 0, 0}),
		repo, tracker, publisher, 0.75, 0.02, 0.80,
	)

	seenAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	results, err := svc.Recognize(testFrame(), seenAt)
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("got %d results; want 1", len(results))
	}
	r := results[0]
	if r.Classification != ClassificationMatched || r.Name != "Alice" {
		t.Errorf("result = %+v; want matched Alice", r)
	}
	if r.Score != 1.0 {
		t.Errorf("score = %f; want exactly 1.0 for an identical signature", r.Score)
	}

	records := tracker.Export()
	if len(records) != 1 || records[0].Name != "Alice" {
		t.Fatalf("attendance records = %+v; want one for Alice", records)
	}
	if records[0].FirstSeen != seenAt.Unix() || records[0].Status != models.StatusPresent {
		t.Errorf("attendance record = %+v; want present, first seen at %d", records[0], seenAt.Unix())
	}

	if len(publisher.events) != 1 || publisher.events[0].name != "Alice" {
		t.Errorf("published events = %+v; want one for Alice", publisher.events)
	}
}

func TestRecognizeUnknown(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))

	tests := []struct {
		name  string
		probe models.Signature
	}{
		{"orthogonal probe", models.Signature{0, 0, 1}},
		{"below threshold", models.Signature{1, 1, 0}}, // scores ~0.707 against Alice
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracker := NewAttendanceTracker(30 * time.Second)
			svc := NewRecognitionService(
				&stubDetector{script: [][]models.FaceDetection{oneFace()}},
				fixedExtractor(tc.probe),
				repo, tracker, nil, 0.75, 0.02, 0.80,
			)

			results, err := svc.Recognize(testFrame(), time.Now())
			if err != nil {
				t.Fatalf("Recognize failed: %v", err)
			}
			if len(results) != 1 || results[0].Classification != ClassificationUnknown {
				t.Errorf("results = %+v; want one unknown", results)
			}
			if results[0].Name != "" {
				t.Errorf("unknown result carries name %q", results[0].Name)
			}
			if len(tracker.Export()) != 0 {
				t.Error("unknown detection recorded attendance")
			}
		})
	}
}

func TestRecognizeAmbiguousTwins(t *testing.T) {
	// Bob and Rob have similar signatures; the probe scores 0.80 against Bob
	// and 0.79 against Rob, inside the ambiguity margin.
	repo := newRecognitionRepo(t,
		mustIdentity(t, "Bob", models.Signature{1, 0, 0}),
		mustIdentity(t, "Rob", models.Signature{0.8, 0.6, 0}),
	)
	tracker := NewAttendanceTracker(30 * time.Second)
	publisher := &capturePublisher{}
	svc := NewRecognitionService(
		&stubDetector{script: [][]models.FaceDetection{oneFace()}},
		fixedExtractor(models.Signature{0.80, 0.25, 0.5454}),
		repo, tracker, publisher, 0.75, 0.02, 0.80,
	)

	results, err := svc.Recognize(testFrame(), time.Now())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(results) != 1 || results[0].Classification != ClassificationAmbiguous {
		t.Fatalf("results = %+v; want one ambiguous", results)
	}
	if results[0].Name != "" {
		t.Errorf("ambiguous result guessed a name: %q", results[0].Name)
	}
	if len(tracker.Export()) != 0 {
		t.Error("ambiguous detection recorded attendance")
	}
	if len(publisher.events) != 0 {
		t.Error("ambiguous detection published an event")
	}
}

func TestRecognizeClearWinnerAmongSimilar(t *testing.T) {
	// same pair, but the probe is decisively closer to Bob (0.95 vs 0.80)
	repo := newRecognitionRepo(t,
		mustIdentity(t, "Bob", models.Signature{1, 0, 0}),
		mustIdentity(t, "Rob", models.Signature{0.8, 0.6, 0}),
	)
	svc := NewRecognitionService(
		&stubDetector{script: [][]models.FaceDetection{oneFace()}},
		fixedExtractor(models.Signature{0.95, 0.0667, 0.305}),
		repo, NewAttendanceTracker(30*time.Second), nil, 0.75, 0.02, 0.80,
	)

	results, err := svc.Recognize(testFrame(), time.Now())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(results) != 1 || results[0].Classification != ClassificationMatched || results[0].Name != "Bob" {
		t.Errorf("results = %+v; want matched Bob", results)
	}
}

func TestRecognizeThresholdMonotonicity(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))
	probe := models.Signature{0.8, 0.6, 0} // scores 0.8 against Alice

	matchedAt := func(threshold float64) int {
		svc := NewRecognitionService(
			&stubDetector{script: [][]models.FaceDetection{oneFace()}},
			fixedExtractor(probe),
			repo, NewAttendanceTracker(30*time.Second), nil, threshold, 0.02, 0.80,
		)
		results, err := svc.Recognize(testFrame(), time.Now())
		if err != nil {
			t.Fatalf("Recognize failed: %v", err)
		}
		matched := 0
		for _, r := range results {
			if r.Classification == ClassificationMatched {
				matched++
			}
		}
		return matched
	}

	thresholds := []float64{0.5, 0.75, 0.9, 0.99}
	prev := matchedAt(thresholds[0])
	for _, threshold := range thresholds[1:] {
		cur := matchedAt(threshold)
		if cur > prev {
			t.Errorf("raising the threshold to %.2f increased matches from %d to %d", threshold, prev, cur)
		}
		prev = cur
	}
}

func TestRecognizeAfterDeletion(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))
	svc := NewRecognitionService(
		&stubDetector{script: [][]models.FaceDetection{oneFace()}},
		fixedExtractor(models.Signature{1, 0, 0}),
		repo, NewAttendanceTracker(30*time.Second), nil, 0.75, 0.02, 0.80,
	)

	results, err := svc.Recognize(testFrame(), time.Now())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if results[0].Classification != ClassificationMatched {
		t.Fatalf("pre-deletion result = %+v; want matched", results[0])
	}

	if err := repo.Remove("Alice"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	results, err = svc.Recognize(testFrame(), time.Now())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if results[0].Classification != ClassificationUnknown {
		t.Errorf("post-deletion result = %+v; want unknown", results[0])
	}
}

func TestRecognizeNoDetections(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))
	svc := NewRecognitionService(
		&stubDetector{}, fixedExtractor(models.Signature{1, 0, 0}),
		repo, NewAttendanceTracker(30*time.Second), nil, 0.75, 0.02, 0.80,
	)

	results, err := svc.Recognize(testFrame(), time.Now())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(results) != 0 {
		t.Errorf("got %d results for an empty frame; want 0", len(results))
	}
}

func TestRecognizeDegenerateCropStaysUnknown(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))
	svc := NewRecognitionService(
		&stubDetector{script: [][]models.FaceDetection{oneFace()}},
		&stubExtractor{script: []extractResult{{err: models.ErrDegenerateFace}}},
		repo, NewAttendanceTracker(30*time.Second), nil, 0.75, 0.02, 0.80,
	)

	results, err := svc.Recognize(testFrame(), time.Now())
	if err != nil {
		t.Fatalf("Recognize failed: %v", err)
	}
	if len(results) != 1 || results[0].Classification != ClassificationUnknown {
		t.Errorf("results = %+v; want one unknown", results)
	}
}

func TestDetectPreview(t *testing.T) {
	repo := newRecognitionRepo(t, mustIdentity(t, "Alice", models.Signature{1, 0, 0}))

	tests := []struct {
		name     string
		probe    models.Signature
		wantDup  bool
		wantName string
	}{
		{"enrolled face", models.Signature{1, 0, 0}, true, "Alice"},
		{"new face", models.Signature{0, 0, 1}, false, ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tracker := NewAttendanceTracker(30 * time.Second)
			svc := NewRecognitionService(
				&stubDetector{script: [][]models.FaceDetection{oneFace()}},
				fixedExtractor(tc.probe),
				repo, tracker, nil, 0.75, 0.02, 0.80,
			)

			results, err := svc.DetectPreview(testFrame())
			if err != nil {
				t.Fatalf("DetectPreview failed: %v", err)
			}
			if len(results) != 1 {
				t.Fatalf("got %d results; want 1", len(results))
			}
			if results[0].IsDuplicate != tc.wantDup || results[0].DuplicateName != tc.wantName {
				t.Errorf("preview = %+v; want duplicate=%v name=%q", results[0], tc.wantDup, tc.wantName)
			}
			if len(tracker.Export()) != 0 {
				t.Error("preview recorded attendance")
			}
		})
	}
}
