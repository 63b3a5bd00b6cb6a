package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

const (
	defaultRequiredShots = 3
	defaultCanonicalSize = 100
	defaultMinCropSize   = 32
	defaultMinFaceSize   = 60
	defaultBorderMargin  = 4
)

const (
	defaultMatchThreshold     = 0.75
	defaultDuplicateThreshold = 0.85
	defaultPreviewThreshold   = 0.80
	defaultAmbiguityEpsilon   = 0.02
	defaultMinSharpness       = 4.0
	defaultMaxCenterOffset    = 0.25
)

type Config struct {
	// identity store document path
	DataPath string

	// Haar cascade file for the face detector
	CascadePath string

	// detection policy
	MinFaceSize  int // detections smaller than this (pixels) are discarded
	BorderMargin int // detections closer than this to the frame edge are discarded

	// signature extraction settings
	CanonicalFaceSize int // face crops are resized to this square size
	MinCropSize       int // crops below this are rejected as degenerate

	// matching thresholds
	MatchThreshold     float64
	DuplicateThreshold float64
	PreviewThreshold   float64 // duplicate pre-check used by the live overlay
	AmbiguityEpsilon   float64

	// enrollment settings
	RequiredShots   int
	MinSharpness    float64
	MaxCenterOffset float64 // max face-center offset from frame center, as a fraction

	// attendance settings
	AbsenceTimeout time.Duration
	SweepInterval  time.Duration

	// bcrypt hash guarding destructive admin operations; empty disables the check
	AdminKeyHash string
}

func getEnvOrDefault(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvIntOrDefault(envVar string, defaultVal int) int {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %d. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvFloatOrDefault(envVar string, defaultVal float64) float64 {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := strconv.ParseFloat(valStr, 64)
	if err != nil || val < 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %.2f. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func getEnvDurationOrDefault(envVar string, defaultVal time.Duration) time.Duration {
	valStr := os.Getenv(envVar)
	if valStr == "" {
		return defaultVal
	}
	val, err := time.ParseDuration(valStr)
	if err != nil || val <= 0 {
		log.Printf("Warning: Invalid %s '%s'. Using default %s. Error: %v", envVar, valStr, defaultVal, err)
		return defaultVal
	}
	return val
}

func LoadConfig() (Config, error) {
	dataPath := getEnvOrDefault("DATA_PATH", "face_data.json")
	absDataPath, err := filepath.Abs(dataPath)
	if err != nil {
		return Config{}, fmt.Errorf("failed to get absolute path for data file '%s': %w", dataPath, err)
	}

	cascadePath := getEnvOrDefault("CASCADE_PATH", "./data/haarcascade_frontalface_default.xml")

	cfg := Config{
		DataPath:           absDataPath,
		CascadePath:        cascadePath,
		MinFaceSize:        getEnvIntOrDefault("MIN_FACE_SIZE", defaultMinFaceSize),
		BorderMargin:       getEnvIntOrDefault("BORDER_MARGIN", defaultBorderMargin),
		CanonicalFaceSize:  getEnvIntOrDefault("CANONICAL_FACE_SIZE", defaultCanonicalSize),
		MinCropSize:        getEnvIntOrDefault("MIN_CROP_SIZE", defaultMinCropSize),
		MatchThreshold:     getEnvFloatOrDefault("MATCH_THRESHOLD", defaultMatchThreshold),
		DuplicateThreshold: getEnvFloatOrDefault("DUPLICATE_THRESHOLD", defaultDuplicateThreshold),
		PreviewThreshold:   getEnvFloatOrDefault("PREVIEW_THRESHOLD", defaultPreviewThreshold),
		AmbiguityEpsilon:   getEnvFloatOrDefault("AMBIGUITY_EPSILON", defaultAmbiguityEpsilon),
		RequiredShots:      getEnvIntOrDefault("REQUIRED_SHOTS", defaultRequiredShots),
		MinSharpness:       getEnvFloatOrDefault("MIN_SHARPNESS", defaultMinSharpness),
		MaxCenterOffset:    getEnvFloatOrDefault("MAX_CENTER_OFFSET", defaultMaxCenterOffset),
		AbsenceTimeout:     getEnvDurationOrDefault("ABSENCE_TIMEOUT", 30*time.Second),
		SweepInterval:      getEnvDurationOrDefault("SWEEP_INTERVAL", 5*time.Second),
		AdminKeyHash:       os.Getenv("ADMIN_KEY_HASH"),
	}

	return cfg, nil
}
