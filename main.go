package main

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/rs/cors"

	"github.com/facegate/backend/config"
	"github.com/facegate/backend/handlers"
	"github.com/facegate/backend/realtime"
	"github.com/facegate/backend/repository"
	"github.com/facegate/backend/services"
	"github.com/facegate/backend/vision"
	"github.com/facegate/backend/workers"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Info: No .env file found or error loading: %v", err)
	}
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("FATAL: Failed to load configuration: %v", err)
	}

	identityRepo, err := repository.NewFileIdentityRepository(cfg.DataPath)
	if err != nil {
		log.Fatalf("FATAL: Failed to initialize identity store: %v", err)
	}

	detector := vision.NewCascadeDetector(cfg.CascadePath, vision.DetectionPolicy{
		MinFaceSize:  cfg.MinFaceSize,
		BorderMargin: cfg.BorderMargin,
	})
	defer detector.Close()
	if !detector.Enabled {
		log.Fatalf("FATAL: Face detector unavailable, check CASCADE_PATH (%s)", cfg.CascadePath)
	}

	extractor := vision.NewExtractor(vision.ExtractorParams{
		CanonicalSize: cfg.CanonicalFaceSize,
		MinCropSize:   cfg.MinCropSize,
	})

	hub := realtime.NewHub()
	go hub.Run()

	tracker := services.NewAttendanceTracker(cfg.AbsenceTimeout)
	sweeper := workers.NewAbsenceSweeper(tracker, cfg.SweepInterval)
	defer sweeper.Stop()

	quality := vision.QualityParams{
		MinFaceSize:     cfg.MinFaceSize,
		MaxCenterOffset: cfg.MaxCenterOffset,
		MinSharpness:    cfg.MinSharpness,
	}
	enrollmentService := services.NewEnrollmentService(detector, extractor, identityRepo, quality, cfg.RequiredShots, cfg.DuplicateThreshold)
	recognitionService := services.NewRecognitionService(detector, extractor, identityRepo, tracker, hub,
		cfg.MatchThreshold, cfg.AmbiguityEpsilon, cfg.PreviewThreshold)

	log.Printf("Using identity store: %s", cfg.DataPath)
	log.Printf("Match threshold: %.2f, duplicate threshold: %.2f, required shots: %d",
		cfg.MatchThreshold, cfg.DuplicateThreshold, cfg.RequiredShots)

	r := chi.NewRouter()

	corsOptions := cors.Options{
		AllowedOrigins:   []string{"http://localhost:5173"}, //TODO: configurable
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Admin-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}
	corsHandler := cors.New(corsOptions)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(corsHandler.Handler)

	identityHandler := &handlers.IdentityHandler{Repo: identityRepo}
	enrollmentHandler := &handlers.EnrollmentHandler{Service: enrollmentService}
	recognitionHandler := &handlers.RecognitionHandler{Service: recognitionService}
	attendanceHandler := &handlers.AttendanceHandler{Tracker: tracker, OnReset: hub.PublishSessionStart}

	r.Route("/api", func(r chi.Router) {
		r.Route("/identities", func(r chi.Router) {
			r.Post("/", enrollmentHandler.RegisterIdentity)
			r.Get("/", identityHandler.ListIdentities)
			r.With(handlers.AdminKeyMiddleware(cfg.AdminKeyHash)).Delete("/{name}", identityHandler.DeleteIdentity)
		})

		r.Route("/faces", func(r chi.Router) {
			r.Post("/detect", recognitionHandler.DetectFaces)
			r.Post("/recognize", recognitionHandler.Recognize)
		})

		r.Route("/attendance", func(r chi.Router) {
			r.Get("/", attendanceHandler.ListAttendance)
			r.Get("/export", attendanceHandler.ExportAttendance)
			r.Post("/reset", attendanceHandler.ResetSession)
		})
	})

	r.Get("/ws", hub.ServeWS)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	serverAddr := ":" + port
	fmt.Printf("Server starting on http://localhost:%s\n", port)
	log.Printf("Server listening on %s", serverAddr)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  120 * time.Second,
	}
	log.Fatal(server.ListenAndServe())
}
