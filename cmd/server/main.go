package main

import (
	"log"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/mockexam/backend/internal/analytics"
	"github.com/mockexam/backend/internal/attempts"
	"github.com/mockexam/backend/internal/auth"
	"github.com/mockexam/backend/internal/catalog"
	"github.com/mockexam/backend/internal/database"
	"github.com/mockexam/backend/internal/middleware"
	"github.com/rs/cors"
	"github.com/shopspring/decimal"
)

func main() {
	// Scores and marks serialize as JSON numbers, not strings.
	decimal.MarshalJSONWithoutQuotes = true

	// Initialize database
	db, err := database.Connect()
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize stores and services
	catalogStore := catalog.NewStore(db)
	attemptStore := attempts.NewStore(db)
	analyticsStore := analytics.NewStore(db)

	analyticsService := analytics.NewService(analyticsStore)
	attemptService := attempts.NewService(attemptStore, catalogStore)
	attemptService.SetAnalyticsService(analyticsService)

	// Initialize handlers
	authHandler := auth.NewHandler(db)
	catalogHandler := catalog.NewHandler(catalogStore)
	attemptHandler := attempts.NewHandler(attemptService)
	analyticsHandler := analytics.NewHandler(analyticsService)

	// Setup router
	r := mux.NewRouter()
	api := r.PathPrefix("/api/v1").Subrouter()

	// Public routes
	api.HandleFunc("/auth/register", authHandler.Register).Methods("POST")
	api.HandleFunc("/auth/login", authHandler.Login).Methods("POST")

	// Protected routes
	protected := api.PathPrefix("").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", authHandler.GetCurrentUser).Methods("GET")

	protected.HandleFunc("/series", catalogHandler.ListSeries).Methods("GET")
	protected.HandleFunc("/tests/{id}", catalogHandler.GetTest).Methods("GET")

	protected.HandleFunc("/tests/{id}/resume", attemptHandler.Resume).Methods("GET")
	protected.HandleFunc("/tests/{id}/save-progress", attemptHandler.SaveProgress).Methods("POST")
	protected.HandleFunc("/tests/{id}/submit", attemptHandler.Submit).Methods("POST")
	protected.HandleFunc("/results/{id}", attemptHandler.GetResult).Methods("GET")

	protected.HandleFunc("/tests/{id}/leaderboard", analyticsHandler.GetLeaderboard).Methods("GET")
	protected.HandleFunc("/dashboard", analyticsHandler.GetDashboard).Methods("GET")

	// Health check
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	}).Methods("GET")

	// CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(r)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on :%s", port)
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
