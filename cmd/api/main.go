// cmd/api/main.go
// Main entry point for the application.
// Bootstraps all components and starts the server.

package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gorilla/mux"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/unimatch/campusmatch-backend/internal/auth"
	"github.com/unimatch/campusmatch-backend/internal/common/database"
	"github.com/unimatch/campusmatch-backend/internal/config"
	"github.com/unimatch/campusmatch-backend/internal/swipe"
)

var startTime = time.Now()

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	log.Info("========================================")
	log.Info("Starting CampusMatch API")
	log.Info("========================================")

	// 1. Load environment variables
	log.Info("Step 1: Loading .env file...")
	if err := godotenv.Load(); err != nil {
		log.Warnf("No .env file found (%v), using environment variables", err)
	}

	// 2. Load and validate configuration
	log.Info("Step 2: Loading configuration...")
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Fatal("Configuration validation failed: ", err)
	}

	if level, err := logrus.ParseLevel(cfg.LogLevel); err == nil {
		log.SetLevel(level)
	}

	// 3. Connect to PostgreSQL
	log.Info("Step 3: Connecting to PostgreSQL...")
	db, err := database.NewPostgresDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatal("Failed to connect to PostgreSQL: ", err)
	}
	defer db.Close()
	log.Info("Connected to PostgreSQL")

	// 4. Connect to Redis (optional, used for token revocation)
	log.Info("Step 4: Connecting to Redis...")
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.NewRedisClient(cfg.RedisURL)
		if err != nil {
			log.Warnf("Redis unavailable (%v), token revocation disabled", err)
			redisClient = nil
		} else {
			defer redisClient.Close()
			log.Info("Connected to Redis")
		}
	} else {
		log.Info("Redis URL not configured, skipping Redis connection")
	}

	// 5. Run database migrations
	log.Info("Step 5: Running database migrations...")
	if err := runMigrations(db); err != nil {
		log.Fatal("Failed to run migrations: ", err)
	}
	log.Info("Database migrations completed")

	// 6. Initialize auth
	log.Info("Step 6: Initializing authentication...")
	authService := auth.NewService(redisClient, &auth.Config{
		JWTSecret:         cfg.JWTSecret,
		AccessTokenExpiry: cfg.AccessTokenExpiry,
		Issuer:            cfg.TokenIssuer,
	})
	authMiddleware := auth.NewMiddleware(authService)
	log.Info("Authentication initialized")

	// 7. Initialize swipe module
	log.Info("Step 7: Initializing swipe module...")
	swipeRepo := swipe.NewPostgresRepository(db)
	swipeService := swipe.NewService(swipeRepo, log)
	swipeHandler := swipe.NewHandler(swipeService, log)
	log.Info("Swipe module initialized")

	// 8. Setup routes
	log.Info("Step 8: Setting up routes...")
	router := mux.NewRouter()

	router.HandleFunc("/health", healthCheck).Methods("GET")
	if cfg.EnableMetrics {
		router.Handle("/metrics", promhttp.Handler()).Methods("GET")
	}

	swipe.RegisterRoutes(router, swipeHandler, authMiddleware)

	router.Use(loggingMiddleware(log))
	router.Use(corsMiddleware)

	// 9. Start background jobs
	schedulerCtx, stopScheduler := context.WithCancel(context.Background())
	defer stopScheduler()
	if cfg.EnableScheduler {
		scheduler := swipe.NewScheduler(swipeService, log)
		scheduler.Start(schedulerCtx)
		log.Info("Daily scheduler started")
	}

	// 10. Create and start HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Infof("Server starting on http://localhost%s (environment: %s)", srv.Addr, cfg.Environment)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server: ", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutdown signal received...")
	stopScheduler()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown: ", err)
	}

	log.Info("Server exited gracefully")
}

// healthCheck returns server health status
func healthCheck(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%q,"uptime":%q}`,
		time.Now().Format(time.RFC3339), time.Since(startTime).String())
}

// loggingMiddleware logs all requests
func loggingMiddleware(log *logrus.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(wrapped, r)

			log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.RequestURI,
				"status":   wrapped.statusCode,
				"duration": time.Since(start).String(),
				"remote":   r.RemoteAddr,
			}).Info("request completed")
		})
	}
}

// responseWriter wraps http.ResponseWriter to capture status code
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

// corsMiddleware handles CORS
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// runMigrations executes database migrations
func runMigrations(db *sqlx.DB) error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id SERIAL PRIMARY KEY,
			user_id UUID UNIQUE NOT NULL,
			display_name VARCHAR(100) NOT NULL,
			bio TEXT,
			gender VARCHAR(10) NOT NULL,
			date_of_birth DATE NOT NULL,
			interested_in VARCHAR(10) NOT NULL DEFAULT 'everyone',
			age_range_min INTEGER NOT NULL DEFAULT 18,
			age_range_max INTEGER NOT NULL DEFAULT 30,
			max_distance_km INTEGER NOT NULL DEFAULT 50,
			latitude DOUBLE PRECISION,
			longitude DOUBLE PRECISION,
			city VARCHAR(100),
			university_name VARCHAR(200),
			university_domain VARCHAR(100),
			department VARCHAR(100),
			year_of_study INTEGER,
			profile_image_url TEXT,
			photo_urls TEXT[] NOT NULL DEFAULT '{}',
			show_university BOOLEAN NOT NULL DEFAULT TRUE,
			show_distance BOOLEAN NOT NULL DEFAULT TRUE,
			show_on_app BOOLEAN NOT NULL DEFAULT TRUE,
			is_active BOOLEAN NOT NULL DEFAULT TRUE,
			is_completed BOOLEAN NOT NULL DEFAULT FALSE,
			is_photo_verified BOOLEAN NOT NULL DEFAULT FALSE,
			is_premium BOOLEAN NOT NULL DEFAULT FALSE,
			preferred_university_domain VARCHAR(100),
			preferred_city VARCHAR(100),
			preferred_department VARCHAR(100),
			daily_swipe_count INTEGER NOT NULL DEFAULT 0,
			swipe_count_reset_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			super_like_count INTEGER NOT NULL DEFAULT 1,
			total_match_count INTEGER NOT NULL DEFAULT 0,
			total_likes_received INTEGER NOT NULL DEFAULT 0,
			liked_users JSONB NOT NULL DEFAULT '[]',
			passed_users JSONB NOT NULL DEFAULT '[]',
			matched_users JSONB NOT NULL DEFAULT '[]',
			blocked_users JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP,
			updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,

		`CREATE INDEX IF NOT EXISTS idx_profiles_user_id ON profiles(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_visibility
			ON profiles(is_completed, is_active, show_on_app)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_date_of_birth ON profiles(date_of_birth)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_university_domain ON profiles(university_domain)`,
		`CREATE INDEX IF NOT EXISTS idx_profiles_city ON profiles(city)`,
	}

	for i, migration := range migrations {
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	return nil
}
