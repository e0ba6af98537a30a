package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/clarity-health/claimrisk/internal/cache"
	"github.com/clarity-health/claimrisk/internal/config"
	"github.com/clarity-health/claimrisk/internal/database"
	"github.com/clarity-health/claimrisk/internal/handlers"
	"github.com/clarity-health/claimrisk/internal/jobs"
	"github.com/clarity-health/claimrisk/internal/linker"
	"github.com/clarity-health/claimrisk/internal/middleware"
	"github.com/clarity-health/claimrisk/internal/patterns"
	"github.com/clarity-health/claimrisk/internal/phihash"
	"github.com/clarity-health/claimrisk/internal/push"
	"github.com/clarity-health/claimrisk/internal/repositories"
	"github.com/clarity-health/claimrisk/internal/risk"
	"github.com/clarity-health/claimrisk/internal/router"
	"github.com/clarity-health/claimrisk/internal/services"
	"github.com/clarity-health/claimrisk/internal/transform"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// claimRiskDeps bundles everything NewServer/NewServerWithConfig builds for
// the claim-risk domain, plus the audit middleware the top-level router
// registers ahead of every authenticated route.
type claimRiskDeps struct {
	router *router.ClaimRiskRouter
	audit  gin.HandlerFunc
	pool   *jobs.Pool
	sched  *jobs.Scheduler
}

// buildClaimRiskDeps wires repositories, the transformer/linker, the risk
// scorer and its factors, the pattern detector, the job dispatcher, and
// the push channel against a single *gorm.DB, then starts the worker pool
// and the nightly pattern-sweep scheduler. userRepo backs the RBAC role
// lookup middleware consults on every restricted request.
func buildClaimRiskDeps(db *gorm.DB, userRepo services.UserRepository, jwtService services.JWTService) *claimRiskDeps {
	payerRepo := repositories.NewPayerRepository(db)
	providerRepo := repositories.NewProviderRepository(db)
	claimRepo := repositories.NewClaimRepository(db)
	remittanceRepo := repositories.NewRemittanceRepository(db)
	episodeRepo := repositories.NewEpisodeRepository(db)
	patternRepo := repositories.NewPatternRepository(db)
	riskScoreRepo := repositories.NewRiskScoreRepository(db)
	auditLogRepo := repositories.NewAuditLogRepository(db)

	appCache := cache.New()
	hub := push.NewHub()

	encryptionKey := os.Getenv("ENCRYPTION_KEY")
	if encryptionKey == "" {
		encryptionKey = "dev-only-insecure-claimrisk-key-32b"
	}
	hasher := phihash.NewHasher(encryptionKey)

	episodeLinker := linker.NewLinker(claimRepo, episodeRepo, appCache, hub, nil)
	transformer := transform.NewTransformer(payerRepo, providerRepo, claimRepo, remittanceRepo, episodeLinker, hasher, appCache, hub)

	factors := []risk.Factor{
		risk.NewPayerFactor(0.20, nil),
		risk.NewCodingFactor(0.25, nil),
		risk.NewDocumentationFactor(0.20),
		risk.NewPatternMatchFactor(0.20),
		risk.NewMLFactor(0.15, nil),
	}
	scorer := risk.NewScorer(factors, riskScoreRepo, appCache, hub)

	detector := patterns.NewDetector(episodeRepo, patternRepo, patterns.DefaultConfig(), nil)

	pool := jobs.NewPool(jobs.DefaultWorkerCount, 256)
	pool.Start(context.Background())

	sched := jobs.NewScheduler()
	sched.Register(jobs.NewPatternSweepJob(payerRepo, detector, ""))
	if err := sched.Start(); err != nil {
		sched = nil
	}

	tracker := jobs.NewTracker()
	claimRiskHandler := handlers.NewClaimRiskHandler(transformer, episodeLinker, claimRepo, episodeRepo, remittanceRepo, patternRepo, riskScoreRepo, auditLogRepo, scorer, detector, pool, tracker)
	systemHandler := handlers.NewSystemHandler(appCache, hub)
	claimRiskRouter := router.NewClaimRiskRouter(claimRiskHandler, systemHandler, jwtService, userRepo)

	audit := middleware.Audit(auditLogRepo, hasher)

	return &claimRiskDeps{router: claimRiskRouter, audit: audit, pool: pool, sched: sched}
}

type Server struct {
	port int
}

func NewServer() (*http.Server, error) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080 // Default port
	}

	// Initialize GORM database service (legacy)
	gormService, err := database.NewGormService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services
	passwordService := services.NewPasswordService()
	jwtService, err := services.NewJWTService()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Initialize repositories
	userRepo := repositories.NewUserRepository(gormService.GetDB())
	tokenRepo := repositories.NewTokenRepository(gormService.GetDB())

	// Initialize services with proper dependencies
	authService := services.NewAuthService(userRepo, tokenRepo, passwordService, jwtService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)

	// Initialize claim-risk domain wiring
	claimRisk := buildClaimRiskDeps(gormService.GetDB(), userRepo, jwtService)

	// Initialize main router
	appRouter := router.NewRouter(authHandler, claimRisk.router, jwtService, claimRisk.audit, config.ParseCORSOrigins(os.Getenv("CORS_ORIGINS")))

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", port),
		Handler:      appRouter.SetupRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server, nil
}

// NewServerWithConfig creates a new HTTP server using configuration
func NewServerWithConfig(cfg *config.Config) (*http.Server, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}

	// Initialize database service with config
	dbService, err := config.NewDatabaseService(&cfg.Database, &cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize services with config
	passwordService := services.NewPasswordService()
	jwtService, err := services.NewJWTServiceFromConfig(&cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	// Initialize repositories
	db := dbService.GetDB()
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewTokenRepository(db)

	// Initialize services with proper dependencies
	authService := services.NewAuthService(userRepo, tokenRepo, passwordService, jwtService)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(authService)

	// Initialize claim-risk domain wiring
	claimRisk := buildClaimRiskDeps(db, userRepo, jwtService)

	// Initialize main router
	appRouter := router.NewRouter(authHandler, claimRisk.router, jwtService, claimRisk.audit, cfg.Server.CORSOrigins)

	// Create server service for configuration
	serverService := config.NewServerService(&cfg.Server)

	// Create HTTP server using configuration
	server := serverService.CreateServer(appRouter.SetupRoutes())

	return server, nil
}
