package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/time/rate"

	"github.com/jwalitptl/clinic-api/internal/config"
	appointmentHandler "github.com/jwalitptl/clinic-api/internal/handler/appointment"
	auditHandler "github.com/jwalitptl/clinic-api/internal/handler/audit"
	authHandler "github.com/jwalitptl/clinic-api/internal/handler/auth"
	doctorHandler "github.com/jwalitptl/clinic-api/internal/handler/doctor"
	emergencyHandler "github.com/jwalitptl/clinic-api/internal/handler/emergency"
	guardianHandler "github.com/jwalitptl/clinic-api/internal/handler/guardian"
	"github.com/jwalitptl/clinic-api/internal/handler/health"
	homeVisitHandler "github.com/jwalitptl/clinic-api/internal/handler/homevisit"
	medicationHandler "github.com/jwalitptl/clinic-api/internal/handler/medication"
	patientHandler "github.com/jwalitptl/clinic-api/internal/handler/patient"
	prescriptionHandler "github.com/jwalitptl/clinic-api/internal/handler/prescription"
	promHandler "github.com/jwalitptl/clinic-api/internal/handler/prometheus"
	"github.com/jwalitptl/clinic-api/internal/middleware"
	"github.com/jwalitptl/clinic-api/internal/repository/postgres"
	"github.com/jwalitptl/clinic-api/internal/router"
	"github.com/jwalitptl/clinic-api/internal/service/account"
	"github.com/jwalitptl/clinic-api/internal/service/appointment"
	"github.com/jwalitptl/clinic-api/internal/service/audit"
	authService "github.com/jwalitptl/clinic-api/internal/service/auth"
	"github.com/jwalitptl/clinic-api/internal/service/doctor"
	"github.com/jwalitptl/clinic-api/internal/service/emergency"
	"github.com/jwalitptl/clinic-api/internal/service/guardian"
	"github.com/jwalitptl/clinic-api/internal/service/homevisit"
	"github.com/jwalitptl/clinic-api/internal/service/medication"
	"github.com/jwalitptl/clinic-api/internal/service/notification"
	"github.com/jwalitptl/clinic-api/internal/service/patient"
	"github.com/jwalitptl/clinic-api/internal/service/prescription"
	"github.com/jwalitptl/clinic-api/pkg/auth"
	"github.com/jwalitptl/clinic-api/pkg/logger"
	"github.com/jwalitptl/clinic-api/pkg/messaging"
	"github.com/jwalitptl/clinic-api/pkg/messaging/memory"
	"github.com/jwalitptl/clinic-api/pkg/messaging/redis"
	"github.com/jwalitptl/clinic-api/pkg/metrics"
	"github.com/jwalitptl/clinic-api/pkg/security"
	"github.com/jwalitptl/clinic-api/pkg/validator"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(os.Getenv("LOG_LEVEL")),
		TimeFormat: time.RFC3339,
		Output:     os.Stdout,
		JSON:       cfg.Server.Mode == "release",
	})

	if err := validator.Register(); err != nil {
		log.Fatal().Err(err).Msg("failed to register validators")
	}

	// Initialize database
	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		collectors.NewDBStatsCollector(db.DB, cfg.Database.Name),
	)
	m := metrics.NewMetrics(registry, "clinic")

	checks := map[string]health.Check{
		"database": postgres.NewPinger(db).Ping,
	}

	// Redis backs token revocation and the broker; without it both stay in process.
	var (
		revocations auth.RevocationStore
		broker      messaging.Broker
	)
	if cfg.Redis.URL != "" {
		client, err := redis.NewClient(context.Background(), redis.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to redis")
		}
		revocations = auth.NewRedisRevocationStore(client)
		broker = redis.NewRedisBroker(client, &log.Logger)
		checks["redis"] = pingRedis(client)
	} else {
		log.Warn().Msg("redis url not set, using in-memory revocation store and broker")
		revocations = auth.NewMemoryRevocationStore()
		broker = memory.NewBroker()
	}
	defer broker.Close()

	// Initialize repositories
	users := postgres.NewUserRepository(db)
	doctors := postgres.NewDoctorRepository(db)
	guardians := postgres.NewGuardianRepository(db)
	patients := postgres.NewPatientRepository(db)
	appointments := postgres.NewAppointmentRepository(db)
	homeVisits := postgres.NewHomeVisitRepository(db)
	medications := postgres.NewMedicationRepository(db)
	prescriptions := postgres.NewPrescriptionRepository(db)
	emergencies := postgres.NewEmergencyRepository(db)
	audits := postgres.NewAuditRepository(db)

	// Initialize services
	hasher := security.NewBcryptHasher(bcrypt.DefaultCost)
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.Expiry())
	auditSvc := audit.NewService(audits, appLogger)
	notifier := notification.NewService(broker, appLogger, m)
	accounts := account.NewService(users, doctors, guardians, hasher)

	authSvc := authService.NewService(users, accounts, jwtSvc, revocations, hasher, auditSvc)
	appointmentSvc := appointment.NewService(appointments, patients, doctors, notifier, auditSvc, m)
	homeVisitSvc := homevisit.NewService(homeVisits, patients, doctors, notifier, auditSvc, m)
	doctorSvc := doctor.NewService(doctors, appointments, accounts, auditSvc, cfg.Cache.TTL)
	guardianSvc := guardian.NewService(guardians, patients, accounts, auditSvc)
	patientSvc := patient.NewService(patients, guardians, doctors, appointments, prescriptions, accounts, auditSvc)
	medicationSvc := medication.NewService(medications, auditSvc, cfg.Cache.TTL)
	prescriptionSvc := prescription.NewService(prescriptions, patients, doctors, medications, appointments, auditSvc)
	emergencySvc := emergency.NewService(emergencies, patients, doctors, guardians, notifier, auditSvc)

	handlers := router.Handlers{
		Auth:         authHandler.NewHandler(authSvc),
		Appointment:  appointmentHandler.NewHandler(appointmentSvc),
		HomeVisit:    homeVisitHandler.NewHandler(homeVisitSvc),
		Patient:      patientHandler.NewHandler(patientSvc),
		Doctor:       doctorHandler.NewHandler(doctorSvc),
		Guardian:     guardianHandler.NewHandler(guardianSvc),
		Medication:   medicationHandler.NewHandler(medicationSvc),
		Prescription: prescriptionHandler.NewHandler(prescriptionSvc),
		Emergency:    emergencyHandler.NewHandler(emergencySvc),
		Audit:        auditHandler.NewHandler(auditSvc),
		Health:       health.NewHandler(checks),
	}
	if cfg.Metrics.Enabled {
		handlers.Metrics = promHandler.New(registry).At(cfg.Metrics.Path)
	}

	cors := middleware.DefaultCORSConfig()
	cors.AllowOrigins = cfg.CORS.AllowedOrigins
	cors.AllowMethods = cfg.CORS.AllowedMethods
	cors.AllowHeaders = cfg.CORS.AllowedHeaders

	r := router.NewRouter(middleware.NewAuthMiddleware(jwtSvc, revocations), handlers, m, router.RouterConfig{
		Mode:             cfg.Server.Mode,
		RateLimitEnabled: cfg.RateLimit.Enabled,
		RateLimit:        rate.Limit(cfg.RateLimit.RequestsPerSecond),
		RateBurst:        cfg.RateLimit.Burst,
		CORSConfig:       cors,
		Timeout:          time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		MaxBodyBytes:     middleware.DefaultMaxBodySize,
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}
}

func pingRedis(client *goredis.Client) health.Check {
	return func(ctx context.Context) error {
		return client.Ping(ctx).Err()
	}
}
