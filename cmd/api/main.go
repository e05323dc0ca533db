package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/clinicore/scheduler-api/config"
	"github.com/clinicore/scheduler-api/internal/handler"
	appointmentHandler "github.com/clinicore/scheduler-api/internal/handler/appointment"
	availabilityHandler "github.com/clinicore/scheduler-api/internal/handler/availability"
	doctorHandler "github.com/clinicore/scheduler-api/internal/handler/doctor"
	patientHandler "github.com/clinicore/scheduler-api/internal/handler/patient"
	scheduleHandler "github.com/clinicore/scheduler-api/internal/handler/schedule"
	"github.com/clinicore/scheduler-api/internal/middleware"
	"github.com/clinicore/scheduler-api/internal/repository/postgres"
	"github.com/clinicore/scheduler-api/internal/router"
	"github.com/clinicore/scheduler-api/internal/service/availability"
	"github.com/clinicore/scheduler-api/internal/service/booking"
	doctorService "github.com/clinicore/scheduler-api/internal/service/doctor"
	patientService "github.com/clinicore/scheduler-api/internal/service/patient"
	scheduleService "github.com/clinicore/scheduler-api/internal/service/schedule"
	"github.com/clinicore/scheduler-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	m := metrics.NewMetrics("clinicore", "scheduler")

	doctorRepo := postgres.NewDoctorRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	scheduleRepo := postgres.NewScheduleRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	engine := availability.NewService(scheduleRepo, appointmentRepo)
	bookingSvc := booking.NewService(appointmentRepo, engine, m)
	scheduleSvc := scheduleService.NewService(scheduleRepo, doctorRepo, engine)
	doctorSvc := doctorService.NewService(doctorRepo)
	patientSvc := patientService.NewService(patientRepo)

	r := router.NewRouter(
		handler.NewHandler(db),
		router.Config{
			RateLimit:     rate.Limit(cfg.RateLimit.RequestsPerSecond),
			RateBurst:     cfg.RateLimit.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "scheduler_http",
		},
		doctorHandler.NewHandler(doctorSvc),
		patientHandler.NewHandler(patientSvc),
		scheduleHandler.NewHandler(scheduleSvc),
		availabilityHandler.NewHandler(engine, m),
		appointmentHandler.NewHandler(bookingSvc),
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}
}
