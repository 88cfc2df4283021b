package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ehr/shifthandoff/internal/config"
	"github.com/ehr/shifthandoff/internal/domain/assistant"
	"github.com/ehr/shifthandoff/internal/domain/handoff"
	"github.com/ehr/shifthandoff/internal/domain/nurse"
	"github.com/ehr/shifthandoff/internal/domain/patient"
	"github.com/ehr/shifthandoff/internal/platform/clock"
	"github.com/ehr/shifthandoff/internal/platform/middleware"
	"github.com/ehr/shifthandoff/internal/platform/speech"
	"github.com/ehr/shifthandoff/internal/platform/websocket"
	"github.com/ehr/shifthandoff/internal/seed"
)

const version = "0.1.0"

func main() {
	rootCmd := &cobra.Command{
		Use:   "handoff-server",
		Short: "Nursing shift handoff API server",
	}

	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(patientsCmd())
	rootCmd.AddCommand(askCmd())
	rootCmd.AddCommand(clockCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the handoff API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer()
		},
	}
}

func patientsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patients",
		Short: "Print the seeded census in handoff order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			sortFlag, _ := cmd.Flags().GetString("sort")
			filterFlag, _ := cmd.Flags().GetString("filter")
			query, _ := cmd.Flags().GetString("query")

			sortMode, err := patient.ParseSortMode(sortFlag)
			if err != nil {
				return err
			}
			filter, err := patient.ParseFilterKind(filterFlag)
			if err != nil {
				return err
			}
			a, err := newApp(cfg, zerolog.Nop())
			if err != nil {
				return err
			}
			defer a.hub.Close()
			ps, err := a.patients.List(cmd.Context(), patient.ListParams{Sort: sortMode, Filter: filter, Query: query})
			if err != nil {
				return err
			}
			return printCensus(cmd.OutOrStdout(), a.patients.Views(ps))
		},
	}
	cmd.Flags().String("sort", "priority", "Sort mode: priority, acuity, room or name")
	cmd.Flags().String("filter", "all", "Filter: all, critical, alerts or followup")
	cmd.Flags().String("query", "", "Search name, room or diagnosis")
	return cmd
}

func printCensus(w io.Writer, views []*patient.View) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tROOM\tACUITY\tRISK\tTIER\tNEXT MED\tVITALS")
	for _, v := range views {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%s\t%s\t%s\t%s\n",
			v.ID, v.Name, v.Room, v.AcuityLevel, v.RiskLevel, v.Tier, v.NextMedIn, v.VitalsTakenAgo)
	}
	return tw.Flush()
}

func askCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ask [message]",
		Short: "Ask the rule-based assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			kb, _ := cmd.Flags().GetString("kb")
			seedVal, _ := cmd.Flags().GetInt64("seed")
			r := assistant.NewResponder(assistant.NewRand(seedVal), zerolog.Nop())
			reply, err := r.Respond(kb, strings.Join(args, " "))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), reply.Text)
			return nil
		},
	}
	cmd.Flags().String("kb", "nursing", "Knowledge base: general or nursing")
	cmd.Flags().Int64("seed", 0, "Random seed for fallback replies (0 = time-seeded)")
	return cmd
}

func clockCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clock",
		Short: "Print the facility time and current shift period",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			loc, err := cfg.Location()
			if err != nil {
				return err
			}
			r := clock.New(loc).Read()
			fmt.Fprintf(cmd.OutOrStdout(), "%s  %s shift (%s)\n", r.Now.Format(time.Kitchen), r.ShiftPeriod, r.TimeZone)
			return nil
		},
	}
}

func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	lvl, _ := cfg.Level()
	return logger.Level(lvl)
}

// app is the wired server: repositories, services and the echo instance.
type app struct {
	echo     *echo.Echo
	hub      *websocket.Hub
	clock    *clock.Clock
	ticker   *clock.Ticker
	patients *patient.Service
	handoffs *handoff.Service
}

func newApp(cfg *config.Config, logger zerolog.Logger) (*app, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	clk := clock.New(loc)

	bundle, err := seed.LoadFile(cfg.SeedFile, clk.Now())
	if err != nil {
		return nil, err
	}

	hub := websocket.NewHub(logger)

	patientRepo := patient.NewMemoryRepository(bundle.Patients)
	patientSvc := patient.NewService(patientRepo, patientRepo, patientRepo, patientRepo, patientRepo, logger)
	patientSvc.SetClock(clk.Now)

	handoffSvc := handoff.NewService(handoff.NewMemoryRepository(), patientSvc, logger)
	handoffSvc.SetClock(clk.Now)
	handoffSvc.SetLocation(loc)
	handoffSvc.SetEventPublisher(hub)
	handoffSvc.SetActivityRecorder(patientSvc)

	nurseRepo := nurse.NewMemoryRepository(bundle.Nurses)
	nurseSvc := nurse.NewService(nurseRepo, nurseRepo, nurseRepo, logger)
	nurseSvc.SetClock(clk.Now)

	speechProvider := speech.NewProvider(cfg.SpeechEnabled, cfg.SpeechLanguage, logger)
	responder := assistant.NewResponder(assistant.NewRand(cfg.AssistantRandSeed), logger)
	responder.SetClock(clk.Now)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	// Global middleware
	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(middleware.Audit(logger))
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.Sanitize())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch},
		AllowHeaders: []string{"Content-Type", middleware.RequestIDHeader, middleware.NurseIDHeader},
	}))

	apiV1 := e.Group("/api/v1")
	apiV1.Use(middleware.RateLimit(middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
	}))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":  "ok",
			"version": version,
			"clients": hub.ClientCount(),
		})
	})
	apiV1.GET("/clock", func(c echo.Context) error {
		return c.JSON(http.StatusOK, clk.Read())
	})

	patient.NewHandler(patientSvc).RegisterRoutes(apiV1)
	handoff.NewHandler(handoffSvc).RegisterRoutes(apiV1)
	nurse.NewHandler(nurseSvc).RegisterRoutes(apiV1)
	assistant.NewHandler(responder, speechProvider).RegisterRoutes(apiV1)
	websocket.NewWebSocketHandler(hub, cfg.CORSOrigins).RegisterRoutes(apiV1)

	return &app{
		echo:     e,
		hub:      hub,
		clock:    clk,
		ticker:   clock.NewTicker(clk, hub, cfg.ClockTick, logger),
		patients: patientSvc,
		handoffs: handoffSvc,
	}, nil
}

func runServer() error {
	// Config
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger := newLogger(cfg)
	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go a.ticker.Run(ctx)

	// Graceful shutdown
	go func() {
		addr := ":" + cfg.Port
		logger.Info().Str("addr", addr).Str("time_zone", a.clock.Location().String()).Msg("starting server")
		if err := a.echo.Start(addr); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("server error")
		}
	}()

	<-ctx.Done()

	logger.Info().Msg("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.hub.Close()
	if err := a.echo.Shutdown(shutdownCtx); err != nil {
		logger.Fatal().Err(err).Msg("server shutdown failed")
	}
	logger.Info().Msg("server stopped")
	return nil
}
