package main

import (
	"log"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/venuedesk/room-checkin/internal/config"
	"github.com/venuedesk/room-checkin/internal/database"
	"github.com/venuedesk/room-checkin/internal/handler"
	"github.com/venuedesk/room-checkin/internal/logging"
	"github.com/venuedesk/room-checkin/internal/middleware"
	"github.com/venuedesk/room-checkin/internal/queue"
	"github.com/venuedesk/room-checkin/internal/repository"
	"github.com/venuedesk/room-checkin/internal/router"
	"github.com/venuedesk/room-checkin/internal/service"
	"github.com/venuedesk/room-checkin/internal/utils"
)

func main() {
	_ = godotenv.Load() // .env is optional; real deployments set env directly
	logging.Setup()

	cfg := config.Load()

	db, err := database.Open(database.Config{
		Driver: cfg.DBDriver,
		User:   cfg.DBUser,
		Pass:   cfg.DBPass,
		Host:   cfg.DBHost,
		Port:   cfg.DBPort,
		Name:   cfg.DBName,
		Path:   cfg.DBPath,
	})
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	// The operator password arrives as plaintext in the environment; hash
	// it once at startup so login compares against a bcrypt digest.
	passwordHash, err := utils.HashPassword(cfg.OperatorPassword, cfg.BcryptCost)
	if err != nil {
		log.Fatalf("hash operator password: %v", err)
	}

	attendeeRepo := repository.NewAttendeeRepo(db)
	roomRepo := repository.NewRoomRepo(db)
	assignmentRepo := repository.NewAssignmentRepo(db)
	checkInRepo := repository.NewCheckInRepo(db)

	occupancy := service.NewOccupancy(db, attendeeRepo, roomRepo, assignmentRepo, checkInRepo, queue.PublishOccupancyEvent)
	importer := service.NewImporter(attendeeRepo)

	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.Use(echomw.Recover())

	api := router.API{
		Attendees: handler.NewAttendeeHandler(attendeeRepo, assignmentRepo, importer),
		Rooms:     handler.NewRoomHandler(roomRepo, assignmentRepo, checkInRepo),
		Assign:    handler.NewAssignmentHandler(assignmentRepo, attendeeRepo, roomRepo),
		CheckIns:  handler.NewCheckInHandler(occupancy),
		Dashboard: handler.NewDashboardHandler(attendeeRepo, roomRepo, checkInRepo, cfg.DashboardRecent),
	}

	// Redis is optional. Without it the API still serves every route,
	// just without the scanner rate limit and the response cache.
	if rdb := config.NewRedisClient(); rdb != nil {
		if rl := config.LoadRateLimitConfig(); rl.Enabled {
			api.RateLimit = middleware.NewTokenBucket(rl, rdb)
		}
		if cc := config.LoadCacheConfig(); cc.Enabled {
			api.Cache = middleware.NewRedisCache(cc, rdb)
		}
	}

	router.RegisterRoutes(e)
	router.RegisterAuth(e, handler.NewAuthHandler(cfg.OperatorEmail, passwordHash, cfg.JWTSecret, cfg.AccessTTLMin))
	router.RegisterAPI(e, api, cfg.JWTSecret)

	// The audit consumer drains occupancy events into the log file. It
	// reconnects on its own; a missing broker only costs the audit trail.
	go func() {
		if err := queue.StartOccupancyConsumer(); err != nil {
			slog.Warn("occupancy consumer stopped", "error", err)
		}
	}()

	addr := ":" + cfg.Port
	slog.Info("listening", "addr", addr, "env", cfg.Env, "db_driver", db.Driver())
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
