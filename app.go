package main

import (
	"context"
	"fmt"
	"time"

	"hotel-pms/auth"
	"hotel-pms/config"
	"hotel-pms/controllers"
	"hotel-pms/middleware"
	"hotel-pms/notify"
	"hotel-pms/ota"
	"hotel-pms/routes"
	"hotel-pms/services"
	"hotel-pms/store"
	"hotel-pms/utils"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// app holds every long-lived dependency built from the config.
type app struct {
	cfg *config.Config
	db  *gorm.DB

	tokens    *auth.Service
	store     store.SelectionStore
	publisher notify.Publisher

	hotels       *services.HotelService
	guests       *services.GuestService
	rooms        *services.RoomService
	reservations *services.ReservationService
	folios       *services.FolioService
	requests     *services.ServiceRequestService
	housekeeping *services.HousekeepingService
	fraud        *services.FraudService
	automation   *services.AutomationService
	users        *services.UserService
	roomFilter   *services.RoomFilterService
}

// loadConfig reads the configuration and applies the logging settings.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	config.SetupLogging(cfg.Server)
	return cfg, nil
}

func openDatabase(cfg *config.Config) (*gorm.DB, error) {
	db, err := config.ConnectDatabase(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("database connect failed: %w", err)
	}
	log.WithField("driver", cfg.Database.Driver).Info("✅ Database connection established")
	return db, nil
}

// newApp wires services. withRealtime connects redis and mqtt; commands
// that only touch the database skip them.
func newApp(cfg *config.Config, db *gorm.DB, withRealtime bool) *app {
	a := &app{
		cfg:       cfg,
		db:        db,
		tokens:    auth.NewService(cfg.JWT.Secret, cfg.JWT.Expiry),
		store:     store.NewMemoryStore(),
		publisher: notify.Noop{},
	}

	if withRealtime {
		if cfg.Redis.Addr != "" {
			rs := store.NewRedisStore(store.NewRedisClient(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB))
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			err := rs.Ping(ctx)
			cancel()
			if err != nil {
				log.WithError(err).Warn("⚠️  redis unreachable, room-filter state kept in memory")
				_ = rs.Close()
			} else {
				a.store = rs
				log.WithField("addr", cfg.Redis.Addr).Info("✅ Redis selection store connected")
			}
		}
		if cfg.MQTT.Broker != "" {
			pub, err := notify.NewMQTTPublisher(notify.MQTTConfig{
				Broker:   cfg.MQTT.Broker,
				ClientID: cfg.MQTT.ClientID,
				Username: cfg.MQTT.Username,
				Password: cfg.MQTT.Password,
			})
			if err != nil {
				log.WithError(err).Warn("⚠️  MQTT broker unreachable, tablets will poll")
			} else {
				a.publisher = pub
				log.WithField("broker", cfg.MQTT.Broker).Info("✅ MQTT publisher connected")
			}
		}
	}

	mailer := &utils.Mailer{
		Host:     cfg.SMTP.Host,
		Port:     cfg.SMTP.Port,
		Username: cfg.SMTP.Username,
		Password: cfg.SMTP.Password,
		FromName: cfg.SMTP.FromName,
	}

	a.hotels = services.NewHotelService(db)
	a.guests = services.NewGuestService(db, cfg.Server.UploadsDir)
	a.rooms = services.NewRoomService(db)
	a.reservations = services.NewReservationService(db, mailer, cfg.Server.FrontendURL)
	a.folios = services.NewFolioService(db)
	a.requests = services.NewServiceRequestService(db)
	a.housekeeping = services.NewHousekeepingService(db)
	a.fraud = services.NewFraudService(db)
	a.automation = services.NewAutomationService(db, a.rooms, a.fraud,
		ota.NewClient(cfg.OTA.Endpoint, cfg.OTA.APIKey, cfg.OTA.Timeout))
	a.users = services.NewUserService(db, a.tokens, mailer, cfg.Server.BcryptCost, cfg.Server.FrontendURL)
	a.roomFilter = services.NewRoomFilterService(a.store, a.publisher, a.rooms)
	return a
}

func (a *app) router(scheduler *services.Scheduler) (*gin.Engine, error) {
	if err := middleware.RegisterValidators(); err != nil {
		return nil, fmt.Errorf("register validators: %w", err)
	}
	ctrls := routes.Controllers{
		Auth:         controllers.NewAuthController(a.users),
		Hotels:       controllers.NewHotelController(a.hotels),
		Guests:       controllers.NewGuestController(a.guests),
		Reservations: controllers.NewReservationController(a.reservations),
		Rooms:        controllers.NewRoomController(a.rooms),
		RoomFilter:   controllers.NewRoomFilterController(a.roomFilter),
		Folios:       controllers.NewFolioController(a.folios),
		Operations:   controllers.NewOperationsController(a.requests, a.housekeeping, a.fraud),
		Automation:   controllers.NewAutomationController(a.automation, scheduler),
		Users:        controllers.NewUserController(a.users),
	}
	return routes.SetupRouter(ctrls, routes.Options{
		CORSOrigins: a.cfg.CORS.AllowedOrigins,
		UploadsDir:  a.cfg.Server.UploadsDir,
		Auth:        middleware.AuthMiddleware(a.tokens, a.users),
	}), nil
}

func (a *app) close() {
	a.publisher.Close()
	if err := a.store.Close(); err != nil {
		log.WithError(err).Warn("selection store close failed")
	}
	if sqlDB, err := a.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}
