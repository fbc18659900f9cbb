package config

import (
	"errors"
	"fmt"
	stdlog "log"
	"net/url"
	"strings"
	"time"

	"hotel-pms/auth"
	"hotel-pms/models"
	"hotel-pms/utils"

	log "github.com/sirupsen/logrus"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func mysqlDSNFromURL(raw string) (string, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}

	user := u.User.Username()
	pass, _ := u.User.Password()
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "3306"
	}

	dbName := strings.TrimPrefix(u.Path, "/")
	if dbName == "" {
		return "", fmt.Errorf("mysql url missing database name")
	}

	q := u.Query()
	if q.Get("charset") == "" {
		q.Set("charset", "utf8mb4")
	}
	if q.Get("parseTime") == "" {
		q.Set("parseTime", "True")
	}
	if q.Get("loc") == "" {
		q.Set("loc", "UTC")
	}

	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?%s", user, pass, host, port, dbName, q.Encode()), nil
}

// dialector picks the gorm dialector for the configured driver.
func dialector(cfg DatabaseConfig) (gorm.Dialector, error) {
	raw := strings.TrimSpace(cfg.URL)

	switch cfg.Driver {
	case "postgres":
		if raw == "" {
			raw = fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable TimeZone=UTC",
				cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.Name)
		}
		return postgres.Open(raw), nil

	case "sqlite":
		if raw == "" {
			raw = cfg.Name + ".db"
		}
		return sqlite.Open(raw), nil

	case "mysql", "":
		if raw != "" {
			if strings.HasPrefix(raw, "mysql://") {
				dsn, err := mysqlDSNFromURL(raw)
				if err != nil {
					return nil, err
				}
				return mysql.Open(dsn), nil
			}
			return mysql.Open(raw), nil
		}
		dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.Name)
		return mysql.Open(dsn), nil
	}
	return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
}

// ConnectDatabase opens the pool and tunes it.
func ConnectDatabase(cfg DatabaseConfig) (*gorm.DB, error) {
	dial, err := dialector(cfg)
	if err != nil {
		return nil, err
	}

	level := logger.Warn
	if cfg.LogSQL {
		level = logger.Info
	}
	gormLogger := logger.New(
		stdlog.New(log.StandardLogger().Writer(), "", 0),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  level,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)

	db, err := gorm.Open(dial, &gorm.Config{
		Logger:         gormLogger,
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("cannot get raw sql.DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	return db, nil
}

// AutoMigrate in parent->child order
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&models.User{},
		&models.Hotel{},
		&models.Room{},
		&models.Guest{},
		&models.Reservation{},
		&models.Folio{},
		&models.LineItem{},
		&models.ServiceRequest{},
		&models.HousekeepingTask{},
		&models.FraudAlert{},
		&models.AutomationConfig{},
		&models.AutomationRun{},
	)
}

// SeedDatabase creates the bootstrap admin, a default hotel and the
// automation config when their tables are empty.
func SeedDatabase(db *gorm.DB, seed SeedConfig, bcryptCost int) error {
	// ---------------- Users ----------------
	var userCount int64
	if err := db.Model(&models.User{}).Count(&userCount).Error; err != nil {
		return err
	}
	if userCount == 0 {
		password := seed.AdminPassword
		if password == "" {
			generated, err := utils.GenerateSecureToken(12)
			if err != nil {
				return fmt.Errorf("generate admin password: %w", err)
			}
			password = generated
			log.WithField("password", password).Warn("SEED_ADMIN_PASSWORD empty, generated a one-time admin password")
		}
		hash, err := auth.HashPassword(password, bcryptCost)
		if err != nil {
			return fmt.Errorf("hash default admin password: %w", err)
		}
		admin := models.User{
			Username:    seed.AdminUsername,
			Password:    hash,
			FullName:    "System Administrator",
			Role:        models.RoleSystemAdmin,
			Active:      true,
			AccessLevel: "FULL",
		}
		if err := db.Create(&admin).Error; err != nil {
			return fmt.Errorf("create default admin: %w", err)
		}
		log.WithField("username", admin.Username).Info("default system admin seeded")
	}

	// ---------------- Hotel ----------------
	var hotelCount int64
	if err := db.Model(&models.Hotel{}).Count(&hotelCount).Error; err != nil {
		return err
	}
	if hotelCount == 0 {
		hotel := models.Hotel{Name: "Main Hotel", Address: "-", Phone: "-", Email: "frontdesk@hotel.local"}
		if err := db.Create(&hotel).Error; err != nil {
			return fmt.Errorf("create default hotel: %w", err)
		}
		log.Info("default hotel seeded")
	}

	// ---------------- Automation ----------------
	var cfg models.AutomationConfig
	err := db.First(&cfg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		cfg = models.DefaultAutomationConfig()
		if err := db.Create(&cfg).Error; err != nil {
			return fmt.Errorf("create automation config: %w", err)
		}
		log.Info("automation config seeded")
	} else if err != nil {
		return err
	}

	return nil
}
