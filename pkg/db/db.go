package db

import (
	"fmt"
	"sync"
	"time"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const (
	DriverPostgres = "postgres"
	DriverMySQL    = "mysql"
)

var (
	DB   *gorm.DB
	once sync.Once
)

type Config struct {
	Driver    string
	DSN       string // 直接指定时忽略其他字段
	User      string
	Password  string
	Host      string
	Port      string
	DBName    string
	SSLMode   string // postgres
	Charset   string // mysql, optional
	Loc       string // mysql, optional
	ParseTime bool   // mysql, optional
}

func NewConfig(driver, user, password, host, port, dbName string) Config {
	return Config{
		Driver:    driver,
		User:      user,
		Password:  password,
		Host:      host,
		Port:      port,
		DBName:    dbName,
		SSLMode:   "disable",
		Charset:   "utf8mb4",
		Loc:       "Local",
		ParseTime: true,
	}
}

func (cfg Config) address() string {
	if cfg.Port == "" {
		return cfg.Host
	}
	return fmt.Sprintf("%s:%s", cfg.Host, cfg.Port)
}

func (cfg Config) BuildDSN() string {
	if cfg.DSN != "" {
		return cfg.DSN
	}
	if cfg.Driver == DriverMySQL {
		charset := cfg.Charset
		if charset == "" {
			charset = "utf8mb4"
		}
		loc := cfg.Loc
		if loc == "" {
			loc = "Local"
		}
		return fmt.Sprintf(
			"%s:%s@tcp(%s)/%s?charset=%s&parseTime=%t&loc=%s",
			cfg.User, cfg.Password, cfg.address(), cfg.DBName, charset, cfg.ParseTime, loc,
		)
	}

	sslMode := cfg.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	port := cfg.Port
	if port == "" {
		port = "5432"
	}
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s TimeZone=UTC",
		cfg.Host, port, cfg.User, cfg.Password, cfg.DBName, sslMode,
	)
}

func dialector(cfg Config) (gorm.Dialector, error) {
	switch cfg.Driver {
	case DriverMySQL:
		return mysql.Open(cfg.BuildDSN()), nil
	case DriverPostgres, "":
		return postgres.Open(cfg.BuildDSN()), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// Init 建立全局连接，只执行一次
func Init(cfg Config) (*gorm.DB, error) {
	var initErr error
	once.Do(func() {
		d, err := dialector(cfg)
		if err != nil {
			initErr = err
			return
		}
		DB, err = gorm.Open(d, &gorm.Config{
			Logger:         logger.Default.LogMode(logger.Warn),
			TranslateError: true,
		})
		if err != nil {
			initErr = fmt.Errorf("failed to connect to database: %w", err)
			return
		}

		// Set connection pool
		sqlDB, err := DB.DB()
		if err != nil {
			initErr = err
			return
		}
		sqlDB.SetMaxIdleConns(10)
		sqlDB.SetMaxOpenConns(100)
		sqlDB.SetConnMaxLifetime(time.Hour)
	})
	if initErr != nil {
		return nil, initErr
	}
	if DB == nil {
		return nil, fmt.Errorf("database not initialized")
	}
	return DB, nil
}

// Close 关闭连接池
func Close() error {
	if DB == nil {
		return nil
	}
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
