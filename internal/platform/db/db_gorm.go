package db

import (
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Config はストア接続の設定です。
type Config struct {
	Driver string // "sqlite" または "postgres"
	DSN    string
}

// LoadConfig は環境変数から接続設定を読み込みます。
// 未指定の場合はカレントディレクトリのsqliteファイルを使います。
func LoadConfig() Config {
	if err := godotenv.Load(); err != nil {
		log.Println(".env ファイルが見つかりませんでした")
	}

	driver := os.Getenv("DB_DRIVER")
	if driver == "" {
		driver = "sqlite"
	}
	dsn := os.Getenv("DB_DSN")
	if dsn == "" && driver == "sqlite" {
		dsn = "./marketdata.db"
	}
	return Config{Driver: driver, DSN: dsn}
}

// BuildDialector は設定からgormのDialectorを組み立てます。
// 未知のドライバ名はsqliteとして扱います。
func BuildDialector(cfg Config) gorm.Dialector {
	switch cfg.Driver {
	case "postgres":
		return postgres.Open(cfg.DSN)
	default:
		return sqlite.Open(cfg.DSN)
	}
}

// OpenDB はストアへ接続します。起動直後のストア未準備に備えてリトライします。
func OpenDB(cfg Config) *gorm.DB {
	var (
		db  *gorm.DB
		err error
	)

	deadline := time.Now().Add(60 * time.Second)
	for {
		db, err = gorm.Open(BuildDialector(cfg), &gorm.Config{
			Logger: logger.Default.LogMode(logger.Warn),
		})
		if err == nil {
			break
		}
		if time.Now().After(deadline) {
			log.Fatalf("DB connect failed after 60s: %v", err)
		}
		log.Printf("DB connect failed, retrying...: %v", err)
		time.Sleep(3 * time.Second)
	}

	return db
}
