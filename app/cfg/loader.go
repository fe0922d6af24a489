package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Database configuration
	DBHost     string `long:"db-host" env:"DB_HOST" default:"localhost" description:"Database host"`
	DBPort     string `long:"db-port" env:"DB_PORT" default:"5432" description:"Database port"`
	DBUser     string `long:"db-user" env:"DB_USER" default:"trendit_user" description:"Database user"`
	DBPassword string `long:"db-password" env:"DB_PASSWORD" default:"trendit_password" description:"Database password (required)" required:"true"`
	DBName     string `long:"db-name" env:"DB_NAME" default:"trendit" description:"Database name"`

	// Application configuration
	Port    string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	BaseUrl string `long:"base-url" env:"BASE_URL" default:"https://www.trendit.ai.kr" description:"Public base URL used in feed and sitemap links"`

	// Shared secrets
	AdminPassword string `long:"admin-password" env:"ADMIN_PASSWORD" default:"1234" description:"Admin login password, bypass key and comment master password"`
	RankingSecret string `long:"ranking-secret" env:"RANKING_SECRET" description:"Shared secret for the ranking ingestion endpoint (required)" required:"true"`

	// Object storage
	StorageURL    string `long:"storage-url" env:"STORAGE_URL" description:"Object storage base URL (Supabase Storage compatible)"`
	StorageKey    string `long:"storage-key" env:"STORAGE_KEY" description:"Object storage service key"`
	StorageBucket string `long:"storage-bucket" env:"STORAGE_BUCKET" default:"news-images" description:"Bucket holding uploaded article images"`

	// Background reconciliation
	ReconcileInterval int `long:"reconcile-interval" env:"RECONCILE_INTERVAL" default:"3600" description:"Image reconciliation interval in seconds (0 disables)"`
	WorkerCount       int `long:"worker-count" env:"WORKER_COUNT" default:"2" description:"Number of background task workers"`

	// Application metadata
	SiteTitle       string `long:"site-title" env:"SITE_TITLE" default:"트렌드IT - 대한민국 No.1 IT 뉴스" description:"Site title used in the RSS channel"`
	SiteDescription string `long:"site-description" env:"SITE_DESCRIPTION" default:"가장 빠른 IT 뉴스, 실시간 앱 랭킹, AI 및 테크 트렌드 분석을 제공합니다." description:"Site description used in the RSS channel"`
	Timezone        string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Seoul)"`
	Debug           bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBHost:            raw.DBHost,
		DBPort:            raw.DBPort,
		DBUser:            raw.DBUser,
		DBPassword:        raw.DBPassword,
		DBName:            raw.DBName,
		Port:              raw.Port,
		BaseUrl:           raw.BaseUrl,
		AdminPassword:     raw.AdminPassword,
		RankingSecret:     raw.RankingSecret,
		StorageURL:        raw.StorageURL,
		StorageKey:        raw.StorageKey,
		StorageBucket:     raw.StorageBucket,
		ReconcileInterval: raw.ReconcileInterval,
		WorkerCount:       raw.WorkerCount,
		SiteTitle:         raw.SiteTitle,
		SiteDescription:   raw.SiteDescription,
		Timezone:          raw.Timezone,
		Debug:             raw.Debug,
		Version:           GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
			fmt.Printf("Timezone configured: %s\n", timezone)
		}
	}
	return nil
}
