package cfg

import (
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	if Version != "" {
		return Version
	}
	return "unknown"
}

type rawCfg struct {
	// Source configuration
	SourceURL  string `long:"source-url" env:"SOURCE_URL" default:"https://20.detik.com/detikupdate" description:"Video source listing URL (HTML page or RSS feed)"`
	SourceKind string `long:"source-kind" env:"SOURCE_KIND" default:"html" choice:"html" choice:"rss" description:"How the source is read"`

	// Pipeline configuration
	PollInterval   int    `long:"poll-interval" env:"POLL_INTERVAL" default:"7200" description:"Seconds between discovery cycles"`
	CooldownDelay  int    `long:"cooldown-delay" env:"COOLDOWN_DELAY" default:"300" description:"Seconds to wait after a failed cycle before retrying"`
	UploadDelay    int    `long:"upload-delay" env:"UPLOAD_DELAY" default:"30" description:"Seconds to wait between uploads to different destinations"`
	ReelMaxSeconds int    `long:"reel-max-seconds" env:"REEL_MAX_SECONDS" default:"60" description:"Videos up to this many seconds are published as reels"`
	DownloadDir    string `long:"download-dir" env:"DOWNLOAD_DIR" default:"./downloaded_videos" description:"Directory for transient video files"`
	LedgerPath     string `long:"ledger-path" env:"LEDGER_PATH" default:"./posted_videos.json" description:"Path to the posted-videos ledger file"`
	PagesPath      string `long:"pages-path" env:"PAGES_PATH" default:"./pages.yml" description:"Path to the destination pages configuration file"`

	// HTTP server configuration
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP status server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, Asia/Jakarta)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
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
		SourceURL:      raw.SourceURL,
		SourceKind:     raw.SourceKind,
		PollInterval:   raw.PollInterval,
		CooldownDelay:  raw.CooldownDelay,
		UploadDelay:    raw.UploadDelay,
		ReelMaxSeconds: raw.ReelMaxSeconds,
		DownloadDir:    raw.DownloadDir,
		LedgerPath:     raw.LedgerPath,
		PagesPath:      raw.PagesPath,
		Port:           raw.Port,
		APIAccessKey:   raw.APIAccessKey,
		UserAgent:      raw.UserAgent,
		Timezone:       raw.Timezone,
		Debug:          raw.Debug,
		Version:        GetVersion(),
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
