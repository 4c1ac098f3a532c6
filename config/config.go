package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"sjsage522/newsextractor/logger"
	apperrors "sjsage522/newsextractor/pkg/errors"

	"gopkg.in/yaml.v3"
)

// DateType selects how the search date window is computed
type DateType string

const (
	// SpecificDates limits results to the current calendar month
	SpecificDates DateType = "SpecificDates"
	// RollingMonths spans the current month plus prior whole months
	RollingMonths DateType = "RollingMonths"
)

// Config represents the application configuration
type Config struct {
	// Search configuration
	URL          string
	SearchPhrase string
	Section      string
	DateType     DateType
	Months       int
	ShowMore     int

	// Output paths
	OutputExcel   string
	PictureOutput string
	LogFile       string

	// Browser configuration; empty ChromeAddr launches a local headless Chrome
	ChromeAddr string

	// Memcache configuration; empty keeps the image cache in memory
	MemcacheAddr string

	// Redis configuration; empty disables record publication
	RedisAddr         string
	RedisDB           int
	RedisStream       string
	RedisStreamMaxLen int

	DownloadWorkers int
	Timeout         time.Duration

	// Environment
	Environment string

	// problems found while reading values, reported by Validate
	problems    []string
	dateTypeSet bool
}

// fileConfig mirrors the YAML configuration file
type fileConfig struct {
	Variables struct {
		URL          string `yaml:"url"`
		SearchPhrase string `yaml:"search_phrase"`
		Section      string `yaml:"section"`
		DateType     string `yaml:"date_type"`
		Months       *int   `yaml:"months"`
		ShowMore     *int   `yaml:"show_more"`
	} `yaml:"variables"`
	Paths struct {
		OutputExcel   string `yaml:"output_excel"`
		PictureOutput string `yaml:"picture_output"`
		LogFile       string `yaml:"log_file"`
	} `yaml:"paths"`
	Services struct {
		ChromeAddr        string `yaml:"chrome_addr"`
		MemcacheAddr      string `yaml:"memcache_addr"`
		RedisAddr         string `yaml:"redis_addr"`
		RedisDB           int    `yaml:"redis_db"`
		RedisStream       string `yaml:"redis_stream"`
		RedisStreamMaxLen int    `yaml:"redis_stream_max_len"`
		DownloadWorkers   int    `yaml:"download_workers"`
		TimeoutSeconds    int    `yaml:"timeout_seconds"`
	} `yaml:"services"`
}

// LoadConfig loads the configuration from the YAML file at path (skipped when
// the file does not exist) and applies environment variable overrides.
func LoadConfig(path string) (*Config, error) {
	var fc fileConfig
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &fc); err != nil {
				return nil, apperrors.NewConfiguration("failed to parse config file "+path, err)
			}
		case os.IsNotExist(err):
		default:
			return nil, apperrors.NewConfiguration("failed to read config file "+path, err)
		}
	}

	cfg := &Config{
		URL:               getEnv("NEWS_URL", fc.Variables.URL),
		SearchPhrase:      getEnv("NEWS_SEARCH_PHRASE", fc.Variables.SearchPhrase),
		Section:           getEnv("NEWS_SECTION", fc.Variables.Section),
		OutputExcel:       getEnv("NEWS_OUTPUT_EXCEL", fc.Paths.OutputExcel),
		PictureOutput:     getEnv("NEWS_PICTURE_OUTPUT", fc.Paths.PictureOutput),
		LogFile:           getEnv("LOG_FILE", orDefault(fc.Paths.LogFile, logger.DefaultLogFile)),
		ChromeAddr:        getEnv("CHROME_ADDR", fc.Services.ChromeAddr),
		MemcacheAddr:      getEnv("MEMCACHE_ADDR", fc.Services.MemcacheAddr),
		RedisAddr:         getEnv("REDIS_ADDR", fc.Services.RedisAddr),
		RedisStream:       getEnv("REDIS_STREAM", orDefault(fc.Services.RedisStream, "news")),
		Environment:       getEnv("NEWS_ENVIRONMENT", "development"),
		RedisDB:           fc.Services.RedisDB,
		RedisStreamMaxLen: orDefaultInt(fc.Services.RedisStreamMaxLen, 1000),
		DownloadWorkers:   orDefaultInt(fc.Services.DownloadWorkers, 4),
		Timeout:           time.Duration(orDefaultInt(fc.Services.TimeoutSeconds, 600)) * time.Second,
		Months:            -1,
		ShowMore:          -1,
	}

	if fc.Variables.Months != nil {
		cfg.Months = *fc.Variables.Months
	}
	if fc.Variables.ShowMore != nil {
		cfg.ShowMore = *fc.Variables.ShowMore
	}

	cfg.readInt("NEWS_MONTHS", &cfg.Months)
	cfg.readInt("NEWS_SHOW_MORE", &cfg.ShowMore)
	cfg.readInt("REDIS_DB", &cfg.RedisDB)
	cfg.readInt("REDIS_STREAM_MAX_LEN", &cfg.RedisStreamMaxLen)
	cfg.readInt("DOWNLOAD_WORKERS", &cfg.DownloadWorkers)

	timeoutSeconds := int(cfg.Timeout / time.Second)
	cfg.readInt("RUN_TIMEOUT_SECONDS", &timeoutSeconds)
	cfg.Timeout = time.Duration(timeoutSeconds) * time.Second

	if raw := getEnv("NEWS_DATE_TYPE", fc.Variables.DateType); raw != "" {
		dt, err := ParseDateType(raw)
		if err != nil {
			cfg.problems = append(cfg.problems, err.Error())
		}
		cfg.DateType = dt
		cfg.dateTypeSet = true
	}

	return cfg, nil
}

// ParseDateType accepts "SpecificDates", "Specific Dates", "specific_dates"
// and the RollingMonths equivalents.
func ParseDateType(s string) (DateType, error) {
	key := strings.NewReplacer(" ", "", "_", "", "-", "").Replace(strings.ToLower(strings.TrimSpace(s)))
	switch key {
	case "specificdates":
		return SpecificDates, nil
	case "rollingmonths":
		return RollingMonths, nil
	}
	return "", fmt.Errorf("date_type %q must be SpecificDates or RollingMonths", s)
}

// Validate checks that every required option is present and sane
func (c *Config) Validate() error {
	problems := append([]string(nil), c.problems...)

	required := []struct {
		name  string
		value string
	}{
		{"url", c.URL},
		{"search_phrase", c.SearchPhrase},
		{"section", c.Section},
		{"output_excel", c.OutputExcel},
		{"picture_output", c.PictureOutput},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			problems = append(problems, r.name+" is required")
		}
	}

	if c.URL != "" {
		u, err := url.Parse(c.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			problems = append(problems, fmt.Sprintf("url %q must be an absolute http(s) URL", c.URL))
		}
	}

	if c.DateType == "" && !c.dateTypeSet {
		problems = append(problems, "date_type is required")
	}
	if c.Months < 0 {
		problems = append(problems, "months is required and must be >= 0")
	}
	if c.ShowMore < 0 {
		problems = append(problems, "show_more is required and must be >= 0")
	}
	if c.DownloadWorkers < 1 {
		problems = append(problems, "download_workers must be >= 1")
	}
	if c.Timeout <= 0 {
		problems = append(problems, "timeout_seconds must be > 0")
	}

	if len(problems) > 0 {
		return apperrors.NewConfiguration("invalid configuration: "+strings.Join(problems, "; "), nil)
	}
	return nil
}

// readInt overrides *dst from an environment variable, recording a problem
// when the value is not an integer.
func (c *Config) readInt(key string, dst *int) {
	raw := os.Getenv(key)
	if raw == "" {
		return
	}
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		c.problems = append(c.problems, fmt.Sprintf("%s=%q is not an integer", key, raw))
		return
	}
	*dst = n
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func orDefault(value, defaultValue string) string {
	if value == "" {
		return defaultValue
	}
	return value
}

func orDefaultInt(value, defaultValue int) int {
	if value == 0 {
		return defaultValue
	}
	return value
}
