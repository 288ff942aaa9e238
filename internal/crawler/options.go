package crawler

import "time"

// Config holds all configuration for a crawl run.
type Config struct {
	// Fetching
	Method      Method
	Headless    bool
	BrowserPath string
	UserAgent   string
	BaseURL     string
	Timeout     time.Duration
	Proxy       string

	// Pacing and retries
	MinDelay   time.Duration
	MaxDelay   time.Duration
	MaxRetries int

	// Limits
	MaxResponseSize int

	// Output
	OutputPath      string
	DBPath          string
	CheckpointEvery int
	Silent          bool
	Verbose         bool
	NoColor         bool
}

// Method controls which fetch backend to use.
type Method string

const (
	MethodHTTP    Method = "http"
	MethodBrowser Method = "browser"
)

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() *Config {
	return &Config{
		Method:          MethodHTTP,
		Headless:        true,
		UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
		BaseURL:         "https://www.asics.com",
		Timeout:         30 * time.Second,
		MinDelay:        2 * time.Second,
		MaxDelay:        5 * time.Second,
		MaxRetries:      3,
		MaxResponseSize: 4194304, // 4MB
		OutputPath:      "results.csv",
		CheckpointEvery: 10,
	}
}
