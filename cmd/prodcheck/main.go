package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/user/prodcheck/internal/crawler"
	"github.com/user/prodcheck/internal/urlsource"
	"github.com/user/prodcheck/pkg/plugin"
)

var version = "1.0.0"

// flags holds all parsed CLI options.
type flags struct {
	// Fetching
	method      string
	headed      bool
	browserPath string
	userAgent   string
	proxy       string

	// Input
	input   string
	count   int
	baseURL string

	// Pacing
	minDelay float64
	maxDelay float64
	timeout  int
	retries  int

	// Output
	output  string
	dbPath  string
	silent  bool
	verbose bool
	noColor bool

	// Meta
	showHelp    bool
	showVersion bool
}

func main() {
	f := parseFlags()

	if f.showVersion {
		fmt.Printf("prodcheck v%s\n", version)
		os.Exit(0)
	}
	if f.showHelp {
		printUsage()
		os.Exit(0)
	}

	enableANSI()
	noColor = f.noColor
	setupLogging(f)

	cfg := buildConfig(f)

	urls, err := loadURLs(f)
	if err != nil {
		fatal("%v", err)
	}
	if len(urls) == 0 {
		fatal("no URLs to check")
	}

	c := crawler.New(cfg)
	if err := c.Init(); err != nil {
		fatal("initialization failed: %v", err)
	}
	defer c.Close()

	// Handle Ctrl+C: cancel the run, results so far still get written.
	ctx, cancel := context.WithCancel(context.Background())
	sig := make(chan os.Signal, 1)
	registerSignals(sig)
	go func() {
		<-sig
		fmt.Fprintf(os.Stderr, "\n\n%s Interrupt received, finishing up...\n", clr("yellow", "!"))
		cancel()
	}()

	run(ctx, c, cfg, f, urls)
}

func run(ctx context.Context, c *crawler.Crawler, cfg *crawler.Config, f *flags, urls []string) {
	if !cfg.Silent {
		printBanner()
		fmt.Printf("\n  %s %d URLs\n", clr("cyan", "Checking:"), len(urls))
		fmt.Printf("  %s %s  %s %.1fs-%.1fs  %s %ds  %s %d\n\n",
			clr("dim", "Method:"), string(cfg.Method),
			clr("dim", "Delay:"), f.minDelay, f.maxDelay,
			clr("dim", "Timeout:"), f.timeout,
			clr("dim", "Retries:"), cfg.MaxRetries,
		)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		seen := 0
		for event := range c.Events() {
			if cfg.Silent {
				continue
			}
			if event.Type == plugin.EventTaskDone {
				seen++
			}
			handleEvent(event, seen, len(urls))
		}
	}()

	summary, err := c.Run(ctx, urls)
	if err != nil {
		fatal("crawl error: %v", err)
	}

	<-done

	if !cfg.Silent {
		printSummary(summary, cfg)
	}
}

func handleEvent(event plugin.CrawlEvent, seen, total int) {
	switch event.Type {
	case plugin.EventTaskDone:
		if event.Record == nil {
			return
		}
		rec := event.Record

		extra := ""
		if rec.Status == plugin.StatusSuccess && rec.Price != "" {
			extra = clr("dim", " price="+rec.Price)
		}
		if rec.Attempts > 1 {
			extra += clr("dim", fmt.Sprintf(" (%d attempts)", rec.Attempts))
		}

		fmt.Printf("  %s %s %s%s\n",
			clr("dim", fmt.Sprintf("[%d/%d]", seen, total)),
			statusBadge(rec.Status),
			rec.URL,
			extra,
		)

	case plugin.EventTaskRetry:
		fmt.Printf("  %s retry #%d %s %s\n",
			clr("yellow", "↻"), event.Attempt, event.URL, clr("dim", event.Message))
	}
}

func printSummary(summary *plugin.RunSummary, cfg *crawler.Config) {
	fmt.Println()
	fmt.Printf("  %s\n", strings.Repeat("─", 50))
	fmt.Printf("  %s Run complete in %s\n", clr("green", "✓"), fmtDur(summary.Duration))
	fmt.Printf("    URLs checked: %d\n", summary.Total)

	for _, status := range plugin.AllStatuses {
		count := summary.ByStatus[status]
		if summary.Total == 0 {
			continue
		}
		pct := float64(count) / float64(summary.Total) * 100
		fmt.Printf("    %s %d (%.1f%%)\n", statusBadge(status), count, pct)
	}

	if cfg.OutputPath != "" {
		fmt.Printf("    Output: %s\n", clr("green", cfg.OutputPath))
	}
	if cfg.DBPath != "" {
		fmt.Printf("    Database: %s\n", clr("green", cfg.DBPath))
	}
	fmt.Println()
}

func statusBadge(status plugin.ResultStatus) string {
	label := string(status)
	switch status {
	case plugin.StatusSuccess:
		return clr("green", label)
	case plugin.StatusPageNotFound:
		return clr("yellow", label)
	case plugin.StatusNoProductInfo:
		return clr("cyan", label)
	case plugin.StatusAccessDenied, plugin.StatusError:
		return clr("red", label)
	default:
		return label
	}
}

func loadURLs(f *flags) ([]string, error) {
	var urls []string
	if f.input != "" {
		loaded, err := urlsource.FromFile(f.input)
		if err != nil {
			return nil, err
		}
		urls = loaded
		logrus.Infof("Loaded %d URLs from %s", len(urls), f.input)
	} else {
		urls = urlsource.Synthesize(f.baseURL, f.count)
		logrus.Infof("No input file, synthesized %d candidate URLs", len(urls))
	}

	for i, u := range urls {
		urls[i] = urlsource.Normalize(u, f.baseURL)
	}
	return urls, nil
}

func setupLogging(f *flags) {
	logrus.SetOutput(os.Stderr)
	switch {
	case f.silent:
		logrus.SetLevel(logrus.ErrorLevel)
	case f.verbose:
		logrus.SetLevel(logrus.DebugLevel)
	default:
		logrus.SetLevel(logrus.WarnLevel)
	}
}

// ---------- Flag parsing ----------

func parseFlags() *flags {
	f := &flags{
		method:   "http",
		count:    100,
		baseURL:  "https://www.asics.com",
		minDelay: 2.0,
		maxDelay: 5.0,
		timeout:  30,
		retries:  3,
		output:   "results.csv",
	}

	args := os.Args[1:]
	for i := 0; i < len(args); i++ {
		arg := args[i]
		next := func() string {
			if i+1 < len(args) {
				i++
				return args[i]
			}
			fatal("flag %s requires an argument", arg)
			return ""
		}
		nextInt := func() int {
			v := next()
			var n int
			fmt.Sscanf(v, "%d", &n)
			return n
		}
		nextFloat := func() float64 {
			v := next()
			var n float64
			fmt.Sscanf(v, "%g", &n)
			return n
		}

		switch arg {
		// Fetching
		case "-m", "--method":
			f.method = next()
		case "--headed":
			f.headed = true
		case "--browser-path":
			f.browserPath = next()
		case "-ua", "--user-agent":
			f.userAgent = next()
		case "-px", "--proxy":
			f.proxy = next()

		// Input
		case "-i", "--input":
			f.input = next()
		case "-n", "--count":
			f.count = nextInt()
		case "-b", "--base-url":
			f.baseURL = next()

		// Pacing
		case "--min-delay":
			f.minDelay = nextFloat()
		case "--max-delay":
			f.maxDelay = nextFloat()
		case "-t", "--timeout":
			f.timeout = nextInt()
		case "-r", "--retries":
			f.retries = nextInt()

		// Output
		case "-o", "--output":
			f.output = next()
		case "--db":
			f.dbPath = next()
		case "-si", "--silent":
			f.silent = true
		case "-v", "--verbose":
			f.verbose = true
		case "-nc", "--no-color":
			f.noColor = true

		// Meta
		case "-h", "--help":
			f.showHelp = true
		case "-V", "--version":
			f.showVersion = true

		default:
			fmt.Fprintf(os.Stderr, "Unknown flag: %s (use --help for usage)\n", arg)
			os.Exit(1)
		}
	}
	return f
}

func buildConfig(f *flags) *crawler.Config {
	cfg := crawler.DefaultConfig()

	switch strings.ToLower(f.method) {
	case "browser":
		cfg.Method = crawler.MethodBrowser
	default:
		cfg.Method = crawler.MethodHTTP
	}

	cfg.Headless = !f.headed
	cfg.BrowserPath = f.browserPath
	cfg.BaseURL = strings.TrimRight(f.baseURL, "/")
	cfg.Timeout = time.Duration(f.timeout) * time.Second
	cfg.MinDelay = time.Duration(f.minDelay * float64(time.Second))
	cfg.MaxDelay = time.Duration(f.maxDelay * float64(time.Second))
	cfg.MaxRetries = f.retries
	cfg.Proxy = f.proxy
	cfg.OutputPath = f.output
	cfg.DBPath = f.dbPath
	cfg.Silent = f.silent
	cfg.Verbose = f.verbose
	cfg.NoColor = f.noColor

	if f.userAgent != "" {
		cfg.UserAgent = f.userAgent
	}

	return cfg
}

// ---------- Help / banner ----------

func printUsage() {
	printBanner()
	fmt.Print(`
USAGE:
  prodcheck [flags]
  prodcheck -i urls.txt -o results.csv
  prodcheck -m browser -n 50 --min-delay 3 --max-delay 6

FETCHING:
  -m,   --method <string>        fetch backend: http, browser (default "http")
        --headed                 run the browser visibly instead of headless
        --browser-path <string>  path to a Chrome/Chromium binary (browser method)
  -ua,  --user-agent <string>    custom user-agent string
  -px,  --proxy <string>         http/socks5 proxy to use

INPUT:
  -i,   --input <string>         URL list file, one URL per line
  -n,   --count <int>            synthetic URL count when no input file (default 100)
  -b,   --base-url <string>      store base URL (default "https://www.asics.com")

PACING:
        --min-delay <float>      minimum delay between requests in seconds (default 2.0)
        --max-delay <float>      maximum delay between requests in seconds (default 5.0)
  -t,   --timeout <int>          request timeout in seconds (default 30)
  -r,   --retries <int>          attempts per URL before giving up (default 3)

OUTPUT:
  -o,   --output <string>        CSV output path (default "results.csv")
        --db <string>            also write results to a SQLite database
  -si,  --silent                 suppress all output except errors
  -v,   --verbose                show retry and debug detail
  -nc,  --no-color               disable colored output

META:
  -h,   --help                   show this help message
  -V,   --version                show version

`)
}

func printBanner() {
	fmt.Println(clr("cyan", `
  ┌─┐┬─┐┌─┐┌┬┐┌─┐┬ ┬┌─┐┌─┐┬┌─
  ├─┘├┬┘│ │ │││  ├─┤├┤ │  ├┴┐
  ┴  ┴└─└─┘─┴┘└─┘┴ ┴└─┘└─┘┴ ┴`))
	fmt.Printf("  %s  %s\n", clr("dim", "Product page existence and availability checker"), clr("dim", "v"+version))
	fmt.Printf("  %s\n", clr("dim", strings.Repeat("─", 50)))
}

// ---------- Utilities ----------

var noColor bool

func fmtDur(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}

func clr(color, text string) string {
	if noColor {
		return text
	}
	codes := map[string]string{
		"red":    "\033[31m",
		"green":  "\033[32m",
		"yellow": "\033[33m",
		"cyan":   "\033[36m",
		"dim":    "\033[2m",
		"bold":   "\033[1m",
		"reset":  "\033[0m",
	}
	c, ok := codes[color]
	if !ok {
		return text
	}
	return c + text + codes["reset"]
}

func fatal(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "\n  %s %s\n\n", clr("red", "ERROR:"), fmt.Sprintf(format, args...))
	os.Exit(1)
}
