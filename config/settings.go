package config

import (
	"errors"
	"fmt"
	"time"
)

// BrowserConfig controls headless Chrome flags.
type BrowserConfig struct {
	Headless   bool   `toml:"headless"`
	DisableGPU bool   `toml:"disable_gpu"`
	NoSandbox  bool   `toml:"no_sandbox"`
	DisableShm bool   `toml:"disable_shm"`
	UserAgent  string `toml:"user_agent"`
	// Route chromedp's own protocol logging through log.Printf
	Debug bool `toml:"debug"`
	// Window size in pixels; hit-testing for obstructed clicks depends on it
	WindowWidth  int `toml:"window_width"`
	WindowHeight int `toml:"window_height"`
}

// TimingConfig controls all wait/sleep durations throughout a QA run.
type TimingConfig struct {
	// How long to wait after navigation before interacting
	PageLoadWait time.Duration `toml:"page_load_wait"`
	// Delay between each scroll step while warming lazy content
	ScrollStepDelay time.Duration `toml:"scroll_step_delay"`
	// Extra wait after reaching the bottom so lazy content can render
	ScrollBottomWait time.Duration `toml:"scroll_bottom_wait"`
	// Per-strategy wait when resolving the currency control
	SelectorTimeout time.Duration `toml:"selector_timeout"`
	// Wait for the option list after opening the control
	OptionsTimeout time.Duration `toml:"options_timeout"`
	// Wait for price elements before a snapshot
	SnapshotTimeout time.Duration `toml:"snapshot_timeout"`
	// Each of the two post-activation update waits
	UpdateTimeout time.Duration `toml:"update_timeout"`
	// Polling period shared by every wait
	PollInterval time.Duration `toml:"poll_interval"`
	// Hard timeout for navigation of the listing page
	PageTimeout time.Duration `toml:"page_timeout"`
	// Budget for one whole QA run
	RunBudget time.Duration `toml:"run_budget"`
}

// ScraperConfig controls page preparation.
type ScraperConfig struct {
	// Pixels to advance per scroll step
	ScrollStep int `toml:"scroll_step"`
	// Scroll the whole page once after load so lazy prices render
	ScrollOnLoad bool `toml:"scroll_on_load"`
}

// SelectorsConfig holds the locators of the listing page elements.
type SelectorsConfig struct {
	// Class name shared by every tracked price element
	PriceClass string `toml:"price_class"`
	// Element id of the availability price
	AvailabilityID string `toml:"availability_id"`
	// Element id of the currency control, tried first
	ControlID string `toml:"control_id"`
	// Structural and text XPath fallbacks for the control, tried in order
	ControlXPaths []string `toml:"control_xpaths"`
	// XPath matching every option of the opened control
	OptionXPath string `toml:"option_xpath"`
}

// ReportConfig selects the report sinks. Empty values disable a sink.
type ReportConfig struct {
	CSVPath     string `toml:"csv_path"`
	XLSXPath    string `toml:"xlsx_path"`
	SQLitePath  string `toml:"sqlite_path"`
	PostgresDSN string `toml:"postgres_dsn"`
	// Page dumps on abort-level failures land here
	DumpDir string `toml:"dump_dir"`
}

// RetryConfig controls retry behavior for resilience.
type RetryConfig struct {
	// Max number of retry attempts for failed operations
	MaxRetries int `toml:"max_retries"`
	// Initial backoff duration before first retry
	InitialBackoff time.Duration `toml:"initial_backoff"`
	// Max backoff duration (caps exponential growth)
	MaxBackoff time.Duration `toml:"max_backoff"`
}

// ScheduleConfig enables repeated runs. An empty Cron runs once.
type ScheduleConfig struct {
	Cron     string `toml:"cron"`
	Timezone string `toml:"timezone"`
}

// Config is the root configuration passed into the QA run.
type Config struct {
	URL       string          `toml:"url"`
	Browser   BrowserConfig   `toml:"browser"`
	Timing    TimingConfig    `toml:"timing"`
	Scraper   ScraperConfig   `toml:"scraper"`
	Selectors SelectorsConfig `toml:"selectors"`
	Report    ReportConfig    `toml:"report"`
	Retry     RetryConfig     `toml:"retry"`
	Schedule  ScheduleConfig  `toml:"schedule"`
}

// Default returns a conservative production-ready configuration.
func Default() *Config {
	return &Config{
		Browser: BrowserConfig{
			Headless:     true,
			DisableGPU:   true,
			NoSandbox:    true,
			DisableShm:   true,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			WindowWidth:  1920,
			WindowHeight: 1080,
		},
		Timing: TimingConfig{
			PageLoadWait:     5 * time.Second,
			ScrollStepDelay:  400 * time.Millisecond,
			ScrollBottomWait: 2 * time.Second,
			SelectorTimeout:  5 * time.Second,
			OptionsTimeout:   5 * time.Second,
			SnapshotTimeout:  10 * time.Second,
			UpdateTimeout:    50 * time.Second,
			PollInterval:     250 * time.Millisecond,
			PageTimeout:      60 * time.Second,
			RunBudget:        15 * time.Minute,
		},
		Scraper: ScraperConfig{
			ScrollStep:   400,
			ScrollOnLoad: true,
		},
		Selectors: SelectorsConfig{
			PriceClass:     "js-price-value",
			AvailabilityID: "js-default-price",
			ControlID:      "js-currency-sort-footer",
			ControlXPaths: []string{
				"//select[contains(@id, 'currency') or contains(@class, 'currency')]",
				"//div[contains(@class, 'currency-selector')]",
				"//*[contains(translate(text(), 'CURRENCY', 'currency'), 'currency')]",
			},
			OptionXPath: "//div[@class='footer-section']//div[@class='footer-currency-dd']//ul[@class='select-ul']//li",
		},
		Report: ReportConfig{
			CSVPath:  "currency_report.csv",
			XLSXPath: "test_report.xlsx",
			DumpDir:  ".",
		},
		Retry: RetryConfig{
			MaxRetries:     3,
			InitialBackoff: 2 * time.Second,
			MaxBackoff:     10 * time.Second,
		},
		Schedule: ScheduleConfig{
			Timezone: "UTC",
		},
	}
}

// Dev returns a faster config suited for local development and testing.
func Dev() *Config {
	cfg := Default()
	cfg.ApplyDev()
	return cfg
}

// ApplyDev switches c to a visible, verbose browser with shorter waits.
// Everything else, selectors and report sinks included, is left as loaded.
func (c *Config) ApplyDev() {
	c.Browser.Headless = false
	c.Browser.Debug = true
	c.Timing.PageLoadWait = 3 * time.Second
	c.Timing.ScrollBottomWait = time.Second
	c.Timing.UpdateTimeout = 20 * time.Second
	c.Timing.RunBudget = 5 * time.Minute
	c.Retry.MaxRetries = 1
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var errs []error
	if c.URL == "" {
		errs = append(errs, errors.New("url is required"))
	}
	if c.Timing.PollInterval <= 0 {
		errs = append(errs, fmt.Errorf("timing.poll_interval must be positive, got %v", c.Timing.PollInterval))
	}
	for name, d := range map[string]time.Duration{
		"timing.selector_timeout": c.Timing.SelectorTimeout,
		"timing.options_timeout":  c.Timing.OptionsTimeout,
		"timing.snapshot_timeout": c.Timing.SnapshotTimeout,
		"timing.update_timeout":   c.Timing.UpdateTimeout,
		"timing.run_budget":       c.Timing.RunBudget,
	} {
		if d < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative, got %v", name, d))
		}
	}
	if c.Selectors.PriceClass == "" {
		errs = append(errs, errors.New("selectors.price_class is required"))
	}
	if c.Selectors.AvailabilityID == "" {
		errs = append(errs, errors.New("selectors.availability_id is required"))
	}
	if c.Selectors.ControlID == "" && len(c.Selectors.ControlXPaths) == 0 {
		errs = append(errs, errors.New("at least one currency control locator is required"))
	}
	if c.Selectors.OptionXPath == "" {
		errs = append(errs, errors.New("selectors.option_xpath is required"))
	}
	if c.Retry.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries))
	}
	return errors.Join(errs...)
}
