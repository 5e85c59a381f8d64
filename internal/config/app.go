// Package config assembles the application configuration from the
// environment. Required credentials fail closed; tuning values fail open
// and fall back to their defaults with a warning.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"market-pulse/internal/infra/classifier"
	"market-pulse/internal/infra/embedder"
	"market-pulse/internal/infra/notifier"
	"market-pulse/internal/infra/scraper"
	"market-pulse/internal/infra/vectorstore"
	envcfg "market-pulse/internal/pkg/config"
	"market-pulse/internal/usecase/fetch"
	"market-pulse/internal/usecase/notify"
	"market-pulse/internal/usecase/sentiment"
	pkgcfg "market-pulse/pkg/config"
)

const (
	// DefaultDatabasePath is the SQLite cache file when neither
	// DATABASE_PATH nor DATABASE_URL is set.
	DefaultDatabasePath = "market_pulse.db"

	defaultSMTPHost       = "smtp.gmail.com"
	defaultSMTPPort       = 587
	defaultWebhookTimeout = 30 * time.Second
	defaultHTTPTimeout    = 30 * time.Second

	slackHost       = "hooks.slack.com"
	slackPath       = "/services/"
	discordHost     = "discord.com"
	discordPath     = "/api/webhooks/"
	sqliteURLPrefix = "sqlite:///"
)

// AppConfig is everything the worker and the CLI need to build the pipeline.
type AppConfig struct {
	NewsAPIKey string
	NewsAPIURL string
	NewsRate   pkgcfg.RateConfig

	Fetch      fetch.Config
	Classifier classifier.Config
	Sentiment  sentiment.Config
	Vector     vectorstore.Config

	DatabasePath string

	HighConfidenceThreshold float64

	Email          notifier.EmailConfig
	Slack          notifier.SlackConfig
	Discord        notifier.DiscordConfig
	DesktopEnabled bool

	// HTTPTimeout applies to the news API and feed clients.
	HTTPTimeout time.Duration

	// FeedDenyPrivateIPs refuses RSS feeds hosted on private addresses.
	FeedDenyPrivateIPs bool
}

// LoadAppConfig reads the application configuration.
//
// It returns ErrMissingNewsAPIKey or ErrInvalidClassifier for settings the
// application cannot run without. Any other invalid value is logged,
// recorded on metrics (which may be nil) and replaced by its default.
func LoadAppConfig(logger *slog.Logger, metrics *envcfg.ConfigMetrics) (*AppConfig, error) {
	if logger == nil {
		logger = slog.Default()
	}
	fallback := false
	track := func(field string, warnings []string, applied bool) {
		for _, w := range warnings {
			logger.Warn("configuration fallback applied", slog.String("field", field), slog.String("warning", w))
		}
		if applied {
			fallback = true
			if metrics != nil {
				metrics.RecordValidationError(field)
				metrics.RecordFallback(field)
			}
		}
	}
	loadInt := func(key string, def, min, max int) int {
		r := envcfg.LoadEnvInt(key, def, func(v int) error { return envcfg.ValidateIntRange(v, min, max) })
		track(key, r.Warnings, r.FallbackApplied)
		return r.Value
	}
	loadUnit := func(key string, def float64) float64 {
		r := envcfg.LoadEnvFloat(key, def, envcfg.ValidateUnitInterval)
		track(key, r.Warnings, r.FallbackApplied)
		return r.Value
	}
	loadBool := func(key string, def bool) bool {
		r := envcfg.LoadEnvBool(key, def)
		track(key, r.Warnings, r.FallbackApplied)
		return r.Value
	}
	loadDuration := func(key string, def time.Duration) time.Duration {
		r := envcfg.LoadEnvDuration(key, def, envcfg.ValidatePositiveDuration)
		track(key, r.Warnings, r.FallbackApplied)
		return r.Value
	}

	cfg := &AppConfig{
		NewsAPIKey:  envcfg.LoadEnvString("NEWS_API_KEY", ""),
		NewsAPIURL:  envcfg.LoadEnvString("NEWS_API_URL", ""),
		NewsRate:    pkgcfg.LoadRateConfig("NEWS_QUERY", pkgcfg.RateConfig{Interval: time.Second, Burst: 1}),
		HTTPTimeout: loadDuration("HTTP_TIMEOUT", defaultHTTPTimeout),
	}

	// Fetch.
	fc := fetch.DefaultConfig()
	fc.Queries = pkgcfg.GetEnvStringList("NEWS_QUERIES", fc.Queries)
	fc.Lookback = loadDuration("NEWS_LOOKBACK", fc.Lookback)
	fc.PageSize = loadInt("NEWS_PAGE_SIZE", fc.PageSize, 1, 100)
	fc.Language = envcfg.LoadEnvString("NEWS_LANGUAGE", fc.Language)
	fc.MaxArticles = loadInt("MAX_DAILY_NEWS", fc.MaxArticles, 0, 1000)
	fc.Feeds = feedURLs(pkgcfg.GetEnvStringList("RSS_FEEDS", nil), track)
	cfg.FeedDenyPrivateIPs = loadBool("RSS_DENY_PRIVATE_IPS", true)
	if path := envcfg.LoadEnvString("KEYWORDS_FILE", ""); path != "" {
		kw, err := LoadKeywords(path)
		if err != nil {
			track("KEYWORDS_FILE", []string{err.Error() + ", falling back to built-in keywords"}, true)
		} else {
			fc.Keywords = kw
		}
	}
	cfg.Fetch = fc

	// Classifier.
	cfg.Classifier = classifier.Config{
		Type:              envcfg.LoadEnvString("CLASSIFIER_TYPE", classifier.TypeHuggingFace),
		HuggingFaceAPIKey: envcfg.LoadEnvString("HUGGINGFACE_API_KEY", ""),
		HuggingFaceURL:    envcfg.LoadEnvString("HUGGINGFACE_API_URL", ""),
		Model:             envcfg.LoadEnvString("SENTIMENT_MODEL", classifier.DefaultSentimentModel),
		OpenAIAPIKey:      envcfg.LoadEnvString("OPENAI_API_KEY", ""),
		OpenAIModel:       envcfg.LoadEnvString("OPENAI_MODEL", ""),
		OpenAIURL:         envcfg.LoadEnvString("OPENAI_API_URL", ""),
		AnthropicAPIKey:   envcfg.LoadEnvString("ANTHROPIC_API_KEY", ""),
		ClaudeModel:       envcfg.LoadEnvString("CLAUDE_MODEL", ""),
		ClaudeURL:         envcfg.LoadEnvString("ANTHROPIC_API_URL", ""),
		Timeout:           loadDuration("CLASSIFIER_TIMEOUT", 30*time.Second),
	}

	// Scoring and retrieval.
	sc := sentiment.DefaultConfig()
	sc.MaxTextLength = loadInt("MAX_TEXT_LENGTH", sc.MaxTextLength, 16, 10000)
	sc.TopK = loadInt("SIMILAR_TOP_K", sc.TopK, 1, 20)
	sc.SimilarityThreshold = loadUnit("SIMILARITY_THRESHOLD", sc.SimilarityThreshold)
	cfg.Sentiment = sc

	embedType := strings.ToLower(envcfg.LoadEnvString("EMBEDDING_TYPE", embedder.TypeHuggingFace))
	cfg.Vector = vectorstore.Config{
		Enabled: loadBool("VECTOR_STORE_ENABLED", false),
		DSN:     envcfg.LoadEnvString("VECTOR_DATABASE_URL", ""),
		Embedder: embedder.Config{
			Type:      embedType,
			Model:     envcfg.LoadEnvString("EMBEDDING_MODEL", ""),
			Dimension: loadInt("EMBEDDING_DIMENSION", 0, 0, 4096),
			APIKey:    embeddingKey(embedType, cfg.Classifier),
			BaseURL:   envcfg.LoadEnvString("EMBEDDING_API_URL", ""),
		},
	}

	cfg.DatabasePath = databasePath(
		envcfg.LoadEnvString("DATABASE_PATH", ""),
		envcfg.LoadEnvString("DATABASE_URL", ""),
	)

	// Notifications.
	cfg.HighConfidenceThreshold = loadUnit("HIGH_CONFIDENCE_THRESHOLD", notify.DefaultHighConfidenceThreshold)
	cfg.DesktopEnabled = loadBool("DESKTOP_NOTIFY_ENABLED", false)
	cfg.Email = loadEmail(loadInt("SMTP_PORT", defaultSMTPPort, 1, 65535))
	cfg.Slack = notifier.SlackConfig{Timeout: defaultWebhookTimeout}
	if loadBool("SLACK_ENABLED", false) {
		url := envcfg.LoadEnvString("SLACK_WEBHOOK_URL", "")
		if err := validateWebhookURL(url, slackHost, slackPath); err != nil {
			logger.Warn("invalid Slack webhook, disabling notifications", slog.String("reason", err.Error()))
		} else {
			cfg.Slack.Enabled, cfg.Slack.WebhookURL = true, url
		}
	}
	cfg.Discord = notifier.DiscordConfig{Timeout: defaultWebhookTimeout}
	if loadBool("DISCORD_ENABLED", false) {
		url := envcfg.LoadEnvString("DISCORD_WEBHOOK_URL", "")
		if err := validateWebhookURL(url, discordHost, discordPath); err != nil {
			logger.Warn("invalid Discord webhook, disabling notifications", slog.String("reason", err.Error()))
		} else {
			cfg.Discord.Enabled, cfg.Discord.WebhookURL = true, url
		}
	}

	if metrics != nil {
		metrics.SetFallbackActive(fallback)
		metrics.RecordLoadTimestamp()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the settings that fail closed.
func (c *AppConfig) Validate() error {
	var errs []error
	if c.NewsAPIKey == "" {
		errs = append(errs, ErrMissingNewsAPIKey)
	}
	if _, err := classifier.New(c.Classifier); err != nil {
		errs = append(errs, fmt.Errorf("%w: %v", ErrInvalidClassifier, err))
	}
	if err := c.Fetch.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("fetch: %w", err))
	}
	return errors.Join(errs...)
}

// Channels builds the notification channels that are switched on.
func (c *AppConfig) Channels() []notify.Channel {
	var channels []notify.Channel
	if c.Slack.Enabled {
		channels = append(channels, notify.NewSlackChannel(c.Slack))
	}
	if c.Discord.Enabled {
		channels = append(channels, notify.NewDiscordChannel(c.Discord))
	}
	if c.Email.Enabled {
		channels = append(channels, notify.NewEmailChannel(c.Email))
	}
	if c.DesktopEnabled {
		channels = append(channels, notify.NewDesktopChannel(true))
	}
	return channels
}

// loadEmail enables the digest email when sender credentials and at least
// one recipient are present.
func loadEmail(port int) notifier.EmailConfig {
	ec := notifier.EmailConfig{
		Host:     envcfg.LoadEnvString("SMTP_HOST", defaultSMTPHost),
		Port:     port,
		Username: envcfg.LoadEnvString("EMAIL_USER", ""),
		Password: envcfg.LoadEnvString("EMAIL_PASS", ""),
		From:     envcfg.LoadEnvString("EMAIL_FROM", ""),
		To:       pkgcfg.GetEnvStringList("EMAIL_TO", nil),
	}
	ec.Enabled = ec.Username != "" && ec.Password != "" && len(ec.To) > 0
	return ec
}

// embeddingKey reuses the classifier credentials for the same provider.
func embeddingKey(embedType string, cc classifier.Config) string {
	if key := envcfg.LoadEnvString("EMBEDDING_API_KEY", ""); key != "" {
		return key
	}
	if embedType == embedder.TypeOpenAI {
		return cc.OpenAIAPIKey
	}
	return cc.HuggingFaceAPIKey
}

// databasePath prefers DATABASE_PATH and accepts DATABASE_URL in the
// sqlite:///path form.
func databasePath(path, url string) string {
	if path != "" {
		return path
	}
	if strings.HasPrefix(url, sqliteURLPrefix) {
		if p := strings.TrimPrefix(url, sqliteURLPrefix); p != "" {
			return p
		}
	}
	return DefaultDatabasePath
}

// feedURLs drops feed URLs that are not absolute http(s) URLs. Host
// resolution is left to fetch time.
func feedURLs(raw []string, track func(string, []string, bool)) []string {
	feeds := make([]string, 0, len(raw))
	for _, u := range raw {
		if err := scraper.ValidateFeedURL(u, false); err != nil {
			track("RSS_FEEDS", []string{"ignoring feed: " + err.Error()}, true)
			continue
		}
		feeds = append(feeds, u)
	}
	if len(feeds) == 0 {
		return nil
	}
	return feeds
}
