package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Schedule   string `yaml:"schedule"`
	RunOnStart bool   `yaml:"run_on_start"`
	OutputDir  string `yaml:"output_dir"`

	Discovery DiscoveryConfig `yaml:"discovery"`
	Memo      MemoConfig      `yaml:"memo"`
	Speech    SpeechConfig    `yaml:"speech"`
	Mail      MailConfig      `yaml:"mail"`
}

type DiscoveryConfig struct {
	APIKey         string             `yaml:"api_key"`
	Query          string             `yaml:"query"`
	Criteria       []string           `yaml:"criteria"`
	Enrichments    []EnrichmentConfig `yaml:"enrichments"`
	ResultCount    int                `yaml:"result_count"`
	EntityType     string             `yaml:"entity_type"`
	LookbackDays   int                `yaml:"lookback_days"`
	TimeoutMinutes int                `yaml:"timeout_minutes"`
	FilePrefix     string             `yaml:"file_prefix"`
}

type EnrichmentConfig struct {
	Description string `yaml:"description"`
	Format      string `yaml:"format"`
}

type MemoConfig struct {
	PromptTemplate string `yaml:"prompt_template"`
}

type SpeechConfig struct {
	APIKey          string  `yaml:"api_key"`
	VoiceID         string  `yaml:"voice_id"`
	ModelID         string  `yaml:"model_id"`
	Stability       float64 `yaml:"stability"`
	SimilarityBoost float64 `yaml:"similarity_boost"`
	Style           float64 `yaml:"style"`
	UseSpeakerBoost *bool   `yaml:"use_speaker_boost"`
}

type MailConfig struct {
	AccessToken string   `yaml:"access_token"`
	From        string   `yaml:"from"`
	To          []string `yaml:"to"`
	Subject     string   `yaml:"subject"`
}

// Timeout returns the discovery polling timeout as a duration.
func (c DiscoveryConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMinutes) * time.Minute
}

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandEnvVars replaces ${VAR_NAME} patterns with environment variable values.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := strings.TrimSuffix(strings.TrimPrefix(match, "${"), "}")
		if val, ok := os.LookupEnv(varName); ok {
			return val
		}
		return match
	})
}

func setDefaults(cfg *Config) {
	if cfg.Schedule == "" {
		cfg.Schedule = "0 8 * * *"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "output"
	}
	if cfg.Discovery.APIKey == "" {
		cfg.Discovery.APIKey = os.Getenv("EXA_API_KEY")
	}
	if cfg.Speech.APIKey == "" {
		cfg.Speech.APIKey = os.Getenv("ELEVENLABS_API_KEY")
	}
	if cfg.Mail.AccessToken == "" {
		cfg.Mail.AccessToken = os.Getenv("GMAIL_ACCESS_TOKEN")
	}
	if cfg.Discovery.Query == "" {
		cfg.Discovery.Query = "companies in SF that just raised their series A this week"
	}
	if len(cfg.Discovery.Criteria) == 0 {
		cfg.Discovery.Criteria = []string{
			"company is headquartered in san francisco, ca",
			"completed a series a fundraising round",
		}
	}
	if len(cfg.Discovery.Enrichments) == 0 {
		cfg.Discovery.Enrichments = []EnrichmentConfig{
			{Description: "Series A Amount", Format: "number"},
		}
	}
	if cfg.Discovery.ResultCount == 0 {
		cfg.Discovery.ResultCount = 5
	}
	if cfg.Discovery.EntityType == "" {
		cfg.Discovery.EntityType = "company"
	}
	if cfg.Discovery.LookbackDays == 0 {
		cfg.Discovery.LookbackDays = 7
	}
	if cfg.Discovery.TimeoutMinutes == 0 {
		cfg.Discovery.TimeoutMinutes = 10
	}
	if cfg.Discovery.FilePrefix == "" {
		cfg.Discovery.FilePrefix = "series_a_companies"
	}
	if cfg.Speech.VoiceID == "" {
		cfg.Speech.VoiceID = os.Getenv("ELEVENLABS_VOICE_ID")
	}
	if cfg.Speech.VoiceID == "" {
		cfg.Speech.VoiceID = "UgBBYS2sOqTuMpoF3BR0"
	}
	if cfg.Speech.ModelID == "" {
		cfg.Speech.ModelID = "eleven_monolingual_v1"
	}
	if cfg.Speech.Stability == 0 {
		cfg.Speech.Stability = 0.6
	}
	if cfg.Speech.SimilarityBoost == 0 {
		cfg.Speech.SimilarityBoost = 0.75
	}
	if cfg.Speech.Style == 0 {
		cfg.Speech.Style = 0.2
	}
	if cfg.Speech.UseSpeakerBoost == nil {
		b := true
		cfg.Speech.UseSpeakerBoost = &b
	}
	if cfg.Mail.From == "" {
		cfg.Mail.From = os.Getenv("SENDER_EMAIL")
	}
	if len(cfg.Mail.To) == 0 {
		if to := os.Getenv("RECIPIENT_EMAIL"); to != "" {
			cfg.Mail.To = []string{to}
		}
	}
	if cfg.Mail.Subject == "" {
		cfg.Mail.Subject = "Series A Companies Funding Update"
	}
}

func validate(cfg *Config) error {
	if cfg.Discovery.APIKey == "" {
		return fmt.Errorf("config: discovery.api_key is required (set EXA_API_KEY env var)")
	}
	if cfg.Speech.APIKey == "" {
		return fmt.Errorf("config: speech.api_key is required (set ELEVENLABS_API_KEY env var)")
	}
	if cfg.Mail.AccessToken == "" {
		return fmt.Errorf("config: mail.access_token is required (set GMAIL_ACCESS_TOKEN env var)")
	}
	if cfg.Mail.From == "" {
		return fmt.Errorf("config: mail.from is required (set SENDER_EMAIL env var)")
	}
	if len(cfg.Mail.To) == 0 {
		return fmt.Errorf("config: mail.to is required (set RECIPIENT_EMAIL env var)")
	}
	if cfg.Discovery.LookbackDays < 0 {
		return fmt.Errorf("config: discovery.lookback_days must not be negative")
	}
	return nil
}

// Load reads an optional .env file, then the config file, expands
// environment variables, applies defaults, and validates the result.
func Load(path string) (*Config, error) {
	// Missing .env is fine, the environment may already be populated.
	_ = godotenv.Load()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	setDefaults(&cfg)

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
