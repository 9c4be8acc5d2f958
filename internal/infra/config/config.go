package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Summarizer backends accepted by agent.backend.
const (
	BackendPlaceholder = "placeholder"
	BackendChatGPT     = "chatgpt"
	BackendGemini      = "gemini"
)

// Config aggregates runtime configuration used across the service.
type Config struct {
	HTTP         HTTPConfig         `yaml:"http"`
	Agent        AgentConfig        `yaml:"agent"`
	ContextStore ContextStoreConfig `yaml:"contextStore"`
	Relay        RelayConfig        `yaml:"relay"`
	LLM          LLMConfig          `yaml:"llm"`
	Gemini       GeminiConfig       `yaml:"gemini"`
}

// HTTPConfig controls server level behavior.
type HTTPConfig struct {
	Address        string        `yaml:"address"`
	ReadTimeout    time.Duration `yaml:"readTimeout"`
	WriteTimeout   time.Duration `yaml:"writeTimeout"`
	AllowedOrigins []string      `yaml:"allowedOrigins"`
	// AuthToken, when set, is the static bearer token required on API routes.
	AuthToken string `yaml:"authToken"`
}

// AgentConfig drives the summarization agent.
type AgentConfig struct {
	Backend         string `yaml:"backend"`
	ContextLimit    int    `yaml:"contextLimit"`
	MaxPromptTokens int    `yaml:"maxPromptTokens"`
	SystemPrompt    string `yaml:"systemPrompt"`
}

// ContextStoreConfig selects the conversation context backend.
type ContextStoreConfig struct {
	Valkey ValkeyConfig `yaml:"valkey"`
}

// ValkeyConfig contains connection information for the context store.
type ValkeyConfig struct {
	Enabled bool          `yaml:"enabled"`
	Addr    string        `yaml:"addr"`
	Prefix  string        `yaml:"prefix"`
	TTL     time.Duration `yaml:"ttl"`
}

// RelayConfig configures the outbound push notification relay.
type RelayConfig struct {
	BaseURL     string        `yaml:"baseUrl"`
	APIKey      string        `yaml:"apiKey"`
	Path        string        `yaml:"path"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxAttempts int           `yaml:"maxAttempts"`
	BaseBackoff time.Duration `yaml:"baseBackoff"`
}

// LLMConfig contains ChatGPT/OpenAI settings.
type LLMConfig struct {
	APIKey      string  `yaml:"apiKey"`
	BaseURL     string  `yaml:"baseUrl"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// GeminiConfig contains Google Gemini settings.
type GeminiConfig struct {
	APIKey      string  `yaml:"apiKey"`
	Model       string  `yaml:"model"`
	Temperature float32 `yaml:"temperature"`
}

// Load reads configuration from a .env file, a YAML file and environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := defaultConfig()

	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := hydrateFromFile(cfg, path); err != nil {
			return nil, err
		}
	} else if _, err := os.Stat("configs/config.yaml"); err == nil {
		if err := hydrateFromFile(cfg, "configs/config.yaml"); err != nil {
			return nil, err
		}
	}

	applyEnvOverrides(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

func hydrateFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("HTTP_ADDRESS"); v != "" {
		cfg.HTTP.Address = v
	}
	if v := os.Getenv("HTTP_ALLOWED_ORIGINS"); v != "" {
		cfg.HTTP.AllowedOrigins = splitList(v)
	}
	if v := os.Getenv("AGENT_INBOUND_TOKEN"); v != "" {
		cfg.HTTP.AuthToken = v
	}
	if v := os.Getenv("AGENT_BACKEND"); v != "" {
		cfg.Agent.Backend = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv("AGENT_CONTEXT_LIMIT"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Agent.ContextLimit = parsed
		}
	}
	if v := os.Getenv("AGENT_MAX_PROMPT_TOKENS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Agent.MaxPromptTokens = parsed
		}
	}
	if v := os.Getenv("AGENT_SYSTEM_PROMPT"); v != "" {
		cfg.Agent.SystemPrompt = v
	}
	if v := os.Getenv("CONTEXT_VALKEY_ENABLED"); v != "" {
		cfg.ContextStore.Valkey.Enabled = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("CONTEXT_VALKEY_ADDR"); v != "" {
		cfg.ContextStore.Valkey.Addr = v
	}
	if v := os.Getenv("CONTEXT_VALKEY_TTL"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.ContextStore.Valkey.TTL = parsed
		}
	}
	if v := os.Getenv("NEXT_APP_URL"); v != "" {
		cfg.Relay.BaseURL = v
	}
	if v := os.Getenv("AGENT_API_KEY"); v != "" {
		cfg.Relay.APIKey = v
	}
	if v := os.Getenv("RELAY_TIMEOUT"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Relay.Timeout = parsed
		}
	}
	if v := os.Getenv("RELAY_MAX_ATTEMPTS"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			cfg.Relay.MaxAttempts = parsed
		}
	}
	if v := os.Getenv("RELAY_BASE_BACKOFF"); v != "" {
		if parsed, err := time.ParseDuration(v); err == nil {
			cfg.Relay.BaseBackoff = parsed
		}
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("LLM_TEMPERATURE"); v != "" {
		if parsed, err := strconv.ParseFloat(v, 32); err == nil {
			cfg.LLM.Temperature = float32(parsed)
		}
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		cfg.Gemini.APIKey = v
	}
	if v := os.Getenv("GEMINI_MODEL"); v != "" {
		cfg.Gemini.Model = v
	}
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func defaultConfig() *Config {
	return &Config{
		HTTP: HTTPConfig{
			Address:        ":8000",
			ReadTimeout:    10 * time.Second,
			WriteTimeout:   60 * time.Second,
			AllowedOrigins: []string{"*"},
		},
		Agent: AgentConfig{
			Backend:         BackendPlaceholder,
			ContextLimit:    20,
			MaxPromptTokens: 6000,
			SystemPrompt:    "You are an AI assistant that helps summarize Slack channel conversations.\nYou are currently analyzing messages from the #%s channel.\nBe concise, highlight action items, and mention important decisions.\nFormat your response with markdown for better readability.",
		},
		ContextStore: ContextStoreConfig{
			Valkey: ValkeyConfig{
				Enabled: false,
				Prefix:  "slacksum:context",
			},
		},
		Relay: RelayConfig{
			BaseURL:     "http://localhost:3000",
			Path:        "/api/push/send",
			Timeout:     10 * time.Second,
			MaxAttempts: 2,
			BaseBackoff: 250 * time.Millisecond,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
		},
		Gemini: GeminiConfig{
			Model:       "gemini-1.5-flash",
			Temperature: 0.3,
		},
	}
}

// Validate ensures the configuration is safe to use.
func (c *Config) Validate() error {
	if c.HTTP.Address == "" {
		return errors.New("http.address cannot be empty")
	}
	if c.Agent.ContextLimit <= 0 {
		return errors.New("agent.contextLimit must be positive")
	}
	if c.Agent.MaxPromptTokens < 0 {
		return errors.New("agent.maxPromptTokens cannot be negative")
	}
	if strings.TrimSpace(c.Agent.SystemPrompt) == "" {
		return errors.New("agent.systemPrompt cannot be empty")
	}
	switch c.Agent.Backend {
	case BackendPlaceholder:
	case BackendChatGPT:
		if strings.TrimSpace(c.LLM.APIKey) == "" {
			return errors.New("llm.apiKey is required for the chatgpt backend")
		}
	case BackendGemini:
		if strings.TrimSpace(c.Gemini.APIKey) == "" {
			return errors.New("gemini.apiKey is required for the gemini backend")
		}
	default:
		return fmt.Errorf("agent.backend %q is not supported", c.Agent.Backend)
	}
	if c.ContextStore.Valkey.Enabled && strings.TrimSpace(c.ContextStore.Valkey.Addr) == "" {
		return errors.New("contextStore.valkey.addr cannot be empty when valkey is enabled")
	}
	if c.ContextStore.Valkey.TTL < 0 {
		return errors.New("contextStore.valkey.ttl cannot be negative")
	}
	if strings.TrimSpace(c.Relay.BaseURL) == "" {
		return errors.New("relay.baseUrl cannot be empty")
	}
	if !strings.HasPrefix(c.Relay.Path, "/") {
		return errors.New("relay.path must start with /")
	}
	if c.Relay.Timeout <= 0 {
		return errors.New("relay.timeout must be positive")
	}
	if c.Relay.MaxAttempts <= 0 {
		return errors.New("relay.maxAttempts must be positive")
	}
	if c.Relay.BaseBackoff < 0 {
		return errors.New("relay.baseBackoff cannot be negative")
	}
	return nil
}
