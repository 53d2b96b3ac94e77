package model

import "time"

// Config is the complete WildAware configuration
type Config struct {
	Server      ServerConfig      `yaml:"server" mapstructure:"server"`
	Catalog     CatalogConfig     `yaml:"catalog" mapstructure:"catalog"`
	Cache       CacheConfig       `yaml:"cache" mapstructure:"cache"`
	Store       StoreConfig       `yaml:"store" mapstructure:"store"`
	LLM         LLMConfig         `yaml:"llm" mapstructure:"llm"`
	Classifier  ClassifierConfig  `yaml:"classifier" mapstructure:"classifier"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" mapstructure:"concurrency"`
	Output      OutputConfig      `yaml:"output" mapstructure:"output"`
	Proxy       ProxyConfig       `yaml:"proxy,omitempty" mapstructure:"proxy"`
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr          string  `yaml:"addr" mapstructure:"addr"`
	RatePerSecond float64 `yaml:"rate_per_second" mapstructure:"rate_per_second"` // Chat requests per client
	Burst         int     `yaml:"burst" mapstructure:"burst"`
	// Proxies (IPs or CIDRs) whose X-Forwarded-For is believed; empty trusts none
	TrustedProxies []string `yaml:"trusted_proxies,omitempty" mapstructure:"trusted_proxies"`
}

// CatalogConfig selects where the species reference list comes from
type CatalogConfig struct {
	Source    string        `yaml:"source" mapstructure:"source"` // static, file, remote
	Path      string        `yaml:"path,omitempty" mapstructure:"path"`
	BaseURL   string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	UserAgent string        `yaml:"user_agent" mapstructure:"user_agent"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout"`
	CacheTTL  time.Duration `yaml:"cache_ttl" mapstructure:"cache_ttl"`
	Watch     bool          `yaml:"watch" mapstructure:"watch"` // Reload file catalogs on change
}

// CacheConfig selects the cache backend for remote catalog documents
type CacheConfig struct {
	Backend   string `yaml:"backend" mapstructure:"backend"` // memory, layered, redis
	Dir       string `yaml:"dir,omitempty" mapstructure:"dir"`
	RedisAddr string `yaml:"redis_addr,omitempty" mapstructure:"redis_addr"`
	RedisDB   int    `yaml:"redis_db,omitempty" mapstructure:"redis_db"`
}

// StoreConfig selects the sighting and activity store
type StoreConfig struct {
	Driver string `yaml:"driver" mapstructure:"driver"` // memory, sqlite
	Path   string `yaml:"path,omitempty" mapstructure:"path"`
}

// LLMConfig configures optional LLM reply generation
type LLMConfig struct {
	Provider  string `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model     string `yaml:"model,omitempty" mapstructure:"model"`
	APIKey    string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL   string `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout   int    `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ProxyConfig routes outbound requests (remote catalog, LLM providers).
// Empty values fall back to HTTP_PROXY, HTTPS_PROXY and NO_PROXY.
type ProxyConfig struct {
	HTTPProxy  string `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy string `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy    string `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// ClassifierConfig tunes how classification results are presented
type ClassifierConfig struct {
	LowConfidenceThreshold float64 `yaml:"low_confidence_threshold" mapstructure:"low_confidence_threshold"`
}

// ConcurrencyConfig bounds batch classification
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" mapstructure:"verbose"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Addr:          ":8080",
			RatePerSecond: 2,
			Burst:         5,
		},
		Catalog: CatalogConfig{
			Source:    "static",
			UserAgent: "WildAware/0.1 (+https://github.com/ppiankov/wildaware)",
			Timeout:   10 * time.Second,
			CacheTTL:  15 * time.Minute,
		},
		Cache: CacheConfig{
			Backend: "memory",
		},
		Store: StoreConfig{
			Driver: "memory",
		},
		LLM: LLMConfig{
			Timeout:   30,
			MaxTokens: 800,
		},
		Classifier: ClassifierConfig{
			LowConfidenceThreshold: 0.7,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
	}
}
