package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"15s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"90s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"30s"`
		CORS            bool          `yaml:"cors" default:"true"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	Logging struct {
		Level     string `yaml:"level" default:"info"`
		Format    string `yaml:"format" default:"console"`
		Output    string `yaml:"output" default:"stdout"`
		Collector struct {
			Enabled        bool          `yaml:"enabled"`
			Topic          string        `yaml:"topic" default:"finscope.logs"`
			Interval       time.Duration `yaml:"interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
			IncludeWarn    bool          `yaml:"include_warn"`
		} `yaml:"collector"`
	} `yaml:"logging"`
	Cache     CacheConfig     `yaml:"cache"`
	Providers ProvidersConfig `yaml:"providers"`
	LLM       struct {
		APIKey  string        `yaml:"api_key"`
		Model   string        `yaml:"model" default:"gemini-2.5-flash"`
		Timeout time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Archive  struct {
		// Backend is one of none, kafka, redis, clickhouse.
		Backend    string        `yaml:"backend" default:"none"`
		Topic      string        `yaml:"topic" default:"finscope.reports"`
		BufferSize int           `yaml:"buffer_size" default:"64"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
		BaseDelay  time.Duration `yaml:"base_delay" default:"200ms"`
		Queue      struct {
			Prefix       string        `yaml:"prefix" default:"finscope:queue"`
			Workers      int           `yaml:"workers" default:"2"`
			RetryLimit   int           `yaml:"retry_limit" default:"3"`
			RetryDelay   time.Duration `yaml:"retry_delay" default:"5s"`
			PollInterval time.Duration `yaml:"poll_interval" default:"1s"`
		} `yaml:"queue"`
	} `yaml:"archive"`
	Kafka struct {
		Brokers          []string `yaml:"brokers"`
		RequiredAcks     int      `yaml:"required_acks" default:"-1"`
		Compression      string   `yaml:"compression" default:"snappy"`
		// AutoCreateTopics is for local clusters without topic provisioning.
		AutoCreateTopics bool     `yaml:"auto_create_topics"`
		Producer         struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
		Consumer struct {
			Enabled    bool          `yaml:"enabled"`
			GroupID    string        `yaml:"group_id" default:"finscope-archive"`
			Workers    int           `yaml:"workers" default:"2"`
			BufferSize int           `yaml:"buffer_size" default:"64"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"200ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic   string        `yaml:"dlq_topic" default:"finscope.reports.dlq"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"10485760"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"finscope"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	PersonalFinance struct {
		// Source is one of none, http, clickhouse.
		Source     string `yaml:"source" default:"http"`
		WindowDays int    `yaml:"window_days" default:"30"`
	} `yaml:"personal_finance"`
	Share struct {
		DefaultTTL time.Duration `yaml:"default_ttl" default:"1h"`
		MinTTL     time.Duration `yaml:"min_ttl" default:"5m"`
		MaxTTL     time.Duration `yaml:"max_ttl" default:"24h"`
		Origin     string        `yaml:"origin" default:"https://app.finscope.us"`
	} `yaml:"share"`
	RateLimit struct {
		Enabled      bool    `yaml:"enabled" default:"true"`
		Capacity     float64 `yaml:"capacity" default:"5"`
		RefillPerSec float64 `yaml:"refill_per_sec" default:"0.5"`
	} `yaml:"ratelimit"`
}

type CacheConfig struct {
	// Backend is one of memory, redis, layered.
	Backend       string `yaml:"backend" default:"memory"`
	MemoryMaxSize int    `yaml:"memory_max_size" default:"2000"`
	Redis         struct {
		Host     string `yaml:"host" default:"localhost"`
		Port     int    `yaml:"port" default:"6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		PoolSize int    `yaml:"pool_size" default:"10"`
		Prefix   string `yaml:"prefix" default:"finscope"`
	} `yaml:"redis"`
	TTL struct {
		Market   time.Duration `yaml:"market" default:"120s"`
		Macro    time.Duration `yaml:"macro" default:"300s"`
		News     time.Duration `yaml:"news" default:"300s"`
		Forecast time.Duration `yaml:"forecast" default:"600s"`
		Report   time.Duration `yaml:"report" default:"300s"`
		// L1 caps the process-local copy kept by the layered backend.
		L1 time.Duration `yaml:"l1" default:"60s"`
	} `yaml:"ttl"`
}

type ProvidersConfig struct {
	Python struct {
		URL             string        `yaml:"url" default:"http://localhost:8000"`
		MarketTimeout   time.Duration `yaml:"market_timeout" default:"15s"`
		AnalyzeTimeout  time.Duration `yaml:"analyze_timeout" default:"15s"`
		ForecastTimeout time.Duration `yaml:"forecast_timeout" default:"20s"`
		InvestTimeout   time.Duration `yaml:"invest_timeout" default:"15s"`
		BankTimeout     time.Duration `yaml:"bank_timeout" default:"10s"`
		NewsTimeout     time.Duration `yaml:"news_timeout" default:"8s"`
		RetryAttempts   int           `yaml:"retry_attempts" default:"2"`
		Period          string        `yaml:"period" default:"6mo"`
		Interval        string        `yaml:"interval" default:"1d"`
		RateLimit       float64       `yaml:"rate_limit" default:"5"`
	} `yaml:"python"`
	FRED struct {
		APIKey    string        `yaml:"api_key"`
		BaseURL   string        `yaml:"base_url" default:"https://api.stlouisfed.org"`
		Timeout   time.Duration `yaml:"timeout" default:"15s"`
		RateLimit float64       `yaml:"rate_limit" default:"2"`
	} `yaml:"fred"`
	Finnhub struct {
		APIKey    string        `yaml:"api_key"`
		BaseURL   string        `yaml:"base_url" default:"https://finnhub.io"`
		Category  string        `yaml:"category" default:"general"`
		Timeout   time.Duration `yaml:"timeout" default:"8s"`
		RateLimit float64       `yaml:"rate_limit" default:"1"`
		Limit     int           `yaml:"limit" default:"50"`
	} `yaml:"finnhub"`
}

type PipelineConfig struct {
	DefaultSymbol     string `yaml:"default_symbol" default:"AMD"`
	MarketConcurrency int    `yaml:"market_concurrency" default:"4"`
	ForecastHorizon   int    `yaml:"forecast_horizon" default:"14"`
	ChartPoints       int    `yaml:"chart_points" default:"120"`
	VIXSymbol         string `yaml:"vix_symbol" default:"^VIX"`
}

// Load reads and parses a YAML configuration file, filling unset fields
// from their defaults.
func Load(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := parse(path)
	if err != nil {
		return nil, err
	}
	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Default returns a configuration built purely from defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

func parse(path string) (*Config, error) {
	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("config defaults: %w", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("PYTHON_SERVICE_URL"); v != "" {
		c.Providers.Python.URL = v
	}
	if v := getenv("FRED_API_KEY"); v != "" {
		c.Providers.FRED.APIKey = v
	}
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Providers.Finnhub.APIKey = v
	}
	if v := firstNonEmpty(getenv("GOOGLE_API_KEY"), getenv("ADK_API_KEY")); v != "" {
		c.LLM.APIKey = v
	}
	if v := getenv("GEMINI_MODEL"); v != "" {
		c.LLM.Model = v
	}
	if v := getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		c.Cache.Redis.Host = host
		if ok {
			if p, err := strconv.Atoi(port); err == nil {
				c.Cache.Redis.Port = p
			}
		}
	}
	if v := getenv("ARCHIVE_BACKEND"); v != "" {
		c.Archive.Backend = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := getenv("SHARE_TTL_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			c.Share.DefaultTTL = time.Duration(secs) * time.Second
		}
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case "memory", "redis", "layered":
	default:
		return fmt.Errorf("cache.backend must be 'memory', 'redis' or 'layered', got '%s'", c.Cache.Backend)
	}
	switch c.Archive.Backend {
	case "none", "":
	case "kafka":
		if len(c.Kafka.Brokers) == 0 {
			return fmt.Errorf("kafka.brokers is required when archive.backend is kafka")
		}
		if !c.ClickHouse.Enabled && c.Kafka.Consumer.Enabled {
			return fmt.Errorf("clickhouse.enabled is required for the archive consumer")
		}
	case "redis":
		if c.Cache.Backend == "memory" {
			return fmt.Errorf("cache.backend must use redis when archive.backend is redis")
		}
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("clickhouse.enabled is required when archive.backend is redis")
		}
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("clickhouse.enabled is required when archive.backend is clickhouse")
		}
	default:
		return fmt.Errorf("archive.backend must be 'none', 'kafka', 'redis' or 'clickhouse', got '%s'", c.Archive.Backend)
	}
	switch c.PersonalFinance.Source {
	case "none", "http":
	case "clickhouse":
		if !c.ClickHouse.Enabled {
			return fmt.Errorf("clickhouse.enabled is required when personal_finance.source is clickhouse")
		}
	default:
		return fmt.Errorf("personal_finance.source must be 'none', 'http' or 'clickhouse', got '%s'", c.PersonalFinance.Source)
	}
	if c.Logging.Collector.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when logging.collector is enabled")
	}
	if c.Providers.Python.URL == "" {
		return fmt.Errorf("providers.python.url is required")
	}
	if c.Pipeline.MarketConcurrency <= 0 {
		return fmt.Errorf("pipeline.market_concurrency must be positive")
	}
	if c.Share.MinTTL > c.Share.MaxTTL {
		return fmt.Errorf("share.min_ttl must not exceed share.max_ttl")
	}
	return nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
