package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	Server     ServerConfig     `envPrefix:"SERVER_"`
	Db         DbConfig         `envPrefix:"DB_"`
	Sandbox    SandboxConfig    `envPrefix:"SANDBOX_"`
	Jobs       JobsConfig       `envPrefix:"JOBS_"`
	Problems   ProblemsConfig   `envPrefix:"PROBLEMS_"`
	Redis      RedisConfig      `envPrefix:"REDIS_"`
	Limiter    LimiterConfig    `envPrefix:"RATE_"`
	Preprocess PreprocessConfig `envPrefix:"PREPROCESS_"`
	Log        LogConfig        `envPrefix:"LOG_"`
}

type ServerConfig struct {
	Port         string `env:"PORT" envDefault:"8080"`
	ReadTimeout  int    `env:"READ_TIMEOUT" envDefault:"15"`
	WriteTimeout int    `env:"WRITE_TIMEOUT" envDefault:"30"`
	IdleTimeout  int    `env:"IDLE_TIMEOUT" envDefault:"60"`
}

type DbConfig struct {
	Host     string `env:"HOST" envDefault:"localhost"`
	Port     int    `env:"PORT" envDefault:"5432"`
	User     string `env:"USER" envDefault:"postgres"`
	Password string `env:"PASSWORD"`
	Name     string `env:"NAME" envDefault:"codejudge"`
	SSLMode  string `env:"SSL_MODE" envDefault:"disable"`
}

type SandboxConfig struct {
	// WorkRoot must be visible to the docker daemon at the same path.
	WorkRoot      string        `env:"WORK_ROOT"`
	LanguagesFile string        `env:"LANGUAGES_FILE"`
	MemoryLimitMb int64         `env:"MEMORY_LIMIT_MB" envDefault:"512"`
	PidsLimit     int64         `env:"PIDS_LIMIT" envDefault:"128"`
	CPUs          float64       `env:"CPUS" envDefault:"1"`
	RunAsHostUser bool          `env:"RUN_AS_HOST_USER" envDefault:"true"`
	PullOnStart   bool          `env:"PULL_ON_START" envDefault:"true"`
	WaitGrace     time.Duration `env:"WAIT_GRACE" envDefault:"10s"`
}

type JobsConfig struct {
	TTL           time.Duration `env:"TTL" envDefault:"30m"`
	SweepInterval time.Duration `env:"SWEEP_INTERVAL" envDefault:"1m"`
}

type ProblemsConfig struct {
	Store string `env:"STORE" envDefault:"file"`
	Dir   string `env:"DIR" envDefault:"problems"`
}

type RedisConfig struct {
	Addr     string `env:"ADDR"`
	Password string `env:"PASSWORD"`
	DB       int    `env:"DB" envDefault:"0"`
}

type LimiterConfig struct {
	GlobalRPS     float64       `env:"GLOBAL_RPS" envDefault:"100"`
	PerIPRPS      float64       `env:"PER_IP_RPS" envDefault:"5"`
	PerIPBurst    int           `env:"PER_IP_BURST" envDefault:"10"`
	MaxConcurrent int           `env:"MAX_CONCURRENT" envDefault:"50"`
	IdleTTL       time.Duration `env:"IDLE_TTL" envDefault:"5m"`
}

type PreprocessConfig struct {
	Timeout     time.Duration `env:"TIMEOUT" envDefault:"2s"`
	MaxExprSize int           `env:"MAX_EXPR" envDefault:"4096"`
}

type LogConfig struct {
	Level  string `env:"LEVEL" envDefault:"info"`
	Format string `env:"FORMAT" envDefault:"console"`
}

// LoadConfig reads an optional .env file, then the process environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	conf := &Config{}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *Config) validate() error {
	switch c.Problems.Store {
	case "file", "postgres":
	default:
		return fmt.Errorf("unknown problem store %q", c.Problems.Store)
	}
	if c.Sandbox.WaitGrace <= 0 {
		return fmt.Errorf("sandbox wait grace must be positive")
	}
	if c.Preprocess.Timeout <= 0 {
		return fmt.Errorf("preprocess timeout must be positive")
	}
	return nil
}

// UsesDatabase reports whether a postgres pool is required.
func (c *Config) UsesDatabase() bool {
	return c.Problems.Store == "postgres"
}
