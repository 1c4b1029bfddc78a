package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds every setting the server reads at startup.
type Config struct {
	Env string `mapstructure:"env"`

	HTTP struct {
		Port            string        `mapstructure:"port"`
		ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
	} `mapstructure:"http"`

	Mongo struct {
		URI      string        `mapstructure:"uri"`
		Database string        `mapstructure:"database"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"mongo"`

	Redis struct {
		Addr     string `mapstructure:"addr"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Elastic struct {
		URL      string `mapstructure:"url"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		Index    string `mapstructure:"index"`
	} `mapstructure:"elastic"`

	MinIO struct {
		Endpoint  string `mapstructure:"endpoint"`
		AccessKey string `mapstructure:"access_key"`
		SecretKey string `mapstructure:"secret_key"`
		Bucket    string `mapstructure:"bucket"`
		UseSSL    bool   `mapstructure:"use_ssl"`
	} `mapstructure:"minio"`

	Kafka struct {
		Brokers []string `mapstructure:"brokers"`
		Topic   string   `mapstructure:"topic"`
	} `mapstructure:"kafka"`

	Scylla struct {
		Hosts    []string      `mapstructure:"hosts"`
		Keyspace string        `mapstructure:"keyspace"`
		Username string        `mapstructure:"username"`
		Password string        `mapstructure:"password"`
		Timeout  time.Duration `mapstructure:"timeout"`
	} `mapstructure:"scylla"`

	SMTP struct {
		Host     string `mapstructure:"host"`
		Port     int    `mapstructure:"port"`
		Username string `mapstructure:"username"`
		Password string `mapstructure:"password"`
		From     string `mapstructure:"from"`
	} `mapstructure:"smtp"`

	Auth struct {
		JWTSecret      string        `mapstructure:"jwt_secret"`
		TokenTTL       time.Duration `mapstructure:"token_ttl"`
		CookieSecure   bool          `mapstructure:"cookie_secure"`
		LoginRateLimit int           `mapstructure:"login_rate_limit"`
	} `mapstructure:"auth"`

	CORS struct {
		AllowOrigins []string `mapstructure:"allow_origins"`
	} `mapstructure:"cors"`

	Log struct {
		Level  string `mapstructure:"level"`
		Pretty bool   `mapstructure:"pretty"`
	} `mapstructure:"log"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("env", "development")
	v.SetDefault("http.port", "8000")
	v.SetDefault("http.shutdown_timeout", 10*time.Second)
	v.SetDefault("mongo.uri", "mongodb://localhost:27017")
	v.SetDefault("mongo.database", "emporium")
	v.SetDefault("mongo.timeout", 5*time.Second)
	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("elastic.url", "")
	v.SetDefault("elastic.username", "")
	v.SetDefault("elastic.password", "")
	v.SetDefault("elastic.index", "products")
	v.SetDefault("minio.endpoint", "")
	v.SetDefault("minio.access_key", "")
	v.SetDefault("minio.secret_key", "")
	v.SetDefault("minio.bucket", "product-images")
	v.SetDefault("minio.use_ssl", false)
	v.SetDefault("kafka.brokers", []string{})
	v.SetDefault("kafka.topic", "orders")
	v.SetDefault("scylla.hosts", []string{})
	v.SetDefault("scylla.keyspace", "emporium_audit")
	v.SetDefault("scylla.username", "")
	v.SetDefault("scylla.password", "")
	v.SetDefault("scylla.timeout", 5*time.Second)
	v.SetDefault("smtp.host", "")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.username", "")
	v.SetDefault("smtp.password", "")
	v.SetDefault("smtp.from", "noreply@emporium.local")
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.token_ttl", 30*24*time.Hour)
	v.SetDefault("auth.cookie_secure", false)
	v.SetDefault("auth.login_rate_limit", 5)
	v.SetDefault("cors.allow_origins", []string{"http://localhost:3000"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)
}

// Load reads .env when present, then the process environment.
// A key such as "mongo.uri" maps to the MONGO_URI variable.
func Load() (*Config, error) {
	if err := godotenv.Load(".env"); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	} else {
		log.Println("✅ .env file loaded")
	}
	return FromViper(viper.New())
}

// FromViper builds a Config from v with defaults applied.
func FromViper(v *viper.Viper) (*Config, error) {
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Lists come from the environment as "a,b,c".
	cfg.Kafka.Brokers = splitList(v.GetStringSlice("kafka.brokers"))
	cfg.Scylla.Hosts = splitList(v.GetStringSlice("scylla.hosts"))
	cfg.CORS.AllowOrigins = splitList(v.GetStringSlice("cors.allow_origins"))

	if cfg.Auth.JWTSecret == "" {
		if cfg.Env == "production" {
			return nil, fmt.Errorf("AUTH_JWT_SECRET must be set in production")
		}
		cfg.Auth.JWTSecret = "dev_secret_change_me"
	}
	return &cfg, nil
}

func splitList(in []string) []string {
	out := make([]string, 0, len(in))
	for _, item := range in {
		for _, part := range strings.Split(item, ",") {
			if p := strings.TrimSpace(part); p != "" {
				out = append(out, p)
			}
		}
	}
	return out
}
