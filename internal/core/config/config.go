package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const defaultPath = "./configs/config.local.yaml"

type HTTP struct {
	Host              string
	Port              int
	ReadTimeoutSec    int
	WriteTimeoutSec   int
	IdleTimeoutSec    int
	RequestTimeoutSec int
	RateLimitRPS      float64
	RateLimitBurst    int
	// 每 IP 令牌桶，rps<=0 关闭
	RateLimitPerIPRPS     float64
	RateLimitPerIPBurst   int
	RateLimitPerIPIdleSec int
	MaxConcurrent     int64
	MaxBodyBytes      int64
	CORSOrigins       []string
}

type App struct {
	Name string
	Env  string
	HTTP HTTP
}

// Development 开发模式：错误响应里允许带内部细节
func (a App) Development() bool {
	switch strings.ToLower(a.Env) {
	case "dev", "development", "local":
		return true
	}
	return false
}

type Rotate struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level  string
	JSON   bool
	Rotate Rotate
}

type JWT struct {
	Secret            string
	Issuer            string
	AccessTokenTTLMin int
	LeewaySec         int
}

func (j JWT) TTL() time.Duration { return time.Duration(j.AccessTokenTTLMin) * time.Minute }

func (j JWT) Leeway() time.Duration { return time.Duration(j.LeewaySec) * time.Second }

type Auth struct {
	BcryptCost int
}

type Redis struct {
	Addr       string `mapstructure:"addr"`
	Password   string `mapstructure:"password"`
	DB         int    `mapstructure:"db"`
	UserTTLSec int    `mapstructure:"userttlsec"`
}

func (r Redis) Enabled() bool { return strings.TrimSpace(r.Addr) != "" }

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type GraphQL struct {
	Introspection bool
	MaxDepth      int
}

type Config struct {
	App     App
	Log     Log
	JWT     JWT
	Auth    Auth
	DB      DB
	Redis   Redis `mapstructure:"redis"`
	GraphQL GraphQL
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "department-graphql")
	v.SetDefault("app.env", "development")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 3000)
	v.SetDefault("app.http.readtimeoutsec", 10)
	v.SetDefault("app.http.writetimeoutsec", 15)
	v.SetDefault("app.http.idletimeoutsec", 60)
	v.SetDefault("app.http.requesttimeoutsec", 10)
	v.SetDefault("app.http.ratelimitrps", 200)
	v.SetDefault("app.http.ratelimitburst", 400)
	v.SetDefault("app.http.ratelimitperiprps", 20)
	v.SetDefault("app.http.ratelimitperipburst", 40)
	v.SetDefault("app.http.ratelimitperipidlesec", 300)
	v.SetDefault("app.http.maxconcurrent", 300)
	v.SetDefault("app.http.maxbodybytes", 1<<20)
	v.SetDefault("app.http.corsorigins", []string{"*"})

	v.SetDefault("log.level", "info")
	v.SetDefault("log.json", false)
	v.SetDefault("log.rotate.enable", false)
	v.SetDefault("log.rotate.filename", "logs/app.log")
	v.SetDefault("log.rotate.maxsizemb", 100)
	v.SetDefault("log.rotate.maxbackups", 7)
	v.SetDefault("log.rotate.maxagedays", 30)

	v.SetDefault("jwt.secret", "")
	v.SetDefault("jwt.issuer", "department-graphql")
	v.SetDefault("jwt.accesstokenttlmin", 60)
	v.SetDefault("jwt.leewaysec", 0)

	v.SetDefault("auth.bcryptcost", 12)

	v.SetDefault("db.driver", "postgres")
	v.SetDefault("db.dsn", "")
	v.SetDefault("db.username", "")
	v.SetDefault("db.password", "")
	v.SetDefault("db.maxopenconns", 20)
	v.SetDefault("db.maxidleconns", 10)
	v.SetDefault("db.connmaxlifetimemin", 30)
	v.SetDefault("db.automigrate", true)
	v.SetDefault("db.loglevel", "warn")

	v.SetDefault("redis.addr", "")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.userttlsec", 300)

	v.SetDefault("graphql.introspection", true)
	v.SetDefault("graphql.maxdepth", 8)
}

// Load 读取 YAML（可选）+ APP_ 前缀环境变量覆盖
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	explicit := path != ""
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		explicit = path != ""
	}
	if path == "" {
		path = defaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		// 未显式指定且默认文件不存在：只用默认值 + 环境变量
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, os.ErrNotExist)) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.JWT.Secret) == "" {
		return errors.New("jwt.secret is required (APP_JWT_SECRET)")
	}
	if c.JWT.AccessTokenTTLMin <= 0 {
		return fmt.Errorf("jwt.accessTokenTTLMin must be positive, got %d", c.JWT.AccessTokenTTLMin)
	}
	switch c.DB.Driver {
	case "postgres", "mysql":
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	return nil
}
