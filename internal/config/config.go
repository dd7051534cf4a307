// 包 config：集中读取运行参数（.env → YAML 文件 → 环境变量覆盖），其余模块只接收已解析的结构体
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
)

// Config：进程级配置快照
type Config struct {
	Addr    string `yaml:"addr"`
	APIBase string `yaml:"api_base"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	Polygons  PolygonsConfig  `yaml:"polygons"`
	Generator GeneratorConfig `yaml:"generator"`
	ViewCache ViewCacheConfig `yaml:"view_cache"`
	Redis     RedisConfig     `yaml:"redis"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

// PolygonsConfig：多边形数据源与字段映射
type PolygonsConfig struct {
	Path          string `yaml:"path"`
	District      string `yaml:"district"`
	ColoniaField  string `yaml:"colonia_field"`
	DistrictField string `yaml:"district_field"`
	DBFEncoding   string `yaml:"dbf_encoding"`
}

// GeneratorConfig：模拟报告生成参数；Seed 为 0 时启动期取时间种子
type GeneratorConfig struct {
	PerService  int    `yaml:"per_service"`
	Seed        uint64 `yaml:"seed"`
	MaxAttempts int    `yaml:"max_attempts"`
}

type ViewCacheConfig struct {
	Size   int `yaml:"size"`
	TTLSec int `yaml:"ttl_s"`
}

type RedisConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    string `yaml:"port"`
	Pass    string `yaml:"pass"`
	DB      int    `yaml:"db"`
}

type RateLimitConfig struct {
	Enabled bool `yaml:"enabled"`
	QPS     int  `yaml:"qps"`
}

// Default：与原始看板一致的默认值（古斯塔沃·A·马德罗区，每类服务每个 colonia 5 个点）
func Default() Config {
	return Config{
		Addr:      ":8080",
		APIBase:   "/api",
		LogLevel:  "info",
		LogFormat: "text",
		Polygons: PolygonsConfig{
			Path:          filepath.Join("data", "poligonos_colonias_cdmx.shp"),
			District:      "Gustavo A. Madero",
			ColoniaField:  "colonia",
			DistrictField: "alc",
			DBFEncoding:   "utf-8",
		},
		Generator: GeneratorConfig{PerService: 5, MaxAttempts: 10000},
		ViewCache: ViewCacheConfig{Size: 64, TTLSec: 600},
		Redis:     RedisConfig{Host: "127.0.0.1", Port: "6379"},
		RateLimit: RateLimitConfig{QPS: 50},
	}
}

// Load：读取 .env 与可选 YAML 文件后应用环境变量覆盖
// 约束：CONFIG_FILE 显式指定但不存在时报错；未指定时仅在 config.yaml 存在时读取
func Load() (Config, error) {
	_ = godotenv.Load(".env")
	_ = godotenv.Load(filepath.Join("data", "env", ".env"))

	cfg := Default()
	path := os.Getenv("CONFIG_FILE")
	explicit := path != ""
	if !explicit {
		path = "config.yaml"
	}
	if err := cfg.loadYAML(path); err != nil {
		if explicit || !errors.Is(err, os.ErrNotExist) {
			return cfg, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) loadYAML(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

// applyEnvOverrides：环境变量优先于 YAML；数值解析失败直接返回错误，避免静默使用默认值
func (c *Config) applyEnvOverrides() error {
	setStr(&c.Addr, "ADDR")
	setStr(&c.APIBase, "API_BASE")
	setStr(&c.LogLevel, "LOG_LEVEL")
	setStr(&c.LogFormat, "LOG_FORMAT")
	setStr(&c.Polygons.Path, "POLYGONS_PATH")
	setStr(&c.Polygons.District, "DISTRICT")
	setStr(&c.Polygons.ColoniaField, "COLONIA_FIELD")
	setStr(&c.Polygons.DistrictField, "DISTRICT_FIELD")
	setStr(&c.Polygons.DBFEncoding, "DBF_ENCODING")
	setStr(&c.Redis.Host, "REDIS_HOST")
	setStr(&c.Redis.Port, "REDIS_PORT")
	setStr(&c.Redis.Pass, "REDIS_PASS")

	var errs []error
	errs = append(errs,
		setInt(&c.Generator.PerService, "REPORTS_PER_SERVICE"),
		setInt(&c.Generator.MaxAttempts, "GENERATOR_MAX_ATTEMPTS"),
		setInt(&c.ViewCache.Size, "VIEW_CACHE_SIZE"),
		setInt(&c.ViewCache.TTLSec, "VIEW_CACHE_TTL_S"),
		setInt(&c.Redis.DB, "REDIS_DB"),
		setInt(&c.RateLimit.QPS, "RATE_LIMIT_QPS"),
		setBool(&c.Redis.Enabled, "REDIS_ENABLED"),
		setBool(&c.RateLimit.Enabled, "RATE_LIMIT_ENABLED"),
	)
	if s := os.Getenv("GENERATOR_SEED"); s != "" {
		n, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			errs = append(errs, fmt.Errorf("config: GENERATOR_SEED: %w", err))
		} else {
			c.Generator.Seed = n
		}
	}
	return errors.Join(errs...)
}

// Validate：检查取值范围
func (c Config) Validate() error {
	var errs []error
	if c.Polygons.Path == "" {
		errs = append(errs, errors.New("config: polygons path is empty"))
	}
	if c.Polygons.ColoniaField == "" || c.Polygons.DistrictField == "" {
		errs = append(errs, errors.New("config: colonia and district fields are required"))
	}
	if c.Generator.PerService < 0 {
		errs = append(errs, fmt.Errorf("config: per_service must be >= 0, got %d", c.Generator.PerService))
	}
	if c.Generator.MaxAttempts <= 0 {
		errs = append(errs, fmt.Errorf("config: max_attempts must be > 0, got %d", c.Generator.MaxAttempts))
	}
	if !strings.HasPrefix(c.APIBase, "/") || strings.Trim(c.APIBase, "/") == "" {
		errs = append(errs, fmt.Errorf("config: api_base must start with '/', got %q", c.APIBase))
	}
	return errors.Join(errs...)
}

// Addr：host:port
func (r RedisConfig) Addr() string { return r.Host + ":" + r.Port }

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = n
	return nil
}

func setBool(dst *bool, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = b
	return nil
}
