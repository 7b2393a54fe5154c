package config

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

const (
	defaultAddress         = "localhost:8080"
	defaultBaseAddress     = ""
	defaultStorageFilePath = "/tmp/drive-proxy-db.json"
	defaultLogLevel        = "info"
	defaultSecretKey       = "drive_proxy_secret"
	defaultProbeTimeout    = 10 * time.Second
	defaultProbeRate       = 5.0

	dotEnvFile = ".env"
)

// DefaultConfig конфигурация по умолчанию
var DefaultConfig = Config{
	address:         defaultAddress,
	baseAddress:     defaultBaseAddress,
	fileStoragePath: defaultStorageFilePath,
	logLevel:        defaultLogLevel,
	secretKey:       defaultSecretKey,
	probeTimeout:    defaultProbeTimeout,
	probeRate:       defaultProbeRate,
}

// Config конфигурация сервера. Значения только для чтения
type Config struct {
	address         string
	baseAddress     string
	fileStoragePath string
	databaseDSN     string
	sqlitePath      string
	logLevel        string
	secretKey       string
	probeTimeout    time.Duration
	probeRate       float64
}

// rawConfig промежуточная структура для файла, окружения и флагов
type rawConfig struct {
	Address         string        `env:"SERVER_ADDRESS" yaml:"server_address"`
	BaseAddress     string        `env:"BASE_URL" yaml:"base_url"`
	FileStoragePath string        `env:"FILE_STORAGE_PATH" yaml:"file_storage_path"`
	DatabaseDSN     string        `env:"DATABASE_DSN" yaml:"database_dsn"`
	SQLitePath      string        `env:"SQLITE_PATH" yaml:"sqlite_path"`
	LogLevel        string        `env:"LOG_LEVEL" yaml:"log_level"`
	SecretKey       string        `env:"SECRET_KEY" yaml:"secret_key"`
	ProbeTimeout    time.Duration `env:"PROBE_TIMEOUT" yaml:"probe_timeout"`
	ProbeRate       float64       `env:"PROBE_RATE" yaml:"probe_rate"`
	ConfigFile      string        `env:"CONFIG" yaml:"-"`
}

func (c Config) Address() string             { return c.address }
func (c Config) BaseAddress() string         { return c.baseAddress }
func (c Config) FileStoragePath() string     { return c.fileStoragePath }
func (c Config) DatabaseDSN() string         { return c.databaseDSN }
func (c Config) SQLitePath() string          { return c.sqlitePath }
func (c Config) LogLevel() string            { return c.logLevel }
func (c Config) SecretKey() string           { return c.secretKey }
func (c Config) ProbeTimeout() time.Duration { return c.probeTimeout }
func (c Config) ProbeRate() float64          { return c.probeRate }

// WithBaseAddress копия конфигурации с другим базовым адресом
func (c Config) WithBaseAddress(base string) Config {
	c.baseAddress = normalizeBase(base)
	return c
}

// WithFileStoragePath копия конфигурации с другим файлом хранилища
func (c Config) WithFileStoragePath(path string) Config {
	c.fileStoragePath = path
	return c
}

// ParseConfig собирает конфигурацию. Приоритет по возрастанию: значения по умолчанию, файл yaml, .env, переменные окружения, флаги args
func ParseConfig(log *slog.Logger, args []string) (Config, error) {
	raw := rawConfig{
		Address:         defaultAddress,
		BaseAddress:     defaultBaseAddress,
		FileStoragePath: defaultStorageFilePath,
		LogLevel:        defaultLogLevel,
		SecretKey:       defaultSecretKey,
		ProbeTimeout:    defaultProbeTimeout,
		ProbeRate:       defaultProbeRate,
	}

	flags := rawConfig{}
	fset := flag.NewFlagSet("driveproxy", flag.ContinueOnError)
	fset.StringVar(&flags.Address, "a", defaultAddress, "address:host")
	fset.StringVar(&flags.BaseAddress, "b", defaultBaseAddress, "external address for viewer links, empty means the request address")
	fset.StringVar(&flags.FileStoragePath, "f", defaultStorageFilePath, "file storage path")
	fset.StringVar(&flags.DatabaseDSN, "d", "", "database dsn")
	fset.StringVar(&flags.SQLitePath, "s", "", "sqlite database path")
	fset.StringVar(&flags.LogLevel, "l", defaultLogLevel, "log level")
	fset.StringVar(&flags.SecretKey, "k", defaultSecretKey, "secret key for profile cookie")
	fset.DurationVar(&flags.ProbeTimeout, "t", defaultProbeTimeout, "image probe timeout")
	fset.Float64Var(&flags.ProbeRate, "r", defaultProbeRate, "image probes per second")
	fset.StringVar(&flags.ConfigFile, "c", "", "config file (yaml)")
	if err := fset.Parse(args); err != nil {
		return Config{}, fmt.Errorf("разбор флагов. %w", err)
	}
	set := make(map[string]bool)
	fset.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if err := godotenv.Load(dotEnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("чтение %s. %w", dotEnvFile, err)
	}

	configFile := os.Getenv("CONFIG")
	if set["c"] {
		configFile = flags.ConfigFile
	}
	if configFile != "" {
		if err := readFile(configFile, &raw); err != nil {
			return Config{}, err
		}
		log.Info("прочитан файл конфигурации", slog.String("файл", configFile))
	}

	if err := env.Parse(&raw); err != nil {
		return Config{}, fmt.Errorf("чтение переменных окружения. %w", err)
	}

	if set["a"] {
		raw.Address = flags.Address
	}
	if set["b"] {
		raw.BaseAddress = flags.BaseAddress
	}
	if set["f"] {
		raw.FileStoragePath = flags.FileStoragePath
	}
	if set["d"] {
		raw.DatabaseDSN = flags.DatabaseDSN
	}
	if set["s"] {
		raw.SQLitePath = flags.SQLitePath
	}
	if set["l"] {
		raw.LogLevel = flags.LogLevel
	}
	if set["k"] {
		raw.SecretKey = flags.SecretKey
	}
	if set["t"] {
		raw.ProbeTimeout = flags.ProbeTimeout
	}
	if set["r"] {
		raw.ProbeRate = flags.ProbeRate
	}

	if raw.Address == "" {
		return Config{}, errors.New("не задан адрес сервера")
	}
	if raw.SecretKey == "" {
		return Config{}, errors.New("не задан секретный ключ")
	}
	return Config{
		address:         raw.Address,
		baseAddress:     normalizeBase(raw.BaseAddress),
		fileStoragePath: raw.FileStoragePath,
		databaseDSN:     raw.DatabaseDSN,
		sqlitePath:      raw.SQLitePath,
		logLevel:        raw.LogLevel,
		secretKey:       raw.SecretKey,
		probeTimeout:    raw.ProbeTimeout,
		probeRate:       raw.ProbeRate,
	}, nil
}

func readFile(path string, raw *rawConfig) error {
	body, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("чтение файла конфигурации \"%s\". %w", path, err)
	}
	if err = yaml.Unmarshal(body, raw); err != nil {
		return fmt.Errorf("разбор файла конфигурации \"%s\". %w", path, err)
	}
	return nil
}

// normalizeBase базовый адрес всегда заканчивается на /. Пустой адрес означает адрес запроса
func normalizeBase(base string) string {
	if base == "" {
		return ""
	}
	return strings.TrimSuffix(base, "/") + "/"
}
