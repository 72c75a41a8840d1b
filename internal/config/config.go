// Package config resolves the process configuration from flags, environment and an optional .env file.
package config

import (
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"aesthetica/internal/store"
)

const (
	defaultPort       = 8080
	defaultLLMTimeout = 30
)

type Config struct {
	Addr    string
	LogMode string

	Location *time.Location

	Store store.Options

	LLMBaseURL    string
	LLMAPIKey     string
	LLMChatModel  string
	LLMImageModel string
	LLMTimeout    time.Duration

	AMQPURL      string
	AMQPExchange string

	OTelEnabled bool
}

// Load reads envFiles (missing files are ignored), then the environment, then args.
// Variables already set in the environment win over .env entries.
func Load(args []string, envFiles ...string) (Config, error) {
	for _, path := range envFiles {
		if err := godotenv.Load(path); err != nil && !os.IsNotExist(err) {
			return Config{}, fmt.Errorf("load %s: %w", path, err)
		}
	}

	addr, err := resolveListenAddr(args)
	if err != nil {
		return Config{}, err
	}

	loc := time.Local
	if name := strings.TrimSpace(os.Getenv("AESTHETICA_TZ")); name != "" {
		loc, err = time.LoadLocation(name)
		if err != nil {
			return Config{}, fmt.Errorf("AESTHETICA_TZ: %w", err)
		}
	}

	engine := strings.ToLower(strings.TrimSpace(envOrDefault("AESTHETICA_STORE", store.EngineJSON)))
	switch engine {
	case store.EngineJSON, store.EngineSQLite, store.EngineRedis:
	default:
		return Config{}, fmt.Errorf("AESTHETICA_STORE: unsupported engine %q", engine)
	}

	return Config{
		Addr:     addr,
		LogMode:  envOrDefault("AESTHETICA_LOG_MODE", "prod"),
		Location: loc,
		Store: store.Options{
			Engine:        engine,
			Path:          envOrDefault("AESTHETICA_DATA_FILE", defaultDataFile(engine)),
			RedisAddr:     envOrDefault("AESTHETICA_REDIS_ADDR", "127.0.0.1:6379"),
			RedisPassword: os.Getenv("AESTHETICA_REDIS_PASSWORD"),
			RedisDB:       parseEnvInt("AESTHETICA_REDIS_DB", 0),
			QuotaBytes:    int64(parseEnvInt("AESTHETICA_STORE_QUOTA_BYTES", int(store.DefaultQuotaBytes))),
		},
		LLMBaseURL:    strings.TrimSpace(os.Getenv("AESTHETICA_LLM_BASE_URL")),
		LLMAPIKey:     strings.TrimSpace(os.Getenv("AESTHETICA_LLM_API_KEY")),
		LLMChatModel:  strings.TrimSpace(os.Getenv("AESTHETICA_LLM_CHAT_MODEL")),
		LLMImageModel: strings.TrimSpace(os.Getenv("AESTHETICA_LLM_IMAGE_MODEL")),
		LLMTimeout:    time.Duration(parseEnvInt("AESTHETICA_LLM_TIMEOUT_SECONDS", defaultLLMTimeout)) * time.Second,
		AMQPURL:       strings.TrimSpace(os.Getenv("AESTHETICA_AMQP_URL")),
		AMQPExchange:  strings.TrimSpace(os.Getenv("AESTHETICA_AMQP_EXCHANGE")),
		OTelEnabled:   parseEnvBool("OTEL_ENABLED", false),
	}, nil
}

func resolveListenAddr(args []string) (string, error) {
	host, port := parseListenAddr(envOrDefault("AESTHETICA_ADDR", ":8080"))
	if port <= 0 {
		port = defaultPort
	}
	host = strings.TrimSpace(envOrDefault("AESTHETICA_HOST", host))
	port = parseEnvInt("AESTHETICA_PORT", port)

	fs := flag.NewFlagSet("aesthetica", flag.ContinueOnError)
	hostFlag := fs.String("host", host, "server listen host, e.g. 0.0.0.0")
	portFlag := fs.Int("port", port, "server listen port, e.g. 8080")
	if err := fs.Parse(args); err != nil {
		return "", err
	}
	return joinListenAddr(strings.TrimSpace(*hostFlag), *portFlag), nil
}

func parseListenAddr(addr string) (string, int) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", 0
	}
	if strings.HasPrefix(addr, ":") {
		return "", parseEnvIntValue(strings.TrimPrefix(addr, ":"), 0)
	}
	if host, port, err := net.SplitHostPort(addr); err == nil {
		return host, parseEnvIntValue(port, 0)
	}
	if portOnly := parseEnvIntValue(addr, 0); portOnly > 0 {
		return "", portOnly
	}
	return addr, 0
}

func joinListenAddr(host string, port int) string {
	if port <= 0 {
		port = defaultPort
	}
	if host == "" {
		return fmt.Sprintf(":%d", port)
	}
	return net.JoinHostPort(host, strconv.Itoa(port))
}

func defaultDataFile(engine string) string {
	switch engine {
	case store.EngineSQLite:
		return "data/aesthetica.db"
	default:
		return "data/aesthetica.json"
	}
}

func envOrDefault(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func parseEnvInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	return parseEnvIntValue(raw, fallback)
}

func parseEnvIntValue(raw string, fallback int) int {
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return fallback
	}
	return value
}

func parseEnvBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return value
}

// SafeKeyMeta describes a credential for logs without revealing it.
func SafeKeyMeta(key string) string {
	trimmed := strings.TrimSpace(key)
	if trimmed == "" {
		return "empty=true"
	}
	lower := strings.ToLower(trimmed)
	hasQuotes := (strings.HasPrefix(trimmed, "\"") && strings.HasSuffix(trimmed, "\"")) ||
		(strings.HasPrefix(trimmed, "'") && strings.HasSuffix(trimmed, "'"))
	return fmt.Sprintf(
		"empty=false,len=%d,starts_with_sk=%t,has_bearer_prefix=%t,has_quotes=%t,has_whitespace=%t",
		len(trimmed),
		strings.HasPrefix(trimmed, "sk-"),
		strings.HasPrefix(lower, "bearer "),
		hasQuotes,
		strings.Contains(trimmed, " "),
	)
}
