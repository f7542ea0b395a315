package config

import (
	"fmt"
	"os"
	"strconv"
)

// DefaultAPIKey is the development fallback. Deployed environments must set
// API_KEY or API_KEY_HASH.
const DefaultAPIKey = "itemstore-api-key"

type Environment int

const (
	Local Environment = iota
	Development
	Test
	Production
)

func (e Environment) String() string {
	switch e {
	case Development:
		return "DEVELOPMENT"
	case Test:
		return "TEST"
	case Production:
		return "PRODUCTION"
	default:
		return "LOCAL"
	}
}

func ParseEnvironment(s string) (Environment, error) {
	switch s {
	case "LOCAL":
		return Local, nil
	case "DEVELOPMENT":
		return Development, nil
	case "TEST":
		return Test, nil
	case "PRODUCTION":
		return Production, nil
	}
	return Local, fmt.Errorf("invalid environment value: '%s'", s)
}

// Config is resolved once at startup and shared read-only with every request.
type Config struct {
	APIKey     string
	APIKeyHash string
	Env        Environment

	MetricsToken   string
	AdminRateLimit float64
	AdminBurst     int
}

func Default() Config {
	return Config{
		APIKey:         DefaultAPIKey,
		Env:            Local,
		AdminRateLimit: 5,
		AdminBurst:     10,
	}
}

func FromEnv() Config {
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the config through lookup; unset or unparsable values
// keep their defaults.
func FromLookup(lookup func(string) (string, bool)) Config {
	c := Default()

	// An empty API_KEY counts as unset; an empty secret is never accepted.
	if v, ok := lookup("API_KEY"); ok && v != "" {
		c.APIKey = v
	}
	if v, ok := lookup("API_KEY_HASH"); ok {
		c.APIKeyHash = v
	}
	if v, ok := lookup("API_ENV"); ok {
		if env, err := ParseEnvironment(v); err == nil {
			c.Env = env
		}
	}
	if v, ok := lookup("METRICS_TOKEN"); ok {
		c.MetricsToken = v
	}
	if v, ok := lookup("ADMIN_RATE_LIMIT"); ok {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 {
			c.AdminRateLimit = f
		}
	}
	if v, ok := lookup("ADMIN_RATE_BURST"); ok {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.AdminBurst = n
		}
	}
	return c
}

func (c Config) JSONLogs() bool {
	return c.Env != Local
}
