package telemetry

import (
	"strings"
	"time"
)

const (
	envPrefix      = "ROOMKIT_TRACE_OTEL_"
	envEndpoint    = envPrefix + "ENDPOINT"
	envInsecure    = envPrefix + "INSECURE"
	envHeaders     = envPrefix + "HEADERS"
	envService     = envPrefix + "SERVICE"
	envDialTimeout = envPrefix + "TIMEOUT"
)

// Config controls trace export. Tracing stays a no-op until Endpoint is set.
type Config struct {
	Endpoint    string
	Insecure    bool
	Headers     map[string]string
	ServiceName string
	Version     string
	DialTimeout time.Duration
}

func Default() Config {
	return Config{
		ServiceName: "roomkit",
		DialTimeout: 5 * time.Second,
	}
}

func (c Config) Enabled() bool {
	return strings.TrimSpace(c.Endpoint) != ""
}

// ConfigFromEnv reads ROOMKIT_TRACE_OTEL_* variables. Invalid values keep
// the default.
func ConfigFromEnv(getenv func(string) string) Config {
	cfg := Default()
	if getenv == nil {
		return cfg
	}
	if val := strings.TrimSpace(getenv(envEndpoint)); val != "" {
		cfg.Endpoint = val
	}
	if on, ok := parseBool(getenv(envInsecure)); ok {
		cfg.Insecure = on
	}
	if val := strings.TrimSpace(getenv(envService)); val != "" {
		cfg.ServiceName = val
	}
	if val := strings.TrimSpace(getenv(envDialTimeout)); val != "" {
		if dur, err := time.ParseDuration(val); err == nil && dur > 0 {
			cfg.DialTimeout = dur
		}
	}
	cfg.Headers = ParseHeaders(getenv(envHeaders))
	return cfg
}

// ParseHeaders reads comma separated key=value pairs. Entries without a key
// are skipped; nil means no headers.
func ParseHeaders(spec string) map[string]string {
	var headers map[string]string
	for _, entry := range strings.Split(spec, ",") {
		key, value, _ := strings.Cut(strings.TrimSpace(entry), "=")
		key = strings.TrimSpace(key)
		if key == "" {
			continue
		}
		if headers == nil {
			headers = make(map[string]string)
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

func parseBool(value string) (bool, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "y", "on":
		return true, true
	case "0", "false", "no", "n", "off":
		return false, true
	default:
		return false, false
	}
}
