package main

import (
	"encoding/json"
	"fmt"
	"net"
	"time"

	"github.com/hjson/hjson-go/v4"
	"github.com/spf13/afero"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/9seconds/geovisits/providers"
)

const (
	DefaultListen                             = "127.0.0.1:8080"
	DefaultHTTPTimeout                        = 10 * time.Second
	DefaultRetryDelay                         = time.Second
	DefaultMaxAttempts                        = 10
	DefaultRateLimitInterval                  = 100 * time.Millisecond
	DefaultRateLimitBurst                     = 10
	DefaultCircuitBreakerHalfOpenTimeout      = time.Minute
	DefaultCircuitBreakerResetFailuresTimeout = 20 * time.Second
)

type duration struct {
	time.Duration
}

func (d *duration) UnmarshalJSON(b []byte) error {
	var v interface{}

	if err := json.Unmarshal(b, &v); err != nil {
		return fmt.Errorf("cannot unmarshal duration: %w", err)
	}

	vv, ok := v.(string)
	if !ok {
		return fmt.Errorf("incorrect duration: %v", v)
	}

	dur, err := time.ParseDuration(vv)
	if err != nil {
		return fmt.Errorf("cannot parse duration: %w", err)
	}

	d.Duration = dur

	return nil
}

type config struct {
	Listen          string         `json:"listen"`
	Workers         uint           `json:"workers"`
	RequiredColumns []string       `json:"required_columns"`
	Provider        configProvider `json:"provider"`
}

func (c config) GetListen() string {
	if c.Listen != "" {
		return c.Listen
	}

	return DefaultListen
}

func (c config) GetWorkers() int {
	if c.Workers == 0 {
		return enrichlib.DefaultWorkers
	}

	return int(c.Workers)
}

func (c config) GetRequiredColumns() []string {
	return c.RequiredColumns
}

type configProvider struct {
	Name                               string   `json:"name"`
	BaseURL                            string   `json:"base_url"`
	AccessKey                          string   `json:"access_key"`
	HTTPTimeout                        duration `json:"http_timeout"`
	RetryDelay                         duration `json:"retry_delay"`
	MaxAttempts                        int      `json:"max_attempts"`
	FailOnErrorBody                    bool     `json:"fail_on_error_body"`
	RateLimitInterval                  duration `json:"rate_limit_interval"`
	RateLimitBurst                     uint     `json:"rate_limit_burst"`
	CircuitBreakerOpenThreshold        uint32   `json:"circuit_breaker_open_threshold"`
	CircuitBreakerHalfOpenTimeout      duration `json:"circuit_breaker_half_open_timeout"`
	CircuitBreakerResetFailuresTimeout duration `json:"circuit_breaker_reset_failures_timeout"`
}

func (c configProvider) GetName() string {
	if c.Name != "" {
		return c.Name
	}

	return providers.NameIPStack
}

func (c configProvider) GetBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}

	return providers.DefaultIPStackBaseURL
}

func (c configProvider) GetAccessKey() string {
	return c.AccessKey
}

func (c configProvider) GetHTTPTimeout() time.Duration {
	if c.HTTPTimeout.Duration == 0 {
		return DefaultHTTPTimeout
	}

	return c.HTTPTimeout.Duration
}

func (c configProvider) GetRetryDelay() time.Duration {
	if c.RetryDelay.Duration == 0 {
		return DefaultRetryDelay
	}

	return c.RetryDelay.Duration
}

// GetMaxAttempts returns a number of attempts for rate limited
// requests. Negative value in config means 'retry until cancelled'.
func (c configProvider) GetMaxAttempts() uint {
	switch {
	case c.MaxAttempts < 0:
		return 0
	case c.MaxAttempts == 0:
		return DefaultMaxAttempts
	}

	return uint(c.MaxAttempts)
}

func (c configProvider) GetRateLimitInterval() time.Duration {
	if c.RateLimitInterval.Duration == 0 {
		return DefaultRateLimitInterval
	}

	return c.RateLimitInterval.Duration
}

func (c configProvider) GetRateLimitBurst() int {
	if c.RateLimitBurst == 0 {
		return DefaultRateLimitBurst
	}

	return int(c.RateLimitBurst)
}

// GetCircuitBreakerOpenThreshold returns 0 if circuit breaker is not
// configured: failures of one IP never block lookups of others.
func (c configProvider) GetCircuitBreakerOpenThreshold() uint32 {
	return c.CircuitBreakerOpenThreshold
}

func (c configProvider) GetCircuitBreakerHalfOpenTimeout() time.Duration {
	if c.CircuitBreakerHalfOpenTimeout.Duration == 0 {
		return DefaultCircuitBreakerHalfOpenTimeout
	}

	return c.CircuitBreakerHalfOpenTimeout.Duration
}

func (c configProvider) GetCircuitBreakerResetFailuresTimeout() time.Duration {
	if c.CircuitBreakerResetFailuresTimeout.Duration == 0 {
		return DefaultCircuitBreakerResetFailuresTimeout
	}

	return c.CircuitBreakerResetFailuresTimeout.Duration
}

// loadConfig reads a config from the given path. Empty path means
// default configuration.
func loadConfig(fs afero.Fs, path string) (*config, error) {
	if path == "" {
		return parseConfig([]byte("{}"))
	}

	content, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read file: %w", err)
	}

	return parseConfig(content)
}

func parseConfig(content []byte) (*config, error) {
	conf := config{}
	rawMap := map[string]interface{}{}

	if err := hjson.Unmarshal(content, &rawMap); err != nil {
		return nil, fmt.Errorf("cannot parse json: %w", err)
	}

	rawBytes, _ := json.Marshal(rawMap)

	if err := json.Unmarshal(rawBytes, &conf); err != nil {
		return nil, fmt.Errorf("incorrect config: %w", err)
	}

	if _, _, err := net.SplitHostPort(conf.GetListen()); err != nil {
		return nil, fmt.Errorf("incorrect host:port for listen: %w", err)
	}

	if conf.Provider.GetName() != providers.NameIPStack {
		return nil, fmt.Errorf("%w: %s", providers.ErrUnknownProvider, conf.Provider.GetName())
	}

	seenColumns := map[string]struct{}{}

	for _, v := range conf.RequiredColumns {
		if v == "" {
			return nil, fmt.Errorf("required column name cannot be empty")
		}

		if _, ok := seenColumns[v]; ok {
			return nil, fmt.Errorf("column %s is duplicated", v)
		}

		seenColumns[v] = struct{}{}
	}

	return &conf, nil
}
