package main

import (
	"errors"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/suite"

	"github.com/9seconds/geovisits/providers"
)

type ConfigTestSuite struct {
	suite.Suite

	fs afero.Fs
}

func (suite *ConfigTestSuite) SetupTest() {
	suite.fs = afero.NewMemMapFs()
}

func (suite *ConfigTestSuite) TestDefaults() {
	conf, err := loadConfig(suite.fs, "")

	suite.NoError(err)
	suite.Equal(DefaultListen, conf.GetListen())
	suite.Equal(1, conf.GetWorkers())
	suite.Empty(conf.GetRequiredColumns())
	suite.Equal(providers.NameIPStack, conf.Provider.GetName())
	suite.Equal(providers.DefaultIPStackBaseURL, conf.Provider.GetBaseURL())
	suite.Empty(conf.Provider.GetAccessKey())
	suite.False(conf.Provider.FailOnErrorBody)
	suite.Equal(DefaultHTTPTimeout, conf.Provider.GetHTTPTimeout())
	suite.Equal(DefaultRetryDelay, conf.Provider.GetRetryDelay())
	suite.EqualValues(DefaultMaxAttempts, conf.Provider.GetMaxAttempts())
	suite.Equal(DefaultRateLimitInterval, conf.Provider.GetRateLimitInterval())
	suite.Equal(DefaultRateLimitBurst, conf.Provider.GetRateLimitBurst())
	suite.EqualValues(0, conf.Provider.GetCircuitBreakerOpenThreshold())
	suite.Equal(DefaultCircuitBreakerHalfOpenTimeout, conf.Provider.GetCircuitBreakerHalfOpenTimeout())
	suite.Equal(DefaultCircuitBreakerResetFailuresTimeout,
		conf.Provider.GetCircuitBreakerResetFailuresTimeout())
}

func (suite *ConfigTestSuite) TestFull() {
	afero.WriteFile(suite.fs, "/etc/geovisits.hjson", []byte(`{
        # comments are allowed
        listen: 0.0.0.0:9000
        workers: 4
        required_columns: [
            user_id
        ]
        provider: {
            name: ipstack
            base_url: "https://api.ipstack.com"
            access_key: secret
            http_timeout: 3s
            retry_delay: 500ms
            max_attempts: 3
            fail_on_error_body: true
            rate_limit_interval: 1s
            rate_limit_burst: 2
            circuit_breaker_open_threshold: 7
            circuit_breaker_half_open_timeout: 30s
            circuit_breaker_reset_failures_timeout: 10s
        }
    }`), 0o644) // nolint: errcheck

	conf, err := loadConfig(suite.fs, "/etc/geovisits.hjson")

	suite.NoError(err)
	suite.Equal("0.0.0.0:9000", conf.GetListen())
	suite.Equal(4, conf.GetWorkers())
	suite.Equal([]string{"user_id"}, conf.GetRequiredColumns())
	suite.Equal("https://api.ipstack.com", conf.Provider.GetBaseURL())
	suite.Equal("secret", conf.Provider.GetAccessKey())
	suite.Equal(3*time.Second, conf.Provider.GetHTTPTimeout())
	suite.Equal(500*time.Millisecond, conf.Provider.GetRetryDelay())
	suite.EqualValues(3, conf.Provider.GetMaxAttempts())
	suite.True(conf.Provider.FailOnErrorBody)
	suite.Equal(time.Second, conf.Provider.GetRateLimitInterval())
	suite.Equal(2, conf.Provider.GetRateLimitBurst())
	suite.EqualValues(7, conf.Provider.GetCircuitBreakerOpenThreshold())
	suite.Equal(30*time.Second, conf.Provider.GetCircuitBreakerHalfOpenTimeout())
	suite.Equal(10*time.Second, conf.Provider.GetCircuitBreakerResetFailuresTimeout())
}

func (suite *ConfigTestSuite) TestUnboundedAttempts() {
	conf, err := parseConfig([]byte(`{provider: {max_attempts: -1}}`))

	suite.NoError(err)
	suite.EqualValues(0, conf.Provider.GetMaxAttempts())
}

func (suite *ConfigTestSuite) TestAbsentFile() {
	_, err := loadConfig(suite.fs, "/nowhere.hjson")

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestBrokenHJSON() {
	_, err := parseConfig([]byte(`{listen: [`))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestIncorrectDuration() {
	_, err := parseConfig([]byte(`{provider: {retry_delay: soon}}`))

	suite.Error(err)

	_, err = parseConfig([]byte(`{provider: {retry_delay: 10}}`))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestIncorrectListen() {
	_, err := parseConfig([]byte(`{listen: localhost}`))

	suite.Error(err)
}

func (suite *ConfigTestSuite) TestUnknownProvider() {
	_, err := parseConfig([]byte(`{provider: {name: ipinfo}}`))

	suite.True(errors.Is(err, providers.ErrUnknownProvider))
}

func (suite *ConfigTestSuite) TestIncorrectColumns() {
	_, err := parseConfig([]byte(`{required_columns: ["user", "user"]}`))

	suite.Error(err)

	_, err = parseConfig([]byte(`{required_columns: [""]}`))

	suite.Error(err)
}

func TestConfig(t *testing.T) {
	suite.Run(t, &ConfigTestSuite{})
}
