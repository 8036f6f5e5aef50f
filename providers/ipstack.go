package providers

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/9seconds/geovisits/enrichlib"
)

const (
	// DefaultIPStackBaseURL is an endpoint of ipstack API.
	DefaultIPStackBaseURL = "http://api.ipstack.com"

	// DefaultRetryDelay is a time to wait before the next attempt if
	// ipstack has responded with 429.
	DefaultRetryDelay = time.Second
)

var errRateLimited = errors.New("rate limited")

type ipstackResponse struct {
	Success *bool `json:"success"`
	Error   *struct {
		Code int    `json:"code"`
		Type string `json:"type"`
		Info string `json:"info"`
	} `json:"error"`
	CountryName    *string  `json:"country_name"`
	City           *string  `json:"city"`
	Latitude       *float64 `json:"latitude"`
	Longitude      *float64 `json:"longitude"`
	ConnectionType *string  `json:"connection_type"`
	Location       *struct {
		IsEU *bool `json:"is_eu"`
	} `json:"location"`
}

func (i ipstackResponse) failed() bool {
	return (i.Success != nil && !*i.Success) || (i.Error != nil && i.Error.Code != 0)
}

func (i ipstackResponse) toGeoRecord() enrichlib.GeoRecord {
	rv := enrichlib.GeoRecord{
		CountryName:    i.CountryName,
		City:           i.City,
		Latitude:       i.Latitude,
		Longitude:      i.Longitude,
		ConnectionType: i.ConnectionType,
	}

	if i.Location != nil {
		rv.IsEU = i.Location.IsEU
	}

	return rv
}

type ipstackProvider struct {
	client          enrichlib.HTTPClient
	baseURL         *url.URL
	accessKey       string
	retryDelay      time.Duration
	maxAttempts     uint
	failOnErrorBody bool
}

func (i ipstackProvider) Name() string {
	return NameIPStack
}

// Lookup resolves ip. If ipstack responds with 429, the same request is
// repeated after retryDelay until maxAttempts are made. Zero maxAttempts
// means that only ctx limits a number of attempts.
func (i ipstackProvider) Lookup(ctx context.Context, ip net.IP) (enrichlib.GeoRecord, error) {
	for attempt := uint(1); ; attempt++ {
		record, err := i.lookup(ctx, ip)
		if !errors.Is(err, errRateLimited) {
			return record, err
		}

		if i.maxAttempts > 0 && attempt >= i.maxAttempts {
			return record, &enrichlib.LookupError{
				IP:         ip.String(),
				Kind:       enrichlib.LookupRateLimitExhausted,
				StatusCode: http.StatusTooManyRequests,
				Err:        fmt.Errorf("%w after %d attempts", enrichlib.ErrRateLimitExhausted, attempt),
			}
		}

		timer := time.NewTimer(i.retryDelay)

		select {
		case <-ctx.Done():
			timer.Stop()

			return record, &enrichlib.LookupError{
				IP:   ip.String(),
				Kind: enrichlib.LookupTransport,
				Err:  ctx.Err(),
			}
		case <-timer.C:
		}
	}
}

func (i ipstackProvider) lookup(ctx context.Context, ip net.IP) (enrichlib.GeoRecord, error) {
	result := enrichlib.GeoRecord{}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, i.buildURL(ip), nil)
	if err != nil {
		return result, &enrichlib.LookupError{
			IP:   ip.String(),
			Kind: enrichlib.LookupTransport,
			Err:  fmt.Errorf("cannot build a request: %w", err),
		}
	}

	req.Header.Set("Accept", "application/json")

	resp, err := i.client.Do(req)
	if err != nil {
		return result, &enrichlib.LookupError{
			IP:   ip.String(),
			Kind: enrichlib.LookupTransport,
			Err:  fmt.Errorf("cannot send a request: %w", err),
		}
	}

	defer flushResponse(resp.Body)

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		return result, errRateLimited
	case resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices:
		return result, &enrichlib.LookupError{
			IP:         ip.String(),
			Kind:       enrichlib.LookupStatus,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected status code: %d", resp.StatusCode),
		}
	}

	jsonResponse := ipstackResponse{}
	jsonDecoder := json.NewDecoder(bufio.NewReader(resp.Body))

	if err := jsonDecoder.Decode(&jsonResponse); err != nil {
		return result, &enrichlib.LookupError{
			IP:         ip.String(),
			Kind:       enrichlib.LookupDecode,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("cannot parse a response: %w", err),
		}
	}

	if i.failOnErrorBody && jsonResponse.failed() {
		err := errors.New("failed response")

		if jsonResponse.Error != nil {
			err = fmt.Errorf(
				"failed response: code=%d, type=%s, info=%s",
				jsonResponse.Error.Code,
				jsonResponse.Error.Type,
				jsonResponse.Error.Info)
		}

		return result, &enrichlib.LookupError{
			IP:         ip.String(),
			Kind:       enrichlib.LookupProvider,
			StatusCode: resp.StatusCode,
			Err:        err,
		}
	}

	return jsonResponse.toGeoRecord(), nil
}

func (i ipstackProvider) buildURL(ip net.IP) string {
	getQuery := url.Values{}

	getQuery.Set("access_key", i.accessKey)

	u := *i.baseURL
	u.Path = strings.TrimSuffix(u.Path, "/") + "/" + ip.String()
	u.RawQuery = getQuery.Encode()

	return u.String()
}

// NewIPStack creates a client for ipstack-compatible API. Empty baseURL
// means DefaultIPStackBaseURL, non-positive retryDelay means
// DefaultRetryDelay.
//
// ipstack may respond with 200 and an error object in a body. By
// default such a response is a record with unknown fields. If
// failOnErrorBody is set, it is a lookup failure instead.
func NewIPStack(client enrichlib.HTTPClient,
	baseURL, accessKey string,
	retryDelay time.Duration,
	maxAttempts uint,
	failOnErrorBody bool) (enrichlib.GeoLookupClient, error) {
	if accessKey == "" {
		return nil, ErrAuthTokenIsRequired
	}

	if baseURL == "" {
		baseURL = DefaultIPStackBaseURL
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("incorrect base url: %w", err)
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("unsupported scheme of base url: %s", parsed.Scheme)
	}

	if retryDelay <= 0 {
		retryDelay = DefaultRetryDelay
	}

	return ipstackProvider{
		client:          client,
		baseURL:         parsed,
		accessKey:       accessKey,
		retryDelay:      retryDelay,
		maxAttempts:     maxAttempts,
		failOnErrorBody: failOnErrorBody,
	}, nil
}
