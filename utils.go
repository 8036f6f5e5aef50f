package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/9seconds/geovisits/enrichlib"
	"github.com/9seconds/geovisits/providers"
)

func makeRootContext() (context.Context, context.CancelFunc) {
	rootCtx, cancel := context.WithCancel(context.Background())

	sigChan := make(chan os.Signal, 1)

	go func() {
		for range sigChan {
			cancel()
		}
	}()

	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	return rootCtx, cancel
}

func makeLookupClient(conf configProvider) (enrichlib.GeoLookupClient, error) {
	httpClient := makeNewHTTPClient(conf)

	switch conf.GetName() {
	case providers.NameIPStack:
		prov, err := providers.NewIPStack(httpClient,
			conf.GetBaseURL(),
			conf.GetAccessKey(),
			conf.GetRetryDelay(),
			conf.GetMaxAttempts(),
			conf.FailOnErrorBody)
		if err != nil {
			return nil, fmt.Errorf("cannot create ipstack provider: %w", err)
		}

		return prov, nil
	}

	return nil, fmt.Errorf("%w: %s", providers.ErrUnknownProvider, conf.GetName())
}

func makeNewHTTPClient(conf configProvider) enrichlib.HTTPClient {
	httpClient := &http.Client{
		Timeout: conf.GetHTTPTimeout(),
	}

	return enrichlib.NewHTTPClient(httpClient,
		"geovisits/"+version,
		conf.GetRateLimitInterval(),
		conf.GetRateLimitBurst(),
		conf.GetCircuitBreakerOpenThreshold(),
		conf.GetCircuitBreakerHalfOpenTimeout(),
		conf.GetCircuitBreakerResetFailuresTimeout())
}
