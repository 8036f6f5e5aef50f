package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/alecthomas/kingpin/v2"
	"github.com/spf13/afero"

	"github.com/9seconds/geovisits/api"
	"github.com/9seconds/geovisits/enrichlib"
)

const shutdownTimeout = 10 * time.Second

var version = "dev"

var (
	app = kingpin.New(
		"geovisits",
		"Enrich page visits with geolocation of visitor IP addresses")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("GEOVISITS_DEBUG").
		Bool()
	configPath = app.Flag("config", "Path to the config.").
			Short('c').
			Envar("GEOVISITS_CONFIG").
			String()
	accessKey = app.Flag("access-key", "Access key of geolocation provider.").
			Envar("GEOVISITS_ACCESS_KEY").
			String()

	enrichCommand = app.Command("enrich", "Enrich CSV file with visits.")
	enrichInput   = enrichCommand.Arg("input", "Path to CSV with visits, - for stdin.").
			Required().
			String()
	enrichOutput = enrichCommand.Flag("output", "Where to write results, - for stdout.").
			Short('o').
			Default(stdStreamPath).
			String()
	enrichFormat = enrichCommand.Flag("format", "Output format.").
			Short('f').
			Default(formatCSV).
			Enum(formatCSV, formatJSON)
	enrichPage = enrichCommand.Flag("page", "Keep only visits of this page.").
			String()
	enrichNoProgress = enrichCommand.Flag("no-progress", "Do not show a progress bar.").
				Bool()

	serveCommand = app.Command("serve", "Run HTTP API.")
)

func main() {
	app.Version(version)

	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	log := newLogger(os.Stderr, *debug)
	fs := afero.NewOsFs()

	conf, err := loadConfig(fs, *configPath)
	if err != nil {
		log.appLog.Fatal().Err(err).Msg("Cannot load config")
	}

	if *accessKey != "" {
		conf.Provider.AccessKey = *accessKey
	}

	client, err := makeLookupClient(conf.Provider)
	if err != nil {
		log.appLog.Fatal().Err(err).Msg("Cannot create lookup client")
	}

	ctx, cancel := makeRootContext()
	enricher := enrichlib.NewEnricher(client, log, conf.GetWorkers())

	switch command {
	case enrichCommand.FullCommand():
		err = runEnrich(ctx, fs, conf, enricher, log)
	case serveCommand.FullCommand():
		err = runServe(ctx, conf, enricher)
	}

	enricher.Shutdown()
	cancel()

	if err != nil {
		log.appLog.Error().Err(err).Msg("")
		os.Exit(1)
	}
}

func runEnrich(ctx context.Context, fs afero.Fs, conf *config, enricher *enrichlib.Enricher, log *logger) error {
	records, err := readInput(fs, *enrichInput, conf.GetRequiredColumns())
	if err != nil {
		return fmt.Errorf("cannot read visits: %w", err)
	}

	bar := &progressObserver{
		writer: os.Stderr,
	}

	runObserver := enrichlib.MultiObserver(bar, log.ProgressObserver())
	if *enrichNoProgress {
		runObserver = log.ProgressObserver()
	}

	results, summary, runErr := enricher.Process(ctx, records, runObserver)

	bar.Finish()

	if runErr != nil && !errors.Is(runErr, enrichlib.ErrContextIsClosed) {
		return runErr
	}

	results = enrichlib.FilterByPage(results, *enrichPage)

	if err := writeOutput(fs, *enrichOutput, *enrichFormat, results, summary); err != nil {
		return fmt.Errorf("cannot write results: %w", err)
	}

	fmt.Fprintln(os.Stderr, summaryLine(summary))

	return runErr
}

func runServe(ctx context.Context, conf *config, enricher *enrichlib.Enricher) error {
	server := &http.Server{
		Addr:    conf.GetListen(),
		Handler: api.NewHTTPHandler(enricher, conf.GetRequiredColumns()),
	}
	errChan := make(chan error, 1)

	go func() {
		errChan <- server.ListenAndServe()
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("cannot serve: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("cannot shutdown server: %w", err)
	}

	return nil
}
