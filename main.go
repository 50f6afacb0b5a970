package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/spf13/afero"
	kingpin "gopkg.in/alecthomas/kingpin.v2"

	"github.com/9seconds/csvgeo/geolib"
)

const (
	version = "0.1.0"

	shutdownTimeout   = 30 * time.Second
	readHeaderTimeout = 10 * time.Second
)

var (
	app = kingpin.New(
		"csvgeo",
		"Add coordinates of IP addresses to CSV files")

	debug = app.Flag("debug", "Run in debug mode.").
		Short('d').
		Envar("CSVGEO_DEBUG").
		Bool()
	configFile = app.Flag("config", "Path to the config.").
			Short('c').
			Envar("CSVGEO_CONFIG").
			File()
	envFile = app.Flag("env-file", "Path to the file with environment variables.").
		Envar("CSVGEO_ENV_FILE").
		Default(".env").
		String()

	serveCommand = app.Command("serve", "Run HTTP server with an upload form.").
			Default()

	processCommand = app.Command("process", "Process a local CSV file.")
	processInput   = processCommand.Arg("input", "Path to the CSV file.").
			Required().
			String()
	processOutput = processCommand.Flag("output", "Path to the output file.").
			Short('o').
			String()
)

func init() {
	app.Version(version)
}

func main() {
	command := kingpin.MustParse(app.Parse(os.Args[1:]))
	log := newStderrLogger(*debug)

	if err := run(command, log); err != nil {
		log.appLog.Fatal().Err(err).Msg("")
	}
}

func run(command string, log *logger) error {
	if err := loadEnvFile(*envFile); err != nil {
		return err
	}

	conf, err := readConfig()
	if err != nil {
		return err
	}

	provider, err := makeProvider(conf.GetProvider())
	if err != nil {
		return err
	}

	defer closeProvider(provider) // nolint: errcheck

	processor := geolib.NewProcessor(provider, log, makeOpts(conf))
	ctx, cancel := makeRootContext()

	defer cancel()

	switch command {
	case serveCommand.FullCommand():
		return runServer(ctx, conf, processor, log)
	case processCommand.FullCommand():
		counters, err := processFile(ctx, afero.NewOsFs(), processor, *processInput, *processOutput)
		if err != nil {
			return fmt.Errorf("cannot process %s: %w", *processInput, err)
		}

		log.appLog.Debug().Interface("counters", counters).Msg("File was processed")
	}

	return nil
}

func readConfig() (*config, error) {
	if *configFile == nil {
		return parseConfig(strings.NewReader(""))
	}

	defer (*configFile).Close()

	conf, err := parseConfig(*configFile)
	if err != nil {
		return nil, fmt.Errorf("cannot read config %s: %w", (*configFile).Name(), err)
	}

	return conf, nil
}

func runServer(ctx context.Context, conf *config, processor *geolib.Processor, log *logger) error {
	srv := &http.Server{
		Addr: conf.GetListen(),
		Handler: &accessLogMiddleware{
			handler: geolib.NewHTTPHandler(processor, conf.GetMaxUploadSize()),
			log:     log.requestLog,
		},
		ReadHeaderTimeout: readHeaderTimeout,
		BaseContext: func(net.Listener) context.Context {
			return ctx
		},
	}

	errChan := make(chan error, 1)

	go func() {
		errChan <- srv.ListenAndServe()
	}()

	log.appLog.Info().Str("listen", conf.GetListen()).Msg("Server has started")

	select {
	case err := <-errChan:
		return fmt.Errorf("server has failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("cannot shutdown server: %w", err)
	}

	return nil
}
