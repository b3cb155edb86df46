package main

import (
	"context"
	"errors"
	"flag"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v2"

	influxdb2 "github.com/influxdata/influxdb-client-go"
	"github.com/yoronneko/qzsl6tool/pkg/allystar"
	"github.com/yoronneko/qzsl6tool/pkg/receiver"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/config"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/output"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/source"
	"github.com/yoronneko/qzsl6tool/pkg/receiver/status"
)

const fileReadSize = 4096

func main() {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.InfoLevel)

	configFile := flag.String("config", "", "YAML config file")
	prn := flag.Int("prn", 0, "satellite PRN to select (193-211, 0 for strongest)")
	l6 := flag.Bool("l6", false, "write selected L6 payloads to stdout")
	ubx := flag.Bool("ubx", false, "write selections as UBX-RXM-QZSSL6 messages to stdout")
	messages := flag.Bool("m", false, "log every received frame even when an output is enabled")
	flag.Parse()

	var cfg config.Config
	if *configFile != "" {
		configContents, err := os.ReadFile(*configFile)
		if err != nil {
			log.Fatal().Err(err).Msg("error reading config file")
		}
		if err := yaml.Unmarshal(configContents, &cfg); err != nil {
			log.Fatal().Err(err).Msg("error unmarshaling yaml file")
		}
	}

	if *prn != 0 {
		cfg.PRN = *prn
	}
	if *l6 {
		cfg.OutputFormat = "raw"
	}
	if *ubx {
		cfg.OutputFormat = "ubx"
	}
	// Mirror the classic tool: frames are displayed unless a payload
	// output owns stdout, and -m forces them back on.
	cfg.ShowMessages = cfg.ShowMessages || cfg.OutputFormat == "" || *messages

	if cfg.PRN != 0 && (cfg.PRN < allystar.PRNMin || cfg.PRN > allystar.PRNMax) {
		log.Warn().Int("prn", cfg.PRN).Msg("PRN must be 193-211, selecting the strongest satellite")
		cfg.PRN = 0
	}

	if cfg.PlaybackLocation != "" {
		cfg.Device = "file"
	}

	var (
		src source.Source
		err error
	)
	switch cfg.Device {
	case "file":
		log.Info().Str("device", "file").Str("path", cfg.PlaybackLocation).Msg("initializing source...")
		src, err = source.NewFile(cfg.PlaybackLocation, fileReadSize, cfg.ReadDelay)
		if err != nil {
			log.Fatal().Str("device", "file").Err(err).Msg("failed to open playback file")
		}
	default:
		src = source.NewStdin()
	}

	var outputs []output.Output
	switch cfg.OutputFormat {
	case "raw":
		outputs = append(outputs, output.NewRaw(os.Stdout))
	case "ubx":
		outputs = append(outputs, output.NewUBX(os.Stdout))
	case "":
	default:
		log.Fatal().Str("output_format", cfg.OutputFormat).Msg("unknown output format")
	}

	ropts := []receiver.ReceiverOption{receiver.WithLogger(log.Logger)}
	if cfg.InfluxDB.Host != "" {
		influxWriteAPI := influxdb2.NewClient(cfg.InfluxDB.Host, "").
			WriteAPI(cfg.InfluxDB.Organization, cfg.InfluxDB.Bucket)
		ropts = append(ropts, receiver.WithInfluxDB(influxWriteAPI))
	}
	if cfg.StatusServer.Port != 0 {
		ropts = append(ropts, receiver.WithStatusServer(status.NewServer(cfg.StatusServer.Port)))
	}

	rcv, err := receiver.New(src, receiver.Options{
		RequestedPRN: cfg.PRN,
		ShowMessages: cfg.ShowMessages,
		Outputs:      outputs,
	}, ropts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create receiver")
	}

	eg, ctx := errgroup.WithContext(context.Background())

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	eg.Go(func() error {
		select {
		case <-sigChan:
		case <-ctx.Done():
		}
		return rcv.Stop()
	})

	eg.Go(func() error {
		return rcv.Start(ctx)
	})

	if err := eg.Wait(); err != nil &&
		!errors.Is(err, io.EOF) && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("exited program")
	}
}
