// Command seed loads a YAML fixture of enquiries into the configured store.
//
//	seed -file fixtures/enquiries.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/bryanwahyu/enquiry-console/internal/application"
	appenq "github.com/bryanwahyu/enquiry-console/internal/application/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/bootstrap"
	"github.com/bryanwahyu/enquiry-console/internal/config"
	domain "github.com/bryanwahyu/enquiry-console/internal/domain/enquiries"
	"github.com/bryanwahyu/enquiry-console/internal/logger"
)

type fixture struct {
	Enquiries []*domain.Enquiry `yaml:"enquiries"`
}

func main() {
	file := flag.String("file", "fixtures/enquiries.yaml", "YAML fixture to load")
	cfgPath := flag.String("config", "config.yaml", "config file")
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load error: %v\n", err)
		os.Exit(1)
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format, Service: "enquiry-seed"})
	log := logger.Get()

	raw, err := os.ReadFile(*file)
	if err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("reading fixture")
	}
	var fx fixture
	if err := yaml.Unmarshal(raw, &fx); err != nil {
		log.Fatal().Err(err).Str("file", *file).Msg("parsing fixture")
	}

	ctx := context.Background()
	inf, err := bootstrap.Open(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("store init error")
	}
	defer inf.Close()

	svc := appenq.NewService(inf.Repo, nil, application.SystemClock{})
	n := 0
	for i, e := range fx.Enquiries {
		if err := svc.Create(ctx, e); err != nil {
			log.Error().Err(err).Int("index", i).Str("name", e.Name).Msg("skipping enquiry")
			continue
		}
		n++
	}
	log.Info().Int("created", n).Int("total", len(fx.Enquiries)).Msg("seed done")
}
