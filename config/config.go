package config

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"dagsched/genetic"
	"dagsched/pipeline"
	"dagsched/schedule"

	"github.com/ledgerwatch/log/v3"
	"github.com/pkg/errors"
	"github.com/uber-go/tally/v4"
	"gopkg.in/validator.v2"
	"gopkg.in/yaml.v2"
)

type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Genetic  GeneticConfig  `yaml:"genetic"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Metrics  MetricsConfig  `yaml:"metrics"`
}

type LoggingConfig struct {
	Level string `yaml:"level" validate:"nonzero"`
}

type GeneticConfig struct {
	Population       int       `yaml:"population" validate:"min=1"`
	Generations      int       `yaml:"generations" validate:"min=0"`
	CrossoverProb    float64   `yaml:"crossover_prob" validate:"min=0,max=1"`
	MutationProb     float64   `yaml:"mutation_prob" validate:"min=0,max=1"`
	TournamentProb   float64   `yaml:"tournament_prob" validate:"min=0,max=1"`
	SkipLimit        int       `yaml:"skip_limit" validate:"min=1"`
	MutationAttempts int       `yaml:"mutation_attempts" validate:"min=1"`
	Objectives       []string  `yaml:"objectives" validate:"min=1"`
	Weights          []float64 `yaml:"weights" validate:"min=1"`
	Seed             uint64    `yaml:"seed"`
}

type PipelineConfig struct {
	Workers int `yaml:"workers" validate:"min=1"`
	Queue   int `yaml:"queue" validate:"min=0"`
}

type MetricsConfig struct {
	Prefix   string        `yaml:"prefix"`
	Interval time.Duration `yaml:"interval" validate:"min=0"`
}

// Default returns the configuration used when no file overrides a value.
func Default() *Config {
	g := genetic.DefaultConfig()
	return &Config{
		Logging: LoggingConfig{Level: "info"},
		Genetic: GeneticConfig{
			Population:       g.Population,
			Generations:      g.Generations,
			CrossoverProb:    g.CrossoverProb,
			MutationProb:     g.MutationProb,
			TournamentProb:   g.TournamentProb,
			SkipLimit:        g.SkipLimit,
			MutationAttempts: g.MutationAttempts,
			Objectives:       g.Objectives,
			Weights:          g.Weights,
			Seed:             50,
		},
		Pipeline: PipelineConfig{Workers: 4, Queue: 16},
		Metrics:  MetricsConfig{Prefix: "dagsched", Interval: time.Second},
	}
}

// ValidationError is the returned when a configuration fails to pass validation
type ValidationError struct {
	errorMap validator.ErrorMap
}

// ErrForField returns the validation error for the given field
func (e ValidationError) ErrForField(name string) error {
	return e.errorMap[name]
}

func (e ValidationError) Error() string {
	var w bytes.Buffer

	fmt.Fprintf(&w, "validation failed")
	for f, err := range e.errorMap {
		fmt.Fprintf(&w, "   %s: %v\n", f, err)
	}
	return w.String()
}

// Parse loads the given files in order on top of the defaults and validates
// the merged result.
func Parse(files ...string) (*Config, error) {
	if len(files) == 0 {
		return nil, errors.New("no files to load")
	}
	cfg := Default()
	for _, fname := range files {
		data, err := os.ReadFile(fname)
		if err != nil {
			return nil, errors.Wrapf(err, "read config %s", fname)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "parse config %s", fname)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validator.Validate(c); err != nil {
		if m, ok := err.(validator.ErrorMap); ok {
			return ValidationError{errorMap: m}
		}
		return err
	}
	if len(c.Genetic.Weights) != len(c.Genetic.Objectives) {
		return errors.Wrapf(genetic.ErrInvalidConfig, "%d weights for %d objectives",
			len(c.Genetic.Weights), len(c.Genetic.Objectives))
	}
	if _, err := log.LvlFromString(c.Logging.Level); err != nil {
		return errors.Wrapf(err, "logging level %q", c.Logging.Level)
	}
	return nil
}

// GeneticConfig converts the file form into the optimiser configuration.
func (c *Config) GeneticConfig() genetic.Config {
	g := c.Genetic
	return genetic.Config{
		Population:       g.Population,
		Generations:      g.Generations,
		CrossoverProb:    g.CrossoverProb,
		MutationProb:     g.MutationProb,
		TournamentProb:   g.TournamentProb,
		SkipLimit:        g.SkipLimit,
		MutationAttempts: g.MutationAttempts,
		Objectives:       g.Objectives,
		Weights:          g.Weights,
	}
}

// SetupLogging routes the root logger to stdout at the configured level.
func SetupLogging(c LoggingConfig) error {
	lvl, err := log.LvlFromString(c.Level)
	if err != nil {
		return err
	}
	log.Root().SetHandler(log.LvlFilterHandler(lvl, log.StdoutHandler))
	return nil
}

// RootScope creates the metrics root, prefixed with Metrics.Prefix. A nil
// reporter keeps the metrics in memory only.
func (c *Config) RootScope(reporter tally.StatsReporter) (tally.Scope, io.Closer) {
	return tally.NewRootScope(tally.ScopeOptions{
		Prefix:   c.Metrics.Prefix,
		Reporter: reporter,
	}, c.Metrics.Interval)
}

// GeneticRunner evolves schedules with the configured optimiser, seeded with
// Genetic.Seed.
func (c *Config) GeneticRunner() pipeline.Runner {
	return pipeline.GeneticRunner(c.GeneticConfig(), c.Genetic.Seed)
}

// NewBatch sizes a batch worker pool from Pipeline.Workers.
func (c *Config) NewBatch(runner pipeline.Runner, scope tally.Scope) (*pipeline.Batch, error) {
	return pipeline.NewBatch(c.Pipeline.Workers, runner, scope)
}

// StartPipeline runs the builder and scheduler stages with channels buffered
// to Pipeline.Queue.
func (c *Config) StartPipeline(ctx context.Context, scope tally.Scope, methods ...schedule.Method) (chan<- *pipeline.WorkflowMessage, <-chan *pipeline.ScheduleMessage, *sync.WaitGroup) {
	return pipeline.Start(ctx, scope, c.Pipeline.Queue, methods...)
}
