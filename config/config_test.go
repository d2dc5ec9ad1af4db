package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"dagsched/genetic"
	"dagsched/graph/graphtest"
	"dagsched/pipeline"
	"dagsched/schedule"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uber-go/tally/v4"
)

func writeFile(t *testing.T, name, body string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, genetic.DefaultConfig(), cfg.GeneticConfig())
}

func TestParseMergesFiles(t *testing.T) {
	base := writeFile(t, "base.yaml", `
logging:
  level: debug
genetic:
  population: 40
  objectives: [time]
  weights: [1]
pipeline:
  workers: 8
`)
	override := writeFile(t, "override.yaml", `
genetic:
  generations: 7
`)
	cfg, err := Parse(base, override)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 40, cfg.Genetic.Population)
	assert.Equal(t, 7, cfg.Genetic.Generations)
	assert.Equal(t, []string{"time"}, cfg.Genetic.Objectives)
	assert.Equal(t, 8, cfg.Pipeline.Workers)
	assert.Equal(t, 16, cfg.Pipeline.Queue)
	assert.Equal(t, time.Second, cfg.Metrics.Interval)
	// untouched values keep their default
	assert.Equal(t, 0.9, cfg.Genetic.CrossoverProb)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse()
	assert.Error(t, err)

	_, err = Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	bad := writeFile(t, "bad.yaml", "genetic:\n  population: 0\n")
	_, err = Parse(bad)
	require.Error(t, err)
	verr, ok := err.(ValidationError)
	require.True(t, ok)
	assert.Error(t, verr.ErrForField("Genetic.Population"))

	mismatch := writeFile(t, "mismatch.yaml", "genetic:\n  weights: [1]\n")
	_, err = Parse(mismatch)
	assert.Equal(t, genetic.ErrInvalidConfig, errors.Cause(err))

	level := writeFile(t, "level.yaml", "logging:\n  level: loud\n")
	_, err = Parse(level)
	assert.Error(t, err)
}

func TestSetupLogging(t *testing.T) {
	assert.NoError(t, SetupLogging(LoggingConfig{Level: "warn"}))
	assert.Error(t, SetupLogging(LoggingConfig{Level: "nope"}))
}

func TestRootScopeUsesPrefix(t *testing.T) {
	cfg := Default()
	cfg.Metrics.Prefix = "sched"
	cfg.Metrics.Interval = 0
	scope, closer := cfg.RootScope(nil)
	defer closer.Close()

	scope.SubScope("batch").Counter("run").Inc(2)
	ts, ok := scope.(tally.TestScope)
	require.True(t, ok)
	assert.Equal(t, int64(2), ts.Snapshot().Counters()["sched.batch.run+"].Value())
}

func TestBatchFromConfig(t *testing.T) {
	g, err := graphtest.PEFT()
	require.NoError(t, err)
	cfg := Default()
	cfg.Genetic.Population = 8
	cfg.Genetic.Generations = 2
	cfg.Pipeline.Workers = 2

	run := func() *schedule.Solution {
		b, err := cfg.NewBatch(cfg.GeneticRunner(), nil)
		require.NoError(t, err)
		defer b.Release()
		results, err := b.Run(context.Background(), []pipeline.Job{{Name: "peft", Graph: g}})
		require.NoError(t, err)
		require.NoError(t, schedule.Validate(g, results[0].Solution))
		return results[0].Solution
	}
	first := run()
	// Genetic.Seed fixes the outcome
	assert.Equal(t, first.Order(), run().Order())
}

func TestStartPipelineQueue(t *testing.T) {
	cfg := Default()
	cfg.Pipeline.Queue = 3
	in, out, wg := cfg.StartPipeline(context.Background(), tally.NoopScope)
	assert.Equal(t, 3, cap(in))
	assert.Equal(t, 3, cap(out))

	in <- &pipeline.WorkflowMessage{Flag: pipeline.END}
	msg := <-out
	assert.Equal(t, pipeline.END, msg.Flag)
	wg.Wait()
}
