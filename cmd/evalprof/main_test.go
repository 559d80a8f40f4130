package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/D13ya/evalprof/internal/inference"
	"github.com/D13ya/evalprof/internal/model"
	"github.com/D13ya/evalprof/pkg/logger"
)

func testConfig() config {
	return config{
		target:   "normal",
		dim:      3,
		chains:   2,
		iters:    50,
		step:     0.1,
		leapfrog: 5,
	}
}

// Test a full run with text output only
func TestRunTextReport(t *testing.T) {
	var logs, out bytes.Buffer
	if err := run(context.Background(), testConfig(), logger.NewTo(&logs, ""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	text := out.String()
	for _, want := range []string{"likelihood", "gradient", "wall clock:", "chain 0: draws=50", "chain 1: draws=50"} {
		if !strings.Contains(text, want) {
			t.Errorf("stdout missing %q:\n%s", want, text)
		}
	}
	// 2 chains x 50 transitions
	if !strings.Contains(text, "100") {
		t.Errorf("stdout missing likelihood count:\n%s", text)
	}
	if !strings.Contains(logs.String(), "run finished") {
		t.Errorf("logs missing completion line:\n%s", logs.String())
	}
}

func chainLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if strings.HasPrefix(line, "chain ") {
			lines = append(lines, line)
		}
	}
	return lines
}

// Test that -seed reproduces the per-chain summary and is logged
func TestRunSeedReproducible(t *testing.T) {
	cfg := testConfig()
	cfg.seed = 42

	var first, second []string
	for _, lines := range []*[]string{&first, &second} {
		var logs, out bytes.Buffer
		if err := run(context.Background(), cfg, logger.NewTo(&logs, ""), &out); err != nil {
			t.Fatalf("run: %v", err)
		}
		if !strings.Contains(logs.String(), `"seed"=42`) {
			t.Fatalf("logs missing seed:\n%s", logs.String())
		}
		*lines = chainLines(out.String())
	}

	if len(first) != cfg.chains {
		t.Fatalf("chain lines = %d, want %d", len(first), cfg.chains)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("seed 42 not reproducible: %q vs %q", first[i], second[i])
		}
	}
}

// Test that JSON and chart files are written
func TestRunWritesReports(t *testing.T) {
	dir := t.TempDir()
	cfg := testConfig()
	cfg.target = "banana"
	cfg.mapIters = 20
	cfg.jsonPath = filepath.Join(dir, "profile.json")
	cfg.chart = filepath.Join(dir, "profile.html")

	var out bytes.Buffer
	if err := run(context.Background(), cfg, logger.NewTo(&bytes.Buffer{}, ""), &out); err != nil {
		t.Fatalf("run: %v", err)
	}

	raw, err := os.ReadFile(cfg.jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var doc map[string]any
	if err := json.Unmarshal(raw, &doc); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if doc["runStarted"] != true {
		t.Fatalf("runStarted = %v, want true", doc["runStarted"])
	}

	html, err := os.ReadFile(cfg.chart)
	if err != nil {
		t.Fatalf("read chart: %v", err)
	}
	if !bytes.Contains(html, []byte("Evaluation time by category")) {
		t.Fatal("chart missing totals title")
	}
}

func TestRunUnknownTarget(t *testing.T) {
	cfg := testConfig()
	cfg.target = "funnel"
	err := run(context.Background(), cfg, logger.NewTo(&bytes.Buffer{}, ""), &bytes.Buffer{})
	if !errors.Is(err, model.ErrUnknownTarget) {
		t.Fatalf("expected ErrUnknownTarget, got %v", err)
	}
}

func TestRunBadSampler(t *testing.T) {
	cfg := testConfig()
	cfg.leapfrog = 0
	err := run(context.Background(), cfg, logger.NewTo(&bytes.Buffer{}, ""), &bytes.Buffer{})
	if !errors.Is(err, inference.ErrBadConfig) {
		t.Fatalf("expected ErrBadConfig, got %v", err)
	}
}

// Test that a canceled run still prints what was measured
func TestRunCanceledStillReports(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var out bytes.Buffer
	err := run(ctx, testConfig(), logger.NewTo(&bytes.Buffer{}, ""), &out)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !strings.Contains(out.String(), "gradient") {
		t.Fatalf("report missing after cancel:\n%s", out.String())
	}
}

func TestWriteReportsBadPath(t *testing.T) {
	cfg := testConfig()
	cfg.jsonPath = filepath.Join(t.TempDir(), "missing", "profile.json")
	if err := writeReports(cfg, &inference.Result{}); err == nil {
		t.Fatal("expected error for unwritable path")
	}
}
