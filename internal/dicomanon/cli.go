package dicomanon

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"time"
)

var commandContext = exec.CommandContext

// CLI invokes a dicom-anon style command-line engine once per file. The
// engine is expected to print one JSON result object per line on stdout;
// the last complete object wins, which tolerates engines that also emit
// progress lines.
type CLI struct {
	binary  string
	profile string
	timeout time.Duration
}

// Option configures the CLI engine.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithProfile sets the de-identification profile passed to the engine.
func WithProfile(profile string) Option {
	return func(c *CLI) {
		if profile != "" {
			c.profile = profile
		}
	}
}

// WithTimeout bounds each per-file invocation.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		if timeout > 0 {
			c.timeout = timeout
		}
	}
}

// NewCLI constructs a CLI engine using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: "dicom-anon", profile: "basic", timeout: 2 * time.Minute}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Available checks the engine binary can be found on PATH.
func (c *CLI) Available() error {
	if _, err := exec.LookPath(c.binary); err != nil {
		return fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
	}
	return nil
}

type resultPayload struct {
	Cleaned           map[string]string `json:"cleaned"`
	BurntIn           bool              `json:"burnt_in"`
	SeriesDescription string            `json:"series_description"`
}

// Deidentify runs the engine on a single file.
func (c *CLI) Deidentify(ctx context.Context, inputPath, outputPath string) (Result, error) {
	if inputPath == "" {
		return Result{}, errors.New("input path required")
	}
	if outputPath == "" {
		return Result{}, errors.New("output path required")
	}

	runCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	args := []string{"clean", "--profile", c.profile, "--json", "--input", inputPath, "--output", outputPath}
	cmd := commandContext(runCtx, c.binary, args...) //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{}, fmt.Errorf("%w: stdout pipe: %v", ErrEngine, err)
	}
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return Result{}, fmt.Errorf("%w: %v", ErrEngineUnavailable, err)
		}
		return Result{}, fmt.Errorf("%w: start %s: %v", ErrEngine, c.binary, err)
	}

	var payload resultPayload
	var decoded bool
	scanner := bufio.NewScanner(stdout)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		var line resultPayload
		if err := json.Unmarshal(scanner.Bytes(), &line); err != nil {
			continue
		}
		payload = line
		decoded = true
	}
	if err := scanner.Err(); err != nil {
		_ = cmd.Wait()
		return Result{}, fmt.Errorf("%w: read engine output: %v", ErrEngine, err)
	}

	if err := cmd.Wait(); err != nil {
		if runCtx.Err() != nil {
			return Result{}, fmt.Errorf("%w: timed out after %s on %s", ErrEngine, c.timeout, inputPath)
		}
		return Result{}, fmt.Errorf("%w: %s on %s: %v", ErrEngine, c.binary, inputPath, err)
	}
	if !decoded {
		return Result{}, fmt.Errorf("%w: no result object on stdout for %s", ErrEngine, inputPath)
	}

	return Result{
		CleanedAttributes: payload.Cleaned,
		BurntIn:           payload.BurntIn,
		SeriesDescription: payload.SeriesDescription,
	}, nil
}

var _ Engine = (*CLI)(nil)
