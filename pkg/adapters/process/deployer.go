package process

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"

	"github.com/recoverly/flowedit/internal/logging"
	"github.com/recoverly/flowedit/pkg/domain"
)

// Deployer implements ports.ExecutionEngine by running a local command for
// every saved automation. The automation JSON is written to the command's
// stdin; identifiers are passed as FLOWEDIT_* environment variables.
type Deployer struct {
	command string
	args    []string
	env     map[string]string
	baseDir string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures the deployer.
type Option func(*Deployer)

// WithArgs sets fixed arguments for the command.
func WithArgs(args ...string) Option {
	return func(d *Deployer) {
		d.args = args
	}
}

// WithEnv adds environment variables to the command.
func WithEnv(env map[string]string) Option {
	return func(d *Deployer) {
		d.env = env
	}
}

// WithBaseDir sets the working directory of the command.
func WithBaseDir(dir string) Option {
	return func(d *Deployer) {
		d.baseDir = dir
	}
}

// WithTimeout bounds a single deploy. Zero means no bound beyond the caller's context.
func WithTimeout(timeout time.Duration) Option {
	return func(d *Deployer) {
		d.timeout = timeout
	}
}

// WithLogger sets the deployer logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Deployer) {
		d.logger = logger
	}
}

// NewDeployer creates a deployer for the given command.
func NewDeployer(command string, opts ...Option) *Deployer {
	d := &Deployer{
		command: command,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Deploy hands the automation to the command. A non-zero exit is an error
// carrying the command's stderr.
func (d *Deployer) Deploy(ctx context.Context, a *domain.Automation) error {
	if d.command == "" {
		return fmt.Errorf("deploy command is not configured")
	}
	payload, err := json.Marshal(a)
	if err != nil {
		return fmt.Errorf("failed to encode automation %s: %w", a.ID, err)
	}

	if d.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, d.command, d.args...)
	cmd.Dir = d.baseDir
	cmd.Stdin = bytes.NewReader(payload)
	cmd.WaitDelay = time.Second

	// Values go through the environment, never through argv.
	env := []string{
		"FLOWEDIT_AUTOMATION_ID=" + a.ID,
		"FLOWEDIT_TENANT_ID=" + a.TenantID,
	}
	for k, v := range d.env {
		env = append(env, fmt.Sprintf("%s=%s", k, v))
	}
	cmd.Env = append(cmd.Environ(), env...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("deploy command failed: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	d.logger.Info("automation deployed",
		"automation_id", a.ID,
		"command", d.command,
		"duration", time.Since(start),
		"output", strings.TrimSpace(stdout.String()),
	)
	return nil
}
