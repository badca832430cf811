package harness

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"
)

// BuildVersion is stamped into the test binary and reported by --version
const BuildVersion = "integration"

// commandTimeout bounds a single sqldesk invocation
const commandTimeout = 30 * time.Second

var build struct {
	once sync.Once
	path string
	err  error
}

// CommandResult is the outcome of one sqldesk invocation
type CommandResult struct {
	Args     []string
	ExitCode int
	Stderr   string
	Stdout   string
}

// BuildBinary compiles ./cmd into a temp directory once per test run.
// Call it from TestMain and pair it with CleanupBinary.
func BuildBinary() (string, error) {
	build.once.Do(func() {
		root, err := moduleRoot()
		if err != nil {
			build.err = err
			return
		}

		dir, err := os.MkdirTemp("", "sqldesk-integration-*")
		if err != nil {
			build.err = err
			return
		}
		build.path = filepath.Join(dir, "sqldesk")

		cmd := exec.Command("go", "build",
			"-ldflags", "-X main.Version="+BuildVersion,
			"-o", build.path, "./cmd")
		cmd.Dir = root
		if out, err := cmd.CombinedOutput(); err != nil {
			build.err = fmt.Errorf("go build failed: %w\n%s", err, out)
		}
	})

	return build.path, build.err
}

// CleanupBinary removes the directory BuildBinary created
func CleanupBinary() {
	if build.path == "" {
		return
	}
	if err := os.RemoveAll(filepath.Dir(build.path)); err != nil {
		log.Printf("Warning: failed to remove test binary: %v", err)
	}
}

// RunCommand runs sqldesk with args inside env.
// A run that outlives commandTimeout is killed and reported with exit code -1.
func RunCommand(tb testing.TB, env *TestEnvironment, args ...string) CommandResult {
	tb.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), commandTimeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, build.path, args...)
	cmd.Env = env.Environ()
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	result := CommandResult{Args: args}
	err := cmd.Run()

	var exitErr *exec.ExitError
	switch {
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		tb.Logf("sqldesk %v timed out after %v", args, commandTimeout)
		result.ExitCode = -1
	case errors.As(err, &exitErr):
		result.ExitCode = exitErr.ExitCode()
	case err != nil:
		tb.Logf("sqldesk %v could not run: %v", args, err)
		result.ExitCode = -1
	}

	result.Stdout = stdout.String()
	result.Stderr = stderr.String()
	return result
}

// Exec runs `sqldesk exec` with one -e flag per statement
func Exec(tb testing.TB, env *TestEnvironment, statements ...string) CommandResult {
	tb.Helper()
	args := []string{"exec"}
	for _, sql := range statements {
		args = append(args, "-e", sql)
	}
	return RunCommand(tb, env, args...)
}

// moduleRoot walks up from the working directory to the directory holding go.mod
func moduleRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}
	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("go.mod not found above the test directory")
		}
		dir = parent
	}
}
