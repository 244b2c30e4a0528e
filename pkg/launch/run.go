// Copyright (c) OpenMMLab. All rights reserved.

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gilbert12tw/HPC-II-Megatron-LLM/logger"
	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/config"
	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/logtail"
	"github.com/gilbert12tw/HPC-II-Megatron-LLM/pkg/prom/metrics"
)

// failureTailLines is how much of the run log is replayed when the
// external process exits non-zero.
const failureTailLines = 20

// Result describes one finished (or failed) run.
type Result struct {
	ExitCode int
	Elapsed  time.Duration
	LogPath  string
}

// syncWriter serializes writes from the stdout and stderr copiers into the
// shared run log.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *syncWriter) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

// Run executes one training run end to end: preflight, helper script,
// container spawn, timing, exit-code propagation. The helper script is
// removed on every exit path. There are no retries: any failure is terminal
// for the run.
func Run(ctx context.Context, c config.Config) (Result, error) {
	if err := Preflight(c.ImagePath, c.MegatronDir, c.LogDir); err != nil {
		return Result{ExitCode: 1}, err
	}

	PrintSummary(c)

	workDir, err := os.Getwd()
	if err != nil {
		return Result{ExitCode: 1}, err
	}

	scriptPath, cleanup, err := WriteRunScript(c)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("cannot write run script: %w", err)
	}
	defer cleanup()

	runID := uuid.NewString()[:8]
	logPath := filepath.Join(c.LogDir,
		fmt.Sprintf("train-%s-%s.log", time.Now().Format("20060102-150405"), runID))
	logFile, err := os.Create(logPath)
	if err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("cannot create run log: %w", err)
	}
	defer logFile.Close()
	runLog := &syncWriter{w: logFile}

	args := ContainerArgs(c, workDir, scriptPath)
	logger.Logger.Info("starting training run",
		zap.String("run_id", runID),
		zap.String("image", c.ImagePath),
		zap.String("log", logPath))

	cmd := exec.CommandContext(ctx, args[0], args[1:]...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return Result{ExitCode: 1}, err
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return Result{ExitCode: 1}, err
	}

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return Result{ExitCode: 1}, fmt.Errorf("cannot start %s: %w", c.ContainerRuntime, err)
	}

	// Mirror the child's output to the terminal and the run log.
	g := new(errgroup.Group)
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(os.Stdout, runLog), stdout)
		return err
	})
	g.Go(func() error {
		_, err := io.Copy(io.MultiWriter(os.Stderr, runLog), stderr)
		return err
	})
	if err := g.Wait(); err != nil {
		logger.Logger.Warn("output streaming interrupted", zap.Error(err))
	}

	waitErr := cmd.Wait()
	elapsed := time.Since(start)

	exitCode := 0
	if waitErr != nil {
		var exitErr *exec.ExitError
		if errors.As(waitErr, &exitErr) {
			exitCode = exitErr.ExitCode()
		} else {
			exitCode = 1
		}
	}

	fmt.Printf("\nTraining finished in %.2f seconds (exit code %d)\n",
		elapsed.Seconds(), exitCode)

	if exitCode != 0 {
		replayFailureTail(logPath)
	}

	metrics.PushRunMetrics(c.PushGateway, elapsed, exitCode)

	return Result{ExitCode: exitCode, Elapsed: elapsed, LogPath: logPath}, nil
}

func replayFailureTail(logPath string) {
	lines, err := logtail.Tail(logPath, failureTailLines)
	if err != nil {
		logger.Logger.Warn("cannot read run log tail", zap.Error(err))
		return
	}
	if len(lines) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "Last %d line(s) of %s:\n", len(lines), logPath)
	for _, line := range lines {
		fmt.Fprintln(os.Stderr, "  "+line)
	}
}
