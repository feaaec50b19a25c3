package engine

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/huangsam/statweights/internal/contract"
	"github.com/huangsam/statweights/schema"
)

// maxLineSize bounds one NDJSON line from the simulator.
const maxLineSize = 4 * 1024 * 1024

// engineMessage is one NDJSON line on the simulator's stdout.
type engineMessage struct {
	Progress *schema.ProgressMetrics   `json:"progress,omitempty"`
	Result   *schema.StatWeightsResult `json:"result,omitempty"`
	Error    string                    `json:"error,omitempty"`
}

// ExecEngine implements contract.Engine by running a simulator binary. The
// request is written to stdin as JSON and the simulator answers with NDJSON
// progress, result or error lines on stdout.
type ExecEngine struct {
	Path string
	Args []string
	Env  []string // extra KEY=VALUE pairs on top of the current environment

	signals *SignalManager
}

var _ contract.Engine = &ExecEngine{} // Compile-time check

// NewExecEngine creates an engine that runs path with args.
func NewExecEngine(path string, args ...string) *ExecEngine {
	return &ExecEngine{Path: path, Args: args, signals: NewSignalManager()}
}

// ComputeStatWeights implements the contract.Engine interface. It returns
// (nil, nil) if the run is cancelled before the simulator reports a result.
func (e *ExecEngine) ComputeStatWeights(ctx context.Context, req schema.StatWeightsRequest, onProgress func(schema.ProgressMetrics)) (*schema.StatWeightsResult, error) {
	runCtx, release := e.signals.Register(ctx, schema.StatWeightsRequests)
	defer release()

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	cmd := exec.CommandContext(runCtx, e.Path, e.Args...)
	cmd.Stdin = bytes.NewReader(payload)
	if len(e.Env) > 0 {
		cmd.Env = append(os.Environ(), e.Env...)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("engine stdout: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine %q failed to start: %w. Ensure the simulator is installed and available on your PATH", e.Path, err)
	}

	result, readErr := readEngineOutput(stdout, onProgress)
	// The scanner stops early on an oversized line; the child must not block
	// on a full pipe while we wait for it.
	_, _ = io.Copy(io.Discard, stdout)
	waitErr := cmd.Wait()

	if result != nil {
		return result, nil
	}
	if runCtx.Err() != nil {
		return nil, nil
	}
	if readErr != nil {
		return nil, readErr
	}
	var exitErr *exec.ExitError
	if errors.As(waitErr, &exitErr) {
		return nil, fmt.Errorf("engine %q failed: %s", e.Path, strings.TrimSpace(stderr.String()))
	} else if waitErr != nil {
		return nil, fmt.Errorf("engine %q failed: %w", e.Path, waitErr)
	}
	return nil, fmt.Errorf("engine %q exited without a result", e.Path)
}

// AbortType implements the contract.Engine interface.
func (e *ExecEngine) AbortType(_ context.Context, requestType schema.RequestType) error {
	e.signals.AbortType(requestType)
	return nil
}

// readEngineOutput consumes stdout to EOF. It keeps the first result,
// forwards progress that does not move backwards and returns the first
// error line as an error.
func readEngineOutput(r io.Reader, onProgress func(schema.ProgressMetrics)) (*schema.StatWeightsResult, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineSize)

	var (
		result    *schema.StatWeightsResult
		engineErr error
		last      *schema.ProgressMetrics
	)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 || result != nil || engineErr != nil {
			continue
		}
		var msg engineMessage
		if err := json.Unmarshal(line, &msg); err != nil {
			engineErr = fmt.Errorf("malformed engine output %q: %w", line, err)
			continue
		}
		switch {
		case msg.Error != "":
			engineErr = fmt.Errorf("engine reported: %s", msg.Error)
		case msg.Result != nil:
			result = msg.Result
		case msg.Progress != nil:
			if last != nil && last.Regressed(*msg.Progress) {
				continue
			}
			p := *msg.Progress
			last = &p
			if onProgress != nil {
				onProgress(p)
			}
		}
	}
	if result != nil {
		return result, nil
	}
	if engineErr != nil {
		return nil, engineErr
	}
	if err := scanner.Err(); err != nil && !errors.Is(err, os.ErrClosed) {
		return nil, fmt.Errorf("read engine output: %w", err)
	}
	return nil, nil
}
