package pipeline

import (
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"syscall"

	"github.com/google/uuid"

	"github.com/jnproject/jn/internal/obslog"
	"github.com/jnproject/jn/internal/obsmetrics"
)

// Orchestrator spawns a Spec's stages and waits for completion.
type Orchestrator struct {
	log *obslog.Logger
}

// New returns an Orchestrator that logs to log (nil is fine: logging is
// skipped).
func New(log *obslog.Logger) *Orchestrator {
	return &Orchestrator{log: log}
}

// Run spawns spec's stages wired stdin-to-stdout in sequence, waits for all
// of them, and returns the exit code the reader process should itself exit
// with. stdin feeds stage 0 when spec.Input.Kind is InputInherit; stdout
// receives the last stage's output (or is fed directly when the spec has
// zero stages).
func (o *Orchestrator) Run(ctx context.Context, spec Spec, stdin io.Reader, stdout io.Writer) int {
	runID := uuid.New().String()
	log := o.logger().With().Str("run_id", runID).Logger()

	if len(spec.Stages) == 0 {
		// An empty pipeline means the caller is told "pass stdin through".
		_, err := io.Copy(stdout, stdin)
		if isBrokenPipe(err) {
			return 0
		}
		if err != nil {
			log.Error().Err(err).Msg("pipeline: passthrough copy failed")
			return 1
		}
		return 0
	}

	obsmetrics.PipelineRun(len(spec.Stages))

	cmds := make([]*exec.Cmd, len(spec.Stages))
	for i, stage := range spec.Stages {
		cmd := exec.CommandContext(ctx, stage.Path, stage.Args...)
		cmd.Env = append(os.Environ(), stage.Env...)
		cmd.Stderr = os.Stderr
		cmds[i] = cmd
	}

	if err := wireInput(spec.Input, cmds[0], stdin); err != nil {
		log.Error().Err(err).Msg("pipeline: failed to wire stage 0 input")
		obsmetrics.PipelineExit(1)
		return 1
	}

	readEnds := make([]*os.File, len(cmds)-1)
	writeEnds := make([]*os.File, len(cmds)-1)
	for i := 0; i < len(cmds)-1; i++ {
		pr, pw, err := os.Pipe()
		if err != nil {
			log.Error().Err(err).Msg("pipeline: failed to create pipe")
			obsmetrics.PipelineExit(1)
			return 1
		}
		cmds[i].Stdout = pw
		cmds[i+1].Stdin = pr
		readEnds[i] = pr
		writeEnds[i] = pw
	}
	cmds[len(cmds)-1].Stdout = stdout

	// Start stages left to right, closing each pipe's ends in the parent
	// as soon as both of its adjacent stages are running, so the parent
	// never holds a copy that would stop the reader from seeing EOF.
	for i, cmd := range cmds {
		if err := cmd.Start(); err != nil {
			log.Error().Err(err).Int("stage", i).Str("path", cmd.Path).Msg("pipeline: spawn failed")
			killAll(cmds[:i])
			obsmetrics.PipelineExit(1)
			return 1
		}
		if i < len(writeEnds) {
			_ = writeEnds[i].Close()
		}
		if i > 0 {
			_ = readEnds[i-1].Close()
		}
	}

	var lastErr error
	for i, cmd := range cmds {
		err := cmd.Wait()
		if i == len(cmds)-1 {
			lastErr = err
		}
	}

	code := mapExitStatus(lastErr)
	obsmetrics.PipelineExit(code)
	return code
}

func (o *Orchestrator) logger() *obslog.Logger {
	if o.log != nil {
		return o.log
	}
	return obslog.Get()
}

// wireInput connects in.Kind to cmd's stdin.
func wireInput(in Input, cmd *exec.Cmd, stdin io.Reader) error {
	switch in.Kind {
	case InputInherit:
		if f, ok := stdin.(*os.File); ok {
			cmd.Stdin = f
		} else {
			cmd.Stdin = stdin
		}
	case InputFile:
		f, err := os.Open(in.Path)
		if err != nil {
			return err
		}
		cmd.Stdin = f
	case InputClosed:
		cmd.Stdin = nil
	}
	return nil
}

func killAll(cmds []*exec.Cmd) {
	for _, cmd := range cmds {
		if cmd.Process != nil {
			_ = cmd.Process.Kill()
		}
	}
}

// mapExitStatus implements the orchestrator's exit-code mapping: normal
// exit passes the code through; killed by signal S exits 128+S; stopped or
// unknown exits 1.
func mapExitStatus(err error) int {
	if err == nil {
		return 0
	}
	if isBrokenPipe(err) {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return 1
	}
	status, ok := exitErr.Sys().(syscall.WaitStatus)
	if !ok {
		return 1
	}
	switch {
	case status.Exited():
		return status.ExitStatus()
	case status.Signaled():
		return 128 + int(status.Signal())
	default:
		return 1
	}
}

func isBrokenPipe(err error) bool {
	return errors.Is(err, syscall.EPIPE)
}

// SignalExitCode maps a received termination signal to the orchestrator's
// own exit code: 130 on SIGINT, the shell-standard 128+signal for any other
// signal-killed pipeline.
func SignalExitCode(sig os.Signal) int {
	if sig == os.Interrupt {
		return 130
	}
	if s, ok := sig.(syscall.Signal); ok {
		return 128 + int(s)
	}
	return 1
}
