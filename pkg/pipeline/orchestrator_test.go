package pipeline

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireUnix(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("pipeline orchestrator test requires POSIX utilities")
	}
	if _, err := exec.LookPath("cat"); err != nil {
		t.Skip("cat not on PATH")
	}
}

func TestEmptySpecPassesStdinThrough(t *testing.T) {
	o := New(nil)
	var out bytes.Buffer
	code := o.Run(context.Background(), Spec{}, strings.NewReader("hello\n"), &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "hello\n", out.String())
}

func TestTwoStagePipelineChainsOutput(t *testing.T) {
	requireUnix(t)
	catPath, err := exec.LookPath("cat")
	require.NoError(t, err)
	trPath, err := exec.LookPath("tr")
	if err != nil {
		t.Skip("tr not on PATH")
	}

	spec := Spec{
		Input: Input{Kind: InputInherit},
		Stages: []Stage{
			{Position: 0, Path: catPath},
			{Position: 1, Path: trPath, Args: []string{"a-z", "A-Z"}},
		},
	}

	o := New(nil)
	var out bytes.Buffer
	code := o.Run(context.Background(), spec, strings.NewReader("hello\n"), &out)
	assert.Equal(t, 0, code)
	assert.Equal(t, "HELLO\n", out.String())
}

func TestSingleStageNonZeroExitPropagates(t *testing.T) {
	requireUnix(t)
	shPath, err := exec.LookPath("sh")
	require.NoError(t, err)

	spec := Spec{
		Input:  Input{Kind: InputClosed},
		Stages: []Stage{{Position: 0, Path: shPath, Args: []string{"-c", "exit 7"}}},
	}

	o := New(nil)
	var out bytes.Buffer
	code := o.Run(context.Background(), spec, strings.NewReader(""), &out)
	assert.Equal(t, 7, code)
}

func TestSignalExitCodeForSIGINT(t *testing.T) {
	assert.Equal(t, 130, SignalExitCode(syscallSIGINT()))
}

func TestSignalExitCodeForOtherSignal(t *testing.T) {
	assert.Equal(t, 128+int(syscall.SIGTERM), SignalExitCode(syscall.SIGTERM))
}

func syscallSIGINT() syscall.Signal {
	return syscall.SIGINT
}
