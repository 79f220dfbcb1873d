package shell

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecRunnerCapturesStdout(t *testing.T) {
	r := NewExecRunner()
	res, err := r.Run(context.Background(), "sh", "-c", "echo hello")
	require.NoError(t, err)
	assert.True(t, res.Ok())
	assert.Equal(t, "hello", res.Text())
}

func TestExecRunnerReportsExitCode(t *testing.T) {
	r := NewExecRunner()
	res, err := r.Run(context.Background(), "sh", "-c", "echo oops >&2; exit 3")
	require.NoError(t, err)
	assert.False(t, res.Ok())
	assert.Equal(t, 3, res.ExitCode)
	assert.Equal(t, "oops", res.ErrText())
}

func TestExecRunnerMissingBinary(t *testing.T) {
	r := NewExecRunner()
	_, err := r.Run(context.Background(), "definitely-not-a-real-binary-xyz")
	require.Error(t, err)
}

func TestResultErrTextPlaceholder(t *testing.T) {
	assert.Equal(t, "unknown error", Result{ExitCode: 1}.ErrText())
}

func TestFakeRecordsCallsAndAnswers(t *testing.T) {
	f := NewFake()
	f.Respond("account show", Result{Stdout: "sub-id\n"})
	f.Fail("kubectl apply", errors.New("boom"))

	res, err := f.Run(context.Background(), "az", "account", "show", "--query", "id", "-o", "tsv")
	require.NoError(t, err)
	assert.Equal(t, "sub-id", res.Text())

	_, err = f.Run(context.Background(), "kubectl", "apply", "-f", "x.yaml")
	require.Error(t, err)

	res, err = f.Run(context.Background(), "az", "group", "create")
	require.NoError(t, err)
	assert.True(t, res.Ok())

	assert.Len(t, f.Calls(), 3)
	assert.True(t, f.Invoked("group create"))
	assert.False(t, f.Invoked("aks create"))
}
