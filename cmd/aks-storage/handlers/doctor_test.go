package handlers

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielscholl/aks-storage-poc/internal/util/prerequisites"
)

func setupDoctor(t *testing.T, results *prerequisites.CheckResults) *bytes.Buffer {
	t.Helper()

	var buf bytes.Buffer

	origStdout := stdout
	origPrereqs := checkDefaultPrereqs
	t.Cleanup(func() {
		stdout = origStdout
		checkDefaultPrereqs = origPrereqs
	})

	stdout = &buf
	checkDefaultPrereqs = func() *prerequisites.CheckResults { return results }
	return &buf
}

func TestDoctorAllToolsFound(t *testing.T) {
	buf := setupDoctor(t, &prerequisites.CheckResults{
		Results: []prerequisites.CheckResult{
			{Tool: prerequisites.Tool{Name: "az"}, Found: true, Version: "azure-cli 2.64.0"},
			{Tool: prerequisites.Tool{Name: "kubectl"}, Found: true, Path: "/usr/local/bin/kubectl"},
		},
	})

	require.NoError(t, Doctor())
	assert.Contains(t, buf.String(), "az (azure-cli 2.64.0)")
	assert.Contains(t, buf.String(), "kubectl (/usr/local/bin/kubectl)")
	assert.Contains(t, buf.String(), "All required tools are installed")
}

func TestDoctorMissingTool(t *testing.T) {
	missing := prerequisites.Tool{
		Name:       "kubectl",
		Required:   true,
		InstallURL: "https://kubernetes.io/docs/tasks/tools/",
	}
	buf := setupDoctor(t, &prerequisites.CheckResults{
		Results: []prerequisites.CheckResult{
			{Tool: prerequisites.Tool{Name: "az"}, Found: true},
			{Tool: missing, Found: false},
		},
		Missing: []prerequisites.Tool{missing},
	})

	err := Doctor()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kubectl")
	assert.Contains(t, buf.String(), "kubectl not found")
}
