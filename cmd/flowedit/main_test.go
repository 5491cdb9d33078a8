package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	out := &bytes.Buffer{}
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}

const reminderYAML = `
id: auto-1
tenant_id: tenant-1
name: Reminder
graph:
  nodes:
    - {id: t1, kind: overdue-invoice, parameters: {days: 5}}
    - {id: a1, kind: action-send-message, position: {x: 240, y: 0}}
    - {id: x1, kind: sms-blast}
  edges:
    - {id: e1, source: t1, target: a1}
`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Regexp(t, `^flowedit version \d+\.\d+\.\d+`, out)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", writeFile(t, "reminder.yaml", reminderYAML))
	require.NoError(t, err)
	assert.Contains(t, out, `warning: node "x1" has unrecognised kind "sms-blast"`)
	assert.Contains(t, out, "(3 nodes, 1 edges)")

	_, err = execute(t, "validate", writeFile(t, "bad.json", `{"graph": {"edges": [{"id": "e1", "source": "a", "target": "b"}]}}`))
	assert.ErrorContains(t, err, "validation failed")
}

func TestGraphCommand_Template(t *testing.T) {
	out, err := execute(t, "graph", "--template", "overdue-reminder")
	require.NoError(t, err)
	assert.Contains(t, out, "graph LR")
	assert.Contains(t, out, "t1 --> a1")
}

func TestShowCommand_Raw(t *testing.T) {
	out, err := execute(t, "show", "--raw", writeFile(t, "reminder.yaml", reminderYAML))
	require.NoError(t, err)
	assert.Contains(t, out, "# Reminder")
	assert.Contains(t, out, "5 days")
}

func TestTemplatesExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "templates")
	out, err := execute(t, "templates", "export", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote 3 templates")

	_, err = os.Stat(filepath.Join(dir, "overdue-reminder.md"))
	assert.NoError(t, err)
}
