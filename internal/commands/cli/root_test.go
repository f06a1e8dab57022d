package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andrei-cloud/go_pool/internal/preset"
)

const testConfig = `
log:
  level: error
pool:
  categories:
    - name: laser
      capacity: 8
      prototype: laser
catalog: [laser, rock]
`

const testPreset = `
categories:
  - name: asteroid
    capacity: 4
    prototype: rock
  - name: boss
    capacity: 1
    prototype: rock
`

func executeCommand(root *cobra.Command, args ...string) (string, error) {
	buf := new(bytes.Buffer)
	root.SetOut(buf)
	root.SetErr(buf)
	root.SetArgs(args)

	err := root.Execute()

	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestRootCommand_Subcommands(t *testing.T) {
	root, err := NewRootCommand()
	require.NoError(t, err)

	names := make([]string, 0, len(root.Commands()))
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	assert.Subset(t, names, []string{"serve", "preset", "watch", "version"})
}

func TestVersionCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)

	root, err := NewRootCommand()
	require.NoError(t, err)

	out, err := executeCommand(root, "--config", cfg, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "go_pool dev")
}

func TestPresetValidate(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)

	tests := []struct {
		name    string
		preset  string
		want    string
		wantErr error
	}{
		{
			name:   "valid preset",
			preset: testPreset,
			want:   `preset "shooter" ok, 2 categories`,
		},
		{
			name:    "unknown prototype",
			preset:  "categories:\n  - {name: ship, capacity: 1, prototype: ship}\n",
			wantErr: preset.ErrUnknownPrototype,
		},
		{
			name:    "duplicate category",
			preset:  "categories:\n  - {name: rock, capacity: 1, prototype: rock}\n  - {name: rock, capacity: 2, prototype: rock}\n",
			wantErr: preset.ErrInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, "shooter.yaml", tt.preset)
			root, err := NewRootCommand()
			require.NoError(t, err)

			out, err := executeCommand(root, "--config", cfg, "preset", "validate", path)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.want)
		})
	}
}

func TestPresetList(t *testing.T) {
	dir := t.TempDir()
	presetPath := writeFile(t, dir, "shooter.yaml", testPreset)
	cfg := writeFile(t, dir, "config.yaml", `
pool:
  presets: [`+presetPath+`]
  categories:
    - {name: laser, capacity: 8, prototype: laser}
catalog: [laser, rock]
`)

	root, err := NewRootCommand()
	require.NoError(t, err)

	out, err := executeCommand(root, "--config", cfg, "preset", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "config")
	assert.Contains(t, out, "laser")
	assert.Contains(t, out, "shooter")
	assert.Contains(t, out, "asteroid")
}

func TestPresetPush_NoRedis(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "config.yaml", testConfig)
	path := writeFile(t, dir, "shooter.yaml", testPreset)

	root, err := NewRootCommand()
	require.NoError(t, err)

	_, err = executeCommand(root, "--config", cfg, "preset", "push", path)
	assert.ErrorIs(t, err, preset.ErrNoStore)
}
