package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/loader/loadertest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveConfigLayersFlagsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "viewer.yaml")
	require.NoError(t, os.WriteFile(path, []byte("model: from-file.glb\nwindow:\n  width: 640\n  height: 480\n"), 0o644))

	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--config", path, "--height", "900", "--color", "blue", "--control-addr", ":9000"}))

	f := &flags{}
	f.configPath, _ = cmd.Flags().GetString("config")
	f.height, _ = cmd.Flags().GetInt("height")
	f.color, _ = cmd.Flags().GetString("color")
	f.controlAddr, _ = cmd.Flags().GetString("control-addr")

	cfg, err := resolveConfig(cmd, f, []string{"override.glb"})
	require.NoError(t, err)
	assert.Equal(t, "override.glb", cfg.Model)
	assert.Equal(t, 640, cfg.Window.Width)
	assert.Equal(t, 900, cfg.Window.Height)
	assert.Equal(t, "blue", cfg.Color)
	assert.True(t, cfg.Control.Enabled)
	assert.Equal(t, ":9000", cfg.Control.Addr)
}

func TestResolveConfigRejectsInvalidFlags(t *testing.T) {
	cmd := newRootCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--color", "nope"}))

	_, err := resolveConfig(cmd, &flags{color: "nope"}, nil)
	assert.ErrorIs(t, err, config.ErrInvalidConfig)
}

func TestInfoCommand(t *testing.T) {
	path := loadertest.WriteFile(t, t.TempDir(), "CHAIR.glb", loadertest.ChairGLB())

	var out bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"info", "--json", path})
	require.NoError(t, cmd.Execute())

	var summary struct {
		Name   string
		Meshes int
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &summary))
	assert.Equal(t, loadertest.SceneName, summary.Name)
	assert.Equal(t, loadertest.MeshNodeCount, summary.Meshes)

	out.Reset()
	cmd = newRootCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"info", path})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "Triangles:")
}

func TestInfoCommandMissingFile(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.glb")
	var errOut bytes.Buffer
	cmd := newRootCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{"info", missing})

	require.Error(t, cmd.Execute())
	assert.Contains(t, errOut.String(), "Error: inspect "+missing)
	assert.NotContains(t, errOut.String(), "Usage:")
}

func TestLocalPath(t *testing.T) {
	dir := t.TempDir()
	model := filepath.Join(dir, "CHAIR.glb")

	cases := []struct {
		location string
		want     string
		local    bool
	}{
		{location: model, want: model, local: true},
		{location: "file://" + filepath.ToSlash(model), want: model, local: true},
		{location: "models/CHAIR.glb", want: "models/CHAIR.glb", local: true},
		{location: "https://example.com/CHAIR.glb", local: false},
		{location: "http://example.com/CHAIR.glb", local: false},
	}
	for _, tc := range cases {
		got, ok := localPath(tc.location)
		assert.Equal(t, tc.local, ok, tc.location)
		assert.Equal(t, tc.want, got, tc.location)
	}
}

func TestRunWatchesFileURL(t *testing.T) {
	cfg := config.Default()
	cfg.Model = "file://" + filepath.ToSlash(loadertest.WriteFile(t, t.TempDir(), "CHAIR.glb", loadertest.ChairGLB()))
	cfg.Headless = true
	cfg.Watch = true
	cfg.Frames = 10
	cfg.TickRate = 500
	cfg.Log.Level = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, run(ctx, cfg))
}

func TestRunHeadlessFrameLimit(t *testing.T) {
	cfg := config.Default()
	cfg.Model = loadertest.WriteFile(t, t.TempDir(), "CHAIR.glb", loadertest.ChairGLB())
	cfg.Headless = true
	cfg.Frames = 10
	cfg.TickRate = 500
	cfg.Color = "green"
	cfg.Log.Level = "error"

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	assert.NoError(t, run(ctx, cfg))
}
