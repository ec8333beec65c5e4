package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/hamza1886/youtube-download-tool/internal/model"
	"github.com/hamza1886/youtube-download-tool/internal/testutil"
	"github.com/hamza1886/youtube-download-tool/internal/ui"
)

func TestResolveFfmpegBinary_LocalPreferred(t *testing.T) {
	tmp := testutil.ChdirTemp(t)
	local := filepath.Join(tmp, "ffmpeg")
	testutil.WriteExecutable(t, local)

	t.Setenv("PATH", "")

	cfg := &model.Config{UseFfmpegEnvVar: false}
	got, err := ResolveFfmpegBinary(cfg)
	if err != nil {
		t.Fatalf("ResolveFfmpegBinary returned error: %v", err)
	}
	if got != "./ffmpeg" {
		t.Fatalf("expected ./ffmpeg, got %q", got)
	}
}

func TestResolveFfmpegBinary_PathFallback(t *testing.T) {
	tmp := testutil.ChdirTemp(t)
	binDir := filepath.Join(tmp, "bin")
	if err := os.MkdirAll(binDir, 0755); err != nil {
		t.Fatalf("failed to create bin dir: %v", err)
	}

	ffmpegPath := filepath.Join(binDir, "ffmpeg")
	testutil.WriteExecutable(t, ffmpegPath)

	t.Setenv("PATH", binDir)

	cfg := &model.Config{UseFfmpegEnvVar: false}
	got, err := ResolveFfmpegBinary(cfg)
	if err != nil {
		t.Fatalf("ResolveFfmpegBinary returned error: %v", err)
	}
	if got != ffmpegPath {
		t.Fatalf("expected %q, got %q", ffmpegPath, got)
	}
}

func TestResolveFfmpegBinary_MissingReturnsError(t *testing.T) {
	_ = testutil.ChdirTemp(t)
	t.Setenv("PATH", "")

	cfg := &model.Config{UseFfmpegEnvVar: false}
	_, err := ResolveFfmpegBinary(cfg)
	if err == nil {
		t.Fatal("expected error when ffmpeg missing, got nil")
	}
}

func TestResolveFfmpegBinary_ExplicitMissing(t *testing.T) {
	_ = testutil.ChdirTemp(t)
	t.Setenv("PATH", "")

	cfg := &model.Config{FfmpegNameStr: "/no/such/ffmpeg"}
	_, err := ResolveFfmpegBinary(cfg)
	if err == nil {
		t.Fatal("expected error for missing explicit binary, got nil")
	}
}

func TestParseCfg_FfmpegProbeAccepts(t *testing.T) {
	testutil.WithTempHome(t)
	tmp := testutil.ChdirTemp(t)
	testutil.WriteExecutable(t, filepath.Join(tmp, "ffmpeg"))
	t.Setenv("PATH", "")
	t.Cleanup(func() { ui.Quiet = false })

	args := &model.Args{Urls: []string{"https://youtu.be/abc"}, Progress: true}
	cfg, err := ParseCfg(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !cfg.FfmpegAvailable {
		t.Fatal("expected working binary to pass the -version probe")
	}
}

func TestParseCfg_FfmpegProbeRejectsFailingBinary(t *testing.T) {
	testutil.WithTempHome(t)
	tmp := testutil.ChdirTemp(t)
	failing := filepath.Join(tmp, "ffmpeg")
	if err := os.WriteFile(failing, []byte("#!/bin/sh\nexit 1\n"), 0755); err != nil {
		t.Fatalf("failed to write stub: %v", err)
	}
	t.Setenv("PATH", "")
	t.Cleanup(func() { ui.Quiet = false })

	args := &model.Args{Urls: []string{"https://youtu.be/abc"}, Progress: true}
	cfg, err := ParseCfg(args)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.FfmpegAvailable {
		t.Fatal("binary failing -version must not count as available")
	}
}

func TestParseCfg_QuietSuppressesFfmpegWarning(t *testing.T) {
	testutil.WithTempHome(t)
	_ = testutil.ChdirTemp(t)
	t.Setenv("PATH", "")
	t.Cleanup(func() { ui.Quiet = false })

	args := &model.Args{Urls: []string{"https://youtu.be/abc"}, Quiet: true}
	out := testutil.CaptureStdout(t, func() {
		if _, err := ParseCfg(args); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})
	if strings.Contains(out, "ffmpeg not found") {
		t.Fatalf("quiet run printed the ffmpeg warning:\n%s", out)
	}
}

func TestReadConfig_MissingFileIsNotAnError(t *testing.T) {
	testutil.WithTempHome(t)
	_ = testutil.ChdirTemp(t)

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg == nil {
		t.Fatal("expected empty config, got nil")
	}
}

func TestReadConfig_LoadsDefaults(t *testing.T) {
	home := testutil.WithTempHome(t)
	_ = testutil.ChdirTemp(t)

	dir := filepath.Join(home, ".config", "ytdl")
	if err := os.MkdirAll(dir, 0755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := []byte(`{"outputDir": "/srv/videos", "subLang": "fr", "quiet": true}`)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), content, 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := ReadConfig()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.OutputDir != "/srv/videos" {
		t.Fatalf("unexpected outputDir: %q", cfg.OutputDir)
	}
	if cfg.SubLang != "fr" {
		t.Fatalf("unexpected subLang: %q", cfg.SubLang)
	}
	if !cfg.Quiet {
		t.Fatal("expected quiet from config file")
	}
}

func TestReadConfig_MalformedFile(t *testing.T) {
	testutil.WithTempHome(t)
	tmp := testutil.ChdirTemp(t)

	if err := os.WriteFile(filepath.Join(tmp, "config.json"), []byte("{nope"), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	if _, err := ReadConfig(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
