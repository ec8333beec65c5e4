package main

import (
	"errors"
	"testing"

	"github.com/hamza1886/youtube-download-tool/internal/download"
	"github.com/hamza1886/youtube-download-tool/internal/model"
)

func TestCheckFfmpegRequirements(t *testing.T) {
	tests := []struct {
		name     string
		cfg      model.Config
		wantExit int
	}{
		{"nothing requested", model.Config{}, model.ExitSuccess},
		{"ffmpeg present", model.Config{Merge: true, FfmpegAvailable: true}, model.ExitSuccess},
		{"merge without ffmpeg", model.Config{Merge: true}, model.ExitMissingDependency},
		{"embed without ffmpeg", model.Config{Subtitles: true, EmbedSubs: true}, model.ExitMissingDependency},
		{"simulate skips the check", model.Config{Merge: true, Simulate: true}, model.ExitSuccess},
		{"audio only degrades gracefully", model.Config{AudioOnly: true}, model.ExitSuccess},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := checkFfmpegRequirements(&tt.cfg)
			if got := model.ExitCode(err); got != tt.wantExit {
				t.Errorf("exit code = %d, want %d (err: %v)", got, tt.wantExit, err)
			}
		})
	}
}

func TestSummarizeExitCodes(t *testing.T) {
	netErr := model.WrapCategory(model.CategoryNetwork, errors.New("timeout"))
	inputErr := model.WrapCategory(model.CategoryInvalidInput, errors.New("bad id"))

	tests := []struct {
		name    string
		results []download.Result
		want    int
	}{
		{"all succeeded", []download.Result{{Path: "a.mp4"}, {Path: "b.mp4"}}, model.ExitSuccess},
		{"skips count as success", []download.Result{{Path: "a.mp4", Skipped: true}}, model.ExitSuccess},
		{"single network failure", []download.Result{{Err: netErr}}, model.ExitNetworkError},
		{"uniform failures keep their code", []download.Result{{Err: netErr}, {Err: netErr}}, model.ExitNetworkError},
		{"mixed failures fall back to general",
			[]download.Result{{Err: netErr}, {Err: inputErr}}, model.ExitGeneralError},
		{"partial failure still fails", []download.Result{{Path: "a.mp4"}, {Err: netErr}}, model.ExitNetworkError},
	}
	cfg := &model.Config{Quiet: true}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := summarize(cfg, tt.results); got != tt.want {
				t.Errorf("summarize = %d, want %d", got, tt.want)
			}
		})
	}
}
