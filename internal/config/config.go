package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/alexflint/go-arg"
	"github.com/dustin/go-humanize"

	"github.com/hamza1886/youtube-download-tool/internal/ffmpeg"
	"github.com/hamza1886/youtube-download-tool/internal/helpers"
	"github.com/hamza1886/youtube-download-tool/internal/model"
	"github.com/hamza1886/youtube-download-tool/internal/ui"
)

// LoadedConfigPath tracks which config file was loaded, for diagnostics.
var LoadedConfigPath string

// Hosts accepted as YouTube URLs.
var validHosts = []string{
	"youtube.com",
	"www.youtube.com",
	"m.youtube.com",
	"music.youtube.com",
	"youtu.be",
}

// ReadConfig reads the optional defaults file from known locations. A
// missing file is not an error; all defaults then come from flag defaults.
func ReadConfig() (*model.Config, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get home directory: %w", err)
	}

	configPaths := []string{
		"config.json",
		filepath.Join(homeDir, ".ytdl", "config.json"),
		filepath.Join(homeDir, ".config", "ytdl", "config.json"),
	}

	for _, path := range configPaths {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		var obj model.Config
		if err := json.Unmarshal(data, &obj); err != nil {
			return nil, fmt.Errorf("failed to parse config at %s: %w", path, err)
		}
		LoadedConfigPath = path
		return &obj, nil
	}

	return &model.Config{}, nil
}

// ParseArgs parses CLI arguments using go-arg.
func ParseArgs() *model.Args {
	var args model.Args
	arg.MustParse(&args)
	return &args
}

// ParseCfg reads the optional config file, applies CLI args on top, and
// returns the validated Config. Errors are categorized as invalid input.
func ParseCfg(args *model.Args) (*model.Config, error) {
	cfg, err := ReadConfig()
	if err != nil {
		return nil, model.WrapCategory(model.CategoryInvalidInput, err)
	}
	if err := MergeArgs(cfg, args); err != nil {
		return nil, model.WrapCategory(model.CategoryInvalidInput, err)
	}
	// Quiet has to take effect before anything below prints.
	ui.Quiet = cfg.Quiet
	if LoadedConfigPath != "" {
		ui.PrintInfo(fmt.Sprintf("Loaded config from %s", LoadedConfigPath))
	}

	cfg.Urls, err = helpers.ProcessUrls(args.Urls)
	if err != nil {
		return nil, model.WrapCategory(model.CategoryInvalidInput, err)
	}
	for _, u := range cfg.Urls {
		if err := ValidateURL(u); err != nil {
			return nil, model.WrapCategory(model.CategoryInvalidInput, err)
		}
	}
	if len(cfg.Urls) == 0 {
		return nil, model.WrapCategory(model.CategoryInvalidInput, errors.New("no URLs given"))
	}

	ffmpegName, err := ResolveFfmpegBinary(cfg)
	if err == nil && !ffmpeg.Available(ffmpegName) {
		err = fmt.Errorf("ffmpeg at %s failed the -version probe", ffmpegName)
	}
	if err != nil {
		// ffmpeg is optional unless merge/embed features are requested;
		// the caller decides whether its absence is fatal.
		ui.PrintWarning("ffmpeg not found. Merge and embed features will be disabled.")
		ffmpegName = ""
	}
	cfg.FfmpegNameStr = ffmpegName
	cfg.FfmpegAvailable = ffmpegName != ""

	return cfg, nil
}

// MergeArgs overlays CLI arguments onto the config file defaults and
// validates the combination.
func MergeArgs(cfg *model.Config, args *model.Args) error {
	if args.OutputDir != "" {
		cfg.OutputDir = args.OutputDir
	}
	if cfg.OutputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to resolve working directory: %w", err)
		}
		cfg.OutputDir = cwd
	}
	cfg.OutputDir = strings.TrimSpace(cfg.OutputDir)

	if args.Format != "" {
		cfg.Format = args.Format
	}
	if err := ValidateFormat(cfg.Format); err != nil {
		return err
	}

	cfg.AudioOnly = args.AudioOnly
	cfg.VideoOnly = args.VideoOnly
	if cfg.AudioOnly && cfg.VideoOnly {
		return errors.New("--audio-only and --video-only are mutually exclusive")
	}

	cfg.Subtitles = args.Subtitles
	cfg.EmbedSubs = args.EmbedSubs
	if cfg.EmbedSubs && !cfg.Subtitles {
		return errors.New("--embed-subs requires --subtitles")
	}
	if args.SubLang != "" {
		cfg.SubLang = args.SubLang
	}
	if cfg.SubLang == "" {
		cfg.SubLang = "en"
	}
	if args.SubFormat != "" {
		cfg.SubFormat = strings.ToLower(args.SubFormat)
	}
	if cfg.SubFormat == "" {
		cfg.SubFormat = model.SubFormatSRT
	}
	if cfg.SubFormat != model.SubFormatSRT && cfg.SubFormat != model.SubFormatVTT {
		return fmt.Errorf("invalid --sub-format %q (must be srt or vtt)", cfg.SubFormat)
	}

	cfg.Merge = args.Merge
	cfg.Overwrite = args.Overwrite
	cfg.Quiet = cfg.Quiet || args.Quiet
	cfg.ShowProgress = args.Progress && !cfg.Quiet
	cfg.Simulate = args.Simulate || args.DryRun

	if args.MaxFilesize != "" {
		maxBytes, err := ParseMaxFilesize(args.MaxFilesize)
		if err != nil {
			return err
		}
		cfg.MaxFilesize = maxBytes
	}

	return nil
}

// ValidateURL checks that a string is a well-formed YouTube URL.
func ValidateURL(raw string) error {
	parsed, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid URL %q: %w", raw, err)
	}
	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("invalid YouTube URL %q: unsupported scheme", raw)
	}
	host := strings.ToLower(parsed.Hostname())
	for _, valid := range validHosts {
		if host == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid YouTube URL %q: unrecognized host", raw)
}

// ValidateFormat checks a format selector: empty, a numeric itag, or a
// container extension.
func ValidateFormat(format string) error {
	format = strings.TrimSpace(strings.ToLower(format))
	if format == "" {
		return nil
	}
	if _, err := strconv.Atoi(format); err == nil {
		return nil
	}
	switch format {
	case "mp4", "webm", "m4a", "3gp", "opus":
		return nil
	}
	return fmt.Errorf("invalid format %q (expected itag number or extension like mp4)", format)
}

// ParseMaxFilesize converts a max filesize argument to bytes. A bare number
// is taken as MiB; anything else goes through humanize (e.g. "500MB",
// "1.5 GiB").
func ParseMaxFilesize(value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, nil
	}
	if mb, err := strconv.ParseFloat(value, 64); err == nil {
		if mb <= 0 {
			return 0, fmt.Errorf("--max-filesize must be positive, got %q", value)
		}
		return int64(mb * 1024 * 1024), nil
	}
	parsed, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid --max-filesize %q: %w", value, err)
	}
	if parsed == 0 {
		return 0, fmt.Errorf("--max-filesize must be positive, got %q", value)
	}
	return int64(parsed), nil
}

// ResolveFfmpegBinary locates the ffmpeg binary based on config settings.
func ResolveFfmpegBinary(cfg *model.Config) (string, error) {
	preferred := strings.TrimSpace(cfg.FfmpegNameStr)

	// Respect explicit non-default binary names/paths from config.
	if preferred != "" && preferred != "./ffmpeg" && preferred != "ffmpeg" {
		if resolved, err := exec.LookPath(preferred); err == nil {
			return resolved, nil
		}
		if info, err := os.Stat(preferred); err == nil && !info.IsDir() {
			return preferred, nil
		}
		return "", fmt.Errorf("configured ffmpeg binary not found: %s", preferred)
	}

	if cfg.UseFfmpegEnvVar || preferred == "ffmpeg" {
		if resolved, err := exec.LookPath("ffmpeg"); err == nil {
			return resolved, nil
		}
		return "", errors.New("ffmpeg not found in PATH (install ffmpeg or set ffmpegNameStr to an absolute/local binary path)")
	}

	// Default: local ./ffmpeg first, then next to the executable.
	candidates := []string{"./ffmpeg"}
	if exePath, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exePath)
		exeLocal := filepath.Join(exeDir, "ffmpeg")
		if exeLocal != "./ffmpeg" {
			candidates = append(candidates, exeLocal)
		}
	}
	for _, candidate := range candidates {
		if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
			return candidate, nil
		}
	}

	// Fallback: use system ffmpeg if available.
	if resolved, err := exec.LookPath("ffmpeg"); err == nil {
		return resolved, nil
	}

	return "", errors.New("ffmpeg binary not found (checked ./ffmpeg and PATH)")
}
