package model

// Config holds the resolved configuration for a run. It is built by
// internal/config from the optional config file plus CLI arguments.
type Config struct {
	Urls            []string `json:"-"`
	OutputDir       string   `json:"outputDir,omitempty"`
	Format          string   `json:"format,omitempty"`
	AudioOnly       bool     `json:"-"`
	VideoOnly       bool     `json:"-"`
	Subtitles       bool     `json:"-"`
	SubLang         string   `json:"subLang,omitempty"`
	SubFormat       string   `json:"subFormat,omitempty"`
	EmbedSubs       bool     `json:"-"`
	Merge           bool     `json:"-"`
	Overwrite       bool     `json:"-"`
	Quiet           bool     `json:"quiet,omitempty"`
	ShowProgress    bool     `json:"-"`
	MaxFilesize     int64    `json:"-"`
	Simulate        bool     `json:"-"`
	UseFfmpegEnvVar bool     `json:"useFfmpegEnvVar,omitempty"`
	FfmpegNameStr   string   `json:"ffmpegNameStr,omitempty"`
	FfmpegAvailable bool     `json:"-"`
}

// Args holds CLI arguments parsed by go-arg.
type Args struct {
	Urls        []string `arg:"positional,required" help:"YouTube video or playlist URL(s), or .txt files with one URL per line"`
	OutputDir   string   `arg:"-o,--output-dir" help:"Output directory. Created if it doesn't already exist."`
	Format      string   `arg:"-f,--format" help:"Format selection: numeric itag or extension (mp4, webm, m4a)."`
	AudioOnly   bool     `arg:"--audio-only" help:"Download audio only (converted to MP3 when ffmpeg is available)."`
	VideoOnly   bool     `arg:"--video-only" help:"Download video only (no audio)."`
	Subtitles   bool     `arg:"-s,--subtitles" help:"Download subtitles."`
	SubLang     string   `arg:"--sub-lang" help:"Subtitle language code (e.g. en, fr, or \"all\"). Default: en."`
	SubFormat   string   `arg:"--sub-format" help:"Subtitle file format: srt or vtt. Default: srt."`
	EmbedSubs   bool     `arg:"--embed-subs" help:"Embed downloaded subtitles into the video file (requires ffmpeg)."`
	Merge       bool     `arg:"-m,--merge" help:"Merge best video-only and audio-only streams into one MP4 (requires ffmpeg)."`
	Overwrite   bool     `arg:"--overwrite" help:"Overwrite existing files instead of skipping them."`
	Quiet       bool     `arg:"--quiet" help:"Minimal output."`
	Progress    bool     `arg:"--progress" default:"true" help:"Show download progress."`
	MaxFilesize string   `arg:"--max-filesize" help:"Maximum file size: bare number = MiB, or a size like 500MB."`
	Simulate    bool     `arg:"--simulate" help:"Show what would be downloaded without downloading."`
	DryRun      bool     `arg:"--dry-run" help:"Alias of --simulate."`
}

// Description provides the header line for go-arg's generated help.
func (Args) Description() string {
	return "YouTube Download Tool - download videos with format selection and subtitle support"
}
