// ytdl is a command-line wrapper around a YouTube extraction library and
// ffmpeg. It resolves video and playlist URLs, downloads the selected
// streams and optionally post-processes them (audio extraction, merging,
// subtitle embedding).
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/hamza1886/youtube-download-tool/internal/config"
	"github.com/hamza1886/youtube-download-tool/internal/download"
	"github.com/hamza1886/youtube-download-tool/internal/model"
	"github.com/hamza1886/youtube-download-tool/internal/ui"
)

func main() {
	os.Exit(run())
}

func run() int {
	args := config.ParseArgs()
	cfg, err := config.ParseCfg(args)
	if err != nil {
		ui.PrintError(err.Error())
		return model.ExitCode(err)
	}

	if err := checkFfmpegRequirements(cfg); err != nil {
		ui.PrintError(err.Error())
		return model.ExitCode(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	results := processUrls(ctx, cfg)
	if ctx.Err() != nil {
		ui.PrintError("Interrupted")
		return model.ExitGeneralError
	}
	return summarize(cfg, results)
}

// checkFfmpegRequirements fails fast when a requested feature cannot work
// without ffmpeg. Audio extraction degrades gracefully instead and is not
// checked here.
func checkFfmpegRequirements(cfg *model.Config) error {
	if cfg.FfmpegAvailable || cfg.Simulate {
		return nil
	}
	switch {
	case cfg.Merge:
		return model.WrapCategory(model.CategoryMissingDependency,
			errors.New("--merge requires ffmpeg, which was not found"))
	case cfg.EmbedSubs:
		return model.WrapCategory(model.CategoryMissingDependency,
			errors.New("--embed-subs requires ffmpeg, which was not found"))
	}
	return nil
}

func processUrls(ctx context.Context, cfg *model.Config) []download.Result {
	d := download.New(cfg)
	var results []download.Result
	for i, u := range cfg.Urls {
		if ctx.Err() != nil {
			break
		}
		if !cfg.Simulate {
			ui.PrintDownload(fmt.Sprintf("URL %d of %d: %s", i+1, len(cfg.Urls), u))
		}
		results = append(results, d.ProcessURL(ctx, u)...)
	}
	return results
}

// summarize reports the run outcome and derives the exit code. With mixed
// failure categories the generic failure code wins.
func summarize(cfg *model.Config, results []download.Result) int {
	var downloaded, skipped int
	var failures []download.Result
	for _, res := range results {
		switch {
		case res.Err != nil:
			failures = append(failures, res)
		case res.Skipped:
			skipped++
		default:
			downloaded++
		}
	}

	if !cfg.Simulate {
		ui.PrintDivider()
		doneMsg := fmt.Sprintf("Done: %d downloaded, %d skipped, %d failed",
			downloaded, skipped, len(failures))
		if ui.RunWarningCount > 0 {
			doneMsg += fmt.Sprintf(" (%d warnings)", ui.RunWarningCount)
		}
		ui.PrintInfo(doneMsg)
	}
	for _, res := range failures {
		ui.PrintError(fmt.Sprintf("Failed: %s: %v", res.URL, res.Err))
	}

	exitCode := model.ExitSuccess
	for _, res := range failures {
		code := model.ExitCode(res.Err)
		if exitCode == model.ExitSuccess {
			exitCode = code
		} else if exitCode != code {
			exitCode = model.ExitGeneralError
		}
	}
	return exitCode
}
