// Package download drives the extraction library: it resolves URLs to
// videos, selects streams, writes them to disk and hands post-processing to
// the ffmpeg package.
package download

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/kkdai/youtube/v2"

	"github.com/hamza1886/youtube-download-tool/internal/ffmpeg"
	"github.com/hamza1886/youtube-download-tool/internal/helpers"
	"github.com/hamza1886/youtube-download-tool/internal/model"
	"github.com/hamza1886/youtube-download-tool/internal/ui"
)

// Downloader processes URLs according to one run's configuration.
type Downloader struct {
	client *youtube.Client
	cfg    *model.Config
}

// Result is the outcome of one video. A skipped existing file counts as a
// success with Skipped set.
type Result struct {
	URL     string
	Title   string
	Path    string
	Skipped bool
	Err     error
}

func New(cfg *model.Config) *Downloader {
	return &Downloader{
		client: NewClient(),
		cfg:    cfg,
	}
}

// ProcessURL handles one command-line URL, which may expand to many videos
// when it refers to a playlist.
func (d *Downloader) ProcessURL(ctx context.Context, rawURL string) []Result {
	if IsPlaylistURL(rawURL) {
		return d.processPlaylist(ctx, rawURL)
	}

	video, err := d.client.GetVideoContext(ctx, rawURL)
	if err != nil {
		return []Result{{URL: rawURL, Err: wrapFetchError(err, rawURL)}}
	}
	res := d.processVideo(ctx, video)
	res.URL = rawURL
	return []Result{res}
}

func (d *Downloader) processPlaylist(ctx context.Context, rawURL string) []Result {
	playlist, videos, entryErrs, err := d.fetchPlaylistVideos(ctx, rawURL)
	if err != nil {
		return []Result{{URL: rawURL, Err: err}}
	}

	ui.PrintInfo(fmt.Sprintf("Playlist: %s (%d videos)", playlist.Title, len(playlist.Videos)))

	results := make([]Result, 0, len(videos)+len(entryErrs))
	for _, entryErr := range entryErrs {
		results = append(results, Result{URL: rawURL, Err: entryErr})
	}
	for i, video := range videos {
		if ctx.Err() != nil {
			results = append(results, Result{URL: rawURL, Title: video.Title, Err: ctx.Err()})
			continue
		}
		if !d.cfg.Simulate {
			ui.PrintInfo(fmt.Sprintf("Video %d of %d", i+1, len(videos)))
		}
		res := d.processVideo(ctx, video)
		res.URL = rawURL
		results = append(results, res)
	}
	return results
}

func (d *Downloader) processVideo(ctx context.Context, video *youtube.Video) Result {
	res := Result{Title: video.Title}
	if d.cfg.Simulate {
		res.Err = d.Simulate(ctx, video)
		return res
	}

	path, skipped, err := d.downloadVideo(ctx, video)
	res.Path = path
	res.Skipped = skipped
	res.Err = err
	return res
}

func (d *Downloader) downloadVideo(ctx context.Context, video *youtube.Video) (string, bool, error) {
	switch {
	case d.cfg.AudioOnly:
		return d.downloadAudioOnly(ctx, video)
	case d.cfg.Merge && !d.cfg.VideoOnly:
		return d.downloadMerged(ctx, video)
	default:
		return d.downloadSingle(ctx, video)
	}
}

// downloadSingle fetches one stream, progressive or video-only, straight to
// the output directory.
func (d *Downloader) downloadSingle(ctx context.Context, video *youtube.Video) (string, bool, error) {
	format, err := SelectFormat(video, d.cfg)
	if err != nil {
		return "", false, err
	}

	outPath := d.outputPath(video, mimeToExt(format.MimeType))
	if skip, err := d.skipExisting(outPath); err != nil {
		return "", false, err
	} else if skip {
		return outPath, true, nil
	}

	if err := d.downloadStream(ctx, video, format, outPath); err != nil {
		return "", false, err
	}
	if err := d.handleSubtitles(ctx, video, outPath); err != nil {
		return "", false, err
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s", filepath.Base(outPath)))
	return outPath, false, nil
}

// downloadAudioOnly fetches the best audio stream and, when ffmpeg is
// available, transcodes it to MP3. Without ffmpeg the raw audio stream is
// kept in its native container.
func (d *Downloader) downloadAudioOnly(ctx context.Context, video *youtube.Video) (string, bool, error) {
	format, err := SelectFormat(video, d.cfg)
	if err != nil {
		return "", false, err
	}

	if !d.cfg.FfmpegAvailable {
		outPath := d.outputPath(video, mimeToExt(format.MimeType))
		if skip, err := d.skipExisting(outPath); err != nil {
			return "", false, err
		} else if skip {
			return outPath, true, nil
		}
		if err := d.downloadStream(ctx, video, format, outPath); err != nil {
			return "", false, err
		}
		if err := d.handleSubtitleSidecars(ctx, video, outPath); err != nil {
			return "", false, err
		}
		ui.PrintSuccess(fmt.Sprintf("Saved %s", filepath.Base(outPath)))
		return outPath, false, nil
	}

	outPath := d.outputPath(video, "mp3")
	if skip, err := d.skipExisting(outPath); err != nil {
		return "", false, err
	} else if skip {
		return outPath, true, nil
	}

	tempDir, err := os.MkdirTemp("", "ytdl")
	if err != nil {
		return "", false, model.WrapCategory(model.CategoryFilesystem, err)
	}
	defer os.RemoveAll(tempDir)

	rawPath := filepath.Join(tempDir, "audio."+mimeToExt(format.MimeType))
	if err := d.downloadStream(ctx, video, format, rawPath); err != nil {
		return "", false, err
	}

	ui.PrintInfo("Extracting audio to MP3")
	if err := ffmpeg.ExtractAudio(d.cfg.FfmpegNameStr, rawPath, outPath, true); err != nil {
		return "", false, fmt.Errorf("audio extraction failed: %w", err)
	}
	if err := d.handleSubtitleSidecars(ctx, video, outPath); err != nil {
		return "", false, err
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s", filepath.Base(outPath)))
	return outPath, false, nil
}

// downloadMerged fetches the best video-only and audio-only streams into a
// staging directory and muxes them with ffmpeg.
func (d *Downloader) downloadMerged(ctx context.Context, video *youtube.Video) (string, bool, error) {
	videoF, audioF, err := SelectMergeFormats(video, d.cfg)
	if err != nil {
		return "", false, err
	}

	ext := mimeToExt(videoF.MimeType)
	if ext != "mp4" && ext != "webm" {
		ext = "mp4"
	}
	outPath := d.outputPath(video, ext)
	if skip, err := d.skipExisting(outPath); err != nil {
		return "", false, err
	} else if skip {
		return outPath, true, nil
	}

	tempDir, err := os.MkdirTemp("", "ytdl")
	if err != nil {
		return "", false, model.WrapCategory(model.CategoryFilesystem, err)
	}
	defer os.RemoveAll(tempDir)

	videoPath := filepath.Join(tempDir, "video."+mimeToExt(videoF.MimeType))
	if err := d.downloadStream(ctx, video, videoF, videoPath); err != nil {
		return "", false, err
	}
	audioPath := filepath.Join(tempDir, "audio."+mimeToExt(audioF.MimeType))
	if err := d.downloadStream(ctx, video, audioF, audioPath); err != nil {
		return "", false, err
	}

	ui.PrintInfo("Merging video and audio streams")
	if err := ffmpeg.Mux(d.cfg.FfmpegNameStr, videoPath, audioPath, outPath, true); err != nil {
		return "", false, fmt.Errorf("merge failed: %w", err)
	}
	if secs, err := ffmpeg.GetDuration(d.cfg.FfmpegNameStr, outPath); err == nil {
		ui.PrintInfo(fmt.Sprintf("Merged output duration: %ds", secs))
	}

	if err := d.handleSubtitles(ctx, video, outPath); err != nil {
		return "", false, err
	}
	ui.PrintSuccess(fmt.Sprintf("Saved %s", filepath.Base(outPath)))
	return outPath, false, nil
}

func (d *Downloader) handleSubtitles(ctx context.Context, video *youtube.Video, outPath string) error {
	if !d.cfg.Subtitles {
		return nil
	}
	return d.fetchAndAttachSubtitles(ctx, video, outPath, d.cfg.EmbedSubs)
}

// handleSubtitleSidecars fetches subtitles without embedding, for outputs
// that cannot carry subtitle streams.
func (d *Downloader) handleSubtitleSidecars(ctx context.Context, video *youtube.Video, outPath string) error {
	if !d.cfg.Subtitles {
		return nil
	}
	return d.fetchAndAttachSubtitles(ctx, video, outPath, false)
}

func (d *Downloader) outputPath(video *youtube.Video, ext string) string {
	return filepath.Join(d.cfg.OutputDir, helpers.Sanitise(video.Title)+"."+ext)
}

// skipExisting reports whether an existing output file should be kept.
func (d *Downloader) skipExisting(outPath string) (bool, error) {
	exists, err := helpers.FileExists(outPath)
	if err != nil {
		return false, model.WrapCategory(model.CategoryFilesystem, err)
	}
	if exists && !d.cfg.Overwrite {
		ui.PrintWarning(fmt.Sprintf("Already exists, skipping: %s", filepath.Base(outPath)))
		return true, nil
	}
	return false, nil
}

// downloadStream writes one stream to destPath, rendering progress while it
// runs. A 403 from the CDN is retried once with the content length cleared,
// making the library issue a single un-chunked request, which resolves the
// throttled-URL case.
func (d *Downloader) downloadStream(ctx context.Context, video *youtube.Video, format *youtube.Format, destPath string) error {
	if err := helpers.MakeDirs(filepath.Dir(destPath)); err != nil {
		return model.WrapCategory(model.CategoryFilesystem, err)
	}

	err := d.streamToFile(ctx, video, format, destPath)
	if err != nil && isUnexpectedStatus(err, http.StatusForbidden) {
		ui.PrintWarning("Got HTTP 403 from media server, retrying with a single un-chunked request")
		retryFormat := *format
		retryFormat.ContentLength = 0
		err = d.streamToFile(ctx, video, &retryFormat, destPath)
	}
	if err != nil {
		os.Remove(destPath)
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if model.IsCategorized(err) {
			return err
		}
		return model.WrapCategory(model.CategoryNetwork,
			fmt.Errorf("downloading %s: %w", filepath.Base(destPath), err))
	}
	return nil
}

func (d *Downloader) streamToFile(ctx context.Context, video *youtube.Video, format *youtube.Format, destPath string) error {
	stream, size, err := d.client.GetStreamContext(ctx, video, format)
	if err != nil {
		return err
	}
	defer stream.Close()

	f, err := os.Create(destPath)
	if err != nil {
		return model.WrapCategory(model.CategoryFilesystem, err)
	}
	defer f.Close()

	if d.cfg.MaxFilesize > 0 && size > d.cfg.MaxFilesize {
		return model.WrapCategory(model.CategoryGeneral,
			fmt.Errorf("%w: stream size %s exceeds --max-filesize",
				model.ErrNoMatchingFormat, humanize.Bytes(uint64(size))))
	}

	var dst io.Writer = f
	var counter *ui.WriteCounter
	if d.cfg.ShowProgress {
		counter = ui.NewWriteCounter(filepath.Base(destPath), size)
		dst = io.MultiWriter(f, counter)
	}

	_, err = io.Copy(dst, &contextReader{ctx: ctx, r: stream})
	if counter != nil {
		counter.Finish()
	}
	return err
}

// contextReader aborts a copy when the context is cancelled, since the
// underlying stream reader does not always notice cancellation mid-read.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (cr *contextReader) Read(p []byte) (int, error) {
	if err := cr.ctx.Err(); err != nil {
		return 0, err
	}
	return cr.r.Read(p)
}
