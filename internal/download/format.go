package download

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/hamza1886/youtube-download-tool/internal/model"
)

// streamKind describes which streams a format must carry to be a candidate.
type streamKind int

const (
	kindProgressive streamKind = iota // audio and video in one stream
	kindAudioOnly
	kindVideoOnly
)

func kindForConfig(cfg *model.Config) streamKind {
	switch {
	case cfg.AudioOnly:
		return kindAudioOnly
	case cfg.VideoOnly:
		return kindVideoOnly
	default:
		return kindProgressive
	}
}

func matchesKind(f *youtube.Format, kind streamKind) bool {
	hasAudio := f.AudioChannels > 0
	hasVideo := f.Width > 0 || f.Height > 0
	switch kind {
	case kindAudioOnly:
		return hasAudio && !hasVideo
	case kindVideoOnly:
		return hasVideo && !hasAudio
	default:
		return hasAudio && hasVideo
	}
}

// formatMatches checks a user format selector against a stream: a numeric
// selector matches the itag, anything else matches the container extension.
func formatMatches(f *youtube.Format, desired string) bool {
	desired = strings.TrimSpace(strings.ToLower(desired))
	if desired == "" {
		return true
	}
	if itag, err := strconv.Atoi(desired); err == nil {
		return f.ItagNo == itag
	}
	return mimeToExt(f.MimeType) == desired
}

func bitrateForFormat(f *youtube.Format) int {
	if f.Bitrate > 0 {
		return f.Bitrate
	}
	if f.AverageBitrate > 0 {
		return f.AverageBitrate
	}
	return 0
}

func betterVideoFormat(candidate, current *youtube.Format) bool {
	if candidate.Height != current.Height {
		return candidate.Height > current.Height
	}
	return bitrateForFormat(candidate) > bitrateForFormat(current)
}

// selectCandidates filters a video's formats by stream kind, user format
// selector, and max filesize.
func selectCandidates(video *youtube.Video, kind streamKind, cfg *model.Config) ([]*youtube.Format, bool) {
	var candidates []*youtube.Format
	sizeFiltered := false
	for i := range video.Formats {
		f := &video.Formats[i]
		if !matchesKind(f, kind) {
			continue
		}
		if !formatMatches(f, cfg.Format) {
			continue
		}
		if cfg.MaxFilesize > 0 && f.ContentLength > cfg.MaxFilesize {
			sizeFiltered = true
			continue
		}
		candidates = append(candidates, f)
	}
	return candidates, sizeFiltered
}

func pickBest(candidates []*youtube.Format, kind streamKind) *youtube.Format {
	var best *youtube.Format
	for _, f := range candidates {
		if best == nil {
			best = f
			continue
		}
		if kind == kindAudioOnly {
			if bitrateForFormat(f) > bitrateForFormat(best) {
				best = f
			}
			continue
		}
		if betterVideoFormat(f, best) {
			best = f
		}
	}
	return best
}

// SelectFormat picks the stream to download for the configured mode.
func SelectFormat(video *youtube.Video, cfg *model.Config) (*youtube.Format, error) {
	kind := kindForConfig(cfg)
	candidates, sizeFiltered := selectCandidates(video, kind, cfg)
	if best := pickBest(candidates, kind); best != nil {
		return best, nil
	}

	reason := "no progressive (audio+video) formats available"
	switch {
	case sizeFiltered:
		reason = "all matching formats exceed --max-filesize"
	case kind == kindAudioOnly:
		reason = "no audio-only formats available"
	case kind == kindVideoOnly:
		reason = "no video-only formats available"
	case cfg.Format != "":
		reason = fmt.Sprintf("no formats available for requested format %s (use --simulate to list formats)", cfg.Format)
	}
	return nil, model.WrapCategory(model.CategoryGeneral,
		fmt.Errorf("%w: %s", model.ErrNoMatchingFormat, reason))
}

// SelectMergeFormats picks the best video-only and best audio-only streams
// for merge mode. The transcoder muxes them afterwards.
func SelectMergeFormats(video *youtube.Video, cfg *model.Config) (videoF, audioF *youtube.Format, err error) {
	videoCands, videoSizeFiltered := selectCandidates(video, kindVideoOnly, cfg)
	videoF = pickBest(videoCands, kindVideoOnly)

	// The format selector applies to the video stream; audio always takes
	// the best available track.
	audioCfg := *cfg
	audioCfg.Format = ""
	audioCands, _ := selectCandidates(video, kindAudioOnly, &audioCfg)
	audioF = pickBest(audioCands, kindAudioOnly)

	if videoF == nil || audioF == nil {
		reason := "no separate video and audio streams available for merging"
		if videoSizeFiltered {
			reason = "all matching video streams exceed --max-filesize"
		}
		return nil, nil, model.WrapCategory(model.CategoryGeneral,
			fmt.Errorf("%w: %s", model.ErrNoMatchingFormat, reason))
	}
	return videoF, audioF, nil
}

// mimeToExt maps a stream MIME type to the file extension used on disk
// and accepted by the --format selector.
func mimeToExt(mime string) string {
	if i := strings.Index(mime, ";"); i >= 0 {
		mime = mime[:i]
	}
	switch mime {
	case "video/mp4":
		return "mp4"
	case "video/webm":
		return "webm"
	case "video/3gpp":
		return "3gp"
	case "audio/mp4":
		return "m4a"
	case "audio/webm":
		return "opus"
	}
	if parts := strings.Split(mime, "/"); len(parts) == 2 && parts[1] != "" {
		return parts[1]
	}
	return "bin"
}
