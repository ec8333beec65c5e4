package download

import (
	"context"
	"encoding/xml"
	"errors"
	"fmt"
	"html"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/kkdai/youtube/v2"

	"github.com/hamza1886/youtube-download-tool/internal/ffmpeg"
	"github.com/hamza1886/youtube-download-tool/internal/helpers"
	"github.com/hamza1886/youtube-download-tool/internal/model"
	"github.com/hamza1886/youtube-download-tool/internal/ui"
)

// selectCaptionTracks picks the caption tracks matching the requested
// language. "all" selects every track. A bare language code also matches
// regional variants, so "en" picks up "en-US". Manually authored tracks win
// over auto-generated ones for the same language.
func selectCaptionTracks(video *youtube.Video, subLang string) []youtube.CaptionTrack {
	subLang = strings.ToLower(subLang)
	byLang := make(map[string]youtube.CaptionTrack)
	var order []string
	for _, track := range video.CaptionTracks {
		code := strings.ToLower(track.LanguageCode)
		if subLang != "all" && code != subLang && !strings.HasPrefix(code, subLang+"-") {
			continue
		}
		existing, seen := byLang[code]
		if seen && !isAutoCaption(existing) {
			continue
		}
		if !seen {
			order = append(order, code)
		}
		byLang[code] = track
	}

	tracks := make([]youtube.CaptionTrack, 0, len(order))
	for _, code := range order {
		tracks = append(tracks, byLang[code])
	}
	return tracks
}

func isAutoCaption(track youtube.CaptionTrack) bool {
	return track.Kind == "asr"
}

// fetchAndAttachSubtitles downloads the matching caption tracks next to the
// output file and, when embed is set, folds them into the container and
// removes the standalone files. Audio-only runs pass embed=false and keep
// the sidecar files. A missing subtitle language is a warning, not a
// failure.
func (d *Downloader) fetchAndAttachSubtitles(ctx context.Context, video *youtube.Video, outPath string, embed bool) error {
	tracks := selectCaptionTracks(video, d.cfg.SubLang)
	if len(tracks) == 0 {
		ui.PrintWarning(fmt.Sprintf("%v for language %q", model.ErrNoSubtitles, d.cfg.SubLang))
		return nil
	}

	var subs []ffmpeg.SubtitleTrack
	base := strings.TrimSuffix(outPath, filepath.Ext(outPath))
	for _, track := range tracks {
		subPath := fmt.Sprintf("%s.%s.%s", base, track.LanguageCode, d.cfg.SubFormat)
		if !d.cfg.Overwrite {
			next, err := helpers.NextAvailablePath(subPath)
			if err != nil {
				return model.WrapCategory(model.CategoryFilesystem, err)
			}
			subPath = next
		}
		if err := d.fetchCaptionTrack(ctx, track, subPath); err != nil {
			ui.PrintWarning(fmt.Sprintf("Subtitle download failed for %s: %v", track.LanguageCode, err))
			continue
		}
		ui.PrintInfo(fmt.Sprintf("Saved subtitles: %s", filepath.Base(subPath)))
		subs = append(subs, ffmpeg.SubtitleTrack{Lang: track.LanguageCode, Path: subPath})
	}
	if len(subs) == 0 {
		return nil
	}

	if !embed {
		return nil
	}
	if !d.cfg.FfmpegAvailable {
		ui.PrintWarning("ffmpeg not available, keeping subtitles as separate files")
		return nil
	}
	return d.embedSubtitles(outPath, subs)
}

func (d *Downloader) embedSubtitles(videoPath string, subs []ffmpeg.SubtitleTrack) error {
	ui.PrintInfo("Embedding subtitles")
	ext := filepath.Ext(videoPath)
	embedPath := strings.TrimSuffix(videoPath, ext) + ".subbed" + ext
	if err := ffmpeg.EmbedSubtitles(d.cfg.FfmpegNameStr, videoPath, subs, embedPath, true); err != nil {
		os.Remove(embedPath)
		return fmt.Errorf("embedding subtitles: %w", err)
	}
	if err := os.Rename(embedPath, videoPath); err != nil {
		return model.WrapCategory(model.CategoryFilesystem, err)
	}
	for _, sub := range subs {
		os.Remove(sub.Path)
	}
	return nil
}

// fetchCaptionTrack writes one caption track to subPath in the configured
// subtitle format. VTT comes straight from the caption endpoint; SRT is
// converted from the endpoint's timedtext XML.
func (d *Downloader) fetchCaptionTrack(ctx context.Context, track youtube.CaptionTrack, subPath string) error {
	captionURL := track.BaseURL
	if d.cfg.SubFormat == model.SubFormatVTT {
		captionURL += "&fmt=vtt"
	}

	body, err := d.fetchURL(ctx, captionURL)
	if err != nil {
		return err
	}

	data := body
	if d.cfg.SubFormat == model.SubFormatSRT {
		srt, err := timedTextToSRT(body)
		if err != nil {
			return fmt.Errorf("converting timedtext to SRT: %w", err)
		}
		data = []byte(srt)
	}
	if err := os.WriteFile(subPath, data, 0644); err != nil {
		return model.WrapCategory(model.CategoryFilesystem, err)
	}
	return nil
}

func (d *Downloader) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := d.client.HTTPClient.Do(req)
	if err != nil {
		return nil, model.WrapCategory(model.CategoryNetwork, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, model.WrapCategory(model.CategoryNetwork,
			fmt.Errorf("caption endpoint returned HTTP %d", resp.StatusCode))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, model.WrapCategory(model.CategoryNetwork, err)
	}
	return body, nil
}

// timedText mirrors the caption endpoint's XML payload.
type timedText struct {
	XMLName xml.Name       `xml:"transcript"`
	Texts   []timedTextCue `xml:"text"`
}

type timedTextCue struct {
	Start    float64 `xml:"start,attr"`
	Duration float64 `xml:"dur,attr"`
	Content  string  `xml:",chardata"`
}

// timedTextToSRT converts timedtext XML into an SRT document. Cues without
// text are dropped and entities are unescaped, the endpoint double-escapes
// them inside the XML character data.
func timedTextToSRT(data []byte) (string, error) {
	var tt timedText
	if err := xml.Unmarshal(data, &tt); err != nil {
		return "", err
	}
	if len(tt.Texts) == 0 {
		return "", errors.New("no cues in timedtext document")
	}

	var b strings.Builder
	cueNum := 1
	for _, cue := range tt.Texts {
		content := strings.TrimSpace(html.UnescapeString(cue.Content))
		if content == "" {
			continue
		}
		fmt.Fprintf(&b, "%d\n%s --> %s\n%s\n\n",
			cueNum,
			formatSRTTimestamp(cue.Start),
			formatSRTTimestamp(cue.Start+cue.Duration),
			content)
		cueNum++
	}
	if cueNum == 1 {
		return "", errors.New("no cues in timedtext document")
	}
	return b.String(), nil
}

func formatSRTTimestamp(seconds float64) string {
	if seconds < 0 {
		seconds = 0
	}
	millis := int64(seconds*1000 + 0.5)
	h := millis / 3600000
	m := millis % 3600000 / 60000
	s := millis % 60000 / 1000
	ms := millis % 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}
