package download

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/grafov/m3u8"
	"github.com/kkdai/youtube/v2"

	"github.com/hamza1886/youtube-download-tool/internal/ui"
)

// Simulate prints what a real run would download without writing any media:
// video metadata, the available formats, subtitle languages, and the HLS
// variant streams for live content.
func (d *Downloader) Simulate(ctx context.Context, video *youtube.Video) error {
	ui.PrintSection(video.Title)
	ui.PrintKeyValue("Uploader", video.Author, ui.ColorReset)
	ui.PrintKeyValue("Duration", video.Duration.String(), ui.ColorReset)
	ui.PrintKeyValue("Video ID", video.ID, ui.ColorReset)

	printFormatsTable(video)
	printCaptionLanguages(video)
	d.printHLSVariants(ctx, video)

	if format, err := SelectFormat(video, d.cfg); err != nil {
		ui.PrintWarning(fmt.Sprintf("Nothing would be downloaded: %v", err))
	} else {
		ui.PrintInfo(fmt.Sprintf("Would download: itag %d (%s, %s)",
			format.ItagNo, mimeToExt(format.MimeType), formatSizeStr(format)))
	}
	return nil
}

func printFormatsTable(video *youtube.Video) {
	ui.PrintSection("Available formats")
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Itag", Width: 6, Align: "right"},
		{Header: "Ext", Width: 5, Align: "left"},
		{Header: "Resolution", Width: 11, Align: "left"},
		{Header: "FPS", Width: 4, Align: "right"},
		{Header: "Size", Width: 10, Align: "right"},
		{Header: "Note", Width: 14, Align: "left"},
	})

	formats := make([]youtube.Format, len(video.Formats))
	copy(formats, video.Formats)
	sort.SliceStable(formats, func(i, j int) bool {
		if formats[i].Height != formats[j].Height {
			return formats[i].Height < formats[j].Height
		}
		return bitrateForFormat(&formats[i]) < bitrateForFormat(&formats[j])
	})

	for i := range formats {
		f := &formats[i]
		table.AddRow(
			fmt.Sprintf("%d", f.ItagNo),
			mimeToExt(f.MimeType),
			formatResolution(f),
			formatFPS(f),
			formatSizeStr(f),
			formatNote(f),
		)
	}
	table.Print()
}

func formatResolution(f *youtube.Format) string {
	if f.QualityLabel != "" {
		return f.QualityLabel
	}
	if f.Width > 0 {
		return fmt.Sprintf("%dx%d", f.Width, f.Height)
	}
	return "audio"
}

func formatFPS(f *youtube.Format) string {
	if f.FPS > 0 {
		return fmt.Sprintf("%d", f.FPS)
	}
	return ""
}

func formatSizeStr(f *youtube.Format) string {
	if f.ContentLength > 0 {
		return humanize.Bytes(uint64(f.ContentLength))
	}
	return "?"
}

func formatNote(f *youtube.Format) string {
	hasAudio := f.AudioChannels > 0
	hasVideo := f.Width > 0 || f.Height > 0
	switch {
	case hasAudio && hasVideo:
		return "video+audio"
	case hasAudio:
		return "audio only"
	default:
		return "video only"
	}
}

func printCaptionLanguages(video *youtube.Video) {
	if len(video.CaptionTracks) == 0 {
		return
	}
	ui.PrintSection("Subtitles")
	var manual, auto []string
	for _, track := range video.CaptionTracks {
		if isAutoCaption(track) {
			auto = append(auto, track.LanguageCode)
		} else {
			manual = append(manual, track.LanguageCode)
		}
	}
	if len(manual) > 0 {
		ui.PrintKeyValue("Languages", strings.Join(manual, ", "), ui.ColorReset)
	}
	if len(auto) > 0 {
		ui.PrintKeyValue("Auto-generated", strings.Join(auto, ", "), ui.ColorReset)
	}
}

// printHLSVariants lists the variant streams of a live broadcast's HLS
// manifest. Failures only warn; the manifest is informational.
func (d *Downloader) printHLSVariants(ctx context.Context, video *youtube.Video) {
	if video.HLSManifestURL == "" {
		return
	}
	body, err := d.fetchURL(ctx, video.HLSManifestURL)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Could not fetch HLS manifest: %v", err))
		return
	}
	playlist, listType, err := m3u8.DecodeFrom(bytes.NewReader(body), true)
	if err != nil {
		ui.PrintWarning(fmt.Sprintf("Could not parse HLS manifest: %v", err))
		return
	}
	if listType != m3u8.MASTER {
		return
	}
	master := playlist.(*m3u8.MasterPlaylist)

	ui.PrintSection("HLS variant streams")
	table := ui.NewTable([]ui.TableColumn{
		{Header: "Resolution", Width: 11, Align: "left"},
		{Header: "Bandwidth", Width: 10, Align: "right"},
		{Header: "Codecs", Width: 24, Align: "left"},
	})
	for _, variant := range master.Variants {
		if variant == nil {
			continue
		}
		table.AddRow(
			variant.Resolution,
			humanize.SI(float64(variant.Bandwidth), "bps"),
			variant.Codecs,
		)
	}
	table.Print()
}
