package download

import (
	"errors"
	"testing"

	"github.com/kkdai/youtube/v2"

	"github.com/hamza1886/youtube-download-tool/internal/model"
)

func testVideo() *youtube.Video {
	return &youtube.Video{
		ID:    "dQw4w9WgXcQ",
		Title: "Test Video",
		Formats: []youtube.Format{
			{ItagNo: 18, MimeType: `video/mp4; codecs="avc1.42001E, mp4a.40.2"`,
				Width: 640, Height: 360, AudioChannels: 2, Bitrate: 500_000, ContentLength: 10_000_000},
			{ItagNo: 22, MimeType: `video/mp4; codecs="avc1.64001F, mp4a.40.2"`,
				Width: 1280, Height: 720, AudioChannels: 2, Bitrate: 2_000_000, ContentLength: 40_000_000},
			{ItagNo: 137, MimeType: `video/mp4; codecs="avc1.640028"`,
				Width: 1920, Height: 1080, Bitrate: 4_000_000, ContentLength: 80_000_000},
			{ItagNo: 248, MimeType: `video/webm; codecs="vp9"`,
				Width: 1920, Height: 1080, Bitrate: 3_500_000, ContentLength: 70_000_000},
			{ItagNo: 140, MimeType: `audio/mp4; codecs="mp4a.40.2"`,
				AudioChannels: 2, Bitrate: 128_000, ContentLength: 3_000_000},
			{ItagNo: 251, MimeType: `audio/webm; codecs="opus"`,
				AudioChannels: 2, Bitrate: 160_000, ContentLength: 4_000_000},
		},
	}
}

func TestSelectFormat(t *testing.T) {
	tests := []struct {
		name     string
		cfg      model.Config
		wantItag int
	}{
		{"best progressive by default", model.Config{}, 22},
		{"audio only picks highest bitrate", model.Config{AudioOnly: true}, 251},
		{"video only picks highest resolution", model.Config{VideoOnly: true}, 137},
		{"itag selector", model.Config{Format: "18"}, 18},
		{"extension selector", model.Config{Format: "mp4"}, 22},
		{"audio extension selector", model.Config{AudioOnly: true, Format: "m4a"}, 140},
		{"max filesize filters large formats", model.Config{MaxFilesize: 15_000_000}, 18},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, err := SelectFormat(testVideo(), &tt.cfg)
			if err != nil {
				t.Fatalf("SelectFormat: %v", err)
			}
			if format.ItagNo != tt.wantItag {
				t.Errorf("got itag %d, want %d", format.ItagNo, tt.wantItag)
			}
		})
	}
}

func TestSelectFormatNoMatch(t *testing.T) {
	tests := []struct {
		name string
		cfg  model.Config
	}{
		{"unknown itag", model.Config{Format: "999"}},
		{"unknown extension", model.Config{Format: "avi"}},
		{"filesize excludes everything", model.Config{MaxFilesize: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := SelectFormat(testVideo(), &tt.cfg)
			if !errors.Is(err, model.ErrNoMatchingFormat) {
				t.Fatalf("got %v, want ErrNoMatchingFormat", err)
			}
			if model.ExitCode(err) != model.ExitGeneralError {
				t.Errorf("exit code = %d, want %d", model.ExitCode(err), model.ExitGeneralError)
			}
		})
	}
}

func TestSelectMergeFormats(t *testing.T) {
	videoF, audioF, err := SelectMergeFormats(testVideo(), &model.Config{Merge: true})
	if err != nil {
		t.Fatalf("SelectMergeFormats: %v", err)
	}
	if videoF.ItagNo != 137 {
		t.Errorf("video itag = %d, want 137", videoF.ItagNo)
	}
	if audioF.ItagNo != 251 {
		t.Errorf("audio itag = %d, want 251", audioF.ItagNo)
	}
}

func TestSelectMergeFormatsRespectsVideoSelector(t *testing.T) {
	videoF, audioF, err := SelectMergeFormats(testVideo(), &model.Config{Merge: true, Format: "webm"})
	if err != nil {
		t.Fatalf("SelectMergeFormats: %v", err)
	}
	if videoF.ItagNo != 248 {
		t.Errorf("video itag = %d, want 248", videoF.ItagNo)
	}
	// Audio still picks the best track regardless of the video selector.
	if audioF.ItagNo != 251 {
		t.Errorf("audio itag = %d, want 251", audioF.ItagNo)
	}
}

func TestSelectMergeFormatsMissingStreams(t *testing.T) {
	video := &youtube.Video{Formats: []youtube.Format{
		{ItagNo: 18, MimeType: "video/mp4", Width: 640, Height: 360, AudioChannels: 2},
	}}
	_, _, err := SelectMergeFormats(video, &model.Config{Merge: true})
	if !errors.Is(err, model.ErrNoMatchingFormat) {
		t.Fatalf("got %v, want ErrNoMatchingFormat", err)
	}
}

func TestMimeToExt(t *testing.T) {
	tests := []struct {
		mime string
		want string
	}{
		{`video/mp4; codecs="avc1.42001E"`, "mp4"},
		{`video/webm; codecs="vp9"`, "webm"},
		{"video/3gpp", "3gp"},
		{`audio/mp4; codecs="mp4a.40.2"`, "m4a"},
		{`audio/webm; codecs="opus"`, "opus"},
		{"application/x-mpegURL", "x-mpegURL"},
		{"nonsense", "bin"},
	}
	for _, tt := range tests {
		if got := mimeToExt(tt.mime); got != tt.want {
			t.Errorf("mimeToExt(%q) = %q, want %q", tt.mime, got, tt.want)
		}
	}
}

func TestFormatMatches(t *testing.T) {
	f := &youtube.Format{ItagNo: 22, MimeType: "video/mp4"}
	tests := []struct {
		desired string
		want    bool
	}{
		{"", true},
		{"22", true},
		{"18", false},
		{"mp4", true},
		{"MP4", true},
		{"webm", false},
	}
	for _, tt := range tests {
		if got := formatMatches(f, tt.desired); got != tt.want {
			t.Errorf("formatMatches(%q) = %v, want %v", tt.desired, got, tt.want)
		}
	}
}
