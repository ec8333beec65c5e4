// Package ffmpeg invokes the external ffmpeg binary with fixed argument
// templates. All muxing, transcoding and subtitle embedding is performed by
// ffmpeg itself; this package only builds the command lines and reports
// failures with ffmpeg's stderr attached.
package ffmpeg

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"os/exec"
	"path/filepath"
	"regexp"
	"strings"
	"time"
)

const durRegex = `Duration: ([\d:.]+)`

// SubtitleTrack is a subtitle file with its language code, used for
// embedding.
type SubtitleTrack struct {
	Lang string
	Path string
}

// Available reports whether the binary can be executed.
func Available(bin string) bool {
	if bin == "" {
		return false
	}
	cmd := exec.Command(bin, "-version")
	return cmd.Run() == nil
}

func run(bin string, args []string) error {
	var errBuffer bytes.Buffer
	cmd := exec.Command(bin, args...)
	cmd.Stderr = &errBuffer
	err := cmd.Run()
	if err != nil {
		errString := fmt.Sprintf("%s\n%s", err, errBuffer.String())
		return errors.New(errString)
	}
	return nil
}

func overwriteFlag(overwrite bool) string {
	if overwrite {
		return "-y"
	}
	return "-n"
}

// MuxArgs builds the argument list for muxing separate video and audio
// streams into one container without re-encoding.
func MuxArgs(videoPath, audioPath, outPath string, overwrite bool) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", videoPath, "-i", audioPath,
		"-map", "0:v", "-map", "1:a",
		"-c", "copy",
		overwriteFlag(overwrite), outPath,
	}
}

// Mux combines a video-only and an audio-only stream into outPath.
func Mux(bin, videoPath, audioPath, outPath string, overwrite bool) error {
	return run(bin, MuxArgs(videoPath, audioPath, outPath, overwrite))
}

// ExtractAudioArgs builds the argument list for transcoding an input to
// 192k MP3.
func ExtractAudioArgs(inPath, outPath string, overwrite bool) []string {
	return []string{
		"-hide_banner", "-loglevel", "error",
		"-i", inPath,
		"-vn", "-acodec", "libmp3lame", "-b:a", "192k",
		overwriteFlag(overwrite), outPath,
	}
}

// ExtractAudio transcodes the audio of inPath to an MP3 at outPath.
func ExtractAudio(bin, inPath, outPath string, overwrite bool) error {
	return run(bin, ExtractAudioArgs(inPath, outPath, overwrite))
}

// EmbedSubtitlesArgs builds the argument list for embedding subtitle files
// as streams of the video container. Codecs are copied; MP4 output needs
// subtitles converted to mov_text.
func EmbedSubtitlesArgs(videoPath string, subs []SubtitleTrack, outPath string, overwrite bool) []string {
	args := []string{"-hide_banner", "-loglevel", "error", "-i", videoPath}
	for _, sub := range subs {
		args = append(args, "-i", sub.Path)
	}
	args = append(args, "-map", "0:v", "-map", "0:a")
	for i := range subs {
		args = append(args, "-map", fmt.Sprintf("%d:s", i+1))
	}
	for i, sub := range subs {
		args = append(args, fmt.Sprintf("-metadata:s:s:%d", i), "language="+sub.Lang)
	}
	args = append(args, "-c", "copy")
	if strings.EqualFold(filepath.Ext(outPath), ".mp4") {
		args = append(args, "-c:s", "mov_text")
	}
	args = append(args, overwriteFlag(overwrite), outPath)
	return args
}

// EmbedSubtitles writes a copy of videoPath with the subtitle tracks
// embedded to outPath.
func EmbedSubtitles(bin, videoPath string, subs []SubtitleTrack, outPath string, overwrite bool) error {
	if len(subs) == 0 {
		return errors.New("no subtitle tracks to embed")
	}
	return run(bin, EmbedSubtitlesArgs(videoPath, subs, outPath, overwrite))
}

// ExtractDuration extracts the duration string from ffmpeg output.
func ExtractDuration(errStr string) string {
	regex := regexp.MustCompile(durRegex)
	match := regex.FindStringSubmatch(errStr)
	if match != nil {
		return match[1]
	}
	return ""
}

// ParseDuration converts an ffmpeg HH:MM:SS.cc duration to whole seconds.
func ParseDuration(dur string) (int, error) {
	dur = strings.Replace(dur, ":", "h", 1)
	dur = strings.Replace(dur, ":", "m", 1)
	dur = strings.Replace(dur, ".", "s", 1)
	dur += "ms"
	d, err := time.ParseDuration(dur)
	if err != nil {
		return 0, err
	}
	rounded := math.Round(d.Seconds())
	return int(rounded), nil
}

// GetDuration gets the duration of a media file in seconds by probing it
// with ffmpeg.
func GetDuration(bin, path string) (int, error) {
	var errBuffer bytes.Buffer
	args := []string{"-hide_banner", "-i", path}
	cmd := exec.Command(bin, args...)
	cmd.Stderr = &errBuffer
	// Return code's always 1 as we're not providing any output files.
	err := cmd.Run()
	if err == nil {
		return 0, errors.New("expected ffmpeg probe to exit non-zero")
	}
	if err.Error() != "exit status 1" {
		return 0, err
	}
	errStr := errBuffer.String()
	dur := ExtractDuration(errStr)
	if dur == "" {
		errString := fmt.Sprintf("no duration in ffmpeg output\n%s", errStr)
		return 0, errors.New(errString)
	}
	return ParseDuration(dur)
}
