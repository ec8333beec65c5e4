package ui

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
)

// WriteCounter renders download progress as bytes pass through it. Wrap it
// in an io.MultiWriter next to the output file.
type WriteCounter struct {
	Total      int64
	TotalStr   string
	Downloaded int64
	Percentage int
	StartTime  int64
	Label      string
}

// NewWriteCounter creates a progress counter for a stream of the given size.
// A size of 0 means unknown; the bar then only reports the running byte count.
func NewWriteCounter(label string, total int64) *WriteCounter {
	totalStr := "?"
	if total > 0 {
		totalStr = humanize.Bytes(uint64(total))
	}
	return &WriteCounter{
		Total:     total,
		TotalStr:  totalStr,
		StartTime: time.Now().UnixMilli(),
		Label:     label,
	}
}

func (wc *WriteCounter) Write(p []byte) (int, error) {
	var speed int64 = 0
	n := len(p)
	wc.Downloaded += int64(n)
	if wc.Total > 0 {
		percentage := float64(wc.Downloaded) / float64(wc.Total) * float64(100)
		wc.Percentage = int(percentage)
	}
	toDivideBy := time.Now().UnixMilli() - wc.StartTime
	if toDivideBy != 0 {
		speed = wc.Downloaded / toDivideBy * 1000
	}
	RenderProgress(wc.Label, wc.Percentage, humanize.Bytes(uint64(speed)),
		humanize.Bytes(uint64(wc.Downloaded)), wc.TotalStr)
	return n, nil
}

// Finish completes the progress line with a newline.
func (wc *WriteCounter) Finish() {
	fmt.Println()
}
