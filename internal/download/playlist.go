package download

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/kkdai/youtube/v2"
)

// IsPlaylistURL reports whether a URL refers to a playlist rather than a
// single video. Watch URLs that merely carry a list parameter alongside a
// video ID are treated as single videos, matching what users expect when
// they paste a link from a playing video.
func IsPlaylistURL(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	if strings.HasPrefix(u.Path, "/playlist") {
		return true
	}
	q := u.Query()
	return q.Get("list") != "" && q.Get("v") == ""
}

// fetchPlaylistVideos resolves every entry of a playlist into a full video
// description. Entries that fail to resolve are returned as per-entry errors
// so the caller can keep going with the rest.
func (d *Downloader) fetchPlaylistVideos(ctx context.Context, rawURL string) (*youtube.Playlist, []*youtube.Video, []error, error) {
	playlist, err := d.client.GetPlaylistContext(ctx, rawURL)
	if err != nil {
		return nil, nil, nil, wrapFetchError(err, rawURL)
	}

	videos := make([]*youtube.Video, 0, len(playlist.Videos))
	var entryErrs []error
	for _, entry := range playlist.Videos {
		video, err := d.client.VideoFromPlaylistEntryContext(ctx, entry)
		if err != nil {
			entryErrs = append(entryErrs, fmt.Errorf("playlist entry %q: %w", entry.Title, wrapFetchError(err, entry.ID)))
			continue
		}
		videos = append(videos, video)
	}
	return playlist, videos, entryErrs, nil
}
