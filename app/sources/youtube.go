package sources

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/mmcdole/gofeed"
	ext "github.com/mmcdole/gofeed/extensions"
)

const youtubeFeedURL = "https://www.youtube.com/feeds/videos.xml?channel_id=%s"

// YoutubeAdapter fetches a channel's Atom feed and decodes its video entries.
type YoutubeAdapter struct {
	client           *Client
	feedURL          string
	channelAvatarURL string
	parser           *gofeed.Parser
}

func NewYoutubeAdapter(client *Client, channelID, channelAvatarURL string) *YoutubeAdapter {
	return &YoutubeAdapter{
		client:           client,
		feedURL:          fmt.Sprintf(youtubeFeedURL, channelID),
		channelAvatarURL: channelAvatarURL,
		parser:           gofeed.NewParser(),
	}
}

// FetchRecent returns up to limit videos from the channel feed. Entries
// missing required fields are skipped; the call fails only when the fetch
// itself fails or the response is not a parseable feed.
func (a *YoutubeAdapter) FetchRecent(ctx context.Context, limit int) ([]Video, error) {
	data, err := a.client.Get(ctx, a.feedURL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch youtube feed: %w", err)
	}

	feed, err := a.parser.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to parse youtube feed: %w", err)
	}

	videos := make([]Video, 0, len(feed.Items))
	for _, item := range feed.Items {
		if len(videos) >= limit {
			break
		}

		video, ok := a.decodeEntry(item)
		if !ok {
			slog.Debug("Skipping malformed youtube entry", "title", item.Title)
			continue
		}
		videos = append(videos, video)
	}

	return videos, nil
}

func (a *YoutubeAdapter) decodeEntry(item *gofeed.Item) (Video, bool) {
	videoID := extensionValue(item, "yt", "videoId")
	if videoID == "" || item.Title == "" || item.Link == "" || item.PublishedParsed == nil {
		return Video{}, false
	}

	video := Video{
		ID:               videoID,
		URL:              item.Link,
		PublishedAt:      *item.PublishedParsed,
		Title:            item.Title,
		ChannelAvatarURL: a.channelAvatarURL,
	}

	if item.UpdatedParsed != nil {
		video.UpdatedAt = *item.UpdatedParsed
	} else {
		video.UpdatedAt = video.PublishedAt
	}

	if len(item.Authors) > 0 && item.Authors[0] != nil {
		video.ChannelName = item.Authors[0].Name
	}

	group := firstExtension(item, "media", "group")
	if group == nil {
		return Video{}, false
	}

	if thumb := firstChild(group, "thumbnail"); thumb != nil {
		// The feed advertises the low-resolution variant; the full-size
		// image lives at the same path under a different name.
		video.ThumbnailURL = strings.Replace(thumb.Attrs["url"], "hqdefault", "maxresdefault", 1)
	}
	if desc := firstChild(group, "description"); desc != nil {
		video.Description = desc.Value
	}

	if community := firstChild(group, "community"); community != nil {
		if rating := firstChild(community, "starRating"); rating != nil {
			video.Likes = parseCount(rating.Attrs["count"])
		}
		if stats := firstChild(community, "statistics"); stats != nil {
			video.Views = parseCount(stats.Attrs["views"])
		}
	}

	return video, true
}

func extensionValue(item *gofeed.Item, prefix, name string) string {
	e := firstExtension(item, prefix, name)
	if e == nil {
		return ""
	}
	return e.Value
}

func firstExtension(item *gofeed.Item, prefix, name string) *ext.Extension {
	values, ok := item.Extensions[prefix][name]
	if !ok || len(values) == 0 {
		return nil
	}
	return &values[0]
}

func firstChild(e *ext.Extension, name string) *ext.Extension {
	children, ok := e.Children[name]
	if !ok || len(children) == 0 {
		return nil
	}
	return &children[0]
}

func parseCount(s string) int64 {
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		return 0
	}
	return n
}
