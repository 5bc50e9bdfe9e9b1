package sources

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

const youtubeFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns:yt="http://www.youtube.com/xml/schemas/2015"
      xmlns:media="http://search.yahoo.com/mrss/"
      xmlns="http://www.w3.org/2005/Atom">
  <title>Channel uploads</title>
  <entry>
    <id>yt:video:abc123</id>
    <yt:videoId>abc123</yt:videoId>
    <title>First Video</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=abc123"/>
    <author><name>Test Channel</name></author>
    <published>2024-01-02T00:00:00+00:00</published>
    <updated>2024-01-02T01:00:00+00:00</updated>
    <media:group>
      <media:title>First Video</media:title>
      <media:thumbnail url="https://i.ytimg.com/vi/abc123/hqdefault.jpg" width="480" height="360"/>
      <media:description>First description</media:description>
      <media:community>
        <media:starRating count="42" average="5.00" min="1" max="5"/>
        <media:statistics views="1000"/>
      </media:community>
    </media:group>
  </entry>
  <entry>
    <id>yt:video:missing</id>
    <title>Entry Without Video Id</title>
    <link rel="alternate" href="https://www.youtube.com/watch?v=missing"/>
    <published>2024-01-01T00:00:00+00:00</published>
    <updated>2024-01-01T00:00:00+00:00</updated>
    <media:group>
      <media:thumbnail url="https://i.ytimg.com/vi/missing/hqdefault.jpg"/>
      <media:description>Broken entry</media:description>
    </media:group>
  </entry>
</feed>`

func newTestYoutubeAdapter(serverURL string) *YoutubeAdapter {
	adapter := NewYoutubeAdapter(NewClient(5*time.Second, "test-agent"), "UCtest", "https://example.com/channel.png")
	adapter.feedURL = serverURL
	return adapter
}

func TestYoutubeFetchRecent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(youtubeFeedFixture))
	}))
	defer server.Close()

	adapter := newTestYoutubeAdapter(server.URL)

	videos, err := adapter.FetchRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The entry without a video id is skipped, not fatal
	if len(videos) != 1 {
		t.Fatalf("Expected 1 video, got: %d", len(videos))
	}

	video := videos[0]
	if video.ID != "abc123" {
		t.Errorf("Expected id 'abc123', got %q", video.ID)
	}
	if video.URL != "https://www.youtube.com/watch?v=abc123" {
		t.Errorf("Unexpected url: %q", video.URL)
	}
	if video.Title != "First Video" {
		t.Errorf("Expected title 'First Video', got %q", video.Title)
	}
	if video.Description != "First description" {
		t.Errorf("Expected description 'First description', got %q", video.Description)
	}
	if video.ThumbnailURL != "https://i.ytimg.com/vi/abc123/maxresdefault.jpg" {
		t.Errorf("Thumbnail should be rewritten to maxresdefault, got %q", video.ThumbnailURL)
	}
	if video.Likes != 42 {
		t.Errorf("Expected 42 likes, got %d", video.Likes)
	}
	if video.Views != 1000 {
		t.Errorf("Expected 1000 views, got %d", video.Views)
	}
	if video.ChannelName != "Test Channel" {
		t.Errorf("Expected channel 'Test Channel', got %q", video.ChannelName)
	}
	if !video.PublishedAt.Equal(time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected published time: %v", video.PublishedAt)
	}
}

func TestYoutubeFetchRecentLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(youtubeFeedFixture))
	}))
	defer server.Close()

	adapter := newTestYoutubeAdapter(server.URL)

	videos, err := adapter.FetchRecent(context.Background(), 0)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(videos) != 0 {
		t.Errorf("Expected no videos with limit 0, got %d", len(videos))
	}
}

func TestYoutubeFetchRecentServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	adapter := newTestYoutubeAdapter(server.URL)

	if _, err := adapter.FetchRecent(context.Background(), 10); err == nil {
		t.Error("A failing upstream must fail the whole fetch")
	}
}

func TestYoutubeFetchRecentUnparseable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("not a feed"))
	}))
	defer server.Close()

	adapter := newTestYoutubeAdapter(server.URL)

	if _, err := adapter.FetchRecent(context.Background(), 10); err == nil {
		t.Error("An unparseable response must fail the whole fetch")
	}
}
