package sources

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"
)

const forumFeedFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Forum threads</title>
  <entry>
    <id>https://forum.example.com/printthread.php?tid=101</id>
    <title>First Thread</title>
    <link rel="alternate" href="https://forum.example.com/showthread.php?tid=101"/>
    <author>
      <name>&lt;a href="https://forum.example.com/member.php?action=profile&amp;uid=7"&gt;alice&lt;/a&gt;</name>
    </author>
    <published>2024-03-02T10:00:00+00:00</published>
    <updated>2024-03-02T11:00:00+00:00</updated>
    <content type="html">&lt;p&gt;First post body&lt;/p&gt;</content>
  </entry>
  <entry>
    <id>https://forum.example.com/printthread.php?tid=102</id>
    <title>Second Thread</title>
    <link rel="alternate" href="https://forum.example.com/showthread.php?tid=102"/>
    <author>
      <name>&lt;a href="https://forum.example.com/member.php?action=profile&amp;uid=7"&gt;alice&lt;/a&gt;</name>
    </author>
    <published>2024-03-01T10:00:00+00:00</published>
    <updated>2024-03-01T10:00:00+00:00</updated>
    <content type="html">Second post body</content>
  </entry>
  <entry>
    <id>https://forum.example.com/printthread.php?tid=103</id>
    <title>Thread By Plain Author</title>
    <link rel="alternate" href="https://forum.example.com/showthread.php?tid=103"/>
    <author>
      <name>not an anchor</name>
    </author>
    <published>2024-02-28T10:00:00+00:00</published>
    <updated>2024-02-28T10:00:00+00:00</updated>
    <content type="html">Orphaned body</content>
  </entry>
</feed>`

const forumTwoAuthorsFixture = `<?xml version="1.0" encoding="UTF-8"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Forum threads</title>
  <entry>
    <id>https://forum.example.com/printthread.php?tid=201</id>
    <title>Thread By Alice</title>
    <link rel="alternate" href="https://forum.example.com/showthread.php?tid=201"/>
    <author>
      <name>&lt;a href="https://forum.example.com/member.php?action=profile&amp;uid=7"&gt;alice&lt;/a&gt;</name>
    </author>
    <published>2024-03-02T10:00:00+00:00</published>
    <updated>2024-03-02T10:00:00+00:00</updated>
    <content type="html">Alice body</content>
  </entry>
  <entry>
    <id>https://forum.example.com/printthread.php?tid=202</id>
    <title>Thread By Bob</title>
    <link rel="alternate" href="https://forum.example.com/showthread.php?tid=202"/>
    <author>
      <name>&lt;a href="https://forum.example.com/member.php?action=profile&amp;uid=8"&gt;bob&lt;/a&gt;</name>
    </author>
    <published>2024-03-01T10:00:00+00:00</published>
    <updated>2024-03-01T10:00:00+00:00</updated>
    <content type="html">Bob body</content>
  </entry>
</feed>`

type avatarProbeCounter struct {
	mu    sync.Mutex
	heads map[string]int
}

func (c *avatarProbeCounter) record(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.heads == nil {
		c.heads = make(map[string]int)
	}
	c.heads[path]++
}

func (c *avatarProbeCounter) count(path string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.heads[path]
}

func TestForumFetchRecent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/atom+xml")
		w.Write([]byte(forumFeedFixture))
	}))
	defer server.Close()

	adapter := NewForumAdapter(NewClient(5*time.Second, "test-agent"),
		server.URL+"/syndication.php?type=atom1.0",
		"https://forum.example.com/uploads/avatars",
		"https://forum.example.com/images/default_avatar.png",
		false)

	threads, err := adapter.FetchRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	// The entry whose author is not an anchor fragment is dropped; the
	// well-formed entries in the batch still come through.
	if len(threads) != 2 {
		t.Fatalf("Expected 2 threads, got: %d", len(threads))
	}

	first := threads[0]
	if first.ID != "101" {
		t.Errorf("Expected thread id '101', got %q", first.ID)
	}
	if first.URL != "https://forum.example.com/showthread.php?tid=101" {
		t.Errorf("Unexpected url: %q", first.URL)
	}
	if first.AuthorUID != "7" {
		t.Errorf("Expected author uid '7', got %q", first.AuthorUID)
	}
	if first.AuthorName != "alice" {
		t.Errorf("Expected author 'alice', got %q", first.AuthorName)
	}
	if !strings.Contains(first.Content, "First post body") {
		t.Errorf("Expected content to carry the post body, got %q", first.Content)
	}
	if !first.PublishedAt.Equal(time.Date(2024, 3, 2, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("Unexpected published time: %v", first.PublishedAt)
	}

	// Verification disabled: the PNG template URL is derived without probing
	want := "https://forum.example.com/uploads/avatars/avatar_7.png"
	if first.AuthorAvatarURL != want {
		t.Errorf("Expected avatar %q, got %q", want, first.AuthorAvatarURL)
	}
}

func TestForumFetchRecentVerifiesAvatarsOncePerAuthor(t *testing.T) {
	probes := &avatarProbeCounter{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/uploads/avatars/") {
			probes.record(r.URL.Path)
			if strings.HasSuffix(r.URL.Path, ".png") {
				w.WriteHeader(http.StatusOK)
			} else {
				w.WriteHeader(http.StatusNotFound)
			}
			return
		}
		w.Write([]byte(forumFeedFixture))
	}))
	defer server.Close()

	adapter := NewForumAdapter(NewClient(5*time.Second, "test-agent"),
		server.URL+"/syndication.php?type=atom1.0",
		server.URL+"/uploads/avatars",
		"https://forum.example.com/images/default_avatar.png",
		true)

	threads, err := adapter.FetchRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(threads) != 2 {
		t.Fatalf("Expected 2 threads, got: %d", len(threads))
	}

	// Both threads share one author: the JPEG location is probed exactly
	// once, and the resolved PNG is reused for both entries.
	if got := probes.count("/uploads/avatars/avatar_7.jpg"); got != 1 {
		t.Errorf("Expected exactly 1 jpg probe, got %d", got)
	}
	for _, thread := range threads {
		if thread.AuthorAvatarURL != server.URL+"/uploads/avatars/avatar_7.png" {
			t.Errorf("Unexpected avatar url: %q", thread.AuthorAvatarURL)
		}
	}
}

func TestForumFetchRecentSkipsAvatarsPastLimit(t *testing.T) {
	probes := &avatarProbeCounter{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/uploads/avatars/") {
			probes.record(r.URL.Path)
			w.WriteHeader(http.StatusOK)
			return
		}
		w.Write([]byte(forumTwoAuthorsFixture))
	}))
	defer server.Close()

	adapter := NewForumAdapter(NewClient(5*time.Second, "test-agent"),
		server.URL+"/syndication.php?type=atom1.0",
		server.URL+"/uploads/avatars",
		"https://forum.example.com/images/default_avatar.png",
		true)

	threads, err := adapter.FetchRecent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(threads) != 1 || threads[0].AuthorUID != "7" {
		t.Fatalf("Expected only the first author's thread, got %#v", threads)
	}

	// The second author's entry falls past the limit; their avatar is
	// never probed.
	if got := probes.count("/uploads/avatars/avatar_8.jpg"); got != 0 {
		t.Errorf("Expected no probe for the dropped author, got %d", got)
	}
	if got := probes.count("/uploads/avatars/avatar_7.jpg"); got != 1 {
		t.Errorf("Expected one probe for the emitted author, got %d", got)
	}
}

func TestForumFetchRecentFallsBackToDefaultAvatar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.HasPrefix(r.URL.Path, "/uploads/avatars/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte(forumFeedFixture))
	}))
	defer server.Close()

	adapter := NewForumAdapter(NewClient(5*time.Second, "test-agent"),
		server.URL+"/syndication.php?type=atom1.0",
		server.URL+"/uploads/avatars",
		"https://forum.example.com/images/default_avatar.png",
		true)

	threads, err := adapter.FetchRecent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	for _, thread := range threads {
		if thread.AuthorAvatarURL != "https://forum.example.com/images/default_avatar.png" {
			t.Errorf("Expected default avatar, got %q", thread.AuthorAvatarURL)
		}
	}
}

func TestForumFetchRecentLimit(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if limit := r.URL.Query().Get("limit"); limit != "1" {
			t.Errorf("Expected limit=1 in request, got %q", limit)
		}
		w.Write([]byte(forumFeedFixture))
	}))
	defer server.Close()

	adapter := NewForumAdapter(NewClient(5*time.Second, "test-agent"),
		server.URL+"/syndication.php?type=atom1.0",
		"https://forum.example.com/uploads/avatars",
		"https://forum.example.com/images/default_avatar.png",
		false)

	threads, err := adapter.FetchRecent(context.Background(), 1)
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	if len(threads) != 1 {
		t.Errorf("Expected 1 thread, got %d", len(threads))
	}
	if threads[0].ID != "101" {
		t.Errorf("Expected the newest thread first, got %q", threads[0].ID)
	}
}

func TestParseAnchorTag(t *testing.T) {
	href, text, ok := parseAnchorTag(`<a href="https://forum.example.com/member.php?action=profile&uid=42">bob</a>`)
	if !ok {
		t.Fatal("Expected anchor to parse")
	}
	if href != "https://forum.example.com/member.php?action=profile&uid=42" {
		t.Errorf("Unexpected href: %q", href)
	}
	if text != "bob" {
		t.Errorf("Unexpected text: %q", text)
	}

	for _, raw := range []string{"", "plain name", `<a href="x">`, fmt.Sprintf("<span>%s</span>", "bob")} {
		if _, _, ok := parseAnchorTag(raw); ok {
			t.Errorf("Expected %q to be rejected", raw)
		}
	}
}
