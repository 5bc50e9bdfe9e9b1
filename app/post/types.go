package post

import (
	"encoding/json"
	"fmt"
	"time"
)

// Source tags discriminating the Data variant of a Post.
const (
	TagYoutubeVideo = "youtubeVideo"
	TagForumThread  = "forumThread"
	TagPatreonPost  = "patreonPost"
)

// Data is the closed set of source-specific payloads a Post can carry.
// Exactly one variant per post, discriminated by Tag.
type Data interface {
	Tag() string
}

// Author is the display identity attached to a Post envelope.
type Author struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

// Post is the canonical, store-persisted representation of one piece of
// aggregated content. ID is stable across re-ingestion of the same source item.
type Post struct {
	ID          string    `json:"id"`
	URL         string    `json:"url"`
	PublishedAt time.Time `json:"publishedAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
	Author      Author    `json:"author"`
	Data        Data      `json:"data"`
}

type Channel struct {
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type YoutubeVideoData struct {
	Title        string  `json:"title"`
	Description  string  `json:"description"`
	ThumbnailURL string  `json:"thumbnailUrl"`
	Likes        int64   `json:"likes"`
	Views        int64   `json:"views"`
	Channel      Channel `json:"channel"`
}

func (YoutubeVideoData) Tag() string { return TagYoutubeVideo }

type ForumAuthor struct {
	UID       string `json:"uid"`
	Name      string `json:"name"`
	AvatarURL string `json:"avatarUrl"`
}

type ForumThreadData struct {
	Title   string      `json:"title"`
	Content string      `json:"content"`
	Author  ForumAuthor `json:"author"`
}

func (ForumThreadData) Tag() string { return TagForumThread }

type PatreonPostData struct {
	Title      string `json:"title"`
	TeaserText string `json:"teaserText,omitempty"`
	ImageURL   string `json:"imageUrl,omitempty"`
	Author     Author `json:"author"`
}

func (PatreonPostData) Tag() string { return TagPatreonPost }

// MarshalData encodes a variant together with its discriminating "type" key.
func MarshalData(d Data) ([]byte, error) {
	switch v := d.(type) {
	case YoutubeVideoData:
		return json.Marshal(struct {
			Type string `json:"type"`
			YoutubeVideoData
		}{TagYoutubeVideo, v})
	case ForumThreadData:
		return json.Marshal(struct {
			Type string `json:"type"`
			ForumThreadData
		}{TagForumThread, v})
	case PatreonPostData:
		return json.Marshal(struct {
			Type string `json:"type"`
			PatreonPostData
		}{TagPatreonPost, v})
	default:
		return nil, fmt.Errorf("unknown post data variant: %T", d)
	}
}

// UnmarshalData decodes a variant by dispatching on its "type" key.
// Unknown or missing tags are an error, never silently coerced.
func UnmarshalData(raw []byte) (Data, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("failed to decode post data: %w", err)
	}

	switch probe.Type {
	case TagYoutubeVideo:
		var v YoutubeVideoData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode youtubeVideo data: %w", err)
		}
		return v, nil
	case TagForumThread:
		var v ForumThreadData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode forumThread data: %w", err)
		}
		return v, nil
	case TagPatreonPost:
		var v PatreonPostData
		if err := json.Unmarshal(raw, &v); err != nil {
			return nil, fmt.Errorf("failed to decode patreonPost data: %w", err)
		}
		return v, nil
	default:
		return nil, fmt.Errorf("unknown post data type: %q", probe.Type)
	}
}

// MarshalJSON keeps the wire shape of Data tagged.
func (p Post) MarshalJSON() ([]byte, error) {
	data, err := MarshalData(p.Data)
	if err != nil {
		return nil, err
	}

	return json.Marshal(struct {
		ID          string          `json:"id"`
		URL         string          `json:"url"`
		PublishedAt time.Time       `json:"publishedAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
		Author      Author          `json:"author"`
		Data        json.RawMessage `json:"data"`
	}{p.ID, p.URL, p.PublishedAt, p.UpdatedAt, p.Author, data})
}

func (p *Post) UnmarshalJSON(raw []byte) error {
	var envelope struct {
		ID          string          `json:"id"`
		URL         string          `json:"url"`
		PublishedAt time.Time       `json:"publishedAt"`
		UpdatedAt   time.Time       `json:"updatedAt"`
		Author      Author          `json:"author"`
		Data        json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return err
	}

	data, err := UnmarshalData(envelope.Data)
	if err != nil {
		return err
	}

	p.ID = envelope.ID
	p.URL = envelope.URL
	p.PublishedAt = envelope.PublishedAt
	p.UpdatedAt = envelope.UpdatedAt
	p.Author = envelope.Author
	p.Data = data
	return nil
}
