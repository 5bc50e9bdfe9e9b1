package sources

import (
	"time"
)

// Video is one entry decoded from a YouTube channel feed.
type Video struct {
	ID               string
	URL              string
	PublishedAt      time.Time
	UpdatedAt        time.Time
	Title            string
	Description      string
	ThumbnailURL     string
	Likes            int64
	Views            int64
	ChannelName      string
	ChannelAvatarURL string
}

// Thread is one entry decoded from the forum's syndication feed.
type Thread struct {
	ID              string
	URL             string
	PublishedAt     time.Time
	UpdatedAt       time.Time
	Title           string
	Content         string
	AuthorUID       string
	AuthorName      string
	AuthorAvatarURL string
}

// CampaignPost is one entry decoded from the membership-post API.
type CampaignPost struct {
	ID              string
	URL             string
	PublishedAt     time.Time
	Title           string
	TeaserText      string
	ImageURL        string
	AuthorName      string
	AuthorAvatarURL string
}
