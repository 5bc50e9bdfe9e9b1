package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"time"
)

const patreonPostFields = "id,url,title,teaser_text,content,image,thumbnail_url,published_at"

// PatreonAdapter fetches recent campaign posts from the membership-post API.
type PatreonAdapter struct {
	client          *Client
	apiURL          string
	campaignID      string
	authorName      string
	authorAvatarURL string
}

func NewPatreonAdapter(client *Client, apiURL, campaignID, authorName, authorAvatarURL string) *PatreonAdapter {
	return &PatreonAdapter{
		client:          client,
		apiURL:          apiURL,
		campaignID:      campaignID,
		authorName:      authorName,
		authorAvatarURL: authorAvatarURL,
	}
}

type patreonMedia struct {
	ThumbURL string `json:"thumb_url"`
}

type patreonEntry struct {
	ID         string `json:"id"`
	Attributes struct {
		URL         string        `json:"url"`
		Title       string        `json:"title"`
		TeaserText  *string       `json:"teaser_text"`
		PublishedAt time.Time     `json:"published_at"`
		Image       *patreonMedia `json:"image"`
	} `json:"attributes"`
	Relationships struct {
		Images struct {
			Data []struct {
				ID   string `json:"id"`
				Type string `json:"type"`
			} `json:"data"`
		} `json:"images"`
	} `json:"relationships"`
}

type patreonIncluded struct {
	ID         string `json:"id"`
	Type       string `json:"type"`
	Attributes struct {
		ImageURLs struct {
			Thumbnail string `json:"thumbnail"`
			Default   string `json:"default"`
		} `json:"image_urls"`
	} `json:"attributes"`
}

type patreonResponse struct {
	Data     []patreonEntry    `json:"data"`
	Included []patreonIncluded `json:"included"`
}

// FetchRecent issues one paged request with sideloaded media resources and
// returns all entries that pass validation. Invalid entries are logged and
// skipped without failing the batch.
func (a *PatreonAdapter) FetchRecent(ctx context.Context, limit int) ([]CampaignPost, error) {
	params := url.Values{}
	params.Set("filter[campaign_id]", a.campaignID)
	params.Set("filter[is_draft]", "false")
	params.Set("page[size]", strconv.Itoa(limit))
	params.Set("fields[post]", patreonPostFields)
	params.Set("include", "images")

	data, err := a.client.Get(ctx, a.apiURL+"?"+params.Encode())
	if err != nil {
		return nil, fmt.Errorf("failed to fetch patreon posts: %w", err)
	}

	var resp patreonResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode patreon response: %w", err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("patreon response has no post list")
	}

	// Sideloaded media first, so every entry's optional image resolves
	// through one lookup instead of per-entry searches.
	mediaByID := make(map[string]patreonIncluded, len(resp.Included))
	for _, inc := range resp.Included {
		if inc.Type == "media" && inc.ID != "" {
			mediaByID[inc.ID] = inc
		}
	}

	posts := make([]CampaignPost, 0, len(resp.Data))
	for _, entry := range resp.Data {
		cp, err := a.decodeEntry(entry, mediaByID)
		if err != nil {
			slog.Warn("Skipping invalid patreon entry", "id", entry.ID, "error", err)
			continue
		}
		posts = append(posts, cp)
	}

	return posts, nil
}

func (a *PatreonAdapter) decodeEntry(entry patreonEntry, mediaByID map[string]patreonIncluded) (CampaignPost, error) {
	if entry.ID == "" {
		return CampaignPost{}, fmt.Errorf("missing id")
	}
	if entry.Attributes.URL == "" {
		return CampaignPost{}, fmt.Errorf("missing url")
	}
	if entry.Attributes.Title == "" {
		return CampaignPost{}, fmt.Errorf("missing title")
	}
	if entry.Attributes.PublishedAt.IsZero() {
		return CampaignPost{}, fmt.Errorf("missing published_at")
	}

	cp := CampaignPost{
		ID:              entry.ID,
		URL:             entry.Attributes.URL,
		PublishedAt:     entry.Attributes.PublishedAt,
		Title:           entry.Attributes.Title,
		AuthorName:      a.authorName,
		AuthorAvatarURL: a.authorAvatarURL,
	}

	if entry.Attributes.TeaserText != nil {
		cp.TeaserText = *entry.Attributes.TeaserText
	}

	if entry.Attributes.Image != nil && entry.Attributes.Image.ThumbURL != "" {
		cp.ImageURL = entry.Attributes.Image.ThumbURL
	} else {
		for _, rel := range entry.Relationships.Images.Data {
			if media, ok := mediaByID[rel.ID]; ok {
				cp.ImageURL = media.Attributes.ImageURLs.Thumbnail
				break
			}
		}
	}

	return cp, nil
}
