package post

import (
	"github.com/tehpwnage/posthub/app/sources"
)

// Normalization maps each source-specific record into the canonical Post
// envelope. The id seed is "<tag>_<native id>", so re-ingesting the same
// external item always produces the same Post id.

func FromYoutube(v sources.Video) Post {
	return Post{
		ID:          ShortID(TagYoutubeVideo + "_" + v.ID),
		URL:         v.URL,
		PublishedAt: v.PublishedAt,
		UpdatedAt:   v.UpdatedAt,
		Author: Author{
			Name:      v.ChannelName,
			AvatarURL: v.ChannelAvatarURL,
		},
		Data: YoutubeVideoData{
			Title:        v.Title,
			Description:  v.Description,
			ThumbnailURL: v.ThumbnailURL,
			Likes:        v.Likes,
			Views:        v.Views,
			Channel: Channel{
				Name:      v.ChannelName,
				AvatarURL: v.ChannelAvatarURL,
			},
		},
	}
}

func FromForum(t sources.Thread) Post {
	return Post{
		ID:          ShortID(TagForumThread + "_" + t.ID),
		URL:         t.URL,
		PublishedAt: t.PublishedAt,
		UpdatedAt:   t.UpdatedAt,
		Author: Author{
			Name:      t.AuthorName,
			AvatarURL: t.AuthorAvatarURL,
		},
		Data: ForumThreadData{
			Title:   t.Title,
			Content: t.Content,
			Author: ForumAuthor{
				UID:       t.AuthorUID,
				Name:      t.AuthorName,
				AvatarURL: t.AuthorAvatarURL,
			},
		},
	}
}

func FromPatreon(cp sources.CampaignPost) Post {
	return Post{
		ID:          ShortID(TagPatreonPost + "_" + cp.ID),
		URL:         cp.URL,
		PublishedAt: cp.PublishedAt,
		// The membership API exposes no separate update timestamp.
		UpdatedAt: cp.PublishedAt,
		Author: Author{
			Name:      cp.AuthorName,
			AvatarURL: cp.AuthorAvatarURL,
		},
		Data: PatreonPostData{
			Title:      cp.Title,
			TeaserText: cp.TeaserText,
			ImageURL:   cp.ImageURL,
			Author: Author{
				Name:      cp.AuthorName,
				AvatarURL: cp.AuthorAvatarURL,
			},
		},
	}
}
