package post

import (
	"fmt"
)

// Validate checks a Post field by field and returns every violation found.
// Used on the store read path to drop corrupt documents instead of failing
// a whole query.
func Validate(p Post) []error {
	var errs []error

	if p.ID == "" {
		errs = append(errs, fmt.Errorf("id is empty"))
	}
	if p.URL == "" {
		errs = append(errs, fmt.Errorf("url is empty"))
	}
	if p.PublishedAt.IsZero() {
		errs = append(errs, fmt.Errorf("publishedAt is not set"))
	}
	if p.UpdatedAt.IsZero() {
		errs = append(errs, fmt.Errorf("updatedAt is not set"))
	}

	switch d := p.Data.(type) {
	case YoutubeVideoData:
		if d.Title == "" {
			errs = append(errs, fmt.Errorf("youtubeVideo title is empty"))
		}
		if d.Likes < 0 {
			errs = append(errs, fmt.Errorf("youtubeVideo likes is negative"))
		}
		if d.Views < 0 {
			errs = append(errs, fmt.Errorf("youtubeVideo views is negative"))
		}
	case ForumThreadData:
		if d.Title == "" {
			errs = append(errs, fmt.Errorf("forumThread title is empty"))
		}
		if d.Author.UID == "" {
			errs = append(errs, fmt.Errorf("forumThread author uid is empty"))
		}
	case PatreonPostData:
		if d.Title == "" {
			errs = append(errs, fmt.Errorf("patreonPost title is empty"))
		}
	case nil:
		errs = append(errs, fmt.Errorf("data is not set"))
	default:
		errs = append(errs, fmt.Errorf("unknown data variant: %T", p.Data))
	}

	return errs
}
