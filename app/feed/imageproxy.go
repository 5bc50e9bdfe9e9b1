package feed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/tehpwnage/posthub/app/post"
)

// RewriteImageURL turns an externally hosted image URL into a same-origin
// proxy URL with the original target percent-encoded as a query parameter.
// Empty input stays empty; a URL is never synthesized from nothing.
func RewriteImageURL(raw, base string) string {
	if raw == "" {
		return ""
	}
	return fmt.Sprintf("%s/image_proxy?url=%s", strings.TrimSuffix(base, "/"), url.QueryEscape(raw))
}

// ProxyPostImages rewrites every image-bearing field of a post so clients
// that cannot make cross-origin image requests can load them through this
// service's own origin.
func ProxyPostImages(p post.Post, base string) post.Post {
	p.Author.AvatarURL = RewriteImageURL(p.Author.AvatarURL, base)

	switch d := p.Data.(type) {
	case post.YoutubeVideoData:
		d.ThumbnailURL = RewriteImageURL(d.ThumbnailURL, base)
		d.Channel.AvatarURL = RewriteImageURL(d.Channel.AvatarURL, base)
		p.Data = d
	case post.ForumThreadData:
		d.Author.AvatarURL = RewriteImageURL(d.Author.AvatarURL, base)
		p.Data = d
	case post.PatreonPostData:
		d.ImageURL = RewriteImageURL(d.ImageURL, base)
		d.Author.AvatarURL = RewriteImageURL(d.Author.AvatarURL, base)
		p.Data = d
	}

	return p
}
