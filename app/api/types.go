package api

import (
	"net/http"

	"github.com/tehpwnage/posthub/app/database"
	"github.com/tehpwnage/posthub/app/feed"
	"github.com/tehpwnage/posthub/app/poller"
	"github.com/tehpwnage/posthub/app/post"
)

type Handler struct {
	postRepo   database.PostRepository
	generator  *feed.Generator
	poller     *poller.Poller
	httpClient *http.Client
}

// PostsResponse is the JSON shape of the /posts endpoint.
type PostsResponse struct {
	Posts   []post.Post `json:"posts"`
	HasMore bool        `json:"hasMore"`
}
