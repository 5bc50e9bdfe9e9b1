package config

// SourcesConfig describes the three external sources the poller ingests.
type SourcesConfig struct {
	FetchLimit int           `yaml:"fetch_limit"`
	Youtube    YoutubeSource `yaml:"youtube"`
	Forum      ForumSource   `yaml:"forum"`
	Patreon    PatreonSource `yaml:"patreon"`
}

// YoutubeSource configures the channel feed adapter
type YoutubeSource struct {
	Enabled          bool   `yaml:"enabled"`
	ChannelID        string `yaml:"channel_id"`
	ChannelAvatarURL string `yaml:"channel_avatar_url"`
}

// ForumSource configures the syndication feed adapter
type ForumSource struct {
	Enabled          bool   `yaml:"enabled"`
	FeedURL          string `yaml:"feed_url"`
	AvatarBaseURL    string `yaml:"avatar_base_url"`
	DefaultAvatarURL string `yaml:"default_avatar_url"`
	VerifyAvatars    bool   `yaml:"verify_avatars"`
}

// PatreonSource configures the membership-post adapter
type PatreonSource struct {
	Enabled         bool   `yaml:"enabled"`
	APIURL          string `yaml:"api_url"`
	CampaignID      string `yaml:"campaign_id"`
	AuthorName      string `yaml:"author_name"`
	AuthorAvatarURL string `yaml:"author_avatar_url"`
}
