package cfg

type Cfg struct {
	// Database configuration
	DBPath string

	// Application configuration
	SourcesFile    string
	Port           string
	BaseUrl        string
	WorkerCount    int
	PollInterval   int
	FetchTimeout   int
	InternalAPIKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
