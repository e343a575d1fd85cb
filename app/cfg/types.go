package cfg

import "time"

type Cfg struct {
	// Source configuration
	SourceURL  string
	SourceKind string

	// Pipeline configuration
	PollInterval   int // seconds
	CooldownDelay  int // seconds
	UploadDelay    int // seconds
	ReelMaxSeconds int
	DownloadDir    string
	LedgerPath     string
	PagesPath      string

	// HTTP server configuration
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}

func (c *Cfg) GetPollInterval() time.Duration {
	return time.Duration(c.PollInterval) * time.Second
}

func (c *Cfg) GetCooldownDelay() time.Duration {
	return time.Duration(c.CooldownDelay) * time.Second
}

func (c *Cfg) GetUploadDelay() time.Duration {
	return time.Duration(c.UploadDelay) * time.Second
}
