package destinations

// Destination is one configured Facebook page. Destinations are immutable
// value objects, reloaded from configuration on every distribution run.
type Destination struct {
	ID          string `yaml:"page_id"`
	AccessToken string `yaml:"access_token"`
	Name        string `yaml:"page_name"`
}
