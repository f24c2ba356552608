package remote

// CDNConfig holds configuration for the read-only CDN endpoint.
type CDNConfig struct {
	// URL is the base URL mirrored files are served from.
	URL string `mapstructure:"url" default:"https://ci-mirrors.rust-lang.org"`
	// TimeoutSeconds bounds connection setup and the wait for response headers.
	TimeoutSeconds int `mapstructure:"timeout_seconds" default:"30"`
}
