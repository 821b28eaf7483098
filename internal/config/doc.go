// Package config loads the roachagram client configuration.
//
// # Configuration Discovery
//
// Load reads ~/.config/roachagram/config.toml unless an explicit path is
// given. A missing file is fine; every key except api_base_url has a
// default. The ROACHAGRAM_API_BASE_URL environment variable overrides the
// file value. Without a base URL Load returns ErrMissingBaseURL, which the
// CLI treats as fatal.
//
// # TOML Format
//
//	api_base_url = "https://roachagram.example.com/"
//	theme = "dark"            # light | dark
//	reveal_speed_ms = 30
//	font_family = "'Open Sans', Arial, sans-serif"
//	log_level = "info"        # debug | info | warn | error
//	request_timeout = "60s"   # per attempt
//	max_input_length = 50
//	telemetry = true
//	metrics_addr = "127.0.0.1:9464"
//
//	[storage]
//	backend = "file"          # file | redis | memory
//	path = "~/.local/share/roachagram/identity.toml"
//	redis_addr = "127.0.0.1:6379"
//	encryption_key = "<64 hex chars or base64 of 32 bytes>"
//
// Field constraints are checked with validator tags on Config. Tilde
// expansion is applied to the config path and storage.path.
package config
