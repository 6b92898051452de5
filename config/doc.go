// Package config loads apikit service configuration from YAML files with
// environment overrides.
//
// A configuration file declares shared defaults and any number of named
// services:
//
//	logging:
//	  level: info
//	defaults:
//	  timeout: 15s
//	  retries: 3
//	services:
//	  posts:
//	    base_url: https://api.example.com
//	    auth:
//	      type: bearer
//	      token: ${POSTS_TOKEN}
//
// Load reads the file through viper, overlays a .env file (godotenv) and the
// process environment, and unmarshals into Settings. ServiceSettings convert
// to client.Config and auth.Strategy values ready for registry factories.
package config
