// Package config handles configuration loading for parley.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${PARLEY_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Duration Parsing
//
// Duration values use Go's time.ParseDuration syntax:
//
//	ai:
//	  request_timeout: "30s"
//	  shutdown_timeout: "10s"
//
// Supported units: ns, us, ms, s, m, h
//
// # Configuration Sections
//
// Database:
//
//	database:
//	  path: "/var/lib/parley/parley.db"
//
// Generation API:
//
//	openai:
//	  api_key: "${OPENAI_API_KEY}"
//	  base_url: ""                 # optional, for compatible endpoints
//
// Pipeline tuning:
//
//	ai:
//	  history_window: 5
//	  request_timeout: "30s"
//	  shutdown_timeout: "10s"
//
// Shared-room AI flags (optional Redis backend; in-memory when addr is empty):
//
//	redis:
//	  addr: "localhost:6379"
//	  password: ""
//	  db: 0
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${PARLEY_JWT_SECRET}"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
// Load configuration from a path:
//
//	cfg, err := config.Load("/etc/parley/parley.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
