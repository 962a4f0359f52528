// Package config loads the report generator configuration.
//
// # Configuration Sources
//
// Values are resolved in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A YAML configuration file
//	3. Default values (lowest priority)
//
// A .env file in the working directory is loaded into the environment
// first, without overriding variables that are already set.
//
// # Environment Variables
//
// All variables use the REPORTS_ prefix followed by section and field:
//
//	REPORTS_SERVER_PORT=8080
//	REPORTS_SHEETS_CREDENTIALS_FILE=credentials.json
//	REPORTS_SHEETS_RETRIES=5
//	REPORTS_SHEETS_INITIAL_DELAY=2s
//	REPORTS_SHEETS_STRICT_FETCH=false
//	REPORTS_LOGGING_LEVEL=info
//
// # Usage
//
//	cfg, err := config.Load("")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
