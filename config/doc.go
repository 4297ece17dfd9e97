// Package config loads and validates confguard's own settings.
//
// These settings configure the tool (output format, run history, HTTP
// server), not the daemon INI files it validates.
//
// # Precedence
//
// Values are loaded in this order (later sources override earlier ones):
//
//  1. Default values
//  2. Settings file(s), merged left-to-right
//  3. Environment variables (CONFGUARD_ prefix)
//  4. CLI flags that were explicitly set
//
// # Environment Variables
//
// Keys map to environment variables with the CONFGUARD_ prefix:
//   - server.port → CONFGUARD_SERVER_PORT
//   - history.dsn → CONFGUARD_HISTORY_DSN
//
// check.path additionally falls back to CONFIG_PATH.
//
// # Usage
//
//	cfg, err := config.Load([]string{"confguard.yaml"}, cmd.Flags())
//	if err != nil {
//	    log.Fatal(err)
//	}
//	ctx = config.WithContext(ctx, cfg)
package config
