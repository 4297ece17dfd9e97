// Package confguard validates a daemon's INI configuration against a
// compiled-in schema before the daemon starts.
//
// A configuration file holds two sections, General and Watchdog. Every key
// in a section has a rule; confguard loads the file once, runs each rule
// against the raw value, and reports every problem it finds as a plain
// string. An empty result means the configuration is valid.
//
// # Key Components
//
//   - Config: parsed, immutable view of an INI file (sections and raw values)
//   - Schema: ordered sections and fields with their rules (DefaultSchema)
//   - Validator: compares a Config against a Schema
//   - CheckService: resolves, loads, validates and optionally records runs
//   - RunRepo: interface for run history persistence (PostgreSQL, SQLite)
//
// # Diagnostics
//
// Problems are rendered with one of five templates:
//
//	Missing '<Section>' section
//	Missing '<Key>' in <Section>
//	Invalid value for '<Key>' in <Section>: <raw value>
//	Invalid format for '<Key>' in <Section>: <raw value>
//	Unexpected parameter '<Key as written>' in <Section>
//
// "Invalid value" means the value was understood but rejected by policy
// (out of range, not in the allowed set). "Invalid format" means the value
// could not be parsed as the expected primitive at all.
//
// # Example Usage
//
//	v, err := confguard.New("")  // falls back to $CONFIG_PATH
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	for _, msg := range v.Validate() {
//	    fmt.Println(msg)
//	}
//
// The CoreDumpsPath rule checks the filesystem. Use WithFs to run it
// against an in-memory afero.Fs in tests.
package confguard
