// Package config loads the monitor's configuration from a YAML file,
// environment variables and command line flags, and validates it. It defines
// the worker pool settings, the target list, the optional watch interval and
// metrics address, and the report format.
package config
