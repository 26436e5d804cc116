// Package config loads and validates toolkit configuration.
//
// Configuration comes from a JSON or YAML file (picked by extension),
// overlaid with RESOURCEKIT_* environment variables, then validated.
// Validation failures stop service startup: a misconfigured deployment
// should fail loudly at boot, not at the first inter-resource call.
package config
