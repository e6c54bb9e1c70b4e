// Package engine orchestrates the parse -> compile -> prefilter -> vm
// pipeline behind a single Config, in the shape of the teacher's own
// meta-engine orchestrator: compile once into an immutable artifact,
// then search it as many times as the caller likes.
package engine

import "fmt"

// Config controls compilation and search behavior.
type Config struct {
	// MaxRecursionDepth bounds recursion in the parser and compiler
	// (nested groups, nested alternations). Default: 1000.
	MaxRecursionDepth int

	// MaxBacktrackSteps bounds the number of transition-attempt steps
	// vm takes in one search: a plain unanchored search counts across
	// every start position it slides through, a prefilter-driven
	// search restarts the count at each candidate offset. 0 means
	// unbounded. Default: 0.
	MaxBacktrackSteps int

	// EnablePrefilter enables prefilter-accelerated unanchored search
	// when the compiled pattern yields a usable required-prefix
	// literal set. Default: true.
	EnablePrefilter bool

	// MinPrefilterLiteralLen is the minimum literal length prefilter
	// will build an accelerator for; if any required-prefix literal
	// is shorter, no prefilter is used. Default: 1.
	MinPrefilterLiteralLen int
}

// DefaultConfig returns a Config with the defaults above.
func DefaultConfig() Config {
	return Config{
		MaxRecursionDepth:      1000,
		MaxBacktrackSteps:      0,
		EnablePrefilter:        true,
		MinPrefilterLiteralLen: 1,
	}
}

// Validate checks that c's fields are in range.
//
// Valid ranges:
//   - MaxRecursionDepth: 1 to 100,000
//   - MaxBacktrackSteps: 0 to unbounded (0 means unbounded)
//   - MinPrefilterLiteralLen: 1 to 64, only checked when EnablePrefilter
func (c Config) Validate() error {
	if c.MaxRecursionDepth < 1 || c.MaxRecursionDepth > 100_000 {
		return &ConfigError{Field: "MaxRecursionDepth", Message: "must be between 1 and 100,000"}
	}
	if c.MaxBacktrackSteps < 0 {
		return &ConfigError{Field: "MaxBacktrackSteps", Message: "must be >= 0 (0 means unbounded)"}
	}
	if c.EnablePrefilter && (c.MinPrefilterLiteralLen < 1 || c.MinPrefilterLiteralLen > 64) {
		return &ConfigError{Field: "MinPrefilterLiteralLen", Message: "must be between 1 and 64"}
	}
	return nil
}

// ConfigError reports an out-of-range Config field.
type ConfigError struct {
	Field   string
	Message string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("anre: invalid config: %s: %s", e.Field, e.Message)
}
