package config

import (
	"fmt"
	"strings"
)

// Validate checks that the configuration is internally consistent.
//
// ConcurrentEncodeNum == 0 is deliberately NOT a validation error: spec §7
// reserves that case for a runtime ConcurrentEncodeNumIsZero error raised
// from enqueue, so operators can load a "paused" config without the loader
// rejecting it outright.
func (c *Config) Validate() error {
	var errs []string

	if c.ConcurrentEncodeNum < 0 {
		errs = append(errs, "concurrentEncodeNum cannot be negative")
	}

	if c.FFmpeg == "" {
		errs = append(errs, "ffmpeg path is required")
	}

	if len(c.Encode) == 0 {
		errs = append(errs, "at least one encode profile is required")
	}

	seen := make(map[string]bool, len(c.Encode))
	for i, p := range c.Encode {
		if err := p.Validate(); err != nil {
			errs = append(errs, fmt.Sprintf("encode[%d] (%s): %v", i, p.Name, err))
			continue
		}
		if seen[p.Name] {
			errs = append(errs, fmt.Sprintf("encode[%d]: duplicate profile name %q", i, p.Name))
		}
		seen[p.Name] = true
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}

// Validate checks that an EncodeProfile is well-formed.
func (p EncodeProfile) Validate() error {
	var errs []string

	if p.Name == "" {
		errs = append(errs, "name is required")
	}
	if p.Cmd == "" {
		errs = append(errs, "cmd template is required")
	}
	if p.Rate < 0 {
		errs = append(errs, "rate cannot be negative")
	}

	if len(errs) > 0 {
		return fmt.Errorf("%s", strings.Join(errs, ", "))
	}
	return nil
}
