package engine

import "testing"

func TestDefaultConfigValues(t *testing.T) {
	c := DefaultConfig()
	if c.MaxRecursionDepth != 1000 {
		t.Errorf("MaxRecursionDepth = %d, want 1000", c.MaxRecursionDepth)
	}
	if c.MaxBacktrackSteps != 0 {
		t.Errorf("MaxBacktrackSteps = %d, want 0", c.MaxBacktrackSteps)
	}
	if !c.EnablePrefilter {
		t.Error("EnablePrefilter should be true by default")
	}
	if c.MinPrefilterLiteralLen != 1 {
		t.Errorf("MinPrefilterLiteralLen = %d, want 1", c.MinPrefilterLiteralLen)
	}
}

func TestDefaultConfigPassesValidation(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() = %v, want nil", err)
	}
}

func TestConfigValidateMaxRecursionDepth(t *testing.T) {
	tests := []struct {
		name      string
		depth     int
		wantErr   bool
		wantField string
	}{
		{"zero is invalid", 0, true, "MaxRecursionDepth"},
		{"minimum valid", 1, false, ""},
		{"typical", 1000, false, ""},
		{"maximum valid", 100_000, false, ""},
		{"exceeds maximum", 100_001, true, "MaxRecursionDepth"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultConfig()
			c.MaxRecursionDepth = tt.depth
			err := c.Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				cfgErr, ok := err.(*ConfigError)
				if !ok || cfgErr.Field != tt.wantField {
					t.Errorf("error = %v, want field %q", err, tt.wantField)
				}
			}
		})
	}
}

func TestConfigValidateMaxBacktrackSteps(t *testing.T) {
	c := DefaultConfig()
	c.MaxBacktrackSteps = -1
	err := c.Validate()
	cfgErr, ok := err.(*ConfigError)
	if !ok || cfgErr.Field != "MaxBacktrackSteps" {
		t.Errorf("Validate() with negative MaxBacktrackSteps = %v, want ConfigError{Field: MaxBacktrackSteps}", err)
	}

	c.MaxBacktrackSteps = 0
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() with MaxBacktrackSteps=0 (unbounded) = %v, want nil", err)
	}
}

func TestConfigValidateMinPrefilterLiteralLen(t *testing.T) {
	c := DefaultConfig()
	c.MinPrefilterLiteralLen = 0
	if err := c.Validate(); err == nil {
		t.Error("Validate() with MinPrefilterLiteralLen=0 = nil, want error")
	}

	c.MinPrefilterLiteralLen = 65
	if err := c.Validate(); err == nil {
		t.Error("Validate() with MinPrefilterLiteralLen=65 = nil, want error")
	}

	// When EnablePrefilter is false, MinPrefilterLiteralLen is not checked.
	c.EnablePrefilter = false
	if err := c.Validate(); err != nil {
		t.Errorf("Validate() with EnablePrefilter=false and out-of-range MinPrefilterLiteralLen = %v, want nil", err)
	}
}

func TestConfigErrorMessage(t *testing.T) {
	err := &ConfigError{Field: "MaxRecursionDepth", Message: "must be between 1 and 100,000"}
	want := "anre: invalid config: MaxRecursionDepth: must be between 1 and 100,000"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}
