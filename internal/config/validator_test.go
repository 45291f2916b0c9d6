package config

import "testing"

func TestValidateAndSetDefaultsFillsZeroValues(t *testing.T) {
	cfg := &Config{}

	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults returned error: %v", err)
	}

	d := Defaults()
	if cfg.OutputDir != d.OutputDir {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, d.OutputDir)
	}
	if cfg.TokenEstimator.CharsPerToken != d.TokenEstimator.CharsPerToken {
		t.Errorf("CharsPerToken = %d, want %d", cfg.TokenEstimator.CharsPerToken, d.TokenEstimator.CharsPerToken)
	}
	if cfg.VectorSearch.ChunkLines != d.VectorSearch.ChunkLines {
		t.Errorf("ChunkLines = %d, want %d", cfg.VectorSearch.ChunkLines, d.VectorSearch.ChunkLines)
	}
	if cfg.HugeCodebase.FileCountThreshold != d.HugeCodebase.FileCountThreshold {
		t.Errorf("FileCountThreshold = %d, want %d", cfg.HugeCodebase.FileCountThreshold, d.HugeCodebase.FileCountThreshold)
	}
}

func TestValidateAndSetDefaultsPreservesExplicitValues(t *testing.T) {
	cfg := &Config{
		OutputDir: "custom-out",
		TokenEstimator: TokenEstimator{
			CharsPerToken: 3,
		},
	}

	if err := ValidateConfig(cfg); err != nil {
		t.Fatalf("ValidateAndSetDefaults returned error: %v", err)
	}

	if cfg.OutputDir != "custom-out" {
		t.Errorf("OutputDir was overwritten: got %q", cfg.OutputDir)
	}
	if cfg.TokenEstimator.CharsPerToken != 3 {
		t.Errorf("CharsPerToken was overwritten: got %d", cfg.TokenEstimator.CharsPerToken)
	}
}

func TestValidateAndSetDefaultsRejectsNegativeValues(t *testing.T) {
	cfg := &Config{TokenEstimator: TokenEstimator{CharsPerToken: -1}}
	if err := ValidateConfig(cfg); err == nil {
		t.Fatal("expected error for negative chars_per_token")
	}
}
