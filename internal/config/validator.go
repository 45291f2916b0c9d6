package config

import "fmt"

// Validator validates a loaded Config and fills in any zero-valued
// numeric fields with the same smart defaults Defaults() would have
// used, so a config file that only overrides one field of a nested
// struct doesn't leave its siblings at the Go zero value.
type Validator struct{}

// NewValidator creates a new configuration validator.
func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies smart defaults in
// place. Returns an error only for values that can never be made
// sensible by defaulting (negative values); zero values are replaced by
// their defaults.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	if err := v.validateTokenEstimator(&cfg.TokenEstimator); err != nil {
		return fmt.Errorf("token_estimator: %w", err)
	}
	if err := v.validateVectorSearch(&cfg.VectorSearch); err != nil {
		return fmt.Errorf("vector_search: %w", err)
	}
	if err := v.validateHugeCodebase(&cfg.HugeCodebase); err != nil {
		return fmt.Errorf("huge_codebase: %w", err)
	}

	v.setSmartDefaults(cfg)
	return nil
}

func (v *Validator) validateTokenEstimator(te *TokenEstimator) error {
	if te.CharsPerToken < 0 {
		return fmt.Errorf("chars_per_token cannot be negative, got %d", te.CharsPerToken)
	}
	if te.MaxFileBytes < 0 {
		return fmt.Errorf("max_file_bytes cannot be negative, got %d", te.MaxFileBytes)
	}
	return nil
}

func (v *Validator) validateVectorSearch(vs *VectorSearch) error {
	if vs.ChunkLines < 0 {
		return fmt.Errorf("chunk_lines cannot be negative, got %d", vs.ChunkLines)
	}
	if vs.DefaultQueryLimit < 0 {
		return fmt.Errorf("default_query_limit cannot be negative, got %d", vs.DefaultQueryLimit)
	}
	return nil
}

func (v *Validator) validateHugeCodebase(hc *HugeCodebase) error {
	if hc.FileCountThreshold < 0 {
		return fmt.Errorf("file_count_threshold cannot be negative, got %d", hc.FileCountThreshold)
	}
	if hc.MinMemberBudget < 0 {
		return fmt.Errorf("min_member_budget cannot be negative, got %d", hc.MinMemberBudget)
	}
	if hc.MemberScanDepth < 0 {
		return fmt.Errorf("member_scan_depth cannot be negative, got %d", hc.MemberScanDepth)
	}
	return nil
}

// setSmartDefaults fills in zero-valued fields a partial config file
// left unset, the same way Defaults() would have populated them.
func (v *Validator) setSmartDefaults(cfg *Config) {
	d := Defaults()

	if cfg.OutputDir == "" {
		cfg.OutputDir = d.OutputDir
	}
	if cfg.TokenEstimator.CharsPerToken == 0 {
		cfg.TokenEstimator.CharsPerToken = d.TokenEstimator.CharsPerToken
	}
	if cfg.TokenEstimator.MaxFileBytes == 0 {
		cfg.TokenEstimator.MaxFileBytes = d.TokenEstimator.MaxFileBytes
	}
	if cfg.VectorSearch.Model == "" {
		cfg.VectorSearch.Model = d.VectorSearch.Model
	}
	if cfg.VectorSearch.ChunkLines == 0 {
		cfg.VectorSearch.ChunkLines = d.VectorSearch.ChunkLines
	}
	if cfg.VectorSearch.DefaultQueryLimit == 0 {
		cfg.VectorSearch.DefaultQueryLimit = d.VectorSearch.DefaultQueryLimit
	}
	if cfg.HugeCodebase.FileCountThreshold == 0 {
		cfg.HugeCodebase.FileCountThreshold = d.HugeCodebase.FileCountThreshold
	}
	if cfg.HugeCodebase.MinMemberBudget == 0 {
		cfg.HugeCodebase.MinMemberBudget = d.HugeCodebase.MinMemberBudget
	}
	if cfg.HugeCodebase.MemberScanDepth == 0 {
		cfg.HugeCodebase.MemberScanDepth = d.HugeCodebase.MemberScanDepth
	}
}

// ValidateConfig is a convenience function for one-shot validation.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
