// Package config loads the JSON configuration document at
// <repo_root>/.chiselmap.json (spec §6). A missing file or a parse
// error silently falls back to Defaults() — config is an optimization,
// never a precondition for running.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// Scan controls directory-walk exclusions beyond the built-in deny list
// (internal/walkfs owns the deny list itself).
type Scan struct {
	ExcludeDirNames []string `json:"exclude_dir_names"`
}

// TokenEstimator controls the char-per-token heuristic used by the
// slicer's budget accounting and the per-file size ceiling applied
// during the walk.
type TokenEstimator struct {
	CharsPerToken int   `json:"chars_per_token"`
	MaxFileBytes  int64 `json:"max_file_bytes"`
}

// VectorSearch controls the embedding index and the default result
// count for unbounded queries.
type VectorSearch struct {
	Model             string `json:"model"`
	ChunkLines        int    `json:"chunk_lines"`
	DefaultQueryLimit int    `json:"default_query_limit"`
}

// Rank controls the ranker's optional, non-spec signals (supplemented
// feature, see internal/gitsignal).
type Rank struct {
	DisableGitRecency bool `json:"disable_git_recency"`
}

// HugeCodebase controls when and how the slicer switches from plain
// mode to per-member budget splitting.
type HugeCodebase struct {
	Enabled            bool     `json:"enabled"`
	FileCountThreshold int      `json:"file_count_threshold"`
	MinMemberBudget    int      `json:"min_member_budget"`
	IncludeMembers     []string `json:"include_members"`
	ExcludeMembers     []string `json:"exclude_members"`
	MemberScanDepth    int      `json:"member_scan_depth"`
}

// Config is the full document shape of .chiselmap.json.
type Config struct {
	OutputDir      string         `json:"output_dir"`
	Scan           Scan           `json:"scan"`
	TokenEstimator TokenEstimator `json:"token_estimator"`
	SkeletonMode   bool           `json:"skeleton_mode"`
	VectorSearch   VectorSearch   `json:"vector_search"`
	HugeCodebase   HugeCodebase   `json:"huge_codebase"`
	Rank           Rank           `json:"rank"`
}

const configFileName = ".chiselmap.json"

// WalkDenyDirs returns the directory basenames a walk must always exclude
// beyond the walker's own built-in set: the configured scan exclusions plus
// this config's own output directory, so re-running chiselmap never walks
// into and packs its own prior output.
func (c Config) WalkDenyDirs() []string {
	deny := append([]string{}, c.Scan.ExcludeDirNames...)
	if c.OutputDir != "" {
		deny = append(deny, filepath.Base(c.OutputDir))
	}
	return deny
}

// Defaults returns the configuration chiselmap runs with when no config
// file is present, or when the file on disk fails to parse.
func Defaults() Config {
	return Config{
		OutputDir: ".chiselmap",
		Scan: Scan{
			ExcludeDirNames: nil,
		},
		TokenEstimator: TokenEstimator{
			CharsPerToken: 4,
			MaxFileBytes:  1 << 20,
		},
		SkeletonMode: true,
		VectorSearch: VectorSearch{
			Model:             "local-minilm",
			ChunkLines:        60,
			DefaultQueryLimit: 10,
		},
		HugeCodebase: HugeCodebase{
			Enabled:            true,
			FileCountThreshold: 3000,
			MinMemberBudget:    2000,
			MemberScanDepth:    3,
		},
	}
}

// Load reads .chiselmap.json from repoRoot, overlaying any present
// fields onto Defaults(). A missing file is not an error; a malformed
// file degrades to defaults rather than aborting the run.
func Load(repoRoot string) Config {
	cfg := Defaults()

	data, err := os.ReadFile(filepath.Join(repoRoot, configFileName))
	if err != nil {
		return cfg
	}

	var onDisk Config
	if err := json.Unmarshal(data, &onDisk); err != nil {
		return cfg
	}

	mergeInto(&cfg, onDisk, data)
	return cfg
}

// mergeInto overlays the fields actually present in raw onto cfg, so
// that a config file naming only one key (e.g. {"output_dir": "x"})
// does not zero out the rest of the defaults.
func mergeInto(cfg *Config, onDisk Config, raw []byte) {
	var present map[string]json.RawMessage
	if json.Unmarshal(raw, &present) != nil {
		return
	}

	if _, ok := present["output_dir"]; ok {
		cfg.OutputDir = onDisk.OutputDir
	}
	if _, ok := present["skeleton_mode"]; ok {
		cfg.SkeletonMode = onDisk.SkeletonMode
	}
	if raw, ok := present["scan"]; ok {
		mergeScan(&cfg.Scan, onDisk.Scan, raw)
	}
	if raw, ok := present["token_estimator"]; ok {
		mergeTokenEstimator(&cfg.TokenEstimator, onDisk.TokenEstimator, raw)
	}
	if raw, ok := present["vector_search"]; ok {
		mergeVectorSearch(&cfg.VectorSearch, onDisk.VectorSearch, raw)
	}
	if raw, ok := present["huge_codebase"]; ok {
		mergeHugeCodebase(&cfg.HugeCodebase, onDisk.HugeCodebase, raw)
	}
	if raw, ok := present["rank"]; ok {
		mergeRank(&cfg.Rank, onDisk.Rank, raw)
	}
}

func presentKeys(raw json.RawMessage) map[string]json.RawMessage {
	var m map[string]json.RawMessage
	_ = json.Unmarshal(raw, &m)
	return m
}

func mergeScan(dst *Scan, src Scan, raw json.RawMessage) {
	if _, ok := presentKeys(raw)["exclude_dir_names"]; ok {
		dst.ExcludeDirNames = src.ExcludeDirNames
	}
}

func mergeTokenEstimator(dst *TokenEstimator, src TokenEstimator, raw json.RawMessage) {
	keys := presentKeys(raw)
	if _, ok := keys["chars_per_token"]; ok {
		dst.CharsPerToken = src.CharsPerToken
	}
	if _, ok := keys["max_file_bytes"]; ok {
		dst.MaxFileBytes = src.MaxFileBytes
	}
}

func mergeVectorSearch(dst *VectorSearch, src VectorSearch, raw json.RawMessage) {
	keys := presentKeys(raw)
	if _, ok := keys["model"]; ok {
		dst.Model = src.Model
	}
	if _, ok := keys["chunk_lines"]; ok {
		dst.ChunkLines = src.ChunkLines
	}
	if _, ok := keys["default_query_limit"]; ok {
		dst.DefaultQueryLimit = src.DefaultQueryLimit
	}
}

func mergeRank(dst *Rank, src Rank, raw json.RawMessage) {
	if _, ok := presentKeys(raw)["disable_git_recency"]; ok {
		dst.DisableGitRecency = src.DisableGitRecency
	}
}

func mergeHugeCodebase(dst *HugeCodebase, src HugeCodebase, raw json.RawMessage) {
	keys := presentKeys(raw)
	if _, ok := keys["enabled"]; ok {
		dst.Enabled = src.Enabled
	}
	if _, ok := keys["file_count_threshold"]; ok {
		dst.FileCountThreshold = src.FileCountThreshold
	}
	if _, ok := keys["min_member_budget"]; ok {
		dst.MinMemberBudget = src.MinMemberBudget
	}
	if _, ok := keys["include_members"]; ok {
		dst.IncludeMembers = src.IncludeMembers
	}
	if _, ok := keys["exclude_members"]; ok {
		dst.ExcludeMembers = src.ExcludeMembers
	}
	if _, ok := keys["member_scan_depth"]; ok {
		dst.MemberScanDepth = src.MemberScanDepth
	}
}
