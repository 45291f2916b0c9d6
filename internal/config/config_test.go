package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	cfg := Load(dir)
	if cfg.OutputDir != Defaults().OutputDir {
		t.Errorf("OutputDir = %q, want default", cfg.OutputDir)
	}
}

func TestLoadMalformedFileReturnsDefaults(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg := Load(dir)
	if cfg.OutputDir != Defaults().OutputDir {
		t.Errorf("OutputDir = %q, want default after malformed config", cfg.OutputDir)
	}
}

func TestLoadOverlaysOnlyPresentFields(t *testing.T) {
	dir := t.TempDir()
	doc := `{"output_dir": "custom", "vector_search": {"chunk_lines": 120}}`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir)
	if cfg.OutputDir != "custom" {
		t.Errorf("OutputDir = %q, want %q", cfg.OutputDir, "custom")
	}
	if cfg.VectorSearch.ChunkLines != 120 {
		t.Errorf("ChunkLines = %d, want 120", cfg.VectorSearch.ChunkLines)
	}
	if cfg.VectorSearch.Model != Defaults().VectorSearch.Model {
		t.Errorf("Model = %q, want default preserved", cfg.VectorSearch.Model)
	}
	if cfg.TokenEstimator.CharsPerToken != Defaults().TokenEstimator.CharsPerToken {
		t.Errorf("CharsPerToken = %d, want default preserved", cfg.TokenEstimator.CharsPerToken)
	}
}

func TestLoadOverlaysRankDisableGitRecency(t *testing.T) {
	dir := t.TempDir()
	doc := `{"rank": {"disable_git_recency": true}}`
	if err := os.WriteFile(filepath.Join(dir, configFileName), []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := Load(dir)
	if !cfg.Rank.DisableGitRecency {
		t.Error("DisableGitRecency = false, want true")
	}
}

func TestWalkDenyDirsIncludesOutputDir(t *testing.T) {
	cfg := Defaults()
	cfg.Scan.ExcludeDirNames = []string{"scratch"}
	cfg.OutputDir = "artifacts/.chiselmap"

	deny := cfg.WalkDenyDirs()
	want := map[string]bool{"scratch": true, ".chiselmap": true}
	if len(deny) != len(want) {
		t.Fatalf("WalkDenyDirs() = %v, want %v", deny, want)
	}
	for _, d := range deny {
		if !want[d] {
			t.Errorf("unexpected deny entry %q", d)
		}
	}
}
