package rank

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithGitRecencyNilContextSkipsBoost(t *testing.T) {
	paths := []string{"b/zeta.go", "a/alpha.go"}
	withoutCtx := WithGitRecency(nil, "/does/not/matter", paths, Options{})
	plain := Rank(paths, Options{})
	assert.Equal(t, plain, withoutCtx)
}

func TestBaseImportanceTestMarkerPenalty(t *testing.T) {
	assert.Less(t, baseImportance("src/foo_test.go"), baseImportance("src/foo.go"))
}

func TestRankTieBreaksAlphabetically(t *testing.T) {
	paths := []string{"b/zeta.go", "a/alpha.go"}
	entries := Rank(paths, Options{})
	if entries[0].Score == entries[1].Score {
		assert.Equal(t, "a/alpha.go", entries[0].RelPath)
	}
}

func TestInDegreeCountsDistinctSources(t *testing.T) {
	g := ImportGraph{
		"a.go": {"shared.go", "shared.go"}, // duplicate import counted once
		"b.go": {"shared.go"},
	}
	deg := InDegree(g)
	assert.Equal(t, 2, deg["shared.go"])
}

func TestRankBoostsHighInDegreeFile(t *testing.T) {
	g := ImportGraph{
		"a.go": {"shared.go"},
		"b.go": {"shared.go"},
		"c.go": {"shared.go"},
	}
	entries := Rank([]string{"shared.go", "lonely.go"}, Options{Graph: g})
	assert.Equal(t, "shared.go", entries[0].RelPath)
}

func TestRankDeprioritizesGeneratedDirs(t *testing.T) {
	entries := Rank([]string{"src/real.go", "build/target/generated.go"}, Options{})
	assert.Equal(t, "src/real.go", entries[0].RelPath)
}
