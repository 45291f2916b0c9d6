// Package gitsignal supplies an optional recency boost the ranker (§4.F)
// can add on top of its path-based score: files touched more recently in
// git history rank slightly higher, the same way the teacher's change-
// frequency analyzer shells out to git log for commit metadata.
package gitsignal

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// RecencyScore maps a repo-relative path to an additive score boost derived
// from how recently it was last committed, 0 for files git knows nothing
// about (not a repo, never committed, or git unavailable).
type RecencyScore map[string]int

// maxBoost caps the recency contribution so it never dominates the ranker's
// structural score (spec §4.F's own deltas top out in the low hundreds).
const maxBoost = 40

// recencyWindow bounds how far back "recent" reaches; commits older than
// this get no boost at all.
const recencyWindow = 90 * 24 * time.Hour

// Collect runs `git log --name-only` over repoRoot and returns a recency
// boost per path. Any failure (not a git repo, git missing, timeout)
// degrades to an empty map rather than propagating an error — this signal
// is advisory, never required (spec §7 "never fatal").
func Collect(ctx context.Context, repoRoot string) RecencyScore {
	since := time.Now().Add(-recencyWindow).Format("2006-01-02")
	cmd := exec.CommandContext(ctx, "git", "log",
		"--name-only", "--format=COMMIT|%at", "--since="+since, "--no-merges")
	cmd.Dir = repoRoot

	out, err := cmd.Output()
	if err != nil {
		return RecencyScore{}
	}
	return parseLog(out)
}

func parseLog(out []byte) RecencyScore {
	scores := RecencyScore{}
	now := time.Now()

	var currentTS int64
	scanner := bufio.NewScanner(bytes.NewReader(out))
	scanner.Buffer(make([]byte, 64*1024), 1<<20)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "COMMIT|") {
			ts, _ := strconv.ParseInt(strings.TrimPrefix(line, "COMMIT|"), 10, 64)
			currentTS = ts
			continue
		}
		if currentTS == 0 {
			continue
		}
		path := filepath.ToSlash(line)
		boost := boostForAge(now.Sub(time.Unix(currentTS, 0)))
		if boost > scores[path] {
			scores[path] = boost
		}
	}
	return scores
}

// boostForAge linearly decays from maxBoost at age 0 to 0 at recencyWindow.
func boostForAge(age time.Duration) int {
	if age < 0 || age > recencyWindow {
		return 0
	}
	frac := 1 - float64(age)/float64(recencyWindow)
	return int(frac * maxBoost)
}

// Unavailable reports a human-readable reason recency boosting cannot run
// (git missing, or repoRoot not a work tree), or nil. Nothing in the
// ranking path calls it, so it never fails a ranking pass.
func Unavailable(repoRoot string) error {
	if _, err := exec.LookPath("git"); err != nil {
		return fmt.Errorf("git not found in PATH: %w", err)
	}
	if _, err := exec.Command("git", "-C", repoRoot, "rev-parse", "--is-inside-work-tree").Output(); err != nil {
		return fmt.Errorf("%s is not a git work tree", repoRoot)
	}
	return nil
}
