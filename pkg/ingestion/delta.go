// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package ingestion

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"sort"
	"strings"
)

// DeltaDetector finds the files that changed in a git working tree since
// a given ref, so a scan can be limited to code that was just touched.
type DeltaDetector struct {
	logger  *slog.Logger
	workDir string
}

// NewDeltaDetector creates a delta detector running git in workDir.
func NewDeltaDetector(workDir string, logger *slog.Logger) *DeltaDetector {
	if logger == nil {
		logger = slog.Default()
	}
	return &DeltaDetector{logger: logger, workDir: workDir}
}

// GitDelta lists changed paths relative to the detector's directory.
type GitDelta struct {
	// BaseSHA is the commit the working tree was compared with.
	BaseSHA string

	Added    []string
	Modified []string
	Deleted  []string

	// Renamed maps old path -> new path.
	Renamed map[string]string
}

// Present returns the changed paths that still exist: added, modified,
// copied and the new side of renames. Sorted and deduplicated.
func (d *GitDelta) Present() []string {
	set := make(map[string]bool, len(d.Added)+len(d.Modified)+len(d.Renamed))
	for _, p := range d.Added {
		set[p] = true
	}
	for _, p := range d.Modified {
		set[p] = true
	}
	for _, p := range d.Renamed {
		set[p] = true
	}
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// DetectDelta compares the working tree with base. Paths are reported
// relative to the detector's directory, and changes outside it are left
// out.
func (dd *DeltaDetector) DetectDelta(ctx context.Context, base string) (*GitDelta, error) {
	if base == "" {
		return nil, errors.New("base ref is empty")
	}
	if strings.HasPrefix(base, "-") {
		return nil, fmt.Errorf("invalid base ref %q", base)
	}

	resolved, err := dd.git(ctx, "rev-parse", "--verify", base+"^{commit}")
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", base, err)
	}
	resolved = strings.TrimSpace(resolved)

	out, err := dd.git(ctx, "diff", "--name-status", "-M", "--relative", resolved, "--")
	if err != nil {
		return nil, fmt.Errorf("git diff: %w", err)
	}

	delta := &GitDelta{BaseSHA: resolved, Renamed: make(map[string]string)}
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		status, paths := parseGitDiffLine(scanner.Text())
		if status == "" {
			continue
		}
		switch status[0] {
		case 'A':
			delta.Added = append(delta.Added, paths[0])
		case 'M', 'T':
			delta.Modified = append(delta.Modified, paths[0])
		case 'D':
			delta.Deleted = append(delta.Deleted, paths[0])
		case 'R':
			// R100 old new; the number is the similarity.
			if len(paths) >= 2 {
				delta.Renamed[paths[0]] = paths[1]
			}
		case 'C':
			if len(paths) >= 2 {
				delta.Added = append(delta.Added, paths[1])
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("parse git diff: %w", err)
	}
	sort.Strings(delta.Added)
	sort.Strings(delta.Modified)
	sort.Strings(delta.Deleted)

	dd.logger.Info("delta.detect.complete",
		"base_sha", resolved[:min(8, len(resolved))],
		"added", len(delta.Added),
		"modified", len(delta.Modified),
		"deleted", len(delta.Deleted),
		"renamed", len(delta.Renamed),
	)
	return delta, nil
}

func (dd *DeltaDetector) git(ctx context.Context, args ...string) (string, error) {
	// #nosec G204 - arguments are fixed or a validated ref
	cmd := exec.CommandContext(ctx, "git", args...)
	cmd.Dir = dd.workDir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	out, err := cmd.Output()
	if err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return "", fmt.Errorf("%w: %s", err, msg)
		}
		return "", err
	}
	return string(out), nil
}

// parseGitDiffLine splits a line of git diff --name-status output into
// the status (A, M, D, R###, C###) and its paths.
func parseGitDiffLine(line string) (status string, paths []string) {
	parts := strings.Split(line, "\t")
	if len(parts) < 2 {
		return "", nil
	}
	paths = parts[1:]
	for i, p := range paths {
		paths[i] = unquoteGitPath(p)
	}
	return parts[0], paths
}

// unquoteGitPath undoes the quoting git applies to unusual file names.
func unquoteGitPath(path string) string {
	if len(path) < 2 || path[0] != '"' || path[len(path)-1] != '"' {
		return path
	}
	return strings.NewReplacer(`\n`, "\n", `\t`, "\t", `\\`, `\`, `\"`, `"`).Replace(path[1 : len(path)-1])
}

// keepChanged filters files down to the paths in changed.
func keepChanged(files []FileInfo, changed []string) []FileInfo {
	set := make(map[string]bool, len(changed))
	for _, p := range changed {
		set[normalizePath(p)] = true
	}
	kept := files[:0:0]
	for _, f := range files {
		if set[normalizePath(f.Path)] {
			kept = append(kept, f)
		}
	}
	return kept
}
