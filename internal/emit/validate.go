package emit

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
)

// DefaultValidateWorkers bounds concurrent file checks in [ValidateTree].
const DefaultValidateWorkers = 8

// Problem is one validation failure.
type Problem struct {
	Path   string
	Reason string
}

func (p Problem) Error() string { return p.Path + ": " + p.Reason }

var (
	idFieldRe        = regexp.MustCompile(`(?m)^\s*id:\s*"[^"]+"`)
	modelPathFieldRe = regexp.MustCompile(`(?m)^\s*model_path:\s*"[^"]+"`)
	factionFieldRe   = regexp.MustCompile(`(?m)^\s*faction:\s*"[^"]+"`)
	corruptionRe     = regexp.MustCompile(`corruption_band:\s*(None|Some\(\s*(-?\d+)\s*\))`)
)

// ValidateRON checks one RON file's content. name is its base name.
func ValidateRON(name string, data []byte) []string {
	var reasons []string
	if err := balanced(data); err != nil {
		reasons = append(reasons, err.Error())
	}

	stem, upgrade := strings.CutSuffix(name, "_upgrades.ron")
	if !upgrade {
		stem = strings.TrimSuffix(strings.TrimSuffix(name, ".ron"), ".meta")
		stem = strings.TrimSuffix(stem, "_leader")
	}
	if !IsSanitized(stem) {
		reasons = append(reasons, fmt.Sprintf("file name %q is not sanitized", name))
	}

	s := string(data)
	if upgrade {
		if !factionFieldRe.MatchString(s) {
			reasons = append(reasons, "missing faction")
		}
		return reasons
	}
	if !idFieldRe.MatchString(s) {
		reasons = append(reasons, "missing id")
	}
	if !modelPathFieldRe.MatchString(s) {
		reasons = append(reasons, "missing model_path")
	}
	for _, m := range corruptionRe.FindAllStringSubmatch(s, -1) {
		if m[1] == "None" {
			continue
		}
		if n, err := strconv.Atoi(m[2]); err != nil || n < 1 || n > 5 {
			reasons = append(reasons, fmt.Sprintf("corruption_band %s out of range 1..5", m[2]))
		}
	}
	return reasons
}

var openers = map[byte]byte{')': '(', ']': '[', '}': '{'}

// balanced checks that (), [] and {} nest correctly outside string literals.
func balanced(data []byte) error {
	var stack []byte
	inString, escaped := false, false
	line := 1
	for _, c := range data {
		if c == '\n' {
			line++
		}
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '(', '[', '{':
			stack = append(stack, c)
		case ')', ']', '}':
			if len(stack) == 0 || stack[len(stack)-1] != openers[c] {
				return fmt.Errorf("unbalanced %q on line %d", c, line)
			}
			stack = stack[:len(stack)-1]
		}
	}
	if inString {
		return errors.New("unterminated string")
	}
	if len(stack) > 0 {
		return fmt.Errorf("unclosed %q", stack[len(stack)-1])
	}
	return nil
}

// ValidateTree checks every *.ron file below root with up to workers files in
// flight. It returns all problems sorted by path; the error is non-nil only
// when the walk itself fails.
func ValidateTree(ctx context.Context, root string, workers int) ([]Problem, error) {
	if workers <= 0 {
		workers = DefaultValidateWorkers
	}
	var files []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".ron") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("emit: walk %q: %w", root, err)
	}

	var (
		mu       sync.Mutex
		problems []Problem
	)
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, f := range files {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := os.ReadFile(f)
			var reasons []string
			if err != nil {
				reasons = []string{err.Error()}
			} else {
				reasons = ValidateRON(filepath.Base(f), data)
			}
			mu.Lock()
			defer mu.Unlock()
			for _, r := range reasons {
				problems = append(problems, Problem{Path: f, Reason: r})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	slices.SortStableFunc(problems, func(a, b Problem) int {
		if c := strings.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return strings.Compare(a.Reason, b.Reason)
	})
	return problems, nil
}
