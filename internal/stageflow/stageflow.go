// Package stageflow manages the ordered list of promotion stages.
// The flow is persisted as a small JSON document inside the repository
// (.gitstage/stageflow.json) and maps 1:1 onto branch names: the order of
// the list defines the promotion direction.
package stageflow

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"

	clierrors "github.com/gitstage/gitstage/internal/errors"
	kjson "github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// ConfigRelPath is the stageflow document path relative to the repository root.
const ConfigRelPath = ".gitstage/stageflow.json"

// stageNamePattern matches valid stage names. Stage names double as branch
// names, so the character set is the safe subset of git ref syntax.
var stageNamePattern = regexp.MustCompile(`^[A-Za-z0-9._/-]+$`)

// Flow is an ordered list of stage names.
type Flow struct {
	stages []string
}

// Default returns the built-in stageflow used when no document exists.
func Default() *Flow {
	return &Flow{stages: []string{"dev", "testing", "main"}}
}

// New builds a flow from the given stage names after validating each one.
func New(stages []string) (*Flow, error) {
	for _, s := range stages {
		if err := ValidateStageName(s); err != nil {
			return nil, err
		}
	}
	out := make([]string, len(stages))
	copy(out, stages)
	return &Flow{stages: out}, nil
}

// ValidateStageName checks a single stage name against the naming rules:
// non-empty, only [A-Za-z0-9._/-], and no leading '-'.
func ValidateStageName(name string) error {
	if name == "" || name[0] == '-' || !stageNamePattern.MatchString(name) {
		return clierrors.InvalidStageName(name)
	}
	return nil
}

// Load reads the stageflow document relative to repoRoot. A missing
// document yields the built-in default flow.
func Load(repoRoot string) (*Flow, error) {
	path := filepath.Join(repoRoot, ConfigRelPath)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Default(), nil
	}

	k := koanf.New(".")
	if err := k.Load(file.Provider(path), kjson.Parser()); err != nil {
		return nil, clierrors.ConfigParseError(path, err)
	}

	stages := k.Strings("stages")
	if len(stages) == 0 {
		return Default(), nil
	}
	return &Flow{stages: stages}, nil
}

// Save validates and persists the given stage list relative to repoRoot,
// overwriting any prior document.
func Save(repoRoot string, stages []string) error {
	flow, err := New(stages)
	if err != nil {
		return err
	}

	path := filepath.Join(repoRoot, ConfigRelPath)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	doc := struct {
		Stages []string `json:"stages"`
	}{Stages: flow.stages}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding stageflow: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing stageflow: %w", err)
	}
	return nil
}

// Stages returns a copy of the ordered stage list.
func (f *Flow) Stages() []string {
	out := make([]string, len(f.stages))
	copy(out, f.stages)
	return out
}

// Contains reports whether the given stage is part of the flow.
func (f *Flow) Contains(stage string) bool {
	return f.index(stage) >= 0
}

// Next returns the stage immediately after the given stage. The second
// return value is false when the stage is last or not in the flow.
func (f *Flow) Next(stage string) (string, bool) {
	i := f.index(stage)
	if i < 0 || i >= len(f.stages)-1 {
		return "", false
	}
	return f.stages[i+1], true
}

// Previous returns the stage immediately before the given stage. The
// second return value is false when the stage is first or not in the flow.
func (f *Flow) Previous(stage string) (string, bool) {
	i := f.index(stage)
	if i <= 0 {
		return "", false
	}
	return f.stages[i-1], true
}

// First returns the lowest stage in the flow.
func (f *Flow) First() string {
	if len(f.stages) == 0 {
		return ""
	}
	return f.stages[0]
}

// Last returns the highest stage in the flow.
func (f *Flow) Last() string {
	if len(f.stages) == 0 {
		return ""
	}
	return f.stages[len(f.stages)-1]
}

// Downstream returns the stages that would be flattened, in order, when
// cascading from the given stage toward the start of the flow. The walk
// runs over the reversed stage list, so for [dev testing main] and from
// "main" it returns [testing dev].
func (f *Flow) Downstream(from string) []string {
	reversed := make([]string, 0, len(f.stages))
	for i := len(f.stages) - 1; i >= 0; i-- {
		reversed = append(reversed, f.stages[i])
	}

	start := -1
	for i, s := range reversed {
		if s == from {
			start = i
			break
		}
	}
	if start < 0 {
		return nil
	}
	return reversed[start+1:]
}

func (f *Flow) index(stage string) int {
	for i, s := range f.stages {
		if s == stage {
			return i
		}
	}
	return -1
}
