package ingest

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// ErrInvalidRecipe wraps every recipe file validation failure.
var ErrInvalidRecipe = errors.New("invalid recipe")

// recipeFile is the YAML layout of a user recipe:
//
//	steps:
//	  - op: push
//	    task: {name: Scan, freq_start: 100, freq_end: 300, time_start: 0, time_end: 200, band: A20_500}
//	  - op: pop
//	  - op: clear
type recipeFile struct {
	Steps []recipeStep `yaml:"steps"`
}

type recipeStep struct {
	Op   string      `yaml:"op"`
	Task *model.Task `yaml:"task,omitempty"`
}

// ParseOp accepts push, pop or clear.
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "push":
		return OpPush, nil
	case "pop":
		return OpPop, nil
	case "clear":
		return OpClear, nil
	default:
		return 0, fmt.Errorf("unknown op %q (want push, pop or clear)", s)
	}
}

// LoadRecipe reads a recipe from a YAML file.
func LoadRecipe(path string) (Recipe, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading recipe: %w", err)
	}
	r, err := ParseRecipe(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return r, nil
}

// ParseRecipe decodes and validates a YAML recipe. Push steps need a valid
// task; pop and clear steps must not carry one.
func ParseRecipe(data []byte) (Recipe, error) {
	var f recipeFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidRecipe, err)
	}
	if len(f.Steps) == 0 {
		return nil, fmt.Errorf("%w: no steps", ErrInvalidRecipe)
	}

	r := make(Recipe, 0, len(f.Steps))
	for i, st := range f.Steps {
		op, err := ParseOp(st.Op)
		if err != nil {
			return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidRecipe, i, err)
		}
		step := Step{Op: op}
		switch {
		case op == OpPush && st.Task == nil:
			return nil, fmt.Errorf("%w: step %d: push without a task", ErrInvalidRecipe, i)
		case op == OpPush:
			if err := st.Task.Validate(); err != nil {
				return nil, fmt.Errorf("%w: step %d: %v", ErrInvalidRecipe, i, err)
			}
			step.Task = *st.Task
		case st.Task != nil:
			return nil, fmt.Errorf("%w: step %d: %s takes no task", ErrInvalidRecipe, i, op)
		}
		r = append(r, step)
	}
	return r, nil
}
