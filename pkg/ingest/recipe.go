package ingest

import (
	"fmt"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// Op is the kind of task-list mutation a recipe step performs.
type Op int

const (
	OpPush Op = iota
	OpPop
	OpClear
)

func (o Op) String() string {
	switch o {
	case OpPush:
		return "push"
	case OpPop:
		return "pop"
	case OpClear:
		return "clear"
	default:
		return fmt.Sprintf("Op(%d)", int(o))
	}
}

// Step is one entry of a Recipe.
type Step struct {
	Op   Op
	Task model.Task // used by OpPush
}

// Recipe maps step tokens to task-list mutations.
type Recipe []Step

// DemoRecipe is the fixed five-step demonstration cycle.
func DemoRecipe() Recipe {
	return Recipe{
		{Op: OpPush, Task: model.Task{
			Name: "Init capteurs", FreqStart: 100, FreqEnd: 300,
			TimeStart: 0, TimeEnd: 300, Band: model.BandA20To500,
		}},
		{Op: OpPush, Task: model.Task{
			Name: "Transmission", FreqStart: 1000, FreqEnd: 2500,
			TimeStart: 300, TimeEnd: 600, Band: model.BandA1000To2500,
		}},
		{Op: OpPop},
		{Op: OpPush, Task: model.Task{
			Name: "Sleep mode", FreqStart: 5000, FreqEnd: 5500,
			TimeStart: 0, TimeEnd: 1000, Band: model.BandA2400To6000,
		}},
		{Op: OpClear},
	}
}

// Len returns the number of steps.
func (r Recipe) Len() uint {
	return uint(len(r))
}

// StepAt returns the step selected by step mod Len.
func (r Recipe) StepAt(step uint) (Step, bool) {
	if len(r) == 0 {
		return Step{}, false
	}
	return r[step%r.Len()], true
}

// StepName describes a step for logs and the status line.
func (r Recipe) StepName(step uint) string {
	s, ok := r.StepAt(step)
	if !ok {
		return "none"
	}
	if s.Op == OpPush {
		return fmt.Sprintf("push %q", s.Task.Name)
	}
	return s.Op.String()
}

// Apply performs step mod Len on tasks and returns the updated list. Popping
// or clearing an empty list leaves it empty.
func (r Recipe) Apply(step uint, tasks []model.Task) []model.Task {
	s, ok := r.StepAt(step)
	if !ok {
		return tasks
	}
	switch s.Op {
	case OpPush:
		return append(tasks, s.Task)
	case OpPop:
		if len(tasks) > 0 {
			return tasks[:len(tasks)-1]
		}
	case OpClear:
		return tasks[:0]
	}
	return tasks
}
