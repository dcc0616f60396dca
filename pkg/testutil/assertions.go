package testutil

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// AssertTaskCount verifies the expected number of tasks.
func AssertTaskCount(t *testing.T, tasks []model.Task, expected int) {
	t.Helper()
	if len(tasks) != expected {
		t.Errorf("expected %d tasks, got %d", expected, len(tasks))
	}
}

// AssertAllValid verifies all tasks pass validation.
func AssertAllValid(t *testing.T, tasks []model.Task) {
	t.Helper()
	for i, task := range tasks {
		if err := task.Validate(); err != nil {
			t.Errorf("task %d (%s) invalid: %v", i, task.Name, err)
		}
	}
}

// AssertTaskNames verifies the task list holds exactly names, in order.
func AssertTaskNames(t *testing.T, tasks []model.Task, names ...string) {
	t.Helper()
	got := make([]string, len(tasks))
	for i, task := range tasks {
		got[i] = task.Name
	}
	if strings.Join(got, ",") != strings.Join(names, ",") {
		t.Errorf("task names = %q, want %q", got, names)
	}
}

// AssertContainsAll verifies s contains every want.
func AssertContainsAll(t *testing.T, s string, wants ...string) {
	t.Helper()
	for _, w := range wants {
		if !strings.Contains(s, w) {
			t.Errorf("missing %q in:\n%s", w, s)
		}
	}
}

// WriteFeedFile writes content to name inside a temp directory and returns
// the path. The directory is cleaned up after the test.
func WriteFeedFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write feed file: %v", err)
	}
	return path
}
