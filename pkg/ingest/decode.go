package ingest

import (
	"fmt"
	"strings"

	"github.com/goccy/go-json"

	"github.com/vanderheijden86/jamgantt/pkg/model"
)

// FeedMode selects how feed lines become tokens.
type FeedMode int

const (
	// FeedStep treats every line as a step trigger.
	FeedStep FeedMode = iota
	// FeedStructured additionally decodes JSON object lines into tasks.
	FeedStructured
)

func (m FeedMode) String() string {
	if m == FeedStructured {
		return "structured"
	}
	return "step"
}

// ParseFeedMode accepts "step" (default) or "structured".
func ParseFeedMode(s string) (FeedMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "step":
		return FeedStep, nil
	case "structured", "json":
		return FeedStructured, nil
	default:
		return FeedStep, fmt.Errorf("unknown feed mode %q (want step or structured)", s)
	}
}

// LineDecoder turns feed lines into tokens. Each producer owns its decoder;
// it is not safe for concurrent use.
type LineDecoder struct {
	mode   FeedMode
	length uint
	next   uint
}

// NewLineDecoder returns a decoder cycling through recipeLen steps.
func NewLineDecoder(mode FeedMode, recipeLen uint) *LineDecoder {
	if recipeLen == 0 {
		recipeLen = 1
	}
	return &LineDecoder{mode: mode, length: recipeLen}
}

// Decode maps one line to a token. Outside structured task lines the content
// is ignored: every line, blank or not, triggers the decoder's next step. In
// structured mode a line starting with '{' must decode to a valid task.
func (d *LineDecoder) Decode(line string) (Token, error) {
	trimmed := strings.TrimSpace(line)

	if d.mode == FeedStructured && strings.HasPrefix(trimmed, "{") {
		var task model.Task
		if err := json.Unmarshal([]byte(trimmed), &task); err != nil {
			return Token{}, fmt.Errorf("decoding task line: %w", err)
		}
		if err := task.Validate(); err != nil {
			return Token{}, err
		}
		return Token{Task: &task, Line: line}, nil
	}

	step := d.next
	d.next = (d.next + 1) % d.length
	return Token{Step: step, Line: line}, nil
}
