// Package directive extracts typed action directives from free-form agent
// text. Directives are bracketed blocks wrapping a JSON object, e.g.
//
//	[LOG]{"key":"Steps","value":8500}[/LOG]
//
// Recognized blocks are always stripped from the returned clean text, decode
// success or not, and parse failures are reported as directives carrying the
// error rather than dropped.
package directive

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/kairoshq/kairos/internal/model"
)

type Kind string

const (
	KindHabit       Kind = "HABIT"
	KindTracker     Kind = "TRACKER"
	KindLog         Kind = "LOG"
	KindMemory      Kind = "MEMORY"
	KindDeleteHabit Kind = "DELETE_HABIT"
	KindUpdateHabit Kind = "UPDATE_HABIT"
)

var kinds = []Kind{KindHabit, KindTracker, KindLog, KindMemory, KindDeleteHabit, KindUpdateHabit}

// Directive is one parsed action block. When Err is nil, Payload holds the
// kind-specific payload struct; otherwise Raw holds the undecodable inner
// text.
type Directive struct {
	Kind    Kind
	Payload any
	Raw     string
	Err     error
}

// HabitPayload creates a habit. The tracker reference may be an id or a
// name; resolution happens at execution time.
type HabitPayload struct {
	Title            string      `json:"title"`
	Description      string      `json:"description"`
	Difficulty       string      `json:"difficulty"`
	Frequency        string      `json:"frequency"`
	Reasoning        string      `json:"reasoning"`
	Position         int         `json:"order"`
	LinkedTrackerRef string      `json:"linked_tracker_id"`
	TrackerThreshold *FlexNumber `json:"tracker_threshold"`
}

type TrackerPayload struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Unit        string      `json:"unit"`
	Type        string      `json:"type"`
	Direction   string      `json:"direction"`
	TargetValue *FlexNumber `json:"target_value"`
}

// LogPayload logs a tracker value for today. Key is a tracker name or id.
type LogPayload struct {
	Key   string     `json:"key"`
	Value FlexNumber `json:"value"`
	Notes string     `json:"notes"`
}

type MemoryPayload struct {
	Text string `json:"text"`
	Type string `json:"type"`
}

type DeleteHabitPayload struct {
	HabitID string `json:"habit_id"`
}

type UpdateHabitPayload struct {
	HabitID string `json:"habit_id"`
	model.HabitUpdate
}

// FlexNumber decodes JSON numbers that agents sometimes emit as quoted
// strings ("8500" instead of 8500).
type FlexNumber float64

func (n *FlexNumber) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "" || s == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("not a number: %s", string(data))
	}
	*n = FlexNumber(f)
	return nil
}

func (n FlexNumber) Float() float64 { return float64(n) }

var (
	blockPatterns = buildPatterns()
	blankRuns     = regexp.MustCompile(`\n{3,}`)
)

func buildPatterns() map[Kind]*regexp.Regexp {
	m := make(map[Kind]*regexp.Regexp, len(kinds))
	for _, k := range kinds {
		name := regexp.QuoteMeta(string(k))
		m[k] = regexp.MustCompile(`\[` + name + `\](?s:(.*?))\[/` + name + `\]`)
	}
	return m
}

type span struct {
	start, end int
	kind       Kind
	inner      string
}

// Parse extracts all directive blocks from text in order of appearance and
// returns the text with every recognized block removed, runs of 3+ blank
// lines collapsed, and surrounding whitespace trimmed.
func Parse(text string) (string, []Directive) {
	var spans []span
	for _, k := range kinds {
		for _, m := range blockPatterns[k].FindAllStringSubmatchIndex(text, -1) {
			spans = append(spans, span{
				start: m[0],
				end:   m[1],
				kind:  k,
				inner: text[m[2]:m[3]],
			})
		}
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })

	var clean strings.Builder
	directives := make([]Directive, 0, len(spans))
	last := 0
	for _, s := range spans {
		if s.start < last {
			continue // overlapping block already consumed
		}
		clean.WriteString(text[last:s.start])
		last = s.end
		directives = append(directives, decode(s.kind, s.inner))
	}
	clean.WriteString(text[last:])

	out := blankRuns.ReplaceAllString(clean.String(), "\n\n")
	return strings.TrimSpace(out), directives
}

func decode(kind Kind, inner string) Directive {
	raw := strings.TrimSpace(inner)

	var payload any
	switch kind {
	case KindHabit:
		payload = &HabitPayload{}
	case KindTracker:
		payload = &TrackerPayload{}
	case KindLog:
		payload = &LogPayload{}
	case KindMemory:
		payload = &MemoryPayload{}
	case KindDeleteHabit:
		payload = &DeleteHabitPayload{}
	case KindUpdateHabit:
		payload = &UpdateHabitPayload{}
	}

	if err := json.Unmarshal([]byte(raw), payload); err != nil {
		return Directive{Kind: kind, Raw: raw, Err: fmt.Errorf("invalid JSON: %w", err)}
	}

	return Directive{Kind: kind, Payload: payload, Raw: raw}
}
