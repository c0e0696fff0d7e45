package directive

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainText(t *testing.T) {
	clean, directives := Parse("Great job today! Keep it up.")

	assert.Equal(t, "Great job today! Keep it up.", clean)
	assert.Empty(t, directives)
}

func TestParseLogBlock(t *testing.T) {
	clean, directives := Parse(`Logged that for you. [LOG]{"key":"Steps","value":8500}[/LOG]`)

	assert.Equal(t, "Logged that for you.", clean)
	require.Len(t, directives, 1)
	require.NoError(t, directives[0].Err)
	assert.Equal(t, KindLog, directives[0].Kind)

	payload := directives[0].Payload.(*LogPayload)
	assert.Equal(t, "Steps", payload.Key)
	assert.Equal(t, 8500.0, payload.Value.Float())
}

func TestParseStringValueTolerated(t *testing.T) {
	_, directives := Parse(`[LOG]{"key":"Steps","value":"8500"}[/LOG]`)

	require.Len(t, directives, 1)
	require.NoError(t, directives[0].Err)
	assert.Equal(t, 8500.0, directives[0].Payload.(*LogPayload).Value.Float())
}

func TestParsePreservesTextualOrderAcrossKinds(t *testing.T) {
	text := `First things first.
[TRACKER]{"name":"Water","unit":"glasses","direction":"increase"}[/TRACKER]
Now the habit:
[HABIT]{"title":"Drink water","linked_tracker_id":"Water","tracker_threshold":8}[/HABIT]
And a note to self.
[MEMORY]{"text":"Prefers morning reminders","type":"preference"}[/MEMORY]`

	clean, directives := Parse(text)

	require.Len(t, directives, 3)
	assert.Equal(t, KindTracker, directives[0].Kind)
	assert.Equal(t, KindHabit, directives[1].Kind)
	assert.Equal(t, KindMemory, directives[2].Kind)

	assert.Contains(t, clean, "First things first.")
	assert.Contains(t, clean, "Now the habit:")
	assert.Contains(t, clean, "And a note to self.")
	assert.NotContains(t, clean, "[TRACKER]")
	assert.NotContains(t, clean, "[HABIT]")
	assert.NotContains(t, clean, "[MEMORY]")
}

func TestParseMalformedJSONReportedAndStripped(t *testing.T) {
	clean, directives := Parse(`Oops. [HABIT]{"title": "Walk daily",}[/HABIT] Sorry about that.`)

	require.Len(t, directives, 1)
	assert.Equal(t, KindHabit, directives[0].Kind)
	require.Error(t, directives[0].Err)
	assert.Contains(t, directives[0].Err.Error(), "invalid JSON")
	assert.Equal(t, `{"title": "Walk daily",}`, directives[0].Raw)

	// Stripped regardless of decode failure.
	assert.NotContains(t, clean, "[HABIT]")
	assert.Contains(t, clean, "Oops.")
	assert.Contains(t, clean, "Sorry about that.")
}

func TestParseMultilinePayload(t *testing.T) {
	text := "[HABIT]{\n  \"title\": \"Evening stretch\",\n  \"difficulty\": \"easy\"\n}[/HABIT]"
	clean, directives := Parse(text)

	assert.Empty(t, clean)
	require.Len(t, directives, 1)
	require.NoError(t, directives[0].Err)
	assert.Equal(t, "Evening stretch", directives[0].Payload.(*HabitPayload).Title)
}

func TestParseCollapsesBlankRuns(t *testing.T) {
	text := "Before.\n\n\n[LOG]{\"key\":\"Weight\",\"value\":80}[/LOG]\n\n\n\nAfter."
	clean, _ := Parse(text)

	assert.NotContains(t, clean, "\n\n\n")
	assert.True(t, strings.HasPrefix(clean, "Before."))
	assert.True(t, strings.HasSuffix(clean, "After."))
}

func TestParseTwoConsecutiveHabits(t *testing.T) {
	text := `[HABIT]{"title":"Walk 20 minutes"}[/HABIT][HABIT]{"title":"Sleep by 11pm"}[/HABIT]`
	clean, directives := Parse(text)

	assert.Empty(t, clean)
	require.Len(t, directives, 2)
	assert.Equal(t, "Walk 20 minutes", directives[0].Payload.(*HabitPayload).Title)
	assert.Equal(t, "Sleep by 11pm", directives[1].Payload.(*HabitPayload).Title)
}

func TestParseUpdateHabitPartialFields(t *testing.T) {
	_, directives := Parse(`[UPDATE_HABIT]{"habit_id":"h1","status":"active","tracker_threshold":75}[/UPDATE_HABIT]`)

	require.Len(t, directives, 1)
	require.NoError(t, directives[0].Err)

	payload := directives[0].Payload.(*UpdateHabitPayload)
	assert.Equal(t, "h1", payload.HabitID)
	require.NotNil(t, payload.Status)
	assert.Equal(t, "active", *payload.Status)
	require.NotNil(t, payload.TrackerThreshold)
	assert.Equal(t, 75.0, *payload.TrackerThreshold)
	assert.Nil(t, payload.Title)
}

func TestParseUnknownTagLeftAlone(t *testing.T) {
	clean, directives := Parse(`[REMINDER]{"at":"9am"}[/REMINDER] ok`)

	assert.Empty(t, directives)
	assert.Equal(t, `[REMINDER]{"at":"9am"}[/REMINDER] ok`, clean)
}
