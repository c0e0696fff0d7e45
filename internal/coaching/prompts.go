package coaching

import (
	"fmt"
	"strings"

	"github.com/kairoshq/kairos/internal/model"
)

// Directive syntax shared by both session kinds. The executor understands
// exactly these blocks; anything else passes through as plain text.
const directiveReference = `ACTIONS
You can change the user's plan by embedding action blocks in your message.
Each block wraps a single JSON object and is removed before the user sees
the text, so always describe what you did in plain language too.

[TRACKER]{"name":"Water","unit":"glasses","direction":"increase"}[/TRACKER]
[HABIT]{"title":"...","description":"...","difficulty":"easy|medium|hard","frequency":"daily","reasoning":"...","order":1,"linked_tracker_id":"<tracker name or id>","tracker_threshold":8}[/HABIT]
[LOG]{"key":"<tracker name or id>","value":8500,"notes":"optional"}[/LOG]
[MEMORY]{"text":"...","type":"preference|schedule|motivation|challenge|general"}[/MEMORY]
[UPDATE_HABIT]{"habit_id":"...","title":"...","status":"active|paused|archived"}[/UPDATE_HABIT]
[DELETE_HABIT]{"habit_id":"..."}[/DELETE_HABIT]

Rules:
- One habit at a time. A new habit is only allowed once every active habit
  is formed (8 completed days). Start small.
- A habit linked to a tracker completes automatically when the logged value
  meets its threshold; do not ask the user to mark it done as well.
- When the user mentions a number for a tracker, log it with [LOG].

REPLY FORMAT
Respond with a single JSON object:
{"phase":"<your current phase>","message":"<your reply, action blocks included>"}`

const initialPersona = `You are a personal habit coach. You are warm, direct,
and practical. You never prescribe a plan before you understand the person:
their goal, their constraints, what has failed before.

This is the user's FIRST session. Work through these phases in order and
declare the one you are in with every reply:
- exploring: understand the goal, history, and constraints. Ask one question
  at a time.
- proposing: suggest a primary tracker and a single starter habit. Explain
  the reasoning and invite pushback.
- creating: the user agreed; emit the action blocks that create the plan.
- complete: the plan exists; wrap up and tell the user what happens next.`

const reviewPersona = `You are a personal habit coach reviewing progress with
a returning user. Be honest about what the data shows, generous about effort,
and concrete about the next adjustment.

Work through these stages in order and declare the one you are in with every
reply:
- opening: name why this session is happening and ask how it went from the
  user's side.
- mid_conversation: dig into what worked and what did not.
- proposing_change: suggest at most one concrete adjustment, with action
  blocks if the user agrees.
- closing: summarize the decisions and confirm the next check-in.`

func buildInitialSystemPrompt(goal *model.Goal, memories []*model.Memory) string {
	var b strings.Builder
	b.WriteString(initialPersona)
	b.WriteString("\n\n")
	writeGoalSection(&b, goal)
	writeMemorySection(&b, memories)
	b.WriteString("\n")
	b.WriteString(directiveReference)
	return b.String()
}

func buildReviewSystemPrompt(goal *model.Goal, snap *Snapshot, memories []*model.Memory, summaries []*model.SessionSummary, trigger Trigger) string {
	var b strings.Builder
	b.WriteString(reviewPersona)
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "SESSION TRIGGER\n%s: %s\n\n", trigger.Type, trigger.Reason)
	writeGoalSection(&b, goal)

	b.WriteString("RECENT PERFORMANCE\n")
	b.WriteString(snap.Text())
	b.WriteString("\n")

	if len(summaries) > 0 {
		b.WriteString("PREVIOUS SESSIONS (oldest first)\n")
		for _, s := range summaries {
			for _, p := range s.KeyPoints {
				b.WriteString("- " + p + "\n")
			}
			for _, a := range s.ActionItems {
				b.WriteString("- action item: " + a + "\n")
			}
		}
		b.WriteString("\n")
	}

	writeMemorySection(&b, memories)
	b.WriteString("\n")
	b.WriteString(directiveReference)
	return b.String()
}

func writeGoalSection(b *strings.Builder, goal *model.Goal) {
	fmt.Fprintf(b, "GOAL\nTitle: %s\n", goal.Title)
	if goal.Description != "" {
		fmt.Fprintf(b, "Description: %s\n", goal.Description)
	}
	if goal.PrimaryMetricName != "" {
		fmt.Fprintf(b, "Primary metric: %s (%s, %s)\n", goal.PrimaryMetricName, goal.PrimaryMetricUnit, goal.Direction)
	}
	if goal.InitialValue != nil && goal.TargetValue != nil {
		fmt.Fprintf(b, "From %g to %g", *goal.InitialValue, *goal.TargetValue)
		if goal.TargetDate != nil {
			fmt.Fprintf(b, " by %s", *goal.TargetDate)
		}
		b.WriteString("\n")
	}
	if goal.AIContext.Summary != "" {
		fmt.Fprintf(b, "Coach notes: %s\n", goal.AIContext.Summary)
	}
	b.WriteString("\n")
}

func writeMemorySection(b *strings.Builder, memories []*model.Memory) {
	if len(memories) == 0 {
		return
	}
	b.WriteString("WHAT YOU KNOW ABOUT THIS USER\n")
	for _, m := range memories {
		fmt.Fprintf(b, "- [%s] %s\n", m.Type, m.Text)
	}
}

// buildConversationPrompt renders the running transcript as the user prompt.
// Directive blocks were stripped from stored assistant messages, so the
// model sees the conversation the way the user did.
func buildConversationPrompt(messages model.MessageList, userText string) string {
	var b strings.Builder
	b.WriteString("Conversation so far:\n\n")
	for _, m := range messages {
		role := "User"
		if m.Role == "assistant" {
			role = "Coach"
		}
		fmt.Fprintf(&b, "%s: %s\n\n", role, m.Content)
	}
	fmt.Fprintf(&b, "User: %s\n\nReply as the coach.", userText)
	return b.String()
}

const summarySystemPrompt = `You summarize a coaching session into structured
minutes. Respond with a single JSON object and nothing else:
{"key_points":["..."],"habits_added":["..."],"next_check_in":"...","action_items":["..."]}`

func buildSummaryPrompt(session *model.CoachingSession) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session kind: %s\n\nTranscript:\n\n", session.Kind)
	for _, m := range session.Messages {
		fmt.Fprintf(&b, "%s: %s\n\n", m.Role, m.Content)
		for _, a := range m.ExecutedActions {
			if a.Success {
				fmt.Fprintf(&b, "(action executed: %s)\n", a.Type)
			}
		}
	}
	b.WriteString("Summarize this session.")
	return b.String()
}
