package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecodeReplyEnvelope(t *testing.T) {
	env := DecodeReply(`{"phase":"proposing","message":"Here is the plan."}`)

	assert.Equal(t, "proposing", env.Phase)
	assert.Equal(t, "Here is the plan.", env.Message)
}

func TestDecodeReplyFencedJSON(t *testing.T) {
	env := DecodeReply("```json\n{\"phase\":\"exploring\",\"message\":\"Tell me more.\"}\n```")

	assert.Equal(t, "exploring", env.Phase)
	assert.Equal(t, "Tell me more.", env.Message)
}

func TestDecodeReplyBareText(t *testing.T) {
	env := DecodeReply("Just keep going, you are doing great.")

	assert.Empty(t, env.Phase)
	assert.Equal(t, "Just keep going, you are doing great.", env.Message)
}

func TestDecodeReplyJSONWithoutMessageFallsBack(t *testing.T) {
	env := DecodeReply(`{"phase":"exploring"}`)

	// No usable message field, keep the raw text so nothing is lost.
	assert.Empty(t, env.Phase)
	assert.Equal(t, `{"phase":"exploring"}`, env.Message)
}

func TestDecodeReplyPreservesDirectiveBlocks(t *testing.T) {
	env := DecodeReply(`{"phase":"creating","message":"Done. [HABIT]{\"title\":\"Walk\"}[/HABIT]"}`)

	assert.Contains(t, env.Message, "[HABIT]")
}
