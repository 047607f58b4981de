package prompt

import (
	"strings"

	"github.com/campusbuddy/chat-backend/internal/entity"
)

// persona is the fixed system instruction for the chat model. Course
// recommendations found in the retrieved context must be returned as bare
// links; everything else is prose. The reply classifier depends on that
// contract.
const persona = `You are CampusBuddy, a witty and emotionally aware companion for students. You help with academic and everyday questions in a warm, casual tone, matching the user's language (reply in Hinglish when the user mixes Hindi and English). Keep replies short, supportive and human.

Course recommendations: when the retrieved context contains a course that clearly matches what the user needs, reply with that course URL and nothing else: no greeting, no extra words, just the bare link. For every other reply, answer in prose and never paste bare URLs on their own.

If the conversation summary suggests the user mentioned an exam or topic you are unsure about, ask casually for clarification instead of guessing.`

// Assembler formats retrieved chunks, the running conversation summary and
// the new question into the message list sent to the chat model.
type Assembler struct{}

func NewAssembler() *Assembler { return &Assembler{} }

// Build returns the chat messages for one question-answering turn.
func (a *Assembler) Build(results []entity.SearchResult, summary, question string) []entity.ChatMessage {
	var b strings.Builder

	b.WriteString("Context:\n")
	if len(results) == 0 {
		b.WriteString("(no relevant document excerpts found)\n")
	}
	for _, r := range results {
		b.WriteString(r.Chunk.Text)
		b.WriteString("\n---\n")
	}

	b.WriteString("\nConversation summary:\n")
	if summary == "" {
		b.WriteString("(new conversation)\n")
	} else {
		b.WriteString(summary)
		b.WriteString("\n")
	}

	b.WriteString("\nUser's question:\n")
	b.WriteString(question)

	return []entity.ChatMessage{
		{Role: entity.RoleSystem, Content: persona},
		{Role: entity.RoleUser, Content: b.String()},
	}
}
