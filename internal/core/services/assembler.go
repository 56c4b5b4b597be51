package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/custodia-labs/docqa/internal/core/domain"
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
	"github.com/custodia-labs/docqa/internal/logger"
)

// ContextSeparator joins chunk blocks in the assembled context.
const ContextSeparator = "\n\n---\n\n"

// ContextAssembler turns ranked chunks and a question into the messages sent
// to the LLM.
type ContextAssembler struct {
	prompts  driven.PromptStore
	maxChars int
}

// NewContextAssembler creates an assembler. prompts may be nil, in which case
// the built-in templates are used. maxChars <= 0 disables the context cap.
func NewContextAssembler(prompts driven.PromptStore, maxChars int) *ContextAssembler {
	return &ContextAssembler{prompts: prompts, maxChars: maxChars}
}

// Assemble builds the system and user messages for question. It returns the
// sources actually placed in the context, which are a prefix of ranked.
func (a *ContextAssembler) Assemble(
	question string, ranked []domain.QueryResult,
) ([]driven.ChatMessage, []domain.QueryResult) {
	block, n := FormatContext(ranked, a.maxChars)
	if n < len(ranked) {
		logger.Warn("Context capped at %d characters: kept %d of %d chunks", a.maxChars, n, len(ranked))
	}

	system := a.template(driven.PromptAnswerSystem, domain.DefaultAnswerSystemPrompt)
	user := a.template(driven.PromptAnswerUser, domain.DefaultAnswerUserPrompt)

	// One pass, so placeholder text inside the context or question is never expanded.
	fill := strings.NewReplacer(
		domain.PromptContextPlaceholder, block,
		domain.PromptQuestionPlaceholder, question,
	)

	return []driven.ChatMessage{
		{Role: driven.RoleSystem, Content: system},
		{Role: driven.RoleUser, Content: fill.Replace(user)},
	}, ranked[:n]
}

func (a *ContextAssembler) template(name, fallback string) string {
	if a.prompts == nil {
		return fallback
	}
	tmpl, err := a.prompts.Load(name)
	if err != nil {
		logger.Warn("Prompt %q unavailable, using built-in: %v", name, err)
		return fallback
	}
	return tmpl
}

// FormatChunk renders one ranked chunk with its header.
func FormatChunk(r domain.QueryResult) string {
	return fmt.Sprintf("[Chunk %d | score %.3f]\n%s", r.ChunkIndex, r.Score, r.Text)
}

// FormatContext joins ranked chunks in order with ContextSeparator and
// returns the block along with how many chunks it holds. With maxChars > 0,
// trailing chunks that would push the block past maxChars characters are
// dropped whole; the top chunk is always kept so the answer has some grounding.
func FormatContext(ranked []domain.QueryResult, maxChars int) (string, int) {
	var b strings.Builder
	size := 0

	for i, r := range ranked {
		part := FormatChunk(r)
		add := utf8.RuneCountInString(part)
		if i > 0 {
			add += utf8.RuneCountInString(ContextSeparator)
		}
		if maxChars > 0 && i > 0 && size+add > maxChars {
			return b.String(), i
		}
		if i > 0 {
			b.WriteString(ContextSeparator)
		}
		b.WriteString(part)
		size += add
	}

	return b.String(), len(ranked)
}
