package orchestrator

import (
	"strings"

	"github.com/YousefRadwan1/Bringing-Arabic-Historical-Characters-to-life/internal/rag"
)

// roleInstruction is the fixed role-playing preamble: answer as the
// character, admit ignorance instead of inventing, never break character,
// stay concise.
const roleInstruction = `استخدم المعلومات التالية للإجابة على السؤال.
إذا لم تكن تعرف الإجابة، فقط قل أنك لا تعرف، لا تحاول اختلاق إجابة. أجب كما لو كنت أنت الشخصية التاريخية ولا تحد عن لعب هذا الدور أبدا.

كن مختصرا قدر الإمكان.`

// AssemblePrompt builds the generation prompt from the rendered
// conversation memory, the retrieved passages, and the current question.
func AssemblePrompt(memory string, passages []rag.Hit, question string) string {
	var b strings.Builder

	b.WriteString(roleInstruction)
	b.WriteString("\n\n")

	if memory != "" {
		b.WriteString("المحادثة السابقة:\n")
		b.WriteString(memory)
		b.WriteString("\n\n")
	}

	b.WriteString("المعلومات:\n")
	for _, p := range passages {
		b.WriteString(p.Chunk.Text)
		b.WriteString("\n\n")
	}

	b.WriteString("السؤال الحالي: ")
	b.WriteString(question)
	b.WriteString("\n\nالإجابة:")

	return b.String()
}

// ExtractSources returns the deduplicated source labels of the retrieved
// passages, in retrieval rank order.
func ExtractSources(passages []rag.Hit) []string {
	seen := make(map[string]struct{}, len(passages))
	sources := make([]string, 0, len(passages))

	for _, p := range passages {
		label := p.Chunk.Source
		if label == "" {
			continue
		}
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		sources = append(sources, label)
	}
	return sources
}
