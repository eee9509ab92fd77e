// Package prompt assembles the final LLM prompt from the system preamble,
// conversation history, selected context blocks and the user question,
// under a hard character budget.
package prompt

import (
	"embed"
	"fmt"
	"strings"
)

//go:embed templates/*.txt
var templateFS embed.FS

const (
	contextHeader = "### Documentación de referencia:\n"
	noContextLine = "(No se encontró documentación relevante para esta consulta)\n"

	// Reserve kept free for joining newlines and closing boilerplate so a
	// block admitted at the margin cannot push the prompt over budget.
	budgetReserve = 150
)

const fullListInstruction = "IMPORTANTE: el usuario pide una lista completa. " +
	"Enumera TODOS los elementos presentes en la documentación de referencia, " +
	"sin omitir ninguno y sin resumir."

// Turn is one prior exchange included verbatim in the prompt.
type Turn struct {
	Role    string // "user" or "assistant"
	Content string
}

// Builder renders prompts for a fixed domain and budget. Safe for
// concurrent use; it holds no per-query state.
type Builder struct {
	system string
	budget int
}

// NewBuilder loads the system preamble for domain ("banking", "university"
// or "clinic"; anything else falls back to banking). budgetChars bounds the
// whole rendered prompt.
func NewBuilder(domain string, budgetChars int) *Builder {
	data, err := templateFS.ReadFile("templates/" + domain + ".txt")
	if err != nil {
		data, _ = templateFS.ReadFile("templates/banking.txt")
	}
	return &Builder{system: string(data), budget: budgetChars}
}

// Build renders the prompt. Context blocks are admitted in order until the
// budget would be exceeded; later blocks are dropped whole, never truncated
// mid-text. The budget bounds the full prompt including history and query.
func (b *Builder) Build(query string, blocks []string, history []Turn, fullList bool) string {
	hist := renderHistory(history)

	used := len(b.system) + len(hist) + len(contextHeader) + len(query) + budgetReserve
	if fullList {
		used += len(fullListInstruction)
	}

	var ctx strings.Builder
	ctx.WriteString(contextHeader)
	admitted := 0
	for i, block := range blocks {
		line := fmt.Sprintf("[Doc %d] %s\n", i+1, block)
		if used+len(line) > b.budget {
			break
		}
		ctx.WriteString(line)
		used += len(line)
		admitted++
	}
	if admitted == 0 {
		ctx.WriteString(noContextLine)
	}

	var p strings.Builder
	p.WriteString(b.system)
	p.WriteString("\n")
	if hist != "" {
		p.WriteString(hist)
		p.WriteString("\n")
	}
	p.WriteString(ctx.String())
	p.WriteString("\n")
	if fullList {
		p.WriteString(fullListInstruction)
		p.WriteString("\n\n")
	}
	p.WriteString("### Pregunta del usuario:\n")
	p.WriteString(query)
	p.WriteString("\n\n### Respuesta:")
	return p.String()
}

// Budget returns the configured character budget.
func (b *Builder) Budget() int { return b.budget }

func renderHistory(history []Turn) string {
	if len(history) == 0 {
		return ""
	}
	var h strings.Builder
	h.WriteString("### Conversación previa:\n")
	for _, t := range history {
		label := "Usuario"
		if t.Role == "assistant" {
			label = "Asistente"
		}
		h.WriteString(label)
		h.WriteString(": ")
		h.WriteString(t.Content)
		h.WriteString("\n")
	}
	return h.String()
}
