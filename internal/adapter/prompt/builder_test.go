package prompt

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"ragassist/internal/domain"
)

func TestBuildContainsAllSections(t *testing.T) {
	b := NewBuilder("banking", 12000)

	prompt := b.Build(
		"¿Cuáles son los requisitos del préstamo?",
		[]string{"[Documento: prestamos.pdf] Los requisitos son ingresos demostrables."},
		[]Turn{
			{Role: "user", Content: "Hola"},
			{Role: "assistant", Content: "Hola, ¿en qué puedo ayudarte?"},
		},
		false,
	)

	for _, want := range []string{
		"asistente virtual",
		"Usuario: Hola",
		"Asistente: Hola",
		"### Documentación de referencia:",
		"[Doc 1] [Documento: prestamos.pdf]",
		"### Pregunta del usuario:",
		"¿Cuáles son los requisitos del préstamo?",
		"### Respuesta:",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}

	sysIdx := strings.Index(prompt, "asistente virtual")
	histIdx := strings.Index(prompt, "Usuario: Hola")
	ctxIdx := strings.Index(prompt, "### Documentación")
	qIdx := strings.Index(prompt, "### Pregunta")
	if !(sysIdx < histIdx && histIdx < ctxIdx && ctxIdx < qIdx) {
		t.Error("prompt sections out of order")
	}
}

func TestBuildRespectsBudget(t *testing.T) {
	budget := 2000
	b := NewBuilder("banking", budget)

	var blocks []string
	for i := 0; i < 50; i++ {
		blocks = append(blocks, fmt.Sprintf("[Documento: doc%d.pdf] %s", i, strings.Repeat("contenido ", 30)))
	}

	prompt := b.Build("consulta", blocks, nil, false)
	if len(prompt) > budget {
		t.Errorf("prompt length %d exceeds budget %d", len(prompt), budget)
	}
	if !strings.Contains(prompt, "[Doc 1]") {
		t.Error("no block admitted despite available headroom")
	}
	if strings.Contains(prompt, "[Doc 50]") {
		t.Error("all blocks admitted; budget did not bind")
	}
}

func TestBuildDropsBlocksWholeNeverTruncates(t *testing.T) {
	b := NewBuilder("banking", 1500)

	block := "[Documento: unico.pdf] " + strings.Repeat("palabra ", 40)
	prompt := b.Build("consulta", []string{block, block, block, block, block}, nil, false)

	count := strings.Count(prompt, "[Documento: unico.pdf]")
	for i := 1; i <= count; i++ {
		label := fmt.Sprintf("[Doc %d] ", i)
		idx := strings.Index(prompt, label)
		if idx < 0 {
			t.Fatalf("admitted block %d missing its label", i)
		}
		rest := prompt[idx+len(label):]
		if !strings.HasPrefix(rest, block) {
			t.Errorf("block %d was truncated", i)
		}
	}
}

func TestBuildNoContextPlaceholder(t *testing.T) {
	b := NewBuilder("banking", 12000)

	prompt := b.Build("consulta", nil, nil, false)
	if !strings.Contains(prompt, "(No se encontró documentación relevante para esta consulta)") {
		t.Error("missing no-context placeholder")
	}
}

func TestBuildFullListInstruction(t *testing.T) {
	b := NewBuilder("university", 12000)

	with := b.Build("dame toda la lista de materias", []string{"[Documento: plan.pdf] Materias."}, nil, true)
	without := b.Build("resumen de materias", []string{"[Documento: plan.pdf] Materias."}, nil, false)

	if !strings.Contains(with, "Enumera TODOS los elementos") {
		t.Error("full-list prompt missing enumeration instruction")
	}
	if strings.Contains(without, "Enumera TODOS los elementos") {
		t.Error("regular prompt must not carry the enumeration instruction")
	}
}

func TestNewBuilderUnknownDomainFallsBack(t *testing.T) {
	b := NewBuilder("nonexistent", 12000)
	if b.system == "" {
		t.Fatal("fallback template not loaded")
	}
	if !strings.Contains(b.system, "entidad bancaria") {
		t.Error("unknown domain should fall back to the banking preamble")
	}
}

func TestRenderSnapshot(t *testing.T) {
	s := &domain.Snapshot{
		SubjectKey:  "cli-42",
		DisplayName: "María López",
		Products: []domain.Product{
			{ServiceType: "cuenta", ServiceKey: "CA-001", Status: "activa"},
		},
		RecentTransactions: []domain.Transaction{
			{
				Timestamp:   time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
				Type:        "transferencia",
				Amount:      1500.50,
				Currency:    "ARS",
				Description: "pago de servicios",
			},
		},
	}

	out := RenderSnapshot(s)
	for _, want := range []string{
		"INFORMACION DEL CLIENTE:",
		"Nombre: María López",
		"Productos activos:",
		"- cuenta CA-001 (activa)",
		"Movimientos recientes:",
		"- 2026-03-14 transferencia 1500.50 ARS pago de servicios",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot missing %q in:\n%s", want, out)
		}
	}
}

func TestRenderSnapshotNil(t *testing.T) {
	if got := RenderSnapshot(nil); got != "" {
		t.Errorf("nil snapshot rendered %q, want empty", got)
	}
}
