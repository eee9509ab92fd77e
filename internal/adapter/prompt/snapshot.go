package prompt

import (
	"fmt"
	"sort"
	"strings"

	"ragassist/internal/domain"
)

// RenderSnapshot formats structured per-subject data as a context block.
// Fields arrive pre-masked by the caller; this renderer prints whatever it
// receives. Empty snapshots render as "".
func RenderSnapshot(s *domain.Snapshot) string {
	if s == nil {
		return ""
	}

	var b strings.Builder
	b.WriteString("INFORMACION DEL CLIENTE:\n")

	if s.DisplayName != "" {
		fmt.Fprintf(&b, "Nombre: %s\n", s.DisplayName)
	}
	if s.DocumentID != "" {
		fmt.Fprintf(&b, "Documento: %s\n", s.DocumentID)
	}
	if s.TaxID != "" {
		fmt.Fprintf(&b, "Identificación fiscal: %s\n", s.TaxID)
	}
	if s.Email != "" {
		fmt.Fprintf(&b, "Email: %s\n", s.Email)
	}
	if s.Phone != "" {
		fmt.Fprintf(&b, "Teléfono: %s\n", s.Phone)
	}

	if len(s.Products) > 0 {
		b.WriteString("\nProductos activos:\n")
		for _, p := range s.Products {
			fmt.Fprintf(&b, "- %s %s (%s)", p.ServiceType, p.ServiceKey, p.Status)
			keys := make([]string, 0, len(p.Extra))
			for k := range p.Extra {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				fmt.Fprintf(&b, " %s=%s", k, p.Extra[k])
			}
			b.WriteString("\n")
		}
	}

	if len(s.RecentTransactions) > 0 {
		b.WriteString("\nMovimientos recientes:\n")
		for _, t := range s.RecentTransactions {
			fmt.Fprintf(&b, "- %s %s", t.Timestamp.Format("2006-01-02"), t.Type)
			if t.Amount != 0 {
				fmt.Fprintf(&b, " %.2f %s", t.Amount, t.Currency)
			}
			if t.Description != "" {
				fmt.Fprintf(&b, " %s", t.Description)
			}
			b.WriteString("\n")
		}
	}

	return b.String()
}
