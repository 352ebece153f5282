// Package reportfs escribe el informe de balance como JSON y Markdown.
package reportfs

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/toropanov/capetica/internal/application/balance"
	"github.com/toropanov/capetica/internal/domain"
)

const (
	JSONName     = "balance-sim-report.json"
	MarkdownName = "balance-sim-report.md"
)

// Writer implementa ports.ReportWriter sobre un directorio.
type Writer struct {
	dir string
}

// New crea el writer. El directorio se crea al escribir.
func New(dir string) *Writer {
	return &Writer{dir: dir}
}

// WriteSimReport escribe los dos archivos y devuelve sus rutas.
func (w *Writer) WriteSimReport(_ context.Context, r domain.SimReport) ([]string, error) {
	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return nil, fmt.Errorf("reportfs.WriteSimReport: mkdir %q: %w", w.dir, err)
	}
	raw, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("reportfs.WriteSimReport: encode: %w", err)
	}

	jsonPath := filepath.Join(w.dir, JSONName)
	if err := os.WriteFile(jsonPath, raw, 0o644); err != nil {
		return nil, fmt.Errorf("reportfs.WriteSimReport: write %q: %w", jsonPath, err)
	}
	mdPath := filepath.Join(w.dir, MarkdownName)
	if err := os.WriteFile(mdPath, []byte(balance.Markdown(r)), 0o644); err != nil {
		return nil, fmt.Errorf("reportfs.WriteSimReport: write %q: %w", mdPath, err)
	}
	return []string{jsonPath, mdPath}, nil
}
