package pipeline

import (
	"bytes"
	"log/slog"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// optimizePDF rewrites a PDF input with pdfcpu. Inputs pdfcpu cannot read
// are kept as they are.
func optimizePDF(logCtx *slog.Logger, name string, data []byte) []byte {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	var out bytes.Buffer
	if err := api.Optimize(bytes.NewReader(data), &out, cfg); err != nil {
		logCtx.Warn("Failed to optimize PDF, keeping original.", "file", name, "error", err)
		return data
	}

	pageCount, err := api.PageCount(bytes.NewReader(out.Bytes()), cfg)
	if err != nil {
		logCtx.Warn("Failed to read optimized PDF, keeping original.", "file", name, "error", err)
		return data
	}
	logCtx.Info("PDF optimized.", "file", name, "pageCount", pageCount, "sizeBefore", len(data), "sizeAfter", out.Len())
	return out.Bytes()
}
