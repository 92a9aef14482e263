package receipt

import (
	"context"
	"io"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Issuer turns a finalized payment into a durable receipt document: render
// the template, optionally print to PDF, archive through the configured
// storage and hand back the reference.
type Issuer struct {
	format   string
	renderer PDFRenderer
	storage  Storage
	logger   *zap.Logger
}

// NewIssuer creates a receipt issuer. The renderer may be nil when the
// configured format is html.
func NewIssuer(format string, storage Storage, renderer PDFRenderer, logger *zap.Logger) *Issuer {
	if format != "pdf" {
		format = "html"
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Issuer{
		format:   format,
		renderer: renderer,
		storage:  storage,
		logger:   logger,
	}
}

// Issue renders and archives the receipt, returning its storage reference
func (i *Issuer) Issue(ctx context.Context, schoolID uuid.UUID, doc *Document) (string, error) {
	html, err := RenderHTML(doc)
	if err != nil {
		return "", err
	}

	data := html
	name := doc.ReceiptNumber + ".html"
	contentType := "text/html; charset=utf-8"
	if i.format == "pdf" && i.renderer != nil {
		pdf, err := i.renderer.Render(ctx, html)
		if err != nil {
			return "", err
		}
		data = pdf
		name = doc.ReceiptNumber + ".pdf"
		contentType = "application/pdf"
	}

	reference, err := i.storage.Store(ctx, schoolID, name, data, contentType)
	if err != nil {
		return "", err
	}
	i.logger.Info("receipt issued",
		zap.String("receipt_number", doc.ReceiptNumber),
		zap.String("reference", reference))
	return reference, nil
}

// Open streams a previously issued receipt with its content type
func (i *Issuer) Open(ctx context.Context, reference string) (io.ReadCloser, string, error) {
	reader, err := i.storage.Get(ctx, reference)
	if err != nil {
		return nil, "", err
	}
	contentType := "text/html; charset=utf-8"
	if strings.HasSuffix(reference, ".pdf") {
		contentType = "application/pdf"
	}
	return reader, contentType, nil
}
