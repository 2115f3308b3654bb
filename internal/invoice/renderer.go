package invoice

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"puntoventa-be/internal/logger"

	"go.uber.org/zap"
)

// Renderer turns a finalized invoice record into document bytes. It is an
// external collaborator and is never called before the invoice row is
// persisted.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]byte, error)
}

type RenderRequest struct {
	Invoice  *Invoice `json:"invoice"`
	Customer Party    `json:"customer"`
	Merchant Party    `json:"merchant"`
}

type httpRenderer struct {
	baseURL    string
	httpClient *http.Client
}

func NewHTTPRenderer(baseURL string) Renderer {
	return &httpRenderer{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

func (r *httpRenderer) Render(ctx context.Context, req RenderRequest) ([]byte, error) {
	log := logger.FromCtx(ctx).With(
		zap.Int64("invoice_id", req.Invoice.ID),
		zap.String("invoice_number", req.Invoice.InvoiceNumber),
	)

	body, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", r.baseURL+"/render", bytes.NewBuffer(body))
	if err != nil {
		log.Error("failed creating render request", zap.Error(err))
		return nil, err
	}
	httpReq.Header.Add("Content-Type", "application/json")

	log.Info("sending invoice to renderer")

	resp, err := r.httpClient.Do(httpReq)
	if err != nil {
		log.Error("renderer request failed", zap.Error(err))
		return nil, err
	}
	defer resp.Body.Close()

	docBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read renderer response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		log.Error("renderer returned non-success status",
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("renderer error: %s", string(docBytes))
	}

	log.Info("invoice document rendered", zap.Int("bytes", len(docBytes)))
	return docBytes, nil
}
