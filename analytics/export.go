package analytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

// Exporter defines the interface for exporting analytics data
type Exporter interface {
	Export(ctx context.Context, data *AggregatedData) error
	Flush(ctx context.Context) error
	Close() error
}

// HTTPExporter batches rollups and POSTs them to an external endpoint.
type HTTPExporter struct {
	endpoint   string
	apiKey     string
	httpClient *http.Client
	buffer     []*AggregatedData
	batchSize  int
}

func NewHTTPExporter(endpoint, apiKey string, batchSize int) *HTTPExporter {
	return &HTTPExporter{
		endpoint: endpoint,
		apiKey:   apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		buffer:    make([]*AggregatedData, 0, batchSize),
		batchSize: batchSize,
	}
}

func (e *HTTPExporter) Export(ctx context.Context, data *AggregatedData) error {
	e.buffer = append(e.buffer, data)

	if len(e.buffer) >= e.batchSize {
		return e.Flush(ctx)
	}

	return nil
}

func (e *HTTPExporter) Flush(ctx context.Context) error {
	if len(e.buffer) == 0 {
		return nil
	}

	payload, err := json.Marshal(e.buffer)
	if err != nil {
		return fmt.Errorf("failed to marshal analytics data: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", e.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if e.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+e.apiKey)
	}

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send analytics data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("analytics export failed with status %d: %s", resp.StatusCode, string(body))
	}

	// Clear buffer on successful export
	e.buffer = e.buffer[:0]
	return nil
}

func (e *HTTPExporter) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return e.Flush(ctx)
}

// ConsoleExporter writes rollups to the logger (for debugging)
type ConsoleExporter struct {
	logger *slog.Logger
}

func NewConsoleExporter(logger *slog.Logger) *ConsoleExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConsoleExporter{logger: logger}
}

func (e *ConsoleExporter) Export(ctx context.Context, data *AggregatedData) error {
	e.logger.Info("analytics rollup",
		"period", data.Period,
		"key", data.Key,
		"active_accounts", data.ActiveAccounts,
		"experience_awarded", data.ExperienceAwarded,
		"currency_earned", data.CurrencyEarned,
		"currency_spent", data.CurrencySpent,
		"practices", data.PracticesRecorded,
		"level_ups", data.LevelUps)
	return nil
}

func (e *ConsoleExporter) Flush(ctx context.Context) error { return nil }
func (e *ConsoleExporter) Close() error                    { return nil }

// MultiExporter fans one rollup out to several exporters.
type MultiExporter struct {
	exporters []Exporter
	logger    *slog.Logger
}

func NewMultiExporter(logger *slog.Logger, exporters ...Exporter) *MultiExporter {
	if logger == nil {
		logger = slog.Default()
	}
	return &MultiExporter{exporters: exporters, logger: logger}
}

func (e *MultiExporter) Export(ctx context.Context, data *AggregatedData) error {
	for _, exporter := range e.exporters {
		if err := exporter.Export(ctx, data); err != nil {
			// keep going so one failing sink does not starve the rest
			e.logger.Warn("analytics export failed", "exporter", fmt.Sprintf("%T", exporter), "error", err)
		}
	}
	return nil
}

func (e *MultiExporter) Flush(ctx context.Context) error {
	for _, exporter := range e.exporters {
		if err := exporter.Flush(ctx); err != nil {
			return err
		}
	}
	return nil
}

func (e *MultiExporter) Close() error {
	var lastErr error
	for _, exporter := range e.exporters {
		if err := exporter.Close(); err != nil {
			lastErr = err
		}
	}
	return lastErr
}
