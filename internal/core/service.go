package core

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/JonMunkholm/branchtree/internal/config"
	"github.com/JonMunkholm/branchtree/internal/logging"
	"github.com/JonMunkholm/branchtree/internal/tabular"
	"github.com/google/uuid"
)

var (
	// ErrUnknownStrategy is returned for a strategy name other than
	// indexed or streaming.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrNoContent is returned when the input holds no bytes at all.
	ErrNoContent = errors.New("no csv content provided")

	// ErrInvalidBody is returned by transports when a request envelope
	// cannot be decoded.
	ErrInvalidBody = errors.New("invalid request body")
)

// ConvertRequest is one input to convert.
type ConvertRequest struct {
	FileName string
	Format   tabular.Format // empty means CSV
	Body     io.Reader
	Strategy string // empty means the configured default
}

// ConvertResult is a finished conversion. Document is never partial: on any
// error no result is returned.
type ConvertResult struct {
	ID       string         `json:"id"`
	FileName string         `json:"fileName"`
	Format   tabular.Format `json:"format"`
	Strategy Strategy       `json:"strategy"`
	Document *Document      `json:"document"`
	Stats    Stats          `json:"stats"`
	Bytes    int64          `json:"bytes"`
	Duration time.Duration  `json:"duration"`
}

// Service runs conversions under a concurrency limit.
// It holds no per-conversion state, so concurrent calls are independent.
type Service struct {
	strategy Strategy
	timeout  time.Duration
	limiter  *Limiter
}

// NewService creates a Service from configuration.
func NewService(cfg *config.Config) (*Service, error) {
	strategy, err := ParseStrategy(cfg.Convert.Strategy)
	if err != nil {
		return nil, fmt.Errorf("convert strategy: %w", err)
	}

	return &Service{
		strategy: strategy,
		timeout:  cfg.Convert.Timeout,
		limiter:  NewLimiter(cfg.Convert.MaxConcurrent, cfg.Convert.MaxWaitTime),
	}, nil
}

// DefaultStrategy returns the strategy used when a request names none.
func (s *Service) DefaultStrategy() Strategy {
	return s.strategy
}

// Convert parses req.Body and builds the hierarchy.
//
// Parsing failures are returned wrapped (errors.Is tabular.ErrMalformedInput)
// and discard everything read so far. Rows that cannot be attached are not
// errors; they are counted in Stats.Dropped.
func (s *Service) Convert(ctx context.Context, req ConvertRequest) (*ConvertResult, error) {
	if req.Body == nil {
		return nil, ErrNoContent
	}

	strategy := s.strategy
	if req.Strategy != "" {
		var err error
		if strategy, err = ParseStrategy(req.Strategy); err != nil {
			return nil, err
		}
	}

	format := req.Format
	if format == "" {
		format = tabular.FormatCSV
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return nil, err
	}
	defer s.limiter.Release()

	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	id := uuid.NewString()
	logger := logging.WithFields(ctx,
		"conversion_id", id,
		"file", req.FileName,
		"format", format,
		"strategy", strategy,
	)
	start := time.Now()

	body := tabular.NewCountingReader(req.Body)
	rows, err := tabular.Parse(format, body)
	if err != nil {
		logger.Warn("conversion rejected", "error", err)
		return nil, fmt.Errorf("parse %s: %w", req.FileName, err)
	}
	if body.BytesRead == 0 {
		return nil, ErrNoContent
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("convert %s: %w", req.FileName, err)
	}

	doc, stats, err := Build(rows, strategy)
	if err != nil {
		return nil, err
	}

	for _, i := range stats.Dropped {
		logger.Debug("row dropped",
			"row_index", i,
			"disposition", Classify(rows[i]).String(),
			"state", rows[i].Get(ColState),
			"branch", rows[i].Get(ColBranchName),
		)
	}

	result := &ConvertResult{
		ID:       id,
		FileName: req.FileName,
		Format:   format,
		Strategy: strategy,
		Document: doc,
		Stats:    stats,
		Bytes:    body.BytesRead,
		Duration: time.Since(start),
	}

	logger.Info("conversion complete",
		"rows", stats.Rows,
		"states", stats.States,
		"regions", stats.Regions,
		"branches", stats.Branches,
		"skipped", stats.Skipped,
		"dropped", len(stats.Dropped),
		"bytes", result.Bytes,
		"duration_ms", result.Duration.Milliseconds(),
	)

	return result, nil
}

// ConvertText converts CSV held in a string, as sent in a JSON request body.
func (s *Service) ConvertText(ctx context.Context, content, strategy string) (*ConvertResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, ErrNoContent
	}
	return s.Convert(ctx, ConvertRequest{
		FileName: "csvContent",
		Format:   tabular.FormatCSV,
		Body:     strings.NewReader(content),
		Strategy: strategy,
	})
}

// LimiterStatus reports conversion slot usage.
func (s *Service) LimiterStatus() LimiterStatus {
	return s.limiter.Status()
}

// WaitForConversions blocks until running conversions finish or ctx ends.
func (s *Service) WaitForConversions(ctx context.Context) error {
	return s.limiter.Drain(ctx)
}
