package inquiry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/Faultbox/valvesite/internal/config"
	"github.com/Faultbox/valvesite/internal/logger"
)

// ErrRejected is returned when the endpoint refuses an inquiry.
var ErrRejected = errors.New("inquiry: rejected by endpoint")

// Submitter delivers validated inquiries.
type Submitter interface {
	Submit(ctx context.Context, req Request) (Receipt, error)
}

// New picks the submitter for cfg: simulated when no endpoint is set.
func New(cfg config.InquiryConfig) Submitter {
	if cfg.Endpoint == "" {
		return NewSimulated(cfg.SimulatedDelay)
	}
	return NewHTTPSubmitter(cfg)
}

// Simulated accepts every valid inquiry after a fixed delay without sending
// it anywhere.
type Simulated struct {
	delay time.Duration
	now   func() time.Time
	log   *zap.Logger
}

// NewSimulated creates a simulated submitter.
func NewSimulated(delay time.Duration) *Simulated {
	return &Simulated{delay: delay, now: time.Now, log: logger.Named("inquiry")}
}

// Submit waits for the delay and succeeds, unless ctx ends first.
func (s *Simulated) Submit(ctx context.Context, req Request) (Receipt, error) {
	if err := req.Validate(); err != nil {
		return Receipt{}, err
	}

	if s.delay > 0 {
		timer := time.NewTimer(s.delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return Receipt{}, ctx.Err()
		}
	}

	r := newReceipt(req.Kind, s.now())
	s.log.Info("inquiry accepted (simulated)",
		zap.String("id", r.ID.String()),
		zap.String("kind", string(req.Kind)))
	return r, nil
}

// HTTPSubmitter posts inquiries as JSON to an endpoint.
type HTTPSubmitter struct {
	endpoint string
	client   *resty.Client
	log      *zap.Logger
}

// NewHTTPSubmitter creates a submitter posting to cfg.Endpoint.
func NewHTTPSubmitter(cfg config.InquiryConfig) *HTTPSubmitter {
	client := resty.New().
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(time.Second).
		SetRetryMaxWaitTime(5*time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &HTTPSubmitter{
		endpoint: cfg.Endpoint,
		client:   client,
		log:      logger.Named("inquiry"),
	}
}

type endpointReply struct {
	ID string `json:"id"`
}

// Submit validates and posts req. Any non-2xx reply wraps ErrRejected.
func (s *HTTPSubmitter) Submit(ctx context.Context, req Request) (Receipt, error) {
	if err := req.Validate(); err != nil {
		return Receipt{}, err
	}

	r := newReceipt(req.Kind, time.Now())
	var reply endpointReply

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("Idempotency-Key", r.ID.String()).
		SetBody(req).
		SetResult(&reply).
		Post(s.endpoint)
	if err != nil {
		if ctx.Err() != nil {
			return Receipt{}, fmt.Errorf("submitting inquiry: %w", ctx.Err())
		}
		return Receipt{}, fmt.Errorf("submitting inquiry: %w", err)
	}
	if resp.IsError() {
		s.log.Warn("inquiry rejected",
			zap.Int("status", resp.StatusCode()),
			zap.String("endpoint", s.endpoint))
		return Receipt{}, fmt.Errorf("%w: HTTP %s", ErrRejected, resp.Status())
	}

	// Prefer the endpoint's id when it sends a valid one.
	if id, err := uuid.Parse(reply.ID); err == nil {
		r.ID = id
	}
	s.log.Info("inquiry delivered",
		zap.String("id", r.ID.String()),
		zap.String("kind", string(req.Kind)))
	return r, nil
}
