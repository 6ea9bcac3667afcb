package nats

import (
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/kirillkom/resume-extractor/internal/core/domain"
	"github.com/kirillkom/resume-extractor/internal/infrastructure/resilience"
	"github.com/nats-io/nats.go"
)

const workerQueueGroup = "workers"

// Queue carries batch requests to workers and announces finished batches.
type Queue struct {
	conn             *nats.Conn
	requestSubject   string
	completedSubject string
	executor         *resilience.Executor
	logger           *slog.Logger
}

// Options tunes the connection. Zero values pick defaults suited to a
// long-running worker that should survive broker restarts.
type Options struct {
	ConnectTimeout time.Duration
	ReconnectWait  time.Duration
	MaxReconnects  int
	// FailFast makes the first connect fail instead of retrying in the background.
	FailFast bool
	Executor *resilience.Executor
	Logger   *slog.Logger
}

func (o Options) connectOptions(logger *slog.Logger) []nats.Option {
	timeout := cmp.Or(o.ConnectTimeout, 2*time.Second)
	wait := cmp.Or(o.ReconnectWait, 2*time.Second)
	reconnects := cmp.Or(o.MaxReconnects, 60)

	return []nats.Option{
		nats.Name("resume-extractor"),
		nats.Timeout(timeout),
		nats.ReconnectWait(wait),
		nats.MaxReconnects(reconnects),
		nats.RetryOnFailedConnect(!o.FailFast),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats_disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Info("nats_reconnected", "url", nc.ConnectedUrl())
		}),
		nats.ClosedHandler(func(*nats.Conn) {
			logger.Info("nats_closed")
		}),
	}
}

func NewWithOptions(url, requestSubject, completedSubject string, options Options) (*Queue, error) {
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}
	conn, err := nats.Connect(url, options.connectOptions(logger)...)
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", url, err)
	}
	return &Queue{
		conn:             conn,
		requestSubject:   requestSubject,
		completedSubject: completedSubject,
		executor:         options.Executor,
		logger:           logger,
	}, nil
}

func (q *Queue) Close() {
	if q.conn != nil {
		q.conn.Close()
	}
}

func (q *Queue) PublishBatchCompleted(ctx context.Context, event domain.BatchCompleted) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode batch completed: %w", err)
	}

	call := func(_ context.Context) error {
		if err := q.conn.Publish(q.completedSubject, payload); err != nil {
			return fmt.Errorf("nats publish: %w", err)
		}
		return nil
	}

	if q.executor != nil {
		err = q.executor.Do(ctx, publishOperation, call, publishVerdict)
	} else {
		err = call(ctx)
	}
	return asTemporary(err)
}

func (q *Queue) SubscribeBatchRequested(ctx context.Context, handler func(context.Context, domain.BatchRequest) error) error {
	sub, err := q.conn.QueueSubscribe(q.requestSubject, workerQueueGroup, func(msg *nats.Msg) {
		if errors.Is(ctx.Err(), context.Canceled) {
			return
		}

		req, err := decodeBatchRequest(msg.Data)
		if err != nil {
			q.logger.Error("batch_request_rejected", "subject", msg.Subject, "error", err)
			return
		}

		handlerCtx, cancel := context.WithCancel(ctx)
		defer cancel()
		if err := handler(handlerCtx, req); err != nil {
			q.logger.Error("batch_request_failed", "batch_id", req.BatchID, "source_dir", req.SourceDir, "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("nats subscribe: %w", err)
	}

	if err := q.conn.Flush(); err != nil {
		return fmt.Errorf("nats flush: %w", err)
	}

	<-ctx.Done()
	if err := sub.Drain(); err != nil {
		return fmt.Errorf("nats drain subscription: %w", err)
	}
	if err := q.conn.FlushTimeout(5 * time.Second); err != nil {
		return fmt.Errorf("nats flush after drain: %w", err)
	}
	return nil
}

func decodeBatchRequest(data []byte) (domain.BatchRequest, error) {
	var req domain.BatchRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return domain.BatchRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode batch request", err)
	}
	req.SourceDir = strings.TrimSpace(req.SourceDir)
	if req.SourceDir == "" {
		return domain.BatchRequest{}, domain.WrapError(domain.ErrInvalidInput, "decode batch request", errors.New("source_dir is required"))
	}
	return req, nil
}
