package usecase

import (
	"context"

	"CorrNet/internal/domain/models"
	drepo "CorrNet/internal/domain/repository"
	mid "CorrNet/internal/middleware"
)

// CandleCollector consumes the live candle stream and feeds the processor,
// optionally through the ingest pipeline.
type CandleCollector struct {
	stream  drepo.CandleStream
	proc    *CandleProcessor
	metrics drepo.Metrics
	pipe    *mid.IngestPipeline
}

// NewCandleCollector creates a new CandleCollector instance.
func NewCandleCollector(stream drepo.CandleStream, proc *CandleProcessor, metrics drepo.Metrics, pipe *mid.IngestPipeline) *CandleCollector {
	return &CandleCollector{stream: stream, proc: proc, metrics: metrics, pipe: pipe}
}

// IsConnected returns true if the candle stream is connected.
func (c *CandleCollector) IsConnected() bool {
	return c.stream.IsConnected()
}

func (c *CandleCollector) Start(ctx context.Context) error {
	if err := c.stream.Connect(ctx); err != nil {
		return err
	}
	if err := c.stream.Subscribe(ctx); err != nil {
		return err
	}
	if c.pipe != nil {
		c.pipe.Start(ctx)
	}
	cnCh, errCh := c.stream.Read(ctx)
	go c.consume(ctx, cnCh, errCh)
	return nil
}

// consume drains the stream channels. The read loop closes both channels
// when it dies; once both are observed closed, consume reconnects and
// resumes on the fresh channels from Read.
func (c *CandleCollector) consume(ctx context.Context, cnCh <-chan *models.Candle, errCh <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errCh:
			if !ok {
				errCh = nil
				break
			}
			if err != nil {
				c.metrics.RecordStageError("stream")
			}
		case cn, ok := <-cnCh:
			if !ok {
				cnCh = nil
				break
			}
			if cn == nil {
				continue
			}
			if c.pipe != nil {
				_ = c.pipe.Process(ctx, cn)
			} else {
				_ = c.proc.Process(ctx, cn)
			}
		}

		if cnCh == nil && errCh == nil {
			for {
				if ctx.Err() != nil {
					return
				}
				// Reconnect waits the configured delay before dialing, so
				// failures here do not spin.
				if err := c.stream.Reconnect(ctx); err != nil {
					if ctx.Err() != nil {
						return
					}
					c.metrics.RecordStageError("stream")
					continue
				}
				break
			}
			cnCh, errCh = c.stream.Read(ctx)
		}
	}
}

func (c *CandleCollector) Stop() error { return c.stream.Close() }

// Processor returns the underlying CandleProcessor for lifecycle management.
func (c *CandleCollector) Processor() *CandleProcessor { return c.proc }

// Shutdown stops the pipeline and closes the stream.
func (c *CandleCollector) Shutdown(ctx context.Context) error {
	if c.pipe != nil {
		c.pipe.Stop()
	}
	return c.stream.Close()
}
