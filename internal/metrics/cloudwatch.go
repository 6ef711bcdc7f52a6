// Package metrics publishes request counters to CloudWatch. Publishing is
// optional; a nil Reporter records and publishes nothing.
package metrics

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	cwtypes "github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"

	appconfig "stockflow/config"
	"stockflow/logger"
)

// Reporter accumulates request counters and flushes them to CloudWatch on a
// fixed interval. Counters reset on every flush so published values are
// per-interval deltas.
type Reporter struct {
	client    *cloudwatch.Client
	namespace string
	interval  time.Duration
	log       *logger.Log

	requests  atomic.Int64
	errors    atomic.Int64
	latencyMs atomic.Int64
}

// NewReporter builds a reporter when CloudWatch publishing is enabled and
// returns nil otherwise; all Reporter methods tolerate a nil receiver.
func NewReporter(ctx context.Context, cfg appconfig.CloudWatchConfig, log *logger.Log) (*Reporter, error) {
	if !cfg.Enabled {
		return nil, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, err
	}

	interval := cfg.Interval
	if interval <= 0 {
		interval = 30 * time.Second
	}

	return &Reporter{
		client:    cloudwatch.NewFromConfig(awsCfg),
		namespace: cfg.Namespace,
		interval:  interval,
		log:       log,
	}, nil
}

// RecordRequest counts one handled request. Statuses of 500 and above count
// as errors.
func (r *Reporter) RecordRequest(status int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.requests.Add(1)
	if status >= 500 {
		r.errors.Add(1)
	}
	r.latencyMs.Add(elapsed.Milliseconds())
}

// Start launches the flush loop. It returns immediately; the loop stops
// when the context is cancelled, flushing once more on the way out.
func (r *Reporter) Start(ctx context.Context) {
	if r == nil {
		return
	}

	go func() {
		ticker := time.NewTicker(r.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				r.flush(context.Background())
				return
			case <-ticker.C:
				r.flush(ctx)
			}
		}
	}()
}

func (r *Reporter) flush(ctx context.Context) {
	requests := r.requests.Swap(0)
	errorCount := r.errors.Swap(0)
	latencyMs := r.latencyMs.Swap(0)

	if requests == 0 {
		return
	}

	now := time.Now()
	data := []cwtypes.MetricDatum{
		{
			MetricName: aws.String("RequestCount"),
			Timestamp:  aws.Time(now),
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(requests)),
		},
		{
			MetricName: aws.String("ErrorCount"),
			Timestamp:  aws.Time(now),
			Unit:       cwtypes.StandardUnitCount,
			Value:      aws.Float64(float64(errorCount)),
		},
		{
			MetricName: aws.String("AverageLatencyMs"),
			Timestamp:  aws.Time(now),
			Unit:       cwtypes.StandardUnitMilliseconds,
			Value:      aws.Float64(float64(latencyMs) / float64(requests)),
		},
	}

	_, err := r.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(r.namespace),
		MetricData: data,
	})
	if err != nil {
		r.log.WithComponent("metrics").WithError(err).Warn("failed to publish metrics to CloudWatch")
		return
	}

	r.log.WithComponent("metrics").WithFields(logger.Fields{
		"requests": requests,
		"errors":   errorCount,
	}).Debug("published request metrics")
}
