package googlemonitoring

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"
	"sync"
	"time"

	monitoring "cloud.google.com/go/monitoring/apiv3/v2"
	monitoringpb "cloud.google.com/go/monitoring/apiv3/v2/monitoringpb"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	dto "github.com/prometheus/client_model/go"
	"google.golang.org/api/option"
	metricpb "google.golang.org/genproto/googleapis/api/metric"
	"google.golang.org/genproto/googleapis/api/monitoredres"
	"google.golang.org/protobuf/types/known/timestamppb"
)

// MonitoringClient keeps Prometheus metrics in its own registry, serves them
// on /metrics and optionally pushes them to Google Cloud Monitoring.
type MonitoringClient struct {
	projectId  string
	client     *monitoring.MetricClient
	registry   *prometheus.Registry
	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	histograms map[string]*prometheus.HistogramVec
}

// NewMonitoringClient only dials Cloud Monitoring when projectId is set.
func NewMonitoringClient(ctx context.Context, projectId, jsonCredentialsStr string) (*MonitoringClient, error) {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	c := &MonitoringClient{
		projectId:  projectId,
		registry:   registry,
		counters:   make(map[string]*prometheus.CounterVec),
		histograms: make(map[string]*prometheus.HistogramVec),
	}

	if projectId == "" {
		return c, nil
	}

	var err error
	if jsonCredentialsStr == "" {
		// for prod where you can fetch it from gcp service account
		c.client, err = monitoring.NewMetricClient(ctx)
	} else {
		c.client, err = monitoring.NewMetricClient(ctx, option.WithCredentialsJSON([]byte(jsonCredentialsStr)))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create Monitoring client: %w", err)
	}

	return c, nil
}

func (c *MonitoringClient) Close() error {
	if c.client == nil {
		return nil
	}
	return c.client.Close()
}

// Handler serves the registry in the Prometheus exposition format.
func (c *MonitoringClient) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// PushEnabled reports whether PushMetrics has a Cloud Monitoring target.
func (c *MonitoringClient) PushEnabled() bool {
	return c.client != nil
}

func (c *MonitoringClient) getOrCreateCounterVec(metricName string, labels []string) *prometheus.CounterVec {
	c.mu.RLock()
	counter, exists := c.counters[metricName]
	c.mu.RUnlock()
	if exists {
		return counter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if counter, exists = c.counters[metricName]; exists {
		return counter
	}
	counter = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: metricName,
		Help: "Dynamically created counter",
	}, labels)
	c.registry.MustRegister(counter)
	c.counters[metricName] = counter
	return counter
}

func (c *MonitoringClient) getOrCreateHistogramVec(metricName string, labels []string) *prometheus.HistogramVec {
	c.mu.RLock()
	histogram, exists := c.histograms[metricName]
	c.mu.RUnlock()
	if exists {
		return histogram
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if histogram, exists = c.histograms[metricName]; exists {
		return histogram
	}
	histogram = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    metricName,
		Help:    "Dynamically created histogram",
		Buckets: prometheus.DefBuckets,
	}, labels)
	c.registry.MustRegister(histogram)
	c.histograms[metricName] = histogram
	return histogram
}

func (c *MonitoringClient) RecordCounter(metricName string, labels map[string]string, value float64) {
	labelNames, labelValues := splitLabels(labels)
	counter := c.getOrCreateCounterVec(metricName, labelNames)
	counter.WithLabelValues(labelValues...).Add(value)
}

func (c *MonitoringClient) RecordTimer(metricName string, labels map[string]string, duration time.Duration) {
	labelNames, labelValues := splitLabels(labels)
	histogram := c.getOrCreateHistogramVec(metricName, labelNames)
	histogram.WithLabelValues(labelValues...).Observe(duration.Seconds())
}

// splitLabels sorts by name so a metric always sees its labels in one order.
func splitLabels(labels map[string]string) ([]string, []string) {
	names := make([]string, 0, len(labels))
	for name := range labels {
		names = append(names, name)
	}
	sort.Strings(names)

	values := make([]string, 0, len(names))
	for _, name := range names {
		values = append(values, labels[name])
	}
	return names, values
}

func (c *MonitoringClient) PushMetrics(ctx context.Context) error {
	if c.client == nil {
		return nil
	}

	timeSeries, err := c.timeSeries(time.Now())
	if err != nil {
		return err
	}

	if len(timeSeries) == 0 {
		return fmt.Errorf("no time series created")
	}

	if err := c.client.CreateTimeSeries(ctx, &monitoringpb.CreateTimeSeriesRequest{
		Name:       fmt.Sprintf("projects/%s", c.projectId),
		TimeSeries: timeSeries,
	}); err != nil {
		return fmt.Errorf("failed to write time series data: %w", err)
	}

	return nil
}

func (c *MonitoringClient) timeSeries(now time.Time) ([]*monitoringpb.TimeSeries, error) {
	mfs, err := c.registry.Gather()
	if err != nil {
		return nil, fmt.Errorf("failed to gather metrics: %w", err)
	}

	var timeSeries []*monitoringpb.TimeSeries
	for _, mf := range mfs {
		if strings.HasPrefix(mf.GetName(), "go_") || strings.HasPrefix(mf.GetName(), "promhttp_") {
			continue
		}

		for _, m := range mf.Metric {
			value, ok := metricValue(m)
			if !ok {
				continue
			}

			labels := make(map[string]string)
			for _, l := range m.Label {
				labels[l.GetName()] = l.GetValue()
			}

			timeSeries = append(timeSeries, &monitoringpb.TimeSeries{
				Metric: &metricpb.Metric{
					Type:   "custom.googleapis.com/" + mf.GetName(),
					Labels: labels,
				},
				Resource: &monitoredres.MonitoredResource{
					Type: "global",
					Labels: map[string]string{
						"project_id": c.projectId,
					},
				},
				Points: []*monitoringpb.Point{
					{
						Interval: &monitoringpb.TimeInterval{
							EndTime: timestamppb.New(now),
						},
						Value: &monitoringpb.TypedValue{
							Value: &monitoringpb.TypedValue_DoubleValue{
								DoubleValue: value,
							},
						},
					},
				},
			})
		}
	}
	return timeSeries, nil
}

func metricValue(m *dto.Metric) (float64, bool) {
	switch {
	case m.Gauge != nil:
		return m.Gauge.GetValue(), true
	case m.Counter != nil:
		return m.Counter.GetValue(), true
	case m.Summary != nil:
		return m.Summary.GetSampleSum(), true
	case m.Histogram != nil:
		return m.Histogram.GetSampleSum(), true
	default:
		return 0, false
	}
}
