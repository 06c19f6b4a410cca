package googlemonitoring

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const (
	PushSpec    = "@every 60s"
	pushTimeout = 30 * time.Second
)

// Pusher sends the registry to Cloud Monitoring on a cron schedule.
type Pusher struct {
	ctx    context.Context
	cron   *cron.Cron
	client *MonitoringClient
	logger *zap.Logger
}

func NewPusher(ctx context.Context, client *MonitoringClient, logger *zap.Logger) *Pusher {
	return &Pusher{
		ctx:    ctx,
		cron:   cron.New(cron.WithLocation(time.UTC)),
		client: client,
		logger: logger,
	}
}

func (p *Pusher) Start() error {
	if _, err := p.cron.AddFunc(PushSpec, p.push); err != nil {
		return err
	}

	p.cron.Start()

	return nil
}

// Stop waits for a running push to finish.
func (p *Pusher) Stop() {
	<-p.cron.Stop().Done()
}

func (p *Pusher) push() {
	ctx, cancel := context.WithTimeout(p.ctx, pushTimeout)
	defer cancel()

	if err := p.client.PushMetrics(ctx); err != nil {
		p.logger.Warn("failed to push metrics", zap.Error(err))
	}
}
