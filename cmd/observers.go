package cmd

import (
	"context"
	"time"

	"lottery/config"
	"lottery/events"
	"lottery/infrastructure"
	"lottery/infrastructure/observability"

	log "github.com/sirupsen/logrus"
)

// Observers forward bus events to metrics and NATS
type Observers struct {
	Metrics *observability.MetricsProvider
	NATS    *infrastructure.NATSClient
}

// StartObservers subscribes metrics and NATS forwarding to bus. Neither is
// required for a draw or an import, so failures only disable them.
func StartObservers(ctx context.Context, cfg *config.Config, bus *events.Bus) *Observers {
	metrics := observability.NewMetricsProvider(cfg)
	if err := metrics.Initialize(ctx); err != nil {
		log.WithError(err).Warn("Failed to initialize metrics, continuing without them")
	}
	return observe(ctx, cfg, bus, metrics)
}

// observe attaches an already initialized metrics provider and, when servers
// are configured, a NATS publisher to bus. An uninitialized provider records
// nothing.
func observe(ctx context.Context, cfg *config.Config, bus *events.Bus, metrics *observability.MetricsProvider) *Observers {
	obs := &Observers{Metrics: metrics}
	metrics.Subscribe(bus)

	servers := cfg.NATSServerList()
	if len(servers) == 0 {
		return obs
	}

	client := infrastructure.NewNATSClient(servers, infrastructure.SourceService)
	if err := client.Connect(ctx); err != nil {
		log.WithError(err).Warn("Failed to connect to NATS, events will not be forwarded")
		return obs
	}

	publisher := infrastructure.NewNATSEventPublisher(client, cfg.NATSSubjectPrefix, metrics)
	if err := client.EnsureStream(natsStreamName(cfg.NATSSubjectPrefix), publisher.Subjects()); err != nil {
		log.WithError(err).Warn("Failed to ensure NATS stream")
	}
	publisher.Attach(bus)
	obs.NATS = client
	return obs
}

// Close closes NATS and flushes metrics. Callers wait on the bus first.
func (o *Observers) Close() {
	if o == nil {
		return
	}

	if o.NATS != nil {
		if err := o.NATS.Close(); err != nil {
			log.WithError(err).Warn("Error closing NATS connection")
		}
	}

	if o.Metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := o.Metrics.Shutdown(ctx); err != nil {
			log.WithError(err).Warn("Error shutting down metrics")
		}
	}
}
