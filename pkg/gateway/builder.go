package gateway

import (
	"fmt"

	"browsermcp/pkg/api"
	"browsermcp/pkg/config"
	"browsermcp/pkg/monitor"
)

// GatewayBuilder assembles a GatewayManager from pre-built parts and starts
// it. Channels, monitor and metrics are injected as instances; the builder
// only wires and starts them.
type GatewayBuilder struct {
	gw           *GatewayManager
	monitor      monitor.Monitor
	metrics      *monitor.Metrics
	systemConfig *config.SystemConfig
	channels     []api.Channel
}

// NewGatewayBuilder creates a builder around a fresh GatewayManager.
func NewGatewayBuilder() *GatewayBuilder {
	return &GatewayBuilder{
		gw: NewGatewayManager(),
	}
}

// WithSystemConfig applies relay parameters such as the call timeout.
func (b *GatewayBuilder) WithSystemConfig(cfg *config.SystemConfig) *GatewayBuilder {
	b.systemConfig = cfg
	return b
}

// WithMonitor injects a traffic monitor. It is started during Build.
func (b *GatewayBuilder) WithMonitor(m monitor.Monitor) *GatewayBuilder {
	b.monitor = m
	return b
}

// WithMetrics injects the Prometheus collectors.
func (b *GatewayBuilder) WithMetrics(m *monitor.Metrics) *GatewayBuilder {
	b.metrics = m
	return b
}

// WithChannel adds pre-built channels to the gateway.
func (b *GatewayBuilder) WithChannel(channels ...api.Channel) *GatewayBuilder {
	b.channels = append(b.channels, channels...)
	return b
}

// Build wires everything into the manager, registers the channels and
// starts them. It returns the running manager or the first failure.
func (b *GatewayBuilder) Build() (*GatewayManager, error) {
	if b.systemConfig != nil {
		b.gw.SetCallTimeout(b.systemConfig.CallTimeout())
	}

	if b.metrics != nil {
		b.gw.SetMetrics(b.metrics)
	}

	if b.monitor != nil {
		if err := b.monitor.Start(); err != nil {
			return nil, fmt.Errorf("failed to start monitor: %w", err)
		}
		b.gw.SetMonitor(b.monitor)
	}

	for _, c := range b.channels {
		b.gw.Register(c)
	}

	if err := b.gw.StartAll(); err != nil {
		return nil, fmt.Errorf("failed to start channels: %w", err)
	}

	return b.gw, nil
}
