package web

import (
	"browsermcp/pkg/api"
	"browsermcp/pkg/channels"
	"browsermcp/pkg/config"
)

// ExtensionFactory creates the extension websocket channel.
type ExtensionFactory struct{}

// Create implements channels.ChannelFactory.
func (f *ExtensionFactory) Create(system *config.SystemConfig, res channels.Resources) (api.Channel, error) {
	cfg := ExtensionConfig{Addr: system.Addr()}
	if res.Metrics != nil {
		cfg.Metrics = res.Metrics.Handler()
	}
	return NewExtensionChannel(cfg), nil
}

func init() {
	channels.RegisterChannel(ChannelName, &ExtensionFactory{})
}
