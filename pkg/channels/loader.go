package channels

import (
	"fmt"
	"log/slog"

	"browsermcp/pkg/api"
	"browsermcp/pkg/config"
)

// LoadFromConfig resolves every channel named in system.Channels and
// creates it. An unknown name or a failing factory aborts the load: the
// relay is useless without its peer channel.
func LoadFromConfig(system *config.SystemConfig, res Resources) ([]api.Channel, error) {
	out := make([]api.Channel, 0, len(system.Channels))
	for _, name := range system.Channels {
		factory, ok := GetChannelFactory(name)
		if !ok {
			return nil, fmt.Errorf("unknown channel type %q (registered: %v)", name, Names())
		}

		channel, err := factory.Create(system, res)
		if err != nil {
			return nil, fmt.Errorf("failed to create channel %s: %w", name, err)
		}
		if channel == nil {
			continue
		}

		out = append(out, channel)
		slog.Info("Channel created", "name", name)
	}
	return out, nil
}
