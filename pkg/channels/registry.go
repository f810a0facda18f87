package channels

import (
	"sort"
	"sync"

	"browsermcp/pkg/api"
	"browsermcp/pkg/config"
	"browsermcp/pkg/monitor"
)

// Resources are the shared process-level objects a channel may need.
type Resources struct {
	Metrics *monitor.Metrics
}

// ChannelFactory creates a peer channel from the system configuration.
// New transports register a factory instead of touching the gateway.
type ChannelFactory interface {
	Create(system *config.SystemConfig, res Resources) (api.Channel, error)
}

var (
	registryMu      sync.RWMutex
	channelRegistry = make(map[string]ChannelFactory)
)

// RegisterChannel adds a factory under name. It is typically called from
// the implementing package's init.
func RegisterChannel(name string, factory ChannelFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	channelRegistry[name] = factory
}

// GetChannelFactory retrieves a registered factory by name.
func GetChannelFactory(name string) (ChannelFactory, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	f, ok := channelRegistry[name]
	return f, ok
}

// Names lists the registered channel names in sorted order.
func Names() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(channelRegistry))
	for name := range channelRegistry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
