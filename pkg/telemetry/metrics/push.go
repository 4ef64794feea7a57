package metrics

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// Push sends the collector's registry to the configured Pushgateway under
// the configured job. It is a no-op when no gateway is configured, so
// one-shot commands can call it unconditionally before exiting.
func (c *Collector) Push(ctx context.Context) error {
	if !c.Enabled() || c.config.PushgatewayURL == "" {
		return nil
	}
	err := push.New(c.config.PushgatewayURL, c.config.PushJob).
		Gatherer(c.registry).
		PushContext(ctx)
	if err != nil {
		return fmt.Errorf("push metrics to %s: %w", c.config.PushgatewayURL, err)
	}
	return nil
}
