package observability

import (
	"context"
	"errors"
	"fmt"

	"github.com/prometheus/client_golang/prometheus/push"
)

// pushJob is the Pushgateway job label for ingestion runs.
const pushJob = "sdwis_ingest"

// Push sends the current metric values to a Prometheus Pushgateway, replacing
// the previous push of the same job.
func Push(ctx context.Context, gatewayURL string, m *Metrics) error {
	if gatewayURL == "" {
		return errors.New("pushgateway url is empty")
	}
	p := push.New(gatewayURL, pushJob)
	for _, c := range m.Collectors() {
		p = p.Collector(c)
	}
	if err := p.PushContext(ctx); err != nil {
		return fmt.Errorf("push metrics: %w", err)
	}
	return nil
}
