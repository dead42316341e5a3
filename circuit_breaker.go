package addb

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/pior/addb/resp"
	"github.com/sony/gobreaker/v2"
)

// CircuitBreakerFactory creates the circuit breaker of one node.
// It is called once per node when its pool is created.
type CircuitBreakerFactory func(node Node, logger *slog.Logger) *gobreaker.CircuitBreaker[*resp.Response]

// NewCircuitBreakerConfig returns a factory of circuit breakers that trip when
// at least 60% of 3 or more requests failed within interval.
//
// Error replies from a node do not count as failures: the node is up.
// Neither does a canceled context.
func NewCircuitBreakerConfig(maxRequests uint32, interval, timeout time.Duration) CircuitBreakerFactory {
	return func(node Node, logger *slog.Logger) *gobreaker.CircuitBreaker[*resp.Response] {
		settings := gobreaker.Settings{
			Name:        node.ID,
			MaxRequests: maxRequests,
			Interval:    interval,
			Timeout:     timeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				failureRatio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= 3 && failureRatio >= 0.6
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, context.Canceled)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				logger.Info("circuit breaker state changed",
					"node", name, "from", from.String(), "to", to.String())
			},
		}
		return gobreaker.NewCircuitBreaker[*resp.Response](settings)
	}
}
