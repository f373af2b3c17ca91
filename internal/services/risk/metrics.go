package risk

import "time"

// NoopMetricsCollector is a no-op implementation of MetricsCollector
type NoopMetricsCollector struct{}

func (n *NoopMetricsCollector) RecordAssessment(Action, time.Duration) {}
func (n *NoopMetricsCollector) RecordFallback(string)                  {}
func (n *NoopMetricsCollector) RecordOverride(OverrideSource, Action)  {}
func (n *NoopMetricsCollector) RecordMuleScore(int)                    {}
