package core

import (
	"context"
	"fmt"
	"strings"
)

const metricPrefix = "plaid"

// Metric names, per operation:
//
//	plaid.<operation>.total          every invocation
//	plaid.<operation>.duration_ms    invocation latency
//	plaid.<operation>.remote_errors  remote error envelopes, tagged error_code
const (
	metricTotal        = "total"
	metricDuration     = "duration_ms"
	metricRemoteErrors = "remote_errors"
)

type NopMetricsRecorder struct{}

func (NopMetricsRecorder) IncCounter(context.Context, string, int64, map[string]string) {}

func (NopMetricsRecorder) ObserveHistogram(context.Context, string, float64, map[string]string) {}

func operationMetric(operation string, suffix string) string {
	return metricPrefix + "." + operation + "." + suffix
}

// operationTags keeps the tag set small: operation, outcome, method and
// the HTTP status when one was received.
func operationTags(operation string, status string, fields map[string]any) map[string]string {
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	for _, key := range []string{"method", "status_code"} {
		if value := strings.TrimSpace(fmt.Sprint(fields[key])); value != "" && value != "<nil>" {
			tags[key] = value
		}
	}
	return tags
}

func remoteErrorTags(tags map[string]string, errorCode string) map[string]string {
	out := cloneTags(tags)
	errorCode = strings.TrimSpace(errorCode)
	if errorCode == "" {
		errorCode = "unknown"
	}
	out["error_code"] = errorCode
	return out
}

func cloneTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return map[string]string{}
	}
	copied := make(map[string]string, len(tags))
	for key, value := range tags {
		copied[key] = value
	}
	return copied
}
