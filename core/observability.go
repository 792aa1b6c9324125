package core

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func (c *Client) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if c == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	elapsed := time.Since(startedAt)

	contextFields := RedactSensitiveMap(fields)
	contextFields["operation"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = elapsed.Milliseconds()
	if err != nil {
		contextFields["error"] = err.Error()
		enrichErrorFields(contextFields, err)
	}

	tags := operationTags(operation, status, contextFields)
	c.recordCounter(ctx, operationMetric(operation, metricTotal), 1, tags)
	c.recordHistogram(ctx, operationMetric(operation, metricDuration), float64(elapsed.Milliseconds()), tags)
	if code, remote := contextFields["error_code"]; remote && err == nil {
		c.recordCounter(ctx, operationMetric(operation, metricRemoteErrors), 1, remoteErrorTags(tags, fmt.Sprint(code)))
	}

	if err != nil {
		c.logError(ctx, operation+" failed", contextFields)
		return
	}
	c.logInfo(ctx, operation+" succeeded", contextFields)
}

func enrichErrorFields(fields map[string]any, err error) {
	var rich *goerrors.Error
	if !goerrors.As(err, &rich) || rich == nil {
		return
	}
	fields["error_category"] = fmt.Sprint(rich.Category)
	fields["error_text_code"] = rich.TextCode
	fields["error_status"] = rich.Code
	fields["error_severity"] = rich.Severity.String()
	if len(rich.Metadata) > 0 {
		fields["error_metadata"] = RedactSensitiveMap(rich.Metadata)
	}
}

func (c *Client) logInfo(ctx context.Context, message string, fields map[string]any) {
	c.logWithLevel(ctx, "info", message, fields)
}

func (c *Client) logError(ctx context.Context, message string, fields map[string]any) {
	c.logWithLevel(ctx, "error", message, fields)
}

func (c *Client) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if c == nil || c.logger == nil {
		return
	}
	logger := c.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (c *Client) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if c == nil || c.metricsRecorder == nil {
		return
	}
	c.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (c *Client) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if c == nil || c.metricsRecorder == nil {
		return
	}
	c.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

// normalizeOperation keeps the dotted operation name and folds separators.
func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
