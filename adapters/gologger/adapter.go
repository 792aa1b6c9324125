package gologger

import (
	job "github.com/goliatone/go-job"
	glog "github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-plaid/adapters/gojob"
	"github.com/goliatone/go-plaid/core"
)

const DefaultLoggerName = "plaid"

// Resolve uses deterministic precedence provider > logger > nop.
func Resolve(name string, provider glog.LoggerProvider, logger glog.Logger) (glog.LoggerProvider, glog.Logger) {
	return glog.Resolve(name, provider, logger)
}

// ToJobProvider maps a glog provider to the go-job logger provider contract.
func ToJobProvider(provider glog.LoggerProvider) job.LoggerProvider {
	if provider == nil {
		return nil
	}
	return job.GoLoggerProvider(provider)
}

func ToJobLogger(logger glog.Logger) job.Logger {
	if logger == nil {
		return nil
	}
	return job.GoLogger(logger)
}

// ResolveForJob resolves glog logger/provider then returns equivalent go-job adapters.
func ResolveForJob(
	name string,
	provider glog.LoggerProvider,
	logger glog.Logger,
) (glog.LoggerProvider, glog.Logger, job.LoggerProvider, job.Logger) {
	resolvedProvider, resolvedLogger := Resolve(name, provider, logger)
	return resolvedProvider, resolvedLogger, ToJobProvider(resolvedProvider), ToJobLogger(resolvedLogger)
}

// ClientOptions resolves one logger for the plaid client.
func ClientOptions(provider glog.LoggerProvider, logger glog.Logger) []core.Option {
	resolvedProvider, resolvedLogger := Resolve(DefaultLoggerName, provider, logger)
	return []core.Option{
		core.WithLoggerProvider(resolvedProvider),
		core.WithLogger(resolvedLogger),
	}
}

// WorkerOption hands the queued operation worker a logger named
// "plaid.worker".
func WorkerOption(provider glog.LoggerProvider, logger glog.Logger) gojob.WorkerOption {
	_, resolved := Resolve(DefaultLoggerName+".worker", provider, logger)
	return gojob.WithLogger(resolved)
}
