package core

import glog "github.com/goliatone/go-logger/glog"

var (
	_ MetricsRecorder = NopMetricsRecorder{}
	_ error           = (*RemoteError)(nil)
	_ RawConfigLoader = StaticConfigLoader{}
	_ ConfigProvider  = (*CfgxConfigProvider)(nil)
	_ OptionsResolver = GoOptionsResolver{}

	_ Logger         = glog.Nop()
	_ LoggerProvider = glog.ProviderFromLogger(glog.Nop())
)
