package sqlstore

import "github.com/goliatone/go-plaid/core"

var (
	_ core.ActivitySink   = (*ActivityStore)(nil)
	_ core.ActivityReader = (*ActivityStore)(nil)
)
