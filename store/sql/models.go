package sqlstore

import (
	"time"

	"github.com/uptrace/bun"
)

const activityTable = "plaid_activity_entries"

type activityEntryRecord struct {
	bun.BaseModel `bun:"table:plaid_activity_entries,alias:pae"`

	ID         string         `bun:"id,pk"`
	Operation  string         `bun:"operation,notnull"`
	Method     string         `bun:"method,notnull"`
	Path       string         `bun:"path,notnull"`
	StatusCode int            `bun:"status_code,notnull"`
	Status     string         `bun:"status,notnull"`
	ErrorCode  string         `bun:"error_code,notnull"`
	DurationMS int64          `bun:"duration_ms,notnull"`
	Metadata   map[string]any `bun:"metadata,type:jsonb,notnull"`
	CreatedAt  time.Time      `bun:"created_at,nullzero,notnull,default:current_timestamp"`
}
