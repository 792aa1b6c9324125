package sqlstore

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-plaid/core"
	repository "github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const defaultActivityPerPage = 25

// RetentionPolicy bounds the audit table. Zero fields disable the bound.
type RetentionPolicy struct {
	TTL    time.Duration
	RowCap int
}

type ActivityStore struct {
	db    *bun.DB
	repo  repository.Repository[*activityEntryRecord]
	clock core.Clock
}

func NewActivityStore(db *bun.DB) (*ActivityStore, error) {
	if db == nil {
		return nil, fmt.Errorf("sqlstore: bun db is required")
	}
	repo := repository.NewRepository[*activityEntryRecord](db, activityHandlers())
	if validator, ok := repo.(repository.Validator); ok {
		if err := validator.Validate(); err != nil {
			return nil, fmt.Errorf("sqlstore: invalid activity repository wiring: %w", err)
		}
	}
	return &ActivityStore{db: db, repo: repo, clock: time.Now}, nil
}

// Record persists one invocation entry. Metadata is redacted before it is
// written.
func (s *ActivityStore) Record(ctx context.Context, entry core.ActivityEntry) error {
	if s == nil || s.repo == nil {
		return fmt.Errorf("sqlstore: activity store is not configured")
	}
	operation := strings.TrimSpace(entry.Operation)
	if operation == "" {
		return fmt.Errorf("sqlstore: activity entry requires an operation")
	}
	id := strings.TrimSpace(entry.ID)
	if id == "" {
		id = uuid.NewString()
	}
	createdAt := entry.CreatedAt.UTC()
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	status := strings.TrimSpace(string(entry.Status))
	if status == "" {
		status = string(core.ActivityStatusOK)
	}

	record := &activityEntryRecord{
		ID:         id,
		Operation:  operation,
		Method:     strings.ToUpper(strings.TrimSpace(entry.Method)),
		Path:       strings.TrimSpace(entry.Path),
		StatusCode: entry.StatusCode,
		Status:     status,
		ErrorCode:  strings.TrimSpace(entry.ErrorCode),
		DurationMS: entry.DurationMS,
		Metadata:   core.RedactSensitiveMap(entry.Metadata),
		CreatedAt:  createdAt,
	}
	_, err := s.repo.Create(ctx, record)
	return err
}

func (s *ActivityStore) List(ctx context.Context, filter core.ActivityFilter) (core.ActivityPage, error) {
	if s == nil || s.repo == nil {
		return core.ActivityPage{}, fmt.Errorf("sqlstore: activity store is not configured")
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = defaultActivityPerPage
	}
	offset := (page - 1) * perPage

	selectors := []repository.SelectCriteria{
		repository.OrderBy("created_at DESC"),
		repository.SelectPaginate(perPage, offset),
	}
	if operation := strings.TrimSpace(filter.Operation); operation != "" {
		selectors = append(selectors, repository.SelectBy("operation", "=", operation))
	}
	if status := strings.TrimSpace(string(filter.Status)); status != "" {
		selectors = append(selectors, repository.SelectBy("status", "=", status))
	}
	if filter.From != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", ">=", filter.From.UTC()))
	}
	if filter.To != nil {
		selectors = append(selectors, repository.SelectByTimetz("created_at", "<=", filter.To.UTC()))
	}

	records, total, err := s.repo.List(ctx, selectors...)
	if err != nil {
		return core.ActivityPage{}, err
	}
	items := make([]core.ActivityEntry, 0, len(records))
	for _, record := range records {
		items = append(items, activityRecordToDomain(record))
	}
	hasNext := offset+len(items) < total
	nextOffset := ""
	if hasNext {
		nextOffset = strconv.Itoa(offset + len(items))
	}
	return core.ActivityPage{
		Items:      items,
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		HasNext:    hasNext,
		NextCursor: nextOffset,
	}, nil
}

// Prune deletes entries older than the TTL, then the oldest entries above
// the row cap. It returns the number of deleted rows.
func (s *ActivityStore) Prune(ctx context.Context, policy RetentionPolicy) (int, error) {
	if s == nil || s.db == nil {
		return 0, fmt.Errorf("sqlstore: activity store is not configured")
	}
	deleted := 0

	if policy.TTL > 0 {
		cutoff := s.now().Add(-policy.TTL)
		res, err := s.db.NewDelete().
			Model((*activityEntryRecord)(nil)).
			Where("created_at < ?", cutoff).
			Exec(ctx)
		if err != nil {
			return deleted, err
		}
		affected, _ := res.RowsAffected()
		deleted += int(affected)
	}

	if policy.RowCap > 0 {
		total, err := s.db.NewSelect().Model((*activityEntryRecord)(nil)).Count(ctx)
		if err != nil {
			return deleted, err
		}
		excess := total - policy.RowCap
		if excess > 0 {
			res, err := s.db.NewRaw(
				"DELETE FROM "+activityTable+" WHERE id IN (SELECT id FROM "+activityTable+" ORDER BY created_at ASC LIMIT ?)",
				excess,
			).Exec(ctx)
			if err != nil {
				return deleted, err
			}
			affected, _ := res.RowsAffected()
			deleted += int(affected)
		}
	}

	return deleted, nil
}

func (s *ActivityStore) now() time.Time {
	if s == nil || s.clock == nil {
		return time.Now().UTC()
	}
	return s.clock().UTC()
}

func activityRecordToDomain(record *activityEntryRecord) core.ActivityEntry {
	if record == nil {
		return core.ActivityEntry{}
	}
	return core.ActivityEntry{
		ID:         record.ID,
		Operation:  record.Operation,
		Method:     record.Method,
		Path:       record.Path,
		StatusCode: record.StatusCode,
		Status:     core.ActivityStatus(record.Status),
		ErrorCode:  record.ErrorCode,
		DurationMS: record.DurationMS,
		Metadata:   copyAnyMap(record.Metadata),
		CreatedAt:  record.CreatedAt.UTC(),
	}
}

func copyAnyMap(input map[string]any) map[string]any {
	if len(input) == 0 {
		return map[string]any{}
	}
	out := make(map[string]any, len(input))
	for key, value := range input {
		out[key] = value
	}
	return out
}
