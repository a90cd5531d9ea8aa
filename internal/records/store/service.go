package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"golang.org/x/sync/singleflight"

	"github.com/reviewdesk/reviewdesk/internal/observability"
	"github.com/reviewdesk/reviewdesk/internal/records"
)

const (
	DefaultPage  = 1
	DefaultLimit = 6
	MaxLimit     = 100

	listFetchTimeout = 10 * time.Second
)

// Publisher receives accepted status transitions.
type Publisher interface {
	PublishTransition(ctx context.Context, entry records.HistoryEntry) error
}

// Service applies paging, validation, caching and event publication on top of
// a Repository.
type Service struct {
	repo      Repository
	cache     *PageCache
	publisher Publisher
	metrics   *observability.Metrics
	logger    *slog.Logger
	validate  *validator.Validate
	group     singleflight.Group
	now       func() time.Time
}

// ServiceOption customises a Service.
type ServiceOption func(*Service)

// WithCache enables the Redis page cache.
func WithCache(cache *PageCache) ServiceOption {
	return func(s *Service) { s.cache = cache }
}

// WithPublisher enables transition events.
func WithPublisher(p Publisher) ServiceOption {
	return func(s *Service) { s.publisher = p }
}

// WithMetrics enables transition and cache counters.
func WithMetrics(m *observability.Metrics) ServiceOption {
	return func(s *Service) { s.metrics = m }
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithClock overrides the transition timestamp source.
func WithClock(now func() time.Time) ServiceOption {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}

// NewService constructs the record service.
func NewService(repo Repository, opts ...ServiceOption) *Service {
	s := &Service{
		repo:     repo,
		logger:   slog.Default(),
		validate: newValidator(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("status", func(fl validator.FieldLevel) bool {
		return records.Status(fl.Field().String()).Valid()
	})
	return v
}

// NormalizePaging applies server defaults: page 1, limit 6, limit capped at MaxLimit.
func NormalizePaging(page, limit int) (int, int) {
	if page < 1 {
		page = DefaultPage
	}
	if limit < 1 {
		limit = DefaultLimit
	}
	if limit > MaxLimit {
		limit = MaxLimit
	}
	return page, limit
}

// List returns one page of records and the total count. Identical concurrent
// requests share one fetch; each caller still returns as soon as its own
// context ends.
func (s *Service) List(ctx context.Context, page, limit int) (records.Page, error) {
	page, limit = NormalizePaging(page, limit)
	key := fmt.Sprintf("%d:%d", page, limit)
	fetchCtx := context.WithoutCancel(ctx)
	resultChan := s.group.DoChan(key, func() (interface{}, error) {
		ctx, cancel := context.WithTimeout(fetchCtx, listFetchTimeout)
		defer cancel()
		return s.fetchPage(ctx, page, limit)
	})
	select {
	case <-ctx.Done():
		return records.Page{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return records.Page{}, res.Err
		}
		return res.Val.(records.Page), nil
	}
}

func (s *Service) fetchPage(ctx context.Context, page, limit int) (records.Page, error) {
	cached, cacheKey, ok, err := s.cache.Get(ctx, page, limit)
	if err != nil {
		s.logger.Warn("page cache read", slog.Any("error", err))
	} else if s.cache.enabled() {
		s.metrics.ObserveCacheLookup(ok)
		if ok {
			return cached, nil
		}
	}
	recs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return records.Page{}, fmt.Errorf("list records: %w", err)
	}
	result := records.Page{Records: recs, TotalCount: total}
	if err := s.cache.Set(ctx, cacheKey, result); err != nil {
		s.logger.Warn("page cache write", slog.Any("error", err))
	}
	return result, nil
}

// Get returns a single record.
func (s *Service) Get(ctx context.Context, id string) (records.Record, error) {
	if strings.TrimSpace(id) == "" {
		return records.Record{}, fmt.Errorf("%w: id is required", ErrValidation)
	}
	return s.repo.Get(ctx, id)
}

// Update validates and applies a patch. A present note is stored even when the
// status does not change; only status changes are counted and published.
func (s *Service) Update(ctx context.Context, patch records.Patch) (records.Record, error) {
	if err := s.Validate(patch); err != nil {
		return records.Record{}, err
	}
	change, err := s.repo.Update(ctx, patch)
	if err != nil {
		var nf *NotFoundError
		if errors.As(err, &nf) {
			return records.Record{}, err
		}
		return records.Record{}, fmt.Errorf("update record: %w", err)
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.logger.Warn("page cache invalidate", slog.Any("error", err))
	}

	note := ""
	if patch.Note != nil {
		note = *patch.Note
	}
	entry, ok := records.NewHistoryEntry(change.Current.ID, change.Previous.Status, change.Current.Status, note, s.now().UTC())
	if ok {
		s.metrics.ObserveTransition(string(entry.PreviousStatus), string(entry.NewStatus))
		s.logger.Info("record transition",
			slog.String("id", entry.RecordID),
			slog.String("from", string(entry.PreviousStatus)),
			slog.String("to", string(entry.NewStatus)))
		if s.publisher != nil {
			if err := s.publisher.PublishTransition(ctx, entry); err != nil {
				s.logger.Warn("publish transition", slog.String("id", entry.RecordID), slog.Any("error", err))
			}
		}
	}
	return change.Current, nil
}

// Validate checks a patch against the vocabulary and field limits.
func (s *Service) Validate(patch records.Patch) error {
	if err := s.validate.Struct(patch); err != nil {
		var fieldErrs validator.ValidationErrors
		if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return fmt.Errorf("%w: %s", ErrValidation, describe(fieldErrs[0]))
		}
		return fmt.Errorf("%w: %v", ErrValidation, err)
	}
	if patch.Empty() {
		return fmt.Errorf("%w: status or note is required", ErrValidation)
	}
	return nil
}

func describe(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "status":
		return field + " must be one of " + records.StatusOneOf
	case "max":
		return field + " must be at most " + fe.Param() + " characters"
	default:
		return field + " is invalid"
	}
}
