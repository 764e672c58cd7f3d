// ABOUTME: Hosted entity service composing the normalizer and batch reducer
// ABOUTME: Reads degrade to empty results; writes fail only on total failure
package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/harperreed/dealdesk/backend"
	"github.com/harperreed/dealdesk/models"
	"github.com/harperreed/dealdesk/records"
)

// Hosted implements Store over a backend.Client.
type Hosted[T, In any] struct {
	client   backend.Client
	mapping  *records.Mapping[T, In]
	noun     string
	notifier records.Notifier
	logger   *zap.Logger
}

// Option configures a Hosted service.
type Option func(*options)

type options struct {
	notifier records.Notifier
	logger   *zap.Logger
}

// WithLogger sets the logger used for degraded reads and failed items.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithNotifier sets the notifier that receives user-facing messages.
func WithNotifier(n records.Notifier) Option {
	return func(o *options) { o.notifier = n }
}

// NewHosted builds a hosted service. noun names the entity in messages.
func NewHosted[T, In any](client backend.Client, mapping *records.Mapping[T, In], noun string, opts ...Option) *Hosted[T, In] {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.notifier == nil {
		o.notifier = records.LogNotifier{Logger: o.logger}
	}
	return &Hosted[T, In]{
		client:   client,
		mapping:  mapping,
		noun:     noun,
		notifier: o.notifier,
		logger:   o.logger.With(zap.String("table", mapping.Table)),
	}
}

// NewContactService returns the hosted contact service.
func NewContactService(client backend.Client, opts ...Option) *Hosted[models.Contact, models.ContactInput] {
	return NewHosted(client, records.ContactMapping(), "contact", opts...)
}

// NewDealService returns the hosted deal service.
func NewDealService(client backend.Client, opts ...Option) *Hosted[models.Deal, models.DealInput] {
	return NewHosted(client, records.DealMapping(), "deal", opts...)
}

func (s *Hosted[T, In]) notify(ctx context.Context) records.Notifier {
	return records.Multi(s.notifier, records.FromContext(ctx))
}

func (s *Hosted[T, In]) GetAll(ctx context.Context) ([]T, error) {
	out := []T{}

	resp, err := s.client.FetchRecords(ctx, s.mapping.Table, backend.Params{
		Fields:  s.mapping.Selectors(),
		OrderBy: s.mapping.NewestFirst(),
	})
	if err != nil {
		s.logger.Error("failed to fetch "+s.noun+"s", zap.Error(err))
		return out, fmt.Errorf("%w: fetch %ss: %v", ErrUnavailable, s.noun, err)
	}
	if resp == nil || !resp.Success {
		var msg string
		if resp != nil {
			msg = resp.Message
		}
		s.logger.Error("fetch rejected", zap.String("message", msg))
		if msg != "" {
			s.notify(ctx).Notify(msg)
		}
		return out, nil
	}

	recs, err := resp.Records()
	if err != nil {
		s.logger.Error("failed to decode "+s.noun+"s", zap.Error(err))
		return out, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	for _, rec := range recs {
		out = append(out, s.mapping.ToDomain(rec))
	}
	return out, nil
}

func (s *Hosted[T, In]) GetByID(ctx context.Context, id int) (*T, error) {
	resp, err := s.client.GetRecordByID(ctx, s.mapping.Table, id, backend.Params{
		Fields: s.mapping.Selectors(),
	})
	if err != nil {
		s.logger.Error("failed to fetch "+s.noun, zap.Int("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: fetch %s %d: %v", ErrUnavailable, s.noun, id, err)
	}
	if resp == nil || !resp.Success {
		return nil, nil
	}

	rec, err := resp.Record()
	if err != nil {
		s.logger.Error("failed to decode "+s.noun, zap.Int("id", id), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if rec == nil {
		return nil, nil
	}
	entity := s.mapping.ToDomain(rec)
	return &entity, nil
}

func (s *Hosted[T, In]) Create(ctx context.Context, in In) (T, error) {
	rec := s.mapping.ToExternal(in, records.ForCreate)

	resp, err := s.client.CreateRecord(ctx, s.mapping.Table, backend.Params{
		Records: []backend.Record{rec},
	})
	if err != nil {
		var zero T
		s.logger.Error("failed to create "+s.noun, zap.Error(err))
		return zero, fmt.Errorf("failed to create %s: %w", s.noun, err)
	}
	return s.reduceWrite(ctx, "create", resp)
}

func (s *Hosted[T, In]) Update(ctx context.Context, id int, in In) (T, error) {
	rec := s.mapping.ToExternal(in, records.ForUpdate)
	rec[s.mapping.IDKey] = id

	resp, err := s.client.UpdateRecord(ctx, s.mapping.Table, backend.Params{
		Records: []backend.Record{rec},
	})
	if err != nil {
		var zero T
		s.logger.Error("failed to update "+s.noun, zap.Int("id", id), zap.Error(err))
		return zero, fmt.Errorf("failed to update %s: %w", s.noun, err)
	}
	return s.reduceWrite(ctx, "update", resp)
}

func (s *Hosted[T, In]) reduceWrite(ctx context.Context, op string, resp *backend.Response) (T, error) {
	var zero T

	b, err := records.Reduce(resp, s.mapping.ToDomain, s.notify(ctx))
	if err != nil {
		s.logger.Error(op+" rejected", zap.Error(err))
		return zero, err
	}
	if len(b.Failed) > 0 {
		s.logger.Error(fmt.Sprintf("failed to %s %d %s records", op, len(b.Failed), s.noun),
			zap.Any("failed", b.Failed))
	}

	entity, ok := b.First()
	if !ok {
		return zero, fmt.Errorf("%w: failed to %s %s: %w", ErrWriteFailed, op, s.noun, records.ErrNoSuccess)
	}
	return entity, nil
}

// Delete never returns an error: transport failures and rejections are
// logged and reported as false.
func (s *Hosted[T, In]) Delete(ctx context.Context, id int) (bool, error) {
	resp, err := s.client.DeleteRecord(ctx, s.mapping.Table, backend.Params{
		RecordIDs: []int{id},
	})
	if err != nil {
		s.logger.Error("failed to delete "+s.noun, zap.Int("id", id), zap.Error(err))
		return false, nil
	}

	ok := records.ReduceDelete(resp, s.notify(ctx))
	if !ok {
		s.logger.Warn(s.noun+" not deleted", zap.Int("id", id))
	}
	return ok, nil
}
