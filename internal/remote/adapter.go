// Package remote mirrors local cache writes to the keyed record endpoint on a
// best-effort basis and falls back to the cache whenever the endpoint is slow
// or unreachable.
package remote

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"medcore/m/domain"
	"medcore/m/internal/cache"
)

const DefaultTimeout = 5 * time.Second

type Options struct {
	// Client is nil when no remote endpoint is configured.
	Client       Client
	Connectivity Connectivity
	Timeout      time.Duration
	Concurrency  int
	// OutboxEnabled queues failed writes for Flush instead of dropping them.
	OutboxEnabled bool
	Logger        zerolog.Logger
}

// Adapter is the single read and write path for record collections.
type Adapter struct {
	store       *cache.Store
	client      Client
	conn        Connectivity
	outbox      *Outbox
	timeout     time.Duration
	concurrency int
	log         zerolog.Logger
	wg          sync.WaitGroup

	// mu orders local writes against their remote outcome and is always
	// taken before the store lock.
	mu     sync.Mutex
	seq    uint64
	unsent map[string]localWrite
}

// localWrite is the newest local write of one record that has been sent in
// the background and not answered yet.
type localWrite struct {
	seq     uint64
	entity  domain.EntityType
	id      string
	op      Op
	payload json.RawMessage
}

func writeKey(entity domain.EntityType, id string) string {
	return string(entity) + "/" + id
}

func NewAdapter(store *cache.Store, opts Options) *Adapter {
	a := &Adapter{
		store:       store,
		client:      opts.Client,
		conn:        opts.Connectivity,
		timeout:     opts.Timeout,
		concurrency: opts.Concurrency,
		log:         opts.Logger,
		unsent:      make(map[string]localWrite),
	}
	if a.conn == nil {
		a.conn = Static(opts.Client != nil)
	}
	if a.timeout <= 0 {
		a.timeout = DefaultTimeout
	}
	if a.concurrency < 1 {
		a.concurrency = 1
	}
	if opts.OutboxEnabled {
		a.outbox = NewOutbox(store)
	}
	return a
}

// Store exposes the underlying cache for raw values (session, config).
func (a *Adapter) Store() *cache.Store { return a.store }

// Outbox returns nil when queuing is disabled.
func (a *Adapter) Outbox() *Outbox { return a.outbox }

func (a *Adapter) online(ctx context.Context) bool {
	return a.client != nil && a.conn.Online(ctx)
}

// FetchCollection returns the remote collection when it answers in time and
// the cached one otherwise. Only cache failures are reported.
func (a *Adapter) FetchCollection(ctx context.Context, entity domain.EntityType) ([]json.RawMessage, error) {
	key := cache.CollectionKey(entity)
	if !a.online(ctx) {
		return a.store.Read(key)
	}

	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	records, err := a.client.Fetch(callCtx, entity)
	cancel()
	if err != nil {
		err = classify(err, "fetch", entity, "", a.timeout)
		a.log.Warn().Err(err).Str("entity", string(entity)).Msg("remote fetch failed, using cache")
		return a.store.Read(key)
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if a.outbox != nil {
		if records, err = a.outbox.Overlay(entity, records); err != nil {
			return nil, err
		}
	}
	records = a.overlayUnsent(entity, records)
	if err := a.store.Write(key, records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []json.RawMessage{}
	}
	return records, nil
}

// UpsertRecord replaces or appends one record in the cache and then mirrors it
// remotely in the background.
func (a *Adapter) UpsertRecord(ctx context.Context, entity domain.EntityType, record json.RawMessage) error {
	id, err := RecordID(record)
	if err != nil {
		return err
	}
	online := a.online(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	err = a.store.Update(cache.CollectionKey(entity), func(records []json.RawMessage) ([]json.RawMessage, error) {
		if idx := indexOf(records, id); idx >= 0 {
			records[idx] = record
			return records, nil
		}
		return append(records, record), nil
	})
	if err != nil {
		return err
	}

	if !online {
		delete(a.unsent, writeKey(entity, id))
		a.queue(entity, id, OpUpsert, record)
		return nil
	}
	seq := a.track(entity, id, OpUpsert, record)
	a.background(ctx, func(ctx context.Context) {
		a.push(ctx, entity, id, OpUpsert, record, seq)
	})
	return nil
}

// SaveCollection writes the whole collection locally, then upserts each record
// remotely. Records missing from the new collection are deleted remotely.
func (a *Adapter) SaveCollection(ctx context.Context, entity domain.EntityType, records []json.RawMessage) error {
	key := cache.CollectionKey(entity)
	type write struct {
		id      string
		op      Op
		payload json.RawMessage
		seq     uint64
	}
	var writes []write
	online := a.online(ctx)

	a.mu.Lock()
	defer a.mu.Unlock()
	err := a.store.Update(key, func(previous []json.RawMessage) ([]json.RawMessage, error) {
		kept := make(map[string]bool, len(records))
		for _, raw := range records {
			id, err := RecordID(raw)
			if err != nil {
				return nil, err
			}
			kept[id] = true
			writes = append(writes, write{id: id, op: OpUpsert, payload: raw})
		}
		for _, raw := range previous {
			if id, err := RecordID(raw); err == nil && !kept[id] {
				writes = append(writes, write{id: id, op: OpDelete})
			}
		}
		return records, nil
	})
	if err != nil {
		return err
	}

	if !online {
		for _, w := range writes {
			delete(a.unsent, writeKey(entity, w.id))
			a.queue(entity, w.id, w.op, w.payload)
		}
		return nil
	}
	for i := range writes {
		writes[i].seq = a.track(entity, writes[i].id, writes[i].op, writes[i].payload)
	}
	a.background(ctx, func(ctx context.Context) {
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(a.concurrency)
		for _, w := range writes {
			w := w
			g.Go(func() error {
				a.push(gctx, entity, w.id, w.op, w.payload, w.seq)
				return nil
			})
		}
		_ = g.Wait()
	})
	return nil
}

// FlushResult summarizes one outbox replay.
type FlushResult struct {
	Sent    int
	Failed  int
	Pending int
}

// Flush replays queued writes. Entries for one entity are sent in queue order;
// entities are replayed concurrently.
func (a *Adapter) Flush(ctx context.Context) (FlushResult, error) {
	var res FlushResult
	if a.outbox == nil {
		return res, nil
	}
	pending, err := a.outbox.Pending()
	if err != nil {
		return res, err
	}
	if len(pending) == 0 {
		return res, nil
	}
	if !a.online(ctx) {
		res.Pending = len(pending)
		return res, ErrOffline
	}

	byEntity := make(map[domain.EntityType][]OutboxEntry)
	var order []domain.EntityType
	for _, e := range pending {
		if _, ok := byEntity[e.Entity]; !ok {
			order = append(order, e.Entity)
		}
		byEntity[e.Entity] = append(byEntity[e.Entity], e)
	}

	var (
		mu     sync.Mutex
		sent   []string
		failed []string
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for _, entity := range order {
		entries := byEntity[entity]
		g.Go(func() error {
			for _, e := range entries {
				if a.superseded(e.Entity, e.ID) {
					// a newer write is in flight and queues itself if it fails
					mu.Lock()
					sent = append(sent, e.Ref)
					mu.Unlock()
					continue
				}
				err := a.send(gctx, e.Entity, e.ID, e.Op, e.Payload)
				mu.Lock()
				if err != nil {
					failed = append(failed, e.Ref)
					a.log.Warn().Err(err).Str("entity", string(e.Entity)).Str("id", e.ID).Msg("outbox replay failed")
				} else {
					sent = append(sent, e.Ref)
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := a.outbox.Ack(sent...); err != nil {
		return res, err
	}
	if err := a.outbox.MarkFailed(failed...); err != nil {
		return res, err
	}
	res.Sent, res.Failed = len(sent), len(failed)
	left, err := a.outbox.Pending()
	if err != nil {
		return res, err
	}
	res.Pending = len(left)
	return res, nil
}

// Wait blocks until background remote writes have finished.
func (a *Adapter) Wait() { a.wg.Wait() }

func (a *Adapter) background(ctx context.Context, fn func(context.Context)) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		fn(context.WithoutCancel(ctx))
	}()
}

// track registers a background write as the newest one for its record.
// Callers hold a.mu.
func (a *Adapter) track(entity domain.EntityType, id string, op Op, payload json.RawMessage) uint64 {
	a.seq++
	a.unsent[writeKey(entity, id)] = localWrite{seq: a.seq, entity: entity, id: id, op: op, payload: payload}
	return a.seq
}

func (a *Adapter) superseded(entity domain.EntityType, id string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.unsent[writeKey(entity, id)]
	return ok
}

// overlayUnsent applies background writes that have not been answered yet.
// Callers hold a.mu.
func (a *Adapter) overlayUnsent(entity domain.EntityType, records []json.RawMessage) []json.RawMessage {
	for _, w := range a.unsent {
		if w.entity != entity {
			continue
		}
		idx := indexOf(records, w.id)
		switch {
		case w.op == OpDelete && idx >= 0:
			records = append(records[:idx], records[idx+1:]...)
		case w.op == OpUpsert && idx >= 0:
			records[idx] = w.payload
		case w.op == OpUpsert:
			records = append(records, w.payload)
		}
	}
	return records
}

// push sends one background write. Only the newest local write of a record
// settles its outbox state; an older write that lands late is ignored.
func (a *Adapter) push(ctx context.Context, entity domain.EntityType, id string, op Op, payload json.RawMessage, seq uint64) {
	err := a.send(ctx, entity, id, op, payload)

	a.mu.Lock()
	defer a.mu.Unlock()
	key := writeKey(entity, id)
	w, ok := a.unsent[key]
	newest := ok && w.seq == seq
	if newest {
		delete(a.unsent, key)
	}

	if err == nil {
		if newest && a.outbox != nil {
			if err := a.outbox.Discard(entity, id); err != nil {
				a.log.Error().Err(err).Str("entity", string(entity)).Str("id", id).Msg("unable to clear outbox entry")
			}
		}
		return
	}
	var timeout *PersistenceTimeoutError
	event := a.log.Warn().Err(err).Str("entity", string(entity)).Str("id", id).Str("op", string(op))
	if errors.As(err, &timeout) {
		event = event.Dur("timeout", timeout.Timeout)
	}
	if !newest {
		event.Msg("remote write failed, newer write pending")
		return
	}
	event.Msg("remote write failed")
	a.queue(entity, id, op, payload)
}

func (a *Adapter) send(ctx context.Context, entity domain.EntityType, id string, op Op, payload json.RawMessage) error {
	ctx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()
	var err error
	switch op {
	case OpDelete:
		err = a.client.Delete(ctx, entity, id)
	default:
		err = a.client.Upsert(ctx, entity, payload)
	}
	if err != nil {
		return classify(err, string(op), entity, id, a.timeout)
	}
	return nil
}

// queue keeps a write for Flush when the outbox is on and drops it otherwise.
func (a *Adapter) queue(entity domain.EntityType, id string, op Op, payload json.RawMessage) {
	if a.client == nil {
		return
	}
	if a.outbox == nil {
		a.log.Debug().Str("entity", string(entity)).Str("id", id).Msg("remote write dropped")
		return
	}
	if err := a.outbox.Enqueue(entity, id, op, payload); err != nil {
		a.log.Error().Err(err).Str("entity", string(entity)).Str("id", id).Msg("unable to queue remote write")
	}
}
