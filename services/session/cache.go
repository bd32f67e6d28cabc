package session

import (
	"context"
	"sync"
	"time"

	"authlink/models"

	"go.uber.org/zap"
)

// Subscriber is notified with the new snapshot whenever an identity's entry changes.
type Subscriber func(uid string, entry models.SessionEntry)

// Renewer turns a session whose ID token has expired into a fresh one. It must not
// publish into the cache itself.
type Renewer func(ctx context.Context, sess *models.Session) (*models.Session, error)

// Cache is the process-wide view of signed-in identities. Only the identity gateway
// publishes or evicts; every other component reads snapshots and subscribes.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]models.SessionEntry
	// gen counts writes per identity so a load that raced a Publish or Evict is discarded.
	gen     map[string]uint64
	store   Store
	renew   Renewer
	subs    map[int]Subscriber
	nextSub int
	logger  *zap.Logger
	now     func() time.Time
}

// NewCache builds a cache backed by store. A nil store keeps sessions in memory only.
func NewCache(store Store, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		entries: make(map[string]models.SessionEntry),
		gen:     make(map[string]uint64),
		store:   store,
		subs:    make(map[int]Subscriber),
		logger:  logger,
		now:     time.Now,
	}
}

// SetRenewer installs the hook Get uses for sessions past their expiry. Without one,
// expired sessions are evicted.
func (c *Cache) SetRenewer(fn Renewer) {
	c.mu.Lock()
	c.renew = fn
	c.mu.Unlock()
}

// Peek returns the in-memory entry without touching the backing store.
func (c *Cache) Peek(uid string) models.SessionEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[uid]
	if !ok {
		return models.SessionEntry{State: models.SessionAbsent}
	}
	return snapshot(entry)
}

// Get returns the entry for uid, loading it from the backing store on a miss.
// While that load is pending, concurrent readers observe SessionLoading.
// A session past its expiry is renewed through the Renewer or evicted.
func (c *Cache) Get(ctx context.Context, uid string) models.SessionEntry {
	if uid == "" {
		return models.SessionEntry{State: models.SessionAbsent}
	}

	c.mu.Lock()
	entry, ok := c.entries[uid]
	if ok || c.store == nil {
		c.mu.Unlock()
		if !ok {
			return models.SessionEntry{State: models.SessionAbsent}
		}
		if c.expired(entry) {
			return c.renewOrDrop(ctx, uid, entry.Session)
		}
		return snapshot(entry)
	}
	loading := models.SessionEntry{State: models.SessionLoading}
	c.entries[uid] = loading
	started := c.gen[uid]
	c.mu.Unlock()
	c.notify(uid, loading)

	sess, err := c.store.Load(ctx, uid)
	if err != nil {
		c.logger.Warn("session: failed to load snapshot", zap.String("uid", uid), zap.Error(err))
	}

	c.mu.Lock()
	if c.gen[uid] != started {
		// A Publish or Evict landed while we were loading; it wins.
		current, ok := c.entries[uid]
		c.mu.Unlock()
		if !ok {
			return models.SessionEntry{State: models.SessionAbsent}
		}
		return snapshot(current)
	}
	if sess == nil {
		delete(c.entries, uid)
		c.mu.Unlock()
		absent := models.SessionEntry{State: models.SessionAbsent}
		c.notify(uid, absent)
		return absent
	}
	entry = models.SessionEntry{State: models.SessionPresent, Session: sess}
	c.entries[uid] = entry
	c.mu.Unlock()

	if c.expired(entry) {
		return c.renewOrDrop(ctx, uid, sess)
	}
	c.notify(uid, snapshot(entry))
	return snapshot(entry)
}

func (c *Cache) expired(entry models.SessionEntry) bool {
	if entry.State != models.SessionPresent || entry.Session == nil || entry.Session.ExpiresAt.IsZero() {
		return false
	}
	return !c.now().Before(entry.Session.ExpiresAt)
}

func (c *Cache) renewOrDrop(ctx context.Context, uid string, sess *models.Session) models.SessionEntry {
	c.mu.RLock()
	renew := c.renew
	c.mu.RUnlock()

	if renew != nil {
		renewed, err := renew(ctx, clone(sess))
		if err == nil && renewed != nil && renewed.UID == uid {
			c.Publish(ctx, renewed)
			return c.Peek(uid)
		}
		c.logger.Info("session: renewal failed, dropping session", zap.String("uid", uid), zap.Error(err))
	}
	c.Evict(ctx, uid)
	return models.SessionEntry{State: models.SessionAbsent}
}

// Publish stores a fresh session snapshot and notifies subscribers.
func (c *Cache) Publish(ctx context.Context, sess *models.Session) {
	if sess == nil || sess.UID == "" {
		return
	}
	entry := models.SessionEntry{State: models.SessionPresent, Session: clone(sess)}

	c.mu.Lock()
	c.entries[sess.UID] = entry
	c.gen[sess.UID]++
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Save(ctx, entry.Session); err != nil {
			c.logger.Warn("session: failed to persist snapshot", zap.String("uid", sess.UID), zap.Error(err))
		}
	}
	c.notify(sess.UID, snapshot(entry))
}

// Evict drops the session for uid.
func (c *Cache) Evict(ctx context.Context, uid string) {
	c.mu.Lock()
	delete(c.entries, uid)
	c.gen[uid]++
	c.mu.Unlock()

	if c.store != nil {
		if err := c.store.Delete(ctx, uid); err != nil {
			c.logger.Warn("session: failed to delete snapshot", zap.String("uid", uid), zap.Error(err))
		}
	}
	c.notify(uid, models.SessionEntry{State: models.SessionAbsent})
}

// Subscribe registers fn for every change and returns a function that removes it.
func (c *Cache) Subscribe(fn Subscriber) func() {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs[id] = fn
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		delete(c.subs, id)
		c.mu.Unlock()
	}
}

func (c *Cache) notify(uid string, entry models.SessionEntry) {
	c.mu.RLock()
	subs := make([]Subscriber, 0, len(c.subs))
	for _, fn := range c.subs {
		subs = append(subs, fn)
	}
	c.mu.RUnlock()

	for _, fn := range subs {
		fn(uid, entry)
	}
}

func snapshot(entry models.SessionEntry) models.SessionEntry {
	return models.SessionEntry{State: entry.State, Session: clone(entry.Session)}
}

func clone(sess *models.Session) *models.Session {
	if sess == nil {
		return nil
	}
	cp := *sess
	cp.Providers = append([]string(nil), sess.Providers...)
	return &cp
}
