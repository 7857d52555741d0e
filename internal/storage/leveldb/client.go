// internal/storage/leveldb/client.go
package leveldb

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fawad-mazhar/shopfloor/internal/config"
	"github.com/fawad-mazhar/shopfloor/internal/models"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
	"github.com/syndtr/goleveldb/leveldb/util"
)

const sessionKeyPrefix = "session:"

type CacheEntry struct {
	Value     []byte    `json:"value"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Client is a TTL cache of live sessions on top of LevelDB
type Client struct {
	db              *leveldb.DB
	ttl             time.Duration
	cleanupInterval time.Duration
	mutex           sync.RWMutex
	stopCleanup     chan struct{}
	now             func() time.Time
}

func NewClient(cfg config.LevelDBConfig) (*Client, error) {
	opts := &opt.Options{
		CompactionTableSize: 2 * 1024 * 1024, // 2MB
		WriteBuffer:         1 * 1024 * 1024, // 1MB
	}

	db, err := leveldb.OpenFile(cfg.Path, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb: %w", err)
	}

	ttl := time.Duration(cfg.TTLHours) * time.Hour
	if ttl <= 0 {
		ttl = time.Duration(config.DefaultCacheTTLHours) * time.Hour
	}

	client := &Client{
		db:              db,
		ttl:             ttl,
		cleanupInterval: ttl / 4,
		stopCleanup:     make(chan struct{}),
		now:             time.Now,
	}

	go client.startCleanupRoutine()

	return client, nil
}

func (c *Client) Close() error {
	close(c.stopCleanup)
	return c.db.Close()
}

func sessionKey(id string) []byte {
	return []byte(sessionKeyPrefix + id)
}

// PutSession caches a session snapshot
func (c *Client) PutSession(session *models.Session) error {
	data, err := session.ToJSON()
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}
	return c.put(sessionKey(session.ID), data)
}

// GetSession returns the cached session, or nil on a miss or expiry
func (c *Client) GetSession(id string) (*models.Session, error) {
	data, err := c.get(sessionKey(id))
	if err != nil || data == nil {
		return nil, err
	}

	var session models.Session
	if err := session.FromJSON(data); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached session: %w", err)
	}
	return &session, nil
}

// DeleteSession evicts a session
func (c *Client) DeleteSession(id string) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	return c.db.Delete(sessionKey(id), nil)
}

// CountSessions returns the number of unexpired cached sessions
func (c *Client) CountSessions() (int, error) {
	c.mutex.RLock()
	defer c.mutex.RUnlock()

	iter := c.db.NewIterator(util.BytesPrefix([]byte(sessionKeyPrefix)), nil)
	defer iter.Release()

	count := 0
	now := c.now()
	for iter.Next() {
		var entry CacheEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			continue
		}
		if now.Before(entry.ExpiresAt) {
			count++
		}
	}
	return count, iter.Error()
}

func (c *Client) put(key, value []byte) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry := CacheEntry{
		Value:     value,
		ExpiresAt: c.now().Add(c.ttl),
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("failed to marshal cache entry: %w", err)
	}

	return c.db.Put(key, data, nil)
}

func (c *Client) get(key []byte) ([]byte, error) {
	c.mutex.RLock()
	data, err := c.db.Get(key, nil)
	c.mutex.RUnlock()
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, nil
		}
		return nil, err
	}

	var entry CacheEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache entry: %w", err)
	}

	if c.now().After(entry.ExpiresAt) {
		// Entry has expired, delete it
		c.mutex.Lock()
		c.db.Delete(key, nil)
		c.mutex.Unlock()
		return nil, nil
	}

	return entry.Value, nil
}

func (c *Client) startCleanupRoutine() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.cleanup()
		case <-c.stopCleanup:
			return
		}
	}
}

func (c *Client) cleanup() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	iter := c.db.NewIterator(util.BytesPrefix([]byte{}), nil)
	defer iter.Release()

	batch := new(leveldb.Batch)
	now := c.now()

	for iter.Next() {
		var entry CacheEntry
		if err := json.Unmarshal(iter.Value(), &entry); err != nil {
			continue
		}

		if now.After(entry.ExpiresAt) {
			// iterator keys are only valid until the next call
			key := append([]byte(nil), iter.Key()...)
			batch.Delete(key)
		}
	}

	if batch.Len() > 0 {
		c.db.Write(batch, nil)
	}
}
