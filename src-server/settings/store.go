// Package settings persists per-guild key/value settings.
//
// Missing keys are not an error: Get falls back to the caller's default,
// the same way every consumer of a setting treats "unset".
package settings

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"guildbot/src-server/model"
	"strconv"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/uptrace/bun"
)

const (
	LoggingChannel     = "loggingChannel"
	WelcomeChannel     = "welcomeChannel"
	GoodbyeChannel     = "goodbyeChannel"
	LevelingChannel    = "levelingChannel"
	WelcomeMessage     = "welcomeMessage"
	GoodbyeMessage     = "goodbyeMessage"
	LevelingXPPerLevel = "levelingXPPerLevel"
)

var (
	ErrBlankGuildID = errors.New("settings: guild id is blank")
	ErrBlankKey     = errors.New("settings: key is blank")
)

// Observer receives database latencies. *utils.Metric satisfies it.
type Observer interface {
	ObserveDatabaseRead(startTimer time.Time)
	ObserveDatabaseWrite(startTimer time.Time)
}

type cached struct {
	value string
	ok    bool
}

type Store struct {
	db       bun.IDB
	cache    *lru.Cache[string, cached]
	observer Observer
}

func NewStore(db bun.IDB, cacheSize int, observer Observer) (*Store, error) {
	cache, err := lru.New[string, cached](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("NewStore: %w", err)
	}
	return &Store{
		db:       db,
		cache:    cache,
		observer: observer,
	}, nil
}

func cacheKey(guildID, key string) string {
	return guildID + "/" + key
}

func validate(guildID, key string) error {
	switch {
	case guildID == "":
		return ErrBlankGuildID
	case key == "":
		return ErrBlankKey
	}
	return nil
}

// Get returns the stored value, or def when the key is unset.
func (s *Store) Get(ctx context.Context, guildID, key, def string) (string, error) {
	if err := validate(guildID, key); err != nil {
		return def, err
	}
	if c, ok := s.cache.Get(cacheKey(guildID, key)); ok {
		if c.ok {
			return c.value, nil
		}
		return def, nil
	}

	startTimer := time.Now()
	setting := new(model.GuildSetting)
	err := s.db.NewSelect().
		Model(setting).
		Where("guild_id = ?", guildID).
		Where("setting_key = ?", key).
		Scan(ctx)
	if s.observer != nil {
		s.observer.ObserveDatabaseRead(startTimer)
	}
	switch {
	case errors.Is(err, sql.ErrNoRows):
		s.cache.Add(cacheKey(guildID, key), cached{})
		return def, nil
	case err != nil:
		return def, fmt.Errorf("(*Store).Get: %w", err)
	}

	s.cache.Add(cacheKey(guildID, key), cached{value: setting.Value, ok: true})
	return setting.Value, nil
}

// GetInt is Get for numeric settings. An unparsable value yields def and an error.
func (s *Store) GetInt(ctx context.Context, guildID, key string, def int64) (int64, error) {
	value, err := s.Get(ctx, guildID, key, "")
	if err != nil {
		return def, err
	}
	if value == "" {
		return def, nil
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return def, fmt.Errorf("(*Store).GetInt: %s: %w", key, err)
	}
	return n, nil
}

func (s *Store) Set(ctx context.Context, guildID, key, value string) error {
	if err := validate(guildID, key); err != nil {
		return err
	}

	startTimer := time.Now()
	if err := (&model.GuildSetting{
		GuildID: guildID,
		Key:     key,
		Value:   value,
	}).Upsert(ctx, s.db); err != nil {
		s.cache.Remove(cacheKey(guildID, key))
		return fmt.Errorf("(*Store).Set: %w", err)
	}
	if s.observer != nil {
		s.observer.ObserveDatabaseWrite(startTimer)
	}

	s.cache.Add(cacheKey(guildID, key), cached{value: value, ok: true})
	return nil
}

func (s *Store) Unset(ctx context.Context, guildID, key string) error {
	if err := validate(guildID, key); err != nil {
		return err
	}

	startTimer := time.Now()
	if _, err := s.db.NewDelete().
		Model((*model.GuildSetting)(nil)).
		Where("guild_id = ?", guildID).
		Where("setting_key = ?", key).
		Exec(ctx); err != nil {
		s.cache.Remove(cacheKey(guildID, key))
		return fmt.Errorf("(*Store).Unset: %w", err)
	}
	if s.observer != nil {
		s.observer.ObserveDatabaseWrite(startTimer)
	}

	s.cache.Add(cacheKey(guildID, key), cached{})
	return nil
}

// All returns every key stored for the guild. It bypasses the cache.
func (s *Store) All(ctx context.Context, guildID string) (map[string]string, error) {
	if guildID == "" {
		return nil, ErrBlankGuildID
	}

	startTimer := time.Now()
	rows := make([]model.GuildSetting, 0)
	if err := s.db.NewSelect().
		Model(&rows).
		Where("guild_id = ?", guildID).
		Scan(ctx); err != nil {
		return nil, fmt.Errorf("(*Store).All: %w", err)
	}
	if s.observer != nil {
		s.observer.ObserveDatabaseRead(startTimer)
	}

	all := make(map[string]string, len(rows))
	for _, row := range rows {
		all[row.Key] = row.Value
	}
	return all, nil
}

// CacheLen is the number of entries in the read cache, misses included.
func (s *Store) CacheLen() int {
	return s.cache.Len()
}
