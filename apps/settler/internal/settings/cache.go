package settings

import (
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Setting keys persisted in the settings table.
const (
	KeyExchangeRate  = "exchange_rate"
	KeyMinDeposit    = "min_deposit_amount"
	KeyMinWithdrawal = "min_withdrawal_amount"
)

// ErrInvalidValue is returned when an update fails the key's range rule.
var ErrInvalidValue = errors.New("invalid setting value")

var defaults = map[string]decimal.Decimal{
	KeyExchangeRate:  decimal.NewFromInt(130),
	KeyMinDeposit:    decimal.Zero,
	KeyMinWithdrawal: decimal.NewFromInt(10),
}

// Store is the durable half of the cache; the settings repository implements it.
type Store interface {
	Get(key string) (string, bool, error)
	Upsert(key, value string) error
}

// Cache is a read-through/write-through mirror of the settings table. Reads
// hydrate lazily per key, persisting the default when the store has no row.
// Writes hit the store first so a crash never loses a value the cache served.
type Cache struct {
	store  Store
	logger *zap.Logger

	mu     sync.RWMutex
	values map[string]decimal.Decimal
}

func NewCache(store Store, logger *zap.Logger) *Cache {
	return &Cache{
		store:  store,
		logger: logger,
		values: make(map[string]decimal.Decimal),
	}
}

func (c *Cache) ExchangeRate() (decimal.Decimal, error) {
	return c.get(KeyExchangeRate)
}

func (c *Cache) MinDeposit() (decimal.Decimal, error) {
	return c.get(KeyMinDeposit)
}

func (c *Cache) MinWithdrawal() (decimal.Decimal, error) {
	return c.get(KeyMinWithdrawal)
}

// SetExchangeRate rejects non-positive rates.
func (c *Cache) SetExchangeRate(value decimal.Decimal) error {
	if value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: exchange rate must be positive", ErrInvalidValue)
	}
	return c.set(KeyExchangeRate, value)
}

// SetMinDeposit rejects negative thresholds. Zero disables the gate.
func (c *Cache) SetMinDeposit(value decimal.Decimal) error {
	if value.IsNegative() {
		return fmt.Errorf("%w: minimum deposit must not be negative", ErrInvalidValue)
	}
	return c.set(KeyMinDeposit, value)
}

// SetMinWithdrawal rejects non-positive thresholds.
func (c *Cache) SetMinWithdrawal(value decimal.Decimal) error {
	if value.LessThanOrEqual(decimal.Zero) {
		return fmt.Errorf("%w: minimum withdrawal must be positive", ErrInvalidValue)
	}
	return c.set(KeyMinWithdrawal, value)
}

func (c *Cache) get(key string) (decimal.Decimal, error) {
	c.mu.RLock()
	value, ok := c.values[key]
	c.mu.RUnlock()
	if ok {
		return value, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	// Another request may have hydrated while we waited for the lock.
	if value, ok := c.values[key]; ok {
		return value, nil
	}

	raw, found, err := c.store.Get(key)
	if err != nil {
		return decimal.Zero, err
	}

	if !found {
		value = defaults[key]
		// Seed the default so the store and cache never disagree after
		// the first read.
		if err := c.store.Upsert(key, value.String()); err != nil {
			return decimal.Zero, err
		}
		c.logger.Info("Seeded default setting",
			zap.String("key", key),
			zap.String("value", value.String()))
	} else {
		value, err = decimal.NewFromString(raw)
		if err != nil {
			return decimal.Zero, fmt.Errorf("stored value for %s is not a number: %w", key, err)
		}
	}

	c.values[key] = value
	return value, nil
}

func (c *Cache) set(key string, value decimal.Decimal) error {
	// Durable write first; the cache must never serve a value a crash
	// could lose.
	if err := c.store.Upsert(key, value.String()); err != nil {
		return err
	}

	c.mu.Lock()
	c.values[key] = value
	c.mu.Unlock()
	return nil
}
