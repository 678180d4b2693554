package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gagliardetto/solana-go"
	"github.com/redis/go-redis/v9"

	"github.com/metaloot/registry/internal/model"
	"github.com/metaloot/registry/internal/storage"
)

// Storage is a Redis-backed account arena. Units of work use optimistic
// locking: every account read is WATCHed and the buffered writes are committed
// in a MULTI/EXEC, which fails if any watched key changed meanwhile.
type Storage struct {
	client *redis.Client
	cfg    Config
}

// New creates a new Redis storage instance
func New(cfg Config) (*Storage, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, err
	}

	opts.PoolSize = cfg.PoolSize
	opts.MinIdleConns = cfg.MinIdleConns

	client := redis.NewClient(opts)

	// Verify connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, err
	}

	return &Storage{
		client: client,
		cfg:    cfg,
	}, nil
}

// NewWithClient creates a Redis storage with an existing client (for testing)
func NewWithClient(client *redis.Client, cfg Config) *Storage {
	return &Storage{
		client: client,
		cfg:    cfg,
	}
}

// Close closes the Redis connection
func (s *Storage) Close() error {
	return s.client.Close()
}

// Ensure Storage implements the interface
var _ storage.Store = (*Storage)(nil)

func (s *Storage) Update(ctx context.Context, fn func(tx storage.Tx) error) error {
	attempts := max(s.cfg.MaxRetries, 1)
	for range attempts {
		err := s.client.Watch(ctx, func(rtx *redis.Tx) error {
			t := newTx(ctx, rtx, false)
			if err := fn(t); err != nil {
				return err
			}
			return t.commit()
		})
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return model.ErrConflict
}

func (s *Storage) View(ctx context.Context, fn func(tx storage.Tx) error) error {
	return s.client.Watch(ctx, func(rtx *redis.Tx) error {
		return fn(newTx(ctx, rtx, true))
	})
}

func (s *Storage) MarkProcessed(ctx context.Context, txID string) error {
	fresh, err := s.client.SetNX(ctx, processedKey(txID), 1, s.cfg.ProcessedTTL).Result()
	if err != nil {
		return err
	}
	if !fresh {
		return fmt.Errorf("%w: %s", model.ErrDuplicateTransaction, txID)
	}
	return nil
}

// tx reads through a watched connection and buffers writes. Each key is
// watched and fetched once; later reads in the unit are served from reads,
// so a write by another client after the first read fails the commit.
type tx struct {
	ctx      context.Context
	rtx      *redis.Tx
	reads    map[solana.PublicKey]*model.Account // nil value: key was absent
	writes   map[solana.PublicKey]*model.Account
	order    []solana.PublicKey
	readOnly bool
}

func newTx(ctx context.Context, rtx *redis.Tx, readOnly bool) *tx {
	return &tx{
		ctx:      ctx,
		rtx:      rtx,
		reads:    make(map[solana.PublicKey]*model.Account),
		writes:   make(map[solana.PublicKey]*model.Account),
		readOnly: readOnly,
	}
}

func (t *tx) load(addr solana.PublicKey) (*model.Account, error) {
	if acct, ok := t.writes[addr]; ok {
		return acct, nil
	}
	if acct, ok := t.reads[addr]; ok {
		return acct, nil
	}

	acct, err := t.fetch(addr)
	if err != nil {
		return nil, err
	}
	t.reads[addr] = acct
	return acct, nil
}

func (t *tx) fetch(addr solana.PublicKey) (*model.Account, error) {
	key := accountKey(addr)
	if !t.readOnly {
		if err := t.rtx.Watch(t.ctx, key).Err(); err != nil {
			return nil, err
		}
	}

	data, err := t.rtx.Get(t.ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	var acct model.Account
	if err := json.Unmarshal(data, &acct); err != nil {
		return nil, err
	}
	return &acct, nil
}

func (t *tx) Get(addr solana.PublicKey) (*model.Account, error) {
	acct, err := t.load(addr)
	if err != nil {
		return nil, err
	}
	if acct == nil {
		return nil, fmt.Errorf("%w: %s", model.ErrAccountNotFound, addr)
	}
	return acct.Clone(), nil
}

func (t *tx) Exists(addr solana.PublicKey) (bool, error) {
	acct, err := t.load(addr)
	if err != nil {
		return false, err
	}
	return acct != nil, nil
}

func (t *tx) Create(acct *model.Account) error {
	if t.readOnly {
		return storage.ErrReadOnly
	}
	exists, err := t.Exists(acct.Address)
	if err != nil {
		return err
	}
	if exists {
		return fmt.Errorf("%w: %s", model.ErrAlreadyExists, acct.Address)
	}
	t.stage(acct)
	return nil
}

func (t *tx) Put(acct *model.Account) error {
	if t.readOnly {
		return storage.ErrReadOnly
	}
	exists, err := t.Exists(acct.Address)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: %s", model.ErrAccountNotFound, acct.Address)
	}
	t.stage(acct)
	return nil
}

func (t *tx) stage(acct *model.Account) {
	if _, ok := t.writes[acct.Address]; !ok {
		t.order = append(t.order, acct.Address)
	}
	t.writes[acct.Address] = acct.Clone()
}

// commit writes every staged account in one MULTI/EXEC
func (t *tx) commit() error {
	if len(t.order) == 0 {
		return nil
	}
	_, err := t.rtx.TxPipelined(t.ctx, func(pipe redis.Pipeliner) error {
		for _, addr := range t.order {
			data, err := json.Marshal(t.writes[addr])
			if err != nil {
				return err
			}
			pipe.Set(t.ctx, accountKey(addr), data, 0)
		}
		return nil
	})
	return err
}
