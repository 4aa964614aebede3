package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/Simplici0/shutterquote/internal/pricing"
)

const (
	fieldC2Addition      = "c2_addition"
	fieldC3Addition      = "c3_addition"
	fieldWoodMultiplier  = "wood_multiplier"
	fieldDarkAddition    = "dark_addition"
	fieldPremiumAddition = "premium_addition"
	fieldGlobalAddition  = "global_addition"
)

// RedisStore keeps each family's cells in a hash keyed "<w>:<h>" and the
// settings in a single hash.
type RedisStore struct {
	client *redis.Client
	prefix string
}

// RedisOptions configure NewRedisStore.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

// NewRedisStore connects a new client.
func NewRedisStore(opts RedisOptions) *RedisStore {
	return NewRedisStoreWithClient(redis.NewClient(&redis.Options{
		Addr:         opts.Addr,
		Password:     opts.Password,
		DB:           opts.DB,
		PoolSize:     20,
		MinIdleConns: 2,
	}), opts.Prefix)
}

// NewRedisStoreWithClient wraps an existing client.
func NewRedisStoreWithClient(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{client: client, prefix: prefix}
}

// Ping checks connectivity.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}
	return nil
}

// Close closes the underlying client.
func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) cellsKey(family pricing.Family) string {
	return s.prefix + "unit_prices:" + string(family)
}

func (s *RedisStore) settingsKey() string {
	return s.prefix + "app_settings"
}

func cellField(wIdx, hIdx int) string {
	return strconv.Itoa(wIdx) + ":" + strconv.Itoa(hIdx)
}

// ReadCells returns the stored cells of a family ordered by width then height.
// Malformed hash entries are reported as errors.
func (s *RedisStore) ReadCells(ctx context.Context, family pricing.Family) ([]pricing.Cell, error) {
	raw, err := s.client.HGetAll(ctx, s.cellsKey(family)).Result()
	if err != nil {
		return nil, fmt.Errorf("read unit prices: %w", err)
	}

	cells := make([]pricing.Cell, 0, len(raw))
	for field, value := range raw {
		w, h, ok := strings.Cut(field, ":")
		if !ok {
			return nil, fmt.Errorf("malformed unit price field %q", field)
		}
		var c pricing.Cell
		if c.WidthIndex, err = strconv.Atoi(w); err != nil {
			return nil, fmt.Errorf("malformed unit price field %q: %w", field, err)
		}
		if c.HeightIndex, err = strconv.Atoi(h); err != nil {
			return nil, fmt.Errorf("malformed unit price field %q: %w", field, err)
		}
		if c.Price, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("malformed unit price %q=%q: %w", field, value, err)
		}
		cells = append(cells, c)
	}

	sort.Slice(cells, func(i, j int) bool {
		if cells[i].WidthIndex != cells[j].WidthIndex {
			return cells[i].WidthIndex < cells[j].WidthIndex
		}
		return cells[i].HeightIndex < cells[j].HeightIndex
	})
	return cells, nil
}

// UpsertCell writes one base price.
func (s *RedisStore) UpsertCell(ctx context.Context, family pricing.Family, wIdx, hIdx int, price int64) error {
	if err := s.client.HSet(ctx, s.cellsKey(family), cellField(wIdx, hIdx), price).Err(); err != nil {
		return fmt.Errorf("upsert unit price %s[%d][%d]: %w", family, wIdx, hIdx, err)
	}
	return nil
}

// ReadCoefficients returns the stored settings; ErrNotFound when the hash is absent.
func (s *RedisStore) ReadCoefficients(ctx context.Context) (pricing.CoefficientsPatch, error) {
	raw, err := s.client.HGetAll(ctx, s.settingsKey()).Result()
	if err != nil {
		return pricing.CoefficientsPatch{}, fmt.Errorf("read app settings: %w", err)
	}
	if len(raw) == 0 {
		return pricing.CoefficientsPatch{}, ErrNotFound
	}

	var p pricing.CoefficientsPatch
	ints := []struct {
		field string
		dst   **int64
	}{
		{fieldC2Addition, &p.C2Addition},
		{fieldC3Addition, &p.C3Addition},
		{fieldDarkAddition, &p.DarkAddition},
		{fieldPremiumAddition, &p.PremiumAddition},
		{fieldGlobalAddition, &p.GlobalAddition},
	}
	for _, f := range ints {
		v, ok := raw[f.field]
		if !ok {
			continue
		}
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return pricing.CoefficientsPatch{}, fmt.Errorf("parse %s=%q: %w", f.field, v, err)
		}
		*f.dst = &n
	}
	if v, ok := raw[fieldWoodMultiplier]; ok {
		m, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return pricing.CoefficientsPatch{}, fmt.Errorf("parse %s=%q: %w", fieldWoodMultiplier, v, err)
		}
		p.WoodMultiplier = &m
	}
	return p, nil
}

// WriteCoefficients sets the fields present in patch.
func (s *RedisStore) WriteCoefficients(ctx context.Context, patch pricing.CoefficientsPatch) error {
	values := make(map[string]any)
	if patch.C2Addition != nil {
		values[fieldC2Addition] = *patch.C2Addition
	}
	if patch.C3Addition != nil {
		values[fieldC3Addition] = *patch.C3Addition
	}
	if patch.WoodMultiplier != nil {
		values[fieldWoodMultiplier] = strconv.FormatFloat(*patch.WoodMultiplier, 'g', -1, 64)
	}
	if patch.DarkAddition != nil {
		values[fieldDarkAddition] = *patch.DarkAddition
	}
	if patch.PremiumAddition != nil {
		values[fieldPremiumAddition] = *patch.PremiumAddition
	}
	if patch.GlobalAddition != nil {
		values[fieldGlobalAddition] = *patch.GlobalAddition
	}
	if len(values) == 0 {
		return nil
	}

	if err := s.client.HSet(ctx, s.settingsKey(), values).Err(); err != nil {
		return fmt.Errorf("write app settings: %w", err)
	}
	return nil
}
