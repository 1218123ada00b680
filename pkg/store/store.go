package store

import (
	"context"
	"errors"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cast"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/socs/socs/pkg/engine"
)

var (
	ErrRulesetNotFound = errors.New("ruleset not found")
	ErrInvalidRuleset  = errors.New("invalid ruleset payload")
)

// Info 规则集的元信息，列表接口只返回这些，不做完整反序列化
type Info struct {
	ID      string    `json:"id"`
	Name    string    `json:"name"`
	SavedAt time.Time `json:"saved_at"`
}

// Store 规则集的 redis 持久层
// 落库格式是一个信封：{"name":..., "saved_at":..., "config":{...}}，
// 元信息用 gjson 直接从信封里读，不解整个规则
type Store struct {
	rdb     redis.Cmdable
	opts    *options
	dataKey string
	cache   *expirable.LRU[string, *engine.GameConfig]
}

func New(rdb redis.Cmdable, opts ...Option) *Store {
	o := new(options)
	o.apply(opts...).setDefault()

	return &Store{
		rdb:     rdb,
		opts:    o,
		dataKey: o.prefix + ":ruleset:data",
		cache:   expirable.NewLRU[string, *engine.GameConfig](o.cacheSize, nil, o.cacheTTL),
	}
}

// Save saves the ruleset
func (st *Store) Save(ctx context.Context, id, name string, cfg *engine.GameConfig) (err error) {
	raw, err := engine.EncodeConfig(cfg)
	if err != nil {
		return
	}

	payload := []byte(`{}`)
	if payload, err = sjson.SetBytes(payload, "name", name); err != nil {
		return
	}
	if payload, err = sjson.SetBytes(payload, "saved_at", time.Now().Unix()); err != nil {
		return
	}
	if payload, err = sjson.SetRawBytes(payload, "config", raw); err != nil {
		return
	}

	if err = st.rdb.HSet(ctx, st.dataKey, id, payload).Err(); err != nil {
		return
	}
	st.cache.Add(id, cfg)
	log.Debug().Str("id", id).Str("name", name).Msg("ruleset saved")
	return
}

// Load loads the ruleset
// 优先走进程内缓存，未命中再读 redis
func (st *Store) Load(ctx context.Context, id string) (cfg *engine.GameConfig, err error) {
	if cfg, ok := st.cache.Get(id); ok {
		return cfg, nil
	}

	raw, err := st.rdb.HGet(ctx, st.dataKey, id).Result()
	if err != nil {
		if err == redis.Nil {
			err = ErrRulesetNotFound
		}
		return nil, err
	}

	conf := gjson.Get(raw, "config")
	if !conf.Exists() {
		return nil, ErrInvalidRuleset
	}
	cfg, err = engine.DecodeConfig([]byte(conf.Raw))
	if err != nil {
		return nil, err
	}

	st.cache.Add(id, cfg)
	return cfg, nil
}

// Name returns the display name of the ruleset
func (st *Store) Name(ctx context.Context, id string) (name string, err error) {
	raw, err := st.rdb.HGet(ctx, st.dataKey, id).Result()
	if err != nil {
		if err == redis.Nil {
			err = ErrRulesetNotFound
		}
		return
	}
	return gjson.Get(raw, "name").String(), nil
}

// List lists all saved rulesets
func (st *Store) List(ctx context.Context) (infos []Info, err error) {
	all, err := st.rdb.HGetAll(ctx, st.dataKey).Result()
	if err != nil {
		return
	}

	infos = make([]Info, 0, len(all))
	for id, raw := range all {
		infos = append(infos, Info{
			ID:      id,
			Name:    gjson.Get(raw, "name").String(),
			SavedAt: time.Unix(cast.ToInt64(gjson.Get(raw, "saved_at").Value()), 0),
		})
	}
	return
}

// Delete deletes the ruleset
func (st *Store) Delete(ctx context.Context, id string) (err error) {
	if err = st.rdb.HDel(ctx, st.dataKey, id).Err(); err != nil {
		return
	}
	st.cache.Remove(id)
	log.Debug().Str("id", id).Msg("ruleset deleted")
	return
}
