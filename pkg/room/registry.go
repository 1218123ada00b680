package room

import (
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/socs/socs/pkg/engine"
)

var ErrRoomNotFound = errors.New("room not found")

const (
	defaultRegistrySize = 1024
	defaultIdleTTL      = 30 * time.Minute
	codeLength          = 6
)

// Registry 房间码到房间的登记表
// 底层是带过期的 LRU：闲置过久或数量超限的房间被挤出时自动关闭
type Registry struct {
	mu    sync.RWMutex
	rooms *expirable.LRU[string, *Room]
}

func NewRegistry() *Registry {
	size := viper.GetInt("room.registry_size")
	if size <= 0 {
		size = defaultRegistrySize
	}
	ttl := viper.GetDuration("room.idle_ttl")
	if ttl <= 0 {
		ttl = defaultIdleTTL
	}

	onEvict := func(code string, r *Room) {
		log.Info().Str("room", code).Msg("room evicted")
		go r.Close()
	}
	return &Registry{
		rooms: expirable.NewLRU(size, onEvict, ttl),
	}
}

// Create 用给定规则开一个新房间，返回房间码
func (rg *Registry) Create(cfg *engine.GameConfig, opts ...engine.Option) (*Room, error) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	code := rg.newCode()
	r, err := New(code, cfg, opts...)
	if err != nil {
		return nil, err
	}
	rg.rooms.Add(code, r)
	return r, nil
}

// Get 按房间码查找
func (rg *Registry) Get(code string) (*Room, error) {
	rg.mu.RLock()
	defer rg.mu.RUnlock()

	r, ok := rg.rooms.Get(strings.ToUpper(code))
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// Remove 关闭并移除房间
func (rg *Registry) Remove(code string) {
	rg.mu.Lock()
	defer rg.mu.Unlock()

	code = strings.ToUpper(code)
	if r, ok := rg.rooms.Peek(code); ok {
		rg.rooms.Remove(code)
		r.Close()
	}
}

// Len 当前房间数
func (rg *Registry) Len() int {
	rg.mu.RLock()
	defer rg.mu.RUnlock()
	return rg.rooms.Len()
}

// newCode 从 uuid 截出不重复的短房间码，调用方持写锁
func (rg *Registry) newCode() string {
	for {
		raw := strings.ReplaceAll(uuid.NewString(), "-", "")
		code := strings.ToUpper(raw[:codeLength])
		if _, ok := rg.rooms.Peek(code); !ok {
			return code
		}
	}
}
