package engine

import "github.com/goccy/go-json"

// VisibilityRule 区域内容对某一方的可见性
type VisibilityRule string

const (
	VisibilityVisible VisibilityRule = "Visible" // 全部可见
	VisibilityHidden  VisibilityRule = "Hidden"  // 全部不可见
	VisibilityTop     VisibilityRule = "Top"     // 只露出顶牌
	VisibilityBottom  VisibilityRule = "Bottom"  // 只露出底牌
)

// ZoneVisibility 分别指定拥有者和其他人的可见性
type ZoneVisibility struct {
	Owner  VisibilityRule `json:"owner"`
	Others VisibilityRule `json:"others"`
}

// CleanupRule 区域清空后的处理方式
type CleanupRule string

const (
	CleanupNever   CleanupRule = "Never"
	CleanupOnEmpty CleanupRule = "OnEmpty" // 变空即销毁
)

// ZoneClass 区域类模板
// Rules 引用 patterns 表中的牌型规则，区域内容必须全部满足
type ZoneClass struct {
	Visibility ZoneVisibility `json:"visibility"`
	Cleanup    CleanupRule    `json:"cleanup"`
	Rules      []string       `json:"rules,omitempty"`
}

// AssignmentRule 玩家类的席位分配规则
// All 匹配任意席位；Index 匹配固定席位，负数从末尾数（-1 为最后一位）
type AssignmentRule struct {
	All   bool `json:"all,omitempty"`
	Index *int `json:"index,omitempty"`
}

// Matches 判断规则是否匹配第 i 个席位（共 total 个）
func (ar AssignmentRule) Matches(i, total int) bool {
	if ar.All {
		return true
	}
	if ar.Index == nil {
		return false
	}
	k := *ar.Index
	if k < 0 {
		return i == total+k
	}
	return i == k
}

// PlayerClass 玩家类模板
// ActiveZones 列出该类玩家拥有的区域槽位名，槽位对应的区域类查 player_zones
type PlayerClass struct {
	ActiveZones []string       `json:"active_zones,omitempty"`
	Assignment  AssignmentRule `json:"assignment"`
}

// Phase 阶段：一段待解释执行的根语句
type Phase struct {
	Evaluate *Statement `json:"evaluate"`
}

// PlayerRange 可开局的人数范围，闭区间 [Min, Max]
type PlayerRange struct {
	Min uint32 `json:"min"`
	Max uint32 `json:"max"`
}

// Contains 判断人数是否在范围内
func (pr PlayerRange) Contains(n uint32) bool {
	return n >= pr.Min && n <= pr.Max
}

// GameConfig 一套完整的游戏规则，纯数据，可无损 JSON 往返
type GameConfig struct {
	AllowedRanks     []Rank                 `json:"allowed_ranks"`
	AllowedSuits     []Suit                 `json:"allowed_suits"`
	Orders           map[string]RankOrder   `json:"orders,omitempty"`
	Patterns         map[string][]Pattern   `json:"patterns,omitempty"`
	Phases           map[string]Phase       `json:"phases,omitempty"`
	ZoneClasses      map[string]ZoneClass   `json:"zone_classes,omitempty"`
	PlayerClasses    map[string]PlayerClass `json:"player_classes,omitempty"`
	PlayerZones      map[string]string      `json:"player_zones,omitempty"`      // 槽位名 -> 区域类
	PlayerAssignment []string               `json:"player_assignment,omitempty"` // 有序的玩家类扫描表
	InitialZones     map[string]string      `json:"initial_zones,omitempty"`     // 公共区域名 -> 区域类
	InitialPhase     string                 `json:"initial_phase"`
	PlayerRange      PlayerRange            `json:"player_range"`
	Numbers          []string               `json:"numbers,omitempty"` // 根作用域数值变量声明
}

// BlankConfig 创建一份空规则，人数范围默认 2-6
func BlankConfig() *GameConfig {
	return &GameConfig{
		AllowedRanks:  AllRanks(),
		AllowedSuits:  AllSuits(),
		Orders:        make(map[string]RankOrder),
		Patterns:      make(map[string][]Pattern),
		Phases:        make(map[string]Phase),
		ZoneClasses:   make(map[string]ZoneClass),
		PlayerClasses: make(map[string]PlayerClass),
		PlayerZones:   make(map[string]string),
		InitialZones:  make(map[string]string),
		PlayerRange:   PlayerRange{Min: 2, Max: 6},
	}
}

// EncodeConfig 序列化规则
func EncodeConfig(cfg *GameConfig) ([]byte, error) {
	return json.Marshal(cfg)
}

// DecodeConfig 反序列化规则
func DecodeConfig(data []byte) (*GameConfig, error) {
	cfg := new(GameConfig)
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
