package engine

// 表达式统一用指针标签结构表示闭合联合体：恰好一个变体字段非零。
// 表达式求值无副作用，所有效果都由语句产生。

// Number 数值的底层类型
type Number = int32

// NumberExpression 数值表达式
type NumberExpression struct {
	Literal  *Number                   `json:"literal,omitempty"`
	Variable *string                   `json:"variable,omitempty"` // 根作用域数值变量
	CardsIn  *CardCollectionExpression `json:"cards_in,omitempty"` // 牌集合的张数
}

// ComparisonOp 数值比较算子
type ComparisonOp string

const (
	OpGT  ComparisonOp = "GT"
	OpLT  ComparisonOp = "LT"
	OpGTE ComparisonOp = "GTE"
	OpLTE ComparisonOp = "LTE"
	OpEQ  ComparisonOp = "EQ"
	OpNEQ ComparisonOp = "NEQ"
)

// Comparison 两个数值表达式的比较
type Comparison struct {
	A          NumberExpression `json:"a"`
	ComparedTo ComparisonOp     `json:"compared_to"`
	B          NumberExpression `json:"b"`
}

// PlayerIsType 玩家是否属于指定玩家类
type PlayerIsType struct {
	Player PlayerExpression `json:"player"`
	Class  string           `json:"class"`
}

// BooleanExpression 布尔表达式
type BooleanExpression struct {
	Literal      *bool         `json:"literal,omitempty"`
	Comparison   *Comparison   `json:"comparison,omitempty"`
	PlayerIsType *PlayerIsType `json:"player_is_type,omitempty"`
}

// PlayerExpression 单个玩家
type PlayerExpression struct {
	Current  bool    `json:"current,omitempty"` // 当前回合玩家
	Variable *string `json:"variable,omitempty"`
}

// PlayerCollectionExpression 玩家集合
type PlayerCollectionExpression struct {
	All        bool              `json:"all,omitempty"`
	AllOfClass *string           `json:"all_of_class,omitempty"`
	Single     *PlayerExpression `json:"single,omitempty"`
	Variable   *string           `json:"variable,omitempty"`
}

// PlayerZoneRef 按 (玩家, 槽位名) 定位玩家区域
type PlayerZoneRef struct {
	Player PlayerExpression `json:"player"`
	Slot   string           `json:"slot"`
}

// ZoneExpression 单个区域
// Variable 先查帧作用域，再查根作用域（公共区域按名字登记在根作用域）
type ZoneExpression struct {
	PlayerZone *PlayerZoneRef `json:"player_zone,omitempty"`
	Variable   *string        `json:"variable,omitempty"`
}

// PlayerZonesRef 一组玩家的同名槽位区域
type PlayerZonesRef struct {
	Players PlayerCollectionExpression `json:"players"`
	Slot    string                     `json:"slot"`
}

// ZoneCollectionExpression 区域集合
type ZoneCollectionExpression struct {
	AllOfClass  *string         `json:"all_of_class,omitempty"`
	PlayerZones *PlayerZonesRef `json:"player_zones,omitempty"`
	Variable    *string         `json:"variable,omitempty"`
}

// SuitExpression 花色表达式
type SuitExpression struct {
	Literal  *Suit           `json:"literal,omitempty"`
	FromCard *CardExpression `json:"from_card,omitempty"`
}

// RankExpression 点数表达式
type RankExpression struct {
	Literal  *Rank           `json:"literal,omitempty"`
	FromCard *CardExpression `json:"from_card,omitempty"`
}

// CardSelectorExpression 从区域中选一张牌的方式
// 区域内牌序约定：切片末尾为顶，开头为底
type CardSelectorExpression struct {
	Top    bool            `json:"top,omitempty"`
	Bottom bool            `json:"bottom,omitempty"`
	BySuit *SuitExpression `json:"by_suit,omitempty"` // 第一张匹配花色的牌
	ByRank *RankExpression `json:"by_rank,omitempty"` // 第一张匹配点数的牌
}

// CardSelect 在指定区域内按选择器取牌
type CardSelect struct {
	Zone     ZoneExpression         `json:"zone"`
	Selector CardSelectorExpression `json:"selector"`
}

// CardExpression 单张牌
type CardExpression struct {
	Variable *string     `json:"variable,omitempty"`
	Select   *CardSelect `json:"select,omitempty"`
}

// RankMatch 区域中点数匹配的牌
type RankMatch struct {
	Rank RankExpression `json:"rank"`
	Zone ZoneExpression `json:"zone"`
}

// SuitMatch 区域中花色匹配的牌
type SuitMatch struct {
	Suit SuitExpression `json:"suit"`
	Zone ZoneExpression `json:"zone"`
}

// CardCollectionExpression 牌集合
type CardCollectionExpression struct {
	InZone       *ZoneExpression `json:"in_zone,omitempty"`
	MatchingRank *RankMatch      `json:"matching_rank,omitempty"`
	MatchingSuit *SuitMatch      `json:"matching_suit,omitempty"`
	Variable     *string         `json:"variable,omitempty"`
}

// CardSetExpression 生成牌时的模板来源
type CardSetExpression struct {
	AllAllowed bool     `json:"all_allowed,omitempty"` // allowed_ranks × allowed_suits
	Explicit   *CardSet `json:"explicit,omitempty"`
}
