package engine

import "github.com/goccy/go-json"

// Suit 牌的花色
type Suit string

const (
	SuitHearts   Suit = "Hearts"
	SuitDiamonds Suit = "Diamonds"
	SuitClubs    Suit = "Clubs"
	SuitSpades   Suit = "Spades"
)

// AllSuits 返回全部花色
func AllSuits() []Suit {
	return []Suit{SuitHearts, SuitDiamonds, SuitClubs, SuitSpades}
}

// Rank 牌的点数
type Rank string

const (
	RankTwo   Rank = "Two"
	RankThree Rank = "Three"
	RankFour  Rank = "Four"
	RankFive  Rank = "Five"
	RankSix   Rank = "Six"
	RankSeven Rank = "Seven"
	RankEight Rank = "Eight"
	RankNine  Rank = "Nine"
	RankTen   Rank = "Ten"
	RankJack  Rank = "Jack"
	RankQueen Rank = "Queen"
	RankKing  Rank = "King"
	RankAce   Rank = "Ace"
)

// AllRanks 返回全部点数（2-A）
func AllRanks() []Rank {
	return []Rank{
		RankTwo, RankThree, RankFour, RankFive, RankSix, RankSeven,
		RankEight, RankNine, RankTen, RankJack, RankQueen, RankKing, RankAce,
	}
}

// CardID 牌的唯一标识，从 1 开始单调递增，0 为无效值
type CardID = uint32

// ZoneID 区域的唯一标识，从 1 开始单调递增，0 为无效值
type ZoneID = uint64

// Card 代表一张牌，身份由 CardID 区分，同点数同花色的牌可以共存
type Card struct {
	Suit   Suit   `json:"suit"`
	Rank   Rank   `json:"rank"`
	CardID CardID `json:"card_id"`
}

// CardSet 描述一组牌的模板：点数 × 花色的笛卡尔积
type CardSet struct {
	Ranks []Rank `json:"ranks"`
	Suits []Suit `json:"suits"`
}

// Size 模板展开后的牌数
func (cs CardSet) Size() int {
	return len(cs.Ranks) * len(cs.Suits)
}

// RankOrder 点数的全序关系，用于顺子等连续性判断
// 序列化时只保留顺序列表，索引在反序列化时重建
type RankOrder struct {
	order []Rank
	index map[Rank]int
}

// NewRankOrder 根据顺序列表构建全序
func NewRankOrder(order []Rank) RankOrder {
	ro := RankOrder{
		order: make([]Rank, len(order)),
		index: make(map[Rank]int, len(order)),
	}
	copy(ro.order, order)
	for i, r := range order {
		ro.index[r] = i
	}
	return ro
}

// IndexOf 返回点数在全序中的位置
func (ro RankOrder) IndexOf(r Rank) (int, bool) {
	i, ok := ro.index[r]
	return i, ok
}

// Len 全序中的点数数量
func (ro RankOrder) Len() int {
	return len(ro.order)
}

// Ranks 按顺序返回点数列表的副本
func (ro RankOrder) Ranks() []Rank {
	out := make([]Rank, len(ro.order))
	copy(out, ro.order)
	return out
}

func (ro RankOrder) MarshalJSON() ([]byte, error) {
	return json.Marshal(ro.order)
}

func (ro *RankOrder) UnmarshalJSON(data []byte) error {
	var order []Rank
	if err := json.Unmarshal(data, &order); err != nil {
		return err
	}
	*ro = NewRankOrder(order)
	return nil
}
