package engine

// SuitPiece 花色段：连续 MatchMin 到 MatchMax 张牌
// Suit 为空表示不限花色
type SuitPiece struct {
	MatchMin uint32 `json:"match_min"`
	MatchMax uint32 `json:"match_max"`
	Suit     *Suit  `json:"suit,omitempty"`
}

// RankPiece 点数段：连续 MatchMin 到 MatchMax 张牌
// Rank 为空表示不限点数
type RankPiece struct {
	MatchMin uint32 `json:"match_min"`
	MatchMax uint32 `json:"match_max"`
	Rank     *Rank  `json:"rank,omitempty"`
}

// Relation 相邻牌之间的关系约束
type Relation struct {
	Consecutive string `json:"consecutive"` // 引用 orders 表中的点数全序
}

// Pattern 一条牌型规则，恰好设置一个维度
// 区域类引用的规则列表必须对区域内容全部成立
type Pattern struct {
	Relation *Relation   `json:"relation,omitempty"`
	Suit     []SuitPiece `json:"suit,omitempty"`
	Rank     []RankPiece `json:"rank,omitempty"`
}

// Matcher 以规则库和点数全序为上下文的牌型匹配器
type Matcher struct {
	patterns map[string][]Pattern
	orders   map[string]RankOrder
}

// NewMatcher 创建匹配器
func NewMatcher(patterns map[string][]Pattern, orders map[string]RankOrder) *Matcher {
	return &Matcher{patterns: patterns, orders: orders}
}

// MatchNamed 判断牌序列是否满足规则库中指定名字的全部规则
// 名字不存在视为不满足
func (m *Matcher) MatchNamed(cards []Card, name string) bool {
	patterns, ok := m.patterns[name]
	if !ok {
		return false
	}
	return m.MatchAll(cards, patterns)
}

// MatchAll 所有规则都成立才算匹配
func (m *Matcher) MatchAll(cards []Card, patterns []Pattern) bool {
	for _, p := range patterns {
		if !m.Match(cards, p) {
			return false
		}
	}
	return true
}

// Match 单条规则匹配
func (m *Matcher) Match(cards []Card, p Pattern) bool {
	switch {
	case p.Relation != nil:
		return m.matchRelation(cards, *p.Relation)
	case p.Suit != nil:
		return matchPieces(len(cards), len(p.Suit),
			func(i int) (uint32, uint32) { return p.Suit[i].MatchMin, p.Suit[i].MatchMax },
			func(i, at int) bool { return p.Suit[i].Suit == nil || cards[at].Suit == *p.Suit[i].Suit })
	case p.Rank != nil:
		return matchPieces(len(cards), len(p.Rank),
			func(i int) (uint32, uint32) { return p.Rank[i].MatchMin, p.Rank[i].MatchMax },
			func(i, at int) bool { return p.Rank[i].Rank == nil || cards[at].Rank == *p.Rank[i].Rank })
	default:
		return false
	}
}

// matchRelation 相邻两张牌的点数必须在全序中严格递增 1
func (m *Matcher) matchRelation(cards []Card, rel Relation) bool {
	order, ok := m.orders[rel.Consecutive]
	if !ok {
		return false
	}
	for i := 1; i < len(cards); i++ {
		prev, ok1 := order.IndexOf(cards[i-1].Rank)
		next, ok2 := order.IndexOf(cards[i].Rank)
		if !ok1 || !ok2 || next != prev+1 {
			return false
		}
	}
	return true
}

// matchPieces 把长度为 n 的序列切分为 pieces 段，每段长度在
// 各自的 [min, max] 内且段内每张牌都满足该段约束
// 回溯时段长从 max 往 min 试，先找到的切分生效
func matchPieces(n, pieces int, bounds func(i int) (uint32, uint32), fits func(i, at int) bool) bool {
	var try func(piece, start int) bool
	try = func(piece, start int) bool {
		if piece == pieces {
			return start == n
		}
		minLen, maxLen := bounds(piece)
		if maxLen > uint32(n-start) {
			maxLen = uint32(n - start)
		}
		for length := int(maxLen); length >= int(minLen); length-- {
			ok := true
			for at := start; at < start+length; at++ {
				if !fits(piece, at) {
					ok = false
					break
				}
			}
			if ok && try(piece+1, start+length) {
				return true
			}
		}
		return false
	}
	return try(0, 0)
}
