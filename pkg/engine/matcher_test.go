package engine

import "testing"

func mkCards(pairs ...[2]string) []Card {
	cards := make([]Card, len(pairs))
	for i, p := range pairs {
		cards[i] = Card{Suit: Suit(p[0]), Rank: Rank(p[1]), CardID: CardID(i + 1)}
	}
	return cards
}

func testMatcher() *Matcher {
	spades := SuitSpades
	three := RankThree
	orders := map[string]RankOrder{
		"standard": NewRankOrder(AllRanks()),
	}
	patterns := map[string][]Pattern{
		// 顺子：同花且连续，至少3张
		"run": {
			{Relation: &Relation{Consecutive: "standard"}},
			{Suit: []SuitPiece{{MatchMin: 3, MatchMax: 13}}},
		},
		// 黑桃段 + 任意段
		"spades_then_any": {
			{Suit: []SuitPiece{
				{MatchMin: 1, MatchMax: 2, Suit: &spades},
				{MatchMin: 1, MatchMax: 13},
			}},
		},
		// 全是3
		"threes": {
			{Rank: []RankPiece{{MatchMin: 1, MatchMax: 4, Rank: &three}}},
		},
	}
	return NewMatcher(patterns, orders)
}

// TestMatcher_Relation 连续性判断
func TestMatcher_Relation(t *testing.T) {
	m := testMatcher()
	rel := Pattern{Relation: &Relation{Consecutive: "standard"}}

	tests := []struct {
		name  string
		cards []Card
		want  bool
	}{
		{"连续三张", mkCards([2]string{"Hearts", "Two"}, [2]string{"Hearts", "Three"}, [2]string{"Hearts", "Four"}), true},
		{"中断", mkCards([2]string{"Hearts", "Two"}, [2]string{"Hearts", "Four"}), false},
		{"逆序不算连续", mkCards([2]string{"Hearts", "Four"}, [2]string{"Hearts", "Three"}), false},
		{"单张恒成立", mkCards([2]string{"Clubs", "King"}), true},
		{"空序列恒成立", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.Match(tt.cards, rel); got != tt.want {
				t.Errorf("Match = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMatcher_UnknownOrder 引用不存在的全序视为不匹配
func TestMatcher_UnknownOrder(t *testing.T) {
	m := testMatcher()
	p := Pattern{Relation: &Relation{Consecutive: "nope"}}
	cards := mkCards([2]string{"Hearts", "Two"}, [2]string{"Hearts", "Three"})
	if m.Match(cards, p) {
		t.Errorf("unknown order should not match")
	}
}

// TestMatcher_Pieces 分段匹配与回溯
func TestMatcher_Pieces(t *testing.T) {
	m := testMatcher()

	tests := []struct {
		name  string
		rule  string
		cards []Card
		want  bool
	}{
		{
			"黑桃段吃一张留一张给任意段",
			"spades_then_any",
			mkCards([2]string{"Spades", "Two"}, [2]string{"Spades", "King"}),
			true,
		},
		{
			"黑桃段最多两张后接任意",
			"spades_then_any",
			mkCards([2]string{"Spades", "Two"}, [2]string{"Spades", "Three"}, [2]string{"Hearts", "Four"}),
			true,
		},
		{
			"首段无黑桃",
			"spades_then_any",
			mkCards([2]string{"Hearts", "Two"}, [2]string{"Hearts", "Three"}),
			false,
		},
		{
			"全3成立",
			"threes",
			mkCards([2]string{"Hearts", "Three"}, [2]string{"Clubs", "Three"}),
			true,
		},
		{
			"混入其他点数",
			"threes",
			mkCards([2]string{"Hearts", "Three"}, [2]string{"Clubs", "Four"}),
			false,
		},
		{
			"超出段上限",
			"threes",
			mkCards([2]string{"Hearts", "Three"}, [2]string{"Clubs", "Three"}, [2]string{"Spades", "Three"}, [2]string{"Diamonds", "Three"}, [2]string{"Hearts", "Three"}),
			false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := m.MatchNamed(tt.cards, tt.rule); got != tt.want {
				t.Errorf("MatchNamed(%s) = %v, want %v", tt.rule, got, tt.want)
			}
		})
	}
}

// TestMatcher_AllMustHold 规则列表全部成立才算匹配
func TestMatcher_AllMustHold(t *testing.T) {
	m := testMatcher()

	run := mkCards(
		[2]string{"Hearts", "Five"}, [2]string{"Hearts", "Six"}, [2]string{"Hearts", "Seven"},
	)
	if !m.MatchNamed(run, "run") {
		t.Errorf("hearts 5-6-7 should be a run")
	}

	// 连续但不足最小张数
	short := mkCards([2]string{"Hearts", "Five"}, [2]string{"Hearts", "Six"})
	if m.MatchNamed(short, "run") {
		t.Errorf("two cards should fail the suit piece minimum")
	}

	// 张数够但不连续
	broken := mkCards(
		[2]string{"Hearts", "Five"}, [2]string{"Hearts", "Six"}, [2]string{"Hearts", "Eight"},
	)
	if m.MatchNamed(broken, "run") {
		t.Errorf("5-6-8 should fail the relation")
	}
}

// TestMatcher_UnknownName 未登记的规则名不匹配
func TestMatcher_UnknownName(t *testing.T) {
	m := testMatcher()
	if m.MatchNamed(mkCards([2]string{"Hearts", "Two"}), "nope") {
		t.Errorf("unknown pattern name should not match")
	}
}
