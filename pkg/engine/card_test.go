package engine

import (
	"reflect"
	"testing"

	"github.com/goccy/go-json"
)

// TestCardSet_Size 测试模板展开数量
func TestCardSet_Size(t *testing.T) {
	tests := []struct {
		name string
		set  CardSet
		want int
	}{
		{"标准52张", CardSet{Ranks: AllRanks(), Suits: AllSuits()}, 52},
		{"单点数四花色", CardSet{Ranks: []Rank{RankAce}, Suits: AllSuits()}, 4},
		{"空模板", CardSet{}, 0},
		{"只有点数", CardSet{Ranks: AllRanks()}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.set.Size(); got != tt.want {
				t.Errorf("Size() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestRankOrder_IndexOf 测试全序查询
func TestRankOrder_IndexOf(t *testing.T) {
	ro := NewRankOrder([]Rank{RankAce, RankTwo, RankThree})

	tests := []struct {
		name   string
		rank   Rank
		want   int
		wantOk bool
	}{
		{"首位", RankAce, 0, true},
		{"中间", RankTwo, 1, true},
		{"末位", RankThree, 2, true},
		{"不在序中", RankKing, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ro.IndexOf(tt.rank)
			if ok != tt.wantOk {
				t.Fatalf("IndexOf(%v) ok = %v, want %v", tt.rank, ok, tt.wantOk)
			}
			if ok && got != tt.want {
				t.Errorf("IndexOf(%v) = %v, want %v", tt.rank, got, tt.want)
			}
		})
	}
}

// TestRankOrder_JSON 全序 JSON 往返后索引可用
func TestRankOrder_JSON(t *testing.T) {
	ro := NewRankOrder([]Rank{RankTwo, RankThree, RankFour, RankFive})

	data, err := json.Marshal(ro)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var back RankOrder
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if !reflect.DeepEqual(back.Ranks(), ro.Ranks()) {
		t.Errorf("Ranks = %v, want %v", back.Ranks(), ro.Ranks())
	}
	if i, ok := back.IndexOf(RankFour); !ok || i != 2 {
		t.Errorf("IndexOf(Four) = %v, %v, want 2, true", i, ok)
	}
}
