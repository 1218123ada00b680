package engine

import (
	"errors"
	"reflect"
	"testing"
)

// offerConfig 发好牌后停在一个 Offer 上的局
func offerConfig(offer *OfferStatement) *GameConfig {
	return gameConfig(Block(
		&Statement{GenerateCards: &GenerateCardsStatement{
			Cards: CardSetExpression{AllAllowed: true},
			Dest:  zoneVar("deck"),
		}},
		&Statement{Offer: offer},
		bcast("resumed"),
	))
}

// runToBlocked 执行到停在 Offer 上
func runToBlocked(t *testing.T, g *Game) {
	t.Helper()
	for i := 0; i < 100; i++ {
		status, err := g.EvalStatement()
		if err != nil {
			t.Fatalf("EvalStatement: %v", err)
		}
		if status.Kind == EngineBlocked {
			return
		}
		if status.Kind == EngineFinished {
			t.Fatalf("finished before blocking")
		}
	}
	t.Fatalf("never blocked")
}

// TestOffer_ParkAndView 停下后可见目标玩家和可选分支
func TestOffer_ParkAndView(t *testing.T) {
	falseLit := false
	cfg := offerConfig(&OfferStatement{
		OfferTo: PlayerCollectionExpression{All: true},
		Cases: []OfferCase{
			{Message: "draw a card"},
			{Condition: &BooleanExpression{Literal: &falseLit}, Message: "never shown"},
		},
	})
	g := startGame(t, cfg, 2)
	runToBlocked(t, g)

	view := g.PendingOffer()
	if view == nil {
		t.Fatalf("no pending offer")
	}
	if !reflect.DeepEqual(view.Offered, []int{0, 1}) {
		t.Errorf("offered = %v, want [0 1]", view.Offered)
	}
	if len(view.Cases) != 1 || view.Cases[0].Index != 0 || view.Cases[0].Message != "draw a card" {
		t.Errorf("cases = %+v, want only the first", view.Cases)
	}

	// 停住期间再执行保持 Blocked
	status, err := g.EvalStatement()
	if err != nil {
		t.Fatalf("EvalStatement while parked: %v", err)
	}
	if status.Kind != EngineBlocked {
		t.Errorf("kind = %v, want blocked", status.Kind)
	}
}

// TestOffer_ResolveValidation 应答校验
func TestOffer_ResolveValidation(t *testing.T) {
	falseLit := false
	cfg := offerConfig(&OfferStatement{
		OfferTo: PlayerCollectionExpression{Single: &PlayerExpression{Current: true}},
		Cases: []OfferCase{
			{Message: "ok"},
			{Condition: &BooleanExpression{Literal: &falseLit}, Message: "closed"},
		},
	})
	g := startGame(t, cfg, 2)
	runToBlocked(t, g)

	tests := []struct {
		name    string
		res     OfferResolution
		wantErr error
	}{
		{"未被邀请的玩家", OfferResolution{Player: 1, Case: 0}, ErrOfferPlayerIneligible},
		{"分支越界", OfferResolution{Player: 0, Case: 5}, ErrOfferCaseIneligible},
		{"条件为假的分支", OfferResolution{Player: 0, Case: 1}, ErrOfferCaseIneligible},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := g.ResolveOffer(tt.res)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ResolveOffer = %v, want %v", err, tt.wantErr)
			}
			if IsFatal(err) {
				t.Errorf("validation failure must stay recoverable")
			}
		})
	}

	// 校验失败不消费 Offer
	if g.PendingOffer() == nil {
		t.Fatalf("offer should still be pending")
	}
}

// TestOffer_ResolveNoPending 没有 Offer 时应答报错
func TestOffer_ResolveNoPending(t *testing.T) {
	g := startGame(t, gameConfig(Empty()), 2)
	if err := g.ResolveOffer(OfferResolution{}); !errors.Is(err, ErrNoPendingOffer) {
		t.Errorf("ResolveOffer = %v, want ErrNoPendingOffer", err)
	}
}

// TestOffer_ActionAndBinding 应答后绑定玩家变量并执行动作
func TestOffer_ActionAndBinding(t *testing.T) {
	cfg := offerConfig(&OfferStatement{
		OfferTo:    PlayerCollectionExpression{All: true},
		PlayerName: strP("chooser"),
		Cases: []OfferCase{{
			Message: "draw from the deck",
			Choices: []OfferChoice{{
				Action: &ChoiceAction{MoveCards: &MoveCardsAction{
					From: zoneVar("deck"),
					To: ZoneExpression{PlayerZone: &PlayerZoneRef{
						Player: PlayerExpression{Variable: strP("chooser")},
						Slot:   "hand",
					}},
				}},
			}},
			Then: &Statement{Broadcast: &BroadcastStatement{
				Message: "drawn",
				To: PlayerCollectionExpression{Single: &PlayerExpression{
					Variable: strP("chooser"),
				}},
			}},
		}},
	})
	g := startGame(t, cfg, 2)
	runToBlocked(t, g)

	deckTop := deckZone(t, g).Top()
	if err := g.ResolveOffer(OfferResolution{Player: 1, Case: 0}); err != nil {
		t.Fatalf("ResolveOffer: %v", err)
	}
	if g.PendingOffer() != nil {
		t.Fatalf("offer should be consumed")
	}

	hand := handZone(t, g, 1)
	if len(hand.Cards) != 1 || hand.Cards[0] != deckTop {
		t.Errorf("hand = %v, want deck top %d", hand.Cards, deckTop)
	}
	if got := len(deckZone(t, g).Cards); got != 51 {
		t.Errorf("deck = %d, want 51", got)
	}

	// 处理分支里 chooser 变量可用，之后回到外层语句
	broadcasts := runToEnd(t, g)
	var msgs []string
	for _, b := range broadcasts {
		msgs = append(msgs, b.Message)
	}
	if !reflect.DeepEqual(msgs, []string{"drawn", "resumed"}) {
		t.Errorf("msgs = %v, want [drawn resumed]", msgs)
	}
	if !reflect.DeepEqual(broadcasts[0].To, []int{1}) {
		t.Errorf("drawn to = %v, want [1]", broadcasts[0].To)
	}
}

// TestOffer_CardSelection 选牌绑定与成员校验
func TestOffer_CardSelection(t *testing.T) {
	cfg := offerConfig(&OfferStatement{
		OfferTo: PlayerCollectionExpression{All: true},
		Cases: []OfferCase{{
			Message: "pick any card",
			Choices: []OfferChoice{{
				Selection: &ChoiceSelection{
					Name: "picked",
					Card: &CardCollectionExpression{InZone: &ZoneExpression{
						Variable: strP("deck"),
					}},
				},
			}},
			Then: Empty(),
		}},
	})
	g := startGame(t, cfg, 2)
	runToBlocked(t, g)

	t.Run("缺绑定", func(t *testing.T) {
		err := g.ResolveOffer(OfferResolution{Player: 0, Case: 0})
		if !errors.Is(err, ErrOfferBindingMissing) {
			t.Errorf("ResolveOffer = %v, want ErrOfferBindingMissing", err)
		}
	})

	t.Run("选了不在集合里的牌", func(t *testing.T) {
		err := g.ResolveOffer(OfferResolution{
			Player: 0, Case: 0,
			Cards: map[string][]CardID{"picked": {9999}},
		})
		if !errors.Is(err, ErrOfferBindingInvalid) {
			t.Errorf("ResolveOffer = %v, want ErrOfferBindingInvalid", err)
		}
	})

	t.Run("合法选择被绑定", func(t *testing.T) {
		target := deckZone(t, g).Cards[10]
		err := g.ResolveOffer(OfferResolution{
			Player: 0, Case: 0,
			Cards: map[string][]CardID{"picked": {target}},
		})
		if err != nil {
			t.Fatalf("ResolveOffer: %v", err)
		}
		if id, ok := g.exec.lookupCard("picked"); !ok || id != target {
			t.Errorf("picked = %v, %v, want %d", id, ok, target)
		}
	})
}
