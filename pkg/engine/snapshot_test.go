package engine

import "testing"

// snapshotGame 固定布局：deck 顶牌可见，hand 仅对拥有者可见
func snapshotGame(t *testing.T) *Game {
	t.Helper()
	cfg := gameConfig(Block(
		&Statement{GenerateCards: &GenerateCardsStatement{
			Cards: CardSetExpression{AllAllowed: true},
			Dest:  zoneVar("deck"),
		}},
		&Statement{Deal: &DealStatement{
			NumCards: NumberLit(3),
			Source:   zoneVar("deck"),
			Dest: ZoneCollectionExpression{PlayerZones: &PlayerZonesRef{
				Players: PlayerCollectionExpression{All: true},
				Slot:    "hand",
			}},
		}},
	))
	cfg.ZoneClasses["deck"] = ZoneClass{
		Visibility: ZoneVisibility{Owner: VisibilityTop, Others: VisibilityTop},
		Cleanup:    CleanupNever,
	}
	g := startGame(t, cfg, 2)
	runToEnd(t, g)
	return g
}

func snapshotZone(t *testing.T, snap GameSnapshot, id ZoneID) ZoneSnapshot {
	t.Helper()
	for _, z := range snap.Zones {
		if z.ZoneID == id {
			return z
		}
	}
	t.Fatalf("zone %d missing from snapshot", id)
	return ZoneSnapshot{}
}

// TestSnapshot_OwnerSeesOwnHand 拥有者看到自己手牌的牌面
func TestSnapshot_OwnerSeesOwnHand(t *testing.T) {
	g := snapshotGame(t)
	hand := handZone(t, g, 0)

	snap := g.Snapshot(0)
	zs := snapshotZone(t, snap, hand.ID)

	if len(zs.Cards) != 3 {
		t.Fatalf("hand ids = %d, want 3", len(zs.Cards))
	}
	if zs.Owner == nil || *zs.Owner != 0 {
		t.Errorf("owner = %v, want 0", zs.Owner)
	}
	for _, id := range zs.Cards {
		if _, ok := snap.Cards[id]; !ok {
			t.Errorf("own hand card %d should have a visible face", id)
		}
	}
}

// TestSnapshot_OthersHandHidden 对手手牌只见 id 不见牌面
func TestSnapshot_OthersHandHidden(t *testing.T) {
	g := snapshotGame(t)
	other := handZone(t, g, 1)

	snap := g.Snapshot(0)
	zs := snapshotZone(t, snap, other.ID)

	if len(zs.Cards) != 3 {
		t.Fatalf("hand ids = %d, want 3", len(zs.Cards))
	}
	for _, id := range zs.Cards {
		if _, ok := snap.Cards[id]; ok {
			t.Errorf("opponent card %d face should be hidden", id)
		}
	}
}

// TestSnapshot_TopOnly Top 规则只露顶牌
func TestSnapshot_TopOnly(t *testing.T) {
	g := snapshotGame(t)
	deck := deckZone(t, g)

	snap := g.Snapshot(0)
	zs := snapshotZone(t, snap, deck.ID)

	if len(zs.Cards) != 46 {
		t.Fatalf("deck ids = %d, want 46", len(zs.Cards))
	}
	top := deck.Top()
	for _, id := range zs.Cards {
		_, visible := snap.Cards[id]
		if (id == top) != visible {
			t.Errorf("card %d visible = %v, only the top card should show", id, visible)
		}
	}
}

// TestSnapshot_Spectator 旁观者拿不到任何手牌牌面
func TestSnapshot_Spectator(t *testing.T) {
	g := snapshotGame(t)
	deck := deckZone(t, g)

	snap := g.Snapshot(-1)
	if len(snap.Zones) != 3 {
		t.Fatalf("zones = %d, want 3", len(snap.Zones))
	}
	// 只有 deck 顶牌可见
	if len(snap.Cards) != 1 {
		t.Errorf("visible faces = %d, want 1", len(snap.Cards))
	}
	if _, ok := snap.Cards[deck.Top()]; !ok {
		t.Errorf("deck top should be visible to spectators")
	}
}

// TestSnapshot_Metadata 状态与席位信息随快照带出
func TestSnapshot_Metadata(t *testing.T) {
	g := snapshotGame(t)
	snap := g.Snapshot(0)

	if snap.Status != GamePlaying {
		t.Errorf("status = %v, want playing", snap.Status)
	}
	if len(snap.Roles) != 2 {
		t.Errorf("roles = %v, want 2 seats", snap.Roles)
	}
	if snap.Current != 0 {
		t.Errorf("current = %d, want 0", snap.Current)
	}
}
