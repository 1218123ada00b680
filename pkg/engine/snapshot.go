package engine

// ZoneSnapshot 区域在快照中的形态
// Cards 只含 id，牌面信息按可见性放进 GameSnapshot.Cards
type ZoneSnapshot struct {
	ZoneID ZoneID   `json:"zone_id"`
	Class  string   `json:"class"`
	Cards  []CardID `json:"cards"`
	Owner  *int     `json:"owner,omitempty"`
	Name   string   `json:"name,omitempty"`
}

// GameSnapshot 某个观察者视角下的对局快照
type GameSnapshot struct {
	Status  GameStatus      `json:"status"`
	Zones   []ZoneSnapshot  `json:"zones"`
	Cards   map[CardID]Card `json:"cards"` // 该观察者可见的牌面
	Roles   []string        `json:"roles"`
	Current int             `json:"current"`
	Winners []int           `json:"winners,omitempty"`
}

// Snapshot 生成 viewer 席位视角的快照，viewer 为负表示旁观者
// 区域内容按区域类的可见性规则过滤：
// 拥有者看 owner 规则，其他人看 others 规则，
// Top/Bottom 只露出相应一端的牌面
func (g *Game) Snapshot(viewer int) GameSnapshot {
	snap := GameSnapshot{
		Status:  g.state.Status(),
		Cards:   make(map[CardID]Card),
		Roles:   g.state.Roles(),
		Current: g.state.Current(),
		Winners: g.state.Winners(),
	}

	for _, z := range g.state.Zones() {
		zs := ZoneSnapshot{
			ZoneID: z.ID,
			Class:  z.Class,
			Cards:  append([]CardID(nil), z.Cards...),
			Name:   z.Name,
		}
		rule := VisibilityHidden
		if class, ok := g.config.ZoneClasses[z.Class]; ok {
			rule = class.Visibility.Others
			if z.Owner != nil && z.Owner.Player == viewer {
				rule = class.Visibility.Owner
			}
		}
		if z.Owner != nil {
			owner := z.Owner.Player
			zs.Owner = &owner
		}

		for _, id := range g.visibleCards(z, rule) {
			if c, err := g.state.Card(id); err == nil {
				snap.Cards[id] = c
			}
		}
		snap.Zones = append(snap.Zones, zs)
	}
	return snap
}

func (g *Game) visibleCards(z *Zone, rule VisibilityRule) []CardID {
	switch rule {
	case VisibilityVisible:
		return z.Cards
	case VisibilityTop:
		if id := z.Top(); id != 0 {
			return []CardID{id}
		}
	case VisibilityBottom:
		if id := z.Bottom(); id != 0 {
			return []CardID{id}
		}
	}
	return nil
}
