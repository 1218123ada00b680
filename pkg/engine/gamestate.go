package engine

import "sort"

// GameStatus 对局状态
type GameStatus int8

const (
	GameWaitingNotReady GameStatus = iota // 等待中，人数不满足开局条件
	GameWaitingReady                      // 等待中，可随时开局
	GamePlaying                           // 游戏中
	GameInvalid                           // 出现不可恢复错误，对局作废
)

func (s GameStatus) String() string {
	switch s {
	case GameWaitingNotReady:
		return "waiting"
	case GameWaitingReady:
		return "ready"
	case GamePlaying:
		return "playing"
	case GameInvalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// IsWaiting 是否仍在等待玩家
func (s GameStatus) IsWaiting() bool {
	return s == GameWaitingNotReady || s == GameWaitingReady
}

// ZoneOwner 玩家区域的归属：(玩家席位, 槽位名) 对局内唯一
type ZoneOwner struct {
	Player int    `json:"player"`
	Slot   string `json:"slot"`
}

// Zone 一个牌区。Cards 有序，末尾为顶
// Name 仅公共区域有值，Owner 仅玩家区域有值
type Zone struct {
	ID    ZoneID     `json:"id"`
	Class string     `json:"class"`
	Cards []CardID   `json:"cards"`
	Owner *ZoneOwner `json:"owner,omitempty"`
	Name  string     `json:"name,omitempty"`
}

// Top 顶牌，空区域返回 0
func (z *Zone) Top() CardID {
	if len(z.Cards) == 0 {
		return 0
	}
	return z.Cards[len(z.Cards)-1]
}

// Bottom 底牌，空区域返回 0
func (z *Zone) Bottom() CardID {
	if len(z.Cards) == 0 {
		return 0
	}
	return z.Cards[0]
}

// popTop 取走顶牌
func (z *Zone) popTop() (CardID, bool) {
	if len(z.Cards) == 0 {
		return 0, false
	}
	id := z.Cards[len(z.Cards)-1]
	z.Cards = z.Cards[:len(z.Cards)-1]
	return id, true
}

// remove 从区域中移除指定牌
func (z *Zone) remove(id CardID) bool {
	for i, c := range z.Cards {
		if c == id {
			z.Cards = append(z.Cards[:i], z.Cards[i+1:]...)
			return true
		}
	}
	return false
}

// Player 对局中的一名玩家，Class 决定其区域槽位和行为分支
type Player struct {
	Class string `json:"class"`
}

// GameState 对局的全部可变状态
// 牌和区域的 id 从 1 起单调分配，销毁后不复用
type GameState struct {
	config    *GameConfig
	cards     map[CardID]Card
	zones     map[ZoneID]*Zone
	zoneOrder []ZoneID // 创建顺序，保证遍历确定性
	players   []Player
	status    GameStatus
	current   int // 当前回合玩家席位
	winners   []int

	nextCardID CardID
	nextZoneID ZoneID
}

// NewGameState 创建空对局状态
func NewGameState(cfg *GameConfig) *GameState {
	return &GameState{
		config: cfg,
		cards:  make(map[CardID]Card),
		zones:  make(map[ZoneID]*Zone),
		status: GameWaitingNotReady,
	}
}

// Status 当前对局状态
func (gs *GameState) Status() GameStatus {
	return gs.status
}

// Current 当前回合玩家席位
func (gs *GameState) Current() int {
	return gs.current
}

// Winners 已宣布的获胜席位，按宣布顺序
func (gs *GameState) Winners() []int {
	out := make([]int, len(gs.winners))
	copy(out, gs.winners)
	return out
}

// Roles 按席位返回玩家类
func (gs *GameState) Roles() []string {
	roles := make([]string, len(gs.players))
	for i, p := range gs.players {
		roles[i] = p.Class
	}
	return roles
}

// PlayerCount 玩家数量
func (gs *GameState) PlayerCount() int {
	return len(gs.players)
}

// PlayerClass 指定席位的玩家类
func (gs *GameState) PlayerClass(index int) (string, error) {
	if index < 0 || index >= len(gs.players) {
		return "", missingPlayer(index)
	}
	return gs.players[index].Class, nil
}

// NewCard 生成一张牌，返回其 id
func (gs *GameState) NewCard(suit Suit, rank Rank) CardID {
	gs.nextCardID++
	id := gs.nextCardID
	gs.cards[id] = Card{Suit: suit, Rank: rank, CardID: id}
	return id
}

// NewCardSet 按模板展开生成一批牌，点数在外层循环
func (gs *GameState) NewCardSet(set CardSet) []CardID {
	ids := make([]CardID, 0, set.Size())
	for _, rank := range set.Ranks {
		for _, suit := range set.Suits {
			ids = append(ids, gs.NewCard(suit, rank))
		}
	}
	return ids
}

// Card 按 id 查牌
func (gs *GameState) Card(id CardID) (Card, error) {
	c, ok := gs.cards[id]
	if !ok {
		return Card{}, missingCard(id)
	}
	return c, nil
}

// CreateZone 创建区域
// 区域类必须存在，否则报错且 id 计数器不变；
// 同一 (玩家, 槽位) 不允许出现第二个区域
func (gs *GameState) CreateZone(cards []CardID, class string, owner *ZoneOwner, name string) (ZoneID, error) {
	if _, ok := gs.config.ZoneClasses[class]; !ok {
		return 0, ErrUnknownZoneClass
	}
	if owner != nil {
		for _, zid := range gs.zoneOrder {
			z := gs.zones[zid]
			if z.Owner != nil && z.Owner.Player == owner.Player && z.Owner.Slot == owner.Slot {
				return 0, ErrZoneSlotTaken
			}
		}
	}
	gs.nextZoneID++
	id := gs.nextZoneID
	z := &Zone{
		ID:    id,
		Class: class,
		Cards: append([]CardID(nil), cards...),
		Owner: owner,
		Name:  name,
	}
	gs.zones[id] = z
	gs.zoneOrder = append(gs.zoneOrder, id)
	return id, nil
}

// Zone 按 id 查区域
func (gs *GameState) Zone(id ZoneID) (*Zone, error) {
	z, ok := gs.zones[id]
	if !ok {
		return nil, missingZone(id)
	}
	return z, nil
}

// Zones 按创建顺序返回全部区域
func (gs *GameState) Zones() []*Zone {
	out := make([]*Zone, 0, len(gs.zoneOrder))
	for _, id := range gs.zoneOrder {
		out = append(out, gs.zones[id])
	}
	return out
}

// ZonesOfClass 按创建顺序返回指定类的区域
func (gs *GameState) ZonesOfClass(class string) []ZoneID {
	var out []ZoneID
	for _, id := range gs.zoneOrder {
		if gs.zones[id].Class == class {
			out = append(out, id)
		}
	}
	return out
}

// PlayerZone 按 (玩家席位, 槽位名) 查区域
func (gs *GameState) PlayerZone(player int, slot string) (ZoneID, error) {
	for _, id := range gs.zoneOrder {
		z := gs.zones[id]
		if z.Owner != nil && z.Owner.Player == player && z.Owner.Slot == slot {
			return id, nil
		}
	}
	return 0, &UnknownVariableError{Name: slot}
}

// holderOf 找出持有指定牌的区域
func (gs *GameState) holderOf(card CardID) (*Zone, bool) {
	for _, id := range gs.zoneOrder {
		z := gs.zones[id]
		for _, c := range z.Cards {
			if c == card {
				return z, true
			}
		}
	}
	return nil, false
}

// CreatePlayers 按分配表给 n 名玩家分配玩家类
// 每次调用从头重算；n 超出上限时截到上限。只在等待状态可用
func (gs *GameState) CreatePlayers(n uint32) error {
	if !gs.status.IsWaiting() {
		return ErrGameNotWaiting
	}

	toCreate := min(int(n), int(gs.config.PlayerRange.Max))
	players := make([]Player, 0, toCreate)
	for i := 0; i < toCreate; i++ {
		assigned := false
		for _, classID := range gs.config.PlayerAssignment {
			class, ok := gs.config.PlayerClasses[classID]
			if !ok {
				return ErrUnknownPlayerClass
			}
			if class.Assignment.Matches(i, toCreate) {
				players = append(players, Player{Class: classID})
				assigned = true
				break
			}
		}
		if !assigned {
			gs.players = nil
			gs.status = GameWaitingNotReady
			return ErrUnassignablePlayer
		}
	}

	gs.players = players
	if gs.config.PlayerRange.Contains(n) {
		gs.status = GameWaitingReady
	} else {
		gs.status = GameWaitingNotReady
	}
	return nil
}

// InitGame 开局：先建公共区域，再按玩家类建每名玩家的槽位区域
// 只有就绪状态可开局
func (gs *GameState) InitGame() error {
	if gs.status != GameWaitingReady {
		return ErrGameNotReady
	}

	// 公共区域按名字排序创建，保证 id 分配确定
	names := make([]string, 0, len(gs.config.InitialZones))
	for name := range gs.config.InitialZones {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, err := gs.CreateZone(nil, gs.config.InitialZones[name], nil, name); err != nil {
			return err
		}
	}

	for i, p := range gs.players {
		class, ok := gs.config.PlayerClasses[p.Class]
		if !ok {
			return ErrUnknownPlayerClass
		}
		for _, slot := range class.ActiveZones {
			zoneClass, ok := gs.config.PlayerZones[slot]
			if !ok {
				return ErrUnknownZoneClass
			}
			if _, err := gs.CreateZone(nil, zoneClass, &ZoneOwner{Player: i, Slot: slot}, ""); err != nil {
				return err
			}
		}
	}

	gs.status = GamePlaying
	return nil
}

// AdvanceTurn 回合指针前移 n 个席位（对席位数取模）
func (gs *GameState) AdvanceTurn(n int) error {
	if len(gs.players) == 0 {
		return missingPlayer(0)
	}
	count := len(gs.players)
	gs.current = ((gs.current+n)%count + count) % count
	return nil
}

// AdvanceTurnToClass 回合指针前移到其后第 n 个指定类的玩家
func (gs *GameState) AdvanceTurnToClass(class string, n int) error {
	if len(gs.players) == 0 || n <= 0 {
		return missingPlayer(0)
	}
	found := 0
	for step := 1; step <= len(gs.players)*n; step++ {
		idx := (gs.current + step) % len(gs.players)
		if gs.players[idx].Class == class {
			found++
			if found == n {
				gs.current = idx
				return nil
			}
		}
	}
	return ErrNoPlayerOfClass
}

// DeclareWinners 记录获胜席位，去重，保持宣布顺序
func (gs *GameState) DeclareWinners(players []int) {
	for _, p := range players {
		dup := false
		for _, w := range gs.winners {
			if w == p {
				dup = true
				break
			}
		}
		if !dup {
			gs.winners = append(gs.winners, p)
		}
	}
}

// CleanupZones 销毁按类规则应在空时销毁的区域
// 只清理公共区域，玩家槽位区域即使空了也保留。
// 返回被销毁区域的 id，便于调用方清理变量绑定
func (gs *GameState) CleanupZones() []ZoneID {
	var removed []ZoneID
	kept := gs.zoneOrder[:0]
	for _, id := range gs.zoneOrder {
		z := gs.zones[id]
		class := gs.config.ZoneClasses[z.Class]
		if z.Owner == nil && class.Cleanup == CleanupOnEmpty && len(z.Cards) == 0 {
			delete(gs.zones, id)
			removed = append(removed, id)
			continue
		}
		kept = append(kept, id)
	}
	gs.zoneOrder = kept
	return removed
}

// markInvalid 对局作废
func (gs *GameState) markInvalid() {
	gs.status = GameInvalid
}
