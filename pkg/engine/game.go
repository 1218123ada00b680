package engine

// EngineStatusKind 单步执行后引擎对外的状态
type EngineStatusKind uint8

const (
	EngineReady     EngineStatusKind = iota // 可以继续执行下一步
	EngineFinished                          // 执行栈已空
	EngineSleep                             // 希望延迟指定秒数后再继续
	EngineBroadcast                         // 携带一条要转发给玩家的消息
	EngineBlocked                           // 等待玩家对 Offer 做出应答
)

// EngineStatus 单步执行结果
type EngineStatus struct {
	Kind    EngineStatusKind
	Seconds uint32 // Sleep 时的延迟秒数
	Message string // Broadcast 的消息内容
	To      []int  // Broadcast 的目标席位
}

// pendingOffer 停在 Offer 语句上的执行现场
type pendingOffer struct {
	stmt     *OfferStatement
	offered  []int
	eligible []bool // 与 stmt.Cases 对齐，条件在停下时求值
}

// OfferCaseView 展示给玩家的一个可选分支
type OfferCaseView struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// OfferView 当前待应答的 Offer
type OfferView struct {
	Offered []int           `json:"offered"`
	Cases   []OfferCaseView `json:"cases"`
}

// OfferResolution 玩家对 Offer 的应答
// Players/Cards 按选项的绑定名提供选中的对象
type OfferResolution struct {
	Player  int                 `json:"player"`
	Case    int                 `json:"case"`
	Players map[string][]int    `json:"players,omitempty"`
	Cards   map[string][]CardID `json:"cards,omitempty"`
}

// Game 一局对局的门面：规则 + 状态 + 执行栈
type Game struct {
	config  *GameConfig
	state   *GameState
	exec    *ExecutionState
	matcher *Matcher
	opts    *options
	pending *pendingOffer
}

// New 按规则创建对局
// 初始阶段不存在时返回可恢复错误
func New(cfg *GameConfig, opts ...Option) (*Game, error) {
	o := new(options)
	o.apply(opts...).setDefault()

	phase, ok := cfg.Phases[cfg.InitialPhase]
	if !ok {
		return nil, recoverableErr(ErrUnknownPhase)
	}

	return &Game{
		config:  cfg,
		state:   NewGameState(cfg),
		exec:    NewExecutionState(phase.Evaluate, o.statementLimit),
		matcher: NewMatcher(cfg.Patterns, cfg.Orders),
		opts:    o,
	}, nil
}

// Config 对局使用的规则
func (g *Game) Config() *GameConfig {
	return g.config
}

// Status 对局状态
func (g *Game) Status() GameStatus {
	return g.state.Status()
}

// IsWaiting 是否仍在等待玩家
func (g *Game) IsWaiting() bool {
	return g.state.Status().IsWaiting()
}

// IsReady 是否可以开局
func (g *Game) IsReady() bool {
	return g.state.Status() == GameWaitingReady
}

// Roles 按席位返回玩家类
func (g *Game) Roles() []string {
	return g.state.Roles()
}

// Winners 已宣布的获胜席位
func (g *Game) Winners() []int {
	return g.state.Winners()
}

// Matcher 对局的牌型匹配器
func (g *Game) Matcher() *Matcher {
	return g.matcher
}

// ValidateZone 区域内容是否满足其区域类声明的全部牌型规则
func (g *Game) ValidateZone(id ZoneID) (bool, error) {
	zone, err := g.state.Zone(id)
	if err != nil {
		return false, err
	}
	class, ok := g.config.ZoneClasses[zone.Class]
	if !ok {
		return false, ErrUnknownZoneClass
	}
	cards := make([]Card, len(zone.Cards))
	for i, cid := range zone.Cards {
		if cards[i], err = g.state.Card(cid); err != nil {
			return false, err
		}
	}
	for _, name := range class.Rules {
		if !g.matcher.MatchNamed(cards, name) {
			return false, nil
		}
	}
	return true, nil
}

// UpdatePlayers 重新按 n 名玩家分配席位，只在等待状态可用
func (g *Game) UpdatePlayers(n uint32) error {
	return recoverableErr(g.state.CreatePlayers(n))
}

// Init 开局：创建公共区域和玩家区域，公共区域登记进根作用域，
// 声明过的数值变量清零
func (g *Game) Init() error {
	if err := g.state.InitGame(); err != nil {
		return recoverableErr(err)
	}

	for _, z := range g.state.Zones() {
		if z.Name != "" {
			g.exec.root.zones[z.Name] = z.ID
		}
	}
	for _, name := range g.config.Numbers {
		g.exec.root.numbers[name] = 0
	}
	return nil
}

// PendingOffer 当前待应答的 Offer，没有时返回 nil
func (g *Game) PendingOffer() *OfferView {
	if g.pending == nil {
		return nil
	}
	view := &OfferView{Offered: append([]int(nil), g.pending.offered...)}
	for i, c := range g.pending.stmt.Cases {
		if g.pending.eligible[i] {
			view.Cases = append(view.Cases, OfferCaseView{Index: i, Message: c.Message})
		}
	}
	return view
}

// EvalStatement 执行一步
// 返回的 EngineStatus 告诉调用方下一步该做什么；
// 致命错误会把对局置为 Invalid
func (g *Game) EvalStatement() (EngineStatus, error) {
	if g.state.Status() != GamePlaying {
		return EngineStatus{}, recoverableErr(ErrGameNotPlaying)
	}
	if g.pending != nil {
		return EngineStatus{Kind: EngineBlocked}, nil
	}

	stmt := g.exec.CurrentStatement()
	if stmt == nil {
		return EngineStatus{Kind: EngineFinished}, nil
	}

	if err := g.exec.CountStep(); err != nil {
		g.state.markInvalid()
		return EngineStatus{}, fatalErr(err)
	}

	status, err := g.evalOne(stmt)
	if err != nil {
		g.state.markInvalid()
		return EngineStatus{}, fatalErr(err)
	}

	g.cleanupZones()
	if status.Kind == EngineReady && g.exec.CurrentStatement() == nil {
		status.Kind = EngineFinished
	}
	return status, nil
}

// evalOne 分发并执行当前语句，流程控制语句自己管理执行指针，
// 其余语句执行完统一前移一步
func (g *Game) evalOne(stmt *Statement) (EngineStatus, error) {
	switch stmt.Kind() {
	case KindEmpty:
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindBlock:
		return EngineStatus{}, g.exec.UpgradeStatement()

	case KindConditional:
		cond, err := g.evalBool(stmt.Conditional.Condition)
		if err != nil {
			return EngineStatus{}, err
		}
		branch := stmt.Conditional.GoFalse
		if cond {
			branch = stmt.Conditional.GoTrue
		}
		if branch == nil {
			return EngineStatus{}, g.exec.IncrCurrent(1)
		}
		return EngineStatus{}, g.exec.IncrAndPush(branch, 1)

	case KindWhile:
		cond, err := g.evalBool(stmt.While.Condition)
		if err != nil {
			return EngineStatus{}, err
		}
		if !cond || stmt.While.Do == nil {
			return EngineStatus{}, g.exec.IncrCurrent(1)
		}
		// 循环语句保持为当前语句，循环体执行完回来重新验条件
		g.exec.PushStatement(stmt.While.Do)
		return EngineStatus{}, nil

	case KindBroadcast:
		to, err := g.evalPlayers(stmt.Broadcast.To)
		if err != nil {
			return EngineStatus{}, err
		}
		if err := g.exec.IncrCurrent(1); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{Kind: EngineBroadcast, Message: stmt.Broadcast.Message, To: to}, nil

	case KindDeclareWinner:
		players, err := g.evalPlayers(*stmt.DeclareWinner)
		if err != nil {
			return EngineStatus{}, err
		}
		g.state.DeclareWinners(players)
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindSetNumber:
		val, err := g.evalNumber(stmt.SetNumber.Value)
		if err != nil {
			return EngineStatus{}, err
		}
		if err := g.exec.setNumber(stmt.SetNumber.Name, val); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindAdvanceTurn:
		n, err := g.evalNumber(*stmt.AdvanceTurn)
		if err != nil {
			return EngineStatus{}, err
		}
		if err := g.state.AdvanceTurn(int(n)); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindAdvanceTurnByClass:
		n, err := g.evalNumber(stmt.AdvanceTurnByClass.ToAdvance)
		if err != nil {
			return EngineStatus{}, err
		}
		if err := g.state.AdvanceTurnToClass(stmt.AdvanceTurnByClass.Class, int(n)); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindMoveCardsTo:
		if err := g.execMoveCardsTo(stmt.MoveCardsTo); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindGenerateCards:
		if err := g.execGenerateCards(stmt.GenerateCards); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindDeal:
		if err := g.execDeal(stmt.Deal); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindShuffle:
		if err := g.execShuffle(stmt.Shuffle); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{}, g.exec.IncrCurrent(1)

	case KindEnterPhase:
		phase, ok := g.config.Phases[*stmt.EnterPhase]
		if !ok {
			return EngineStatus{}, ErrUnknownPhase
		}
		// 整个执行栈换成新阶段，步数计数器保留，阶段循环也逃不出上限
		g.exec.Reset(phase.Evaluate)
		return EngineStatus{}, nil

	case KindOffer:
		if err := g.parkOffer(stmt.Offer); err != nil {
			return EngineStatus{}, err
		}
		return EngineStatus{Kind: EngineBlocked}, nil

	default:
		return EngineStatus{}, ErrInvalidStatement
	}
}

// execMoveCardsTo 把选中的牌依次移入目标区域
// 某张牌不在任何区域中是致命错误
func (g *Game) execMoveCardsTo(s *MoveCardsToStatement) error {
	cards, err := g.evalCardCollection(s.Source)
	if err != nil {
		return err
	}
	destID, err := g.evalZone(s.Dest)
	if err != nil {
		return err
	}
	dest, err := g.state.Zone(destID)
	if err != nil {
		return err
	}
	for _, id := range cards {
		holder, ok := g.state.holderOf(id)
		if !ok {
			return missingCard(id)
		}
		if holder.ID == dest.ID {
			continue
		}
		holder.remove(id)
		dest.Cards = append(dest.Cards, id)
	}
	return nil
}

// execGenerateCards 按模板生成新牌放到目标区域顶
func (g *Game) execGenerateCards(s *GenerateCardsStatement) error {
	set, err := g.evalCardSet(s.Cards)
	if err != nil {
		return err
	}
	destID, err := g.evalZone(s.Dest)
	if err != nil {
		return err
	}
	dest, err := g.state.Zone(destID)
	if err != nil {
		return err
	}
	dest.Cards = append(dest.Cards, g.state.NewCardSet(set)...)
	return nil
}

// execDeal 从源区域顶逐张轮发
// 每轮给每个目标各一张，共发 n 轮；源区域发空就停
func (g *Game) execDeal(s *DealStatement) error {
	n, err := g.evalNumber(s.NumCards)
	if err != nil {
		return err
	}
	srcID, err := g.evalZone(s.Source)
	if err != nil {
		return err
	}
	src, err := g.state.Zone(srcID)
	if err != nil {
		return err
	}
	destIDs, err := g.evalZones(s.Dest)
	if err != nil {
		return err
	}
	dests := make([]*Zone, len(destIDs))
	for i, id := range destIDs {
		if dests[i], err = g.state.Zone(id); err != nil {
			return err
		}
	}

	for round := Number(0); round < n; round++ {
		for _, dest := range dests {
			card, ok := src.popTop()
			if !ok {
				return nil
			}
			dest.Cards = append(dest.Cards, card)
		}
	}
	return nil
}

// execShuffle 就地打乱每个目标区域
func (g *Game) execShuffle(e *ZoneCollectionExpression) error {
	ids, err := g.evalZones(*e)
	if err != nil {
		return err
	}
	for _, id := range ids {
		zone, err := g.state.Zone(id)
		if err != nil {
			return err
		}
		g.opts.rng.Shuffle(len(zone.Cards), func(i, j int) {
			zone.Cards[i], zone.Cards[j] = zone.Cards[j], zone.Cards[i]
		})
	}
	return nil
}

// parkOffer 停在 Offer 语句上等待应答
// 目标玩家和各分支条件在停下的瞬间求值并固定
func (g *Game) parkOffer(s *OfferStatement) error {
	offered, err := g.evalPlayers(s.OfferTo)
	if err != nil {
		return err
	}
	eligible := make([]bool, len(s.Cases))
	for i, c := range s.Cases {
		if c.Condition == nil {
			eligible[i] = true
			continue
		}
		ok, err := g.evalBool(*c.Condition)
		if err != nil {
			return err
		}
		eligible[i] = ok
	}
	g.pending = &pendingOffer{stmt: s, offered: offered, eligible: eligible}
	return nil
}

// ResolveOffer 应答当前的 Offer
// 校验全部通过后才产生副作用：消费 Offer 语句、压入分支处理帧、
// 绑定选择结果、执行附带动作
func (g *Game) ResolveOffer(res OfferResolution) error {
	if g.pending == nil {
		return recoverableErr(ErrNoPendingOffer)
	}

	offered := false
	for _, p := range g.pending.offered {
		if p == res.Player {
			offered = true
			break
		}
	}
	if !offered {
		return recoverableErr(ErrOfferPlayerIneligible)
	}
	if res.Case < 0 || res.Case >= len(g.pending.stmt.Cases) || !g.pending.eligible[res.Case] {
		return recoverableErr(ErrOfferCaseIneligible)
	}

	c := g.pending.stmt.Cases[res.Case]
	bindings, err := g.validateChoices(c.Choices, res)
	if err != nil {
		return recoverableErr(err)
	}

	then := c.Then
	if then == nil {
		then = Empty()
	}
	if err := g.exec.IncrAndPush(then, 1); err != nil {
		g.state.markInvalid()
		return fatalErr(err)
	}

	top := g.exec.top().vars
	if name := g.pending.stmt.PlayerName; name != nil {
		top.players[*name] = res.Player
	}
	for _, b := range bindings {
		b(top)
	}
	for _, choice := range c.Choices {
		if choice.Action != nil && choice.Action.MoveCards != nil {
			if err := g.execChoiceMove(choice.Action.MoveCards); err != nil {
				g.state.markInvalid()
				return fatalErr(err)
			}
		}
	}

	g.pending = nil
	g.cleanupZones()
	return nil
}

// validateChoices 校验应答中的选择并生成绑定闭包，不动任何状态
func (g *Game) validateChoices(choices []OfferChoice, res OfferResolution) ([]func(*frameVars), error) {
	var bindings []func(*frameVars)
	for _, choice := range choices {
		sel := choice.Selection
		if sel == nil {
			continue
		}
		switch {
		case sel.Player != nil, sel.Players != nil:
			src := sel.Player
			single := true
			if src == nil {
				src = sel.Players
				single = false
			}
			pool, err := g.evalPlayers(*src)
			if err != nil {
				return nil, err
			}
			picked, ok := res.Players[sel.Name]
			if !ok || (single && len(picked) != 1) {
				return nil, ErrOfferBindingMissing
			}
			for _, p := range picked {
				if !containsInt(pool, p) {
					return nil, ErrOfferBindingInvalid
				}
			}
			name := sel.Name
			if single {
				p := picked[0]
				bindings = append(bindings, func(v *frameVars) { v.players[name] = p })
			} else {
				ps := append([]int(nil), picked...)
				bindings = append(bindings, func(v *frameVars) { v.playerLists[name] = ps })
			}

		case sel.Card != nil, sel.Cards != nil:
			src := sel.Card
			single := true
			if src == nil {
				src = sel.Cards
				single = false
			}
			pool, err := g.evalCardCollection(*src)
			if err != nil {
				return nil, err
			}
			picked, ok := res.Cards[sel.Name]
			if !ok || (single && len(picked) != 1) {
				return nil, ErrOfferBindingMissing
			}
			for _, id := range picked {
				if !containsCard(pool, id) {
					return nil, ErrOfferBindingInvalid
				}
			}
			name := sel.Name
			if single {
				id := picked[0]
				bindings = append(bindings, func(v *frameVars) { v.cards[name] = id })
			} else {
				ids := append([]CardID(nil), picked...)
				bindings = append(bindings, func(v *frameVars) { v.cardLists[name] = ids })
			}

		default:
			return nil, ErrInvalidStatement
		}
	}
	return bindings, nil
}

// execChoiceMove 选项动作：源区域顶牌移到目标区域，源空则跳过
func (g *Game) execChoiceMove(m *MoveCardsAction) error {
	fromID, err := g.evalZone(m.From)
	if err != nil {
		return err
	}
	from, err := g.state.Zone(fromID)
	if err != nil {
		return err
	}
	toID, err := g.evalZone(m.To)
	if err != nil {
		return err
	}
	to, err := g.state.Zone(toID)
	if err != nil {
		return err
	}
	if card, ok := from.popTop(); ok {
		to.Cards = append(to.Cards, card)
	}
	return nil
}

// cleanupZones 清掉空区域，并解除根作用域里指向它们的名字
func (g *Game) cleanupZones() {
	removed := g.state.CleanupZones()
	for _, id := range removed {
		for name, zid := range g.exec.root.zones {
			if zid == id {
				delete(g.exec.root.zones, name)
			}
		}
	}
}

func containsInt(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func containsCard(s []CardID, v CardID) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}
