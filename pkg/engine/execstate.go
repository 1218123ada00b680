package engine

// defaultStatementLimit 单局允许求值的语句步数上限，防止规则死循环
const defaultStatementLimit = 1000

// frameVars 帧作用域变量表，随帧出栈一起销毁
type frameVars struct {
	zones       map[string]ZoneID
	zoneLists   map[string][]ZoneID
	players     map[string]int
	playerLists map[string][]int
	cards       map[string]CardID
	cardLists   map[string][]CardID
}

func newFrameVars() *frameVars {
	return &frameVars{
		zones:       make(map[string]ZoneID),
		zoneLists:   make(map[string][]ZoneID),
		players:     make(map[string]int),
		playerLists: make(map[string][]int),
		cards:       make(map[string]CardID),
		cardLists:   make(map[string][]CardID),
	}
}

// rootVars 根作用域：公共区域与数值变量，跨帧存活
type rootVars struct {
	zones   map[string]ZoneID
	numbers map[string]Number
}

func newRootVars() *rootVars {
	return &rootVars{
		zones:   make(map[string]ZoneID),
		numbers: make(map[string]Number),
	}
}

// frame 执行栈帧
// single 非空表示尚未展开的单语句；展开成块后 single 清空，
// block+cursor 生效。二者互斥
type frame struct {
	single *Statement
	block  []*Statement
	cursor int
	vars   *frameVars
}

func newSingleFrame(s *Statement) *frame {
	return &frame{single: s, vars: newFrameVars()}
}

// current 帧内当前语句；块帧越界时返回 nil
func (f *frame) current() *Statement {
	if f.single != nil {
		return f.single
	}
	if f.cursor < len(f.block) {
		return f.block[f.cursor]
	}
	return nil
}

// exhausted 块帧是否已执行完
func (f *frame) exhausted() bool {
	return f.single == nil && f.cursor >= len(f.block)
}

// ExecutionState 可中断恢复的语句执行栈
type ExecutionState struct {
	stack     []*frame
	root      *rootVars
	evaluated uint32
	limit     uint32
}

// NewExecutionState 以 root 为起点构建执行栈
func NewExecutionState(root *Statement, limit uint32) *ExecutionState {
	if limit == 0 {
		limit = defaultStatementLimit
	}
	return &ExecutionState{
		stack: []*frame{newSingleFrame(root)},
		root:  newRootVars(),
		limit: limit,
	}
}

// Reset 丢弃全部栈帧，以新的根语句重新开始
// 根作用域与步数计数器保留
func (es *ExecutionState) Reset(root *Statement) {
	es.stack = []*frame{newSingleFrame(root)}
}

// Depth 当前栈深
func (es *ExecutionState) Depth() int {
	return len(es.stack)
}

// Evaluated 已求值的语句步数
func (es *ExecutionState) Evaluated() uint32 {
	return es.evaluated
}

// CountStep 记一步求值，超出上限返回 ErrStatementLimit
func (es *ExecutionState) CountStep() error {
	if es.evaluated >= es.limit {
		return ErrStatementLimit
	}
	es.evaluated++
	return nil
}

// top 栈顶帧，空栈返回 nil
func (es *ExecutionState) top() *frame {
	if len(es.stack) == 0 {
		return nil
	}
	return es.stack[len(es.stack)-1]
}

// CurrentStatement 返回当前待执行语句
// 执行完的块帧在此处被惰性弹出；栈空返回 nil
func (es *ExecutionState) CurrentStatement() *Statement {
	for {
		f := es.top()
		if f == nil {
			return nil
		}
		if f.exhausted() {
			es.stack = es.stack[:len(es.stack)-1]
			continue
		}
		return f.current()
	}
}

// UpgradeStatement 把当前的块语句展开为块帧
// 栈顶是单语句帧时原地展开；块帧内遇到块语句时，外层游标先行
// 越过它，再压入新的块帧。当前语句不是块时返回 ErrIncorrectVariant
func (es *ExecutionState) UpgradeStatement() error {
	cur := es.CurrentStatement()
	if cur == nil {
		return ErrOutOfStatements
	}
	if cur.Kind() != KindBlock {
		return ErrIncorrectVariant
	}
	f := es.top()
	if f.single != nil {
		f.block = f.single.Block.Statements
		f.cursor = 0
		f.single = nil
		return nil
	}
	f.cursor++
	es.stack = append(es.stack, &frame{block: cur.Block.Statements, vars: newFrameVars()})
	return nil
}

// IncrCurrent 把执行指针前移 n 步
// 栈顶是单语句帧时弹出；块帧时游标前移。n 为 0 时不动
func (es *ExecutionState) IncrCurrent(n int) error {
	if n == 0 {
		return nil
	}
	if es.CurrentStatement() == nil {
		return nil
	}
	f := es.top()
	if f.single != nil {
		if f.single.Kind() == KindBlock {
			// 块必须先经 UpgradeStatement 展开
			return ErrWrongStatementPointer
		}
		es.stack = es.stack[:len(es.stack)-1]
		return nil
	}
	f.cursor += n
	return nil
}

// IncrAndPush 前移 n 步并把 s 压栈（新帧、新作用域）
// 用于条件分支：先消费掉条件语句本身，再进入分支
func (es *ExecutionState) IncrAndPush(s *Statement, n int) error {
	if err := es.IncrCurrent(n); err != nil {
		return err
	}
	es.stack = append(es.stack, newSingleFrame(s))
	return nil
}

// PushStatement 不前移，直接压栈
// 用于循环体：循环语句保持为当前语句，循环体执行完回到它
func (es *ExecutionState) PushStatement(s *Statement) {
	es.stack = append(es.stack, newSingleFrame(s))
}

// 变量读取沿栈自顶向下查找帧作用域，区域变量最后落到根作用域。
// 写入一律进当前栈顶帧（数值变量除外，始终在根作用域）。

func (es *ExecutionState) lookupZone(name string) (ZoneID, bool) {
	for i := len(es.stack) - 1; i >= 0; i-- {
		if id, ok := es.stack[i].vars.zones[name]; ok {
			return id, true
		}
	}
	id, ok := es.root.zones[name]
	return id, ok
}

func (es *ExecutionState) lookupZoneList(name string) ([]ZoneID, bool) {
	for i := len(es.stack) - 1; i >= 0; i-- {
		if ids, ok := es.stack[i].vars.zoneLists[name]; ok {
			return ids, true
		}
	}
	return nil, false
}

func (es *ExecutionState) lookupPlayer(name string) (int, bool) {
	for i := len(es.stack) - 1; i >= 0; i-- {
		if p, ok := es.stack[i].vars.players[name]; ok {
			return p, true
		}
	}
	return 0, false
}

func (es *ExecutionState) lookupPlayerList(name string) ([]int, bool) {
	for i := len(es.stack) - 1; i >= 0; i-- {
		if ps, ok := es.stack[i].vars.playerLists[name]; ok {
			return ps, true
		}
	}
	return nil, false
}

func (es *ExecutionState) lookupCard(name string) (CardID, bool) {
	for i := len(es.stack) - 1; i >= 0; i-- {
		if id, ok := es.stack[i].vars.cards[name]; ok {
			return id, true
		}
	}
	return 0, false
}

func (es *ExecutionState) lookupCardList(name string) ([]CardID, bool) {
	for i := len(es.stack) - 1; i >= 0; i-- {
		if ids, ok := es.stack[i].vars.cardLists[name]; ok {
			return ids, true
		}
	}
	return nil, false
}

func (es *ExecutionState) lookupNumber(name string) (Number, bool) {
	n, ok := es.root.numbers[name]
	return n, ok
}

func (es *ExecutionState) setNumber(name string, n Number) error {
	if _, ok := es.root.numbers[name]; !ok {
		return ErrUnknownNumber
	}
	es.root.numbers[name] = n
	return nil
}
