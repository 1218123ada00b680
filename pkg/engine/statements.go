package engine

// StatementKind 语句变体
type StatementKind uint8

const (
	KindInvalid StatementKind = iota
	KindEmpty
	KindBlock
	KindConditional
	KindWhile
	KindBroadcast
	KindDeclareWinner
	KindSetNumber
	KindAdvanceTurn
	KindAdvanceTurnByClass
	KindMoveCardsTo
	KindGenerateCards
	KindDeal
	KindShuffle
	KindEnterPhase
	KindOffer
)

// BlockStatement 顺序执行的语句序列
type BlockStatement struct {
	Statements []*Statement `json:"statements"`
}

// ConditionalStatement 按条件进入其中一个分支
type ConditionalStatement struct {
	Condition BooleanExpression `json:"condition"`
	GoTrue    *Statement        `json:"go_true,omitempty"`
	GoFalse   *Statement        `json:"go_false,omitempty"`
}

// WhileStatement 条件为真时重复执行循环体
// 条件在每次循环体执行完、重新轮到本语句时再求值
type WhileStatement struct {
	Condition BooleanExpression `json:"condition"`
	Do        *Statement        `json:"do"`
}

// BroadcastStatement 向一组玩家广播消息
type BroadcastStatement struct {
	Message string                     `json:"message"`
	To      PlayerCollectionExpression `json:"to"`
}

// SetNumberStatement 写根作用域数值变量，变量必须在 config.numbers 中声明
type SetNumberStatement struct {
	Name  string           `json:"name"`
	Value NumberExpression `json:"value"`
}

// AdvanceByClassStatement 把回合指针推进到第 n 个指定类的玩家
type AdvanceByClassStatement struct {
	Class     string           `json:"class"`
	ToAdvance NumberExpression `json:"to_advance"`
}

// MoveCardsToStatement 把一组牌移到目标区域，保持选中顺序，追加到顶
type MoveCardsToStatement struct {
	Source CardCollectionExpression `json:"source"`
	Dest   ZoneExpression           `json:"dest"`
}

// GenerateCardsStatement 按模板生成新牌放入目标区域
type GenerateCardsStatement struct {
	Cards CardSetExpression `json:"cards"`
	Dest  ZoneExpression    `json:"dest"`
}

// DealStatement 从源区域逐张轮发到目标区域集合
// 每个目标各发 NumCards 张；源区域提前发空则安静地停止
type DealStatement struct {
	NumCards NumberExpression         `json:"num_cards"`
	Source   ZoneExpression           `json:"source"`
	Dest     ZoneCollectionExpression `json:"dest"`
}

// ChoiceSelection 让玩家从集合中挑选并绑定到处理分支的变量
// Player/Card 单选，Players/Cards 多选
type ChoiceSelection struct {
	Name    string                      `json:"name"`
	Player  *PlayerCollectionExpression `json:"player,omitempty"`
	Players *PlayerCollectionExpression `json:"players,omitempty"`
	Card    *CardCollectionExpression   `json:"card,omitempty"`
	Cards   *CardCollectionExpression   `json:"cards,omitempty"`
}

// MoveCardsAction 选项生效时把源区域顶牌移到目标区域
type MoveCardsAction struct {
	From ZoneExpression `json:"from"`
	To   ZoneExpression `json:"to"`
}

// ChoiceAction 选项附带的即时动作
type ChoiceAction struct {
	MoveCards *MoveCardsAction `json:"move_cards,omitempty"`
}

// OfferChoice 提供给玩家的一个选项
type OfferChoice struct {
	Selection *ChoiceSelection `json:"selection,omitempty"`
	Action    *ChoiceAction    `json:"action,omitempty"`
}

// OfferCase 一个可选分支：满足条件时展示，玩家应答后执行 Then
type OfferCase struct {
	Condition *BooleanExpression `json:"condition,omitempty"` // 空视为恒真
	Message   string             `json:"message"`
	Choices   []OfferChoice      `json:"choices,omitempty"`
	Then      *Statement         `json:"then,omitempty"`
}

// OfferStatement 暂停执行，等待其中一名玩家做出选择
// PlayerName 非空时把应答玩家绑定到处理分支的同名变量
type OfferStatement struct {
	OfferTo    PlayerCollectionExpression `json:"offer_to"`
	PlayerName *string                    `json:"player_name,omitempty"`
	Cases      []OfferCase                `json:"cases"`
}

// Statement 语句联合体：恰好一个变体字段非零，Empty 例外（全零即空语句也可）
type Statement struct {
	Empty              bool                        `json:"empty,omitempty"`
	Block              *BlockStatement             `json:"block,omitempty"`
	Conditional        *ConditionalStatement       `json:"conditional,omitempty"`
	While              *WhileStatement             `json:"while,omitempty"`
	Broadcast          *BroadcastStatement         `json:"broadcast,omitempty"`
	DeclareWinner      *PlayerCollectionExpression `json:"declare_winner,omitempty"`
	SetNumber          *SetNumberStatement         `json:"set_number,omitempty"`
	AdvanceTurn        *NumberExpression           `json:"advance_turn,omitempty"`
	AdvanceTurnByClass *AdvanceByClassStatement    `json:"advance_turn_by_class,omitempty"`
	MoveCardsTo        *MoveCardsToStatement       `json:"move_cards_to,omitempty"`
	GenerateCards      *GenerateCardsStatement     `json:"generate_cards,omitempty"`
	Deal               *DealStatement              `json:"deal,omitempty"`
	Shuffle            *ZoneCollectionExpression   `json:"shuffle,omitempty"`
	EnterPhase         *string                     `json:"enter_phase,omitempty"`
	Offer              *OfferStatement             `json:"offer,omitempty"`
}

// Kind 返回语句变体；全零值视为空语句
func (s *Statement) Kind() StatementKind {
	switch {
	case s == nil:
		return KindEmpty
	case s.Block != nil:
		return KindBlock
	case s.Conditional != nil:
		return KindConditional
	case s.While != nil:
		return KindWhile
	case s.Broadcast != nil:
		return KindBroadcast
	case s.DeclareWinner != nil:
		return KindDeclareWinner
	case s.SetNumber != nil:
		return KindSetNumber
	case s.AdvanceTurn != nil:
		return KindAdvanceTurn
	case s.AdvanceTurnByClass != nil:
		return KindAdvanceTurnByClass
	case s.MoveCardsTo != nil:
		return KindMoveCardsTo
	case s.GenerateCards != nil:
		return KindGenerateCards
	case s.Deal != nil:
		return KindDeal
	case s.Shuffle != nil:
		return KindShuffle
	case s.EnterPhase != nil:
		return KindEnterPhase
	case s.Offer != nil:
		return KindOffer
	default:
		return KindEmpty
	}
}

// 构造辅助，便于用 Go 字面量拼语句树

// Empty 空语句
func Empty() *Statement {
	return &Statement{Empty: true}
}

// Block 语句序列
func Block(stmts ...*Statement) *Statement {
	return &Statement{Block: &BlockStatement{Statements: stmts}}
}

// NumberLit 数值字面量表达式
func NumberLit(n Number) NumberExpression {
	return NumberExpression{Literal: &n}
}

// BoolLit 布尔字面量表达式
func BoolLit(b bool) BooleanExpression {
	return BooleanExpression{Literal: &b}
}
