package engine

import (
	"errors"
	"fmt"
)

// 错误定义
var (
	ErrGameNotWaiting        = errors.New("game not waiting for players")
	ErrGameNotReady          = errors.New("game not ready to start")
	ErrGameNotPlaying        = errors.New("game not playing")
	ErrUnknownPhase          = errors.New("unknown phase")
	ErrUnknownZoneClass      = errors.New("unknown zone class")
	ErrUnknownPlayerClass    = errors.New("unknown player class")
	ErrNoPlayerOfClass       = errors.New("no seated player of class")
	ErrUnknownNumber         = errors.New("number variable not declared")
	ErrUnknownOrder          = errors.New("unknown rank order")
	ErrZoneSlotTaken         = errors.New("zone slot already taken for player")
	ErrUnassignablePlayer    = errors.New("no assignment rule matched player")
	ErrEmptyCollection       = errors.New("selector on empty card collection")
	ErrInvalidExpression     = errors.New("expression has no variant set")
	ErrInvalidStatement      = errors.New("statement has no variant set")
	ErrNoPendingOffer        = errors.New("no offer pending")
	ErrOfferPlayerIneligible = errors.New("player not offered a choice")
	ErrOfferCaseIneligible   = errors.New("offer case not eligible")
	ErrOfferBindingMissing   = errors.New("offer selection binding missing")
	ErrOfferBindingInvalid   = errors.New("offer selection not in source collection")
)

// 执行栈错误
var (
	ErrOutOfStatements       = errors.New("execution stack is empty")
	ErrIncorrectVariant      = errors.New("statement is not a block")
	ErrWrongStatementPointer = errors.New("statement pointer does not match frame shape")
	ErrStatementLimit        = errors.New("statement evaluation limit reached")
)

// ResourceKind 缺失资源的类别
type ResourceKind string

const (
	ResourcePlayer ResourceKind = "player"
	ResourceCard   ResourceKind = "card"
	ResourceZone   ResourceKind = "zone"
)

// MissingResourceError 运行期引用了不存在的玩家/牌/区域
type MissingResourceError struct {
	Kind ResourceKind
	ID   uint64
}

func (e *MissingResourceError) Error() string {
	return fmt.Sprintf("missing %s: id %d", e.Kind, e.ID)
}

func missingPlayer(index int) error {
	return &MissingResourceError{Kind: ResourcePlayer, ID: uint64(index)}
}

func missingCard(id CardID) error {
	return &MissingResourceError{Kind: ResourceCard, ID: uint64(id)}
}

func missingZone(id ZoneID) error {
	return &MissingResourceError{Kind: ResourceZone, ID: id}
}

// UnknownVariableError 当前作用域链中找不到指定变量
type UnknownVariableError struct {
	Name string
}

func (e *UnknownVariableError) Error() string {
	return fmt.Sprintf("unknown variable: %s", e.Name)
}

// GameError 对外暴露的引擎错误
// Fatal 为 true 时对局已不可恢复，只能废弃
type GameError struct {
	Fatal bool
	Err   error
}

func (e *GameError) Error() string {
	if e.Fatal {
		return fmt.Sprintf("fatal: %s", e.Err)
	}
	return e.Err.Error()
}

func (e *GameError) Unwrap() error {
	return e.Err
}

// Recoverable 该错误是否可恢复（对局可以继续）
func (e *GameError) Recoverable() bool {
	return !e.Fatal
}

func recoverableErr(err error) error {
	if err == nil {
		return nil
	}
	return &GameError{Fatal: false, Err: err}
}

func fatalErr(err error) error {
	if err == nil {
		return nil
	}
	return &GameError{Fatal: true, Err: err}
}

// IsFatal 判断错误是否为不可恢复错误
func IsFatal(err error) bool {
	var ge *GameError
	if errors.As(err, &ge) {
		return ge.Fatal
	}
	return false
}
