package room

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/socs/socs/pkg/engine"
)

// 全局错误码
var (
	ErrRoomClosed  = errors.New("room is closed")
	ErrRoomFailed  = errors.New("room is failed")
	ErrRoomFull    = errors.New("room is full")
	ErrRoomStarted = errors.New("game already started")
	ErrUnknownSeat = errors.New("unknown seat")
)

const (
	defaultMailboxSize = 64
	defaultStepSlice   = 32 // 一次连续执行的语句数，之后回头看邮箱
	systemSeat         = -1
)

// EventKind 推送给订阅者的事件类型
type EventKind uint8

const (
	EventSnapshot EventKind = iota // 该席位视角的最新快照
	EventChat                      // 聊天或引擎广播
	EventOffer                     // 等待应答的选择
	EventFailed                    // 对局因致命错误作废
)

// Event 房间推送给订阅者的消息
type Event struct {
	Kind     EventKind
	Seat     int    // Chat 的发言席位，引擎广播和系统消息为 -1
	Message  string
	Snapshot *engine.GameSnapshot
	Offer    *engine.OfferView
}

// member 一个席位上的玩家
// 对局开始后断线只置空通道，席位保留
type member struct {
	nickname string
	ch       chan<- Event
}

// Room 单房间执行器
// 一个 goroutine 独占引擎，所有外部调用经邮箱串行化；
// 引擎可执行时在邮箱空闲间隙分片推进
type Room struct {
	code   string
	game   *engine.Game
	calls  chan func()
	stop   chan struct{}
	wg     sync.WaitGroup
	closed sync.Once

	// 以下字段只在房间 goroutine 内读写
	members   []member
	pumping   bool
	failed    bool
	wake      <-chan time.Time
	stepSlice int
}

// New 创建房间并启动执行循环
func New(code string, cfg *engine.GameConfig, opts ...engine.Option) (*Room, error) {
	game, err := engine.New(cfg, opts...)
	if err != nil {
		return nil, err
	}

	mailbox := viper.GetInt("room.mailbox_size")
	if mailbox <= 0 {
		mailbox = defaultMailboxSize
	}
	slice := viper.GetInt("room.step_slice")
	if slice <= 0 {
		slice = defaultStepSlice
	}

	r := &Room{
		code:      code,
		game:      game,
		calls:     make(chan func(), mailbox),
		stop:      make(chan struct{}),
		stepSlice: slice,
	}
	r.wg.Add(1)
	go r.loop()
	log.Info().Str("room", code).Int("step_slice", slice).Msg("room created")
	return r, nil
}

// Code 房间码
func (r *Room) Code() string {
	return r.code
}

// Close 停止房间并等待执行循环退出
func (r *Room) Close() {
	r.closed.Do(func() {
		close(r.stop)
	})
	r.wg.Wait()
	log.Info().Str("room", r.code).Msg("room closed")
}

// Join 加入房间，返回席位号
// 事件经 ch 推送，房间永不阻塞在 ch 上，写不进去会被判定掉线
func (r *Room) Join(ctx context.Context, nickname string, ch chan<- Event) (seat int, err error) {
	reply := make(chan error, 1)
	if err = r.do(ctx, func() {
		seat2, err2 := r.join(nickname, ch)
		seat = seat2
		reply <- err2
	}); err != nil {
		return
	}
	return seat, r.wait(ctx, reply)
}

// Leave 离开房间
// 等待阶段移除席位并重算分配，对局中只断开推送
func (r *Room) Leave(ctx context.Context, seat int) error {
	reply := make(chan error, 1)
	if err := r.do(ctx, func() { reply <- r.leave(seat) }); err != nil {
		return err
	}
	return r.wait(ctx, reply)
}

// Chat 向房间内所有人发消息
func (r *Room) Chat(ctx context.Context, seat int, text string) error {
	reply := make(chan error, 1)
	if err := r.do(ctx, func() { reply <- r.chat(seat, text) }); err != nil {
		return err
	}
	return r.wait(ctx, reply)
}

// Start 开局
func (r *Room) Start(ctx context.Context) error {
	reply := make(chan error, 1)
	if err := r.do(ctx, func() { reply <- r.start() }); err != nil {
		return err
	}
	return r.wait(ctx, reply)
}

// Choice 应答当前等待中的选择
func (r *Room) Choice(ctx context.Context, res engine.OfferResolution) error {
	reply := make(chan error, 1)
	if err := r.do(ctx, func() { reply <- r.choice(res) }); err != nil {
		return err
	}
	return r.wait(ctx, reply)
}

// Players 各席位的昵称
func (r *Room) Players(ctx context.Context) (names []string, err error) {
	reply := make(chan error, 1)
	if err = r.do(ctx, func() {
		names = make([]string, len(r.members))
		for i, m := range r.members {
			names[i] = m.nickname
		}
		reply <- nil
	}); err != nil {
		return
	}
	return names, r.wait(ctx, reply)
}

// do 把一次操作投进邮箱
func (r *Room) do(ctx context.Context, fn func()) error {
	select {
	case r.calls <- fn:
		return nil
	case <-r.stop:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Room) wait(ctx context.Context, reply <-chan error) error {
	select {
	case err := <-reply:
		return err
	case <-r.stop:
		return ErrRoomClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

// loop 房间主循环
// 有唤醒定时或不可推进时阻塞等邮箱，可推进时见缝插针执行语句
func (r *Room) loop() {
	defer r.wg.Done()

	for {
		if r.pumping && r.wake == nil {
			select {
			case fn := <-r.calls:
				fn()
			case <-r.stop:
				return
			default:
				r.step()
			}
		} else {
			select {
			case fn := <-r.calls:
				fn()
			case <-r.wake:
				r.wake = nil
			case <-r.stop:
				return
			}
		}
	}
}

// step 连续执行一片语句，遇到需要外界介入的状态就停
func (r *Room) step() {
	for i := 0; i < r.stepSlice; i++ {
		status, err := r.game.EvalStatement()
		if err != nil {
			r.pumping = false
			if engine.IsFatal(err) {
				r.failed = true
				log.Error().Err(err).Str("room", r.code).Msg("game failed")
				r.publishAll(Event{Kind: EventFailed, Seat: systemSeat, Message: err.Error()})
			} else {
				log.Warn().Err(err).Str("room", r.code).Msg("step refused")
			}
			return
		}

		switch status.Kind {
		case engine.EngineBroadcast:
			r.publishTo(status.To, Event{Kind: EventChat, Seat: systemSeat, Message: status.Message})
		case engine.EngineSleep:
			r.wake = time.After(time.Duration(status.Seconds) * time.Second)
			r.publishSnapshots()
			return
		case engine.EngineBlocked:
			r.pumping = false
			r.publishOffer()
			r.publishSnapshots()
			return
		case engine.EngineFinished:
			r.pumping = false
			log.Info().Str("room", r.code).Ints("winners", r.game.Winners()).Msg("game finished")
			r.publishSnapshots()
			r.publishAll(Event{Kind: EventChat, Seat: systemSeat, Message: "game finished"})
			return
		}
	}
	r.publishSnapshots()
}

func (r *Room) join(nickname string, ch chan<- Event) (int, error) {
	if r.failed {
		return 0, ErrRoomFailed
	}
	if !r.game.IsWaiting() {
		return 0, ErrRoomStarted
	}
	if len(r.members) >= int(r.game.Config().PlayerRange.Max) {
		return 0, ErrRoomFull
	}

	r.members = append(r.members, member{nickname: nickname, ch: ch})
	if err := r.game.UpdatePlayers(uint32(len(r.members))); err != nil {
		r.members = r.members[:len(r.members)-1]
		return 0, err
	}

	seat := len(r.members) - 1
	log.Info().Str("room", r.code).Str("nickname", nickname).Int("seat", seat).Msg("player joined")
	r.publishSnapshots()
	return seat, nil
}

func (r *Room) leave(seat int) error {
	if seat < 0 || seat >= len(r.members) {
		return ErrUnknownSeat
	}

	if !r.game.IsWaiting() {
		// 对局中只断开推送，席位继续参与游戏
		r.members[seat].ch = nil
		log.Info().Str("room", r.code).Int("seat", seat).Msg("player disconnected")
		return nil
	}

	r.members = append(r.members[:seat], r.members[seat+1:]...)
	if err := r.game.UpdatePlayers(uint32(len(r.members))); err != nil {
		return err
	}
	log.Info().Str("room", r.code).Int("seat", seat).Msg("player left")
	r.publishSnapshots()
	return nil
}

func (r *Room) chat(seat int, text string) error {
	if seat < 0 || seat >= len(r.members) {
		return ErrUnknownSeat
	}
	r.publishAll(Event{Kind: EventChat, Seat: seat, Message: text})
	return nil
}

func (r *Room) start() error {
	if r.failed {
		return ErrRoomFailed
	}
	if err := r.game.Init(); err != nil {
		return err
	}
	r.pumping = true
	log.Info().Str("room", r.code).Int("players", len(r.members)).Msg("game started")
	r.publishSnapshots()
	return nil
}

func (r *Room) choice(res engine.OfferResolution) error {
	if r.failed {
		return ErrRoomFailed
	}
	if err := r.game.ResolveOffer(res); err != nil {
		if engine.IsFatal(err) {
			r.failed = true
			log.Error().Err(err).Str("room", r.code).Msg("choice failed the game")
			r.publishAll(Event{Kind: EventFailed, Seat: systemSeat, Message: err.Error()})
		}
		return err
	}
	r.pumping = true
	r.publishSnapshots()
	return nil
}

// publishSnapshots 给每个在线席位推各自视角的快照
func (r *Room) publishSnapshots() {
	for seat := range r.members {
		if r.members[seat].ch == nil {
			continue
		}
		snap := r.game.Snapshot(seat)
		r.send(seat, Event{Kind: EventSnapshot, Seat: seat, Snapshot: &snap})
	}
}

func (r *Room) publishOffer() {
	view := r.game.PendingOffer()
	if view == nil {
		return
	}
	r.publishTo(view.Offered, Event{Kind: EventOffer, Seat: systemSeat, Offer: view})
}

func (r *Room) publishAll(ev Event) {
	for seat := range r.members {
		r.send(seat, ev)
	}
}

func (r *Room) publishTo(seats []int, ev Event) {
	for _, seat := range seats {
		if seat >= 0 && seat < len(r.members) {
			r.send(seat, ev)
		}
	}
}

// send 非阻塞推送，写不进去视为掉线并丢弃订阅
func (r *Room) send(seat int, ev Event) {
	ch := r.members[seat].ch
	if ch == nil {
		return
	}
	select {
	case ch <- ev:
	default:
		r.members[seat].ch = nil
		log.Warn().Str("room", r.code).Int("seat", seat).Msg("subscriber too slow, dropped")
	}
}
