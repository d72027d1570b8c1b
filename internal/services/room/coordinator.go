package room

import (
	"context"
	"log/slog"

	"github.com/mcoot/blockfall/internal/model"
)

// event is a session report waiting to be handled by the room loop
type event interface{ isEvent() }

type dangerEvent struct {
	game  model.GameID
	level model.DangerLevel
}

type garbageEvent struct {
	game model.GameID
	rows int
}

type strategyEvent struct {
	game     model.GameID
	strategy model.Strategy
}

type lostEvent struct {
	game model.GameID
}

func (dangerEvent) isEvent()   {}
func (garbageEvent) isEvent()  {}
func (strategyEvent) isEvent() {}
func (lostEvent) isEvent()     {}

// DangerChanged implements game.Responder
func (r *Room) DangerChanged(id model.GameID, level model.DangerLevel) {
	r.post(dangerEvent{game: id, level: level})
}

// GarbageSent implements game.Responder
func (r *Room) GarbageSent(id model.GameID, rows int) {
	r.post(garbageEvent{game: id, rows: rows})
}

// StrategyChanged implements game.Responder
func (r *Room) StrategyChanged(id model.GameID, strategy model.Strategy) {
	r.post(strategyEvent{game: id, strategy: strategy})
}

// Lost implements game.Responder
func (r *Room) Lost(id model.GameID) {
	r.post(lostEvent{game: id})
}

// post never blocks the reporting session
func (r *Room) post(e event) {
	select {
	case r.inbox <- e:
	case <-r.done:
	default:
		r.logger.Warn("room event dropped - inbox full")
	}
}

// Run handles session reports until the room finishes or ctx is cancelled
func (r *Room) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-r.done:
			return
		case e := <-r.inbox:
			r.handle(ctx, e)
		}
	}
}

func (r *Room) handle(ctx context.Context, e event) {
	r.mu.Lock()
	sender, ok := r.memberForGame(gameOf(e))
	if !ok {
		r.mu.Unlock()
		r.logger.Warn("event from unknown game", slog.String("game_id", string(gameOf(e))))
		return
	}

	switch e := e.(type) {
	case dangerEvent:
		sender.Danger = e.level
		r.publishFor(e.game, model.EventDangerLevel, model.DangerLevelPayload{Level: e.level})
	case strategyEvent:
		sender.Strategy = e.strategy
		r.publishFor(e.game, model.EventStrategySet, model.StrategySetPayload{Strategy: e.strategy})
	case garbageEvent:
		r.routeGarbage(sender, e.rows)
		r.publishFor(e.game, model.EventGarbageSent, model.GarbageSentPayload{Rows: e.rows})
	case lostEvent:
		r.eliminate(sender)
	}
	summary := r.summaryLocked()
	r.mu.Unlock()

	// the room keeps running on a store failure; the next change retries
	if err := r.save(ctx, summary); err != nil {
		r.logger.Error("failed to save room", slog.String("error", err.Error()))
	}
	if summary.State == model.RoomStateFinished {
		r.finish()
	}
}

func gameOf(e event) model.GameID {
	switch e := e.(type) {
	case dangerEvent:
		return e.game
	case garbageEvent:
		return e.game
	case strategyEvent:
		return e.game
	case lostEvent:
		return e.game
	}
	return ""
}

func (r *Room) memberForGame(id model.GameID) (*member, bool) {
	pid, ok := r.byGame[id]
	if !ok {
		return nil, false
	}
	return r.members.Get(pid)
}

// opponents returns every other live member in join order
func (r *Room) opponents(of *member) []*member {
	var out []*member
	for _, pid := range r.order {
		m, _ := r.members.Get(pid)
		if m.Alive && m.PlayerID != of.PlayerID {
			out = append(out, m)
		}
	}
	return out
}

func (r *Room) routeGarbage(sender *member, rows int) {
	targets := r.opponents(sender)
	if len(targets) == 0 || rows <= 0 {
		return
	}
	target := r.pickTarget(sender, targets)
	target.player.ReceiveGarbage(rows)
	target.received += rows
	target.lastSender = sender.PlayerID
	target.hasLastSender = true

	r.logger.Debug("garbage routed",
		slog.String("from", sender.PlayerID.String()),
		slog.String("to", target.PlayerID.String()),
		slog.String("strategy", string(sender.Strategy)),
		slog.Int("rows", rows),
	)
}

// pickTarget chooses the receiver of a sender's garbage by its strategy
func (r *Room) pickTarget(sender *member, targets []*member) *member {
	switch sender.Strategy {
	case model.StrategyElimination:
		var endangered []*member
		highest := -1
		for _, t := range targets {
			switch sev := t.Danger.Severity(); {
			case sev > highest:
				highest = sev
				endangered = []*member{t}
			case sev == highest:
				endangered = append(endangered, t)
			}
		}
		return endangered[r.random.Intn(len(endangered))]

	case model.StrategyEven:
		least := targets[0]
		for _, t := range targets[1:] {
			if t.received < least.received {
				least = t
			}
		}
		return least

	case model.StrategyPayBack:
		if sender.hasLastSender {
			for _, t := range targets {
				if t.PlayerID == sender.lastSender {
					return t
				}
			}
		}
	}
	return targets[r.random.Intn(len(targets))]
}

// eliminate marks a member as out and declares the last survivor
func (r *Room) eliminate(m *member) {
	if !m.Alive {
		return
	}
	m.Alive = false
	r.logger.Info("player eliminated", slog.String("player_id", m.PlayerID.String()))

	if r.state != model.RoomStatePlaying {
		return
	}

	var alive []*member
	for _, pid := range r.order {
		if other, _ := r.members.Get(pid); other.Alive {
			alive = append(alive, other)
		}
	}
	switch len(alive) {
	case 0:
		r.state = model.RoomStateFinished
		r.logger.Info("room finished without a winner")
	case 1:
		w := alive[0].PlayerID
		r.winner = &w
		r.state = model.RoomStateFinished
		alive[0].player.DeclareWon()
		r.logger.Info("room finished", slog.String("winner", w.String()))
		r.publish(model.EventRoomFinished, model.RoomFinishedPayload{Winner: w})
	}
}
