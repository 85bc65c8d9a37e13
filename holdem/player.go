package holdem

import "holdem-tourney/card"

// PlayerState is one seat's view of a hand. Callers pass it in to NewHand
// and read it back through Hand.Players; stacks only move through the Ledger.
type PlayerState struct {
	Seat uint16
	ID   string
	Name string

	Stack      int64
	Eliminated bool

	// per-hand
	Dealt       bool
	Folded      bool
	AllIn       bool
	CurrentBet  int64
	Contributed int64
	LastAction  ActionKind
	HoleCards   []card.Card
}

// IsActive reports whether the seat still contests the pot.
func (p *PlayerState) IsActive() bool { return p.Dealt && !p.Folded }

// CanAct reports whether the seat can still make betting decisions.
func (p *PlayerState) CanAct() bool { return p.IsActive() && !p.AllIn }

func (p *PlayerState) resetForNewHand() {
	p.Dealt = false
	p.Folded = false
	p.AllIn = false
	p.CurrentBet = 0
	p.Contributed = 0
	p.LastAction = ActionNone
	p.HoleCards = make([]card.Card, 0, 2)
}

func (p PlayerState) clone() PlayerState {
	p.HoleCards = append([]card.Card(nil), p.HoleCards...)
	return p
}

type seatNode struct {
	Player *PlayerState
	Seat   uint16
	Next   *seatNode
}

// WalkOnce 遍历链表一圈（可从任意 start 开始），支持 break。
// fn 返回 true 表示“找到/停止”，false 表示继续。
func (n *seatNode) WalkOnce(fn func(*seatNode) bool) *seatNode {
	if n == nil {
		return nil
	}
	cur := n
	for {
		if fn(cur) {
			return cur
		}
		cur = cur.Next
		if cur == nil || cur == n {
			break
		}
	}
	return nil
}

// WalkAll 遍历一圈，不中断
func (n *seatNode) WalkAll(fn func(cur *seatNode)) {
	n.WalkOnce(func(cur *seatNode) bool {
		fn(cur)
		return false
	})
}

// buildRing links the dealt players in seat order. players must be sorted.
func buildRing(players []*PlayerState) map[uint16]*seatNode {
	nodes := make(map[uint16]*seatNode, len(players))
	var first, last *seatNode
	for _, p := range players {
		if !p.Dealt {
			continue
		}
		node := &seatNode{Player: p, Seat: p.Seat}
		nodes[p.Seat] = node
		if first == nil {
			first = node
		}
		if last != nil {
			last.Next = node
		}
		last = node
	}
	if first != nil && last != nil {
		last.Next = first
	}
	return nodes
}

// clockwiseKey orders seats clockwise starting left of from.
func clockwiseKey(seat, from uint16) int {
	const span = int(InvalidSeat) + 1
	return (int(seat) - int(from) - 1 + span) % span
}
