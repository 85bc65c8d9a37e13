package history

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"holdem-tourney/table"
)

// MemoryService keeps history in process. It is what a server gets when no
// database is configured; everything is gone on restart.
type MemoryService struct {
	recentLimit int

	mu     sync.RWMutex
	hands  map[string]HandRecord
	events map[string][]table.Event // hand id => events by seq
}

func NewMemoryService(recentLimit int) *MemoryService {
	return &MemoryService{
		recentLimit: recentLimit,
		hands:       make(map[string]HandRecord),
		events:      make(map[string][]table.Event),
	}
}

func (s *MemoryService) Close() error { return nil }

func (s *MemoryService) AppendEvent(_ context.Context, e table.Event) error {
	if strings.TrimSpace(e.HandID) == "" {
		return fmt.Errorf("append event: empty hand id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	list := s.events[e.HandID]
	i := sort.Search(len(list), func(i int) bool { return list[i].Seq >= e.Seq })
	if i < len(list) && list[i].Seq == e.Seq {
		return nil
	}
	list = append(list, table.Event{})
	copy(list[i+1:], list[i:])
	list[i] = e
	s.events[e.HandID] = list
	return nil
}

func (s *MemoryService) RecordHand(_ context.Context, h HandRecord) error {
	if strings.TrimSpace(h.HandID) == "" {
		return fmt.Errorf("record hand: empty hand id")
	}
	if h.PlayedAt.IsZero() {
		h.PlayedAt = time.Now().UTC()
	}
	h.Winners = append([]uint16{}, h.Winners...)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.hands[h.HandID] = h
	if s.recentLimit > 0 && len(s.hands) > s.recentLimit {
		for _, stale := range s.sortedLocked("")[s.recentLimit:] {
			delete(s.hands, stale.HandID)
			delete(s.events, stale.HandID)
		}
	}
	return nil
}

func (s *MemoryService) ListRecent(_ context.Context, tableID string, limit int) ([]HandRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := s.sortedLocked(strings.TrimSpace(tableID))
	if n := clampLimit(limit); len(items) > n {
		items = items[:n]
	}
	return items, nil
}

func (s *MemoryService) GetHandEvents(_ context.Context, handID string) ([]table.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list, ok := s.events[handID]
	if !ok || len(list) == 0 {
		return nil, ErrNotFound
	}
	return append([]table.Event(nil), list...), nil
}

// sortedLocked lists hands latest first, the same order the SQL stores use.
func (s *MemoryService) sortedLocked(tableID string) []HandRecord {
	out := make([]HandRecord, 0, len(s.hands))
	for _, h := range s.hands {
		if tableID == "" || h.TableID == tableID {
			out = append(out, h)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].PlayedAt.Equal(out[j].PlayedAt) {
			return out[i].PlayedAt.After(out[j].PlayedAt)
		}
		return out[i].HandID > out[j].HandID
	})
	return out
}
