package room

import (
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/samber/lo"

	"lrs/internal/dto"
	"lrs/internal/service/rotation"
)

type Room struct {
	mu       sync.RWMutex
	config   dto.RoomConfig
	password string     // plaintext equality gate, see GetRoom
	schedule []dto.Slot // sorted ascending by StartAt
	version  int

	subscribers map[int]chan dto.Event
	nextSubID   int

	lastSignature string
	ticking       bool
	stop          chan struct{}
}

// run is the per-room timer loop. It re-reads the interval each round so a
// config update takes effect on the following tick, and exits when the last
// subscriber leaves.
func (r *Room) run(stop <-chan struct{}) {
	for {
		r.mu.RLock()
		interval := time.Duration(r.config.RotationIntervalSec) * time.Second
		r.mu.RUnlock()
		if interval <= 0 {
			interval = time.Minute
		}

		timer := time.NewTimer(interval)
		select {
		case <-timer.C:
			r.tick(time.Now().UTC())
		case <-stop:
			timer.Stop()
			return
		}
	}
}

// tick always pushes the cheap per-interval event; the full snapshot goes out
// only when the visible content changed since the previous push.
func (r *Room) tick(now time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.subscribers) == 0 {
		return
	}

	view := r.viewLocked(now)
	r.broadcastLocked(dto.Event{Event: "tick", Data: dto.Tick{
		Now:          now,
		Index:        view.Index,
		NextSwitchAt: view.NextSwitchAt,
	}})

	sig := signature(view)
	if sig != r.lastSignature {
		r.lastSignature = sig
		r.broadcastLocked(dto.Event{Event: "snapshot", Data: dto.Snapshot{Version: r.version, View: view}})
	}
}

// broadcastLocked delivers best-effort: a subscriber whose buffer is full is
// dropped so it cannot stall the timer or its siblings.
func (r *Room) broadcastLocked(event dto.Event) {
	for subID, ch := range r.subscribers {
		select {
		case ch <- event:
		default:
			delete(r.subscribers, subID)
			close(ch)
		}
	}
}

// snapshotLocked builds the out-of-band snapshot pushed on mutation and
// records its signature so the next tick does not repeat it.
func (r *Room) snapshotLocked(now time.Time) dto.Event {
	view := r.viewLocked(now)
	r.lastSignature = signature(view)
	return dto.Event{Event: "snapshot", Data: dto.Snapshot{Version: r.version, View: view}}
}

// viewLocked projects the room's state at one instant. The active slot is the
// first, in startAt order, whose [startAt, endAt) window contains the instant;
// with no active slot the default items apply and the instant itself anchors
// the rotation. Read-only.
func (r *Room) viewLocked(at time.Time) dto.View {
	var active *dto.Slot
	for i := range r.schedule {
		s := &r.schedule[i]
		if !at.Before(s.StartAt) && at.Before(s.EndAt) {
			active = s
			break
		}
	}

	items := r.config.DefaultItems
	anchor := at
	var weights []int
	var slotEnd *time.Time

	view := dto.View{
		Policy:              r.config.RotationPolicy,
		RotationIntervalSec: r.config.RotationIntervalSec,
		DefaultItems:        r.config.DefaultItems,
	}

	if active != nil {
		items = lo.Map(active.Lives, func(l dto.LiveItem, _ int) string { return l.Ref })
		weights = lo.Map(active.Lives, func(l dto.LiveItem, _ int) int { return l.Weight })
		anchor = active.StartAt
		end := active.EndAt
		slotEnd = &end
		view.Active = &dto.ActiveWindow{
			StartAt:  active.StartAt,
			EndAt:    active.EndAt,
			Title:    active.Title,
			Speakers: active.Speakers,
		}
	}
	if items == nil {
		items = []string{}
	}

	policy := rotation.Policy(r.config.RotationPolicy)
	view.Items = items
	view.Index = rotation.Index(policy, anchor, at, len(items), r.config.RotationIntervalSec, weights)
	view.NextSwitchAt = rotation.NextSwitch(anchor, at, r.config.RotationIntervalSec, len(items), slotEnd)

	upcoming := lo.Filter(r.schedule, func(s dto.Slot, _ int) bool { return s.StartAt.After(at) })
	if len(upcoming) > 5 {
		upcoming = upcoming[:5]
	}
	view.UpcomingSlots = lo.Map(upcoming, summarize)

	ended := lo.Filter(r.schedule, func(s dto.Slot, _ int) bool { return !s.EndAt.After(at) })
	sort.Slice(ended, func(i, j int) bool { return ended[i].EndAt.After(ended[j].EndAt) })
	if len(ended) > 5 {
		ended = ended[:5]
	}
	view.PreviousSlots = lo.Map(ended, summarize)

	return view
}

func summarize(s dto.Slot, _ int) dto.SlotSummary {
	return dto.SlotSummary{
		StartAt: s.StartAt,
		EndAt:   s.EndAt,
		Items:   lo.Map(s.Lives, func(l dto.LiveItem, _ int) string { return l.Ref }),
	}
}

// signature summarizes what a viewer would visibly notice changing. Ticks
// whose signature matches the previous one skip the snapshot.
func signature(v dto.View) string {
	var start, end string
	if v.Active != nil {
		start = v.Active.StartAt.Format(time.RFC3339)
		end = v.Active.EndAt.Format(time.RFC3339)
	}
	return strings.Join([]string{
		start,
		end,
		strings.Join(v.Items, ","),
		v.Policy,
		strconv.Itoa(v.RotationIntervalSec),
	}, "|")
}
