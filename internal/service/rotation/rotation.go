package rotation

import (
	"strconv"
	"time"
)

type Policy string

const (
	RoundRobin Policy = "round_robin"
	Random     Policy = "random"
	Weighted   Policy = "weighted"
)

func (p Policy) Valid() bool {
	switch p {
	case RoundRobin, Random, Weighted:
		return true
	}
	return false
}

// Index picks the item to show at "now" given the slot's start as anchor.
// Pure: the same (policy, anchor, now, itemCount, intervalSec, weights) tuple
// always yields the same index, so independently connected viewers agree on
// the rotation with no coordination. Weights are only read under Weighted;
// a nil slice means every item weighs 1.
func Index(policy Policy, anchor, now time.Time, itemCount, intervalSec int, weights []int) int {
	if itemCount <= 0 {
		return 0
	}

	ticks := elapsedTicks(anchor, now, intervalSec)

	switch policy {
	case Random:
		x := seedFor(anchor, itemCount) + uint32(ticks)
		x = 1664525*x + 1013904223
		return int(x % uint32(itemCount))
	case Weighted:
		return weightedIndex(ticks, itemCount, weights)
	default:
		return int(ticks % int64(itemCount))
	}
}

// NextSwitch returns the next instant the visible item can change, strictly
// after now. A slot holding at most one item never rotates, so its end is the
// only boundary; otherwise the next tick boundary relative to the anchor,
// capped at the slot end when a slot is active.
func NextSwitch(anchor, now time.Time, intervalSec, itemCount int, slotEnd *time.Time) time.Time {
	if slotEnd != nil && itemCount <= 1 {
		return *slotEnd
	}

	if intervalSec <= 0 {
		intervalSec = 1
	}
	step := time.Duration(intervalSec) * time.Second
	ticks := elapsedTicks(anchor, now, intervalSec)
	next := anchor.Add(time.Duration(ticks+1) * step)

	if slotEnd != nil && next.After(*slotEnd) {
		return *slotEnd
	}
	return next
}

func elapsedTicks(anchor, now time.Time, intervalSec int) int64 {
	if intervalSec <= 0 {
		return 0
	}
	elapsed := now.Sub(anchor)
	if elapsed < 0 {
		return 0
	}
	return int64(elapsed / (time.Duration(intervalSec) * time.Second))
}

// weightedIndex walks a cyclic weighted schedule of length sum(weights):
// a weight-3 item occupies three consecutive ticks of every cycle. Not a
// statistical draw.
func weightedIndex(ticks int64, itemCount int, weights []int) int {
	weightAt := func(i int) int {
		if weights == nil || i >= len(weights) {
			return 1
		}
		if weights[i] < 0 {
			return 0
		}
		return weights[i]
	}

	total := 0
	for i := 0; i < itemCount; i++ {
		total += weightAt(i)
	}
	if total < 1 {
		total = 1
	}

	pseudo := int(ticks%int64(total)) + 1
	acc := 0
	for i := 0; i < itemCount; i++ {
		acc += weightAt(i)
		if acc >= pseudo {
			return i
		}
	}
	return 0
}

// seedFor derives the reproducible 32-bit seed for the "random" policy by
// hashing the anchor epoch-millis concatenated with the item count. One LCG
// step per tick then spreads it; same inputs, same sequence, from any
// process.
func seedFor(anchor time.Time, itemCount int) uint32 {
	key := strconv.FormatInt(anchor.UnixMilli(), 10) + strconv.Itoa(itemCount)

	var h uint32
	for i := 0; i < len(key); i++ {
		h ^= uint32(key[i])
		h += (h << 1) + (h << 4) + (h << 7) + (h << 8) + (h << 24)
	}
	return h
}
