package schedule

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"lrs/internal/dto"
)

// Accepted prefixes for a live item ref (NIP-19 live event pointers). The
// ref is opaque past the prefix.
const (
	prefixNaddr  = "naddr1"
	prefixNevent = "nevent1"
)

// Validate checks a submitted schedule and returns it normalized: timestamps
// parsed as UTC, default weights applied, slots sorted ascending by startAt.
// The first offending slot is reported by its 1-based position. Pure; on
// error the caller keeps whatever schedule it already had.
func Validate(slots []dto.SlotInput) ([]dto.Slot, error) {
	out := make([]dto.Slot, 0, len(slots))

	for i, in := range slots {
		pos := i + 1

		if len(in.LiveIDs) > 0 {
			return nil, fmt.Errorf("slot %d: field \"liveIds\" is no longer supported, rename it to \"lives\"", pos)
		}

		start, err := parseTimestamp(in.StartAt)
		if err != nil {
			return nil, fmt.Errorf("slot %d: startAt %s", pos, err)
		}
		end, err := parseTimestamp(in.EndAt)
		if err != nil {
			return nil, fmt.Errorf("slot %d: endAt %s", pos, err)
		}
		if !end.After(start) {
			return nil, fmt.Errorf("slot %d: endAt must be after startAt", pos)
		}

		items, err := parseLives(in.Lives)
		if err != nil {
			return nil, fmt.Errorf("slot %d: %s", pos, err)
		}

		lives := make([]dto.LiveItem, len(items))
		for j, item := range items {
			if item.Ref == "" {
				return nil, fmt.Errorf("slot %d: lives[%d] requires a non-empty ref", pos, j)
			}
			if !strings.HasPrefix(item.Ref, prefixNaddr) && !strings.HasPrefix(item.Ref, prefixNevent) {
				return nil, fmt.Errorf("slot %d: ref %q must start with %q or %q", pos, item.Ref, prefixNaddr, prefixNevent)
			}

			weight := 1
			if item.Weight != nil {
				weight = *item.Weight
			}
			lives[j] = dto.LiveItem{Ref: item.Ref, Weight: weight, Title: item.Title}
		}

		out = append(out, dto.Slot{
			StartAt:  start.UTC(),
			EndAt:    end.UTC(),
			Lives:    lives,
			Title:    in.Title,
			Speakers: in.Speakers,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].StartAt.Before(out[j].StartAt)
	})

	return out, nil
}

func parseTimestamp(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, fmt.Errorf("is required")
	}
	ts, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not a valid UTC timestamp", value)
	}
	return ts, nil
}

func parseLives(raw json.RawMessage) ([]dto.LiveItemInput, error) {
	if len(raw) == 0 || string(raw) == "null" {
		return nil, fmt.Errorf("lives must be an array")
	}
	var items []dto.LiveItemInput
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("lives must be an array")
	}
	return items, nil
}
