package schedule

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"lrs/internal/dto"
)

func lives(t *testing.T, items ...dto.LiveItemInput) json.RawMessage {
	t.Helper()
	raw, err := json.Marshal(items)
	require.NoError(t, err)
	return raw
}

func TestValidateSortsByStart(t *testing.T) {
	req := require.New(t)

	input := []dto.SlotInput{
		{
			StartAt: "2025-06-01T14:00:00Z",
			EndAt:   "2025-06-01T15:00:00Z",
			Lives:   lives(t, dto.LiveItemInput{Ref: "naddr1later"}),
		},
		{
			StartAt: "2025-06-01T12:00:00Z",
			EndAt:   "2025-06-01T13:00:00Z",
			Lives:   lives(t, dto.LiveItemInput{Ref: "nevent1earlier"}),
		},
	}

	out, err := Validate(input)
	req.NoError(err)
	req.Len(out, 2)
	req.Equal("nevent1earlier", out[0].Lives[0].Ref)
	req.Equal("naddr1later", out[1].Lives[0].Ref)
	req.True(out[0].StartAt.Before(out[1].StartAt))
	req.Equal(time.UTC, out[0].StartAt.Location())
}

func TestValidateRoundTrip(t *testing.T) {
	req := require.New(t)

	input := []dto.SlotInput{
		{
			StartAt: "2025-06-01T14:00:00Z",
			EndAt:   "2025-06-01T15:00:00Z",
			Lives:   lives(t, dto.LiveItemInput{Ref: "naddr1b"}),
		},
		{
			StartAt: "2025-06-01T12:00:00Z",
			EndAt:   "2025-06-01T13:00:00Z",
			Lives:   lives(t, dto.LiveItemInput{Ref: "naddr1a"}),
		},
	}

	first, err := Validate(input)
	req.NoError(err)

	// feed the normalized schedule back in; it must be accepted again and
	// keep the same order
	resubmit := make([]dto.SlotInput, len(first))
	for i, s := range first {
		items := make([]dto.LiveItemInput, len(s.Lives))
		for j, l := range s.Lives {
			w := l.Weight
			items[j] = dto.LiveItemInput{Ref: l.Ref, Weight: &w, Title: l.Title}
		}
		resubmit[i] = dto.SlotInput{
			StartAt: s.StartAt.Format(time.RFC3339),
			EndAt:   s.EndAt.Format(time.RFC3339),
			Lives:   lives(t, items...),
		}
	}

	second, err := Validate(resubmit)
	req.NoError(err)
	req.Equal(first, second)
}

func TestValidateWeightDefaults(t *testing.T) {
	req := require.New(t)

	zero := 0
	three := 3
	out, err := Validate([]dto.SlotInput{{
		StartAt: "2025-06-01T12:00:00Z",
		EndAt:   "2025-06-01T13:00:00Z",
		Lives: lives(t,
			dto.LiveItemInput{Ref: "naddr1a"},
			dto.LiveItemInput{Ref: "naddr1b", Weight: &zero},
			dto.LiveItemInput{Ref: "naddr1c", Weight: &three},
		),
	}})
	req.NoError(err)
	req.Equal(1, out[0].Lives[0].Weight, "absent weight defaults to 1")
	req.Equal(0, out[0].Lives[1].Weight, "explicit zero is kept")
	req.Equal(3, out[0].Lives[2].Weight)
}

func TestValidateRejections(t *testing.T) {
	ok := dto.SlotInput{
		StartAt: "2025-06-01T12:00:00Z",
		EndAt:   "2025-06-01T13:00:00Z",
	}

	cases := []struct {
		name    string
		slots   func(t *testing.T) []dto.SlotInput
		message string
	}{
		{
			name: "missing startAt",
			slots: func(t *testing.T) []dto.SlotInput {
				s := ok
				s.StartAt = ""
				s.Lives = lives(t, dto.LiveItemInput{Ref: "naddr1x"})
				return []dto.SlotInput{s}
			},
			message: "slot 1: startAt is required",
		},
		{
			name: "unparseable endAt",
			slots: func(t *testing.T) []dto.SlotInput {
				s := ok
				s.EndAt = "next tuesday"
				s.Lives = lives(t, dto.LiveItemInput{Ref: "naddr1x"})
				return []dto.SlotInput{s}
			},
			message: `slot 1: endAt "next tuesday" is not a valid UTC timestamp`,
		},
		{
			name: "end not after start reported against the second slot",
			slots: func(t *testing.T) []dto.SlotInput {
				good := ok
				good.Lives = lives(t, dto.LiveItemInput{Ref: "naddr1x"})
				bad := dto.SlotInput{
					StartAt: "2025-06-01T14:00:00Z",
					EndAt:   "2025-06-01T14:00:00Z",
					Lives:   lives(t, dto.LiveItemInput{Ref: "naddr1y"}),
				}
				return []dto.SlotInput{good, bad}
			},
			message: "slot 2: endAt must be after startAt",
		},
		{
			name: "legacy liveIds field",
			slots: func(t *testing.T) []dto.SlotInput {
				s := ok
				s.LiveIDs = json.RawMessage(`["naddr1x"]`)
				return []dto.SlotInput{s}
			},
			message: `slot 1: field "liveIds" is no longer supported, rename it to "lives"`,
		},
		{
			name: "lives absent",
			slots: func(t *testing.T) []dto.SlotInput {
				return []dto.SlotInput{ok}
			},
			message: "slot 1: lives must be an array",
		},
		{
			name: "lives not an array",
			slots: func(t *testing.T) []dto.SlotInput {
				s := ok
				s.Lives = json.RawMessage(`{"ref":"naddr1x"}`)
				return []dto.SlotInput{s}
			},
			message: "slot 1: lives must be an array",
		},
		{
			name: "empty ref",
			slots: func(t *testing.T) []dto.SlotInput {
				s := ok
				s.Lives = lives(t, dto.LiveItemInput{Ref: "naddr1x"}, dto.LiveItemInput{Ref: ""})
				return []dto.SlotInput{s}
			},
			message: "slot 1: lives[1] requires a non-empty ref",
		},
		{
			name: "unknown ref prefix echoes the value",
			slots: func(t *testing.T) []dto.SlotInput {
				s := ok
				s.Lives = lives(t, dto.LiveItemInput{Ref: "https://example.com/live"})
				return []dto.SlotInput{s}
			},
			message: `slot 1: ref "https://example.com/live" must start with "naddr1" or "nevent1"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := require.New(t)
			out, err := Validate(tc.slots(t))
			req.Nil(out)
			req.EqualError(err, tc.message)
		})
	}
}

func TestValidateEmptyScheduleIsAllowed(t *testing.T) {
	req := require.New(t)

	out, err := Validate(nil)
	req.NoError(err)
	req.Empty(out)
}
