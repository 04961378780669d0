package dto

import (
	"encoding/json"
	"time"
)

// RoomConfig is the public shape of a room's configuration. The password is
// write-only: accepted on create/update, never serialized back.
type RoomConfig struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name"`
	Slug                string   `json:"slug,omitempty"`
	Timezone            string   `json:"timezone,omitempty"` // display only, instants stay UTC
	RotationPolicy      string   `json:"rotationPolicy"`
	RotationIntervalSec int      `json:"rotationIntervalSec"`
	DefaultItems        []string `json:"defaultItems"`
}

type CreateRoomRequest struct {
	ID                  string   `json:"id"`
	Name                string   `json:"name" validate:"required"`
	Slug                string   `json:"slug"`
	Timezone            string   `json:"timezone"`
	Password            string   `json:"password"`
	RotationPolicy      string   `json:"rotationPolicy" validate:"omitempty,oneof=round_robin random weighted"`
	RotationIntervalSec int      `json:"rotationIntervalSec" validate:"omitempty,gt=0"`
	RotationInterval    string   `json:"rotationInterval"` // ISO-8601 alternative, e.g. "PT90S"
	DefaultItems        []string `json:"defaultItems"`
}

// UpdateRoomRequest patches a room field by field; nil pointers leave the
// current value unchanged.
type UpdateRoomRequest struct {
	Name                *string   `json:"name" validate:"omitempty,min=1"`
	Slug                *string   `json:"slug"`
	Timezone            *string   `json:"timezone"`
	Password            *string   `json:"password"`
	RotationPolicy      *string   `json:"rotationPolicy" validate:"omitempty,oneof=round_robin random weighted"`
	RotationIntervalSec *int      `json:"rotationIntervalSec" validate:"omitempty,gt=0"`
	RotationInterval    *string   `json:"rotationInterval"`
	DefaultItems        *[]string `json:"defaultItems"`
}

type LiveItemInput struct {
	Ref    string `json:"ref"`
	Weight *int   `json:"weight,omitempty"`
	Title  string `json:"title,omitempty"`
}

// SlotInput is one submitted schedule entry before validation. Lives stays raw
// so the validator can report a non-array value against the right slot, and
// the retired liveIds field is captured so it can be rejected with a hint
// instead of silently dropped.
type SlotInput struct {
	StartAt  string          `json:"startAt"`
	EndAt    string          `json:"endAt"`
	Lives    json.RawMessage `json:"lives,omitempty"`
	LiveIDs  json.RawMessage `json:"liveIds,omitempty"`
	Title    string          `json:"title,omitempty"`
	Speakers []string        `json:"speakers,omitempty"`
}

type SetScheduleRequest struct {
	Slots []SlotInput `json:"slots"`
}

type LiveItem struct {
	Ref    string `json:"ref"`
	Weight int    `json:"weight"`
	Title  string `json:"title,omitempty"`
}

// Slot is a validated schedule entry, timestamps normalized to UTC.
type Slot struct {
	StartAt  time.Time  `json:"startAt"`
	EndAt    time.Time  `json:"endAt"`
	Lives    []LiveItem `json:"lives"`
	Title    string     `json:"title,omitempty"`
	Speakers []string   `json:"speakers,omitempty"`
}

type Room struct {
	Config   RoomConfig `json:"config"`
	Schedule []Slot     `json:"schedule"`
	Version  int        `json:"version"`
}

type RoomInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Slug        string `json:"slug,omitempty"`
	Version     int    `json:"version"`
	Subscribers int    `json:"subscribers"`
}

type ActiveWindow struct {
	StartAt  time.Time `json:"startAt"`
	EndAt    time.Time `json:"endAt"`
	Title    string    `json:"title,omitempty"`
	Speakers []string  `json:"speakers,omitempty"`
}

type SlotSummary struct {
	StartAt time.Time `json:"startAt"`
	EndAt   time.Time `json:"endAt"`
	Items   []string  `json:"items"`
}

// View is the computed state of a room at one instant. Derived, never stored.
type View struct {
	Active              *ActiveWindow `json:"active"`
	Items               []string      `json:"items"`
	Policy              string        `json:"policy"`
	RotationIntervalSec int           `json:"rotationIntervalSec"`
	Index               int           `json:"index"`
	NextSwitchAt        time.Time     `json:"nextSwitchAt"`
	DefaultItems        []string      `json:"defaultItems"`
	UpcomingSlots       []SlotSummary `json:"upcomingSlots"`
	PreviousSlots       []SlotSummary `json:"previousSlots"`
}

// Event is the push envelope: a named event type plus its JSON payload.
type Event struct {
	Event string `json:"event"` // "snapshot", "tick"
	Data  any    `json:"data"`
}

type Snapshot struct {
	Version int  `json:"version"`
	View    View `json:"view"`
}

type Tick struct {
	Now          time.Time `json:"now"`
	Index        int       `json:"index"`
	NextSwitchAt time.Time `json:"nextSwitchAt"`
}

type VersionResponse struct {
	Version int `json:"version"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}
