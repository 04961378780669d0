package room

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sosodev/duration"

	"lrs/internal/dto"
	"lrs/internal/service/rotation"
	"lrs/internal/service/schedule"
)

var (
	ErrRoomNotFound  = fmt.Errorf("room does not exist")
	ErrWrongPassword = fmt.Errorf("wrong password")
)

// ServiceRoom is the process-wide room table. The service lock only guards
// the map; every room's fields live behind the room's own mutex, so
// mutations on one room serialize against each other and readers always see
// config, schedule and version together.
type ServiceRoom struct {
	mu    sync.RWMutex
	rooms map[string]*Room

	defaultIntervalSec int
}

func NewServiceRoom(defaultIntervalSec int) *ServiceRoom {
	if defaultIntervalSec <= 0 {
		defaultIntervalSec = 60
	}
	return &ServiceRoom{
		rooms:              make(map[string]*Room),
		defaultIntervalSec: defaultIntervalSec,
	}
}

func (rs *ServiceRoom) CreateRoom(req dto.CreateRoomRequest) (dto.RoomConfig, error) {
	id := req.ID
	if id == "" {
		id = uuid.NewString()
	}

	policy := req.RotationPolicy
	if policy == "" {
		policy = string(rotation.RoundRobin)
	}

	intervalSec, err := intervalSeconds(req.RotationIntervalSec, req.RotationInterval)
	if err != nil {
		return dto.RoomConfig{}, err
	}
	if intervalSec == 0 {
		intervalSec = rs.defaultIntervalSec
	}

	items := req.DefaultItems
	if items == nil {
		items = []string{}
	}

	r := &Room{
		config: dto.RoomConfig{
			ID:                  id,
			Name:                req.Name,
			Slug:                req.Slug,
			Timezone:            req.Timezone,
			RotationPolicy:      policy,
			RotationIntervalSec: intervalSec,
			DefaultItems:        items,
		},
		password:    req.Password,
		version:     1,
		subscribers: make(map[int]chan dto.Event),
		nextSubID:   1,
	}

	rs.mu.Lock()
	defer rs.mu.Unlock()
	if _, exists := rs.rooms[id]; exists {
		return dto.RoomConfig{}, fmt.Errorf("room %q already exists", id)
	}
	rs.rooms[id] = r

	return r.config, nil
}

// UpdateConfig patches the given fields and leaves the rest untouched, bumps
// the version and pushes a fresh snapshot to every subscriber.
func (rs *ServiceRoom) UpdateConfig(id string, req dto.UpdateRoomRequest) (dto.RoomConfig, error) {
	r, err := rs.getRoom(id)
	if err != nil {
		return dto.RoomConfig{}, err
	}

	// validate everything up front so a rejected patch changes nothing
	if req.RotationPolicy != nil && !rotation.Policy(*req.RotationPolicy).Valid() {
		return dto.RoomConfig{}, fmt.Errorf("rotationPolicy %q is not supported", *req.RotationPolicy)
	}
	intervalSec := 0
	if req.RotationIntervalSec != nil || req.RotationInterval != nil {
		var sec int
		var iso string
		if req.RotationIntervalSec != nil {
			sec = *req.RotationIntervalSec
		}
		if req.RotationInterval != nil {
			iso = *req.RotationInterval
		}
		parsed, err := intervalSeconds(sec, iso)
		if err != nil {
			return dto.RoomConfig{}, err
		}
		intervalSec = parsed
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if req.Name != nil {
		r.config.Name = *req.Name
	}
	if req.Slug != nil {
		r.config.Slug = *req.Slug
	}
	if req.Timezone != nil {
		r.config.Timezone = *req.Timezone
	}
	if req.Password != nil {
		r.password = *req.Password
	}
	if req.RotationPolicy != nil {
		r.config.RotationPolicy = *req.RotationPolicy
	}
	if intervalSec > 0 {
		r.config.RotationIntervalSec = intervalSec
	}
	if req.DefaultItems != nil {
		items := *req.DefaultItems
		if items == nil {
			items = []string{}
		}
		r.config.DefaultItems = items
	}

	r.version++
	r.broadcastLocked(r.snapshotLocked(time.Now().UTC()))

	return r.config, nil
}

// SetSchedule replaces the room's schedule wholesale. A rejected submission
// leaves the prior schedule and version untouched and surfaces the
// validator's message verbatim.
func (rs *ServiceRoom) SetSchedule(id string, slots []dto.SlotInput) (int, error) {
	r, err := rs.getRoom(id)
	if err != nil {
		return 0, err
	}

	validated, err := schedule.Validate(slots)
	if err != nil {
		return 0, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.schedule = validated
	r.version++
	r.broadcastLocked(r.snapshotLocked(time.Now().UTC()))

	return r.version, nil
}

// GetRoom returns config, schedule and version as one consistent read. The
// password gate is a plaintext equality check, as the product shipped it.
func (rs *ServiceRoom) GetRoom(id, password string) (dto.Room, error) {
	r, err := rs.getRoom(id)
	if err != nil {
		return dto.Room{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if r.password != "" && password != r.password {
		return dto.Room{}, ErrWrongPassword
	}

	sched := make([]dto.Slot, len(r.schedule))
	copy(sched, r.schedule)

	return dto.Room{Config: r.config, Schedule: sched, Version: r.version}, nil
}

func (rs *ServiceRoom) GetView(id string, at time.Time) (dto.View, error) {
	r, err := rs.getRoom(id)
	if err != nil {
		return dto.View{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.viewLocked(at.UTC()), nil
}

// Subscribe registers a push sink for the room and primes it with one full
// snapshot. The room's timer loop starts with the first subscriber.
func (rs *ServiceRoom) Subscribe(id string) (int, <-chan dto.Event, error) {
	r, err := rs.getRoom(id)
	if err != nil {
		return 0, nil, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	subID := r.nextSubID
	r.nextSubID++

	ch := make(chan dto.Event, 16)
	r.subscribers[subID] = ch

	view := r.viewLocked(time.Now().UTC())
	ch <- dto.Event{Event: "snapshot", Data: dto.Snapshot{Version: r.version, View: view}}

	if !r.ticking {
		r.ticking = true
		r.stop = make(chan struct{})
		go r.run(r.stop)
	}

	return subID, ch, nil
}

// Unsubscribe drops the sink; the room's timer loop stops once nobody is
// listening.
func (rs *ServiceRoom) Unsubscribe(id string, subID int) error {
	r, err := rs.getRoom(id)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	ch, ok := r.subscribers[subID]
	if !ok {
		return nil
	}
	delete(r.subscribers, subID)
	close(ch)

	if len(r.subscribers) == 0 && r.ticking {
		r.ticking = false
		close(r.stop)
	}

	return nil
}

func (rs *ServiceRoom) RoomsInfo() []dto.RoomInfo {
	rs.mu.RLock()
	rooms := make([]*Room, 0, len(rs.rooms))
	for _, r := range rs.rooms {
		rooms = append(rooms, r)
	}
	rs.mu.RUnlock()

	results := make([]dto.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.RLock()
		results = append(results, dto.RoomInfo{
			ID:          r.config.ID,
			Name:        r.config.Name,
			Slug:        r.config.Slug,
			Version:     r.version,
			Subscribers: len(r.subscribers),
		})
		r.mu.RUnlock()
	}
	return results
}

func (rs *ServiceRoom) getRoom(id string) (*Room, error) {
	rs.mu.RLock()
	r, ok := rs.rooms[id]
	rs.mu.RUnlock()
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// intervalSeconds resolves the two ways a client can express the rotation
// interval: plain seconds or an ISO-8601 duration (what schedule exporters
// tend to emit). Zero means "not provided".
func intervalSeconds(sec int, iso string) (int, error) {
	if sec > 0 {
		return sec, nil
	}
	if iso == "" {
		return 0, nil
	}
	d, err := duration.Parse(iso)
	if err != nil {
		return 0, fmt.Errorf("rotationInterval %q is not a valid ISO-8601 duration", iso)
	}
	s := int(d.ToTimeDuration() / time.Second)
	if s <= 0 {
		return 0, fmt.Errorf("rotationInterval must be longer than zero")
	}
	return s, nil
}
