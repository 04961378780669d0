package ws_transport_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/stretchr/testify/require"

	"lrs/internal/api"
	"lrs/internal/dto"
	"lrs/internal/service/room"
	http_transport "lrs/internal/transport/http"
	ws_transport "lrs/internal/transport/ws"
)

type frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func TestRoomWSPushesSnapshotThenMutations(t *testing.T) {
	req := require.New(t)

	roomService := room.NewServiceRoom(60)
	a := api.NewAPI(api.Deps{
		HttpHandler: http_transport.NewHandler(roomService),
		WsHandler:   ws_transport.NewWSHandler(roomService, time.Second),
	})
	srv := httptest.NewServer(a)
	defer srv.Close()

	cfg, err := roomService.CreateRoom(dto.CreateRoomRequest{Name: "pushed"})
	req.NoError(err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wsURL := strings.Replace(srv.URL, "http://", "ws://", 1) + "/ws/room?id=" + cfg.ID
	conn, _, err := websocket.Dial(ctx, wsURL, nil)
	req.NoError(err)
	defer conn.Close(websocket.StatusNormalClosure, "done")

	// the first frame is always the full state
	var first frame
	req.NoError(wsjson.Read(ctx, conn, &first))
	req.Equal("snapshot", first.Event)

	var snap dto.Snapshot
	req.NoError(json.Unmarshal(first.Data, &snap))
	req.Equal(1, snap.Version)

	// a schedule write reaches the viewer without waiting for a tick
	_, err = roomService.SetSchedule(cfg.ID, []dto.SlotInput{{
		StartAt: "2025-06-01T12:00:00Z",
		EndAt:   "2025-06-01T13:00:00Z",
		Lives:   json.RawMessage(`[{"ref":"naddr1talk"}]`),
	}})
	req.NoError(err)

	var second frame
	req.NoError(wsjson.Read(ctx, conn, &second))
	req.Equal("snapshot", second.Event)
	req.NoError(json.Unmarshal(second.Data, &snap))
	req.Equal(2, snap.Version)
	req.Len(snap.View.PreviousSlots, 1)
}

func TestRoomWSRejectsUnknownRoom(t *testing.T) {
	req := require.New(t)

	roomService := room.NewServiceRoom(60)
	a := api.NewAPI(api.Deps{
		HttpHandler: http_transport.NewHandler(roomService),
		WsHandler:   ws_transport.NewWSHandler(roomService, time.Second),
	})
	srv := httptest.NewServer(a)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/ws/room?id=unknown")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusNotFound, resp.StatusCode)

	resp, err = http.Get(srv.URL + "/ws/room")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusBadRequest, resp.StatusCode)
}
