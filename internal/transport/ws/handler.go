package ws_transport

import (
	"log"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"lrs/internal/dto"
	http_transport "lrs/internal/transport/http"
)

type ServiceRoom interface {
	Subscribe(id string) (int, <-chan dto.Event, error)
	Unsubscribe(id string, subID int) error
}

type WSHandler struct {
	service      ServiceRoom
	pingInterval time.Duration
}

func NewWSHandler(service ServiceRoom, pingInterval time.Duration) *WSHandler {
	if pingInterval <= 0 {
		pingInterval = 30 * time.Second
	}
	return &WSHandler{service: service, pingInterval: pingInterval}
}

// RoomWS holds one viewer's push connection. The subscription channel is
// primed with a snapshot before the upgrade completes, so the first frame a
// viewer sees is always the full state. Viewers are passive: nothing is read
// from them beyond control frames.
func (h *WSHandler) RoomWS(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		http_transport.WriteJsonError(w, http.StatusBadRequest, "query parameter id is required")
		return
	}

	subID, events, err := h.service.Subscribe(id)
	if err != nil {
		http_transport.WriteJsonError(w, http.StatusNotFound, err.Error())
		return
	}

	conn, err := websocket.Accept(w, r, nil)
	if err != nil {
		log.Println(err)
		_ = h.service.Unsubscribe(id, subID)
		return
	}

	defer conn.Close(websocket.StatusNormalClosure, "bye")
	defer h.service.Unsubscribe(id, subID)

	// canceled as soon as the peer closes, which tears the subscription down
	ctx := conn.CloseRead(r.Context())

	pings := time.NewTicker(h.pingInterval)
	defer pings.Stop()

	for {
		select {
		case event, ok := <-events:
			if !ok {
				// dropped by the room as a slow consumer
				return
			}
			if err := wsjson.Write(ctx, conn, event); err != nil {
				log.Println(err)
				return
			}
		case <-pings.C:
			if err := conn.Ping(ctx); err != nil {
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
