package api

import (
	"net/http"

	http_transport "lrs/internal/transport/http"
	ws_transport "lrs/internal/transport/ws"
)

type API struct {
	mux *http.ServeMux
}

type Deps struct {
	HttpHandler *http_transport.Handler
	WsHandler   *ws_transport.WSHandler
}

func NewAPI(deps Deps) *API {
	apiMux := http.NewServeMux()

	apiMux.HandleFunc("/rooms", Method(http.MethodPost, deps.HttpHandler.CreateRoom))
	apiMux.HandleFunc("/rooms/config", Method(http.MethodPost, deps.HttpHandler.UpdateConfig))
	apiMux.HandleFunc("/rooms/schedule", Method(http.MethodPost, deps.HttpHandler.SetSchedule))
	apiMux.HandleFunc("/rooms/info", Method(http.MethodGet, deps.HttpHandler.GetRoom))
	apiMux.HandleFunc("/rooms/view", Method(http.MethodGet, deps.HttpHandler.GetView))
	apiMux.HandleFunc("/rooms/list", Method(http.MethodGet, deps.HttpHandler.GetAllRoomsInfo))

	rootMux := http.NewServeMux()

	rootMux.Handle("/api/v1/", http.StripPrefix("/api/v1", apiMux))

	rootMux.HandleFunc("/ws/room", deps.WsHandler.RoomWS)

	return &API{mux: rootMux}
}

func (a *API) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.mux.ServeHTTP(w, r)
}

func Method(method string, handler http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}

		handler(w, r)
	}
}
