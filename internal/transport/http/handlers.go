package http_transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"lrs/internal/dto"
	"lrs/internal/service/room"
)

type ServiceRoom interface {
	CreateRoom(req dto.CreateRoomRequest) (dto.RoomConfig, error)
	UpdateConfig(id string, req dto.UpdateRoomRequest) (dto.RoomConfig, error)
	SetSchedule(id string, slots []dto.SlotInput) (int, error)
	GetRoom(id, password string) (dto.Room, error)
	GetView(id string, at time.Time) (dto.View, error)
	RoomsInfo() []dto.RoomInfo
}

type Handler struct {
	servRoom ServiceRoom
	validate *validator.Validate
}

func NewHandler(servRoom ServiceRoom) *Handler {
	return &Handler{servRoom: servRoom, validate: validator.New()}
}

func (h *Handler) CreateRoom(w http.ResponseWriter, r *http.Request) {
	var req dto.CreateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, http.StatusBadRequest, "body is required")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		WriteJsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	cfg, err := h.servRoom.CreateRoom(req)
	if err != nil {
		WriteJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusCreated)

	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (h *Handler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJsonError(w, http.StatusBadRequest, "query parameter id is required")
		return
	}

	var req dto.UpdateRoomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, http.StatusBadRequest, "body is required")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		WriteJsonError(w, http.StatusBadRequest, validationMessage(err))
		return
	}

	cfg, err := h.servRoom.UpdateConfig(id, req)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			WriteJsonError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if err := json.NewEncoder(w).Encode(cfg); err != nil {
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (h *Handler) SetSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJsonError(w, http.StatusBadRequest, "query parameter id is required")
		return
	}

	var req dto.SetScheduleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		WriteJsonError(w, http.StatusBadRequest, "body is required")
		return
	}

	version, err := h.servRoom.SetSchedule(id, req.Slots)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			WriteJsonError(w, http.StatusNotFound, err.Error())
			return
		}
		// validator message, surfaced verbatim
		WriteJsonError(w, http.StatusBadRequest, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if err := json.NewEncoder(w).Encode(dto.VersionResponse{Version: version}); err != nil {
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (h *Handler) GetRoom(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJsonError(w, http.StatusBadRequest, "query parameter id is required")
		return
	}

	res, err := h.servRoom.GetRoom(id, r.URL.Query().Get("password"))
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			WriteJsonError(w, http.StatusNotFound, err.Error())
			return
		}
		if errors.Is(err, room.ErrWrongPassword) {
			WriteJsonError(w, http.StatusUnauthorized, err.Error())
			return
		}
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if err := json.NewEncoder(w).Encode(res); err != nil {
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (h *Handler) GetView(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("id")
	if id == "" {
		WriteJsonError(w, http.StatusBadRequest, "query parameter id is required")
		return
	}

	at := time.Now().UTC()
	if atStr := r.URL.Query().Get("at"); atStr != "" {
		parsed, err := time.Parse(time.RFC3339, atStr)
		if err != nil {
			WriteJsonError(w, http.StatusBadRequest, fmt.Sprintf("query parameter at %q is not a valid timestamp", atStr))
			return
		}
		at = parsed
	}

	view, err := h.servRoom.GetView(id, at)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			WriteJsonError(w, http.StatusNotFound, err.Error())
			return
		}
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")

	if err := json.NewEncoder(w).Encode(view); err != nil {
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
		return
	}
}

func (h *Handler) GetAllRoomsInfo(w http.ResponseWriter, r *http.Request) {
	rooms := h.servRoom.RoomsInfo()
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if err := json.NewEncoder(w).Encode(rooms); err != nil {
		WriteJsonError(w, http.StatusInternalServerError, err.Error())
	}
}

// validationMessage turns the first struct-validation failure into the
// field-specific message the API promises instead of a generic "invalid
// input".
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		f := verrs[0]
		switch f.Tag() {
		case "required":
			return fmt.Sprintf("field %s is required", f.Field())
		case "oneof":
			return fmt.Sprintf("field %s must be one of: %s", f.Field(), f.Param())
		case "gt":
			return fmt.Sprintf("field %s must be greater than %s", f.Field(), f.Param())
		case "min":
			return fmt.Sprintf("field %s must not be empty", f.Field())
		}
		return fmt.Sprintf("field %s is invalid", f.Field())
	}
	return err.Error()
}
