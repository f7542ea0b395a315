package kit

import (
	"encoding/json"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
)

type MessageResponse struct {
	Message string `json:"message"`
}

type ErrorResponse struct {
	Error     string `json:"error"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteMessage(w http.ResponseWriter, status int, msg string) {
	WriteJSON(w, status, MessageResponse{Message: msg})
}

// WriteError writes a typed failure: kind names the failure class, msg is for humans.
func WriteError(w http.ResponseWriter, r *http.Request, status int, kind, msg string) {
	WriteJSON(w, status, ErrorResponse{
		Error:     kind,
		Message:   msg,
		RequestID: chimw.GetReqID(r.Context()),
	})
}
