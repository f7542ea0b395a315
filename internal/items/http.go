package items

import (
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"ItemStore/internal/version"
	"ItemStore/pkg/kit"
)

const maxBodyBytes = 2 << 20

type Server struct {
	Store   Store
	Log     *zap.Logger
	Metrics *StoreMetrics
	Now     func() time.Time
}

type createReq struct {
	Name *string `json:"name"`
	// ID is optional; the server draws one when absent.
	ID *uint64 `json:"id"`
}

type ItemListResponse struct {
	NumItems int      `json:"num_items"`
	Names    []string `json:"names"`
}

type serverErrorResponse struct {
	Message string `json:"message"`
	ErrorID string `json:"error_id"`
}

func (s *Server) root(w http.ResponseWriter, _ *http.Request) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	stamp := now().UTC().Format(time.RFC3339)
	kit.WriteMessage(w, http.StatusOK, version.Name+" "+stamp)
}

func (s *Server) version(w http.ResponseWriter, _ *http.Request) {
	kit.WriteJSON(w, http.StatusOK, version.Get())
}

func (s *Server) queryItem(w http.ResponseWriter, r *http.Request) {
	vals, ok := r.URL.Query()["name"]
	if !ok || len(vals) == 0 {
		kit.WriteRejection(w, r, kit.QueryRejection("missing field `name`"))
		return
	}
	name := vals[0]

	it, found := s.Store.Get(name)
	if !found {
		s.log().Debug("item not found", zap.String("name", name))
		kit.WriteMessage(w, http.StatusNotFound, "Item does not exist: "+name)
		return
	}
	kit.WriteJSON(w, http.StatusOK, it)
}

func (s *Server) listItems(w http.ResponseWriter, _ *http.Request) {
	names := s.Store.Keys()
	s.log().Debug("list items", zap.Int("num_items", len(names)))
	kit.WriteJSON(w, http.StatusOK, ItemListResponse{NumItems: len(names), Names: names})
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	var req createReq
	if rej := kit.DecodeJSON(w, r, maxBodyBytes, &req); rej != nil {
		kit.WriteRejection(w, r, rej)
		return
	}
	if req.Name == nil {
		kit.WriteRejection(w, r, kit.DataRejection("missing field `name`"))
		return
	}
	if *req.Name == "" {
		kit.WriteRejection(w, r, kit.DataRejection("field `name` must not be empty"))
		return
	}
	name := *req.Name

	if s.Store.Contains(name) {
		s.writeConflict(w, name)
		return
	}

	it := NewWithRandomID(name)
	if req.ID != nil {
		var err error
		if it, err = New(name, *req.ID); err != nil {
			s.writeServerError(w, r, err)
			return
		}
	}

	// The pre-check above only gives an early answer; this is the one that
	// decides the race between concurrent creates of the same name.
	if _, inserted := s.Store.InsertIfAbsent(it); !inserted {
		s.writeConflict(w, name)
		return
	}

	s.Metrics.created()
	s.log().Debug("create item", zap.String("name", it.Name), zap.Uint64("id", it.ID))
	kit.WriteJSON(w, http.StatusCreated, it)
}

func (s *Server) writeConflict(w http.ResponseWriter, name string) {
	s.log().Debug("item already exists", zap.String("name", name))
	kit.WriteMessage(w, http.StatusConflict, "Item already exists: "+name)
}

func (s *Server) writeServerError(w http.ResponseWriter, r *http.Request, err error) {
	id := uuid.NewString()
	s.log().Error("request failed",
		zap.Error(err),
		zap.String("error_id", id),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
	)
	kit.WriteJSON(w, http.StatusInternalServerError, serverErrorResponse{
		Message: fmt.Sprintf("Error: %v", err),
		ErrorID: id,
	})
}

func (s *Server) log() *zap.Logger {
	if s.Log == nil {
		return zap.NewNop()
	}
	return s.Log
}
