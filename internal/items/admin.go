package items

import (
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"ItemStore/pkg/kit"
)

func (s *Server) clearItems(w http.ResponseWriter, _ *http.Request) {
	n := s.Store.Clear()
	s.Metrics.removed(n)
	s.log().Info("cleared items", zap.Int("removed", n))
	kit.WriteMessage(w, http.StatusOK, fmt.Sprintf("Removed %d items", n))
}

func (s *Server) removeItem(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	// chi matches on RawPath when it is set, leaving the param escaped.
	// Otherwise the param is already decoded and must not be decoded again.
	if r.URL.RawPath != "" {
		if unescaped, err := url.PathUnescape(name); err == nil {
			name = unescaped
		}
	}

	it, ok := s.Store.Remove(name)
	if !ok {
		s.log().Debug("remove of missing item", zap.String("name", name))
		kit.WriteMessage(w, http.StatusNotFound, "Item does not exist: "+name)
		return
	}

	s.Metrics.removed(1)
	s.log().Debug("removed item", zap.String("name", name))
	kit.WriteJSON(w, http.StatusOK, it)
}
