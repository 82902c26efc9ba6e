package server

import "net/http"

func (s *Server) healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status":  "healthy",
			"service": s.config.GetAppName(),
		})
	}
}

func (s *Server) cacheStatsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]int{"size": s.cache.Size()})
	}
}

func (s *Server) cacheClearHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.cache.InvalidateAll()
		w.WriteHeader(http.StatusNoContent)
	}
}
