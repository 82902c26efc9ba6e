package server

import (
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-reddit-gateway/auth"
	"github.com/jrsteele09/go-reddit-gateway/clientcache"
	"github.com/jrsteele09/go-reddit-gateway/internal/config"
	"github.com/jrsteele09/go-reddit-gateway/internal/errors"
	"github.com/jrsteele09/go-reddit-gateway/reddit"
	"github.com/jrsteele09/go-reddit-gateway/token/sessiontoken"
)

// Server routes HTTP requests onto the auth flows and the wrapped Reddit
// client. The client cache and reddit factory are constructor-provided so
// tests control their lifecycle.
type Server struct {
	env     string
	mux     *http.ServeMux
	routes  []string
	config  config.Config
	auth    *auth.Service
	factory *reddit.Factory
	cache   *clientcache.Cache
}

// New wires up the server from its dependencies.
func New(cfg config.Config, factory *reddit.Factory, cache *clientcache.Cache) (*Server, error) {
	codec := sessiontoken.NewCodec(cfg)
	authService, err := auth.NewService(factory, codec)
	if err != nil {
		return nil, errors.Wrapf(err, "[Server New] failed to create auth service")
	}

	s := &Server{
		env:     cfg.GetEnv(),
		mux:     http.NewServeMux(),
		config:  cfg,
		auth:    authService,
		factory: factory,
		cache:   cache,
	}

	s.initRoutes()
	s.logRoutes()
	return s, nil
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.mux.ServeHTTP(w, r)
}

func (s *Server) RegisterRouteFunc(pattern string, handler func(http.ResponseWriter, *http.Request)) {
	s.routes = append(s.routes, pattern)
	s.mux.HandleFunc(pattern, handler)
}

func (s *Server) logRoutes() {
	if s.env != "DEV" {
		return
	}
	for _, route := range s.routes {
		log.Debug().Str("route", route).Msg("registered")
	}
}
