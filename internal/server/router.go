// Package server wires the MediaID handlers into a gin engine and runs it.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/celerix-dev/mediaid/internal/api"
	"github.com/celerix-dev/mediaid/web"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Router struct {
	engine *gin.Engine
	logger *zap.Logger

	mu       sync.Mutex
	listener net.Listener
	srv      *http.Server
}

// NewRouter builds the route table around h.
func NewRouter(h *api.Handler, logger *zap.Logger) (*Router, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if h.Logger == nil {
		h.Logger = logger
	}

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}

	r := gin.New()
	r.Use(RequestID(), Logger(logger), Recovery(logger))
	r.SetHTMLTemplate(tmpl)

	r.GET("/", h.Page("index.html"))
	r.GET("/about", h.Page("about.html"))
	r.GET("/account", h.Page("account.html"))
	r.GET("/first", h.Page("first.html"))
	r.GET("/maps", h.Page("maps.html"))
	r.GET("/chatbot", h.Page("chatbot.html"))

	r.GET("/history-page", h.HistoryPage)
	r.GET("/history", h.History)
	r.POST("/submit", h.Submit)
	r.POST("/chat", h.Chat)

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, gin.H{"error": "route not found"})
	})

	return &Router{engine: r, logger: logger}, nil
}

// Handler exposes the engine, mainly for httptest.
func (r *Router) Handler() http.Handler {
	return r.engine
}

// Listen serves HTTP on addr until Stop is called.
func (r *Router) Listen(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           r.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	r.mu.Lock()
	r.listener = listener
	r.srv = srv
	r.mu.Unlock()

	r.logger.Info("http server listening", zap.String("addr", listener.Addr().String()))
	if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Addr returns the bound address, or nil before Listen has bound.
func (r *Router) Addr() net.Addr {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.listener == nil {
		return nil
	}
	return r.listener.Addr()
}

// Stop drains in-flight requests and closes the listener.
func (r *Router) Stop(ctx context.Context) error {
	r.mu.Lock()
	srv := r.srv
	r.mu.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
