package webserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"f1pitwall/pkg/log"
	"f1pitwall/pkg/pubsub"
)

// Manager serves the static viewer assets and the websocket endpoint the
// snapshot stream is pushed through.
type Manager struct {
	addr string
	r    *mux.Router
	hub  *Hub
}

func NewManager(addr, staticDir string, ps *pubsub.PubSub[string]) *Manager {
	m := &Manager{
		addr: addr,
		r:    mux.NewRouter(),
		hub:  NewHub(ps),
	}
	m.r.HandleFunc("/ws", m.hub.HandleViewer)
	if staticDir != "" {
		m.r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return m
}

// Run serves until the context is cancelled, then shuts down gracefully.
func (m *Manager) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr: m.addr,
		// Good practice to set timeouts to avoid Slowloris attacks.
		WriteTimeout: time.Second * 15,
		ReadTimeout:  time.Second * 15,
		IdleTimeout:  time.Second * 60,
		Handler:      m.r,
	}

	go m.hub.Run(ctx)

	errCh := make(chan error, 1)
	go func() {
		log.L().Info("webserver listening", zap.String("addr", m.addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return errors.Wrap(err, "webserver")
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.Shutdown(shutdownCtx)
	log.L().Info("webserver shut down")
	return nil
}
