// Package devserver implements the development HTTP server named in §6 as
// an external collaborator: it serves every planned page by delegating
// rendering to the UI layer's PageRenderer, serves the generated sitemap
// and RSS feed, and drives a live-reload WebSocket hub. The output
// generator (C11) fetches this same server during a build.
package devserver

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"strings"
	"time"
)

// ErrFeedDisabled is returned by a FeedSource method when the
// corresponding feed is turned off in configuration; the server responds
// 404 rather than treating it as a generation failure.
var ErrFeedDisabled = errors.New("devserver: feed disabled")

// PageRenderer resolves a request path to its rendered HTML. It returns
// found=false when no planned page matches path, letting the server
// respond 404. The server only invokes it and writes whatever bytes come
// back, never prescribing a template language or CSS framework.
type PageRenderer func(ctx context.Context, path string) (html []byte, found bool, err error)

// FeedSource supplies the pre-generated sitemap.xml and rss.xml bodies
// served at their fixed routes (§6).
type FeedSource interface {
	Sitemap(ctx context.Context) ([]byte, error)
	RSS(ctx context.Context) ([]byte, error)
}

// Options configures a Server.
type Options struct {
	Bind       string
	Port       int
	Render     PageRenderer
	Feeds      FeedSource
	LiveReload bool
}

// Server is the development HTTP server: it renders every planned page on
// demand via Render, serves /sitemap.xml and /rss.xml from Feeds, and,
// when LiveReload is enabled, injects a WebSocket client into HTML
// responses and exposes /__quill/ws for the engine facade's watcher to
// drive reloads through NotifyReload.
type Server struct {
	opts Options
	hub  *hub
	http *http.Server
}

// New builds a Server ready to Start.
func New(opts Options) *Server {
	return &Server{opts: opts, hub: newHub()}
}

// Start runs the HTTP server, blocking until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	go s.hub.run()
	defer s.hub.stop()

	mux := http.NewServeMux()
	mux.HandleFunc("/__quill/ws", s.hub.handleWS)
	mux.HandleFunc("/sitemap.xml", s.handleFeed(func(ctx context.Context) ([]byte, error) {
		return s.opts.Feeds.Sitemap(ctx)
	}, "application/xml"))
	mux.HandleFunc("/rss.xml", s.handleFeed(func(ctx context.Context) ([]byte, error) {
		return s.opts.Feeds.RSS(ctx)
	}, "application/rss+xml"))
	mux.HandleFunc("/", s.handlePage)

	addr := fmt.Sprintf("%s:%d", s.opts.Bind, s.opts.Port)
	s.http = &http.Server{Addr: addr, Handler: mux}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("devserver: listening on %s: %w", addr, err)
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.http.Shutdown(shutdownCtx)
	}()

	log.Printf("devserver: serving at http://%s", addr)
	if err := s.http.Serve(ln); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("devserver: %w", err)
	}
	return nil
}

// NotifyReload broadcasts a reload message to every connected browser tab.
func (s *Server) NotifyReload() {
	s.hub.notifyReload()
}

func (s *Server) handleFeed(fetch func(context.Context) ([]byte, error), contentType string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.opts.Feeds == nil {
			http.NotFound(w, r)
			return
		}
		data, err := fetch(r.Context())
		if errors.Is(err, ErrFeedDisabled) {
			http.NotFound(w, r)
			return
		}
		if err != nil {
			log.Printf("devserver: generating %s: %v", r.URL.Path, err)
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", contentType)
		w.Write(data)
	}
}

func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	if s.opts.Render == nil {
		http.NotFound(w, r)
		return
	}

	html, found, err := s.opts.Render(r.Context(), r.URL.Path)
	if err != nil {
		log.Printf("devserver: rendering %s: %v", r.URL.Path, err)
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if !found {
		http.NotFound(w, r)
		return
	}

	if s.opts.LiveReload && isHTML(html) {
		html = injectLiveReload(html)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	w.Write(html)
}

func isHTML(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	return strings.HasPrefix(strings.ToLower(trimmed), "<!doctype") ||
		strings.HasPrefix(strings.ToLower(trimmed), "<html")
}
