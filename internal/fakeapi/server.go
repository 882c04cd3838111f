// Package fakeapi is an in-memory todo collection speaking the same wire
// format as the remote endpoint. `tada serve` runs it for local
// development and the client tests run against it.
package fakeapi

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/Makepad-fr/tada/internal/model"
)

// Server holds the collection and its router.
type Server struct {
	mu     sync.Mutex
	items  []model.Item
	nextID int
	fail   []failure

	router *gin.Engine
	log    *log.Logger
}

type failure struct {
	method  string // "" matches any method
	status  int
	message string
}

// New returns a server seeded with items. Ids for new items continue after
// the largest seeded id.
func New(seed []model.Item, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	gin.SetMode(gin.ReleaseMode)
	s := &Server{
		items: append([]model.Item(nil), seed...),
		log:   logger,
	}
	for _, it := range seed {
		if it.ID > s.nextID {
			s.nextID = it.ID
		}
	}
	s.router = gin.New()
	s.router.Use(gin.Recovery(), s.logRequests(), s.injectFailures())
	s.registerRoutes()
	return s
}

// DefaultSeed is a small starter collection.
func DefaultSeed() []model.Item {
	return []model.Item{
		{ID: 1, Title: "Buy milk", Done: false, OwnerID: 1},
		{ID: 2, Title: "Walk dog", Done: true, OwnerID: 1},
		{ID: 3, Title: "Write tests", Done: false, OwnerID: 1},
	}
}

// Handler exposes the router, e.g. for httptest.NewServer.
func (s *Server) Handler() http.Handler { return s.router }

// Items returns a copy of the stored collection.
func (s *Server) Items() []model.Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]model.Item(nil), s.items...)
}

// FailNext makes the next request answer with status and message instead
// of being handled. Calls queue up.
func (s *Server) FailNext(status int, message string) {
	s.FailNextOn("", status, message)
}

// FailNextOn is FailNext limited to requests with the given method.
func (s *Server) FailNextOn(method string, status int, message string) {
	s.mu.Lock()
	s.fail = append(s.fail, failure{method: method, status: status, message: message})
	s.mu.Unlock()
}

// ListenAndServe serves on addr until ctx is cancelled.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() { errCh <- srv.ListenAndServe() }()
	s.log.Info("fake collection listening", "addr", addr)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) registerRoutes() {
	s.router.GET("/todos", s.list)
	s.router.POST("/todos/add", s.create)
	s.router.PUT("/todos/:id", s.update)
	s.router.DELETE("/todos/:id", s.remove)
}

func (s *Server) list(c *gin.Context) {
	items := s.Items()
	c.JSON(http.StatusOK, gin.H{
		"todos": items,
		"total": len(items),
		"skip":  0,
		"limit": len(items),
	})
}

func (s *Server) create(c *gin.Context) {
	var d model.Draft
	if err := c.ShouldBindJSON(&d); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body: " + err.Error()})
		return
	}
	if strings.TrimSpace(d.Title) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Todo is required"})
		return
	}
	if d.OwnerID == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "User id is required"})
		return
	}

	s.mu.Lock()
	s.nextID++
	it := model.Item{ID: s.nextID, Title: d.Title, Done: d.Done, OwnerID: d.OwnerID}
	s.items = append(s.items, it)
	s.mu.Unlock()

	c.JSON(http.StatusCreated, it)
}

func (s *Server) update(c *gin.Context) {
	id, ok := s.itemID(c)
	if !ok {
		return
	}
	var p model.Patch
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "invalid body: " + err.Error()})
		return
	}

	s.mu.Lock()
	i := model.IndexOf(s.items, id)
	if i == -1 {
		s.mu.Unlock()
		notFound(c, id)
		return
	}
	if p.Title != nil {
		s.items[i].Title = *p.Title
	}
	if p.Done != nil {
		s.items[i].Done = *p.Done
	}
	it := s.items[i]
	s.mu.Unlock()

	c.JSON(http.StatusOK, it)
}

func (s *Server) remove(c *gin.Context) {
	id, ok := s.itemID(c)
	if !ok {
		return
	}

	s.mu.Lock()
	i := model.IndexOf(s.items, id)
	if i == -1 {
		s.mu.Unlock()
		notFound(c, id)
		return
	}
	it := s.items[i]
	s.items = append(s.items[:i], s.items[i+1:]...)
	s.mu.Unlock()

	c.JSON(http.StatusOK, gin.H{
		"id":        it.ID,
		"todo":      it.Title,
		"completed": it.Done,
		"userId":    it.OwnerID,
		"isDeleted": true,
		"deletedOn": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) itemID(c *gin.Context) (int, bool) {
	raw := c.Param("id")
	id, err := strconv.Atoi(raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": fmt.Sprintf("Invalid todo id '%s'", raw)})
		return 0, false
	}
	return id, true
}

func notFound(c *gin.Context, id int) {
	c.JSON(http.StatusNotFound, gin.H{"message": fmt.Sprintf("Todo with id '%d' not found", id)})
}

func (s *Server) injectFailures() gin.HandlerFunc {
	return func(c *gin.Context) {
		s.mu.Lock()
		for i, f := range s.fail {
			if f.method != "" && f.method != c.Request.Method {
				continue
			}
			s.fail = append(s.fail[:i], s.fail[i+1:]...)
			s.mu.Unlock()
			c.AbortWithStatusJSON(f.status, gin.H{"message": f.message})
			return
		}
		s.mu.Unlock()
		c.Next()
	}
}

func (s *Server) logRequests() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("handled",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"took", time.Since(start),
		)
	}
}
