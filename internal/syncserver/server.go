// Package syncserver is the HTTP front door of the remote day-document
// store: a thin adapter translating GET/POST on /sync into document reads,
// writes and range aggregation.
package syncserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Server wires the document store to its HTTP surface.
type Server struct {
	docs   *DocStore
	router *gin.Engine
}

// NewServer builds the router around a document store.
func NewServer(docs *DocStore) *Server {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), cors())

	s := &Server{
		docs:   docs,
		router: router,
	}

	router.POST("/sync", s.handleUpload)
	router.GET("/sync", s.handleFetch)

	return s
}

// Run starts the server on addr.
func (s *Server) Run(addr string) error {
	return s.router.Run(addr)
}

// Handler exposes the router, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.router
}

// cors answers preflight and stamps permissive cross-origin headers on
// every response.
func cors() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(200)
			return
		}
		c.Next()
	}
}
