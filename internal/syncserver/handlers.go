package syncserver

import (
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/sadopc/tempo/internal/model"
	"github.com/sadopc/tempo/internal/timeutil"
)

func validDate(s string) bool {
	_, err := time.Parse(timeutil.DateLayout, s)
	return err == nil
}

func (s *Server) handleUpload(c *gin.Context) {
	var doc model.DayDocument
	if err := c.ShouldBindJSON(&doc); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body: " + err.Error()})
		return
	}
	if !validDate(doc.Date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	key, err := s.docs.Put(doc)
	if err != nil {
		log.Error("store day document", "date", doc.Date, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"key":     key,
		"date":    doc.Date,
	})
}

func (s *Server) handleFetch(c *gin.Context) {
	date := c.Query("date")
	from := c.Query("from")
	to := c.Query("to")

	switch {
	case date != "":
		s.fetchDay(c, date)
	case from != "" && to != "":
		s.fetchRange(c, from, to)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "date or from/to query parameters required"})
	}
}

func (s *Server) fetchDay(c *gin.Context, date string) {
	if !validDate(date) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return
	}

	doc, err := s.docs.Get(date)
	if errors.Is(err, ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "no data for this date"})
		return
	}
	if err != nil {
		log.Error("load day document", "date", date, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, doc)
}

func (s *Server) fetchRange(c *gin.Context, from, to string) {
	if !validDate(from) || !validDate(to) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "from/to must be YYYY-MM-DD"})
		return
	}

	sessions, projects, loaded, err := s.docs.Range(from, to)
	if err != nil {
		log.Error("aggregate range", "from", from, "to", to, "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"from":        from,
		"to":          to,
		"sessions":    sessions,
		"projects":    projects,
		"filesLoaded": loaded,
	})
}
