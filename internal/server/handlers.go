package server

import (
	stderrors "errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	coserrors "github.com/ManimeghanathA/chief-of-staff-ai/internal/errors"
)

const defaultUserID = "default"

type chatRequest struct {
	UserID  string `json:"user_id"`
	Message string `json:"message" binding:"required"`
}

type chatResponse struct {
	RequestID string `json:"request_id"`
	Intent    string `json:"intent"`
	Response  string `json:"response"`
}

func (s *Server) handleChat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "message is required"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	rc := s.assistant.Run(c.Request.Context(), req.UserID, req.Message)
	s.metrics.intentsTotal.WithLabelValues(string(rc.Intent)).Inc()

	c.JSON(http.StatusOK, chatResponse{
		RequestID: rc.ID,
		Intent:    string(rc.Intent),
		Response:  rc.Response,
	})
}

type eventResponse struct {
	ID    string `json:"id,omitempty"`
	Title string `json:"title"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

func (s *Server) handleCalendarEvents(c *gin.Context) {
	userID := queryUserID(c)
	maxResults := 10
	if raw := c.Query("max_results"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 && n <= 100 {
			maxResults = n
		}
	}

	events, err := s.calendar.ListUpcoming(c.Request.Context(), userID, maxResults)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]eventResponse, 0, len(events))
	for _, event := range events {
		resp := eventResponse{ID: event.ExternalID, Title: event.Title}
		if !event.Start.IsZero() {
			resp.Start = event.Start.Format(time.RFC3339)
		}
		if !event.End.IsZero() {
			resp.End = event.End.Format(time.RFC3339)
		}
		out = append(out, resp)
	}
	c.JSON(http.StatusOK, gin.H{"events": out})
}

type createEventRequest struct {
	UserID string    `json:"user_id"`
	Title  string    `json:"title" binding:"required"`
	Start  time.Time `json:"start" binding:"required"`
	End    time.Time `json:"end" binding:"required"`
}

func (s *Server) handleCalendarCreate(c *gin.Context) {
	var req createEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title, start, and end are required"})
		return
	}
	if req.UserID == "" {
		req.UserID = defaultUserID
	}

	created, err := s.writer.CreateEvent(c.Request.Context(), req.UserID, req.Title, req.Start, req.End)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"id":    created.ID,
		"title": created.Title,
		"link":  created.Link,
	})
}

type emailResponse struct {
	From    string `json:"from"`
	Subject string `json:"subject"`
}

func (s *Server) handleGmailLatest(c *gin.Context) {
	userID := queryUserID(c)
	daysAgo := 0
	if raw := c.Query("days_ago"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n >= 0 {
			daysAgo = n
		}
	}

	emails, err := s.mail.ListForDate(c.Request.Context(), userID, daysAgo, 10)
	if err != nil {
		s.writeError(c, err)
		return
	}

	out := make([]emailResponse, 0, len(emails))
	for _, email := range emails {
		out = append(out, emailResponse{From: email.From, Subject: email.Subject})
	}
	c.JSON(http.StatusOK, gin.H{"emails": out})
}

// writeError maps taxonomy errors to HTTP statuses; everything keeps a
// user-presentable message in the body.
func (s *Server) writeError(c *gin.Context, err error) {
	var validationErr *coserrors.ValidationError
	status := http.StatusBadGateway
	switch {
	case stderrors.As(err, &validationErr):
		status = http.StatusBadRequest
	case coserrors.IsRateLimited(err):
		status = http.StatusTooManyRequests
	case coserrors.KindOf(err) == coserrors.KindAuthExpired:
		status = http.StatusUnauthorized
	case coserrors.IsTimeout(err):
		status = http.StatusGatewayTimeout
	}

	s.logger.Warn("%s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(status, gin.H{"error": coserrors.UserMessage(err)})
}

func queryUserID(c *gin.Context) string {
	if userID := c.Query("user_id"); userID != "" {
		return userID
	}
	return defaultUserID
}
