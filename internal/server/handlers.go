package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ppiankov/wildaware/internal/guidance"
	"github.com/ppiankov/wildaware/internal/llm"
	"github.com/ppiankov/wildaware/internal/model"
	"github.com/ppiankov/wildaware/internal/pipeline"
	"github.com/ppiankov/wildaware/internal/store"
)

type classifyRequest struct {
	Message *string `json:"message"`
}

type chatRequest struct {
	Message *string       `json:"message"`
	History []llm.Message `json:"history"`
	City    string        `json:"city"`
}

type sightingRequest struct {
	Species     string `json:"species"`
	Location    string `json:"location"`
	Description string `json:"description"`
	ImageRef    string `json:"image_ref"`
}

type activityRequest struct {
	Type     model.ActivityType `json:"activity_type"`
	Species  string             `json:"species"`
	NGOName  string             `json:"ngo_name"`
	NGOPhone string             `json:"ngo_phone"`
	Notes    string             `json:"notes"`
	Metadata map[string]string  `json:"metadata"`
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) classify(c *gin.Context) {
	var req classifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == nil {
		abortError(c, http.StatusBadRequest, "message is required")
		return
	}

	classifier, err := s.pipeline.Classifier(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	result := classifier.Classify(*req.Message)
	s.metrics.ObserveClassification(result)
	c.JSON(http.StatusOK, result)
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Message == nil {
		abortError(c, http.StatusBadRequest, "message is required")
		return
	}

	result, err := s.pipeline.Handle(c.Request.Context(), pipeline.ChatRequest{
		Message: *req.Message,
		History: req.History,
		City:    req.City,
		UserID:  c.GetHeader(UserHeader),
	})
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.metrics.ObserveClassification(result.Classification)
	c.JSON(http.StatusOK, result)
}

func (s *Server) listSpecies(c *gin.Context) {
	cat, err := s.pipeline.Catalog(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat.Species)
}

func (s *Server) speciesGuidelines(c *gin.Context) {
	cat, err := s.pipeline.Catalog(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}
	g, sp, ok := guidance.GuidelineFor(cat, c.Param("name"))
	if !ok {
		if sp.CommonName == "" {
			abortError(c, http.StatusNotFound, "unknown species")
		} else {
			abortError(c, http.StatusNotFound, "no guideline for "+sp.CommonName)
		}
		return
	}
	c.JSON(http.StatusOK, gin.H{"species": sp, "guideline": g})
}

func (s *Server) rescue(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	cat, err := s.pipeline.Catalog(c.Request.Context())
	if err != nil {
		s.internalError(c, err)
		return
	}

	var cls *model.ClassificationResult
	if species := c.Query("species"); species != "" {
		cls = &model.ClassificationResult{SpeciesGuess: species}
	}
	orgs := guidance.RescueContacts(cat, cls, c.Query("city"), limit)
	if orgs == nil {
		orgs = []model.RescueOrg{}
	}
	c.JSON(http.StatusOK, orgs)
}

func (s *Server) addSighting(c *gin.Context) {
	var req sightingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	sg, err := s.store.AddSighting(c.Request.Context(), model.Sighting{
		UserID:      c.GetHeader(UserHeader),
		Species:     req.Species,
		Location:    req.Location,
		Description: req.Description,
		ImageRef:    req.ImageRef,
	})
	if errors.Is(err, store.ErrInvalidSighting) {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.internalError(c, err)
		return
	}
	s.metrics.sightings.Inc()

	if sg.UserID != "" {
		_, err := s.store.LogActivity(c.Request.Context(), model.Activity{
			UserID:  sg.UserID,
			Type:    model.ActivityReportSighting,
			Species: sg.Species,
			Notes:   "Reported sighting at " + sg.Location,
		})
		if err != nil {
			s.logger.Warn("Failed to log sighting activity", zap.Error(err))
		}
	}
	c.JSON(http.StatusCreated, sg)
}

func (s *Server) listSightings(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	sightings, err := s.store.ListSightings(c.Request.Context(), limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if sightings == nil {
		sightings = []model.Sighting{}
	}
	c.JSON(http.StatusOK, sightings)
}

func (s *Server) logActivity(c *gin.Context) {
	var req activityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortError(c, http.StatusBadRequest, "invalid JSON body")
		return
	}
	a, err := s.store.LogActivity(c.Request.Context(), model.Activity{
		UserID:   c.GetHeader(UserHeader),
		Type:     req.Type,
		Species:  req.Species,
		NGOName:  req.NGOName,
		NGOPhone: req.NGOPhone,
		Notes:    req.Notes,
		Metadata: req.Metadata,
	})
	switch {
	case errors.Is(err, store.ErrNoUser):
		abortError(c, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrInvalidActivity):
		abortError(c, http.StatusBadRequest, err.Error())
	case err != nil:
		s.internalError(c, err)
	default:
		c.JSON(http.StatusCreated, a)
	}
}

func (s *Server) listActivities(c *gin.Context) {
	limit, ok := queryLimit(c)
	if !ok {
		return
	}
	acts, err := s.store.ListActivities(c.Request.Context(), c.GetHeader(UserHeader), limit)
	if err != nil {
		s.internalError(c, err)
		return
	}
	if acts == nil {
		acts = []model.Activity{}
	}
	c.JSON(http.StatusOK, acts)
}

// queryLimit parses ?limit=, aborting with 400 on a malformed value
func queryLimit(c *gin.Context) (int, bool) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		abortError(c, http.StatusBadRequest, "limit must be a non-negative integer")
		return 0, false
	}
	return n, true
}

func (s *Server) internalError(c *gin.Context, err error) {
	s.logger.Error("Request failed", zap.String("route", c.FullPath()), zap.Error(err))
	abortError(c, http.StatusInternalServerError, "internal error")
}
