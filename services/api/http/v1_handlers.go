package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/navigation"
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/viewer"
)

// handleV1Refresh runs a fetch-and-process cycle and returns the new view.
// POST /api/v1/runs
func (s *Server) handleV1Refresh(c *gin.Context) {
	if err := s.session.Refresh(c.Request.Context()); err != nil {
		// The engine detail is logged by the session; clients get a generic message.
		c.JSON(http.StatusBadGateway, gin.H{
			"error": "processing error, fetch again to retry",
			"data":  s.session.View(),
		})
		return
	}
	s.respondView(c)
}

// handleV1View returns the current frame
// GET /api/v1/view
func (s *Server) handleV1View(c *gin.Context) {
	s.respondView(c)
}

// handleV1Pairs returns every deduplicated pair
// GET /api/v1/pairs
func (s *Server) handleV1Pairs(c *gin.Context) {
	pairs := s.session.Pairs()
	c.JSON(http.StatusOK, gin.H{
		"data": pairs,
		"meta": gin.H{
			"count": len(pairs),
		},
	})
}

type layerRequest struct {
	Layer string `json:"layer" binding:"required"`
}

// handleV1SetLayer selects the temperature or pressure texture
// PUT /api/v1/layer
func (s *Server) handleV1SetLayer(c *gin.Context) {
	var req layerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "layer is required"})
		return
	}
	layer, err := viewer.ParseLayer(req.Layer)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.SetLayer(layer)
	s.respondView(c)
}

type modeRequest struct {
	Mode string `json:"mode" binding:"required"`
}

// handleV1SetMode switches between all pairs and one pair
// PUT /api/v1/navigation/mode
func (s *Server) handleV1SetMode(c *gin.Context) {
	var req modeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "mode is required"})
		return
	}
	mode, err := navigation.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.SetMode(mode)
	s.respondView(c)
}

// POST /api/v1/navigation/toggle
func (s *Server) handleV1Toggle(c *gin.Context) {
	s.session.Toggle()
	s.respondView(c)
}

// handleV1Step moves one pair. Stepping outside single mode or on an empty
// set is a no-op, not an error.
func (s *Server) handleV1Step(dir viewer.Direction) gin.HandlerFunc {
	return func(c *gin.Context) {
		s.session.Step(dir)
		s.respondView(c)
	}
}

// handleV1HoldStart presses a paging control
// POST /api/v1/navigation/hold/:direction
func (s *Server) handleV1HoldStart(c *gin.Context) {
	dir, err := viewer.ParseDirection(c.Param("direction"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := s.session.StartHold(dir); err != nil {
		if errors.Is(err, viewer.ErrNotStepping) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	s.respondView(c)
}

// handleV1HoldEnd releases a paging control. Releasing twice is fine.
// DELETE /api/v1/navigation/hold/:direction
func (s *Server) handleV1HoldEnd(c *gin.Context) {
	dir, err := viewer.ParseDirection(c.Param("direction"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	s.session.EndHold(dir)
	s.respondView(c)
}

func (s *Server) respondView(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"data": s.session.View(),
		"meta": gin.H{
			"generated_at": time.Now().UTC().Format(time.RFC3339),
		},
	})
}
