package http

import (
	"github.com/02loveslollipop/borsuk-ulam-viewer/services/api/viewer"
)

// registerV1Routes sets up the v1 API.
// Groups: /api/v1/runs, /api/v1/navigation, plus view, pairs and layer.
func (s *Server) registerV1Routes() {
	v1 := s.engine.Group("/api/v1")
	v1.Use(apiVersionMiddleware()) // Add X-API-Version: v1 header
	if s.cfg.BearerToken != "" {
		v1.Use(bearerAuthMiddleware(s.cfg.BearerToken))
	}

	v1.POST("/runs", s.handleV1Refresh)
	v1.GET("/view", s.handleV1View)
	v1.GET("/pairs", s.handleV1Pairs)
	v1.PUT("/layer", s.handleV1SetLayer)

	nav := v1.Group("/navigation")
	{
		nav.PUT("/mode", s.handleV1SetMode)
		nav.POST("/toggle", s.handleV1Toggle)
		nav.POST("/next", s.handleV1Step(viewer.Next))
		nav.POST("/previous", s.handleV1Step(viewer.Previous))
		// Press and release of the paging controls.
		nav.POST("/hold/:direction", s.handleV1HoldStart)
		nav.DELETE("/hold/:direction", s.handleV1HoldEnd)
	}
}
