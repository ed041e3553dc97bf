// Package api exposes the fake-quantization operator pair over HTTP so that
// non-Go hosts (training loops, notebooks) can call a matched forward and
// backward with identical parameters.
package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v5"

	"github.com/samcharles93/fakequant/internal/logger"
	"github.com/samcharles93/fakequant/pkg/fakequant"
)

type Server struct {
	log logger.Logger
}

func NewServer(log logger.Logger) *Server {
	if log == nil {
		log = logger.Default()
	}
	return &Server{log: log}
}

// Register mounts the operator endpoints on e.
func (s *Server) Register(e *echo.Echo) {
	e.POST("/v1/fakequant/forward", s.handleForward)
	e.POST("/v1/fakequant/backward", s.handleBackward)
	e.GET("/v1/health", s.handleHealth)
}

func (s *Server) handleForward(c *echo.Context) error {
	req, err := decodeJSON[ForwardRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.X == nil {
		return writeBadRequest(c, "x is required")
	}

	y, err := fakequant.Forward(req.X, req.QuantParams.toParams())
	if err != nil {
		return writeOpError(c, err)
	}

	id := "fq_" + uuid.NewString()
	s.log.Debug("forward", "id", id, "elements", req.X.Len())
	return c.JSON(http.StatusOK, ForwardResponse{ID: id, Y: y})
}

func (s *Server) handleBackward(c *echo.Context) error {
	req, err := decodeJSON[BackwardRequest](c.Request().Body)
	if err != nil {
		return writeBadRequest(c, err.Error())
	}
	if req.X == nil {
		return writeBadRequest(c, "x is required")
	}
	if req.DY == nil {
		return writeBadRequest(c, "dy is required")
	}

	dx, err := fakequant.Backward(req.DY, req.X, req.QuantParams.toParams())
	if err != nil {
		return writeOpError(c, err)
	}

	id := "fq_" + uuid.NewString()
	s.log.Debug("backward", "id", id, "elements", req.X.Len())
	return c.JSON(http.StatusOK, BackwardResponse{ID: id, DX: dx})
}

func (s *Server) handleHealth(c *echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
