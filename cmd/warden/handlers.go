package main

import (
	"fmt"
	"net/http"

	"github.com/carlmjohnson/versioninfo"
	"github.com/labstack/echo/v4"

	"github.com/gamemod/warden/moderation"
	"github.com/gamemod/warden/moderation/config"
)

type HealthStatus struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

func (s *Server) HandleHealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, HealthStatus{Status: "ok", Version: versioninfo.Short()})
}

type ModerateRequest struct {
	PlayerID   string `json:"playerID"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	// Surface selects the text surface for /moderate/text (book, sign,
	// anvil, item-name).
	Surface string `json:"surface,omitempty"`
}

type ModerateResponse struct {
	Blocked  bool   `json:"blocked"`
	Category string `json:"category,omitempty"`
	Reason   string `json:"reason,omitempty"`
}

func verdictResponse(v moderation.Verdict) ModerateResponse {
	return ModerateResponse{
		Blocked:  v.Blocked,
		Category: string(v.Category),
		Reason:   v.Reason,
	}
}

func (s *Server) HandleModerateChat(c echo.Context) error {
	var req ModerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
	}
	v := s.engine.ProcessChat(c.Request().Context(), req.PlayerID, req.PlayerName, req.Text)
	return c.JSON(http.StatusOK, verdictResponse(v))
}

func (s *Server) HandleModerateCommand(c echo.Context) error {
	var req ModerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
	}
	v := s.engine.ProcessCommand(c.Request().Context(), req.PlayerID, req.PlayerName, req.Text)
	return c.JSON(http.StatusOK, verdictResponse(v))
}

func (s *Server) HandleModerateText(c echo.Context) error {
	var req ModerateRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
	}
	v := s.engine.CheckText(c.Request().Context(), req.PlayerID, req.PlayerName,
		moderation.Surface(req.Surface), req.Text)
	return c.JSON(http.StatusOK, verdictResponse(v))
}

type MentionRequest struct {
	PlayerID string `json:"playerID"`
	Target   string `json:"target"`
}

func (s *Server) HandleMention(c echo.Context) error {
	var req MentionRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, fmt.Sprintf("invalid request: %v", err))
	}
	allowed := s.engine.MentionAllowed(c.Request().Context(), req.PlayerID, req.Target)
	return c.JSON(http.StatusOK, map[string]bool{"allowed": allowed})
}

func (s *Server) HandleListViolations(c echo.Context) error {
	violations, err := s.ledger.Violations(c.Request().Context(), c.Param("player"))
	if err != nil {
		s.logger.Error("failed listing violations", "player", c.Param("player"), "err", err)
		return c.JSON(http.StatusInternalServerError, "failed listing violations")
	}
	return c.JSON(http.StatusOK, violations)
}

func (s *Server) HandleRemoveViolation(c echo.Context) error {
	if err := s.engine.RemoveViolation(c.Request().Context(), c.Param("id"), c.Param("player")); err != nil {
		s.logger.Error("failed removing violation", "id", c.Param("id"), "err", err)
		return c.JSON(http.StatusInternalServerError, "failed removing violation")
	}
	return c.NoContent(http.StatusNoContent)
}

// HandleExemptions reports the permission node bypassing each detector
// category, so game-server integrations can register the nodes with their
// permission plugin.
func (s *Server) HandleExemptions(c echo.Context) error {
	nodes := s.engine.ExemptPermissions()
	out := make(map[string]string, len(nodes))
	for cat, node := range nodes {
		out[cat.String()] = node
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) HandleDisconnect(c echo.Context) error {
	s.engine.Disconnect(c.Param("player"))
	return c.NoContent(http.StatusNoContent)
}

// HandleReload re-reads the policy snapshot and swaps the engine's
// detectors and rules in place.
func (s *Server) HandleReload(c echo.Context) error {
	if s.policyPath == "" {
		return c.JSON(http.StatusBadRequest, "no policy file configured")
	}
	pol, err := config.Load(s.policyPath)
	if err != nil {
		return c.JSON(http.StatusBadRequest, fmt.Sprintf("reloading policy: %v", err))
	}
	if err := s.engine.Reload(pol); err != nil {
		s.logger.Error("policy reload failed", "err", err)
		return c.JSON(http.StatusInternalServerError, "policy reload failed")
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "reloaded"})
}
