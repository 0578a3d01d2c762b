package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/berfenger/moebot2mqtt/internal/core/domain"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type commandResponse struct {
	Command string `json:"command"`
	Error   string `json:"error,omitempty"`
}

func (s *Server) RegisterRoutes() http.Handler {
	e := echo.New()
	if s.httpLog {
		e.Use(middleware.Logger())
	}
	e.Use(middleware.Recover())

	e.GET("/healthcheck", s.HealthCheckHandler)
	e.GET("/api/state", s.StateHandler)
	e.POST("/api/command/:command", s.CommandHandler)
	if s.gatherer != nil {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	return e
}

func (s *Server) HealthCheckHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.ActorHealthRequest{}, 10*time.Second).Result()
	if err != nil {
		return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
	}
	if response, ok := res.(domain.ActorHealthResponse); ok && response.Healthy {
		return c.String(http.StatusOK, "health_check: OK")
	}
	return c.String(http.StatusServiceUnavailable, "health_check: FAIL")
}

func (s *Server) StateHandler(c echo.Context) error {
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.GetStateRequest{}, 5*time.Second).Result()
	if err != nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, err.Error())
	}
	response, ok := res.(domain.GetStateResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "unexpected response")
	}
	c.Response().Header().Set("X-State-Version", strconv.FormatUint(response.Version, 10))
	return c.JSON(http.StatusOK, response.Values)
}

// CommandHandler runs one of the argument-less device commands and waits for
// the device to acknowledge it.
func (s *Server) CommandHandler(c echo.Context) error {
	name := c.Param("command")
	cmd, ok := commandByName(name)
	if !ok {
		return c.JSON(http.StatusNotFound, commandResponse{Command: name, Error: "unknown command"})
	}
	res, err := s.rootContext.RequestFuture(s.masterActor, domain.InvokeCommandRequest{Command: cmd}, 30*time.Second).Result()
	if err != nil {
		return c.JSON(http.StatusGatewayTimeout, commandResponse{Command: name, Error: err.Error()})
	}
	response, ok := res.(domain.DeviceCommandResponse)
	if !ok {
		return echo.NewHTTPError(http.StatusInternalServerError, "unexpected response")
	}
	if err := response.GetResponseError(); err != nil {
		status := http.StatusBadGateway
		if errors.Is(err, domain.ErrValidation) {
			status = http.StatusBadRequest
		}
		return c.JSON(status, commandResponse{Command: name, Error: err.Error()})
	}
	return c.JSON(http.StatusOK, commandResponse{Command: name})
}

func commandByName(name string) (domain.DeviceCommand, bool) {
	switch domain.CommandKind(name) {
	case domain.CommandStart:
		return domain.StartCommand(), true
	case domain.CommandPause:
		return domain.PauseCommand(), true
	case domain.CommandDock:
		return domain.DockCommand(), true
	case domain.CommandCancel:
		return domain.CancelCommand(), true
	case domain.CommandPoll:
		return domain.PollCommand(), true
	}
	return domain.DeviceCommand{}, false
}
