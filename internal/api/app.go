package api

import (
	"github.com/yourname/nutritracker/internal"
	"github.com/yourname/nutritracker/internal/realtime"
	"github.com/yourname/nutritracker/internal/service"
)

type App interface {
	Logger() internal.Logger
	Controller() *service.Controller
	Hub() *realtime.Hub
}

type app struct {
	logger     internal.Logger
	controller *service.Controller
	hub        *realtime.Hub
}

func NewApp(logger internal.Logger, controller *service.Controller, hub *realtime.Hub) App {
	return &app{logger: logger, controller: controller, hub: hub}
}

func (a *app) Logger() internal.Logger         { return a.logger }
func (a *app) Controller() *service.Controller { return a.controller }
func (a *app) Hub() *realtime.Hub              { return a.hub }
