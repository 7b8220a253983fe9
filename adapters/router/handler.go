package cardrouter

import (
	"github.com/goliatone/go-contract-card/adapters/cardapi"
	"github.com/goliatone/go-contract-card/contract"
	"github.com/goliatone/go-router"
)

// Config configures the go-router adapter.
type Config = cardapi.Config

// Handler exposes contract routes for go-router.
type Handler struct {
	controller *cardapi.Controller
}

// NewHandler creates a go-router handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: cardapi.NewController(cfg)}
}

// RegisterRoutes registers routes on a compatible go-router router.
func (h *Handler) RegisterRoutes(router any) {
	r, ok := router.(routeRegistrar)
	if !ok {
		return
	}
	base := h.basePath()

	r.Post(base+"/summary", h.Handle)
	r.Get(base+"/:id", h.Handle)
	r.Get(base+"/:id/card", h.Handle)
	r.Get(base+"/:id/summary", h.Handle)
	r.Get(base+"/:id/snapshot", h.Handle)
}

// Handle runs the shared contract controller for c.
func (h *Handler) Handle(c router.Context) error {
	if c == nil {
		return nil
	}
	if h == nil || h.controller == nil {
		cardapi.WriteError(routerResponse{ctx: c}, contract.NewError(contract.KindInternal, "handler is nil", nil))
		return nil
	}
	h.controller.Serve(routerRequest{ctx: c}, routerResponse{ctx: c})
	return nil
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return cardapi.DefaultBasePath
	}
	return h.controller.BasePath()
}

type routeRegistrar interface {
	Get(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
	Post(path string, handler router.HandlerFunc, mw ...router.MiddlewareFunc) router.RouteInfo
}
