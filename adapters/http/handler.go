package cardhttp

import (
	"net/http"

	"github.com/goliatone/go-contract-card/adapters/cardapi"
	"github.com/goliatone/go-contract-card/contract"
)

// Config configures the HTTP adapter.
type Config = cardapi.Config

// Handler exposes contract card endpoints over net/http.
type Handler struct {
	controller *cardapi.Controller
}

// NewHandler creates a new HTTP handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{controller: cardapi.NewController(cfg)}
}

// RegisterRoutes registers handlers on a compatible router.
func (h *Handler) RegisterRoutes(router any) {
	switch r := router.(type) {
	case interface{ Handle(string, http.Handler) }:
		r.Handle(h.basePath()+"/", h)
	case interface {
		HandleFunc(string, func(http.ResponseWriter, *http.Request))
	}:
		r.HandleFunc(h.basePath()+"/", h.ServeHTTP)
	}
}

// ServeHTTP routes contract endpoints.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if w == nil {
		return
	}
	if h == nil || h.controller == nil {
		cardapi.WriteError(httpResponse{w: w}, contract.NewError(contract.KindInternal, "handler is nil", nil))
		return
	}
	h.controller.Serve(httpRequest{r: r}, httpResponse{w: w})
}

func (h *Handler) basePath() string {
	if h == nil || h.controller == nil {
		return cardapi.DefaultBasePath
	}
	return h.controller.BasePath()
}
