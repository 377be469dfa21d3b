package admin

import "github.com/talowa-app/internal/provider"

// Handler serves back-office APIs.
type Handler struct {
	*provider.Container
}

// New creates the admin handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
