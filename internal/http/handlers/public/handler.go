package public

import "github.com/talowa-app/internal/provider"

// Handler serves member-facing and unauthenticated APIs.
type Handler struct {
	*provider.Container
}

// New creates the public handler.
func New(c *provider.Container) *Handler {
	return &Handler{Container: c}
}
