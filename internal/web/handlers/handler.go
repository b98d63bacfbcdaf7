package handlers

import (
	"github.com/tomas/iqdb/internal/config"
	"github.com/tomas/iqdb/internal/core"
)

// Handler wires the mutation manager into the HTTP surface.
type Handler struct {
	db  *core.Database
	cfg *config.Config
}

// New returns a Handler bound to db, using cfg for the query default limit.
func New(db *core.Database, cfg *config.Config) *Handler {
	return &Handler{db: db, cfg: cfg}
}
