package fragment

import (
	"log/slog"

	"github.com/dot5enko/offload-filter/memory"
)

// Context carries what an operator needs from the fragment running it.
type Context struct {
	Config    Config
	Allocator memory.Allocator
	Logger    *slog.Logger
}

func NewContext(cfg Config) *Context {
	return &Context{
		Config:    cfg,
		Allocator: memory.NewRootAllocator(cfg.MemoryLimit),
		Logger:    slog.Default(),
	}
}
