package logging

import (
	"context"
	"log/slog"
	"os"
)

// Environment selects the log handler format. Dev logs human-readable
// text; everything else logs JSON.
type Environment string

const (
	EnvDev  Environment = "dev"
	EnvProd Environment = "prod"
)

// Module labels a log record with the subsystem that emitted it.
type Module string

// ServiceInfo identifies the running binary in every log record.
type ServiceInfo struct {
	Name     string
	Version  string
	Revision string
}

type contextHandler struct {
	slog.Handler
	service ServiceInfo
	module  Module
}

func (h *contextHandler) Handle(ctx context.Context, record slog.Record) error {
	record.AddAttrs(
		slog.String("service", h.service.Name),
		slog.String("version", h.service.Version),
	)
	if h.module != "" {
		record.AddAttrs(slog.String("module", string(h.module)))
	}
	if attrs := gcpTraceAttrs(ctx, h.service.Name); len(attrs) > 0 {
		record.AddAttrs(attrs...)
	}
	return h.Handler.Handle(ctx, record)
}

func (h *contextHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithAttrs(attrs), service: h.service, module: h.module}
}

func (h *contextHandler) WithGroup(name string) slog.Handler {
	return &contextHandler{Handler: h.Handler.WithGroup(name), service: h.service, module: h.module}
}

// Setup installs the process-wide default logger.
func Setup(env Environment, level slog.Level, service ServiceInfo, module Module) {
	opts := &slog.HandlerOptions{Level: level}

	var inner slog.Handler
	if env == EnvDev {
		inner = slog.NewTextHandler(os.Stdout, opts)
	} else {
		inner = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(&contextHandler{
		Handler: inner,
		service: service,
		module:  module,
	}))
}
