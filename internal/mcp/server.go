package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	mcplib "github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/keycalc/internal/dispatcher"
	"github.com/dshills/keycalc/internal/engine"
	"github.com/dshills/keycalc/internal/engine/memory"
	"github.com/dshills/keycalc/internal/input/key"
	"github.com/dshills/keycalc/internal/input/keymap"
)

// Defaults for the advertised server identity.
const (
	DefaultName    = "keycalc"
	DefaultVersion = "0.1.0"

	stateURI = "calc://state"
)

// ErrUnboundKey is reported by press for keys without a binding.
var ErrUnboundKey = errors.New("key is not bound")

// Option configures a Server.
type Option func(*Server)

// WithName sets the advertised server name.
func WithName(name string) Option {
	return func(s *Server) { s.name = name }
}

// WithVersion sets the advertised server version.
func WithVersion(version string) Option {
	return func(s *Server) { s.version = version }
}

// WithKeymap sets the bindings used by the press tool.
func WithKeymap(m *keymap.Map) Option {
	return func(s *Server) { s.keys = m }
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// Server serves one calculator session over MCP.
type Server struct {
	calc       *engine.Calculator
	dispatcher *dispatcher.Dispatcher
	keys       *keymap.Map
	logger     *slog.Logger

	name    string
	version string
	srv     *server.MCPServer
}

// New creates a server for calc. Tool calls go through d, which must have
// the calculator handlers registered.
func New(d *dispatcher.Dispatcher, calc *engine.Calculator, opts ...Option) (*Server, error) {
	s := &Server{
		calc:       calc,
		dispatcher: d,
		logger:     slog.New(slog.DiscardHandler),
		name:       DefaultName,
		version:    DefaultVersion,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.keys == nil {
		m, err := keymap.New(keymap.Default())
		if err != nil {
			return nil, fmt.Errorf("mcp: default keymap: %w", err)
		}
		s.keys = m
	}

	s.srv = server.NewMCPServer(
		s.name,
		s.version,
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(false, false),
		server.WithRecovery(),
	)
	s.registerTools()
	s.registerResources()
	return s, nil
}

// MCPServer returns the underlying protocol server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.srv
}

// ServeStdio serves on standard input and output until EOF.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP on stdio")
	return server.ServeStdio(s.srv)
}

// ServeHTTP serves the streamable HTTP transport on addr until ctx is done.
func (s *Server) ServeHTTP(ctx context.Context, addr string) error {
	httpServer := server.NewStreamableHTTPServer(s.srv)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("serving MCP over HTTP", "addr", addr)
		errCh <- httpServer.Start(addr)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		if err := httpServer.Shutdown(context.WithoutCancel(ctx)); err != nil {
			return fmt.Errorf("mcp: shutdown: %w", err)
		}
		return nil
	}
}

func (s *Server) registerTools() {
	s.srv.AddTool(mcplib.NewTool("press",
		mcplib.WithDescription("Type keys on the calculator keyboard. Words that name a key (enter, escape, backspace, ctrl+l) are one key; other words are typed character by character."),
		mcplib.WithString("keys",
			mcplib.Required(),
			mcplib.Description("Key sequence, e.g. \"12+7=\" or \"5 0 % enter\""),
		),
	), s.handlePress)

	s.srv.AddTool(mcplib.NewTool("append",
		mcplib.WithDescription("Append a digit, decimal point, operator, percent sign or parenthesis to the display"),
		mcplib.WithString("token",
			mcplib.Required(),
			mcplib.Description("One of 0-9 . + - * / × ÷ % ( )"),
		),
	), s.handleAppend)

	simple := []struct {
		name, description string
		kind              dispatcher.Kind
	}{
		{"calculate", "Evaluate the display and show the result", dispatcher.KindCalculate},
		{"clear", "Reset the display to 0 and clear the history", dispatcher.KindClear},
		{"backspace", "Delete the last character of the display", dispatcher.KindBackspace},
		{"toggle_sign", "Negate the display", dispatcher.KindToggleSign},
	}
	for _, t := range simple {
		action := dispatcher.Action{Kind: t.kind}
		s.srv.AddTool(mcplib.NewTool(t.name, mcplib.WithDescription(t.description)),
			func(ctx context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
				return s.dispatch(ctx, action)
			})
	}

	actions := make([]string, len(memory.Actions))
	for i, a := range memory.Actions {
		actions[i] = string(a)
	}
	s.srv.AddTool(mcplib.NewTool("memory",
		mcplib.WithDescription("Apply a memory action to the displayed number"),
		mcplib.WithString("action",
			mcplib.Required(),
			mcplib.Enum(actions...),
			mcplib.Description("recall, store-add, store-subtract or clear"),
		),
	), s.handleMemory)

	s.srv.AddTool(mcplib.NewTool("state",
		mcplib.WithDescription("Read the display, history and memory without changing anything"),
	), s.handleState)
}

func (s *Server) registerResources() {
	resource := mcplib.NewResource(stateURI,
		"Calculator state",
		mcplib.WithResourceDescription("Display, history and memory of the session"),
		mcplib.WithMIMEType("application/json"),
	)
	s.srv.AddResource(resource, func(ctx context.Context, _ mcplib.ReadResourceRequest) ([]mcplib.ResourceContents, error) {
		doc, err := StateJSON(s.calc.ID(), s.calc.State(), "")
		if err != nil {
			return nil, err
		}
		return []mcplib.ResourceContents{
			mcplib.TextResourceContents{
				URI:      stateURI,
				MIMEType: "application/json",
				Text:     doc,
			},
		}, nil
	})
}

func stringArg(req mcplib.CallToolRequest, name string) (string, bool) {
	v, ok := req.GetArguments()[name].(string)
	return v, ok
}

func (s *Server) handlePress(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	keys, ok := stringArg(req, "keys")
	if !ok || strings.TrimSpace(keys) == "" {
		return mcplib.NewToolResultError("keys is required"), nil
	}

	events := key.ParseSequence(keys)
	actions := make([]dispatcher.Action, 0, len(events))
	for _, ev := range events {
		b, ok := s.keys.Lookup(ev)
		if !ok {
			return mcplib.NewToolResultError(fmt.Sprintf("%v: %s", ErrUnboundKey, ev.Normalize())), nil
		}
		action, err := dispatcher.ParseAction(b.Action)
		if err != nil {
			return mcplib.NewToolResultError(err.Error()), nil
		}
		// Quitting is the host's decision, not the tool caller's.
		if action.Kind == dispatcher.KindQuit {
			continue
		}
		actions = append(actions, action)
	}

	status := dispatcher.StatusNoOp
	for _, action := range actions {
		res := s.dispatcher.Dispatch(ctx, action.WithSource(dispatcher.SourceMCP))
		if res.IsError() {
			return mcplib.NewToolResultError(res.Err.Error()), nil
		}
		if res.Status == dispatcher.StatusOK {
			status = dispatcher.StatusOK
		}
	}
	return s.result(status.String())
}

func (s *Server) handleAppend(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	token, ok := stringArg(req, "token")
	if !ok || token == "" {
		return mcplib.NewToolResultError("token is required"), nil
	}
	return s.dispatch(ctx, dispatcher.Action{Kind: dispatcher.KindAppend, Arg: token})
}

func (s *Server) handleMemory(ctx context.Context, req mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	name, _ := stringArg(req, "action")
	action, err := memory.ParseAction(name)
	if err != nil {
		return mcplib.NewToolResultError(err.Error()), nil
	}
	return s.dispatch(ctx, dispatcher.Action{Kind: dispatcher.KindMemory, Arg: string(action)})
}

func (s *Server) handleState(_ context.Context, _ mcplib.CallToolRequest) (*mcplib.CallToolResult, error) {
	return s.result("")
}

func (s *Server) dispatch(ctx context.Context, action dispatcher.Action) (*mcplib.CallToolResult, error) {
	res := s.dispatcher.Dispatch(ctx, action.WithSource(dispatcher.SourceMCP))
	s.logger.Debug("tool dispatched", "action", action.String(), "status", res.Status.String())
	if res.IsError() {
		return mcplib.NewToolResultError(res.Err.Error()), nil
	}
	return s.result(res.Status.String())
}

// result renders the session state with an optional status label.
func (s *Server) result(status string) (*mcplib.CallToolResult, error) {
	doc, err := StateJSON(s.calc.ID(), s.calc.State(), status)
	if err != nil {
		return nil, fmt.Errorf("mcp: encode state: %w", err)
	}
	return mcplib.NewToolResultText(doc), nil
}
