package lsp

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/segmentio/encoding/json"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/tangzhangming/phplite/internal/compiler"
)

// 服务器信息
const (
	ServerName    = "phplite"
	ServerVersion = "0.1.0"
)

// Server LSP 服务器
//
// 每次编辑后整篇重新编译，结果经缓存复用；诊断通过 publishDiagnostics 推送。
type Server struct {
	compiler  *compiler.Compiler
	cache     *compiler.Cache
	documents *DocumentManager
	logger    *zap.Logger

	conn   jsonrpc2.Conn
	client protocol.Client

	// 服务器状态
	initialized atomic.Bool
	shutdown    atomic.Bool
	exited      atomic.Bool
	requests    atomic.Int64

	// exit 通知到达时关闭
	exit chan struct{}
}

// NewServer 创建 LSP 服务器；logger 为 nil 时不记录日志
func NewServer(c *compiler.Compiler, logger *zap.Logger) *Server {
	if c == nil {
		c = compiler.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	cache := compiler.NewCache(c, compiler.DefaultCacheEntries)
	return &Server{
		compiler:  c,
		cache:     cache,
		documents: NewDocumentManager(cache),
		logger:    logger,
		exit:      make(chan struct{}),
	}
}

// Documents 文档管理器
func (s *Server) Documents() *DocumentManager { return s.documents }

// Requests 已处理的消息数
func (s *Server) Requests() int64 { return s.requests.Load() }

// Serve 在 rwc 上运行服务器，直到收到 exit、连接断开或 ctx 取消
func (s *Server) Serve(ctx context.Context, rwc io.ReadWriteCloser) error {
	conn := jsonrpc2.NewConn(jsonrpc2.NewStream(rwc))
	s.conn = conn
	s.client = protocol.ClientDispatcher(conn, s.logger.Named("client"))

	conn.Go(ctx, s.handle)
	s.logger.Info("server started")

	// exit 后不等待读循环结束，标准输入上的读取可能一直阻塞
	select {
	case <-ctx.Done():
		_ = conn.Close()
		return ctx.Err()
	case <-s.exit:
	case <-conn.Done():
	}

	if s.exited.Load() {
		s.logger.Info("server exited", zap.Int64("requests", s.requests.Load()))
		return nil
	}
	if err := conn.Err(); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	s.logger.Info("client disconnected")
	return nil
}

// ============================================================================
// 消息分发
// ============================================================================

func (s *Server) handle(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	s.requests.Inc()
	method := req.Method()
	s.logger.Debug("request", zap.String("method", method))

	switch {
	case method == protocol.MethodExit:
		return s.handleExit(ctx, reply)
	case method == protocol.MethodInitialize:
		return s.handleInitialize(ctx, reply)
	case !s.initialized.Load():
		return reply(ctx, nil, jsonrpc2.NewError(jsonrpc2.ServerNotInitialized, "server not initialized"))
	case s.shutdown.Load():
		return reply(ctx, nil, fmt.Errorf("%s after shutdown: %w", method, jsonrpc2.ErrInvalidRequest))
	}

	switch method {
	case protocol.MethodInitialized:
		return reply(ctx, nil, nil)
	case protocol.MethodShutdown:
		s.shutdown.Store(true)
		s.logger.Info("shutdown requested")
		return reply(ctx, nil, nil)
	case protocol.MethodTextDocumentDidOpen:
		return s.handleDidOpen(ctx, reply, req)
	case protocol.MethodTextDocumentDidChange:
		return s.handleDidChange(ctx, reply, req)
	case protocol.MethodTextDocumentDidClose:
		return s.handleDidClose(ctx, reply, req)
	case protocol.MethodTextDocumentDidSave:
		return s.handleDidSave(ctx, reply, req)
	case protocol.MethodTextDocumentDocumentSymbol:
		return s.handleDocumentSymbol(ctx, reply, req)
	case protocol.MethodTextDocumentHover:
		return s.handleHover(ctx, reply, req)
	}
	return jsonrpc2.MethodNotFoundHandler(ctx, reply, req)
}

// decode 解析请求参数
func (s *Server) decode(req jsonrpc2.Request, v interface{}) error {
	if err := json.Unmarshal(req.Params(), v); err != nil {
		s.logger.Warn("invalid params", zap.String("method", req.Method()), zap.Error(err))
		return fmt.Errorf("%s: %w", req.Method(), jsonrpc2.ErrInvalidParams)
	}
	return nil
}

// ============================================================================
// 生命周期
// ============================================================================

func (s *Server) handleInitialize(ctx context.Context, reply jsonrpc2.Replier) error {
	if s.initialized.Load() {
		return reply(ctx, nil, fmt.Errorf("initialize called twice: %w", jsonrpc2.ErrInvalidRequest))
	}
	s.initialized.Store(true)
	s.logger.Info("initialize")

	return reply(ctx, &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindIncremental,
				Save:      &protocol.SaveOptions{IncludeText: true},
			},
			HoverProvider:          true,
			DocumentSymbolProvider: true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    ServerName,
			Version: ServerVersion,
		},
	}, nil)
}

func (s *Server) handleExit(ctx context.Context, reply jsonrpc2.Replier) error {
	if s.exited.Swap(true) {
		return reply(ctx, nil, nil)
	}
	s.logger.Info("exit", zap.Bool("clean", s.shutdown.Load()))
	close(s.exit)
	_ = reply(ctx, nil, nil)
	return s.conn.Close()
}

// ============================================================================
// 文档同步
// ============================================================================

func (s *Server) handleDidOpen(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidOpenTextDocumentParams
	if err := s.decode(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	doc := s.documents.Open(params.TextDocument.URI, params.TextDocument.Text, params.TextDocument.Version)
	s.logger.Debug("document opened", zap.String("uri", string(doc.URI)))
	s.publishDiagnostics(ctx, doc)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidChange(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidChangeTextDocumentParams
	if err := s.decode(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	doc := s.documents.ApplyChanges(params.TextDocument.URI, params.ContentChanges, params.TextDocument.Version)
	if doc == nil {
		s.logger.Warn("change for unknown document", zap.String("uri", string(params.TextDocument.URI)))
		return reply(ctx, nil, nil)
	}
	s.publishDiagnostics(ctx, doc)
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidClose(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidCloseTextDocumentParams
	if err := s.decode(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	s.documents.Close(params.TextDocument.URI)
	s.logger.Debug("document closed", zap.String("uri", string(params.TextDocument.URI)))

	// 清除诊断
	if err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	}); err != nil {
		s.logger.Warn("publish diagnostics", zap.Error(err))
	}
	return reply(ctx, nil, nil)
}

func (s *Server) handleDidSave(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DidSaveTextDocumentParams
	if err := s.decode(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	var doc *Document
	if params.Text != "" {
		doc = s.documents.UpdateContent(params.TextDocument.URI, params.Text)
	} else {
		doc = s.documents.Get(params.TextDocument.URI)
	}
	if doc != nil {
		s.publishDiagnostics(ctx, doc)
	}
	return reply(ctx, nil, nil)
}

// publishDiagnostics 推送文档的诊断
func (s *Server) publishDiagnostics(ctx context.Context, doc *Document) {
	diagnostics := getDiagnostics(doc)
	s.logger.Debug("publish diagnostics",
		zap.String("uri", string(doc.URI)),
		zap.Int("count", len(diagnostics)),
	)

	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         doc.URI,
		Version:     uint32(doc.Version),
		Diagnostics: diagnostics,
	})
	if err != nil {
		s.logger.Warn("publish diagnostics", zap.Error(err))
	}
}

// ============================================================================
// 语言功能
// ============================================================================

func (s *Server) handleDocumentSymbol(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.DocumentSymbolParams
	if err := s.decode(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return reply(ctx, []protocol.DocumentSymbol{}, nil)
	}
	return reply(ctx, getDocumentSymbols(doc), nil)
}

func (s *Server) handleHover(ctx context.Context, reply jsonrpc2.Replier, req jsonrpc2.Request) error {
	var params protocol.HoverParams
	if err := s.decode(req, &params); err != nil {
		return reply(ctx, nil, err)
	}

	doc := s.documents.Get(params.TextDocument.URI)
	if doc == nil {
		return reply(ctx, nil, nil)
	}
	hover := getHoverInfo(doc, int(params.Position.Line), int(params.Position.Character))
	if hover == nil {
		return reply(ctx, nil, nil)
	}
	return reply(ctx, hover, nil)
}
