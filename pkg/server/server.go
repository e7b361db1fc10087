package server

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"

	"github.com/charmbracelet/log"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"github.com/yurifrl/lunchsync/pkg/config"
	"github.com/yurifrl/lunchsync/pkg/csv"
	"github.com/yurifrl/lunchsync/pkg/models"
	"github.com/yurifrl/lunchsync/pkg/normalizer"
	"github.com/yurifrl/lunchsync/pkg/parser"
)

const (
	statementField = "statement"
	maxUploadSize  = 32 << 20
)

// Server exposes the normalizer over HTTP. Every request builds its own
// result; the registry and account mappings are shared read-only.
type Server struct {
	config   *config.Config
	logger   *log.Logger
	registry *parser.Registry
	app      *fiber.App
}

// TransactionJSON is the wire form of a normalized transaction.
type TransactionJSON struct {
	Date             string `json:"date"`
	Description      string `json:"description"`
	Amount           string `json:"amount"`
	Account          string `json:"account"`
	OriginalCurrency string `json:"original_currency,omitempty"`
	OriginalAmount   string `json:"original_amount,omitempty"`
	Category         string `json:"category,omitempty"`
	Reference        string `json:"reference,omitempty"`
}

type FileJSON struct {
	File           string `json:"file"`
	Parser         string `json:"parser,omitempty"`
	Count          int    `json:"count"`
	Warnings       int    `json:"warnings"`
	PendingSkipped int    `json:"pending_skipped"`
	Error          string `json:"error,omitempty"`
}

type ProcessResponse struct {
	Status       string            `json:"status"`
	Error        string            `json:"error,omitempty"`
	Summary      string            `json:"summary,omitempty"`
	Duplicates   int               `json:"duplicates"`
	Transactions []TransactionJSON `json:"transactions"`
	Files        []FileJSON        `json:"files"`
	CSV          string            `json:"csv,omitempty"`
}

func New(cfg *config.Config, registry *parser.Registry, logger *log.Logger) *Server {
	s := &Server{
		config:   cfg,
		logger:   logger,
		registry: registry,
	}
	s.app = fiber.New(fiber.Config{
		AppName:               config.AppName,
		BodyLimit:             maxUploadSize,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.setupRoutes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App { return s.app }

func (s *Server) Start(addr string) error {
	s.logger.Info("listening", "addr", addr)
	return s.app.Listen(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.ShutdownWithContext(ctx)
}

func (s *Server) setupRoutes() {
	s.app.Use(recover.New())
	s.app.Use(cors.New())
	s.app.Use(s.withLogging)

	api := s.app.Group("/api")
	api.Get("/health", s.handleHealth)
	api.Get("/parsers", s.handleParsers)
	api.Post("/process", s.handleProcess)
}

func (s *Server) withLogging(c *fiber.Ctx) error {
	err := c.Next()
	s.logger.Debug("request", "method", c.Method(), "path", c.Path(), "status", c.Response().StatusCode())
	return err
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok", "parsers": s.registry.Len()})
}

func (s *Server) handleParsers(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "success", "parsers": s.registry.List()})
}

func (s *Server) handleProcess(c *fiber.Ctx) error {
	form, err := c.MultipartForm()
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "expected multipart form: "+err.Error())
	}
	headers := form.File[statementField]
	if len(headers) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("no files uploaded, use form field %q", statementField))
	}

	uploads := make([]normalizer.Upload, 0, len(headers))
	for _, h := range headers {
		data, err := readUpload(h)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("failed to read %s: %v", h.Filename, err))
		}
		uploads = append(uploads, normalizer.Upload{Name: h.Filename, Data: data})
	}

	var opts []normalizer.Option
	if c.Query("dedup") == "false" {
		opts = append(opts, normalizer.WithoutDedup())
	}
	n := normalizer.New(s.registry, s.config.Mappings(), s.logger, opts...)
	res := n.ProcessContent(uploads)

	resp := ProcessResponse{
		Status:       "success",
		Summary:      res.Summary(),
		Duplicates:   res.Duplicates,
		Transactions: transactionsJSON(res.Transactions),
		Files:        filesJSON(res.Files),
	}
	if err := res.Err(); err != nil {
		resp.Status = "error"
		resp.Error = err.Error()
		return c.Status(fiber.StatusUnprocessableEntity).JSON(resp)
	}

	out, err := csv.Create(res.Transactions, csv.Options{Full: c.Query("full") == "true"})
	if err != nil {
		return fmt.Errorf("failed to render csv: %w", err)
	}
	resp.CSV = string(out)

	s.logger.Info("processed upload", "files", len(uploads), "transactions", len(res.Transactions))
	return c.JSON(resp)
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error("request failed", "path", c.Path(), "err", err)
	} else {
		s.logger.Warn("bad request", "path", c.Path(), "err", err)
	}
	return c.Status(code).JSON(fiber.Map{"status": "error", "error": err.Error()})
}

func readUpload(h *multipart.FileHeader) ([]byte, error) {
	f, err := h.Open()
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return io.ReadAll(f)
}

func transactionsJSON(txs []models.Transaction) []TransactionJSON {
	out := make([]TransactionJSON, 0, len(txs))
	for _, tx := range txs {
		t := TransactionJSON{
			Date:             tx.DateString(),
			Description:      tx.Description(),
			Amount:           tx.Amount().StringFixed(2),
			Account:          tx.Account(),
			OriginalCurrency: tx.OriginalCurrency(),
			Category:         tx.Category(),
			Reference:        tx.Reference(),
		}
		if amt, ok := tx.OriginalAmount(); ok {
			t.OriginalAmount = amt.String()
		}
		out = append(out, t)
	}
	return out
}

func filesJSON(files []normalizer.FileResult) []FileJSON {
	out := make([]FileJSON, 0, len(files))
	for _, f := range files {
		fj := FileJSON{
			File:           f.Path,
			Parser:         f.Parser,
			Count:          f.Count,
			Warnings:       len(f.Warnings),
			PendingSkipped: f.PendingSkipped,
		}
		if f.Err != nil {
			fj.Error = f.Err.Error()
		}
		out = append(out, fj)
	}
	return out
}
