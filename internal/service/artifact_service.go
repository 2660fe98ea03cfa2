package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"receipts/internal/apperror"
	"receipts/internal/receipt"
	"receipts/internal/repository"

	"github.com/google/uuid"
)

const msgPrepareFailed = "An unexpected error occurred while preparing or retrieving the file."

// Artifacts are the on-disk text ticket and QR image of one receipt
type Artifacts struct {
	TextPath string
	QRPath   string
}

type ArtifactConfig struct {
	TextDir       string
	QRDir         string
	PublicBaseURL string
}

// ArtifactService lazily generates receipt artifacts on first public request
type ArtifactService interface {
	Prepare(ctx context.Context, receiptID uuid.UUID, lineWidth int) (*Artifacts, error)
}

type artifactService struct {
	repo     repository.ReceiptRepository
	renderer *receipt.Renderer
	encoder  receipt.QREncoder
	cfg      ArtifactConfig
	log      *slog.Logger
}

func NewArtifactService(repo repository.ReceiptRepository, renderer *receipt.Renderer, encoder receipt.QREncoder, cfg ArtifactConfig, log *slog.Logger) ArtifactService {
	if log == nil {
		log = slog.Default()
	}
	cfg.PublicBaseURL = strings.TrimRight(cfg.PublicBaseURL, "/")
	return &artifactService{
		repo:     repo,
		renderer: renderer,
		encoder:  encoder,
		cfg:      cfg,
		log:      log.With("svc", "artifact"),
	}
}

// PublicViewURL is the unauthenticated URL that serves a receipt's text artifact
func PublicViewURL(baseURL string, receiptID uuid.UUID, lineWidth int) string {
	return fmt.Sprintf("%s/receipt/public/%s/view?file_type=txt&line_length=%d",
		strings.TrimRight(baseURL, "/"), receiptID, lineWidth)
}

// Prepare generates the text and QR pair once. The pair is all-or-nothing:
// a failed QR write removes the text file and a failed persist removes both.
func (s *artifactService) Prepare(ctx context.Context, receiptID uuid.UUID, lineWidth int) (*Artifacts, error) {
	rec, err := s.repo.GetPublic(ctx, receiptID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperror.NotFound(msgReceiptNotFound)
	}
	if err != nil {
		return nil, apperror.Internal(msgPrepareFailed, err)
	}

	if rec.TextPath != nil && rec.QRPath != nil && fileExists(*rec.TextPath) && fileExists(*rec.QRPath) {
		return &Artifacts{TextPath: *rec.TextPath, QRPath: *rec.QRPath}, nil
	}

	lineWidth = receipt.ClampWidth(lineWidth)
	for _, dir := range []string{s.cfg.TextDir, s.cfg.QRDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, apperror.Internal(msgPrepareFailed, err)
		}
	}

	textPath := filepath.Join(s.cfg.TextDir, rec.ID.String()+".txt")
	qrPath := filepath.Join(s.cfg.QRDir, rec.ID.String()+".png")

	text := s.renderer.Render(rec, lineWidth)
	if err := receipt.WriteText(textPath, text); err != nil {
		return nil, apperror.Internal(msgPrepareFailed, err)
	}

	url := PublicViewURL(s.cfg.PublicBaseURL, rec.ID, lineWidth)
	if err := receipt.WriteQR(s.encoder, url, qrPath); err != nil {
		s.cleanup(ctx, textPath, qrPath)
		return nil, apperror.Internal(msgPrepareFailed, err)
	}

	if err := s.repo.UpdateFilePaths(ctx, rec.ID, textPath, qrPath); err != nil {
		s.cleanup(ctx, textPath, qrPath)
		return nil, apperror.Internal(msgPrepareFailed, err)
	}

	s.log.InfoContext(ctx, "receipt artifacts generated", "receipt_id", rec.ID, "line_width", lineWidth)
	return &Artifacts{TextPath: textPath, QRPath: qrPath}, nil
}

func (s *artifactService) cleanup(ctx context.Context, paths ...string) {
	for _, p := range paths {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			s.log.WarnContext(ctx, "failed to remove partial artifact", "path", p, "error", err)
		}
	}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
