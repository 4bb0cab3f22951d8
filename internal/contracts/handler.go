package contracts

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
	"github.com/DragX-cyber/Legal-Mate/internal/ingest"
	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/middleware"
	"github.com/DragX-cyber/Legal-Mate/internal/shared/server/respond"
)

// Handler runs the upload-to-session pipeline: extract text, compile a
// risk assessment, then create the chat session seeded with both.
type Handler struct {
	Compiler *analysis.Compiler
	Sessions *sessions.Service
	MaxBytes int64
}

const defaultMaxUploadBytes = 10 << 20 // 10 MiB

func NewHandler(compiler *analysis.Compiler, svc *sessions.Service) *Handler {
	return &Handler{
		Compiler: compiler,
		Sessions: svc,
		MaxBytes: defaultMaxUploadBytes,
	}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/contracts/analyze", h.analyzeUpload)
	rg.POST("/contracts/analyze-text", h.analyzeText)
}

// analyzeUpload accepts a multipart upload. The file bytes live only for
// this request; once text is extracted they are gone.
func (h *Handler) analyzeUpload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "multipart file field is required", nil)
		return
	}
	if fileHeader.Size > h.MaxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the upload limit", nil)
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to read upload", nil)
		return
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.MaxBytes+1))
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "failed to read upload", nil)
		return
	}
	if int64(len(data)) > h.MaxBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "file_too_large", "file exceeds the upload limit", nil)
		return
	}

	declaredType := fileHeader.Header.Get("Content-Type")
	text, err := ingest.Extract(data, declaredType, fileHeader.Filename)
	if err != nil {
		respondIngestError(c, err)
		return
	}

	h.analyze(c, fileHeader.Filename, text)
}

type analyzeTextRequest struct {
	Text    string               `json:"text"`
	Title   string               `json:"title"`
	Profile analysis.UserProfile `json:"profile"`
}

// analyzeText accepts pasted contract text, skipping extraction.
func (h *Handler) analyzeText(c *gin.Context) {
	var req analyzeTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "body must be JSON with a text field", nil)
		return
	}
	text := ingest.Normalize(req.Text)
	if text == "" {
		respond.Error(c, http.StatusBadRequest, "invalid_request", "text must not be empty", nil)
		return
	}

	c.Set(profileKey, req.Profile)
	h.analyze(c, req.Title, text)
}

const profileKey = "contracts.profile"

func (h *Handler) analyze(c *gin.Context, fileName, text string) {
	profile := profileFromRequest(c)

	assessment, err := h.Compiler.Analyze(c.Request.Context(), text, profile)
	if err != nil {
		respondAnalysisError(c, err)
		return
	}

	userID := middleware.UserIDFromContext(c)
	session, err := h.Sessions.Create(c.Request.Context(), userID, fileName, text, profile, assessment)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to create session", nil)
		return
	}

	respond.JSON(c, http.StatusCreated, gin.H{
		"sessionId":  session.ID,
		"title":      session.Title,
		"assessment": assessment,
	})
}

// profileFromRequest reads the optional user profile, either stashed by
// analyzeText or carried as multipart form fields.
func profileFromRequest(c *gin.Context) analysis.UserProfile {
	if v, ok := c.Get(profileKey); ok {
		if p, ok2 := v.(analysis.UserProfile); ok2 {
			return p
		}
	}
	return analysis.UserProfile{
		Industry:      strings.TrimSpace(c.PostForm("industry")),
		Role:          strings.TrimSpace(c.PostForm("role")),
		RiskTolerance: strings.TrimSpace(c.PostForm("riskTolerance")),
	}
}

func respondIngestError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		respond.Error(c, http.StatusUnsupportedMediaType, "unsupported_format", "only pdf, txt, and docx documents are supported", nil)
	case errors.Is(err, ingest.ErrExtractionFailed):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "could not extract text from the document", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to process document", nil)
	}
}

func respondAnalysisError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, analysis.ErrEmptyDocument):
		respond.Error(c, http.StatusUnprocessableEntity, "extraction_failed", "document contains no text to analyze", nil)
	case errors.Is(err, analysis.ErrModelUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "model_unavailable", "the model is temporarily unavailable, try again shortly", nil)
	case errors.Is(err, analysis.ErrMalformedOutput):
		respond.Error(c, http.StatusBadGateway, "malformed_model_output", "the model returned an unusable analysis", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", "analysis failed", nil)
	}
}
