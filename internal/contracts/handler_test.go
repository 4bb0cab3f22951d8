package contracts

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DragX-cyber/Legal-Mate/internal/analysis"
	"github.com/DragX-cyber/Legal-Mate/internal/llm"
	"github.com/DragX-cyber/Legal-Mate/internal/sessions"
)

type scriptedLLM struct {
	reply string
	err   error
}

func (s *scriptedLLM) Generate(ctx context.Context, req llm.GenerateRequest) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	return s.reply, nil
}

const contractBody = "Clause 1: Termination at will.\nClause 2: No warranty."

func analysisReply() string {
	return `{
  "summary": "Aggressive short agreement.",
  "overallRiskScore": 70,
  "clauses": [
    {"clauseType": "Termination", "snippet": "Termination at will.", "riskLevel": "high", "rationale": "no notice period", "recommendation": "add notice"},
    {"clauseType": "Warranty", "snippet": "No warranty.", "riskLevel": "medium", "rationale": "no recourse"}
  ]
}`
}

func newContractsRouter(t *testing.T, client llm.Client) (*gin.Engine, *sessions.Service) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := sessions.NewService(sessions.NewMemoryRepo(), nil)
	compiler := analysis.NewCompiler(client, 30000, 0, time.Millisecond)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(compiler, svc).RegisterRoutes(r.Group("/api/v1"))
	return r, svc
}

func multipartUpload(t *testing.T, fieldName, fileName, contentType, body string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	if err != nil {
		t.Fatalf("CreatePart: %v", err)
	}
	if _, err := part.Write([]byte(body)); err != nil {
		t.Fatalf("part write: %v", err)
	}
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("WriteField: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("writer close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestAnalyzeUploadCreatesSession(t *testing.T) {
	r, svc := newContractsRouter(t, &scriptedLLM{reply: analysisReply()})

	body, contentType := multipartUpload(t, "file", "msa.txt", "text/plain", contractBody, map[string]string{
		"industry":      "tech",
		"role":          "founder",
		"riskTolerance": "low",
	})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	var resp struct {
		SessionID  string                  `json:"sessionId"`
		Title      string                  `json:"title"`
		Assessment analysis.RiskAssessment `json:"assessment"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.SessionID == "" {
		t.Fatalf("missing sessionId")
	}
	if len(resp.Assessment.Clauses) != 2 {
		t.Fatalf("clauses = %d", len(resp.Assessment.Clauses))
	}

	stored, err := svc.Get(context.Background(), "user-1", resp.SessionID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if stored.Profile.Industry != "tech" || stored.Profile.RiskTolerance != "low" {
		t.Fatalf("profile = %+v", stored.Profile)
	}
	if stored.ContractText != contractBody {
		t.Fatalf("contract text = %q", stored.ContractText)
	}
}

func TestAnalyzeUploadUnsupportedFormat(t *testing.T) {
	r, _ := newContractsRouter(t, &scriptedLLM{reply: analysisReply()})

	body, contentType := multipartUpload(t, "file", "sheet.xlsx",
		"application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", "data", nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusUnsupportedMediaType {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestAnalyzeUploadMalformedModelOutput(t *testing.T) {
	r, svc := newContractsRouter(t, &scriptedLLM{reply: "no json here"})

	body, contentType := multipartUpload(t, "file", "msa.txt", "text/plain", contractBody, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadGateway {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}

	// Fail closed: no partial session may exist.
	list, err := svc.List(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("sessions = %d, want 0", len(list))
	}
}

func TestAnalyzeUploadModelDown(t *testing.T) {
	r, _ := newContractsRouter(t, &scriptedLLM{err: context.DeadlineExceeded})

	body, contentType := multipartUpload(t, "file", "msa.txt", "text/plain", contractBody, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/analyze", body)
	req.Header.Set("Content-Type", contentType)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
}

func TestAnalyzeTextEndpoint(t *testing.T) {
	r, _ := newContractsRouter(t, &scriptedLLM{reply: analysisReply()})

	payload := `{"text": "Clause 1: Termination at will.\nClause 2: No warranty.", "title": "pasted agreement", "profile": {"industry": "tech"}}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/analyze-text", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d body=%s", w.Code, w.Body.String())
	}
	var resp struct {
		Title string `json:"title"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Title != "pasted agreement" {
		t.Fatalf("title = %q", resp.Title)
	}
}

func TestAnalyzeTextEmpty(t *testing.T) {
	r, _ := newContractsRouter(t, &scriptedLLM{reply: analysisReply()})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/contracts/analyze-text", strings.NewReader(`{"text": "   "}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", w.Code)
	}
}
