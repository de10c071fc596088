package handlers

import (
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path"
	"strings"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/internal/repositories/agent"
	"github.com/Ramsey-B/fern/pkg/bundle"
	"github.com/Ramsey-B/fern/pkg/models"
	"github.com/Ramsey-B/fern/pkg/resolver"
	"github.com/Ramsey-B/fern/pkg/utils"
)

// maxUploadBytes caps a single uploaded file.
const maxUploadBytes = 20 << 20 // 20MB

var allowedUploadPurposes = map[string]bool{
	models.UploadCertificationProof: true,
	models.UploadW9File:             true,
}

// AgentHandler handles agent-related API requests
type AgentHandler struct {
	agents   agent.AgentRepository
	store    blob.Store
	resolver *resolver.Resolver
	exporter *bundle.Exporter
	logger   ectologger.Logger
}

// NewAgentHandler creates a new agent handler
func NewAgentHandler(
	agents agent.AgentRepository,
	store blob.Store,
	res *resolver.Resolver,
	exporter *bundle.Exporter,
	logger ectologger.Logger,
) *AgentHandler {
	return &AgentHandler{
		agents:   agents,
		store:    store,
		resolver: res,
		exporter: exporter,
		logger:   logger,
	}
}

// RegisterRoutes registers the agent routes
func (h *AgentHandler) RegisterRoutes(g *echo.Group) {
	agents := g.Group("/agents")
	agents.POST("", h.Create)
	agents.GET("/:id", h.Get)
	agents.PATCH("/:id/progress", h.PatchProgress)
	agents.POST("/:id/uploads/:purpose", h.Upload)
	agents.POST("/:id/signatures/:document", h.Sign)
	agents.GET("/:id/documents", h.ListDocuments)
	agents.GET("/:id/documents.zip", h.DownloadBundle)
	agents.GET("/:id/documents/:name", h.DownloadDocument)
}

// Create handles POST /agents. Creation is find-or-create on email, so
// posting the same contact twice returns the same agent.
func (h *AgentHandler) Create(c echo.Context) error {
	ctx := c.Request().Context()

	req, err := utils.BindRequest[models.CreateAgentRequest](c)
	if err != nil {
		return err
	}

	ag, created, err := h.resolver.FindOrCreateAgent(ctx, models.ContactInfo{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     req.Phone,
	})
	if err != nil {
		return err
	}

	resp := models.AgentResponse{Agent: *ag, Created: created}
	if created {
		return CreatedResponse(c, resp)
	}
	return SuccessResponse(c, resp)
}

// Get handles GET /agents/:id
func (h *AgentHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}
	return SuccessResponse(c, models.AgentResponse{Agent: *ag})
}

// PatchProgress handles PATCH /agents/:id/progress. Flags are merged, not
// replaced; absent flags keep their stored value.
func (h *AgentHandler) PatchProgress(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.PatchProgressRequest](c)
	if err != nil {
		return err
	}

	for stage, done := range req.Progress {
		ag.Progress[stage] = done
	}
	if err := h.agents.Save(ctx, ag); err != nil {
		return err
	}

	return SuccessResponse(c, models.AgentResponse{Agent: *ag})
}

// Upload handles POST /agents/:id/uploads/:purpose. The file replaces any
// previous upload for the same purpose.
func (h *AgentHandler) Upload(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}

	purpose := c.Param("purpose")
	if !allowedUploadPurposes[purpose] {
		return httperror.NewHTTPErrorf(http.StatusBadRequest, "unknown upload purpose %q", purpose)
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return BadRequest("missing file field")
	}
	if fh.Size > maxUploadBytes {
		return httperror.NewHTTPError(http.StatusRequestEntityTooLarge, "file too large")
	}

	f, err := fh.Open()
	if err != nil {
		return httperror.WrapError(http.StatusBadRequest, err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		return httperror.WrapError(http.StatusInternalServerError, err)
	}

	key := fmt.Sprintf("agents/%s/uploads/%s%s", ag.ID, purpose, path.Ext(fh.Filename))
	contentType := fh.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	if err := h.store.Put(ctx, key, data, contentType); err != nil {
		h.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("failed to store upload")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store upload")
	}

	ag.Uploads[purpose] = key
	if err := h.agents.Save(ctx, ag); err != nil {
		return err
	}

	return CreatedResponse(c, models.AgentResponse{Agent: *ag})
}

// Sign handles POST /agents/:id/signatures/:document. A drawn signature
// arrives as a base64 PNG and is stored as a blob; a typed one is stored
// inline on the agent record.
func (h *AgentHandler) Sign(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}

	document, err := RequireParam(c, "document")
	if err != nil {
		return err
	}

	req, err := utils.BindRequest[models.SignatureRequest](c)
	if err != nil {
		return err
	}

	sig := models.Signature{
		Kind:     req.Kind,
		Value:    req.Value,
		SignedAt: time.Now().UTC(),
	}

	if req.Kind == models.SignatureKindDrawn {
		raw := req.Value
		if idx := strings.Index(raw, ","); idx >= 0 && strings.HasPrefix(raw, "data:") {
			raw = raw[idx+1:]
		}
		data, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return BadRequest("drawn signature must be base64-encoded PNG data")
		}

		key := fmt.Sprintf("agents/%s/signatures/%s.png", ag.ID, document)
		if err := h.store.Put(ctx, key, data, "image/png"); err != nil {
			h.logger.WithContext(ctx).WithError(err).WithField("key", key).Error("failed to store signature image")
			return httperror.NewHTTPError(http.StatusInternalServerError, "failed to store signature image")
		}
		sig.Value = key
	}

	ag.Signatures[document] = sig
	if err := h.agents.Save(ctx, ag); err != nil {
		return err
	}

	return CreatedResponse(c, models.AgentResponse{Agent: *ag})
}

// ListDocuments handles GET /agents/:id/documents
func (h *AgentHandler) ListDocuments(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}

	docs := h.exporter.GatherDocuments(ctx, ag)
	if docs == nil {
		docs = []models.DocumentInfo{}
	}
	return SuccessResponse(c, models.DocumentListResponse{AgentID: ag.ID, Documents: docs})
}

// DownloadDocument handles GET /agents/:id/documents/:name
func (h *AgentHandler) DownloadDocument(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}

	name, err := RequireParam(c, "name")
	if err != nil {
		return err
	}

	for _, doc := range h.exporter.GatherDocuments(ctx, ag) {
		if doc.Name != name {
			continue
		}

		data, err := h.store.Get(ctx, doc.Key)
		if err != nil {
			if blob.IsNotExist(err) {
				return NotFound("document is no longer available")
			}
			return httperror.WrapError(http.StatusInternalServerError, err)
		}

		contentType := mime.TypeByExtension(path.Ext(doc.Name))
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		return c.Blob(http.StatusOK, contentType, data)
	}

	return httperror.NewHTTPErrorf(http.StatusNotFound, "document %q not found", name)
}

// DownloadBundle handles GET /agents/:id/documents.zip
func (h *AgentHandler) DownloadBundle(c echo.Context) error {
	ctx := c.Request().Context()

	ag, err := RequireAgent(ctx, c, h.agents)
	if err != nil {
		return err
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/zip")
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", "onboarding-"+ag.ID+".zip"))
	c.Response().WriteHeader(http.StatusOK)

	return h.exporter.StreamZip(ctx, ag, c.Response())
}
