package handlers

import (
	"io"
	"net/http"
	"strings"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/fern/internal/blob"
	"github.com/Ramsey-B/fern/internal/repositories/submission"
	"github.com/Ramsey-B/fern/pkg/ingest"
	"github.com/Ramsey-B/fern/pkg/models"
)

// SubmissionHandler handles submission-related API requests
type SubmissionHandler struct {
	ingestor    *ingest.Ingestor
	submissions submission.SubmissionRepository
	store       blob.Store
	logger      ectologger.Logger
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(
	ingestor *ingest.Ingestor,
	submissions submission.SubmissionRepository,
	store blob.Store,
	logger ectologger.Logger,
) *SubmissionHandler {
	return &SubmissionHandler{
		ingestor:    ingestor,
		submissions: submissions,
		store:       store,
		logger:      logger,
	}
}

// RegisterRoutes registers the submission routes
func (h *SubmissionHandler) RegisterRoutes(g *echo.Group) {
	submissions := g.Group("/submissions")
	submissions.POST("/:type", h.Submit)
	submissions.GET("/:type/:id", h.Get)
}

// Submit handles POST /submissions/:type. The body may be a JSON object or a
// multipart form with file attachments; both arrive at ingestion as the same
// raw payload shape.
func (h *SubmissionHandler) Submit(c echo.Context) error {
	ctx := c.Request().Context()

	t, err := parseTypeParam(c)
	if err != nil {
		return err
	}

	raw, attachments, err := h.parseBody(c)
	if err != nil {
		return err
	}

	resp, err := h.ingestor.Ingest(ctx, t, raw, attachments)
	if err != nil {
		return err
	}
	return CreatedResponse(c, resp)
}

// Get handles GET /submissions/:type/:id
func (h *SubmissionHandler) Get(c echo.Context) error {
	ctx := c.Request().Context()

	t, err := parseTypeParam(c)
	if err != nil {
		return err
	}
	id, err := RequireParam(c, "id")
	if err != nil {
		return err
	}

	sub, err := h.submissions.Get(ctx, id, t)
	if err != nil {
		return err
	}
	if sub == nil {
		return httperror.NewHTTPErrorf(http.StatusNotFound, "submission %s not found", id)
	}
	return SuccessResponse(c, models.SubmissionResponse{Submission: *sub})
}

func parseTypeParam(c echo.Context) (models.SubmissionType, error) {
	t, err := models.ParseSubmissionType(c.Param("type"))
	if err != nil {
		return "", httperror.WrapError(http.StatusBadRequest, err)
	}
	return t, nil
}

// parseBody extracts the raw payload and staged attachments from the request.
// Multipart forms keep repeated keys as slices so multi-value coercion can
// see them; JSON bodies pass through as decoded.
func (h *SubmissionHandler) parseBody(c echo.Context) (ingest.Raw, []ingest.IncomingAttachment, error) {
	ctx := c.Request().Context()
	contentType := c.Request().Header.Get(echo.HeaderContentType)

	if strings.HasPrefix(contentType, echo.MIMEApplicationJSON) {
		raw := ingest.Raw{}
		if err := c.Bind(&raw); err != nil {
			return nil, nil, httperror.WrapError(http.StatusBadRequest, err)
		}
		return raw, nil, nil
	}

	form, err := c.MultipartForm()
	if err != nil {
		// Plain urlencoded forms have no multipart reader.
		values, ferr := c.FormParams()
		if ferr != nil {
			return nil, nil, httperror.WrapError(http.StatusBadRequest, ferr)
		}
		return formToRaw(values), nil, nil
	}

	raw := formToRaw(form.Value)

	var attachments []ingest.IncomingAttachment
	for _, headers := range form.File {
		for _, fh := range headers {
			f, err := fh.Open()
			if err != nil {
				return nil, nil, httperror.WrapError(http.StatusBadRequest, err)
			}
			data, err := io.ReadAll(f)
			f.Close()
			if err != nil {
				return nil, nil, httperror.WrapError(http.StatusInternalServerError, err)
			}

			tmpKey := "tmp/" + uuid.New().String()
			mimeType := fh.Header.Get("Content-Type")
			if mimeType == "" {
				mimeType = "application/octet-stream"
			}
			if err := h.store.Put(ctx, tmpKey, data, mimeType); err != nil {
				h.logger.WithContext(ctx).WithError(err).Error("failed to stage attachment")
				return nil, nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to stage attachment")
			}

			attachments = append(attachments, ingest.IncomingAttachment{
				OriginalName: fh.Filename,
				MimeType:     mimeType,
				Size:         fh.Size,
				TmpKey:       tmpKey,
			})
		}
	}

	return raw, attachments, nil
}

// formToRaw keeps single values as strings and repeated keys as slices.
func formToRaw(values map[string][]string) ingest.Raw {
	raw := ingest.Raw{}
	for key, vals := range values {
		switch len(vals) {
		case 0:
		case 1:
			raw[key] = vals[0]
		default:
			raw[key] = vals
		}
	}
	return raw
}
