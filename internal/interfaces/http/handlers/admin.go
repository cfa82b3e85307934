package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/mediclic/vademecum-ai/internal/application/ingest"
	"github.com/mediclic/vademecum-ai/internal/domain/record"
	"github.com/mediclic/vademecum-ai/internal/domain/vocabulary"
	"github.com/mediclic/vademecum-ai/internal/infrastructure/monitoring/logging"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

// AdminHandler serves index maintenance endpoints.
type AdminHandler struct {
	store  ingest.BulkStore
	vocab  *vocabulary.Cache
	logger logging.Logger
}

// NewAdminHandler constructs an AdminHandler.
func NewAdminHandler(store ingest.BulkStore, vocab *vocabulary.Cache, logger logging.Logger) *AdminHandler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &AdminHandler{store: store, vocab: vocab, logger: logger.Named("admin")}
}

type upsertRequest struct {
	Documents []upsertDocument `json:"documents" binding:"required,min=1"`
}

type upsertDocument struct {
	ID      string                 `json:"id"`
	Payload map[string]interface{} `json:"payload" binding:"required"`
}

// Upsert handles POST /admin/medicamentos/upsert. Documents without an id
// get one assigned.
func (h *AdminHandler) Upsert(c *gin.Context) {
	var req upsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, apperrors.Wrap(err, apperrors.ErrCodeValidation, "documents are required"))
		return
	}

	docs := make([]record.Record, 0, len(req.Documents))
	for _, d := range req.Documents {
		if d.ID == "" {
			d.ID = uuid.NewString()
		}
		r := record.Decode(d.ID, d.Payload)
		if r.DisplayName() == "" {
			respondError(c, apperrors.Newf(apperrors.ErrCodeValidation, "document %s has no name field", d.ID))
			return
		}
		docs = append(docs, r)
	}

	indexed, err := h.store.BulkUpsert(c.Request.Context(), docs)
	if err != nil {
		respondError(c, err)
		return
	}

	h.vocab.Invalidate()
	h.logger.Info("documents upserted", logging.Int("indexed", indexed))
	c.JSON(http.StatusOK, gin.H{"indexed": indexed})
}

// RebuildVocabulary handles POST /admin/vocab/rebuild.
func (h *AdminHandler) RebuildVocabulary(c *gin.Context) {
	h.vocab.Invalidate()
	if err := h.vocab.Ensure(c.Request.Context()); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": h.vocab.Len()})
}
