package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mediclic/vademecum-ai/internal/application/assistant"
	apperrors "github.com/mediclic/vademecum-ai/pkg/errors"
)

const (
	defaultSearchLimit = 20
	maxSearchLimit     = 100
)

// SearchHandler serves the direct medication lookup endpoint.
type SearchHandler struct {
	store assistant.Store
}

// NewSearchHandler constructs a SearchHandler.
func NewSearchHandler(store assistant.Store) *SearchHandler {
	return &SearchHandler{store: store}
}

type searchResult struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Generic string `json:"generic_name,omitempty"`
	Section string `json:"section"`
	Text    string `json:"text,omitempty"`
}

// Search handles GET /medicamentos/buscar?q=...&limit=...
func (h *SearchHandler) Search(c *gin.Context) {
	q := c.Query("q")
	if q == "" {
		respondError(c, apperrors.New(apperrors.ErrCodeValidation, "q parameter is required"))
		return
	}

	limit := defaultSearchLimit
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(c, apperrors.New(apperrors.ErrCodeValidation, "limit must be a positive integer"))
			return
		}
		if parsed > maxSearchLimit {
			parsed = maxSearchLimit
		}
		limit = parsed
	}

	recs, err := h.store.SearchByName(c.Request.Context(), q, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]searchResult, 0, len(recs))
	for _, r := range recs {
		results = append(results, searchResult{
			ID:      r.ID,
			Name:    r.DisplayName(),
			Generic: r.GenericNameES,
			Section: string(r.Section),
			Text:    r.AnyText(),
		})
	}
	c.JSON(http.StatusOK, gin.H{"results": results, "total": len(results)})
}
