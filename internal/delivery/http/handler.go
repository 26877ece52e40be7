package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/genericrx/backend/internal/domain"
)

// Resolver is the usecase dependency of the HTTP layer.
type Resolver interface {
	Resolve(ctx context.Context, brandDrug string) (*domain.Resolution, error)
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver Resolver
}

// NewHandler creates a new HTTP handler
func NewHandler(resolver Resolver) *Handler {
	return &Handler{
		resolver: resolver,
	}
}

// searchResponse is the wire shape of a search answer. brand_info stays
// structured; generic_summary and retailer_info are rendered strings
// for the frontend.
type searchResponse struct {
	BrandDrug      string           `json:"brand_drug"`
	BrandInfo      domain.BrandInfo `json:"brand_info"`
	GenericSummary string           `json:"generic_summary"`
	RetailerInfo   []string         `json:"retailer_info"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "genericrx-backend",
		"version": "1.0.0",
	})
}

// SearchDrug resolves a brand drug to generic alternatives and
// retailer pricing.
func (h *Handler) SearchDrug(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.BrandDrug) == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no brand drug provided"})
		return
	}

	resolution, err := h.resolver.Resolve(c.Request.Context(), req.BrandDrug)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "no brand drug provided"})
			return
		}

		zap.L().Error("search: resolution failed",
			zap.String("brand_drug", req.BrandDrug),
			zap.Error(err),
		)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to resolve drug: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, searchResponse{
		BrandDrug:      resolution.BrandDrug,
		BrandInfo:      resolution.Brand,
		GenericSummary: renderSummary(resolution),
		RetailerInfo:   renderOffers(resolution.Offers),
	})
}

// renderSummary flattens the generic summary to its wire string. The
// terminal "not available" outcome keeps its fixed sentinel value.
func renderSummary(resolution *domain.Resolution) string {
	if !resolution.SummaryAvailable {
		return domain.SummaryUnavailable
	}

	s := resolution.Summary
	return fmt.Sprintf("Generic alternative: %s. Usage: %s. Side effects: %s", s.Ingredient, s.Usage, s.SideEffects)
}

// renderOffers flattens retailer offers to wire strings, preserving
// their order. The "for" clause is omitted when no quantity was
// extracted.
func renderOffers(offers []domain.RetailerOffer) []string {
	rendered := make([]string, 0, len(offers))
	for _, offer := range offers {
		if offer.Quantity == "" {
			rendered = append(rendered, fmt.Sprintf("%s: %s", offer.Retailer, offer.Price))
			continue
		}
		rendered = append(rendered, fmt.Sprintf("%s: %s for %s", offer.Retailer, offer.Price, offer.Quantity))
	}
	return rendered
}
