package usecase

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/genericrx/backend/internal/domain"
)

// ResolutionConfig holds tuning for the resolution pipeline.
type ResolutionConfig struct {
	// Retailers is probed per ingredient variant, in order. The order
	// is part of the merge contract: summary synthesis and offer
	// collection walk it variant-major, retailer-minor.
	Retailers []string
	// FetchConcurrency caps in-flight store lookups for the fan-out.
	FetchConcurrency int
}

// ResolutionService resolves a brand-name drug to its generic
// equivalents and retailer pricing.
//
// Flow: normalize input -> fetch brand record -> extract brand fields ->
// derive ingredient -> expand variants -> fan out candidate keys ->
// merge by priority.
type ResolutionService struct {
	normalizer domain.NameNormalizer
	memo       domain.MemoCache
	fetcher    *Fetcher
	retailers  []string
}

// NewResolutionService creates a resolution service with its
// collaborators injected.
func NewResolutionService(
	store domain.RecordStore,
	normalizer domain.NameNormalizer,
	memo domain.MemoCache,
	config ResolutionConfig,
) *ResolutionService {
	return &ResolutionService{
		normalizer: normalizer,
		memo:       memo,
		fetcher:    NewFetcher(store, config.FetchConcurrency),
		retailers:  config.Retailers,
	}
}

// Resolve runs the full pipeline for one brand-drug name. Data absence
// at any stage is a valid terminal outcome with placeholder output, not
// an error; only an empty input is rejected.
func (s *ResolutionService) Resolve(ctx context.Context, brandDrug string) (*domain.Resolution, error) {
	brandDrug = strings.TrimSpace(brandDrug)
	if brandDrug == "" {
		return nil, domain.ErrInvalidRequest
	}

	log := zap.L().With(zap.String("brand_drug", brandDrug))

	// Normalize the raw name, falling back to the input when the
	// service is unavailable.
	name := s.normalizeName(ctx, brandDrug)

	// The brand namespace keys records by the spaceless normalized
	// name. A miss produces a sentinel record that still flows through
	// extraction.
	brandKey := strings.ReplaceAll(name, " ", "")
	brandText := domain.NoRecordText
	if result := s.fetcher.FetchOne(ctx, brandKey, domain.NamespaceBrand); result.Status == LookupFound {
		brandText = result.Text
	} else {
		log.Info("resolver: no brand record", zap.String("key", brandKey))
	}

	brand := ExtractBrandFields(brandText)

	resolution := &domain.Resolution{
		BrandDrug: brandDrug,
		Brand:     brand,
		Offers:    []domain.RetailerOffer{},
	}

	ingredient := strings.ToLower(strings.TrimSpace(brand.ActiveIngredient))
	if ingredient == "" || strings.EqualFold(ingredient, domain.NotFound) {
		// Legitimate terminal outcome: nothing to look up generics for.
		log.Info("resolver: no active ingredient resolved")
		return resolution, nil
	}

	variants := GenerateVariants(ingredient)
	requests := buildCandidateSet(variants, s.retailers)

	log.Debug("resolver: fanning out candidate keys",
		zap.Int("variants", len(variants)),
		zap.Int("candidates", len(requests)),
	)

	resolved := s.fetcher.FetchMany(ctx, requests)

	resolution.Summary, resolution.SummaryAvailable = s.mergeSummary(ingredient, variants, resolved)
	resolution.Offers = s.collectOffers(variants, resolved)

	log.Info("resolver: resolution complete",
		zap.String("ingredient", ingredient),
		zap.Bool("summary", resolution.SummaryAvailable),
		zap.Int("offers", len(resolution.Offers)),
	)

	return resolution, nil
}

// normalizeName returns the normalized form of name, memoized by the
// exact input string. Only successful normalizations are memoized, so a
// transient service failure is retried on the next request.
func (s *ResolutionService) normalizeName(ctx context.Context, name string) string {
	if cached, err := s.memo.Get(name); err == nil {
		return cached
	} else if !errors.Is(err, domain.ErrCacheMiss) {
		zap.L().Warn("resolver: memo lookup failed", zap.Error(err))
	}

	normalized, err := s.normalizer.Normalize(ctx, name)
	if err != nil || strings.TrimSpace(normalized) == "" {
		zap.L().Warn("resolver: normalization unavailable, using raw input",
			zap.String("name", name),
			zap.Error(err),
		)
		return name
	}

	s.memo.Add(name, normalized)
	return normalized
}

// buildCandidateSet expands variants into the full key set to probe:
// one "<variant>:generic" summary key per variant plus the
// variant x retailer cross-product. All candidates live in the generic
// namespace.
func buildCandidateSet(variants, retailers []string) []KeyRequest {
	requests := make([]KeyRequest, 0, len(variants)*(len(retailers)+1))

	for _, variant := range variants {
		requests = append(requests, KeyRequest{
			Key:       variant + ":generic",
			Namespace: domain.NamespaceGeneric,
		})
		for _, retailer := range retailers {
			requests = append(requests, KeyRequest{
				Key:       variant + ":" + retailer,
				Namespace: domain.NamespaceGeneric,
			})
		}
	}

	return requests
}

// mergeSummary builds the generic summary under the fallback priority:
// a resolved "<variant>:generic" record is authoritative, taking the
// first variant in enumeration order; otherwise the summary is
// synthesized from the first resolved retailer record, walking
// variant-major, retailer-minor. Both tie-breaks are deliberate: they
// keep the answer deterministic regardless of fetch completion order.
func (s *ResolutionService) mergeSummary(
	ingredient string,
	variants []string,
	resolved map[string]LookupResult,
) (domain.GenericSummary, bool) {
	for _, variant := range variants {
		if result, ok := resolved[variant+":generic"]; ok {
			return ExtractSummaryFields(result.Text, ingredient), true
		}
	}

	for _, variant := range variants {
		for _, retailer := range s.retailers {
			if result, ok := resolved[variant+":"+retailer]; ok {
				usage, sideEffects := ExtractProseSummary(result.Text)
				return domain.GenericSummary{
					Ingredient:  ingredient,
					Usage:       usage,
					SideEffects: sideEffects,
				}, true
			}
		}
	}

	return domain.GenericSummary{}, false
}

// collectOffers turns every resolved retailer record into an offer, in
// variant-major, retailer-minor order. Records are deliberately not
// deduplicated across variants: when several variants resolve for the
// same retailer, each surfaces its own offer.
func (s *ResolutionService) collectOffers(
	variants []string,
	resolved map[string]LookupResult,
) []domain.RetailerOffer {
	offers := make([]domain.RetailerOffer, 0)

	for _, variant := range variants {
		for _, retailer := range s.retailers {
			if result, ok := resolved[variant+":"+retailer]; ok {
				offers = append(offers, ExtractRetailerFields(result.Text, retailer))
			}
		}
	}

	return offers
}
