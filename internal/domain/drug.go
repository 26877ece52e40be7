package domain

// Placeholder values used when a field cannot be extracted from a record.
// Extraction is total: callers always receive a fully populated struct
// containing these sentinels instead of an error.
const (
	NotFound = "Not found"

	// NoRecordText is the synthetic record body used when the brand
	// namespace has no entry for a drug. It flows through extraction
	// like any other record and yields an all-placeholder BrandInfo.
	NoRecordText = "No information found for this drug"

	// SummaryUnavailable is the terminal generic-summary value emitted
	// when no active ingredient could be resolved, or when neither a
	// generic summary record nor any retailer record exists.
	SummaryUnavailable = "Generic alternative info not available"
)

// Store namespaces. The brand namespace holds one record per brand
// drug; the generic namespace holds `<ingredient>:generic` summary
// records and `<ingredient>:<retailer>` offer records.
const (
	NamespaceBrand   = "brand_drug"
	NamespaceGeneric = "generic_drug"
)

// RawRecord is an opaque text blob fetched from the external store,
// identified by its key within a namespace. Immutable once fetched.
type RawRecord struct {
	Key       string
	Namespace string
	Text      string
}

// BrandInfo is the structured view of a brand-drug record. Always
// structurally complete: absent fields carry NotFound.
type BrandInfo struct {
	Manufacturer     string `json:"manufacturer"`
	ActiveIngredient string `json:"active_ingredient"`
	Price            string `json:"price"`
	Dosage           string `json:"dosage"`
	SideEffects      string `json:"side_effects"`
}

// GenericSummary describes the generic equivalent of a brand drug.
// Ingredient is always the originally resolved active-ingredient
// string, regardless of which record supplied Usage and SideEffects.
type GenericSummary struct {
	Ingredient  string `json:"ingredient"`
	Usage       string `json:"usage"`
	SideEffects string `json:"side_effects"`
}

// RetailerOffer is one retailer's pricing for a generic ingredient.
// Multiple offers may exist per ingredient, and the same retailer can
// appear more than once when several key variants resolve a record.
type RetailerOffer struct {
	Retailer string `json:"retailer"`
	Price    string `json:"price"`
	Quantity string `json:"quantity"`
}

// Resolution is the complete answer for one search request.
type Resolution struct {
	BrandDrug string
	Brand     BrandInfo
	Summary   GenericSummary
	// SummaryAvailable is false for the terminal "no ingredient" and
	// "no generic data" outcomes, which are valid results, not errors.
	SummaryAvailable bool
	Offers           []RetailerOffer
}

// SearchRequest is the inbound search payload.
type SearchRequest struct {
	BrandDrug string `json:"brand_drug" binding:"required"`
}
