package client

// API endpoint paths.
const (
	endpointChat          = "/api/chat"
	endpointTripContext   = "/api/parse-trip-context"
	endpointItinerary     = "/api/extract-itinerary"
	endpointProducts      = "/api/products"
	endpointSearch        = "/api/products/search"
	endpointSearchLexical = "/api/products/search/lexical"
	endpointSearchHybrid  = "/api/products/search/hybrid"
	endpointCart          = "/api/cart"
	endpointPing          = "/ping"
)
