package tool

import "encoding/json"

// Request is the uniform invocation envelope. Arguments stay raw until the
// executor knows which tool's argument shape to decode into.
type Request struct {
	Tool      string          `json:"tool"`
	Arguments json.RawMessage `json:"arguments"`
}

// Response is the uniform result envelope. Success=false means the
// invocation itself failed (unknown tool, bad arguments, internal fault).
// Stage-level failures ride inside Data with the envelope still successful.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// Definition describes one invocable tool for discovery by clients
type Definition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Definitions lists every tool the executor can dispatch
func Definitions() []Definition {
	return []Definition{
		{
			Name:        "search_products",
			Description: "Search for product listings across e-commerce sites and return candidate source URLs",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"product_name": {"type": "string", "description": "Name of the product to search for"},
					"max_results": {"type": "integer", "description": "Maximum number of candidates to return", "default": 10},
					"ecommerce_only": {"type": "boolean", "description": "Restrict results to known e-commerce domains", "default": true}
				},
				"required": ["product_name"]
			}`),
		},
		{
			Name:        "search_product_with_specifications",
			Description: "Search for a product qualified by specifications (e.g. \"16GB RAM\"), split into e-commerce and informational results",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"product_name": {"type": "string", "description": "Name of the product to search for"},
					"specifications": {"type": "string", "description": "Extra qualifying specifications"},
					"max_results": {"type": "integer", "description": "Maximum number of results to return", "default": 10}
				},
				"required": ["product_name"]
			}`),
		},
		{
			Name:        "get_product_urls_for_comparison",
			Description: "Find product URLs on specific e-commerce sites, grouped by site",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"product_name": {"type": "string", "description": "Name of the product to search for"},
					"target_sites": {"type": "array", "items": {"type": "string"}, "description": "Site domains to restrict the search to; defaults to the configured major retailers"}
				},
				"required": ["product_name"]
			}`),
		},
		{
			Name:        "scrape_product_price",
			Description: "Fetch the raw price string from each source URL; every URL yields one observation, success or failure",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"product_name": {"type": "string", "description": "Name of the product being scraped"},
					"source_urls": {"type": "array", "items": {"type": "string"}, "description": "Page URLs to read prices from"}
				},
				"required": ["product_name", "source_urls"]
			}`),
		},
		{
			Name:        "process_scraped_data",
			Description: "Convert raw price observations into normalized, numerically comparable records",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"observations": {"type": "array", "items": {"type": "object"}, "description": "Raw observations from scrape_product_price"}
				},
				"required": ["observations"]
			}`),
		},
		{
			Name:        "find_lowest_price",
			Description: "Rank normalized records by price and identify the best deal and potential savings",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"records": {"type": "array", "items": {"type": "object"}, "description": "Normalized records from process_scraped_data"}
				},
				"required": ["records"]
			}`),
		},
		{
			Name:        "comprehensive_price_analysis",
			Description: "Analyze normalized price records: distribution statistics, per-site trends, and purchase recommendations",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"product_name": {"type": "string", "description": "Name of the product being analyzed"},
					"records": {"type": "array", "items": {"type": "object"}, "description": "Normalized records from process_scraped_data"}
				},
				"required": ["product_name", "records"]
			}`),
		},
		{
			Name:        "compare_specific_sites",
			Description: "Compare the best available price between specific e-commerce sites using normalized records",
			Parameters: json.RawMessage(`{
				"type": "object",
				"properties": {
					"records": {"type": "array", "items": {"type": "object"}, "description": "Normalized records from process_scraped_data"},
					"site_domains": {"type": "array", "items": {"type": "string"}, "description": "Site domains to compare"}
				},
				"required": ["records", "site_domains"]
			}`),
		},
	}
}
