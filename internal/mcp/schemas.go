package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
)

// searchTripsTool returns the tool definition for search_trips
func searchTripsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "search_trips",
		Description: "Search trips with natural language, a client name, an email, a slug, or a trip number",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Search query (e.g. 'sara bristol 2025', 'sara.jones@email.com', 'trip-42')",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-25)",
					"default":     5,
					"minimum":     1,
					"maximum":     25,
				},
				"use_cache": map[string]interface{}{
					"type":        "boolean",
					"description": "If true, serve repeated queries from the short-lived result cache",
					"default":     true,
				},
			},
			Required: []string{"query"},
		},
	}
}

// semanticSearchTool returns the tool definition for semantic_search_trips
func semanticSearchTool() mcp.Tool {
	return mcp.Tool{
		Name:        "semantic_search_trips",
		Description: "Search trips by extracted meaning: destinations with synonyms, trip status words, cost tier, dates, and client names",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"query": map[string]interface{}{
					"type":        "string",
					"description": "Natural language query (e.g. 'luxury hawaii honeymoon', 'ongoing trips in october')",
				},
				"max_results": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of results to return (1-25)",
					"default":     5,
					"minimum":     1,
					"maximum":     25,
				},
			},
			Required: []string{"query"},
		},
	}
}

// ensureFactsFreshTool returns the tool definition for ensure_facts_fresh
func ensureFactsFreshTool() mcp.Tool {
	return mcp.Tool{
		Name:        "ensure_facts_fresh",
		Description: "Recompute a trip's derived facts (nights, costs, counts) if pending mutations have made them stale",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"trip_id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip identifier",
				},
			},
			Required: []string{"trip_id"},
		},
	}
}

// bulkRefreshFactsTool returns the tool definition for bulk_refresh_facts
func bulkRefreshFactsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "bulk_refresh_facts",
		Description: "Sweep stale trips, oldest mutation first, and recompute their derived facts and search surfaces",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of trips to refresh in one sweep",
					"default":     50,
					"minimum":     1,
				},
			},
		},
	}
}

// reindexComponentsTool returns the tool definition for reindex_components
func reindexComponentsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "reindex_components",
		Description: "Rebuild the semantic components (clients, destinations, dates, cost tier, status) extracted from a trip",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"trip_id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip identifier",
				},
			},
			Required: []string{"trip_id"},
		},
	}
}

// upsertTripTool returns the tool definition for upsert_trip
func upsertTripTool() mcp.Tool {
	return mcp.Tool{
		Name:        "upsert_trip",
		Description: "Create or update a trip, optionally replacing its travelers and schedule, and refresh its derived data",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"trip_id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip identifier; omit to create a new trip",
				},
				"name": map[string]interface{}{
					"type":        "string",
					"description": "Trip name (e.g. \"Sara and Darren's Anniversary Trip\")",
				},
				"status": map[string]interface{}{
					"type":        "string",
					"description": "Trip lifecycle status",
					"enum":        []string{"planning", "confirmed", "in_progress", "completed", "cancelled"},
					"default":     "planning",
				},
				"start_date": map[string]interface{}{
					"type":        "string",
					"description": "Start date (YYYY-MM-DD)",
				},
				"end_date": map[string]interface{}{
					"type":        "string",
					"description": "End date (YYYY-MM-DD)",
				},
				"destinations": map[string]interface{}{
					"type":        "string",
					"description": "Destinations, comma or semicolon separated",
				},
				"total_cost": map[string]interface{}{
					"type":        "number",
					"description": "Booked trip cost; superseded by schedule costs when those are present",
				},
				"notes": map[string]interface{}{
					"type":        "string",
					"description": "Free-form notes",
				},
				"primary_email": map[string]interface{}{
					"type":        "string",
					"description": "Primary client email address",
				},
				"travelers": map[string]interface{}{
					"type":        "array",
					"description": "Full traveler list; replaces the existing travelers when present",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"name":  map[string]interface{}{"type": "string"},
							"email": map[string]interface{}{"type": "string"},
							"role": map[string]interface{}{
								"type": "string",
								"enum": []string{"primary", "companion"},
							},
						},
						"required": []string{"name"},
					},
				},
				"schedule": map[string]interface{}{
					"type":        "array",
					"description": "Full itinerary; replaces the existing schedule when present",
					"items": map[string]interface{}{
						"type": "object",
						"properties": map[string]interface{}{
							"kind": map[string]interface{}{
								"type": "string",
								"enum": []string{"hotel", "activity", "transit"},
							},
							"title":           map[string]interface{}{"type": "string"},
							"nights":          map[string]interface{}{"type": "integer"},
							"cost":            map[string]interface{}{"type": "number"},
							"transit_minutes": map[string]interface{}{"type": "integer"},
						},
						"required": []string{"kind", "title"},
					},
				},
			},
			Required: []string{"name"},
		},
	}
}

// getTripTool returns the tool definition for get_trip
func listTripsTool() mcp.Tool {
	return mcp.Tool{
		Name:        "list_trips",
		Description: "List trips most recently updated first",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Maximum number of trips to return",
					"default":     25,
					"minimum":     1,
				},
			},
		},
	}
}

func getTripTool() mcp.Tool {
	return mcp.Tool{
		Name:        "get_trip",
		Description: "Fetch a trip with its travelers, schedule, and derived facts, refreshing the facts when cheap to do so",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"trip_id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip identifier",
				},
			},
			Required: []string{"trip_id"},
		},
	}
}

// deleteTripTool returns the tool definition for delete_trip
func deleteTripTool() mcp.Tool {
	return mcp.Tool{
		Name:        "delete_trip",
		Description: "Delete a trip and all of its derived rows (travelers, schedule, facts, surfaces, components)",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"trip_id": map[string]interface{}{
					"type":        "integer",
					"description": "Trip identifier",
				},
			},
			Required: []string{"trip_id"},
		},
	}
}
