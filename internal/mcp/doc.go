// Package mcp implements the Model Context Protocol (MCP) server for TripSearch.
//
// The MCP server exposes the trip search core to AI assistants:
//   - search_trips: Progressive-fallback search over the trip catalog
//   - semantic_search_trips: Component-based search with destination synonyms
//   - ensure_facts_fresh: Recompute one trip's derived facts if stale
//   - bulk_refresh_facts: Sweep and recompute stale trips in bulk
//   - reindex_components: Rebuild a trip's semantic components
//   - upsert_trip: Create or update a trip with travelers and schedule
//   - list_trips: List trips most recently updated first
//   - get_trip: Fetch a trip with facts, travelers, and schedule
//   - delete_trip: Remove a trip and its derived rows
//
// # Protocol Overview
//
// MCP is a JSON-RPC 2.0 protocol over stdio transport:
//
//	Client → Server: {"method": "tools/call", "params": {...}}
//	Server → Client: {"result": {...}}
//
// The server communicates with MCP clients via standard input/output.
//
// # Tool: search_trips
//
// Search the catalog with anything a travel agent would type:
//
//	Request:
//	{
//	  "name": "search_trips",
//	  "arguments": {
//	    "query": "sara bristol 2025",
//	    "limit": 5
//	  }
//	}
//
//	Response:
//	{
//	  "query": "sara bristol 2025",
//	  "tier": "primary",
//	  "count": 2,
//	  "matches": [
//	    {
//	      "trip_id": 17,
//	      "trip_name": "Sara and Darren's Anniversary Trip",
//	      "slug": "sara-and-darrens-anniversary-trip",
//	      "score": 49,
//	      "reasons": ["search token match", "search token match", "confirmed trip", "2 travelers"]
//	    }
//	  ]
//	}
//
// When nothing matches, the response is still a success with an empty match
// list and a "suggestion" string; the fallback tiers never surface their
// internal degradation to the client.
//
// # Tool: upsert_trip
//
//	Request:
//	{
//	  "name": "upsert_trip",
//	  "arguments": {
//	    "name": "Hawaii Honeymoon",
//	    "status": "confirmed",
//	    "start_date": "2026-02-10",
//	    "destinations": "Maui, Kauai",
//	    "primary_email": "pat.lee@email.com",
//	    "travelers": [
//	      {"name": "Pat Lee", "email": "pat.lee@email.com", "role": "primary"}
//	    ],
//	    "schedule": [
//	      {"kind": "hotel", "title": "Grand Wailea", "nights": 5, "cost": 3200}
//	    ]
//	  }
//	}
//
// The write also recomputes the trip's facts, search surface, and semantic
// components so the trip is findable immediately.
//
// # Error Handling
//
// The server returns standard JSON-RPC error responses:
//
//	{
//	  "error": {
//	    "code": -32001,
//	    "message": "trip not found",
//	    "data": {"trip_id": 99}
//	  }
//	}
//
// Error codes:
//   - -32602: Invalid params (missing/invalid arguments)
//   - -32603: Internal error (database, filesystem, etc.)
//   - -32001: Trip not found
//   - -32002: Empty query
//   - -32003: Trip payload failed validation
//
// # Logging
//
// The server logs to stderr (stdout is reserved for MCP protocol):
//
//	log.SetOutput(os.Stderr)
//	log.Printf("MCP server started")
//
// # Configuration
//
// Environment:
//   - TRIPSEARCH_DB_PATH: database directory (default ~/.tripsearch)
//   - TRIPSEARCH_CONFIG: optional YAML file overriding scoring weights and limits
package mcp
