package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestServer(t *testing.T) *Server {
	t.Helper()
	server, err := NewServer(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = server.storage.Close() })
	return server
}

func callReq(name string, args map[string]interface{}) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Name = name
	req.Params.Arguments = args
	return req
}

// decodeResult unpacks the JSON text payload of a tool result.
func decodeResult(t *testing.T, result *mcp.CallToolResult) map[string]interface{} {
	t.Helper()
	require.NotNil(t, result)
	require.NotEmpty(t, result.Content)
	text, ok := result.Content[0].(mcp.TextContent)
	require.True(t, ok, "tool results are JSON text")

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(text.Text), &payload))
	return payload
}

func upsertAnniversaryTrip(t *testing.T, server *Server) int64 {
	t.Helper()
	result, err := server.handleUpsertTrip(context.Background(), callReq("upsert_trip", map[string]interface{}{
		"name":          "Sara and Darren's Anniversary Trip",
		"status":        "confirmed",
		"start_date":    "2025-10-05",
		"end_date":      "2025-10-12",
		"destinations":  "Bath, Bristol",
		"primary_email": "sara.jones@email.com",
		"travelers": []interface{}{
			map[string]interface{}{"name": "Sara Jones", "email": "sara.jones@email.com", "role": "primary"},
			map[string]interface{}{"name": "Darren Jones", "email": "darren.j@email.com", "role": "companion"},
		},
		"schedule": []interface{}{
			map[string]interface{}{"kind": "hotel", "title": "The Gainsborough", "nights": 4.0, "cost": 1800.0},
			map[string]interface{}{"kind": "activity", "title": "Thermae Bath Spa", "cost": 140.0},
		},
	}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, "sara-and-darrens-anniversary-trip", payload["slug"])
	return int64(payload["trip_id"].(float64))
}

func TestServerInitialization(t *testing.T) {
	server := setupTestServer(t)

	assert.NotNil(t, server.mcp, "MCP server should be initialized")
	assert.NotNil(t, server.storage, "Storage should be initialized")
	assert.NotNil(t, server.searcher, "Searcher should be initialized")
	assert.NotNil(t, server.semantic, "Semantic indexer should be initialized")
	assert.NotNil(t, server.facts, "Facts engine should be initialized")
}

func TestUpsertAndSearchRoundTrip(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleSearchTrips(context.Background(), callReq("search_trips", map[string]interface{}{
		"query": "sara bristol",
	}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, "primary", payload["tier"])
	matches := payload["matches"].([]interface{})
	require.NotEmpty(t, matches)
	top := matches[0].(map[string]interface{})
	assert.Equal(t, float64(tripID), top["trip_id"])
	assert.Equal(t, "Sara and Darren's Anniversary Trip", top["trip_name"])
}

func TestSearchNoResults(t *testing.T) {
	server := setupTestServer(t)
	upsertAnniversaryTrip(t, server)

	result, err := server.handleSearchTrips(context.Background(), callReq("search_trips", map[string]interface{}{
		"query": "zanzibar",
	}))
	require.NoError(t, err, "an exhausted search is a success, not an error")

	payload := decodeResult(t, result)
	assert.Equal(t, "exhausted", payload["tier"])
	assert.Equal(t, float64(0), payload["count"])
	assert.NotEmpty(t, payload["suggestion"])
}

func TestSearchEmptyQueryRejected(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleSearchTrips(context.Background(), callReq("search_trips", map[string]interface{}{
		"query": "",
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeEmptyQuery, mcpErr.Code)
}

func TestSearchNegativeLimitRejected(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleSearchTrips(context.Background(), callReq("search_trips", map[string]interface{}{
		"query": "bristol",
		"limit": float64(-1),
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestSemanticSearch(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleSemanticSearch(context.Background(), callReq("semantic_search_trips", map[string]interface{}{
		"query":       "anniversary trips in bath",
		"max_results": float64(3),
	}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	matches := payload["matches"].([]interface{})
	require.NotEmpty(t, matches)
	require.LessOrEqual(t, len(matches), 3)
	top := matches[0].(map[string]interface{})
	assert.Equal(t, float64(tripID), top["trip_id"])
	assert.NotEmpty(t, top["components"])

	_, err = server.handleSemanticSearch(context.Background(), callReq("semantic_search_trips", map[string]interface{}{
		"query":       "anniversary trips in bath",
		"max_results": float64(0),
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestEnsureFactsFresh(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleEnsureFactsFresh(context.Background(), callReq("ensure_facts_fresh", map[string]interface{}{
		"trip_id": float64(tripID),
	}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	facts := payload["facts"].(map[string]interface{})
	assert.Equal(t, float64(4), facts["total_nights"])
	assert.Equal(t, float64(1), facts["hotel_count"])
	assert.Equal(t, float64(1), facts["activity_count"])
	assert.Equal(t, float64(1940), facts["total_cost"])
	assert.Equal(t, float64(2), facts["traveler_count"])
}

func TestEnsureFactsFreshUnknownTrip(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleEnsureFactsFresh(context.Background(), callReq("ensure_facts_fresh", map[string]interface{}{
		"trip_id": float64(999),
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeTripNotFound, mcpErr.Code)
}

func TestBulkRefreshFacts(t *testing.T) {
	server := setupTestServer(t)

	result, err := server.handleBulkRefreshFacts(context.Background(), callReq("bulk_refresh_facts", map[string]interface{}{}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, float64(0), payload["refreshed"], "an empty catalog has nothing stale")
}

func TestReindexComponents(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleReindexComponents(context.Background(), callReq("reindex_components", map[string]interface{}{
		"trip_id": float64(tripID),
	}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Greater(t, payload["count"], float64(0))
	components := payload["components"].([]interface{})
	typesSeen := map[string]bool{}
	for _, c := range components {
		typesSeen[c.(map[string]interface{})["type"].(string)] = true
	}
	assert.True(t, typesSeen["destination"], "destinations produce components")
	assert.True(t, typesSeen["client"], "traveler names produce components")

	// A manual reindex also queues the trip for a derived-row refresh.
	n, err := server.storage.CountDirty(context.Background(), tripID)
	require.NoError(t, err)
	assert.Greater(t, n, 0)
}

func TestListTrips(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleListTrips(context.Background(), callReq("list_trips", map[string]interface{}{}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	assert.Equal(t, float64(1), payload["count"])
	trips := payload["trips"].([]interface{})
	require.Len(t, trips, 1)
	first := trips[0].(map[string]interface{})
	assert.Equal(t, float64(tripID), first["id"])
	assert.Equal(t, "sara-and-darrens-anniversary-trip", first["slug"])

	_, err = server.handleListTrips(context.Background(), callReq("list_trips", map[string]interface{}{
		"limit": float64(0),
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestGetTrip(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleGetTrip(context.Background(), callReq("get_trip", map[string]interface{}{
		"trip_id": float64(tripID),
	}))
	require.NoError(t, err)

	payload := decodeResult(t, result)
	trip := payload["trip"].(map[string]interface{})
	assert.Equal(t, "Sara and Darren's Anniversary Trip", trip["name"])
	assert.Equal(t, "2025-10-05", trip["start_date"])
	assert.Len(t, payload["travelers"], 2)
	assert.Len(t, payload["schedule"], 2)
	require.Contains(t, payload, "facts")
}

func TestDeleteTrip(t *testing.T) {
	server := setupTestServer(t)
	tripID := upsertAnniversaryTrip(t, server)

	result, err := server.handleDeleteTrip(context.Background(), callReq("delete_trip", map[string]interface{}{
		"trip_id": float64(tripID),
	}))
	require.NoError(t, err)
	payload := decodeResult(t, result)
	assert.Equal(t, true, payload["deleted"])

	_, err = server.handleGetTrip(context.Background(), callReq("get_trip", map[string]interface{}{
		"trip_id": float64(tripID),
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeTripNotFound, mcpErr.Code)
}

func TestUpsertTripValidation(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleUpsertTrip(context.Background(), callReq("upsert_trip", map[string]interface{}{
		"name":   "Mystery Trip",
		"status": "teleporting",
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidTrip, mcpErr.Code)

	_, err = server.handleUpsertTrip(context.Background(), callReq("upsert_trip", map[string]interface{}{
		"name":       "Bad Dates",
		"start_date": "10/05/2025",
	}))
	require.Error(t, err)
	mcpErr, ok = err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeInvalidParams, mcpErr.Code)
}

func TestUpsertTripUnknownIDRejected(t *testing.T) {
	server := setupTestServer(t)

	_, err := server.handleUpsertTrip(context.Background(), callReq("upsert_trip", map[string]interface{}{
		"trip_id": float64(4242),
		"name":    "Phantom Update",
		"status":  "planning",
	}))
	require.Error(t, err)
	mcpErr, ok := err.(*MCPError)
	require.True(t, ok)
	assert.Equal(t, ErrorCodeTripNotFound, mcpErr.Code)
}
