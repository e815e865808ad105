package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/voyagehq/tripsearch-mcp/internal/searcher"
	"github.com/voyagehq/tripsearch-mcp/internal/storage"
	"github.com/voyagehq/tripsearch-mcp/pkg/types"
)

// MCP error codes
const (
	ErrorCodeInvalidParams = -32602 // Invalid method parameters
	ErrorCodeInternalError = -32603 // Internal JSON-RPC error
	ErrorCodeTripNotFound  = -32001 // Referenced trip does not exist
	ErrorCodeEmptyQuery    = -32002 // Query parameter is empty
	ErrorCodeInvalidTrip   = -32003 // Trip payload failed validation
)

// dateLayout is the wire format for trip dates.
const dateLayout = "2006-01-02"

// handleSearchTrips handles the search_trips tool invocation
func (s *Server) handleSearchTrips(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	limit := getIntDefault(args, "limit", 0)
	useCache := getBoolDefault(args, "use_cache", true)

	outcome, err := s.searcher.Search(ctx, searcher.Request{
		Query:    query,
		Limit:    limit,
		UseCache: useCache,
	})
	if errors.Is(err, types.ErrEmptyQuery) {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query cannot be empty", nil)
	}
	if errors.Is(err, types.ErrInvalidLimit) {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must not be negative", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	matches := make([]map[string]interface{}, 0, len(outcome.Matches))
	for _, m := range outcome.Matches {
		matches = append(matches, formatMatch(m))
	}
	response := map[string]interface{}{
		"query":       outcome.Query,
		"tier":        string(outcome.Tier),
		"count":       len(matches),
		"matches":     matches,
		"duration_ms": outcome.Duration.Milliseconds(),
		"cache_hit":   outcome.CacheHit,
	}
	if outcome.Empty() {
		response["suggestion"] = outcome.Suggestion
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleSemanticSearch handles the semantic_search_trips tool invocation
func (s *Server) handleSemanticSearch(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	query, ok := args["query"].(string)
	if !ok || query == "" {
		return nil, newMCPError(ErrorCodeEmptyQuery, "query parameter is required and cannot be empty", map[string]interface{}{
			"param":  "query",
			"reason": "missing or empty",
		})
	}

	maxResults := getIntDefault(args, "max_results", 5)
	if maxResults < 1 || maxResults > 25 {
		return nil, newMCPError(ErrorCodeInvalidParams, "max_results must be between 1 and 25", map[string]interface{}{
			"param": "max_results",
			"value": maxResults,
		})
	}

	results, err := s.semantic.Search(ctx, query, maxResults)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "semantic search failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	matches := make([]map[string]interface{}, 0, len(results))
	for _, m := range results {
		matches = append(matches, map[string]interface{}{
			"trip_id":    m.TripID,
			"trip_name":  m.TripName,
			"score":      m.Score,
			"components": m.Components,
		})
	}
	response := map[string]interface{}{
		"query":   query,
		"count":   len(matches),
		"matches": matches,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleEnsureFactsFresh handles the ensure_facts_fresh tool invocation
func (s *Server) handleEnsureFactsFresh(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tripID, err := requireTripID(args)
	if err != nil {
		return nil, err
	}

	refreshed, err := s.facts.EnsureFresh(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, tripNotFound(tripID)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "facts refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	row, err := s.storage.GetFacts(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, tripNotFound(tripID)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to read facts", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"trip_id":   tripID,
		"refreshed": refreshed,
		"facts":     formatFacts(row),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleBulkRefreshFacts handles the bulk_refresh_facts tool invocation
func (s *Server) handleBulkRefreshFacts(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	limit := getIntDefault(args, "limit", 0)
	if limit < 0 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must not be negative", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	refreshed, err := s.facts.RefreshBatch(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "bulk refresh failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"refreshed": refreshed,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleReindexComponents handles the reindex_components tool invocation
func (s *Server) handleReindexComponents(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tripID, err := requireTripID(args)
	if err != nil {
		return nil, err
	}

	if err := s.semantic.Reindex(ctx, tripID); errors.Is(err, storage.ErrNotFound) {
		return nil, tripNotFound(tripID)
	} else if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "reindex failed", map[string]interface{}{
			"error": err.Error(),
		})
	}

	// A manual reindex also marks the trip stale so the facts row and search
	// surface rebuild on the next access or batch sweep.
	if err := s.storage.EnqueueDirty(ctx, tripID, storage.ReasonManualReindex); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to mark trip for refresh", map[string]interface{}{
			"error": err.Error(),
		})
	}

	components, err := s.storage.ListComponents(ctx, tripID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list components", map[string]interface{}{
			"error": err.Error(),
		})
	}

	formatted := make([]map[string]interface{}, 0, len(components))
	for _, c := range components {
		formatted = append(formatted, map[string]interface{}{
			"type":   string(c.Type),
			"value":  c.Value,
			"weight": c.Weight,
		})
	}
	response := map[string]interface{}{
		"trip_id":    tripID,
		"count":      len(formatted),
		"components": formatted,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleUpsertTrip handles the upsert_trip tool invocation
func (s *Server) handleUpsertTrip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	trip, err := tripFromArgs(args)
	if err != nil {
		return nil, err
	}

	if err := s.storage.UpsertTrip(ctx, trip); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, tripNotFound(trip.ID)
		}
		if errors.Is(err, types.ErrEmptyTripName) || errors.Is(err, types.ErrInvalidStatus) {
			return nil, newMCPError(ErrorCodeInvalidTrip, "trip failed validation", map[string]interface{}{
				"reason": err.Error(),
			})
		}
		return nil, newMCPError(ErrorCodeInternalError, "failed to save trip", map[string]interface{}{
			"error": err.Error(),
		})
	}

	if travelers, present := travelersFromArgs(args); present {
		if err := s.storage.ReplaceTravelers(ctx, trip.ID, travelers); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to save travelers", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}
	if schedule, present := scheduleFromArgs(args); present {
		if err := s.storage.ReplaceSchedule(ctx, trip.ID, schedule); err != nil {
			return nil, newMCPError(ErrorCodeInternalError, "failed to save schedule", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}

	// Recompute derived rows eagerly so the trip is searchable right away.
	// The dirty markers recorded above still cover any crash in between.
	if err := s.facts.Recompute(ctx, trip.ID); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to compute trip facts", map[string]interface{}{
			"error": err.Error(),
		})
	}
	if err := s.semantic.Reindex(ctx, trip.ID); err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to index trip components", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"trip_id": trip.ID,
		"slug":    trip.Slug,
		"name":    trip.Name,
		"status":  string(trip.Status),
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleGetTrip handles the get_trip tool invocation
func (s *Server) handleGetTrip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tripID, err := requireTripID(args)
	if err != nil {
		return nil, err
	}

	trip, factsRow, err := s.facts.TripWithFacts(ctx, tripID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, tripNotFound(tripID)
	}
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to get trip", map[string]interface{}{
			"error": err.Error(),
		})
	}

	travelers, err := s.storage.ListTravelers(ctx, tripID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list travelers", map[string]interface{}{
			"error": err.Error(),
		})
	}
	schedule, err := s.storage.ListSchedule(ctx, tripID)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list schedule", map[string]interface{}{
			"error": err.Error(),
		})
	}

	travelerList := make([]map[string]interface{}, 0, len(travelers))
	for _, tv := range travelers {
		travelerList = append(travelerList, map[string]interface{}{
			"name":  tv.Name,
			"email": tv.Email,
			"role":  string(tv.Role),
		})
	}
	scheduleList := make([]map[string]interface{}, 0, len(schedule))
	for _, item := range schedule {
		scheduleList = append(scheduleList, map[string]interface{}{
			"kind":            string(item.Kind),
			"title":           item.Title,
			"nights":          item.Nights,
			"cost":            item.Cost,
			"transit_minutes": item.TransitMinutes,
		})
	}

	response := map[string]interface{}{
		"trip": map[string]interface{}{
			"id":            trip.ID,
			"name":          trip.Name,
			"slug":          trip.Slug,
			"status":        string(trip.Status),
			"start_date":    formatDate(trip.StartDate),
			"end_date":      formatDate(trip.EndDate),
			"destinations":  trip.Destinations,
			"total_cost":    trip.TotalCost,
			"notes":         trip.Notes,
			"primary_email": trip.PrimaryEmail,
		},
		"travelers": travelerList,
		"schedule":  scheduleList,
	}
	if factsRow != nil {
		response["facts"] = formatFacts(factsRow)
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

func (s *Server) handleListTrips(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		args = map[string]interface{}{}
	}

	limit := getIntDefault(args, "limit", 25)
	if limit < 1 {
		return nil, newMCPError(ErrorCodeInvalidParams, "limit must be >= 1", map[string]interface{}{
			"param": "limit",
			"value": limit,
		})
	}

	trips, err := s.storage.ListTrips(ctx, limit)
	if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to list trips", map[string]interface{}{
			"error": err.Error(),
		})
	}

	formatted := make([]map[string]interface{}, 0, len(trips))
	for _, trip := range trips {
		formatted = append(formatted, map[string]interface{}{
			"id":           trip.ID,
			"name":         trip.Name,
			"slug":         trip.Slug,
			"status":       string(trip.Status),
			"destinations": trip.Destinations,
			"updated_at":   trip.UpdatedAt.Format(time.RFC3339),
		})
	}
	response := map[string]interface{}{
		"count": len(formatted),
		"trips": formatted,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// handleDeleteTrip handles the delete_trip tool invocation
func (s *Server) handleDeleteTrip(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args, ok := request.Params.Arguments.(map[string]interface{})
	if !ok {
		return nil, newMCPError(ErrorCodeInvalidParams, "invalid arguments", nil)
	}

	tripID, err := requireTripID(args)
	if err != nil {
		return nil, err
	}

	if err := s.storage.DeleteTrip(ctx, tripID); errors.Is(err, storage.ErrNotFound) {
		return nil, tripNotFound(tripID)
	} else if err != nil {
		return nil, newMCPError(ErrorCodeInternalError, "failed to delete trip", map[string]interface{}{
			"error": err.Error(),
		})
	}

	response := map[string]interface{}{
		"trip_id": tripID,
		"deleted": true,
	}

	return mcp.NewToolResultText(formatJSON(response)), nil
}

// Helper functions

// newMCPError creates a properly formatted MCP error
func newMCPError(code int, message string, data interface{}) error {
	// MCP errors are returned as regular errors, the framework handles encoding
	return &MCPError{
		Code:    code,
		Message: message,
		Data:    data,
	}
}

// MCPError represents an MCP protocol error
type MCPError struct {
	Code    int
	Message string
	Data    interface{}
}

func (e *MCPError) Error() string {
	return fmt.Sprintf("MCP error %d: %s", e.Code, e.Message)
}

func tripNotFound(tripID int64) error {
	return newMCPError(ErrorCodeTripNotFound, "trip not found", map[string]interface{}{
		"trip_id": tripID,
	})
}

// requireTripID extracts the mandatory trip_id parameter.
func requireTripID(args map[string]interface{}) (int64, error) {
	id := getInt64(args, "trip_id")
	if id <= 0 {
		return 0, newMCPError(ErrorCodeInvalidParams, "trip_id parameter is required", map[string]interface{}{
			"param":  "trip_id",
			"reason": "missing or not a positive integer",
		})
	}
	return id, nil
}

// tripFromArgs builds a trip entity from tool arguments.
func tripFromArgs(args map[string]interface{}) (*types.Trip, error) {
	name, ok := args["name"].(string)
	if !ok || name == "" {
		return nil, newMCPError(ErrorCodeInvalidParams, "name parameter is required", map[string]interface{}{
			"param":  "name",
			"reason": "missing or empty",
		})
	}

	trip := &types.Trip{
		ID:           getInt64(args, "trip_id"),
		Name:         name,
		Status:       types.TripStatus(getStringDefault(args, "status", string(types.StatusPlanning))),
		Destinations: getStringDefault(args, "destinations", ""),
		TotalCost:    getFloatDefault(args, "total_cost", 0),
		Notes:        getStringDefault(args, "notes", ""),
		PrimaryEmail: getStringDefault(args, "primary_email", ""),
	}
	if !types.ValidStatus(trip.Status) {
		return nil, newMCPError(ErrorCodeInvalidTrip, "invalid trip status", map[string]interface{}{
			"param": "status",
			"value": string(trip.Status),
		})
	}

	var err error
	if trip.StartDate, err = parseDate(args, "start_date"); err != nil {
		return nil, err
	}
	if trip.EndDate, err = parseDate(args, "end_date"); err != nil {
		return nil, err
	}

	return trip, nil
}

// travelersFromArgs parses the optional travelers array. The second return
// distinguishes "absent" from "explicitly empty".
func travelersFromArgs(args map[string]interface{}) ([]types.Traveler, bool) {
	raw, ok := args["travelers"].([]interface{})
	if !ok {
		return nil, false
	}
	travelers := make([]types.Traveler, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		travelers = append(travelers, types.Traveler{
			Name:  getStringDefault(m, "name", ""),
			Email: getStringDefault(m, "email", ""),
			Role:  types.TravelerRole(getStringDefault(m, "role", string(types.RoleCompanion))),
		})
	}
	return travelers, true
}

// scheduleFromArgs parses the optional schedule array.
func scheduleFromArgs(args map[string]interface{}) ([]types.ScheduleItem, bool) {
	raw, ok := args["schedule"].([]interface{})
	if !ok {
		return nil, false
	}
	items := make([]types.ScheduleItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]interface{})
		if !ok {
			continue
		}
		items = append(items, types.ScheduleItem{
			Kind:           types.ScheduleKind(getStringDefault(m, "kind", string(types.ScheduleActivity))),
			Title:          getStringDefault(m, "title", ""),
			Nights:         getIntDefault(m, "nights", 0),
			Cost:           getFloatDefault(m, "cost", 0),
			TransitMinutes: getIntDefault(m, "transit_minutes", 0),
		})
	}
	return items, true
}

func parseDate(args map[string]interface{}, key string) (time.Time, error) {
	raw := getStringDefault(args, key, "")
	if raw == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse(dateLayout, raw)
	if err != nil {
		return time.Time{}, newMCPError(ErrorCodeInvalidParams, "invalid date", map[string]interface{}{
			"param":  key,
			"value":  raw,
			"reason": "expected YYYY-MM-DD",
		})
	}
	return parsed.UTC(), nil
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(dateLayout)
}

func formatMatch(m types.RankedMatch) map[string]interface{} {
	return map[string]interface{}{
		"trip_id":        m.TripID,
		"trip_name":      m.TripName,
		"slug":           m.Slug,
		"status":         string(m.Status),
		"destinations":   m.Destinations,
		"score":          m.Score,
		"matched_tokens": m.MatchedTokens,
		"reasons":        m.Reasons,
	}
}

func formatFacts(row *storage.FactsRow) map[string]interface{} {
	return map[string]interface{}{
		"total_nights":    row.TotalNights,
		"hotel_count":     row.HotelCount,
		"activity_count":  row.ActivityCount,
		"total_cost":      row.TotalCost,
		"transit_minutes": row.TransitMinutes,
		"traveler_count":  row.TravelerCount,
		"traveler_names":  row.TravelerNames,
		"version":         row.Version,
		"last_computed":   row.LastComputed.Format(time.RFC3339),
	}
}

// formatJSON formats a map as indented JSON
func formatJSON(data map[string]interface{}) string {
	bytes, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", data)
	}
	return string(bytes)
}

// getBoolDefault extracts a boolean parameter with a default value
func getBoolDefault(args map[string]interface{}, key string, defaultValue bool) bool {
	if val, ok := args[key].(bool); ok {
		return val
	}
	return defaultValue
}

// getIntDefault extracts an integer parameter with a default value
func getIntDefault(args map[string]interface{}, key string, defaultValue int) int {
	if val, ok := args[key].(float64); ok {
		return int(val)
	}
	if val, ok := args[key].(int); ok {
		return val
	}
	return defaultValue
}

// getInt64 extracts an integer parameter, returning zero when absent
func getInt64(args map[string]interface{}, key string) int64 {
	if val, ok := args[key].(float64); ok {
		return int64(val)
	}
	if val, ok := args[key].(int64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return int64(val)
	}
	return 0
}

// getFloatDefault extracts a float parameter with a default value
func getFloatDefault(args map[string]interface{}, key string, defaultValue float64) float64 {
	if val, ok := args[key].(float64); ok {
		return val
	}
	if val, ok := args[key].(int); ok {
		return float64(val)
	}
	return defaultValue
}

// getStringDefault extracts a string parameter with a default value
func getStringDefault(args map[string]interface{}, key string, defaultValue string) string {
	if val, ok := args[key].(string); ok {
		return val
	}
	return defaultValue
}
