package semantic

// destinationSynonyms maps a normalized destination to alternate phrasings a
// client might use when asking for the trip.
var destinationSynonyms = map[string][]string{
	"hawaii":    {"hawaiian islands", "aloha state"},
	"maui":      {"hawaii", "valley isle"},
	"paris":     {"city of light", "france"},
	"london":    {"england", "uk"},
	"rome":      {"italy", "eternal city"},
	"venice":    {"italy"},
	"florence":  {"italy", "tuscany"},
	"tuscany":   {"italy", "wine country"},
	"bath":      {"england", "somerset"},
	"bristol":   {"england"},
	"tokyo":     {"japan"},
	"kyoto":     {"japan"},
	"bali":      {"indonesia", "island of the gods"},
	"santorini": {"greece", "greek islands"},
	"mykonos":   {"greece", "greek islands"},
	"cancun":    {"mexico", "riviera maya"},
	"tulum":     {"mexico", "riviera maya"},
	"aspen":     {"colorado", "rockies"},
	"tahoe":     {"california", "sierra"},
	"alaska":    {"last frontier"},
	"iceland":   {"land of fire and ice"},
	"maldives":  {"indian ocean"},
	"fiji":      {"south pacific"},
	"tahiti":    {"french polynesia", "south pacific"},
	"caribbean": {"islands", "tropics"},
	"patagonia": {"argentina", "chile"},
	"morocco":   {"marrakech", "north africa"},
	"kenya":     {"safari", "east africa"},
	"tanzania":  {"safari", "serengeti"},
}

// statusSynonyms maps a trip status to the words an agent uses for it.
var statusSynonyms = map[string][]string{
	"planning":    {"draft", "proposed", "quoting"},
	"confirmed":   {"booked", "upcoming", "reserved"},
	"in_progress": {"ongoing", "active", "traveling"},
	"completed":   {"past", "finished", "returned"},
	"cancelled":   {"canceled", "scrapped"},
}

// costSynonyms maps a cost bucket to equivalent phrasings.
var costSynonyms = map[string][]string{
	"budget":   {"affordable", "cheap", "economy"},
	"moderate": {"mid-range", "standard"},
	"premium":  {"high-end", "upscale"},
	"luxury":   {"deluxe", "five-star", "exclusive"},
}

// costBucketWords recognizes cost-bucket vocabulary in query text.
var costBucketWords = map[string]string{
	"budget": "budget", "affordable": "budget", "cheap": "budget", "economy": "budget",
	"moderate": "moderate", "mid-range": "moderate", "standard": "moderate",
	"premium": "premium", "high-end": "premium", "upscale": "premium",
	"luxury": "luxury", "deluxe": "luxury", "five-star": "luxury", "exclusive": "luxury",
}

// statusWords recognizes status vocabulary in query text.
var statusWords = map[string]string{
	"planning": "planning", "draft": "planning", "proposed": "planning",
	"confirmed": "confirmed", "booked": "confirmed", "upcoming": "confirmed",
	"ongoing": "in_progress", "active": "in_progress", "traveling": "in_progress",
	"completed": "completed", "past": "completed", "finished": "completed",
	"cancelled": "cancelled", "canceled": "cancelled",
}

// monthNames maps month tokens to their canonical lowercase name.
var monthNames = map[string]bool{
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
}
