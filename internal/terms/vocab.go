package terms

// Keyword vocabularies used for token classification. The semantic indexer
// shares these sets so query-side and record-side extraction agree.

// Locations is the known destination keyword set.
var Locations = map[string]bool{
	"hawaii": true, "maui": true, "oahu": true, "kauai": true,
	"paris": true, "london": true, "rome": true, "florence": true,
	"venice": true, "barcelona": true, "madrid": true, "lisbon": true,
	"tokyo": true, "kyoto": true, "osaka": true, "bali": true,
	"bangkok": true, "singapore": true, "sydney": true, "auckland": true,
	"dublin": true, "edinburgh": true, "bath": true, "bristol": true,
	"york": true, "oxford": true, "cambridge": true,
	"cancun": true, "tulum": true, "cabo": true, "cozumel": true,
	"aspen": true, "vail": true, "tahoe": true, "orlando": true,
	"miami": true, "nashville": true, "sedona": true, "yellowstone": true,
	"yosemite": true, "alaska": true, "iceland": true, "greece": true,
	"santorini": true, "mykonos": true, "amalfi": true, "tuscany": true,
	"provence": true, "ireland": true, "scotland": true, "portugal": true,
	"morocco": true, "egypt": true, "kenya": true, "tanzania": true,
	"patagonia": true, "peru": true, "cusco": true, "galapagos": true,
	"fiji": true, "tahiti": true, "maldives": true, "seychelles": true,
	"caribbean": true, "bahamas": true, "bermuda": true, "aruba": true,
	"jamaica": true, "mexico": true, "italy": true, "france": true,
	"spain": true, "japan": true, "thailand": true, "vietnam": true,
	"england": true, "switzerland": true, "austria": true, "germany": true,
	"croatia": true, "norway": true, "sweden": true, "denmark": true,
}

// Descriptors is the trip-descriptor keyword set. Each entry is a themed
// label that travel agents use when searching ("the honeymoon trip").
var Descriptors = map[string]bool{
	"anniversary": true, "honeymoon": true, "birthday": true,
	"babymoon": true, "graduation": true, "retirement": true,
	"wedding": true, "elopement": true, "reunion": true,
	"cruise": true, "safari": true, "ski": true, "golf": true,
	"beach": true, "island": true, "wellness": true, "spa": true,
	"adventure": true, "hiking": true, "diving": true, "sailing": true,
	"cultural": true, "culinary": true, "wine": true, "historic": true,
	"romantic": true, "luxury": true, "budget": true, "family": true,
	"solo": true, "group": true, "corporate": true, "incentive": true,
}

// stopWords are filtered out of classified terms unless doing so would
// empty the query entirely.
var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true,
	"at": true, "be": true, "by": true, "for": true, "from": true,
	"he": true, "her": true, "his": true, "in": true, "is": true,
	"it": true, "its": true, "of": true, "on": true, "or": true,
	"our": true, "she": true, "that": true, "the": true, "their": true,
	"they": true, "this": true, "to": true, "was": true, "we": true,
	"were": true, "with": true, "you": true, "your": true,
}

// ImperativeWords are command-style tokens skipped when deriving a single
// primary term from a multi-token query ("show me all Hawaii trips").
var ImperativeWords = map[string]bool{
	"show": true, "find": true, "get": true, "create": true,
	"all": true, "new": true, "me": true, "list": true,
	"search": true, "lookup": true, "display": true,
}
