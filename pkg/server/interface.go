/*
Package server implements msgpack IPC for word lookups and completions.

Clients write msgpack maps to the server's input (stdin in production) and
read one msgpack map back per request from its output. Requests are handled
in order, one at a time, and every response carries the request id and the
time spent in microseconds.

# Requests

Every request names an operation:

	{"id": "r1", "op": "complete", "q": "ame", "l": 24}
	{"id": "r2", "op": "complete", "q": "amre", "k": 1}
	{"id": "r3", "op": "fuzzy", "q": "atuo", "k": 2, "pm": false}
	{"id": "r4", "op": "search", "q": "america"}
	{"id": "r5", "op": "search", "q": "amer", "pm": true}
	{"id": "r6", "op": "stats"}
	{"id": "r7", "op": "health"}

"q" is the query, "k" the edit distance, "pm" selects prefix mode and "l"
limits the result count. When "pm" is missing, fuzzy requests use the
configured prefix mode and search requests check exact membership.

# Responses

Completions are ranked from 1, most frequent first:

	{"id": "r1", "s": [{"w": "amenity", "r": 1}, {"w": "america", "r": 2}], "c": 2, "t": 145}

Fuzzy matches are listed in lexicographic order with their distance:

	{"id": "r3", "m": [{"w": "atom", "d": 2}, {"w": "auto", "d": 2}], "c": 2, "t": 80}

Failures use a short error shape with HTTP-like codes:

	{"id": "r9", "e": "unknown op: frobnicate", "c": 400}
*/
package server

// Operations understood by the server.
const (
	OpSearch   = "search"
	OpFuzzy    = "fuzzy"
	OpComplete = "complete"
	OpStats    = "stats"
	OpHealth   = "health"
)

// Request is the single request shape for all operations.
type Request struct {
	ID         string `msgpack:"id"`
	Op         string `msgpack:"op"`
	Query      string `msgpack:"q"`
	Distance   int    `msgpack:"k,omitempty"`
	PrefixMode *bool  `msgpack:"pm,omitempty"`
	Limit      int    `msgpack:"l,omitempty"`
}

// CompletionSuggestion - minimal suggestion response
type CompletionSuggestion struct {
	Word     string `msgpack:"w"`
	Rank     uint16 `msgpack:"r"`
	Distance int    `msgpack:"d,omitempty"`
}

// CompletionResponse - completion response
type CompletionResponse struct {
	ID          string                 `msgpack:"id"`
	Suggestions []CompletionSuggestion `msgpack:"s"`
	Count       int                    `msgpack:"c"`
	Corrected   bool                   `msgpack:"x,omitempty"`
	TimeTaken   int64                  `msgpack:"t"`
}

// FuzzyMatch is one word found by a fuzzy search.
type FuzzyMatch struct {
	Word     string `msgpack:"w"`
	Distance int    `msgpack:"d"`
}

// FuzzyResponse - fuzzy search response
type FuzzyResponse struct {
	ID        string       `msgpack:"id"`
	Matches   []FuzzyMatch `msgpack:"m"`
	Count     int          `msgpack:"c"`
	TimeTaken int64        `msgpack:"t"`
}

// SearchResponse - exact or prefix membership response
type SearchResponse struct {
	ID        string `msgpack:"id"`
	Found     bool   `msgpack:"f"`
	TimeTaken int64  `msgpack:"t"`
}

// StatsResponse - dictionary statistics
type StatsResponse struct {
	ID        string         `msgpack:"id"`
	Stats     map[string]int `msgpack:"stats"`
	TimeTaken int64          `msgpack:"t"`
}

// StatusResponse is sent on startup and for health checks.
type StatusResponse struct {
	ID     string `msgpack:"id,omitempty"`
	Status string `msgpack:"status"`
}

// CompletionError holds basic error information for failed requests
type CompletionError struct {
	ID    string `msgpack:"id"`
	Error string `msgpack:"e"`
	Code  int    `msgpack:"c"`
}
