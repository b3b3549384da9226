package server

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordtrie/internal/logger"
	"github.com/bastiangx/wordtrie/internal/utils"
	"github.com/bastiangx/wordtrie/pkg/config"
	"github.com/bastiangx/wordtrie/pkg/suggest"
	"github.com/charmbracelet/log"
	"github.com/vmihailenco/msgpack/v5"
)

// defaultLimit is used when a request does not set "l".
const defaultLimit = 10

// Server handles msgpack IPC for one client stream.
type Server struct {
	completer suggest.ICompleter
	config    *config.Config
	dec       *msgpack.Decoder
	out       *bufio.Writer
	enc       *msgpack.Encoder
	logger    *log.Logger
	requests  int
}

// requestError is a failed request reported back to the client.
type requestError struct {
	msg  string
	code int
}

func (e *requestError) Error() string { return e.msg }

func badRequest(format string, args ...any) *requestError {
	return &requestError{msg: fmt.Sprintf(format, args...), code: 400}
}

// NewServer creates a completion server using stdin/stdout for IPC
func NewServer(completer suggest.ICompleter, cfg *config.Config) *Server {
	return NewServerWithIO(completer, cfg, os.Stdin, os.Stdout)
}

// NewServerWithIO creates a server reading requests from r and writing responses to w.
func NewServerWithIO(completer suggest.ICompleter, cfg *config.Config, r io.Reader, w io.Writer) *Server {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	out := bufio.NewWriter(w)
	enc := msgpack.NewEncoder(out)
	enc.UseCompactInts(true)
	return &Server{
		completer: completer,
		config:    cfg,
		dec:       msgpack.NewDecoder(bufio.NewReader(r)),
		out:       out,
		enc:       enc,
		logger:    logger.New("server"),
	}
}

// Start announces readiness and serves requests until the input ends.
// A request that is valid msgpack but not a valid request gets an error
// response; input that is not msgpack at all ends the stream with an error.
func (s *Server) Start() error {
	s.logger.Debug("Starting Server.")
	if err := s.send(StatusResponse{Status: "ready"}); err != nil {
		return err
	}

	for {
		raw, err := s.dec.DecodeRaw()
		if err != nil {
			if errors.Is(err, io.EOF) {
				s.logger.Debugf("Input closed after %d requests", s.requests)
				return nil
			}
			s.logger.Errorf("Reading request: %v", err)
			return fmt.Errorf("read request: %w", err)
		}

		var req Request
		if err := msgpack.Unmarshal(raw, &req); err != nil {
			s.logger.Warnf("Malformed request: %v", err)
			if err := s.send(CompletionError{Error: "invalid request", Code: 400}); err != nil {
				return err
			}
			continue
		}

		if err := s.send(s.Handle(req)); err != nil {
			return err
		}
	}
}

// Handle processes one request and returns the response to send.
func (s *Server) Handle(req Request) any {
	s.requests++
	start := time.Now()

	resp, err := s.dispatch(req, start)
	if err != nil {
		var reqErr *requestError
		if !errors.As(err, &reqErr) {
			reqErr = &requestError{msg: "internal server error", code: 500}
			s.logger.Errorf("Request %s failed: %v", req.ID, err)
		}
		s.logger.Debugf("Request %s rejected: %s", req.ID, reqErr.msg)
		return CompletionError{ID: req.ID, Error: reqErr.msg, Code: reqErr.code}
	}
	return resp
}

func (s *Server) dispatch(req Request, start time.Time) (any, error) {
	if n := utf8.RuneCountInString(req.Query); n > s.config.Server.MaxPrefix {
		return nil, badRequest("query exceeds maximum length of %d characters", s.config.Server.MaxPrefix)
	}

	switch req.Op {
	case OpComplete:
		return s.handleComplete(req, start)
	case OpFuzzy:
		return s.handleFuzzy(req, start)
	case OpSearch:
		found := s.completer.Search(req.Query, req.PrefixMode != nil && *req.PrefixMode)
		return SearchResponse{ID: req.ID, Found: found, TimeTaken: elapsed(start)}, nil
	case OpStats:
		stats := s.completer.Stats()
		stats["requests"] = s.requests
		return StatsResponse{ID: req.ID, Stats: stats, TimeTaken: elapsed(start)}, nil
	case OpHealth:
		return StatusResponse{ID: req.ID, Status: "ok"}, nil
	case "":
		return nil, badRequest("missing 'op'")
	default:
		return nil, badRequest("unknown op: %s", req.Op)
	}
}

func (s *Server) limit(req Request) (int, error) {
	if req.Limit < 0 {
		return 0, badRequest("limit must not be negative")
	}
	if req.Limit == 0 {
		return min(defaultLimit, s.config.Server.MaxLimit), nil
	}
	return min(req.Limit, s.config.Server.MaxLimit), nil
}

func (s *Server) distance(req Request) (int, error) {
	if req.Distance < 0 || req.Distance > s.config.Fuzzy.MaxDistance {
		return 0, badRequest("distance must be between 0 and %d", s.config.Fuzzy.MaxDistance)
	}
	return req.Distance, nil
}

func (s *Server) handleComplete(req Request, start time.Time) (any, error) {
	if utf8.RuneCountInString(req.Query) < s.config.Server.MinPrefix {
		return nil, badRequest("query must be at least %d characters", s.config.Server.MinPrefix)
	}
	limit, err := s.limit(req)
	if err != nil {
		return nil, err
	}
	k, err := s.distance(req)
	if err != nil {
		return nil, err
	}

	resp := CompletionResponse{ID: req.ID, Suggestions: []CompletionSuggestion{}}
	if s.config.Server.EnableFilter && !utils.IsValidInput(req.Query) {
		resp.TimeTaken = elapsed(start)
		return resp, nil
	}

	var suggestions []suggest.Suggestion
	if k > 0 && utf8.RuneCountInString(req.Query) >= s.config.Fuzzy.MinPrefix {
		suggestions = s.completer.CompleteFuzzy(req.Query, k, limit)
	} else {
		suggestions = s.completer.Complete(req.Query, limit)
	}

	ranks := utils.CreateRankList(len(suggestions))
	for i, sg := range suggestions {
		resp.Suggestions = append(resp.Suggestions, CompletionSuggestion{
			Word:     sg.Word,
			Rank:     ranks[i],
			Distance: sg.Distance,
		})
	}
	resp.Count = len(resp.Suggestions)
	resp.Corrected = len(suggestions) > 0 && suggestions[0].WasCorrected
	resp.TimeTaken = elapsed(start)
	return resp, nil
}

func (s *Server) handleFuzzy(req Request, start time.Time) (any, error) {
	limit, err := s.limit(req)
	if err != nil {
		return nil, err
	}
	k, err := s.distance(req)
	if err != nil {
		return nil, err
	}
	prefix := s.config.Fuzzy.PrefixMode
	if req.PrefixMode != nil {
		prefix = *req.PrefixMode
	}

	matches := s.completer.SearchFuzzy(req.Query, k, prefix)
	matches = matches[:min(len(matches), limit)]

	resp := FuzzyResponse{ID: req.ID, Matches: make([]FuzzyMatch, len(matches)), Count: len(matches)}
	for i, m := range matches {
		resp.Matches[i] = FuzzyMatch{Word: m.Word, Distance: m.Distance}
	}
	resp.TimeTaken = elapsed(start)
	return resp, nil
}

// send encodes a response and flushes it so the client sees it immediately.
func (s *Server) send(response any) error {
	if err := s.enc.Encode(response); err != nil {
		s.logger.Errorf("Encoding response: %v", err)
		return fmt.Errorf("encode response: %w", err)
	}
	if err := s.out.Flush(); err != nil {
		return fmt.Errorf("write response: %w", err)
	}
	return nil
}

func elapsed(start time.Time) int64 {
	return time.Since(start).Microseconds()
}
