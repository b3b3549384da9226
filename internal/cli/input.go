// Package cli handles cmd line input for trying out lookups and completions interactively.
package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordtrie/internal/logger"
	"github.com/bastiangx/wordtrie/internal/utils"
	"github.com/bastiangx/wordtrie/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	wordStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	hitStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	missStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("203"))
)

// Command prefixes typed in front of a word.
const (
	fuzzyCmd  = '~'
	exactCmd  = '='
	prefixCmd = '^'
)

// InputHandler reads one query per line and prints results.
//
//	word    complete word
//	~word   complete word allowing typos
//	=word   check that word is in the dictionary
//	^word   check that some dictionary word starts with word
type InputHandler struct {
	completer       suggest.ICompleter
	minPrefixLength int
	maxPrefixLength int
	suggestLimit    int
	fuzzyDistance   int
	noFilter        bool
	requestCount    int
	logger          *log.Logger
}

// NewInputHandler handles initialization of the InputHandler with basic parameters
func NewInputHandler(completer suggest.ICompleter, minLength, maxLength, limit int, noFilter bool) *InputHandler {
	return &InputHandler{
		completer:       completer,
		minPrefixLength: minLength,
		maxPrefixLength: maxLength,
		suggestLimit:    limit,
		fuzzyDistance:   1,
		noFilter:        noFilter,
		logger:          logger.New("cli"),
	}
}

// SetFuzzyDistance sets the edit distance used by "~" queries.
func (h *InputHandler) SetFuzzyDistance(k int) {
	h.fuzzyDistance = max(k, 0)
}

// Start runs the loop on stdin/stdout.
func (h *InputHandler) Start() error {
	return h.Run(os.Stdin, os.Stdout)
}

// Run reads queries from r until it is exhausted, writing results to w.
func (h *InputHandler) Run(r io.Reader, w io.Writer) error {
	fmt.Fprintln(w, titleStyle.Render("wordtrie CLI"))
	fmt.Fprintln(w, mutedStyle.Render("type a word and press Enter. ~word allows typos, =word checks a word, ^word checks a prefix (Ctrl+D to exit)"))

	reader := bufio.NewReader(r)
	for {
		fmt.Fprint(w, "> ")
		line, err := reader.ReadString('\n')
		if line = strings.TrimSpace(line); line != "" {
			h.handleInput(w, line)
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				fmt.Fprintln(w)
				return nil
			}
			return err
		}
	}
}

func (h *InputHandler) handleInput(w io.Writer, input string) {
	h.requestCount++

	switch input[0] {
	case exactCmd:
		h.handleSearch(w, input[1:], false)
	case prefixCmd:
		h.handleSearch(w, input[1:], true)
	case fuzzyCmd:
		h.handleComplete(w, input[1:], h.fuzzyDistance)
	default:
		h.handleComplete(w, input, 0)
	}
}

func (h *InputHandler) handleSearch(w io.Writer, query string, prefix bool) {
	start := time.Now()
	found := h.completer.Search(query, prefix)
	h.logger.Debugf("Took [ %v ] for search '%s'", time.Since(start), query)

	kind := "word"
	if prefix {
		kind = "prefix"
	}
	if found {
		fmt.Fprintf(w, "%s %s %s\n", kind, wordStyle.Render(query), hitStyle.Render("found"))
	} else {
		fmt.Fprintf(w, "%s %s %s\n", kind, wordStyle.Render(query), missStyle.Render("not found"))
	}
}

func (h *InputHandler) handleComplete(w io.Writer, prefix string, k int) {
	n := utf8.RuneCountInString(prefix)
	if n < h.minPrefixLength {
		fmt.Fprintln(w, missStyle.Render(fmt.Sprintf("prefix too short: '%s'", prefix)))
		return
	}
	if n > h.maxPrefixLength {
		fmt.Fprintln(w, missStyle.Render(fmt.Sprintf("prefix too long: '%s'", prefix)))
		return
	}
	if !h.noFilter && !utils.IsValidInput(prefix) {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("no suggestions for '%s' (filtered out)", prefix)))
		return
	}

	start := time.Now()
	var suggestions []suggest.Suggestion
	if k > 0 {
		suggestions = h.completer.CompleteFuzzy(prefix, k, h.suggestLimit)
	} else {
		suggestions = h.completer.Complete(prefix, h.suggestLimit)
	}
	h.logger.Debugf("Took [ %v ] for prefix '%s'", time.Since(start), prefix)

	if len(suggestions) == 0 {
		fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("no suggestions for '%s'", prefix)))
		return
	}

	fmt.Fprintf(w, "Found %d suggestions for '%s':\n", len(suggestions), prefix)
	for i, s := range suggestions {
		line := fmt.Sprintf("%2d. %-24s %s", i+1, wordStyle.Render(s.Word),
			mutedStyle.Render(fmt.Sprintf("(freq: %8s)", utils.FormatWithCommas(s.Frequency))))
		if s.WasCorrected {
			line += mutedStyle.Render(fmt.Sprintf(" ~%d", s.Distance))
		}
		fmt.Fprintln(w, line)
	}
}
