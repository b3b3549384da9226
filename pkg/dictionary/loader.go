package dictionary

import (
	"bufio"
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"maps"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/bastiangx/wordtrie/internal/utils"
	"github.com/charmbracelet/log"
)

// ErrNoDictionary is returned when a directory holds no usable dictionary files.
var ErrNoDictionary = errors.New("no dictionary files found")

// Entry is one word read from a dictionary file.
type Entry struct {
	Word string
	Freq int
}

// SourceInfo describes a dictionary file found by the loader.
type SourceInfo struct {
	ID        int // chunk number, 0 for text lists
	Filename  string
	Format    FileFormat
	WordCount int
}

// Vocabulary is a loaded word set. Words is sorted and unique.
type Vocabulary struct {
	Words []string
	Freqs map[string]int
}

// MaxFrequency returns the highest frequency in the vocabulary.
func (v *Vocabulary) MaxFrequency() int {
	best := 0
	for _, f := range v.Freqs {
		best = max(best, f)
	}
	return best
}

// Loader reads dictionary files from a directory.
// Chunk files are read first in id order, then text lists by name.
type Loader struct {
	dirPath    string
	maxWords   int
	maxRetries int
	retryDelay time.Duration
}

// NewLoader creates a loader. A maxWords of 0 means no limit.
func NewLoader(dirPath string, maxWords int) *Loader {
	return &Loader{
		dirPath:    dirPath,
		maxWords:   max(maxWords, 0),
		maxRetries: 3,
		retryDelay: 250 * time.Millisecond,
	}
}

// SetRetryPolicy sets how often a failing file is retried and the base delay between attempts.
func (l *Loader) SetRetryPolicy(maxRetries int, delay time.Duration) {
	l.maxRetries = max(maxRetries, 1)
	l.retryDelay = delay
}

// ChunkFileName returns the file name of chunk id.
func ChunkFileName(id int) string {
	return fmt.Sprintf("dict_%04d.bin", id)
}

// GetAvailable scans the directory for dictionary files.
func (l *Loader) GetAvailable() ([]SourceInfo, error) {
	var sources []SourceInfo

	chunkFiles, err := filepath.Glob(filepath.Join(l.dirPath, "dict_*.bin"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for chunk files: %w", err)
	}
	for _, file := range chunkFiles {
		idStr := strings.TrimSuffix(strings.TrimPrefix(filepath.Base(file), "dict_"), ".bin")
		chunkID, err := strconv.Atoi(idStr)
		if err != nil {
			log.Debugf("Skipping %s: not a numbered chunk", file)
			continue
		}
		wordCount, err := chunkWordCount(file)
		if err != nil {
			log.Warnf("Failed to get word count for chunk %s: %v", file, err)
		}
		sources = append(sources, SourceInfo{
			ID:        chunkID,
			Filename:  file,
			Format:    FormatChunk,
			WordCount: wordCount,
		})
	}
	slices.SortFunc(sources, func(a, b SourceInfo) int { return a.ID - b.ID })

	textFiles, err := filepath.Glob(filepath.Join(l.dirPath, "*.txt"))
	if err != nil {
		return nil, fmt.Errorf("failed to scan for text files: %w", err)
	}
	slices.Sort(textFiles)
	for _, file := range textFiles {
		wordCount, err := textWordCount(file)
		if err != nil {
			log.Warnf("Failed to count words in %s: %v", file, err)
		}
		sources = append(sources, SourceInfo{
			Filename:  file,
			Format:    FormatText,
			WordCount: wordCount,
		})
	}

	return sources, nil
}

// Load reads sources until maxWords distinct words are collected.
func (l *Loader) Load(ctx context.Context) (*Vocabulary, error) {
	return l.load(ctx, l.maxWords)
}

// LoadAll reads every available source, ignoring maxWords.
func (l *Loader) LoadAll(ctx context.Context) (*Vocabulary, error) {
	return l.load(ctx, 0)
}

type loadResult struct {
	entries []Entry
	err     error
}

func (l *Loader) load(ctx context.Context, limit int) (*Vocabulary, error) {
	sources, err := l.GetAvailable()
	if err != nil {
		return nil, err
	}
	if len(sources) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoDictionary, l.dirPath)
	}

	// Only the sources needed to reach limit are read.
	if limit > 0 {
		total := 0
		for i, src := range sources {
			total += src.WordCount
			if total >= limit {
				sources = sources[:i+1]
				break
			}
		}
	}
	log.Debugf("Loading %d dictionary files from %s", len(sources), l.dirPath)

	results := make([]loadResult, len(sources))
	var wg sync.WaitGroup
	for i, src := range sources {
		wg.Add(1)
		go func() {
			defer wg.Done()
			entries, err := l.readWithRetry(ctx, src)
			results[i] = loadResult{entries: entries, err: err}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	freqs := make(map[string]int)
	var lastErr error
merge:
	for i, res := range results {
		if res.err != nil {
			log.Errorf("Skipping %s: %v", sources[i].Filename, res.err)
			lastErr = res.err
			continue
		}
		for _, e := range res.entries {
			if f, ok := freqs[e.Word]; ok {
				freqs[e.Word] = max(f, e.Freq)
				continue
			}
			if limit > 0 && len(freqs) >= limit {
				break merge
			}
			freqs[e.Word] = e.Freq
		}
	}

	if len(freqs) == 0 {
		if lastErr != nil {
			return nil, fmt.Errorf("%w in %s: %w", ErrNoDictionary, l.dirPath, lastErr)
		}
		return nil, fmt.Errorf("%w in %s", ErrNoDictionary, l.dirPath)
	}

	vocab := &Vocabulary{
		Words: slices.Sorted(maps.Keys(freqs)),
		Freqs: freqs,
	}
	log.Debugf("Loaded %s words from %d files", utils.FormatWithCommas(len(vocab.Words)), len(sources))
	return vocab, nil
}

func (l *Loader) readWithRetry(ctx context.Context, src SourceInfo) ([]Entry, error) {
	var err error
	for attempt := 1; attempt <= l.maxRetries; attempt++ {
		var entries []Entry
		entries, err = ReadFile(src.Filename, src.Format)
		if err == nil {
			return entries, nil
		}
		if attempt == l.maxRetries {
			break
		}
		log.Debugf("Retrying %s (attempt %d/%d): %v", src.Filename, attempt+1, l.maxRetries, err)
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(time.Duration(attempt) * l.retryDelay):
		}
	}
	return nil, fmt.Errorf("failed %d times: %w", l.maxRetries, err)
}

// ReadFile reads all entries of a dictionary file in the given format.
func ReadFile(filename string, format FileFormat) ([]Entry, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer file.Close()

	switch format {
	case FormatChunk:
		return ReadChunk(file)
	case FormatText:
		return ReadText(file)
	}
	return nil, fmt.Errorf("unknown format: %v", format)
}

// rankScore turns a 1-based rank into a score where rank 1 scores highest.
func rankScore(rank int) int {
	return math.MaxUint16 + 1 - min(rank, math.MaxUint16)
}

// ReadChunk decodes the binary chunk format: an int32 entry count followed by
// entries of uint16 length, word bytes and uint16 rank, all little-endian.
func ReadChunk(r io.Reader) ([]Entry, error) {
	reader := bufio.NewReader(r)

	var total int32
	if err := binary.Read(reader, binary.LittleEndian, &total); err != nil {
		return nil, fmt.Errorf("failed to read chunk header: %w", err)
	}
	if total < 0 || total > maxChunkWords {
		return nil, fmt.Errorf("invalid chunk word count %d", total)
	}

	entries := make([]Entry, 0, total)
	for i := range int(total) {
		var wordLen uint16
		if err := binary.Read(reader, binary.LittleEndian, &wordLen); err != nil {
			return nil, fmt.Errorf("entry %d: failed to read word length: %w", i, noEOF(err))
		}
		wordBytes := make([]byte, wordLen)
		if _, err := io.ReadFull(reader, wordBytes); err != nil {
			return nil, fmt.Errorf("entry %d: failed to read word: %w", i, noEOF(err))
		}
		var rank uint16
		if err := binary.Read(reader, binary.LittleEndian, &rank); err != nil {
			return nil, fmt.Errorf("entry %d: failed to read rank: %w", i, noEOF(err))
		}

		if wordLen == 0 || !utf8.Valid(wordBytes) {
			log.Debugf("Skipping invalid word at entry %d", i)
			continue
		}
		entries = append(entries, Entry{Word: string(wordBytes), Freq: rankScore(int(rank))})
	}
	return entries, nil
}

// ReadText decodes a word list with one "word [frequency]" per line.
// Blank lines and lines starting with '#' are skipped. Words without a
// frequency are scored by their position in the list.
func ReadText(r io.Reader) ([]Entry, error) {
	var entries []Entry
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if !utf8.ValidString(fields[0]) {
			log.Debugf("Skipping invalid UTF-8 at line %d", lineNo)
			continue
		}

		freq := rankScore(len(entries) + 1)
		if len(fields) > 1 {
			n, err := strconv.Atoi(fields[1])
			if err != nil || n < 0 {
				return nil, fmt.Errorf("line %d: invalid frequency %q", lineNo, fields[1])
			}
			freq = n
		}
		entries = append(entries, Entry{Word: fields[0], Freq: freq})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read word list: %w", err)
	}
	return entries, nil
}

// WriteChunk writes words in the binary chunk format. Words must be ordered
// most frequent first; their position becomes the stored rank.
func WriteChunk(w io.Writer, words []string) error {
	if len(words) > maxChunkWords {
		return fmt.Errorf("too many words for one chunk: %d", len(words))
	}
	bw := bufio.NewWriter(w)
	if err := binary.Write(bw, binary.LittleEndian, int32(len(words))); err != nil {
		return err
	}
	ranks := utils.CreateRankList(len(words))
	for i, word := range words {
		if len(word) > math.MaxUint16 {
			return fmt.Errorf("word %d is too long: %d bytes", i, len(word))
		}
		if err := binary.Write(bw, binary.LittleEndian, uint16(len(word))); err != nil {
			return err
		}
		if _, err := bw.WriteString(word); err != nil {
			return err
		}
		if err := binary.Write(bw, binary.LittleEndian, ranks[i]); err != nil {
			return err
		}
	}
	return bw.Flush()
}

func chunkWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	var wordCount int32
	if err := binary.Read(file, binary.LittleEndian, &wordCount); err != nil {
		return 0, err
	}
	return int(wordCount), nil
}

func textWordCount(filename string) (int, error) {
	file, err := os.Open(filename)
	if err != nil {
		return 0, err
	}
	defer file.Close()

	count := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" && !strings.HasPrefix(line, "#") {
			count++
		}
	}
	return count, scanner.Err()
}

func noEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}
