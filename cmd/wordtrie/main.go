// Copyright 2025 The WordServe Authors. All rights reserved.
// Use of this source code is governed by an MIT-style
// license that can be found in the LICENSE file.

/*
Package main runs the wordtrie completion server, its interactive CLI and
the dictionary packing tool.

Words are loaded once into a flattened prefix trie. Lookups, completions and
typo tolerant completions are then served over MessagePack on stdin/stdout,
or typed in by hand in CLI mode.

# Usage

Start the server with default settings:

	wordtrie

Use a custom data directory and enable debug logs:

	wordtrie -data /path/to/dict -d

Run the CLI for interactive testing:

	wordtrie -c -limit 10 -prmin 2

Pack a frequency-ordered word list into chunk files:

	wordtrie -pack words.txt -chunk 10000 -data out/

The data directory holds chunk files named dict_0001.bin, dict_0002.bin and
so on, and/or plain text lists (*.txt) with one "word [frequency]" per line.

# Configuration

Settings live in a TOML file, created with defaults on first start:

	[server]
	max_limit = 64
	min_prefix = 1
	max_prefix = 60
	enable_filter = true

	[dict]
	data_dir = "data/"
	max_words = 50000
	min_frequency_threshold = 20
	min_frequency_short_prefix = 24
	hot_words = 2000

	[fuzzy]
	max_distance = 2
	prefix_mode = true
	min_prefix = 3

Flags given on the command line take precedence over the file.

# Command Line Flags

	-config string
	    Path to a config file
	-data string
	    Directory containing dictionary files
	-d  Enable debug mode with detailed logging
	-c  Run in CLI mode instead of server mode
	-limit int
	    Number of suggestions to return in CLI mode
	-prmin int
	    Minimum prefix length for suggestions
	-prmax int
	    Maximum prefix length for suggestions
	-k int
	    Edit distance for "~" queries in CLI mode
	-no-filter
	    Disable input filtering for debugging
	-words int
	    Maximum words to load (0 for all)
	-pack string
	    Word list to pack into chunk files, then exit
	-chunk int
	    Words per chunk file when packing
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/bastiangx/wordtrie/internal/cli"
	"github.com/bastiangx/wordtrie/internal/logger"
	"github.com/bastiangx/wordtrie/internal/utils"
	"github.com/bastiangx/wordtrie/pkg/config"
	"github.com/bastiangx/wordtrie/pkg/dictionary"
	"github.com/bastiangx/wordtrie/pkg/server"
	"github.com/bastiangx/wordtrie/pkg/suggest"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

const (
	Version = "0.1.0"
	AppName = "wordtrie"
	gh      = "https://github.com/bastiangx/wordtrie"
)

// main only manages the flow; the packages do the work.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	defaultConfig := config.DefaultConfig()

	showVersion := flag.Bool("version", false, "Show current version")
	configFile := flag.String("config", "", "Path to a config file")
	dataDir := flag.String("data", "", "Directory containing the dictionary files (default from config)")
	debugMode := flag.Bool("d", false, "Toggle debug mode")
	cliMode := flag.Bool("c", false, "Run CLI -- useful for testing and debugging")
	limit := flag.Int("limit", defaultConfig.CLI.DefaultLimit, "Number of suggestions to return")
	minPrefix := flag.Int("prmin", defaultConfig.CLI.DefaultMinLen, "Minimum prefix length for suggestions (1 < n <= prmax)")
	maxPrefix := flag.Int("prmax", defaultConfig.CLI.DefaultMaxLen, "Maximum prefix length for suggestions")
	distance := flag.Int("k", 1, "Edit distance for ~ queries in CLI mode")
	noFilter := flag.Bool("no-filter", defaultConfig.CLI.DefaultNoFilter, "Disable input filtering (DBG only)")
	wordLimit := flag.Int("words", -1, "Maximum number of words to load, 0 for all (default from config)")
	packFile := flag.String("pack", "", "Pack a frequency-ordered word list into chunk files and exit")
	chunkSize := flag.Int("chunk", 10000, "Number of words per chunk file when packing")

	flag.Parse()

	if *showVersion {
		printVersion()
		return
	}

	logger.Setup(*debugMode)

	appConfig, configPath, err := config.LoadConfigWithPriority(*configFile)
	if err != nil {
		log.Warnf("Failed to load config: %v. Using defaults.", err)
		appConfig = defaultConfig
	}
	log.Debugf("Using config file: (%s)", config.GetActiveConfigPath(configPath))

	if *dataDir != "" {
		appConfig.Dict.DataDir = *dataDir
	}
	if *wordLimit >= 0 {
		appConfig.Dict.MaxWords = *wordLimit
	}

	if *packFile != "" {
		if err := pack(*packFile, appConfig.Dict.DataDir, *chunkSize); err != nil {
			log.Fatalf("Failed to pack %s: %v", *packFile, err)
		}
		return
	}

	resolvedDataDir := utils.ResolveDataDir(appConfig.Dict.DataDir)
	log.Debugf("Using data dir at: %s", resolvedDataDir)

	loader := dictionary.NewLoader(resolvedDataDir, appConfig.Dict.MaxWords)
	vocab, err := loader.Load(ctx)
	if err != nil {
		if errors.Is(err, dictionary.ErrNoDictionary) {
			log.Error("Did you forget to point -data at a directory with dict_*.bin or *.txt files?")
		}
		log.Fatalf("Failed to load dictionary: %v", err)
	}

	completer := suggest.NewCompleter(vocab, suggest.Options{
		MinFreqThreshold:   appConfig.Dict.MinFreqThreshold,
		MinFreqShortPrefix: appConfig.Dict.MinFreqShortPrefix,
		HotWords:           appConfig.Dict.HotWords,
	})
	log.Debug("Completer init done")

	// CLI is mainly for testing; the server has its own limits from config.
	if *cliMode {
		log.Debug("Input info:",
			"minPrefix", *minPrefix,
			"maxPrefix", *maxPrefix,
			"limit", *limit,
			"noFilter", *noFilter)

		inputHandler := cli.NewInputHandler(completer, *minPrefix, *maxPrefix, *limit, *noFilter)
		inputHandler.SetFuzzyDistance(min(*distance, appConfig.Fuzzy.MaxDistance))
		if err := inputHandler.Start(); err != nil {
			log.Fatalf("CLI error: %v", err)
		}
		return
	}

	showStartupInfo(resolvedDataDir, len(vocab.Words))

	srv := server.NewServer(completer, appConfig)
	errCh := make(chan error, 1)
	go func() { errCh <- srv.Start() }()

	select {
	case err := <-errCh:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		fmt.Fprintf(os.Stderr, "\nExiting...\n")
	}
}

// pack splits a word list into chunk files of chunkSize words each.
// The list order is kept, so it should be most frequent first.
func pack(listPath, outDir string, chunkSize int) error {
	if chunkSize < 1 {
		return fmt.Errorf("chunk size must be positive, got %d", chunkSize)
	}
	file, err := os.Open(listPath)
	if err != nil {
		return err
	}
	entries, err := dictionary.ReadText(file)
	file.Close()
	if err != nil {
		return err
	}

	if err := utils.EnsureDir(outDir); err != nil {
		return fmt.Errorf("create %s: %w", outDir, err)
	}

	filter := utils.NewSuggestionFilter()
	words := make([]string, 0, len(entries))
	for _, e := range entries {
		if filter.ShouldInclude(e.Word) {
			words = append(words, e.Word)
		}
	}

	for id := 1; len(words) > 0; id++ {
		n := min(chunkSize, len(words))
		path := filepath.Join(outDir, dictionary.ChunkFileName(id))
		if err := writeChunkFile(path, words[:n]); err != nil {
			return err
		}
		log.Infof("Wrote %s (%s words)", path, utils.FormatWithCommas(n))
		words = words[n:]
	}
	return nil
}

func writeChunkFile(path string, words []string) error {
	out, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := dictionary.WriteChunk(out, words); err != nil {
		out.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return out.Close()
}

func printVersion() {
	vlog := log.NewWithOptions(os.Stderr, log.Options{
		ReportCaller:    false,
		ReportTimestamp: false,
		Prefix:          "",
	})

	styles := log.DefaultStyles()
	styles.Values["version"] = lipgloss.NewStyle().Bold(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	styles.Values["gh"] = lipgloss.NewStyle().Italic(true).
		Foreground(lipgloss.AdaptiveColor{Light: "#575279", Dark: "#e0def4"})
	vlog.SetStyles(styles)

	vlog.Print("")
	vlog.Print("[ wordtrie ] prefix, completion and typo tolerant word lookups")
	vlog.Print("", "version", Version)
	vlog.Print("")
	vlog.Print("use -h or --help to see available options")
	vlog.Print("Github Repo", "gh", gh)
}

// showStartupInfo prints basic info about the init process on stderr.
func showStartupInfo(dataDir string, words int) {
	banner := lipgloss.NewStyle().
		Bold(true).
		Border(lipgloss.NormalBorder()).
		Padding(0, 1).
		Render(AppName)
	fmt.Fprintln(os.Stderr, banner)

	info := logger.New("")
	info.SetLevel(log.InfoLevel)
	info.Infof("Version: %s", Version)
	info.Infof("Process ID: [ %d ]", os.Getpid())
	info.Infof("data dir: ( %s )", dataDir)
	info.Infof("words: %s", utils.FormatWithCommas(words))
	info.Info("status: ready")
}
