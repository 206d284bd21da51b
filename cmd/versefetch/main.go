// Command versefetch resolves scripture citation links to verse text.
// It reads a list of citation anchors, fetches the corpus files they point
// into and writes one reference/text record per citation.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/alecthomas/kong"

	"github.com/FocuswithJustin/versefetch/core/batch"
	"github.com/FocuswithJustin/versefetch/core/cache"
	"github.com/FocuswithJustin/versefetch/core/errors"
	"github.com/FocuswithJustin/versefetch/core/names"
	"github.com/FocuswithJustin/versefetch/core/ref"
	"github.com/FocuswithJustin/versefetch/internal/config"
	"github.com/FocuswithJustin/versefetch/internal/fetch"
	"github.com/FocuswithJustin/versefetch/internal/input"
	"github.com/FocuswithJustin/versefetch/internal/logging"
	"github.com/FocuswithJustin/versefetch/internal/output"
)

const version = "1.0.0"

// Injectable for tests.
var stdout io.Writer = os.Stdout

// Globals are flags shared by every command.
type Globals struct {
	Config    string `name:"config" short:"c" help:"YAML configuration file" type:"path"`
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)"`
	LogFormat string `name:"log-format" help:"Log format (text, json)"`
}

// CLI defines the command-line interface for versefetch.
var CLI struct {
	Globals

	Lookup     LookupCmd  `cmd:"" help:"Resolve a list of citations to verse text"`
	Parse      ParseCmd   `cmd:"" help:"Parse citations and print their canonical references"`
	Books      BooksCmd   `cmd:"" help:"List known books and their corpus files"`
	Show       ShowCmd    `cmd:"" help:"Print records from a previous lookup output"`
	Cache      CacheGroup `cmd:"" help:"Disk cache operations"`
	ShowConfig ConfigCmd  `cmd:"" name:"config" help:"Print the effective configuration"`
	Version    VersionCmd `cmd:"" help:"Print version information"`
}

// CacheGroup contains disk cache operations.
type CacheGroup struct {
	Warm  CacheWarmCmd  `cmd:"" help:"Download every corpus file into the disk cache"`
	Clear CacheClearCmd `cmd:"" help:"Remove every corpus file from the disk cache"`
}

// load reads the configuration file, applies the logging flags and
// initialises the logger.
func (g *Globals) load() (*config.Config, error) {
	cfg, err := config.Load(g.Config)
	if err != nil {
		return nil, err
	}
	if g.LogLevel != "" {
		cfg.LogLevel = g.LogLevel
	}
	if g.LogFormat != "" {
		cfg.LogFormat = g.LogFormat
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	level, _ := logging.ParseLevel(cfg.LogLevel)
	format, _ := logging.ParseFormat(cfg.LogFormat)
	logging.InitLogger(level, format)
	return cfg, nil
}

// newFetcher builds the HTTP fetcher, wrapped in the disk cache when a
// cache directory is configured. Offline serves the disk cache only.
func newFetcher(cfg *config.Config, offline bool) (cache.Fetcher, error) {
	var upstream fetch.Fetcher = fetch.Offline
	if !offline {
		httpFetcher, err := fetch.NewHTTPFetcher(fetch.HTTPOptions{
			BaseURL:   cfg.BaseURL,
			UserAgent: cfg.UserAgent,
			Timeout:   cfg.Timeout,
			RateLimit: cfg.RateLimit,
		})
		if err != nil {
			return nil, err
		}
		if cfg.CacheDir == "" {
			return httpFetcher, nil
		}
		upstream = httpFetcher
	}
	if cfg.CacheDir == "" {
		return nil, fmt.Errorf("offline mode needs a cache directory (use --cache-dir or cache_dir)")
	}

	disk, err := fetch.NewDiskFetcher(cfg.CacheDir, upstream, cfg.CacheMaxAge)
	if err != nil {
		return nil, err
	}
	return disk, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

// LookupCmd resolves a citation list and writes the records.
type LookupCmd struct {
	Input    string `arg:"" help:"Citation list (.txt, .json, .yaml, .xml, .xhtml) or - for stdin"`
	Out      string `short:"o" help:"Output path, - for stdout (default from config)"`
	Format   string `short:"f" help:"Output format: json or sqlite (default from config)"`
	Workers  int    `short:"w" help:"Corpus files to prefetch in parallel (default from config)"`
	CacheDir string `name:"cache-dir" help:"Keep downloaded corpus files in this directory" type:"path"`
	BaseURL  string `name:"base-url" help:"Corpus base URL"`
	Offline  bool   `help:"Use only corpus files already in the disk cache"`
}

func (c *LookupCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	c.apply(cfg)
	if err := cfg.Validate(); err != nil {
		return err
	}
	format, _ := output.ParseFormat(cfg.Format)

	citations, err := input.Read(c.Input)
	if err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, c.Offline)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	runID := logging.NewRunID()
	ctx = logging.WithRunID(ctx, runID)

	table := names.Default()
	runner := batch.NewRunner(ref.NewParser(table), cache.New(table, fetcher), table)
	runner.Workers = cfg.Workers

	logging.InfoContext(ctx, "batch_start", "citations", len(citations), "input", c.Input)
	records := runner.Run(ctx, citations)

	if err := output.Write(ctx, cfg.Output, format, runID, records); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if cfg.Output != output.Stdout {
		logging.InfoContext(ctx, "output_written", "path", cfg.Output, "format", string(format), "records", len(records))
	}
	return nil
}

// apply lets flags override the configuration.
func (c *LookupCmd) apply(cfg *config.Config) {
	if c.Out != "" {
		cfg.Output = c.Out
	}
	if c.Format != "" {
		cfg.Format = c.Format
	}
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if c.CacheDir != "" {
		cfg.CacheDir = c.CacheDir
	}
	if c.BaseURL != "" {
		cfg.BaseURL = c.BaseURL
	}
}

// ParseCmd parses citations without fetching anything.
type ParseCmd struct {
	Citations []string `arg:"" help:"Citation anchors to parse"`
}

func (c *ParseCmd) Run(g *Globals) error {
	if _, err := g.load(); err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	for _, raw := range c.Citations {
		r, err := ref.Parse(raw)
		if err != nil {
			fmt.Fprintf(w, "%s\t\t%s\n", errors.KindOf(err), raw)
			continue
		}
		file, _ := names.Default().CorpusFile(r.Book())
		fmt.Fprintf(w, "%s\t%d\t%s\n", r.Display(), r.Verses(), file)
	}
	return w.Flush()
}

// BooksCmd lists the name tables.
type BooksCmd struct {
	File string `help:"Only list books stored in this corpus file"`
}

func (c *BooksCmd) Run() error {
	table := names.Default()
	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ABBREVIATION\tFULL NAME\tFILE")
	for _, abbrev := range table.Books() {
		file, _ := table.CorpusFile(abbrev)
		if c.File != "" && file != c.File {
			continue
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", abbrev, table.FullName(abbrev), file)
	}
	return w.Flush()
}

// CacheWarmCmd fills the disk cache with every corpus file.
type CacheWarmCmd struct {
	CacheDir string `name:"cache-dir" help:"Cache directory (default from config)" type:"path"`
	Workers  int    `short:"w" help:"Parallel downloads (default from config)"`
}

func (c *CacheWarmCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.CacheDir != "" {
		cfg.CacheDir = c.CacheDir
	}
	if c.Workers != 0 {
		cfg.Workers = c.Workers
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("no cache directory configured (use --cache-dir or cache_dir)")
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	fetcher, err := newFetcher(cfg, false)
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	table := names.Default()
	store := cache.New(table, fetcher)
	start := time.Now()
	if err := store.Prefetch(ctx, table.Books(), cfg.Workers); err != nil {
		return err
	}

	var failed []string
	for _, file := range table.Files() {
		if _, err := store.Get(ctx, firstBook(table, file)); err != nil {
			var httpErr *fetch.HTTPError
			if errors.As(err, &httpErr) && httpErr.IsNotFound() {
				file += " (not found upstream)"
			}
			failed = append(failed, file)
		}
	}
	stats := store.Stats()
	fmt.Fprintf(stdout, "cached %d of %d corpus files in %s\n",
		len(table.Files())-len(failed), len(table.Files()), time.Since(start).Round(time.Millisecond))
	if len(failed) > 0 {
		return fmt.Errorf("failed to cache %s (%d fetches)", strings.Join(failed, ", "), stats.Fetches)
	}
	return nil
}

// firstBook returns some book stored in file.
func firstBook(table *names.Table, file string) string {
	for _, abbrev := range table.Books() {
		if f, _ := table.CorpusFile(abbrev); f == file {
			return abbrev
		}
	}
	return ""
}

// CacheClearCmd empties the disk cache, or drops a single corpus file from it.
type CacheClearCmd struct {
	CacheDir string `name:"cache-dir" help:"Cache directory (default from config)" type:"path"`
	File     string `help:"Only remove this corpus file, e.g. new-testament.json"`
}

func (c *CacheClearCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	if c.CacheDir != "" {
		cfg.CacheDir = c.CacheDir
	}
	if cfg.CacheDir == "" {
		return fmt.Errorf("no cache directory configured (use --cache-dir or cache_dir)")
	}

	disk, err := fetch.NewDiskFetcher(cfg.CacheDir, fetch.Offline, 0)
	if err != nil {
		return err
	}
	if c.File != "" {
		if err := disk.Remove(c.File); err != nil {
			return fmt.Errorf("failed to remove %s: %w", c.File, err)
		}
		fmt.Fprintf(stdout, "removed %s from %s\n", c.File, disk.Dir())
		return nil
	}

	n, err := disk.Clear()
	if err != nil {
		return fmt.Errorf("failed to clear %s: %w", disk.Dir(), err)
	}
	fmt.Fprintf(stdout, "removed %d cached corpus files from %s\n", n, disk.Dir())
	return nil
}

// ShowCmd prints the records stored by an earlier lookup.
type ShowCmd struct {
	Path   string `arg:"" help:"Lookup output file (.json or SQLite database)" type:"existingfile"`
	Format string `short:"f" help:"Output format: json or sqlite (default from extension)"`
	RunID  string `name:"run" help:"SQLite run id (default: latest run)"`
}

func (c *ShowCmd) Run(g *Globals) error {
	if _, err := g.load(); err != nil {
		return err
	}

	format := c.Format
	if format == "" {
		format = string(output.FormatJSON)
		switch strings.ToLower(filepath.Ext(c.Path)) {
		case ".db", ".sqlite", ".sqlite3":
			format = string(output.FormatSQLite)
		}
	}
	f, err := output.ParseFormat(format)
	if err != nil {
		return err
	}

	var records []batch.Record
	switch f {
	case output.FormatSQLite:
		records, err = c.readSQLite()
	default:
		records, err = output.ReadJSON(c.Path)
	}
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "REFERENCE\tTEXT")
	for _, rec := range records {
		fmt.Fprintf(w, "%s\t%s\n", rec.Reference, rec.Text)
	}
	return w.Flush()
}

func (c *ShowCmd) readSQLite() ([]batch.Record, error) {
	db, err := output.OpenSQLite(c.Path)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	ctx := context.Background()
	runID := c.RunID
	if runID == "" {
		runs, err := db.Runs(ctx)
		if err != nil {
			return nil, err
		}
		if len(runs) == 0 {
			return nil, fmt.Errorf("no runs stored in %s", c.Path)
		}
		runID = runs[len(runs)-1]
	}
	return db.Records(ctx, runID)
}

// ConfigCmd prints the configuration after the file and flags are applied.
type ConfigCmd struct{}

func (c *ConfigCmd) Run(g *Globals) error {
	cfg, err := g.load()
	if err != nil {
		return err
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = stdout.Write(data)
	return err
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "versefetch version %s\n", version)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("versefetch"),
		kong.Description("Resolve scripture citation links to verse text"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	err := ctx.Run(&CLI.Globals)
	ctx.FatalIfErrorf(err)
}
