// Package main is the Tonari CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	iofs "io/fs"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/hyperjump/tonari/internal/cli"
	"github.com/hyperjump/tonari/internal/config"
	"github.com/hyperjump/tonari/internal/models"
	"github.com/hyperjump/tonari/internal/seed"
	"github.com/hyperjump/tonari/internal/server"
	"github.com/hyperjump/tonari/internal/store"
	"github.com/hyperjump/tonari/internal/watcher"
	"github.com/hyperjump/tonari/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/tonari/config.yaml"

// loadConfig loads config from path. When path is the default, it first looks
// for config.yaml in the current directory (for development); if that exists
// it is used instead.
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "upsert":
		runUpsert()
	case "get":
		runGet()
	case "delete":
		runDelete()
	case "seed":
		runSeed()
	case "collections":
		runCollections()
	case "watch":
		runWatch()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("tonari version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (requests, seed file events, etc.)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	registry := store.NewRegistry(
		store.WithWorkers(cfg.Search.Workers),
		store.WithParallelThreshold(cfg.Search.ParallelThreshold),
	)
	for _, name := range cfg.Collections {
		registry.Create(name)
	}

	seedOpts := []seed.SeederOption{}
	if debugMode {
		seedOpts = append(seedOpts, seed.WithLogger(logger))
	}
	seeder := seed.NewSeeder(registry, seedOpts...)

	var watchSvc *watcher.Watcher
	if len(cfg.Seed.Directories) > 0 {
		watchOpts := []watcher.Option{}
		if debugMode {
			watchOpts = append(watchOpts, watcher.WithLogger(logger))
		}
		watchSvc = watcher.NewWatcher(
			cfg.Seed.Directories,
			cfg.Seed.Extensions,
			cfg.Seed.RecursiveOrDefault(),
			func(path string) {
				if _, err := seeder.SeedFile(path); err != nil {
					logger.Warn("seed file failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				seeder.RemoveFile(path)
			},
			watchOpts...,
		)
		watchCtx, watchCancel := context.WithCancel(context.Background())
		defer watchCancel()
		if err := watchSvc.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start watcher", zap.Error(err))
		}
		defer watchSvc.Stop()
		watchSvc.SyncExistingFiles()
	}

	var watchService server.WatchService
	if watchSvc != nil {
		watchService = watchSvc
	}
	srv := server.NewServer(registry, cfg, logger, watchService)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// parseVector converts positional args into vector components.
func parseVector(args []string) ([]float32, error) {
	if len(args) == 0 {
		return nil, fmt.Errorf("vector components are required")
	}
	vec := make([]float32, len(args))
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 32)
		if err != nil {
			return nil, fmt.Errorf("invalid vector component %q: %w", a, err)
		}
		vec[i] = float32(v)
	}
	return vec, nil
}

// reorderArgs moves any flags (and their values) that appear after positional
// args to the front so that flag.Parse() sees them. Go's flag package stops
// at the first non-flag argument, so "tonari search 41 51 31 -k 3" would
// otherwise leave -k unparsed.
func reorderArgs(args []string) []string {
	flags := make([]string, 0, len(args))
	positional := make([]string, 0, len(args))
	i := 0
	for i < len(args) {
		a := args[i]
		if len(a) > 1 && a[0] == '-' && !isNumber(a) {
			flags = append(flags, a)
			if i+1 < len(args) && !isBoolFlag(a) {
				flags = append(flags, args[i+1])
				i += 2
				continue
			}
			i++
			continue
		}
		positional = append(positional, a)
		i++
	}
	return append(flags, positional...)
}

// isNumber reports whether a "-"-prefixed arg is actually a negative vector
// component rather than a flag.
func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isBoolFlag(s string) bool {
	for len(s) > 0 && s[0] == '-' {
		s = s[1:]
	}
	return s == "debug"
}

func runSearch() {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	collection := fs.String("collection", "", "collection to search (required)")
	k := fs.Int("k", 0, "number of results (0 = server default)")
	outputFormat := fs.String("output", "text", "output format: text, compact, or json")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tonari search -collection <name> [flags] <component>...\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nExample:\n  tonari search -collection icc -k 3 41 51 31\n")
	}
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if *collection == "" || fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	vec, err := parseVector(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	response, err := searchViaHTTP(*serverURL, *collection, &models.SearchQuery{Vector: vec, K: *k})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL, collection string, query *models.SearchQuery) (*models.SearchResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(
		fmt.Sprintf("%s/api/v1/collections/%s/search", serverURL, url.PathEscape(collection)),
		"application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runUpsert() {
	fs := flag.NewFlagSet("upsert", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	collection := fs.String("collection", "", "target collection (required)")
	id := fs.String("id", "", "document id (empty = server generates one)")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tonari upsert -collection <name> [flags] <component>...\n\n")
		fs.PrintDefaults()
	}
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if *collection == "" || fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	vec, err := parseVector(fs.Args())
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	body, _ := json.Marshal(models.DocumentInput{Vector: vec})
	var (
		resp       *http.Response
		wantStatus int
	)
	if *id != "" {
		u := fmt.Sprintf("%s/api/v1/collections/%s/documents/%s",
			*serverURL, url.PathEscape(*collection), url.PathEscape(*id))
		req, _ := http.NewRequest(http.MethodPut, u, bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		resp, err = http.DefaultClient.Do(req)
		wantStatus = http.StatusOK
	} else {
		u := fmt.Sprintf("%s/api/v1/collections/%s/documents", *serverURL, url.PathEscape(*collection))
		resp, err = http.Post(u, "application/json", bytes.NewReader(body))
		wantStatus = http.StatusCreated
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != wantStatus {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Upsert failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var out struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Document stored: %s\n", out.ID)
}

func runGet() {
	fs := flag.NewFlagSet("get", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	collection := fs.String("collection", "", "collection (required)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if *collection == "" || fs.NArg() < 1 {
		fmt.Println("Usage: tonari get -collection <name> [flags] <document-id>")
		os.Exit(1)
	}
	format, err := cli.ParseFormat(*outputFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}

	u := fmt.Sprintf("%s/api/v1/collections/%s/documents/%s",
		*serverURL, url.PathEscape(*collection), url.PathEscape(fs.Arg(0)))
	resp, err := http.Get(u)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Get failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var doc models.Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteDocument(os.Stdout, &doc, format, 16); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runDelete() {
	fs := flag.NewFlagSet("delete", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	collection := fs.String("collection", "", "collection (required)")
	_ = fs.Parse(reorderArgs(os.Args[2:]))

	if *collection == "" || fs.NArg() < 1 {
		fmt.Println("Usage: tonari delete -collection <name> [flags] <document-id>")
		os.Exit(1)
	}
	u := fmt.Sprintf("%s/api/v1/collections/%s/documents/%s",
		*serverURL, url.PathEscape(*collection), url.PathEscape(fs.Arg(0)))
	req, _ := http.NewRequest(http.MethodDelete, u, nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Delete failed (%d): %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	fmt.Printf("Document deleted: %s\n", fs.Arg(0))
}

func runSeed() {
	fs := flag.NewFlagSet("seed", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	fs.Usage = func() {
		fmt.Fprintf(fs.Output(), "Usage: tonari seed [flags] <file-or-dir>...\n\n")
		fs.PrintDefaults()
		fmt.Fprintf(fs.Output(), "\nLoads JSON seed files into the running server.\n")
	}
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fs.Usage()
		os.Exit(1)
	}
	total := 0
	for _, arg := range fs.Args() {
		n, err := seedPathViaHTTP(*serverURL, arg)
		total += n
		if err != nil {
			fmt.Fprintf(os.Stderr, "Seed failed: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("Seeded %d documents\n", total)
}

// seedPathViaHTTP seeds a single file, or every .json file under a directory,
// and returns the number of documents sent.
func seedPathViaHTTP(serverURL, path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	if !info.IsDir() {
		return seedFileViaHTTP(serverURL, path)
	}
	total := 0
	err = filepath.WalkDir(path, func(p string, d iofs.DirEntry, walkErr error) error {
		if walkErr != nil || d.IsDir() {
			return walkErr
		}
		if filepath.Ext(p) != ".json" {
			return nil
		}
		n, seedErr := seedFileViaHTTP(serverURL, p)
		total += n
		if seedErr != nil {
			return fmt.Errorf("%s: %w", p, seedErr)
		}
		return nil
	})
	return total, err
}

func seedFileViaHTTP(serverURL, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	var f seed.File
	if err := json.Unmarshal(data, &f); err != nil {
		return 0, fmt.Errorf("parse seed file: %w", err)
	}
	if f.Collection == "" {
		return 0, fmt.Errorf("collection name is required")
	}

	body, _ := json.Marshal(map[string]string{"name": f.Collection})
	resp, err := http.Post(serverURL+"/api/v1/collections", "application/json", bytes.NewReader(body))
	if err != nil {
		return 0, fmt.Errorf("create collection %s: %w", f.Collection, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		return 0, fmt.Errorf("create collection %s: status %d", f.Collection, resp.StatusCode)
	}

	count := 0
	for i, doc := range f.Documents {
		if len(doc.Vector) == 0 {
			return count, fmt.Errorf("document %d has no vector", i)
		}
		payload, _ := json.Marshal(models.DocumentInput{Vector: doc.Vector})
		var (
			r          *http.Response
			wantStatus int
		)
		if doc.ID != "" {
			u := fmt.Sprintf("%s/api/v1/collections/%s/documents/%s",
				serverURL, url.PathEscape(f.Collection), url.PathEscape(doc.ID))
			req, _ := http.NewRequest(http.MethodPut, u, bytes.NewReader(payload))
			req.Header.Set("Content-Type", "application/json")
			r, err = http.DefaultClient.Do(req)
			wantStatus = http.StatusOK
		} else {
			u := fmt.Sprintf("%s/api/v1/collections/%s/documents", serverURL, url.PathEscape(f.Collection))
			r, err = http.Post(u, "application/json", bytes.NewReader(payload))
			wantStatus = http.StatusCreated
		}
		if err != nil {
			return count, fmt.Errorf("document %d: %w", i, err)
		}
		r.Body.Close()
		if r.StatusCode != wantStatus {
			return count, fmt.Errorf("document %d: status %d", i, r.StatusCode)
		}
		count++
	}
	return count, nil
}

func runCollections() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: tonari collections <add|remove|list> [name]")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("collections", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: tonari collections add <name>")
			os.Exit(1)
		}
		name := fs.Arg(0)
		body, _ := json.Marshal(map[string]string{"name": name})
		resp, err := http.Post(*serverURL+"/api/v1/collections", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Collection created: %s\n", name)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: tonari collections remove <name>")
			os.Exit(1)
		}
		name := fs.Arg(0)
		req, _ := http.NewRequest(http.MethodDelete,
			*serverURL+"/api/v1/collections/"+url.PathEscape(name), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Collection removed: %s\n", name)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/collections")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Collections []string `json:"collections"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, name := range out.Collections {
			fmt.Println(name)
		}
	default:
		fmt.Printf("Unknown collections subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runWatch() {
	if len(os.Args) < 3 {
		fmt.Println("Usage: tonari watch <add|remove|list> [path]")
		fmt.Println("  tonari watch add <path>     Add seed directory to watch")
		fmt.Println("  tonari watch remove <path>  Remove seed directory from watch")
		fmt.Println("  tonari watch list           List watched seed directories")
		os.Exit(1)
	}
	sub := os.Args[2]
	fs := flag.NewFlagSet("watch", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	_ = fs.Parse(os.Args[3:])
	switch sub {
	case "add":
		if fs.NArg() < 1 {
			fmt.Println("Usage: tonari watch add <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		body, _ := json.Marshal(map[string]interface{}{"path": path, "seed": true})
		resp, err := http.Post(*serverURL+"/api/v1/watch/directories", "application/json", bytes.NewReader(body))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusCreated {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Add failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Added: %s\n", path)
	case "remove":
		if fs.NArg() < 1 {
			fmt.Println("Usage: tonari watch remove <path>")
			os.Exit(1)
		}
		path, _ := filepath.Abs(fs.Arg(0))
		req, _ := http.NewRequest(http.MethodDelete,
			*serverURL+"/api/v1/watch/directories?path="+url.QueryEscape(path), nil)
		resp, err := http.DefaultClient.Do(req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "Remove failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		fmt.Printf("Removed: %s\n", path)
	case "list":
		resp, err := http.Get(*serverURL + "/api/v1/watch/directories")
		if err != nil {
			fmt.Fprintf(os.Stderr, "Request failed: %v\n", err)
			os.Exit(1)
		}
		defer resp.Body.Close()
		if resp.StatusCode != http.StatusOK {
			b, _ := io.ReadAll(resp.Body)
			fmt.Fprintf(os.Stderr, "List failed (%d): %s\n", resp.StatusCode, string(b))
			os.Exit(1)
		}
		var out struct {
			Directories []string `json:"directories"`
		}
		if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
			fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
			os.Exit(1)
		}
		for _, d := range out.Directories {
			fmt.Println(d)
		}
	default:
		fmt.Printf("Unknown watch subcommand: %s\n", sub)
		os.Exit(1)
	}
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	serverURL := fs.String("server", "http://localhost:8080", "server URL")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	resp, err := http.Get(*serverURL + "/api/v1/status")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
		os.Exit(1)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		fmt.Fprintf(os.Stderr, "Server returned %d: %s\n", resp.StatusCode, string(b))
		os.Exit(1)
	}
	var status struct {
		Collections int                    `json:"collections"`
		Documents   int                    `json:"documents"`
		Config      map[string]interface{} `json:"config"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		fmt.Fprintf(os.Stderr, "Parse failed: %v\n", err)
		os.Exit(1)
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("collections:  %d\n", status.Collections)
		fmt.Printf("documents:    %d\n", status.Documents)
		if len(status.Config) > 0 {
			fmt.Println()
			fmt.Println("# configuration")
			for _, key := range []string{"default_k", "max_k", "workers", "parallel_threshold"} {
				if v, ok := status.Config[key]; ok {
					fmt.Printf("%-19s %v\n", key+":", v)
				}
			}
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`tonari - In-memory vector similarity search server

Usage:
  tonari server [flags]                         Start the HTTP server
  tonari search -collection <name> <vector>     Search a collection by cosine similarity
  tonari upsert -collection <name> <vector>     Insert or replace a document
  tonari get -collection <name> <id>            Read a stored document
  tonari delete -collection <name> <id>         Delete a document
  tonari seed <file-or-dir>...                  Load JSON seed files into the server
  tonari collections <add|remove|list>          Manage collections
  tonari watch <add|remove|list>                Manage watched seed directories
  tonari status [flags]                         Show server status
  tonari version                                Show version
  tonari help                                   Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tonari/config.yaml)
  --debug            Enable debug logging (requests, seed file events, etc.)

Search Flags:
  --server string      Server URL (default: http://localhost:8080)
  --collection string  Collection to search (required)
  --k int              Number of results (default: server default_k)
  --output string      Output format: text, compact, or json (default: text)

Examples:
  tonari server
  tonari collections add icc
  tonari upsert -collection icc 12 72 63
  tonari upsert -collection icc -id doc-1 24 45 36
  tonari search -collection icc -k 3 41 51 31
  tonari search -collection icc -output json 41 51 31
  tonari get -collection icc doc-1
  tonari delete -collection icc doc-1
  tonari seed ./seeds/icc.json
  tonari watch add /path/to/seeds
  tonari status`)
}
