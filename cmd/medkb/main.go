// Copyright 2025 ClinRef Labs
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"log/slog"
	"os"
	"sort"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/clinref/medkb/ai"
	"github.com/clinref/medkb/ai/openai"
	"github.com/clinref/medkb/core"
	"github.com/clinref/medkb/ingestion"
	"github.com/clinref/medkb/kb"
	"github.com/clinref/medkb/search"
	"github.com/clinref/medkb/storage/badger"
)

// dataFlags are shared by every command: the knowledge base is in-memory,
// so each invocation loads its content from a records file or a snapshot.
func dataFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "records",
			Aliases: []string{"r"},
			Usage:   "Path to a JSON file of article/case records to import",
		},
		&cli.StringFlag{
			Name:  "snapshot",
			Usage: "Path to a previously exported snapshot to restore",
		},
	}
}

func main() {
	app := &cli.App{
		Name:  "medkb",
		Usage: "In-memory medical knowledge base: search, statistics, related entries",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:   "import",
				Usage:  "Import article/case records and print the batch report",
				Action: importCommand,
				Flags: append(dataFlags(),
					&cli.StringFlag{
						Name:  "export",
						Usage: "Write a snapshot of the imported knowledge base to this file",
					},
				),
			},
			{
				Name:      "search",
				Usage:     "Search the knowledge base",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: append(dataFlags(),
					&cli.StringFlag{Name: "type", Usage: "Filter by entry type (article, case, image)"},
					&cli.StringFlag{Name: "system", Usage: "Filter by anatomical system"},
					&cli.StringFlag{Name: "modality", Usage: "Filter by imaging modality"},
					&cli.StringFlag{Name: "pathology", Usage: "Filter by pathology tag"},
					&cli.StringFlag{Name: "body-part", Usage: "Filter by body part"},
					&cli.StringFlag{Name: "difficulty", Usage: "Filter by difficulty"},
					&cli.StringFlag{Name: "source", Usage: "Filter by entry source"},
					&cli.IntFlag{Name: "limit", Value: 10, Usage: "Maximum number of results"},
					&cli.IntFlag{Name: "offset", Usage: "Number of ranked results to skip"},
					&cli.BoolFlag{Name: "semantic", Usage: "Use semantic ranking when an embedding engine is configured"},
					&cli.StringFlag{Name: "embedding-host", Usage: "Embedding service host URL (enables the embedding engine)"},
					&cli.StringFlag{Name: "embedding-model", Usage: "Embedding model name"},
				),
			},
			{
				Name:   "related",
				Usage:  "Show entries related to a given entry",
				Action: relatedCommand,
				Flags: append(dataFlags(),
					&cli.StringFlag{Name: "id", Required: true, Usage: "Entry ID"},
					&cli.IntFlag{Name: "limit", Value: 5, Usage: "Maximum number of related entries"},
				),
			},
			{
				Name:   "stats",
				Usage:  "Print aggregate statistics",
				Action: statsCommand,
				Flags:  dataFlags(),
			},
			{
				Name:   "export",
				Usage:  "Write a full snapshot of the knowledge base",
				Action: exportCommand,
				Flags: append(dataFlags(),
					&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Required: true, Usage: "Output file"},
				),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

// openKnowledgeBase builds an in-memory knowledge base and loads the
// content named by --records or --snapshot. The returned cleanup closes
// the backend.
func openKnowledgeBase(c *cli.Context) (*kb.Service, func(), error) {
	repo, backend, err := badger.NewMemoryRepository()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open in-memory store: %w", err)
	}
	cleanup := func() {
		repo.Close()
		backend.Close()
	}

	svc, err := kb.NewService(repo)
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	ctx := context.Background()

	if snapshotPath := c.String("snapshot"); snapshotPath != "" {
		data, err := os.ReadFile(snapshotPath)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to read snapshot: %w", err)
		}
		var snapshot core.Snapshot
		if err := json.Unmarshal(data, &snapshot); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to parse snapshot: %w", err)
		}
		if err := svc.ImportSnapshot(ctx, &snapshot); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("failed to restore snapshot: %w", err)
		}
		return svc, cleanup, nil
	}

	recordsPath := c.String("records")
	if recordsPath == "" {
		cleanup()
		return nil, nil, fmt.Errorf("either --records or --snapshot is required")
	}

	data, err := os.ReadFile(recordsPath)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to read records: %w", err)
	}
	var records []ingestion.Record
	if err := json.Unmarshal(data, &records); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("failed to parse records: %w", err)
	}

	pipeline, err := ingestion.NewPipeline(svc)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	defer pipeline.Release()

	report, err := pipeline.ImportBatch(ctx, records)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("import failed: %w", err)
	}
	for _, recErr := range report.Errors {
		slog.Warn("record skipped", "index", recErr.Index, "source_id", recErr.SourceID, "reason", recErr.Message)
	}

	return svc, cleanup, nil
}

func importCommand(c *cli.Context) error {
	svc, cleanup, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer cleanup()

	s := svc.Stats()
	fmt.Printf("Entries: %d (articles %d, cases %d, images %d)\n",
		s.TotalEntries, s.TotalArticles, s.TotalCases, s.TotalImages)

	if out := c.String("export"); out != "" {
		return writeSnapshot(c.Context, svc, out)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	svc, cleanup, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer cleanup()

	var provider ai.Provider
	if host := c.String("embedding-host"); host != "" {
		config := ai.NewConfig(
			ai.WithEmbeddingHost(host),
			ai.WithEmbeddingModel(c.String("embedding-model")),
		)
		provider, err = openai.NewProvider(config)
		if err != nil {
			return fmt.Errorf("failed to create embedding provider: %w", err)
		}
		defer provider.Close()
	}

	searcher, err := search.NewSearcher(svc, provider)
	if err != nil {
		return err
	}

	query := search.Query{
		Text: strings.Join(c.Args().Slice(), " "),
		Filters: search.Filters{
			Type:       core.EntryType(c.String("type")),
			System:     c.String("system"),
			Modality:   c.String("modality"),
			Pathology:  c.String("pathology"),
			BodyPart:   c.String("body-part"),
			Difficulty: core.Difficulty(c.String("difficulty")),
			Source:     core.Source(c.String("source")),
		},
		Limit:    c.Int("limit"),
		Offset:   c.Int("offset"),
		Semantic: c.Bool("semantic"),
	}

	result, err := searcher.Search(c.Context, query)
	if err != nil {
		return err
	}

	fmt.Printf("%d match(es) in %s\n", result.TotalCount, result.Took)
	for _, entry := range result.Entries {
		fmt.Printf("  [%s] %s  %s", entry.Type, entry.ID, entry.Title)
		if len(entry.Metadata.Pathology) > 0 {
			fmt.Printf(" (%s)", strings.Join(entry.Metadata.Pathology, ", "))
		}
		fmt.Println()
	}
	if len(result.Suggestions) > 0 {
		fmt.Printf("Suggestions: %s\n", strings.Join(result.Suggestions, ", "))
	}
	return nil
}

func relatedCommand(c *cli.Context) error {
	svc, cleanup, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer cleanup()

	searcher, err := search.NewSearcher(svc, nil)
	if err != nil {
		return err
	}

	related, err := searcher.Related(c.Context, c.String("id"), c.Int("limit"))
	if err != nil {
		return err
	}

	if len(related) == 0 {
		fmt.Println("No related entries.")
		return nil
	}
	for _, entry := range related {
		fmt.Printf("  [%s] %s  %s\n", entry.Type, entry.ID, entry.Title)
	}
	return nil
}

func statsCommand(c *cli.Context) error {
	svc, cleanup, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer cleanup()

	s := svc.Stats()
	fmt.Printf("Total entries: %d\n", s.TotalEntries)
	fmt.Printf("  articles: %d\n", s.TotalArticles)
	fmt.Printf("  cases:    %d\n", s.TotalCases)
	fmt.Printf("  images:   %d\n", s.TotalImages)
	printBreakdown("By system", s.BySystem)
	printBreakdown("By modality", s.ByModality)
	printBreakdown("By pathology", s.ByPathology)
	fmt.Printf("Last updated: %s\n", s.LastUpdated)
	return nil
}

func printBreakdown(label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("%s:\n", label)
	for _, k := range keys {
		fmt.Printf("  %-24s %d\n", k, counts[k])
	}
}

func exportCommand(c *cli.Context) error {
	svc, cleanup, err := openKnowledgeBase(c)
	if err != nil {
		return err
	}
	defer cleanup()

	return writeSnapshot(c.Context, svc, c.String("out"))
}

func writeSnapshot(ctx context.Context, svc *kb.Service, path string) error {
	snapshot, err := svc.Export(ctx)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	fmt.Printf("Snapshot written to %s (%d entries)\n", path, len(snapshot.Entries))
	return nil
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
