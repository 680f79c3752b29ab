package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wizenheimer/strata"
)

// corpusDB is the concrete instantiation the CLI drives: documents are
// treated as plain text (D=string), with no extra per-document or
// per-sentence metadata beyond what's already in the index.
type corpusDB = strata.Database[string, struct{}, struct{}]

func main() {
	var configPath string

	rootCmd := &cobra.Command{Use: "strata", Short: "Build and query sentence-level full-text indexes"}
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to a strata.yaml config file")

	var outDir string
	var showStats bool
	buildCmd := &cobra.Command{
		Use:   "build <corpus-dir>",
		Short: "Index every file in corpus-dir into a database directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := strata.DefaultConfig()
			if configPath != "" {
				loaded, err := strata.LoadConfig(configPath)
				if err != nil {
					return err
				}
				cfg = loaded
			}
			cfg.Apply()
			if !cmd.Flags().Changed("out") {
				outDir = cfg.BuildDir
			}
			return runBuild(args[0], outDir, cfg, showStats)
		},
	}
	buildCmd.Flags().StringVar(&outDir, "out", "./data", "database directory to write (defaults to the config's build_dir)")
	buildCmd.Flags().BoolVar(&showStats, "stats", false, "print the ten terms with the highest document frequency after indexing")

	var optimize bool
	queryCmd := &cobra.Command{
		Use:   "query <db-dir> <query>",
		Short: "Run a query string against a built database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(args[0], args[1], optimize)
		},
	}
	queryCmd.Flags().BoolVar(&optimize, "optimize", true, "enable fused lowerings for adjacent single-term literals")

	rootCmd.AddCommand(buildCmd, queryCmd)

	if err := rootCmd.Execute(); err != nil {
		log.Fatal(err)
	}
}

func runBuild(corpusDir, outDir string, cfg strata.Config, showStats bool) error {
	entries, err := os.ReadDir(corpusDir)
	if err != nil {
		return fmt.Errorf("reading corpus dir: %w", err)
	}

	builder := strata.NewDatabaseBuilder[string, struct{}, struct{}](
		cfg.EnableStemming, strata.StringCodec{}, strata.EmptyCodec{}, strata.EmptyCodec{})

	var docID uint32
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		path := filepath.Join(corpusDir, entry.Name())
		text, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("reading %s: %w", path, err)
		}
		docID++
		if err := builder.AddDocument(strata.DocumentData[string, struct{}]{
			ID:      docID,
			Text:    string(text),
			Payload: string(text),
		}); err != nil {
			return fmt.Errorf("indexing %s: %w", path, err)
		}
	}

	if showStats {
		fmt.Printf("indexed %d documents into %s\n", docID, outDir)
		for _, tf := range builder.TopTermsByDocumentFrequency(10) {
			fmt.Printf("  %-20s %d docs\n", tf.Term, tf.Count)
		}
	}

	if _, err := builder.BuildIn(outDir); err != nil {
		return err
	}
	return nil
}

func runQuery(dbDir, queryString string, optimize bool) error {
	db, err := strata.Load[string, struct{}, struct{}](dbDir, strata.StringCodec{}, strata.EmptyCodec{}, strata.EmptyCodec{})
	if err != nil {
		return err
	}

	q, err := db.ParseQuery(queryString, strata.TrivialFilter[struct{}]{}, optimize)
	if err != nil {
		return err
	}

	count := 0
	for result := range db.Query(q) {
		count++
		fmt.Printf("[doc %d, sentence %d] ", result.ID.Doc, result.ID.Sentence)
		for _, part := range result.Highlighted() {
			if part.Highlight {
				fmt.Printf("**%s**", part.Text)
			} else {
				fmt.Print(part.Text)
			}
		}
		fmt.Println()
	}
	if count == 0 {
		fmt.Println("no matches")
	}
	return nil
}
