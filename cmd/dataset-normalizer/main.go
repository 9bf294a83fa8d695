package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/mikey/phishscope/internal/dataset"
	"github.com/mikey/phishscope/internal/logging"
)

func main() {
	files := flag.String("files", "", "Comma-separated list of input CSV files")
	outDir := flag.String("out-dir", "normalized", "Output directory for normalized splits")
	format := flag.String("format", "jsonl", "Output format: jsonl or csv")
	trainFrac := flag.Float64("split-frac", 0.8, "Fraction of records assigned to the train split")
	seed := flag.Int64("seed", 42, "Shuffle seed for the train/test split")
	storeType := flag.String("store", "", "Optional persistence backend: sqlite or mysql")
	sqlitePath := flag.String("sqlite-path", "corpus.db", "SQLite database path (with -store sqlite)")
	mysqlDSN := flag.String("mysql-dsn", "", "MySQL DSN (with -store mysql)")
	verbose := flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog := flag.Bool("json-log", false, "Output logs in JSON format")
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *files == "" {
		fmt.Fprintln(os.Stderr, "No input files given, use -files a.csv,b.csv")
		flag.Usage()
		os.Exit(1)
	}

	normalizer := dataset.NewNormalizer(logger)

	var all []dataset.Record
	for _, path := range strings.Split(*files, ",") {
		path = strings.TrimSpace(path)
		if path == "" {
			continue
		}

		columns, rows, err := dataset.LoadCSV(path)
		if err != nil {
			logger.Fatal("Failed to load input file", zap.String("path", path), zap.Error(err))
		}

		source := filepath.Base(path)
		records := normalizer.NormalizeRows(columns, rows, source)
		logger.Info("Normalized input file",
			zap.String("path", path),
			zap.Int("rows", len(rows)),
			zap.Int("records", len(records)))
		all = append(all, records...)
	}

	before := len(all)
	all = dataset.Dedupe(all)
	logger.Info("Deduplicated records",
		zap.Int("before", before),
		zap.Int("after", len(all)))

	train, test := dataset.Split(all, *trainFrac, *seed)
	logger.Info("Split records",
		zap.Int("train", len(train)),
		zap.Int("test", len(test)))

	if err := os.MkdirAll(*outDir, 0o755); err != nil {
		logger.Fatal("Failed to create output directory", zap.Error(err))
	}

	splits := map[string][]dataset.Record{"train": train, "test": test}
	outputs := map[string][]dataset.Record{"normalized": all, "train": train, "test": test}
	for name, records := range outputs {
		var path string
		var writeErr error
		switch *format {
		case "csv":
			path = filepath.Join(*outDir, name+".csv")
			writeErr = dataset.WriteCSV(path, records)
		case "jsonl":
			path = filepath.Join(*outDir, name+".jsonl")
			writeErr = dataset.WriteJSONL(path, records)
		default:
			logger.Fatal("Unknown output format", zap.String("format", *format))
		}
		if writeErr != nil {
			logger.Fatal("Failed to write split", zap.String("split", name), zap.Error(writeErr))
		}
		logger.Info("Wrote split", zap.String("path", path), zap.Int("records", len(records)))
	}

	if *storeType != "" {
		store, err := createStore(*storeType, *sqlitePath, *mysqlDSN, logger)
		if err != nil {
			logger.Fatal("Failed to create store", zap.Error(err))
		}
		defer store.Close()

		ctx := context.Background()
		for name, records := range splits {
			if err := store.SaveRecords(ctx, name, records); err != nil {
				logger.Fatal("Failed to persist split", zap.String("split", name), zap.Error(err))
			}
		}
		logger.Info("Persisted splits", zap.String("store", *storeType))
	}
}

func createStore(storeType, sqlitePath, mysqlDSN string, logger *zap.Logger) (dataset.Store, error) {
	switch storeType {
	case "sqlite":
		return dataset.NewSQLiteStore(sqlitePath, logger)
	case "mysql":
		if mysqlDSN == "" {
			return nil, fmt.Errorf("mysql store requires -mysql-dsn")
		}
		return dataset.NewMySQLStore(mysqlDSN, logger)
	default:
		return nil, fmt.Errorf("unsupported store type: %s", storeType)
	}
}
