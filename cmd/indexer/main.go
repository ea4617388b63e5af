// Command indexer uploads local documents (PDFs, text files) to the
// answer pipeline's index so they become part of the retrieval corpus.
//
// Usage: indexer [-env local] file1.pdf [file2.txt ...]
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/grpc-ecosystem/go-grpc-middleware/logging/zap/ctxzap"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/builder"
)

func main() {
	connector, logger, err := builder.BuildIndexer()
	if err != nil {
		log.Fatal("Failed to build indexer:", err)
	}
	defer logger.Sync()

	files := flag.Args()
	if len(files) == 0 {
		log.Fatal("no input files; usage: indexer [-env local] file1.pdf [file2.txt ...]")
	}

	ctx := ctxzap.ToContext(context.Background(), logger)

	failed := 0
	for _, path := range files {
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Error("failed to read file", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}

		if err := connector.IndexDocument(ctx, filepath.Base(path), content); err != nil {
			logger.Error("failed to index file", zap.String("path", path), zap.Error(err))
			failed++
			continue
		}

		logger.Info("file indexed", zap.String("path", path), zap.Int("size", len(content)))
	}

	if failed > 0 {
		logger.Warn("indexing finished with failures",
			zap.Int("failed", failed),
			zap.Int("total", len(files)),
		)
		os.Exit(1)
	}

	logger.Info("indexing finished", zap.Int("total", len(files)))
}
