package main

import (
	"context"
	"log/slog"

	"github.com/Adithya-Monish-Kumar-K/tfidf-search/internal/indexer"
)

var demoCorpus = []string{
	"[ERROR] Failed to execute goal org.apache.maven.plugins:maven-compiler-plugin:3.8.1:compile",
	"[ERROR] Could not resolve dependencies for project com.example:demo:jar:1.0-SNAPSHOT",
	"[ERROR] The plugin org.springframework.boot:spring-boot-maven-plugin:2.5.0 requires Maven version 3.6.0",
}

const demoQuery = "[ERROR] Failed to execute goal maven-compiler-plugin compile"

// seedDemo indexes the sample build-log corpus and logs the full ranking
// and the top two hits for the sample query.
func seedDemo(ctx context.Context, engine *indexer.Engine) error {
	for _, text := range demoCorpus {
		if _, err := engine.Insert(ctx, text); err != nil {
			return err
		}
	}

	all, err := engine.SearchAll(ctx, demoQuery)
	if err != nil {
		return err
	}
	for _, hit := range all {
		slog.Info("demo: similar document", "hit", hit.String())
	}

	top, err := engine.Search(ctx, demoQuery, 2)
	if err != nil {
		return err
	}
	for i, hit := range top {
		slog.Info("demo: top hit", "rank", i+1, "similarity", hit.Score, "text", hit.Text)
	}
	return nil
}
