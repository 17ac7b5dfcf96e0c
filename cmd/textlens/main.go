// Command textlens checks documents against the Textlens API.
//
// Usage:
//
//	textlens [-kind check] [-concurrency 4] [-retries 2] file...
//
// Connection settings come from the environment (see textlens.LoadConfig).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	textlens "github.com/textlens/textlens-go"
	"github.com/textlens/textlens-go/analysis"
	"github.com/textlens/textlens-go/batch"
)

func main() {
	kind := flag.String("kind", "check", "analysis kind: check, suggestions or rewrites")
	encoding := flag.String("encoding", "utf-8", "input file encoding: utf-8, windows-1251 or iso-8859-1")
	lang := flag.String("language", "", "document language tag, e.g. en-US")
	concurrency := flag.Int("concurrency", 4, "how many documents to analyze at once")
	retries := flag.Int("retries", 2, "retries per document after the initial attempt")
	retryDelay := flag.Duration("retry-delay", time.Second, "base backoff delay between retries")
	flag.Parse()

	files := flag.Args()
	if len(files) == 0 {
		fmt.Fprintln(os.Stderr, "usage: textlens [flags] file...")
		os.Exit(2)
	}

	cfg, err := textlens.LoadConfig()
	if err != nil {
		log.Fatalf("Config error: %v", err)
	}

	client, err := textlens.NewClient(*cfg)
	if err != nil {
		log.Fatalf("Client error: %v", err)
	}

	requests := make([]analysis.Request, 0, len(files))
	for _, name := range files {
		data, err := os.ReadFile(name)
		if err != nil {
			log.Fatalf("Read %s: %v", name, err)
		}
		content, err := textlens.DecodeContent(data, *encoding)
		if err != nil {
			log.Fatalf("Decode %s: %v", name, err)
		}
		requests = append(requests, analysis.Request{
			Content:     content,
			ContentType: textlens.DetectContentType(name, data),
			Language:    *lang,
		})
	}

	ctx := context.Background()

	b, err := batch.Submit(ctx, requests,
		analysis.Operation(client, analysis.Kind(*kind)),
		batch.WithMaxConcurrent(*concurrency),
		batch.WithRetryAttempts(*retries),
		batch.WithRetryDelay(*retryDelay),
	)
	if err != nil {
		log.Fatalf("Submit error: %v", err)
	}

	// First interrupt cancels the batch, a second one kills the process.
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Printf("Batch %s: cancelling...", b.ID())
		b.Cancel()
		signal.Stop(sigChan)
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p := b.Progress()
			log.Printf("Batch %s: %d/%d done (%d in progress, %d pending, %d failed)",
				b.ID(), p.Completed+p.Failed, p.Total, p.InProgress, p.Pending, p.Failed)
		case <-b.Done():
			final, err := b.Wait(ctx)
			if err != nil {
				log.Fatalf("Batch %s: %v", b.ID(), err)
			}
			printSummary(files, final)
			if final.Failed > 0 {
				os.Exit(1)
			}
			return
		}
	}
}

func printSummary(files []string, p *batch.Progress[analysis.Request, analysis.Result]) {
	for _, item := range p.Results {
		name := files[item.Index]
		switch item.Status {
		case batch.StatusCompleted:
			fmt.Printf("%s: %d issue(s), score %.2f\n", name, len(item.Result.Issues), item.Result.Score)
			for _, issue := range item.Result.Issues {
				fmt.Printf("  [%s] %s (%d-%d)\n", issue.Severity, issue.Message, issue.Start, issue.End)
			}
		case batch.StatusFailed:
			fmt.Printf("%s: FAILED: %s\n", name, item.Err.Message)
		}
	}
	fmt.Printf("completed %d, failed %d of %d\n", p.Completed, p.Failed, p.Total)
}
