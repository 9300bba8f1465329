// Command modelprobe sends a short prompt to every candidate model and
// reports which ones the configured credentials can reach.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/gaedke-construction/smartquote/cmd/mainconfig"
	appconfig "github.com/gaedke-construction/smartquote/internal/config"
	"github.com/gaedke-construction/smartquote/internal/quote"
	"github.com/gaedke-construction/smartquote/pkg/logging"
)

const defaultProbePrompt = "Reply with the single word OK."

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	var (
		prompt  = flag.String("prompt", defaultProbePrompt, "prompt sent to each candidate")
		models  = flag.String("models", "", "comma-separated candidates (default MODEL_CANDIDATES)")
		timeout = flag.Duration("timeout", 30*time.Second, "timeout per candidate")
	)
	flag.Parse()

	cfg := appconfig.Load()
	if *models != "" {
		cfg.ModelCandidates = splitModels(*models)
	}
	logger := logging.New(cfg.LogLevel)

	ctx := context.Background()
	awsCfg, err := mainconfig.LoadAWSConfig(ctx, cfg)
	if err != nil {
		log.Fatalf("load AWS config: %v", err)
	}
	gen, _, closeGen, err := mainconfig.NewGenerator(ctx, cfg, awsCfg)
	if err != nil {
		log.Fatalf("model provider: %v", err)
	}
	defer closeGen()
	if gen == nil {
		log.Fatal("Missing API Key: set GEMINI_API_KEY (or GOOGLE_GENERATIVE_AI_API_KEY)")
	}

	gateway := quote.NewGateway(gen, cfg.ModelCandidates, nil, logger)
	fmt.Printf("Probing %d candidate(s) via %s\n\n", len(cfg.ModelCandidates), cfg.LLMProvider)
	if ok := probe(ctx, os.Stdout, gateway, *prompt, *timeout); ok == 0 {
		os.Exit(1)
	}
}

// probe tries every candidate and returns how many answered.
func probe(ctx context.Context, w io.Writer, gateway *quote.Gateway, prompt string, timeout time.Duration) int {
	ok := 0
	for _, modelID := range gateway.Candidates() {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		start := time.Now()
		attempt := gateway.Try(attemptCtx, modelID, prompt)
		elapsed := time.Since(start).Round(time.Millisecond)
		cancel()

		switch attempt.Status {
		case quote.AttemptOK:
			ok++
			fmt.Fprintf(w, "%-28s ok          %8s  %s\n", modelID, elapsed, oneLine(attempt.Text))
		default:
			fmt.Fprintf(w, "%-28s %-11s %8s  %v\n", modelID, attempt.Status, elapsed, attempt.Err)
		}
	}
	fmt.Fprintf(w, "\n%d of %d candidate(s) available\n", ok, len(gateway.Candidates()))
	return ok
}

func splitModels(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func oneLine(s string) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) > 60 {
		return s[:57] + "..."
	}
	return s
}
