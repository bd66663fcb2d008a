package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"shopify-insights/competitors"
	"shopify-insights/insights"
	"shopify-insights/internal/types"
)

func main() {
	// Load .env file if present
	_ = godotenv.Load()

	var (
		urlFlag         = flag.String("url", "", "Store root URL to extract insights from")
		competitorsFlag = flag.Bool("competitors", false, "Discover competitors instead of extracting the store itself")
		limitFlag       = flag.Int("limit", 3, "Maximum number of competitors to analyze")
		outputFlag      = flag.String("output", "", "Output file path (default: stdout)")
		requestDelay    = flag.Duration("delay", 200*time.Millisecond, "Delay between requests")
		maxRetries      = flag.Int("retries", 2, "Maximum retry attempts")
		timeout         = flag.Duration("timeout", 10*time.Second, "Request timeout")
		useBrowser      = flag.Bool("browser", false, "Use headless browser for JavaScript-heavy storefronts")
		verbose         = flag.Bool("verbose", false, "Enable verbose logging")
	)
	flag.Parse()

	if *urlFlag == "" {
		log.Fatal("--url flag is required")
	}

	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		if level, err := logrus.ParseLevel(levelStr); err == nil {
			logger.SetLevel(level)
		}
	} else if *verbose {
		logger.SetLevel(logrus.DebugLevel)
	} else {
		logger.SetLevel(logrus.InfoLevel)
	}

	config := &types.Config{
		RequestDelay:       *requestDelay,
		MaxRetries:         *maxRetries,
		Timeout:            *timeout,
		UseHeadlessBrowser: *useBrowser,
		UserAgent:          types.DefaultConfig().UserAgent,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	storeURL := insights.NormalizeURL(*urlFlag)
	startTime := time.Now()

	var result any
	if *competitorsFlag {
		logger.Infof("Discovering competitors for %s", storeURL)
		discovery := competitors.NewService(storeURL, config, logger)
		defer discovery.Close()

		found := discovery.CompetitorInsights(ctx, *limitFlag)
		logger.Infof("Discovered %d competitor storefronts", len(found))
		result = found
	} else {
		service := insights.NewService(storeURL, config, logger)
		defer service.Close()

		ins, err := service.Insights(ctx)
		if err != nil {
			logger.Fatalf("Extraction failed: %v", err)
		}
		logger.Infof("Extracted %d products, %d FAQs, %d important links",
			len(ins.Products), len(ins.FAQs), len(ins.ImportantLinks))
		result = ins
	}

	jsonData, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		logger.Fatalf("Failed to marshal results: %v", err)
	}

	if *outputFlag != "" {
		if err := os.WriteFile(*outputFlag, jsonData, 0644); err != nil {
			logger.Fatalf("Failed to write output file: %v", err)
		}
		logger.Infof("Results written to: %s", *outputFlag)
	} else {
		fmt.Println(string(jsonData))
	}

	logger.Infof("Completed in %v", time.Since(startTime))
}
