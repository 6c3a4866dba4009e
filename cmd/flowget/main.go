// Flowmart - Digital Product Marketplace and Download Gateway
// Copyright 2026 Flowmart Contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/flowmart/flowmart

// Package main is flowget, a terminal client for the Flowmart gateway.
//
// flowget drives the same download orchestration used by the web client:
// the first download on a device asks for an email, later downloads skip
// the gate, and each product is counted at most once per device.
//
// Usage:
//
//	flowget -server http://localhost:8642 -list
//	flowget -server http://localhost:8642 -out ./downloads <product-id>
//	flowget -server http://localhost:8642 -email a@b.com <product-id>
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/flowmart/flowmart/internal/catalog"
	"github.com/flowmart/flowmart/internal/download"
	"github.com/flowmart/flowmart/internal/logging"
)

func main() {
	var (
		serverURL = flag.String("server", "http://localhost:8642", "Flowmart gateway base URL")
		outDir    = flag.String("out", ".", "directory for downloaded files")
		prefsPath = flag.String("prefs", defaultPrefsPath(), "preference file holding the captured email and download flags")
		email     = flag.String("email", "", "email for the gate (prompted interactively when empty)")
		list      = flag.Bool("list", false, "list available products and exit")
		logLevel  = flag.String("log-level", "warn", "log level (trace, debug, info, warn, error)")
	)
	flag.Parse()

	logging.Init(logging.Config{Level: *logLevel, Format: "console"})

	if *list {
		if err := listProducts(*serverURL); err != nil {
			fmt.Fprintf(os.Stderr, "flowget: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "flowget: exactly one product id required (or -list)")
		flag.Usage()
		os.Exit(2)
	}
	productID := flag.Arg(0)

	if err := run(*serverURL, productID, *outDir, *prefsPath, *email); err != nil {
		fmt.Fprintf(os.Stderr, "flowget: %v\n", err)
		os.Exit(1)
	}
}

func defaultPrefsPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "flowmart-prefs.json"
	}
	return filepath.Join(home, ".config", "flowmart", "prefs.json")
}

func run(serverURL, productID, outDir, prefsPath, email string) error {
	product, err := fetchProduct(serverURL, productID)
	if err != nil {
		return err
	}

	prefs, err := download.OpenFilePrefStore(prefsPath)
	if err != nil {
		return err
	}

	orch := download.NewOrchestrator(download.Options{
		Client:   download.NewClient(serverURL),
		Prefs:    prefs,
		Save:     download.SaveToDir(outDir),
		OnChange: renderProgress,
	})

	ctx := context.Background()
	done, err := orch.StartDownload(ctx, product)
	if err != nil {
		return err
	}

	if !done {
		// The gate opened: collect an email and resume.
		if email == "" {
			email, err = promptEmail(product.Title)
			if err != nil {
				return err
			}
		}
		if done, err = orch.HandleEmailSubmit(ctx, email); err != nil {
			return err
		}
		if !done {
			return fmt.Errorf("download did not complete")
		}
	}

	// Let the completion state render before returning.
	time.Sleep(100 * time.Millisecond)
	fmt.Fprintf(os.Stderr, "\nSaved %s to %s\n", product.FileName, outDir)
	return nil
}

func renderProgress(s download.State) {
	if s.Err != "" {
		fmt.Fprintf(os.Stderr, "\nerror: %s\n", s.Err)
		return
	}
	if s.IsDownloading {
		fmt.Fprintf(os.Stderr, "\r%-30s %6.2f%%", s.FileName, s.Progress)
	}
}

func promptEmail(productTitle string) (string, error) {
	fmt.Fprintf(os.Stderr, "Enter your email to download %q: ", productTitle)
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("failed to read email: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// envelope mirrors the gateway's response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

func getJSON(url string, out interface{}) error {
	resp, err := http.Get(url)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if !env.Success {
		msg := "request failed"
		if env.Error != nil && env.Error.Message != "" {
			msg = env.Error.Message
		}
		return fmt.Errorf("%s (status %d)", msg, resp.StatusCode)
	}
	return json.Unmarshal(env.Data, out)
}

func fetchProduct(serverURL, productID string) (*catalog.Product, error) {
	var product catalog.Product
	if err := getJSON(strings.TrimRight(serverURL, "/")+"/api/v1/products/"+productID, &product); err != nil {
		return nil, fmt.Errorf("failed to fetch product %s: %w", productID, err)
	}
	return &product, nil
}

func listProducts(serverURL string) error {
	var products []catalog.Product
	if err := getJSON(strings.TrimRight(serverURL, "/")+"/api/v1/products?limit=100", &products); err != nil {
		return fmt.Errorf("failed to list products: %w", err)
	}

	for _, p := range products {
		fmt.Printf("%-20s %-40s %10s  v%s\n", p.ID, p.Title, p.FileSize, p.Version)
	}
	return nil
}
