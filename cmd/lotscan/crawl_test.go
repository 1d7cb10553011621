package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"lotscan/internal/config"
	"lotscan/internal/model"
)

// TestNewCrawlCmd tests the crawl command creation.
func TestNewCrawlCmd(t *testing.T) {
	t.Parallel()

	cmd := NewCrawlCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "crawl [start-url]" {
			t.Errorf("expected use 'crawl [start-url]', got %q", cmd.Use)
		}
	})

	t.Run("has output flag with default", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("output")
		if flag == nil {
			t.Fatal("expected output flag")
		}
		if flag.DefValue != config.DefaultOutputPath {
			t.Errorf("expected default %q, got %q", config.DefaultOutputPath, flag.DefValue)
		}
	})

	t.Run("has max-pages flag", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("max-pages") == nil {
			t.Error("expected max-pages flag")
		}
	})

	t.Run("has opt-out flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("no-db") == nil {
			t.Error("expected no-db flag")
		}
		if cmd.Flags().Lookup("no-robots") == nil {
			t.Error("expected no-robots flag")
		}
	})
}

// TestBuildConfig tests config assembly from flags and config files.
func TestBuildConfig(t *testing.T) {
	t.Run("defaults without flags", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.StartURL != config.DefaultStartURL {
			t.Errorf("StartURL = %q, want default", cfg.StartURL)
		}
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB enabled by default")
		}
		if cfg.SkipRobots {
			t.Error("expected robots check enabled by default")
		}
	})

	t.Run("flags override defaults", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{
			"-p", "5",
			"-t", "10s",
			"--delay-min", "100ms",
			"--delay-max", "200ms",
			"-o", "out.json",
			"--no-db",
			"--no-robots",
		}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 5 {
			t.Errorf("MaxPages = %d, want 5", cfg.MaxPages)
		}
		if cfg.Timeout != 10*time.Second {
			t.Errorf("Timeout = %v, want 10s", cfg.Timeout)
		}
		if cfg.DelayMin != 100*time.Millisecond || cfg.DelayMax != 200*time.Millisecond {
			t.Errorf("delay range = (%v, %v), want (100ms, 200ms)", cfg.DelayMin, cfg.DelayMax)
		}
		if cfg.OutputPath != "out.json" {
			t.Errorf("OutputPath = %q, want out.json", cfg.OutputPath)
		}
		if cfg.SaveToDB {
			t.Error("expected SaveToDB disabled by --no-db")
		}
		if !cfg.SkipRobots {
			t.Error("expected robots check disabled by --no-robots")
		}
	})

	t.Run("positional url overrides start and listing URLs", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, []string{"https://other.example.com/auctions"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.StartURL != "https://other.example.com/auctions" {
			t.Errorf("StartURL = %q", cfg.StartURL)
		}
		if cfg.ListingURL != "https://other.example.com/auctions" {
			t.Errorf("ListingURL = %q", cfg.ListingURL)
		}
	})

	t.Run("config file applies before flags", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.yaml")
		content := "maxPages: 7\ntimeout: 5s\noutput: file.json\n"
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", configPath, "-o", "flag.json"}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildConfig(cmd, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.MaxPages != 7 {
			t.Errorf("MaxPages = %d, want 7 from config file", cfg.MaxPages)
		}
		if cfg.Timeout != 5*time.Second {
			t.Errorf("Timeout = %v, want 5s from config file", cfg.Timeout)
		}
		if cfg.OutputPath != "flag.json" {
			t.Errorf("OutputPath = %q, want flag to win over file", cfg.OutputPath)
		}
	})

	t.Run("explicit missing config file errors", func(t *testing.T) {
		cmd := NewCrawlCmd()
		if err := cmd.ParseFlags([]string{"-c", "/nonexistent/config.yaml"}); err != nil {
			t.Fatal(err)
		}

		if _, err := buildConfig(cmd, nil); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})
}

const crawlTestPageOne = `<!DOCTYPE html>
<html><body>
<ul>
  <li class="lot-tile">
    <a href="/lot/1"><img src="/img/1.jpg" alt="CNC Lathe"></a>
    <div class="lot-details">
      <p>Lot 1</p><p>Hamburg</p><p>2019</p><p>1,200 h</p><p>Well maintained lathe.</p>
    </div>
  </li>
  <li class="lot-tile">
    <a href="/lot/2"><img src="/img/2.jpg" alt="Hydraulic Press"></a>
    <div class="lot-details">
      <p>Lot 2</p><p>Rotterdam</p><p>2015</p><p>4,800 h</p><p>Press with tooling.</p>
    </div>
  </li>
</ul>
<ul class="pagination">
  <li><a href="1">1</a></li>
  <li><a href="2">2</a></li>
</ul>
</body></html>`

const crawlTestPageTwo = `<!DOCTYPE html>
<html><body>
<ul>
  <li class="lot-tile">
    <a href="/lot/3"><img src="/img/3.jpg" alt="Vertical Mill"></a>
  </li>
</ul>
</body></html>`

// TestCrawlCommand runs the crawl command end to end against a local server.
func TestCrawlCommand(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/lots", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			_, _ = w.Write([]byte(crawlTestPageTwo))
			return
		}
		_, _ = w.Write([]byte(crawlTestPageOne))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "out", "products.json")
	markdownPath := filepath.Join(t.TempDir(), "report.md")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"crawl", server.URL + "/lots",
		"-o", outputPath,
		"-m", markdownPath,
		"--delay-min", "0s",
		"--delay-max", "0s",
		"--no-db",
		"--no-robots",
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(outputPath)
	if err != nil {
		t.Fatalf("expected JSON output file: %v", err)
	}

	var products []model.Product
	if err := json.Unmarshal(data, &products); err != nil {
		t.Fatalf("output is not valid JSON: %v", err)
	}
	if len(products) != 3 {
		t.Fatalf("decoded %d products, want 3", len(products))
	}

	if products[0].Title != "CNC Lathe" {
		t.Errorf("first title = %q, want CNC Lathe", products[0].Title)
	}
	if products[0].Location != "Hamburg" {
		t.Errorf("first location = %q, want Hamburg", products[0].Location)
	}
	if products[0].Usage != "1,200 h" {
		t.Errorf("first usage = %q, want 1,200 h", products[0].Usage)
	}
	if products[0].Link != "https://www.industrialauctionhub.com/lot/1" {
		t.Errorf("first link = %q, want resolved against the site origin", products[0].Link)
	}

	// The third container carries no details block
	if products[2].Title != "Vertical Mill" {
		t.Errorf("third title = %q, want Vertical Mill", products[2].Title)
	}
	if products[2].Location != model.Sentinel || products[2].Description != model.Sentinel {
		t.Error("expected sentinel values for missing detail fields")
	}

	// Four-space indentation in the JSON file
	if !strings.Contains(string(data), "\n    \"title\"") {
		t.Error("expected four-space indented JSON output")
	}

	md, err := os.ReadFile(markdownPath)
	if err != nil {
		t.Fatalf("expected markdown summary file: %v", err)
	}
	if !strings.Contains(string(md), "# Crawl Report") {
		t.Error("expected markdown report header")
	}
}

// TestCrawlCommandRobotsDisallow verifies the crawl refuses a disallowed URL.
func TestCrawlCommandRobotsDisallow(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/robots.txt", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("User-agent: *\nDisallow: /lots\n"))
	})
	mux.HandleFunc("/lots", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(crawlTestPageOne))
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	outputPath := filepath.Join(t.TempDir(), "products.json")

	cmd := NewRootCmd()
	cmd.SetArgs([]string{
		"crawl", server.URL + "/lots",
		"-o", outputPath,
		"--no-db",
	})

	err := cmd.Execute()
	if err == nil {
		t.Fatal("expected error for robots.txt disallow")
	}
	if !strings.Contains(err.Error(), "robots.txt") {
		t.Errorf("error = %v, want robots.txt mention", err)
	}

	if _, statErr := os.Stat(outputPath); !os.IsNotExist(statErr) {
		t.Error("expected no output file for a refused crawl")
	}
}
