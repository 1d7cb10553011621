package report

import (
	"fmt"
	"io"
	"strconv"
	"time"
	"unicode/utf8"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"
)

// maxProductTableRows caps the product table in markdown output so a large
// crawl does not produce an unreadable report.
const maxProductTableRows = 50

// MarkdownWriter outputs crawl results in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the crawl result in Markdown format.
func (w *MarkdownWriter) Write(result *Result) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, result)
	w.writeSummary(md, result)
	w.writeProducts(md, result)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with crawl information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, result *Result) {
	md.H1("Crawl Report")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Start URL", "`" + result.StartURL + "`"},
			{"Crawl Date", result.StartedAt.Format("2006-01-02 15:04:05 MST")},
			{"Duration", result.Duration.Round(time.Millisecond).String()},
			{"Status", w.statusText(result)},
		},
	})
	md.PlainText("")
}

// statusText returns the status text based on result state.
func (w *MarkdownWriter) statusText(result *Result) string {
	if !result.Complete() {
		return "⚠️ Stopped early - " + result.Err
	}
	return "✅ Complete"
}

// writeSummary writes the record count summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, result *Result) {
	md.H2("Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Count"},
		Rows: [][]string{
			{"Pages crawled", strconv.Itoa(result.PagesCrawled)},
			{"Records extracted", strconv.Itoa(result.TotalRecords)},
			{"Unique records", strconv.Itoa(result.UniqueRecords())},
			{"Duplicates removed", strconv.Itoa(result.Duplicates())},
		},
	})
	md.PlainText("")

	if result.TotalRecords > 0 {
		w.writePieChart(md, result)
	}

	w.writeAlert(md, result)
}

// writePieChart writes a mermaid pie chart of unique vs duplicate records.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, result *Result) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Record Distribution"),
		piechart.WithShowData(true),
	)

	if result.UniqueRecords() > 0 {
		chart.LabelAndIntValue("Unique", uint64(result.UniqueRecords()))
	}
	if result.Duplicates() > 0 {
		chart.LabelAndIntValue("Duplicate", uint64(result.Duplicates()))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeAlert writes an appropriate alert based on the result state.
func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, result *Result) {
	switch {
	case !result.Complete():
		md.Warningf(
			"The crawl stopped before reaching the last page. %d record(s) were collected before the failure.",
			result.TotalRecords,
		)
	case result.TotalRecords == 0:
		md.Note("No records were extracted. Check the container selector against the site markup.")
	default:
		md.Tip(fmt.Sprintf("Collected %d unique record(s) across %d page(s).",
			result.UniqueRecords(), result.PagesCrawled))
	}
	md.PlainText("")
}

// writeProducts writes the extracted products table.
func (w *MarkdownWriter) writeProducts(md *markdown.Markdown, result *Result) {
	md.H2("Products")
	md.PlainText("")

	if len(result.Products) == 0 {
		md.PlainText("No products extracted.")
		md.PlainText("")
		return
	}

	products := result.Products
	capped := false
	if len(products) > maxProductTableRows {
		products = products[:maxProductTableRows]
		capped = true
	}

	rows := make([][]string, len(products))
	for i, p := range products {
		rows[i] = []string{
			truncateString(p.Title, 50),
			truncateString(p.Location, 30),
			truncateString(p.Usage, 20),
			truncateString(p.Link, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: []string{"Title", "Location", "Usage", "Link"},
		Rows:   rows,
	})
	md.PlainText("")

	if capped {
		md.PlainTextf("Showing %d of %d products. The full list is in the JSON output.",
			maxProductTableRows, len(result.Products))
		md.PlainText("")
	}
}

// truncateString truncates a string to maxLen runes with ellipsis.
func truncateString(s string, maxLen int) string {
	if utf8.RuneCountInString(s) <= maxLen {
		return s
	}

	runes := []rune(s)
	if maxLen <= 3 {
		return string(runes[:maxLen])
	}
	return string(runes[:maxLen-3]) + "..."
}
