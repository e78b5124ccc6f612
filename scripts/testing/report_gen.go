// Command report_gen turns `go test -json` output into test reports. It
// joins each result with the TestPurpose/Scope/Security/Expected/Test Case
// ID preamble above the test function, so the reports carry the intent of
// every case, not just its name.
//
// Usage:
//
//	go test -json ./... > results.json
//	go run scripts/testing/report_gen.go -input results.json \
//	    -out-md report.md -out-json report.json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"go/ast"
	"go/parser"
	"go/token"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const modulePath = "github.com/keygate/keygate"

// Metadata is the structured preamble parsed from a test's doc comment.
type Metadata struct {
	Purpose    string `json:"purpose,omitempty"`
	Scope      string `json:"scope,omitempty"`
	Security   string `json:"security,omitempty"`
	Expected   string `json:"expected,omitempty"`
	TestCaseID string `json:"test_case_id,omitempty"`
}

// Result is one finished test joined with its metadata.
type Result struct {
	Name    string  `json:"name"`
	Package string  `json:"package"`
	Status  string  `json:"status"`
	Elapsed float64 `json:"elapsed_seconds"`
	Metadata
}

// Report is the full document written to the JSON output.
type Report struct {
	GeneratedAt time.Time `json:"generated_at"`
	Total       int       `json:"total"`
	Passed      int       `json:"passed"`
	Failed      int       `json:"failed"`
	Skipped     int       `json:"skipped"`
	Results     []Result  `json:"results"`
}

// testEvent mirrors the `go test -json` event stream.
type testEvent struct {
	Action  string  `json:"Action"`
	Package string  `json:"Package"`
	Test    string  `json:"Test"`
	Elapsed float64 `json:"Elapsed"`
}

func main() {
	inputPath := flag.String("input", "", "path to go test -json output")
	outJSON := flag.String("out-json", "", "path for the JSON report")
	outMD := flag.String("out-md", "", "path for the Markdown report")
	title := flag.String("title", "Keygate Test Report", "report title")
	flag.Parse()

	if *inputPath == "" {
		fmt.Fprintln(os.Stderr, "report_gen: -input is required")
		os.Exit(2)
	}

	meta, err := scanMetadata(".")
	if err != nil {
		fmt.Fprintf(os.Stderr, "report_gen: scan sources: %v\n", err)
		os.Exit(1)
	}

	results, err := collectResults(*inputPath, meta)
	if err != nil {
		fmt.Fprintf(os.Stderr, "report_gen: parse results: %v\n", err)
		os.Exit(1)
	}

	report := buildReport(results)
	if *outJSON != "" {
		if err := writeJSON(report, *outJSON); err != nil {
			fmt.Fprintf(os.Stderr, "report_gen: %v\n", err)
			os.Exit(1)
		}
	}
	if *outMD != "" {
		if err := writeMarkdown(report, *outMD, *title); err != nil {
			fmt.Fprintf(os.Stderr, "report_gen: %v\n", err)
			os.Exit(1)
		}
	}
	fmt.Printf("%d tests: %d passed, %d failed, %d skipped\n",
		report.Total, report.Passed, report.Failed, report.Skipped)
	if report.Failed > 0 {
		os.Exit(1)
	}
}

// scanMetadata walks the tree and parses the preamble comment above every
// Test function, keyed by "package-path.TestName".
func scanMetadata(root string) (map[string]Metadata, error) {
	meta := make(map[string]Metadata)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if name := d.Name(); name == "vendor" || strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.HasSuffix(path, "_test.go") {
			return nil
		}

		fset := token.NewFileSet()
		file, err := parser.ParseFile(fset, path, nil, parser.ParseComments)
		if err != nil {
			return nil // skip unparsable files rather than abort the report
		}
		pkgPath := packagePath(filepath.Dir(path))
		for _, decl := range file.Decls {
			fn, ok := decl.(*ast.FuncDecl)
			if !ok || fn.Doc == nil || !strings.HasPrefix(fn.Name.Name, "Test") {
				continue
			}
			meta[pkgPath+"."+fn.Name.Name] = parsePreamble(fn.Doc.Text())
		}
		return nil
	})
	return meta, err
}

func packagePath(dir string) string {
	dir = filepath.ToSlash(filepath.Clean(dir))
	if dir == "." {
		return modulePath
	}
	return modulePath + "/" + strings.TrimPrefix(dir, "./")
}

// parsePreamble pulls the labelled lines out of a doc comment. Labels run
// to the next label or the end of the comment, so values may wrap.
func parsePreamble(doc string) Metadata {
	fields := map[string]*string{}
	var m Metadata
	fields["TestPurpose:"] = &m.Purpose
	fields["Scope:"] = &m.Scope
	fields["Security:"] = &m.Security
	fields["Expected:"] = &m.Expected
	fields["Test Case ID:"] = &m.TestCaseID

	var current *string
	for _, line := range strings.Split(doc, "\n") {
		line = strings.TrimSpace(line)
		matched := false
		for label, target := range fields {
			if rest, ok := strings.CutPrefix(line, label); ok {
				*target = strings.TrimSpace(rest)
				current = target
				matched = true
				break
			}
		}
		if !matched && current != nil && line != "" {
			*current += " " + line
		}
	}
	return m
}

// collectResults reduces the event stream to one terminal status per test.
// Subtests report under their parent's metadata.
func collectResults(path string, meta map[string]Metadata) ([]Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	results := make(map[string]*Result)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 1024*1024), 1024*1024)
	for scanner.Scan() {
		var ev testEvent
		if err := json.Unmarshal(scanner.Bytes(), &ev); err != nil || ev.Test == "" {
			continue
		}
		switch ev.Action {
		case "pass", "fail", "skip":
			key := ev.Package + "." + ev.Test
			parent := ev.Test
			if i := strings.IndexByte(parent, '/'); i >= 0 {
				parent = parent[:i]
			}
			results[key] = &Result{
				Name:     ev.Test,
				Package:  ev.Package,
				Status:   ev.Action,
				Elapsed:  ev.Elapsed,
				Metadata: meta[ev.Package+"."+parent],
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	out := make([]Result, 0, len(results))
	for _, r := range results {
		out = append(out, *r)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Package != out[j].Package {
			return out[i].Package < out[j].Package
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

func buildReport(results []Result) Report {
	report := Report{GeneratedAt: time.Now().UTC(), Total: len(results), Results: results}
	for _, r := range results {
		switch r.Status {
		case "pass":
			report.Passed++
		case "fail":
			report.Failed++
		case "skip":
			report.Skipped++
		}
	}
	return report
}

func writeJSON(report Report, path string) error {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func writeMarkdown(report Report, path, title string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "Generated: %s\n\n", report.GeneratedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "**%d** tests — %d passed, %d failed, %d skipped\n\n",
		report.Total, report.Passed, report.Failed, report.Skipped)

	b.WriteString("| Status | Test Case | Test | Package | Purpose |\n")
	b.WriteString("|---|---|---|---|---|\n")
	for _, r := range report.Results {
		status := map[string]string{"pass": "PASS", "fail": "**FAIL**", "skip": "skip"}[r.Status]
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s |\n",
			status, r.TestCaseID, r.Name,
			strings.TrimPrefix(r.Package, modulePath+"/"), r.Purpose)
	}

	if report.Failed > 0 {
		b.WriteString("\n## Failures\n\n")
		for _, r := range report.Results {
			if r.Status != "fail" {
				continue
			}
			fmt.Fprintf(&b, "### %s (%s)\n\n", r.Name, r.TestCaseID)
			if r.Expected != "" {
				fmt.Fprintf(&b, "Expected: %s\n\n", r.Expected)
			}
			if r.Security != "" {
				fmt.Fprintf(&b, "Security: %s\n\n", r.Security)
			}
		}
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}
