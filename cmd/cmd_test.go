package cmd

import (
	"bytes"
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

// runCmd executes c with args, in an empty working directory, and returns what it printed.
func runCmd(t *testing.T, c subcommands.Command, args ...string) (subcommands.ExitStatus, string) {
	t.Helper()
	t.Chdir(t.TempDir())

	var buf bytes.Buffer
	oldStdout, oldOutput, oldConfig := stdout, *output, *configFile
	stdout, *output, *configFile = &buf, "markdown", "none.toml"
	defer func() { stdout, *output, *configFile = oldStdout, oldOutput, oldConfig }()

	f := flag.NewFlagSet("test", flag.ContinueOnError)
	c.SetFlags(f)
	if err := f.Parse(args); err != nil {
		t.Fatalf("parsing flags %v: %v", args, err)
	}
	status := c.Execute(context.Background(), f)
	return status, buf.String()
}

// createTempFile writes content in a temporary file and returns its path.
func createTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write temp file: %v", err)
	}
	return path
}

const testOrders = `{"id":"o1","symbol":"AAPL","side":"buy","filledQty":"10","filledAvgPrice":"150","status":"filled","createdAt":"2024-01-02T15:00:00Z","sliceId":"slc_a"}
{"id":"o2","symbol":"MSFT","side":"buy","filledQty":"2","filledAvgPrice":"300","status":"filled","createdAt":"2024-01-03T15:00:00Z","sliceId":"slc_m"}
{"id":"o3","symbol":"MSFT","side":"sell","filledQty":"2","filledAvgPrice":"310","status":"filled","createdAt":"2024-01-04T15:00:00Z","sliceId":"slc_m"}
{"id":"o4","symbol":"AAPL","side":"buy","filledQty":null,"filledAvgPrice":null,"status":"canceled","createdAt":"2024-01-05T15:00:00Z","sliceId":"slc_a"}
`

const testActions = `{"id":"1","type":"split","symbol":"AAPL","date":"2024-02-01","details":{"newRate":2,"oldRate":1}}
`

func TestRebalanceCmd(t *testing.T) {
	status, got := runCmd(t, &rebalanceCmd{}, "-weights", "50,50", "-values", "40,60", "-amount", "20")
	if status != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want ExitSuccess", status)
	}
	for _, want := range []string{
		"| 1 | 50% | 40.00 | +20.00 | 60.00 |",
		"| 2 | 50% | 60.00 | 0.00 | 60.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Execute() output misses %q:\n%s", want, got)
		}
	}
}

func TestRebalanceCmdErrors(t *testing.T) {
	if status, _ := runCmd(t, &rebalanceCmd{}, "-weights", "50,x", "-values", "40,60"); status != subcommands.ExitUsageError {
		t.Errorf("Execute() with invalid weights = %v, want ExitUsageError", status)
	}
	if status, _ := runCmd(t, &rebalanceCmd{}, "-weights", "50,50", "-values", "40"); status != subcommands.ExitFailure {
		t.Errorf("Execute() with mismatched lengths = %v, want ExitFailure", status)
	}
}

func TestHoldingCmd(t *testing.T) {
	orders := createTempFile(t, "orders.jsonl", testOrders)
	actions := createTempFile(t, "actions.jsonl", testActions)

	status, got := runCmd(t, &holdingCmd{}, "-orders", orders, "-actions", actions, "-d", "2024-03-01")
	if status != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want ExitSuccess", status)
	}
	for _, want := range []string{
		"# Holding on 2024-03-01",
		"| AAPL | 20 | $75.00 | $1,500.00 |",
		"| $0.00 | +$20.00 |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Execute() output misses %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "| MSFT |") {
		t.Errorf("Execute() output lists the closed MSFT position:\n%s", got)
	}
}

func TestHoldingCmdBeforeSplit(t *testing.T) {
	orders := createTempFile(t, "orders.jsonl", testOrders)
	actions := createTempFile(t, "actions.jsonl", testActions)

	_, got := runCmd(t, &holdingCmd{}, "-orders", orders, "-actions", actions, "-d", "2024-01-31", "-json")
	want := `{"symbol":"AAPL","qty":10,"costBasis":1500,"avgCostPerShare":150,"realizedPnl":0}
{"symbol":"MSFT","qty":0,"costBasis":0,"avgCostPerShare":0,"realizedPnl":20}
`
	if got != want {
		t.Errorf("Execute() =\n%s\nwant\n%s", got, want)
	}
}

func TestHoldingCmdByPortfolio(t *testing.T) {
	orders := createTempFile(t, "orders.jsonl", testOrders)
	slices := createTempFile(t, "slices.jsonl", `{"id":"slc_a","portfolioId":"p1","asset":{"id":"la_1","symbol":"AAPL"},"percent":100}
{"id":"slc_m","portfolioId":"p2","asset":{"id":"la_2","symbol":"MSFT"},"percent":100}
`)

	status, got := runCmd(t, &holdingCmd{}, "-orders", orders, "-slices", slices, "-by-portfolio")
	if status != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want ExitSuccess", status)
	}
	p1, p2, ok := strings.Cut(got, "# Portfolio p2")
	if !ok || !strings.HasPrefix(p1, "# Portfolio p1") {
		t.Fatalf("Execute() output misses a portfolio:\n%s", got)
	}
	if !strings.Contains(p1, "| AAPL | 10 |") {
		t.Errorf("portfolio p1 misses AAPL:\n%s", p1)
	}
	if !strings.Contains(p2, "No open position.") || !strings.Contains(p2, "+$20.00") {
		t.Errorf("portfolio p2 = \n%s", p2)
	}
}

func TestHoldingCmdMissingOrders(t *testing.T) {
	status, _ := runCmd(t, &holdingCmd{}, "-orders", filepath.Join(t.TempDir(), "none.jsonl"))
	if status != subcommands.ExitFailure {
		t.Errorf("Execute() = %v, want ExitFailure", status)
	}
}

func TestSlicesCmd(t *testing.T) {
	fund := createTempFile(t, "fund.jsonl", `{"asset":{"id":"la_1","symbol":"AAPL"},"percent":3}
{"asset":{"id":"la_2","symbol":"MSFT"},"percent":1}
`)
	status, got := runCmd(t, &slicesCmd{}, "-slices", "slices.jsonl", "-fund", fund, "-portfolio", "p1")
	if status != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want ExitSuccess", status)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("Execute() = %d slices, want 2:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[0], `"symbol":"AAPL"`) || !strings.Contains(lines[0], `"percent":75`) {
		t.Errorf("slice[0] = %s", lines[0])
	}
	if !strings.Contains(lines[1], `"portfolioId":"p1"`) || !strings.Contains(lines[1], `"percent":25`) {
		t.Errorf("slice[1] = %s", lines[1])
	}
}

func TestSlicesCmdOutsideFund(t *testing.T) {
	orders := createTempFile(t, "orders.jsonl", testOrders)
	fund := createTempFile(t, "fund.jsonl", `{"asset":{"id":"la_2","symbol":"MSFT"},"percent":1}
{"asset":{"id":"la_1","symbol":"AAPL"},"percent":0}
`)
	status, got := runCmd(t, &slicesCmd{}, "-fund", fund, "-portfolio", "p1", "-orders", orders)
	if status != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want ExitSuccess", status)
	}
	lines := strings.Split(strings.TrimSpace(got), "\n")
	if len(lines) != 2 {
		t.Fatalf("Execute() = %d slices, want 2:\n%s", len(lines), got)
	}
	if !strings.Contains(lines[1], `"symbol":"AAPL"`) || !strings.Contains(lines[1], `"percent":0`) {
		t.Errorf("slice for the held AAPL = %s", lines[1])
	}
}

func TestCompletionCoversCommands(t *testing.T) {
	commander := subcommands.NewCommander(flag.NewFlagSet("mfund", flag.ContinueOnError), "mfund")
	Register(commander)
	completion := Completion()

	commander.VisitCommands(func(_ *subcommands.CommandGroup, c subcommands.Command) {
		sub, ok := completion.Sub[c.Name()]
		if !ok {
			t.Errorf("Completion() misses command %q", c.Name())
			return
		}
		f := flag.NewFlagSet(c.Name(), flag.ContinueOnError)
		c.SetFlags(f)
		f.VisitAll(func(fl *flag.Flag) {
			if _, ok := sub.Flags[fl.Name]; !ok {
				t.Errorf("Completion() misses flag -%s of %q", fl.Name, c.Name())
			}
		})
	})
}

func TestTopicCmd(t *testing.T) {
	status, got := runCmd(t, &topicCmd{}, "rebalance")
	if status != subcommands.ExitSuccess {
		t.Fatalf("Execute() = %v, want ExitSuccess", status)
	}
	if !strings.HasPrefix(got, "# Rebalance\n") {
		t.Errorf("topic rebalance printed:\n%s", got)
	}

	if status, _ := runCmd(t, &topicCmd{}, "unknown"); status != subcommands.ExitFailure {
		t.Errorf("topic unknown = %v, want ExitFailure", status)
	}
}
