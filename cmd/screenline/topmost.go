package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/topmost"
)

func printTopmostUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  screenline topmost on  [--strategy polling|event] [--interval MS]")
	fmt.Fprintln(w, "  screenline topmost off")
	fmt.Fprintln(w, "  screenline topmost set [--strategy polling|event] [--interval MS]")
}

// topmostPayload builds a SET_TOPMOST request from the subcommand and flags.
// "set" leaves the enabled flag alone.
func topmostPayload(cmd, strategy string, interval int) (ipc.SetTopmostPayload, error) {
	var p ipc.SetTopmostPayload
	switch cmd {
	case "on", "off":
		enabled := cmd == "on"
		p.Enabled = &enabled
	case "set":
	default:
		return p, fmt.Errorf("unknown topmost command: %s", cmd)
	}
	if strategy != "" {
		if _, err := topmost.ParseStrategy(strategy); err != nil {
			return p, err
		}
		p.Strategy = strategy
	}
	if interval < 0 {
		return p, fmt.Errorf("interval must be positive")
	}
	p.IntervalMS = interval
	if p.Enabled == nil && p.Strategy == "" && p.IntervalMS == 0 {
		return p, fmt.Errorf("nothing to change")
	}
	return p, nil
}

func runTopmost(args []string) int {
	if len(args) == 0 {
		printTopmostUsage(os.Stderr)
		return 2
	}
	if isHelp(args) {
		printTopmostUsage(os.Stdout)
		return 0
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	strategy := fs.String("strategy", "", "How covering is noticed: polling or event")
	interval := fs.Int("interval", 0, "Polling interval in milliseconds")
	fs.Usage = func() { printTopmostUsage(os.Stderr) }
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "topmost %s takes no positional arguments\n", args[0])
		return 2
	}

	p, err := topmostPayload(args[0], *strategy, *interval)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		printTopmostUsage(os.Stderr)
		return 2
	}
	if err := ipc.NewClient().SetTopmost(p); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printRivalUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  screenline rival add <title>")
	fmt.Fprintln(w, "  screenline rival remove <title>")
	fmt.Fprintln(w, "  screenline rival list")
	fmt.Fprintln(w, "  screenline rival windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "A rival matches any foreground window whose title contains <title>,")
	fmt.Fprintln(w, "ignoring case.")
}

func runRival(args []string) int {
	if len(args) == 0 {
		printRivalUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	switch args[0] {
	case "add", "remove":
		title := strings.TrimSpace(strings.Join(args[1:], " "))
		if title == "" {
			fmt.Fprintf(os.Stderr, "rival %s requires <title>\n", args[0])
			return 2
		}
		var err error
		if args[0] == "add" {
			err = client.AddRival(title)
		} else {
			err = client.RemoveRival(title)
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0

	case "list":
		status, err := client.GetStatus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, r := range status.Topmost.Rivals {
			mark := "x"
			if !r.Enabled {
				mark = " "
			}
			fmt.Printf("[%s] %s\n", mark, r.Title)
		}
		return 0

	case "windows":
		data, err := client.GetWindows()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		for _, w := range data.Windows {
			class := w.Class
			if class == "" {
				class = "-"
			}
			fmt.Printf("0x%08x  %-24s  %s\n", w.ID, class, w.Title)
		}
		return 0

	case "help", "-h", "--help":
		printRivalUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown rival command: %s\n\n", args[0])
		printRivalUsage(os.Stderr)
		return 2
	}
}
