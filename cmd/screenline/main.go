package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/1broseidon/screenline/internal/config"
	"github.com/1broseidon/screenline/internal/daemon"
	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/runtimepath"
	"github.com/1broseidon/screenline/internal/tui"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:]))
	case "flash":
		os.Exit(runFlash(os.Args[2:]))
	case "line":
		os.Exit(runLine(os.Args[2:]))
	case "box":
		os.Exit(runBox(os.Args[2:]))
	case "guides":
		os.Exit(runGuides(os.Args[2:]))
	case "topmost":
		os.Exit(runTopmost(os.Args[2:]))
	case "rival":
		os.Exit(runRival(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "menu":
		os.Exit(runMenu(os.Args[2:]))
	case "mcp":
		os.Exit(runMCP(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: screenline <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon              Start the screenline daemon (foreground)")
	fmt.Fprintln(w, "  status              Show daemon status")
	fmt.Fprintln(w, "  reload              Reload the settings file")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  flash               Flash the temporary line at the pointer")
	fmt.Fprintln(w, "  line show           Show a persistent line slot")
	fmt.Fprintln(w, "  line hide           Hide a persistent line slot")
	fmt.Fprintln(w, "  line toggle         Toggle a persistent line slot")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  box show|hide       Show or hide the bounding box")
	fmt.Fprintln(w, "  box reset           Center the box on the pointer's monitor")
	fmt.Fprintln(w, "  box copy            Copy the box geometry to the clipboard")
	fmt.Fprintln(w, "  box get             Print the box geometry")
	fmt.Fprintln(w, "  guides show|hide    Show or hide a guide set")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  topmost on|off      Keep overlays above rival windows")
	fmt.Fprintln(w, "  rival add|remove    Edit the rival window titles")
	fmt.Fprintln(w, "  rival windows       List open windows")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate     Validate configuration")
	fmt.Fprintln(w, "  config print        Print configuration")
	fmt.Fprintln(w, "  config path         Print the configuration file path")
	fmt.Fprintln(w, "  config explain      Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  menu                Open the interactive menu (TUI)")
	fmt.Fprintln(w, "  mcp serve           Start MCP server (stdio transport)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'screenline <command> --help' for command-specific options.")
}

func runDaemon(args []string) int {
	fs := flag.NewFlagSet("daemon", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	tray := fs.Bool("tray", false, "Show a system tray icon with the settings menu")
	path := fs.String("config", "", "Config file path (default: ~/.config/screenline/config.yaml)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: screenline daemon [--tray] [--config PATH]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "daemon takes no arguments")
		fs.Usage()
		return 2
	}

	err := daemon.Run(context.Background(), daemon.Options{ConfigPath: *path, Tray: *tray})
	if errors.Is(err, runtimepath.ErrAlreadyRunning) {
		fmt.Fprintln(os.Stderr, "screenline daemon is already running")
		return 1
	}
	if err != nil {
		log.Printf("Daemon failed: %v", err)
		return 1
	}
	return 0
}

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print the raw status as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: screenline status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show daemon status via IPC.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	client := ipc.NewClient()
	status, err := client.GetStatus()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if *asJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	fmt.Print(formatStatus(status, newStyler(os.Stdout)))
	return 0
}

func runReload(args []string) int {
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "Usage: screenline reload")
		if args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
			return 0
		}
		return 2
	}
	if err := ipc.NewClient().Reload(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  screenline config validate [--path PATH]")
		fmt.Fprintln(os.Stderr, "  screenline config print [--path PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  screenline config path")
		fmt.Fprintln(os.Stderr, "  screenline config explain [--path PATH] <yaml.path>")
		return 2
	}

	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Failed to load .env file: %v\n", err)
	}

	switch args[0] {
	case "validate":
		fs := flag.NewFlagSet("validate", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/screenline/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		if res.FirstRun {
			fmt.Printf("config: %s does not exist, defaults apply\n", res.Path)
			return 0
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs := flag.NewFlagSet("print", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/screenline/config.yaml)")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := cfg.Marshal()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "path":
		path, err := config.DefaultConfigPath()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println(path)
		return 0

	case "explain":
		fs := flag.NewFlagSet("explain", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		path := fs.String("path", "", "Config file path (default: ~/.config/screenline/config.yaml)")
		if err := fs.Parse(args[1:]); err != nil {
			return 2
		}
		if fs.NArg() < 1 {
			fmt.Fprintln(os.Stderr, "explain requires <yaml.path>")
			return 2
		}
		queryPath := fs.Arg(0)

		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, queryPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}

		fmt.Printf("path: %s\n", queryPath)
		fmt.Printf("source: %s\n", src.Describe())
		fmt.Printf("value:\n%s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFromPath(path)
}

func runMenu(args []string) int {
	fs := flag.NewFlagSet("menu", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: screenline menu")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Interactive terminal rendition of the tray menu. Requires a running daemon.")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Keybindings:")
		fmt.Fprintln(os.Stderr, "  j/k, ↑/↓        Navigate")
		fmt.Fprintln(os.Stderr, "  enter           Open submenu / apply item")
		fmt.Fprintln(os.Stderr, "  backspace       Back to parent menu")
		fmt.Fprintln(os.Stderr, "  tab/shift-tab   Switch tabs")
		fmt.Fprintln(os.Stderr, "  q/ctrl-c        Quit")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	if err := tui.Run(ipc.NewClient()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
