package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"

	"github.com/1broseidon/screenline/internal/ipc"
	"github.com/1broseidon/screenline/internal/overlay"
	"github.com/1broseidon/screenline/internal/pool"
)

func isHelp(args []string) bool {
	return len(args) > 0 && (args[0] == "help" || args[0] == "-h" || args[0] == "--help")
}

func runFlash(args []string) int {
	if isHelp(args) {
		fmt.Fprintln(os.Stdout, "Usage: screenline flash")
		fmt.Fprintln(os.Stdout, "")
		fmt.Fprintln(os.Stdout, "Flash the temporary line at the pointer, as its hotkey does.")
		return 0
	}
	if len(args) != 0 {
		fmt.Fprintln(os.Stderr, "flash takes no arguments")
		return 2
	}
	if err := ipc.NewClient().FlashLine(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printLineUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  screenline line show   [--kind vertical|horizontal] [--slot N]")
	fmt.Fprintln(w, "  screenline line hide   [--kind vertical|horizontal] [--slot N]")
	fmt.Fprintln(w, "  screenline line toggle [--kind vertical|horizontal] [--slot N]")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Slots are numbered 1-%d, matching the digit of the default hotkeys.\n", pool.MaxSlots)
}

// parseLineArgs parses the flags shared by the line subcommands.
func parseLineArgs(name string, args []string) (kind string, slot int, code int) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	kindFlag := fs.String("kind", "vertical", "Line orientation: vertical or horizontal")
	slotFlag := fs.Int("slot", 1, fmt.Sprintf("Hotkey slot (1-%d)", pool.MaxSlots))
	fs.Usage = func() { printLineUsage(os.Stderr) }
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return "", 0, 0
		}
		return "", 0, 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "line %s takes no positional arguments\n", name)
		return "", 0, 2
	}
	if err := validateLine(*kindFlag, *slotFlag); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return "", 0, 2
	}
	return *kindFlag, *slotFlag, -1
}

// validateLine rejects what the daemon would reject, without a round trip.
func validateLine(kind string, slot int) error {
	if _, err := overlay.ParseLineKind(kind); err != nil {
		return err
	}
	if slot < 1 || slot > pool.MaxSlots {
		return fmt.Errorf("slot must be between 1 and %d", pool.MaxSlots)
	}
	return nil
}

func runLine(args []string) int {
	if len(args) == 0 {
		printLineUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	var call func(kind string, slot int) error
	switch args[0] {
	case "show":
		call = client.ShowLine
	case "hide":
		call = client.HideLine
	case "toggle":
		call = client.ToggleLine
	case "help", "-h", "--help":
		printLineUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown line command: %s\n\n", args[0])
		printLineUsage(os.Stderr)
		return 2
	}

	kind, slot, code := parseLineArgs(args[0], args[1:])
	if code >= 0 {
		return code
	}
	if err := call(kind, slot); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func printBoxUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  screenline box show")
	fmt.Fprintln(w, "  screenline box hide")
	fmt.Fprintln(w, "  screenline box reset")
	fmt.Fprintln(w, "  screenline box copy")
	fmt.Fprintln(w, "  screenline box get [--json]")
}

func runBox(args []string) int {
	if len(args) == 0 {
		printBoxUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch args[0] {
	case "show":
		err = client.ShowBox()
	case "hide":
		err = client.HideBox()
	case "reset":
		err = client.ResetBox()
	case "copy":
		var box *ipc.BoxData
		if box, err = client.CopyBox(); err == nil {
			fmt.Println(box.ClipboardText())
		}
	case "get":
		fs := flag.NewFlagSet("get", flag.ContinueOnError)
		fs.SetOutput(os.Stderr)
		asJSON := fs.Bool("json", false, "Print as JSON")
		if perr := fs.Parse(args[1:]); perr != nil {
			if perr == flag.ErrHelp {
				return 0
			}
			return 2
		}
		var box *ipc.BoxData
		if box, err = client.GetBox(); err == nil {
			fmt.Print(formatBox(box, *asJSON))
		}
	case "help", "-h", "--help":
		printBoxUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown box command: %s\n\n", args[0])
		printBoxUsage(os.Stderr)
		return 2
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

func formatBox(box *ipc.BoxData, asJSON bool) string {
	if asJSON {
		data, _ := json.Marshal(box)
		return string(data) + "\n"
	}
	state := "hidden"
	if box.Visible {
		state = "visible"
	}
	return fmt.Sprintf("%s %s\n", box.ClipboardText(), state)
}

func printGuidesUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  screenline guides show [--set 1-%d]\n", pool.GuideSets)
	fmt.Fprintf(w, "  screenline guides hide [--set 1-%d]\n", pool.GuideSets)
}

func runGuides(args []string) int {
	if len(args) == 0 {
		printGuidesUsage(os.Stderr)
		return 2
	}

	client := ipc.NewClient()
	var call func(set int) error
	switch args[0] {
	case "show":
		call = client.ShowGuides
	case "hide":
		call = client.HideGuides
	case "help", "-h", "--help":
		printGuidesUsage(os.Stdout)
		return 0
	default:
		fmt.Fprintf(os.Stderr, "Unknown guides command: %s\n\n", args[0])
		printGuidesUsage(os.Stderr)
		return 2
	}

	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	set := fs.Int("set", 1, fmt.Sprintf("Guide set (1-%d)", pool.GuideSets))
	if err := fs.Parse(args[1:]); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if *set < 1 || *set > pool.GuideSets {
		fmt.Fprintf(os.Stderr, "set must be between 1 and %d\n", pool.GuideSets)
		return 2
	}
	if err := call(*set); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
