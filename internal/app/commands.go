package app

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/dshills/dbcedit/internal/dbc"
	"github.com/dshills/dbcedit/internal/overlay"
	"github.com/dshills/dbcedit/internal/session"
)

// command is one entry of the command loop. Message arguments are the
// identifiers currently displayed by list.
type command struct {
	usage string
	help  string
	run   func(ctx context.Context, app *Application, args []string) error
}

var commands map[string]command

func init() {
	commands = map[string]command{
		"list":    {"list", "list all messages", cmdList},
		"search":  {"search <text>", "list messages whose name or signals match", cmdSearch},
		"show":    {"show <id>", "show a message and its signals", cmdShow},
		"rename":  {"rename <id> <name>", "rename a message", cmdRename},
		"size":    {"size <id> <bytes>", "change the payload size", cmdSize},
		"id":      {"id <id> <new-id>", "change the message identifier", cmdID},
		"ext":     {"ext <id> on|off", "switch between extended and standard frames", cmdExtended},
		"comment": {"comment <id> <text...>", "change the message comment", cmdComment},
		"tx":      {"tx <id> <node>", "change the transmitting node", cmdTransmitter},
		"delete":  {"delete <id>", "delete a message", cmdDelete},
		"new":     {"new <id>", "create a message with default fields", cmdNew},
		"dup":     {"dup <id> <new-id>", "duplicate a message under a new identifier", cmdDuplicate},
		"undo":    {"undo", "undo the last edit", cmdUndo},
		"redo":    {"redo", "redo the last undone edit", cmdRedo},
		"history": {"history", "list undoable and redoable edits", cmdHistory},
		"status":  {"status", "show document and history state", cmdStatus},
		"run":     {"run <script.lua>", "run a Lua edit script", cmdRun},
		"metrics": {"metrics", "print session metrics", cmdMetrics},
		"help":    {"help", "list commands", cmdHelp},
		"quit":    {"quit", "exit", cmdQuit},
	}
	commands["exit"] = commands["quit"]
}

func want(args []string, n int, cmd string) error {
	if len(args) != n {
		return usage(commands[cmd].usage)
	}
	return nil
}

func parseID(s string) (uint32, error) {
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil || v > dbc.MaxExtendedID {
		return 0, fmt.Errorf("invalid message id %q", s)
	}
	return uint32(v), nil
}

// resolve maps a displayed identifier to the original identifier the
// session keys messages by.
func (app *Application) resolve(s string) (uint32, error) {
	id, err := parseID(s)
	if err != nil {
		return 0, err
	}
	v, ok := app.session.Lookup(id)
	if !ok {
		return 0, fmt.Errorf("%w: 0x%X", session.ErrMessageNotFound, id)
	}
	return v.OriginalID(), nil
}

func (app *Application) printViews(views []overlay.MessageView) {
	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	for _, v := range views {
		frame := "std"
		if v.Extended() {
			frame = "ext"
		}
		fmt.Fprintf(tw, "0x%03X\t%s\t%d\t%s\t%s\t%s\n",
			v.ID(), v.Name(), v.Size(), frame, v.Transmitter(), v.Origin())
	}
	tw.Flush()
}

func cmdList(_ context.Context, app *Application, args []string) error {
	if err := want(args, 0, "list"); err != nil {
		return err
	}
	app.printViews(app.session.Messages())
	return nil
}

func cmdSearch(_ context.Context, app *Application, args []string) error {
	if len(args) == 0 {
		return usage(commands["search"].usage)
	}
	app.printViews(app.session.Search(strings.Join(args, " ")))
	return nil
}

func cmdShow(_ context.Context, app *Application, args []string) error {
	if err := want(args, 1, "show"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	v, _ := app.session.Message(id)
	fmt.Fprintf(app.out, "%s (%s)\n", v.Resolve(), v.Origin())
	if c := v.Comment(); c != "" {
		fmt.Fprintf(app.out, "  comment: %s\n", c)
	}
	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	for _, s := range v.Signals() {
		fmt.Fprintf(tw, "  %s\t%d|%d@%s\t(%g,%g)\t[%g|%g]\t%q\n",
			s.Name, s.StartBit, s.Size, s.ByteOrder, s.Factor, s.Offset, s.Min, s.Max, s.Unit)
	}
	return tw.Flush()
}

func cmdRename(_ context.Context, app *Application, args []string) error {
	if err := want(args, 2, "rename"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	return app.session.RenameMessage(id, args[1])
}

func cmdSize(_ context.Context, app *Application, args []string) error {
	if err := want(args, 2, "size"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	n, err := strconv.ParseUint(args[1], 10, 8)
	if err != nil || n > dbc.MaxSize {
		return fmt.Errorf("invalid size %q", args[1])
	}
	return app.session.SetMessageSize(id, uint8(n))
}

func cmdID(_ context.Context, app *Application, args []string) error {
	if err := want(args, 2, "id"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	newID, err := parseID(args[1])
	if err != nil {
		return err
	}
	return app.session.SetMessageID(id, newID)
}

func cmdExtended(_ context.Context, app *Application, args []string) error {
	if err := want(args, 2, "ext"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	switch args[1] {
	case "on":
		return app.session.SetFrameFormat(id, true)
	case "off":
		return app.session.SetFrameFormat(id, false)
	default:
		return usage(commands["ext"].usage)
	}
}

func cmdComment(_ context.Context, app *Application, args []string) error {
	if len(args) < 1 {
		return usage(commands["comment"].usage)
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	return app.session.SetMessageComment(id, strings.Join(args[1:], " "))
}

func cmdTransmitter(_ context.Context, app *Application, args []string) error {
	if err := want(args, 2, "tx"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	return app.session.SetMessageTransmitter(id, args[1])
}

func cmdDelete(_ context.Context, app *Application, args []string) error {
	if err := want(args, 1, "delete"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	return app.session.DeleteMessage(id)
}

func cmdNew(_ context.Context, app *Application, args []string) error {
	if err := want(args, 1, "new"); err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	return app.session.NewMessage(id)
}

func cmdDuplicate(_ context.Context, app *Application, args []string) error {
	if err := want(args, 2, "dup"); err != nil {
		return err
	}
	id, err := app.resolve(args[0])
	if err != nil {
		return err
	}
	newID, err := parseID(args[1])
	if err != nil {
		return err
	}
	return app.session.DuplicateMessage(id, newID)
}

func cmdUndo(_ context.Context, app *Application, args []string) error {
	if err := want(args, 0, "undo"); err != nil {
		return err
	}
	desc, _ := app.session.UndoDescription()
	if err := app.session.Undo(); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "undone: %s\n", desc)
	return nil
}

func cmdRedo(_ context.Context, app *Application, args []string) error {
	if err := want(args, 0, "redo"); err != nil {
		return err
	}
	desc, _ := app.session.RedoDescription()
	if err := app.session.Redo(); err != nil {
		return err
	}
	fmt.Fprintf(app.out, "redone: %s\n", desc)
	return nil
}

func cmdHistory(_ context.Context, app *Application, args []string) error {
	if err := want(args, 0, "history"); err != nil {
		return err
	}
	for _, info := range app.session.UndoInfo() {
		fmt.Fprintf(app.out, "  undo  %s\n", info.Description)
	}
	for _, info := range app.session.RedoInfo() {
		fmt.Fprintf(app.out, "  redo  %s\n", info.Description)
	}
	return nil
}

func cmdStatus(_ context.Context, app *Application, args []string) error {
	if err := want(args, 0, "status"); err != nil {
		return err
	}
	path := app.session.Path()
	if path == "" {
		path = "(empty document)"
	}
	fmt.Fprintf(app.out, "%s: %d messages, %d modifications, %d undo, %d redo\n",
		path, len(app.session.Messages()), app.session.ModificationCount(),
		len(app.session.UndoInfo()), len(app.session.RedoInfo()))
	return nil
}

func cmdRun(ctx context.Context, app *Application, args []string) error {
	if err := want(args, 1, "run"); err != nil {
		return err
	}
	return app.RunScript(ctx, args[0])
}

func cmdMetrics(_ context.Context, app *Application, args []string) error {
	if err := want(args, 0, "metrics"); err != nil {
		return err
	}
	return app.metrics.WriteText(app.out)
}

func cmdHelp(_ context.Context, app *Application, _ []string) error {
	tw := tabwriter.NewWriter(app.out, 0, 4, 2, ' ', 0)
	for _, name := range slices.Sorted(maps.Keys(commands)) {
		if name == "exit" {
			continue
		}
		fmt.Fprintf(tw, "  %s\t%s\n", commands[name].usage, commands[name].help)
	}
	return tw.Flush()
}

func cmdQuit(_ context.Context, _ *Application, _ []string) error {
	return ErrQuit
}
