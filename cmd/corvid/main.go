// Command corvid is a thin CLI wrapper around the interp package: it is
// explicitly out of the interpreter's core scope (argument parsing, script
// discovery, and the AST dump are external collaborators, not part of the
// Lexer/Parser/Evaluator triad).
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"github.com/corvidlang/corvid/interp"
)

func main() {
	app := &cli.App{
		Name:      "corvid",
		Usage:     "run programs written in the Corvid scripting language",
		ArgsUsage: "<source-path-or-literal> [-- script-args...]",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "tokens", Usage: "print the token stream and exit"},
			&cli.BoolFlag{Name: "ast", Usage: "print the AST as a tree and exit"},
			&cli.BoolFlag{Name: "watch", Usage: "re-run the script whenever the source file changes"},
			&cli.BoolFlag{Name: "parallel", Usage: "(with 'run' subcommand) execute multiple scripts concurrently"},
		},
		Commands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run one or more scripts",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "parallel", Usage: "run scripts concurrently and report all failures"},
				},
				Action: runCommand,
			},
		},
		Action: defaultAction,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func splitArgs(args cli.Args) (scriptArgs, passthrough []string) {
	all := args.Slice()
	for i, a := range all {
		if a == "--" {
			return all[:i], all[i+1:]
		}
	}
	return all, nil
}

func defaultAction(c *cli.Context) error {
	scriptArgs, passthrough := splitArgs(c.Args())
	if len(scriptArgs) == 0 {
		return cli.Exit("expected a source file path or literal code string", 1)
	}
	source := scriptArgs[0]

	if c.Bool("tokens") {
		return dumpTokens(source)
	}
	if c.Bool("ast") {
		return dumpAST(source)
	}
	if c.Bool("watch") {
		return watchAndRun(source, passthrough)
	}

	_, err := runOne(source, passthrough, os.Stdout, os.Stderr)
	return err
}

func runCommand(c *cli.Context) error {
	scriptArgs, passthrough := splitArgs(c.Args())
	if len(scriptArgs) == 0 {
		return cli.Exit("expected at least one source file", 1)
	}
	if !c.Bool("parallel") {
		for _, src := range scriptArgs {
			if _, err := runOne(src, passthrough, os.Stdout, os.Stderr); err != nil {
				return err
			}
		}
		return nil
	}

	// Parallel batch mode: one goroutine per script, errors collected by
	// errgroup so the first failure doesn't starve the others of output.
	// Each run gets its own Interpreter.ID, echoed as a header line so
	// interleaved stdout/stderr from concurrent scripts can be traced back
	// to the run that produced it.
	g, _ := errgroup.WithContext(context.Background())
	var mu sync.Mutex
	for _, src := range scriptArgs {
		src := src
		g.Go(func() error {
			var out, errOut strings.Builder
			id, err := runOne(src, passthrough, &out, &errOut)
			mu.Lock()
			fmt.Fprintf(os.Stderr, "--- [%s] %s ---\n", id, src)
			fmt.Fprint(os.Stdout, out.String())
			fmt.Fprint(os.Stderr, errOut.String())
			mu.Unlock()
			return err
		})
	}
	return g.Wait()
}

// sourceOrLiteral treats an argument that names an existing file as a file
// path; otherwise it is evaluated directly as a source literal.
func sourceOrLiteral(source string) (path, text string, err error) {
	if info, statErr := os.Stat(source); statErr == nil && !info.IsDir() {
		data, readErr := os.ReadFile(source)
		if readErr != nil {
			return "", "", readErr
		}
		return source, string(data), nil
	}
	return "<literal>", source, nil
}

// runOne evaluates a single script, returning the Interpreter.ID that ran it
// alongside the usual error so parallel callers can tag their output by it.
func runOne(source string, scriptArgs []string, stdout, stderr interface{ Write([]byte) (int, error) }) (uuid.UUID, error) {
	path, text, err := sourceOrLiteral(source)
	if err != nil {
		return uuid.Nil, cli.Exit(err.Error(), 1)
	}

	i := interp.New(interp.Options{
		Stdout: bufio.NewWriter(stdout),
		Stderr: bufio.NewWriter(stderr),
		Args:   scriptArgs,
	})
	defer i.Flush()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	val, diag := i.Eval(ctx, path, text)
	if diag != nil {
		fmt.Fprintln(stderr, diag.AsString())
		return i.ID, cli.Exit("", 1)
	}

	if n, isNum := val.(interp.Number); isNum {
		code := int(n.F())
		if code != 0 {
			return i.ID, cli.Exit("", code)
		}
	}
	return i.ID, nil
}

func watchAndRun(source string, scriptArgs []string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(source); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "watching %s for changes (ctrl-c to stop)\n", source)
	_, _ = runOne(source, scriptArgs, os.Stdout, os.Stderr)

	for event := range watcher.Events {
		if event.Op&(fsnotify.Write|fsnotify.Create) != 0 {
			fmt.Fprintf(os.Stderr, "--- re-running %s ---\n", source)
			_, _ = runOne(source, scriptArgs, os.Stdout, os.Stderr)
		}
	}
	return nil
}

func dumpTokens(source string) error {
	_, text, err := sourceOrLiteral(source)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	tokens, diag := interp.NewLexer(source, text).Tokenize()
	if diag != nil {
		fmt.Fprintln(os.Stderr, diag.AsString())
		return cli.Exit("", 1)
	}
	for _, tok := range tokens {
		fmt.Println(tok.String())
	}
	return nil
}

func dumpAST(source string) error {
	_, text, err := sourceOrLiteral(source)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	root, diag := interp.ParseSource(source, text)
	if diag != nil {
		fmt.Fprintln(os.Stderr, diag.AsString())
		return cli.Exit("", 1)
	}
	printTree(root, "", true)
	return nil
}

// printTree is a minimal unicode-box AST dump — intentionally not a fully
// engineered pretty-printer, since that subsystem is out of the
// interpreter's core scope.
func printTree(n interp.Node, prefix string, last bool) {
	connector := "├── "
	if last {
		connector = "└── "
	}
	fmt.Printf("%s%s%T\n", prefix, connector, n)

	childPrefix := prefix + "│   "
	if last {
		childPrefix = prefix + "    "
	}
	children := interp.Children(n)
	for i, child := range children {
		printTree(child, childPrefix, i == len(children)-1)
	}
}
