package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/hashicorp/go-hclog"

	"github.com/saylorsolutions/logframe/pkg/doc"
	"github.com/saylorsolutions/logframe/pkg/pipeline"
	"github.com/saylorsolutions/logframe/plugin"
	"github.com/saylorsolutions/logframe/plugin/file"
	"github.com/saylorsolutions/logframe/plugin/stdstream"
	"github.com/saylorsolutions/logframe/plugin/store"
	"github.com/saylorsolutions/logframe/runtime"
)

func main() {
	log := hclog.Default()
	if len(os.Args) <= 1 {
		usage()
		return
	}
	args := os.Args[1:]
	switch args[0] {
	case "cat":
		if err := doCat(log, false, args[1:]...); err != nil {
			exitError("Failed to read file: %v", err)
		}
	case "tail":
		if err := doCat(log, true, args[1:]...); err != nil {
			exitError("Failed to tail file: %v", err)
		}
	case "land":
		if err := doLand(log, args[1:]...); err != nil {
			exitError("Failed to land file: %v", err)
		}
	case "plugins":
		doPrintPlugins()
	case "help":
		usage()
	default:
		exitError("Unrecognized command: '%s'", args[0])
	}
}

func exitError(format string, args ...any) {
	if !strings.HasSuffix(format, "\n") {
		format += "\n"
	}
	fmt.Printf("Error: "+format, args...)
	usage()
	os.Exit(-1)
}

func usage() {
	text := `
logframe reads log frames from files or stdin, decodes them into structured
documents, and emits them as JSON lines or lands them in SQLite.

  logframe help
  logframe plugins
  logframe cat FILE [FORMAT] [FIELD]
  logframe tail FILE [FORMAT] [FIELD]
  logframe land FILE DB_FILE TABLE [FORMAT]

FORMAT selects the frame decoder: "json" (the default), "rfc5424", or "rfc3164".
FIELD names a document field holding embedded JSON text; when given, that
field is deserialized and merged into the document root.

The 'help' subcommand will print this usage information.
The 'plugins' subcommand will print the documentation for all plugins loaded into the session for this program.
The 'cat' subcommand will decode each line of FILE and print one JSON document per line to stdout.
The 'tail' subcommand behaves like 'cat' but keeps following FILE for new lines until interrupted.
The 'land' subcommand will decode each line of FILE and store the documents in the given SQLite table.
`
	fmt.Print(text)
}

func plugins() []plugin.Plugin {
	return []plugin.Plugin{
		file.Plugin(),
		stdstream.Plugin(),
		store.Plugin(),
	}
}

func doPrintPlugins() {
	reg := plugin.NewRegistration()
	for _, p := range plugins() {
		p.Register(reg)
	}
	fmt.Println("Plugins extend logframe with technology specific sources and sinks")
	fmt.Println()
	fmt.Print(reg.AllDocs())
}

func session(log hclog.Logger) (*runtime.Session, error) {
	s := runtime.NewSession(log, plugins()...)
	if err := s.Start(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func doCat(log hclog.Logger, follow bool, args ...string) (rerr error) {
	if len(args) < 1 {
		return errors.New("not enough arguments")
	}
	s, err := session(log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(); err != nil {
			log.Error("Error while stopping session", "error", err)
			rerr = err
		}
	}()
	class := "File"
	if follow {
		class = "Tail"
	}
	if err := s.Source("in", "file", class, args...); err != nil {
		return err
	}
	if len(args) >= 3 {
		field, err := doc.ParsePointer("/" + args[2])
		if err != nil {
			return err
		}
		if err := s.Transform("in", pipeline.NewJSON(pipeline.JSONConfig{
			Source: field,
			Target: &doc.Root,
		})); err != nil {
			return err
		}
	}
	return s.Sink("in", "std", "Out")
}

func doLand(log hclog.Logger, args ...string) (rerr error) {
	if len(args) < 3 {
		return errors.New("not enough arguments")
	}
	s, err := session(log)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Stop(); err != nil {
			log.Error("Error while stopping session", "error", err)
			rerr = err
		}
	}()
	srcArgs := []string{args[0]}
	if len(args) >= 4 {
		srcArgs = append(srcArgs, args[3])
	}
	if err := s.Source("in", "file", "File", srcArgs...); err != nil {
		return err
	}
	return s.Sink("in", "sqlite", "Table", args[1], args[2])
}
