/*
Package repl implements the Read-Eval-Print Loop for kalc.

Each line is compiled independently but shares one compile.Unit, so an
operator precedence declared on one line is still installed for the
next, and the module dump accumulates every function defined so far.
*/
package repl

import (
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/fatih/color"

	"github.com/kale-lang/kalc/compile"
	"github.com/kale-lang/kalc/lower"
)

var (
	blueColor   = color.New(color.FgBlue)
	yellowColor = color.New(color.FgYellow)
	redColor    = color.New(color.FgRed)
	greenColor  = color.New(color.FgGreen)
	cyanColor   = color.New(color.FgCyan)
)

// Repl is an interactive session over one shared compile.Unit.
type Repl struct {
	Banner  string
	Version string
	Author  string
	Line    string
	License string
	Prompt  string
}

// New returns a Repl with the given banner/version/prompt configuration.
func New(banner, version, author, line, license, prompt string) *Repl {
	return &Repl{Banner: banner, Version: version, Author: author, Line: line, License: license, Prompt: prompt}
}

// PrintBannerInfo writes the startup banner and usage hints to writer.
func (r *Repl) PrintBannerInfo(writer io.Writer) {
	blueColor.Fprintf(writer, "%s\n", r.Line)
	greenColor.Fprintf(writer, "%s\n", r.Banner)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	yellowColor.Fprintln(writer, "Version: "+r.Version+" | Author: "+r.Author+" | License: "+r.License)
	blueColor.Fprintf(writer, "%s\n", r.Line)
	cyanColor.Fprintf(writer, "%s\n", "Welcome to kalc!")
	cyanColor.Fprintf(writer, "%s\n", "Type a def, extern, or bare expression and press enter")
	cyanColor.Fprintf(writer, "%s\n", "Type '.exit' to quit, '.dump' to print the module built so far")
	cyanColor.Fprintf(writer, "%s\n", "Use up/down arrows to navigate command history")
	blueColor.Fprintf(writer, "%s\n", r.Line)
}

// Start runs the main loop, reading lines from stdin-style input until
// '.exit' or EOF and echoing compiled IR (or a diagnostic) after each.
func (r *Repl) Start(writer io.Writer) {
	r.PrintBannerInfo(writer)

	rl, err := readline.New(r.Prompt)
	if err != nil {
		panic(err)
	}
	defer rl.Close()

	unit := compile.New()

	for {
		line, err := rl.Readline()
		if err != nil {
			writer.Write([]byte("Good Bye!\n"))
			return
		}

		line = strings.Trim(line, " \n\t\r")
		if line == "" {
			continue
		}
		if line == ".exit" {
			writer.Write([]byte("Good Bye!\n"))
			return
		}
		rl.SaveHistory(line)

		if line == ".dump" {
			r.dumpModule(writer, unit)
			continue
		}

		r.evalLine(writer, unit, line)
	}
}

func (r *Repl) evalLine(writer io.Writer, unit *compile.Unit, line string) {
	defer func() {
		if recovered := recover(); recovered != nil {
			redColor.Fprintf(writer, "[RUNTIME ERROR] %v\n", recovered)
		}
	}()

	mod, err := unit.Compile(line)
	if err != nil {
		if lerr, ok := err.(*lower.Error); ok {
			redColor.Fprintf(writer, "[%s] %s\n", lerr.Kind, lerr.Message)
		} else {
			redColor.Fprintf(writer, "%v\n", err)
		}
		return
	}
	yellowColor.Fprintf(writer, "%s", mod.Dump())
}

func (r *Repl) dumpModule(writer io.Writer, unit *compile.Unit) {
	yellowColor.Fprintf(writer, "%s", unit.Module().Dump())
}
