/*
Command kalc is the entry point for the kalc compiler core. It has two
modes of operation:

 1. REPL mode (default): an interactive session printing the compiled
    IR after each line.
 2. File mode: compile a single source file and print its IR dump.
*/
package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"

	"github.com/kale-lang/kalc/compile"
	"github.com/kale-lang/kalc/internal/repl"
	"github.com/kale-lang/kalc/lower"
)

var VERSION = "v0.1.0"
var AUTHOR = "kale-lang"
var LICENSE = "MIT"
var PROMPT = "kalc >>> "

var BANNER = `
  _             _
 | | ____ _ | | ___
 | |/ / _` + "`" + ` || |/ __|
 |   < (_| || | (__
 |_|\_\__,_||_|\___|
`

var LINE = "----------------------------------------------------------------"

var (
	redColor  = color.New(color.FgRed)
	cyanColor = color.New(color.FgYellow)
)

func main() {
	if len(os.Args) > 1 {
		arg := os.Args[1]
		switch arg {
		case "--help", "-h":
			showHelp()
			return
		case "--version", "-v":
			showVersion()
			return
		case "repl":
			r := repl.New(BANNER, VERSION, AUTHOR, LINE, LICENSE, PROMPT)
			r.Start(os.Stdout)
			return
		}
		runFile(arg)
		return
	}

	r := repl.New(BANNER, VERSION, AUTHOR, LINE, LICENSE, PROMPT)
	r.Start(os.Stdout)
}

func showHelp() {
	fmt.Println("kalc - a Kaleidoscope-family compiler core")
	fmt.Println()
	fmt.Println("USAGE:")
	fmt.Println("  kalc                    Start interactive REPL mode")
	fmt.Println("  kalc repl               Start interactive REPL mode explicitly")
	fmt.Println("  kalc <path-to-file>     Compile a source file and print its IR")
	fmt.Println("  kalc --help             Display this help message")
	fmt.Println("  kalc --version          Display version information")
}

func showVersion() {
	fmt.Printf("kalc %s (%s, %s)\n", VERSION, AUTHOR, LICENSE)
}

// runFile reads and compiles a single source file, printing its IR dump
// to stdout or a diagnostic to stderr.
func runFile(fileName string) {
	content, err := os.ReadFile(fileName)
	if err != nil {
		redColor.Fprintf(os.Stderr, "[FILE ERROR] could not read file %q: %v\n", fileName, err)
		os.Exit(1)
	}

	mod, err := compile.Compile(string(content))
	if err != nil {
		if lerr, ok := err.(*lower.Error); ok {
			redColor.Fprintf(os.Stderr, "[%s] %s\n", lerr.Kind, lerr.Message)
		} else {
			redColor.Fprintf(os.Stderr, "%v\n", err)
		}
		os.Exit(1)
	}

	cyanColor.Fprintf(os.Stdout, "%s", mod.Dump())
}
