/*
 * This file is subject to the terms and conditions defined in
 * file 'LICENSE.md', which is part of this source code package.
 */

// Command unitype inspects and rewrites TrueType/OpenType fonts.
//
//	unitype -font F [-dump] [-tag T] [-char C] [-out O] [-i] [-trace LEVEL]
package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/chzyer/readline"
	"github.com/pterm/pterm"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"

	"github.com/unidoc/unitype"
)

func main() {
	fontPath := flag.String("font", "", "Font file to load (ttf, otf, ttc or dfont)")
	dump := flag.Bool("dump", false, "Print the table directory and a summary of every table")
	tag := flag.String("tag", "", "Print the summary of one table")
	chars := flag.String("char", "", "Look up the glyphs of the characters")
	out := flag.String("out", "", "Write the font to this path")
	interactive := flag.Bool("i", false, "Interactive mode")
	traceLevel := flag.String("trace", "warning", "Log level [trace|debug|info|warning|error]")
	flag.Parse()

	initDisplay()

	level, err := logrus.ParseLevel(*traceLevel)
	if err != nil {
		pterm.Error.Printf("Invalid trace level: %s\n", *traceLevel)
		os.Exit(2)
	}
	logrus.SetLevel(level)

	if *fontPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	fnt, err := unitype.ParseFile(*fontPath)
	if err != nil {
		pterm.Error.Printf("Cannot load %s: %v\n", *fontPath, err)
		os.Exit(1)
	}
	intp := &Intp{font: fnt, path: *fontPath}

	if *dump {
		intp.printDirectory()
		for _, t := range fnt.Tags() {
			intp.printTable(t)
		}
	}
	if *tag != "" {
		intp.printTable(unitype.MakeTag(*tag))
	}
	if *chars != "" {
		intp.printChars(*chars)
	}
	if *out != "" {
		if err := intp.write(*out); err != nil {
			pterm.Error.Println(err)
			os.Exit(1)
		}
	}
	if !*interactive {
		return
	}

	repl, err := readline.New("unitype > ")
	if err != nil {
		pterm.Error.Println(err)
		os.Exit(3)
	}
	defer repl.Close()
	intp.repl = repl
	pterm.Info.Println("Quit with <ctrl>D")
	intp.REPL()
}

// initDisplay sets up pterm prefixes, without colors when stdout is not a terminal.
func initDisplay() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		pterm.DisableStyling()
	}
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

// Intp is the interpreter of interactive commands.
type Intp struct {
	font *unitype.Font
	path string
	repl *readline.Instance
}

var errUsage = errors.New("usage")

var commands = map[string]func(intp *Intp, args []string) error{
	"tables": func(intp *Intp, args []string) error {
		intp.printDirectory()
		return nil
	},
	"table": func(intp *Intp, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: table <tag>", errUsage)
		}
		intp.printTable(unitype.MakeTag(args[0]))
		return nil
	},
	"glyph": func(intp *Intp, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: glyph <gid>", errUsage)
		}
		gid, err := strconv.ParseUint(args[0], 10, 16)
		if err != nil {
			return err
		}
		return intp.printGlyph(unitype.GlyphIndex(gid))
	},
	"char": func(intp *Intp, args []string) error {
		if len(args) == 0 {
			return fmt.Errorf("%w: char <characters>", errUsage)
		}
		intp.printChars(strings.Join(args, " "))
		return nil
	},
	"diag": func(intp *Intp, args []string) error {
		intp.printDiagnostics()
		return nil
	},
	"write": func(intp *Intp, args []string) error {
		if len(args) != 1 {
			return fmt.Errorf("%w: write <path>", errUsage)
		}
		return intp.write(args[0])
	},
	"help": func(intp *Intp, args []string) error {
		pterm.Println("Commands: tables | table <tag> | glyph <gid> | char <chars> | diag | write <path> | quit")
		return nil
	},
}

// REPL starts interactive mode.
func (intp *Intp) REPL() {
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		if name == "quit" {
			break
		}
		fn, ok := commands[name]
		if !ok {
			pterm.Error.Printf("Unknown command %q, try help\n", name)
			continue
		}
		if err := fn(intp, fields[1:]); err != nil {
			pterm.Error.Println(err)
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) printChars(s string) {
	data := [][]string{{"Char", "Code", "GID", "Advance"}}
	for len(s) > 0 {
		r, size := utf8.DecodeRuneInString(s)
		s = s[size:]
		gid := intp.font.GlyphIndex(r)
		adv := "-"
		if w, err := intp.font.AdvanceWidth(gid); err == nil {
			adv = strconv.Itoa(int(w))
		}
		data = append(data, []string{string(r), fmt.Sprintf("U+%04X", r), strconv.Itoa(int(gid)), adv})
	}
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func (intp *Intp) printDiagnostics() {
	intp.font.DecodeAll()
	diags := intp.font.Diagnostics()
	if len(diags) == 0 {
		pterm.Info.Println("No problems found")
		return
	}
	for _, d := range diags {
		pterm.Println(d.String())
	}
}

// write encodes the font in memory first so that a model error leaves `path` untouched.
func (intp *Intp) write(path string) error {
	var buf bytes.Buffer
	if err := intp.font.Write(&buf, &unitype.WriteOptions{KeepUnsupported: true}); err != nil {
		return err
	}
	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return err
	}
	pterm.Info.Printf("Wrote %s (%d bytes)\n", path, buf.Len())
	return nil
}
