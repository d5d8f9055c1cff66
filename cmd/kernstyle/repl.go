package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"github.com/chzyer/readline"
	"github.com/npillmayer/kernstyle/core/font/fontregistry"
	"github.com/npillmayer/kernstyle/core/locate/resources"
	"github.com/npillmayer/kernstyle/engine/kerning"
	"github.com/npillmayer/kernstyle/engine/present"
	"github.com/pterm/pterm"
	xfont "golang.org/x/image/font"
)

// Intp is our interpreter object
type Intp struct {
	repl      *readline.Instance
	cfg       present.Config
	precision int
	table     *kerning.Table
}

// NewIntp creates an interpreter reading from the terminal.
func NewIntp(cfg present.Config, precision int) (*Intp, error) {
	repl, err := readline.NewEx(&readline.Config{
		Prompt:       "kern > ",
		AutoComplete: fontCompleter{fontregistry.GlobalRegistry()},
	})
	if err != nil {
		return nil, err
	}
	return &Intp{repl: repl, cfg: cfg, precision: precision}, nil
}

// REPL starts interactive mode. Lines are either commands, starting with
// a colon, or sample text to show the kerning for.
func (intp *Intp) REPL(ctx context.Context) {
	defer intp.repl.Close()
	for {
		line, err := intp.repl.Readline()
		if err != nil { // io.EOF
			break
		}
		if line = strings.TrimSpace(line); line == "" {
			continue
		}
		quit, err := intp.execute(ctx, line)
		if err != nil {
			pterm.Error.Println(err.Error())
			continue
		}
		if quit || ctx.Err() != nil {
			break
		}
	}
	pterm.Info.Println("Good bye!")
}

func (intp *Intp) execute(ctx context.Context, line string) (bool, error) {
	if !strings.HasPrefix(line, ":") {
		pterm.DefaultTable.WithHasHeader().WithData(intp.pairs(line)).Render()
		return false, nil
	}
	cmd, arg, _ := strings.Cut(line[1:], " ")
	arg = strings.TrimSpace(arg)
	tracer().Debugf("command %q, argument %q", cmd, arg)
	switch strings.ToLower(cmd) {
	case "quit", "q":
		return true, nil
	case "css":
		fmt.Println(formatCSS(intp.cfg, intp.table, intp.precision))
	case "json":
		b, err := json.MarshalIndent(intp.table, "", "  ")
		if err != nil {
			return false, err
		}
		fmt.Println(string(b))
	case "class":
		intp.cfg.ClassName = arg
		pterm.Info.Printfln("scope class is %s", className(intp.cfg, intp.table))
	case "font":
		if arg == "" {
			pterm.Info.Printfln("font is %s", intp.table.FontName)
			return false, nil
		}
		fb, err := resources.ResolveFont(nil, arg, xfont.StyleNormal, xfont.WeightNormal).Await(ctx)
		if err != nil {
			return false, err
		}
		return false, intp.loadFont(ctx, fb)
	case "fonts":
		for _, name := range fontregistry.GlobalRegistry().Names() {
			fmt.Println(name)
		}
	default:
		help()
	}
	return false, nil
}

// loadFont extracts the kerning of a font and makes the font available for
// completion.
func (intp *Intp) loadFont(ctx context.Context, fb resources.FontBinary) error {
	table, err := extract(ctx, intp.cfg, fb.Binary)
	if err != nil {
		return err
	}
	intp.table = table
	if table.FontName != "" {
		if err := fontregistry.GlobalRegistry().RegisterRenderableFont(table.FontName, fb.Binary); err != nil {
			tracer().Errorf("%v", err)
		}
	}
	pterm.Success.Printfln("%s: %d kerning groups for %s", table.FontName, table.Len(), intp.cfg.Ranges)
	return nil
}

// pairs lists the kerning between adjacent characters of text.
func (intp *Intp) pairs(text string) pterm.TableData {
	data := pterm.TableData{{"pair", "kerning"}}
	chars := present.SplitText(text)
	for i := 1; i < len(chars); i++ {
		l, r := chars[i-1], chars[i]
		k, ok := intp.table.KerningFor(l, r)
		v := "-"
		if ok {
			v = fmt.Sprintf("%g %s", k, intp.table.Unit)
		}
		data = append(data, []string{l + r, v})
	}
	return data
}

func help() {
	pterm.Info.Println(`Enter text to show its kerning, or one of
  :class [name]   set the scope class; empty reverts to the font's class
  :css            print the style sheet
  :json           print the kerning table
  :font [name]    show or switch the font
  :fonts          list loaded fonts
  :quit           leave`)
}

// fontCompleter completes font names of a registry after ":font ".
type fontCompleter struct {
	registry *fontregistry.Registry
}

func (fc fontCompleter) Do(line []rune, pos int) ([][]rune, int) {
	const cmd = ":font "
	typed := line[:pos]
	if !strings.HasPrefix(string(typed), cmd) {
		return nil, 0
	}
	prefix := typed[len(cmd):]
	return completions(fc.registry.MatchPrefix(string(prefix)), prefix), len(prefix)
}

// completions returns the remainders of names after prefix. The registry
// matches on normalized names, so prefix is compared rune by rune ignoring
// case, with blanks and underscores treated alike.
func completions(names []string, prefix []rune) [][]rune {
	var candidates [][]rune
	for _, name := range names {
		n := []rune(name)
		if len(n) < len(prefix) {
			continue
		}
		matches := true
		for i, r := range prefix {
			if !sameNameRune(n[i], r) {
				matches = false
				break
			}
		}
		if matches {
			candidates = append(candidates, n[len(prefix):])
		}
	}
	return candidates
}

func sameNameRune(a, b rune) bool {
	if a == '_' {
		a = ' '
	}
	if b == '_' {
		b = ' '
	}
	return unicode.ToLower(a) == unicode.ToLower(b)
}
