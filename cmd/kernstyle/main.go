/*
Command kernstyle extracts the kerning of a font and writes it as a style
sheet for text rendered as one element per character.

	kernstyle -font Inter-Regular.woff2 -o inter-kerning.css
	kernstyle -font sample -json
	kernstyle -font "Go Regular" -i
	kernstyle -font sample -serve :8080

Fonts are resolved from font files, from the fonts installed on the system,
from fontconfig (flag -fontconfig) and from the Google Fonts service
(environment variable GOOGLE_API_KEY). The font name "sample" selects a
packaged sample font.

# License

Governed by a 3-Clause BSD license. License file may be found in the root
folder of this module.

Copyright © Norbert Pillmayer <norbert@pillmayer.com>
*/
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"github.com/npillmayer/kernstyle/core"
	"github.com/npillmayer/kernstyle/core/font/decoder"
	"github.com/npillmayer/kernstyle/core/locate/resources"
	"github.com/npillmayer/kernstyle/engine/kerning"
	"github.com/npillmayer/kernstyle/engine/kerning/kerncss"
	"github.com/npillmayer/kernstyle/engine/present"
	"github.com/npillmayer/schuko/schukonf/testconfig"
	"github.com/npillmayer/schuko/tracing"
	"github.com/npillmayer/schuko/tracing/gologadapter"
	"github.com/npillmayer/schuko/tracing/trace2go"
	"github.com/pterm/pterm"
	xfont "golang.org/x/image/font"
)

// tracer traces with key 'kernstyle.cli'
func tracer() tracing.Trace {
	return tracing.Select("kernstyle.cli")
}

var traceKeys = []string{
	"kernstyle.cli",
	"kernstyle.font",
	"kernstyle.resources",
	"kernstyle.kerning",
	"kernstyle.css",
	"kernstyle.present",
}

func main() {
	initDisplay()

	// command line flags
	tlevel := flag.String("trace", "Error", "Trace level [Debug|Info|Error]")
	fontname := flag.String("font", resources.SampleFontName, "Font to load (file, font name or 'sample')")
	class := flag.String("class", "", "Custom scope class of the style sheet")
	ranges := flag.String("ranges", "latin", "Code-points to extract, e.g. 'latin' or '65-90,97-122'")
	raw := flag.Bool("raw", false, "Output kerning in font design units")
	nodecomp := flag.Bool("no-decompress", false, "Pass font bytes to the parser unchanged")
	flat := flag.Bool("flat", false, "Output one rule per line instead of nested rules")
	asJSON := flag.Bool("json", false, "Output the kerning table as JSON")
	precision := flag.Int("precision", -1, "Decimal places of kerning values (-1 = shortest)")
	outfile := flag.String("o", "", "Output file (default: stdout)")
	addr := flag.String("serve", "", "Serve a preview page at address, e.g. ':8080'")
	interactive := flag.Bool("i", false, "Interactive mode")
	fcbinary := flag.String("fontconfig", "", "Absolute path of the fontconfig 'fc-list' binary")
	google := flag.String("google", "", "List Google Fonts matching a pattern and exit")
	flag.Parse()

	conf := setupConfig(*tlevel)
	conf["fontconfig"] = *fcbinary
	conf[present.KeyRanges] = *ranges
	conf[present.KeyClass] = *class
	conf[present.KeyDecompress] = fmt.Sprintf("%v", !*nodecomp)
	if *raw {
		conf[present.KeyUnit] = kerning.DesignUnits.String()
	}
	if *flat {
		conf[present.KeyLayout] = "flat"
	}
	if err := setupTracing(conf); err != nil {
		fmt.Printf("error configuring tracing")
		os.Exit(1)
	}
	tracer().Infof("Trace level is %s", *tlevel)
	if *google != "" {
		resources.ListGoogleFonts(conf, *google)
		return
	}
	cfg, err := present.ConfigFrom(conf)
	if err != nil {
		fail(err, 2)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	//
	// load font to use
	fb, err := resources.ResolveFont(conf, *fontname, xfont.StyleNormal, xfont.WeightNormal).Await(ctx)
	if err != nil {
		fail(err, 3)
	}
	tracer().Infof("font %s resolved from %s", fb.Name, fb.Source)
	//
	switch {
	case *addr != "":
		pterm.Info.Printfln("Serving preview at %s, stop with <ctrl>C", *addr)
		if err := serve(ctx, *addr, cfg, fb.Binary); err != nil {
			fail(err, 5)
		}
	case *interactive:
		intp, err := NewIntp(cfg, *precision)
		if err != nil {
			fail(err, 4)
		}
		if err := intp.loadFont(ctx, fb); err != nil {
			fail(err, 3)
		}
		pterm.Info.Println("Quit with <ctrl>D") // inform user how to stop the CLI
		intp.REPL(ctx)
	default:
		table, err := extract(ctx, cfg, fb.Binary)
		if err != nil {
			fail(err, 3)
		}
		if err := writeOutput(*outfile, table, cfg, *asJSON, *precision); err != nil {
			fail(err, 6)
		}
	}
}

// We use pterm for moderately fancy output.
func initDisplay() {
	pterm.Info.Prefix = pterm.Prefix{
		Text:  " !  ",
		Style: pterm.NewStyle(pterm.BgCyan, pterm.FgBlack),
	}
	pterm.Error.Prefix = pterm.Prefix{
		Text:  " Error",
		Style: pterm.NewStyle(pterm.BgRed, pterm.FgBlack),
	}
}

func setupConfig(tlevel string) testconfig.Conf {
	conf := testconfig.Conf{
		"tracing.adapter": "go",
		"app-key":         "kernstyle",
	}
	for _, key := range traceKeys {
		conf["trace."+key] = tlevel
	}
	return conf
}

// set up logging
func setupTracing(conf testconfig.Conf) error {
	tracing.RegisterTraceAdapter("go", gologadapter.GetAdapter(), false)
	if err := trace2go.ConfigureRoot(conf, "trace", trace2go.ReplaceTracers(true)); err != nil {
		return err
	}
	tracing.SetTraceSelector(trace2go.Selector())
	return nil
}

func fail(err error, exitcode int) {
	pterm.Error.Println(core.UserMessage(err))
	tracer().Errorf("%v", err)
	os.Exit(exitcode)
}

func extract(ctx context.Context, cfg present.Config, binary []byte) (*kerning.Table, error) {
	dopts := decoder.Options{Raw: !cfg.Decompress}
	kopts := kerning.Options{Ranges: cfg.Ranges, Unit: cfg.Unit}
	return kerning.ExtractBytes(ctx, binary, dopts, kopts)
}

func className(cfg present.Config, table *kerning.Table) string {
	if cfg.ClassName != "" {
		return cfg.ClassName
	}
	return table.ClassName()
}

func formatCSS(cfg present.Config, table *kerning.Table, precision int) string {
	opts := []kerncss.Option{kerncss.WithLayout(cfg.Layout)}
	if precision >= 0 {
		opts = append(opts, kerncss.Precision(precision))
	}
	return kerncss.Format(className(cfg, table), table, opts...)
}

func writeOutput(path string, table *kerning.Table, cfg present.Config, asJSON bool, precision int) error {
	var out []byte
	if asJSON {
		b, err := json.MarshalIndent(table, "", "  ")
		if err != nil {
			return core.WrapError(err, core.EINTERNAL, "cannot serialize kerning table")
		}
		out = append(b, '\n')
	} else {
		out = []byte(formatCSS(cfg, table, precision) + "\n")
	}
	if path == "" {
		_, err := os.Stdout.Write(out)
		return err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return core.WrapError(err, core.EINVALID, "cannot write output file %s", path)
	}
	pterm.Success.Printfln("%d kerning groups of %s written to %s", table.Len(), table.FontName, path)
	return nil
}
