// Command ligolw inspects and converts LIGO Light-Weight XML documents.
// It lists and dumps tables, prints arrays, params and times, and exports
// tables to SQLite or Arrow IPC.
package main

import (
	"context"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/FocuswithJustin/ligolw/core/columnar"
	"github.com/FocuswithJustin/ligolw/core/errors"
	"github.com/FocuswithJustin/ligolw/core/ligolw"
	"github.com/FocuswithJustin/ligolw/core/loader"
	"github.com/FocuswithJustin/ligolw/core/series"
	"github.com/FocuswithJustin/ligolw/core/sqlite"
	"github.com/FocuswithJustin/ligolw/core/xml"
	"github.com/FocuswithJustin/ligolw/internal/logging"
	"github.com/FocuswithJustin/ligolw/internal/validation"
	"github.com/alecthomas/kong"
)

const version = "0.1.0"

// out receives command output. Logs go to stderr.
var out io.Writer = os.Stdout

// CLI defines the command-line interface for ligolw.
var CLI struct {
	// Global flags
	LogLevel  string `name:"log-level" help:"Log level (debug, info, warn, error)" default:"warn" env:"LIGOLW_LOG_LEVEL"`
	LogFormat string `name:"log-format" help:"Log format (json, text)" default:"text" env:"LIGOLW_LOG_FORMAT"`
	MaxBytes  int64  `name:"max-bytes" help:"Refuse documents larger than this once decompressed (0 = no limit)" default:"0" env:"LIGOLW_MAX_BYTES"`

	Tables   TablesCmd   `cmd:"" help:"List tables with their column and row counts"`
	Dump     DumpCmd     `cmd:"" help:"Decode one table and write it back as LIGOLW XML"`
	Array    ArrayCmd    `cmd:"" help:"Print an array's dimensions and elements"`
	Param    ParamCmd    `cmd:"" help:"Print a Param value"`
	Time     TimeCmd     `cmd:"" help:"Print a Time value"`
	PSD      PSDCmd      `cmd:"" name:"psd" help:"Summarise the PSDs of a REAL8FrequencySeries document"`
	SQLite   SQLiteCmd   `cmd:"" name:"sqlite" help:"Export tables to a SQLite database"`
	Arrow    ArrowCmd    `cmd:"" help:"Write one table as an Arrow IPC stream"`
	Validate ValidateCmd `cmd:"" help:"Decode every table, array and param and report failures"`
	Fmt      FmtCmd      `cmd:"" help:"Pretty-print a document"`
	Info     InfoCmd     `cmd:"" help:"Show compression, size and BLAKE3 digest"`
	Version  VersionCmd  `cmd:"" help:"Print version information"`
}

// load reads a document honouring the global size limit.
func load(path string) (*loader.Source, error) {
	return loader.LoadWithOptions(path, loader.Options{MaxBytes: CLI.MaxBytes})
}

// containers returns the LIGO_LW elements to search for Arrays, Params and
// Times: those named container, or every LIGO_LW element when container is
// empty.
func containers(doc *xml.Document, container string) ([]*xml.Node, error) {
	if container != "" {
		var found []*xml.Node
		for elem := range ligolw.Containers(doc.Root(), container) {
			found = append(found, elem)
		}
		if len(found) == 0 {
			return nil, errors.NewNotFound("LIGO_LW", container)
		}
		return found, nil
	}
	return doc.XPath("//LIGO_LW")
}

func findElement(doc *xml.Document, container, what, name string, get func(*xml.Node, string) *xml.Node) (*xml.Node, error) {
	parents, err := containers(doc, container)
	if err != nil {
		return nil, err
	}
	for _, parent := range parents {
		if elem := get(parent, name); elem != nil {
			return elem, nil
		}
	}
	return nil, errors.NewNotFound(what, name)
}

func findTable(doc *xml.Document, name string) (*xml.Node, error) {
	if err := validation.ValidateName(name); err != nil {
		return nil, err
	}
	elem, err := ligolw.FindTable(doc, name)
	if err != nil {
		return nil, err
	}
	if elem == nil {
		return nil, errors.NewNotFound("Table", name)
	}
	return elem, nil
}

// TablesCmd lists the tables of a document.
type TablesCmd struct {
	Path string `arg:"" help:"LIGOLW document (.xml, .xml.gz, .xml.xz, .xml.zst)" type:"existingfile"`
}

func (c *TablesCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	ctx := logging.WithDocument(context.Background(), c.Path)

	elems, err := ligolw.FindTables(src.Doc)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%-32s %8s %8s\n", "TABLE", "COLUMNS", "ROWS")
	for _, elem := range elems {
		rows := 0
		count := func(*ligolw.Table, ligolw.Row) error {
			rows++
			return nil
		}
		table, err := ligolw.DecodeTable(elem, count)
		if err != nil {
			logging.DecodeError(ctx, "Table", elem.Attr("Name"), err)
			return err
		}
		logging.TableDecoded(ctx, table.Name, len(table.Columns), rows)
		fmt.Fprintf(out, "%-32s %8d %8d\n", table.Name, len(table.Columns), rows)
	}
	return nil
}

// DumpCmd decodes a table and re-encodes it.
type DumpCmd struct {
	Path  string `arg:"" help:"LIGOLW document" type:"existingfile"`
	Table string `arg:"" help:"Table name (e.g. process, sngl_inspiral)"`
}

func (c *DumpCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	elem, err := findTable(src.Doc, c.Table)
	if err != nil {
		return err
	}
	table, err := ligolw.DecodeTable(elem, nil)
	if err != nil {
		return err
	}
	defer table.Release()

	_, err = table.WriteTo(out)
	return err
}

// ArrayCmd prints an array.
type ArrayCmd struct {
	Path      string `arg:"" help:"LIGOLW document" type:"existingfile"`
	Name      string `arg:"" optional:"" help:"Array name; the first array when omitted"`
	Container string `help:"Only search LIGO_LW elements with this Name"`
}

func (c *ArrayCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	elem, err := findElement(src.Doc, c.Container, "Array", c.Name, ligolw.GetArray)
	if err != nil {
		return err
	}
	a, err := ligolw.DecodeArray(elem)
	if err != nil {
		return err
	}
	defer a.Release()

	dims := make([]int, len(a.Dims))
	for i, d := range a.Dims {
		dims[i] = d.N
		fmt.Fprintf(out, "dim %d: %s n=%d", i, d.Name, d.N)
		if d.Unit != nil {
			fmt.Fprintf(out, " unit=%s", *d.Unit)
		}
		if d.Start != nil {
			fmt.Fprintf(out, " start=%s", *d.Start)
		}
		if d.Scale != nil {
			fmt.Fprintf(out, " scale=%s", *d.Scale)
		}
		fmt.Fprintln(out)
	}
	logging.ArrayDecoded(logging.WithDocument(context.Background(), c.Path), a.Name, a.Type.String(), dims)

	fmt.Fprintf(out, "array %s type=%v elements=%d\n", a.Name, a.Type, a.Len())
	if a.Data() == nil {
		return nil
	}

	width := 1
	if len(dims) > 0 && dims[len(dims)-1] > 0 {
		width = dims[len(dims)-1]
	}
	var line []string
	for i := 0; i < a.Len(); i++ {
		c, ok := a.At(i)
		if !ok {
			break
		}
		text, err := ligolw.EncodeCell(c, a.Type)
		if err != nil {
			return err
		}
		line = append(line, text)
		if len(line) == width {
			fmt.Fprintln(out, strings.Join(line, " "))
			line = line[:0]
		}
	}
	return nil
}

// ParamCmd prints a Param.
type ParamCmd struct {
	Path      string `arg:"" help:"LIGOLW document" type:"existingfile"`
	Name      string `arg:"" help:"Param name"`
	Container string `help:"Only search LIGO_LW elements with this Name"`
}

func (c *ParamCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	elem, err := findElement(src.Doc, c.Container, "Param", c.Name, ligolw.GetParam)
	if err != nil {
		return err
	}
	cell, err := ligolw.DecodeParam(elem)
	if err != nil {
		return err
	}
	text, err := ligolw.EncodeCell(cell, cell.Type())
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %v %s\n", c.Name, cell.Type(), text)
	return nil
}

// TimeCmd prints a Time.
type TimeCmd struct {
	Path      string `arg:"" help:"LIGOLW document" type:"existingfile"`
	Name      string `arg:"" help:"Time name"`
	Container string `help:"Only search LIGO_LW elements with this Name"`
}

func (c *TimeCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	elem, err := findElement(src.Doc, c.Container, "Time", c.Name, ligolw.GetTime)
	if err != nil {
		return err
	}
	tm, err := ligolw.DecodeTime(elem)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s %s\n", tm.Name, tm.Type, tm.Value)
	return nil
}

// PSDCmd summarises power spectral densities.
type PSDCmd struct {
	Path string `arg:"" help:"LIGOLW document" type:"existingfile"`
}

func (c *PSDCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	psds, err := series.PSDs(src.Doc.Root())
	if err != nil {
		return err
	}
	if len(psds) == 0 {
		return errors.NewNotFound("LIGO_LW", series.ContainerName)
	}
	for _, ifo := range slices.Sorted(maps.Keys(psds)) {
		s := psds[ifo]
		fmt.Fprintf(out, "%s: name=%s epoch=%s f0=%g deltaF=%g length=%d\n",
			ifo, s.Name, s.Epoch, s.F0, s.DeltaF, len(s.Data))
	}
	return nil
}

// SQLiteCmd exports tables to SQLite.
type SQLiteCmd struct {
	Path   string   `arg:"" help:"LIGOLW document" type:"existingfile"`
	DB     string   `arg:"" help:"SQLite database (created if missing)" type:"path"`
	Tables []string `name:"table" short:"t" help:"Tables to export; all tables when omitted"`
}

func (c *SQLiteCmd) Run() error {
	if err := validation.ValidateOutputPath(c.DB); err != nil {
		return fmt.Errorf("invalid database path: %w", err)
	}
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	db, err := sqlite.Open(c.DB)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx := logging.WithDocument(context.Background(), c.Path)
	store, err := sqlite.NewStore(ctx, db)
	if err != nil {
		return err
	}

	var tables, rows int
	if len(c.Tables) == 0 {
		if tables, rows, err = store.ExportDocument(ctx, src.Doc); err != nil {
			return err
		}
	} else {
		for _, name := range c.Tables {
			elem, err := findTable(src.Doc, name)
			if err != nil {
				return err
			}
			table, n, err := store.ExportTable(ctx, elem)
			if err != nil {
				return err
			}
			logging.DebugContext(ctx, "table_exported", "table", table.Name, "rows", n)
			tables++
			rows += n
		}
	}

	logging.ExportCompleted(ctx, "sqlite", c.DB, tables, rows, "driver", sqlite.DriverType())
	fmt.Fprintf(out, "exported %d tables, %d rows to %s\n", tables, rows, c.DB)
	return nil
}

// ArrowCmd writes a table as Arrow IPC.
type ArrowCmd struct {
	Path  string `arg:"" help:"LIGOLW document" type:"existingfile"`
	Table string `arg:"" help:"Table name"`
	Out   string `arg:"" help:"Output Arrow IPC stream" type:"path"`
}

func (c *ArrowCmd) Run() error {
	if err := validation.ValidateOutputPath(c.Out); err != nil {
		return fmt.Errorf("invalid output path: %w", err)
	}
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	elem, err := findTable(src.Doc, c.Table)
	if err != nil {
		return err
	}
	table, err := ligolw.DecodeTable(elem, nil)
	if err != nil {
		return err
	}
	defer table.Release()

	rec, err := columnar.NewConverter().TableToRecord(table)
	if err != nil {
		return err
	}
	defer rec.Release()

	f, err := os.Create(c.Out)
	if err != nil {
		return errors.NewIO("create", c.Out, err)
	}
	if err := columnar.WriteIPC(f, rec); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.NewIO("close", c.Out, err)
	}

	ctx := logging.WithDocument(context.Background(), c.Path)
	logging.ExportCompleted(ctx, "arrow", c.Out, 1, len(table.Rows))
	fmt.Fprintf(out, "wrote %d rows of %s to %s\n", rec.NumRows(), table.Name, c.Out)
	return nil
}

// ValidateCmd checks that a document is well-formed XML and decodes every
// element in it. Loading reports syntax errors with their line number.
type ValidateCmd struct {
	Path string `arg:"" help:"LIGOLW document" type:"existingfile"`
}

func (c *ValidateCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	ctx := logging.WithDocument(context.Background(), c.Path)

	var checked, failed int
	check := func(element string, elem *xml.Node, decode func(*xml.Node) error) {
		checked++
		if err := decode(elem); err != nil {
			failed++
			logging.DecodeError(ctx, element, elem.Attr("Name"), err)
			fmt.Fprintf(out, "%s %q: %v\n", element, elem.Attr("Name"), err)
		}
	}

	tables, err := ligolw.FindTables(src.Doc)
	if err != nil {
		return err
	}
	for _, elem := range tables {
		check("Table", elem, func(e *xml.Node) error {
			_, err := ligolw.DecodeTable(e, func(*ligolw.Table, ligolw.Row) error { return nil })
			return err
		})
	}

	for _, tag := range []string{"Array", "Param", "Time"} {
		elems, err := src.Doc.XPath("//" + tag)
		if err != nil {
			return err
		}
		for _, elem := range elems {
			check(tag, elem, func(e *xml.Node) error {
				switch tag {
				case "Array":
					a, err := ligolw.DecodeArray(e)
					a.Release()
					return err
				case "Param":
					_, err := ligolw.DecodeParam(e)
					return err
				}
				_, err := ligolw.DecodeTime(e)
				return err
			})
		}
	}

	if failed > 0 {
		return errors.NewValidation("document", fmt.Sprintf("%d of %d elements failed to decode", failed, checked))
	}
	logging.InfoContext(ctx, "document_valid", "elements", checked)
	fmt.Fprintf(out, "%s: ok, %d elements\n", c.Path, checked)
	return nil
}

// FmtCmd pretty-prints a document.
type FmtCmd struct {
	Path   string `arg:"" help:"LIGOLW document" type:"existingfile"`
	Indent string `help:"Indentation string" default:"\t"`
}

func (c *FmtCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}
	formatted, err := xml.Format(src.Doc.Serialize(), xml.FormatOptions{Indent: c.Indent})
	if err != nil {
		return err
	}
	_, err = out.Write(formatted)
	return err
}

// InfoCmd prints document metadata.
type InfoCmd struct {
	Path string `arg:"" help:"LIGOLW document" type:"existingfile"`
}

func (c *InfoCmd) Run() error {
	src, err := load(c.Path)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "Path:        %s\n", src.Path)
	fmt.Fprintf(out, "Compression: %s\n", src.Compression)
	fmt.Fprintf(out, "Size:        %d bytes\n", src.Size)
	fmt.Fprintf(out, "BLAKE3:      %s\n", src.Digest)
	for _, tag := range []string{"Table", "Array", "Param", "Time"} {
		elems, err := src.Doc.XPath("//" + tag)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%-12s %d\n", tag+"s:", len(elems))
	}
	return nil
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(out, "ligolw version %s (sqlite: %s)\n", version, sqlite.DriverType())
	return nil
}

// initLogging configures the global logger from the parsed flags.
func initLogging() error {
	level, err := logging.ParseLevel(CLI.LogLevel)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(CLI.LogFormat)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format)
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("ligolw"),
		kong.Description("Inspect and convert LIGO Light-Weight XML documents"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
		}),
	)
	ctx.FatalIfErrorf(initLogging())
	err := ctx.Run()
	if err != nil {
		logging.Error("command_failed", "command", ctx.Command(), "error", err)
	}
	ctx.FatalIfErrorf(err)
}
