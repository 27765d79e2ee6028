// Command colhash hashes and geocodes parquet columns from the command line.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/alecthomas/kong"

	"colhash/core"
	"colhash/functions"
	"colhash/output"
	"colhash/sqlexpr"
	"colhash/vectorized"
)

const version = "0.4.0"

var stdout io.Writer = os.Stdout

// Globals are the flags shared by every command.
type Globals struct {
	Config      kong.ConfigFlag `help:"JSON configuration file" type:"path"`
	TraceLevel  string          `name:"trace-level" env:"COLHASH_TRACE_LEVEL" help:"Trace level (off, error, warn, info, debug, verbose)"`
	Trace       string          `name:"trace-components" env:"COLHASH_TRACE_COMPONENTS" default:"ALL" help:"Comma-separated traced components"`
	Parallelism int             `short:"j" env:"COLHASH_PARALLELISM" default:"1" help:"Concurrent shards per operation"`
	ShardSize   int             `name:"shard-size" env:"COLHASH_SHARD_SIZE" default:"4096" help:"Rows per shard"`
	Naming      string          `enum:"v1,v2" default:"v2" env:"COLHASH_GEOMETRY_NAMING" help:"Coordinate field naming (v1: lat/long, v2: latitude/longitude)"`
}

func (g *Globals) options() ([]vectorized.Option, error) {
	naming, err := vectorized.ParseGeometryNaming(g.Naming)
	if err != nil {
		return nil, err
	}
	return []vectorized.Option{
		vectorized.WithParallelism(g.Parallelism),
		vectorized.WithShardSize(g.ShardSize),
		vectorized.WithGeometryNaming(naming),
	}, nil
}

func (g *Globals) configureTracing() {
	if g.TraceLevel != "" {
		core.GetTracer().Configure(core.ParseTraceLevel(g.TraceLevel), g.Trace)
	}
}

// CLI defines the command-line interface for colhash.
type CLI struct {
	Globals

	List    ListCmd    `cmd:"" help:"List operations"`
	Schema  SchemaCmd  `cmd:"" help:"Print the output schema of an operation"`
	Apply   ApplyCmd   `cmd:"" help:"Apply an operation to parquet columns"`
	Query   QueryCmd   `cmd:"" help:"Evaluate a SELECT projection over a parquet file"`
	Version VersionCmd `cmd:"" help:"Print version information"`
}

// ListCmd prints the operation catalogue.
type ListCmd struct {
	Family string `help:"Only list one family (chash, nchash, uuid, geohash, h3)"`
}

func (c *ListCmd) Run(g *Globals) error {
	var family functions.Family
	for _, d := range functions.NewRegistry().List() {
		if c.Family != "" && string(d.Family) != c.Family {
			continue
		}
		if d.Family != family {
			if family != "" {
				fmt.Fprintln(stdout)
			}
			family = d.Family
			fmt.Fprintf(stdout, "%s:\n", family)
		}

		args := fmt.Sprintf("%d", d.MinArgs)
		if d.MaxArgs != d.MinArgs {
			args = fmt.Sprintf("%d-%d", d.MinArgs, d.MaxArgs)
		}
		outputType := d.OutputType.String()
		if d.Shape == functions.ShapeComposite {
			outputType = fmt.Sprintf("STRUCT{%s}", strings.Join(d.OutputFields, ","))
		}
		fmt.Fprintf(stdout, "  %-16s args=%-4s %-22s -> %s", d.Name, args, d.Policy, outputType)
		if len(d.Kwargs) > 0 {
			fmt.Fprintf(stdout, "  kwargs=%s", strings.Join(d.Kwargs, ","))
		}
		if d.Deprecated != "" {
			fmt.Fprintf(stdout, "  (deprecated, use %s)", d.Deprecated)
		}
		fmt.Fprintln(stdout)
	}
	return nil
}

// SchemaCmd declares the output field of an operation without evaluating rows.
type SchemaCmd struct {
	Op    string   `arg:"" help:"Operation name"`
	Input []string `required:"" help:"Input field as name:TYPE, repeatable"`
}

func (c *SchemaCmd) Run(g *Globals) error {
	inputs := make([]*vectorized.Field, len(c.Input))
	for i, spec := range c.Input {
		name, typeName, ok := strings.Cut(spec, ":")
		if !ok {
			return fmt.Errorf("input %q must be name:TYPE", spec)
		}
		dt, err := vectorized.ParseDataType(strings.ToUpper(typeName))
		if err != nil {
			return err
		}
		inputs[i] = &vectorized.Field{Name: name, DataType: dt, Nullable: true}
	}

	field, err := functions.NewRegistry().OutputField(c.Op, inputs)
	if err != nil {
		return err
	}
	printField(stdout, field, "")
	return nil
}

func printField(w io.Writer, f *vectorized.Field, indent string) {
	fmt.Fprintf(w, "%s%s %s\n", indent, f.Name, f.DataType)
	for _, child := range f.Children {
		printField(w, child, indent+"  ")
	}
}

// OutputFlags select where and how results are written.
type OutputFlags struct {
	Out      string `short:"o" default:"-" help:"Output file, - for stdout"`
	Format   string `enum:"csv,jsonl,parquet" default:"csv" help:"Output format"`
	Compress string `enum:"none,gzip,snappy,zstd" default:"none" env:"COLHASH_COMPRESS" help:"Output compression"`
}

func (o *OutputFlags) write(names []string, columns []*vectorized.Vector) error {
	format, err := output.ParseFormat(o.Format)
	if err != nil {
		return err
	}
	compression, err := output.ParseCompressionType(o.Compress)
	if err != nil {
		return err
	}
	writer, err := output.NewWriter(format, compression)
	if err != nil {
		return err
	}
	defer writer.Close()

	if o.Out == "-" {
		return writer.Write(stdout, names, columns)
	}
	file, err := os.Create(o.Out)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	if err := writer.Write(file, names, columns); err != nil {
		file.Close()
		return err
	}
	return file.Close()
}

// ApplyCmd evaluates one operation over parquet columns.
type ApplyCmd struct {
	Op        string   `arg:"" help:"Operation name"`
	File      string   `required:"" short:"f" help:"Parquet file path or http(s) URL"`
	Column    []string `required:"" short:"c" help:"Input column, repeat for a second operand"`
	As        string   `help:"Output column name (default: first input column)"`
	Precision *int64   `help:"Geohash length or H3 resolution, broadcast to every row"`
	Seed      *uint64  `help:"Hash seed"`
	Length    *int     `help:"sha3_shake128 output length in bytes"`
	Namespace string   `help:"uuid5 namespace (dns, url, oid, x500 or a UUID)"`
	Default   *string  `help:"uuid5_concat value for a missing second operand"`
	Kwargs    string   `help:"Keyword arguments as a JSON object"`

	OutputFlags `embed:""`
}

func (c *ApplyCmd) kwargs() (functions.Config, error) {
	kw := make(map[string]interface{})
	if c.Kwargs != "" {
		if err := json.Unmarshal([]byte(c.Kwargs), &kw); err != nil {
			return functions.Config{}, fmt.Errorf("invalid --kwargs: %w", err)
		}
	}
	if c.Seed != nil {
		kw["seed"] = *c.Seed
	}
	if c.Length != nil {
		kw["length"] = *c.Length
	}
	if c.Namespace != "" {
		kw["namespace"] = c.Namespace
	}
	if c.Default != nil {
		kw["default"] = *c.Default
	}
	return functions.ConfigOf(kw)
}

func (c *ApplyCmd) Run(g *Globals) error {
	opts, err := g.options()
	if err != nil {
		return err
	}
	cfg, err := c.kwargs()
	if err != nil {
		return err
	}

	reader, err := core.NewParquetReader(c.File)
	if err != nil {
		return err
	}
	defer reader.Close()

	args, err := reader.ReadColumns(c.Column...)
	if err != nil {
		return err
	}
	if c.Precision != nil {
		args = append(args, vectorized.FromSlice([]int64{*c.Precision}))
	}

	result, err := functions.NewRegistry().Invoke(context.Background(), c.Op, args, cfg, opts...)
	if err != nil {
		return err
	}

	name := c.As
	if name == "" {
		name = c.Column[0]
	}
	core.GetTracer().Info(core.TraceComponentCLI, "Operation applied", core.TraceContext(
		"op", c.Op, "file", c.File, "rows", result.Length))
	return c.write([]string{name}, []*vectorized.Vector{result})
}

// QueryCmd evaluates a SQL projection over one parquet file.
type QueryCmd struct {
	SQL  string `arg:"" help:"SELECT statement, e.g. SELECT md5(name) AS h FROM t"`
	File string `required:"" short:"f" help:"Parquet file path or http(s) URL"`

	OutputFlags `embed:""`
}

func (c *QueryCmd) Run(g *Globals) error {
	opts, err := g.options()
	if err != nil {
		return err
	}
	reader, err := core.NewParquetReader(c.File)
	if err != nil {
		return err
	}
	defer reader.Close()

	exec := sqlexpr.NewExecutor(functions.NewRegistry(), opts...)
	result, err := exec.Execute(context.Background(), c.SQL, reader)
	if err != nil {
		return err
	}
	return c.write(result.Names, result.Columns)
}

// VersionCmd prints version information.
type VersionCmd struct{}

func (c *VersionCmd) Run() error {
	fmt.Fprintf(stdout, "colhash version %s\n", version)
	return nil
}

func newParser(cli *CLI) (*kong.Kong, error) {
	return kong.New(cli,
		kong.Name("colhash"),
		kong.Description("Null-aware column hashing and geocoding"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{Compact: true}),
		kong.Configuration(kong.JSON, "~/.config/colhash.json"),
		kong.DefaultEnvars("COLHASH"),
	)
}

func main() {
	var cli CLI
	parser, err := newParser(&cli)
	if err != nil {
		panic(err)
	}
	ctx, err := parser.Parse(os.Args[1:])
	parser.FatalIfErrorf(err)

	cli.Globals.configureTracing()
	err = ctx.Run(&cli.Globals)
	if err != nil {
		core.GetTracer().Error(core.TraceComponentCLI, "Command failed", core.TraceContext(
			"command", ctx.Command(), "error", err.Error()))
	}
	ctx.FatalIfErrorf(err)
}
