// Command ctype elaborates a YAML type description and emits the C
// declarations, constructors and IO routines of the types it declares.
//
//	ctype emit -o gen types.yaml
//	ctype dump types.yaml Point
//	ctype builtins
package main

import (
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/smasher164/ctype/ast"
	"github.com/smasher164/ctype/codegen"
	"github.com/smasher164/ctype/config"
	"github.com/smasher164/ctype/diag"
	"github.com/smasher164/ctype/fsx"
	"github.com/smasher164/ctype/typedesc"
	"github.com/smasher164/ctype/types"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type app struct {
	stdout, stderr io.Writer
	readFile       func(name string) ([]byte, error)
	outFS          func(dir string) (fs.FS, error)

	v          *viper.Viper
	configPath string
	cfg        *config.Config
	log        *zap.Logger
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{
		stdout:   stdout,
		stderr:   stderr,
		readFile: os.ReadFile,
		outFS: func(dir string) (fs.FS, error) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, errors.Wrapf(err, "create output directory %s", dir)
			}
			return fsx.DirFS(dir), nil
		},
		v:   config.New(),
		log: zap.NewNop(),
	}
}

// newLogger logs to w: debug and up as console text when verbose, info and
// up as JSON otherwise.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	enc := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	level := zap.InfoLevel
	if verbose {
		enc = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
		level = zap.DebugLevel
	}
	return zap.New(zapcore.NewCore(enc, zapcore.AddSync(w), level))
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ctype",
		Short: "Emit C for the types of a type description",
		Long: `ctype reads a YAML description of enums, records, classes, unions,
tuples, domains, arrays, sequences and aliases, and writes their C
typedefs, struct definitions, constructors and read/write routines to a
header, a body and a default stream.

Settings come from the defaults, an optional config file (--config),
CTYPE_* environment variables and flags, in increasing precedence.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if a.configPath != "" {
				if err := config.ReadFile(a.v, a.configPath); err != nil {
					return err
				}
			}
			cfg, err := config.LoadWithViper(a.v)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.log = newLogger(a.stderr, cfg.Verbose)
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.log.Sync()
		},
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.configPath, "config", "", "config file (TOML, or YAML by extension)")
	flags.BoolP("verbose", "v", false, "log every emitted type")
	_ = a.v.BindPFlag("verbose", flags.Lookup("verbose"))

	root.AddCommand(a.emitCmd(), a.dumpCmd(), a.builtinsCmd())
	return root
}

func (a *app) emitCmd() *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "emit <description.yaml>",
		Short: "Write the C streams for a type description",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.emit(args[0], outDir)
		},
	}
	flags := cmd.Flags()
	flags.StringVarP(&outDir, "out", "o", ".", "output directory")
	flags.Bool("emit-io", true, "emit read and write routines")
	flags.Bool("emit-config-vars", true, "emit command-line parsing routines for enums")
	_ = a.v.BindPFlag("emit_io", flags.Lookup("emit-io"))
	_ = a.v.BindPFlag("emit_config_vars", flags.Lookup("emit-config-vars"))
	return cmd
}

func (a *app) load(path string) (*typedesc.Program, error) {
	data, err := a.readFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read type description")
	}
	ctx := types.NewContext(types.WithLogger(a.log))
	return typedesc.Load(ctx, path, data)
}

func (a *app) emit(path, outDir string) (err error) {
	prog, err := a.load(path)
	if err != nil {
		return err
	}
	outfs, err := a.outFS(outDir)
	if err != nil {
		return err
	}
	streams, err := codegen.CreateStreams(outfs, a.cfg)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.CombineErrors(err, streams.Close())
	}()
	codegen.NewEmitter(prog.Ctx, &streams.Streams, a.cfg).EmitProgram(prog.Block)
	a.log.Info("emitted type description",
		zap.String("description", path),
		zap.String("dir", outDir),
		zap.Strings("files", []string{a.cfg.HeaderFile, a.cfg.BodyFile, a.cfg.DefaultFile}))
	return nil
}

func (a *app) dumpCmd() *cobra.Command {
	var full bool
	cmd := &cobra.Command{
		Use:   "dump <description.yaml> [type...]",
		Short: "Print the elaborated types of a description",
		Long: `dump prints the declaration of each named type, or of every declared
type when none is named. With --full it prints the whole structure of each
type instead.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := a.load(args[0])
			if err != nil {
				return err
			}
			names := args[1:]
			if len(names) == 0 {
				for _, d := range prog.Block.Decls() {
					if _, ok := d.(*ast.TypeDecl); ok {
						names = append(names, d.Symbol().Name)
					}
				}
			}
			for _, name := range names {
				t, ok := prog.Lookup(name)
				if !ok {
					return errors.Newf("%s declares no type %s", args[0], name)
				}
				if full {
					fmt.Fprintln(a.stdout, types.Dump(t))
				} else {
					fmt.Fprintln(a.stdout, types.DefString(t))
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&full, "full", false, "dump the full structure of each type")
	return cmd
}

func (a *app) builtinsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "builtins",
		Short: "List the builtin type names",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range types.NewContext().BuiltinNames() {
				fmt.Fprintln(a.stdout, name)
			}
		},
	}
}

// run executes the command line and returns the exit status: 1 for errors
// in the input or environment, 2 for internal errors.
func (a *app) run(args []string) int {
	var err error
	if ierr := diag.Catch(func() {
		root := a.rootCmd()
		root.SetArgs(args)
		err = root.Execute()
	}); ierr != nil {
		err = ierr
	}
	switch {
	case err == nil:
		return 0
	case diag.IsInternal(err):
		fmt.Fprintf(a.stderr, "ctype: internal error: %v\n", err)
		return 2
	default:
		fmt.Fprintf(a.stderr, "ctype: %v\n", err)
		return 1
	}
}

func main() {
	os.Exit(newApp(os.Stdout, os.Stderr).run(os.Args[1:]))
}
