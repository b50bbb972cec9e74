package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/LLNL/wrap/pkg/catalog"
	"github.com/LLNL/wrap/pkg/envconfig"
	"github.com/LLNL/wrap/pkg/logutil"
	"github.com/LLNL/wrap/pkg/outfs"
	"github.com/LLNL/wrap/pkg/utils"
	"github.com/LLNL/wrap/pkg/wrapgen"
)

type flags struct {
	opts     wrapgen.Options
	dump     bool
	table    bool
	verbose  bool
	mpicc    string
	includes []string
	output   string
	decls    string
}

func NewCLI() *cobra.Command {
	f := &flags{}

	rootCmd := &cobra.Command{
		Use:   "wrap [flags] template.w...",
		Short: "Generate PMPI wrappers from templates",
		Long: `Generate PMPI interposition wrappers for MPI libraries.

Templates are C sources with {{macro}} invocations. The declarations of
mpi.h are read by running the MPI compiler's preprocessor, or from --decls.`,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceErrors: true,
		Args: func(cmd *cobra.Command, args []string) error {
			if !f.dump && len(args) == 0 {
				return errors.New("at least one template file is required")
			}
			return nil
		},
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Disable usage printing on errors
			cmd.SilenceUsage = true

			level := envconfig.LogLevel
			if f.verbose && level > slog.LevelDebug {
				level = slog.LevelDebug
			}
			slog.SetDefault(logutil.NewLogger(cmd.ErrOrStderr(), level))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWrap(cmd, f, args)
		},
	}

	fl := rootCmd.Flags()
	fl.BoolVarP(&f.opts.Fortran, "fortran", "f", false, "Generate Fortran bindings")
	fl.BoolVarP(&f.opts.Guards, "guards", "g", false, "Generate reentry guards around wrapper bodies")
	fl.BoolVarP(&f.opts.SkipHeaders, "skip-headers", "s", false, "Skip the C front matter; templates need not be C")
	fl.BoolVarP(&f.opts.IgnoreDeprecated, "ignore-deprecated", "w", false, "Silence deprecation warnings around PMPI calls")
	fl.StringVarP(&f.opts.StaticDir, "static-dir", "S", "", "Write one source file per wrapped function into `dir`")
	fl.StringVarP(&f.opts.PMPIInitBinding, "pmpi-init", "i", envconfig.PMPIInitBinding,
		"Fortran `binding` of pmpi_init for static libraries ("+strings.Join(wrapgen.InitBindings, ", ")+")")
	fl.BoolVarP(&f.dump, "dump", "d", false, "Print the MPI prototypes found and exit")
	fl.BoolVar(&f.table, "table", false, "With -d, print the prototypes as a table")
	fl.StringVarP(&f.mpicc, "mpicc", "c", envconfig.MPICC, "MPI compiler used to preprocess mpi.h")
	fl.StringArrayVarP(&f.includes, "include", "I", nil, "Extra include `dir` for the preprocessor")
	fl.StringVarP(&f.output, "output", "o", "", "Write generated code to `file`")
	fl.StringVar(&f.decls, "decls", "", "Read declarations from `file` instead of preprocessing mpi.h")
	fl.BoolVarP(&f.verbose, "verbose", "v", false, "Show debug logging")

	return rootCmd
}

func runWrap(cmd *cobra.Command, f *flags, args []string) error {
	if err := f.opts.Validate(); err != nil {
		return err
	}

	cat, err := loadCatalog(cmd, f)
	if err != nil {
		return err
	}
	slog.Debug("read declarations", "count", cat.Len())

	if f.dump {
		return dumpPrototypes(cmd.OutOrStdout(), cat, f.table)
	}

	sources, err := utils.ReadSources(args)
	if err != nil {
		return err
	}
	templates := make([]wrapgen.Template, len(args))
	for i, name := range args {
		if full, _, err := utils.GetPathInfo(name); err == nil {
			slog.Debug("template", "fileno", i, "path", full)
		}
		templates[i] = wrapgen.Template{Name: name, Source: sources[name]}
	}

	if f.opts.StaticDir != "" {
		if err := utils.RequireDir(f.opts.StaticDir); err != nil {
			return err
		}
	}

	var out *outfs.Set
	if f.output == "" && f.opts.StaticDir == "" {
		out = outfs.NewWriter(cmd.OutOrStdout())
	} else if out, err = outfs.New(f.output, f.opts.StaticDir); err != nil {
		return err
	}

	g, err := wrapgen.New(cat, out, f.opts)
	if err == nil {
		err = g.Generate(templates)
	}
	if err != nil {
		if aerr := out.Abort(); aerr != nil {
			slog.Warn("removing partial output", "error", aerr)
		}
		return err
	}

	if err := out.Close(); err != nil {
		return err
	}
	slog.Debug("wrote output", "files", len(out.Files()))
	return nil
}

func loadCatalog(cmd *cobra.Command, f *flags) (*catalog.Catalog, error) {
	if f.decls != "" {
		file, err := os.Open(f.decls)
		if err != nil {
			return nil, err
		}
		defer file.Close()

		cat, err := catalog.Load(file)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", f.decls, err)
		}
		return cat, nil
	}

	pp := &catalog.Preprocessor{
		Compiler: f.mpicc,
		Includes: append(append([]string(nil), envconfig.Includes...), f.includes...),
	}
	return pp.Catalog(cmd.Context())
}

func dumpPrototypes(w io.Writer, cat *catalog.Catalog, asTable bool) error {
	if !asTable {
		for _, d := range cat.Declarations() {
			if _, err := fmt.Fprintln(w, d); err != nil {
				return err
			}
		}
		return nil
	}

	var data [][]string
	for _, d := range cat.Declarations() {
		data = append(data, []string{d.Name, d.RetType, fmt.Sprint(len(d.Params)), strings.Join(d.Formals(), ", ")})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"NAME", "RETURNS", "NARGS", "PARAMETERS"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()
	return nil
}
