package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"gopkg.idlgen.dev/generator.go/internal/compiler"
	"gopkg.idlgen.dev/generator.go/internal/compiler/protobuf"
	"gopkg.idlgen.dev/generator.go/internal/config"
	"gopkg.idlgen.dev/generator.go/internal/exc"
	"gopkg.idlgen.dev/generator.go/internal/fs"
	"gopkg.idlgen.dev/generator.go/internal/generator"
	"gopkg.idlgen.dev/generator.go/internal/idl"
	"gopkg.idlgen.dev/generator.go/internal/logger"
)

type globalOpts struct {
	LogLevel string
	LogJSON  bool
	EnvFiles []string
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		var me exc.MultiException
		if errors.As(err, &me) {
			for _, e := range me {
				fmt.Fprintln(os.Stderr, e.Error())
			}
		} else {
			fmt.Fprintln(os.Stderr, err.Error())
		}
		if hints := errors.GetAllHints(err); len(hints) > 0 {
			for _, h := range hints {
				fmt.Fprintln(os.Stderr, "hint:", h)
			}
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	op := &globalOpts{}
	root := &cobra.Command{
		Use:           "idlgen",
		Short:         "Generate TypeScript API clients from Thrift and Protobuf IDL",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := config.LoadEnv(op.EnvFiles...); err != nil {
				return err
			}
			return logger.Initialize(op.LogJSON, op.LogLevel)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Cleanup()
		},
	}
	root.PersistentFlags().AddFlagSet(globalFlags(op))
	root.AddCommand(newGenCmd(), newParseCmd(), newDescriptorCmd())
	return root
}

func globalFlags(op *globalOpts) *pflag.FlagSet {
	flags := pflag.NewFlagSet("global", pflag.ContinueOnError)
	flags.StringVar(&op.LogLevel, "log-level", "info", "Log level: debug, info, warn or error.")
	flags.BoolVar(&op.LogJSON, "log-json", false, "Write logs as JSON.")
	flags.StringSliceVar(&op.EnvFiles, "env-file", []string{".env"}, "Environment files to load before reading config.")
	return flags
}

func newGenCmd() *cobra.Command {
	var (
		configPath string
		watch      bool
	)
	cmd := &cobra.Command{
		Use:   "gen",
		Short: "Generate client modules for every configured entry",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if err := runGen(ctx, cmd.OutOrStdout(), configPath); err != nil {
				if !watch {
					return err
				}
				logger.Errorw("generation failed", logger.FieldError, err)
			}
			if !watch {
				return nil
			}
			return watchGen(ctx, cmd.OutOrStdout(), configPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "idlgen.yaml", "Project config file (JSON, YAML or TOML).")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Regenerate when the config or IDL files change.")
	return cmd
}

func runGen(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	opts, err := generator.FromConfig(cfg)
	if err != nil {
		return err
	}
	res, err := generator.Generate(ctx, opts)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "wrote %d files (%s) to %s\n", len(res.Files), humanize.Bytes(uint64(res.Bytes)), cfg.Output)
	return nil
}

func watchGen(ctx context.Context, out io.Writer, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	roots := append([]string{cfg.IdlRoot}, cfg.IncludePaths...)
	relevant := func(name string) bool {
		return fs.KindOf(filepath.ToSlash(name)) != idl.FileKindNone
	}
	w, err := config.NewWatcher(configPath, roots, relevant, func(ctx context.Context) error {
		return runGen(ctx, out, configPath)
	})
	if err != nil {
		return err
	}
	logger.Infow("watching for changes", logger.FieldPath, configPath)
	w.Start(ctx)
	<-ctx.Done()
	return w.Stop()
}

// documentView gives statements an explicit kind so parse output can be
// read without the Go types.
type documentView struct {
	Path       string          `json:"path" yaml:"path"`
	Dialect    string          `json:"dialect" yaml:"dialect"`
	Namespace  string          `json:"namespace,omitempty" yaml:"namespace,omitempty"`
	Includes   []string        `json:"includes,omitempty" yaml:"includes,omitempty"`
	Statements []statementView `json:"statements" yaml:"statements"`
}

type statementView struct {
	Kind      idl.StatementKind `json:"kind" yaml:"kind"`
	Statement idl.Statement     `json:"statement" yaml:"statement"`
}

func newParseCmd() *cobra.Command {
	var (
		format            string
		reviseTailComment bool
	)
	cmd := &cobra.Command{
		Use:   "parse <file|->",
		Short: "Parse one IDL file, or IDL text on stdin, and print the unified document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if source == "-" {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "reading stdin")
				}
				source = string(b)
			}
			c, err := compiler.New(compiler.OptionWithParseOptions(idl.ParseOptions{ReviseTailComment: reviseTailComment}))
			if err != nil {
				return err
			}
			doc, err := c.Parse(cmd.Context(), source)
			if err != nil {
				return err
			}
			view := documentView{
				Path:      doc.IdlPath,
				Dialect:   doc.Dialect.String(),
				Namespace: doc.Namespace,
				Includes:  doc.Includes,
			}
			for _, s := range doc.Statements {
				view.Statements = append(view.Statements, statementView{Kind: s.Kind(), Statement: s})
			}
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			case "yaml":
				enc := yaml.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent(2)
				defer enc.Close()
				return enc.Encode(view)
			default:
				return errors.Newf("unknown format %q, want json or yaml", format)
			}
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "json", "Output format: json or yaml.")
	cmd.Flags().BoolVar(&reviseTailComment, "revise-tail-comment", true, "Keep same-line trailing comments with their declaration.")
	return cmd
}

func newDescriptorCmd() *cobra.Command {
	var (
		output         string
		roots          []string
		includeImports bool
	)
	cmd := &cobra.Command{
		Use:   "descriptor <file.proto>...",
		Short: "Write a protobuf FileDescriptorSet for proto files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			mf, err := compiler.NewDefaultFS(os.LookupEnv, roots...)
			if err != nil {
				return err
			}
			set, err := protobuf.DescriptorSet(cmd.Context(), exc.NewReporter(nil), mf, args, includeImports)
			if err != nil {
				return err
			}
			b, err := protobuf.MarshalDescriptorSet(set)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, b, 0o644); err != nil {
				return errors.Wrapf(err, "writing %s", output)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d files (%s) to %s\n", len(set.File), humanize.Bytes(uint64(len(b))), output)
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "out.protoset", "Descriptor set file to write.")
	cmd.Flags().StringSliceVar(&roots, "root", []string{"."}, "Root search paths for imports.")
	cmd.Flags().BoolVar(&includeImports, "include-imports", false, "Also include every imported file.")
	return cmd
}
