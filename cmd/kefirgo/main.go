// Command kefirgo is a thin demonstration driver over the compiler core's
// optimization pipeline and code generator. It is not the AST front end or
// the real toolchain driver — both stay out of scope — it exists only so
// the pipeline has a runnable entry point, the way z80opt gave the
// superoptimizer one.
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/kefir-go/kefirgo/pkg/cc/abi/amd64"
	"github.com/kefir-go/kefirgo/pkg/cc/codegen"
	"github.com/kefir-go/kefirgo/pkg/cc/fixtures"
	"github.com/kefir-go/kefirgo/pkg/cc/irmodule"
	"github.com/kefir-go/kefirgo/pkg/cc/optpass"
	"github.com/kefir-go/kefirgo/pkg/cc/types"
	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "kefirgo",
		Short: "optimizer IR pipeline and x86-64 code generator demonstration driver",
	}

	passesCmd := &cobra.Command{
		Use:   "passes",
		Short: "list the optimization pass pipeline",
		RunE: func(cmd *cobra.Command, args []string) error {
			pipeline := optpass.DefaultPipeline()
			fmt.Println("Pipeline:")
			for i, p := range pipeline.Passes {
				fmt.Printf("  %d. %s\n", i+1, p.Name())
			}
			return nil
		},
	}

	var syntax string
	var fixtureName string
	var statsOut string
	var parallel bool
	emitCmd := &cobra.Command{
		Use:   "emit",
		Short: "run a named IR fixture through the pipeline and print the generated assembly",
		RunE: func(cmd *cobra.Command, args []string) error {
			build, ok := fixtures.ByName[fixtureName]
			if !ok {
				return fmt.Errorf("unknown fixture %q (known: %v)", fixtureName, fixtures.Names())
			}
			mod := irmodule.NewModule(nil)
			defer mod.Close()
			decl, fn := build(mod)

			pipeline := optpass.DefaultPipeline()
			var stats *optpass.Stats
			var err error
			if parallel {
				stats, err = pipeline.RunParallel(mod, 0)
			} else {
				stats, err = pipeline.RunWithStats(mod)
			}
			if err != nil {
				return fmt.Errorf("running optimization pipeline: %w", err)
			}
			if statsOut != "" {
				if err := optpass.SaveStats(statsOut, stats); err != nil {
					return fmt.Errorf("saving pipeline stats: %w", err)
				}
			}

			cfg := codegen.DefaultConfig()
			cfg.Syntax = codegen.Syntax(syntax)
			gen, err := codegen.NewGenerator(cfg)
			if err != nil {
				return err
			}
			if err := codegen.Generate(mod, decl, fn, cfg, gen); err != nil {
				return fmt.Errorf("generating code for %s: %w", decl.Name, err)
			}
			fmt.Print(gen.String())
			return nil
		},
	}
	emitCmd.Flags().StringVar(&syntax, "syntax", "att", "assembly syntax: att, intel, intel-prefix")
	emitCmd.Flags().StringVar(&fixtureName, "fixture", "", "name of the built-in IR fixture to compile")
	emitCmd.Flags().StringVar(&statsOut, "stats-out", "", "path to save pipeline effect statistics (gob-encoded)")
	emitCmd.Flags().BoolVar(&parallel, "parallel", false, "run the pipeline across functions concurrently")

	listCmd := &cobra.Command{
		Use:   "fixtures",
		Short: "list the built-in IR fixtures emit can compile",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range fixtures.Names() {
				fmt.Println(name)
			}
			return nil
		},
	}

	statsCmd := &cobra.Command{
		Use:   "stats <path>",
		Short: "print pipeline effect statistics previously saved with emit --stats-out",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stats, err := optpass.LoadStats(args[0])
			if err != nil {
				return fmt.Errorf("loading stats: %w", err)
			}
			for _, e := range stats.ByPass() {
				fmt.Printf("  %-20s %d instructions removed\n", e.Pass, e.Removed)
			}
			return nil
		},
	}

	abiClassifyCmd := &cobra.Command{
		Use:   "abi-classify <descriptor>",
		Short: "print the SysV eightbyte classification for a type descriptor",
		Long: "Type descriptor syntax: a scalar name (int8, int16, int32, int64,\n" +
			"uint8, uint16, uint32, uint64, float32, float64, longdouble, pointer)\n" +
			"or struct(member,member,...) of scalar names, comma-separated.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := parseTypeDescriptor(args[0])
			if err != nil {
				return fmt.Errorf("parsing type descriptor %q: %w", args[0], err)
			}
			size, align := amd64.Layout(t, 0)
			fmt.Printf("size=%d align=%d\n", size, align)
			placement, err := amd64.ClassifyReturn(t)
			if err != nil {
				fmt.Printf("return: %v\n", err)
				return nil
			}
			if placement.ImplicitParameter {
				fmt.Println("return: implicit pointer parameter (MEMORY class)")
				return nil
			}
			for i, loc := range placement.Locations {
				fmt.Printf("return eightbyte %d: %s\n", i, describeLocation(loc))
			}
			return nil
		},
	}

	rootCmd.AddCommand(passesCmd, emitCmd, listCmd, statsCmd, abiClassifyCmd)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

var scalarCodes = map[string]types.Code{
	"int8": types.Int8, "int16": types.Int16, "int32": types.Int32, "int64": types.Int64,
	"uint8": types.UInt8, "uint16": types.UInt16, "uint32": types.UInt32, "uint64": types.UInt64,
	"float32": types.Float32, "float64": types.Float64, "longdouble": types.LongDouble,
	"pointer": types.Pointer,
}

// parseTypeDescriptor reads the small descriptor language abi-classify
// accepts: a bare scalar name, or struct(member,member,...) of scalar
// names. Nested structs aren't supported — there's no front end behind
// this command to ever need more than a flat member list.
func parseTypeDescriptor(s string) (*types.Type, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "struct(") {
		code, ok := scalarCodes[strings.ToLower(s)]
		if !ok {
			return nil, fmt.Errorf("unknown scalar type %q", s)
		}
		return types.New(types.Entry{Code: code}), nil
	}
	inner := strings.TrimSuffix(strings.TrimPrefix(s, "struct("), ")")
	members := strings.Split(inner, ",")
	entries := []types.Entry{{Code: types.Struct, Count: len(members)}}
	for _, m := range members {
		m = strings.TrimSpace(m)
		code, ok := scalarCodes[strings.ToLower(m)]
		if !ok {
			return nil, fmt.Errorf("unknown member type %q", m)
		}
		entries = append(entries, types.Entry{Code: code})
	}
	return &types.Type{Entries: entries}, nil
}

func describeLocation(loc amd64.Location) string {
	switch {
	case loc.InGP:
		return loc.GP.String()
	case loc.InSSE:
		return loc.SSE.String()
	case loc.OnStack:
		return fmt.Sprintf("stack+%d", loc.StackOff)
	default:
		return "x87 (st0/st1)"
	}
}
