// Command docgraphctl round-trips a document through the engine and a
// chosen format plugin, for smoke-testing a schema outside of Go tests.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/docgraph/docgraph"
	"github.com/docgraph/docgraph/cbortree"
	"github.com/docgraph/docgraph/jsontree"
	"github.com/docgraph/docgraph/yamltree"
)

var (
	format  string
	verbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "docgraphctl",
		Short: "Round-trip a document through the docgraph engine",
	}
	root.PersistentFlags().StringVarP(&format, "format", "f", "json", "wire format: json, yaml, or cbor")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable development logging")

	root.AddCommand(newRoundtripCmd())
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRoundtripCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "roundtrip <file>",
		Short: "Decode a document, deserialize and re-serialize it through the engine, and print the re-encoded result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := zap.NewNop()
			if verbose {
				l, err := docgraph.NewDevelopmentLogger()
				if err != nil {
					return err
				}
				logger = l
			}
			defer logger.Sync()

			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			decode, encode, err := codecFor(format)
			if err != nil {
				return err
			}

			tree, err := decode(data)
			if err != nil {
				return err
			}

			engine := docgraph.NewEngine(docgraph.WithLogger(logger))
			obj, err := engine.Deserialize(tree)
			if err != nil {
				return fmt.Errorf("deserialize: %w", err)
			}

			reTree, err := engine.Serialize(obj)
			if err != nil {
				return fmt.Errorf("serialize: %w", err)
			}

			out, err := encode(reTree)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func codecFor(format string) (func([]byte) (interface{}, error), func(interface{}) ([]byte, error), error) {
	switch format {
	case "json":
		return jsontree.Decode, jsontree.EncodeIndent, nil
	case "yaml":
		return yamltree.Decode, yamltree.Encode, nil
	case "cbor":
		return cbortree.Decode, cbortree.Encode, nil
	default:
		return nil, nil, fmt.Errorf("unknown format %q", format)
	}
}
