package cmd

import (
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/haydnv/tbon"
	"github.com/haydnv/tbon/log"
	"github.com/haydnv/tbon/transport"
)

var (
	dumpSnappy        bool
	dumpMaxBytes      uint64
	dumpMaxContainers uint64
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Decode a TBON stream and print each top-level value",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		lgr := log.WithComponent("dump")

		var in io.Reader = os.Stdin
		if len(args) == 1 {
			f, err := os.Open(args[0])
			if err != nil {
				return errors.Wrap(err, "error opening input file")
			}
			defer f.Close()
			in = f
		}

		src := tbon.SourceFromReader(in)
		if dumpSnappy {
			src = transport.SnappySource(in)
		}
		counting := transport.NewCountingSource(src)

		dec := tbon.NewDecoder(counting)
		dec.MaxBytesLen = dumpMaxBytes
		dec.MaxContainerLen = dumpMaxContainers

		ctx := cmd.Context()
		for i := 0; ; i++ {
			more, err := dec.More(ctx)
			if err != nil {
				return err
			}
			if !more {
				lgr.Debug("stream exhausted", "values", i, "bytes", counting.Count())
				return nil
			}

			value, err := dec.Decode(ctx, tbon.ValueVisitor{})
			if err != nil {
				return errors.Wrapf(err, "error decoding value %d", i)
			}
			fmt.Println(render(value))
		}
	},
}

func render(value interface{}) string {
	switch it := value.(type) {
	case nil:
		return "none"
	case string:
		return fmt.Sprintf("%q", it)
	case []byte:
		return "0x" + hex.EncodeToString(it)
	case uuid.UUID:
		return it.String()
	case []interface{}:
		elems := make([]string, len(it))
		for i, elem := range it {
			elems[i] = render(elem)
		}
		return "[" + strings.Join(elems, ", ") + "]"
	case tbon.Map:
		entries := make([]string, len(it))
		for i, entry := range it {
			entries[i] = render(entry.Key) + ": " + render(entry.Value)
		}
		return "{" + strings.Join(entries, ", ") + "}"
	default:
		return fmt.Sprintf("%v", it)
	}
}

func init() {
	dumpCmd.Flags().BoolVar(&dumpSnappy, "snappy", false, "Treat the input as a snappy-framed stream.")
	dumpCmd.Flags().Uint64Var(&dumpMaxBytes, "max-bytes", tbon.DefaultMaxBytesLen, "Maximum string/bytes payload length to accept.")
	dumpCmd.Flags().Uint64Var(&dumpMaxContainers, "max-elements", tbon.DefaultMaxContainerLen, "Maximum declared sequence/map length to accept.")
	rootCmd.AddCommand(dumpCmd)
}
