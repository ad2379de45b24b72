package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/address-validator/app/models"
	"github.com/address-validator/app/services"
	"github.com/address-validator/helpers/utils"
	"github.com/address-validator/internal/parser"
	"github.com/address-validator/internal/provider"
)

// maxLineBytes bounds a single input line
const maxLineBytes = 1 << 20

type validateOptions struct {
	workers int
}

// lineResult one NDJSON output record
type lineResult struct {
	Line    int                      `json:"line"`
	Address string                   `json:"address"`
	Result  *models.ValidationResult `json:"result"`
}

func newValidateCmd() *cobra.Command {
	opts := validateOptions{}

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate one address per line and print NDJSON results",
		Long: `Reads addresses from file, or stdin when no file is given, one per line.
Blank lines are skipped. Each result is printed as one JSON object per line,
in input order.

$ echo "123 main street, springfield, illinois 62704" | address-worker validate
{"line":1,"address":"123 main street, springfield, illinois 62704","result":{"status":"corrected",...}}
`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			input := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				input = f
			}

			return runValidate(cmd.Context(), input, cmd.OutOrStdout(), opts)
		},
	}

	cmd.Flags().IntVarP(&opts.workers, "workers", "w", runtime.NumCPU(), "number of concurrent validations")

	return cmd
}

func runValidate(ctx context.Context, r io.Reader, w io.Writer, opts validateOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if opts.workers <= 0 {
		return fmt.Errorf("--workers must be positive, got %d", opts.workers)
	}

	lines, err := readAddresses(r)
	if err != nil {
		return err
	}

	heuristic := provider.NewLocalHeuristicProvider(parser.NewAddressParser(parser.DefaultAliasTables()))

	results := make([]lineResult, len(lines))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers)

	for i, line := range lines {
		i, line := i, line
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			line.Result = services.BuildValidationResult(gctx, heuristic, line.Address)
			results[i] = line
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	out := utils.NewNDJSONWriter(w)
	for _, res := range results {
		if err := out.Write(res); err != nil {
			return fmt.Errorf("write result for line %d: %w", res.Line, err)
		}
	}

	return nil
}

// readAddresses returns non-blank lines along with their 1-based line numbers
func readAddresses(r io.Reader) ([]lineResult, error) {
	var lines []lineResult

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	n := 0
	for scanner.Scan() {
		n++
		text := scanner.Text()
		if strings.TrimSpace(text) == "" {
			continue
		}
		lines = append(lines, lineResult{Line: n, Address: text})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}

	return lines, nil
}
