package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/mat"

	"github.com/TheusHen/ptstd/ptstd/linear"
)

// parseMatrix reads "1,2;3,4": rows separated by ';', columns by ','.
func parseMatrix(s string) (*mat.Dense, error) {
	var rows [][]float64
	for _, r := range strings.Split(s, ";") {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		var row []float64
		for _, f := range strings.Split(r, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, fmt.Errorf("matrix %q: %w", s, err)
			}
			row = append(row, v)
		}
		rows = append(rows, row)
	}
	return linear.Matrix(rows...)
}

func newMatMulCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "matmul matrix...",
		Short:   "Multiply matrices left to right",
		Example: `  ptstd matmul "1,2;3,4" "5;6"`,
		Args:    cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ms := make([]mat.Matrix, 0, len(args))
			for _, a := range args {
				m, err := parseMatrix(a)
				if err != nil {
					return err
				}
				ms = append(ms, m)
			}
			product, err := linear.MatMul(ms[0], ms[1:]...)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), linear.Format(product))
			return nil
		},
	}
}
