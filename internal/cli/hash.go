package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/TheusHen/ptstd/ptstd/crypto"
	"github.com/TheusHen/ptstd/ptstd/thread"
)

func newHashCmd() *cobra.Command {
	var text string
	cmd := &cobra.Command{
		Use:   "hash [file...]",
		Short: "Print SHA-256 digests",
		Long: `Print the lowercase hex SHA-256 of each file (hashed in parallel on the
worker pool), of --string, or of stdin when neither is given.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch {
			case cmd.Flags().Changed("string"):
				_, _ = fmt.Fprintln(out, crypto.Sum256Hex(text))
				return nil
			case len(args) == 0:
				data, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return err
				}
				_, _ = fmt.Fprintln(out, crypto.SHA256Hex(data))
				return nil
			}

			cfg := getConfig(cmd)
			pool, err := thread.NewPool(cfg.Pool.Workers,
				thread.WithQueueSize(cfg.Pool.QueueSize),
				thread.WithLogger(logger("thread")))
			if err != nil {
				return err
			}
			defer pool.Close()

			sums := make([]string, len(args))
			g, _ := pool.NewGroup(cmd.Context())
			for i, path := range args {
				g.Go(func(context.Context) error {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					sums[i] = crypto.SHA256Hex(data)
					return nil
				})
			}
			if err := g.Wait(); err != nil {
				return err
			}
			for i, path := range args {
				_, _ = fmt.Fprintf(out, "%s  %s\n", sums[i], path)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&text, "string", "s", "", "hash this string instead of files")
	return cmd
}
