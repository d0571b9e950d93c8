// Command megastore is the interactive front end of the catalog. It can
// query a products file in-process or a running catalog service.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"MegaStore/internal/catalog"
	"MegaStore/internal/repl"
	"MegaStore/pkg/kit"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "megastore",
		Short:        "Product catalog lookup tool",
		SilenceUsage: true,
	}
	root.PersistentFlags().Bool("debug", false, "log debug output to stderr")

	root.AddCommand(newReplCmd(), newTokenCmd())
	return root
}

func newReplCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "repl",
		Short: "Interactive product menu",
		RunE: func(cmd *cobra.Command, args []string) error {
			debug, _ := cmd.Flags().GetBool("debug")
			file, _ := cmd.Flags().GetString("file")
			remote, _ := cmd.Flags().GetString("remote")

			log := kit.NewConsoleLogger(debug)
			defer func() { _ = log.Sync() }()

			client, err := newClient(cmd.Context(), file, remote, log)
			if err != nil {
				return err
			}
			return repl.New(client, cmd.InOrStdin(), cmd.OutOrStdout(), log).Run(cmd.Context())
		},
	}
	cmd.Flags().String("file", "products.txt", "products file (code;name per line)")
	cmd.Flags().String("remote", "", "catalog service URL; overrides --file")
	return cmd
}

func newClient(ctx context.Context, file, remote string, log *zap.Logger) (repl.Client, error) {
	if remote != "" {
		return repl.NewHTTPClient(remote), nil
	}

	holder := catalog.NewHolder(catalog.NewFileSource(file, log), log, nil)
	snap, err := holder.Reload(ctx)
	if err != nil {
		return nil, err
	}
	if snap.Index.Len() == 0 {
		return nil, fmt.Errorf("no products loaded from %q", file)
	}
	return repl.NewDirectClient(holder), nil
}

func newTokenCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an admin token for the catalog service",
		RunE: func(cmd *cobra.Command, args []string) error {
			secret, _ := cmd.Flags().GetString("secret")
			subject, _ := cmd.Flags().GetString("subject")
			ttl, _ := cmd.Flags().GetDuration("ttl")

			if secret == "" {
				secret = os.Getenv("ADMIN_JWT_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("--secret or ADMIN_JWT_SECRET is required")
			}

			tok, err := catalog.NewTokenMaker(secret).New(subject, catalog.RoleAdmin, ttl)
			if err != nil {
				return fmt.Errorf("sign token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().String("secret", "", "HS256 secret (default $ADMIN_JWT_SECRET)")
	cmd.Flags().String("subject", "operator", "token subject")
	cmd.Flags().Duration("ttl", 15*time.Minute, "token lifetime")
	return cmd
}
