package main

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var initdbCmd = &cobra.Command{
	Use:   "initdb",
	Short: "Create the database schema if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close()

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		zap.L().Info("database initialized",
			zap.String("driver", cfg.Store.Driver),
			zap.String("database_url", cfg.Store.DatabaseURL),
		)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(initdbCmd)
}
