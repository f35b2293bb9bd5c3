package main

import (
	"context"
	"fmt"
	"os"

	"medical-slot-booking/cmd/bootstrap"
	"medical-slot-booking/config"
	"medical-slot-booking/internal/infrastructure/database"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func main() {
	var envFile string

	rootCmd := &cobra.Command{
		Use:          "medical-booking",
		Short:        "Doctor slot booking and appointment lifecycle service",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional .env file")

	rootCmd.AddCommand(serveCmd(&envFile))
	rootCmd.AddCommand(migrateCmd(&envFile))
	rootCmd.AddCommand(seedCmd(&envFile))

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd(envFile *string) *cobra.Command {
	var opts bootstrap.SeedOptions
	var seed bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(*envFile)
			if err != nil {
				return err
			}

			if seed {
				if err := runSeed(cmd.Context(), app, opts); err != nil {
					app.Close()
					return err
				}
			}

			return app.Run()
		},
	}
	cmd.Flags().BoolVar(&seed, "seed", false, "seed demo data before serving (useful with STORE_DRIVER=memory)")
	addSeedFlags(cmd, &opts)
	return cmd
}

func migrateCmd(envFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
	}

	run := func(fn func(m *database.Migrator) error) error {
		cfg, err := config.LoadConfig(*envFile)
		if err != nil {
			return err
		}
		return bootstrap.Migrate(cfg.DB, fn)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(m *database.Migrator) error { return m.Up() })
		},
	})

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(m *database.Migrator) error { return m.Down(steps) })
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	cmd.AddCommand(down)

	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(func(m *database.Migrator) error {
				v, dirty, err := m.Version()
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty: %t)\n", v, dirty)
				return nil
			})
		},
	})

	return cmd
}

func seedCmd(envFile *string) *cobra.Command {
	var opts bootstrap.SeedOptions

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Insert demo doctors, patients and slots",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := bootstrap.New(*envFile)
			if err != nil {
				return err
			}
			defer app.Close()

			return runSeed(cmd.Context(), app, opts)
		},
	}
	addSeedFlags(cmd, &opts)
	return cmd
}

func addSeedFlags(cmd *cobra.Command, opts *bootstrap.SeedOptions) {
	cmd.Flags().IntVar(&opts.Doctors, "doctors", 5, "number of doctors")
	cmd.Flags().IntVar(&opts.Patients, "patients", 20, "number of patients")
	cmd.Flags().IntVar(&opts.Days, "days", 7, "days of slots per doctor")
	cmd.Flags().Uint64Var(&opts.Seed, "faker-seed", 0, "faker seed (0 = random)")
}

func runSeed(ctx context.Context, app *bootstrap.App, opts bootstrap.SeedOptions) error {
	if ctx == nil {
		ctx = context.Background()
	}

	result, err := bootstrap.Seed(ctx, app.Store, app.Usecases.TimeSlots, app.JWT, app.Log, opts)
	if err != nil {
		return err
	}

	for _, u := range result.Users {
		app.Log.WithFields(logrus.Fields{
			"email":      u.Email,
			"user_id":    u.UserID,
			"profile_id": u.ProfileID,
			"role_id":    u.RoleID,
			"token":      u.Token,
		}).Info("Seeded user")
	}
	return nil
}
