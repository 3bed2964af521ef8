package main

import (
	"log/slog"
	"os"

	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/logging"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/seed"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/services"
	"github.com/ahmetcoskunkizilkaya/lawconnect-backend/internal/store"
	"github.com/spf13/cobra"
)

var (
	opts     seed.Options
	seedFlag int64
)

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Fill the database with fake clients, lawyers and conversations",
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		var st store.Store
		if cfg.UsesMemoryStore() {
			slog.Warn("seeding the in-memory store; nothing will persist")
			st = store.NewMemoryStore()
		} else {
			if err := database.Connect(cfg); err != nil {
				return err
			}
			if err := database.Migrate(); err != nil {
				return err
			}
			st = store.NewGormStore(database.DB)
		}

		s := seed.New(st, services.NewUserService(st), services.NewChatService(st, nil, nil), seedFlag)
		_, err = s.Run(cmd.Context(), opts)
		return err
	},
}

func init() {
	f := rootCmd.Flags()
	f.IntVar(&opts.Clients, "clients", 20, "number of client accounts")
	f.IntVar(&opts.Lawyers, "lawyers", 10, "number of lawyer accounts")
	f.IntVar(&opts.Chats, "chats", 15, "number of conversations to start")
	f.IntVar(&opts.Replies, "replies", 4, "maximum follow-up messages per conversation")
	f.Int64Var(&seedFlag, "seed", 0, "random seed, 0 for a random run")
}

func main() {
	logging.Setup()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("seed failed", "error", err)
		os.Exit(1)
	}
}
