package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"stockscan/internal/network"
	"stockscan/internal/queue"
)

type statusJSON struct {
	Network      string `json:"network"`
	CheckAddress string `json:"check_address"`
	APIURL       string `json:"api_url"`
	Pending      int    `json:"pending"`
	Dropped      int    `json:"dropped"`
	MaxEntries   int    `json:"max_entries"`
	Database     string `json:"database"`
	Integrity    bool   `json:"integrity_ok"`
	Error        string `json:"error,omitempty"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show connectivity and offline queue depth",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			state := network.Offline
			checker := network.NewDialChecker(cfg.Network.CheckAddress, cfg.CheckTimeout())
			if checker.Check(cmd.Context()) {
				state = network.Online
			}

			return ctx.withStore(func(store *queue.Store) error {
				health, err := store.CheckHealth(cmd.Context())
				if err != nil {
					return err
				}
				report := statusJSON{
					Network:      state.String(),
					CheckAddress: cfg.Network.CheckAddress,
					APIURL:       cfg.API.BaseURL,
					Pending:      health.Pending,
					Dropped:      health.Dropped,
					MaxEntries:   health.MaxEntries,
					Database:     health.DBPath,
					Integrity:    health.IntegrityCheck,
					Error:        health.Error,
				}
				if jsonOutput {
					return writeJSON(cmd, report)
				}
				pairs := [][2]string{
					{"Network", report.Network},
					{"Check address", report.CheckAddress},
					{"API", report.APIURL},
					{"Pending", strconv.Itoa(report.Pending)},
					{"Dropped", strconv.Itoa(report.Dropped)},
					{"Max entries", strconv.Itoa(report.MaxEntries)},
					{"Database", report.Database},
					{"Integrity OK", yesNo(report.Integrity)},
				}
				if report.Error != "" {
					pairs = append(pairs, [2]string{"Error", report.Error})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderPairs(pairs))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output as JSON")
	return cmd
}
