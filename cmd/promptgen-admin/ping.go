package main

import (
	"github.com/spf13/cobra"
	"github.com/timmy/promptgen/internal/config"
	"github.com/timmy/promptgen/internal/service"
)

func newPingCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check connectivity to the configured vision model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}
			vlm := service.NewVLMService(&service.VLMConfig{
				Provider: cfg.VLM.Provider,
				Model:    cfg.VLM.Model,
				APIKey:   cfg.VLM.APIKey,
				BaseURL:  cfg.VLM.BaseURL,
				Timeout:  cfg.VLM.Timeout,
			})
			reply, err := vlm.Ping(cmd.Context())
			if err != nil {
				return err
			}
			return writePlain(cmd.OutOrStdout(), "%s/%s replied: %s\n", vlm.Provider(), vlm.GetModel(), reply)
		},
	}
}
