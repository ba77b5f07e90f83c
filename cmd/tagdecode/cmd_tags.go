package main

import (
	"fmt"

	"github.com/go-gum/tagged/internal/feed"
	"github.com/spf13/cobra"
)

func (a *app) newTagsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List the known message types",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := LoadConfig(a.configPath)
			if err != nil {
				return err
			}

			registry, err := feed.NewRegistry(config.Discriminator)
			if err != nil {
				return err
			}

			for _, tag := range registry.Tags() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", registry.Field(), tag)
			}

			return nil
		},
	}
}
