package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-gum/tagged"
	"github.com/go-gum/tagged/internal/feed"
	"github.com/go-gum/tagged/tagjson"
	"github.com/go-gum/tagged/tagyaml"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (a *app) newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [file...]",
		Short: "Decode feed files and print them as canonical JSON",
		Long: `Decodes every file and prints one line of canonical JSON per file, in the
order the files were given. Files ending in .yaml or .yml are read as YAML,
everything else as JSON. Files are decoded in parallel, the first failing
file aborts the command.`,
		Args: cobra.MinimumNArgs(1),
		RunE: a.runDecode,
	}

	cmd.Flags().String("field", "", "Member holding the messages, empty for top level arrays")
	cmd.Flags().String("discriminator", "", "Member of each message holding its type")
	cmd.Flags().Int("workers", 0, "Number of files decoded in parallel")
	cmd.Flags().Bool("validate", true, "Validate decoded messages")

	return cmd
}

// loadConfig loads the configuration and applies flags set on the command line.
func (a *app) loadConfig(cmd *cobra.Command) (Config, error) {
	config, err := LoadConfig(a.configPath)
	if err != nil {
		return Config{}, err
	}

	flags := cmd.Flags()

	if flags.Changed("field") {
		config.Field, _ = flags.GetString("field")
	}

	if flags.Changed("discriminator") {
		config.Discriminator, _ = flags.GetString("discriminator")
	}

	if flags.Changed("workers") {
		config.Workers, _ = flags.GetInt("workers")
		config.Workers = max(config.Workers, 1)
	}

	if flags.Changed("validate") {
		config.Validate, _ = flags.GetBool("validate")
	}

	return config, nil
}

func (a *app) runDecode(cmd *cobra.Command, paths []string) error {
	config, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}

	registry, err := feed.NewRegistry(config.Discriminator)
	if err != nil {
		return fmt.Errorf("build registry: %w", err)
	}

	decoder := tagged.NewDecoder().WithLogger(a.logger)
	if config.Validate {
		decoder = decoder.WithValidation()
	}

	a.logger.Debug("Decoding files",
		zap.Strings("paths", paths),
		zap.String("field", config.Field),
		zap.String("discriminator", registry.Field()),
		zap.Int("workers", config.Workers))

	results, err := a.decodeFiles(cmd.Context(), decoder, registry, config, paths)
	if err != nil {
		return err
	}

	for idx, messages := range results {
		var out []byte
		if config.Field == "" {
			out, err = tagjson.Marshal(registry, messages)
		} else {
			out, err = tagjson.MarshalField(registry, config.Field, messages)
		}

		if err != nil {
			return fmt.Errorf("%s: encode: %w", paths[idx], err)
		}

		if _, err := fmt.Fprintln(cmd.OutOrStdout(), string(out)); err != nil {
			return err
		}
	}

	return nil
}

// decodeFiles decodes the files in parallel, each one with its own SequenceDecoder.
// Results are returned in the order of paths.
func (a *app) decodeFiles(
	ctx context.Context,
	decoder *tagged.Decoder,
	registry *tagged.Registry[feed.Message],
	config Config,
	paths []string,
) ([][]feed.Message, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	results := make([][]feed.Message, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(config.Workers)

	for idx, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			messages, err := decodeFile(decoder, registry, config.Field, path)
			if err != nil {
				a.logger.Warn("Decoding file failed", zap.String("path", path), zap.Error(err))
				return fmt.Errorf("%s: %w", path, err)
			}

			a.logger.Info("Decoded file", zap.String("path", path), zap.Int("messages", len(messages)))
			results[idx] = messages
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func decodeFile(
	decoder *tagged.Decoder,
	registry *tagged.Registry[feed.Message],
	field string,
	path string,
) ([]feed.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var source tagged.Source

	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		source, err = tagyaml.Parse(data)
	default:
		source, err = tagjson.Parse(data)
	}

	if err != nil {
		return nil, err
	}

	sequence := tagged.NewSequenceDecoder(registry, decoder)
	if field == "" {
		return sequence.Decode(source)
	}

	return sequence.DecodeField(source, field)
}
