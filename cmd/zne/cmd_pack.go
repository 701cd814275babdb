package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/arloliu/zne/archive"
	"github.com/arloliu/zne/config"
)

func newPackCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pack",
		Short: "Pack a sample file into a compressed archive",
		Long: `Pack a sample file together with the fit declaration of a run
configuration into a compressed, checksummed sample archive.

Compression and byte order come from the archive section of the
configuration.`,
		Example: `  zne pack --config run.yaml --samples samples.yaml --out run.znea`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			samplesPath, _ := cmd.Flags().GetString("samples")
			outPath, _ := cmd.Flags().GetString("out")
			runIDFlag, _ := cmd.Flags().GetString("run-id")
			logger := newLogger(cmd)

			cfg, err := loadConfig(configPath)
			if err != nil {
				return err
			}

			runID := uuid.New()
			if runIDFlag != "" {
				if runID, err = uuid.Parse(runIDFlag); err != nil {
					return fmt.Errorf("invalid --run-id: %w", err)
				}
			}

			samples, err := config.LoadSamples(samplesPath)
			if err != nil {
				return err
			}

			engine, err := engineFromSamples(cfg, samples, logger)
			if err != nil {
				return err
			}

			opts, err := cfg.ArchiveOptions()
			if err != nil {
				return err
			}

			data, err := archive.Encode(archive.FromEngine(runID, engine), opts...)
			if err != nil {
				return fmt.Errorf("encode archive: %w", err)
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write archive: %w", err)
			}

			logger.Info("archive written",
				slog.String("path", outPath),
				slog.String("run_id", runID.String()),
				slog.Int("samples", len(samples)),
				slog.Int("bytes", len(data)),
			)

			if jsonOutput(cmd) {
				return json.NewEncoder(out(cmd)).Encode(map[string]any{
					"path":    outPath,
					"run_id":  runID.String(),
					"samples": len(samples),
					"bytes":   len(data),
				})
			}

			_, err = fmt.Fprintf(out(cmd), "wrote %s: %d samples, %d bytes, run %s\n", outPath, len(samples), len(data), runID)

			return err
		},
	}

	cmd.Flags().StringP("config", "c", "", "Run configuration file (YAML)")
	cmd.Flags().StringP("samples", "s", "", "Sample file (YAML list of {scale_factor, value})")
	cmd.Flags().StringP("out", "o", "", "Archive output path")
	cmd.Flags().String("run-id", "", "Run ID to record (UUID, random by default)")
	_ = cmd.MarkFlagRequired("samples")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
