package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/arloliu/zne/archive"
	"github.com/arloliu/zne/config"
	"github.com/arloliu/zne/extrapolation"
	"github.com/arloliu/zne/sample"
)

type resultJSON struct {
	Model            string    `json:"model"`
	ZeroNoiseValue   float64   `json:"zero_noise_value"`
	ZeroNoiseError   float64   `json:"zero_noise_error"`
	DegreesOfFreedom int       `json:"degrees_of_freedom"`
	Coefficients     []float64 `json:"coefficients"`
	RSquared         float64   `json:"r_squared"`
	RMSE             float64   `json:"rmse"`
	Formula          string    `json:"formula"`
	ScaleFactors     []float64 `json:"scale_factors"`
	Values           []float64 `json:"values"`
	Counts           []int     `json:"counts"`
}

func newReduceCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "reduce",
		Short: "Extrapolate samples to the zero-noise limit",
		Long: `Reduce a sample file or a sample archive to a zero-noise estimate.

With --samples the fit model and scale factors come from --config (or the
defaults). With --archive they come from the archive, unless --config is
given, in which case the archived samples are re-reduced with the
configured declaration.`,
		Example: `  zne reduce --config run.yaml --samples samples.yaml
  zne reduce --archive run.znea --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			configPath, _ := cmd.Flags().GetString("config")
			samplesPath, _ := cmd.Flags().GetString("samples")
			archivePath, _ := cmd.Flags().GetString("archive")
			logger := newLogger(cmd)

			engine, err := buildEngine(configPath, samplesPath, archivePath, logger)
			if err != nil {
				return err
			}

			res, err := engine.Reduce()
			if err != nil {
				return fmt.Errorf("reduce: %w", err)
			}
			logger.Debug("reduced", slog.Int("samples", engine.Len()), slog.String("model", res.Model.String()))

			if jsonOutput(cmd) {
				return writeResultJSON(out(cmd), res)
			}

			return writeResultText(out(cmd), res)
		},
	}

	cmd.Flags().StringP("config", "c", "", "Run configuration file (YAML)")
	cmd.Flags().StringP("samples", "s", "", "Sample file (YAML list of {scale_factor, value})")
	cmd.Flags().StringP("archive", "a", "", "Sample archive written by 'zne pack'")
	cmd.MarkFlagsMutuallyExclusive("samples", "archive")
	cmd.MarkFlagsOneRequired("samples", "archive")

	return cmd
}

func buildEngine(configPath, samplesPath, archivePath string, logger *slog.Logger) (*extrapolation.Engine, error) {
	var samples []sample.Sample
	if archivePath != "" {
		data, err := os.ReadFile(archivePath)
		if err != nil {
			return nil, fmt.Errorf("read archive: %w", err)
		}
		rec, err := archive.Decode(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", archivePath, err)
		}
		logger.Debug("archive loaded",
			slog.String("run_id", rec.RunID.String()),
			slog.String("model", rec.Model.String()),
			slog.Int("samples", len(rec.Samples)),
		)

		if configPath == "" {
			return rec.Engine(extrapolation.WithLogger(logger))
		}
		samples = rec.Samples
	} else {
		var err error
		if samples, err = config.LoadSamples(samplesPath); err != nil {
			return nil, err
		}
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}

	return engineFromSamples(cfg, samples, logger)
}

// loadConfig returns config.Default when path is empty.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}

	return config.Load(path)
}

func engineFromSamples(cfg *config.Config, samples []sample.Sample, logger *slog.Logger) (*extrapolation.Engine, error) {
	engine, err := cfg.NewEngine(extrapolation.WithLogger(logger), extrapolation.WithStoreCapacity(len(samples)))
	if err != nil {
		return nil, err
	}
	for i, s := range samples {
		if err := engine.Push(s.ScaleFactor, s.Value); err != nil {
			return nil, fmt.Errorf("sample %d: %w", i, err)
		}
	}

	return engine, nil
}

func writeResultJSON(w io.Writer, res *extrapolation.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(resultJSON{
		Model:            res.Model.String(),
		ZeroNoiseValue:   res.ZeroNoiseValue,
		ZeroNoiseError:   res.ZeroNoiseError,
		DegreesOfFreedom: res.DegreesOfFreedom,
		Coefficients:     res.Coefficients,
		RSquared:         res.RSquared,
		RMSE:             res.RMSE,
		Formula:          res.Formula,
		ScaleFactors:     res.ScaleFactors,
		Values:           res.Values,
		Counts:           res.Counts,
	})
}

func writeResultText(w io.Writer, res *extrapolation.Result) error {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Model:       %s\n", res.Model)
	fmt.Fprintf(&sb, "Zero-noise:  %.6f ± %.6f\n", res.ZeroNoiseValue, res.ZeroNoiseError)
	fmt.Fprintf(&sb, "Fit:         %s\n", res.Formula)
	fmt.Fprintf(&sb, "R²:          %.6f (RMSE %.3g, dof %d)\n", res.RSquared, res.RMSE, res.DegreesOfFreedom)
	sb.WriteString("Scale factor   Mean value   Samples\n")
	for i, sf := range res.ScaleFactors {
		fmt.Fprintf(&sb, "%12g   %10.6f   %7d\n", sf, res.Values[i], res.Counts[i])
	}

	_, err := io.WriteString(w, sb.String())

	return err
}
