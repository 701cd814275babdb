package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/arloliu/zne/archive"
)

type inspectJSON struct {
	RunID          string    `json:"run_id"`
	Model          string    `json:"model"`
	DeclarationID  string    `json:"declaration_id"`
	Compression    string    `json:"compression"`
	ByteOrder      string    `json:"byte_order"`
	ScaleFactors   []float64 `json:"scale_factors"`
	Samples        int       `json:"samples"`
	PayloadSize    uint32    `json:"payload_size"`
	CompressedSize int       `json:"compressed_size"`
	Ratio          float64   `json:"ratio"`
	Checksum       string    `json:"checksum"`
}

func newInspectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "inspect <archive>",
		Short: "Show the header of a sample archive and verify its checksum",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("read archive: %w", err)
			}

			info, err := archive.Inspect(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}
			rec, err := archive.Decode(data)
			if err != nil {
				return fmt.Errorf("%s: %w", args[0], err)
			}

			byteOrder := "little-endian"
			if info.IsBigEndian() {
				byteOrder = "big-endian"
			}

			view := inspectJSON{
				RunID:          info.RunID.String(),
				Model:          info.Model().String(),
				DeclarationID:  fmt.Sprintf("%016x", rec.DeclarationID()),
				Compression:    info.Compression.String(),
				ByteOrder:      byteOrder,
				ScaleFactors:   rec.ScaleFactors,
				Samples:        int(info.SampleCount),
				PayloadSize:    info.PayloadSize,
				CompressedSize: info.CompressedSize,
				Ratio:          info.Ratio,
				Checksum:       fmt.Sprintf("%016x", info.Checksum),
			}

			if jsonOutput(cmd) {
				enc := json.NewEncoder(out(cmd))
				enc.SetIndent("", "  ")

				return enc.Encode(view)
			}

			_, err = fmt.Fprintf(out(cmd), `Run ID:        %s
Model:         %s
Declaration:   %s
Scale factors: %v
Samples:       %d
Compression:   %s (%s)
Payload:       %d bytes, %d compressed (ratio %.3f)
Checksum:      %s (verified)
`,
				view.RunID, view.Model, view.DeclarationID, view.ScaleFactors, view.Samples,
				view.Compression, view.ByteOrder, view.PayloadSize, view.CompressedSize, view.Ratio, view.Checksum)

			return err
		},
	}
}
