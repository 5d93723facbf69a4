package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/kaldeqca/sex-sim-ai/internal/card"
	"github.com/kaldeqca/sex-sim-ai/internal/observability"
	"github.com/spf13/cobra"
)

func newCardCmd(_ *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "card",
		Short: "Embed or extract a character profile in a PNG card",
	}
	cmd.AddCommand(newCardEmbedCmd(), newCardExtractCmd())
	return cmd
}

func newCardEmbedCmd() *cobra.Command {
	var imagePath, profilePath, output string
	cmd := &cobra.Command{
		Use:   "embed",
		Short: "Write a card from an image and a JSON profile",
		Long: `Converts the image to PNG when needed (JPEG, GIF, BMP, TIFF and WebP are accepted)
and appends the profile JSON after the card marker.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			image, err := os.ReadFile(imagePath)
			if err != nil {
				return fmt.Errorf("failed to read image: %w", err)
			}
			profileData, err := os.ReadFile(profilePath)
			if err != nil {
				return fmt.Errorf("failed to read profile: %w", err)
			}
			var profile map[string]any
			if err := json.Unmarshal(profileData, &profile); err != nil {
				return fmt.Errorf("failed to parse profile JSON: %w", err)
			}
			if profile == nil {
				return fmt.Errorf("profile must be a JSON object")
			}

			file, err := card.Embed(image, profile)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, file, 0644); err != nil {
				return fmt.Errorf("failed to write card: %w", err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "Card written to %s (%d bytes)\n", output, len(file))
			return err
		},
	}

	cmd.Flags().StringVarP(&imagePath, "image", "i", "", "Path to the card image (required)")
	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "Path to the profile JSON file (required)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Path to the output PNG (required)")
	for _, name := range []string{"image", "profile", "out"} {
		if err := cmd.MarkFlagRequired(name); err != nil {
			panic(fmt.Sprintf("failed to mark %s flag as required: %v", name, err))
		}
	}
	return cmd
}

func newCardExtractCmd() *cobra.Command {
	var imageOut string
	var verbose bool
	cmd := &cobra.Command{
		Use:   "extract <card.png>",
		Short: "Print the profile stored in a card",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read card: %w", err)
			}
			c, err := card.Extract(data)
			if err != nil {
				return err
			}

			if imageOut != "" {
				if err := os.WriteFile(imageOut, c.Image, 0644); err != nil {
					return fmt.Errorf("failed to write image: %w", err)
				}
			}
			if verbose {
				observability.NewPrinter(cmd.ErrOrStderr()).PrintCard(c)
			}

			out, err := json.MarshalIndent(c.Profile, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal profile: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return err
		},
	}
	cmd.Flags().StringVar(&imageOut, "image-out", "", "Also write the bare PNG image to this path")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Print a summary to stderr")
	return cmd
}
