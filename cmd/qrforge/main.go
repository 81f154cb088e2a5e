// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package main is the entry point for QR Forge. The serve command runs the
// studio web server; render produces a single code from the command line.
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var version = "v0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		envFile    string
	)

	root := &cobra.Command{
		Use:          "qrforge",
		Short:        "Generate styled QR codes for links, contacts, WiFi and more",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// A missing .env is normal outside development.
			if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("load %s: %w", envFile, err)
			}
			return nil
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to config file")
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Path to a .env file loaded before the config")

	// --- serve command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "serve",
		Short: "Start the studio web server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(configPath)
		},
	})

	// --- render command ------------------------------------------------------
	var opts renderOptions
	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render one QR code to a PNG file",
		Example: `  qrforge render --kind url --field url=https://example.com
  qrforge render --kind wifi -f ssid=Home -f password=secret -f security=WPA -o wifi.png
  qrforge render --kind plain_text -f text=hello --fill '#1d4ed8' --background photo.jpg`,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.configPath = configPath
			return runRender(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}
	renderCmd.Flags().StringVarP(&opts.kind, "kind", "k", "plain_text", "QR code type (see 'qrforge kinds')")
	renderCmd.Flags().StringArrayVarP(&opts.fields, "field", "f", nil, "Field value as name=value (repeatable)")
	renderCmd.Flags().StringVar(&opts.fill, "fill", "#000000", "Module colour")
	renderCmd.Flags().StringVar(&opts.bg, "bg", "#ffffff", "Code background colour")
	renderCmd.Flags().StringVar(&opts.background, "background", "", "Background image to place the code on")
	renderCmd.Flags().StringVarP(&opts.output, "output", "o", "qr_code.png", "Output file, or - for stdout")
	root.AddCommand(renderCmd)

	// --- kinds command -------------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "kinds",
		Short: "List QR code types and their fields",
		RunE: func(cmd *cobra.Command, args []string) error {
			return printKinds(cmd.OutOrStdout())
		},
	})

	// --- version command -----------------------------------------------------
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "qrforge %s\n", version)
		},
	})

	return root
}
