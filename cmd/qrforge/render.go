// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

package main

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"strings"
	"text/tabwriter"

	"qrforge/internal/config"
	"qrforge/internal/payload"
	"qrforge/internal/qr"
	"qrforge/internal/studio"
)

type renderOptions struct {
	configPath string
	kind       string
	fields     []string
	fill       string
	bg         string
	background string
	output     string
}

// runRender renders one code through the same pipeline as the web studio.
func runRender(ctx context.Context, opts renderOptions, stdout io.Writer) error {
	if ctx == nil {
		ctx = context.Background()
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	kind, err := payload.ParseKind(opts.kind)
	if err != nil {
		return err
	}

	values, err := parseFields(opts.fields)
	if err != nil {
		return err
	}

	style, err := qr.ParseStyle(opts.fill, opts.bg)
	if err != nil {
		return err
	}

	svc := studio.New(qr.NewEncoder(), studio.WithFormatter(payload.Formatter{EscapeURLText: cfg.EscapeURLText}))

	content, err := payload.FromForm(kind, values, svc.Now())
	if err != nil {
		return err
	}

	var bg []byte
	if opts.background != "" {
		bg, err = os.ReadFile(opts.background)
		if err != nil {
			return fmt.Errorf("read background: %w", err)
		}
	}

	artifact, err := svc.RenderContent(ctx, content, style, bg)
	if err != nil {
		return err
	}

	if opts.output == "-" {
		_, err := stdout.Write(artifact.PNG)
		return err
	}
	if err := os.WriteFile(opts.output, artifact.PNG, 0o644); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	fmt.Fprintf(stdout, "wrote %s (%dx%d, %s)\n", opts.output, artifact.Width, artifact.Height, artifact.HumanSize())
	return nil
}

// parseFields turns name=value pairs into form values. Values may contain
// '=' themselves; only the first one separates the name.
func parseFields(pairs []string) (url.Values, error) {
	values := url.Values{}
	for _, p := range pairs {
		name, value, ok := strings.Cut(p, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("field %q: expected name=value", p)
		}
		values.Add(name, value)
	}
	return values, nil
}

// printKinds writes every kind with its form fields.
func printKinds(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	for _, k := range payload.Kinds() {
		names := make([]string, 0, len(k.Fields()))
		for _, f := range k.Fields() {
			name := f.Name
			if len(f.Options) > 0 {
				name += "=" + strings.Join(f.Options, "|")
			}
			names = append(names, name)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\n", k, k.Label(), strings.Join(names, ", "))
	}
	return tw.Flush()
}
