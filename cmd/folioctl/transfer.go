package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/folio-cms/folio/settings"
	"github.com/folio-cms/folio/storage/model"
)

// settingsFile is the document written by export and read by import
type settingsFile struct {
	Settings []model.Setting `yaml:"settings"`
}

func newExportCmd() *cobra.Command {
	var outFile string
	exportCmd := &cobra.Command{
		Use:   "export",
		Short: "Export all settings as yaml",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if outFile != "" {
				f, err := os.Create(outFile)
				if err != nil {
					return errors.WithStack(err)
				}
				defer f.Close()
				out = f
			}
			return exportSettings(cmd.Context(), svc, out)
		},
	}
	exportCmd.Flags().StringVarP(&outFile, "file", "f", "", "Write the export to this file instead of stdout")
	return exportCmd
}

func exportSettings(ctx context.Context, svc *settings.Service, out io.Writer) error {
	records, err := svc.List(ctx, model.SettingsFilter{})
	if err != nil {
		return err
	}
	doc := settingsFile{Settings: make([]model.Setting, len(records))}
	for i, r := range records {
		doc.Settings[i] = r.Setting
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err = enc.Encode(doc); err != nil {
		return errors.WithStack(err)
	}
	return enc.Close()
}

func newImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import settings from a yaml export",
		Long: `Import settings from a yaml export.

Imported settings fully replace existing settings with the same key; other
settings are left untouched.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			f, err := os.Open(args[0])
			if err != nil {
				return errors.WithStack(err)
			}
			defer f.Close()
			n, err := importSettings(cmd.Context(), svc, f)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d settings\n", n)
			return err
		},
	}
}

func importSettings(ctx context.Context, svc *settings.Service, in io.Reader) (int, error) {
	var doc settingsFile
	if err := yaml.NewDecoder(in).Decode(&doc); err != nil {
		return 0, errors.Wrap(err, "could not parse settings file")
	}
	seen := make(map[string]bool, len(doc.Settings))
	for i := range doc.Settings {
		s := &doc.Settings[i]
		if s.Key == "" {
			return 0, errors.Errorf("setting #%d has no key", i+1)
		}
		if seen[s.Key] {
			return 0, errors.Errorf("setting '%s' is listed more than once", s.Key)
		}
		seen[s.Key] = true
		if s.Type == "" {
			s.Type = model.SettingTypeString
		}
		if !s.Type.Valid() {
			return 0, errors.Errorf("setting '%s' has invalid type '%s'", s.Key, s.Type)
		}
	}
	if err := svc.Seed(ctx, doc.Settings); err != nil {
		return 0, err
	}
	return len(doc.Settings), nil
}
