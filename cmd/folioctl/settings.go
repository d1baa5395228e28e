package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/folio-cms/folio/settings"
	"github.com/folio-cms/folio/storage/model"
)

func newListCmd() *cobra.Command {
	var (
		group      string
		publicOnly bool
	)
	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			filter := model.SettingsFilter{PublicOnly: publicOnly}
			if group != "" {
				filter.Group = &group
			}
			records, err := svc.List(cmd.Context(), filter)
			if err != nil {
				return err
			}
			return printRecords(cmd.OutOrStdout(), records)
		},
	}
	listCmd.Flags().StringVarP(&group, "group", "g", "", "Only list settings of this group")
	listCmd.Flags().BoolVar(&publicOnly, "public", false, "Only list public settings")
	return listCmd
}

func printRecords(out io.Writer, records []settings.Record) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "KEY\tTYPE\tGROUP\tPUBLIC\tLOCKED\tVALUE\tUPDATED")
	for _, r := range records {
		_, _ = fmt.Fprintf(
			w, "%s\t%s\t%s\t%t\t%t\t%s\t%s\n",
			r.Key, r.Type, r.Group, r.IsPublic, r.IsLocked, truncate(formatValue(r.Decoded), 48),
			humanize.Time(r.UpdatedAt),
		)
	}
	return w.Flush()
}

// formatValue renders a decoded value for the terminal: strings as they are,
// everything else as json
func formatValue(v any) string {
	switch tv := v.(type) {
	case nil:
		return "null"
	case string:
		return tv
	}
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Sprint(v)
	}
	return string(data)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

func newGetCmd() *cobra.Command {
	var showRecord bool
	getCmd := &cobra.Command{
		Use:   "get <key>",
		Short: "Print the value of a setting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			record, err := svc.Lookup(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if showRecord {
				return writeJSON(cmd.OutOrStdout(), record)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), formatValue(record.Decoded))
			return err
		},
	}
	getCmd.Flags().BoolVar(&showRecord, "record", false, "Print the full setting record as json")
	return getCmd
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func newSetCmd() *cobra.Command {
	var (
		typ    string
		isJSON bool
	)
	setCmd := &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set the value of a setting, creating it if needed",
		Long: `Set the value of a setting, creating it if needed.

The value is taken as a string unless --json is given. The type of a new
setting is detected from the value; --type sets it explicitly.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			value, err := parseValue(args[1], isJSON)
			if err != nil {
				return err
			}
			var settingType *model.SettingType
			if typ != "" {
				t, err := model.ParseSettingType(typ)
				if err != nil {
					return err
				}
				settingType = &t
			}
			setting, err := svc.Set(cmd.Context(), args[0], value, settingType)
			if err != nil {
				return describeError(err)
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "set %s (%s)\n", setting.Key, setting.Type)
			return err
		},
	}
	setCmd.Flags().StringVarP(&typ, "type", "t", "", "The type of the setting")
	setCmd.Flags().BoolVar(&isJSON, "json", false, "Parse the value as json")
	return setCmd
}

// parseValue returns the value to store for a command line argument
func parseValue(arg string, isJSON bool) (any, error) {
	if !isJSON {
		return arg, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(arg)))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, errors.Wrap(err, "value is not valid json")
	}
	return settings.NormalizeValue(v), nil
}

// describeError spells out the failed rules of a validation error
func describeError(err error) error {
	var validationError *model.ValidationError
	if !errors.As(err, &validationError) {
		return err
	}
	var buf bytes.Buffer
	buf.WriteString(validationError.Error())
	for _, f := range validationError.Failures {
		_, _ = fmt.Fprintf(&buf, "\n  %s: %s", f.Rule, f.Message)
	}
	return errors.New(buf.String())
}

func newForgetCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "forget <key>",
		Aliases: []string{"delete", "rm"},
		Short:   "Delete a setting",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			removed, err := svc.Forget(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !removed {
				return model.NotFoundErrorFmt("setting '%s' not found", args[0])
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return err
		},
	}
}

func newSeedCmd() *cobra.Command {
	var reset bool
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the default settings into an empty store",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			if reset {
				if err = svc.Seed(cmd.Context(), settings.DefaultSettings()); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "default settings restored")
				return err
			}
			seeded, err := svc.SeedIfEmpty(cmd.Context(), settings.DefaultSettings())
			if err != nil {
				return err
			}
			msg := "settings already present, nothing seeded"
			if seeded {
				msg = "default settings seeded"
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), msg)
			return err
		},
	}
	seedCmd.Flags().BoolVar(
		&reset, "reset", false, "Overwrite the default settings even if settings are present",
	)
	return seedCmd
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the settings cache",
	}
	cacheCmd.AddCommand(
		&cobra.Command{
			Use:   "clear",
			Short: "Evict the cached settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				svc, err := service(cmd)
				if err != nil {
					return err
				}
				if err = svc.ClearCache(cmd.Context()); err != nil {
					return err
				}
				_, err = fmt.Fprintln(cmd.OutOrStdout(), "settings cache cleared")
				return err
			},
		},
	)
	return cacheCmd
}

func newFormCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "form",
		Short: "Print the settings form",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, err := service(cmd)
			if err != nil {
				return err
			}
			tabs, err := svc.Form(cmd.Context())
			if err != nil {
				return err
			}
			return printForm(cmd.OutOrStdout(), tabs)
		},
	}
}

func printForm(out io.Writer, tabs []settings.FormTab) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for i, tab := range tabs {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		_, _ = fmt.Fprintf(w, "[%s] %s\n", tab.Group, tab.Label)
		for _, f := range tab.Fields {
			required := ""
			if f.Required {
				required = "*"
			}
			_, _ = fmt.Fprintf(
				w, "  %s%s\t%s\t%s\t%s\n", f.Name, required, f.Kind, f.Label, truncate(formatValue(f.Value), 40),
			)
		}
	}
	return w.Flush()
}
