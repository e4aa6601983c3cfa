package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
	"modbridge/internal/ports"
)

var mappingsCmd = &cobra.Command{
	Use:   "mappings",
	Short: "Manage per-tenant policy/label mappings",
}

var mappingsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored mappings (empty means the tenant uses defaults)",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")
		effective, _ := cmd.Flags().GetBool("effective")

		if effective {
			resolved, err := deps.Bridge.ResolveMappings(ctx, tenantID)
			if err != nil {
				return errs.Wrap(err, "resolve mappings")
			}
			for _, m := range resolved {
				if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.PolicyType, m.LabelValue, m.Direction); err != nil {
					return errs.Wrap(err, "write mappings output")
				}
			}
			return nil
		}

		rows, err := deps.Bridge.ListMappings(ctx, tenantID)
		if err != nil {
			return errs.Wrap(err, "list mappings")
		}
		if len(rows) == 0 {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "no custom mappings, tenant uses defaults")
			return err
		}
		for _, m := range rows {
			if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\t%s\n", m.PolicyType, m.LabelValue, m.Direction); err != nil {
				return errs.Wrap(err, "write mappings output")
			}
		}
		return nil
	}),
}

var mappingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Create or update one mapping",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")
		policyType, _ := cmd.Flags().GetString("policy")
		labelValue, _ := cmd.Flags().GetString("label")
		direction, _ := cmd.Flags().GetString("direction")

		if err := deps.Bridge.UpsertMapping(ctx, ports.LabelMapping{
			TenantID:   tenantID,
			PolicyType: policyType,
			LabelValue: labelValue,
			Direction:  direction,
		}); err != nil {
			logging.Error(ctx, "upsert mapping failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "upsert mapping")
		}

		_, err := fmt.Fprintf(cmd.OutOrStdout(), "mapping set: %s %s %s\n", policyType, labelValue, direction)
		return err
	}),
}

var mappingsRmCmd = &cobra.Command{
	Use:   "rm",
	Short: "Delete one mapping",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")
		policyType, _ := cmd.Flags().GetString("policy")
		labelValue, _ := cmd.Flags().GetString("label")

		if err := deps.Bridge.DeleteMapping(ctx, tenantID, policyType, labelValue); err != nil {
			logging.Error(ctx, "delete mapping failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "delete mapping")
		}

		_, err := fmt.Fprintf(cmd.OutOrStdout(), "mapping removed: %s %s\n", policyType, labelValue)
		return err
	}),
}

// mappingSeedFile is the TOML shape accepted by `mappings import`.
type mappingSeedFile struct {
	Mappings []mappingSeedEntry `toml:"mappings"`
}

type mappingSeedEntry struct {
	PolicyType string `toml:"policy_type"`
	LabelValue string `toml:"label_value"`
	Direction  string `toml:"direction"`
}

var mappingsImportCmd = &cobra.Command{
	Use:   "import",
	Short: "Import mappings for a tenant from a TOML seed file",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")
		file, _ := cmd.Flags().GetString("file")

		raw, err := os.ReadFile(file)
		if err != nil {
			return errs.Wrap(err, "read seed file")
		}
		var seed mappingSeedFile
		if err := toml.Unmarshal(raw, &seed); err != nil {
			return errs.Wrap(err, "parse seed file")
		}

		rows := make([]ports.LabelMapping, 0, len(seed.Mappings))
		for _, entry := range seed.Mappings {
			rows = append(rows, ports.LabelMapping{
				TenantID:   tenantID,
				PolicyType: entry.PolicyType,
				LabelValue: entry.LabelValue,
				Direction:  entry.Direction,
			})
		}

		if err := deps.Bridge.ImportMappings(ctx, tenantID, rows); err != nil {
			logging.Error(ctx, "import mappings failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "import mappings")
		}

		_, err = fmt.Fprintf(cmd.OutOrStdout(), "imported %d mappings for tenant %s\n", len(rows), tenantID)
		return err
	}),
}

func init() {
	rootCmd.AddCommand(mappingsCmd)
	mappingsCmd.AddCommand(mappingsListCmd, mappingsSetCmd, mappingsRmCmd, mappingsImportCmd)

	for _, c := range []*cobra.Command{mappingsListCmd, mappingsSetCmd, mappingsRmCmd, mappingsImportCmd} {
		c.Flags().String("tenant", "", "Tenant id")
		_ = c.MarkFlagRequired("tenant")
	}

	mappingsListCmd.Flags().Bool("effective", false, "Show the effective table including defaults")

	mappingsSetCmd.Flags().String("policy", "", "Policy type")
	mappingsSetCmd.Flags().String("label", "", "Label value")
	mappingsSetCmd.Flags().String("direction", "BOTH", "INBOUND|OUTBOUND|BOTH")
	_ = mappingsSetCmd.MarkFlagRequired("policy")
	_ = mappingsSetCmd.MarkFlagRequired("label")

	mappingsRmCmd.Flags().String("policy", "", "Policy type")
	mappingsRmCmd.Flags().String("label", "", "Label value")
	_ = mappingsRmCmd.MarkFlagRequired("policy")
	_ = mappingsRmCmd.MarkFlagRequired("label")

	mappingsImportCmd.Flags().String("file", "", "TOML seed file path")
	_ = mappingsImportCmd.MarkFlagRequired("file")
}
