package cmd

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"modbridge/internal/bootstrap/logging"
	"modbridge/internal/errs"
	bridgesvc "modbridge/internal/usecase/bridge"
)

// emitCmd sends one moderation event to a tenant's labeler, the same path
// the rule engine uses.
var emitCmd = &cobra.Command{
	Use:   "emit",
	Short: "Emit a moderation event to the tenant's external labeler",
	RunE: withApp(func(cmd *cobra.Command, deps appDeps) error {
		ctx := logging.WithAttrs(cmd.Context(), slog.String("command", cmd.CommandPath()))

		tenantID, _ := cmd.Flags().GetString("tenant")
		eventType, _ := cmd.Flags().GetString("type")
		labels, _ := cmd.Flags().GetStringSlice("label")
		negateLabels, _ := cmd.Flags().GetStringSlice("negate-label")
		subjectDID, _ := cmd.Flags().GetString("subject-did")
		subjectURI, _ := cmd.Flags().GetString("subject-uri")
		actionID, _ := cmd.Flags().GetString("action-id")
		correlationID, _ := cmd.Flags().GetString("correlation-id")
		policyType, _ := cmd.Flags().GetString("policy")
		policyRefs, _ := cmd.Flags().GetStringSlice("policy-ref")

		input := bridgesvc.EmitEventInput{
			TenantID:              tenantID,
			EventType:             eventType,
			Labels:                labels,
			NegateLabels:          negateLabels,
			SubjectDID:            subjectDID,
			SubjectURI:            subjectURI,
			PlatformActionID:      actionID,
			PlatformCorrelationID: correlationID,
			Policies:              parsePolicyRefs(policyRefs),
		}

		if cmd.Flags().Changed("comment") {
			comment, _ := cmd.Flags().GetString("comment")
			input.Comment = &comment
		}
		if cmd.Flags().Changed("duration-hours") {
			hours, _ := cmd.Flags().GetInt64("duration-hours")
			input.DurationInHours = &hours
		}

		// --policy resolves outbound labels through the tenant mapping table.
		if policyType != "" && len(input.Labels) == 0 {
			resolved, err := deps.Bridge.LabelsForPolicy(ctx, tenantID, policyType)
			if err != nil {
				return errs.Wrap(err, "resolve labels for policy")
			}
			input.Labels = resolved
		}

		if err := deps.Bridge.EmitEvent(ctx, input); err != nil {
			logging.Error(ctx, "emit event failed", slog.Any("err", errs.Loggable(err)))
			return errs.Wrap(err, "emit event")
		}

		if _, err := fmt.Fprintf(cmd.OutOrStdout(), "emitted %s event for tenant %s\n", eventType, tenantID); err != nil {
			return errs.Wrap(err, "write emit output")
		}
		return nil
	}),
}

// parsePolicyRefs parses id:name pairs; a bare value is both id and name.
func parsePolicyRefs(refs []string) []bridgesvc.PolicyRef {
	out := make([]bridgesvc.PolicyRef, 0, len(refs))
	for _, ref := range refs {
		id, name, found := strings.Cut(ref, ":")
		if !found {
			name = id
		}
		out = append(out, bridgesvc.PolicyRef{ID: id, Name: name})
	}
	return out
}

func init() {
	rootCmd.AddCommand(emitCmd)

	emitCmd.Flags().String("tenant", "", "Tenant id")
	emitCmd.Flags().String("type", "label", "Event type: label|takedown|reverseTakedown|comment|acknowledge|escalate")
	emitCmd.Flags().StringSlice("label", nil, "Label values to create (label events)")
	emitCmd.Flags().StringSlice("negate-label", nil, "Label values to negate (label events)")
	emitCmd.Flags().String("comment", "", "Event comment (defaults to a policy summary; empty for comment events)")
	emitCmd.Flags().String("subject-did", "", "Subject repo DID")
	emitCmd.Flags().String("subject-uri", "", "Subject record at:// URI (optional)")
	emitCmd.Flags().String("action-id", "", "Platform action id for the audit trail")
	emitCmd.Flags().String("correlation-id", "", "Platform correlation id for the audit trail")
	emitCmd.Flags().String("policy", "", "Resolve labels from this policy type via the mapping table")
	emitCmd.Flags().StringSlice("policy-ref", nil, "Policy id:name pairs backing this action")
	emitCmd.Flags().Int64("duration-hours", 0, "Takedown duration in hours")

	_ = emitCmd.MarkFlagRequired("tenant")
	_ = emitCmd.MarkFlagRequired("subject-did")
}
