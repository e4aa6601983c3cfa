package bridge

import (
	"context"
	"reflect"
	"strings"
	"testing"

	"modbridge/internal/ports"
)

func TestCustomMappingTakesPrecedenceOverDefaults(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if err := f.svc.UpsertMapping(ctx, ports.LabelMapping{
		TenantID:   "t2",
		PolicyType: "SPAM",
		LabelValue: "x-spam",
		Direction:  "BOTH",
	}); err != nil {
		t.Fatalf("UpsertMapping() error = %v", err)
	}

	labels, err := f.svc.LabelsForPolicy(ctx, "t2", "SPAM")
	if err != nil {
		t.Fatalf("LabelsForPolicy() error = %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"x-spam"}) {
		t.Fatalf("LabelsForPolicy() = %v, want [x-spam] with no defaults merged", labels)
	}

	// A tenant with zero rows still resolves through the defaults.
	defaultLabels, err := f.svc.LabelsForPolicy(ctx, "t3", "SPAM")
	if err != nil {
		t.Fatalf("LabelsForPolicy(defaults) error = %v", err)
	}
	if !reflect.DeepEqual(defaultLabels, []string{"spam"}) {
		t.Fatalf("default labels = %v", defaultLabels)
	}
}

func TestPoliciesForLabelsUsesDefaults(t *testing.T) {
	f := setupService(t)

	policies, err := f.svc.PoliciesForLabels(context.Background(), "t1", []string{"gore", "csam"})
	if err != nil {
		t.Fatalf("PoliciesForLabels() error = %v", err)
	}
	if !reflect.DeepEqual(policies, []string{"VIOLENCE", "SEXUAL_EXPLOITATION"}) {
		t.Fatalf("policies = %v", policies)
	}
}

func TestUpsertMappingValidatesDirection(t *testing.T) {
	f := setupService(t)

	err := f.svc.UpsertMapping(context.Background(), ports.LabelMapping{
		TenantID:   "t1",
		PolicyType: "SPAM",
		LabelValue: "spam",
		Direction:  "SIDEWAYS",
	})
	if err == nil || !strings.Contains(err.Error(), "direction") {
		t.Fatalf("err = %v, want direction validation failure", err)
	}
}

func TestImportMappingsBulkUpsert(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	rows := []ports.LabelMapping{
		{PolicyType: "SPAM", LabelValue: "x-spam", Direction: "BOTH"},
		{PolicyType: "HATE", LabelValue: "x-hate", Direction: "INBOUND"},
	}
	if err := f.svc.ImportMappings(ctx, "t4", rows); err != nil {
		t.Fatalf("ImportMappings() error = %v", err)
	}

	stored, err := f.svc.ListMappings(ctx, "t4")
	if err != nil {
		t.Fatalf("ListMappings() error = %v", err)
	}
	if len(stored) != 2 {
		t.Fatalf("stored mappings = %v", stored)
	}

	// A bad row aborts the whole import.
	bad := []ports.LabelMapping{{PolicyType: "SPAM", LabelValue: "", Direction: "BOTH"}}
	if err := f.svc.ImportMappings(ctx, "t5", bad); err == nil {
		t.Fatal("ImportMappings(bad) expected error")
	}
	if rows, _ := f.svc.ListMappings(ctx, "t5"); len(rows) != 0 {
		t.Fatalf("partial import leaked rows: %v", rows)
	}
}

func TestDeleteMappingRestoresDefaults(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	if err := f.svc.UpsertMapping(ctx, ports.LabelMapping{
		TenantID:   "t6",
		PolicyType: "SPAM",
		LabelValue: "x-spam",
		Direction:  "BOTH",
	}); err != nil {
		t.Fatalf("UpsertMapping() error = %v", err)
	}
	if err := f.svc.DeleteMapping(ctx, "t6", "SPAM", "x-spam"); err != nil {
		t.Fatalf("DeleteMapping() error = %v", err)
	}

	labels, err := f.svc.LabelsForPolicy(ctx, "t6", "SPAM")
	if err != nil {
		t.Fatalf("LabelsForPolicy() error = %v", err)
	}
	if !reflect.DeepEqual(labels, []string{"spam"}) {
		t.Fatalf("labels after delete = %v, want defaults back", labels)
	}
}

func TestIsConfigured(t *testing.T) {
	f := setupService(t)
	ctx := context.Background()

	configured, err := f.svc.IsConfigured(ctx, "t1")
	if err != nil || !configured {
		t.Fatalf("IsConfigured(t1) = %t, %v", configured, err)
	}
	configured, err = f.svc.IsConfigured(ctx, "ghost")
	if err != nil || configured {
		t.Fatalf("IsConfigured(ghost) = %t, %v", configured, err)
	}
}
