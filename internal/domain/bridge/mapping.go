package bridge

// EffectiveMappings resolves the mapping table for a tenant: custom rows win
// wholesale, the defaults are never merged in.
func EffectiveMappings(rows []Mapping) []Mapping {
	if len(rows) == 0 {
		return DefaultMappings()
	}
	out := make([]Mapping, len(rows))
	copy(out, rows)
	return out
}

// LabelsToPolicies translates external label values into internal policy
// types using mappings that apply inbound. The result is deduplicated and
// keeps first-appearance order.
func LabelsToPolicies(mappings []Mapping, labels []string) []string {
	policies := make([]string, 0, len(labels))
	seen := make(map[string]struct{}, len(labels))
	for _, label := range labels {
		for _, m := range mappings {
			if m.Direction != DirectionInbound && m.Direction != DirectionBoth {
				continue
			}
			if m.LabelValue != label {
				continue
			}
			if _, ok := seen[m.PolicyType]; ok {
				continue
			}
			seen[m.PolicyType] = struct{}{}
			policies = append(policies, m.PolicyType)
		}
	}
	return policies
}

// PolicyToLabels translates one internal policy type into the external label
// values to emit, using mappings that apply outbound.
func PolicyToLabels(mappings []Mapping, policyType string) []string {
	labels := make([]string, 0, 2)
	seen := make(map[string]struct{}, 2)
	for _, m := range mappings {
		if m.Direction != DirectionOutbound && m.Direction != DirectionBoth {
			continue
		}
		if m.PolicyType != policyType {
			continue
		}
		if _, ok := seen[m.LabelValue]; ok {
			continue
		}
		seen[m.LabelValue] = struct{}{}
		labels = append(labels, m.LabelValue)
	}
	return labels
}
