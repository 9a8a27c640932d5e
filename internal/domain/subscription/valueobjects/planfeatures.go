package valueobjects

// Feature names accepted by entitlement checks.
const (
	FeaturePayroll          = "payroll"
	FeatureAnalytics        = "analytics"
	FeatureIntegrations     = "integrations"
	FeaturePrioritySupport  = "priority_support"
	FeatureDedicatedManager = "dedicated_manager"
	FeatureCustomWorkflows  = "custom_workflows"
	FeatureSLA              = "sla"
	FeatureOnPremise        = "on_premise"
)

// PlanFeatures holds the boolean entitlements of a plan.
type PlanFeatures struct {
	Payroll          bool `json:"payroll" yaml:"payroll"`
	Analytics        bool `json:"analytics" yaml:"analytics"`
	Integrations     bool `json:"integrations" yaml:"integrations"`
	PrioritySupport  bool `json:"priority_support" yaml:"priority_support"`
	DedicatedManager bool `json:"dedicated_manager" yaml:"dedicated_manager"`
	CustomWorkflows  bool `json:"custom_workflows" yaml:"custom_workflows"`
	SLA              bool `json:"sla" yaml:"sla"`
	OnPremise        bool `json:"on_premise" yaml:"on_premise"`
}

// IsKnownFeature reports whether name is a recognised feature flag.
func IsKnownFeature(name string) bool {
	_, ok := (PlanFeatures{}).lookup(name)
	return ok
}

// HasFeature returns false for unknown names.
func (f PlanFeatures) HasFeature(name string) bool {
	enabled, _ := f.lookup(name)
	return enabled
}

func (f PlanFeatures) lookup(name string) (bool, bool) {
	switch name {
	case FeaturePayroll:
		return f.Payroll, true
	case FeatureAnalytics:
		return f.Analytics, true
	case FeatureIntegrations:
		return f.Integrations, true
	case FeaturePrioritySupport:
		return f.PrioritySupport, true
	case FeatureDedicatedManager:
		return f.DedicatedManager, true
	case FeatureCustomWorkflows:
		return f.CustomWorkflows, true
	case FeatureSLA:
		return f.SLA, true
	case FeatureOnPremise:
		return f.OnPremise, true
	default:
		return false, false
	}
}
