package identities

import (
	states "github.com/goliatone/go-states"
)

// Option configures a Collector.
type Option func(*Collector)

// WithConfigurationNamespace overrides where the organisation id is read from.
func WithConfigurationNamespace(ns states.Namespace) Option {
	return func(c *Collector) {
		if ns != "" {
			c.configuration = ns
		}
	}
}

// WithIdentityNamespace overrides where user identifiers are read from.
func WithIdentityNamespace(ns states.Namespace) Option {
	return func(c *Collector) {
		if ns != "" {
			c.identity = ns
		}
	}
}

// WithLogger attaches a logger to the underlying aggregators.
func WithLogger(logger states.Logger) Option {
	return func(c *Collector) {
		c.logger = logger
	}
}

// WithMetrics attaches a metrics recorder to the collector's gate and
// pipeline.
func WithMetrics(recorder states.MetricsRecorder) Option {
	return func(c *Collector) {
		c.metrics = recorder
	}
}

// Kind labels identities aggregations in logs, metrics and activity.
const Kind = "identities"

// Collector gathers the user and company identifiers published by the
// configuration and identity producers.
type Collector struct {
	configuration states.Namespace
	identity      states.Namespace
	logger        states.Logger
	metrics       states.MetricsRecorder

	users     *states.Aggregator[UserID]
	companies *states.Aggregator[CompanyContext]
}

// NewCollector builds a collector reading from the default namespaces unless
// overridden.
func NewCollector(opts ...Option) *Collector {
	c := &Collector{
		configuration: DefaultConfigurationNamespace,
		identity:      DefaultIdentityNamespace,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}

	aggOpts := []states.AggregatorOption{
		states.WithAggregatorKind(Kind),
		states.WithAggregatorLogger(c.logger),
	}
	c.users = states.NewAggregator(userIDRules(c.identity), aggOpts...)
	c.companies = states.NewAggregator(companyContextRules(c.configuration), aggOpts...)
	return c
}

// userIDRules lists the user id sources in wire order: the ECID, then every
// custom id in list order, then the push id. The advertising id is not read
// here; producers that want it reported add it to the custom id list.
func userIDRules(ns states.Namespace) []states.Rule[UserID] {
	return []states.Rule[UserID]{
		{Namespace: ns, Path: []string{KeyECID}, Project: reservedID(NamespaceECID, IDTypeNamespaceID)},
		{Namespace: ns, Path: []string{KeyVisitorIDsList}, Each: true, Project: customID},
		{Namespace: ns, Path: []string{KeyPushID}, Project: reservedID(NamespacePushID, IDTypeIntegrationCode)},
	}
}

func companyContextRules(ns states.Namespace) []states.Rule[CompanyContext] {
	return []states.Rule[CompanyContext]{
		{Namespace: ns, Path: []string{KeyExperienceCloudOrg}, Project: orgID},
	}
}

func reservedID(namespace string, idType IDType) states.Projection[UserID] {
	return func(src states.Source) (UserID, bool) {
		value, ok := src.Value.AsString()
		if !ok || value == "" {
			return UserID{}, false
		}
		return UserID{Namespace: namespace, Value: value, Type: idType}, true
	}
}

// customID maps a visitor id entry. The authentication state and origin are
// not part of the wire format.
func customID(src states.Source) (UserID, bool) {
	entry, ok := src.Value.AsMap()
	if !ok {
		return UserID{}, false
	}
	idType, _ := entry[KeyCustomIDType].AsString()
	id, _ := entry[KeyCustomID].AsString()
	if idType == "" || id == "" {
		return UserID{}, false
	}
	return UserID{Namespace: idType, Value: id, Type: IDTypeIntegrationCode}, true
}

func orgID(src states.Source) (CompanyContext, bool) {
	value, ok := src.Value.AsString()
	if !ok || value == "" {
		return CompanyContext{}, false
	}
	return CompanyContext{Namespace: NamespaceCompanyOrgID, MarketingCloudID: value}, true
}

// Namespaces returns the namespaces the collector depends on.
func (c *Collector) Namespaces() []states.Namespace {
	return []states.Namespace{c.configuration, c.identity}
}

// AreSharedStatesReady reports whether neither namespace is pending for
// anchor.
func (c *Collector) AreSharedStatesReady(anchor states.Anchor, fetch states.Fetcher) bool {
	return states.IsReady(anchor, c.Namespaces(), fetch)
}

// CollectIdentifiers aggregates whatever the namespaces hold for anchor. It
// does not consult the gate: pending namespaces contribute nothing.
func (c *Collector) CollectIdentifiers(anchor states.Anchor, fetch states.Fetcher) Identities {
	var out Identities
	if ids := c.users.Collect(anchor, fetch); len(ids) > 0 {
		out.Users = []User{{UserIDs: ids}}
	}
	if contexts := c.companies.Collect(anchor, fetch); len(contexts) > 0 {
		out.CompanyContexts = contexts
	}
	return out
}

// Gate returns a gate over the collector namespaces.
func (c *Collector) Gate(opts ...states.GateOption) *states.Gate {
	opts = append([]states.GateOption{
		states.WithGateKind(Kind),
		states.WithGateLogger(c.logger),
		states.WithGateMetrics(c.metrics),
	}, opts...)
	return states.NewGate(c.Namespaces(), opts...)
}

// Pipeline couples a gate with CollectIdentifiers. Each Run is recorded as
// one aggregation covering both namespaces.
func (c *Collector) Pipeline(gate *states.Gate, opts ...states.PipelineOption) *states.Pipeline[Identities] {
	if gate == nil {
		gate = c.Gate()
	}
	opts = append([]states.PipelineOption{
		states.WithPipelineLogger(c.logger),
		states.WithPipelineMetrics(c.metrics),
	}, opts...)
	return states.NewPipeline[Identities](Kind, gate, c.CollectIdentifiers, opts...)
}

var defaultCollector = NewCollector()

// CollectIdentifiers aggregates with the default namespaces.
func CollectIdentifiers(anchor states.Anchor, fetch states.Fetcher) Identities {
	return defaultCollector.CollectIdentifiers(anchor, fetch)
}

// AreSharedStatesReady checks readiness of the default namespaces.
func AreSharedStatesReady(anchor states.Anchor, fetch states.Fetcher) bool {
	return defaultCollector.AreSharedStatesReady(anchor, fetch)
}
