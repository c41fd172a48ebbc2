package identities

import states "github.com/goliatone/go-states"

// IDType tells consumers how to interpret a UserID namespace.
type IDType string

const (
	// IDTypeNamespaceID marks a reserved numeric namespace code.
	IDTypeNamespaceID IDType = "namespaceId"
	// IDTypeIntegrationCode marks an integration code namespace.
	IDTypeIntegrationCode IDType = "integrationCode"
)

// Reserved namespace codes.
const (
	NamespaceECID         = "4"
	NamespacePushID       = "20920"
	NamespaceCompanyOrgID = "imsOrgID"
)

// Default producer namespaces and the keys read from their snapshots.
const (
	DefaultConfigurationNamespace states.Namespace = "module.configuration"
	DefaultIdentityNamespace      states.Namespace = "module.identity"

	// KeyExperienceCloudOrg is a flat key: the dots are part of the name.
	KeyExperienceCloudOrg = "experienceCloud.org"
	KeyECID               = "mid"
	KeyVisitorIDsList     = "visitoridslist"
	KeyAdvertisingID      = "advertisingidentifier"
	KeyPushID             = "pushidentifier"

	KeyCustomIDType   = "id.type"
	KeyCustomID       = "id"
	KeyCustomIDOrigin = "id.origin"
	KeyCustomIDAuth   = "authentication.state"
)

// UserID is one identifier of the user.
type UserID struct {
	Namespace string `json:"namespace"`
	Value     string `json:"value"`
	Type      IDType `json:"type"`
}

// User groups the identifiers of one user.
type User struct {
	UserIDs []UserID `json:"userIDs"`
}

// CompanyContext identifies the organisation the identifiers belong to.
type CompanyContext struct {
	Namespace        string `json:"namespace"`
	MarketingCloudID string `json:"marketingCloudId"`
}

// Identities is the aggregated result. Field order and omitempty define the
// wire format: empty sections are left out entirely.
type Identities struct {
	Users           []User           `json:"users,omitempty"`
	CompanyContexts []CompanyContext `json:"companyContexts,omitempty"`
}

// IsEmpty reports whether nothing was collected.
func (i Identities) IsEmpty() bool {
	return len(i.Users) == 0 && len(i.CompanyContexts) == 0
}

// RecordCount returns the number of user ids plus company contexts.
func (i Identities) RecordCount() int {
	n := len(i.CompanyContexts)
	for _, user := range i.Users {
		n += len(user.UserIDs)
	}
	return n
}
