package identity

import (
	"strings"

	"github.com/huangsam/spdxattr/internal/contract"
)

// Organization owns every contributor whose email domain it lists.
type Organization struct {
	Name    string
	Contact string // empty synthesizes contact@<name>.com
	Domains []string
}

// builtinOrganizations is the default domain table.
var builtinOrganizations = []Organization{
	{Name: "Phala Network", Contact: "dstack@phala.network", Domains: []string{"phala.network"}},
	{Name: "Near Foundation", Contact: "contact@near.ai", Domains: []string{"near.ai"}},
	{Name: "Nethermind", Contact: "contact@nethermind.io", Domains: []string{"nethermind.io"}},
	{Name: "Rize Labs", Contact: "contact@rizelabs.io", Domains: []string{"rizelabs.io"}},
	{Name: "Test in Prod", Contact: "contact@testinprod.io", Domains: []string{"testinprod.io"}},
}

// OrgTable maps email domains to organizations and organizations to contacts.
// It is immutable once built.
type OrgTable struct {
	byDomain map[string]string
	contacts map[string]string
}

// NewOrgTable builds a table from organizations. Domains are matched case-insensitively.
func NewOrgTable(orgs []Organization) *OrgTable {
	t := &OrgTable{
		byDomain: make(map[string]string),
		contacts: make(map[string]string),
	}
	for _, org := range orgs {
		for _, d := range org.Domains {
			t.byDomain[strings.ToLower(strings.TrimSpace(d))] = org.Name
		}
		if org.Contact != "" {
			t.contacts[org.Name] = org.Contact
		}
	}
	return t
}

// DefaultOrgTable returns the built-in organization table.
func DefaultOrgTable() *OrgTable {
	return NewOrgTable(builtinOrganizations)
}

// OrgTableFromConfig uses the configured organizations, or the built-in table when none are set.
func OrgTableFromConfig(cfg *contract.Config) *OrgTable {
	if len(cfg.Organizations) == 0 {
		return DefaultOrgTable()
	}
	orgs := make([]Organization, 0, len(cfg.Organizations))
	for _, o := range cfg.Organizations {
		orgs = append(orgs, Organization{Name: o.Name, Contact: o.Contact, Domains: o.Domains})
	}
	return NewOrgTable(orgs)
}

// Domain returns the lowercased text after the last '@'.
func Domain(email string) string {
	i := strings.LastIndex(email, "@")
	return strings.ToLower(email[i+1:])
}

// Classify returns the organization owning the email's domain.
// ok is false for individual contributors.
func (t *OrgTable) Classify(email string) (org string, ok bool) {
	org, ok = t.byDomain[Domain(email)]
	return org, ok
}

// ContactEmail returns the organization's contact, falling back to
// contact@{lowercased name without spaces}.com.
func (t *OrgTable) ContactEmail(org string) string {
	if contact, ok := t.contacts[org]; ok {
		return contact
	}
	return "contact@" + strings.ReplaceAll(strings.ToLower(org), " ", "") + ".com"
}
