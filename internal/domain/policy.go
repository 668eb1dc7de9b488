package domain

import (
	"fmt"
	"sort"
)

// Policy holds the static role -> grant-set table. It is built once at
// startup and never mutated afterwards, so concurrent readers need no
// locking. Changing the table requires a process restart.
//
// Every evaluator method is total: unrecognized roles, resources, levels
// or scopes resolve to false instead of failing. A permission check must
// never take down a request path, and ambiguity resolves to denial.
type Policy struct {
	grants map[Role]map[Grant]struct{}
}

// CheckFacts carries the per-request ownership and department facts used
// to resolve scoped grants. Empty fields mean the fact is unavailable,
// which fails the scopes that need it.
type CheckFacts struct {
	CallerID           string
	OwnerID            string
	CallerDepartment   string
	ResourceDepartment string
}

// DefaultPolicy builds the built-in role permission table:
//
//   - admin: every resource at level all, scope all. Unconditional bypass.
//   - supervisor: view/create/edit/export at scope all on everything except
//     users, settings and backup; approve/delete at scope limited on
//     donations and activities.
//   - employee: view at scope all plus create/edit/export at scope own on
//     the record-keeping resources.
//   - viewer: view at scope all and export at scope limited on everything
//     except users and settings.
//
// Unknown roles hold no grants at all.
func DefaultPolicy() *Policy {
	p := &Policy{grants: make(map[Role]map[Grant]struct{})}

	for _, resource := range Resources {
		p.add(RoleAdmin, Grant{Resource: resource, Level: LevelAll, Scope: ScopeAll})
	}

	supervisorExcluded := map[Resource]bool{
		ResourceUsers:    true,
		ResourceSettings: true,
		ResourceBackup:   true,
	}
	for _, resource := range Resources {
		if !supervisorExcluded[resource] {
			for _, level := range []Level{LevelView, LevelCreate, LevelEdit, LevelExport} {
				p.add(RoleSupervisor, Grant{Resource: resource, Level: level, Scope: ScopeAll})
			}
		}
		if resource == ResourceDonations || resource == ResourceActivities {
			p.add(RoleSupervisor, Grant{Resource: resource, Level: LevelApprove, Scope: ScopeLimited})
			p.add(RoleSupervisor, Grant{Resource: resource, Level: LevelDelete, Scope: ScopeLimited})
		}
	}

	employeeResources := []Resource{
		ResourceActivities,
		ResourceBeneficiaries,
		ResourceFamilies,
		ResourceDonations,
		ResourceDonors,
	}
	for _, resource := range employeeResources {
		p.add(RoleEmployee, Grant{Resource: resource, Level: LevelView, Scope: ScopeAll})
		p.add(RoleEmployee, Grant{Resource: resource, Level: LevelCreate, Scope: ScopeOwn})
		p.add(RoleEmployee, Grant{Resource: resource, Level: LevelEdit, Scope: ScopeOwn})
		p.add(RoleEmployee, Grant{Resource: resource, Level: LevelExport, Scope: ScopeOwn})
	}

	viewerExcluded := map[Resource]bool{
		ResourceUsers:    true,
		ResourceSettings: true,
	}
	for _, resource := range Resources {
		if viewerExcluded[resource] {
			continue
		}
		p.add(RoleViewer, Grant{Resource: resource, Level: LevelView, Scope: ScopeAll})
		p.add(RoleViewer, Grant{Resource: resource, Level: LevelExport, Scope: ScopeLimited})
	}

	return p
}

func (p *Policy) add(role Role, grant Grant) {
	set, ok := p.grants[role]
	if !ok {
		set = make(map[Grant]struct{})
		p.grants[role] = set
	}
	set[grant] = struct{}{}
}

// Check decides whether the role may perform level on resource given the
// supplied facts.
//
// The admin role short-circuits to true for every resource and level. For
// other roles a grant matches when its resource equals the requested one
// and its level equals the requested level or is the wildcard LevelAll.
// Matching grants are then refined by scope: all and limited pass
// unconditionally, own passes when the ownership fact equals the caller,
// department passes when both department facts agree.
func (p *Policy) Check(role Role, resource Resource, level Level, facts CheckFacts) bool {
	if role == RoleAdmin {
		return true
	}

	for grant := range p.grants[role] {
		if grant.Resource != resource {
			continue
		}
		if grant.Level != level && grant.Level != LevelAll {
			continue
		}

		switch grant.Scope {
		case ScopeAll, ScopeLimited:
			return true
		case ScopeOwn:
			if facts.OwnerID != "" && facts.OwnerID == facts.CallerID {
				return true
			}
		case ScopeDepartment:
			if facts.ResourceDepartment != "" && facts.ResourceDepartment == facts.CallerDepartment {
				return true
			}
		}
	}

	return false
}

// CheckDescriptor resolves a colon-delimited "level:resource[:scope]"
// permission descriptor. The scope defaults to all when omitted. Invalid
// tokens fail closed.
//
// Without request facts, a grant satisfies the requested scope when its
// own scope equals it, is the wildcard all, or is the non-restrictive
// limited.
func (p *Policy) CheckDescriptor(role Role, descriptor string) bool {
	requested, err := ParseGrant(descriptor)
	if err != nil {
		return false
	}
	if role == RoleAdmin {
		return true
	}

	for grant := range p.grants[role] {
		if grant.Resource != requested.Resource {
			continue
		}
		if grant.Level != requested.Level && grant.Level != LevelAll {
			continue
		}
		if grant.Scope == requested.Scope || grant.Scope == ScopeAll || grant.Scope == ScopeLimited {
			return true
		}
	}

	return false
}

// ResourceAccess decides access from raw request context: a free-form
// action word, the caller's identity and department, and the record under
// access as a field bag. Ownership and department facts are derived from
// the record's created_by and department fields and fed into Check.
func (p *Policy) ResourceAccess(role Role, resource, action string, callerID, callerDepartment string, record map[string]any) bool {
	res, err := ParseResource(resource)
	if err != nil {
		return false
	}
	level, err := ParseLevel(action)
	if err != nil || level == LevelAll || level == LevelNone {
		return false
	}

	facts := CheckFacts{
		CallerID:         callerID,
		CallerDepartment: callerDepartment,
	}
	if v, ok := record["created_by"]; ok && v != nil {
		facts.OwnerID = fmt.Sprint(v)
	}
	if v, ok := record["department"]; ok && v != nil {
		facts.ResourceDepartment = fmt.Sprint(v)
	}

	return p.Check(role, res, level, facts)
}

// Grants returns the role's grant set, sorted for stable output.
func (p *Policy) Grants(role Role) []Grant {
	set := p.grants[role]
	grants := make([]Grant, 0, len(set))
	for grant := range set {
		grants = append(grants, grant)
	}
	sort.Slice(grants, func(i, j int) bool {
		return grants[i].String() < grants[j].String()
	})
	return grants
}

// AllowedResources returns the resources on which the role holds the
// given level, directly or through a LevelAll grant.
func (p *Policy) AllowedResources(role Role, level Level) []Resource {
	seen := make(map[Resource]bool)
	for grant := range p.grants[role] {
		if grant.Level == level || grant.Level == LevelAll {
			seen[grant.Resource] = true
		}
	}

	resources := make([]Resource, 0, len(seen))
	for _, resource := range Resources {
		if seen[resource] {
			resources = append(resources, resource)
		}
	}
	return resources
}

// GrantDetail is one grant entry inside a role summary.
type GrantDetail struct {
	Level Level `json:"level"`
	Scope Scope `json:"scope"`
}

// RoleSummary describes a role's full permission surface for the UI.
type RoleSummary struct {
	Role           Role                       `json:"role"`
	RoleName       string                     `json:"role_name"`
	TotalGrants    int                        `json:"total_grants"`
	Resources      map[Resource][]GrantDetail `json:"resources"`
	AllowedActions map[Level][]Resource       `json:"allowed_actions"`
}

// Summary builds the role's permission summary.
func (p *Policy) Summary(role Role) RoleSummary {
	summary := RoleSummary{
		Role:           role,
		RoleName:       role.DisplayName(),
		Resources:      make(map[Resource][]GrantDetail),
		AllowedActions: make(map[Level][]Resource),
	}

	for _, grant := range p.Grants(role) {
		summary.TotalGrants++
		summary.Resources[grant.Resource] = append(summary.Resources[grant.Resource], GrantDetail{
			Level: grant.Level,
			Scope: grant.Scope,
		})
		summary.AllowedActions[grant.Level] = append(summary.AllowedActions[grant.Level], grant.Resource)
	}

	return summary
}

// moduleResources maps UI module names to the resource that gates them.
var moduleResources = map[string]Resource{
	"dashboard":     ResourceActivities,
	"activities":    ResourceActivities,
	"beneficiaries": ResourceBeneficiaries,
	"donations":     ResourceDonations,
	"employees":     ResourceEmployees,
	"reports":       ResourceReports,
	"notifications": ResourceNotifications,
	"settings":      ResourceSettings,
}

// CanAccessModule reports whether the role may open the named UI module.
// Unknown modules are denied.
func (p *Policy) CanAccessModule(role Role, module string) bool {
	resource, ok := moduleResources[module]
	if !ok {
		return false
	}
	return p.Check(role, resource, LevelView, CheckFacts{})
}
