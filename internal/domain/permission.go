package domain

import (
	"fmt"
	"strings"
)

// Resource is a protected category of data or functionality.
type Resource string

const (
	ResourceActivities         Resource = "activities"
	ResourceActivityCategories Resource = "activity_categories"
	ResourceActivityTypes      Resource = "activity_types"
	ResourceBeneficiaries      Resource = "beneficiaries"
	ResourceFamilies           Resource = "families"
	ResourceDonations          Resource = "donations"
	ResourceDonors             Resource = "donors"
	ResourceEmployees          Resource = "employees"
	ResourceUsers              Resource = "users"
	ResourceReports            Resource = "reports"
	ResourceStatistics         Resource = "statistics"
	ResourceSettings           Resource = "settings"
	ResourceNotifications      Resource = "notifications"
	ResourceBackup             Resource = "backup"
	ResourceLogs               Resource = "logs"
)

// Resources lists every resource in the enumeration.
var Resources = []Resource{
	ResourceActivities,
	ResourceActivityCategories,
	ResourceActivityTypes,
	ResourceBeneficiaries,
	ResourceFamilies,
	ResourceDonations,
	ResourceDonors,
	ResourceEmployees,
	ResourceUsers,
	ResourceReports,
	ResourceStatistics,
	ResourceSettings,
	ResourceNotifications,
	ResourceBackup,
	ResourceLogs,
}

var validResources = func() map[Resource]bool {
	m := make(map[Resource]bool, len(Resources))
	for _, r := range Resources {
		m[r] = true
	}
	return m
}()

// IsValid checks if the resource is part of the enumeration
func (r Resource) IsValid() bool {
	return validResources[r]
}

// ParseResource converts a raw string into a Resource.
func ParseResource(s string) (Resource, error) {
	r := Resource(s)
	if !r.IsValid() {
		return "", ErrUnknownResource
	}
	return r, nil
}

// Level is the kind of operation requested on a resource.
type Level string

const (
	LevelNone    Level = "none"
	LevelView    Level = "view"
	LevelCreate  Level = "create"
	LevelEdit    Level = "edit"
	LevelDelete  Level = "delete"
	LevelApprove Level = "approve"
	LevelExport  Level = "export"

	// LevelAll implies every other level for the granted resource.
	LevelAll Level = "all"
)

// Levels lists every action level in the enumeration.
var Levels = []Level{
	LevelNone, LevelView, LevelCreate, LevelEdit,
	LevelDelete, LevelApprove, LevelExport, LevelAll,
}

var validLevels = func() map[Level]bool {
	m := make(map[Level]bool, len(Levels))
	for _, l := range Levels {
		m[l] = true
	}
	return m
}()

// IsValid checks if the level is part of the enumeration
func (l Level) IsValid() bool {
	return validLevels[l]
}

// ParseLevel converts a raw string into a Level.
func ParseLevel(s string) (Level, error) {
	l := Level(s)
	if !l.IsValid() {
		return "", ErrUnknownLevel
	}
	return l, nil
}

// Scope is the breadth of a grant.
type Scope string

const (
	// ScopeAll applies to every record of the resource.
	ScopeAll Scope = "all"

	// ScopeOwn applies only to records created by the caller.
	ScopeOwn Scope = "own"

	// ScopeDepartment applies to records within the caller's department.
	ScopeDepartment Scope = "department"

	// ScopeLimited marks a reduced allowance surfaced to the UI. It is
	// non-restrictive at check time; see Policy.Check.
	ScopeLimited Scope = "limited"
)

// Scopes lists every scope in the enumeration.
var Scopes = []Scope{ScopeAll, ScopeOwn, ScopeDepartment, ScopeLimited}

var validScopes = map[Scope]bool{
	ScopeAll:        true,
	ScopeOwn:        true,
	ScopeDepartment: true,
	ScopeLimited:    true,
}

// IsValid checks if the scope is part of the enumeration
func (s Scope) IsValid() bool {
	return validScopes[s]
}

// ParseScope converts a raw string into a Scope.
func ParseScope(v string) (Scope, error) {
	s := Scope(v)
	if !s.IsValid() {
		return "", ErrUnknownScope
	}
	return s, nil
}

// Grant is an immutable (resource, level, scope) triple held by a role.
// Equality and hashing are by value, so Grant is usable as a map key.
type Grant struct {
	Resource Resource
	Level    Level
	Scope    Scope
}

// String renders the grant in the colon-delimited descriptor form
// "level:resource:scope".
func (g Grant) String() string {
	return fmt.Sprintf("%s:%s:%s", g.Level, g.Resource, g.Scope)
}

// Tuple returns the grant as its serialized triple.
func (g Grant) Tuple() [3]string {
	return [3]string{string(g.Resource), string(g.Level), string(g.Scope)}
}

// GrantFromTuple reconstructs a grant from its serialized triple.
func GrantFromTuple(t [3]string) (Grant, error) {
	resource, err := ParseResource(t[0])
	if err != nil {
		return Grant{}, err
	}
	level, err := ParseLevel(t[1])
	if err != nil {
		return Grant{}, err
	}
	scope, err := ParseScope(t[2])
	if err != nil {
		return Grant{}, err
	}
	return Grant{Resource: resource, Level: level, Scope: scope}, nil
}

// ParseGrant parses a "level:resource[:scope]" descriptor. Scope defaults
// to "all" when omitted.
func ParseGrant(descriptor string) (Grant, error) {
	parts := strings.SplitN(descriptor, ":", 3)
	if len(parts) < 2 {
		return Grant{}, fmt.Errorf("%w: %q", ErrUnknownLevel, descriptor)
	}

	level, err := ParseLevel(parts[0])
	if err != nil {
		return Grant{}, err
	}
	resource, err := ParseResource(parts[1])
	if err != nil {
		return Grant{}, err
	}

	scope := ScopeAll
	if len(parts) == 3 {
		scope, err = ParseScope(parts[2])
		if err != nil {
			return Grant{}, err
		}
	}

	return Grant{Resource: resource, Level: level, Scope: scope}, nil
}
