// Package routing decides which role-specific view a scanned-area visitor
// should land on. The decision is a pure function of the authentication state
// and the scanned area; the only side effect is the navigation emission.
package routing

// Role is the closed set of staff roles recognized by the router.
type Role int

const (
	// RoleUnknown covers absent or unrecognized role values. Unknown roles
	// are never trusted with elevated views.
	RoleUnknown Role = iota
	// RoleCleaner identifies cleaning staff.
	RoleCleaner
	// RoleSupervisor identifies site supervisors.
	RoleSupervisor
	// RoleAdmin identifies administrators.
	RoleAdmin
)

// ParseRole maps a stored role value onto the closed Role set.
func ParseRole(value string) Role {
	switch value {
	case "cleaner":
		return RoleCleaner
	case "supervisor":
		return RoleSupervisor
	case "admin":
		return RoleAdmin
	default:
		return RoleUnknown
	}
}

// String returns the stored representation of the role.
func (r Role) String() string {
	switch r {
	case RoleCleaner:
		return "cleaner"
	case RoleSupervisor:
		return "supervisor"
	case RoleAdmin:
		return "admin"
	case RoleUnknown:
		fallthrough
	default:
		return "unknown"
	}
}

// View identifies a role-specific destination.
type View int

const (
	// ViewPublicScan is the unauthenticated landing view for a scanned area.
	ViewPublicScan View = iota
	// ViewCleanerArea is the task list a cleaner works from.
	ViewCleanerArea
	// ViewSupervisorArea is the assignment and verification view.
	ViewSupervisorArea
)

// String returns the wire representation of the view.
func (v View) String() string {
	switch v {
	case ViewCleanerArea:
		return "cleaner_area"
	case ViewSupervisorArea:
		return "supervisor_area"
	case ViewPublicScan:
		fallthrough
	default:
		return "public_scan"
	}
}

// Target is the navigation destination emitted once authentication state has
// settled.
type Target struct {
	View   View
	AreaID string
}

// Identity describes the authenticated visitor once the identity check has
// completed. HasProfile reports whether a staff profile record exists for the
// authenticated account; accounts without a profile are routed like anonymous
// visitors.
type Identity struct {
	StaffID    string
	Role       Role
	HasProfile bool
}

// State carries the router inputs. AuthResolved reports whether the identity
// check has completed; Identity stays nil for anonymous visitors and may
// arrive later than AuthResolved when the profile loads asynchronously.
type State struct {
	AuthResolved bool
	Identity     *Identity
	AreaID       string
}

// Resolve is the pure transition function: given settled authentication
// inputs it picks exactly one destination. The switch over Role is exhaustive
// so a new role is a compile-surfaced decision rather than a silent
// fallthrough to an elevated view.
func Resolve(identity *Identity, areaID string) Target {
	if identity == nil || !identity.HasProfile {
		return Target{View: ViewPublicScan, AreaID: areaID}
	}

	switch identity.Role {
	case RoleCleaner:
		return Target{View: ViewCleanerArea, AreaID: areaID}
	case RoleSupervisor, RoleAdmin:
		return Target{View: ViewSupervisorArea, AreaID: areaID}
	case RoleUnknown:
		fallthrough
	default:
		return Target{View: ViewPublicScan, AreaID: areaID}
	}
}

// Navigator receives navigation decisions emitted by the router.
type Navigator func(Target)

type phase int

const (
	phasePending phase = iota
	phaseResolvedAnonymous
	phaseResolvedIdentified
)

// Router tracks the resolution state of a single scan visit and emits
// navigation decisions through the injected Navigator.
//
// Observe may be called any number of times as inputs change. While the
// identity check is unresolved nothing is emitted. Once resolved, one
// decision fires; if identity data arrives after an anonymous decision the
// router re-evaluates and emits at most one corrective decision, then stays
// settled.
type Router struct {
	navigate Navigator
	phase    phase
	lastView View
}

// NewRouter constructs a router that emits decisions through navigate.
func NewRouter(navigate Navigator) *Router {
	return &Router{navigate: navigate}
}

// Waiting reports whether the router is still gated on the identity check,
// in which case callers should render a neutral waiting indicator.
func (r *Router) Waiting() bool {
	return r == nil || r.phase == phasePending
}

// Observe feeds the current inputs into the router.
func (r *Router) Observe(state State) {
	if r == nil || !state.AuthResolved {
		return
	}

	target := Resolve(state.Identity, state.AreaID)

	switch r.phase {
	case phasePending:
		if state.Identity != nil {
			r.phase = phaseResolvedIdentified
		} else {
			r.phase = phaseResolvedAnonymous
		}
		r.emit(target)
	case phaseResolvedAnonymous:
		if state.Identity == nil {
			return
		}
		r.phase = phaseResolvedIdentified
		// Correct the earlier anonymous decision exactly once; a late
		// identity that resolves to the same view needs no re-navigation.
		if target.View != r.lastView {
			r.emit(target)
		}
	case phaseResolvedIdentified:
		// Settled; further input changes do not navigate again.
	}
}

func (r *Router) emit(target Target) {
	r.lastView = target.View
	if r.navigate != nil {
		r.navigate(target)
	}
}
