package usecases

import (
	"fmt"

	"github.com/rs/zerolog"

	"rolebot/internal/repository"
)

// Role names, ordered. The hierarchy is fixed; there are no custom roles.
const (
	RoleUser       = "user"
	RoleAdmin      = "admin"
	RoleSuperadmin = "superadmin"

	// RoleUnrestricted marks a command with no role requirement at all.
	// It is not a role and must not be confused with an empty allowed-role
	// set, which denies everyone.
	RoleUnrestricted = ""
)

var roleRank = map[string]int{
	RoleUser:       0,
	RoleAdmin:      1,
	RoleSuperadmin: 2,
}

// Rank returns the position of a role in the hierarchy. Unknown role names
// rank below every known role.
func Rank(role string) int {
	if r, ok := roleRank[role]; ok {
		return r
	}
	return -1
}

// ValidRole reports whether the name is one of the three known roles.
func ValidRole(role string) bool {
	_, ok := roleRank[role]
	return ok
}

// IsAuthorized decides whether a user role satisfies a command's minimum
// role. An unknown role on either side denies.
func IsAuthorized(userRole, requiredRole string) bool {
	if requiredRole == RoleUnrestricted {
		return true
	}
	required, ok := roleRank[requiredRole]
	if !ok {
		return false
	}
	user, ok := roleRank[userRole]
	if !ok {
		return false
	}
	return user >= required
}

// MinimumRole reduces a plugin allowed-role set to the single floor stored in
// the command registry: the lowest-ranked role in the set. The wildcard "all"
// means unrestricted. The floor is an optimization only; the plugin router
// re-checks the live set at dispatch.
func MinimumRole(allowed []string) string {
	if len(allowed) == 0 {
		return RoleAdmin
	}
	min := ""
	minRank := len(roleRank)
	for _, role := range allowed {
		if role == "all" {
			return RoleUnrestricted
		}
		if r, ok := roleRank[role]; ok && r < minRank {
			minRank = r
			min = role
		}
	}
	if min == "" {
		return RoleAdmin
	}
	return min
}

// RoleInAllowedSet checks a user role against a plugin allowed-role set. An
// empty set denies everyone; "all" admits everyone; otherwise the user must
// hold or outrank some role in the set.
func RoleInAllowedSet(userRole string, allowed []string) bool {
	if len(allowed) == 0 {
		return false
	}
	user, ok := roleRank[userRole]
	if !ok {
		user = -1
	}
	for _, role := range allowed {
		if role == "all" {
			return true
		}
		if r, ok := roleRank[role]; ok && user >= r {
			return true
		}
	}
	return false
}

// AccessControl answers role queries and applies the promotion and demotion
// rules over the persisted role store.
type AccessControl struct {
	roles *repository.RoleRepository
	log   zerolog.Logger
}

func NewAccessControl(roles *repository.RoleRepository, log zerolog.Logger) *AccessControl {
	return &AccessControl{roles: roles, log: log.With().Str("component", "access").Logger()}
}

// Role returns the user's current role, defaulting to "user".
func (a *AccessControl) Role(userID int64) (string, error) {
	return a.roles.GetRole(userID)
}

// SetRole force-assigns a role with no permission check. This is the
// self-service path used by process bootstrap.
func (a *AccessControl) SetRole(userID int64, role string) error {
	if !ValidRole(role) {
		return fmt.Errorf("invalid role: %s", role)
	}
	return a.roles.SetRole(userID, role)
}

// Promote grants newRole to the target. The actor must outrank the role being
// granted, not merely the target's current role; nobody can mint a peer.
func (a *AccessControl) Promote(targetID int64, newRole string, actorID int64) (bool, error) {
	if !ValidRole(newRole) {
		a.log.Warn().Str("role", newRole).Msg("promotion to invalid role rejected")
		return false, nil
	}

	actorRole, err := a.roles.GetRole(actorID)
	if err != nil {
		return false, err
	}
	if Rank(actorRole) <= Rank(newRole) {
		a.log.Warn().
			Int64("actor", actorID).
			Str("actor_role", actorRole).
			Str("new_role", newRole).
			Msg("promotion denied: actor does not outrank granted role")
		return false, nil
	}

	if err := a.roles.SetRole(targetID, newRole); err != nil {
		return false, err
	}
	a.log.Info().Int64("target", targetID).Str("role", newRole).Msg("user promoted")
	return true, nil
}

// Demote steps the target down exactly one rank. The actor must outrank the
// target's current role; a target already at the lowest rank is not changed
// and the call reports failure.
func (a *AccessControl) Demote(targetID int64, actorID int64) (bool, error) {
	currentRole, err := a.roles.GetRole(targetID)
	if err != nil {
		return false, err
	}
	current := Rank(currentRole)
	if current <= 0 {
		a.log.Debug().Int64("target", targetID).Msg("already at lowest role")
		return false, nil
	}

	actorRole, err := a.roles.GetRole(actorID)
	if err != nil {
		return false, err
	}
	if Rank(actorRole) <= current {
		a.log.Warn().
			Int64("actor", actorID).
			Str("actor_role", actorRole).
			Str("target_role", currentRole).
			Msg("demotion denied: actor does not outrank target")
		return false, nil
	}

	var newRole string
	for role, rank := range roleRank {
		if rank == current-1 {
			newRole = role
		}
	}
	if err := a.roles.SetRole(targetID, newRole); err != nil {
		return false, err
	}
	a.log.Info().Int64("target", targetID).Str("from", currentRole).Str("to", newRole).Msg("user demoted")
	return true, nil
}

// UsersWithRole lists user IDs holding exactly the given role.
func (a *AccessControl) UsersWithRole(role string) ([]int64, error) {
	return a.roles.UsersWithRole(role)
}
