package auth

import "chainbank-backend/internal/models"

// Action is a named capability checked by the access policy.
type Action string

const (
	ActionCreateUsers     Action = "users.create"
	ActionListUsers       Action = "users.list"
	ActionActivateUsers   Action = "users.activate"
	ActionDeactivateUsers Action = "users.deactivate"
)

// policy is the capability table keyed by (role, action). Roles not listed
// for an action are denied.
var policy = map[models.Role]map[Action]bool{
	models.RoleAdmin: {
		ActionCreateUsers:     true,
		ActionListUsers:       true,
		ActionActivateUsers:   true,
		ActionDeactivateUsers: true,
	},
	models.RoleModerator: {
		ActionListUsers: true,
	},
}

// Allowed reports whether the role may perform the action.
func Allowed(role models.Role, action Action) bool {
	perms, ok := policy[role]
	if !ok {
		return false
	}
	return perms[action]
}
