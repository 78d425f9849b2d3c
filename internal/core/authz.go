package core

import (
	"fmt"
	"slices"

	"doccontrol/pkg/types"
)

// Actor is the identity every register call is made on behalf of. It is
// supplied by the session layer and trusted as given.
type Actor struct {
	UserID string
	Role   types.Role
	OrgID  string
}

func ActorFor(user *types.User) Actor {
	actor := Actor{UserID: user.ID, Role: user.Role}
	if user.OrgID != nil {
		actor.OrgID = *user.OrgID
	}
	return actor
}

type Action string

const (
	ActionManageOrganizations Action = "organizations:manage"
	ActionListOrganizations   Action = "organizations:list"
	ActionViewUsers           Action = "users:view"
	ActionCreateUser          Action = "users:create"
	ActionCreateOrgAdmin      Action = "users:create-org-admin"
	ActionViewProjects        Action = "projects:view"
	ActionCreateProject       Action = "projects:create"
	ActionViewDocuments       Action = "documents:view"
	ActionUploadDocument      Action = "documents:upload"
	ActionRecordEvent         Action = "events:record"
	ActionSendTransmittal     Action = "transmittals:send"
	ActionViewTransmittals    Action = "transmittals:view"
)

// RoleCapabilities is the complete (role, action) allow list.
var RoleCapabilities = map[types.Role][]Action{
	types.RoleSuperAdmin: {
		ActionManageOrganizations,
		ActionListOrganizations,
		ActionViewUsers,
		ActionCreateUser,
		ActionCreateOrgAdmin,
		ActionViewProjects,
		ActionCreateProject,
		ActionViewDocuments,
		ActionUploadDocument,
		ActionRecordEvent,
		ActionSendTransmittal,
		ActionViewTransmittals,
	},
	types.RoleOrgAdmin: {
		ActionViewUsers,
		ActionCreateUser,
		ActionViewProjects,
		ActionCreateProject,
		ActionViewDocuments,
		ActionUploadDocument,
		ActionRecordEvent,
		ActionSendTransmittal,
		ActionViewTransmittals,
	},
	types.RoleUser: {
		ActionViewProjects,
		ActionViewDocuments,
		ActionUploadDocument,
		ActionRecordEvent,
		ActionViewTransmittals,
	},
}

func HasCapability(role types.Role, action Action) bool {
	return slices.Contains(RoleCapabilities[role], action)
}

// Authorize allows the action when the actor's role carries the capability
// and, for anyone but a superadmin, the actor belongs to one of orgIDs. An
// empty orgIDs list means the action is not scoped to an organization.
func Authorize(actor Actor, action Action, orgIDs ...string) error {
	if actor.UserID == "" {
		return fmt.Errorf("%w: no actor", types.ErrForbidden)
	}

	if !HasCapability(actor.Role, action) {
		return fmt.Errorf("%w: role %q may not %s", types.ErrForbidden, actor.Role, action)
	}

	if actor.Role == types.RoleSuperAdmin || len(orgIDs) == 0 {
		return nil
	}

	if actor.OrgID != "" && slices.Contains(orgIDs, actor.OrgID) {
		return nil
	}

	return fmt.Errorf("%w: %s outside organization %s", types.ErrForbidden, action, actor.OrgID)
}
