package rbac

type Role string
type Action string

const (
	RoleClient Role = "client"
	RoleMember Role = "member"
	RoleAdmin  Role = "admin"
)

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionReview Action = "review"
	ActionAdmin  Action = "admin"
)

func Can(role Role, action Action) bool {
	switch role {
	case RoleAdmin:
		return true
	case RoleMember:
		return action == ActionRead || action == ActionWrite || action == ActionReview
	case RoleClient:
		return action == ActionRead || action == ActionReview
	default:
		return false
	}
}

func Normalize(role string) Role {
	switch Role(role) {
	case RoleClient, RoleMember, RoleAdmin:
		return Role(role)
	default:
		return RoleClient
	}
}
