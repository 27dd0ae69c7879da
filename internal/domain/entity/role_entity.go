package entity

// Role is the authorization role attached to a resolved caller.
// There is a single authenticated role; anything else is anonymous.
type Role string

const (
	RoleAnonymous Role = ""
	RoleUser      Role = "user"
)
