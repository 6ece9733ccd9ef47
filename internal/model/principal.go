package model

// Role enumerates the roles carried by an authenticated principal.
// Authentication itself happens upstream; the engine only checks roles
// and ownership.
type Role string

const (
	RoleUser      Role = "user"
	RoleOrganizer Role = "organizer"
	RoleAdmin     Role = "admin"
)

// Principal is the already-authenticated caller of an operation, as
// extracted from the bearer token by the auth middleware.
type Principal struct {
	ID   uint64
	Role Role
}
