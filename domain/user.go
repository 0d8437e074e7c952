package domain

type UserRole string

const (
	RoleSuperAdmin   UserRole = "SUPER_ADMIN"
	RoleAdmin        UserRole = "ADMIN"
	RoleManager      UserRole = "MANAGER"
	RoleReceptionist UserRole = "RECEPTIONIST"
	RoleNurse        UserRole = "NURSE"
	RolePathologist  UserRole = "PATHOLOGIST"
)

type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Username string   `json:"username"`
	Password string   `json:"password,omitempty"`
	Role     UserRole `json:"role"`
	Email    string   `json:"email"`
	Phone    string   `json:"phone,omitempty"`
	Status   string   `json:"status"`
}

func (u User) RecordID() string    { return u.ID }
func (u User) DisplayName() string { return u.Name }
