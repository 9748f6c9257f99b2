package model

import "pandora-cli/internal/normalize"

// User is both a directory entry and the cached profile record.
type User struct {
	ID         ID     `json:"id,omitempty"`
	Name       string `json:"name,omitempty"`
	Username   string `json:"username,omitempty"`
	Email      string `json:"email,omitempty"`
	EmployeeID string `json:"employeeId,omitempty"`

	TeamID   ID     `json:"teamId,omitempty"`
	TeamName string `json:"teamName,omitempty"`
	Team     *Team  `json:"team,omitempty"`
	RoleID   ID     `json:"roleId,omitempty"`
	RoleName string `json:"roleName,omitempty"`
	Role     *Role  `json:"role,omitempty"`

	Phone     string `json:"phone,omitempty"`
	Gender    string `json:"gender,omitempty"`
	BirthDate string `json:"birthDate,omitempty"`
	Bio       string `json:"bio,omitempty"`
	Company   string `json:"company,omitempty"`

	CreatedAt *Timestamp `json:"createdAt,omitempty"`
	UpdatedAt *Timestamp `json:"updatedAt,omitempty"`
}

func (u User) Key() string { return string(u.ID) }

// Ref returns the compact form used when a user is embedded in another record.
func (u User) Ref() UserRef {
	return UserRef{ID: u.ID, Name: u.Name}
}

func (u User) MarshalJSON() ([]byte, error) {
	type plain User
	return normalize.User.Marshal(plain(u))
}

func (u *User) UnmarshalJSON(b []byte) error {
	type plain User
	var p plain
	if err := normalize.User.Unmarshal(b, &p); err != nil {
		return err
	}
	*u = User(p)
	return nil
}

func (t Team) MarshalJSON() ([]byte, error) {
	type plain Team
	return normalize.Team.Marshal(plain(t))
}

func (t *Team) UnmarshalJSON(b []byte) error {
	type plain Team
	var p plain
	if err := normalize.Team.Unmarshal(b, &p); err != nil {
		return err
	}
	*t = Team(p)
	return nil
}

// RoleNames maps the backend's five role ids onto display names.
var RoleNames = map[string]string{
	"1": "Chief Executive Officer",
	"2": "Department Manager",
	"3": "Team Lead",
	"4": "Member",
	"5": "System Administrator",
}

// DisplayRole resolves a role label: embedded role, cached role name, then the role id table. Unmapped ids read as "Member".
func (u User) DisplayRole() string {
	if u.Role != nil && u.Role.Name != "" {
		return u.Role.Name
	}
	if u.RoleName != "" {
		return u.RoleName
	}
	if u.RoleID.IsZero() {
		return "Unknown"
	}
	if name, ok := RoleNames[string(u.RoleID)]; ok {
		return name
	}
	return RoleNames["4"]
}
