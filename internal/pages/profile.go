package pages

import (
	"context"
	"strings"
	"time"

	"pandora-cli/internal/api"
	"pandora-cli/internal/model"
	"pandora-cli/internal/store"
)

const (
	defaultTeamID model.ID = "1"
	defaultRoleID model.ID = "4"
)

// ProfileForm is what the profile page shows: cached profile values first,
// then the signed-in user's.
type ProfileForm struct {
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	EmployeeID string `json:"employeeId"`
	Company    string `json:"company"`
	Phone      string `json:"phone"`
	Gender     string `json:"gender"`
	BirthDate  string `json:"birthDate"`
	Age        *int   `json:"age,omitempty"`
	TeamName   string `json:"teamName,omitempty"`
	RoleName   string `json:"roleName,omitempty"`
	Bio        string `json:"bio"`
}

// ProfileInput holds the editable fields.
type ProfileInput struct {
	Name      string
	Email     string
	Phone     string
	Gender    string
	BirthDate string
	Bio       string
}

type ProfilePage struct {
	API *api.Client
	Now func() time.Time
}

func (p *ProfilePage) Fill(ctx context.Context) (ProfileForm, error) {
	pf, err := p.API.CachedProfile(ctx)
	if err != nil {
		return ProfileForm{}, err
	}
	cu, _, err := p.API.Session.CurrentUser(ctx)
	if err != nil {
		return ProfileForm{}, err
	}
	f := ProfileForm{
		Name:       orDefault(firstOf(pf.Name, cu.Name), "User"),
		Username:   orDefault(firstOf(pf.Username, cu.Username), "username"),
		Email:      firstOf(pf.Email, cu.Email),
		EmployeeID: firstOf(pf.EmployeeID, cu.EmployeeID),
		Company:    firstOf(pf.Company, pf.TeamName),
		Phone:      pf.Phone,
		Gender:     pf.Gender,
		BirthDate:  TrimBirthDate(pf.BirthDate),
		TeamName:   pf.TeamName,
		RoleName:   pf.RoleName,
		Bio:        pf.Bio,
	}
	if age, ok := CalculateAge(f.BirthDate, clock(p.Now)()); ok {
		f.Age = &age
	}
	return f, nil
}

// Reset discards unsaved edits by filling the form again.
func (p *ProfilePage) Reset(ctx context.Context) (ProfileForm, error) {
	return p.Fill(ctx)
}

// Save validates the input, sends the update, and on success refreshes the
// cached profile and current user.
func (p *ProfilePage) Save(ctx context.Context, in ProfileInput) (model.Result, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = strings.TrimSpace(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Bio = strings.TrimSpace(in.Bio)
	in.BirthDate = strings.TrimSpace(in.BirthDate)
	if in.Name == "" || in.Email == "" {
		return model.Result{}, invalid("name", "name and email are required")
	}

	cached, err := p.API.CachedProfile(ctx)
	if err != nil {
		return model.Result{}, err
	}
	update := model.User{
		Name:      in.Name,
		Username:  firstOf(cached.Username, cached.Name, in.Name),
		Email:     in.Email,
		Phone:     in.Phone,
		Gender:    GenderCode(in.Gender),
		BirthDate: in.BirthDate,
		Bio:       in.Bio,
		TeamID:    cached.TeamID,
		RoleID:    cached.RoleID,
	}
	if update.TeamID.IsZero() {
		update.TeamID = defaultTeamID
	}
	if update.RoleID.IsZero() {
		update.RoleID = defaultRoleID
	}

	res, err := p.API.UpdateProfile(ctx, update)
	if err != nil {
		return model.Result{}, err
	}

	next := cached
	next.Name = update.Name
	next.Username = update.Username
	next.Email = update.Email
	next.Phone = update.Phone
	next.Gender = update.Gender
	next.BirthDate = update.BirthDate
	next.Bio = update.Bio
	next.TeamID = update.TeamID
	next.RoleID = update.RoleID
	if err := store.WriteJSON(ctx, p.API.KV, store.KeyProfile, next); err != nil {
		return model.Result{}, err
	}

	cu, _, err := p.API.Session.CurrentUser(ctx)
	if err != nil {
		return model.Result{}, err
	}
	cu.Name = update.Name
	cu.Email = update.Email
	if err := p.API.Session.SetCurrentUser(ctx, cu); err != nil {
		return model.Result{}, err
	}
	if res.Message == "" {
		res.Message = "profile updated"
	}
	return res, nil
}

// GenderCode maps the form's gender choice onto the backend's M/F code; M is the default.
func GenderCode(g string) string {
	switch strings.TrimSpace(g) {
	case "男", "M", "m", "male", "Male":
		return "M"
	case "女", "F", "f", "female", "Female":
		return "F"
	case "":
		return "M"
	default:
		return strings.TrimSpace(g)
	}
}

// TrimBirthDate keeps the YYYY-MM-DD part of a date or date-time.
func TrimBirthDate(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexAny(s, "T "); i >= 0 {
		return s[:i]
	}
	return s
}

// CalculateAge returns whole years between birth and now; ok is false for an
// empty or unparsable date or a birth date in the future.
func CalculateAge(birth string, now time.Time) (int, bool) {
	birth = TrimBirthDate(birth)
	if birth == "" {
		return 0, false
	}
	b, err := time.Parse("2006-01-02", birth)
	if err != nil {
		return 0, false
	}
	age := now.Year() - b.Year()
	if now.Month() < b.Month() || (now.Month() == b.Month() && now.Day() < b.Day()) {
		age--
	}
	if age < 0 {
		return 0, false
	}
	return age, true
}

func firstOf(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
