package model

// Feature names understood by the facade's mode switch.
const (
	FeatureAuthLogin    = "authLogin"
	FeatureAuthRegister = "authRegister"
	FeatureAuthLogout   = "authLogout"
	FeatureProfile      = "profile"
	FeatureTasksList    = "tasksList"
	FeatureTaskDetail   = "taskDetail"
	FeatureTaskCreate   = "taskCreate"
	FeatureStats        = "stats"
	FeatureJournal      = "journal"
	FeatureComments     = "comments"
)

// Features lists every feature name in a stable order.
func Features() []string {
	return []string{
		FeatureAuthLogin,
		FeatureAuthRegister,
		FeatureAuthLogout,
		FeatureProfile,
		FeatureTasksList,
		FeatureTaskDetail,
		FeatureTaskCreate,
		FeatureStats,
		FeatureJournal,
		FeatureComments,
	}
}

// IsFeature reports whether name is a known feature.
func IsFeature(name string) bool {
	for _, f := range Features() {
		if f == name {
			return true
		}
	}
	return false
}

// UserRef is the compact user shape embedded in other records (task creator, comment author).
type UserRef struct {
	ID   ID     `json:"id,omitempty"`
	Name string `json:"name,omitempty"`
}

type Team struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

type Role struct {
	ID   ID     `json:"id"`
	Name string `json:"name"`
}

// Page is the list envelope returned by every paginated facade call.
type Page[T any] struct {
	Total      int `json:"total"`
	List       []T `json:"list"`
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalPages int `json:"totalPages"`
}

// TotalPagesFor returns ceil(total/pageSize), with a floor of 0.
func TotalPagesFor(total, pageSize int) int {
	if total <= 0 || pageSize <= 0 {
		return 0
	}
	return (total + pageSize - 1) / pageSize
}

type Stats struct {
	TotalTasks      int          `json:"totalTasks"`
	CompletedTasks  int          `json:"completedTasks"`
	InProgressTasks int          `json:"inProgressTasks"`
	PendingTasks    int          `json:"pendingTasks"`
	RecentTasks     []RecentTask `json:"recentTasks"`
}

type RecentTask struct {
	ID       ID         `json:"id"`
	Name     string     `json:"name"`
	Progress int        `json:"progress"`
	DueDate  *Timestamp `json:"dueDate,omitempty"`
	Owner    string     `json:"owner,omitempty"`
}

// Result is the {ok, message} acknowledgement shape used by write operations.
type Result struct {
	OK      bool   `json:"ok"`
	ID      ID     `json:"id,omitempty"`
	Message string `json:"message,omitempty"`
}
