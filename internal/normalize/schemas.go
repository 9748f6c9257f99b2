package normalize

var Task = Schema{
	Name: "task",
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"taskId", "task_id"}},
		{Canonical: "title", Aliases: []string{"name"}},
		{Canonical: "description", Aliases: []string{"details", "summary"}},
		{Canonical: "startAt", Aliases: []string{"start_at", "startDate", "start_date"}},
		{Canonical: "dueAt", Aliases: []string{"due_at", "endDate", "end_date", "dueDate", "due_date"}},
		{Canonical: "creatorId", Aliases: []string{"creator_id"}},
		{Canonical: "owner", Aliases: []string{"ownerName", "owner_name"}},
		{Canonical: "publisher", Aliases: []string{"publisherName", "publisher_name"}},
		{Canonical: "assigneeIds", Aliases: []string{"assignee_ids"}},
		{Canonical: "createdAt", Aliases: []string{"created_at", "createTime", "create_time"}},
		{Canonical: "updatedAt", Aliases: []string{"updated_at", "updateTime", "update_time"}},
	},
}

var User = Schema{
	Name: "user",
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"userId", "user_id"}},
		{Canonical: "username", Aliases: []string{"userName", "user_name"}},
		{Canonical: "employeeId", Aliases: []string{"employee_id"}},
		{Canonical: "teamId", Aliases: []string{"team_id"}},
		{Canonical: "teamName", Aliases: []string{"team_name"}},
		{Canonical: "roleId", Aliases: []string{"role_id"}},
		{Canonical: "roleName", Aliases: []string{"role_name"}},
		{Canonical: "birthDate", Aliases: []string{"birth_date", "birth", "birthday"}},
		{Canonical: "createdAt", Aliases: []string{"created_at"}},
		{Canonical: "updatedAt", Aliases: []string{"updated_at"}},
	},
}

// UserRef covers the compact user objects nested in tasks and comments.
var UserRef = Schema{
	Name: "userRef",
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"userId", "user_id"}},
	},
}

var Journal = Schema{
	Name: "journal",
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"entryId", "entry_id", "journalId", "journal_id"}},
		{Canonical: "date", Aliases: []string{"entryDate", "entry_date", "workDate", "work_date"}},
		{Canonical: "summary", Aliases: []string{"workSummary", "work_summary"}},
		{Canonical: "plan", Aliases: []string{"tomorrowPlan", "tomorrow_plan"}},
		{Canonical: "help", Aliases: []string{"needHelp", "need_help"}},
		{Canonical: "authorId", Aliases: []string{"author_id", "userId", "user_id"}},
		{Canonical: "authorName", Aliases: []string{"author_name"}},
		{Canonical: "relatedTaskIds", Aliases: []string{"related_task_ids", "taskIds", "task_ids"}},
		{Canonical: "createdAt", Aliases: []string{"created_at"}},
		{Canonical: "updatedAt", Aliases: []string{"updated_at"}},
	},
}

var Comment = Schema{
	Name: "comment",
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"commentId", "comment_id"}},
		{Canonical: "ownerType", Aliases: []string{"owner_type"}},
		{Canonical: "ownerId", Aliases: []string{"owner_id"}},
		{Canonical: "authorId", Aliases: []string{"author_id"}},
		{Canonical: "authorName", Aliases: []string{"author_name"}},
		{Canonical: "authorInfo", Aliases: []string{"author_info"}},
		{Canonical: "createdAt", Aliases: []string{"created_at"}},
	},
}

var Team = Schema{
	Name: "team",
	Fields: []Field{
		{Canonical: "id", Aliases: []string{"teamId", "team_id"}},
		{Canonical: "name", Aliases: []string{"teamName", "team_name"}},
	},
}

var Stats = Schema{
	Name: "stats",
	Fields: []Field{
		{Canonical: "totalTasks", Aliases: []string{"total_tasks"}},
		{Canonical: "completedTasks", Aliases: []string{"completed_tasks"}},
		{Canonical: "inProgressTasks", Aliases: []string{"in_progress_tasks"}},
		{Canonical: "pendingTasks", Aliases: []string{"pending_tasks"}},
		{Canonical: "recentTasks", Aliases: []string{"recent_tasks"}},
	},
}
