package store

// Local storage keys shared with the web client.
const (
	KeyAuthToken      = "authToken"
	KeyCurrentUser    = "currentUser"
	KeyProfile        = "profile"
	KeyPublishedTasks = "publishedTasks"
	KeyJournalEntries = "journalEntries"
	KeyTaskComments   = "taskComments"
	KeyJournalHistory = "journalHistory"
)
