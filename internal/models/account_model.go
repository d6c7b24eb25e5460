package models

const (
	StorageDropbox = "dropbox"
	StorageR2      = "r2"
)

// Account is the immutable per-account configuration handed to a workflow run.
type Account struct {
	Name                string `json:"account_name"`
	ThreadsUserID       string `json:"threads_user_id"`
	ThreadsAccessToken  string `json:"-"`
	StorageProvider     string `json:"storage_provider"`
	DropboxAppKey       string `json:"-"`
	DropboxAppSecret    string `json:"-"`
	DropboxRefreshToken string `json:"-"`
	Folder              string `json:"folder"`
	TelegramBotToken    string `json:"-"`
	TelegramChatID      string `json:"-"`
}

// Key is the account's entry in the caption table.
func (a Account) Key() string {
	return a.Name
}
