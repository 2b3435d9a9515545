package models

import "time"

// GlobalConfig is shared by every user and edited only by the owner.
type GlobalConfig struct {
	AIAvatar   string `json:"aiAvatarUrl"`
	LastEditor string `json:"lastUpdatedBy"`
}

// Backup bundles the three primary records for external safekeeping. Each
// field carries the record exactly as stored (a JSON document encoded as a
// string), which is also what the browser client's export produced.
type Backup struct {
	Users      string    `json:"users"`
	Chats      string    `json:"chats"`
	Config     string    `json:"config"`
	ExportedAt time.Time `json:"exportedAt,omitzero"`
}

// BackupFileName is the conventional name of a backup taken at t.
func BackupFileName(t time.Time) string {
	return "aither_backup_" + t.UTC().Format(time.DateOnly) + ".json"
}
