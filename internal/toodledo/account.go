package toodledo

import (
	"time"

	"github.com/teemow/toodledo/internal/codec"
)

// Account holds the account information relevant to synchronization.
type Account struct {
	UserID          Opt[string]    `json:"user_id,omitzero"`
	Alias           Opt[string]    `json:"alias,omitzero"`
	LastEditTask    Opt[time.Time] `json:"last_edit_task,omitzero"`
	LastDeleteTask  Opt[time.Time] `json:"last_delete_task,omitzero"`
	LastEditFolder  Opt[time.Time] `json:"last_edit_folder,omitzero"`
	LastEditContext Opt[time.Time] `json:"last_edit_context,omitzero"`
}

// AccountSchema binds Account to account/get.php. Accounts have no identity field.
var AccountSchema = newSchema("account", "",
	bind("UserID", "userid", codec.String, func(a *Account) *Opt[string] { return &a.UserID }),
	bind("Alias", "alias", codec.String, func(a *Account) *Opt[string] { return &a.Alias }),
	bind("LastEditTask", "lastedit_task", codec.Datetime, func(a *Account) *Opt[time.Time] { return &a.LastEditTask }),
	bind("LastDeleteTask", "lastdelete_task", codec.Datetime, func(a *Account) *Opt[time.Time] { return &a.LastDeleteTask }),
	bind("LastEditFolder", "lastedit_folder", codec.Datetime, func(a *Account) *Opt[time.Time] { return &a.LastEditFolder }),
	bind("LastEditContext", "lastedit_context", codec.Datetime, func(a *Account) *Opt[time.Time] { return &a.LastEditContext }),
)

// TasksChangedSince reports whether tasks were edited or deleted after since.
func (a Account) TasksChangedSince(since time.Time) bool {
	edit := a.LastEditTask.Value()
	del := a.LastDeleteTask.Value()
	return edit.After(since) || del.After(since)
}
