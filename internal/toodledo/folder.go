package toodledo

import "github.com/teemow/toodledo/internal/codec"

// Folder is a Toodledo folder.
type Folder struct {
	ID       Opt[int64]  `json:"id,omitzero"`
	Name     Opt[string] `json:"name,omitzero"`
	Private  Opt[bool]   `json:"private,omitzero"`
	Archived Opt[bool]   `json:"archived,omitzero"`
	Order    Opt[int64]  `json:"order,omitzero"`
}

// FolderSchema binds Folder to the folders endpoints.
var FolderSchema = newSchema("folder", "id",
	bind("ID", "id", codec.Int, func(f *Folder) *Opt[int64] { return &f.ID }),
	bind("Name", "name", codec.BoundedString(32), func(f *Folder) *Opt[string] { return &f.Name }),
	bind("Private", "private", codec.Bool, func(f *Folder) *Opt[bool] { return &f.Private }),
	bind("Archived", "archived", codec.Bool, func(f *Folder) *Opt[bool] { return &f.Archived }),
	bind("Order", "ord", codec.Int, func(f *Folder) *Opt[int64] { return &f.Order }),
)
