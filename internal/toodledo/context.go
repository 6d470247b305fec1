package toodledo

import "github.com/teemow/toodledo/internal/codec"

// Context is a Toodledo context.
type Context struct {
	ID      Opt[int64]  `json:"id,omitzero"`
	Name    Opt[string] `json:"name,omitzero"`
	Private Opt[bool]   `json:"private,omitzero"`
}

// ContextSchema binds Context to the contexts endpoints.
var ContextSchema = newSchema("context", "id",
	bind("ID", "id", codec.Int, func(c *Context) *Opt[int64] { return &c.ID }),
	bind("Name", "name", codec.BoundedString(32), func(c *Context) *Opt[string] { return &c.Name }),
	bind("Private", "private", codec.Bool, func(c *Context) *Opt[bool] { return &c.Private }),
)
