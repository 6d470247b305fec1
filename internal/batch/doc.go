// Package batch splits Toodledo requests to respect the API's size limits.
//
// Writes (add, edit, delete) accept at most WriteLimit records per call, so Write
// sends consecutive chunks one after another and stops at the first failure.
// Chunks sent before the failure stay applied; a *ChunkError reports how many
// records made it. Reads return at most ReadLimit records per page, so Paginate
// keeps requesting pages until one comes back short.
//
// The package also parses id parameters for the MCP tools and formats batch
// summaries for them.
package batch
