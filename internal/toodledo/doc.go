// Package toodledo is a typed client for the Toodledo v3 REST API.
//
// Entities (Task, Folder, Context, Account) are plain structs whose fields are
// Opt values: a field the server did not send, or the caller did not set, is
// absent and never appears on the wire. Each entity kind has a Schema binding
// its fields to wire names and codecs from the codec package.
//
// Client operations obtain a session from a SessionProvider, run the request
// (paginated for reads, chunked for writes) and, when the failure indicates an
// expired or rejected authorization, reauthorize once and retry. Writes of more
// than 50 records are not atomic: a failing chunk leaves the earlier chunks
// applied on the server.
package toodledo
