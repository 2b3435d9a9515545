// Package services holds the client's business logic: the user registry and
// login flow, chat sessions, the global config, the chat exchange with the
// assistant, and backup/restore.
//
// Services work on whole collections loaded from state.Repository and persist
// the full collection after each change.
package services
