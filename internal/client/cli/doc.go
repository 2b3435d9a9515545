// Package cli is the interactive Aither terminal client.
//
// NewApp opens the local database and wires the services; App.Run restores
// the previous login or asks for email and PIN, then reads commands until
// the user exits:
//
//	aither (Ana · Nova Conversa)> qual é a capital da Austrália?
//	AITHER está processando...
//	[14:02] AITHER:
//	A capital da Austrália é **Camberra**.
//
// Owners additionally manage the AI avatar, list users and export or import
// backups. See runREPL for the command table.
package cli
