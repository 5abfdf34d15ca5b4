/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

// Package storage persists FLAMES sessions, history and preferences.
//
// A Store is a plain key-value store, the server-side stand-in for browser
// local storage. Keeper layers the structured records on top of it, keyed
// per client, and validates them on the way in and out.
package storage
