/*
Package testonly contains code and data that should only be used by tests.
Production code MUST NOT depend on anything in this package.

It provides throwaway certificate authorities that issue certificates and
precertificates, and a SigningLog that produces SCTs and STHs the way a real
CT log signs them, so tests can exercise verification end to end without
canned signatures.
*/
package testonly
