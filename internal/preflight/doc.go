// Package preflight verifies that the environment can support an enrich or
// clean pass: configuration validity, media and ledger directory access,
// Douban credentials, and Transmission reachability.
package preflight
