// Package testsupport holds fixtures shared by package tests: a temp-rooted
// config builder and helpers for writing NFO sidecars.
package testsupport
