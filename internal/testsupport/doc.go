// Package testsupport holds helpers shared by package tests: a config
// builder rooted in t.TempDir, a fake REAPER script and file writers.
package testsupport
