// Package testsupport provides fixtures shared by package tests: temp-dir
// configs, an opened offline queue, and a fake warehouse backend.
package testsupport
