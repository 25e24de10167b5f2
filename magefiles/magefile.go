// Package main provides build targets for the focusflow project using Mage.
//
// Usage:
//
//	mage build        Compile the focusflow binary to bin/
//	mage test:all     Run every package test
//	mage test:unit    Run tests without the Redis engine suite
//	mage test:redis   Start a throwaway Redis container and run the Redis engine tests
//	mage lint         Run golangci-lint
//	mage fmt          Fail if any file needs gofmt
//	mage clean        Remove build artifacts
//	mage install      Install focusflow to GOPATH/bin
package main

// Default target when mage runs without arguments.
var Default = Build
