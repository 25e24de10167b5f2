// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

// envRedisAddr points the Redis engine tests at a server; they skip without it.
const envRedisAddr = "FOCUSFLOW_TEST_REDIS_ADDR"

const redisPkg = "./internal/redis/..."

// Test groups test targets (all, unit, redis).
type Test mg.Namespace

// All runs every package test. Redis engine tests run only when
// FOCUSFLOW_TEST_REDIS_ADDR is set.
func (Test) All() error {
	return sh.RunV(binGo, "test", "./...")
}

// Unit runs every package test except the Redis engine suite.
func (Test) Unit() error {
	pkgs, err := sh.Output(binGo, "list", "./...")
	if err != nil {
		return err
	}
	var unitPkgs []string
	for pkg := range strings.SplitSeq(pkgs, "\n") {
		if pkg != "" && !strings.HasSuffix(pkg, "/internal/redis") {
			unitPkgs = append(unitPkgs, pkg)
		}
	}
	if len(unitPkgs) == 0 {
		fmt.Println("No unit test packages found.")
		return nil
	}
	args := append([]string{"test"}, unitPkgs...)
	return sh.RunV(binGo, args...)
}

// Redis starts a disposable Redis container and runs the Redis engine tests
// against it. An existing FOCUSFLOW_TEST_REDIS_ADDR is used as is.
func (Test) Redis() error {
	if addr := os.Getenv(envRedisAddr); addr != "" {
		return sh.RunV(binGo, "test", "-v", redisPkg)
	}

	rt := containerRuntime()
	if rt == "" {
		return fmt.Errorf("no container runtime found (tried podman, docker) and %s is not set", envRedisAddr)
	}
	addr, stop, err := startRedis(rt)
	if err != nil {
		return err
	}
	defer stop()

	return sh.RunWithV(map[string]string{envRedisAddr: addr}, binGo, "test", "-v", "-count=1", redisPkg)
}
