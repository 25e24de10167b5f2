package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"github.com/magefile/mage/sh"
)

// Redis test container constants.
const (
	redisImage         = "docker.io/library/redis:7-alpine"
	redisContainerName = "focusflow-test-redis"
	redisReadyTimeout  = 20 * time.Second
)

// containerRuntime returns "podman" or "docker" if a working runtime
// is available, or "" if neither is usable. It checks both that the
// binary exists on PATH and that it can connect to its daemon/machine.
func containerRuntime() string {
	for _, name := range []string{"podman", "docker"} {
		if _, err := exec.LookPath(name); err != nil {
			continue
		}
		if exec.Command(name, "info").Run() != nil {
			fmt.Fprintf(os.Stderr, "WARNING: %s found on PATH but not usable (is the daemon/machine running?)\n", name)
			continue
		}
		return name
	}
	return ""
}

// startRedis runs a Redis container on a random host port and waits until it
// answers PING. stop removes the container.
func startRedis(rt string) (addr string, stop func(), err error) {
	_ = exec.Command(rt, "rm", "-f", redisContainerName).Run()

	fmt.Fprintln(os.Stderr, "Starting Redis container...")
	if err := sh.Run(rt, "run", "-d", "--rm",
		"--name", redisContainerName,
		"-p", "127.0.0.1::6379",
		redisImage); err != nil {
		return "", nil, fmt.Errorf("starting redis container: %w", err)
	}
	stop = func() {
		fmt.Fprintln(os.Stderr, "Stopping Redis container...")
		_ = exec.Command(rt, "rm", "-f", redisContainerName).Run()
	}

	port, err := sh.Output(rt, "port", redisContainerName, "6379/tcp")
	if err != nil {
		stop()
		return "", nil, fmt.Errorf("reading redis port: %w", err)
	}
	// "127.0.0.1:49153", possibly followed by an IPv6 line.
	addr = strings.TrimSpace(strings.SplitN(port, "\n", 2)[0])

	deadline := time.Now().Add(redisReadyTimeout)
	for {
		out, err := sh.Output(rt, "exec", redisContainerName, "redis-cli", "ping")
		if err == nil && strings.TrimSpace(out) == "PONG" {
			return addr, stop, nil
		}
		if time.Now().After(deadline) {
			stop()
			return "", nil, fmt.Errorf("redis container not ready after %s", redisReadyTimeout)
		}
		time.Sleep(250 * time.Millisecond)
	}
}
