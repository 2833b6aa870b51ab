//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Services groups targets that run the remote backends locally.
type Services mg.Namespace

// Local service containers. PocketBase serves the catalog collection;
// Redis holds the favorites when favorites.backend is redis.
const (
	pocketBaseContainer = "shelf-pocketbase"
	pocketBaseImage     = "ghcr.io/muchobien/pocketbase:latest"
	pocketBasePort      = "8090"
	redisContainer      = "shelf-redis"
	redisImage          = "redis:7-alpine"
	redisPort           = "6379"
)

// containerRuntime returns "podman" or "docker" if a working runtime
// is available, or "" if neither is usable.
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

// Up starts PocketBase on :8090 and Redis on :6379.
func (Services) Up() error {
	rt := containerRuntime()
	if rt == "" {
		return errors.New("no container runtime found (podman or docker)")
	}
	if err := runContainer(rt, pocketBaseContainer, pocketBaseImage, pocketBasePort+":8090"); err != nil {
		return err
	}
	if err := runContainer(rt, redisContainer, redisImage, redisPort+":6379"); err != nil {
		return err
	}
	fmt.Println("PocketBase: http://127.0.0.1:" + pocketBasePort)
	fmt.Println("Redis:      redis://127.0.0.1:" + redisPort + "/0")
	return nil
}

// Down stops and removes both containers. Missing containers are ignored.
func (Services) Down() error {
	rt := containerRuntime()
	if rt == "" {
		return errors.New("no container runtime found (podman or docker)")
	}
	for _, name := range []string{pocketBaseContainer, redisContainer} {
		cmd := exec.Command(rt, "rm", "-f", name)
		cmd.Stdout = os.Stderr
		cmd.Stderr = os.Stderr
		_ = cmd.Run()
	}
	return nil
}

func runContainer(rt, name, image, ports string) error {
	fmt.Fprintf(os.Stderr, "Starting %s (%s)...\n", name, image)
	cmd := exec.Command(rt, "run", "-d", "--rm", "--name", name, "-p", ports, image)
	cmd.Stdout = os.Stderr
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("starting %s: %w", name, err)
	}
	return nil
}
