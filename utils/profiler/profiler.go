// Copyright (C) 2019-2025, Lux Industries, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package profiler periodically writes CPU, heap and lock profiles to disk.
package profiler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"runtime/pprof"
	"time"

	"github.com/google/renameio/v2"
	"golang.org/x/sync/errgroup"
)

const (
	cpuProfileFile  = "cpu.profile"
	memProfileFile  = "mem.profile"
	lockProfileFile = "lock.profile"

	dirPerms  = 0o750
	filePerms = 0o600
)

var (
	ErrInvalidConfig = errors.New("invalid profiler config")

	errCPUProfilerRunning    = errors.New("cpu profiler already running")
	errCPUProfilerNotRunning = errors.New("cpu profiler not running")
	errNoMutexProfile        = errors.New("mutex profile not found")
)

// Config enables the continuous profiler. An empty Dir disables it.
type Config struct {
	Dir         string        `json:"dir"`
	Freq        time.Duration `json:"freq"`
	MaxNumFiles int           `json:"maxNumFiles"`
}

func (c Config) Enabled() bool {
	return c.Dir != ""
}

func (c Config) Validate() error {
	if !c.Enabled() {
		return nil
	}
	if c.Freq <= 0 || c.MaxNumFiles < 1 {
		return fmt.Errorf("%w: freq=%s maxNumFiles=%d", ErrInvalidConfig, c.Freq, c.MaxNumFiles)
	}
	return nil
}

// Profiler rotates a window of profiles until its context is cancelled.
type Profiler struct {
	freq        time.Duration
	maxNumFiles int

	cpuName  string
	memName  string
	lockName string
	cpuFile  *os.File
}

func New(c Config) *Profiler {
	return &Profiler{
		freq:        c.Freq,
		maxNumFiles: c.MaxNumFiles,
		cpuName:     filepath.Join(c.Dir, cpuProfileFile),
		memName:     filepath.Join(c.Dir, memProfileFile),
		lockName:    filepath.Join(c.Dir, lockProfileFile),
	}
}

// Run captures one window of profiles every freq and returns once ctx is
// done, flushing the window in progress.
func (p *Profiler) Run(ctx context.Context) error {
	if err := os.MkdirAll(filepath.Dir(p.cpuName), dirPerms); err != nil {
		return err
	}
	runtime.SetMutexProfileFraction(1)

	t := time.NewTicker(p.freq)
	defer t.Stop()

	for {
		if err := p.startCPU(); err != nil {
			return err
		}

		select {
		case <-ctx.Done():
			return p.flush()
		case <-t.C:
			if err := p.flush(); err != nil {
				return err
			}
		}

		if err := p.rotate(); err != nil {
			return err
		}
	}
}

func (p *Profiler) startCPU() error {
	if p.cpuFile != nil {
		return errCPUProfilerRunning
	}
	file, err := create(p.cpuName)
	if err != nil {
		return err
	}
	if err := pprof.StartCPUProfile(file); err != nil {
		return errors.Join(err, file.Close())
	}
	p.cpuFile = file
	return nil
}

func (p *Profiler) stopCPU() error {
	if p.cpuFile == nil {
		return errCPUProfilerNotRunning
	}
	pprof.StopCPUProfile()
	err := p.cpuFile.Close()
	p.cpuFile = nil
	return err
}

func (p *Profiler) flush() error {
	g := errgroup.Group{}
	g.Go(p.stopCPU)
	g.Go(func() error {
		runtime.GC()
		return writeProfile(p.memName, pprof.WriteHeapProfile)
	})
	g.Go(func() error {
		profile := pprof.Lookup("mutex")
		if profile == nil {
			return errNoMutexProfile
		}
		return writeProfile(p.lockName, func(w io.Writer) error {
			return profile.WriteTo(w, 0)
		})
	})
	return g.Wait()
}

func (p *Profiler) rotate() error {
	g := errgroup.Group{}
	for _, name := range []string{p.cpuName, p.memName, p.lockName} {
		g.Go(func() error { return rotate(name, p.maxNumFiles) })
	}
	return g.Wait()
}

// writeProfile replaces name atomically so readers never see a partial
// profile.
func writeProfile(name string, write func(io.Writer) error) error {
	file, err := renameio.NewPendingFile(name, renameio.WithPermissions(filePerms))
	if err != nil {
		return err
	}
	defer file.Cleanup()

	if err := write(file); err != nil {
		return err
	}
	return file.CloseAtomicallyReplace()
}

func create(name string) (*os.File, error) {
	return os.OpenFile(name, os.O_RDWR|os.O_CREATE|os.O_TRUNC, filePerms)
}

// rotate shifts name.1 .. name.(max-1) up by one and moves name to name.1.
func rotate(name string, maxNumFiles int) error {
	for i := maxNumFiles - 1; i > 0; i-- {
		src := fmt.Sprintf("%s.%d", name, i)
		dst := fmt.Sprintf("%s.%d", name, i+1)
		if err := renameIfExists(src, dst); err != nil {
			return err
		}
	}
	return renameIfExists(name, name+".1")
}

func renameIfExists(src, dst string) error {
	if _, err := os.Stat(src); os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}
	return os.Rename(src, dst)
}
