// SPDX-License-Identifier: MPL-2.0

package toolenv

import (
	"context"
	"io/fs"
	"sync"
	"time"

	"github.com/cish/cish/internal/procexec"
)

// recordingRunner records every Command and answers with respond, or with a
// successful empty Result when respond is nil.
type recordingRunner struct {
	mu      sync.Mutex
	calls   []procexec.Command
	respond func(procexec.Command) (*procexec.Result, error)
}

func (r *recordingRunner) Invoke(_ context.Context, c procexec.Command) (*procexec.Result, error) {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	r.mu.Unlock()
	if r.respond != nil {
		return r.respond(c)
	}
	return &procexec.Result{}, nil
}

func (r *recordingRunner) last() procexec.Command {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return procexec.Command{}
	}
	return r.calls[len(r.calls)-1]
}

func exitWith(code procexec.ExitCode, stderr string) func(procexec.Command) (*procexec.Result, error) {
	return func(procexec.Command) (*procexec.Result, error) {
		return &procexec.Result{ExitCode: code, Stderr: []byte(stderr)}, nil
	}
}

// fakeFS answers stat calls for a fixed set of files and directories.
type fakeFS struct {
	files map[string]bool
	dirs  map[string]bool
}

func (f fakeFS) stat(name string) (fs.FileInfo, error) {
	switch {
	case f.files[name]:
		return fakeInfo{name: name}, nil
	case f.dirs[name]:
		return fakeInfo{name: name, dir: true}, nil
	default:
		return nil, &fs.PathError{Op: "stat", Path: name, Err: fs.ErrNotExist}
	}
}

type fakeInfo struct {
	name string
	dir  bool
}

func (i fakeInfo) Name() string       { return i.name }
func (i fakeInfo) Size() int64        { return 0 }
func (i fakeInfo) Mode() fs.FileMode  { return 0o755 }
func (i fakeInfo) ModTime() time.Time { return time.Time{} }
func (i fakeInfo) IsDir() bool        { return i.dir }
func (i fakeInfo) Sys() any           { return nil }

func fixedEnv(vars map[string]string) func(string) string {
	return func(k string) string { return vars[k] }
}
