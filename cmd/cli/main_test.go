package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/akeren/aimaker-waitlist/domain/waitlist"
	"github.com/akeren/aimaker-waitlist/internal/log"
	"github.com/stretchr/testify/assert"
)

type migrateCall struct {
	called bool
	down   bool
}

func newTestCommandLine(seed ...string) (*commandLine, *bytes.Buffer, *bytes.Buffer, *migrateCall) {
	logger := log.NewLoggerWithJSONOutput()
	service := waitlist.NewWaitlistService(logger, waitlist.NewMemoryRepository(seed...), nil)

	var stdout, stderr bytes.Buffer
	calls := &migrateCall{}

	return &commandLine{
		logger: logger,
		stdout: &stdout,
		stderr: &stderr,
		loadService: func(*log.Logger) (waitlist.WaitlistService, func(), error) {
			return service, func() {}, nil
		},
		migrate: func(_ *log.Logger, down bool) error {
			calls.called = true
			calls.down = down
			return nil
		},
	}, &stdout, &stderr, calls
}

func TestCommandLine_Dispatch(t *testing.T) {
	tests := []struct {
		name       string
		seed       []string
		args       []string
		wantCode   int
		wantStdout string
		wantStderr string
	}{
		{name: "no command", args: nil, wantCode: 1, wantStdout: "Usage: cli <command>"},
		{name: "help", args: []string{"help"}, wantCode: 0, wantStdout: "add <email>"},
		{name: "unknown", args: []string{"export"}, wantCode: 1, wantStderr: "unknown command: export"},
		{name: "add without email", args: []string{"add"}, wantCode: 1, wantStderr: "usage: cli add <email>"},
		{name: "add", args: []string{"add", "a@b.com"}, wantCode: 0, wantStdout: "a@b.com joined at "},
		{name: "add invalid", args: []string{"add", "nope"}, wantCode: 1, wantStderr: waitlist.MessageInvalidEmail},
		{name: "add duplicate", seed: []string{"a@b.com"}, args: []string{"add", "a@b.com"}, wantCode: 1, wantStderr: waitlist.MessageDuplicate},
		{name: "list", seed: []string{"a@b.com", "c@d.com"}, args: []string{"list"}, wantCode: 0, wantStdout: "a@b.com\nc@d.com\nTotal: 2 emails\n"},
		{name: "list empty", args: []string{"list"}, wantCode: 0, wantStdout: "Total: 0 emails\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, stdout, stderr, _ := newTestCommandLine(tt.seed...)

			assert.Equal(t, tt.wantCode, cmd.run(tt.args))
			assert.Contains(t, stdout.String(), tt.wantStdout)
			assert.Contains(t, stderr.String(), tt.wantStderr)
		})
	}
}

func TestCommandLine_Migrate(t *testing.T) {
	cmd, _, _, calls := newTestCommandLine()
	assert.Equal(t, 0, cmd.run([]string{"migrate"}))
	assert.True(t, calls.called)
	assert.False(t, calls.down)

	cmd, _, _, calls = newTestCommandLine()
	assert.Equal(t, 0, cmd.run([]string{"migrate", "DOWN"}))
	assert.True(t, calls.down)

	cmd, _, _, _ = newTestCommandLine()
	cmd.migrate = func(*log.Logger, bool) error { return errors.New("no database") }
	assert.Equal(t, 1, cmd.run([]string{"migrate"}))
}

func TestCommandLine_ServiceUnavailable(t *testing.T) {
	cmd, _, stderr, _ := newTestCommandLine()
	cmd.loadService = func(*log.Logger) (waitlist.WaitlistService, func(), error) {
		return nil, nil, errors.New("WAITLIST_BACKEND unsupported")
	}

	assert.Equal(t, 1, cmd.run([]string{"list"}))
	assert.Equal(t, 1, cmd.run([]string{"add", "a@b.com"}))
	assert.Contains(t, stderr.String(), "An unexpected error occurred")
}
