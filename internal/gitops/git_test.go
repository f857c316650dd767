package gitops

import (
	"fmt"
	"strings"
	"testing"

	"github.com/moguard/subctl/internal/errors"
)

// -----------------------------------------------------------------------------
// Mock Command Executor for Unit Tests
// -----------------------------------------------------------------------------

// mockCall records a single command invocation
type mockCall struct {
	dir  string
	name string
	args []string
}

// mockExecutor is a test double for CommandExecutor
type mockExecutor struct {
	calls      []mockCall
	runOutputs [][]byte
	runErrors  []error
	callIndex  int
}

func newMockExecutor() *mockExecutor {
	return &mockExecutor{
		calls:      make([]mockCall, 0),
		runOutputs: make([][]byte, 0),
		runErrors:  make([]error, 0),
	}
}

func (m *mockExecutor) addResponse(output []byte, err error) {
	m.runOutputs = append(m.runOutputs, output)
	m.runErrors = append(m.runErrors, err)
}

func (m *mockExecutor) Run(dir string, name string, args ...string) ([]byte, error) {
	m.calls = append(m.calls, mockCall{dir: dir, name: name, args: args})
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.runOutputs) {
		return m.runOutputs[idx], m.runErrors[idx]
	}
	return nil, nil
}

func (m *mockExecutor) RunQuiet(dir string, name string, args ...string) error {
	m.calls = append(m.calls, mockCall{dir: dir, name: name, args: args})
	idx := m.callIndex
	m.callIndex++
	if idx < len(m.runErrors) {
		return m.runErrors[idx]
	}
	return nil
}

func (m *mockExecutor) lastCall() mockCall {
	if len(m.calls) == 0 {
		return mockCall{}
	}
	return m.calls[len(m.calls)-1]
}

// -----------------------------------------------------------------------------
// CLIClient Unit Tests
// -----------------------------------------------------------------------------

func TestAuthenticatedURL(t *testing.T) {
	tests := []struct {
		name    string
		repoURL string
		token   string
		want    string
	}{
		{
			name:    "no token",
			repoURL: "https://git.example.com/panel.git",
			token:   "",
			want:    "https://git.example.com/panel.git",
		},
		{
			name:    "token injected into https URL",
			repoURL: "https://git.example.com/panel.git",
			token:   "deploy-token",
			want:    "https://deploy-token@git.example.com/panel.git",
		},
		{
			name:    "ssh URL unchanged",
			repoURL: "git@git.example.com:org/panel.git",
			token:   "deploy-token",
			want:    "git@git.example.com:org/panel.git",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := NewCLIClient(tt.repoURL, tt.token, 1)
			if got := client.authenticatedURL(); got != tt.want {
				t.Errorf("authenticatedURL() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRemoteBranchExists(t *testing.T) {
	tests := []struct {
		name       string
		output     string
		err        error
		wantResult bool
		wantErr    bool
	}{
		{
			name:       "branch exists",
			output:     "3f2a9c\trefs/heads/main\n",
			wantResult: true,
		},
		{
			name:       "branch missing",
			output:     "",
			wantResult: false,
		},
		{
			name:    "git failure",
			output:  "fatal: could not read from remote",
			err:     fmt.Errorf("exit status 128"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := newMockExecutor()
			mock.addResponse([]byte(tt.output), tt.err)
			client := NewCLIClientWithExecutor("https://git.example.com/panel.git", "", 1, mock)

			got, err := client.RemoteBranchExists("main")
			if (err != nil) != tt.wantErr {
				t.Fatalf("RemoteBranchExists() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got != tt.wantResult {
				t.Errorf("RemoteBranchExists() = %v, want %v", got, tt.wantResult)
			}

			call := mock.lastCall()
			if call.name != "git" || call.args[0] != "ls-remote" {
				t.Errorf("unexpected command: %s %v", call.name, call.args)
			}
		})
	}
}

func TestClone(t *testing.T) {
	mock := newMockExecutor()
	client := NewCLIClientWithExecutor("https://git.example.com/panel.git", "tok", 1, mock)

	if err := client.Clone("release", "/srv/panel/acme"); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}

	call := mock.lastCall()
	want := []string{"clone", "--branch", "release", "--depth", "1",
		"https://tok@git.example.com/panel.git", "/srv/panel/acme"}
	if strings.Join(call.args, " ") != strings.Join(want, " ") {
		t.Errorf("Clone() args = %v, want %v", call.args, want)
	}
}

func TestCloneFullHistory(t *testing.T) {
	mock := newMockExecutor()
	client := NewCLIClientWithExecutor("https://git.example.com/panel.git", "", 0, mock)

	if err := client.Clone("main", "/srv/panel/acme"); err != nil {
		t.Fatalf("Clone() error = %v", err)
	}
	for _, arg := range mock.lastCall().args {
		if arg == "--depth" {
			t.Error("Clone() passed --depth with zero clone depth")
		}
	}
}

func TestCloneFailure(t *testing.T) {
	mock := newMockExecutor()
	mock.addResponse([]byte("fatal: repository not found"), fmt.Errorf("exit status 128"))
	client := NewCLIClientWithExecutor("https://git.example.com/panel.git", "", 1, mock)

	err := client.Clone("main", "/srv/panel/acme")
	if err == nil {
		t.Fatal("Clone() expected error")
	}
	if !errors.Is(err, errors.ErrCloneFailed) {
		t.Errorf("Clone() error = %v, want ErrCloneFailed", err)
	}
	if !strings.Contains(err.Error(), "repository not found") {
		t.Errorf("Clone() error should carry git output, got %v", err)
	}
}

func TestResetToRemote(t *testing.T) {
	mock := newMockExecutor()
	client := NewCLIClientWithExecutor("https://git.example.com/panel.git", "", 1, mock)

	if err := client.ResetToRemote("/srv/panel/acme", "release"); err != nil {
		t.Fatalf("ResetToRemote() error = %v", err)
	}

	call := mock.lastCall()
	if call.dir != "/srv/panel/acme" {
		t.Errorf("ResetToRemote() dir = %q, want instance dir", call.dir)
	}
	want := "reset --hard origin/release"
	if strings.Join(call.args, " ") != want {
		t.Errorf("ResetToRemote() args = %v, want %q", call.args, want)
	}
}

func TestUpdateSequenceCommands(t *testing.T) {
	mock := newMockExecutor()
	client := NewCLIClientWithExecutor("https://git.example.com/panel.git", "", 1, mock)

	dir := "/srv/panel/acme"
	if err := client.DiscardChanges(dir); err != nil {
		t.Fatalf("DiscardChanges() error = %v", err)
	}
	if err := client.FetchAll(dir); err != nil {
		t.Fatalf("FetchAll() error = %v", err)
	}
	if err := client.Checkout(dir, "release"); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	wantArgs := []string{
		"reset --hard",
		"fetch --all --prune",
		"checkout release",
	}
	for i, call := range mock.calls {
		if got := strings.Join(call.args, " "); got != wantArgs[i] {
			t.Errorf("call %d = %q, want %q", i, got, wantArgs[i])
		}
		if call.dir != dir {
			t.Errorf("call %d dir = %q, want %q", i, call.dir, dir)
		}
	}
}
