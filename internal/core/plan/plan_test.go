package plan

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActionValidate(t *testing.T) {
	tests := []struct {
		name    string
		action  Action
		wantErr error
	}{
		{
			name:   "valid shell command",
			action: Action{Kind: KindShellCommand, Content: "echo hello"},
		},
		{
			name:   "valid interpreted code",
			action: Action{Kind: KindInterpretedCode, Content: "print('hi')"},
		},
		{
			name:    "empty content",
			action:  Action{Kind: KindShellCommand, Content: ""},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "whitespace only content",
			action:  Action{Kind: KindShellCommand, Content: "   "},
			wantErr: ErrEmptyContent,
		},
		{
			name:    "unknown kind",
			action:  Action{Kind: "ruby_code", Content: "puts 1"},
			wantErr: ErrUnknownActionKind,
		},
		{
			name:    "missing kind",
			action:  Action{Content: "echo hello"},
			wantErr: ErrUnknownActionKind,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.action.Validate()
			if tt.wantErr == nil {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.wantErr), "got %v, want %v", err, tt.wantErr)
		})
	}
}

func TestNewDefaultsToConfirmation(t *testing.T) {
	p := New("list files", Action{Kind: KindShellCommand, Content: "ls"})
	assert.True(t, p.RequiresConfirmation)
	assert.False(t, p.RequiresBackup)
}

func TestShellCommands(t *testing.T) {
	p := New("mixed plan",
		Action{Kind: KindShellCommand, Content: "ls -la"},
		Action{Kind: KindInterpretedCode, Content: "print('skip me')"},
		Action{Kind: KindShellCommand, Content: "echo done"},
	)

	assert.Equal(t, []string{"ls -la", "echo done"}, p.ShellCommands())
}

func TestExecutionResultSucceeded(t *testing.T) {
	t.Run("not executed", func(t *testing.T) {
		r := Cancelled("cancelled by user")
		assert.False(t, r.Succeeded())
		assert.Equal(t, "cancelled by user", r.Reason)
		assert.Empty(t, r.Outputs)
	})

	t.Run("all succeeded", func(t *testing.T) {
		r := ExecutionResult{
			Executed: true,
			Outputs:  []ActionResult{{Success: true}, {Success: true}},
		}
		assert.True(t, r.Succeeded())
	})

	t.Run("one failed", func(t *testing.T) {
		r := ExecutionResult{
			Executed: true,
			Outputs:  []ActionResult{{Success: true}, {Success: false, ReturnCode: 1}},
		}
		assert.False(t, r.Succeeded())
	})
}
