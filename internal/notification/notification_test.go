package notification

import (
	"errors"
	"testing"
)

type call struct {
	title   string
	message string
}

type mockNotification struct {
	calls []call
	err   error
}

func (m *mockNotification) notify(title, message string, _ any) error {
	m.calls = append(m.calls, call{title, message})
	return m.err
}

func TestSend(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		message     string
		mockErr     error
		expectError bool
	}{
		{"successful notification", "Test Title", "Test Message", nil, false},
		{"notification error", "Test Title", "Test Message", errors.New("notification failed"), true},
		{"empty message", "Title", "", nil, false},
		{"unicode content", "通知", "🎉 done", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock := &mockNotification{err: tt.mockErr}
			SetNotifier(mock.notify)
			defer ResetNotifier()

			err := Send(tt.title, tt.message)
			if tt.expectError != (err != nil) {
				t.Errorf("Send() error = %v, expectError %v", err, tt.expectError)
			}
			if len(mock.calls) != 1 {
				t.Fatalf("expected 1 call, got %d", len(mock.calls))
			}
			if mock.calls[0].title != tt.title || mock.calls[0].message != tt.message {
				t.Errorf("call = %+v", mock.calls[0])
			}
		})
	}
}

func TestAppCreated(t *testing.T) {
	mock := &mockNotification{}
	SetNotifier(mock.notify)
	defer ResetNotifier()

	if err := AppCreated("Support bot", "/apps/abc123"); err != nil {
		t.Fatalf("AppCreated() error = %v", err)
	}
	want := call{"Promptly", "Support bot is ready at /apps/abc123"}
	if len(mock.calls) != 1 || mock.calls[0] != want {
		t.Errorf("calls = %+v, want %+v", mock.calls, want)
	}
}
