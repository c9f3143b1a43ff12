package service_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"

	"chatbox-ai/internal/llm"
	"chatbox-ai/internal/service"
	"chatbox-ai/internal/service/mocks"
	"chatbox-ai/internal/storage"
	storagemocks "chatbox-ai/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

func init() {
	// Discard log output from slog.Default() used in the service layer
	slog.SetDefault(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func testDefaults() service.Defaults {
	return service.Defaults{
		Model:           "claude-3-opus-20240229",
		Temperature:     0.7,
		MaxTokens:       1000,
		AvailableModels: []string{"claude-3-opus-20240229", "claude-3-sonnet-20240229", "claude-3-haiku-20240307"},
	}
}

// testStore opens a real in-memory repo so conversation ordering is exercised
// end to end.
func testStore(t *testing.T) storage.SessionStore {
	t.Helper()

	db, err := storage.New()
	if err != nil {
		t.Fatalf("storage.New() error = %v", err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	if err := storage.Migrate(db); err != nil {
		t.Fatalf("storage.Migrate() error = %v", err)
	}

	return storage.NewSessionRepo(db)
}

func TestNewChatService(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewChatService(testStore(t), mocks.NewMockCompletionClient(ctrl), testDefaults())
	if svc == nil {
		t.Fatal("NewChatService() returned nil")
	}
}

func TestChatService_CreateSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewChatService(testStore(t), mocks.NewMockCompletionClient(ctrl), testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.ID == "" {
		t.Error("CreateSession() session has no ID")
	}
	if session.Model != "claude-3-opus-20240229" {
		t.Errorf("CreateSession() model = %v, want default", session.Model)
	}
	if session.Temperature != 0.7 || session.MaxTokens != 1000 {
		t.Errorf("CreateSession() settings = %v/%v, want 0.7/1000", session.Temperature, session.MaxTokens)
	}

	conv, err := svc.History(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("new session has %d messages, want 0", len(conv.Messages))
	}
}

func TestChatService_CreateSession_StaleDefaultModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	defaults := testDefaults()
	defaults.Model = "m3"
	defaults.AvailableModels = []string{"m1", "m2"}
	svc := service.NewChatService(testStore(t), mocks.NewMockCompletionClient(ctrl), defaults)

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if session.Model != "m1" {
		t.Errorf("CreateSession() model = %v, want fallback m1", session.Model)
	}
}

func TestChatService_Submit(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockCompletionClient(ctrl)
	svc := service.NewChatService(testStore(t), mockClient, testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			if req.Model != "claude-3-opus-20240229" || req.MaxTokens != 1000 || req.Temperature != 0.7 {
				t.Errorf("Complete() settings = %+v", req)
			}
			if len(req.Messages) != 1 || req.Messages[0].Content != "hello" {
				t.Errorf("Complete() messages = %+v", req.Messages)
			}
			return "hi there", nil
		})

	user, assistant, err := svc.Submit(context.Background(), session.ID, "hello")
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if user.Role != storage.RoleUser || user.Content != "hello" {
		t.Errorf("Submit() user message = %+v", user)
	}
	if assistant.Role != storage.RoleAssistant || assistant.Content != "hi there" {
		t.Errorf("Submit() assistant message = %+v", assistant)
	}
}

func TestChatService_Submit_ConversationGrowsByTwoPerTurn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockCompletionClient(ctrl)
	svc := service.NewChatService(testStore(t), mockClient, testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	const turns = 5
	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return("canned reply", nil).
		Times(turns)

	for i := 0; i < turns; i++ {
		if _, _, err := svc.Submit(context.Background(), session.ID, fmt.Sprintf("message %d", i)); err != nil {
			t.Fatalf("Submit(%d) error = %v", i, err)
		}
	}

	conv, err := svc.History(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(conv.Messages) != 2*turns {
		t.Fatalf("conversation has %d messages after %d turns, want %d", len(conv.Messages), turns, 2*turns)
	}
	for i, msg := range conv.Messages {
		wantRole := storage.RoleUser
		if i%2 == 1 {
			wantRole = storage.RoleAssistant
		}
		if msg.Role != wantRole {
			t.Errorf("message %d role = %s, want %s", i, msg.Role, wantRole)
		}
	}
	// Chronological order is the insertion order
	if conv.Messages[0].Content != "message 0" || conv.Messages[8].Content != "message 4" {
		t.Errorf("messages out of order: %+v", conv.Messages)
	}
}

func TestChatService_Submit_FullHistoryIsSent(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockCompletionClient(ctrl)
	svc := service.NewChatService(testStore(t), mockClient, testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		Return("hi there", nil)
	if _, _, err := svc.Submit(context.Background(), session.ID, "hello"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}

	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			want := []llm.Message{
				{Role: "user", Content: "hello"},
				{Role: "assistant", Content: "hi there"},
				{Role: "user", Content: "bye"},
			}
			if len(req.Messages) != len(want) {
				t.Fatalf("Complete() got %d messages, want %d", len(req.Messages), len(want))
			}
			for i := range want {
				if req.Messages[i] != want[i] {
					t.Errorf("message %d = %+v, want %+v", i, req.Messages[i], want[i])
				}
			}
			return "goodbye", nil
		})
	if _, _, err := svc.Submit(context.Background(), session.ID, "bye"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestChatService_Submit_EmptyMessage(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No completion call expected
	mockClient := mocks.NewMockCompletionClient(ctrl)
	svc := service.NewChatService(testStore(t), mockClient, testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	_, _, err = svc.Submit(context.Background(), session.ID, "")
	var validationErr *service.ValidationError
	if !errors.As(err, &validationErr) || validationErr.Field != "message" {
		t.Errorf("Submit() error = %v, want ValidationError on message", err)
	}

	conv, err := svc.History(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("conversation has %d messages after rejected submit, want 0", len(conv.Messages))
	}
}

func TestChatService_Submit_UnknownSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewChatService(testStore(t), mocks.NewMockCompletionClient(ctrl), testDefaults())

	_, _, err := svc.Submit(context.Background(), "no-such-session", "hello")
	if !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Submit() error = %v, want ErrNotFound", err)
	}
}

func TestChatService_Submit_CompletionFailureBecomesReply(t *testing.T) {
	tests := []struct {
		name        string
		completeErr error
		wantContain string
	}{
		{
			name:        "completion failure",
			completeErr: fmt.Errorf("%w: bad status 500", llm.ErrCompletionFailed),
			wantContain: "Error generating response",
		},
		{
			name:        "missing credential",
			completeErr: llm.ErrMissingCredential,
			wantContain: "ANTHROPIC_API_KEY",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockCompletionClient(ctrl)
			svc := service.NewChatService(testStore(t), mockClient, testDefaults())

			session, err := svc.CreateSession(context.Background())
			if err != nil {
				t.Fatalf("CreateSession() error = %v", err)
			}

			mockClient.EXPECT().
				Complete(gomock.Any(), gomock.Any()).
				Return("", tt.completeErr)

			user, assistant, err := svc.Submit(context.Background(), session.ID, "hello")
			if err != nil {
				t.Fatalf("Submit() error = %v, failures must become replies", err)
			}
			if user.Content != "hello" {
				t.Errorf("Submit() user message = %+v", user)
			}
			if !strings.Contains(assistant.Content, tt.wantContain) {
				t.Errorf("Submit() assistant message = %q, want it to contain %q", assistant.Content, tt.wantContain)
			}

			// The error text is a permanent conversation entry
			conv, err := svc.History(context.Background(), session.ID)
			if err != nil {
				t.Fatalf("History() error = %v", err)
			}
			if len(conv.Messages) != 2 {
				t.Fatalf("conversation has %d messages, want 2", len(conv.Messages))
			}
			if conv.Messages[1].Role != storage.RoleAssistant || conv.Messages[1].Content != assistant.Content {
				t.Errorf("persisted assistant entry = %+v", conv.Messages[1])
			}
		})
	}
}

func TestChatService_SelectModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewChatService(testStore(t), mocks.NewMockCompletionClient(ctrl), testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	// Round-trip every allow-listed model
	for _, model := range testDefaults().AvailableModels {
		updated, err := svc.SelectModel(context.Background(), session.ID, model)
		if err != nil {
			t.Fatalf("SelectModel(%s) error = %v", model, err)
		}
		if updated.Model != model {
			t.Errorf("SelectModel(%s) model = %v", model, updated.Model)
		}

		conv, err := svc.History(context.Background(), session.ID)
		if err != nil {
			t.Fatalf("History() error = %v", err)
		}
		if conv.Session.Model != model {
			t.Errorf("History() model = %v, want %v", conv.Session.Model, model)
		}
	}

	// Off-list model is rejected
	if _, err := svc.SelectModel(context.Background(), session.ID, "gpt-4"); !errors.Is(err, service.ErrModelNotAllowed) {
		t.Errorf("SelectModel(gpt-4) error = %v, want ErrModelNotAllowed", err)
	}

	// Unknown session
	if _, err := svc.SelectModel(context.Background(), "no-such-session", "claude-3-opus-20240229"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("SelectModel() error = %v, want ErrNotFound", err)
	}
}

func TestChatService_StaleStoredModelFallsBack(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	store := testStore(t)
	mockClient := mocks.NewMockCompletionClient(ctrl)

	// Session stored with a model that is no longer allow-listed
	session := &storage.SessionRecord{Model: "m3", Temperature: 0.7, MaxTokens: 1000}
	if err := store.Create(context.Background(), session); err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	defaults := testDefaults()
	defaults.AvailableModels = []string{"m1", "m2"}
	svc := service.NewChatService(store, mockClient, defaults)

	conv, err := svc.History(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if conv.Session.Model != "m1" {
		t.Errorf("History() model = %v, want fallback m1", conv.Session.Model)
	}

	// Completions use the fallback as well
	mockClient.EXPECT().
		Complete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, req llm.CompletionRequest) (string, error) {
			if req.Model != "m1" {
				t.Errorf("Complete() model = %v, want m1", req.Model)
			}
			return "ok", nil
		})
	if _, _, err := svc.Submit(context.Background(), session.ID, "hello"); err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
}

func TestChatService_Clear(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockClient := mocks.NewMockCompletionClient(ctrl)
	svc := service.NewChatService(testStore(t), mockClient, testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}
	if _, err := svc.SelectModel(context.Background(), session.ID, "claude-3-haiku-20240307"); err != nil {
		t.Fatalf("SelectModel() error = %v", err)
	}

	mockClient.EXPECT().Complete(gomock.Any(), gomock.Any()).Return("reply", nil).Times(3)
	for i := 0; i < 3; i++ {
		if _, _, err := svc.Submit(context.Background(), session.ID, "hello"); err != nil {
			t.Fatalf("Submit() error = %v", err)
		}
	}

	if err := svc.Clear(context.Background(), session.ID); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}

	conv, err := svc.History(context.Background(), session.ID)
	if err != nil {
		t.Fatalf("History() error = %v", err)
	}
	if len(conv.Messages) != 0 {
		t.Errorf("conversation has %d messages after clear, want 0", len(conv.Messages))
	}
	// Model selection survives the clear
	if conv.Session.Model != "claude-3-haiku-20240307" {
		t.Errorf("model after clear = %v, want claude-3-haiku-20240307", conv.Session.Model)
	}

	if err := svc.Clear(context.Background(), "no-such-session"); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("Clear() error = %v, want ErrNotFound", err)
	}
}

func TestChatService_DeleteSession(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewChatService(testStore(t), mocks.NewMockCompletionClient(ctrl), testDefaults())

	session, err := svc.CreateSession(context.Background())
	if err != nil {
		t.Fatalf("CreateSession() error = %v", err)
	}

	if err := svc.DeleteSession(context.Background(), session.ID); err != nil {
		t.Fatalf("DeleteSession() error = %v", err)
	}
	if _, err := svc.History(context.Background(), session.ID); !errors.Is(err, service.ErrNotFound) {
		t.Errorf("History() after delete error = %v, want ErrNotFound", err)
	}
}

func TestChatService_StoreFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockStore := storagemocks.NewMockSessionStore(ctrl)
	svc := service.NewChatService(mockStore, mocks.NewMockCompletionClient(ctrl), testDefaults())

	mockStore.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		Return(errors.New("disk on fire"))

	if _, err := svc.CreateSession(context.Background()); err == nil {
		t.Error("CreateSession() expected error, got nil")
	}
}
