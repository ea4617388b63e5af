package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/hwangtech/linebot-backend/internal/entity"
)

type mockStore struct {
	histories map[string]entity.History
	maxTurns  int
	getErr    error
	appendErr error
}

func newMockStore() *mockStore {
	return &mockStore{histories: map[string]entity.History{}, maxTurns: 5}
}

func (m *mockStore) Get(_ context.Context, userID string) (entity.History, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.histories[userID], nil
}

func (m *mockStore) Append(_ context.Context, userID string, turn entity.Turn) error {
	if m.appendErr != nil {
		return m.appendErr
	}
	history := append(m.histories[userID], turn)
	if len(history) > m.maxTurns {
		history = history[len(history)-m.maxTurns:]
	}
	m.histories[userID] = history
	return nil
}

func (m *mockStore) Clear(_ context.Context, userID string) error {
	delete(m.histories, userID)
	return nil
}

type pipelineCall struct {
	question string
	history  []entity.HistoryPair
}

type mockPipeline struct {
	answer string
	err    error
	calls  []pipelineCall
}

func (m *mockPipeline) Answer(_ context.Context, req *entity.PipelineAnswerRequest) (*entity.PipelineAnswer, error) {
	m.calls = append(m.calls, pipelineCall{question: req.Question, history: req.History})
	if m.err != nil {
		return nil, m.err
	}
	return &entity.PipelineAnswer{Answer: m.answer}, nil
}

type sentReply struct {
	token string
	text  string
}

type mockLine struct {
	replies  []sentReply
	pushes   []sentReply
	replyErr error
	profile  *entity.LineProfile
}

func (m *mockLine) Reply(_ context.Context, replyToken, text string) error {
	m.replies = append(m.replies, sentReply{token: replyToken, text: text})
	return m.replyErr
}

func (m *mockLine) Push(_ context.Context, to, text string) error {
	m.pushes = append(m.pushes, sentReply{token: to, text: text})
	return nil
}

func (m *mockLine) GetProfile(_ context.Context, userID string) (*entity.LineProfile, error) {
	if m.profile == nil {
		return nil, errors.New("profile unavailable")
	}
	return m.profile, nil
}

func textEvent(userID, token, text string) entity.Event {
	return entity.Event{
		Type:       entity.EventTypeMessage,
		ReplyToken: token,
		Source:     entity.EventSource{Type: "user", UserID: userID},
		Message:    entity.EventMessage{Type: entity.MessageTypeText, Text: text},
	}
}

func newTestUsecase(store *mockStore, pl PipelineConnector, ln *mockLine, fallback string) *Usecase {
	return NewUsecase(store, pl, ln, fallback, zap.NewNop())
}

func TestHandleEnvelopeAnswersTextMessage(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{answer: "hi there"}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{textEvent("U1", "T1", "hello")},
	})

	require.Len(t, pl.calls, 1)
	require.Equal(t, "hello", pl.calls[0].question)
	require.Empty(t, pl.calls[0].history)

	require.Len(t, ln.replies, 1)
	require.Equal(t, "T1", ln.replies[0].token)
	require.Equal(t, "hi there", ln.replies[0].text)

	history := store.histories["U1"]
	require.Len(t, history, 1)
	require.Equal(t, "hello", history[0].Question)
	require.Equal(t, "hi there", history[0].Answer)
}

func TestHandleEnvelopeEmptyEventsIsNoop(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{answer: "unused"}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{})
	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{Events: []entity.Event{}})

	require.Empty(t, pl.calls)
	require.Empty(t, ln.replies)
}

func TestHandleEnvelopeSkipsNonTextEvents(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{answer: "hi"}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{
			textEvent("U1", "T1", "hello"),
			{
				Type:       entity.EventTypeMessage,
				ReplyToken: "T2",
				Source:     entity.EventSource{UserID: "U1"},
				Message:    entity.EventMessage{Type: entity.MessageTypeSticker},
			},
			{
				Type:       entity.EventTypePostback,
				ReplyToken: "T3",
				Source:     entity.EventSource{UserID: "U1"},
				Postback:   entity.Postback{Data: "action=buy"},
			},
		},
	})

	require.Len(t, pl.calls, 1)
	require.Len(t, ln.replies, 1)
	require.Equal(t, "T1", ln.replies[0].token)
}

func TestHandleEnvelopePassesHistoryToPipeline(t *testing.T) {
	store := newMockStore()
	store.histories["U1"] = entity.History{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}
	pl := &mockPipeline{answer: "a3"}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{textEvent("U1", "T1", "q3")},
	})

	require.Len(t, pl.calls, 1)
	require.Equal(t, []entity.HistoryPair{
		{Question: "q1", Answer: "a1"},
		{Question: "q2", Answer: "a2"},
	}, pl.calls[0].history)

	require.Len(t, store.histories["U1"], 3)
}

func TestHandleEnvelopeSixthTurnEvictsOldest(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{answer: "ack"}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "")

	questions := []string{"m1", "m2", "m3", "m4", "m5", "m6"}
	for i, q := range questions {
		uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
			Events: []entity.Event{textEvent("U1", "T"+q, q)},
		})
		require.Len(t, pl.calls, i+1)
	}

	history := store.histories["U1"]
	require.Len(t, history, 5)
	require.Equal(t, "m2", history[0].Question)
	require.Equal(t, "m6", history[4].Question)
}

func TestPipelineErrorSilentDrop(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{err: errors.New("model quota exceeded")}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{textEvent("U1", "T1", "hello")},
	})

	require.Empty(t, ln.replies)
	require.Empty(t, store.histories["U1"])
}

func TestPipelineErrorFallbackReply(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{err: errors.New("model quota exceeded")}
	ln := &mockLine{}
	uc := newTestUsecase(store, pl, ln, "Sorry, please try again later.")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{textEvent("U1", "T1", "hello")},
	})

	require.Len(t, ln.replies, 1)
	require.Equal(t, "Sorry, please try again later.", ln.replies[0].text)
	require.Empty(t, store.histories["U1"], "failed turns must not enter history")
}

func TestPipelineErrorDoesNotAbortEnvelope(t *testing.T) {
	store := newMockStore()
	ln := &mockLine{}

	// First event fails, second succeeds.
	flip := &flippingPipeline{inner: &mockPipeline{answer: "ok"}, failFirst: true}
	uc := newTestUsecase(store, flip, ln, "")
	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{
			textEvent("U1", "T1", "first"),
			textEvent("U2", "T2", "second"),
		},
	})

	require.Len(t, ln.replies, 1)
	require.Equal(t, "T2", ln.replies[0].token)
	require.Empty(t, store.histories["U1"])
	require.Len(t, store.histories["U2"], 1)
}

type flippingPipeline struct {
	inner     *mockPipeline
	failFirst bool
}

func (f *flippingPipeline) Answer(ctx context.Context, req *entity.PipelineAnswerRequest) (*entity.PipelineAnswer, error) {
	if f.failFirst {
		f.failFirst = false
		return nil, errors.New("transient failure")
	}
	return f.inner.Answer(ctx, req)
}

func TestDeliveryErrorKeepsHistory(t *testing.T) {
	store := newMockStore()
	pl := &mockPipeline{answer: "hi"}
	ln := &mockLine{replyErr: errors.New("HTTP 400: invalid reply token")}
	uc := newTestUsecase(store, pl, ln, "")

	uc.HandleEnvelope(context.Background(), &entity.WebhookEnvelope{
		Events: []entity.Event{textEvent("U1", "T1", "hello")},
	})

	// Delivery failure is logged and dropped; the turn stays remembered.
	require.Len(t, store.histories["U1"], 1)
}

func TestTranscriptIncludesProfileName(t *testing.T) {
	store := newMockStore()
	store.histories["U1"] = entity.History{{Question: "q", Answer: "a", AskedAt: time.Now()}}
	ln := &mockLine{profile: &entity.LineProfile{UserID: "U1", DisplayName: "Alice"}}
	uc := newTestUsecase(store, &mockPipeline{}, ln, "")

	transcript, err := uc.Transcript(context.Background(), "U1")
	require.NoError(t, err)
	require.Equal(t, "Alice", transcript.DisplayName)
	require.Len(t, transcript.Turns, 1)
}

func TestTranscriptWithoutProfile(t *testing.T) {
	store := newMockStore()
	uc := newTestUsecase(store, &mockPipeline{}, &mockLine{}, "")

	transcript, err := uc.Transcript(context.Background(), "U1")
	require.NoError(t, err)
	require.Empty(t, transcript.DisplayName)
	require.Equal(t, "U1", transcript.UserID)
}

func TestClearHistory(t *testing.T) {
	store := newMockStore()
	store.histories["U1"] = entity.History{{Question: "q", Answer: "a"}}
	uc := newTestUsecase(store, &mockPipeline{}, &mockLine{}, "")

	require.NoError(t, uc.ClearHistory(context.Background(), "U1"))
	require.Empty(t, store.histories["U1"])
}
