package telegram

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/yourusername/breakdown-bot/internal/domain/entity"
	"github.com/yourusername/breakdown-bot/internal/lookup"
	"github.com/yourusername/breakdown-bot/internal/usecase"
)

type fakeBot struct {
	mu       sync.Mutex
	sent     []tgbotapi.Chattable
	requests []tgbotapi.Chattable
	updates  chan tgbotapi.Update
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, c)
	return tgbotapi.Message{MessageID: len(f.sent)}, nil
}

func (f *fakeBot) Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, c)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) GetUpdatesChan(tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeBot) StopReceivingUpdates() {}

func (f *fakeBot) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.sent {
		if m, ok := c.(tgbotapi.MessageConfig); ok {
			out = append(out, m.Text)
		}
	}
	return out
}

func (f *fakeBot) lastMessage() tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := len(f.sent) - 1; i >= 0; i-- {
		if m, ok := f.sent[i].(tgbotapi.MessageConfig); ok {
			return m
		}
	}
	return tgbotapi.MessageConfig{}
}

func (f *fakeBot) documents() []tgbotapi.FileBytes {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []tgbotapi.FileBytes
	for _, c := range f.sent {
		if d, ok := c.(tgbotapi.DocumentConfig); ok {
			if fb, ok := d.File.(tgbotapi.FileBytes); ok {
				out = append(out, fb)
			}
		}
	}
	return out
}

func (f *fakeBot) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
	f.requests = nil
}

type memDataset struct {
	mu sync.Mutex
	ds *entity.Dataset
}

func (m *memDataset) Load(context.Context) (*entity.Dataset, error) { return m.Snapshot(), nil }

func (m *memDataset) Snapshot() *entity.Dataset {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ds
}

func (m *memDataset) Append(_ context.Context, rec entity.Record) (*entity.Dataset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.ds = m.ds.Append(rec)
	return m.ds, nil
}

func (m *memDataset) Export(context.Context) ([]byte, error) { return []byte("PK"), nil }

type fixedAI struct{ reply string }

func (f fixedAI) Explain(context.Context, string) (string, error) { return f.reply, nil }
func (f fixedAI) Name() string                                     { return "fixed" }

func newTestHandler(t *testing.T) (*BotHandler, *fakeBot, *memDataset) {
	t.Helper()
	data := &memDataset{ds: entity.NewDataset([]string{"Machine Name", "Problem"}, [][]string{
		{"Press-1", "Overheat"},
		{"Press-1", "Jam"},
		{"Lathe-2", "Overheat"},
	})}
	bot := &fakeBot{updates: make(chan tgbotapi.Update, 8)}
	h := newBotHandler(bot,
		usecase.NewLookupUseCase(data, fixedAI{reply: "Check the cooling."}, time.Second),
		usecase.NewEntryUseCase(data, nil),
		Options{WorkerCount: 2})
	return h, bot, data
}

func textUpdate(chatID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		Chat: &tgbotapi.Chat{ID: chatID},
		From: &tgbotapi.User{ID: chatID, UserName: "ann"},
		Text: text,
	}}
}

func callbackUpdate(chatID int64, data string) tgbotapi.Update {
	return tgbotapi.Update{CallbackQuery: &tgbotapi.CallbackQuery{
		ID:      "cb",
		From:    &tgbotapi.User{ID: chatID, UserName: "ann"},
		Message: &tgbotapi.Message{MessageID: 7, Chat: &tgbotapi.Chat{ID: chatID}},
		Data:    data,
	}}
}

func TestSearchReply(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	h.processUpdate(context.Background(), textUpdate(1, "press1"))

	texts := bot.texts()
	require.Len(t, texts, 3)
	assert.Equal(t, "Suggestions:", texts[0])
	assert.True(t, strings.HasPrefix(texts[1], "Matching Results (2 found)\n<pre>"), texts[1])
	assert.Contains(t, texts[1], "Overheat")
	assert.Equal(t, "Explanation:\nCheck the cooling.", texts[2])

	h.sessions.mu.RLock()
	sess := h.sessions.sessions[1]
	h.sessions.mu.RUnlock()
	require.NotNil(t, sess)
	assert.Equal(t, "press1", sess.state.Query)
	assert.Len(t, sess.suggestions, 3)
}

func TestSearchReply_NoMatches(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	h.processUpdate(context.Background(), textUpdate(1, "zzz"))
	assert.Equal(t, []string{"No matches found."}, bot.texts())
}

func TestSuggestionCallback(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	ctx := context.Background()
	h.processUpdate(ctx, textUpdate(1, "press1"))
	bot.reset()

	h.processUpdate(ctx, callbackUpdate(1, "sug|2"))
	texts := bot.texts()
	require.NotEmpty(t, texts)
	assert.Contains(t, strings.Join(texts, "\n"), "Matching Results (1 found)")

	bot.reset()
	h.processUpdate(ctx, callbackUpdate(1, "sug|99"))
	assert.Equal(t, []string{"That suggestion has expired. Please search again."}, bot.texts())
}

func TestAddFlow(t *testing.T) {
	h, bot, data := newTestHandler(t)
	ctx := context.Background()

	h.processUpdate(ctx, textUpdate(1, "/add"))
	assert.Equal(t, "(1/2) Enter Machine Name, or /skip to leave it empty.", bot.lastMessage().Text)

	h.processUpdate(ctx, textUpdate(1, "Mill-3"))
	assert.Equal(t, "(2/2) Enter Problem, or /skip to leave it empty.", bot.lastMessage().Text)

	h.processUpdate(ctx, textUpdate(1, "/skip"))
	confirm := bot.lastMessage()
	assert.Equal(t, "New row:\nMachine Name: Mill-3\nProblem: (empty)\n\nAre you sure you want to add this row?", confirm.Text)
	markup, ok := confirm.ReplyMarkup.(tgbotapi.InlineKeyboardMarkup)
	require.True(t, ok)
	require.Len(t, markup.InlineKeyboard[0], 2)
	assert.Equal(t, "add|yes", *markup.InlineKeyboard[0][0].CallbackData)
	assert.Equal(t, 3, data.Snapshot().Len(), "nothing written before confirmation")

	// a search while confirmation is pending is held back
	h.processUpdate(ctx, textUpdate(1, "press"))
	assert.Contains(t, bot.lastMessage().Text, "Please confirm")

	bot.reset()
	h.processUpdate(ctx, callbackUpdate(1, "add|yes"))
	assert.Equal(t, 4, data.Snapshot().Len())
	texts := bot.texts()
	require.NotEmpty(t, texts)
	assert.Equal(t, "Row added successfully!", texts[0])
	assert.Contains(t, strings.Join(texts, "\n"), "Mill-3")
	docs := bot.documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "updated_data.xlsx", docs[0].Name)
}

func TestAddFlow_CancelButton(t *testing.T) {
	h, bot, data := newTestHandler(t)
	ctx := context.Background()

	h.processUpdate(ctx, textUpdate(1, "/add"))
	h.processUpdate(ctx, textUpdate(1, "X"))
	h.processUpdate(ctx, textUpdate(1, "Y"))
	h.processUpdate(ctx, callbackUpdate(1, "add|no"))

	assert.Equal(t, 3, data.Snapshot().Len())
	assert.Contains(t, bot.lastMessage().Text, "not added")

	h.processUpdate(ctx, callbackUpdate(1, "add|yes"))
	assert.Equal(t, 3, data.Snapshot().Len())
	assert.Contains(t, bot.lastMessage().Text, "Nothing to confirm")
}

func TestAddFlow_AllEmpty(t *testing.T) {
	h, bot, data := newTestHandler(t)
	ctx := context.Background()

	h.processUpdate(ctx, textUpdate(1, "/add"))
	h.processUpdate(ctx, textUpdate(1, "/skip"))
	h.processUpdate(ctx, textUpdate(1, "/skip"))
	assert.Equal(t, "All fields are empty, nothing to add.", bot.lastMessage().Text)
	assert.Equal(t, 3, data.Snapshot().Len())

	// back to search mode
	h.processUpdate(ctx, textUpdate(1, "zzz"))
	assert.Equal(t, "No matches found.", bot.lastMessage().Text)
}

func TestCommands(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	ctx := context.Background()

	h.processUpdate(ctx, textUpdate(1, "/columns"))
	assert.Equal(t, "Columns:\n1. Machine Name\n2. Problem", bot.lastMessage().Text)

	h.processUpdate(ctx, textUpdate(1, "/history"))
	assert.Equal(t, "No rows added yet.", bot.lastMessage().Text)

	h.processUpdate(ctx, textUpdate(1, "/cancel"))
	assert.Equal(t, "Nothing to cancel.", bot.lastMessage().Text)

	h.processUpdate(ctx, textUpdate(1, "/nope"))
	assert.Contains(t, bot.lastMessage().Text, "Unknown command")

	h.processUpdate(ctx, textUpdate(1, "/download@breakdown_bot"))
	require.Len(t, bot.documents(), 1)
}

func TestClearRestartsForm(t *testing.T) {
	h, bot, _ := newTestHandler(t)
	ctx := context.Background()

	h.processUpdate(ctx, textUpdate(1, "/add"))
	h.processUpdate(ctx, textUpdate(1, "Mill-3"))
	h.processUpdate(ctx, textUpdate(1, "/clear"))

	texts := bot.texts()
	require.GreaterOrEqual(t, len(texts), 2)
	assert.Equal(t, "Form cleared.", texts[len(texts)-2])
	assert.Equal(t, "(1/2) Enter Machine Name, or /skip to leave it empty.", texts[len(texts)-1])
}

func TestChatsAreIndependent(t *testing.T) {
	h, _, _ := newTestHandler(t)
	ctx := context.Background()

	h.processUpdate(ctx, textUpdate(1, "/add"))
	h.processUpdate(ctx, textUpdate(2, "jam"))

	s1 := h.sessions.acquire(1)
	assert.True(t, s1.state.FormActive)
	s1.release()
	s2 := h.sessions.acquire(2)
	assert.False(t, s2.state.FormActive)
	assert.Equal(t, "jam", s2.state.Query)
	s2.release()
}

func TestStart_ProcessesUpdatesUntilCancelled(t *testing.T) {
	defer goleak.VerifyNone(t)

	h, bot, _ := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	bot.updates <- textUpdate(5, "zzz")
	require.Eventually(t, func() bool {
		return len(bot.texts()) == 1
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
}

func TestStart_KeepsChatOrder(t *testing.T) {
	defer goleak.VerifyNone(t)

	h, bot, _ := newTestHandler(t)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.Start(ctx) }()

	for _, text := range []string{"/add", "Mill-3", "Leak"} {
		bot.updates <- textUpdate(7, text)
	}
	require.Eventually(t, func() bool {
		texts := bot.texts()
		return len(texts) > 0 && strings.Contains(texts[len(texts)-1], "Are you sure you want to add this row?")
	}, 2*time.Second, 10*time.Millisecond)

	sess := h.sessions.acquire(7)
	assert.Equal(t, "Mill-3", sess.state.Form["Machine Name"])
	assert.Equal(t, "Leak", sess.state.Form["Problem"])
	sess.release()

	cancel()
	<-done
}

func TestQueueFor_StablePerChat(t *testing.T) {
	h, _, _ := newTestHandler(t)
	wp := h.workerPool

	for _, chatID := range []int64{1, 2, 7, -1001234567890} {
		q := wp.queueFor(chatID)
		assert.GreaterOrEqual(t, q, 0)
		assert.Less(t, q, wp.workerCount)
		assert.Equal(t, q, wp.queueFor(chatID))
	}
	assert.NotEqual(t, wp.queueFor(1), wp.queueFor(2), "neighbouring chats spread over workers")
}

func TestRateLimit(t *testing.T) {
	h, _, _ := newTestHandler(t)
	wp := h.workerPool
	now := time.Now()

	for i := 0; i < maxRequestsPerSecond; i++ {
		assert.True(t, wp.checkRateLimit(1, now))
	}
	assert.False(t, wp.checkRateLimit(1, now.Add(100*time.Millisecond)))
	assert.True(t, wp.checkRateLimit(2, now), "other chats are not affected")
	assert.True(t, wp.checkRateLimit(1, now.Add(time.Second)))
}

func TestSessionSweep(t *testing.T) {
	store := newSessionStore()
	store.acquire(1).release()
	busy := store.acquire(2)

	removed := store.sweep(time.Now().Add(3*time.Hour), 2*time.Hour)
	assert.Equal(t, 1, removed, "busy session is kept")
	assert.Equal(t, 1, store.len())
	busy.release()

	assert.Equal(t, 0, store.sweep(time.Now(), 2*time.Hour))
}

func TestAcquire_SkipsSweptSession(t *testing.T) {
	store := newSessionStore()
	stale := store.lookupOrCreate(9)
	stale.mu.Lock()

	got := make(chan *chatSession, 1)
	go func() { got <- store.acquire(9) }()
	time.Sleep(20 * time.Millisecond)

	store.mu.Lock()
	delete(store.sessions, 9)
	store.mu.Unlock()
	stale.mu.Unlock()

	var sess *chatSession
	select {
	case sess = <-got:
	case <-time.After(2 * time.Second):
		t.Fatal("acquire did not return")
	}
	assert.NotSame(t, stale, sess)
	store.mu.RLock()
	assert.Same(t, store.sessions[9], sess, "the locked session is the one in the store")
	store.mu.RUnlock()
	sess.release()
}

func TestSplitIntoChunks(t *testing.T) {
	assert.Equal(t, []string{"héllo"}, splitIntoChunks("héllo", 10))
	assert.Equal(t, []string{"hé", "ll", "o"}, splitIntoChunks("héllo", 2))

	long := strings.Repeat("ж", 5000)
	chunks := splitIntoChunks(long, 4096)
	require.Len(t, chunks, 2)
	assert.Equal(t, long, chunks[0]+chunks[1])
}

func TestPreBlocks(t *testing.T) {
	assert.Nil(t, preBlocks("", 100))
	assert.Equal(t, []string{"<pre>a &lt; b\nc</pre>"}, preBlocks("a < b\nc\n", 100))

	blocks := preBlocks("aaaa\nbbbb\ncccc", 11+9)
	assert.Equal(t, []string{"<pre>aaaa\nbbbb</pre>", "<pre>cccc</pre>"}, blocks)
	for _, b := range blocks {
		assert.LessOrEqual(t, len([]rune(b)), 20)
	}
}

func TestPreBlocks_LongLineKeepsEntities(t *testing.T) {
	line := strings.Repeat("a&", 30)
	blocks := preBlocks(line, 11+7)
	require.NotEmpty(t, blocks)

	var joined strings.Builder
	for _, b := range blocks {
		assert.LessOrEqual(t, len([]rune(b)), 18)
		body := strings.TrimSuffix(strings.TrimPrefix(b, "<pre>"), "</pre>")
		assert.Equal(t, strings.Count(body, "&"), strings.Count(body, "&amp;"), "entity cut in %q", body)
		joined.WriteString(body)
	}
	assert.Equal(t, strings.Repeat("a&amp;", 30), joined.String())
}

func TestParseCallback(t *testing.T) {
	kind, arg := parseCallback("sug|3")
	assert.Equal(t, "sug", kind)
	assert.Equal(t, "3", arg)

	kind, arg = parseCallback("noise")
	assert.Equal(t, "noise", kind)
	assert.Empty(t, arg)
}

func TestSuggestionKeyboard(t *testing.T) {
	kb := suggestionKeyboard([]lookup.Suggestion{{Text: "Press-1"}, {Text: "Jam by Press-1"}})
	require.Len(t, kb.InlineKeyboard, 2)
	assert.Equal(t, "Jam by Press-1", kb.InlineKeyboard[1][0].Text)
	assert.Equal(t, "sug|1", *kb.InlineKeyboard[1][0].CallbackData)
}

func TestFormatHistory(t *testing.T) {
	at := time.Date(2025, 5, 3, 14, 5, 0, 0, time.UTC)
	got := formatHistory([]entity.JournalEntry{{
		Actor:     "ann",
		Values:    map[string]string{"Problem": "Leak", "Machine Name": "Mill-3", "Shift": ""},
		RowCount:  4,
		CreatedAt: at,
	}})
	assert.Equal(t, "Recently added rows:\n\n2025-05-03 14:05 by ann (row 4)\n  Machine Name: Mill-3\n  Problem: Leak", got)
}
