package service

import (
	"bytes"
	"context"
	"io"
	"sync"
	"time"

	"github.com/Rrens/qorix-chat/internal/domain"
	"github.com/Rrens/qorix-chat/internal/llm"
	"github.com/stretchr/testify/mock"
)

// MockCompleter mocks the llm.Completer interface
type MockCompleter struct {
	mock.Mock
}

func (m *MockCompleter) Complete(ctx context.Context, messages []llm.ChatMessage, file *llm.File) (string, error) {
	args := m.Called(ctx, messages, file)
	return args.String(0), args.Error(1)
}

// MockBlobStore mocks the domain.BlobStore interface
type MockBlobStore struct {
	mock.Mock
}

func (m *MockBlobStore) Put(ctx context.Context, sessionID, name string, data []byte) (string, error) {
	args := m.Called(ctx, sessionID, name, data)
	return args.String(0), args.Error(1)
}

func (m *MockBlobStore) Open(ctx context.Context, sessionID, blobID string) (io.ReadCloser, string, error) {
	args := m.Called(ctx, sessionID, blobID)
	return io.NopCloser(bytes.NewReader(nil)), args.String(0), args.Error(1)
}

func (m *MockBlobStore) Release(ctx context.Context, url string) error {
	args := m.Called(ctx, url)
	return args.Error(0)
}

func (m *MockBlobStore) ReleaseSession(ctx context.Context, sessionID string) error {
	args := m.Called(ctx, sessionID)
	return args.Error(0)
}

// MockKVStore mocks the domain.KVStore interface
type MockKVStore struct {
	mock.Mock
}

func (m *MockKVStore) Get(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

func (m *MockKVStore) Set(ctx context.Context, key, value string) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func (m *MockKVStore) Delete(ctx context.Context, key string) error {
	args := m.Called(ctx, key)
	return args.Error(0)
}

func (m *MockKVStore) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockKVStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// countingKV wraps a KVStore and counts writes
type countingKV struct {
	domain.KVStore
	mu   sync.Mutex
	sets int
}

func (c *countingKV) Set(ctx context.Context, key, value string) error {
	c.mu.Lock()
	c.sets++
	c.mu.Unlock()
	return c.KVStore.Set(ctx, key, value)
}

func (c *countingKV) Sets() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sets
}

// fixedClock returns a clock that advances one second per call
func fixedClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	now := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t := now
		now = now.Add(time.Second)
		return t
	}
}

// pendingTimers captures reveal callbacks instead of scheduling them
type pendingTimers struct {
	mu     sync.Mutex
	delays []time.Duration
	funcs  []func()
}

func (p *pendingTimers) after(d time.Duration, f func()) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.delays = append(p.delays, d)
	p.funcs = append(p.funcs, f)
}

func (p *pendingTimers) fire() {
	p.mu.Lock()
	funcs := p.funcs
	p.funcs = nil
	p.mu.Unlock()
	for _, f := range funcs {
		f()
	}
}
