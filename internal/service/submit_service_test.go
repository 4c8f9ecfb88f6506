package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ankur315-bit/SmartAttend-TechSprint/internal/upstream"
	"github.com/ankur315-bit/SmartAttend-TechSprint/pkg/config"
)

type recordingSubmitClient struct {
	mu      sync.Mutex
	err     error
	records []upstream.SubmitRecord
	tokens  []string
}

func (c *recordingSubmitClient) Submit(_ context.Context, token string, record upstream.SubmitRecord) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.err != nil {
		return c.err
	}
	c.records = append(c.records, record)
	c.tokens = append(c.tokens, token)
	return nil
}

func (c *recordingSubmitClient) count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.records)
}

func TestSubmitDispatchesRecord(t *testing.T) {
	client := &recordingSubmitClient{}
	svc := NewSubmitService(client, config.SubmitConfig{Workers: 1}, nil)
	svc.Start(context.Background())
	defer svc.Stop()

	svc.Enqueue("tok", upstream.SubmitRecord{
		StudentID: "stu-1",
		Subject:   "DSA",
		Date:      "2024-01-01",
		Status:    "Present",
	})

	require.Eventually(t, func() bool { return client.count() == 1 }, time.Second, 10*time.Millisecond)

	client.mu.Lock()
	defer client.mu.Unlock()
	assert.Equal(t, "tok", client.tokens[0])
	assert.Equal(t, "DSA", client.records[0].Subject)
}

func TestSubmitFailureIsDroppedNotRetried(t *testing.T) {
	client := &recordingSubmitClient{err: errors.New("upstream down")}
	svc := NewSubmitService(client, config.SubmitConfig{Workers: 1}, nil)
	svc.Start(context.Background())

	svc.Enqueue("tok", upstream.SubmitRecord{Subject: "DSA"})

	// Give the worker time to consume; the record must not be delivered
	// and Stop must not hang on a retry loop.
	time.Sleep(50 * time.Millisecond)
	svc.Stop()
	assert.Equal(t, 0, client.count())
}

func TestSubmitEnqueueBeforeStartDoesNotPanic(t *testing.T) {
	svc := NewSubmitService(&recordingSubmitClient{}, config.SubmitConfig{}, nil)
	// Dropped with a warning, the caller's state is already final.
	svc.Enqueue("tok", upstream.SubmitRecord{Subject: "DSA"})
}
