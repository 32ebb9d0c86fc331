package senders_test

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/zhCaiCode/offsync"
	"github.com/zhCaiCode/offsync/senders"
)

type fakeSQSClient struct {
	messages []string
	batches  [][]string

	sendErr error
	failIDs []string
}

func (c *fakeSQSClient) SendMessage(_ context.Context, params *sqs.SendMessageInput, _ ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	c.messages = append(c.messages, aws.ToString(params.MessageBody))
	return &sqs.SendMessageOutput{}, nil
}

func (c *fakeSQSClient) SendMessageBatch(_ context.Context, params *sqs.SendMessageBatchInput, _ ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error) {
	if c.sendErr != nil {
		return nil, c.sendErr
	}
	bodies := make([]string, 0, len(params.Entries))
	for _, entry := range params.Entries {
		bodies = append(bodies, aws.ToString(entry.MessageBody))
	}
	c.batches = append(c.batches, bodies)

	out := &sqs.SendMessageBatchOutput{}
	for _, id := range c.failIDs {
		out.Failed = append(out.Failed, types.BatchResultErrorEntry{
			Id:      aws.String(id),
			Message: aws.String("throttled"),
		})
	}
	return out, nil
}

func TestSQSSenderSend(t *testing.T) {
	t.Parallel()
	client := &fakeSQSClient{}
	sender := senders.NewSQSSenderFromClient(client, "https://sqs.example.com/q")

	rec, err := offsync.NewRecord(map[string]string{"event": "signup"})
	if err != nil {
		t.Fatalf("NewRecord error: %v", err)
	}
	if err := sender.Send(context.Background(), rec); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(client.messages) != 1 {
		t.Fatalf("messages = %d, want 1", len(client.messages))
	}
}

func TestSQSSenderSendBatchChunks(t *testing.T) {
	t.Parallel()
	client := &fakeSQSClient{}
	sender := senders.NewSQSSenderFromClient(client, "https://sqs.example.com/q")

	batch := make([]offsync.Record, 0, 25)
	for i := 0; i < 25; i++ {
		rec, err := offsync.NewRecord(map[string]string{"i": strconv.Itoa(i)})
		if err != nil {
			t.Fatalf("NewRecord error: %v", err)
		}
		batch = append(batch, rec)
	}
	if err := sender.SendBatch(context.Background(), batch); err != nil {
		t.Fatalf("SendBatch error: %v", err)
	}

	if len(client.batches) != 3 {
		t.Fatalf("SendMessageBatch calls = %d, want 3", len(client.batches))
	}
	for i, want := range []int{10, 10, 5} {
		if len(client.batches[i]) != want {
			t.Fatalf("chunk %d size = %d, want %d", i, len(client.batches[i]), want)
		}
	}
}

func TestSQSSenderSendBatchRejectedEntries(t *testing.T) {
	t.Parallel()
	client := &fakeSQSClient{failIDs: []string{"0"}}
	sender := senders.NewSQSSenderFromClient(client, "https://sqs.example.com/q")

	rec, err := offsync.NewRecord(map[string]string{"event": "a"})
	if err != nil {
		t.Fatalf("NewRecord error: %v", err)
	}
	err = sender.SendBatch(context.Background(), []offsync.Record{rec})

	var se *offsync.SendError
	if !errors.As(err, &se) {
		t.Fatalf("SendBatch error = %v, want *SendError", err)
	}
}

func TestSQSSenderTransportError(t *testing.T) {
	t.Parallel()
	client := &fakeSQSClient{sendErr: errors.New("connection reset")}
	sender := senders.NewSQSSenderFromClient(client, "https://sqs.example.com/q")

	rec, err := offsync.NewRecord(map[string]string{"event": "a"})
	if err != nil {
		t.Fatalf("NewRecord error: %v", err)
	}
	var se *offsync.SendError
	if err := sender.Send(context.Background(), rec); !errors.As(err, &se) {
		t.Fatalf("Send error = %v, want *SendError", err)
	}
}
