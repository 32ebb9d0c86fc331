// Package senders contains Sender implementations beyond the default
// HTTP one.
package senders

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"github.com/zhCaiCode/offsync"
)

// sqsBatchMax is the SQS SendMessageBatch entry limit.
const sqsBatchMax = 10

// SQSClient is the slice of the SQS API the sender needs.
type SQSClient interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	SendMessageBatch(ctx context.Context, params *sqs.SendMessageBatchInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageBatchOutput, error)
}

// SQSSender delivers record payloads to an SQS queue instead of an HTTP
// endpoint. Works against LocalStack via a custom endpoint.
type SQSSender struct {
	client   SQSClient
	queueURL string
}

// NewSQSSender creates a sender targeting the given queue. endpoint is
// optional; leave it empty outside LocalStack-style setups.
func NewSQSSender(ctx context.Context, region, endpoint, queueURL string) (*SQSSender, error) {
	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(region),
	}
	if endpoint != "" {
		loadOpts = append(loadOpts,
			awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("test", "test", "")),
		)
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := sqs.NewFromConfig(cfg, func(o *sqs.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
		}
	})
	return NewSQSSenderFromClient(client, queueURL), nil
}

// NewSQSSenderFromClient wraps an existing SQS client.
func NewSQSSenderFromClient(client SQSClient, queueURL string) *SQSSender {
	return &SQSSender{client: client, queueURL: queueURL}
}

// Send implements offsync.Sender by posting the payload as one message.
func (s *SQSSender) Send(ctx context.Context, rec offsync.Record) error {
	_, err := s.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(s.queueURL),
		MessageBody: aws.String(string(rec.Payload)),
	})
	if err != nil {
		return &offsync.SendError{Err: err}
	}
	return nil
}

// SendBatch implements offsync.Sender. Batches beyond the SQS entry
// limit are split; any rejected entry fails the whole batch so the
// engine's per-record retry takes over.
func (s *SQSSender) SendBatch(ctx context.Context, batch []offsync.Record) error {
	for from := 0; from < len(batch); from += sqsBatchMax {
		to := from + sqsBatchMax
		if to > len(batch) {
			to = len(batch)
		}
		entries := make([]types.SendMessageBatchRequestEntry, 0, to-from)
		for i, rec := range batch[from:to] {
			entries = append(entries, types.SendMessageBatchRequestEntry{
				Id:          aws.String(strconv.Itoa(from + i)),
				MessageBody: aws.String(string(rec.Payload)),
			})
		}
		out, err := s.client.SendMessageBatch(ctx, &sqs.SendMessageBatchInput{
			QueueUrl: aws.String(s.queueURL),
			Entries:  entries,
		})
		if err != nil {
			return &offsync.SendError{Err: err}
		}
		if len(out.Failed) > 0 {
			first := out.Failed[0]
			return &offsync.SendError{
				Err: fmt.Errorf("%d entries rejected, first: %s", len(out.Failed), aws.ToString(first.Message)),
			}
		}
	}
	return nil
}
