package queue

import (
	"context"
	"errors"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/mikey/mailgun-routes/internal/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeSQS struct {
	sent    []*sqs.SendMessageInput
	sendErr error
	count   string
}

func (f *fakeSQS) SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.sent = append(f.sent, params)
	return &sqs.SendMessageOutput{MessageId: aws.String("msg-1")}, nil
}

func (f *fakeSQS) GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error) {
	return &sqs.GetQueueAttributesOutput{
		Attributes: map[string]string{"ApproximateNumberOfMessages": f.count},
	}, nil
}

const testQueueURL = "https://sqs.us-east-1.amazonaws.com/123456789012/process-email"

func TestSQSQueueEnqueue(t *testing.T) {
	client := &fakeSQS{count: "7"}
	q := NewSQSQueue(client, testQueueURL, zap.NewNop())

	require.NoError(t, q.Enqueue(context.Background(), testJob("Subject: hi\r\n\r\nbody")))

	require.Len(t, client.sent, 1)
	in := client.sent[0]
	assert.Equal(t, testQueueURL, aws.ToString(in.QueueUrl))
	assert.Equal(t, "Subject: hi\r\n\r\nbody", decodeJob(t, aws.ToString(in.MessageBody)).Mail)
	assert.Equal(t, core.JobProcessEmail, aws.ToString(in.MessageAttributes["job"].StringValue))
	assert.Equal(t, core.SourceHandleMail, aws.ToString(in.MessageAttributes["source"].StringValue))

	n, err := q.Len(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
}

func TestSQSQueueErrors(t *testing.T) {
	client := &fakeSQS{}
	q := NewSQSQueue(client, testQueueURL, zap.NewNop())

	err := q.Enqueue(context.Background(), testJob("caf\xe9"))
	assert.True(t, errors.Is(err, core.ErrInvalidEncoding))
	assert.Empty(t, client.sent)

	client.sendErr = errors.New("throttled")
	err = q.Enqueue(context.Background(), testJob("hello"))
	require.Error(t, err)
	assert.False(t, errors.Is(err, core.ErrInvalidEncoding))
}
