package queue

import (
	"context"
	"fmt"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"github.com/mikey/mailgun-routes/internal/core"
	"go.uber.org/zap"
)

// SQSAPI is the subset of the SQS client used by SQSQueue
type SQSAPI interface {
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueAttributes(ctx context.Context, params *sqs.GetQueueAttributesInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueAttributesOutput, error)
}

// SQSQueue sends jobs to an Amazon SQS queue
type SQSQueue struct {
	client   SQSAPI
	queueURL string
	logger   *zap.Logger
}

// NewSQSQueue creates a new SQS-backed queue
func NewSQSQueue(client SQSAPI, queueURL string, logger *zap.Logger) *SQSQueue {
	return &SQSQueue{
		client:   client,
		queueURL: queueURL,
		logger:   logger,
	}
}

// Enqueue sends the encoded job as the message body. The job name and
// source are repeated as message attributes for routing.
func (q *SQSQueue) Enqueue(ctx context.Context, job core.EmailJob) error {
	payload, err := encodeJob(job)
	if err != nil {
		return err
	}

	out, err := q.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(q.queueURL),
		MessageBody: aws.String(string(payload)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"job":    {DataType: aws.String("String"), StringValue: aws.String(job.Name)},
			"source": {DataType: aws.String("String"), StringValue: aws.String(job.Source)},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to send job to SQS: %w", err)
	}

	q.logger.Debug("Job enqueued",
		zap.String("job_id", job.ID),
		zap.String("message_id", aws.ToString(out.MessageId)))
	return nil
}

// Len returns the approximate number of visible messages
func (q *SQSQueue) Len(ctx context.Context) (int64, error) {
	out, err := q.client.GetQueueAttributes(ctx, &sqs.GetQueueAttributesInput{
		QueueUrl:       aws.String(q.queueURL),
		AttributeNames: []types.QueueAttributeName{types.QueueAttributeNameApproximateNumberOfMessages},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to read SQS queue attributes: %w", err)
	}

	raw := out.Attributes[string(types.QueueAttributeNameApproximateNumberOfMessages)]
	n, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid message count %q: %w", raw, err)
	}
	return n, nil
}
